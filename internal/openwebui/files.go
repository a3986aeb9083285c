// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// files.go - Uploaded file endpoints for retrieval-augmented chat.

package openwebui

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/url"
)

// FileInfo describes one uploaded file.
type FileInfo struct {
	ID       string `json:"id"`
	Filename string `json:"filename"`
	Name     string `json:"name"`
	Size     int64  `json:"size"`
}

// DisplayName returns the best available name for listings.
func (f *FileInfo) DisplayName() string {
	if f.Filename != "" {
		return f.Filename
	}
	if f.Name != "" {
		return f.Name
	}
	return "-"
}

// decodeFileList accepts either a bare array or a {"files": [...]} wrapper.
func decodeFileList(raw json.RawMessage) []FileInfo {
	var list []FileInfo
	if err := json.Unmarshal(raw, &list); err == nil {
		return list
	}
	var wrapper struct {
		Files []FileInfo `json:"files"`
	}
	if err := json.Unmarshal(raw, &wrapper); err == nil {
		return wrapper.Files
	}
	return nil
}

// ListFiles returns the files uploaded to the server.
func (c *Client) ListFiles(ctx context.Context) ([]FileInfo, error) {
	var raw json.RawMessage
	if err := c.doJSON(ctx, http.MethodGet, "/api/v1/files/", nil, &raw); err != nil {
		return nil, err
	}
	return decodeFileList(raw), nil
}

// UploadFile uploads one file for RAG indexing and returns its record.
//
// A 2xx response without a file ID is a failure: nothing can reference
// the upload afterwards.
func (c *Client) UploadFile(ctx context.Context, fileName string, content io.Reader) (*FileInfo, error) {
	var info FileInfo
	if err := c.doMultipart(ctx, "/api/v1/files/", "file", fileName, content, &info); err != nil {
		return nil, err
	}
	if info.ID == "" {
		return nil, NewGeneralError("Upload succeeded but the server returned no file ID")
	}
	return &info, nil
}

// DeleteFile removes an uploaded file.
func (c *Client) DeleteFile(ctx context.Context, id string) error {
	return c.doJSON(ctx, http.MethodDelete, "/api/v1/files/"+url.PathEscape(id), nil, nil)
}
