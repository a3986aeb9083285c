// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// knowledge.go - Knowledge collection endpoints (vector search backend).

package openwebui

import (
	"context"
	"encoding/json"
	"net/http"
	"net/url"
)

// Collection describes one knowledge collection.
type Collection struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description"`
}

// QueryResult is one hit from a collection query.
type QueryResult struct {
	Content  string          `json:"content"`
	Text     string          `json:"text"`
	Score    float64         `json:"score"`
	Distance float64         `json:"distance"`
	Metadata json.RawMessage `json:"metadata"`
}

// Snippet returns whichever content field the server populated.
func (r *QueryResult) Snippet() string {
	if r.Content != "" {
		return r.Content
	}
	return r.Text
}

// Source extracts the source document from the hit metadata, if present.
func (r *QueryResult) Source() string {
	if len(r.Metadata) == 0 {
		return ""
	}
	var meta struct {
		Source string `json:"source"`
	}
	if err := json.Unmarshal(r.Metadata, &meta); err != nil {
		return ""
	}
	return meta.Source
}

// decodeCollectionList accepts either a bare array or a
// {"collections": [...]} wrapper.
func decodeCollectionList(raw json.RawMessage) []Collection {
	var list []Collection
	if err := json.Unmarshal(raw, &list); err == nil {
		return list
	}
	var wrapper struct {
		Collections []Collection `json:"collections"`
	}
	if err := json.Unmarshal(raw, &wrapper); err == nil {
		return wrapper.Collections
	}
	return nil
}

// ListCollections returns the knowledge collections on the server.
func (c *Client) ListCollections(ctx context.Context) ([]Collection, error) {
	var raw json.RawMessage
	if err := c.doJSON(ctx, http.MethodGet, "/api/v1/knowledge/", nil, &raw); err != nil {
		return nil, err
	}
	return decodeCollectionList(raw), nil
}

// CreateCollection creates a knowledge collection and returns its record.
func (c *Client) CreateCollection(ctx context.Context, name, description string) (*Collection, error) {
	body := map[string]string{"name": name, "description": description}
	var coll Collection
	if err := c.doJSON(ctx, http.MethodPost, "/api/v1/knowledge/", body, &coll); err != nil {
		return nil, err
	}
	return &coll, nil
}

// DeleteCollection removes a knowledge collection.
func (c *Client) DeleteCollection(ctx context.Context, id string) error {
	return c.doJSON(ctx, http.MethodDelete, "/api/v1/knowledge/"+url.PathEscape(id), nil, nil)
}

// AddFileToCollection indexes an uploaded file into a collection.
func (c *Client) AddFileToCollection(ctx context.Context, collectionID, fileID string) error {
	body := map[string]string{"file_id": fileID}
	path := "/api/v1/knowledge/" + url.PathEscape(collectionID) + "/file/add"
	return c.doJSON(ctx, http.MethodPost, path, body, nil)
}

// queryRequest is the vector search payload.
type queryRequest struct {
	Query string `json:"query"`
	K     int    `json:"k"`
}

// queryResponse tolerates both result keys the server has used.
type queryResponse struct {
	Results   []QueryResult `json:"results"`
	Documents []QueryResult `json:"documents"`
}

// QueryCollection runs a vector search within a collection.
func (c *Client) QueryCollection(ctx context.Context, collectionID, query string, topK int) ([]QueryResult, error) {
	var resp queryResponse
	path := "/api/v1/knowledge/" + url.PathEscape(collectionID) + "/query"
	if err := c.doJSON(ctx, http.MethodPost, path, queryRequest{Query: query, K: topK}, &resp); err != nil {
		return nil, err
	}
	if resp.Results != nil {
		return resp.Results, nil
	}
	return resp.Documents, nil
}
