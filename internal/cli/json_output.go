// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// json_output.go - Machine-readable output for owui commands.
//
// Provides a standardized JSON envelope so scripts can consume any
// command's result without scraping styled text. Human-readable status
// lines go to stderr when JSON mode is enabled; stdout carries only the
// envelope.

package cli

import (
	"encoding/json"
	"fmt"
	"os"
	"time"
)

// JSONResponse is the standardized envelope for all owui commands.
type JSONResponse struct {
	// Success indicates whether the command completed successfully
	Success bool `json:"success"`

	// Data contains the command-specific response data
	Data interface{} `json:"data"`

	// Error contains the error message if Success is false, null otherwise
	Error *string `json:"error"`

	// Timestamp is the ISO8601 timestamp when the response was generated
	Timestamp string `json:"timestamp"`

	// Command is the command that was executed
	Command string `json:"command,omitempty"`
}

// NewJSONResponse creates a new successful JSON response.
func NewJSONResponse(command string, data interface{}) *JSONResponse {
	return &JSONResponse{
		Success:   true,
		Data:      data,
		Error:     nil,
		Timestamp: time.Now().UTC().Format(time.RFC3339),
		Command:   command,
	}
}

// NewJSONErrorResponse creates a new error JSON response.
func NewJSONErrorResponse(command string, err error) *JSONResponse {
	errStr := err.Error()
	return &JSONResponse{
		Success:   false,
		Data:      nil,
		Error:     &errStr,
		Timestamp: time.Now().UTC().Format(time.RFC3339),
		Command:   command,
	}
}

// Print outputs the JSON response to stdout.
func (r *JSONResponse) Print() error {
	encoder := json.NewEncoder(os.Stdout)
	encoder.SetIndent("", "  ")
	return encoder.Encode(r)
}

// String returns the JSON response as a string.
func (r *JSONResponse) String() string {
	data, err := json.MarshalIndent(r, "", "  ")
	if err != nil {
		return fmt.Sprintf(`{"success":false,"error":"failed to marshal response: %s","timestamp":"%s"}`,
			err.Error(), time.Now().UTC().Format(time.RFC3339))
	}
	return string(data)
}

// =============================================================================
// COMMAND-SPECIFIC DATA STRUCTURES
// =============================================================================

// VersionData represents the data returned by the version command.
type VersionData struct {
	Version   string `json:"version"`
	GitCommit string `json:"git_commit"`
	BuildDate string `json:"build_date"`
	GoVersion string `json:"go_version,omitempty"`
}

// WhoamiData represents the data returned by auth whoami.
type WhoamiData struct {
	ID      string `json:"id"`
	Name    string `json:"name"`
	Email   string `json:"email"`
	Role    string `json:"role"`
	Server  string `json:"server"`
	Profile string `json:"profile"`
}

// LoginData represents the data returned by auth login.
type LoginData struct {
	Name    string `json:"name"`
	Email   string `json:"email"`
	Role    string `json:"role"`
	Profile string `json:"profile"`
	Stored  bool   `json:"token_stored"`
}

// TokenData represents the data returned by auth token.
type TokenData struct {
	Token   string `json:"token"`
	Masked  bool   `json:"masked"`
	Profile string `json:"profile"`
}

// UploadData represents the result of one rag files upload.
type UploadData struct {
	Uploaded []UploadedFile `json:"uploaded"`
	Failed   []FailedFile   `json:"failed,omitempty"`
}

// UploadedFile is one successfully uploaded file.
type UploadedFile struct {
	Path       string `json:"path"`
	ID         string `json:"id"`
	Collection string `json:"collection,omitempty"`
}

// FailedFile is one file that could not be uploaded.
type FailedFile struct {
	Path  string `json:"path"`
	Error string `json:"error"`
}
