// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// models.go - Model catalog endpoints.

package openwebui

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strings"
)

// ModelInfo describes one model the server offers.
type ModelInfo struct {
	ID            string `json:"id"`
	Name          string `json:"name"`
	OwnedBy       string `json:"owned_by"`
	Provider      string `json:"provider"`
	Parameters    string `json:"parameters"`
	ContextLength int    `json:"context_length"`
}

// ProviderName returns whichever provider field the server populated.
func (m *ModelInfo) ProviderName() string {
	if m.OwnedBy != "" {
		return m.OwnedBy
	}
	return m.Provider
}

// DisplayName falls back to the ID when the server sends no name.
func (m *ModelInfo) DisplayName() string {
	if m.Name != "" {
		return m.Name
	}
	return m.ID
}

// modelsResponse tolerates both envelope keys the server has used.
type modelsResponse struct {
	Data   []ModelInfo `json:"data"`
	Models []ModelInfo `json:"models"`
}

// ListModels returns the models available on the server, optionally
// filtered by a case-insensitive provider substring.
func (c *Client) ListModels(ctx context.Context, providerFilter string) ([]ModelInfo, error) {
	var resp modelsResponse
	if err := c.doJSON(ctx, http.MethodGet, "/api/models", nil, &resp); err != nil {
		return nil, err
	}

	models := resp.Data
	if models == nil {
		models = resp.Models
	}

	if providerFilter == "" {
		return models, nil
	}

	needle := strings.ToLower(providerFilter)
	filtered := make([]ModelInfo, 0, len(models))
	for _, m := range models {
		if strings.Contains(strings.ToLower(m.ProviderName()), needle) {
			filtered = append(filtered, m)
		}
	}
	return filtered, nil
}

// GetModel returns details for a single model.
func (c *Client) GetModel(ctx context.Context, id string) (*ModelInfo, error) {
	var model ModelInfo
	path := "/api/models/" + url.PathEscape(id)
	if err := c.doJSON(ctx, http.MethodGet, path, nil, &model); err != nil {
		return nil, err
	}
	if model.ID == "" {
		model.ID = id
	}
	return &model, nil
}

// pullResponse reports the outcome of a model pull.
type pullResponse struct {
	Status  string `json:"status"`
	Message string `json:"message"`
	Error   string `json:"error"`
}

// PullModel asks the server to download a model.
func (c *Client) PullModel(ctx context.Context, name string) error {
	var resp pullResponse
	err := c.doJSON(ctx, http.MethodPost, "/api/models/pull", map[string]string{"name": name}, &resp)
	if err != nil {
		return err
	}
	if resp.Status != "" && resp.Status != "success" {
		msg := resp.Message
		if msg == "" {
			msg = resp.Error
		}
		if msg == "" {
			msg = "unknown error"
		}
		return NewGeneralError(fmt.Sprintf("Failed to pull model: %s", msg))
	}
	return nil
}

// DeleteModel removes a model from the server.
func (c *Client) DeleteModel(ctx context.Context, id string) error {
	return c.doJSON(ctx, http.MethodDelete, "/api/models/"+url.PathEscape(id), nil, nil)
}
