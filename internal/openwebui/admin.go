// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// admin.go - Administrative endpoints.

package openwebui

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
)

// AdminStats is a free-form metric map; servers differ in what they report.
type AdminStats map[string]json.RawMessage

// StatValue renders one metric for display.
func (s AdminStats) StatValue(key string) string {
	raw, ok := s[key]
	if !ok {
		return ""
	}
	var str string
	if err := json.Unmarshal(raw, &str); err == nil {
		return str
	}
	return string(raw)
}

// GetAdminStats fetches server usage statistics.
//
// Servers without a stats endpoint still answer the identity endpoint, so
// on failure we fall back to it and synthesize a minimal report, provided
// the account actually has the admin role.
func (c *Client) GetAdminStats(ctx context.Context) (AdminStats, error) {
	var stats AdminStats
	err := c.doJSON(ctx, http.MethodGet, "/api/v1/admin/stats", nil, &stats)
	if err == nil {
		return stats, nil
	}

	user, meErr := c.Me(ctx)
	if meErr != nil {
		return nil, err
	}
	if user.Role != "admin" {
		return nil, NewAuthError(
			fmt.Sprintf("Admin command requires admin privileges; your current user is '%s' with role: [%s]", user.Name, user.Role),
			"",
		)
	}

	quote := func(s string) json.RawMessage {
		b, _ := json.Marshal(s)
		return b
	}
	return AdminStats{
		"user":   quote(user.Name),
		"role":   quote(user.Role),
		"status": quote("connected"),
	}, nil
}
