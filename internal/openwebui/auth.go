// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// auth.go - Sign-in, identity, and token refresh endpoints.

package openwebui

import (
	"context"
	"net/http"
)

// signInRequest is the credentials payload for password sign-in.
type signInRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// SignInResponse carries the session issued by the server.
type SignInResponse struct {
	ID    string `json:"id"`
	Token string `json:"token"`
	Name  string `json:"name"`
	Email string `json:"email"`
	Role  string `json:"role"`
}

// User describes the authenticated account.
type User struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Email string `json:"email"`
	Role  string `json:"role"`
}

// SignIn exchanges credentials for an API token.
//
// A 2xx response without a token is still a failure: the caller cannot
// proceed without one.
func (c *Client) SignIn(ctx context.Context, email, password string) (*SignInResponse, error) {
	var resp SignInResponse
	err := c.doJSON(ctx, http.MethodPost, "/api/v1/auths/signin", signInRequest{Email: email, Password: password}, &resp)
	if err != nil {
		return nil, err
	}
	if resp.Token == "" {
		return nil, NewAuthError("No token received from server", "")
	}
	return &resp, nil
}

// Me returns the account the configured token belongs to.
func (c *Client) Me(ctx context.Context) (*User, error) {
	var user User
	if err := c.doJSON(ctx, http.MethodGet, "/api/v1/auths/", nil, &user); err != nil {
		return nil, err
	}
	return &user, nil
}

// Refresh asks the server for a fresh token. The server may decline by
// returning no token; the caller keeps the old one in that case.
func (c *Client) Refresh(ctx context.Context) (*SignInResponse, error) {
	var resp SignInResponse
	if err := c.doJSON(ctx, http.MethodPost, "/api/v1/auths/refresh", nil, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}
