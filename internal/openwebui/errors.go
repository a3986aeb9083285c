// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// errors.go - Error classification for OpenWebUI API failures.
//
// Every failure that leaves this package is a *ClientError with a Type
// that maps one-to-one onto a process exit code. Classification happens
// where the failure is observed (HTTP status handling, transport errors)
// so callers never inspect status codes or net errors themselves.

package openwebui

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/url"
	"os"
	"strings"
)

// ErrorType categorizes a client failure for exit-code mapping.
type ErrorType int

const (
	// ErrorGeneral covers API failures with no more specific class,
	// including 4xx responses other than 401/403.
	ErrorGeneral ErrorType = iota

	// ErrorAuth covers 401/403 responses and credential store failures.
	ErrorAuth

	// ErrorNetwork covers connection, DNS, and timeout failures.
	ErrorNetwork

	// ErrorServer covers 5xx responses.
	ErrorServer
)

// String returns the human-readable name of the error type.
func (t ErrorType) String() string {
	switch t {
	case ErrorAuth:
		return "auth"
	case ErrorNetwork:
		return "network"
	case ErrorServer:
		return "server"
	default:
		return "general"
	}
}

// Error variables for common client failures.
var (
	// ErrNoToken indicates a request that requires authentication was
	// attempted without any resolvable token.
	ErrNoToken = errors.New("no authentication token available")

	// ErrEmptyResponse indicates the server returned no usable content.
	ErrEmptyResponse = errors.New("empty response from server")
)

// ClientError is an OpenWebUI API failure carrying its classification.
type ClientError struct {
	Type       ErrorType
	Message    string
	Hint       string
	StatusCode int
	Cause      error
}

// Error implements the error interface.
func (e *ClientError) Error() string {
	return e.Message
}

// Unwrap returns the underlying cause, if any.
func (e *ClientError) Unwrap() error {
	return e.Cause
}

// NewAuthError creates an authentication failure.
func NewAuthError(message, hint string) *ClientError {
	return &ClientError{Type: ErrorAuth, Message: message, Hint: hint}
}

// NewNetworkError creates a connectivity failure wrapping its cause.
func NewNetworkError(message, hint string, cause error) *ClientError {
	return &ClientError{Type: ErrorNetwork, Message: message, Hint: hint, Cause: cause}
}

// NewServerError creates a server-side (5xx) failure.
func NewServerError(statusCode int, message string) *ClientError {
	return &ClientError{
		Type:       ErrorServer,
		Message:    message,
		Hint:       "The server may be overloaded or misconfigured. Check the server logs or try again later.",
		StatusCode: statusCode,
	}
}

// NewGeneralError creates an unclassified API failure.
func NewGeneralError(message string) *ClientError {
	return &ClientError{Type: ErrorGeneral, Message: message}
}

// apiErrorResponse is the error envelope some endpoints return.
type apiErrorResponse struct {
	Detail  string `json:"detail"`
	Message string `json:"message"`
	Error   string `json:"error"`
}

// detailText returns the most specific message the envelope carries.
func (r *apiErrorResponse) detailText() string {
	switch {
	case r.Detail != "":
		return r.Detail
	case r.Message != "":
		return r.Message
	default:
		return r.Error
	}
}

// classifyStatus maps a non-2xx HTTP response to a ClientError.
//
// 401 and 403 are auth failures, 5xx are server failures, and everything
// else (404 included) is a general failure carrying the response body
// verbatim so scripts can inspect it.
func classifyStatus(statusCode int, body []byte) *ClientError {
	text := strings.TrimSpace(string(body))

	switch {
	case statusCode == 401:
		return &ClientError{
			Type:       ErrorAuth,
			Message:    "Authentication required",
			Hint:       "Run 'owui auth login' first. If you recently logged in, your token may have expired.",
			StatusCode: statusCode,
		}
	case statusCode == 403:
		return &ClientError{
			Type:       ErrorAuth,
			Message:    "Permission denied",
			Hint:       "Your account may lack access to this resource, or the token belongs to a different user.",
			StatusCode: statusCode,
		}
	case statusCode >= 500:
		msg := fmt.Sprintf("Server error (%d)", statusCode)
		if text != "" {
			msg = fmt.Sprintf("Server error (%d): %s", statusCode, text)
		}
		return NewServerError(statusCode, msg)
	default:
		msg := fmt.Sprintf("API error (%d)", statusCode)
		if text != "" {
			msg = fmt.Sprintf("API error (%d): %s", statusCode, text)
		}
		return &ClientError{Type: ErrorGeneral, Message: msg, StatusCode: statusCode}
	}
}

// classifyTransport maps a failed round trip to a ClientError.
//
// Context cancellation passes through untouched so the caller can tell a
// user interrupt apart from a transport failure.
func classifyTransport(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, context.Canceled) {
		return err
	}
	if errors.Is(err, context.DeadlineExceeded) || isTimeout(err) {
		return NewNetworkError(
			fmt.Sprintf("Request timed out: %v", rootCause(err)),
			"Increase the timeout, e.g. 'owui --timeout 60 ...', or check server load.",
			err,
		)
	}
	return NewNetworkError(
		fmt.Sprintf("Could not connect to server: %v", rootCause(err)),
		"Check that OpenWebUI is running and the URI is correct ('owui config show'). Try 'owui --uri http://localhost:8080 ...'.",
		err,
	)
}

// isTimeout reports whether err is a timeout at any wrapping level.
func isTimeout(err error) bool {
	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return true
	}
	return errors.Is(err, os.ErrDeadlineExceeded)
}

// rootCause strips url.Error wrapping for cleaner messages.
func rootCause(err error) error {
	var urlErr *url.Error
	if errors.As(err, &urlErr) {
		return urlErr.Err
	}
	return err
}
