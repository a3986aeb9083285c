// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package openwebui implements the OpenWebUI HTTP API client.
//
// The client speaks the OpenAI-compatible chat completions protocol plus
// the OpenWebUI-specific endpoints for auth, models, files, and knowledge
// collections. Two HTTP clients back it: a plain one whose timeout bounds
// whole requests, and a streaming one whose timeout bounds only connection
// establishment and time-to-first-byte, never an ongoing stream.
package openwebui

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net"
	"net/http"
	"strings"
	"time"
)

// Configuration constants for the OpenWebUI API.
const (
	// DefaultBaseURL is the server used when nothing else is configured.
	DefaultBaseURL = "http://localhost:8080"

	// DefaultTimeout bounds requests when no timeout is configured.
	DefaultTimeout = 30 * time.Second

	// UploadTimeout bounds file uploads, which move large bodies.
	UploadTimeout = 300 * time.Second

	// MaxResponseSize is the maximum allowed response body size.
	// SECURITY: Response size limit prevents memory exhaustion.
	MaxResponseSize = 10 * 1024 * 1024 // 10MB limit

	// userAgent identifies this client to the server.
	userAgent = "owui/1.0.0"
)

// newHTTPClient builds the client for plain request/response calls.
// The timeout covers the whole round trip.
func newHTTPClient(timeout time.Duration) *http.Client {
	return &http.Client{
		Transport: &http.Transport{
			MaxIdleConns:        100,
			MaxIdleConnsPerHost: 10,
			IdleConnTimeout:     90 * time.Second,
			TLSHandshakeTimeout: 10 * time.Second,
		},
		Timeout: timeout,
	}
}

// newStreamingClient builds the client for streaming calls.
//
// No client-level timeout: once the response headers arrive the stream
// runs until terminal, governed only by the request context. The timeout
// applies to dialing and the wait for response headers.
func newStreamingClient(timeout time.Duration) *http.Client {
	return &http.Client{
		Transport: &http.Transport{
			DialContext: (&net.Dialer{
				Timeout:   timeout,
				KeepAlive: 30 * time.Second,
			}).DialContext,
			MaxIdleConns:          100,
			MaxIdleConnsPerHost:   10,
			IdleConnTimeout:       90 * time.Second,
			TLSHandshakeTimeout:   10 * time.Second,
			ResponseHeaderTimeout: timeout,
		},
	}
}

// Client communicates with an OpenWebUI server.
type Client struct {
	baseURL      string
	token        string
	timeout      time.Duration
	httpClient   *http.Client
	streamClient *http.Client
}

// NewClient creates a client for the given server.
func NewClient(baseURL string) *Client {
	return &Client{
		baseURL:      strings.TrimSuffix(baseURL, "/"),
		timeout:      DefaultTimeout,
		httpClient:   newHTTPClient(DefaultTimeout),
		streamClient: newStreamingClient(DefaultTimeout),
	}
}

// WithBaseURL sets a custom base URL.
func (c *Client) WithBaseURL(url string) *Client {
	c.baseURL = strings.TrimSuffix(url, "/")
	return c
}

// WithToken sets the bearer token. An empty token sends no
// Authorization header.
func (c *Client) WithToken(token string) *Client {
	c.token = token
	return c
}

// WithTimeout sets the request timeout and rebuilds both HTTP clients
// around it.
func (c *Client) WithTimeout(timeout time.Duration) *Client {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	c.timeout = timeout
	c.httpClient = newHTTPClient(timeout)
	c.streamClient = newStreamingClient(timeout)
	return c
}

// BaseURL returns the server base URL.
func (c *Client) BaseURL() string {
	return c.baseURL
}

// HasToken reports whether a bearer token is configured.
func (c *Client) HasToken() bool {
	return c.token != ""
}

func (c *Client) setHeaders(req *http.Request) {
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", userAgent)
}

// readResponse reads the response body with a size limit.
//
// SECURITY: Response size limit prevents memory exhaustion.
func readResponse(resp *http.Response) ([]byte, error) {
	limitedReader := io.LimitReader(resp.Body, MaxResponseSize)
	body, err := io.ReadAll(limitedReader)
	if err != nil {
		return nil, fmt.Errorf("failed to read response: %w", err)
	}
	if int64(len(body)) == MaxResponseSize {
		return nil, fmt.Errorf("response exceeded maximum size of %d bytes", MaxResponseSize)
	}
	return body, nil
}

// doJSON performs a JSON request and decodes the response into out.
//
// The response body is closed on every path. Non-2xx responses are
// classified; transport failures are classified; out may be nil when the
// caller only cares about success.
func (c *Client) doJSON(ctx context.Context, method, path string, body, out any) error {
	var reqBody io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("failed to marshal request: %w", err)
		}
		reqBody = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reqBody)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	c.setHeaders(req)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return classifyTransport(err)
	}
	defer resp.Body.Close()

	respBody, err := readResponse(resp)
	if err != nil {
		return classifyTransport(err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return classifyStatus(resp.StatusCode, respBody)
	}

	if out != nil && len(respBody) > 0 {
		if err := json.Unmarshal(respBody, out); err != nil {
			return fmt.Errorf("failed to parse response: %w", err)
		}
	}
	return nil
}

// doMultipart uploads a single file as a multipart form and decodes the
// response into out. Uploads get their own generous timeout.
func (c *Client) doMultipart(ctx context.Context, path, fieldName, fileName string, content io.Reader, out any) error {
	var buf bytes.Buffer
	writer := multipart.NewWriter(&buf)

	part, err := writer.CreateFormFile(fieldName, fileName)
	if err != nil {
		return fmt.Errorf("failed to build upload form: %w", err)
	}
	if _, err := io.Copy(part, content); err != nil {
		return fmt.Errorf("failed to read %s: %w", fileName, err)
	}
	if err := writer.Close(); err != nil {
		return fmt.Errorf("failed to finish upload form: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, &buf)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	c.setHeaders(req)
	req.Header.Set("Content-Type", writer.FormDataContentType())

	uploadClient := newHTTPClient(UploadTimeout)
	resp, err := uploadClient.Do(req)
	if err != nil {
		return classifyTransport(err)
	}
	defer resp.Body.Close()

	respBody, err := readResponse(resp)
	if err != nil {
		return classifyTransport(err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return classifyStatus(resp.StatusCode, respBody)
	}

	if out != nil && len(respBody) > 0 {
		if err := json.Unmarshal(respBody, out); err != nil {
			return fmt.Errorf("failed to parse response: %w", err)
		}
	}
	return nil
}
