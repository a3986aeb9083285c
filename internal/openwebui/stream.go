// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// stream.go - SSE streaming for chat completions.
//
// The server answers streaming requests with "data: <json>" frames and a
// final "data: [DONE]". The read loop is strictly sequential and checks
// for cancellation between frames, so an interrupt is observed at a frame
// boundary and everything received so far stays usable.

package openwebui

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

// MaxChunkSize is the maximum allowed size for a single SSE frame (64KB).
// Oversized frames are dropped like malformed ones.
const MaxChunkSize = 64 * 1024

// StreamChunk represents a single frame of a streaming response.
type StreamChunk struct {
	ID      string `json:"id"`
	Model   string `json:"model"`
	Choices []struct {
		Delta struct {
			Content string `json:"content"`
			Role    string `json:"role,omitempty"`
		} `json:"delta"`
		FinishReason string `json:"finish_reason"`
	} `json:"choices"`
}

// GetContent returns the content fragment from the first choice's delta.
func (c *StreamChunk) GetContent() string {
	if len(c.Choices) > 0 {
		return c.Choices[0].Delta.Content
	}
	return ""
}

// IsDone returns true if the frame carries a finish reason.
func (c *StreamChunk) IsDone() bool {
	if len(c.Choices) > 0 {
		return c.Choices[0].FinishReason != ""
	}
	return false
}

// GetFinishReason returns the finish reason, if any.
func (c *StreamChunk) GetFinishReason() string {
	if len(c.Choices) > 0 {
		return c.Choices[0].FinishReason
	}
	return ""
}

// StreamCallback is called for each received frame.
type StreamCallback func(chunk StreamChunk)

// StreamError is a streaming failure that preserves the content received
// before the failure.
type StreamError struct {
	Partial string
	Err     error
}

// Error implements the error interface.
func (e *StreamError) Error() string {
	if e.Partial != "" {
		return fmt.Sprintf("stream error (partial content received: %d chars): %v", len(e.Partial), e.Err)
	}
	return fmt.Sprintf("stream error: %v", e.Err)
}

// Unwrap returns the underlying error.
func (e *StreamError) Unwrap() error {
	return e.Err
}

// =============================================================================
// SSE READER
// =============================================================================

// SSEReader parses Server-Sent Events from a stream.
type SSEReader struct {
	reader *bufio.Reader
}

// NewSSEReader creates a new SSE reader from an io.Reader.
func NewSSEReader(r io.Reader) *SSEReader {
	return &SSEReader{
		reader: bufio.NewReader(r),
	}
}

// ReadEvent reads the next SSE event from the stream.
// Returns the event type, the data payload, and any error.
// Returns io.EOF when the stream ends.
func (s *SSEReader) ReadEvent() (string, []byte, error) {
	var eventType string
	var dataLines [][]byte

	for {
		line, err := s.reader.ReadBytes('\n')
		if err != nil {
			if err == io.EOF {
				// Flush a trailing event that has no final newline.
				if len(dataLines) > 0 {
					return eventType, bytes.Join(dataLines, []byte("\n")), nil
				}
				return "", nil, io.EOF
			}
			return "", nil, err
		}

		line = bytes.TrimRight(line, "\r\n")

		// Empty line signals end of event
		if len(line) == 0 {
			if len(dataLines) > 0 {
				return eventType, bytes.Join(dataLines, []byte("\n")), nil
			}
			continue
		}

		if bytes.HasPrefix(line, []byte("event:")) {
			eventType = string(bytes.TrimSpace(line[6:]))
		} else if bytes.HasPrefix(line, []byte("data:")) {
			dataLines = append(dataLines, bytes.TrimSpace(line[5:]))
		}
		// Ignore other fields (id:, retry:, comments starting with :)
	}
}

// =============================================================================
// STREAMING CHAT
// =============================================================================

// ChatStream performs a streaming chat completion, invoking callback for
// each frame.
//
// The request context governs the stream: cancellation surfaces as
// context.Canceled with all frames delivered so far already handed to the
// callback. A non-2xx response before any frame is classified like a
// plain request failure. There is no retry or reconnect.
func (c *Client) ChatStream(ctx context.Context, req ChatRequest, callback StreamCallback) error {
	req.Stream = true

	bodyBytes, err := json.Marshal(req)
	if err != nil {
		return fmt.Errorf("failed to marshal request: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+chatCompletionsPath, bytes.NewReader(bodyBytes))
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}

	c.setHeaders(httpReq)
	httpReq.Header.Set("Accept", "text/event-stream")
	httpReq.Header.Set("Cache-Control", "no-cache")
	httpReq.Header.Set("Connection", "keep-alive")

	resp, err := c.streamClient.Do(httpReq)
	if err != nil {
		return classifyTransport(err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := readResponse(resp)
		return classifyStatus(resp.StatusCode, body)
	}

	return processStream(ctx, resp.Body, callback)
}

// processStream drives the sequential frame loop.
//
// Malformed frames are skipped. EOF and [DONE] both complete the stream;
// EOF before any frame is a valid empty completion.
func processStream(ctx context.Context, body io.Reader, callback StreamCallback) error {
	reader := NewSSEReader(body)

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}

		_, data, err := reader.ReadEvent()
		if err != nil {
			if err == io.EOF {
				return nil
			}
			// A cancel during a blocked read surfaces as a body read
			// error; report it as cancellation, not transport failure.
			if ctxErr := ctx.Err(); ctxErr != nil {
				return ctxErr
			}
			return classifyTransport(err)
		}

		if bytes.Equal(data, []byte("[DONE]")) {
			return nil
		}
		if len(data) > MaxChunkSize {
			continue
		}

		var chunk StreamChunk
		if err := json.Unmarshal(data, &chunk); err != nil {
			// Skip malformed frames
			continue
		}

		callback(chunk)

		if chunk.IsDone() {
			return nil
		}
	}
}

// ChatStreamAccumulate streams a completion and returns the full text.
// On failure the partial text travels inside the returned StreamError.
func (c *Client) ChatStreamAccumulate(ctx context.Context, req ChatRequest) (string, error) {
	var sb strings.Builder
	err := c.ChatStream(ctx, req, func(chunk StreamChunk) {
		sb.WriteString(chunk.GetContent())
	})
	if err != nil {
		return sb.String(), &StreamError{Partial: sb.String(), Err: err}
	}
	return sb.String(), nil
}

// StreamAccumulator collects frames and statistics during streaming.
type StreamAccumulator struct {
	Content      strings.Builder
	ChunkCount   int
	Model        string
	FinishReason string
	StartTime    time.Time
	FirstChunkAt time.Time
}

// NewStreamAccumulator creates an accumulator with the clock started.
func NewStreamAccumulator() *StreamAccumulator {
	return &StreamAccumulator{StartTime: time.Now()}
}

// Add records one frame.
func (a *StreamAccumulator) Add(chunk StreamChunk) {
	content := chunk.GetContent()
	if content != "" {
		if a.FirstChunkAt.IsZero() {
			a.FirstChunkAt = time.Now()
		}
		a.ChunkCount++
		a.Content.WriteString(content)
	}
	if chunk.Model != "" {
		a.Model = chunk.Model
	}
	if reason := chunk.GetFinishReason(); reason != "" {
		a.FinishReason = reason
	}
}

// GetContent returns everything accumulated so far.
func (a *StreamAccumulator) GetContent() string {
	return a.Content.String()
}

// Callback returns a StreamCallback that feeds this accumulator and then
// invokes next, if non-nil.
func (a *StreamAccumulator) Callback(next StreamCallback) StreamCallback {
	return func(chunk StreamChunk) {
		a.Add(chunk)
		if next != nil {
			next(chunk)
		}
	}
}
