// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// chat.go - Chat completion types, history parsing, and request building.

package openwebui

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
)

// chatCompletionsPath is the OpenAI-compatible completions endpoint.
const chatCompletionsPath = "/api/v1/chat/completions"

// ChatMessage represents a single message in a chat conversation.
type ChatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// NewUserMessage creates a new user message.
func NewUserMessage(content string) ChatMessage {
	return ChatMessage{Role: "user", Content: content}
}

// NewAssistantMessage creates a new assistant message.
func NewAssistantMessage(content string) ChatMessage {
	return ChatMessage{Role: "assistant", Content: content}
}

// FileRef attaches an uploaded file or a knowledge collection to a chat
// request for retrieval-augmented generation.
type FileRef struct {
	Type string `json:"type"`
	ID   string `json:"id"`
}

// FileRef types.
const (
	FileRefFile       = "file"
	FileRefCollection = "collection"
)

// BuildFileRefs builds the files field of a chat request: file references
// first, collection references after. Returns nil when both lists are
// empty so the field is omitted from the wire entirely.
func BuildFileRefs(files, collections []string) []FileRef {
	if len(files) == 0 && len(collections) == 0 {
		return nil
	}
	refs := make([]FileRef, 0, len(files)+len(collections))
	for _, id := range files {
		refs = append(refs, FileRef{Type: FileRefFile, ID: id})
	}
	for _, id := range collections {
		refs = append(refs, FileRef{Type: FileRefCollection, ID: id})
	}
	return refs
}

// ChatRequest represents a request to the chat completions endpoint.
//
// The system prompt travels in its own field rather than as a message;
// optional fields are omitted from the wire when unset.
type ChatRequest struct {
	Model       string        `json:"model"`
	Messages    []ChatMessage `json:"messages"`
	Stream      bool          `json:"stream"`
	System      string        `json:"system,omitempty"`
	ChatID      string        `json:"chat_id,omitempty"`
	Temperature *float64      `json:"temperature,omitempty"`
	MaxTokens   *int          `json:"max_tokens,omitempty"`
	Files       []FileRef     `json:"files,omitempty"`
}

// ChatResponse represents a non-streaming completions response.
type ChatResponse struct {
	ID      string `json:"id"`
	Model   string `json:"model"`
	Choices []struct {
		Message struct {
			Role    string `json:"role"`
			Content string `json:"content"`
		} `json:"message"`
		FinishReason string `json:"finish_reason"`
	} `json:"choices"`
	Usage struct {
		PromptTokens     int `json:"prompt_tokens"`
		CompletionTokens int `json:"completion_tokens"`
		TotalTokens      int `json:"total_tokens"`
	} `json:"usage"`
}

// GetContent returns the content of the first choice, or empty string if none.
func (r *ChatResponse) GetContent() string {
	if len(r.Choices) == 0 {
		return ""
	}
	return r.Choices[0].Message.Content
}

// History shape errors. Both indicate caller mistakes and map to usage
// failures at the CLI boundary.
var (
	ErrHistoryInvalidJSON = errors.New("invalid JSON in history file")
	ErrHistoryBadShape    = errors.New("history file must contain an array of messages or an object with a 'messages' key")
)

// ParseHistory decodes a prior conversation from its JSON serialization.
//
// Two shapes are accepted: a bare array of messages, or an object whose
// "messages" key holds such an array. An empty array either way is a
// valid empty history. Every other shape is rejected.
func ParseHistory(data []byte) ([]ChatMessage, error) {
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) == 0 {
		return nil, ErrHistoryBadShape
	}
	if !json.Valid(trimmed) {
		return nil, ErrHistoryInvalidJSON
	}
	if bytes.Equal(trimmed, []byte("null")) {
		return nil, ErrHistoryBadShape
	}

	var direct []ChatMessage
	if err := json.Unmarshal(trimmed, &direct); err == nil {
		return direct, nil
	}

	var wrapper map[string]json.RawMessage
	if err := json.Unmarshal(trimmed, &wrapper); err != nil {
		return nil, ErrHistoryBadShape
	}
	raw, ok := wrapper["messages"]
	if !ok {
		return nil, ErrHistoryBadShape
	}
	var messages []ChatMessage
	if err := json.Unmarshal(raw, &messages); err != nil {
		return nil, ErrHistoryBadShape
	}
	return messages, nil
}

// ChatOptions collects everything a chat turn needs before it becomes a
// wire request.
type ChatOptions struct {
	Model       string
	Prompt      string
	System      string
	ChatID      string
	Temperature *float64
	MaxTokens   *int
	Files       []string
	Collections []string
	History     []ChatMessage
	Stream      bool
}

// BuildChatRequest assembles the wire request: prior history in order,
// then the new user turn last. The history slice is never mutated.
func BuildChatRequest(opts ChatOptions) ChatRequest {
	messages := make([]ChatMessage, 0, len(opts.History)+1)
	messages = append(messages, opts.History...)
	messages = append(messages, NewUserMessage(opts.Prompt))

	return ChatRequest{
		Model:       opts.Model,
		Messages:    messages,
		Stream:      opts.Stream,
		System:      opts.System,
		ChatID:      opts.ChatID,
		Temperature: opts.Temperature,
		MaxTokens:   opts.MaxTokens,
		Files:       BuildFileRefs(opts.Files, opts.Collections),
	}
}

// Chat performs a non-streaming chat completion.
func (c *Client) Chat(ctx context.Context, req ChatRequest) (*ChatResponse, error) {
	req.Stream = false
	var resp ChatResponse
	if err := c.doJSON(ctx, http.MethodPost, chatCompletionsPath, req, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}
