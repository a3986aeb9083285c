// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package history

import (
	"errors"
	"strings"
	"testing"
	"time"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	store, err := Open(t.TempDir())
	if err != nil {
		t.Fatalf("Open() error: %v", err)
	}
	t.Cleanup(func() { store.Close() })
	return store
}

// insertChat seeds a chat row directly so ID-dependent tests are deterministic.
func insertChat(t *testing.T, s *Store, id, title string) {
	t.Helper()
	now := time.Now().UTC()
	_, err := s.db.Exec(
		`INSERT INTO chats (id, title, model, profile, created_at, updated_at) VALUES (?, ?, 'm', '', ?, ?)`,
		id, title, now, now,
	)
	if err != nil {
		t.Fatalf("insertChat: %v", err)
	}
}

func TestSaveExchange_NewChat(t *testing.T) {
	store := newTestStore(t)

	chat, err := store.SaveExchange(Exchange{
		Model:   "llama3",
		Profile: "default",
		Prompt:  "What is a goroutine?",
		Reply:   "A lightweight thread managed by the Go runtime.",
	})
	if err != nil {
		t.Fatalf("SaveExchange() error: %v", err)
	}
	if chat.ID == "" {
		t.Fatal("chat ID is empty")
	}
	if chat.Title != "What is a goroutine?" {
		t.Errorf("Title = %q", chat.Title)
	}
	if chat.Model != "llama3" {
		t.Errorf("Model = %q", chat.Model)
	}

	tr, err := store.GetChat(chat.ID)
	if err != nil {
		t.Fatalf("GetChat() error: %v", err)
	}
	if len(tr.Messages) != 2 {
		t.Fatalf("message count = %d, want 2", len(tr.Messages))
	}
	if tr.Messages[0].Role != "user" || tr.Messages[0].Content != "What is a goroutine?" {
		t.Errorf("first message = %s %q", tr.Messages[0].Role, tr.Messages[0].Content)
	}
	if tr.Messages[1].Role != "assistant" {
		t.Errorf("second message role = %q, want assistant", tr.Messages[1].Role)
	}
}

func TestSaveExchange_AppendsToExistingChat(t *testing.T) {
	store := newTestStore(t)

	chat, err := store.SaveExchange(Exchange{Model: "llama3", Prompt: "First question", Reply: "First answer"})
	if err != nil {
		t.Fatalf("SaveExchange() error: %v", err)
	}

	again, err := store.SaveExchange(Exchange{
		ChatID: chat.ID,
		Model:  "llama3",
		Prompt: "Follow-up question",
		Reply:  "Follow-up answer",
	})
	if err != nil {
		t.Fatalf("SaveExchange(append) error: %v", err)
	}
	if again.ID != chat.ID {
		t.Errorf("appended chat ID = %q, want %q", again.ID, chat.ID)
	}
	if again.Title != chat.Title {
		t.Errorf("append changed title to %q", again.Title)
	}

	tr, err := store.GetChat(chat.ID)
	if err != nil {
		t.Fatalf("GetChat() error: %v", err)
	}
	if len(tr.Messages) != 4 {
		t.Fatalf("message count = %d, want 4", len(tr.Messages))
	}
	wantOrder := []string{"First question", "First answer", "Follow-up question", "Follow-up answer"}
	for i, want := range wantOrder {
		if tr.Messages[i].Content != want {
			t.Errorf("message[%d] = %q, want %q", i, tr.Messages[i].Content, want)
		}
	}
}

func TestSaveExchange_MissingChatFails(t *testing.T) {
	store := newTestStore(t)

	_, err := store.SaveExchange(Exchange{ChatID: "no-such-chat", Prompt: "p", Reply: "r"})
	if !errors.Is(err, ErrChatNotFound) {
		t.Errorf("error = %v, want ErrChatNotFound", err)
	}
}

func TestMakeTitle(t *testing.T) {
	long := strings.Repeat("a", 60)

	tests := []struct {
		name   string
		prompt string
		want   string
	}{
		{name: "short prompt kept", prompt: "Hello there", want: "Hello there"},
		{name: "long prompt truncated", prompt: long, want: strings.Repeat("a", 47) + "..."},
		{name: "newlines collapsed", prompt: "line one\nline two", want: "line one line two"},
		{name: "empty prompt", prompt: "", want: "New chat"},
		{name: "whitespace only", prompt: "  \n  ", want: "New chat"},
		{name: "unicode safe", prompt: strings.Repeat("日", 60), want: strings.Repeat("日", 47) + "..."},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			if got := makeTitle(tc.prompt); got != tc.want {
				t.Errorf("makeTitle(%q) = %q, want %q", tc.prompt, got, tc.want)
			}
		})
	}
}

func TestListChats_MostRecentFirst(t *testing.T) {
	store := newTestStore(t)

	first, err := store.SaveExchange(Exchange{Model: "m", Prompt: "older chat", Reply: "r"})
	if err != nil {
		t.Fatal(err)
	}
	time.Sleep(10 * time.Millisecond)
	second, err := store.SaveExchange(Exchange{Model: "m", Prompt: "newer chat", Reply: "r"})
	if err != nil {
		t.Fatal(err)
	}

	metas, err := store.ListChats()
	if err != nil {
		t.Fatalf("ListChats() error: %v", err)
	}
	if len(metas) != 2 {
		t.Fatalf("chat count = %d, want 2", len(metas))
	}
	if metas[0].ID != second.ID || metas[1].ID != first.ID {
		t.Errorf("order = [%s %s], want newest first", metas[0].Title, metas[1].Title)
	}
	if metas[0].MessageCount != 2 {
		t.Errorf("MessageCount = %d, want 2", metas[0].MessageCount)
	}

	// Appending to the older chat moves it to the front.
	time.Sleep(10 * time.Millisecond)
	if _, err := store.SaveExchange(Exchange{ChatID: first.ID, Prompt: "p", Reply: "r"}); err != nil {
		t.Fatal(err)
	}
	metas, err = store.ListChats()
	if err != nil {
		t.Fatal(err)
	}
	if metas[0].ID != first.ID {
		t.Errorf("appended chat not first, got %q", metas[0].Title)
	}
	if metas[0].MessageCount != 4 {
		t.Errorf("MessageCount after append = %d, want 4", metas[0].MessageCount)
	}
}

func TestResolveChatID(t *testing.T) {
	store := newTestStore(t)
	insertChat(t, store, "abc111", "one")
	insertChat(t, store, "abc222", "two")
	insertChat(t, store, "xyz333", "three")

	tests := []struct {
		name    string
		query   string
		want    string
		wantErr error
	}{
		{name: "exact match", query: "abc111", want: "abc111"},
		{name: "unique prefix", query: "xy", want: "xyz333"},
		{name: "ambiguous prefix", query: "abc", wantErr: ErrAmbiguousChat},
		{name: "no match", query: "qqq", wantErr: ErrChatNotFound},
		{name: "empty", query: "", wantErr: ErrChatNotFound},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			got, err := store.ResolveChatID(tc.query)
			if tc.wantErr != nil {
				if !errors.Is(err, tc.wantErr) {
					t.Fatalf("error = %v, want %v", err, tc.wantErr)
				}
				return
			}
			if err != nil {
				t.Fatalf("ResolveChatID(%q) error: %v", tc.query, err)
			}
			if got != tc.want {
				t.Errorf("ResolveChatID(%q) = %q, want %q", tc.query, got, tc.want)
			}
		})
	}
}

func TestDeleteChat(t *testing.T) {
	store := newTestStore(t)

	keep, err := store.SaveExchange(Exchange{Model: "m", Prompt: "keep me", Reply: "r"})
	if err != nil {
		t.Fatal(err)
	}
	drop, err := store.SaveExchange(Exchange{Model: "m", Prompt: "drop me", Reply: "r"})
	if err != nil {
		t.Fatal(err)
	}

	if err := store.DeleteChat(drop.ID); err != nil {
		t.Fatalf("DeleteChat() error: %v", err)
	}

	if _, err := store.GetChat(drop.ID); !errors.Is(err, ErrChatNotFound) {
		t.Errorf("GetChat(deleted) error = %v, want ErrChatNotFound", err)
	}
	if err := store.DeleteChat(drop.ID); !errors.Is(err, ErrChatNotFound) {
		t.Errorf("second delete error = %v, want ErrChatNotFound", err)
	}

	tr, err := store.GetChat(keep.ID)
	if err != nil {
		t.Fatalf("GetChat(kept) error: %v", err)
	}
	if len(tr.Messages) != 2 {
		t.Errorf("kept chat message count = %d, want 2", len(tr.Messages))
	}
}

func TestSearchChats(t *testing.T) {
	store := newTestStore(t)

	if _, err := store.SaveExchange(Exchange{Model: "m", Prompt: "Deploying with Kubernetes", Reply: "Use a manifest."}); err != nil {
		t.Fatal(err)
	}
	if _, err := store.SaveExchange(Exchange{Model: "m", Prompt: "Recipe ideas", Reply: "Try carbonara with GUANCIALE."}); err != nil {
		t.Fatal(err)
	}

	byTitle, err := store.SearchChats("kubernetes")
	if err != nil {
		t.Fatalf("SearchChats() error: %v", err)
	}
	if len(byTitle) != 1 || byTitle[0].Title != "Deploying with Kubernetes" {
		t.Errorf("title search found %d results", len(byTitle))
	}

	// Case-insensitive match on message content.
	byContent, err := store.SearchChats("guanciale")
	if err != nil {
		t.Fatal(err)
	}
	if len(byContent) != 1 || byContent[0].Title != "Recipe ideas" {
		t.Errorf("content search found %d results", len(byContent))
	}

	all, err := store.SearchChats("")
	if err != nil {
		t.Fatal(err)
	}
	if len(all) != 2 {
		t.Errorf("empty query found %d results, want 2", len(all))
	}

	none, err := store.SearchChats("zebra")
	if err != nil {
		t.Fatal(err)
	}
	if len(none) != 0 {
		t.Errorf("miss query found %d results, want 0", len(none))
	}
}

func TestClear(t *testing.T) {
	store := newTestStore(t)

	if _, err := store.SaveExchange(Exchange{Model: "m", Prompt: "p", Reply: "r"}); err != nil {
		t.Fatal(err)
	}
	if err := store.Clear(); err != nil {
		t.Fatalf("Clear() error: %v", err)
	}

	metas, err := store.ListChats()
	if err != nil {
		t.Fatal(err)
	}
	if len(metas) != 0 {
		t.Errorf("chat count after Clear = %d, want 0", len(metas))
	}
}

func TestTranscript_ExportMarkdown(t *testing.T) {
	store := newTestStore(t)

	chat, err := store.SaveExchange(Exchange{
		Model:  "llama3",
		Prompt: "Say hello",
		Reply:  "Hello!",
	})
	if err != nil {
		t.Fatal(err)
	}

	tr, err := store.GetChat(chat.ID)
	if err != nil {
		t.Fatal(err)
	}

	md := tr.ExportMarkdown()
	for _, want := range []string{"# Say hello", "Chat: " + chat.ID, "Model: llama3", "**User**", "**Assistant**", "Say hello", "Hello!"} {
		if !strings.Contains(md, want) {
			t.Errorf("markdown missing %q", want)
		}
	}
}
