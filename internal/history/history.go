// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package history

import (
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
	_ "modernc.org/sqlite"
)

const dbFileName = "history.db"

// =============================================================================
// TYPES
// =============================================================================

// Chat is one saved chat.
type Chat struct {
	ID        string    `json:"id"`
	Title     string    `json:"title"`
	Model     string    `json:"model"`
	Profile   string    `json:"profile,omitempty"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Message is one turn within a saved chat.
type Message struct {
	ID        string    `json:"id"`
	Role      string    `json:"role"`
	Content   string    `json:"content"`
	CreatedAt time.Time `json:"created_at"`
}

// ChatMeta is the listing shape: chat fields plus the message count.
type ChatMeta struct {
	Chat
	MessageCount int `json:"message_count"`
}

// Transcript is a chat with its messages in order.
type Transcript struct {
	Chat     Chat      `json:"chat"`
	Messages []Message `json:"messages"`
}

// Exchange is one prompt/reply pair recorded after a completed send.
// ChatID appends to an existing chat; empty starts a new one.
type Exchange struct {
	ChatID  string
	Model   string
	Profile string
	Prompt  string
	Reply   string
}

var (
	// ErrChatNotFound is returned when no chat matches the given ID or prefix.
	ErrChatNotFound = errors.New("chat not found")
	// ErrAmbiguousChat is returned when an ID prefix matches more than one chat.
	ErrAmbiguousChat = errors.New("chat ID prefix is ambiguous")
)

// =============================================================================
// STORE
// =============================================================================

// Store is the transcript database handle.
type Store struct {
	db *sql.DB
}

// Open opens (creating if needed) the history database under dir.
func Open(dir string) (*Store, error) {
	if err := os.MkdirAll(dir, 0700); err != nil {
		return nil, fmt.Errorf("failed to create history directory: %w", err)
	}

	db, err := sql.Open("sqlite", filepath.Join(dir, dbFileName))
	if err != nil {
		return nil, fmt.Errorf("failed to open history database: %w", err)
	}
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to open history database: %w", err)
	}

	s := &Store{db: db}
	if err := s.initialize(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to initialize history database: %w", err)
	}
	return s, nil
}

// Close releases the database handle.
func (s *Store) Close() error {
	if s.db != nil {
		return s.db.Close()
	}
	return nil
}

func (s *Store) initialize() error {
	schema := `
	CREATE TABLE IF NOT EXISTS chats (
		id         TEXT PRIMARY KEY,
		title      TEXT NOT NULL,
		model      TEXT NOT NULL,
		profile    TEXT NOT NULL DEFAULT '',
		created_at DATETIME NOT NULL,
		updated_at DATETIME NOT NULL
	);
	CREATE TABLE IF NOT EXISTS messages (
		id         TEXT PRIMARY KEY,
		chat_id    TEXT NOT NULL,
		seq        INTEGER NOT NULL,
		role       TEXT NOT NULL,
		content    TEXT NOT NULL,
		created_at DATETIME NOT NULL
	);
	CREATE INDEX IF NOT EXISTS idx_messages_chat ON messages(chat_id, seq);
	CREATE INDEX IF NOT EXISTS idx_chats_updated ON chats(updated_at);
	`
	_, err := s.db.Exec(schema)
	return err
}

// =============================================================================
// SAVE
// =============================================================================

// SaveExchange records a prompt/reply pair. With an empty ChatID a new
// chat is created and titled from the prompt; otherwise the pair is
// appended to the existing chat (which must be a full chat ID).
func (s *Store) SaveExchange(ex Exchange) (*Chat, error) {
	now := time.Now().UTC()

	tx, err := s.db.Begin()
	if err != nil {
		return nil, err
	}
	defer tx.Rollback()

	var chat Chat
	if ex.ChatID == "" {
		chat = Chat{
			ID:        uuid.NewString(),
			Title:     makeTitle(ex.Prompt),
			Model:     ex.Model,
			Profile:   ex.Profile,
			CreatedAt: now,
			UpdatedAt: now,
		}
		_, err = tx.Exec(
			`INSERT INTO chats (id, title, model, profile, created_at, updated_at) VALUES (?, ?, ?, ?, ?, ?)`,
			chat.ID, chat.Title, chat.Model, chat.Profile, chat.CreatedAt, chat.UpdatedAt,
		)
		if err != nil {
			return nil, err
		}
	} else {
		err = tx.QueryRow(
			`SELECT id, title, model, profile, created_at, updated_at FROM chats WHERE id = ?`,
			ex.ChatID,
		).Scan(&chat.ID, &chat.Title, &chat.Model, &chat.Profile, &chat.CreatedAt, &chat.UpdatedAt)
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("%w: %s", ErrChatNotFound, ex.ChatID)
		}
		if err != nil {
			return nil, err
		}
		chat.UpdatedAt = now
		if _, err := tx.Exec(`UPDATE chats SET updated_at = ? WHERE id = ?`, now, chat.ID); err != nil {
			return nil, err
		}
	}

	var seq int
	if err := tx.QueryRow(`SELECT COALESCE(MAX(seq), 0) FROM messages WHERE chat_id = ?`, chat.ID).Scan(&seq); err != nil {
		return nil, err
	}

	insert := `INSERT INTO messages (id, chat_id, seq, role, content, created_at) VALUES (?, ?, ?, ?, ?, ?)`
	if _, err := tx.Exec(insert, uuid.NewString(), chat.ID, seq+1, "user", ex.Prompt, now); err != nil {
		return nil, err
	}
	if _, err := tx.Exec(insert, uuid.NewString(), chat.ID, seq+2, "assistant", ex.Reply, now); err != nil {
		return nil, err
	}

	if err := tx.Commit(); err != nil {
		return nil, err
	}
	return &chat, nil
}

// makeTitle derives a chat title from the first prompt.
// UNICODE: rune-based truncation so multibyte prompts don't get split.
func makeTitle(prompt string) string {
	title := strings.ReplaceAll(prompt, "\n", " ")
	title = strings.ReplaceAll(title, "\r", "")
	title = strings.TrimSpace(title)
	if title == "" {
		return "New chat"
	}
	runes := []rune(title)
	if len(runes) > 50 {
		return string(runes[:47]) + "..."
	}
	return title
}

// =============================================================================
// LIST / GET
// =============================================================================

const chatColumns = `c.id, c.title, c.model, c.profile, c.created_at, c.updated_at,
	(SELECT COUNT(*) FROM messages m WHERE m.chat_id = c.id)`

// ListChats returns all saved chats, most recently updated first.
func (s *Store) ListChats() ([]ChatMeta, error) {
	rows, err := s.db.Query(`SELECT ` + chatColumns + ` FROM chats c ORDER BY c.updated_at DESC, c.id`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanMetas(rows)
}

// SearchChats returns chats whose title or message content contains the
// query, case-insensitively. An empty query lists everything.
func (s *Store) SearchChats(query string) ([]ChatMeta, error) {
	if query == "" {
		return s.ListChats()
	}

	rows, err := s.db.Query(`SELECT `+chatColumns+` FROM chats c
		WHERE instr(lower(c.title), lower(?)) > 0
		   OR EXISTS (
			SELECT 1 FROM messages m
			WHERE m.chat_id = c.id AND instr(lower(m.content), lower(?)) > 0
		   )
		ORDER BY c.updated_at DESC, c.id`, query, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanMetas(rows)
}

func scanMetas(rows *sql.Rows) ([]ChatMeta, error) {
	var metas []ChatMeta
	for rows.Next() {
		var m ChatMeta
		if err := rows.Scan(&m.ID, &m.Title, &m.Model, &m.Profile, &m.CreatedAt, &m.UpdatedAt, &m.MessageCount); err != nil {
			return nil, err
		}
		metas = append(metas, m)
	}
	return metas, rows.Err()
}

// ResolveChatID expands a full ID or unique prefix to the stored chat ID.
func (s *Store) ResolveChatID(idOrPrefix string) (string, error) {
	if idOrPrefix == "" {
		return "", fmt.Errorf("%w: empty ID", ErrChatNotFound)
	}

	var id string
	err := s.db.QueryRow(`SELECT id FROM chats WHERE id = ?`, idOrPrefix).Scan(&id)
	if err == nil {
		return id, nil
	}
	if !errors.Is(err, sql.ErrNoRows) {
		return "", err
	}

	rows, err := s.db.Query(`SELECT id FROM chats WHERE id LIKE ? || '%' LIMIT 2`, idOrPrefix)
	if err != nil {
		return "", err
	}
	defer rows.Close()

	var matches []string
	for rows.Next() {
		var m string
		if err := rows.Scan(&m); err != nil {
			return "", err
		}
		matches = append(matches, m)
	}
	if err := rows.Err(); err != nil {
		return "", err
	}

	switch len(matches) {
	case 0:
		return "", fmt.Errorf("%w: %s", ErrChatNotFound, idOrPrefix)
	case 1:
		return matches[0], nil
	default:
		return "", fmt.Errorf("%w: %s", ErrAmbiguousChat, idOrPrefix)
	}
}

// GetChat loads a chat and its messages by full ID or unique prefix.
func (s *Store) GetChat(idOrPrefix string) (*Transcript, error) {
	id, err := s.ResolveChatID(idOrPrefix)
	if err != nil {
		return nil, err
	}

	var chat Chat
	err = s.db.QueryRow(
		`SELECT id, title, model, profile, created_at, updated_at FROM chats WHERE id = ?`, id,
	).Scan(&chat.ID, &chat.Title, &chat.Model, &chat.Profile, &chat.CreatedAt, &chat.UpdatedAt)
	if err != nil {
		return nil, err
	}

	rows, err := s.db.Query(
		`SELECT id, role, content, created_at FROM messages WHERE chat_id = ? ORDER BY seq`, id,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	tr := &Transcript{Chat: chat}
	for rows.Next() {
		var m Message
		if err := rows.Scan(&m.ID, &m.Role, &m.Content, &m.CreatedAt); err != nil {
			return nil, err
		}
		tr.Messages = append(tr.Messages, m)
	}
	return tr, rows.Err()
}

// =============================================================================
// DELETE
// =============================================================================

// DeleteChat removes a chat and its messages by full ID or unique prefix.
func (s *Store) DeleteChat(idOrPrefix string) error {
	id, err := s.ResolveChatID(idOrPrefix)
	if err != nil {
		return err
	}

	tx, err := s.db.Begin()
	if err != nil {
		return err
	}
	defer tx.Rollback()

	if _, err := tx.Exec(`DELETE FROM messages WHERE chat_id = ?`, id); err != nil {
		return err
	}
	if _, err := tx.Exec(`DELETE FROM chats WHERE id = ?`, id); err != nil {
		return err
	}
	return tx.Commit()
}

// Clear removes every saved chat.
func (s *Store) Clear() error {
	tx, err := s.db.Begin()
	if err != nil {
		return err
	}
	defer tx.Rollback()

	if _, err := tx.Exec(`DELETE FROM messages`); err != nil {
		return err
	}
	if _, err := tx.Exec(`DELETE FROM chats`); err != nil {
		return err
	}
	return tx.Commit()
}

// =============================================================================
// EXPORT
// =============================================================================

// ExportMarkdown renders the transcript as Markdown with role labels
// and timestamps.
func (t *Transcript) ExportMarkdown() string {
	var sb strings.Builder
	sb.WriteString("# " + t.Chat.Title + "\n\n")
	sb.WriteString("Chat: " + t.Chat.ID + "\n")
	sb.WriteString("Model: " + t.Chat.Model + "\n")
	sb.WriteString("Created: " + t.Chat.CreatedAt.Format(time.RFC3339) + "\n\n")
	sb.WriteString("---\n\n")

	for _, msg := range t.Messages {
		role := "**User**"
		switch msg.Role {
		case "assistant":
			role = "**Assistant**"
		case "system":
			role = "**System**"
		}
		sb.WriteString(role + " (" + msg.CreatedAt.Format("15:04") + "):\n\n")
		sb.WriteString(msg.Content)
		sb.WriteString("\n\n---\n\n")
	}
	return sb.String()
}
