// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package history persists chat transcripts saved with `owui chat send --save`.
//
// Transcripts live in a SQLite database next to the config file, one
// row per chat plus one row per message. Saving is explicit: nothing is
// recorded unless the user asked for it.
//
// # Key Types
//
//   - Store: database handle with the chat operations
//   - Chat: one saved chat (title, model, profile, timestamps)
//   - Transcript: a chat together with its ordered messages
//
// # Usage
//
// Record an exchange and list what is stored:
//
//	store, err := history.Open(dir)
//	chat, err := store.SaveExchange(history.Exchange{Model: model, Prompt: p, Reply: r})
//	metas, err := store.ListChats()
//
// Chat IDs may be abbreviated to any unique prefix:
//
//	tr, err := store.GetChat("3f2a")
//
// # Storage Location
//
// The database is <config dir>/history.db.
package history
