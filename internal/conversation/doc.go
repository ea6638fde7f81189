// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package conversation contains the data structures for the chat session.
//
// The Store owns the ordered message history plus the active-model and
// generation-parameter state for one session. It enforces the session
// invariants: a clear or switch confirmation blocks new input, the pending
// flags are mutually exclusive, temperature and context length are clamped
// on every write, and the active model is fixed for the lifetime of a
// non-empty history.
//
// # Key Types
//
//   - Store: serialized owner of the session state
//   - Message: single message; assistant messages stream then freeze
//   - ReplyHandle: opaque reference to an in-progress assistant message,
//     invalidated by clearing the history
//
// # Usage
//
//	store := conversation.NewStore()
//	store.AppendUser("Hello!")
//	h := store.BeginAssistantReply("deepseek-r1:14b")
//	store.AppendDelta(h, "Hi ")
//	store.AppendDelta(h, "there.")
//	store.FinalizeReply(h, stats)
package conversation
