// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package conversation contains the data structures for the chat session.
package conversation

import (
	"errors"
	"sync"

	"github.com/morganforge/deepchat/internal/ollama"
)

// Sentinel errors for store operations.
var (
	// ErrInvalidState is returned when an operation is attempted while a
	// clear or switch confirmation is pending.
	ErrInvalidState = errors.New("operation not allowed while a confirmation is pending")

	// ErrStaleHandle is returned when a reply handle refers to a
	// conversation generation that has since been cleared.
	ErrStaleHandle = errors.New("reply handle is stale")
)

// Parameter bounds. Writes outside these ranges are clamped, never rejected.
const (
	TemperatureMin = 0.0
	TemperatureMax = 1.0

	ContextLengthMin = 512
	ContextLengthMax = 8192

	DefaultTemperature   = 0.7
	DefaultContextLength = 4096
)

// =============================================================================
// REPLY HANDLE
// =============================================================================

// ReplyHandle is an opaque reference to an in-progress assistant message.
// A handle is invalidated when the conversation is cleared; deltas applied
// through a stale handle are dropped instead of resurrecting cleared history.
type ReplyHandle struct {
	msg        *Message
	generation uint64
}

// MessageID returns the ID of the message this handle mutates.
func (h *ReplyHandle) MessageID() string {
	if h == nil || h.msg == nil {
		return ""
	}
	return h.msg.ID
}

// =============================================================================
// STORE
// =============================================================================

// Store owns the ordered message history and the active-model and parameter
// state for one chat session. All mutating operations are serialized behind
// a mutex; the access pattern is already serial per session, the lock just
// keeps the streaming goroutine and the UI loop honest.
type Store struct {
	mu sync.Mutex

	messages []*Message

	activeModel  string
	pendingModel string

	pendingClear  bool
	pendingSwitch bool

	temperature   float64
	contextLength int

	// generation increments on every clear; outstanding reply handles
	// carry the generation they were created under.
	generation uint64
}

// NewStore creates an empty store with default generation parameters.
func NewStore() *Store {
	return &Store{
		temperature:   DefaultTemperature,
		contextLength: DefaultContextLength,
	}
}

// =============================================================================
// MESSAGE OPERATIONS
// =============================================================================

// AppendUser appends a user message to the history.
// Fails with ErrInvalidState while a clear or switch confirmation is pending.
func (s *Store) AppendUser(text string) (*Message, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.pendingClear || s.pendingSwitch {
		return nil, ErrInvalidState
	}

	msg := NewUserMessage(text)
	s.messages = append(s.messages, msg)
	return msg, nil
}

// BeginAssistantReply appends an empty assistant message tagged with model
// and returns a handle for incremental mutation. The active model is fixed
// to the given model if it was not set yet.
func (s *Store) BeginAssistantReply(model string) *ReplyHandle {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.activeModel == "" {
		s.activeModel = model
	}

	msg := NewAssistantMessage(model)
	s.messages = append(s.messages, msg)
	return &ReplyHandle{msg: msg, generation: s.generation}
}

// AppendDelta appends text to the in-progress message behind the handle.
// A stale handle (the conversation was cleared mid-stream) drops the delta
// and reports ErrStaleHandle.
func (s *Store) AppendDelta(h *ReplyHandle, text string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if h == nil || h.msg == nil || h.generation != s.generation {
		return ErrStaleHandle
	}

	h.msg.AppendToken(text)
	return nil
}

// FinalizeReply freezes the message behind the handle and records the
// generation statistics. No-op when the handle is stale or the message is
// already finalized.
func (s *Store) FinalizeReply(h *ReplyHandle, stats *ollama.Statistics) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if h == nil || h.msg == nil || h.generation != s.generation {
		return
	}

	h.msg.FinalizeStream(stats)
}

// Clear empties the history, unsets the active model, and drops any pending
// confirmation. Outstanding reply handles become stale.
func (s *Store) Clear() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.clearLocked()
}

func (s *Store) clearLocked() {
	s.messages = nil
	s.activeModel = ""
	s.pendingModel = ""
	s.pendingClear = false
	s.pendingSwitch = false
	s.generation++
}

// =============================================================================
// CONFIRMATION FLAGS
// =============================================================================

// RequestClear marks a clear confirmation as pending.
// Fails with ErrInvalidState while a switch confirmation is pending; the two
// flags are mutually exclusive.
func (s *Store) RequestClear() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.pendingSwitch {
		return ErrInvalidState
	}
	s.pendingClear = true
	return nil
}

// ConfirmClear clears the conversation and resets the pending flag.
func (s *Store) ConfirmClear() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.clearLocked()
}

// CancelClear drops the pending clear confirmation.
func (s *Store) CancelClear() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.pendingClear = false
}

// RequestSwitch marks a model switch to model as pending confirmation.
// Fails with ErrInvalidState while a clear confirmation is pending.
func (s *Store) RequestSwitch(model string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.pendingClear {
		return ErrInvalidState
	}
	s.pendingSwitch = true
	s.pendingModel = model
	return nil
}

// ConfirmSwitch clears the conversation and activates the pending model.
// A confirmed switch always starts a fresh history, so the active model is
// never changed under a non-empty conversation.
func (s *Store) ConfirmSwitch() {
	s.mu.Lock()
	defer s.mu.Unlock()

	model := s.pendingModel
	s.clearLocked()
	s.activeModel = model
}

// CancelSwitch reverts the pending model selection.
func (s *Store) CancelSwitch() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.pendingSwitch = false
	s.pendingModel = ""
}

// =============================================================================
// PARAMETERS
// =============================================================================

// SetParameters clamps and stores the generation parameters.
func (s *Store) SetParameters(temperature float64, contextLength int) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.temperature = clampFloat(temperature, TemperatureMin, TemperatureMax)
	s.contextLength = clampInt(contextLength, ContextLengthMin, ContextLengthMax)
}

// SetActiveModel fixes the active model when none is set yet.
// Used for silent switches while the history is empty.
func (s *Store) SetActiveModel(model string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if len(s.messages) == 0 {
		s.activeModel = model
	}
}

// =============================================================================
// ACCESSORS
// =============================================================================

// Snapshot is an immutable view of the session state sufficient to build an
// outbound request. Building a payload from equal snapshots is deterministic.
type Snapshot struct {
	Messages      []ollama.Message
	ActiveModel   string
	Temperature   float64
	ContextLength int
}

// Snapshot returns a copy of the current session state in wire form.
func (s *Store) Snapshot() Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()

	wire := make([]ollama.Message, 0, len(s.messages))
	for _, m := range s.messages {
		wire = append(wire, m.ToWire())
	}

	return Snapshot{
		Messages:      wire,
		ActiveModel:   s.activeModel,
		Temperature:   s.temperature,
		ContextLength: s.contextLength,
	}
}

// History returns the messages for display, in conversation order.
func (s *Store) History() []*Message {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make([]*Message, len(s.messages))
	copy(out, s.messages)
	return out
}

// MessageCount returns the number of messages in the history.
func (s *Store) MessageCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.messages)
}

// IsEmpty returns true if there are no messages.
func (s *Store) IsEmpty() bool {
	return s.MessageCount() == 0
}

// ActiveModel returns the model bound to the current history, or "" when
// no message has been appended yet.
func (s *Store) ActiveModel() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.activeModel
}

// PendingModel returns the model awaiting switch confirmation.
func (s *Store) PendingModel() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.pendingModel
}

// IsClearPending reports whether a clear confirmation is pending.
func (s *Store) IsClearPending() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.pendingClear
}

// IsSwitchPending reports whether a switch confirmation is pending.
func (s *Store) IsSwitchPending() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.pendingSwitch
}

// Temperature returns the clamped sampling temperature.
func (s *Store) Temperature() float64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.temperature
}

// ContextLength returns the clamped context window size.
func (s *Store) ContextLength() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.contextLength
}

// =============================================================================
// HELPERS
// =============================================================================

func clampFloat(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

func clampInt(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
