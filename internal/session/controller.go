// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package session orchestrates one chat session: it builds requests
// from the conversation store, drives the streaming client, and folds
// results back into the store under a small state machine.
package session

import (
	"context"
	"strings"
	"sync"

	"github.com/morganforge/deepchat/internal/conversation"
	"github.com/morganforge/deepchat/internal/ollama"
)

// ErrInvalidState is returned when an operation arrives in a state
// that does not accept it. Callers should disable the corresponding
// action instead of surfacing this to the user.
var ErrInvalidState = conversation.ErrInvalidState

// =============================================================================
// STATES
// =============================================================================

// State is the controller's position in the session state machine.
type State int

const (
	// StateIdle accepts prompts, clear requests, and model selection.
	StateIdle State = iota
	// StateAwaitingClearConfirm waits for confirm/cancel of a clear.
	StateAwaitingClearConfirm
	// StateAwaitingSwitchConfirm waits for confirm/cancel of a model switch.
	StateAwaitingSwitchConfirm
	// StateStreaming has one reply in flight; all input is rejected.
	StateStreaming
)

// String returns a human-readable state name.
func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateAwaitingClearConfirm:
		return "awaiting clear confirmation"
	case StateAwaitingSwitchConfirm:
		return "awaiting switch confirmation"
	case StateStreaming:
		return "streaming"
	default:
		return "unknown"
	}
}

// =============================================================================
// CONTROLLER
// =============================================================================

// Streamer produces a streamed reply for a chat request. Satisfied by
// *ollama.Client.
type Streamer interface {
	StreamReply(ctx context.Context, request ollama.ChatRequest) <-chan ollama.StreamChunk
}

// Config configures a Controller.
type Config struct {
	// Store holds the conversation state. Required.
	Store *conversation.Store

	// Client opens streaming replies. Required.
	Client Streamer

	// DefaultModel is used when no model has been activated yet.
	DefaultModel string

	// OnDelta is invoked once per received delta with the accumulated
	// reply text so far. Optional.
	OnDelta func(accumulated string)

	// OnStateChange is invoked after every state transition. Optional.
	OnStateChange func(state State)
}

// Controller is the single mutator of its conversation store. All
// operations are serialized; SubmitPrompt holds the session busy until
// the stream ends.
type Controller struct {
	mu sync.Mutex

	store        *conversation.Store
	client       Streamer
	defaultModel string

	state State

	onDelta       func(string)
	onStateChange func(State)
}

// NewController creates a session controller in the idle state.
func NewController(cfg Config) *Controller {
	return &Controller{
		store:         cfg.Store,
		client:        cfg.Client,
		defaultModel:  cfg.DefaultModel,
		state:         StateIdle,
		onDelta:       cfg.OnDelta,
		onStateChange: cfg.OnStateChange,
	}
}

// State returns the current machine state.
func (c *Controller) State() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

// Store exposes the conversation store for rendering.
func (c *Controller) Store() *conversation.Store {
	return c.store
}

func (c *Controller) setState(s State) {
	c.mu.Lock()
	c.state = s
	cb := c.onStateChange
	c.mu.Unlock()

	if cb != nil {
		cb(s)
	}
}

// transition moves from exactly one expected state to the next one.
func (c *Controller) transition(from, to State) error {
	c.mu.Lock()
	if c.state != from {
		c.mu.Unlock()
		return ErrInvalidState
	}
	c.state = to
	cb := c.onStateChange
	c.mu.Unlock()

	if cb != nil {
		cb(to)
	}
	return nil
}

// =============================================================================
// PROMPT SUBMISSION
// =============================================================================

// SubmitPrompt appends the user's utterance, streams the assistant
// reply, and finalizes it into history. Blocks until the stream ends;
// incremental text is delivered through OnDelta. Rejected with
// ErrInvalidState unless the controller is idle.
func (c *Controller) SubmitPrompt(ctx context.Context, text string) error {
	if err := c.transition(StateIdle, StateStreaming); err != nil {
		return err
	}
	defer c.setState(StateIdle)

	// Snapshot before appending so the utterance is not doubled in
	// the payload.
	snap := c.store.Snapshot()

	if _, err := c.store.AppendUser(text); err != nil {
		return err
	}

	payload := BuildPayload(snap, text, c.defaultModel)
	handle := c.store.BeginAssistantReply(payload.Model)

	stats := ollama.NewStatistics()
	var accumulated strings.Builder
	first := true

	for chunk := range c.client.StreamReply(ctx, payload) {
		if chunk.Content != "" {
			if first {
				stats.RecordFirstToken()
				first = false
			}
			// Stale handle means the history was cleared under us;
			// drop the delta and keep draining.
			if err := c.store.AppendDelta(handle, chunk.Content); err == nil {
				accumulated.WriteString(chunk.Content)
				if c.onDelta != nil {
					c.onDelta(accumulated.String())
				}
			}
		}
		if chunk.Done {
			stats.FinalizeFromChunk(chunk)
		}
	}

	c.store.FinalizeReply(handle, stats)
	return nil
}

// =============================================================================
// CONFIRMATION WORKFLOWS
// =============================================================================

// RequestClear begins the clear-history confirmation workflow.
func (c *Controller) RequestClear() error {
	c.mu.Lock()
	if c.state != StateIdle {
		c.mu.Unlock()
		return ErrInvalidState
	}
	if err := c.store.RequestClear(); err != nil {
		c.mu.Unlock()
		return err
	}
	c.state = StateAwaitingClearConfirm
	cb := c.onStateChange
	c.mu.Unlock()

	if cb != nil {
		cb(StateAwaitingClearConfirm)
	}
	return nil
}

// SelectModel chooses a model. With an empty history (or the same
// model) the switch is silent and immediate; otherwise it requires
// confirmation because switching discards the conversation.
func (c *Controller) SelectModel(model string) error {
	c.mu.Lock()
	if c.state != StateIdle {
		c.mu.Unlock()
		return ErrInvalidState
	}
	if model == c.store.ActiveModel() {
		c.mu.Unlock()
		return nil
	}
	if c.store.IsEmpty() {
		c.store.SetActiveModel(model)
		c.mu.Unlock()
		return nil
	}
	if err := c.store.RequestSwitch(model); err != nil {
		c.mu.Unlock()
		return err
	}
	c.state = StateAwaitingSwitchConfirm
	cb := c.onStateChange
	c.mu.Unlock()

	if cb != nil {
		cb(StateAwaitingSwitchConfirm)
	}
	return nil
}

// Confirm completes the pending workflow: clears history, or clears
// and activates the pending model.
func (c *Controller) Confirm() error {
	c.mu.Lock()
	switch c.state {
	case StateAwaitingClearConfirm:
		c.store.ConfirmClear()
	case StateAwaitingSwitchConfirm:
		c.store.ConfirmSwitch()
	default:
		c.mu.Unlock()
		return ErrInvalidState
	}
	c.state = StateIdle
	cb := c.onStateChange
	c.mu.Unlock()

	if cb != nil {
		cb(StateIdle)
	}
	return nil
}

// Cancel abandons the pending workflow without mutating history.
func (c *Controller) Cancel() error {
	c.mu.Lock()
	switch c.state {
	case StateAwaitingClearConfirm:
		c.store.CancelClear()
	case StateAwaitingSwitchConfirm:
		c.store.CancelSwitch()
	default:
		c.mu.Unlock()
		return ErrInvalidState
	}
	c.state = StateIdle
	cb := c.onStateChange
	c.mu.Unlock()

	if cb != nil {
		cb(StateIdle)
	}
	return nil
}

// ClearNow clears history immediately, bypassing confirmation. Safe
// while streaming: the in-flight handle goes stale and its remaining
// deltas are dropped.
func (c *Controller) ClearNow() {
	c.store.Clear()
}
