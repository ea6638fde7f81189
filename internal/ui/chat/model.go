// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package chat provides the chat view component for the TUI.
package chat

import (
	"context"

	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/morganforge/deepchat/internal/config"
	"github.com/morganforge/deepchat/internal/conversation"
	"github.com/morganforge/deepchat/internal/ollama"
	"github.com/morganforge/deepchat/internal/ui/styles"
)

// =============================================================================
// VIEW STATE
// =============================================================================

// State represents the current state of the chat view. It mirrors the
// session state machine: input is accepted only when ready, and each
// confirmation blocks everything else until resolved.
type State int

const (
	StateReady         State = iota // Accepting input
	StateStreaming                  // Receiving a streamed reply
	StateConfirmClear               // Waiting on clear confirmation
	StateConfirmSwitch              // Waiting on model switch confirmation
	StatePickModel                  // Model selector open
)

// StartStreamFunc launches one streaming exchange on its own
// goroutine. Wired to StreamRunner.Run by the program entry point.
type StartStreamFunc func(ctx context.Context, payload ollama.ChatRequest, messageID string)

// =============================================================================
// CHAT MODEL
// =============================================================================

// Model is the Bubble Tea model for the chat view.
type Model struct {
	// State
	state State

	// Styling
	theme *styles.Theme

	// Dimensions
	width  int
	height int

	// Session state
	store        *conversation.Store
	handle       *conversation.ReplyHandle
	defaultModel string

	// Streaming
	streamBuffer *StreamingBuffer
	startStream  StartStreamFunc
	cancelStream context.CancelFunc

	// Backend
	client    *ollama.Client
	backendUp bool

	// Model catalog
	models      []string
	pickerIndex int

	// Display configuration
	fenceTag  string
	showStats bool

	// UI components
	viewport viewport.Model
	input    textinput.Model
	spinner  spinner.Model
	keyMap   KeyMap

	// Error state
	lastError *ErrorMsg
	showHelp  bool

	ready bool
}

// New creates the chat model.
func New(cfg *config.Config, client *ollama.Client, store *conversation.Store) Model {
	input := textinput.New()
	input.Placeholder = "Ask anything..."
	input.CharLimit = 4000
	input.Focus()

	sp := spinner.New()
	sp.Spinner = spinner.Dot

	store.SetParameters(cfg.Generation.Temperature, cfg.Generation.ContextLength)

	return Model{
		state:        StateReady,
		theme:        styles.NewThemeWithMode(cfg.UI.Theme),
		store:        store,
		defaultModel: cfg.Ollama.DefaultModel,
		streamBuffer: NewStreamingBuffer(),
		client:       client,
		fenceTag:     cfg.UI.FenceTag,
		showStats:    cfg.UI.ShowStats,
		input:        input,
		spinner:      sp,
		keyMap:       DefaultKeyMap(),
	}
}

// SetStartStream wires the stream launcher. Must be called before the
// first prompt is submitted.
func (m *Model) SetStartStream(fn StartStreamFunc) {
	m.startStream = fn
}

// State returns the current view state.
func (m Model) State() State {
	return m.state
}

// Store returns the conversation store backing this view.
func (m Model) Store() *conversation.Store {
	return m.store
}

// Init starts background probes and input blinking.
func (m Model) Init() tea.Cmd {
	return tea.Batch(
		textinput.Blink,
		CheckHealthCmd(m.client),
		ListModelsCmd(m.client),
	)
}

// ApplyConfig folds a reloaded configuration into the running session.
// Generation parameters take effect on the next request.
func (m *Model) ApplyConfig(cfg *config.Config) {
	m.store.SetParameters(cfg.Generation.Temperature, cfg.Generation.ContextLength)
	m.fenceTag = cfg.UI.FenceTag
	m.showStats = cfg.UI.ShowStats
	m.defaultModel = cfg.Ollama.DefaultModel
}
