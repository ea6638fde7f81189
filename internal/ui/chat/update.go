// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package chat

import (
	"context"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/morganforge/deepchat/internal/session"
)

// Update handles all incoming Bubble Tea messages.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {

	case tea.WindowSizeMsg:
		return m.handleResize(msg)

	case tea.KeyMsg:
		return m.handleKey(msg)

	case StreamStartMsg:
		return m, m.spinner.Tick

	case StreamTokenMsg:
		m.streamBuffer.Write(msg.Token)
		return m, nil

	case FlushTickMsg:
		return m.handleFlushTick()

	case StreamCompleteMsg:
		return m.handleStreamComplete(msg)

	case StreamErrorMsg:
		// The synthetic "Error: " reply already carries the details;
		// surface a short status note for the error box.
		m.lastError = &ErrorMsg{Title: "Stream failed", Detail: msg.Error.Error()}
		return m, nil

	case HealthMsg:
		m.backendUp = msg.Running
		return m, nil

	case ConfigReloadedMsg:
		if msg.Config != nil {
			m.ApplyConfig(msg.Config)
		}
		return m, nil

	case ModelsMsg:
		if msg.Models != nil {
			m.models = msg.Models
		}
		if m.pickerIndex >= len(m.models) {
			m.pickerIndex = 0
		}
		return m, nil

	default:
		var cmds []tea.Cmd
		var cmd tea.Cmd

		m.spinner, cmd = m.spinner.Update(msg)
		cmds = append(cmds, cmd)
		m.input, cmd = m.input.Update(msg)
		cmds = append(cmds, cmd)

		return m, tea.Batch(cmds...)
	}
}

// =============================================================================
// RESIZE
// =============================================================================

func (m Model) handleResize(msg tea.WindowSizeMsg) (tea.Model, tea.Cmd) {
	m.width = msg.Width
	m.height = msg.Height
	m.theme.SetSize(msg.Width, msg.Height)

	chromeHeight := 6 // header, input, status bar
	vpHeight := msg.Height - chromeHeight
	if vpHeight < 3 {
		vpHeight = 3
	}

	if !m.ready {
		m.viewport = viewport.New(msg.Width, vpHeight)
		m.ready = true
	} else {
		m.viewport.Width = msg.Width
		m.viewport.Height = vpHeight
	}

	m.input.Width = msg.Width - 6
	m.refreshViewport()
	return m, nil
}

// =============================================================================
// KEY HANDLING
// =============================================================================

func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if key.Matches(msg, m.keyMap.Quit) {
		return m, tea.Quit
	}

	switch m.state {
	case StateConfirmClear, StateConfirmSwitch:
		return m.handleConfirmKey(msg)
	case StatePickModel:
		return m.handlePickerKey(msg)
	case StateStreaming:
		return m.handleStreamingKey(msg)
	}

	// Ready state
	switch {
	case key.Matches(msg, m.keyMap.Submit):
		return m.submitPrompt()

	case key.Matches(msg, m.keyMap.Clear):
		if m.store.IsEmpty() {
			return m, nil
		}
		if err := m.store.RequestClear(); err != nil {
			return m, nil
		}
		m.state = StateConfirmClear
		return m, nil

	case key.Matches(msg, m.keyMap.Models):
		m.state = StatePickModel
		return m, ListModelsCmd(m.client)

	case key.Matches(msg, m.keyMap.Help):
		m.showHelp = !m.showHelp
		return m, nil

	case key.Matches(msg, m.keyMap.Cancel):
		m.lastError = nil
		return m, nil
	}

	var cmds []tea.Cmd
	var cmd tea.Cmd

	m.input, cmd = m.input.Update(msg)
	cmds = append(cmds, cmd)
	m.viewport, cmd = m.viewport.Update(msg)
	cmds = append(cmds, cmd)

	return m, tea.Batch(cmds...)
}

func (m Model) handleConfirmKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "y", "Y", "enter":
		if m.state == StateConfirmClear {
			m.store.ConfirmClear()
		} else {
			m.store.ConfirmSwitch()
		}
		m.state = StateReady
		m.refreshViewport()
	case "n", "N", "esc":
		if m.state == StateConfirmClear {
			m.store.CancelClear()
		} else {
			m.store.CancelSwitch()
		}
		m.state = StateReady
	}
	return m, nil
}

func (m Model) handlePickerKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keyMap.Up):
		if m.pickerIndex > 0 {
			m.pickerIndex--
		}
	case key.Matches(msg, m.keyMap.Down):
		if m.pickerIndex < len(m.models)-1 {
			m.pickerIndex++
		}
	case key.Matches(msg, m.keyMap.Cancel):
		m.state = StateReady
	case key.Matches(msg, m.keyMap.Submit):
		return m.pickModel()
	}
	return m, nil
}

// pickModel applies the highlighted catalog entry. Switching away from
// a non-empty conversation needs confirmation; otherwise it is silent.
func (m Model) pickModel() (tea.Model, tea.Cmd) {
	if len(m.models) == 0 {
		m.state = StateReady
		return m, nil
	}

	selected := m.models[m.pickerIndex]
	switch {
	case selected == m.store.ActiveModel():
		m.state = StateReady
	case m.store.IsEmpty():
		m.store.SetActiveModel(selected)
		m.state = StateReady
	default:
		if err := m.store.RequestSwitch(selected); err != nil {
			m.state = StateReady
			return m, nil
		}
		m.state = StateConfirmSwitch
	}
	return m, nil
}

func (m Model) handleStreamingKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	// Input is rejected during streaming; Esc aborts the stream.
	if key.Matches(msg, m.keyMap.Cancel) && m.cancelStream != nil {
		m.cancelStream()
	}
	return m, nil
}

// =============================================================================
// PROMPT SUBMISSION
// =============================================================================

func (m Model) submitPrompt() (tea.Model, tea.Cmd) {
	text := strings.TrimSpace(m.input.Value())
	if text == "" || m.startStream == nil {
		return m, nil
	}

	// Snapshot excludes the new utterance; BuildPayload appends it.
	snap := m.store.Snapshot()
	if _, err := m.store.AppendUser(text); err != nil {
		return m, nil
	}
	m.input.Reset()

	payload := session.BuildPayload(snap, text, m.defaultModel)
	handle := m.store.BeginAssistantReply(payload.Model)
	m.handle = handle
	m.state = StateStreaming
	m.lastError = nil

	ctx, cancel := context.WithCancel(context.Background())
	m.cancelStream = cancel
	go m.startStream(ctx, payload, handle.MessageID())

	m.refreshViewport()
	return m, tea.Batch(FlushTickCmd(), m.spinner.Tick)
}

// =============================================================================
// STREAM PROGRESS
// =============================================================================

func (m Model) handleFlushTick() (tea.Model, tea.Cmd) {
	if m.state != StateStreaming {
		return m, nil
	}

	if content, ok := m.streamBuffer.Flush(); ok {
		// Stale handle after a clear: drop silently, keep draining.
		_ = m.store.AppendDelta(m.handle, content)
		m.refreshViewport()
	}
	return m, FlushTickCmd()
}

func (m Model) handleStreamComplete(msg StreamCompleteMsg) (tea.Model, tea.Cmd) {
	if remainder := m.streamBuffer.Drain(); remainder != "" {
		_ = m.store.AppendDelta(m.handle, remainder)
	}
	m.store.FinalizeReply(m.handle, msg.Stats)

	m.handle = nil
	if m.cancelStream != nil {
		m.cancelStream()
		m.cancelStream = nil
	}
	m.state = StateReady
	m.refreshViewport()
	return m, nil
}
