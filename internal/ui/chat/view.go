// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package chat

import (
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/morganforge/deepchat/internal/ui/components"
	"github.com/morganforge/deepchat/internal/ui/styles"
)

// View renders the complete chat interface.
func (m Model) View() string {
	if !m.ready {
		return "starting deepchat..."
	}

	sections := []string{
		m.renderHeader(),
		m.viewport.View(),
	}

	if overlay := m.renderOverlay(); overlay != "" {
		sections = append(sections, overlay)
	}
	if m.lastError != nil {
		sections = append(sections, m.renderError())
	}

	sections = append(sections,
		m.renderInput(),
		m.renderStatusBar(),
	)

	if m.showHelp {
		sections = append(sections, m.renderHelp())
	}

	return lipgloss.JoinVertical(lipgloss.Left, sections...)
}

// =============================================================================
// HEADER
// =============================================================================

func (m Model) renderHeader() string {
	title := m.theme.HeaderTitle.Render("deepchat")

	model := m.store.ActiveModel()
	if model == "" {
		model = m.defaultModel
	}
	badge := m.theme.ModelBadge.Render(model)

	backend := styles.RenderError("offline")
	if m.backendUp {
		backend = styles.RenderSuccess("connected")
	}

	line := title + "  " + badge + "  " + backend
	return m.theme.Header.Width(m.width).Render(line)
}

// =============================================================================
// MESSAGES
// =============================================================================

// refreshViewport rebuilds the rendered conversation and keeps the
// view pinned to the newest message.
func (m *Model) refreshViewport() {
	if !m.ready {
		return
	}
	m.viewport.SetContent(m.renderMessages())
	m.viewport.GotoBottom()
}

func (m *Model) renderMessages() string {
	history := m.store.History()
	if len(history) == 0 {
		return m.theme.ThinkingText.Render("\n  Start a conversation. Enter sends, Ctrl+P picks a model.\n")
	}

	var blocks []string
	for _, msg := range history {
		bubble := components.NewMessageBubble(msg, m.theme)
		bubble.SetWidth(m.viewport.Width - 2)
		bubble.FenceTag = m.fenceTag
		bubble.ShowStats = m.showStats

		view := bubble.View()
		if msg.IsStreaming && msg.IsEmpty() {
			view = m.spinner.View() + " " + m.theme.ThinkingText.Render("thinking...")
		}
		blocks = append(blocks, view)
	}
	return strings.Join(blocks, "\n\n")
}

// =============================================================================
// OVERLAYS
// =============================================================================

func (m Model) renderOverlay() string {
	switch m.state {
	case StateConfirmClear:
		banner := components.NewConfirmBanner(components.ConfirmClear, m.theme)
		banner.Width = min(m.width-4, 60)
		return banner.View()

	case StateConfirmSwitch:
		banner := components.NewConfirmBanner(components.ConfirmSwitch, m.theme)
		banner.PendingName = m.store.PendingModel()
		banner.Width = min(m.width-4, 60)
		return banner.View()

	case StatePickModel:
		return m.renderPicker()
	}
	return ""
}

func (m Model) renderPicker() string {
	if len(m.models) == 0 {
		body := m.theme.ThinkingText.Render("No models available. Chat uses " + m.defaultModel + ".")
		return m.theme.SelectorBox.Render(body)
	}

	var rows []string
	for i, name := range m.models {
		if i == m.pickerIndex {
			rows = append(rows, m.theme.SelectorSelected.Render("> "+name))
		} else {
			rows = append(rows, m.theme.SelectorItem.Render(name))
		}
	}
	return m.theme.SelectorBox.Render(strings.Join(rows, "\n"))
}

func (m Model) renderError() string {
	title := m.theme.ErrorTitle.Render(m.lastError.Title)
	return m.theme.ErrorBox.Width(m.width - 2).Render(title + ": " + m.lastError.Detail)
}

// =============================================================================
// INPUT AND STATUS
// =============================================================================

func (m Model) renderInput() string {
	prompt := m.theme.InputPrompt.Render("> ")
	if m.state == StateStreaming {
		return m.theme.InputContainer.Width(m.width).Render(
			m.spinner.View() + " " + m.theme.ThinkingText.Render("streaming... Esc to cancel"))
	}
	return m.theme.InputContainer.Width(m.width).Render(prompt + m.input.View())
}

func (m Model) renderStatusBar() string {
	bar := components.NewStatusBar(m.theme)
	bar.Model = m.store.ActiveModel()
	bar.MessageCount = m.store.MessageCount()
	bar.Temperature = m.store.Temperature()
	bar.ContextLength = m.store.ContextLength()
	bar.Width = m.width

	switch m.state {
	case StateStreaming:
		bar.Status = components.StatusStreaming
	case StateConfirmClear, StateConfirmSwitch:
		bar.Status = components.StatusConfirming
	default:
		if m.lastError != nil {
			bar.Status = components.StatusError
		} else {
			bar.Status = components.StatusReady
		}
	}
	return bar.View()
}

func (m Model) renderHelp() string {
	var parts []string
	for _, b := range m.keyMap.ShortHelp() {
		parts = append(parts,
			m.theme.ShortcutKey.Render(b.Help().Key)+" "+
				m.theme.ShortcutDesc.Render(b.Help().Desc))
	}
	return m.theme.StatusBar.Width(m.width).Render(strings.Join(parts, "  "))
}
