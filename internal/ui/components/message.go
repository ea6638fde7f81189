// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package components

import (
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"

	"github.com/morganforge/deepchat/internal/conversation"
	"github.com/morganforge/deepchat/internal/ui/styles"
)

// =============================================================================
// MESSAGE BUBBLE COMPONENT
// =============================================================================

// MessageBubble renders one conversation message.
type MessageBubble struct {
	Message   *conversation.Message
	Width     int
	FenceTag  string
	ShowStats bool
	theme     *styles.Theme
}

// NewMessageBubble creates a message bubble with default settings.
func NewMessageBubble(msg *conversation.Message, theme *styles.Theme) *MessageBubble {
	return &MessageBubble{
		Message:   msg,
		Width:     80,
		FenceTag:  "python",
		ShowStats: true,
		theme:     theme,
	}
}

// SetWidth sets the bubble width.
func (b *MessageBubble) SetWidth(width int) {
	b.Width = width
}

// View renders the message bubble.
func (b *MessageBubble) View() string {
	if b.Message == nil {
		return ""
	}

	switch b.Message.Role {
	case conversation.RoleUser:
		return b.renderUser()
	case conversation.RoleAssistant:
		return b.renderAssistant()
	default:
		return ""
	}
}

func (b *MessageBubble) renderUser() string {
	label := b.theme.RoleLabel.Render("You")
	body := b.theme.UserBubble.MaxWidth(b.Width).Render(b.Message.DisplayContent())
	return lipgloss.JoinVertical(lipgloss.Right, label, body)
}

func (b *MessageBubble) renderAssistant() string {
	label := "Assistant"
	if b.Message.Model != "" {
		label += " " + b.theme.ModelBadge.Render(b.Message.Model)
	}

	content := b.Message.DisplayContent()

	// Synthetic error replies get error treatment instead of a bubble
	if strings.HasPrefix(content, "Error: ") {
		body := b.theme.ErrorBubble.MaxWidth(b.Width).Render(content)
		return lipgloss.JoinVertical(lipgloss.Left, b.theme.RoleLabel.Render(label), body)
	}

	rendered := RenderBody(content, b.FenceTag, b.Width-8)
	body := b.theme.AssistantBubble.MaxWidth(b.Width).Render(rendered)

	lines := []string{b.theme.RoleLabel.Render(label), body}
	if b.ShowStats && !b.Message.IsStreaming && b.Message.TokenCount > 0 {
		lines = append(lines, b.theme.StatsLine.Render(b.statsLine()))
	}
	return lipgloss.JoinVertical(lipgloss.Left, lines...)
}

func (b *MessageBubble) statsLine() string {
	var parts []string
	if b.Message.TotalDuration > 0 {
		parts = append(parts, b.Message.TotalDuration.Round(100*time.Millisecond).String())
	}
	if b.Message.TokenCount > 0 {
		parts = append(parts, pluralTokens(b.Message.TokenCount))
	}
	if b.Message.TokensPerSec > 0 {
		parts = append(parts, formatTokPerSec(b.Message.TokensPerSec))
	}
	return strings.Join(parts, " | ")
}
