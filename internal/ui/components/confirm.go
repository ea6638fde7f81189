// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package components

import (
	"github.com/charmbracelet/lipgloss"

	"github.com/morganforge/deepchat/internal/ui/styles"
)

// =============================================================================
// CONFIRMATION BANNER
// =============================================================================

// ConfirmKind selects the confirmation being requested.
type ConfirmKind int

const (
	// ConfirmClear asks before discarding the conversation.
	ConfirmClear ConfirmKind = iota
	// ConfirmSwitch asks before switching models, which also discards
	// the conversation.
	ConfirmSwitch
)

// ConfirmBanner renders a blocking confirmation prompt.
type ConfirmBanner struct {
	Kind        ConfirmKind
	PendingName string // target model for ConfirmSwitch
	Width       int
	theme       *styles.Theme
}

// NewConfirmBanner creates a confirmation banner.
func NewConfirmBanner(kind ConfirmKind, theme *styles.Theme) *ConfirmBanner {
	return &ConfirmBanner{
		Kind:  kind,
		Width: 60,
		theme: theme,
	}
}

// View renders the banner.
func (c *ConfirmBanner) View() string {
	var title, detail string
	switch c.Kind {
	case ConfirmClear:
		title = "Clear conversation?"
		detail = "All messages will be discarded."
	case ConfirmSwitch:
		title = "Switch to " + c.PendingName + "?"
		detail = "Switching models clears the conversation."
	}

	choices := c.theme.ConfirmChoice.Render("[y]") +
		c.theme.ShortcutDesc.Render(" confirm  ") +
		c.theme.ConfirmChoice.Render("[n]") +
		c.theme.ShortcutDesc.Render(" cancel")

	body := lipgloss.JoinVertical(
		lipgloss.Center,
		c.theme.ConfirmTitle.Render(title),
		detail,
		"",
		choices,
	)

	return c.theme.ConfirmBox.Width(c.Width).Render(body)
}
