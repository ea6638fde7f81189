// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package components

import (
	"strconv"
	"strings"

	"github.com/morganforge/deepchat/internal/ui/styles"
	"github.com/morganforge/deepchat/internal/util"
)

// =============================================================================
// STATUS BAR COMPONENT
// =============================================================================

// Status represents the current session status shown in the bar.
type Status int

const (
	StatusReady Status = iota
	StatusStreaming
	StatusConfirming
	StatusError
)

// String returns the display string for the status.
func (s Status) String() string {
	switch s {
	case StatusReady:
		return "Ready"
	case StatusStreaming:
		return "Streaming..."
	case StatusConfirming:
		return "Confirm?"
	case StatusError:
		return "Error"
	default:
		return "Unknown"
	}
}

// StatusBar renders the bottom status bar with session state.
type StatusBar struct {
	Model         string
	MessageCount  int
	Temperature   float64
	ContextLength int
	Status        Status
	Width         int
	theme         *styles.Theme
}

// NewStatusBar creates a status bar.
func NewStatusBar(theme *styles.Theme) *StatusBar {
	return &StatusBar{
		Width: 80,
		theme: theme,
	}
}

// View renders the status bar.
func (s *StatusBar) View() string {
	model := s.Model
	if model == "" {
		model = "(default)"
	}

	segments := []string{
		s.segment("model", model),
		s.segment("msgs", strconv.Itoa(s.MessageCount)),
		s.segment("temp", strconv.FormatFloat(s.Temperature, 'f', 1, 64)),
		s.segment("ctx", strconv.Itoa(s.ContextLength)),
		s.theme.StatusValue.Render(s.Status.String()),
	}

	line := strings.Join(segments, "  ")
	return s.theme.StatusBar.Render(util.TruncateWidth(line, s.Width))
}

func (s *StatusBar) segment(key, value string) string {
	return s.theme.StatusKey.Render(key+":") + s.theme.StatusValue.Render(value)
}
