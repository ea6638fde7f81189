// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package styles

import (
	"strings"
	"testing"
)

func TestNewTheme(t *testing.T) {
	theme := NewTheme()
	if theme == nil {
		t.Fatal("NewTheme() returned nil")
	}

	// Styles must render without panicking before any size is set
	_ = theme.Header.Render("deepchat")
	_ = theme.UserBubble.Render("hello")
	_ = theme.AssistantBubble.Render("hi there")
	_ = theme.ConfirmBox.Render("clear history?")
}

func TestNewThemeWithMode(t *testing.T) {
	for _, mode := range []string{"dark", "light", "auto"} {
		if theme := NewThemeWithMode(mode); theme == nil {
			t.Errorf("NewThemeWithMode(%q) returned nil", mode)
		}
	}
}

func TestSetSize(t *testing.T) {
	theme := NewTheme()
	theme.SetSize(120, 40)

	if theme.Width != 120 || theme.Height != 40 {
		t.Errorf("SetSize() = %dx%d, want 120x40", theme.Width, theme.Height)
	}
}

func TestRenderHelpers(t *testing.T) {
	if got := RenderError("boom"); !strings.Contains(got, "boom") || !strings.Contains(got, "[X]") {
		t.Errorf("RenderError() = %q", got)
	}
	if got := RenderWarning("careful"); !strings.Contains(got, "[!]") {
		t.Errorf("RenderWarning() = %q", got)
	}
	if got := RenderSuccess("connected"); !strings.Contains(got, "[OK]") {
		t.Errorf("RenderSuccess() = %q", got)
	}
}
