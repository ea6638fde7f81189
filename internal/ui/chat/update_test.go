// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package chat

import (
	"context"
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/morganforge/deepchat/internal/config"
	"github.com/morganforge/deepchat/internal/conversation"
	"github.com/morganforge/deepchat/internal/ollama"
)

func newTestModel(t *testing.T) Model {
	t.Helper()

	m := New(config.Default(), ollama.NewClient(), conversation.NewStore())
	m.SetStartStream(func(ctx context.Context, payload ollama.ChatRequest, messageID string) {})

	updated, _ := m.Update(tea.WindowSizeMsg{Width: 100, Height: 30})
	return updated.(Model)
}

func keyMsg(s string) tea.KeyMsg {
	switch s {
	case "enter":
		return tea.KeyMsg{Type: tea.KeyEnter}
	case "esc":
		return tea.KeyMsg{Type: tea.KeyEsc}
	case "ctrl+l":
		return tea.KeyMsg{Type: tea.KeyCtrlL}
	case "ctrl+p":
		return tea.KeyMsg{Type: tea.KeyCtrlP}
	default:
		return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
	}
}

func TestModel_StartsReady(t *testing.T) {
	m := newTestModel(t)

	if m.State() != StateReady {
		t.Errorf("State() = %v, want ready", m.State())
	}
	if !m.ready {
		t.Error("viewport not initialized after resize")
	}
}

func TestModel_SubmitEntersStreaming(t *testing.T) {
	m := newTestModel(t)
	m.input.SetValue("hello")

	updated, _ := m.Update(keyMsg("enter"))
	m = updated.(Model)

	if m.State() != StateStreaming {
		t.Errorf("State() = %v, want streaming", m.State())
	}
	if m.Store().MessageCount() != 2 {
		t.Errorf("MessageCount() = %d, want user + pending assistant", m.Store().MessageCount())
	}
	if m.input.Value() != "" {
		t.Error("input not cleared after submit")
	}
}

func TestModel_EmptySubmitIgnored(t *testing.T) {
	m := newTestModel(t)
	m.input.SetValue("   ")

	updated, _ := m.Update(keyMsg("enter"))
	m = updated.(Model)

	if m.State() != StateReady || m.Store().MessageCount() != 0 {
		t.Error("blank prompt should be a no-op")
	}
}

func TestModel_SubmitRejectedWhileStreaming(t *testing.T) {
	m := newTestModel(t)
	m.input.SetValue("first")
	updated, _ := m.Update(keyMsg("enter"))
	m = updated.(Model)

	m.input.SetValue("second")
	updated, _ = m.Update(keyMsg("enter"))
	m = updated.(Model)

	if m.Store().MessageCount() != 2 {
		t.Errorf("MessageCount() = %d, second prompt interleaved", m.Store().MessageCount())
	}
}

func TestModel_StreamTokensFlushIntoHistory(t *testing.T) {
	m := newTestModel(t)
	m.input.SetValue("hi")
	updated, _ := m.Update(keyMsg("enter"))
	m = updated.(Model)

	updated, _ = m.Update(StreamTokenMsg{Token: "Hel", IsFirst: true})
	m = updated.(Model)
	updated, _ = m.Update(StreamTokenMsg{Token: "lo!"})
	m = updated.(Model)

	updated, _ = m.Update(StreamCompleteMsg{Stats: ollama.NewStatistics()})
	m = updated.(Model)

	if m.State() != StateReady {
		t.Errorf("State() = %v, want ready after completion", m.State())
	}
	history := m.Store().History()
	if len(history) != 2 {
		t.Fatalf("len(history) = %d", len(history))
	}
	if history[1].Content != "Hello!" {
		t.Errorf("reply = %q, want 'Hello!'", history[1].Content)
	}
}

func TestModel_ClearConfirmationFlow(t *testing.T) {
	m := newTestModel(t)
	m.Store().AppendUser("hi")

	updated, _ := m.Update(keyMsg("ctrl+l"))
	m = updated.(Model)
	if m.State() != StateConfirmClear {
		t.Fatalf("State() = %v, want confirm-clear", m.State())
	}

	// Prompts are rejected while confirming
	m.input.SetValue("nope")
	updated, _ = m.Update(keyMsg("enter"))
	m = updated.(Model)

	updated, _ = m.Update(keyMsg("y"))
	m = updated.(Model)

	if m.State() != StateReady {
		t.Errorf("State() = %v after confirm", m.State())
	}
	if !m.Store().IsEmpty() {
		t.Error("history not cleared")
	}
}

func TestModel_ClearCancelKeepsHistory(t *testing.T) {
	m := newTestModel(t)
	m.Store().AppendUser("hi")

	updated, _ := m.Update(keyMsg("ctrl+l"))
	m = updated.(Model)
	updated, _ = m.Update(keyMsg("n"))
	m = updated.(Model)

	if m.State() != StateReady || m.Store().IsEmpty() {
		t.Error("cancel should keep history")
	}
}

func TestModel_ClearOnEmptyHistoryIgnored(t *testing.T) {
	m := newTestModel(t)

	updated, _ := m.Update(keyMsg("ctrl+l"))
	m = updated.(Model)

	if m.State() != StateReady {
		t.Errorf("State() = %v, clear with no history should be a no-op", m.State())
	}
}

func TestModel_PickerSwitchNeedsConfirmation(t *testing.T) {
	m := newTestModel(t)

	// Build up history under m1
	m.Store().AppendUser("hi")
	h := m.Store().BeginAssistantReply("m1")
	m.Store().AppendDelta(h, "yo")
	m.Store().FinalizeReply(h, nil)

	updated, _ := m.Update(keyMsg("ctrl+p"))
	m = updated.(Model)
	if m.State() != StatePickModel {
		t.Fatalf("State() = %v, want picker", m.State())
	}

	updated, _ = m.Update(ModelsMsg{Models: []string{"m1", "m2"}})
	m = updated.(Model)

	updated, _ = m.Update(tea.KeyMsg{Type: tea.KeyDown})
	m = updated.(Model)
	updated, _ = m.Update(keyMsg("enter"))
	m = updated.(Model)

	if m.State() != StateConfirmSwitch {
		t.Fatalf("State() = %v, want confirm-switch", m.State())
	}
	if m.Store().PendingModel() != "m2" {
		t.Errorf("PendingModel() = %q", m.Store().PendingModel())
	}

	// Cancel keeps the old model and history
	updated, _ = m.Update(keyMsg("n"))
	m = updated.(Model)
	if m.Store().ActiveModel() != "m1" || m.Store().IsEmpty() {
		t.Error("cancel should keep model and history")
	}
}

func TestModel_PickerSilentSwitchWhenEmpty(t *testing.T) {
	m := newTestModel(t)

	updated, _ := m.Update(keyMsg("ctrl+p"))
	m = updated.(Model)
	updated, _ = m.Update(ModelsMsg{Models: []string{"m9"}})
	m = updated.(Model)
	updated, _ = m.Update(keyMsg("enter"))
	m = updated.(Model)

	if m.State() != StateReady {
		t.Errorf("State() = %v, want silent switch", m.State())
	}
	if m.Store().ActiveModel() != "m9" {
		t.Errorf("ActiveModel() = %q", m.Store().ActiveModel())
	}
}

func TestModel_ViewRenders(t *testing.T) {
	m := newTestModel(t)
	m.Store().AppendUser("hello there")
	m.refreshViewport()

	view := m.View()
	if view == "" {
		t.Fatal("View() returned empty")
	}
	if !strings.Contains(view, "deepchat") {
		t.Error("header missing")
	}
}
