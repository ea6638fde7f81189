// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package chat provides the chat view component for the TUI.
//
// This file defines all Bubble Tea message types used by the chat
// interface. Messages are organized into the following categories:
//   - Streaming: stream start, token delivery, completion, errors
//   - Backend: health checks and model catalog updates
//   - UI state: resize and flush ticks
//
// All message types follow Bubble Tea conventions and are immutable.
package chat

import (
	"time"

	"github.com/morganforge/deepchat/internal/config"
	"github.com/morganforge/deepchat/internal/ollama"
)

// =============================================================================
// STREAMING MESSAGES
// =============================================================================

// StreamStartMsg signals that streaming has begun.
type StreamStartMsg struct {
	MessageID string
	StartTime time.Time
}

// StreamTokenMsg delivers a new token from the stream.
type StreamTokenMsg struct {
	MessageID string
	Token     string
	IsFirst   bool
}

// StreamCompleteMsg signals that streaming has finished.
type StreamCompleteMsg struct {
	MessageID string
	Stats     *ollama.Statistics
}

// StreamErrorMsg signals an error during streaming. The reply text has
// already been written as a terminal error delta; this message only
// updates status display.
type StreamErrorMsg struct {
	MessageID string
	Error     error
}

// =============================================================================
// BACKEND MESSAGES
// =============================================================================

// HealthMsg reports backend connection status.
type HealthMsg struct {
	Running bool
	Error   error
}

// ModelsMsg delivers the model catalog. An empty list means the
// catalog is unavailable; chat continues against the default model.
type ModelsMsg struct {
	Models []string
}

// =============================================================================
// UI MESSAGES
// =============================================================================

// FlushTickMsg drives the streaming buffer flush loop.
type FlushTickMsg struct {
	Time time.Time
}

// ErrorMsg carries a user-visible error for the error box.
type ErrorMsg struct {
	Title  string
	Detail string
}

// ConfigReloadedMsg delivers a hot-reloaded configuration from the
// file watcher.
type ConfigReloadedMsg struct {
	Config *config.Config
}
