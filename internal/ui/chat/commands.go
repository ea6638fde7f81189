// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package chat

import (
	"context"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"golang.org/x/time/rate"

	"github.com/morganforge/deepchat/internal/ollama"
)

// =============================================================================
// BACKEND COMMANDS
// =============================================================================

// CheckHealthCmd probes the backend and reports its status.
func CheckHealthCmd(client *ollama.Client) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()

		if err := client.CheckRunning(ctx); err != nil {
			return HealthMsg{Running: false, Error: err}
		}
		return HealthMsg{Running: true}
	}
}

// catalogLimiter caps model catalog refreshes. The picker can be
// toggled rapidly; one request per two seconds is plenty.
var catalogLimiter = rate.NewLimiter(rate.Every(2*time.Second), 1)

// ListModelsCmd fetches the model catalog. Degrades to an empty list
// on any failure, and skips the request entirely when rate limited.
func ListModelsCmd(client *ollama.Client) tea.Cmd {
	return func() tea.Msg {
		if !catalogLimiter.Allow() {
			return nil
		}

		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()

		return ModelsMsg{Models: client.ModelNames(ctx)}
	}
}

// =============================================================================
// STREAM RUNNER
// =============================================================================

// StreamRunner bridges the streaming goroutine and the Bubble Tea
// program: chunks from the client become program messages.
type StreamRunner struct {
	program *tea.Program
	client  *ollama.Client
}

// NewStreamRunner creates a new stream runner.
func NewStreamRunner(program *tea.Program, client *ollama.Client) *StreamRunner {
	return &StreamRunner{
		program: program,
		client:  client,
	}
}

// Run executes one streaming exchange and sends progress messages to
// the program. Runs on its own goroutine.
func (r *StreamRunner) Run(ctx context.Context, payload ollama.ChatRequest, messageID string) {
	r.program.Send(StreamStartMsg{
		MessageID: messageID,
		StartTime: time.Now(),
	})

	stats := ollama.NewStatistics()
	isFirst := true

	for chunk := range r.client.StreamReply(ctx, payload) {
		if chunk.Content != "" {
			r.program.Send(StreamTokenMsg{
				MessageID: messageID,
				Token:     chunk.Content,
				IsFirst:   isFirst,
			})
			if isFirst {
				stats.RecordFirstToken()
				isFirst = false
			}
		}
		if chunk.Done {
			stats.FinalizeFromChunk(chunk)
			if chunk.Error != nil {
				r.program.Send(StreamErrorMsg{
					MessageID: messageID,
					Error:     chunk.Error,
				})
			}
		}
	}

	r.program.Send(StreamCompleteMsg{
		MessageID: messageID,
		Stats:     stats,
	})
}
