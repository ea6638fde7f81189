// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// ask.go - Single query command handler for the deepchat CLI.
//
// Handles the "deepchat ask" command which sends a single question to
// the local Ollama backend and streams the response to stdout.
//
// Command: ask [question]
// Short:   Ask a single question
//
// Examples:
//   deepchat ask "What is the capital of France?"
//   deepchat ask --model qwen2.5:14b "Explain this error"
//   deepchat ask --plain "List goroutine states" | less
//
// Flags:
//   -m, --model NAME    Use specific model (overrides config)
//   --plain             Skip markdown rendering even on a terminal
//   -q, --quiet         Suppress the generation stats line
package cli

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/charmbracelet/glamour"
	"github.com/charmbracelet/lipgloss"

	"github.com/morganforge/deepchat/internal/conversation"
	"github.com/morganforge/deepchat/internal/format"
	"github.com/morganforge/deepchat/internal/session"
	"github.com/morganforge/deepchat/internal/ui/styles"
)

// =============================================================================
// MARKDOWN RENDERING
// =============================================================================

// markdownRenderer is the global glamour renderer for markdown output.
var markdownRenderer *glamour.TermRenderer

func init() {
	var err error
	markdownRenderer, err = glamour.NewTermRenderer(
		glamour.WithAutoStyle(),
		glamour.WithWordWrap(80),
	)
	if err != nil {
		// Fallback to plain text if renderer initialization fails
		markdownRenderer = nil
	}
}

// renderMarkdown renders markdown content for terminal display.
// Returns the original content if rendering fails or renderer is unavailable.
func renderMarkdown(content string) string {
	if markdownRenderer == nil {
		return content
	}

	rendered, err := markdownRenderer.Render(content)
	if err != nil {
		return content
	}
	return rendered
}

// =============================================================================
// STYLES
// =============================================================================

var (
	statsStyle = lipgloss.NewStyle().
			Foreground(styles.TextMuted)

	askErrorStyle = lipgloss.NewStyle().
			Foreground(styles.Rose)
)

// =============================================================================
// ASK COMMAND
// =============================================================================

// HandleAskCommand handles the "ask" command: one prompt, one streamed
// reply, then exit.
func HandleAskCommand(args Args) error {
	query := strings.TrimSpace(args.Query)
	if query == "" {
		return fmt.Errorf("no question provided (usage: deepchat ask \"question\")")
	}

	cfg, client := loadEnvironment(args)

	store := conversation.NewStore()
	store.SetParameters(cfg.Generation.Temperature, cfg.Generation.ContextLength)

	// Rendered output is buffered and formatted at the end; piped or
	// --plain output streams tokens as they arrive.
	useMarkdown := IsStdoutTTY() && !args.Plain

	var printed int
	ctrl := session.NewController(session.Config{
		Store:        store,
		Client:       client,
		DefaultModel: cfg.Ollama.DefaultModel,
		OnDelta: func(accumulated string) {
			if !useMarkdown {
				fmt.Print(accumulated[printed:])
				printed = len(accumulated)
			}
		},
	})

	// Ctrl+C cancels the stream; the partial reply is still printed.
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := ctrl.SubmitPrompt(ctx, query); err != nil {
		return err
	}

	history := store.History()
	if len(history) == 0 {
		return fmt.Errorf("no reply received")
	}
	reply := history[len(history)-1]

	if useMarkdown {
		normalizer := &format.Normalizer{FenceTag: cfg.UI.FenceTag}
		content := normalizer.Normalize(reply.Content)
		if strings.HasPrefix(reply.Content, "Error: ") {
			fmt.Println(askErrorStyle.Render(reply.Content))
		} else {
			fmt.Print(renderMarkdown(content))
		}
	} else {
		fmt.Println()
	}

	if !args.Quiet && reply.TokenCount > 0 && IsStdoutTTY() {
		fmt.Println(statsStyle.Render(formatReplyStats(reply)))
	}

	return nil
}

// formatReplyStats builds the one-line stats summary shown after a reply.
func formatReplyStats(m *conversation.Message) string {
	var b strings.Builder
	b.WriteString(m.TotalDuration.Round(10 * time.Millisecond).String())
	b.WriteString(" | ")
	fmt.Fprintf(&b, "%d tokens | %.1f tok/s", m.TokenCount, m.TokensPerSec)
	if m.TTFT > 0 {
		fmt.Fprintf(&b, " | TTFT %dms", m.TTFT.Milliseconds())
	}
	return b.String()
}
