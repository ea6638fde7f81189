// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

/*
Package chat provides the main chat view component for the deepchat TUI.

The chat package implements a terminal chat interface using the Bubble
Tea framework, streaming replies from a local Ollama backend.

# Key Components

## Model (model.go)

The Model struct is the central Bubble Tea model that maintains all
chat state:
  - Conversation history through the conversation store
  - Input handling and viewport scrolling
  - Confirmation workflows for clearing and model switching
  - Streaming state for real-time replies

## Update Loop (update.go)

Handles all Bubble Tea messages and user interactions. Input follows
the session state machine: prompts are accepted only while ready, and
pending confirmations block everything else until resolved.

## Streaming (streaming.go)

StreamingBuffer batches tokens at a capped frame rate so the viewport
repaints smoothly instead of once per token. StreamRunner (commands.go)
bridges the streaming goroutine and the program via Send.

## View Rendering (view.go)

Renders the header with model badge and backend status, message
bubbles with normalized code fences, confirmation banners, the model
picker, and the status bar.

# Usage

	cfg, _ := config.Load()
	client := ollama.NewClient()
	store := conversation.NewStore()

	m := chat.New(cfg, client, store)
	p := tea.NewProgram(&m, tea.WithAltScreen())

	runner := chat.NewStreamRunner(p, client)
	m.SetStartStream(func(ctx context.Context, payload ollama.ChatRequest, id string) {
		go runner.Run(ctx, payload, id)
	})

	if _, err := p.Run(); err != nil {
		log.Fatal(err)
	}
*/
package chat
