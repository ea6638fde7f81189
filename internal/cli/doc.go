// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package cli provides command-line interface parsing and execution for deepchat.
//
// This package implements all non-TUI commands: one-shot questions,
// an interactive terminal REPL, model listing, and backend status.
//
// # Key Types
//
//   - Command: Enumeration of available CLI commands
//   - Args: Parsed command-line arguments with global and command-specific flags
//   - ChatCLI: Line editor with persistent input history for the chat REPL
//
// # Usage
//
// Parse and execute commands:
//
//	cmd, args := cli.Parse()
//	switch cmd {
//	case cli.CmdAsk:
//	    cli.HandleAsk(args)
//	case cli.CmdChat:
//	    cli.HandleChat(args)
//	// ... other commands
//	}
//
// # Commands Overview
//
//   - ask: Single question, streamed reply, markdown-rendered on a TTY
//   - chat: Interactive chat REPL with slash commands and input history
//   - models: List models installed in the local Ollama instance
//   - status: Check backend availability (non-zero exit when down)
//
// The ask and chat commands share the session state machine with the
// TUI, so confirmation workflows and parameter clamping behave the
// same in every mode.
package cli
