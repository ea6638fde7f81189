// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// cli.go - CLI parsing and command handlers for deepchat.
package cli

import (
	"fmt"
	"os"
	"runtime"
	"strings"
)

// Version information (can be overridden at build time)
var (
	Version   = "0.1.0"
	GitCommit = "unknown"
	BuildDate = "unknown"
)

// Command represents the CLI command to execute.
type Command int

const (
	CmdTUI Command = iota
	CmdAsk
	CmdChat
	CmdModels
	CmdStatus
	CmdVersion
	CmdHelp
)

// Args holds parsed CLI arguments.
type Args struct {
	// Global flags
	Quiet   bool
	Verbose bool
	Model   string
	URL     string

	// Command-specific
	Query string
	Plain bool // Disable markdown rendering for ask output

	// Raw args (remaining after flag parsing)
	Raw []string
}

const usageText = `deepchat - streaming terminal chat for local Ollama models

Deepchat is a conversational front-end for a locally hosted Ollama
backend. Everything runs on your machine; no cloud, no API keys.

Usage:
  deepchat                   Start TUI (default)
  deepchat ask "question"    Ask a single question and exit
  deepchat chat              Interactive chat in the plain terminal
  deepchat models            List models installed in Ollama
  deepchat status, s         Check backend availability
  deepchat version           Show version information
  deepchat help              Show this help

Ask Flags:
  -m, --model NAME    Use specific model (overrides config)
  --plain             Skip markdown rendering even on a terminal

Chat Flags:
  -m, --model NAME    Use specific model (overrides config)

Interactive Commands (during chat):
  /help, /h           Show available commands
  /clear, /c          Clear conversation history (asks to confirm)
  /model [name]       Show or switch model (switch clears history)
  /models             List installed models
  /temp VALUE         Set sampling temperature (0.0 - 1.0)
  /ctx VALUE          Set context length (512 - 8192)
  /status, /s         Show session statistics
  /history            Show conversation history
  /quit, /q           Exit chat
  Ctrl+C              Cancel current generation
  Ctrl+D              Exit chat

Global Flags:
  --url URL           Override Ollama base URL
  --model NAME        Override default model
  -q, --quiet         Minimal output (no stats lines)
  -v, --verbose       Debug output

Configuration:
  ~/.deepchat/config.toml (or config.json)
  Environment overrides: DEEPCHAT_OLLAMA_URL, DEEPCHAT_MODEL,
  DEEPCHAT_TEMPERATURE, DEEPCHAT_CONTEXT_LENGTH, DEEPCHAT_THEME

Examples:
  deepchat                            Start the TUI
  deepchat ask "What is a goroutine?" One-shot question
  deepchat ask --plain "..." | less   Pipe-safe plain output
  deepchat chat --model qwen2.5:14b   Chat with a specific model
  deepchat models                     Show what Ollama has pulled
  deepchat status                     Is the backend up?

Version: %s
`

// PrintUsage prints the usage/help text.
func PrintUsage() {
	fmt.Printf(usageText, Version)
}

// PrintVersion prints version information.
func PrintVersion() {
	fmt.Printf("deepchat version %s\n", Version)
	fmt.Printf("  Git commit: %s\n", GitCommit)
	fmt.Printf("  Build date: %s\n", BuildDate)
	fmt.Printf("  Platform:   %s/%s\n", runtime.GOOS, runtime.GOARCH)
}

// Parse parses command-line arguments and returns the command and args.
func Parse() (Command, Args) {
	return ParseArgs(os.Args[1:])
}

// ParseArgs parses the given arguments. Split out from Parse for tests.
func ParseArgs(args []string) (Command, Args) {
	remaining, parsedArgs := parseGlobalFlags(args)

	// If no remaining args, default to TUI
	if len(remaining) == 0 {
		return CmdTUI, parsedArgs
	}

	cmd := strings.ToLower(remaining[0])
	remaining = remaining[1:]
	parsedArgs.Raw = remaining

	switch cmd {
	case "tui":
		return CmdTUI, parsedArgs

	case "ask":
		parseAskArgs(&parsedArgs, remaining)
		return CmdAsk, parsedArgs

	case "chat":
		parseChatArgs(&parsedArgs, remaining)
		return CmdChat, parsedArgs

	case "models", "model", "list":
		return CmdModels, parsedArgs

	case "status", "s":
		return CmdStatus, parsedArgs

	case "version", "--version", "-V":
		return CmdVersion, parsedArgs

	case "help", "--help", "-h":
		return CmdHelp, parsedArgs

	default:
		// Unknown word: treat it as the start of an ask query so
		// `deepchat what is X` still does something sensible.
		parseAskArgs(&parsedArgs, append([]string{cmd}, remaining...))
		return CmdAsk, parsedArgs
	}
}

// parseGlobalFlags extracts flags that apply to every command.
func parseGlobalFlags(args []string) ([]string, Args) {
	var remaining []string
	var parsedArgs Args

	i := 0
	for i < len(args) {
		arg := args[i]

		switch arg {
		case "-q", "--quiet":
			parsedArgs.Quiet = true
		case "-v", "--verbose":
			parsedArgs.Verbose = true
		case "--model":
			if i+1 < len(args) {
				i++
				parsedArgs.Model = args[i]
			}
		case "--url":
			if i+1 < len(args) {
				i++
				parsedArgs.URL = args[i]
			}
		default:
			switch {
			case strings.HasPrefix(arg, "--model="):
				parsedArgs.Model = strings.TrimPrefix(arg, "--model=")
			case strings.HasPrefix(arg, "--url="):
				parsedArgs.URL = strings.TrimPrefix(arg, "--url=")
			default:
				remaining = append(remaining, arg)
			}
		}
		i++
	}

	return remaining, parsedArgs
}

// parseAskArgs parses ask command specific arguments.
func parseAskArgs(args *Args, remaining []string) {
	var query []string

	i := 0
	for i < len(remaining) {
		arg := remaining[i]

		switch arg {
		case "-m", "--model":
			if i+1 < len(remaining) {
				i++
				args.Model = remaining[i]
			}
		case "--plain":
			args.Plain = true
		default:
			if strings.HasPrefix(arg, "--model=") {
				args.Model = strings.TrimPrefix(arg, "--model=")
			} else {
				query = append(query, arg)
			}
		}
		i++
	}

	args.Query = strings.Join(query, " ")
}

// parseChatArgs parses chat command specific arguments.
func parseChatArgs(args *Args, remaining []string) {
	i := 0
	for i < len(remaining) {
		arg := remaining[i]

		switch arg {
		case "-m", "--model":
			if i+1 < len(remaining) {
				i++
				args.Model = remaining[i]
			}
		default:
			if strings.HasPrefix(arg, "--model=") {
				args.Model = strings.TrimPrefix(arg, "--model=")
			}
		}
		i++
	}
}

// =============================================================================
// COMMAND HANDLERS
// =============================================================================

// HandleAsk runs the ask command and exits non-zero on failure.
func HandleAsk(args Args) {
	if err := HandleAskCommand(args); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

// HandleChat runs the interactive chat command.
func HandleChat(args Args) {
	if err := HandleChatCommand(args); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

// HandleModels runs the model listing command.
func HandleModels(args Args) {
	if err := HandleModelsCommand(args); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

// HandleStatus runs the backend status command.
func HandleStatus(args Args) {
	if err := HandleStatusCommand(args); err != nil {
		os.Exit(1)
	}
}
