// deepchat - A streaming terminal interface for local LLM chat.
//
// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later
package main

import (
	"fmt"
	"os"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/morganforge/deepchat/internal/cli"
	"github.com/morganforge/deepchat/internal/config"
	"github.com/morganforge/deepchat/internal/conversation"
	"github.com/morganforge/deepchat/internal/ollama"
	"github.com/morganforge/deepchat/internal/ui/chat"
)

// Version information (set at build time)
var (
	Version   = "0.1.0"
	GitCommit = "unknown"
	BuildDate = "unknown"
)

func init() {
	// Sync version info with cli package
	cli.Version = Version
	cli.GitCommit = GitCommit
	cli.BuildDate = BuildDate
}

func main() {
	cmd, args := cli.Parse()

	switch cmd {
	case cli.CmdTUI:
		runTUI(args)
	case cli.CmdAsk:
		cli.HandleAsk(args)
	case cli.CmdChat:
		cli.HandleChat(args)
	case cli.CmdModels:
		cli.HandleModels(args)
	case cli.CmdStatus:
		cli.HandleStatus(args)
	case cli.CmdVersion:
		cli.PrintVersion()
	case cli.CmdHelp:
		cli.PrintUsage()
	default:
		cli.PrintUsage()
		os.Exit(1)
	}
}

// =============================================================================
// TUI STARTUP
// =============================================================================

func runTUI(args cli.Args) {
	cfg, err := config.Load()
	if err != nil || cfg == nil {
		cfg = config.Default()
	}

	// CLI args override config
	if args.URL != "" {
		cfg.Ollama.URL = args.URL
	}
	if args.Model != "" {
		cfg.Ollama.DefaultModel = args.Model
	}

	client := ollama.NewClientWithConfig(&ollama.ClientConfig{
		BaseURL:      cfg.Ollama.URL,
		DefaultModel: cfg.Ollama.DefaultModel,
		Timeout:      time.Duration(cfg.Ollama.TimeoutSecs) * time.Second,
	})

	store := conversation.NewStore()
	m := chat.New(cfg, client, store)

	p := tea.NewProgram(
		&m,
		tea.WithAltScreen(),
		tea.WithMouseCellMotion(),
	)

	// Streams run outside the Bubble Tea loop and deliver tokens back
	// through program.Send; wired after the program exists, before Run.
	runner := chat.NewStreamRunner(p, client)
	m.SetStartStream(runner.Run)

	// Hot-reload config edits into the running session.
	watcher, err := config.NewWatcher(func(reloaded *config.Config) {
		p.Send(chat.ConfigReloadedMsg{Config: reloaded})
	})
	if err == nil {
		if err := watcher.Watch(); err != nil {
			watcher.Close()
		} else {
			defer watcher.Close()
		}
	}

	if _, err := p.Run(); err != nil {
		fmt.Fprintf(os.Stderr, "Error running deepchat: %v\n", err)
		os.Exit(1)
	}
}
