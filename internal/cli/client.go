// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// client.go - Shared config/client setup for CLI command handlers.
package cli

import (
	"time"

	"github.com/morganforge/deepchat/internal/config"
	"github.com/morganforge/deepchat/internal/ollama"
)

// loadEnvironment loads configuration, applies CLI overrides, and
// builds an Ollama client. Config errors fall back to defaults so the
// CLI stays usable with a broken config file.
func loadEnvironment(args Args) (*config.Config, *ollama.Client) {
	cfg, err := config.Load()
	if err != nil || cfg == nil {
		cfg = config.Default()
	}

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

	return cfg, client
}
