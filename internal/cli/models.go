// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// models.go - Model listing command handler for the deepchat CLI.
//
// Command: models
// Short:   List models installed in the local Ollama instance
//
// Examples:
//   deepchat models
//   deepchat models --url http://127.0.0.1:11434
package cli

import (
	"context"
	"fmt"
	"time"

	"github.com/morganforge/deepchat/internal/ollama"
)

// HandleModelsCommand lists the models Ollama has installed.
func HandleModelsCommand(args Args) error {
	cfg, client := loadEnvironment(args)

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	models, err := client.ListModels(ctx)
	if err != nil {
		if ollama.IsNotRunning(err) {
			return fmt.Errorf("ollama is not running at %s (start it with `ollama serve`)", cfg.Ollama.URL)
		}
		return fmt.Errorf("failed to list models: %w", err)
	}

	if len(models) == 0 {
		fmt.Println("No models installed. Pull one with `ollama pull " + cfg.Ollama.DefaultModel + "`.")
		return nil
	}

	for _, m := range models {
		marker := "  "
		if m.Name == cfg.Ollama.DefaultModel {
			marker = "* "
		}
		if args.Quiet {
			fmt.Println(m.Name)
			continue
		}
		fmt.Printf("%s%-40s %10s  %s\n",
			marker,
			m.Name,
			formatModelSize(m.Size),
			m.ModifiedAt.Format("2006-01-02"))
	}

	return nil
}

// formatModelSize renders a byte count as a human-readable size.
func formatModelSize(size int64) string {
	const (
		kb = 1 << 10
		mb = 1 << 20
		gb = 1 << 30
	)
	switch {
	case size >= gb:
		return fmt.Sprintf("%.1f GB", float64(size)/gb)
	case size >= mb:
		return fmt.Sprintf("%.1f MB", float64(size)/mb)
	case size >= kb:
		return fmt.Sprintf("%.1f KB", float64(size)/kb)
	default:
		return fmt.Sprintf("%d B", size)
	}
}
