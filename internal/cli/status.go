// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// status.go - Backend status command handler for the deepchat CLI.
//
// Command: status (alias: s)
// Short:   Check whether the Ollama backend is reachable
package cli

import (
	"context"
	"fmt"
	"time"

	"github.com/morganforge/deepchat/internal/ui/styles"
)

// HandleStatusCommand checks backend availability and prints a short
// report. Returns an error (for a non-zero exit) when the backend is
// down, so the command works in scripts.
func HandleStatusCommand(args Args) error {
	cfg, client := loadEnvironment(args)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	fmt.Printf("Backend:  %s\n", cfg.Ollama.URL)
	fmt.Printf("Model:    %s\n", cfg.Ollama.DefaultModel)

	if err := client.CheckRunning(ctx); err != nil {
		fmt.Printf("Status:   %s\n", styles.RenderError("not running"))
		if args.Verbose {
			fmt.Printf("Detail:   %v\n", err)
		}
		return err
	}

	fmt.Printf("Status:   %s\n", styles.RenderSuccess("running"))

	names := client.ModelNames(ctx)
	fmt.Printf("Models:   %d installed\n", len(names))

	return nil
}
