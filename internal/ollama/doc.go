// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package ollama provides the HTTP client for communicating with the Ollama API.
//
// This package implements the two endpoints the chat front-end consumes:
// GET /api/tags for the model catalog and POST /api/chat for streaming
// completions decoded from newline-delimited JSON frames.
//
// # Key Types
//
//   - Client: HTTP client for Ollama API communication
//   - Message: Chat message with role and content
//   - ChatRequest: Request structure with model, messages, and options
//   - StreamChunk: One decoded streaming frame
//   - StreamReader: NDJSON frame decoder for streaming responses
//   - Statistics: Timing and token counts collected over one generation
//
// # Usage
//
// Create a client and stream a reply:
//
//	client := ollama.NewClient()
//	for chunk := range client.StreamReply(ctx, ollama.ChatRequest{
//	    Model:    "deepseek-r1:14b",
//	    Messages: []ollama.Message{ollama.NewUserMessage("Hello")},
//	}) {
//	    fmt.Print(chunk.Content)
//	}
//
// StreamReply never fails loudly: transport and decode errors arrive as a
// terminal chunk carrying "Error: ..." text, so a broken stream still reads
// as a coherent assistant message.
package ollama
