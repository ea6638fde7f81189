// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package ollama provides the HTTP client for communicating with the Ollama API.
package ollama

import "time"

// =============================================================================
// REQUEST TYPES
// =============================================================================

// Message represents a chat message on the wire.
type Message struct {
	Role    string `json:"role"`    // "user", "assistant", "system"
	Content string `json:"content"` // The message content
}

// ChatRequest is the request body for the /api/chat endpoint.
type ChatRequest struct {
	Model    string    `json:"model"`             // Model name (e.g., "deepseek-r1:14b")
	Messages []Message `json:"messages"`          // Conversation history, system message first
	Stream   bool      `json:"stream"`            // Enable streaming
	Options  *Options  `json:"options,omitempty"` // Model parameters
}

// Options contains model parameters for inference.
// Only the parameters the chat front-end actually adjusts are carried;
// everything else is left to the model defaults.
type Options struct {
	Temperature float64 `json:"temperature"` // 0.0-1.0
	NumCtx      int     `json:"num_ctx"`     // Context window size in tokens
}

// =============================================================================
// RESPONSE TYPES
// =============================================================================

// ChatResponse is a single decoded frame from /api/chat.
// During streaming every NDJSON line decodes into one of these; the final
// frame has Done set and carries the generation statistics.
type ChatResponse struct {
	Model              string    `json:"model"`
	CreatedAt          time.Time `json:"created_at"`
	Message            Message   `json:"message"`
	Done               bool      `json:"done"`
	DoneReason         string    `json:"done_reason,omitempty"`
	TotalDuration      int64     `json:"total_duration,omitempty"`       // nanoseconds
	LoadDuration       int64     `json:"load_duration,omitempty"`        // nanoseconds
	PromptEvalCount    int       `json:"prompt_eval_count,omitempty"`    // tokens in prompt
	PromptEvalDuration int64     `json:"prompt_eval_duration,omitempty"` // nanoseconds
	EvalCount          int       `json:"eval_count,omitempty"`           // tokens generated
	EvalDuration       int64     `json:"eval_duration,omitempty"`        // nanoseconds
}

// TokensPerSecond calculates the generation speed from a final frame.
func (r *ChatResponse) TokensPerSecond() float64 {
	if r.EvalDuration == 0 {
		return 0
	}
	seconds := float64(r.EvalDuration) / 1e9
	return float64(r.EvalCount) / seconds
}

// =============================================================================
// MODEL TYPES
// =============================================================================

// ModelInfo contains information about an installed model.
type ModelInfo struct {
	Name       string       `json:"name"`
	ModifiedAt time.Time    `json:"modified_at"`
	Size       int64        `json:"size"`
	Digest     string       `json:"digest"`
	Details    ModelDetails `json:"details,omitempty"`
}

// ModelDetails contains detailed information about a model.
type ModelDetails struct {
	Format            string   `json:"format"`
	Family            string   `json:"family"`
	Families          []string `json:"families"`
	ParameterSize     string   `json:"parameter_size"`
	QuantizationLevel string   `json:"quantization_level"`
}

// ListModelsResponse is the response from the /api/tags endpoint.
type ListModelsResponse struct {
	Models []ModelInfo `json:"models"`
}

// =============================================================================
// STREAMING TYPES
// =============================================================================

// StreamChunk is one decoded streaming frame plus transport state.
// Chunks arrive in order; Content fields concatenate into the full reply.
// The terminal chunk of a stream has Done set and carries the generation
// statistics. A transport or decode failure is delivered as a chunk with
// Error set.
type StreamChunk struct {
	// Content from this frame (message.content).
	Content string

	// Done marks the terminal chunk of the sequence.
	Done       bool
	DoneReason string

	// Timing information (populated on the terminal chunk).
	TotalDuration      time.Duration
	LoadDuration       time.Duration
	PromptEvalDuration time.Duration
	EvalDuration       time.Duration

	// Token counts (populated on the terminal chunk).
	PromptTokens     int
	CompletionTokens int

	// Model that produced the stream, as reported by the backend.
	Model string

	// Error if any occurred during streaming.
	Error error
}

// =============================================================================
// ERROR TYPES
// =============================================================================

// APIError represents an error body returned by the Ollama API.
type APIError struct {
	Error string `json:"error"`
}

// =============================================================================
// HELPER CONSTRUCTORS
// =============================================================================

// NewUserMessage creates a new user message.
func NewUserMessage(content string) Message {
	return Message{Role: "user", Content: content}
}

// NewAssistantMessage creates a new assistant message.
func NewAssistantMessage(content string) Message {
	return Message{Role: "assistant", Content: content}
}

// NewSystemMessage creates a new system message.
func NewSystemMessage(content string) Message {
	return Message{Role: "system", Content: content}
}
