// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package ollama provides the HTTP client for communicating with the Ollama API.
package ollama

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"
)

// =============================================================================
// TEST HELPERS
// =============================================================================

// newTestClient creates a client pointed at a test server.
func newTestClient(serverURL string) *Client {
	return NewClientWithConfig(&ClientConfig{
		BaseURL:      serverURL,
		Timeout:      2 * time.Second,
		DefaultModel: "deepseek-r1:14b",
	})
}

// streamHandler writes NDJSON chat frames for the given content pieces.
func streamHandler(t *testing.T, pieces ...string) http.HandlerFunc {
	t.Helper()
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/x-ndjson")
		enc := json.NewEncoder(w)
		for _, p := range pieces {
			enc.Encode(ChatResponse{
				Model:   "deepseek-r1:14b",
				Message: Message{Role: "assistant", Content: p},
			})
		}
		enc.Encode(ChatResponse{
			Model:        "deepseek-r1:14b",
			Done:         true,
			DoneReason:   "stop",
			EvalCount:    len(pieces),
			EvalDuration: int64(time.Second),
		})
	}
}

// =============================================================================
// MESSAGE CONSTRUCTOR TESTS
// =============================================================================

func TestMessageConstructors(t *testing.T) {
	tests := []struct {
		name string
		msg  Message
		role string
	}{
		{"user", NewUserMessage("hi"), "user"},
		{"assistant", NewAssistantMessage("hi"), "assistant"},
		{"system", NewSystemMessage("hi"), "system"},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			if tc.msg.Role != tc.role {
				t.Errorf("Role = %q, want %q", tc.msg.Role, tc.role)
			}
			if tc.msg.Content != "hi" {
				t.Errorf("Content = %q, want 'hi'", tc.msg.Content)
			}
		})
	}
}

// =============================================================================
// MODEL CATALOG TESTS
// =============================================================================

func TestListModels(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/tags" {
			t.Errorf("path = %q, want /api/tags", r.URL.Path)
		}
		json.NewEncoder(w).Encode(ListModelsResponse{
			Models: []ModelInfo{
				{Name: "deepseek-r1:14b"},
				{Name: "llama3:8b"},
			},
		})
	}))
	defer server.Close()

	models, err := newTestClient(server.URL).ListModels(context.Background())
	if err != nil {
		t.Fatalf("ListModels() error = %v", err)
	}
	if len(models) != 2 {
		t.Fatalf("len(models) = %d, want 2", len(models))
	}
	if models[0].Name != "deepseek-r1:14b" {
		t.Errorf("models[0].Name = %q", models[0].Name)
	}
}

func TestListModels_ServerError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer server.Close()

	_, err := newTestClient(server.URL).ListModels(context.Background())
	if err == nil {
		t.Fatal("ListModels() expected error on HTTP 500")
	}
}

func TestModelNames_DegradesToEmpty(t *testing.T) {
	tests := []struct {
		name    string
		handler http.HandlerFunc
	}{
		{
			"http 500",
			func(w http.ResponseWriter, r *http.Request) { w.WriteHeader(http.StatusInternalServerError) },
		},
		{
			"malformed body",
			func(w http.ResponseWriter, r *http.Request) { w.Write([]byte("not json")) },
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			server := httptest.NewServer(tc.handler)
			defer server.Close()

			names := newTestClient(server.URL).ModelNames(context.Background())
			if len(names) != 0 {
				t.Errorf("ModelNames() = %v, want empty", names)
			}
		})
	}
}

func TestModelNames_Unreachable(t *testing.T) {
	// Server closed before the request: connection refused
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	server.Close()

	names := newTestClient(server.URL).ModelNames(context.Background())
	if len(names) != 0 {
		t.Errorf("ModelNames() = %v, want empty", names)
	}
}

// =============================================================================
// HEALTH CHECK TESTS
// =============================================================================

func TestCheckRunning(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("Ollama is running"))
	}))
	defer server.Close()

	if err := newTestClient(server.URL).CheckRunning(context.Background()); err != nil {
		t.Errorf("CheckRunning() error = %v", err)
	}
}

func TestCheckRunning_NotRunning(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	server.Close()

	err := newTestClient(server.URL).CheckRunning(context.Background())
	if !IsNotRunning(err) {
		t.Errorf("CheckRunning() error = %v, want not-running", err)
	}
}

// =============================================================================
// STREAMING TESTS
// =============================================================================

func TestChatStream(t *testing.T) {
	var gotBody ChatRequest
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if err := json.NewDecoder(r.Body).Decode(&gotBody); err != nil {
			t.Fatalf("decode request: %v", err)
		}
		streamHandler(t, "Hel", "lo!")(w, r)
	}))
	defer server.Close()

	client := newTestClient(server.URL)
	var chunks []StreamChunk
	err := client.ChatStream(context.Background(), ChatRequest{
		Messages: []Message{NewUserMessage("hi")},
		Options:  &Options{Temperature: 0.7, NumCtx: 4096},
	}, func(chunk StreamChunk) {
		chunks = append(chunks, chunk)
	})
	if err != nil {
		t.Fatalf("ChatStream() error = %v", err)
	}

	// Request wiring: default model filled in, streaming forced on
	if gotBody.Model != "deepseek-r1:14b" {
		t.Errorf("request model = %q, want default", gotBody.Model)
	}
	if !gotBody.Stream {
		t.Error("request stream = false, want true")
	}
	if gotBody.Options == nil || gotBody.Options.NumCtx != 4096 {
		t.Errorf("request options = %+v, want num_ctx 4096", gotBody.Options)
	}

	// Chunks arrive in order and the terminal chunk carries stats
	if len(chunks) != 3 {
		t.Fatalf("len(chunks) = %d, want 3", len(chunks))
	}
	if chunks[0].Content+chunks[1].Content != "Hello!" {
		t.Errorf("content = %q, want 'Hello!'", chunks[0].Content+chunks[1].Content)
	}
	final := chunks[2]
	if !final.Done {
		t.Error("final chunk not marked done")
	}
	if final.CompletionTokens != 2 {
		t.Errorf("CompletionTokens = %d, want 2", final.CompletionTokens)
	}
}

func TestChatStream_ModelNotFound(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	}))
	defer server.Close()

	err := newTestClient(server.URL).ChatStream(context.Background(), ChatRequest{}, func(StreamChunk) {})
	if !IsModelNotFound(err) {
		t.Errorf("error = %v, want model-not-found", err)
	}
}

func TestChatStream_APIErrorBody(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		json.NewEncoder(w).Encode(APIError{Error: "invalid option"})
	}))
	defer server.Close()

	err := newTestClient(server.URL).ChatStream(context.Background(), ChatRequest{}, func(StreamChunk) {})
	if err == nil || !strings.Contains(err.Error(), "invalid option") {
		t.Errorf("error = %v, want API error text", err)
	}
}

func TestChatStream_MalformedFrame(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("{\"message\":{\"content\":\"ok\"}}\n"))
		w.Write([]byte("this is not json\n"))
	}))
	defer server.Close()

	var contents []string
	err := newTestClient(server.URL).ChatStream(context.Background(), ChatRequest{}, func(chunk StreamChunk) {
		contents = append(contents, chunk.Content)
	})
	if err == nil {
		t.Fatal("ChatStream() expected decode error")
	}
	if len(contents) != 1 || contents[0] != "ok" {
		t.Errorf("contents = %v, want [ok]", contents)
	}
}

func TestStreamReply(t *testing.T) {
	server := httptest.NewServer(streamHandler(t, "Hel", "lo!"))
	defer server.Close()

	var text strings.Builder
	var final StreamChunk
	for chunk := range newTestClient(server.URL).StreamReply(context.Background(), ChatRequest{}) {
		text.WriteString(chunk.Content)
		if chunk.Done {
			final = chunk
		}
	}

	if text.String() != "Hello!" {
		t.Errorf("accumulated = %q, want 'Hello!'", text.String())
	}
	if !final.Done || final.Error != nil {
		t.Errorf("final = %+v, want clean terminal chunk", final)
	}
}

func TestStreamReply_ErrorBecomesTerminalDelta(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer server.Close()

	var chunks []StreamChunk
	for chunk := range newTestClient(server.URL).StreamReply(context.Background(), ChatRequest{}) {
		chunks = append(chunks, chunk)
	}

	if len(chunks) != 1 {
		t.Fatalf("len(chunks) = %d, want exactly one terminal chunk", len(chunks))
	}
	if !chunks[0].Done {
		t.Error("error chunk not marked done")
	}
	if !strings.HasPrefix(chunks[0].Content, "Error: ") {
		t.Errorf("content = %q, want 'Error: ' prefix", chunks[0].Content)
	}
	if chunks[0].Error == nil {
		t.Error("error chunk missing typed error")
	}
}

func TestStreamReply_Unreachable(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	server.Close()

	var chunks []StreamChunk
	for chunk := range newTestClient(server.URL).StreamReply(context.Background(), ChatRequest{}) {
		chunks = append(chunks, chunk)
	}

	if len(chunks) != 1 || !strings.HasPrefix(chunks[0].Content, "Error: ") {
		t.Fatalf("chunks = %+v, want single Error delta", chunks)
	}
}

// =============================================================================
// ACCUMULATOR TESTS
// =============================================================================

func TestStreamAccumulator(t *testing.T) {
	acc := NewStreamAccumulator()
	acc.Add(StreamChunk{Content: "Hel"})
	acc.Add(StreamChunk{Content: "lo!"})
	acc.Add(StreamChunk{Done: true, CompletionTokens: 2, EvalDuration: time.Second})

	if acc.Content() != "Hello!" {
		t.Errorf("Content() = %q, want 'Hello!'", acc.Content())
	}
	if !acc.IsDone() {
		t.Error("IsDone() = false after terminal chunk")
	}
	if acc.Stats().CompletionTokens != 2 {
		t.Errorf("CompletionTokens = %d, want 2", acc.Stats().CompletionTokens)
	}
	if acc.Stats().TokensPerSecond < 1.9 || acc.Stats().TokensPerSecond > 2.1 {
		t.Errorf("TokensPerSecond = %f, want ~2", acc.Stats().TokensPerSecond)
	}
}

func TestStreamAccumulator_Error(t *testing.T) {
	acc := NewStreamAccumulator()
	acc.Add(StreamChunk{Error: ErrNotRunning})

	if !acc.IsDone() {
		t.Error("IsDone() = false after error chunk")
	}
	if acc.Err() == nil {
		t.Error("Err() = nil, want error")
	}
}

// =============================================================================
// STATISTICS TESTS
// =============================================================================

func TestStatistics_Format(t *testing.T) {
	s := &Statistics{
		TotalDuration:    2500 * time.Millisecond,
		CompletionTokens: 128,
		TokensPerSecond:  51.2,
		TTFT:             234 * time.Millisecond,
	}

	got := s.Format()
	for _, want := range []string{"2.5s", "128 tokens", "51.2 tok/s", "TTFT 234ms"} {
		if !strings.Contains(got, want) {
			t.Errorf("Format() = %q, want to contain %q", got, want)
		}
	}
}

func TestChatResponse_TokensPerSecond(t *testing.T) {
	tests := []struct {
		name         string
		evalCount    int
		evalDuration int64
		want         float64
	}{
		{"normal", 100, int64(time.Second), 100.0},
		{"zero duration", 100, 0, 0.0},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			resp := &ChatResponse{EvalCount: tc.evalCount, EvalDuration: tc.evalDuration}
			got := resp.TokensPerSecond()
			if tc.want != 0 && (got < tc.want*0.99 || got > tc.want*1.01) {
				t.Errorf("TokensPerSecond() = %f, want %f", got, tc.want)
			}
			if tc.want == 0 && got != 0 {
				t.Errorf("TokensPerSecond() = %f, want 0", got)
			}
		})
	}
}
