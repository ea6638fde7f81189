// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package ollama provides the HTTP client for communicating with the Ollama API.
package ollama

import (
	"bufio"
	"context"
	"encoding/json"
	"io"
	"strings"
	"time"
)

// =============================================================================
// STREAM READER
// =============================================================================

// StreamReader handles line-by-line JSON parsing of streaming responses.
type StreamReader struct {
	reader *bufio.Reader
	// strings.Builder avoids quadratic allocations while accumulating
	accumulator strings.Builder
	tokenCount  int
	model       string
}

// NewStreamReader creates a new stream reader from an io.Reader.
func NewStreamReader(r io.Reader) *StreamReader {
	return &StreamReader{
		reader: bufio.NewReader(r),
	}
}

// Process reads the stream and calls the callback for each chunk.
// Blocks until the stream is complete or the context is cancelled.
func (s *StreamReader) Process(ctx context.Context, callback StreamCallback) error {
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
			chunk, err := s.readChunk()
			if err != nil {
				if err == io.EOF {
					return nil
				}
				return err
			}

			if chunk != nil {
				callback(*chunk)
				if chunk.Done {
					return nil
				}
			}
		}
	}
}

// readChunk reads and parses a single NDJSON line from the stream.
// Returns (nil, nil) for lines that should be skipped.
func (s *StreamReader) readChunk() (*StreamChunk, error) {
	line, err := s.reader.ReadBytes('\n')
	if err != nil {
		if err == io.EOF && len(line) == 0 {
			return nil, io.EOF
		}
		// Try to process a final unterminated line on EOF
		if len(line) == 0 {
			return nil, err
		}
	}

	trimmed := strings.TrimSpace(string(line))
	if trimmed == "" {
		return nil, nil
	}

	var response ChatResponse
	if err := json.Unmarshal([]byte(trimmed), &response); err != nil {
		return nil, &ClientError{Type: ErrTypeInvalidResponse, Message: "malformed stream frame", Cause: err}
	}

	if response.Model != "" {
		s.model = response.Model
	}

	content := response.Message.Content
	if content != "" {
		s.accumulator.WriteString(content)
		s.tokenCount++
	}

	chunk := &StreamChunk{
		Content: content,
		Done:    response.Done,
		Model:   s.model,
	}

	// The terminal frame carries the generation statistics
	if response.Done {
		chunk.DoneReason = response.DoneReason
		chunk.TotalDuration = time.Duration(response.TotalDuration)
		chunk.LoadDuration = time.Duration(response.LoadDuration)
		chunk.PromptEvalDuration = time.Duration(response.PromptEvalDuration)
		chunk.EvalDuration = time.Duration(response.EvalDuration)
		chunk.PromptTokens = response.PromptEvalCount
		chunk.CompletionTokens = response.EvalCount
	}

	return chunk, nil
}

// Accumulated returns all content received so far.
func (s *StreamReader) Accumulated() string {
	return s.accumulator.String()
}

// TokenCount returns the number of content-bearing frames received.
func (s *StreamReader) TokenCount() int {
	return s.tokenCount
}

// Model returns the model name reported by the stream.
func (s *StreamReader) Model() string {
	return s.model
}

// =============================================================================
// STREAM ACCUMULATOR
// =============================================================================

// StreamAccumulator collects streaming chunks into a full reply with
// generation statistics.
type StreamAccumulator struct {
	content strings.Builder
	stats   *Statistics
	done    bool
	err     error
}

// NewStreamAccumulator creates a new accumulator.
func NewStreamAccumulator() *StreamAccumulator {
	return &StreamAccumulator{
		stats: NewStatistics(),
	}
}

// Add processes a new chunk.
func (a *StreamAccumulator) Add(chunk StreamChunk) {
	if chunk.Error != nil {
		a.err = chunk.Error
		a.done = true
		return
	}

	if chunk.Content != "" && a.content.Len() == 0 {
		a.stats.RecordFirstToken()
	}

	a.content.WriteString(chunk.Content)

	if chunk.Done {
		a.done = true
		a.stats.FinalizeFromChunk(chunk)
	}
}

// Content returns the accumulated reply text.
func (a *StreamAccumulator) Content() string {
	return a.content.String()
}

// IsDone returns whether streaming is complete.
func (a *StreamAccumulator) IsDone() bool {
	return a.done
}

// Err returns any error that occurred.
func (a *StreamAccumulator) Err() error {
	return a.err
}

// Stats returns the collected statistics.
func (a *StreamAccumulator) Stats() *Statistics {
	return a.stats
}

// =============================================================================
// GENERATION STATISTICS
// =============================================================================

// Statistics holds timing and token counts for one generation.
type Statistics struct {
	StartTime      time.Time
	FirstTokenTime time.Time
	EndTime        time.Time

	PromptTokens     int
	CompletionTokens int

	TTFT            time.Duration // Time to first token
	TotalDuration   time.Duration
	TokensPerSecond float64
}

// NewStatistics creates a Statistics with the start time set.
func NewStatistics() *Statistics {
	return &Statistics{
		StartTime: time.Now(),
	}
}

// RecordFirstToken records when the first token was received.
func (s *Statistics) RecordFirstToken() {
	if s.FirstTokenTime.IsZero() {
		s.FirstTokenTime = time.Now()
		s.TTFT = s.FirstTokenTime.Sub(s.StartTime)
	}
}

// FinalizeFromChunk computes final statistics from the terminal chunk.
func (s *Statistics) FinalizeFromChunk(chunk StreamChunk) {
	s.EndTime = time.Now()
	s.PromptTokens = chunk.PromptTokens
	s.CompletionTokens = chunk.CompletionTokens

	s.TotalDuration = chunk.TotalDuration
	if s.TotalDuration == 0 {
		s.TotalDuration = s.EndTime.Sub(s.StartTime)
	}

	if chunk.EvalDuration > 0 {
		s.TokensPerSecond = float64(chunk.CompletionTokens) / chunk.EvalDuration.Seconds()
	} else if s.TotalDuration > 0 {
		s.TokensPerSecond = float64(chunk.CompletionTokens) / s.TotalDuration.Seconds()
	}
}

// Format returns a short display string, e.g. "2.5s | 128 tokens | 51.2 tok/s | TTFT 234ms".
func (s *Statistics) Format() string {
	var b strings.Builder
	b.WriteString(formatSeconds(s.TotalDuration.Seconds()))
	b.WriteString(" | ")
	b.WriteString(itoa(s.CompletionTokens))
	b.WriteString(" tokens | ")
	b.WriteString(ftoa1(s.TokensPerSecond))
	b.WriteString(" tok/s | TTFT ")
	b.WriteString(itoa(int(s.TTFT.Milliseconds())))
	b.WriteString("ms")
	return b.String()
}

// =============================================================================
// FORMAT HELPERS
// =============================================================================

func itoa(n int) string {
	if n == 0 {
		return "0"
	}
	negative := n < 0
	if negative {
		n = -n
	}
	var digits []byte
	for n > 0 {
		digits = append([]byte{byte('0' + n%10)}, digits...)
		n /= 10
	}
	if negative {
		return "-" + string(digits)
	}
	return string(digits)
}

func ftoa1(f float64) string {
	whole := int(f)
	frac := int((f - float64(whole)) * 10)
	if frac < 0 {
		frac = -frac
	}
	return itoa(whole) + "." + itoa(frac)
}

func formatSeconds(seconds float64) string {
	if seconds < 1 {
		return itoa(int(seconds*1000)) + "ms"
	}
	return ftoa1(seconds) + "s"
}
