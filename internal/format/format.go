// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package format normalizes raw model output for display.
package format

import "strings"

// DefaultFenceTag is the language tag forced onto every fenced code
// block. Models rarely emit reliable tags mid-stream, so all blocks
// are re-tagged uniformly rather than trusting the model's own label.
const DefaultFenceTag = "python"

// =============================================================================
// NORMALIZER
// =============================================================================

// Normalizer rewrites fenced code blocks in message content.
type Normalizer struct {
	// FenceTag replaces the language tag on every fence.
	FenceTag string
}

// NewNormalizer creates a normalizer with the default fence tag.
func NewNormalizer() *Normalizer {
	return &Normalizer{FenceTag: DefaultFenceTag}
}

// Normalize rewrites content so that:
//   - every fenced code block carries the configured language tag,
//     regardless of the tag the model emitted
//   - a trailing unclosed fence is closed
//   - closed blocks with an empty body are dropped
//
// Line structure outside code fences is preserved.
func (n *Normalizer) Normalize(content string) string {
	tag := n.FenceTag
	if tag == "" {
		tag = DefaultFenceTag
	}

	var parts []string
	var current []string
	inCode := false

	for _, line := range strings.Split(content, "\n") {
		if !strings.HasPrefix(strings.TrimSpace(line), "```") {
			current = append(current, line)
			continue
		}

		if inCode {
			if len(current) > 0 {
				parts = append(parts, "```"+tag)
				parts = append(parts, strings.Join(current, "\n"))
				parts = append(parts, "```")
			}
			current = nil
			inCode = false
		} else {
			if len(current) > 0 {
				parts = append(parts, strings.Join(current, "\n"))
			}
			current = nil
			inCode = true
		}
	}

	if len(current) > 0 {
		if inCode {
			// Stream ended mid-block; close it so the renderer
			// does not swallow the rest of the message.
			parts = append(parts, "```"+tag)
			parts = append(parts, strings.Join(current, "\n"))
			parts = append(parts, "```")
		} else {
			parts = append(parts, strings.Join(current, "\n"))
		}
	}

	return strings.Join(parts, "\n")
}

// Normalize rewrites content using the default fence tag.
func Normalize(content string) string {
	return NewNormalizer().Normalize(content)
}

// =============================================================================
// SEGMENT PARSING
// =============================================================================

// Segment is a contiguous run of message content, either prose or a
// fenced code block.
type Segment struct {
	// Code is true for fenced code block segments.
	Code bool
	// Language is the fence tag (code segments only).
	Language string
	// Text is the segment body without fence markers.
	Text string
}

// Split parses normalized content into prose and code segments for
// structured rendering. An unclosed trailing fence is treated as a
// complete code segment.
func Split(content string) []Segment {
	var segments []Segment
	var current []string
	inCode := false
	language := ""

	flush := func() {
		if len(current) == 0 {
			return
		}
		segments = append(segments, Segment{
			Code:     inCode,
			Language: language,
			Text:     strings.Join(current, "\n"),
		})
		current = nil
	}

	for _, line := range strings.Split(content, "\n") {
		trimmed := strings.TrimSpace(line)
		if !strings.HasPrefix(trimmed, "```") {
			current = append(current, line)
			continue
		}

		if inCode {
			flush()
			inCode = false
			language = ""
		} else {
			flush()
			inCode = true
			language = strings.TrimPrefix(trimmed, "```")
		}
	}
	flush()

	return segments
}
