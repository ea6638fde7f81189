// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package format

import (
	"strings"
	"testing"
)

func TestNormalize_RetagsFences(t *testing.T) {
	input := "Here you go:\n```go\nfmt.Println(1)\n```\nDone."
	want := "Here you go:\n```python\nfmt.Println(1)\n```\nDone."

	if got := Normalize(input); got != want {
		t.Errorf("Normalize() = %q, want %q", got, want)
	}
}

func TestNormalize_ClosesUnclosedFence(t *testing.T) {
	input := "Try this:\n```\nprint('hi')"
	got := Normalize(input)

	if !strings.HasSuffix(got, "```") {
		t.Errorf("unclosed fence not closed: %q", got)
	}
	if !strings.Contains(got, "```python\nprint('hi')") {
		t.Errorf("code body lost: %q", got)
	}
}

func TestNormalize_DropsEmptyBlock(t *testing.T) {
	input := "before\n```\n```\nafter"
	got := Normalize(input)

	if strings.Contains(got, "```") {
		t.Errorf("empty block survived: %q", got)
	}
	if !strings.Contains(got, "before") || !strings.Contains(got, "after") {
		t.Errorf("prose lost: %q", got)
	}
}

func TestNormalize_MultipleBlocks(t *testing.T) {
	input := "a\n```js\n1\n```\nb\n```rust\n2\n```\nc"
	got := Normalize(input)

	if strings.Count(got, "```python") != 2 {
		t.Errorf("want both blocks re-tagged, got %q", got)
	}
	if strings.Contains(got, "js") || strings.Contains(got, "rust") {
		t.Errorf("original tags leaked: %q", got)
	}
}

func TestNormalize_PlainTextUntouched(t *testing.T) {
	input := "just a plain\nmulti-line answer"
	if got := Normalize(input); got != input {
		t.Errorf("Normalize() = %q, want input unchanged", got)
	}
}

func TestNormalize_IndentedFence(t *testing.T) {
	// Fences with leading whitespace still count as fences
	input := "text\n  ```go\ncode\n  ```"
	got := Normalize(input)

	if !strings.Contains(got, "```python\ncode\n```") {
		t.Errorf("indented fence not normalized: %q", got)
	}
}

func TestNormalizer_CustomTag(t *testing.T) {
	n := &Normalizer{FenceTag: "text"}
	got := n.Normalize("```go\nx\n```")

	if !strings.Contains(got, "```text") {
		t.Errorf("custom tag not applied: %q", got)
	}
}

func TestSplit(t *testing.T) {
	segments := Split("intro\n```python\ncode here\n```\noutro")

	if len(segments) != 3 {
		t.Fatalf("len(segments) = %d, want 3", len(segments))
	}
	if segments[0].Code || segments[0].Text != "intro" {
		t.Errorf("segment 0 = %+v", segments[0])
	}
	if !segments[1].Code || segments[1].Language != "python" || segments[1].Text != "code here" {
		t.Errorf("segment 1 = %+v", segments[1])
	}
	if segments[2].Code || segments[2].Text != "outro" {
		t.Errorf("segment 2 = %+v", segments[2])
	}
}

func TestSplit_UnclosedFence(t *testing.T) {
	segments := Split("```python\nstill streaming")

	if len(segments) != 1 {
		t.Fatalf("len(segments) = %d, want 1", len(segments))
	}
	if !segments[0].Code || segments[0].Text != "still streaming" {
		t.Errorf("segment = %+v", segments[0])
	}
}
