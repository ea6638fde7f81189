// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package util

import "testing"

func TestTruncateRunes(t *testing.T) {
	tests := []struct {
		name string
		s    string
		max  int
		want string
	}{
		{"shorter than max", "hello", 10, "hello"},
		{"exact length", "hello", 5, "hello"},
		{"truncated with ellipsis", "hello world", 8, "hello..."},
		{"tiny max", "hello", 2, "he"},
		{"zero max", "hello", 0, ""},
		{"multibyte safe", "héllo wörld", 8, "héllo..."},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			if got := TruncateRunes(tc.s, tc.max); got != tc.want {
				t.Errorf("TruncateRunes(%q, %d) = %q, want %q", tc.s, tc.max, got, tc.want)
			}
		})
	}
}

func TestTruncateWidth(t *testing.T) {
	// CJK characters occupy two columns each
	if got := TruncateWidth("日本語のテスト", 9); StringWidth(got) > 9 {
		t.Errorf("TruncateWidth() = %q, width %d > 9", got, StringWidth(got))
	}
	if got := TruncateWidth("short", 20); got != "short" {
		t.Errorf("TruncateWidth() = %q, want unchanged", got)
	}
	if got := TruncateWidth("anything", 0); got != "" {
		t.Errorf("TruncateWidth() = %q, want empty", got)
	}
}

func TestStringWidth(t *testing.T) {
	if got := StringWidth("abc"); got != 3 {
		t.Errorf("StringWidth(abc) = %d, want 3", got)
	}
	if got := StringWidth("日本"); got != 4 {
		t.Errorf("StringWidth(日本) = %d, want 4", got)
	}
}

func TestPadRight(t *testing.T) {
	if got := PadRight("ab", 5); got != "ab   " {
		t.Errorf("PadRight() = %q", got)
	}
}

func TestPluralize(t *testing.T) {
	if got := Pluralize(1, "message", "messages"); got != "message" {
		t.Errorf("Pluralize(1) = %q", got)
	}
	if got := Pluralize(2, "message", "messages"); got != "messages" {
		t.Errorf("Pluralize(2) = %q", got)
	}
	if got := Pluralize(0, "message", "messages"); got != "messages" {
		t.Errorf("Pluralize(0) = %q", got)
	}
}
