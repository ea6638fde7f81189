// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package components

import (
	"strconv"

	"github.com/morganforge/deepchat/internal/util"
)

func pluralTokens(n int) string {
	return strconv.Itoa(n) + " " + util.Pluralize(n, "token", "tokens")
}

func formatTokPerSec(rate float64) string {
	return strconv.FormatFloat(rate, 'f', 1, 64) + " tok/s"
}
