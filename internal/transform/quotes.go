// Copyright (c) 2025 Asher Buk
// SPDX-License-Identifier: MIT

package transform

import (
	"regexp"
	"strings"
)

// quoteWordPattern matches a span delimited by the spoken word "quote",
// which rewriteSymbols leaves untouched before this pass runs -- so quote
// handling recognizes the spoken token directly rather than a symbol.
var quoteWordPattern = regexp.MustCompile(`(?i)\bquote\b\s*(.*?)\s*\bquote\b`)

// handleQuotes turns paired "quote ... quote" spans into balanced
// quotation marks, trimming the inner spacing the spoken delimiters leave
// behind.
func handleQuotes(text string) string {
	return quoteWordPattern.ReplaceAllStringFunc(text, func(match string) string {
		sub := quoteWordPattern.FindStringSubmatch(match)
		if len(sub) != 2 {
			return match
		}
		inner := strings.TrimSpace(sub[1])
		return "“" + inner + "”"
	})
}
