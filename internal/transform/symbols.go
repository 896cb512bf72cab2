// Copyright (c) 2025 Asher Buk
// SPDX-License-Identifier: MIT

package transform

import (
	"regexp"
	"strings"
)

// spokenSymbols maps a spoken token to its literal replacement. Matched only
// on word boundaries so that e.g. "comma" inside a proper noun is untouched
// by the regex construction below (each entry is wrapped in \b).
var spokenSymbols = map[string]string{
	"comma":          ",",
	"period":         ".",
	"full stop":      ".",
	"question mark":  "?",
	"exclamation mark": "!",
	"exclamation point": "!",
	"colon":          ":",
	"semicolon":      ";",
	"new line":       "\n",
	"newline":        "\n",
	"new paragraph":  "\n\n",
	"open brace":     "{",
	"close brace":    "}",
	"open paren":     "(",
	"close paren":    ")",
	"open bracket":   "[",
	"close bracket":  "]",
	"hyphen":         "-",
	"dash":           "-",
	"underscore":     "_",
	"ampersand":      "&",
	"at sign":        "@",
	"percent sign":   "%",
	"percent":        "%",
}

var symbolPattern *regexp.Regexp

func init() {
	// Longest tokens first so multi-word entries match before their
	// single-word substrings would.
	tokens := make([]string, 0, len(spokenSymbols))
	for k := range spokenSymbols {
		tokens = append(tokens, k)
	}
	for i := 0; i < len(tokens); i++ {
		for j := i + 1; j < len(tokens); j++ {
			if len(tokens[j]) > len(tokens[i]) {
				tokens[i], tokens[j] = tokens[j], tokens[i]
			}
		}
	}
	escaped := make([]string, len(tokens))
	for i, t := range tokens {
		escaped[i] = regexp.QuoteMeta(t)
	}
	symbolPattern = regexp.MustCompile(`(?i)\b(` + strings.Join(escaped, "|") + `)\b`)
}

// rewriteSymbols replaces recognized spoken-symbol tokens with their literal
// forms, matched only on word boundaries.
func rewriteSymbols(text string) string {
	return symbolPattern.ReplaceAllStringFunc(text, func(match string) string {
		return spokenSymbols[strings.ToLower(match)]
	})
}
