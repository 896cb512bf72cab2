// Copyright (c) 2025 Asher Buk
// SPDX-License-Identifier: MIT

package transform

import (
	"regexp"
	"strconv"
	"strings"
)

var digitWords = map[string]string{
	"zero": "0", "one": "1", "two": "2", "three": "3", "four": "4",
	"five": "5", "six": "6", "seven": "7", "eight": "8", "nine": "9",
}

var digitRun = regexp.MustCompile(`(?i)\b(?:zero|one|two|three|four|five|six|seven|eight|nine)(?:\s+(?:zero|one|two|three|four|five|six|seven|eight|nine)){1,}\b`)

// normalizeNumbers converts runs of two or more spoken digit words into a
// single numeral sequence ("one two three" -> "123"). Isolated single digit
// words are left as words, since "one" standing alone is usually a pronoun
// or quantifier rather than a digit.
func normalizeNumbers(text string) string {
	return digitRun.ReplaceAllStringFunc(text, func(match string) string {
		words := strings.Fields(match)
		var b strings.Builder
		for _, w := range words {
			b.WriteString(digitWords[strings.ToLower(w)])
		}
		if _, err := strconv.Atoi(b.String()); err != nil {
			return match
		}
		return b.String()
	})
}
