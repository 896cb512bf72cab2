// Copyright (c) 2025 Asher Buk
// SPDX-License-Identifier: MIT

package transform

import "testing"

func TestRewriteSymbols(t *testing.T) {
	testCases := []struct {
		name     string
		input    string
		expected string
	}{
		{"comma", "hello comma world", "hello , world"},
		{"period", "the end period", "the end ."},
		{"full stop wins over period", "end full stop now", "end . now"},
		{"question mark", "really question mark", "really ?"},
		{"case insensitive", "hello COMMA world", "hello , world"},
		{"new paragraph", "one new paragraph two", "one \n\n two"},
		{"does not touch substrings", "a commander arrived", "a commander arrived"},
		{"multiple symbols", "a comma b colon c", "a , b : c"},
		{"no symbols", "plain text stays put", "plain text stays put"},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			result := rewriteSymbols(tc.input)
			if result != tc.expected {
				t.Errorf("rewriteSymbols(%q) = %q, want %q", tc.input, result, tc.expected)
			}
		})
	}
}
