// Copyright (c) 2025 Asher Buk
// SPDX-License-Identifier: MIT

package transform

import "testing"

func TestNormalizeNumbers(t *testing.T) {
	testCases := []struct {
		name     string
		input    string
		expected string
	}{
		{
			name:     "two digit words become a numeral run",
			input:    "call one two three now",
			expected: "call 123 now",
		},
		{
			name:     "single digit word left as a word",
			input:    "i have one apple",
			expected: "i have one apple",
		},
		{
			name:     "mixed case digit words",
			input:    "dial Nine One One",
			expected: "dial 911",
		},
		{
			name:     "no digit words",
			input:    "plain sentence here",
			expected: "plain sentence here",
		},
		{
			name:     "two separate short runs",
			input:    "zero one then nine eight",
			expected: "01 then 98",
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			result := normalizeNumbers(tc.input)
			if result != tc.expected {
				t.Errorf("normalizeNumbers(%q) = %q, want %q", tc.input, result, tc.expected)
			}
		})
	}
}
