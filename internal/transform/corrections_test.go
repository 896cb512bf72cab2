// Copyright (c) 2025 Asher Buk
// SPDX-License-Identifier: MIT

package transform

import (
	"testing"

	"github.com/swictation/swictation/internal/model"
)

func TestApplyCorrections(t *testing.T) {
	corrections := []model.Correction{
		{Trigger: "write", Replacement: "right", Scope: "global", Confidence: 0.9, UseCount: 5},
		{Trigger: "kubernetes", Replacement: "Kubernetes", Scope: "global", Confidence: 0.95, UseCount: 10},
	}

	testCases := []struct {
		name       string
		input      string
		threshold  float64
		expected   string
	}{
		{
			name:      "phonetically matching but differently spelled word is corrected",
			input:     "turn right here",
			threshold: 0.9,
			expected:  "turn right here",
		},
		{
			name:      "heterograph matches via phonetic code, not raw spelling",
			input:     "i will rite this down",
			threshold: 0.85,
			expected:  "i will right this down",
		},
		{
			name:      "no corrections configured leaves text untouched",
			input:     "no change here",
			threshold: 0.9,
			expected:  "no change here",
		},
		{
			name:      "unrelated word does not trigger a replacement",
			input:     "the weather is nice today",
			threshold: 0.9,
			expected:  "the weather is nice today",
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			var active []model.Correction
			if tc.name != "no corrections configured leaves text untouched" {
				active = corrections
			}
			result := applyCorrections(tc.input, active, tc.threshold)
			if result != tc.expected {
				t.Errorf("applyCorrections(%q) = %q, want %q", tc.input, result, tc.expected)
			}
		})
	}
}

func TestBestCorrection(t *testing.T) {
	corrections := []model.Correction{
		{Trigger: "write", Replacement: "right", Scope: "global", Confidence: 0.5, UseCount: 1},
		{Trigger: "rite", Replacement: "rite-of-passage", Scope: "global", Confidence: 0.9, UseCount: 50},
	}

	c, ok := bestCorrection("right", corrections, 0.8)
	if !ok {
		t.Fatalf("expected a match for %q", "right")
	}
	// "rite" has higher confidence and use_count; both share the same
	// Double Metaphone code as "right", so the tie is broken in its favor.
	if c.Replacement != "rite-of-passage" {
		t.Errorf("bestCorrection tie-break picked %q, want %q", c.Replacement, "rite-of-passage")
	}
}

func TestPhoneticScore(t *testing.T) {
	// "write" and "right" share the same Double Metaphone primary code (RT),
	// so their phonetic score should be a perfect match even though the
	// spellings differ completely.
	score := phoneticScore("RT", "", "RT", "")
	if score != 1.0 {
		t.Errorf("phoneticScore for identical codes = %v, want 1.0", score)
	}

	// Completely different codes score low.
	score = phoneticScore("KR", "", "TMS", "")
	if score > 0.5 {
		t.Errorf("phoneticScore for unrelated codes = %v, want <= 0.5", score)
	}

	// Empty codes on either side are skipped, not compared.
	score = phoneticScore("", "", "", "")
	if score != 0 {
		t.Errorf("phoneticScore with no usable codes = %v, want 0", score)
	}
}
