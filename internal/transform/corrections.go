// Copyright (c) 2025 Asher Buk
// SPDX-License-Identifier: MIT

package transform

import (
	"strings"

	"github.com/antzucaro/matchr"
	"github.com/swictation/swictation/internal/model"
)

// maxNgram bounds how many words a correction trigger may span; n-grams
// beyond this are never attempted, keeping the pass linear in sentence
// length.
const maxNgram = 4

// applyCorrections performs a left-to-right, non-overlapping fuzzy phonetic
// replacement pass: at each word position it tries the longest n-gram down
// to a single word, replacing the first correction whose trigger matches at
// or above threshold. Ties are broken by higher confidence, then higher
// use_count.
func applyCorrections(text string, corrections []model.Correction, threshold float64) string {
	if len(corrections) == 0 {
		return text
	}
	words := strings.Fields(text)
	if len(words) == 0 {
		return text
	}

	var out []string
	i := 0
	for i < len(words) {
		matchedLen, replacement := 0, ""
		for n := maxNgram; n >= 1; n-- {
			if i+n > len(words) {
				continue
			}
			candidate := strings.Join(words[i:i+n], " ")
			if c, ok := bestCorrection(candidate, corrections, threshold); ok {
				matchedLen = n
				replacement = c.Replacement
				break
			}
		}
		if matchedLen > 0 {
			out = append(out, replacement)
			i += matchedLen
			continue
		}
		out = append(out, words[i])
		i++
	}
	return strings.Join(out, " ")
}

// bestCorrection returns the corrections entry whose trigger best matches
// candidate phonetically, provided it clears threshold. Matching is done on
// Double Metaphone codes rather than raw spelling, so candidates that sound
// alike but are spelled differently (e.g. "write" and "right") still match;
// Jaro-Winkler over the encoded codes (not the original words) turns the
// normally binary metaphone comparison into a graded score so near-miss
// codes can still clear a lenient threshold. Only triggers with the same
// number of words as candidate are considered.
func bestCorrection(candidate string, corrections []model.Correction, threshold float64) (model.Correction, bool) {
	candPrimary, candSecondary := matchr.DoubleMetaphone(strings.ToLower(candidate))
	candWords := len(strings.Fields(candidate))
	var best model.Correction
	var bestScore float64
	found := false

	for _, c := range corrections {
		if len(strings.Fields(c.Trigger)) != candWords {
			continue
		}
		triggerPrimary, triggerSecondary := matchr.DoubleMetaphone(strings.ToLower(c.Trigger))
		score := phoneticScore(candPrimary, candSecondary, triggerPrimary, triggerSecondary)
		if score < threshold {
			continue
		}
		if !found ||
			score > bestScore ||
			(score == bestScore && c.Confidence > best.Confidence) ||
			(score == bestScore && c.Confidence == best.Confidence && c.UseCount > best.UseCount) {
			best = c
			bestScore = score
			found = true
		}
	}
	return best, found
}

// phoneticScore returns the best Jaro-Winkler similarity across every
// non-empty pairing of a word's primary/secondary Double Metaphone codes
// against another's, so either encoding of a heterograph can match.
func phoneticScore(aPrimary, aSecondary, bPrimary, bSecondary string) float64 {
	pairs := [4][2]string{
		{aPrimary, bPrimary},
		{aPrimary, bSecondary},
		{aSecondary, bPrimary},
		{aSecondary, bSecondary},
	}
	var best float64
	for _, p := range pairs {
		if p[0] == "" || p[1] == "" {
			continue
		}
		if score := matchr.JaroWinkler(p[0], p[1], false); score > best {
			best = score
		}
	}
	return best
}
