// Copyright (c) 2025 Asher Buk
// SPDX-License-Identifier: MIT

// Package transform implements the Text Transform Pipeline: an ordered set
// of rewrites applied to a Transcription's text to produce text_out.
// Transforms are pure functions of (text, correction store); given the same
// inputs the output never varies.
package transform

import "github.com/swictation/swictation/internal/model"

// CorrectionStore is the read side of the learned-corrections store the
// fuzzy-matching pass consults. Implementations must be safe for concurrent
// reads from the pipeline's single caller.
type CorrectionStore interface {
	Corrections() []model.Correction
}

// Config holds the pipeline's tunables, sourced from the transform config
// section.
type Config struct {
	PhoneticThreshold   float64
	NumberNormalization bool
}

// Pipeline applies the ordered transforms to finals, and the reduced subset
// to partials (see Apply's partial parameter).
type Pipeline struct {
	cfg   Config
	store CorrectionStore
}

// New constructs a Pipeline. store may be nil, in which case the
// user-corrections transform is a no-op.
func New(cfg Config, store CorrectionStore) *Pipeline {
	return &Pipeline{cfg: cfg, store: store}
}

// Apply runs the transform chain over text and returns text_out. When
// partial is true, only the transforms that do not depend on segment
// boundaries run (spoken-symbol rewrites, capitalization, key markers);
// running the rest would change output retroactively as the segment grows.
func (p *Pipeline) Apply(text string, partial bool) string {
	out := rewriteSymbols(text)

	if !partial {
		out = handleQuotes(out)
	}

	out = capitalize(out)

	if !partial && p.cfg.NumberNormalization {
		out = normalizeNumbers(out)
	}

	out = applyKeyMarkers(out)

	if !partial && p.store != nil {
		out = applyCorrections(out, p.store.Corrections(), p.cfg.PhoneticThreshold)
	}

	return out
}
