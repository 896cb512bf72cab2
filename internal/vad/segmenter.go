// Copyright (c) 2025 Asher Buk
// SPDX-License-Identifier: MIT

package vad

import (
	"context"
	"sync"
	"time"

	"github.com/swictation/swictation/internal/errs"
	"github.com/swictation/swictation/internal/logger"
	"github.com/swictation/swictation/internal/model"
)

type segState int

const (
	stateQuiet segState = iota
	stateVoiced
)

// Config holds the Segmenter's tunables, sourced from the VAD config section.
type Config struct {
	Threshold    float64
	MinSilenceS  float64
	MinSpeechS   float64
	MaxSpeechS   float64
	PreRollMs    int
	SampleRate   int
}

// Segmenter runs the Quiet/Voiced state machine described by the component
// design: it consumes audio frames, scores each with an Inferencer, and
// emits SpeechSegment events with strictly increasing segment IDs. It owns
// its Inferencer exclusively and never shares it across sessions.
type Segmenter struct {
	cfg   Config
	infer Inferencer
	log   logger.Logger

	state       segState
	segID       uint64
	preRoll     []float32
	preRollCap  int
	current     *model.SpeechSegment
	voicedSince time.Time
	quietSince  time.Time
	aboveSince  time.Time
	belowSince  time.Time
	consecErr   int

	mu sync.Mutex
}

// New constructs a Segmenter around the given Inferencer.
func New(cfg Config, infer Inferencer, log logger.Logger) *Segmenter {
	preRollCap := int(float64(cfg.SampleRate) * float64(cfg.PreRollMs) / 1000.0)
	return &Segmenter{
		cfg:        cfg,
		infer:      infer,
		log:        log,
		state:      stateQuiet,
		preRollCap: preRollCap,
	}
}

// Active reports whether the segmenter currently considers the stream
// voiced, for metrics sampling outside the ingest hot path.
func (s *Segmenter) Active() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state == stateVoiced
}

// Run consumes frames from in and emits closed (and, optionally in the
// future, in-progress) segments to out. It returns when in is closed, ctx is
// canceled, or a fatal VAD error occurs (after closing any open segment with
// cause=session-stop).
func (s *Segmenter) Run(ctx context.Context, in <-chan model.AudioFrame, out chan<- model.SpeechSegment) error {
	for {
		select {
		case <-ctx.Done():
			s.closeOnStop(out)
			return nil
		case frame, ok := <-in:
			if !ok {
				s.closeOnStop(out)
				return nil
			}
			if err := s.ingest(frame, out); err != nil {
				s.closeOnStop(out)
				return err
			}
		}
	}
}

func (s *Segmenter) ingest(frame model.AudioFrame, out chan<- model.SpeechSegment) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	p, err := s.infer.Infer(frame.Samples)
	if err != nil {
		s.consecErr++
		s.log.Error("vad inference error (%d consecutive): %v", s.consecErr, err)
		p = 0
		if s.consecErr >= 3 {
			return errs.VAD("infer", true, err)
		}
	} else {
		s.consecErr = 0
	}

	now := frame.CaptureTS
	speech := float64(p) >= s.cfg.Threshold

	switch s.state {
	case stateQuiet:
		s.bufferPreRoll(frame.Samples)
		if speech {
			if s.aboveSince.IsZero() {
				s.aboveSince = now
			}
			if now.Sub(s.aboveSince).Seconds() >= s.cfg.MinSpeechS {
				s.openSegment(now)
				s.current.Samples = append(s.current.Samples, frame.Samples...)
				s.state = stateVoiced
				s.belowSince = time.Time{}
			}
		} else {
			s.aboveSince = time.Time{}
		}

	case stateVoiced:
		s.current.Samples = append(s.current.Samples, frame.Samples...)

		if now.Sub(s.current.StartTS).Seconds() >= s.cfg.MaxSpeechS {
			closed := s.current.Samples
			s.closeSegment(now, model.CauseMaxDuration, out)
			s.reopenWithTrailingPreRoll(now, closed)
			s.belowSince = time.Time{}
			break
		}

		if !speech {
			if s.belowSince.IsZero() {
				s.belowSince = now
			}
			if now.Sub(s.belowSince).Seconds() >= s.cfg.MinSilenceS {
				s.closeSegment(now, model.CauseSilence, out)
				s.state = stateQuiet
				s.preRoll = s.preRoll[:0]
				s.aboveSince = time.Time{}
			}
		} else {
			s.belowSince = time.Time{}
		}
	}
	return nil
}

func (s *Segmenter) bufferPreRoll(samples []float32) {
	if s.preRollCap <= 0 {
		return
	}
	s.preRoll = append(s.preRoll, samples...)
	if over := len(s.preRoll) - s.preRollCap; over > 0 {
		s.preRoll = s.preRoll[over:]
	}
}

func (s *Segmenter) openSegment(ts time.Time) {
	s.segID++
	seg := &model.SpeechSegment{
		SegmentID: s.segID,
		StartTS:   ts,
	}
	seg.Samples = append(seg.Samples, s.preRoll...)
	s.current = seg
}

func (s *Segmenter) closeSegment(ts time.Time, cause model.SegmentCause, out chan<- model.SpeechSegment) {
	if s.current == nil {
		return
	}
	s.current.EndTS = ts
	s.current.IsFinal = true
	s.current.Cause = cause
	out <- *s.current
	s.current = nil
}

// reopenWithTrailingPreRoll immediately starts a new segment after a
// max-duration force-close, seeded with the last min_silence_s of audio
// from the segment that just closed.
func (s *Segmenter) reopenWithTrailingPreRoll(ts time.Time, closed []float32) {
	s.segID++
	trailing := int(float64(s.cfg.SampleRate) * s.cfg.MinSilenceS)
	seg := &model.SpeechSegment{
		SegmentID: s.segID,
		StartTS:   ts,
	}
	if trailing > 0 && len(closed) > 0 {
		if trailing > len(closed) {
			trailing = len(closed)
		}
		seg.Samples = append(seg.Samples, closed[len(closed)-trailing:]...)
	}
	s.current = seg
}

func (s *Segmenter) closeOnStop(out chan<- model.SpeechSegment) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.current != nil {
		s.closeSegment(time.Now(), model.CauseSessionStop, out)
	}
	s.infer.Reset()
}
