// Copyright (c) 2025 Asher Buk
// SPDX-License-Identifier: MIT

package vad

import (
	"context"
	"testing"
	"time"

	"github.com/swictation/swictation/internal/logger"
	"github.com/swictation/swictation/internal/model"
)

// scriptedInferencer returns a fixed posterior per call, looping the last
// value once the script is exhausted, so a test can drive the state machine
// frame-by-frame without a real model.
type scriptedInferencer struct {
	posteriors []float32
	i          int
	err        error
	resetCount int
}

func (s *scriptedInferencer) Infer(_ []float32) (float32, error) {
	if s.err != nil {
		return 0, s.err
	}
	if len(s.posteriors) == 0 {
		return 0, nil
	}
	idx := s.i
	if idx >= len(s.posteriors) {
		idx = len(s.posteriors) - 1
	}
	s.i++
	return s.posteriors[idx], nil
}

func (s *scriptedInferencer) Reset()      { s.resetCount++ }
func (s *scriptedInferencer) Close() error { return nil }

func testConfig() Config {
	return Config{
		Threshold:   0.5,
		MinSilenceS: 0.05,
		MinSpeechS:  0.02,
		MaxSpeechS:  10,
		PreRollMs:   0,
		SampleRate:  16000,
	}
}

func testLogger() logger.Logger {
	return logger.NewDefaultLogger(logger.ErrorLevel)
}

func frameAt(t time.Time, seq uint64) model.AudioFrame {
	return model.AudioFrame{
		SampleRate: 16000,
		Samples:    make([]float32, 160),
		CaptureTS:  t,
		Seq:        seq,
	}
}

func TestSegmenter_OpensAndClosesSegmentOnSilence(t *testing.T) {
	infer := &scriptedInferencer{posteriors: []float32{0.9, 0.9, 0.9, 0.1, 0.1, 0.1}}
	seg := New(testConfig(), infer, testLogger())

	in := make(chan model.AudioFrame, 10)
	out := make(chan model.SpeechSegment, 10)

	base := time.Now()
	step := 30 * time.Millisecond
	for i := 0; i < 6; i++ {
		in <- frameAt(base.Add(time.Duration(i)*step), uint64(i))
	}
	close(in)

	if err := seg.Run(context.Background(), in, out); err != nil {
		t.Fatalf("Run returned error: %v", err)
	}
	close(out)

	var segments []model.SpeechSegment
	for s := range out {
		segments = append(segments, s)
	}
	if len(segments) != 1 {
		t.Fatalf("got %d segments, want 1", len(segments))
	}
	if !segments[0].IsFinal {
		t.Errorf("segment IsFinal = false, want true")
	}
	if segments[0].Cause != model.CauseSilence {
		t.Errorf("segment Cause = %q, want %q", segments[0].Cause, model.CauseSilence)
	}
	if segments[0].SegmentID != 1 {
		t.Errorf("segment SegmentID = %d, want 1", segments[0].SegmentID)
	}
}

func TestSegmenter_ClosesOnSessionStop(t *testing.T) {
	infer := &scriptedInferencer{posteriors: []float32{0.9, 0.9, 0.9}}
	seg := New(testConfig(), infer, testLogger())

	in := make(chan model.AudioFrame, 10)
	out := make(chan model.SpeechSegment, 10)

	base := time.Now()
	step := 30 * time.Millisecond
	for i := 0; i < 3; i++ {
		in <- frameAt(base.Add(time.Duration(i)*step), uint64(i))
	}
	close(in)

	if err := seg.Run(context.Background(), in, out); err != nil {
		t.Fatalf("Run returned error: %v", err)
	}
	close(out)

	var segments []model.SpeechSegment
	for s := range out {
		segments = append(segments, s)
	}
	if len(segments) != 1 {
		t.Fatalf("got %d segments, want 1", len(segments))
	}
	if segments[0].Cause != model.CauseSessionStop {
		t.Errorf("segment Cause = %q, want %q", segments[0].Cause, model.CauseSessionStop)
	}
	if infer.resetCount != 1 {
		t.Errorf("Reset called %d times, want 1", infer.resetCount)
	}
}

func TestSegmenter_StaysQuietBelowMinSpeech(t *testing.T) {
	cfg := testConfig()
	cfg.MinSpeechS = 1.0 // require a full second of continuous speech
	infer := &scriptedInferencer{posteriors: []float32{0.9, 0.9, 0.9}}
	seg := New(cfg, infer, testLogger())

	in := make(chan model.AudioFrame, 10)
	out := make(chan model.SpeechSegment, 10)

	base := time.Now()
	step := 30 * time.Millisecond
	for i := 0; i < 3; i++ {
		in <- frameAt(base.Add(time.Duration(i)*step), uint64(i))
	}
	close(in)

	if err := seg.Run(context.Background(), in, out); err != nil {
		t.Fatalf("Run returned error: %v", err)
	}
	close(out)

	var segments []model.SpeechSegment
	for s := range out {
		segments = append(segments, s)
	}
	if len(segments) != 0 {
		t.Fatalf("got %d segments, want 0 (speech run never reached min_speech_s)", len(segments))
	}
	if seg.Active() {
		t.Errorf("Active() = true, want false")
	}
}

func TestSegmenter_FatalAfterThreeConsecutiveInferErrors(t *testing.T) {
	infer := &scriptedInferencer{err: errTestInfer}
	seg := New(testConfig(), infer, testLogger())

	in := make(chan model.AudioFrame, 10)
	out := make(chan model.SpeechSegment, 10)

	base := time.Now()
	step := 30 * time.Millisecond
	for i := 0; i < 3; i++ {
		in <- frameAt(base.Add(time.Duration(i)*step), uint64(i))
	}
	close(in)

	err := seg.Run(context.Background(), in, out)
	if err == nil {
		t.Fatal("expected a fatal error after 3 consecutive inference failures, got nil")
	}
}

func TestSegmenter_MaxDurationForcesClose(t *testing.T) {
	cfg := testConfig()
	cfg.MaxSpeechS = 0.05
	infer := &scriptedInferencer{posteriors: []float32{0.9, 0.9, 0.9, 0.9, 0.9, 0.9, 0.9, 0.9}}
	seg := New(cfg, infer, testLogger())

	in := make(chan model.AudioFrame, 10)
	out := make(chan model.SpeechSegment, 10)

	base := time.Now()
	step := 30 * time.Millisecond
	for i := 0; i < 8; i++ {
		in <- frameAt(base.Add(time.Duration(i)*step), uint64(i))
	}
	close(in)

	if err := seg.Run(context.Background(), in, out); err != nil {
		t.Fatalf("Run returned error: %v", err)
	}
	close(out)

	var segments []model.SpeechSegment
	for s := range out {
		segments = append(segments, s)
	}
	if len(segments) < 1 {
		t.Fatalf("got %d segments, want at least 1", len(segments))
	}
	if segments[0].Cause != model.CauseMaxDuration {
		t.Errorf("first segment Cause = %q, want %q", segments[0].Cause, model.CauseMaxDuration)
	}
	if segments[0].SegmentID != 1 {
		t.Errorf("first segment SegmentID = %d, want 1", segments[0].SegmentID)
	}
}

type testInferError struct{}

func (testInferError) Error() string { return "scripted inference failure" }

var errTestInfer = testInferError{}
