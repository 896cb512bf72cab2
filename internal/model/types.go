// Copyright (c) 2025 Asher Buk
// SPDX-License-Identifier: MIT

// Package model holds the data entities shared across pipeline stages:
// audio frames, speech segments, transcriptions, session state and the
// correction/metrics records. None of these types carry behavior; they are
// handed off between stages exclusively by value over channels.
package model

import "time"

// AudioFrame is one fixed-size chunk of mono PCM samples captured at a
// constant sample rate. Frames are delivered to the VAD in strict
// monotonic order; a dropped frame is counted, never silently skipped.
type AudioFrame struct {
	SampleRate int
	Samples    []float32 // normalized to [-1, 1]
	CaptureTS  time.Time
	Seq        uint64
}

// SegmentCause names why a SpeechSegment was closed.
type SegmentCause string

const (
	CauseSilence     SegmentCause = "silence"
	CauseMaxDuration SegmentCause = "max-duration"
	CauseSessionStop SegmentCause = "session-stop"
)

// SpeechSegment is a bounded run of voiced audio delimited by the VAD.
type SpeechSegment struct {
	SegmentID uint64
	StartTS   time.Time
	EndTS     time.Time // zero until closed
	Samples   []float32 // 16kHz mono float32, includes pre-roll
	IsFinal   bool
	Cause     SegmentCause
}

// TranscriptionKind distinguishes intermediate from definitive results.
type TranscriptionKind string

const (
	KindPartial TranscriptionKind = "partial"
	KindFinal   TranscriptionKind = "final"
)

// Transcription is one STT output event for a segment.
type Transcription struct {
	SegmentID  uint64
	Text       string
	TextOut    string
	Confidence *float64
	LatencyMs  int64
	Kind       TranscriptionKind
}

// SessionState is the single process-wide daemon state.
type SessionState string

const (
	StateIdle      SessionState = "Idle"
	StateRecording SessionState = "Recording"
	StateStopping  SessionState = "Stopping"
)

// Correction is a learned trigger -> replacement pair used by the text
// transform pipeline's fuzzy phonetic matcher.
type Correction struct {
	Trigger     string
	Replacement string
	Scope       string
	Confidence  float64
	UseCount    int64
}

// MetricsEventType names one of the Metrics Broadcaster's wire event kinds.
type MetricsEventType string

const (
	EventSessionStart   MetricsEventType = "session_start"
	EventSessionEnd     MetricsEventType = "session_end"
	EventStateChange    MetricsEventType = "state_change"
	EventTranscription  MetricsEventType = "transcription"
	EventMetricsUpdate  MetricsEventType = "metrics_update"
)

// MetricsEvent is one line of the metrics broadcaster's NDJSON stream. Type
// selects which of the optional fields are populated; the rest are omitted
// from the wire form.
type MetricsEvent struct {
	Type      MetricsEventType `json:"type"`
	Timestamp time.Time        `json:"timestamp"`

	// session_start / session_end
	SessionID string `json:"session_id,omitempty"`

	// state_change
	State  SessionState `json:"state,omitempty"`
	Reason string       `json:"reason,omitempty"`

	// transcription
	SegmentID  uint64            `json:"segment_id,omitempty"`
	Text       string            `json:"text,omitempty"`
	TextOut    string            `json:"text_out,omitempty"`
	Kind       TranscriptionKind `json:"kind,omitempty"`
	LatencyMs  int64             `json:"latency_ms,omitempty"`
	Confidence *float64          `json:"confidence,omitempty"`

	// metrics_update
	WPM           float64 `json:"wpm,omitempty"`
	FramesDropped uint64  `json:"frames_dropped,omitempty"`
	VADActive     bool    `json:"vad_active,omitempty"`
	QueueDepths   map[string]int `json:"queue_depths,omitempty"`
}
