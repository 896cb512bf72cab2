//go:build cgo

// Copyright (c) 2025 Asher Buk
// SPDX-License-Identifier: MIT

// Package stt implements the STT Engine: a dedicated worker that owns a
// loaded whisper.cpp model session and transcribes closed SpeechSegments.
package stt

import (
	"fmt"
	"time"

	"github.com/ggerganov/whisper.cpp/bindings/go/pkg/whisper"
	"github.com/swictation/swictation/internal/errs"
	"github.com/swictation/swictation/internal/logger"
	"github.com/swictation/swictation/internal/model"
	"github.com/swictation/swictation/internal/utils"
)

// Config holds the Engine's tunables, sourced from the STT config section.
type Config struct {
	Language   string
	NumThreads int
}

// Engine owns the loaded whisper model exclusively; no other component may
// touch model or its contexts.
type Engine struct {
	cfg   Config
	model whisper.Model
	log   logger.Logger
}

// Load loads the model at modelPath. Failure here is fatal at session
// start, per the STT Engine's model-load contract.
func Load(modelPath string, cfg Config, log logger.Logger) (*Engine, error) {
	if !utils.IsValidFile(modelPath) {
		return nil, fmt.Errorf("whisper model path %s is not a readable file", modelPath)
	}
	if size, err := utils.GetFileSize(modelPath); err == nil {
		log.Debug("loading whisper model %s (%d bytes)", modelPath, size)
	}

	m, err := whisper.New(modelPath)
	if err != nil {
		return nil, fmt.Errorf("load whisper model %s: %w", modelPath, err)
	}
	return &Engine{cfg: cfg, model: m, log: log}, nil
}

// Close releases the model session.
func (e *Engine) Close() error {
	if e.model != nil {
		return e.model.Close()
	}
	return nil
}

// Run consumes closed segments and emits exactly one final Transcription per
// segment_id, in segment_id order. A per-segment inference error surfaces as
// a final with empty text and nil confidence rather than stopping the
// session.
func (e *Engine) Run(in <-chan model.SpeechSegment, out chan<- model.Transcription) error {
	for seg := range in {
		start := time.Now()
		text, err := e.transcribe(seg.Samples)
		latency := time.Since(start).Milliseconds()

		if err != nil {
			e.log.Error("stt inference error for segment %d: %v", seg.SegmentID, err)
			out <- model.Transcription{
				SegmentID: seg.SegmentID,
				Text:      "",
				Kind:      model.KindFinal,
				LatencyMs: latency,
			}
			continue
		}

		conf := 1.0
		out <- model.Transcription{
			SegmentID:  seg.SegmentID,
			Text:       text,
			Confidence: &conf,
			LatencyMs:  latency,
			Kind:       model.KindFinal,
		}
	}
	return nil
}

func (e *Engine) transcribe(samples []float32) (string, error) {
	if len(samples) == 0 {
		return "", nil
	}
	ctx, err := e.model.NewContext()
	if err != nil {
		return "", errs.STT("new-context", false, err)
	}
	if e.cfg.Language != "" && e.cfg.Language != "auto" {
		if err := ctx.SetLanguage(e.cfg.Language); err != nil {
			return "", errs.STT("set-language", false, err)
		}
	}
	if err := ctx.Process(samples, nil, nil, nil); err != nil {
		return "", errs.STT("process", false, err)
	}

	var text string
	for {
		segment, err := ctx.NextSegment()
		if err != nil {
			break
		}
		if text != "" {
			text += " "
		}
		text += segment.Text
	}
	return utils.SanitizeTranscript(text), nil
}
