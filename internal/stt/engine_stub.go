//go:build !cgo || nocgo

// Copyright (c) 2025 Asher Buk
// SPDX-License-Identifier: MIT

package stt

import (
	"errors"

	"github.com/swictation/swictation/internal/logger"
	"github.com/swictation/swictation/internal/model"
)

// Engine is a no-cgo stub that fails gracefully when CGO is disabled.
type Engine struct{}

// Load returns an error indicating that CGO is required.
func Load(modelPath string, cfg Config, log logger.Logger) (*Engine, error) {
	return nil, errors.New("stt engine unavailable: built without cgo")
}

func (e *Engine) Close() error { return nil }

func (e *Engine) Run(in <-chan model.SpeechSegment, out chan<- model.Transcription) error {
	return errors.New("stt engine unavailable: built without cgo")
}
