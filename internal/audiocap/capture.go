// Copyright (c) 2025 Asher Buk
// SPDX-License-Identifier: MIT

package audiocap

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/swictation/swictation/internal/logger"
	"github.com/swictation/swictation/internal/model"
)

// Sink receives frames as they are drained from the ring buffer. It is
// called from the capturer's own consumer goroutine, never from the audio
// callback itself.
type Sink func(model.AudioFrame)

// Capturer is the common capability every capture backend implements.
// Start is idempotent-safe: a second Start on an already-started capturer
// returns an error instead of starting a second device.
type Capturer interface {
	Start(sink Sink) error
	Stop()
	FramesDropped() uint64
}

// restartBackoff implements the capped exponential backoff used when a
// device errors out mid-session (disconnect, xrun).
type restartBackoff struct {
	attempt int
}

func (b *restartBackoff) next() time.Duration {
	d := time.Duration(1<<uint(b.attempt)) * 250 * time.Millisecond
	if d > 5*time.Second {
		d = 5 * time.Second
	}
	b.attempt++
	return d
}

func (b *restartBackoff) reset() { b.attempt = 0 }

// baseCapture holds the fields shared by every backend: the ring buffer,
// the consumer goroutine that drains it, and frame sequencing.
type baseCapture struct {
	chunkSamples int
	sampleRate   int
	queueFrames  int

	ring *ring
	seq  atomic.Uint64

	running atomic.Bool
	stopCh  chan struct{}
	wg      sync.WaitGroup

	onRestart func(err error) // invoked when the device loop restarts

	log logger.Logger
}

func newBaseCapture(sampleRate, chunkSamples, queueFrames int, log logger.Logger) *baseCapture {
	return &baseCapture{
		chunkSamples: chunkSamples,
		sampleRate:   sampleRate,
		queueFrames:  queueFrames,
		ring:         newRing(queueFrames, chunkSamples),
		stopCh:       make(chan struct{}),
		log:          log,
	}
}

func (b *baseCapture) FramesDropped() uint64 { return b.ring.dropped() }

// runConsumer drains the ring buffer, assembles fixed-size frames and hands
// them to sink, until stopCh closes.
func (b *baseCapture) runConsumer(ctx context.Context, sink Sink) {
	defer b.wg.Done()
	var carry []float32
	for {
		select {
		case <-b.stopCh:
			return
		case <-ctx.Done():
			return
		default:
		}
		samples := b.ring.pop()
		if samples == nil {
			select {
			case <-b.stopCh:
				return
			case <-time.After(2 * time.Millisecond):
			}
			continue
		}
		carry = append(carry, samples...)
		for len(carry) >= b.chunkSamples {
			frame := make([]float32, b.chunkSamples)
			copy(frame, carry[:b.chunkSamples])
			carry = carry[b.chunkSamples:]
			sink(model.AudioFrame{
				SampleRate: b.sampleRate,
				Samples:    frame,
				CaptureTS:  time.Now(),
				Seq:        b.seq.Add(1),
			})
		}
	}
}

func (b *baseCapture) stopConsumer() {
	select {
	case <-b.stopCh:
	default:
		close(b.stopCh)
	}
	b.wg.Wait()
}

// New selects a capturer per config.Audio.RecordingMethod: "malgo" for the
// lock-free streaming backend, "arecord"/"ffmpeg" for the subprocess
// fallback, or "auto" to prefer malgo and fall back to arecord.
func New(method string, sampleRate, chunkSamples, queueFrames int, device string, allowedCmd func(string) bool, sanitize func([]string) []string, log logger.Logger) (Capturer, error) {
	switch method {
	case "malgo", "":
		return NewMalgoCapture(sampleRate, chunkSamples, queueFrames, log)
	case "arecord":
		return NewSubprocessCapture("arecord", device, sampleRate, chunkSamples, queueFrames, allowedCmd, sanitize, log), nil
	case "ffmpeg":
		return NewSubprocessCapture("ffmpeg", device, sampleRate, chunkSamples, queueFrames, allowedCmd, sanitize, log), nil
	case "auto":
		if c, err := NewMalgoCapture(sampleRate, chunkSamples, queueFrames, log); err == nil {
			return c, nil
		}
		return NewSubprocessCapture("arecord", device, sampleRate, chunkSamples, queueFrames, allowedCmd, sanitize, log), nil
	default:
		return nil, fmt.Errorf("unknown audio recording_method: %s", method)
	}
}
