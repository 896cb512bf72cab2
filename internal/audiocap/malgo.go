// Copyright (c) 2025 Asher Buk
// SPDX-License-Identifier: MIT

package audiocap

import (
	"context"
	"fmt"
	"math"
	"time"

	"github.com/gen2brain/malgo"
	"github.com/swictation/swictation/internal/logger"
)

// MalgoCapture is the primary Audio Capture backend: it opens the default
// (or configured) input device via miniaudio bindings and pushes raw
// callback samples into the lock-free ring buffer. The device callback
// never blocks: it only pushes, and a dedicated goroutine assembles fixed
// chunks and restarts the device on error with capped exponential backoff.
type MalgoCapture struct {
	*baseCapture
	ctx    *malgo.AllocatedContext
	device *malgo.Device
	cancel context.CancelFunc
}

// NewMalgoCapture constructs (but does not start) a malgo-backed capturer.
func NewMalgoCapture(sampleRate, chunkSamples, queueFrames int, log logger.Logger) (*MalgoCapture, error) {
	ctx, err := malgo.InitContext(nil, malgo.ContextConfig{}, nil)
	if err != nil {
		return nil, fmt.Errorf("init malgo context: %w", err)
	}
	return &MalgoCapture{
		baseCapture: newBaseCapture(sampleRate, chunkSamples, queueFrames, log),
		ctx:         ctx,
	}, nil
}

// Start opens the capture device and begins streaming frames to sink.
func (m *MalgoCapture) Start(sink Sink) error {
	if !m.running.CompareAndSwap(false, true) {
		return fmt.Errorf("audio capture already started")
	}

	runCtx, cancel := context.WithCancel(context.Background())
	m.cancel = cancel

	deviceConfig := malgo.DefaultDeviceConfig(malgo.Capture)
	deviceConfig.Capture.Format = malgo.FormatF32
	deviceConfig.Capture.Channels = 1
	deviceConfig.SampleRate = uint32(m.sampleRate)
	deviceConfig.PeriodSizeInMilliseconds = 32

	onRecv := func(_, input []byte, _ uint32) {
		if !m.running.Load() {
			return
		}
		samples := bytesToFloat32(input)
		if len(samples) > 0 {
			m.ring.push(samples)
		}
	}

	device, err := malgo.InitDevice(m.ctx.Context, deviceConfig, malgo.DeviceCallbacks{
		Data: onRecv,
		Stop: func() {
			if m.running.Load() {
				m.restartOnError(runCtx, sink)
			}
		},
	})
	if err != nil {
		m.running.Store(false)
		return fmt.Errorf("init capture device: %w", err)
	}
	m.device = device

	m.wg.Add(1)
	go m.runConsumer(runCtx, sink)

	if err := device.Start(); err != nil {
		m.running.Store(false)
		return fmt.Errorf("start capture device: %w", err)
	}
	return nil
}

// restartOnError handles device xrun/disconnect by reopening the device
// with a capped exponential backoff, logging and (via onRestart) emitting
// a state-change metric for each attempt.
func (m *MalgoCapture) restartOnError(ctx context.Context, sink Sink) {
	backoff := &restartBackoff{}
	for m.running.Load() {
		select {
		case <-ctx.Done():
			return
		case <-m.stopCh:
			return
		default:
		}
		wait := backoff.next()
		m.log.Warning("audio device stopped unexpectedly, restarting in %s", wait)
		if m.onRestart != nil {
			m.onRestart(fmt.Errorf("device restart pending"))
		}
		select {
		case <-time.After(wait):
		case <-m.stopCh:
			return
		}
		if err := m.reopenDevice(); err != nil {
			m.log.Error("audio device restart failed: %v", err)
			continue
		}
		backoff.reset()
		return
	}
}

func (m *MalgoCapture) reopenDevice() error {
	if m.device != nil {
		m.device.Uninit()
	}
	deviceConfig := malgo.DefaultDeviceConfig(malgo.Capture)
	deviceConfig.Capture.Format = malgo.FormatF32
	deviceConfig.Capture.Channels = 1
	deviceConfig.SampleRate = uint32(m.sampleRate)
	deviceConfig.PeriodSizeInMilliseconds = 32

	onRecv := func(_, input []byte, _ uint32) {
		if !m.running.Load() {
			return
		}
		samples := bytesToFloat32(input)
		if len(samples) > 0 {
			m.ring.push(samples)
		}
	}
	device, err := malgo.InitDevice(m.ctx.Context, deviceConfig, malgo.DeviceCallbacks{Data: onRecv})
	if err != nil {
		return err
	}
	m.device = device
	return device.Start()
}

// Stop halts capture and releases the device.
func (m *MalgoCapture) Stop() {
	if !m.running.CompareAndSwap(true, false) {
		return
	}
	if m.cancel != nil {
		m.cancel()
	}
	m.stopConsumer()
	if m.device != nil {
		m.device.Stop()
		m.device.Uninit()
		m.device = nil
	}
	_ = m.ctx.Uninit()
	m.ctx.Free()
}

func bytesToFloat32(data []byte) []float32 {
	n := len(data) / 4
	out := make([]float32, n)
	for i := 0; i < n; i++ {
		bits := uint32(data[i*4]) | uint32(data[i*4+1])<<8 | uint32(data[i*4+2])<<16 | uint32(data[i*4+3])<<24
		out[i] = math.Float32frombits(bits)
	}
	return out
}
