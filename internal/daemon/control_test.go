// Copyright (c) 2025 Asher Buk
// SPDX-License-Identifier: MIT

package daemon

import (
	"testing"

	"github.com/swictation/swictation/config"
	"github.com/swictation/swictation/internal/logger"
	"github.com/swictation/swictation/internal/model"
)

func testLogger() logger.Logger {
	return logger.NewDefaultLogger(logger.ErrorLevel)
}

func newTestDaemon(t *testing.T) *Daemon {
	t.Helper()
	cfg := &config.Config{}
	cfg.Audio.RecordingMethod = "arecord"
	cfg.Audio.SampleRate = 16000
	cfg.Audio.ChunkSamples = 1600
	cfg.VAD.Threshold = 0.5
	cfg.VAD.MinSilenceS = 0.5
	cfg.VAD.MinSpeechS = 0.1
	cfg.VAD.MaxSpeechS = 30
	cfg.Metrics.UpdateIntervalS = 1

	runtime := NewRuntime(testLogger())
	return New(cfg, testLogger(), runtime, Deps{
		Allowed: func(string) bool { return false },
	})
}

func TestNew_StartsIdle(t *testing.T) {
	d := newTestDaemon(t)
	if d.State() != model.StateIdle {
		t.Errorf("State() = %q, want %q", d.State(), model.StateIdle)
	}
}

func TestDaemon_CountersNilWhileIdle(t *testing.T) {
	d := newTestDaemon(t)
	if got := d.counters(); got != nil {
		t.Errorf("counters() while idle = %v, want nil", got)
	}
}

func TestDaemon_ToggleFromBusyStateReturnsError(t *testing.T) {
	d := newTestDaemon(t)
	d.state.Store(model.StateStopping)

	_, err := d.toggle()
	if err == nil {
		t.Fatal("expected an error toggling while Stopping")
	}
	if err.Error() != "busy" {
		t.Errorf("err = %q, want %q", err.Error(), "busy")
	}
}

func TestDaemon_ToggleFromIdleFailsWithoutAnAudioDevice(t *testing.T) {
	// allowed always denies, so the arecord subprocess backend can never be
	// started; startSession must fail cleanly and the daemon stays Idle.
	d := newTestDaemon(t)

	_, err := d.toggle()
	if err == nil {
		t.Fatal("expected an error starting a session without an audio backend")
	}
	if d.State() != model.StateIdle {
		t.Errorf("State() after failed start = %q, want %q", d.State(), model.StateIdle)
	}
}

func TestDaemon_ToggleOrLogSwallowsError(t *testing.T) {
	d := newTestDaemon(t)
	d.state.Store(model.StateStopping)

	if err := d.ToggleOrLog(); err != nil {
		t.Errorf("ToggleOrLog() = %v, want nil (errors are logged, not returned)", err)
	}
}

func TestDaemon_SubscribeReceivesPublishedEvents(t *testing.T) {
	d := newTestDaemon(t)

	var got []model.MetricsEvent
	d.Subscribe(func(evt model.MetricsEvent) {
		got = append(got, evt)
	})

	d.publish(model.MetricsEvent{Type: model.EventSessionStart, SessionID: "abc"})

	if len(got) != 1 {
		t.Fatalf("got %d events, want 1", len(got))
	}
	if got[0].SessionID != "abc" {
		t.Errorf("got[0].SessionID = %q, want %q", got[0].SessionID, "abc")
	}
	if got[0].Timestamp.IsZero() {
		t.Errorf("publish() did not stamp a timestamp")
	}
}

func TestErrFatal_Error(t *testing.T) {
	inner := errFatal{err: errBoom{}}
	if inner.Error() != "boom" {
		t.Errorf("Error() = %q, want %q", inner.Error(), "boom")
	}
}

type errBoom struct{}

func (errBoom) Error() string { return "boom" }
