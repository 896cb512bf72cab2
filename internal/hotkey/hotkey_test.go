// Copyright (c) 2025 Asher Buk
// SPDX-License-Identifier: MIT

package hotkey

import (
	"testing"

	"github.com/swictation/swictation/internal/logger"
)

func testLogger() logger.Logger {
	return logger.NewDefaultLogger(logger.ErrorLevel)
}

// In this test environment no D-Bus session or evdev device is available,
// so the underlying provider chain always bottoms out at the dummy
// provider, giving deterministic Start/Stop behavior without real hardware.

func TestNew_RegistersToggleCallback(t *testing.T) {
	called := 0
	onToggle := func() error { called++; return nil }

	l, err := New("ctrl+space", "", onToggle, nil, testLogger())
	if err != nil {
		t.Fatalf("New() returned error: %v", err)
	}
	if l == nil {
		t.Fatal("New() returned nil Listener")
	}
}

func TestListener_StartSucceedsWithDummyProvider(t *testing.T) {
	l, err := New("ctrl+space", "", func() error { return nil }, nil, testLogger())
	if err != nil {
		t.Fatalf("New() returned error: %v", err)
	}
	if err := l.Start(); err != nil {
		t.Errorf("Start() = %v, want nil (dummy provider always succeeds)", err)
	}
	l.Stop()
}

func TestListener_StartStopIsIdempotentAcrossCalls(t *testing.T) {
	l, err := New("ctrl+space", "shift+space", func() error { return nil }, func() error { return nil }, testLogger())
	if err != nil {
		t.Fatalf("New() returned error: %v", err)
	}
	if err := l.Start(); err != nil {
		t.Fatalf("Start() = %v, want nil", err)
	}
	l.Stop()
	l.Stop() // stopping twice must not panic
}

func TestNew_WithoutPushToTalkChordOmitsSecondAction(t *testing.T) {
	l, err := New("ctrl+space", "", func() error { return nil }, nil, testLogger())
	if err != nil {
		t.Fatalf("New() returned error: %v", err)
	}
	if len(l.manager.GetRegisteredHotkeys()) != 1 {
		t.Errorf("GetRegisteredHotkeys() = %v, want exactly the toggle chord", l.manager.GetRegisteredHotkeys())
	}
}

func TestNew_WithPushToTalkChordRegistersSecondAction(t *testing.T) {
	pushCalled := 0
	l, err := New("ctrl+space", "shift+space", func() error { return nil }, func() error { pushCalled++; return nil }, testLogger())
	if err != nil {
		t.Fatalf("New() returned error: %v", err)
	}
	hotkeys := l.manager.GetRegisteredHotkeys()
	if len(hotkeys) != 2 {
		t.Errorf("GetRegisteredHotkeys() = %v, want toggle + push-to-talk", hotkeys)
	}
}
