// Copyright (c) 2025 Asher Buk
// SPDX-License-Identifier: MIT

// Package hotkey adapts the global-hotkey provider fallback chain (D-Bus
// portal, evdev, dummy) to the Hotkey Listener's narrow contract: two
// registered chords, toggle and push-to-talk, each driving the Daemon
// Core's session start/stop exactly like an IPC toggle command would.
package hotkey

import (
	"github.com/swictation/swictation/hotkeys"
	"github.com/swictation/swictation/internal/logger"
	"github.com/swictation/swictation/internal/platform"
)

func hotkeyEnvironment() hotkeys.EnvironmentType {
	switch platform.DetectEnvironment() {
	case platform.EnvironmentX11:
		return hotkeys.EnvironmentX11
	case platform.EnvironmentWayland:
		return hotkeys.EnvironmentWayland
	default:
		return hotkeys.EnvironmentUnknown
	}
}

// Listener owns the underlying provider chain exclusively for the life of
// the daemon process.
type Listener struct {
	manager *hotkeys.HotkeyManager
}

// New selects a provider for the current desktop environment and registers
// the toggle chord to start/stop a session. The underlying provider chain
// only exposes single-shot key-press actions, not press/release pairs, so
// pushToTalkChord is registered as a second independent toggle action
// (onPushStart fires on every press; there is no distinct release event to
// drive onPushEnd with on this provider chain).
func New(toggleChord, pushToTalkChord string, onToggle func() error, onPushStart func() error, log logger.Logger) (*Listener, error) {
	cfg := hotkeys.NewConfigAdapter(toggleChord, "", "")
	manager := hotkeys.NewHotkeyManager(cfg, hotkeyEnvironment(), log)
	manager.RegisterCallbacks(onToggle, func() error { return nil })
	if pushToTalkChord != "" && onPushStart != nil {
		manager.RegisterHotkeyAction(pushToTalkChord, onPushStart)
	}
	return &Listener{manager: manager}, nil
}

// Start begins listening. If no provider is supported on this host, Start
// still succeeds: per the component design, the daemon falls back to IPC
// toggle only.
func (l *Listener) Start() error {
	return l.manager.Start()
}

// Stop releases the provider.
func (l *Listener) Stop() {
	l.manager.Stop()
}
