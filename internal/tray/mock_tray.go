// Copyright (c) 2025 Asher Buk
// SPDX-License-Identifier: MIT

package tray

import (
	"github.com/swictation/swictation/internal/logger"
	"github.com/swictation/swictation/internal/model"
)

// MockTrayManager implements TrayManagerInterface without any systray
// dependency, for platforms/builds where a real tray icon isn't available.
type MockTrayManager struct {
	isRecording bool
	logger      logger.Logger
	onExit      func()
	onToggle    func() error
}

// CreateMockTrayManager creates a mock tray manager that doesn't use systray.
func CreateMockTrayManager(logger logger.Logger) TrayManagerInterface {
	return &MockTrayManager{logger: logger}
}

// Start initializes and starts the mock system tray (no-op).
func (tm *MockTrayManager) Start() {
	tm.logger.Info("mock tray started (no actual system tray is shown)")
}

// Stop stops the mock tray manager.
func (tm *MockTrayManager) Stop() {
	tm.logger.Info("mock tray stopped")
}

// SetExitAction sets the callback invoked when Quit is clicked.
func (tm *MockTrayManager) SetExitAction(onExit func()) {
	tm.onExit = onExit
}

// SetToggleAction sets the callback invoked when the toggle item is clicked.
func (tm *MockTrayManager) SetToggleAction(onToggle func() error) {
	tm.onToggle = onToggle
}

// HandleEvent logs the state a real tray would have reflected.
func (tm *MockTrayManager) HandleEvent(evt model.MetricsEvent) {
	if evt.Type != model.EventStateChange {
		return
	}
	tm.isRecording = evt.State == model.StateRecording
	if tm.isRecording {
		tm.logger.Info("mock tray: Recording ON")
	} else {
		tm.logger.Info("mock tray: Recording OFF")
	}
}
