// Copyright (c) 2025 Asher Buk
// SPDX-License-Identifier: MIT

package tray

import "github.com/swictation/swictation/internal/model"

// TrayManagerInterface is the tray presence contract: a toggle/quit menu
// driven by the daemon's metrics event stream, never a dependency of the
// core state machine itself.
type TrayManagerInterface interface {
	Start()
	Stop()
	// SetExitAction sets the callback invoked when Quit is clicked.
	SetExitAction(onExit func())
	// SetToggleAction sets the callback invoked when the toggle item is clicked.
	SetToggleAction(onToggle func() error)
	// HandleEvent updates the tray icon/menu in response to one metrics event.
	HandleEvent(evt model.MetricsEvent)
}
