//go:build systray

// Copyright (c) 2025 Asher Buk
// SPDX-License-Identifier: MIT

package tray

import (
	"github.com/swictation/swictation/internal/logger"
	"github.com/swictation/swictation/internal/platform"
)

// CreateDefaultTrayManager creates the default tray manager based on
// available dependencies. With the systray build tag, that's the real
// systray-backed implementation, unless the desktop has no StatusNotifier
// host to dock an icon in, in which case the mock manager is used instead so
// Start/Stop don't spin up a window manager has nowhere to place.
func CreateDefaultTrayManager(log logger.Logger) TrayManagerInterface {
	if !platform.HasStatusNotifierWatcher() {
		if platform.IsGNOMEWithWayland() {
			log.Warning("no StatusNotifier watcher found; GNOME on Wayland needs the AppIndicator extension for a tray icon, falling back to a headless tray")
		} else {
			log.Warning("no StatusNotifier watcher found, falling back to a headless tray")
		}
		return CreateMockTrayManager(log)
	}
	iconMicOff := GetIconMicOff(log)
	iconMicOn := GetIconMicOn(log)
	return NewTrayManager(iconMicOff, iconMicOn, log)
}
