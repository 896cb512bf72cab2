//go:build linux

// Copyright (c) 2025 Asher Buk
// SPDX-License-Identifier: MIT

package hotkeys

import (
	"os"

	"github.com/swictation/swictation/internal/logger"
)

func selectProviderForEnvironment(config HotkeyConfig, environment EnvironmentType, log logger.Logger) KeyboardEventProvider {
	// AppImage: Prefer evdev due to potential D-Bus portal sandbox issues
	isAppImage := os.Getenv("APPIMAGE") != "" || os.Getenv("APPDIR") != ""
	if isAppImage {
		log.Info("AppImage detected, checking evdev first for better compatibility")
		evdevProvider := NewEvdevKeyboardProvider(config, environment, log)
		if evdevProvider.IsSupported() {
			log.Info("using evdev keyboard provider (AppImage mode)")
			return evdevProvider
		}
		log.Warning("evdev not available in AppImage, falling back to D-Bus")
		log.Info("for reliable hotkeys in AppImage, add the user to the input group and relogin")
	}

	// Try D-Bus provider first (works without root permissions on modern DEs)
	dbusProvider := NewDbusKeyboardProvider(config, environment, log)
	if dbusProvider.IsSupported() {
		log.Info("using D-Bus keyboard provider")
		return dbusProvider
	}
	log.Info("D-Bus GlobalShortcuts portal not available, trying evdev")

	// Fallback to evdev provider (requires root or 'input' group membership)
	evdevProvider := NewEvdevKeyboardProvider(config, environment, log)
	if evdevProvider.IsSupported() {
		log.Info("using evdev keyboard provider (requires root or 'input' group membership)")
		return evdevProvider
	}
	log.Warning("evdev not available, hotkeys will be disabled")

	// Final fallback to dummy provider with helpful instructions
	log.Warning("no supported keyboard provider available; run with sudo, add the user to 'input', or use a system-wide hotkey tool")
	return NewDummyKeyboardProvider(log)
}
