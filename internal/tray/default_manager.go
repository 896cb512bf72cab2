//go:build !systray

// Copyright (c) 2025 Asher Buk
// SPDX-License-Identifier: MIT

package tray

import "github.com/swictation/swictation/internal/logger"

// CreateDefaultTrayManager creates the default tray manager based on
// available dependencies. Without the systray build tag, that's the mock
// implementation.
func CreateDefaultTrayManager(log logger.Logger) TrayManagerInterface {
	return CreateMockTrayManager(log)
}
