// Copyright (c) 2025 Asher Buk
// SPDX-License-Identifier: MIT

package utils

import (
	"github.com/swictation/swictation/internal/paths"
)

// GetDefaultSocketPath returns the default control IPC socket path.
func GetDefaultSocketPath() string {
	ep, err := paths.IPCEndpoint("")
	if err != nil {
		return "/tmp/swictation.sock"
	}
	return ep.Value
}

// GetDefaultMetricsSocketPath returns the default metrics broadcaster socket path.
func GetDefaultMetricsSocketPath() string {
	ep, err := paths.MetricsEndpoint("")
	if err != nil {
		return "/tmp/swictation_metrics.sock"
	}
	return ep.Value
}
