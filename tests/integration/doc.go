// Copyright (c) 2025 Asher Buk
// SPDX-License-Identifier: MIT

// Package integration contains integration tests that are built with the
// "integration" build tag. This file intentionally has no build tags so that
// editors and tools can resolve the package even when the tag isn't enabled.
package integration
