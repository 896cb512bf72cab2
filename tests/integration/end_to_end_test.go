//go:build integration

// Copyright (c) 2025 Asher Buk
// SPDX-License-Identifier: MIT

package integration

import (
	"path/filepath"
	"sync/atomic"
	"testing"
	"time"

	"github.com/swictation/swictation/internal/ipc"
	"github.com/swictation/swictation/internal/logger"
)

// TestIPC_ToggleRoundTrip covers S1: a toggle request flips the reported
// state and a second toggle flips it back, over a real Unix socket and the
// flat {"ok":...} wire contract.
func TestIPC_ToggleRoundTrip(t *testing.T) {
	log := logger.NewDefaultLogger(logger.ErrorLevel)
	sockPath := filepath.Join(t.TempDir(), "swictation.sock")

	srv := ipc.NewServer(sockPath, log)
	var recording atomic.Bool
	srv.Register("toggle", func(req ipc.Request) (ipc.Response, error) {
		if recording.Load() {
			recording.Store(false)
			return ipc.NewStateResponse("Idle", nil), nil
		}
		recording.Store(true)
		return ipc.NewStateResponse("Recording", nil), nil
	})
	if err := srv.Start(); err != nil {
		t.Fatalf("Start() returned error: %v", err)
	}
	defer srv.Stop()

	resp, err := ipc.SendRequest(sockPath, ipc.Request{Action: "toggle"}, time.Second)
	if err != nil {
		t.Fatalf("first toggle returned error: %v", err)
	}
	if !resp.OK || resp.State != "Recording" {
		t.Errorf("first toggle = %+v, want ok=true state=Recording", resp)
	}

	resp, err = ipc.SendRequest(sockPath, ipc.Request{Action: "toggle"}, time.Second)
	if err != nil {
		t.Fatalf("second toggle returned error: %v", err)
	}
	if !resp.OK || resp.State != "Idle" {
		t.Errorf("second toggle = %+v, want ok=true state=Idle", resp)
	}
}

// TestIPC_MalformedRequestLeavesStateUnchanged covers testable property 7: a
// malformed request yields an error response and does not disturb state;
// the next valid request still succeeds.
func TestIPC_MalformedRequestLeavesStateUnchanged(t *testing.T) {
	log := logger.NewDefaultLogger(logger.ErrorLevel)
	sockPath := filepath.Join(t.TempDir(), "swictation.sock")

	srv := ipc.NewServer(sockPath, log)
	srv.Register("status", func(req ipc.Request) (ipc.Response, error) {
		return ipc.NewStateResponse("Idle", nil), nil
	})
	if err := srv.Start(); err != nil {
		t.Fatalf("Start() returned error: %v", err)
	}
	defer srv.Stop()

	if _, err := ipc.SendRequest(sockPath, ipc.Request{Action: "not-a-real-action"}, time.Second); err == nil {
		t.Error("unknown action returned no error, want one")
	}

	resp, err := ipc.SendRequest(sockPath, ipc.Request{Action: "status"}, time.Second)
	if err != nil {
		t.Fatalf("status after malformed request returned error: %v", err)
	}
	if !resp.OK || resp.State != "Idle" {
		t.Errorf("status after malformed request = %+v, want ok=true state=Idle", resp)
	}
}
