// Copyright (c) 2025 Asher Buk
// SPDX-License-Identifier: MIT

package daemon

import (
	"context"
	"fmt"

	"github.com/swictation/swictation/internal/ipc"
	"github.com/swictation/swictation/internal/model"
	"github.com/swictation/swictation/internal/vad"
)

func (d *Daemon) newInferencer() (vad.Inferencer, error) {
	if d.cfg.VAD.Backend == "onnx" {
		return vad.NewOnnxInferencer(d.cfg.VAD.ModelPath, d.cfg.Audio.SampleRate)
	}
	return vad.NewEnergyInferencer(), nil
}

// toggle implements the IPC/hotkey toggle contract: Idle -> Recording or
// Recording -> Idle. If the daemon is currently Stopping, it replies busy
// rather than interrupting the transition in progress.
func (d *Daemon) toggle() (model.SessionState, error) {
	switch d.State() {
	case model.StateIdle:
		if err := d.startSession(); err != nil {
			return d.State(), err
		}
		return d.State(), nil
	case model.StateRecording:
		ctx, cancel := context.WithTimeout(context.Background(), defaultShutdownBudget)
		defer cancel()
		d.stopSession(ctx, model.CauseSessionStop)
		return d.State(), nil
	default:
		return d.State(), fmt.Errorf("busy")
	}
}

func (d *Daemon) registerIPCHandlers() {
	d.ipcServer.Register("toggle", func(req ipc.Request) (ipc.Response, error) {
		state, err := d.toggle()
		if err != nil {
			return ipc.NewErrorResponse(err.Error()), nil
		}
		return ipc.NewStateResponse(string(state), nil), nil
	})

	d.ipcServer.Register("status", func(req ipc.Request) (ipc.Response, error) {
		return ipc.NewStateResponse(string(d.State()), d.counters()), nil
	})

	d.ipcServer.Register("quit", func(req ipc.Request) (ipc.Response, error) {
		d.quitRequested.Store(true)
		return ipc.NewStateResponse(string(d.State()), nil), nil
	})
}

// counters reports the current session's drop/queue-depth counters for the
// status command's response, or nil while Idle.
func (d *Daemon) counters() map[string]any {
	d.mu.Lock()
	sess := d.current
	d.mu.Unlock()
	if sess == nil {
		return nil
	}
	out := map[string]any{
		"frames_dropped": sess.capturer.FramesDropped(),
		"vad_active":     sess.segmenter.Active(),
		"queue_depths": map[string]int{
			"audio":      len(sess.audioCh),
			"segment":    len(sess.segCh),
			"transcript": len(sess.transCh),
		},
	}
	requests, errs := d.ipcServer.Stats()
	out["ipc_requests"] = requests
	out["ipc_errors"] = errs
	return out
}
