// Copyright (c) 2025 Asher Buk
// SPDX-License-Identifier: MIT

// Package daemon implements the Daemon Core: it owns the session, wires
// every pipeline component, enforces the Idle/Recording/Stopping state
// machine, and coordinates cooperative shutdown.
package daemon

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"sync"
	"sync/atomic"
	"syscall"
	"time"

	"github.com/swictation/swictation/config"
	"github.com/swictation/swictation/internal/audiocap"
	"github.com/swictation/swictation/internal/hotkey"
	"github.com/swictation/swictation/internal/inject"
	"github.com/swictation/swictation/internal/ipc"
	"github.com/swictation/swictation/internal/logger"
	"github.com/swictation/swictation/internal/metrics"
	"github.com/swictation/swictation/internal/model"
	"github.com/swictation/swictation/internal/paths"
	"github.com/swictation/swictation/internal/stt"
	"github.com/swictation/swictation/internal/store"
	"github.com/swictation/swictation/internal/transform"
	"github.com/swictation/swictation/internal/vad"
)

// defaultStageTimeout is a per-stage drain bound that no code path applies:
// stopSession waits on all stages together under defaultShutdownBudget.
const defaultStageTimeout = 2 * time.Second

// defaultShutdownBudget is the total time Stopping may take before the
// daemon gives up waiting and forces Idle.
const defaultShutdownBudget = 5 * time.Second

// Runtime bundles process-lifetime signal plumbing, adapted from the
// service container's RuntimeContext.
type Runtime struct {
	Ctx        context.Context
	Cancel     context.CancelFunc
	ShutdownCh chan os.Signal
	Logger     logger.Logger
}

// NewRuntime constructs a Runtime wired to SIGINT/SIGTERM.
func NewRuntime(log logger.Logger) *Runtime {
	ctx, cancel := context.WithCancel(context.Background())
	ch := make(chan os.Signal, 1)
	signal.Notify(ch, os.Interrupt, syscall.SIGTERM)
	return &Runtime{Ctx: ctx, Cancel: cancel, ShutdownCh: ch, Logger: log}
}

// session holds everything exclusive to one Recording episode, including the
// stage handles and channels the metrics_update ticker samples.
type session struct {
	id        string
	cancel    context.CancelFunc
	wg        sync.WaitGroup
	capturer  audiocap.Capturer
	segmenter *vad.Segmenter
	startedAt time.Time
	wordCount atomic.Uint64

	audioCh <-chan model.AudioFrame
	segCh   <-chan model.SpeechSegment
	transCh <-chan model.Transcription
}

// Daemon owns the pipeline task handles and the channels between stages,
// and the single atomic SessionState other components read.
type Daemon struct {
	cfg *config.Config
	log logger.Logger

	runtime *Runtime
	state   atomic.Value // model.SessionState

	sttEngine *stt.Engine
	transform *transform.Pipeline
	injector  *inject.Injector
	hotkeys   *hotkey.Listener
	ipcServer *ipc.Server
	bcast     *metrics.Broadcaster
	wsMirror  *metrics.WebSocketMirror
	persist   *store.Store

	allowed  func(string) bool
	sanitize func([]string) []string

	mu          sync.Mutex
	current     *session
	subscribers []func(model.MetricsEvent)

	quitRequested atomic.Bool
}

// Deps carries the fully-constructed pipeline-stage components the Daemon
// wires together; Start assumes each has already been configured from cfg.
type Deps struct {
	STTEngine *stt.Engine
	Transform *transform.Pipeline
	Injector  *inject.Injector
	Hotkeys   *hotkey.Listener
	Broadcast *metrics.Broadcaster
	WSMirror  *metrics.WebSocketMirror
	Persist   *store.Store
	Allowed   func(string) bool
	Sanitize  func([]string) []string
}

// New constructs a Daemon in the Idle state.
func New(cfg *config.Config, log logger.Logger, runtime *Runtime, deps Deps) *Daemon {
	d := &Daemon{
		cfg:       cfg,
		log:       log,
		runtime:   runtime,
		sttEngine: deps.STTEngine,
		transform: deps.Transform,
		injector:  deps.Injector,
		hotkeys:   deps.Hotkeys,
		bcast:     deps.Broadcast,
		wsMirror:  deps.WSMirror,
		persist:   deps.Persist,
		allowed:   deps.Allowed,
		sanitize:  deps.Sanitize,
	}
	d.state.Store(model.StateIdle)
	return d
}

// State returns the current process-wide session state.
func (d *Daemon) State() model.SessionState {
	return d.state.Load().(model.SessionState)
}

// SetHotkeys attaches a hotkey listener constructed after the Daemon
// itself, since the listener's callbacks close over the Daemon.
func (d *Daemon) SetHotkeys(h *hotkey.Listener) {
	d.hotkeys = h
}

// Subscribe registers a local fan-out target for every published metrics
// event, for in-process observers (tray, notifications) that don't go
// through the IPC/WebSocket metrics streams.
func (d *Daemon) Subscribe(fn func(model.MetricsEvent)) {
	d.subscribers = append(d.subscribers, fn)
}

// ToggleOrLog is the hotkey-callback-shaped wrapper around toggle: it
// swallows the resulting state and logs any error instead of returning it,
// since the provider chain's registered actions have no error channel back
// to the caller.
func (d *Daemon) ToggleOrLog() error {
	if _, err := d.toggle(); err != nil {
		d.log.Warning("hotkey toggle failed: %v", err)
	}
	return nil
}

// Run starts the IPC server and hotkey listener, then blocks until a
// shutdown signal, the quit IPC command, or the runtime context is
// canceled.
func (d *Daemon) Run() error {
	endpoint, err := paths.IPCEndpoint(d.cfg.Socket.Path)
	if err != nil {
		return fmt.Errorf("resolve ipc endpoint: %w", err)
	}
	d.ipcServer = ipc.NewServer(endpoint.String(), d.log)
	d.registerIPCHandlers()
	if err := d.ipcServer.Start(); err != nil {
		return fmt.Errorf("start ipc server: %w", err)
	}

	if d.hotkeys != nil {
		if err := d.hotkeys.Start(); err != nil {
			d.log.Warning("hotkey listener unavailable, falling back to IPC toggle only: %v", err)
		}
	}

	select {
	case <-d.runtime.ShutdownCh:
		d.log.Info("received shutdown signal")
	case <-d.runtime.Ctx.Done():
	case <-d.waitQuit():
	}

	return d.Shutdown()
}

func (d *Daemon) waitQuit() <-chan struct{} {
	ch := make(chan struct{})
	go func() {
		for !d.quitRequested.Load() {
			select {
			case <-d.runtime.Ctx.Done():
				return
			case <-time.After(100 * time.Millisecond):
			}
		}
		close(ch)
	}()
	return ch
}

// Shutdown stops any active session and every long-lived component within
// the total shutdown budget.
func (d *Daemon) Shutdown() error {
	d.runtime.Cancel()

	if d.State() != model.StateIdle {
		ctx, cancel := context.WithTimeout(context.Background(), defaultShutdownBudget)
		defer cancel()
		d.stopSession(ctx, model.CauseSessionStop)
	}

	if d.hotkeys != nil {
		d.hotkeys.Stop()
	}
	if d.ipcServer != nil {
		d.ipcServer.Stop()
	}
	if d.wsMirror != nil {
		_ = d.wsMirror.Close()
	}
	if d.bcast != nil {
		_ = d.bcast.Close()
	}
	if d.persist != nil {
		_ = d.persist.Close()
	}
	if d.sttEngine != nil {
		_ = d.sttEngine.Close()
	}
	return nil
}

func (d *Daemon) publish(evt model.MetricsEvent) {
	evt.Timestamp = time.Now()
	if d.bcast != nil {
		d.bcast.Publish(evt)
	}
	if d.wsMirror != nil {
		d.wsMirror.Broadcast(evt)
	}
	for _, fn := range d.subscribers {
		fn(evt)
	}
}

// errFatal wraps a pipeline stage's fatal error for the stopSession path.
type errFatal struct{ err error }

func (e *errFatal) Error() string { return e.err.Error() }
