// Copyright (c) 2025 Asher Buk
// SPDX-License-Identifier: MIT

package main

import (
	"errors"
	"flag"
	"fmt"
	"os"
	"strings"

	"github.com/swictation/swictation/config"
	"github.com/swictation/swictation/internal/daemon"
	"github.com/swictation/swictation/internal/hotkey"
	"github.com/swictation/swictation/internal/inject"
	"github.com/swictation/swictation/internal/logger"
	"github.com/swictation/swictation/internal/metrics"
	"github.com/swictation/swictation/internal/notify"
	"github.com/swictation/swictation/internal/paths"
	"github.com/swictation/swictation/internal/stt"
	"github.com/swictation/swictation/internal/store"
	"github.com/swictation/swictation/internal/transform"
	"github.com/swictation/swictation/internal/tray"
	"github.com/swictation/swictation/internal/utils"
)

func main() {
	os.Exit(run(os.Args[1:]))
}

type daemonOptions struct {
	configFile string
	debug      bool
}

func parseDaemonOptions(args []string) (*daemonOptions, error) {
	opts := &daemonOptions{configFile: "config.yaml"}

	fs := flag.NewFlagSet("swictation-daemon", flag.ContinueOnError)
	var parseOutput strings.Builder
	fs.SetOutput(&parseOutput)

	fs.StringVar(&opts.configFile, "config", opts.configFile, "Path to configuration file")
	fs.BoolVar(&opts.debug, "debug", false, "Enable debug mode")

	if err := fs.Parse(args); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return nil, flag.ErrHelp
		}
		if parseOutput.Len() > 0 {
			fmt.Fprint(os.Stderr, parseOutput.String())
		}
		return nil, err
	}

	return opts, nil
}

func run(args []string) int {
	opts, err := parseDaemonOptions(args)
	if err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return 0
		}
		return 2
	}

	logLevel := logger.InfoLevel
	if opts.debug {
		logLevel = logger.DebugLevel
	}
	switch strings.ToLower(os.Getenv("SWICTATION_LOG")) {
	case "debug":
		logLevel = logger.DebugLevel
	case "info":
		logLevel = logger.InfoLevel
	case "warning", "warn":
		logLevel = logger.WarningLevel
	case "error":
		logLevel = logger.ErrorLevel
	}
	log := logger.NewDefaultLogger(logLevel)

	lockFile := utils.NewLockFile(utils.GetDefaultLockPath())
	if isRunning, pid, err := lockFile.CheckExistingInstance(); err != nil {
		log.Warning("failed to check existing instance: %v", err)
	} else if isRunning {
		fmt.Fprintf(os.Stderr, "swictation daemon is already running (PID: %d)\n", pid)
		return 1
	}
	if err := lockFile.TryLock(); err != nil {
		log.Error("failed to acquire application lock: %v", err)
		return 1
	}
	defer func() {
		if err := lockFile.Unlock(); err != nil {
			log.Warning("failed to release lock: %v", err)
		}
	}()

	cfg, err := config.LoadConfig(opts.configFile)
	if err != nil {
		log.Error("failed to load config: %v", err)
		return 1
	}
	if opts.debug {
		cfg.General.Debug = true
	}
	if err := config.ValidateConfig(cfg); err != nil {
		log.Error("invalid config: %v", err)
		return 1
	}

	d, err := buildDaemon(cfg, log)
	if err != nil {
		log.Error("failed to initialize daemon: %v", err)
		return 1
	}

	if err := d.Run(); err != nil {
		log.Error("daemon exited with error: %v", err)
		return 1
	}
	return 0
}

// buildDaemon constructs every pipeline component from cfg and wires them
// into a Daemon in the Idle state. Component construction failures that
// only disable an optional feature (hotkeys, metrics mirror, persistence)
// are logged and the feature is left nil; STT load failure is fatal per the
// Daemon Core's startup contract.
func buildDaemon(cfg *config.Config, log logger.Logger) (*daemon.Daemon, error) {
	allowed := func(cmd string) bool { return config.IsCommandAllowed(cfg, cmd) }
	sanitize := config.SanitizeCommandArgs

	modelDir := cfg.STT.ModelDir
	if modelDir == "" {
		dir, err := paths.ModelDir()
		if err != nil {
			return nil, fmt.Errorf("resolve model dir: %w", err)
		}
		modelDir = dir
	}

	sttCfg := stt.Config{Language: cfg.STT.Language, NumThreads: cfg.STT.NumThreads}
	sttEngine, variant, err := stt.LoadWithDegrade(modelDir, cfg.STT.ModelOverride, sttCfg, allowed, log)
	if err != nil {
		return nil, fmt.Errorf("load stt engine: %w", err)
	}
	log.Info("stt engine loaded with variant %s", variant)

	var persist *store.Store
	if cfg.Persistence.Enabled {
		dataDir, err := paths.DataDir()
		if err != nil {
			return nil, fmt.Errorf("resolve data dir: %w", err)
		}
		dbPath := dataDir + "/swictation.db"
		queueSize := cfg.Persistence.QueueSize
		if queueSize <= 0 {
			queueSize = 64
		}
		persist, err = store.Open(dbPath, queueSize, log)
		if err != nil {
			log.Warning("persistence unavailable: %v", err)
			persist = nil
		}
	}

	var correctionStore transform.CorrectionStore
	if persist != nil {
		correctionStore = persist
	}
	pipeline := transform.New(transform.Config{
		PhoneticThreshold:   cfg.Transform.PhoneticThreshold,
		NumberNormalization: cfg.Transform.NumberNormalization,
	}, correctionStore)

	linuxBackend, err := inject.NewLinuxBackend(cfg.Injection.TypeTool, cfg.Injection.ClipboardTool, allowed, sanitize)
	var injector *inject.Injector
	if err != nil {
		log.Warning("text injection backend unavailable: %v", err)
	} else {
		method := inject.MethodKeystroke
		if cfg.Injection.Method == "clipboard" {
			method = inject.MethodClipboard
		}
		injector = inject.New(linuxBackend, method, cfg.Injection.CharDelayMs)
	}

	bcast := metrics.New(log, cfg.Metrics.BufferBytes)
	metricsPath := cfg.Socket.MetricsPath
	if metricsPath == "" {
		ep, err := paths.MetricsEndpoint("")
		if err != nil {
			return nil, fmt.Errorf("resolve metrics endpoint: %w", err)
		}
		metricsPath = ep.Value
	}
	if err := bcast.Start(metricsPath); err != nil {
		log.Warning("metrics broadcaster unavailable: %v", err)
	}

	var wsMirror *metrics.WebSocketMirror
	if cfg.Metrics.WebSocket.Enabled {
		maxClients := cfg.Metrics.WebSocket.MaxClients
		if maxClients <= 0 {
			maxClients = 8
		}
		wsMirror = metrics.NewWebSocketMirror(cfg.Metrics.WebSocket.APIVersion, maxClients, cfg.Metrics.WebSocket.CORSOrigins, log)
		if err := wsMirror.Listen(cfg.Metrics.WebSocket.Host, cfg.Metrics.WebSocket.Port); err != nil {
			log.Warning("metrics websocket mirror unavailable: %v", err)
			wsMirror = nil
		}
	}

	var hk *hotkey.Listener
	runtime := daemon.NewRuntime(log)

	deps := daemon.Deps{
		STTEngine: sttEngine,
		Transform: pipeline,
		Injector:  injector,
		Hotkeys:   hk,
		Broadcast: bcast,
		WSMirror:  wsMirror,
		Persist:   persist,
		Allowed:   allowed,
		Sanitize:  sanitize,
	}
	d := daemon.New(cfg, log, runtime, deps)

	toggleHotkey, err := hotkey.New(cfg.Hotkeys.Toggle, cfg.Hotkeys.PushToTalk, d.ToggleOrLog, nil, log)
	if err != nil {
		log.Warning("hotkey listener unavailable, falling back to IPC toggle only: %v", err)
	} else {
		d.SetHotkeys(toggleHotkey)
	}

	notifier := notify.NewNotificationManager("Swictation", cfg)
	d.Subscribe(notifier.HandleEvent)

	trayManager := tray.CreateDefaultTrayManager(log)
	trayManager.SetToggleAction(d.ToggleOrLog)
	trayManager.SetExitAction(func() {
		if err := d.Shutdown(); err != nil {
			log.Warning("tray-triggered shutdown failed: %v", err)
		}
	})
	trayManager.Start()
	d.Subscribe(trayManager.HandleEvent)

	return d, nil
}
