// Copyright (c) 2025 Asher Buk
// SPDX-License-Identifier: MIT

package config

import (
	"github.com/fsnotify/fsnotify"
	"github.com/swictation/swictation/internal/logger"
)

// Watcher watches config.yaml for changes and notifies a callback with the
// freshly reloaded and validated configuration. It never mutates a config
// in place; callers decide when (if ever) to apply a reload, since a live
// config swap requires a full Recording -> Idle -> Recording cycle.
type Watcher struct {
	path   string
	log    logger.Logger
	fsw    *fsnotify.Watcher
	stopCh chan struct{}
}

// NewWatcher creates a config file watcher bound to path.
func NewWatcher(path string, log logger.Logger) (*Watcher, error) {
	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}
	if err := fsw.Add(path); err != nil {
		_ = fsw.Close()
		return nil, err
	}
	return &Watcher{path: path, log: log, fsw: fsw, stopCh: make(chan struct{})}, nil
}

// Watch runs until Close is called, invoking onChange whenever the file is
// written or recreated (editors commonly replace-by-rename).
func (w *Watcher) Watch(onChange func(*Config)) {
	for {
		select {
		case ev, ok := <-w.fsw.Events:
			if !ok {
				return
			}
			if ev.Op&(fsnotify.Write|fsnotify.Create) == 0 {
				continue
			}
			cfg, err := LoadConfig(w.path)
			if err != nil {
				w.log.Warning("config watch: reload failed: %v", err)
				continue
			}
			onChange(cfg)
		case err, ok := <-w.fsw.Errors:
			if !ok {
				return
			}
			w.log.Warning("config watch error: %v", err)
		case <-w.stopCh:
			return
		}
	}
}

// Close stops the watcher.
func (w *Watcher) Close() error {
	close(w.stopCh)
	return w.fsw.Close()
}
