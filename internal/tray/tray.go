//go:build systray

// Copyright (c) 2025 Asher Buk
// SPDX-License-Identifier: MIT

package tray

import (
	"context"
	"fmt"
	"sync"

	"github.com/getlantern/systray"
	"github.com/swictation/swictation/internal/constants"
	"github.com/swictation/swictation/internal/logger"
	"github.com/swictation/swictation/internal/model"
)

// TrayManager manages the system tray icon and a toggle/quit menu, entirely
// driven by HandleEvent; it never calls back into the daemon's state.
type TrayManager struct {
	iconMicOff []byte
	iconMicOn  []byte
	onExit     func()
	onToggle   func() error
	logger     logger.Logger

	toggleItem *systray.MenuItem
	exitItem   *systray.MenuItem

	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup
}

// NewTrayManager creates a new tray manager instance. Callbacks are wired
// later via the setter methods.
func NewTrayManager(iconMicOff, iconMicOn []byte, logger logger.Logger) *TrayManager {
	return &TrayManager{
		iconMicOff: iconMicOff,
		iconMicOn:  iconMicOn,
		logger:     logger,
	}
}

// Start initializes and starts the system tray icon and menu.
func (tm *TrayManager) Start() {
	if tm.cancel != nil {
		tm.cancel()
	}
	tm.ctx, tm.cancel = context.WithCancel(context.Background())
	tm.wg.Add(1)
	go func() {
		defer tm.wg.Done()
		systray.Run(tm.onReady, func() {
			if tm.onExit != nil {
				tm.onExit()
			}
		})
	}()
}

func (tm *TrayManager) onReady() {
	systray.SetIcon(tm.iconMicOff)
	systray.SetTitle("Swictation")

	tm.toggleItem = systray.AddMenuItem(fmt.Sprintf("%s Start Recording", constants.IconRecording), "Start/Stop recording")
	systray.AddSeparator()
	tm.exitItem = systray.AddMenuItem(fmt.Sprintf("%s Quit", constants.IconError), "Quit Swictation")

	tm.wg.Add(1)
	go func() {
		defer tm.wg.Done()
		tm.handleMenuClicks()
	}()
}

func (tm *TrayManager) handleMenuClicks() {
	for {
		select {
		case <-tm.ctx.Done():
			return
		case <-tm.toggleItem.ClickedCh:
			if tm.onToggle != nil {
				if err := tm.onToggle(); err != nil {
					tm.logger.Error("tray toggle failed: %v", err)
				}
			}
		case <-tm.exitItem.ClickedCh:
			if tm.cancel != nil {
				tm.cancel()
			}
			systray.Quit()
			if tm.onExit != nil {
				tm.onExit()
			}
			return
		}
	}
}

// HandleEvent updates the tray icon and menu title from a state_change
// metrics event; all other event types are ignored.
func (tm *TrayManager) HandleEvent(evt model.MetricsEvent) {
	if evt.Type != model.EventStateChange || tm.toggleItem == nil {
		return
	}
	switch evt.State {
	case model.StateRecording:
		systray.SetIcon(tm.iconMicOn)
		tm.toggleItem.SetTitle(fmt.Sprintf("%s Stop Recording", constants.IconStop))
	default:
		systray.SetIcon(tm.iconMicOff)
		tm.toggleItem.SetTitle(fmt.Sprintf("%s Start Recording", constants.IconRecording))
	}
}

// Stop stops the tray manager.
func (tm *TrayManager) Stop() {
	if tm.cancel != nil {
		tm.cancel()
	}
	systray.Quit()
	tm.wg.Wait()
}

// SetExitAction sets the callback invoked when Quit is clicked.
func (tm *TrayManager) SetExitAction(onExit func()) {
	tm.onExit = onExit
}

// SetToggleAction sets the callback invoked when the toggle item is clicked.
func (tm *TrayManager) SetToggleAction(onToggle func() error) {
	tm.onToggle = onToggle
}
