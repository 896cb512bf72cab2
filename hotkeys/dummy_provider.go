// Copyright (c) 2025 Asher Buk
// SPDX-License-Identifier: MIT

package hotkeys

import (
	"fmt"

	"github.com/swictation/swictation/internal/logger"
)

// DummyKeyboardProvider implements KeyboardEventProvider with no actual functionality
// Used as a fallback when no other providers are available
type DummyKeyboardProvider struct {
	callbacks   map[string]func() error
	isListening bool
	log         logger.Logger
}

// NewDummyKeyboardProvider creates a new DummyKeyboardProvider
func NewDummyKeyboardProvider(log logger.Logger) *DummyKeyboardProvider {
	return &DummyKeyboardProvider{
		callbacks:   make(map[string]func() error),
		isListening: false,
		log:         log,
	}
}

// IsSupported always returns true as the dummy provider is always supported
func (p *DummyKeyboardProvider) IsSupported() bool {
	return true
}

// Start does nothing but logs helpful instructions
func (p *DummyKeyboardProvider) Start() error {
	if p.isListening {
		return fmt.Errorf("dummy keyboard provider already started")
	}

	p.isListening = true
	if p.log != nil {
		p.log.Warning("using dummy keyboard provider, hotkeys will not be functional")
		p.log.Info("to enable hotkeys: ensure a D-Bus session is running, add the user to 'input' and relogin for evdev, or use a system-wide tool like sxhkd")
	}

	return nil
}

// Stop does nothing but changes the state
func (p *DummyKeyboardProvider) Stop() {
	p.isListening = false
}

// RegisterHotkey just stores the callback but never calls it
func (p *DummyKeyboardProvider) RegisterHotkey(hotkey string, callback func() error) error {
	if p.log != nil {
		p.log.Debug("registered hotkey %s, but it will not function with the dummy provider", hotkey)
	}
	p.callbacks[hotkey] = callback
	return nil
}
