// Copyright (c) 2025 Asher Buk
// SPDX-License-Identifier: MIT

// Package inject implements Text Injection: synthesizing keystrokes or a
// clipboard-paste on the host display server from transformed text that may
// contain <KEY:NAME> markers.
package inject

import (
	"fmt"
	"regexp"
	"time"
)

// Method selects the primary injection mechanism.
type Method string

const (
	MethodKeystroke Method = "keystroke"
	MethodClipboard Method = "clipboard"
)

// Backend is the capability every platform mechanism exposes. Concrete
// mechanism (XTEST-like type, compositor virtual-keyboard, Core Graphics
// event post, SendInput) is selected at startup by New.
type Backend interface {
	InjectText(text string) error
	SendKey(name string) error
	SetClipboard(text string) error
	GetClipboard() (string, error)
}

// clipboardFallbackThreshold is the input length in bytes, markers included,
// above which the injector switches to clipboard+paste even when keystroke
// injection is otherwise healthy. It is the same for every backend.
const clipboardFallbackThreshold = 200

var markerPattern = regexp.MustCompile(`<KEY:([A-Za-z]+)>`)

var allowedKeys = map[string]bool{
	"Return": true, "Tab": true, "Escape": true, "BackSpace": true,
	"Space": true, "Left": true, "Right": true, "Up": true, "Down": true,
	"Home": true, "End": true,
}

// Injector applies the configured method, falling back to clipboard+paste
// on explicit config, length threshold, or a transient keystroke error.
type Injector struct {
	backend   Backend
	method    Method
	charDelay int
}

// New constructs an Injector around backend using method as the primary
// mechanism.
func New(backend Backend, method Method, charDelayMs int) *Injector {
	return &Injector{backend: backend, method: method, charDelay: charDelayMs}
}

// Inject splits text at <KEY:NAME> markers, synthesizing keystrokes for each
// literal run and the corresponding key event for each marker. On a
// clipboard fallback, prior clipboard contents are preserved and restored
// best-effort.
func (inj *Injector) Inject(text string) error {
	if inj.method == MethodClipboard || len(text) > clipboardFallbackThreshold {
		return inj.injectViaClipboard(text)
	}

	if err := inj.injectViaKeystroke(text); err != nil {
		// Transient keystroke failure: fall back to clipboard+paste.
		return inj.injectViaClipboard(text)
	}
	return nil
}

func (inj *Injector) injectViaKeystroke(text string) error {
	for _, part := range splitMarkers(text) {
		if part.isKey {
			if !allowedKeys[part.text] {
				return fmt.Errorf("unsupported key marker: %s", part.text)
			}
			if err := inj.backend.SendKey(part.text); err != nil {
				return fmt.Errorf("send key %s: %w", part.text, err)
			}
			continue
		}
		if part.text == "" {
			continue
		}
		if inj.charDelay > 0 {
			for _, r := range part.text {
				if err := inj.backend.InjectText(string(r)); err != nil {
					return fmt.Errorf("inject text: %w", err)
				}
				time.Sleep(time.Duration(inj.charDelay) * time.Millisecond)
			}
			continue
		}
		if err := inj.backend.InjectText(part.text); err != nil {
			return fmt.Errorf("inject text: %w", err)
		}
	}
	return nil
}

// injectViaClipboard pastes each literal run through the clipboard and
// synthesizes a direct key event for each <KEY:NAME> marker in between, so a
// marker is never silently absorbed into the pasted text.
func (inj *Injector) injectViaClipboard(text string) error {
	prior, savedErr := inj.backend.GetClipboard()
	defer func() {
		if savedErr == nil {
			_ = inj.backend.SetClipboard(prior)
		}
	}()

	for _, part := range splitMarkers(text) {
		if part.isKey {
			if !allowedKeys[part.text] {
				return fmt.Errorf("unsupported key marker: %s", part.text)
			}
			if err := inj.backend.SendKey(part.text); err != nil {
				return fmt.Errorf("send key %s: %w", part.text, err)
			}
			continue
		}
		if part.text == "" {
			continue
		}
		if err := inj.backend.SetClipboard(part.text); err != nil {
			return fmt.Errorf("set clipboard: %w", err)
		}
		if err := inj.backend.SendKey("paste"); err != nil {
			return fmt.Errorf("paste: %w", err)
		}
	}
	return nil
}

type segment struct {
	text  string
	isKey bool
}

// splitMarkers splits text at <KEY:NAME> markers into alternating literal
// and key segments.
func splitMarkers(text string) []segment {
	var segments []segment
	last := 0
	for _, loc := range markerPattern.FindAllStringSubmatchIndex(text, -1) {
		if loc[0] > last {
			segments = append(segments, segment{text: text[last:loc[0]]})
		}
		segments = append(segments, segment{text: text[loc[2]:loc[3]], isKey: true})
		last = loc[1]
	}
	if last < len(text) {
		segments = append(segments, segment{text: text[last:]})
	}
	return segments
}
