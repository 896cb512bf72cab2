// Copyright (c) 2025 Asher Buk
// SPDX-License-Identifier: MIT

package inject

import (
	"fmt"
	"os/exec"
	"strings"

	"github.com/swictation/swictation/internal/platform"
)

// xdotoolKeyNames maps the injector's marker vocabulary to xdotool's key-name
// syntax; SendKey also uses it to reject unknown names for every tool.
var xdotoolKeyNames = map[string]string{
	"Return": "Return", "Tab": "Tab", "Escape": "Escape", "BackSpace": "BackSpace",
	"Space": "space", "Left": "Left", "Right": "Right", "Up": "Up", "Down": "Down",
	"Home": "Home", "End": "End", "paste": "ctrl+v",
}

// LinuxBackend drives xdotool (X11), wtype/ydotool (Wayland) for keystroke
// injection, and xsel/wl-copy for the clipboard, choosing the tool at
// construction time based on the display server and the configured
// overrides. ydotool types literal text only; SendKey supports xdotool and
// wtype.
type LinuxBackend struct {
	typeTool      string
	clipboardTool string
	allowed       func(string) bool
	sanitize      func([]string) []string
}

// NewLinuxBackend constructs a backend. typeTool/clipboardTool may be empty
// or "auto" to auto-select based on the detected display server.
func NewLinuxBackend(typeTool, clipboardTool string, allowed func(string) bool, sanitize func([]string) []string) (*LinuxBackend, error) {
	if typeTool == "" || typeTool == "auto" {
		typeTool = defaultTypeTool()
	}
	if clipboardTool == "" || clipboardTool == "auto" {
		clipboardTool = defaultClipboardTool()
	}
	if !platform.UtilityExists(typeTool) {
		return nil, fmt.Errorf("type tool not found: %s", typeTool)
	}
	if !platform.UtilityExists(clipboardTool) {
		return nil, fmt.Errorf("clipboard tool not found: %s", clipboardTool)
	}
	return &LinuxBackend{typeTool: typeTool, clipboardTool: clipboardTool, allowed: allowed, sanitize: sanitize}, nil
}

func defaultTypeTool() string {
	if platform.DetectEnvironment() == platform.EnvironmentWayland {
		return "wtype"
	}
	return "xdotool"
}

func defaultClipboardTool() string {
	if platform.DetectEnvironment() == platform.EnvironmentWayland {
		return "wl-copy"
	}
	return "xsel"
}

func (b *LinuxBackend) run(tool string, args []string) ([]byte, error) {
	if b.allowed != nil && !b.allowed(tool) {
		return nil, fmt.Errorf("command not allowed: %s", tool)
	}
	if b.sanitize != nil {
		args = b.sanitize(args)
	}
	// #nosec G204 -- tool is allowlisted and args are sanitized above.
	return exec.Command(tool, args...).CombinedOutput()
}

func (b *LinuxBackend) InjectText(text string) error {
	if platform.DetectEnvironment() == platform.EnvironmentWayland && b.typeTool == "ydotool" && isNonASCII(text) {
		return fmt.Errorf("ydotool on Wayland doesn't support non-ASCII characters")
	}
	var args []string
	switch b.typeTool {
	case "xdotool":
		args = []string{"type", "--clearmodifiers", text}
	case "wtype":
		args = []string{text}
	case "ydotool":
		args = []string{"type", text}
	default:
		return fmt.Errorf("unsupported typing tool: %s", b.typeTool)
	}
	out, err := b.run(b.typeTool, args)
	if err != nil {
		return fmt.Errorf("type with %s: %w (output: %s)", b.typeTool, err, string(out))
	}
	return nil
}

func (b *LinuxBackend) SendKey(name string) error {
	key, ok := xdotoolKeyNames[name]
	if !ok {
		return fmt.Errorf("unsupported key: %s", name)
	}
	switch b.typeTool {
	case "xdotool":
		out, err := b.run("xdotool", []string{"key", key})
		if err != nil {
			return fmt.Errorf("send key %s: %w (output: %s)", name, err, string(out))
		}
		return nil
	case "wtype":
		out, err := b.run("wtype", wtypeKeyArgs(name))
		if err != nil {
			return fmt.Errorf("send key %s: %w (output: %s)", name, err, string(out))
		}
		return nil
	default:
		return fmt.Errorf("send-key unsupported for tool: %s", b.typeTool)
	}
}

func wtypeKeyArgs(name string) []string {
	if name == "paste" {
		return []string{"-M", "ctrl", "-k", "v", "-m", "ctrl"}
	}
	return []string{"-k", strings.ToLower(name)}
}

func (b *LinuxBackend) SetClipboard(text string) error {
	var args []string
	switch b.clipboardTool {
	case "xsel":
		args = []string{"--clipboard", "--input"}
	case "wl-copy":
		args = []string{}
	default:
		return fmt.Errorf("unsupported clipboard tool: %s", b.clipboardTool)
	}
	if b.allowed != nil && !b.allowed(b.clipboardTool) {
		return fmt.Errorf("command not allowed: %s", b.clipboardTool)
	}
	if b.sanitize != nil {
		args = b.sanitize(args)
	}
	// #nosec G204 -- tool is allowlisted and args are sanitized above.
	cmd := exec.Command(b.clipboardTool, args...)
	cmd.Stdin = strings.NewReader(text)
	if err := cmd.Run(); err != nil {
		return fmt.Errorf("set clipboard via %s: %w", b.clipboardTool, err)
	}
	return nil
}

func (b *LinuxBackend) GetClipboard() (string, error) {
	var args []string
	switch b.clipboardTool {
	case "xsel":
		args = []string{"--clipboard", "--output"}
	case "wl-copy":
		args = []string{"-o"}
	default:
		return "", fmt.Errorf("unsupported clipboard tool: %s", b.clipboardTool)
	}
	out, err := b.run(b.clipboardTool, args)
	if err != nil {
		return "", fmt.Errorf("get clipboard via %s: %w", b.clipboardTool, err)
	}
	return string(out), nil
}

func isNonASCII(text string) bool {
	for _, r := range text {
		if r > 127 {
			return true
		}
	}
	return false
}
