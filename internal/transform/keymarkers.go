// Copyright (c) 2025 Asher Buk
// SPDX-License-Identifier: MIT

package transform

import "regexp"

// keyCommands maps a spoken command to the <KEY:NAME> marker the injector
// recognizes. NAME values match the injector's supported key set exactly.
var keyCommands = map[string]string{
	"press enter":     "<KEY:Return>",
	"press return":    "<KEY:Return>",
	"press tab":       "<KEY:Tab>",
	"press escape":    "<KEY:Escape>",
	"press backspace": "<KEY:BackSpace>",
	"press space":     "<KEY:Space>",
	"press left":      "<KEY:Left>",
	"press right":     "<KEY:Right>",
	"press up":        "<KEY:Up>",
	"press down":      "<KEY:Down>",
	"press home":      "<KEY:Home>",
	"press end":       "<KEY:End>",
	"tab":             "<KEY:Tab>",
}

var keyCommandPattern *regexp.Regexp

func init() {
	pattern := ""
	for cmd := range keyCommands {
		if pattern != "" {
			pattern += "|"
		}
		pattern += regexp.QuoteMeta(cmd)
	}
	keyCommandPattern = regexp.MustCompile(`(?i)\b(` + pattern + `)\b`)
}

// applyKeyMarkers converts recognized key commands into <KEY:NAME> markers,
// preserving literal text around them.
func applyKeyMarkers(text string) string {
	return keyCommandPattern.ReplaceAllStringFunc(text, func(match string) string {
		for cmd, marker := range keyCommands {
			if equalFold(cmd, match) {
				return marker
			}
		}
		return match
	})
}

func equalFold(a, b string) bool {
	if len(a) != len(b) {
		return false
	}
	for i := 0; i < len(a); i++ {
		ca, cb := a[i], b[i]
		if 'A' <= ca && ca <= 'Z' {
			ca += 'a' - 'A'
		}
		if 'A' <= cb && cb <= 'Z' {
			cb += 'a' - 'A'
		}
		if ca != cb {
			return false
		}
	}
	return true
}
