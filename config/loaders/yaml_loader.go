// Copyright (c) 2025 Asher Buk
// SPDX-License-Identifier: MIT

package loaders

import (
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strings"

	"github.com/swictation/swictation/config/models"
	"github.com/swictation/swictation/config/validators"
	yaml "gopkg.in/yaml.v2"
)

// LoadConfig loads configuration from file, applying defaults first so
// that an absent or partial file still yields a usable configuration.
// A malformed YAML document is returned as an error with its file name
// attached; it is returned as a plain wrapped error, not an internal/errs value.
func LoadConfig(filename string) (*models.Config, error) {
	var config models.Config
	SetDefaultConfig(&config)

	clean := filepath.Clean(filename)
	if strings.Contains(clean, "..") {
		return nil, fmt.Errorf("invalid config path: %s", filename)
	}

	// #nosec G304 -- path is cleaned and controlled by application configuration.
	data, err := os.ReadFile(clean)
	if err != nil {
		log.Printf("warning: could not read config file: %v", err)
		log.Println("using default configuration")
		return &config, nil
	}

	if err := yaml.Unmarshal(data, &config); err != nil {
		return nil, fmt.Errorf("malformed config %s: %w", filename, err)
	}

	if err := validators.ValidateConfig(&config); err != nil {
		log.Printf("configuration validation issues: %v", err)
		log.Println("using validated configuration with corrections")
	}

	return &config, nil
}

// SetDefaultConfig populates config with the daemon's defaults, per §4.1.
func SetDefaultConfig(config *models.Config) {
	config.General.Debug = false
	config.General.LogFile = ""

	config.Audio.Device = "default"
	config.Audio.SampleRate = 16000
	config.Audio.ChunkSamples = 1600 // 100ms @ 16kHz
	config.Audio.RecordingMethod = models.AudioMethodAuto
	config.Audio.QueueFrames = 10

	config.VAD.Backend = models.VADBackendEnergy
	config.VAD.ModelPath = ""
	config.VAD.Threshold = 0.25
	config.VAD.MinSilenceS = 0.8
	config.VAD.MinSpeechS = 0.25
	config.VAD.MaxSpeechS = 30.0
	config.VAD.PreRollMs = 200

	config.STT.ModelOverride = "auto"
	config.STT.ModelDir = "models"
	config.STT.NumThreads = 4
	config.STT.Language = "auto"

	config.Transform.PhoneticThreshold = 0.3
	config.Transform.NumberNormalization = false

	config.Hotkeys.Provider = "auto"
	config.Hotkeys.Toggle = "Super+Shift+D"
	config.Hotkeys.PushToTalk = "Super+Space"

	config.Injection.Method = models.InjectionKeystroke
	config.Injection.CharDelayMs = 0
	config.Injection.ClipboardTool = "auto"
	config.Injection.TypeTool = "auto"
	config.Injection.ClipboardFallback = 200

	config.Notifications.EnableWorkflowNotifications = true

	config.Metrics.BufferBytes = 1024 * 1024
	config.Metrics.UpdateIntervalS = 1
	config.Metrics.WebSocket.Enabled = false
	config.Metrics.WebSocket.Port = 8090
	config.Metrics.WebSocket.Host = "localhost"
	config.Metrics.WebSocket.APIVersion = "v1"
	config.Metrics.WebSocket.CORSOrigins = "*"
	config.Metrics.WebSocket.MaxClients = 10

	config.Persistence.Enabled = true
	config.Persistence.QueueSize = 256

	config.Security.AllowedCommands = []string{
		"arecord", "ffmpeg", "xdotool", "wtype", "ydotool",
		"wl-copy", "wl-paste", "xsel", "xclip", "nvidia-smi",
	}
	config.Security.CheckIntegrity = false
	config.Security.ConfigHash = ""
	config.Security.MaxTempFileSize = 50 * 1024 * 1024
}

// SaveConfig writes the configuration back to disk in YAML form.
func SaveConfig(filename string, config *models.Config) error {
	safe := filepath.Clean(filename)
	if strings.Contains(safe, "..") {
		return fmt.Errorf("invalid config path: %s", filename)
	}

	data, err := yaml.Marshal(config)
	if err != nil {
		return err
	}

	if err := os.MkdirAll(filepath.Dir(safe), 0o750); err != nil {
		return err
	}

	return os.WriteFile(safe, data, 0o600)
}
