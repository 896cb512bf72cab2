// Copyright (c) 2025 Asher Buk
// SPDX-License-Identifier: MIT

package validators

import (
	"fmt"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/swictation/swictation/config/models"
)

// ValidateConfig inspects the configuration for invalid or unsafe values.
// It corrects offending values to safe defaults in place and returns an
// error aggregating every issue found, so the daemon can always run with
// a sane configuration instead of refusing to start on a typo.
func ValidateConfig(config *models.Config) error {
	var issues []string

	if config.Audio.SampleRate < 8000 || config.Audio.SampleRate > 48000 {
		issues = append(issues, fmt.Sprintf("invalid sample_rate: %d, correcting to 16000", config.Audio.SampleRate))
		config.Audio.SampleRate = 16000
	}

	if config.Audio.ChunkSamples <= 0 {
		issues = append(issues, "invalid chunk_samples, correcting to 1600")
		config.Audio.ChunkSamples = 1600
	}

	if config.Audio.QueueFrames < 10 {
		issues = append(issues, fmt.Sprintf("queue_frames %d below minimum, correcting to 10", config.Audio.QueueFrames))
		config.Audio.QueueFrames = 10
	}

	validMethods := map[string]bool{models.AudioMethodAuto: true, models.AudioMethodMalgo: true, models.AudioMethodArecord: true, models.AudioMethodFFmpeg: true}
	if !validMethods[config.Audio.RecordingMethod] {
		issues = append(issues, fmt.Sprintf("invalid recording_method: %s, correcting to 'auto'", config.Audio.RecordingMethod))
		config.Audio.RecordingMethod = models.AudioMethodAuto
	}

	if config.VAD.Backend != models.VADBackendONNX && config.VAD.Backend != models.VADBackendEnergy {
		issues = append(issues, fmt.Sprintf("invalid vad.backend: %s, correcting to 'energy'", config.VAD.Backend))
		config.VAD.Backend = models.VADBackendEnergy
	}

	if config.VAD.Threshold <= 0 || config.VAD.Threshold >= 1 {
		issues = append(issues, fmt.Sprintf("invalid vad_threshold: %v, correcting to 0.25", config.VAD.Threshold))
		config.VAD.Threshold = 0.25
	}
	if config.VAD.MinSpeechS <= 0 {
		issues = append(issues, "invalid vad_min_speech_s, correcting to 0.25")
		config.VAD.MinSpeechS = 0.25
	}
	if config.VAD.MinSilenceS <= 0 {
		issues = append(issues, "invalid vad_min_silence_s, correcting to 0.8")
		config.VAD.MinSilenceS = 0.8
	}
	if config.VAD.MaxSpeechS <= config.VAD.MinSpeechS {
		issues = append(issues, "invalid vad_max_speech_s, correcting to 30.0")
		config.VAD.MaxSpeechS = 30.0
	}

	if config.STT.NumThreads <= 0 || config.STT.NumThreads > 64 {
		issues = append(issues, fmt.Sprintf("invalid num_threads: %d, correcting to 4", config.STT.NumThreads))
		config.STT.NumThreads = 4
	}

	if config.Transform.PhoneticThreshold < 0 || config.Transform.PhoneticThreshold > 1 {
		issues = append(issues, fmt.Sprintf("invalid phonetic_threshold: %v, correcting to 0.3", config.Transform.PhoneticThreshold))
		config.Transform.PhoneticThreshold = 0.3
	}

	if config.Injection.Method != models.InjectionKeystroke && config.Injection.Method != models.InjectionClipboard {
		issues = append(issues, fmt.Sprintf("invalid injection.method: %s, correcting to 'keystroke'", config.Injection.Method))
		config.Injection.Method = models.InjectionKeystroke
	}
	if config.Injection.CharDelayMs < 0 {
		issues = append(issues, "invalid injection.char_delay_ms, correcting to 0")
		config.Injection.CharDelayMs = 0
	}

	if config.Metrics.WebSocket.Enabled {
		if config.Metrics.WebSocket.Port <= 0 || config.Metrics.WebSocket.Port > 65535 {
			issues = append(issues, fmt.Sprintf("invalid metrics websocket port: %d, correcting to 8090", config.Metrics.WebSocket.Port))
			config.Metrics.WebSocket.Port = 8090
		}
		if config.Metrics.WebSocket.Host == "" {
			config.Metrics.WebSocket.Host = "localhost"
		} else {
			hostRegex := regexp.MustCompile(`^[a-zA-Z0-9.-]+$`)
			if !hostRegex.MatchString(config.Metrics.WebSocket.Host) {
				issues = append(issues, fmt.Sprintf("invalid metrics websocket host: %s, correcting to 'localhost'", config.Metrics.WebSocket.Host))
				config.Metrics.WebSocket.Host = "localhost"
			}
		}
	}

	if config.Metrics.BufferBytes <= 0 {
		issues = append(issues, "invalid metrics buffer_bytes, correcting to 1MB")
		config.Metrics.BufferBytes = 1024 * 1024
	}

	if config.Persistence.QueueSize <= 0 {
		issues = append(issues, "invalid persistence queue_size, correcting to 256")
		config.Persistence.QueueSize = 256
	}

	if len(config.Security.AllowedCommands) == 0 {
		config.Security.AllowedCommands = []string{"arecord", "ffmpeg", "xdotool", "wl-copy", "xsel"}
		issues = append(issues, "allowed_commands was empty, populated with defaults")
	}

	if config.Audio.Device != "" {
		config.Audio.Device = filepath.Clean(config.Audio.Device)
	}
	if strings.Contains(config.STT.ModelDir, "..") {
		config.STT.ModelDir = "models"
		issues = append(issues, "suspicious stt model_dir sanitized")
	}

	if len(issues) > 0 {
		return fmt.Errorf("configuration validation issues: %s", strings.Join(issues, "; "))
	}
	return nil
}
