// Copyright (c) 2025 Asher Buk
// SPDX-License-Identifier: MIT

package models

// Injection method constants.
const (
	InjectionKeystroke = "keystroke"
	InjectionClipboard = "clipboard"
)

// VAD backend constants.
const (
	VADBackendONNX   = "onnx"
	VADBackendEnergy = "energy"
)

// Audio capture method constants.
const (
	AudioMethodAuto    = "auto"
	AudioMethodMalgo   = "malgo"
	AudioMethodArecord = "arecord"
	AudioMethodFFmpeg  = "ffmpeg"
)

// Config is the typed, validated representation of config.yaml.
type Config struct {
	General struct {
		Debug   bool   `yaml:"debug"`
		LogFile string `yaml:"log_file"`
	} `yaml:"general"`

	Socket struct {
		Path        string `yaml:"path"`         // overrides ipc_endpoint()
		MetricsPath string `yaml:"metrics_path"` // overrides metrics_endpoint()
	} `yaml:"socket"`

	Audio struct {
		Device          string `yaml:"device"`
		SampleRate      int    `yaml:"sample_rate"`
		ChunkSamples    int    `yaml:"chunk_samples"`    // 1600 == 100ms @ 16kHz
		RecordingMethod string `yaml:"recording_method"` // auto, malgo, arecord, ffmpeg
		QueueFrames     int    `yaml:"queue_frames"`     // SPSC ring capacity, >=10
	} `yaml:"audio"`

	VAD struct {
		Backend       string  `yaml:"backend"` // onnx, energy
		ModelPath     string  `yaml:"model_path"`
		Threshold     float64 `yaml:"vad_threshold"`
		MinSilenceS   float64 `yaml:"vad_min_silence_s"`
		MinSpeechS    float64 `yaml:"vad_min_speech_s"`
		MaxSpeechS    float64 `yaml:"vad_max_speech_s"`
		PreRollMs     int     `yaml:"pre_roll_ms"`
	} `yaml:"vad"`

	STT struct {
		ModelOverride string `yaml:"stt_model_override"` // auto or explicit variant id
		ModelDir      string `yaml:"model_dir"`
		NumThreads    int    `yaml:"num_threads"`
		Language      string `yaml:"language"`
	} `yaml:"stt"`

	Transform struct {
		PhoneticThreshold   float64 `yaml:"phonetic_threshold"`
		NumberNormalization bool    `yaml:"number_normalization"`
	} `yaml:"transform"`

	Hotkeys struct {
		Provider     string `yaml:"provider"` // auto, dbus, evdev
		Toggle       string `yaml:"toggle"`
		PushToTalk   string `yaml:"push_to_talk"`
	} `yaml:"hotkeys"`

	Injection struct {
		Method            string `yaml:"method"` // keystroke, clipboard
		CharDelayMs       int    `yaml:"char_delay_ms"`
		ClipboardTool     string `yaml:"clipboard_tool"`
		TypeTool          string `yaml:"type_tool"`
		ClipboardFallback int    `yaml:"clipboard_fallback_chars"`
	} `yaml:"injection"`

	Notifications struct {
		EnableWorkflowNotifications bool `yaml:"enable_workflow_notifications"`
	} `yaml:"notifications"`

	Metrics struct {
		BufferBytes     int  `yaml:"buffer_bytes"`
		UpdateIntervalS int  `yaml:"update_interval_s"`
		WebSocket       struct {
			Enabled     bool   `yaml:"enabled"`
			Port        int    `yaml:"port"`
			Host        string `yaml:"host"`
			APIVersion  string `yaml:"api_version"`
			CORSOrigins string `yaml:"cors_origins"`
			MaxClients  int    `yaml:"max_clients"`
		} `yaml:"websocket"`
	} `yaml:"metrics"`

	Persistence struct {
		Enabled   bool `yaml:"enabled"`
		QueueSize int  `yaml:"queue_size"`
	} `yaml:"persistence"`

	Security struct {
		AllowedCommands []string `yaml:"allowed_commands"`
		CheckIntegrity  bool     `yaml:"check_integrity"`
		ConfigHash      string   `yaml:"config_hash"`
		MaxTempFileSize int64    `yaml:"max_temp_file_size"`
	} `yaml:"security"`
}
