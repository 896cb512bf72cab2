// Copyright (c) 2025 Asher Buk
// SPDX-License-Identifier: MIT

package notify

import (
	"os"
	"os/exec"
	"path/filepath"
	"testing"

	"github.com/swictation/swictation/config"
	"github.com/swictation/swictation/internal/model"
)

func createTestConfig() *config.Config {
	cfg := &config.Config{}
	config.SetDefaultConfig(cfg)
	return cfg
}

// installFakeNotifySend puts a shell script named notify-send on PATH that
// appends every invocation's arguments as one line to logPath, standing in
// for the real notify-send binary so HandleEvent's dispatch can be observed
// without a display server.
func installFakeNotifySend(t *testing.T) (logPath string) {
	t.Helper()
	dir := t.TempDir()
	logPath = filepath.Join(dir, "calls.log")
	script := "#!/bin/sh\necho \"$@\" >> " + logPath + "\n"
	scriptPath := filepath.Join(dir, "notify-send")
	if err := os.WriteFile(scriptPath, []byte(script), 0o755); err != nil {
		t.Fatalf("writing fake notify-send: %v", err)
	}

	oldPath := os.Getenv("PATH")
	os.Setenv("PATH", dir+string(os.PathListSeparator)+oldPath)
	t.Cleanup(func() { os.Setenv("PATH", oldPath) })

	return logPath
}

func TestNewNotificationManager(t *testing.T) {
	appName := "TestApp"
	cfg := createTestConfig()
	nm := NewNotificationManager(appName, cfg)
	if nm == nil {
		t.Fatal("NewNotificationManager returned nil")
	}
	if nm.appName != appName {
		t.Errorf("Expected appName %q, got %q", appName, nm.appName)
	}
}

func TestNotificationManager_AppName(t *testing.T) {
	tests := []struct {
		name    string
		appName string
	}{
		{"normal app name", "MyApp"},
		{"app name with spaces", "My App Name"},
		{"app name with special chars", "My-App_v1.0"},
		{"empty app name", ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			nm := NewNotificationManager(tt.appName, createTestConfig())
			if nm.appName != tt.appName {
				t.Errorf("Expected appName %q, got %q", tt.appName, nm.appName)
			}
		})
	}
}

func TestNotificationManager_IsAvailable(t *testing.T) {
	nm := NewNotificationManager("TestApp", createTestConfig())
	result := nm.IsAvailable()
	expected := commandExists("notify-send")
	if result != expected {
		t.Errorf("Expected IsAvailable to return %v, got %v", expected, result)
	}
}

// allowingConfig returns a config with workflow notifications enabled and
// notify-send added to the command allowlist, since the default allowlist
// (config.SetDefaultConfig) deliberately omits it.
func allowingConfig(enabled bool) *config.Config {
	cfg := createTestConfig()
	cfg.Notifications.EnableWorkflowNotifications = enabled
	cfg.Security.AllowedCommands = append(cfg.Security.AllowedCommands, "notify-send")
	return cfg
}

func TestHandleEvent_StateChangeToRecordingFiresStartNotification(t *testing.T) {
	logPath := installFakeNotifySend(t)
	nm := NewNotificationManager("TestApp", allowingConfig(true))

	nm.HandleEvent(model.MetricsEvent{Type: model.EventStateChange, State: model.StateRecording})

	data, err := os.ReadFile(logPath)
	if err != nil {
		t.Fatalf("fake notify-send was not invoked: %v", err)
	}
	if len(data) == 0 {
		t.Fatal("fake notify-send logged no call")
	}
}

func TestHandleEvent_StateChangeToIdleFiresStopNotification(t *testing.T) {
	logPath := installFakeNotifySend(t)
	nm := NewNotificationManager("TestApp", allowingConfig(true))

	nm.HandleEvent(model.MetricsEvent{Type: model.EventStateChange, State: model.StateIdle})

	if _, err := os.Stat(logPath); err != nil {
		t.Fatalf("fake notify-send was not invoked for StateIdle: %v", err)
	}
}

func TestHandleEvent_StateChangeToStoppingIsIgnored(t *testing.T) {
	logPath := installFakeNotifySend(t)
	nm := NewNotificationManager("TestApp", allowingConfig(true))

	nm.HandleEvent(model.MetricsEvent{Type: model.EventStateChange, State: model.StateStopping})

	if _, err := os.Stat(logPath); err == nil {
		t.Error("fake notify-send was invoked for an unrecognized state, want no-op")
	}
}

func TestHandleEvent_FinalTranscriptionFiresCompleteNotification(t *testing.T) {
	logPath := installFakeNotifySend(t)
	nm := NewNotificationManager("TestApp", allowingConfig(true))

	nm.HandleEvent(model.MetricsEvent{Type: model.EventTranscription, Kind: model.KindFinal})

	if _, err := os.Stat(logPath); err != nil {
		t.Fatalf("fake notify-send was not invoked for a final transcription: %v", err)
	}
}

func TestHandleEvent_PartialTranscriptionIsIgnored(t *testing.T) {
	logPath := installFakeNotifySend(t)
	nm := NewNotificationManager("TestApp", allowingConfig(true))

	nm.HandleEvent(model.MetricsEvent{Type: model.EventTranscription, Kind: model.KindPartial})

	if _, err := os.Stat(logPath); err == nil {
		t.Error("fake notify-send was invoked for a partial transcription, want no-op")
	}
}

func TestHandleEvent_UnrecognizedEventTypeIsIgnored(t *testing.T) {
	logPath := installFakeNotifySend(t)
	nm := NewNotificationManager("TestApp", allowingConfig(true))

	nm.HandleEvent(model.MetricsEvent{Type: model.EventMetricsUpdate})

	if _, err := os.Stat(logPath); err == nil {
		t.Error("fake notify-send was invoked for metrics_update, want no-op")
	}
}

func TestHandleEvent_DisabledConfigSuppressesAllNotifications(t *testing.T) {
	logPath := installFakeNotifySend(t)
	nm := NewNotificationManager("TestApp", allowingConfig(false))

	nm.HandleEvent(model.MetricsEvent{Type: model.EventStateChange, State: model.StateRecording})
	nm.HandleEvent(model.MetricsEvent{Type: model.EventTranscription, Kind: model.KindFinal})

	if _, err := os.Stat(logPath); err == nil {
		t.Error("fake notify-send was invoked while workflow notifications are disabled")
	}
}

func TestSendNotification_RejectsCommandNotOnAllowlist(t *testing.T) {
	installFakeNotifySend(t)
	nm := NewNotificationManager("TestApp", createTestConfig()) // default allowlist omits notify-send

	if err := nm.sendNotification("summary", "body", "icon"); err == nil {
		t.Error("sendNotification() succeeded despite notify-send not being on the allowlist")
	}
}

func TestNotificationManager_TranscriptionCompleteMessageVariesByInjectionMethod(t *testing.T) {
	logPath := installFakeNotifySend(t)
	cfg := allowingConfig(true)
	cfg.Injection.Method = "keystroke"
	nm := NewNotificationManager("TestApp", cfg)

	if err := nm.NotifyTranscriptionComplete(); err != nil {
		t.Fatalf("NotifyTranscriptionComplete() returned error: %v", err)
	}
	if _, err := os.Stat(logPath); err != nil {
		t.Fatalf("fake notify-send was not invoked: %v", err)
	}
}

// commandExists reports whether cmd resolves on PATH.
func commandExists(cmd string) bool {
	_, err := exec.LookPath(cmd)
	return err == nil
}

func TestCommandExists(t *testing.T) {
	if !commandExists("echo") {
		t.Error("Expected 'echo' command to exist")
	}
	if commandExists("non-existent-command-12345") {
		t.Error("Expected 'non-existent-command-12345' to not exist")
	}
}
