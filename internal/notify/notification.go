// Copyright (c) 2025 Asher Buk
// SPDX-License-Identifier: MIT

// Package notify sends desktop notifications via notify-send, driven by the
// daemon's metrics event stream rather than direct calls from the pipeline.
package notify

import (
	"fmt"
	"os/exec"

	"github.com/swictation/swictation/config"
	"github.com/swictation/swictation/internal/constants"
	"github.com/swictation/swictation/internal/model"
)

// Manages the sending of desktop notifications
type NotificationManager struct {
	appName string
	config  *config.Config
}

// Create a new notification manager
func NewNotificationManager(appName string, cfg *config.Config) *NotificationManager {
	return &NotificationManager{
		appName: appName,
		config:  cfg,
	}
}

// HandleEvent reacts to one metrics event, firing the matching workflow
// notification when notifications.enable_workflow_notifications is set.
// Unrecognized event types and states are ignored.
func (nm *NotificationManager) HandleEvent(evt model.MetricsEvent) {
	if !nm.config.Notifications.EnableWorkflowNotifications {
		return
	}
	switch evt.Type {
	case model.EventStateChange:
		switch evt.State {
		case model.StateRecording:
			_ = nm.NotifyStartRecording()
		case model.StateIdle:
			_ = nm.NotifyStopRecording()
		}
	case model.EventTranscription:
		if evt.Kind == model.KindFinal {
			_ = nm.NotifyTranscriptionComplete()
		}
	}
}

// Show a notification when recording starts
func (nm *NotificationManager) NotifyStartRecording() error {
	return nm.sendNotification(constants.NotifyTitleRecordingStart, constants.NotifyRecordingStartMsg, "notification-microphone-sensitivity-high")
}

// Show a notification when recording stops
func (nm *NotificationManager) NotifyStopRecording() error {
	return nm.sendNotification(constants.NotifyTitleRecordingStop, constants.NotifyRecordingStopMsg, "notification-microphone-sensitivity-muted")
}

// Show a notification when a final transcription has been delivered to its
// output.
func (nm *NotificationManager) NotifyTranscriptionComplete() error {
	body := constants.NotifyTranscriptionMsg
	if nm.config.Injection.Method != "clipboard" {
		body = constants.NotifyTranscriptionTypedMsg
	}
	return nm.sendNotification(constants.NotifyTitleTranscription, body, "edit-copy")
}

// Show an error notification
func (nm *NotificationManager) NotifyError(errMsg string) error {
	return nm.sendNotification(constants.NotifyTitleError, errMsg, "dialog-error")
}

// Show a notification when the configuration is reset to defaults
func (nm *NotificationManager) NotifyConfigurationReset() error {
	return nm.sendNotification(constants.NotifyTitleConfigReset, constants.NotifyConfigResetSuccess, "preferences-system")
}

// Show a generic notification
func (nm *NotificationManager) ShowNotification(summary, body string) error {
	return nm.sendNotification(summary, body, "dialog-information")
}

// Send a notification using the notify-send command
func (nm *NotificationManager) sendNotification(summary, body, icon string) error {
	// Security: validate command before execution
	if !config.IsCommandAllowed(nm.config, "notify-send") {
		return fmt.Errorf("notify-send command not allowed")
	}

	args := []string{
		"--app-name", nm.appName,
		"--icon", icon,
		summary, body,
	}

	// Security: sanitize arguments
	safeArgs := config.SanitizeCommandArgs(args)
	// #nosec G204 -- Safe: notify-send is from an allowlist and arguments are sanitized
	cmd := exec.Command("notify-send", safeArgs...)
	if err := cmd.Run(); err != nil {
		return fmt.Errorf("failed to send notification: %w", err)
	}

	return nil
}

// Check if the notification system is available
func (nm *NotificationManager) IsAvailable() bool {
	_, err := exec.LookPath("notify-send")
	return err == nil
}
