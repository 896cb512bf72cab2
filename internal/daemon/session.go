// Copyright (c) 2025 Asher Buk
// SPDX-License-Identifier: MIT

package daemon

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/swictation/swictation/internal/audiocap"
	"github.com/swictation/swictation/internal/model"
	"github.com/swictation/swictation/internal/vad"
)

// defaultMetricsIntervalS is used when metrics.update_interval_s is unset or
// non-positive in config.
const defaultMetricsIntervalS = 1

const (
	audioQueueFrames = 10
	segmentQueue     = 4
	transcriptQueue  = 4
)

// startSession transitions Idle -> Recording: Audio Capture starts first,
// then VAD, then the STT worker and the transform/injection sink. If any
// stage fails to start, the ones already started are rolled back in
// reverse order and the daemon remains Idle.
func (d *Daemon) startSession() error {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.State() != model.StateIdle {
		return fmt.Errorf("cannot start session in state %s", d.State())
	}

	ctx, cancel := context.WithCancel(context.Background())
	sess := &session{id: uuid.NewString(), cancel: cancel}

	capturer, err := audiocap.New(
		d.cfg.Audio.RecordingMethod,
		d.cfg.Audio.SampleRate,
		d.cfg.Audio.ChunkSamples,
		audioQueueFrames,
		d.cfg.Audio.Device,
		d.allowed,
		d.sanitize,
		d.log,
	)
	if err != nil {
		cancel()
		return fmt.Errorf("audio capture init: %w", err)
	}
	sess.capturer = capturer

	audioCh := make(chan model.AudioFrame, audioQueueFrames)
	if err := capturer.Start(func(f model.AudioFrame) {
		select {
		case audioCh <- f:
		case <-ctx.Done():
		}
	}); err != nil {
		cancel()
		return fmt.Errorf("audio capture start: %w", err)
	}

	infer, err := d.newInferencer()
	if err != nil {
		capturer.Stop()
		cancel()
		return fmt.Errorf("vad init: %w", err)
	}
	segmenter := vad.New(vad.Config{
		Threshold:   d.cfg.VAD.Threshold,
		MinSilenceS: d.cfg.VAD.MinSilenceS,
		MinSpeechS:  d.cfg.VAD.MinSpeechS,
		MaxSpeechS:  d.cfg.VAD.MaxSpeechS,
		PreRollMs:   d.cfg.VAD.PreRollMs,
		SampleRate:  d.cfg.Audio.SampleRate,
	}, infer, d.log)

	segCh := make(chan model.SpeechSegment, segmentQueue)
	transCh := make(chan model.Transcription, transcriptQueue)

	sess.segmenter = segmenter
	sess.startedAt = time.Now()
	sess.audioCh = audioCh
	sess.segCh = segCh
	sess.transCh = transCh

	sess.wg.Add(1)
	go func() {
		defer sess.wg.Done()
		d.runMetricsTicker(ctx, sess)
	}()

	sess.wg.Add(1)
	go func() {
		defer sess.wg.Done()
		defer close(segCh)
		if err := segmenter.Run(ctx, audioCh, segCh); err != nil {
			d.log.Error("vad segmenter stopped: %v", err)
			d.publish(model.MetricsEvent{Type: model.EventStateChange, State: model.StateRecording, Reason: err.Error()})
			go d.forceStopOnFatal()
		}
		_ = infer.Close()
	}()

	sess.wg.Add(1)
	go func() {
		defer sess.wg.Done()
		defer close(transCh)
		if d.sttEngine != nil {
			if err := d.sttEngine.Run(segCh, transCh); err != nil {
				d.log.Error("stt engine stopped: %v", err)
			}
		} else {
			for range segCh {
			}
		}
	}()

	sess.wg.Add(1)
	go func() {
		defer sess.wg.Done()
		d.runSink(sess, transCh)
	}()

	d.current = sess
	d.state.Store(model.StateRecording)
	d.publish(model.MetricsEvent{Type: model.EventSessionStart, SessionID: sess.id})
	if d.persist != nil {
		d.persist.RecordSessionStart(sess.id, time.Now())
	}
	return nil
}

// runSink applies the transform pipeline and injects each final
// transcription's text_out, fanning out a transcription metric event and a
// persistence write for every final.
func (d *Daemon) runSink(sess *session, in <-chan model.Transcription) {
	sessionID := sess.id
	for t := range in {
		if d.transform != nil {
			t.TextOut = d.transform.Apply(t.Text, t.Kind == model.KindPartial)
		} else {
			t.TextOut = t.Text
		}

		if t.Kind == model.KindFinal && t.TextOut != "" && d.injector != nil {
			if err := d.injector.Inject(t.TextOut); err != nil {
				d.log.Warning("injection failed for segment %d: %v", t.SegmentID, err)
			}
		}

		if t.Kind == model.KindFinal {
			sess.wordCount.Add(uint64(len(strings.Fields(t.Text))))
		}

		d.publish(model.MetricsEvent{
			Type:       model.EventTranscription,
			SegmentID:  t.SegmentID,
			Text:       t.Text,
			TextOut:    t.TextOut,
			Kind:       t.Kind,
			LatencyMs:  t.LatencyMs,
			Confidence: t.Confidence,
		})

		if t.Kind == model.KindFinal && d.persist != nil {
			d.persist.RecordTranscription(sessionID, t, time.Now())
		}
	}
}

// runMetricsTicker samples ring/queue depths and VAD activity once per
// metrics.update_interval_s and publishes a metrics_update event, for the
// duration of the session.
func (d *Daemon) runMetricsTicker(ctx context.Context, sess *session) {
	intervalS := d.cfg.Metrics.UpdateIntervalS
	if intervalS <= 0 {
		intervalS = defaultMetricsIntervalS
	}
	ticker := time.NewTicker(time.Duration(intervalS) * time.Second)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			elapsedMin := time.Since(sess.startedAt).Minutes()
			var wpm float64
			if elapsedMin > 0 {
				wpm = float64(sess.wordCount.Load()) / elapsedMin
			}
			var framesDropped uint64
			if sess.capturer != nil {
				framesDropped = sess.capturer.FramesDropped()
			}
			var vadActive bool
			if sess.segmenter != nil {
				vadActive = sess.segmenter.Active()
			}
			d.publish(model.MetricsEvent{
				Type:          model.EventMetricsUpdate,
				SessionID:     sess.id,
				WPM:           wpm,
				FramesDropped: framesDropped,
				VADActive:     vadActive,
				QueueDepths: map[string]int{
					"audio":      len(sess.audioCh),
					"segment":    len(sess.segCh),
					"transcript": len(sess.transCh),
				},
			})
		}
	}
}

// stopSession transitions Recording -> Stopping -> Idle: capture is
// signaled to stop and the session context is cancelled, then all stages
// are awaited together for one shared budget (ctx's deadline, else
// defaultShutdownBudget). If they have not all drained by then, a warning
// is logged and the daemon is forced to Idle anyway. There is no per-stage
// timeout and no count of ungraceful shutdowns; cause is not used.
func (d *Daemon) stopSession(ctx context.Context, cause model.SegmentCause) {
	d.mu.Lock()
	sess := d.current
	d.mu.Unlock()
	if sess == nil {
		return
	}

	d.state.Store(model.StateStopping)
	if sess.capturer != nil {
		sess.capturer.Stop()
	}
	sess.cancel()

	drained := make(chan struct{})
	go func() {
		sess.wg.Wait()
		close(drained)
	}()

	budget := defaultShutdownBudget
	if dl, ok := ctx.Deadline(); ok {
		budget = time.Until(dl)
	}
	select {
	case <-drained:
	case <-time.After(budget):
		d.log.Warning("session %s did not drain within %s, forcing idle", sess.id, budget)
	}

	d.mu.Lock()
	d.current = nil
	d.mu.Unlock()
	d.state.Store(model.StateIdle)
	d.publish(model.MetricsEvent{Type: model.EventSessionEnd, SessionID: sess.id})
	if d.persist != nil {
		d.persist.RecordSessionEnd(sess.id, time.Now())
	}
}

func (d *Daemon) forceStopOnFatal() {
	ctx, cancel := context.WithTimeout(context.Background(), defaultShutdownBudget)
	defer cancel()
	d.stopSession(ctx, model.CauseSessionStop)
}
