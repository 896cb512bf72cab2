//go:build integration

// Copyright (c) 2025 Asher Buk
// SPDX-License-Identifier: MIT

package integration

import (
	"bufio"
	"encoding/json"
	"net"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/swictation/swictation/internal/logger"
	"github.com/swictation/swictation/internal/metrics"
	"github.com/swictation/swictation/internal/model"
)

// TestMetrics_SlowSubscriberDoesNotStallFastSubscriber covers S6: a
// subscriber that never drains its socket must eventually be dropped by the
// broadcaster, and a second, fast subscriber keeps receiving every event
// with no gaps.
func TestMetrics_SlowSubscriberDoesNotStallFastSubscriber(t *testing.T) {
	log := logger.NewDefaultLogger(logger.ErrorLevel)
	// A tiny buffer_bytes budget floors to minSubscriberBufferEvents, so a
	// modest publish burst is enough to exceed a non-draining subscriber's
	// channel.
	bcast := metrics.New(log, 64)

	sockPath := filepath.Join(t.TempDir(), "metrics.sock")
	if err := bcast.Start(sockPath); err != nil {
		t.Fatalf("Start() returned error: %v", err)
	}
	defer bcast.Close()

	slowConn, err := net.DialTimeout("unix", sockPath, time.Second)
	if err != nil {
		t.Fatalf("slow subscriber dial failed: %v", err)
	}
	defer slowConn.Close()

	fastConn, err := net.DialTimeout("unix", sockPath, time.Second)
	if err != nil {
		t.Fatalf("fast subscriber dial failed: %v", err)
	}
	defer fastConn.Close()

	const n = 100
	// A large filler payload guarantees the producer outpaces the kernel
	// socket buffer for the never-drained slow subscriber well within the
	// channel's own small capacity, regardless of the host's actual socket
	// buffer size.
	filler := strings.Repeat("x", 20*1024)

	received := make(chan model.MetricsEvent, n)
	go func() {
		reader := bufio.NewReader(fastConn)
		for i := 0; i < n; i++ {
			line, err := reader.ReadBytes('\n')
			if err != nil {
				return
			}
			var evt model.MetricsEvent
			if json.Unmarshal(line, &evt) == nil {
				received <- evt
			}
		}
	}()

	for i := 0; i < n; i++ {
		// slowConn is never read, so its subscriber channel fills and the
		// broadcaster drops it well before n events are published.
		bcast.Publish(model.MetricsEvent{Type: model.EventTranscription, SegmentID: uint64(i), Text: filler})
	}

	var last uint64
	first := true
	deadline := time.After(10 * time.Second)
	for i := 0; i < n; i++ {
		select {
		case evt := <-received:
			if !first && evt.SegmentID <= last {
				t.Fatalf("gap or out-of-order event: got segment_id=%d after %d", evt.SegmentID, last)
			}
			last, first = evt.SegmentID, false
		case <-deadline:
			t.Fatalf("fast subscriber only received %d/%d events before timeout", i, n)
		}
	}

	// The never-drained slow subscriber must have been disconnected: its
	// connection reads EOF (or a closed-connection error) rather than
	// blocking forever.
	_ = slowConn.SetReadDeadline(time.Now().Add(3 * time.Second))
	buf := make([]byte, 1)
	if _, err := slowConn.Read(buf); err == nil {
		t.Error("slow subscriber connection still open and readable, want it disconnected after overflowing its buffer")
	}
}
