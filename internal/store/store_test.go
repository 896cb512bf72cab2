// Copyright (c) 2025 Asher Buk
// SPDX-License-Identifier: MIT

package store

import (
	"database/sql"
	"path/filepath"
	"testing"
	"time"

	"github.com/swictation/swictation/internal/logger"
	"github.com/swictation/swictation/internal/model"
)

func testLogger() logger.Logger {
	return logger.NewDefaultLogger(logger.ErrorLevel)
}

func openTestStore(t *testing.T) *Store {
	t.Helper()
	path := filepath.Join(t.TempDir(), "metrics.db")
	s, err := Open(path, 16, testLogger())
	if err != nil {
		t.Fatalf("Open() returned error: %v", err)
	}
	t.Cleanup(func() { _ = s.Close() })
	return s
}

func TestStore_Open_CreatesSchema(t *testing.T) {
	s := openTestStore(t)
	if s.db == nil {
		t.Fatal("Open() did not set db")
	}
}

func TestStore_RecordSessionStartAndEnd_Persists(t *testing.T) {
	s := openTestStore(t)
	started := time.Now().Truncate(time.Second)
	s.RecordSessionStart("sess-1", started)
	s.RecordSessionEnd("sess-1", started.Add(5*time.Second))
	waitForQueueDrain(t, s)

	var endedAt string
	row := s.db.QueryRow(`SELECT ended_at FROM sessions WHERE id = ?`, "sess-1")
	if err := row.Scan(&endedAt); err != nil {
		t.Fatalf("querying session row: %v", err)
	}
	if endedAt == "" {
		t.Errorf("ended_at not set")
	}
}

func TestStore_RecordTranscription_Persists(t *testing.T) {
	s := openTestStore(t)
	s.RecordSessionStart("sess-2", time.Now())
	conf := 0.9
	s.RecordTranscription("sess-2", model.Transcription{
		SegmentID:  7,
		Text:       "hello",
		TextOut:    "Hello",
		LatencyMs:  120,
		Confidence: &conf,
	}, time.Now())
	waitForQueueDrain(t, s)

	var text, textOut string
	row := s.db.QueryRow(`SELECT text, text_out FROM transcriptions WHERE session_id = ? AND segment_id = ?`, "sess-2", 7)
	if err := row.Scan(&text, &textOut); err != nil {
		t.Fatalf("querying transcription row: %v", err)
	}
	if text != "hello" || textOut != "Hello" {
		t.Errorf("got text=%q text_out=%q, want %q/%q", text, textOut, "hello", "Hello")
	}
}

func TestStore_UpsertCorrection_IncrementsUseCountOnConflict(t *testing.T) {
	s := openTestStore(t)
	s.UpsertCorrection(model.Correction{Trigger: "rite", Replacement: "right", Scope: "global", Confidence: 0.9, UseCount: 5}, time.Now())
	waitForQueueDrain(t, s)
	s.UpsertCorrection(model.Correction{Trigger: "rite", Replacement: "right-again", Scope: "global", Confidence: 0.95, UseCount: 99}, time.Now())
	waitForQueueDrain(t, s)

	var useCount int
	var replacement string
	row := s.db.QueryRow(`SELECT replacement, use_count FROM corrections WHERE trigger = ? AND scope = ?`, "rite", "global")
	if err := row.Scan(&replacement, &useCount); err != nil {
		t.Fatalf("querying correction row: %v", err)
	}
	if useCount != 6 {
		t.Errorf("use_count = %d, want 6 (5 + 1 on conflict, the inserted use_count is ignored)", useCount)
	}
	if replacement != "right-again" {
		t.Errorf("replacement = %q, want %q (replacement does update on conflict)", replacement, "right-again")
	}
}

func TestStore_Corrections_LoadsAll(t *testing.T) {
	s := openTestStore(t)
	s.UpsertCorrection(model.Correction{Trigger: "a", Replacement: "A", Scope: "global", Confidence: 0.8, UseCount: 1}, time.Now())
	s.UpsertCorrection(model.Correction{Trigger: "b", Replacement: "B", Scope: "global", Confidence: 0.8, UseCount: 1}, time.Now())
	waitForQueueDrain(t, s)

	got := s.Corrections()
	if len(got) != 2 {
		t.Fatalf("Corrections() returned %d rows, want 2", len(got))
	}
}

func TestStore_Close_DrainsPendingWrites(t *testing.T) {
	path := filepath.Join(t.TempDir(), "metrics.db")
	s, err := Open(path, 16, testLogger())
	if err != nil {
		t.Fatalf("Open() returned error: %v", err)
	}
	s.RecordSessionStart("sess-drain", time.Now())
	if err := s.Close(); err != nil {
		t.Fatalf("Close() returned error: %v", err)
	}

	reopened, err := Open(path, 16, testLogger())
	if err != nil {
		t.Fatalf("reopening db: %v", err)
	}
	defer reopened.Close()

	var id string
	row := reopened.db.QueryRow(`SELECT id FROM sessions WHERE id = ?`, "sess-drain")
	if err := row.Scan(&id); err != nil {
		t.Fatalf("Close() did not drain the pending write before closing the db: %v", err)
	}
}

func TestStore_EnqueueDropsWhenQueueFull(t *testing.T) {
	// Build a Store whose writer goroutine is never started, so the queue
	// fills deterministically rather than racing a live consumer.
	s := &Store{
		log:  testLogger(),
		jobs: make(chan writeJob, 1),
	}
	s.enqueue(func(*sql.DB) error { return nil })
	s.enqueue(func(*sql.DB) error { return nil }) // queue full, must drop

	if s.dropped != 1 {
		t.Errorf("dropped = %d, want 1", s.dropped)
	}
}

// waitForQueueDrain blocks until every write enqueued on s so far has been
// applied by polling the queue depth, which is safe because the writer
// goroutine only ever drains jobs in FIFO order.
func waitForQueueDrain(t *testing.T, s *Store) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if len(s.jobs) == 0 {
			time.Sleep(10 * time.Millisecond) // give the in-flight job time to finish its db.Exec
			return
		}
		time.Sleep(5 * time.Millisecond)
	}
	t.Fatal("timed out waiting for the write queue to drain")
}
