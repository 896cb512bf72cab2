// Copyright (c) 2025 Asher Buk
// SPDX-License-Identifier: MIT

// Package store implements Persistence: a SQLite-backed metrics database
// and learned-corrections store, written off the hot path by a single
// worker consuming a bounded channel. Dropped writes under overload are
// counted, never blocking a producer.
package store

import (
	"database/sql"
	"fmt"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite"

	"github.com/swictation/swictation/internal/logger"
	"github.com/swictation/swictation/internal/model"
	"github.com/swictation/swictation/internal/platform"
	"github.com/swictation/swictation/internal/utils"
)

const schema = `
CREATE TABLE IF NOT EXISTS sessions (
	id TEXT PRIMARY KEY,
	started_at DATETIME NOT NULL,
	ended_at DATETIME
);
CREATE TABLE IF NOT EXISTS transcriptions (
	session_id TEXT NOT NULL,
	segment_id INTEGER NOT NULL,
	text TEXT NOT NULL,
	text_out TEXT NOT NULL,
	latency_ms INTEGER NOT NULL,
	confidence REAL,
	created_at DATETIME NOT NULL
);
CREATE TABLE IF NOT EXISTS corrections (
	trigger TEXT NOT NULL,
	replacement TEXT NOT NULL,
	scope TEXT NOT NULL,
	confidence REAL NOT NULL,
	use_count INTEGER NOT NULL DEFAULT 0,
	updated_at DATETIME NOT NULL,
	UNIQUE(trigger, scope)
);
`

// writeJob is one unit of work for the writer goroutine.
type writeJob struct {
	exec func(*sql.DB) error
}

// Store owns the SQLite connection exclusively; no other component may
// touch db directly.
type Store struct {
	db  *sql.DB
	log logger.Logger

	jobs    chan writeJob
	dropped uint64
	done    chan struct{}
}

// Open opens (creating if needed) the database at path in WAL mode and
// starts the writer goroutine with the given bounded queue size.
func Open(path string, queueSize int, log logger.Logger) (*Store, error) {
	if err := platform.EnsureDirectoryExists(filepath.Dir(path)); err != nil {
		return nil, fmt.Errorf("metrics db directory: %w", err)
	}
	if err := utils.CheckDiskSpace(path); err != nil {
		return nil, fmt.Errorf("metrics db: %w", err)
	}

	db, err := sql.Open("sqlite", path+"?_pragma=journal_mode(WAL)")
	if err != nil {
		return nil, fmt.Errorf("open metrics db: %w", err)
	}
	db.SetMaxOpenConns(1)

	if _, err := db.Exec(schema); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("apply schema: %w", err)
	}

	s := &Store{
		db:   db,
		log:  log,
		jobs: make(chan writeJob, queueSize),
		done: make(chan struct{}),
	}
	go s.run()
	return s, nil
}

func (s *Store) run() {
	defer close(s.done)
	for job := range s.jobs {
		if err := job.exec(s.db); err != nil {
			s.log.Warning("persistence write failed: %v", err)
		}
	}
}

func (s *Store) enqueue(exec func(*sql.DB) error) {
	select {
	case s.jobs <- writeJob{exec: exec}:
	default:
		s.dropped++
		s.log.Warning("persistence queue full, dropping write (%d dropped total)", s.dropped)
	}
}

// RecordSessionStart enqueues a new sessions row.
func (s *Store) RecordSessionStart(sessionID string, startedAt time.Time) {
	s.enqueue(func(db *sql.DB) error {
		_, err := db.Exec(`INSERT INTO sessions(id, started_at) VALUES (?, ?)`, sessionID, startedAt)
		return err
	})
}

// RecordSessionEnd enqueues the end timestamp for an existing session.
func (s *Store) RecordSessionEnd(sessionID string, endedAt time.Time) {
	s.enqueue(func(db *sql.DB) error {
		_, err := db.Exec(`UPDATE sessions SET ended_at = ? WHERE id = ?`, endedAt, sessionID)
		return err
	})
}

// RecordTranscription enqueues a final transcription row.
func (s *Store) RecordTranscription(sessionID string, t model.Transcription, createdAt time.Time) {
	s.enqueue(func(db *sql.DB) error {
		_, err := db.Exec(
			`INSERT INTO transcriptions(session_id, segment_id, text, text_out, latency_ms, confidence, created_at)
			 VALUES (?, ?, ?, ?, ?, ?, ?)`,
			sessionID, t.SegmentID, t.Text, t.TextOut, t.LatencyMs, t.Confidence, createdAt,
		)
		return err
	})
}

// UpsertCorrection enqueues a learned correction, incrementing use_count on
// conflict.
func (s *Store) UpsertCorrection(c model.Correction, updatedAt time.Time) {
	s.enqueue(func(db *sql.DB) error {
		_, err := db.Exec(
			`INSERT INTO corrections(trigger, replacement, scope, confidence, use_count, updated_at)
			 VALUES (?, ?, ?, ?, ?, ?)
			 ON CONFLICT(trigger, scope) DO UPDATE SET
			   replacement = excluded.replacement,
			   confidence = excluded.confidence,
			   use_count = corrections.use_count + 1,
			   updated_at = excluded.updated_at`,
			c.Trigger, c.Replacement, c.Scope, c.Confidence, c.UseCount, updatedAt,
		)
		return err
	})
}

// Corrections loads every learned correction, for the Text Transform
// Pipeline's fuzzy matcher (implements transform.CorrectionStore).
func (s *Store) Corrections() []model.Correction {
	rows, err := s.db.Query(`SELECT trigger, replacement, scope, confidence, use_count FROM corrections`)
	if err != nil {
		s.log.Warning("load corrections failed: %v", err)
		return nil
	}
	defer rows.Close()

	var out []model.Correction
	for rows.Next() {
		var c model.Correction
		if err := rows.Scan(&c.Trigger, &c.Replacement, &c.Scope, &c.Confidence, &c.UseCount); err != nil {
			s.log.Warning("scan correction row failed: %v", err)
			continue
		}
		out = append(out, c)
	}
	return out
}

// Close drains the write queue and closes the database.
func (s *Store) Close() error {
	close(s.jobs)
	<-s.done
	return s.db.Close()
}
