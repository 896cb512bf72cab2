// Copyright (c) 2025 Asher Buk
// SPDX-License-Identifier: MIT

// Package metrics implements the Metrics Broadcaster: a one-way stream of
// line-delimited JSON events fanned out to any client connected to the
// metrics endpoint. A slow subscriber is disconnected rather than allowed
// to back-pressure the pipeline.
package metrics

import (
	"bufio"
	"encoding/json"
	"net"
	"os"
	"sync"
	"time"

	"github.com/swictation/swictation/internal/logger"
	"github.com/swictation/swictation/internal/model"
)

// avgEventBytes estimates the wire size of one marshaled MetricsEvent, used
// to turn the configured buffer_bytes budget into a channel depth.
const avgEventBytes = 128

// minSubscriberBufferEvents floors the derived channel depth so a tiny or
// zero buffer_bytes config still leaves room to absorb a scheduling burst.
const minSubscriberBufferEvents = 16

type subscriber struct {
	ch   chan model.MetricsEvent
	conn net.Conn
}

// Broadcaster owns the metrics Unix-socket listener and the set of
// currently connected subscribers.
type Broadcaster struct {
	log             logger.Logger
	subBufferEvents int

	mu   sync.Mutex
	subs map[*subscriber]struct{}

	ln net.Listener
}

// New constructs a Broadcaster. bufferBytes (the configured metrics.buffer_bytes
// budget) is converted into a per-subscriber channel depth; Start must be
// called to begin accepting subscribers.
func New(log logger.Logger, bufferBytes int) *Broadcaster {
	depth := bufferBytes / avgEventBytes
	if depth < minSubscriberBufferEvents {
		depth = minSubscriberBufferEvents
	}
	return &Broadcaster{log: log, subBufferEvents: depth, subs: make(map[*subscriber]struct{})}
}

// Start removes any stale socket at path and begins accepting subscriber
// connections.
func (b *Broadcaster) Start(path string) error {
	_ = os.Remove(path)
	ln, err := net.Listen("unix", path)
	if err != nil {
		return err
	}
	_ = os.Chmod(path, 0600)
	b.ln = ln

	go b.acceptLoop()
	return nil
}

func (b *Broadcaster) acceptLoop() {
	for {
		conn, err := b.ln.Accept()
		if err != nil {
			return
		}
		sub := &subscriber{ch: make(chan model.MetricsEvent, b.subBufferEvents), conn: conn}
		b.mu.Lock()
		b.subs[sub] = struct{}{}
		b.mu.Unlock()
		go b.serve(sub)
	}
}

func (b *Broadcaster) serve(sub *subscriber) {
	defer func() {
		b.mu.Lock()
		delete(b.subs, sub)
		b.mu.Unlock()
		_ = sub.conn.Close()
	}()

	w := bufio.NewWriter(sub.conn)
	for evt := range sub.ch {
		line, err := json.Marshal(evt)
		if err != nil {
			continue
		}
		_ = sub.conn.SetWriteDeadline(time.Now().Add(2 * time.Second))
		if _, err := w.Write(append(line, '\n')); err != nil {
			b.log.Warning("metrics subscriber disconnected: %v", err)
			return
		}
		if err := w.Flush(); err != nil {
			return
		}
	}
}

// Publish fans evt out to every connected subscriber. A subscriber whose
// buffer is full is dropped rather than allowed to stall the broadcaster.
func (b *Broadcaster) Publish(evt model.MetricsEvent) {
	b.mu.Lock()
	defer b.mu.Unlock()
	for sub := range b.subs {
		select {
		case sub.ch <- evt:
		default:
			delete(b.subs, sub)
			close(sub.ch)
			_ = sub.conn.Close()
		}
	}
}

// Close stops accepting new subscribers and disconnects all current ones.
func (b *Broadcaster) Close() error {
	if b.ln != nil {
		_ = b.ln.Close()
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	for sub := range b.subs {
		close(sub.ch)
		_ = sub.conn.Close()
		delete(b.subs, sub)
	}
	return nil
}
