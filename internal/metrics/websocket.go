// Copyright (c) 2025 Asher Buk
// SPDX-License-Identifier: MIT

package metrics

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"github.com/swictation/swictation/internal/logger"
	"github.com/swictation/swictation/internal/model"
)

const (
	wsWriteTimeout    = 10 * time.Second
	wsServerIdleTimeout = 60 * time.Second
	wsShutdownTimeout = 5 * time.Second
)

// WebSocketMirror exposes the same metrics stream over HTTP/WebSocket for
// external clients, mirroring the Unix-socket broadcaster rather than
// replacing it.
type WebSocketMirror struct {
	apiVersion string
	maxClients int
	upgrader   websocket.Upgrader
	log        logger.Logger

	mu      sync.Mutex
	clients map[*websocket.Conn]struct{}

	server *http.Server
}

// NewWebSocketMirror constructs a mirror; corsOrigins is compared exactly
// against the request Origin header unless it is "*".
func NewWebSocketMirror(apiVersion string, maxClients int, corsOrigins string, log logger.Logger) *WebSocketMirror {
	return &WebSocketMirror{
		apiVersion: apiVersion,
		maxClients: maxClients,
		log:        log,
		clients:    make(map[*websocket.Conn]struct{}),
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin: func(r *http.Request) bool {
				if corsOrigins == "*" {
					return true
				}
				origin := r.Header.Get("Origin")
				return origin == "" || origin == corsOrigins
			},
		},
	}
}

// Listen starts the HTTP server at host:port and forwards every evt passed
// to Broadcast to all connected WebSocket clients.
func (m *WebSocketMirror) Listen(host string, port int) error {
	mux := http.NewServeMux()
	mux.HandleFunc("/metrics", m.handleConn)
	m.server = &http.Server{
		Addr:        fmt.Sprintf("%s:%d", host, port),
		Handler:     mux,
		IdleTimeout: wsServerIdleTimeout,
	}
	errCh := make(chan error, 1)
	go func() { errCh <- m.server.ListenAndServe() }()
	select {
	case err := <-errCh:
		if err != nil && err != http.ErrServerClosed {
			return err
		}
	case <-time.After(100 * time.Millisecond):
	}
	return nil
}

func (m *WebSocketMirror) handleConn(w http.ResponseWriter, r *http.Request) {
	m.mu.Lock()
	if len(m.clients) >= m.maxClients {
		m.mu.Unlock()
		http.Error(w, "too many clients", http.StatusServiceUnavailable)
		return
	}
	m.mu.Unlock()

	conn, err := m.upgrader.Upgrade(w, r, nil)
	if err != nil {
		m.log.Warning("websocket upgrade failed: %v", err)
		return
	}
	m.mu.Lock()
	m.clients[conn] = struct{}{}
	m.mu.Unlock()

	// Drain client reads so the connection's control frames (ping/pong,
	// close) are handled; this server never reads application data.
	go func() {
		defer m.removeClient(conn)
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()
}

func (m *WebSocketMirror) removeClient(conn *websocket.Conn) {
	m.mu.Lock()
	delete(m.clients, conn)
	m.mu.Unlock()
	_ = conn.Close()
}

// wireEvent is MetricsEvent with the mirror's api_version stamped on, since
// the field only makes sense on the HTTP/WebSocket transport.
type wireEvent struct {
	model.MetricsEvent
	APIVersion string `json:"api_version"`
}

// Broadcast sends evt, wrapped with the mirror's api_version, to every
// connected client.
func (m *WebSocketMirror) Broadcast(evt model.MetricsEvent) {
	data, err := json.Marshal(wireEvent{MetricsEvent: evt, APIVersion: m.apiVersion})
	if err != nil {
		return
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	for conn := range m.clients {
		_ = conn.SetWriteDeadline(time.Now().Add(wsWriteTimeout))
		if err := conn.WriteMessage(websocket.TextMessage, data); err != nil {
			delete(m.clients, conn)
			_ = conn.Close()
		}
	}
}

// Close shuts the HTTP server down gracefully.
func (m *WebSocketMirror) Close() error {
	if m.server == nil {
		return nil
	}
	ctx, cancel := context.WithTimeout(context.Background(), wsShutdownTimeout)
	defer cancel()
	return m.server.Shutdown(ctx)
}
