package realtime

import (
	"log/slog"
	"sync"
	"time"

	"github.com/mcoot/wordduel/internal/dependencies/clock"
	"github.com/mcoot/wordduel/internal/model"
	"github.com/mcoot/wordduel/internal/services/lobby"
)

// Hub fans events out to the live connections of a single session.
// Broadcast and Close run under the same lock, so a frame broadcast before
// Close is always queued ahead of the connection shutting down.
type Hub struct {
	sessionID model.SessionID
	clock     clock.Clock
	logger    *slog.Logger

	mu     sync.RWMutex
	conns  map[lobby.Conn]time.Time // Connected at
	closed bool
}

// NewHub creates a new Hub for a session
func NewHub(sessionID model.SessionID, clk clock.Clock, logger *slog.Logger) *Hub {
	return &Hub{
		sessionID: sessionID,
		clock:     clk,
		logger:    logger.With(slog.String("session_id", string(sessionID))),
		conns:     make(map[lobby.Conn]time.Time),
	}
}

// Register adds a connection to the hub. It returns false if the hub is closed.
func (h *Hub) Register(conn lobby.Conn) bool {
	h.mu.Lock()
	if h.closed {
		h.mu.Unlock()
		return false
	}
	h.conns[conn] = h.clock.Now()
	count := len(h.conns)
	h.mu.Unlock()

	h.logger.Info("realtime connection registered",
		slog.String("conn_id", conn.ID()),
		slog.Int("total_conns", count))
	return true
}

// Unregister removes a connection from the hub without closing it
func (h *Hub) Unregister(conn lobby.Conn) {
	h.mu.Lock()
	connectedAt, ok := h.conns[conn]
	if !ok {
		h.mu.Unlock()
		return
	}
	delete(h.conns, conn)
	count := len(h.conns)
	h.mu.Unlock()

	h.logger.Info("realtime connection unregistered",
		slog.String("conn_id", conn.ID()),
		slog.Duration("connection_duration", clock.Since(h.clock, connectedAt)),
		slog.Int("total_conns", count))
}

// Broadcast sends an event to every connection and returns how many accepted it
func (h *Hub) Broadcast(event model.Event) int {
	h.mu.RLock()
	defer h.mu.RUnlock()

	sent := 0
	dropped := 0
	for conn := range h.conns {
		if err := conn.Send(event); err != nil {
			dropped++
			h.logger.Warn("realtime message dropped",
				slog.String("conn_id", conn.ID()),
				slog.String("event", string(event.Type)),
				slog.String("error", err.Error()))
			continue
		}
		sent++
	}
	if dropped > 0 {
		h.logger.Warn("realtime broadcast partial failure",
			slog.Int("sent", sent),
			slog.Int("dropped", dropped))
	}
	return sent
}

// Close closes every connection and rejects further registrations
func (h *Hub) Close() {
	h.mu.Lock()
	defer h.mu.Unlock()

	if h.closed {
		return
	}
	h.closed = true

	count := len(h.conns)
	for conn := range h.conns {
		_ = conn.Close()
		delete(h.conns, conn)
	}
	h.logger.Info("realtime hub stopped", slog.Int("disconnected_conns", count))
}

// ConnCount returns the number of registered connections
func (h *Hub) ConnCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.conns)
}

// HubManager manages hubs for all sessions. It is the session-scoped
// channel the lobby coordinator joins connections to and broadcasts on.
type HubManager struct {
	hubs   map[model.SessionID]*Hub
	mu     sync.RWMutex
	clock  clock.Clock
	logger *slog.Logger
}

// Ensure HubManager implements the coordinator's channel interface
var _ lobby.Channels = (*HubManager)(nil)

// NewHubManager creates a new HubManager
func NewHubManager(clk clock.Clock, logger *slog.Logger) *HubManager {
	return &HubManager{
		hubs:   make(map[model.SessionID]*Hub),
		clock:  clk,
		logger: logger.With(slog.String("component", "realtime")),
	}
}

// GetOrCreateHub returns the hub for a session, creating one if it doesn't exist
func (m *HubManager) GetOrCreateHub(sessionID model.SessionID) *Hub {
	m.mu.Lock()
	defer m.mu.Unlock()

	if hub, ok := m.hubs[sessionID]; ok {
		return hub
	}

	hub := NewHub(sessionID, m.clock, m.logger)
	m.hubs[sessionID] = hub
	return hub
}

// GetHub returns the hub for a session, or nil if it doesn't exist
func (m *HubManager) GetHub(sessionID model.SessionID) *Hub {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.hubs[sessionID]
}

// RemoveHub removes and closes a hub
func (m *HubManager) RemoveHub(sessionID model.SessionID) {
	m.mu.Lock()
	hub, ok := m.hubs[sessionID]
	if ok {
		delete(m.hubs, sessionID)
	}
	m.mu.Unlock()

	if ok {
		hub.Close()
		m.logger.Info("realtime hub removed", slog.String("session_id", string(sessionID)))
	}
}

// HubCount returns the number of live hubs
func (m *HubManager) HubCount() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.hubs)
}

// Join adds a connection to the session's channel
func (m *HubManager) Join(sessionID model.SessionID, conn lobby.Conn) {
	for {
		if m.GetOrCreateHub(sessionID).Register(conn) {
			return
		}
		// Lost a race with RemoveHub; the closed hub is already unmapped
	}
}

// Leave removes a connection from the session's channel, dropping the hub once empty
func (m *HubManager) Leave(sessionID model.SessionID, conn lobby.Conn) {
	m.mu.Lock()
	defer m.mu.Unlock()

	hub, ok := m.hubs[sessionID]
	if !ok {
		return
	}
	hub.Unregister(conn)
	if hub.ConnCount() == 0 {
		delete(m.hubs, sessionID)
		hub.Close()
	}
}

// Broadcast sends an event to the session's channel. Sessions without live
// connections are skipped.
func (m *HubManager) Broadcast(sessionID model.SessionID, event model.Event) {
	hub := m.GetHub(sessionID)
	if hub == nil {
		return
	}
	hub.Broadcast(event)
}

// Disband closes every connection on the session's channel
func (m *HubManager) Disband(sessionID model.SessionID) {
	m.RemoveHub(sessionID)
}
