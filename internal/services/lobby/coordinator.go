// Package lobby binds live realtime connections to sessions. It keeps track
// of who is connected to which session, enforces one connection per player,
// relays session events, and turns lobby disconnects into session changes.
package lobby

import (
	"context"
	"errors"
	"log/slog"
	"sync"

	"github.com/mcoot/wordduel/internal/dependencies/clock"
	"github.com/mcoot/wordduel/internal/model"
)

// Conn is a live realtime connection
type Conn interface {
	ID() string
	// Send queues an event for delivery without blocking
	Send(event model.Event) error
	// Close flushes queued events and closes the connection
	Close() error
}

// Channels is the session-scoped broadcast group of the realtime transport
type Channels interface {
	Join(sessionID model.SessionID, conn Conn)
	Leave(sessionID model.SessionID, conn Conn)
	Broadcast(sessionID model.SessionID, event model.Event)
	// Disband closes every connection in the session's group
	Disband(sessionID model.SessionID)
}

// SessionOperations is the part of the session state machine the coordinator drives
type SessionOperations interface {
	GetSession(ctx context.Context, id model.SessionID, requester model.PlayerID) (*model.Session, error)
	LeaveLobby(ctx context.Context, id model.SessionID, participant model.PlayerID) (model.LeaveOutcome, error)
}

// binding is the live view of one session
type binding struct {
	host  model.PlayerID
	conns map[model.PlayerID]Conn
}

type identity struct {
	sessionID model.SessionID
	playerID  model.PlayerID
}

// Coordinator bridges realtime connections and session state
type Coordinator struct {
	sessions SessionOperations
	channels Channels
	clock    clock.Clock
	logger   *slog.Logger

	mu         sync.Mutex
	bindings   map[model.SessionID]*binding
	identified map[Conn]identity
}

// NewCoordinator creates a new lobby Coordinator
func NewCoordinator(sessions SessionOperations, channels Channels, clock clock.Clock, logger *slog.Logger) *Coordinator {
	return &Coordinator{
		sessions:   sessions,
		channels:   channels,
		clock:      clock,
		logger:     logger.With(slog.String("component", "lobby")),
		bindings:   make(map[model.SessionID]*binding),
		identified: make(map[Conn]identity),
	}
}

func (c *Coordinator) event(sessionID model.SessionID, eventType model.EventType, payload any) model.Event {
	return model.Event{
		Type:      eventType,
		Timestamp: c.clock.Now(),
		SessionID: sessionID,
		Payload:   payload,
	}
}

// Connect identifies a new connection. Connections without an identity, for an
// unknown session, or from a non-participant are closed and an error returned.
// A second live connection for the same player is told SOCKET_CONFLICT and closed.
func (c *Coordinator) Connect(ctx context.Context, conn Conn, sessionID model.SessionID, playerID model.PlayerID) error {
	logger := c.logger.With(
		slog.String("conn_id", conn.ID()),
		slog.String("session_id", string(sessionID)),
		slog.String("player_id", string(playerID)),
	)

	if sessionID == "" || playerID == "" {
		logger.Info("connection rejected: missing identity")
		_ = conn.Close()
		return model.ErrMissingIdentity
	}

	session, err := c.sessions.GetSession(ctx, sessionID, playerID)
	if err != nil {
		logger.Info("connection rejected", slog.String("error", err.Error()))
		_ = conn.Close()
		return err
	}

	c.mu.Lock()
	b, ok := c.bindings[sessionID]
	if !ok {
		b = &binding{host: session.Host, conns: make(map[model.PlayerID]Conn)}
		c.bindings[sessionID] = b
	}
	if _, taken := b.conns[playerID]; taken {
		c.mu.Unlock()
		logger.Info("connection rejected: player already connected")
		_ = conn.Send(c.event(sessionID, model.EventSocketConflict, nil))
		_ = conn.Close()
		return model.ErrSocketConflict
	}
	b.conns[playerID] = conn
	c.identified[conn] = identity{sessionID: sessionID, playerID: playerID}
	c.mu.Unlock()

	c.channels.Join(sessionID, conn)
	c.channels.Broadcast(sessionID, c.event(sessionID, model.EventPlayerConnected, model.PlayerPayload{PlayerID: playerID}))

	logger.Info("player connected", slog.Bool("host", playerID == session.Host))
	return nil
}

// Disconnect handles a closed connection. In a lobby that has not started, the
// host leaving disbands the session and anyone else leaving frees their slot.
func (c *Coordinator) Disconnect(ctx context.Context, conn Conn) {
	c.mu.Lock()
	id, ok := c.identified[conn]
	if !ok {
		c.mu.Unlock()
		return
	}
	delete(c.identified, conn)
	if b, ok := c.bindings[id.sessionID]; ok {
		if b.conns[id.playerID] == conn {
			delete(b.conns, id.playerID)
		}
		if len(b.conns) == 0 {
			delete(c.bindings, id.sessionID)
		}
	}
	c.mu.Unlock()

	c.channels.Leave(id.sessionID, conn)

	logger := c.logger.With(
		slog.String("session_id", string(id.sessionID)),
		slog.String("player_id", string(id.playerID)),
	)

	outcome, err := c.sessions.LeaveLobby(ctx, id.sessionID, id.playerID)
	if err != nil {
		logger.Error("failed to apply disconnect", slog.String("error", err.Error()))
		return
	}

	switch outcome {
	case model.LeaveRemoved:
		c.channels.Broadcast(id.sessionID, c.event(id.sessionID, model.EventPlayerDisconnected, model.PlayerPayload{PlayerID: id.playerID}))
		logger.Info("player left lobby")
	case model.LeaveDisbanded:
		c.channels.Broadcast(id.sessionID, c.event(id.sessionID, model.EventHostDisconnected, model.PlayerPayload{PlayerID: id.playerID}))
		c.discard(id.sessionID)
		logger.Info("host left lobby, session disbanded")
	default:
		logger.Debug("player disconnected")
	}
}

// HandleEvent relays a persisted session change to the session's channel.
// Once a session has ended its binding is discarded and its connections closed.
func (c *Coordinator) HandleEvent(_ context.Context, event model.Event) {
	c.channels.Broadcast(event.SessionID, event)

	if event.Type == model.EventGameEnded {
		c.discard(event.SessionID)
	}
}

// discard forgets a session's binding and closes its connections
func (c *Coordinator) discard(sessionID model.SessionID) {
	c.mu.Lock()
	if b, ok := c.bindings[sessionID]; ok {
		for _, conn := range b.conns {
			delete(c.identified, conn)
		}
		delete(c.bindings, sessionID)
	}
	c.mu.Unlock()

	c.channels.Disband(sessionID)
}

// ConnectedPlayers returns the players with a live connection to a session
func (c *Coordinator) ConnectedPlayers(sessionID model.SessionID) []model.PlayerID {
	c.mu.Lock()
	defer c.mu.Unlock()

	b, ok := c.bindings[sessionID]
	if !ok {
		return nil
	}
	players := make([]model.PlayerID, 0, len(b.conns))
	for p := range b.conns {
		players = append(players, p)
	}
	return players
}

// IsHostConnected returns true if the session's host has a live connection
func (c *Coordinator) IsHostConnected(sessionID model.SessionID) bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	b, ok := c.bindings[sessionID]
	if !ok {
		return false
	}
	_, ok = b.conns[b.host]
	return ok
}

// BindingCount returns the number of sessions with live connections
func (c *Coordinator) BindingCount() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.bindings)
}

// IsRejection reports whether a Connect error means the connection was refused
// rather than a failure of the service
func IsRejection(err error) bool {
	switch model.KindOf(err) {
	case model.KindNotFound, model.KindForbidden, model.KindConflict:
		return true
	}
	return errors.Is(err, model.ErrMissingIdentity)
}
