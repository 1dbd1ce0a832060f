package realtime

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"github.com/mcoot/wordduel/internal/model"
	"github.com/mcoot/wordduel/internal/services/lobby"
)

const (
	// Time allowed to write a message to the peer
	writeWait = 10 * time.Second

	// Time allowed to read the next pong message from the peer
	pongWait = 60 * time.Second

	// Send pings to peer with this period. Must be less than pongWait.
	pingPeriod = (pongWait * 9) / 10

	// Maximum message size allowed from peer; clients only send control frames
	maxMessageSize = 512

	// Buffer size for outgoing messages
	sendBufferSize = 64
)

var (
	ErrClientClosed   = errors.New("connection closed")
	ErrSendBufferFull = errors.New("send buffer full")
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin:     func(r *http.Request) bool { return true },
}

// Binder identifies connections and reacts to them closing
type Binder interface {
	Connect(ctx context.Context, conn lobby.Conn, sessionID model.SessionID, playerID model.PlayerID) error
	Disconnect(ctx context.Context, conn lobby.Conn)
}

// Client is a websocket connection to one session
type Client struct {
	id     string
	ws     *websocket.Conn
	logger *slog.Logger

	mu     sync.Mutex
	send   chan []byte
	closed bool
	done   chan struct{}
}

// Ensure Client implements the coordinator's connection interface
var _ lobby.Conn = (*Client)(nil)

// NewClient wraps an upgraded websocket connection
func NewClient(id string, ws *websocket.Conn, logger *slog.Logger) *Client {
	return &Client{
		id:     id,
		ws:     ws,
		logger: logger.With(slog.String("conn_id", id)),
		send:   make(chan []byte, sendBufferSize),
		done:   make(chan struct{}),
	}
}

// ID returns the connection id
func (c *Client) ID() string {
	return c.id
}

// Send queues an event for the write pump
func (c *Client) Send(event model.Event) error {
	frame, err := EncodeEvent(event)
	if err != nil {
		return err
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	if c.closed {
		return ErrClientClosed
	}
	select {
	case c.send <- frame:
		return nil
	default:
		return ErrSendBufferFull
	}
}

// Close stops accepting events. The write pump flushes what is queued, then
// sends a close frame.
func (c *Client) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if !c.closed {
		c.closed = true
		close(c.send)
	}
	return nil
}

// Done is closed once the write pump has shut the socket
func (c *Client) Done() <-chan struct{} {
	return c.done
}

// writePump pumps messages from the send channel to the websocket
func (c *Client) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		_ = c.ws.Close()
		close(c.done)
	}()

	for {
		select {
		case message, ok := <-c.send:
			_ = c.ws.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				_ = c.ws.WriteMessage(websocket.CloseMessage,
					websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""))
				return
			}
			if err := c.ws.WriteMessage(websocket.TextMessage, message); err != nil {
				c.logger.Debug("websocket write failed", slog.String("error", err.Error()))
				return
			}

		case <-ticker.C:
			_ = c.ws.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.ws.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

// readPump drains the websocket until the peer goes away. Inbound messages
// are ignored; all actions go through the HTTP API.
func (c *Client) readPump() {
	c.ws.SetReadLimit(maxMessageSize)
	_ = c.ws.SetReadDeadline(time.Now().Add(pongWait))
	c.ws.SetPongHandler(func(string) error {
		return c.ws.SetReadDeadline(time.Now().Add(pongWait))
	})

	for {
		if _, _, err := c.ws.ReadMessage(); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				c.logger.Debug("websocket closed unexpectedly", slog.String("error", err.Error()))
			}
			return
		}
	}
}

// ServeWS upgrades the request and runs the connection until either side
// closes it. The caller has already authenticated playerID.
func ServeWS(
	w http.ResponseWriter,
	r *http.Request,
	binder Binder,
	connID string,
	sessionID model.SessionID,
	playerID model.PlayerID,
	logger *slog.Logger,
) {
	ws, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		// Upgrade has already written an HTTP error
		logger.Warn("websocket upgrade failed", slog.String("error", err.Error()))
		return
	}

	client := NewClient(connID, ws, logger.With(
		slog.String("session_id", string(sessionID)),
		slog.String("player_id", string(playerID)),
	))
	go client.writePump()

	// The request context ends with the handler; disconnect work must not
	ctx := context.WithoutCancel(r.Context())

	if err := binder.Connect(ctx, client, sessionID, playerID); err != nil {
		// The binder closed the client; wait for the close frame to go out
		<-client.Done()
		return
	}

	readDone := make(chan struct{})
	go func() {
		client.readPump()
		close(readDone)
	}()

	select {
	case <-readDone:
	case <-client.Done():
	}

	binder.Disconnect(ctx, client)
	_ = client.Close()
	<-client.Done()
}
