package realtime

import (
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"github.com/rs/zerolog"
)

const (
	// Time allowed to write a message to the peer.
	writeWait = 10 * time.Second

	// Time allowed to read the next pong message from the peer.
	pongWait = 60 * time.Second

	// Send pings to peer with this period. Must be less than pongWait.
	pingPeriod = (pongWait * 9) / 10

	// Maximum message size allowed from peer.
	maxMessageSize = 4096

	// DefaultQueueSize is the default outbound queue capacity per
	// connection.
	DefaultQueueSize = 32
)

// Scope classifies what a connection is allowed to receive.
type Scope string

const (
	// ScopePrivate receives the owning user's transaction notifications.
	ScopePrivate Scope = "private"
	// ScopePublic receives broadcast announcements only.
	ScopePublic Scope = "public"
)

// Connection is a single live subscriber. Outbound delivery goes through
// a bounded queue drained by the write pump; when the queue is full the
// newest message is dropped rather than blocking the producer.
type Connection struct {
	id        string
	userID    string
	scope     Scope
	createdAt time.Time

	ws     *websocket.Conn
	send   chan []byte
	done   chan struct{}
	closer sync.Once

	onClose func(*Connection)
	logger  zerolog.Logger
}

func newConnection(id, userID string, scope Scope, ws *websocket.Conn, queueSize int, logger zerolog.Logger) *Connection {
	if queueSize <= 0 {
		queueSize = DefaultQueueSize
	}

	return &Connection{
		id:        id,
		userID:    userID,
		scope:     scope,
		createdAt: time.Now().UTC(),
		ws:        ws,
		send:      make(chan []byte, queueSize),
		done:      make(chan struct{}),
		logger:    logger.With().Str("connection_id", id).Logger(),
	}
}

// ID returns the connection's unique identifier.
func (c *Connection) ID() string { return c.id }

// UserID returns the owning user, or "" for public connections.
func (c *Connection) UserID() string { return c.userID }

// Scope returns the connection's subscription scope.
func (c *Connection) Scope() Scope { return c.scope }

// CreatedAt returns when the connection was admitted.
func (c *Connection) CreatedAt() time.Time { return c.createdAt }

// Enqueue offers a payload to the outbound queue without blocking. It
// reports false when the connection is closed or the queue is full; the
// payload is dropped in both cases.
func (c *Connection) Enqueue(payload []byte) bool {
	select {
	case <-c.done:
		return false
	default:
	}

	select {
	case c.send <- payload:
		return true
	case <-c.done:
		return false
	default:
		c.logger.Warn().Str("user_id", c.userID).Msg("outbound queue full, dropping message")
		return false
	}
}

// Done returns a channel that is closed when the connection shuts down.
func (c *Connection) Done() <-chan struct{} { return c.done }

// Closed reports whether the connection has been shut down.
func (c *Connection) Closed() bool {
	select {
	case <-c.done:
		return true
	default:
		return false
	}
}

// Close shuts the connection down exactly once: the done channel is
// closed, the transport is closed, and the registry removal hook fires.
func (c *Connection) Close() {
	c.closer.Do(func() {
		close(c.done)
		if c.ws != nil {
			_ = c.ws.Close()
		}
		if c.onClose != nil {
			c.onClose(c)
		}
	})
}

// start launches the pumps. Connections without a transport (tests) are
// queue-only and never pump.
func (c *Connection) start() {
	if c.ws == nil {
		return
	}
	go c.writePump()
	go c.readPump()
}

func (c *Connection) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		c.Close()
	}()

	for {
		select {
		case payload := <-c.send:
			_ = c.ws.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.ws.WriteMessage(websocket.TextMessage, payload); err != nil {
				c.logger.Debug().Err(err).Msg("write failed, closing connection")
				return
			}
		case <-ticker.C:
			_ = c.ws.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.ws.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		case <-c.done:
			_ = c.ws.SetWriteDeadline(time.Now().Add(writeWait))
			_ = c.ws.WriteMessage(websocket.CloseMessage, websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""))
			return
		}
	}
}

func (c *Connection) readPump() {
	defer c.Close()

	c.ws.SetReadLimit(maxMessageSize)
	_ = c.ws.SetReadDeadline(time.Now().Add(pongWait))
	c.ws.SetPongHandler(func(string) error {
		return c.ws.SetReadDeadline(time.Now().Add(pongWait))
	})

	for {
		_, message, err := c.ws.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
				c.logger.Debug().Err(err).Msg("unexpected close")
			}
			return
		}
		_ = c.ws.SetReadDeadline(time.Now().Add(pongWait))

		// Application-level keepalive, mirrored back as JSON.
		if string(message) == "ping" {
			c.Enqueue(mustMarshal(map[string]string{
				"type":    "pong",
				"message": "Connection is alive",
			}))
			continue
		}

		c.Enqueue(mustMarshal(map[string]string{
			"type":    "echo",
			"message": fmt.Sprintf("Received: %s", message),
		}))
	}
}

func mustMarshal(v any) []byte {
	b, err := json.Marshal(v)
	if err != nil {
		panic(err)
	}
	return b
}
