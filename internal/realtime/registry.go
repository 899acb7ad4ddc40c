package realtime

import (
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/rs/zerolog"

	"github.com/iho/bankstream/internal/domain"
)

// AuthVerifier validates a bearer credential and resolves the identity
// behind it.
type AuthVerifier interface {
	Verify(credential string) (*domain.Identity, error)
}

// Stats is a point-in-time snapshot of the registry.
type Stats struct {
	TotalConnections int            `json:"total_connections"`
	PerUserCounts    map[string]int `json:"per_user_counts"`
	PublicCount      int            `json:"public_count"`
}

// Registry tracks live subscriber connections. A user may hold any number
// of concurrent connections; each receives its own copy of every
// notification. The registry is process-scoped with an explicit
// lifecycle: construct it at startup, Close it on shutdown.
type Registry struct {
	verifier  AuthVerifier
	queueSize int
	logger    zerolog.Logger

	mu     sync.RWMutex
	byUser map[string]map[string]*Connection
	public map[string]*Connection
	conns  map[string]*Connection
	closed bool
}

// NewRegistry creates an empty registry. queueSize bounds each
// connection's outbound queue; zero means DefaultQueueSize.
func NewRegistry(verifier AuthVerifier, queueSize int, logger zerolog.Logger) *Registry {
	return &Registry{
		verifier:  verifier,
		queueSize: queueSize,
		logger:    logger.With().Str("component", "realtime").Logger(),
		byUser:    make(map[string]map[string]*Connection),
		public:    make(map[string]*Connection),
		conns:     make(map[string]*Connection),
	}
}

// Admit verifies the credential and registers an authenticated
// connection. On rejection the transport is closed with a
// policy-violation close code and no registry entry is made.
func (r *Registry) Admit(ws *websocket.Conn, credential string) (*Connection, error) {
	identity, err := r.verifier.Verify(credential)
	if err != nil {
		r.reject(ws, "Invalid token")
		return nil, fmt.Errorf("%w: %w", domain.ErrConnectionRejected, err)
	}

	conn := newConnection(uuid.NewString(), identity.UserID, ScopePrivate, ws, r.queueSize, r.logger)

	if err := r.add(conn); err != nil {
		r.reject(ws, "Server shutting down")
		return nil, err
	}

	conn.start()
	conn.Enqueue(mustMarshal(map[string]any{
		"type":    "connection",
		"status":  "connected",
		"message": fmt.Sprintf("Welcome %s! You are now connected to real-time updates.", identity.Email),
		"user_id": identity.UserID,
	}))

	r.logger.Info().
		Str("connection_id", conn.ID()).
		Str("user_id", identity.UserID).
		Msg("connection admitted")

	return conn, nil
}

// AdmitPublic registers an unauthenticated broadcast-only connection.
func (r *Registry) AdmitPublic(ws *websocket.Conn) (*Connection, error) {
	conn := newConnection(uuid.NewString(), "", ScopePublic, ws, r.queueSize, r.logger)

	if err := r.add(conn); err != nil {
		r.reject(ws, "Server shutting down")
		return nil, err
	}

	conn.start()
	conn.Enqueue(mustMarshal(map[string]any{
		"type":    "connection",
		"status":  "connected",
		"message": "Connected to public updates",
	}))

	return conn, nil
}

func (r *Registry) add(conn *Connection) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.closed {
		return domain.ErrConnectionRejected
	}

	conn.onClose = func(c *Connection) { r.Remove(c.ID()) }
	r.conns[conn.ID()] = conn

	switch conn.Scope() {
	case ScopePublic:
		r.public[conn.ID()] = conn
	default:
		set, ok := r.byUser[conn.UserID()]
		if !ok {
			set = make(map[string]*Connection)
			r.byUser[conn.UserID()] = set
		}
		set[conn.ID()] = conn
	}

	return nil
}

func (r *Registry) reject(ws *websocket.Conn, reason string) {
	if ws == nil {
		return
	}
	deadline := time.Now().Add(writeWait)
	_ = ws.WriteControl(websocket.CloseMessage, websocket.FormatCloseMessage(websocket.ClosePolicyViolation, reason), deadline)
	_ = ws.Close()
}

// Remove evicts a connection and closes it. Unknown IDs are a no-op, so
// concurrent removal and transport-close races are safe.
func (r *Registry) Remove(connectionID string) {
	r.mu.Lock()
	conn, ok := r.conns[connectionID]
	if ok {
		delete(r.conns, connectionID)
		delete(r.public, connectionID)
		if set, ok := r.byUser[conn.UserID()]; ok {
			delete(set, connectionID)
			if len(set) == 0 {
				delete(r.byUser, conn.UserID())
			}
		}
	}
	r.mu.Unlock()

	if ok {
		conn.Close()
	}
}

// SubscribersOf returns a snapshot of the user's live connections.
func (r *Registry) SubscribersOf(userID string) []*Connection {
	r.mu.RLock()
	defer r.mu.RUnlock()

	set := r.byUser[userID]
	conns := make([]*Connection, 0, len(set))
	for _, c := range set {
		conns = append(conns, c)
	}
	return conns
}

// Broadcast enqueues a payload on every public connection and reports how
// many accepted it.
func (r *Registry) Broadcast(payload []byte) int {
	r.mu.RLock()
	conns := make([]*Connection, 0, len(r.public))
	for _, c := range r.public {
		conns = append(conns, c)
	}
	r.mu.RUnlock()

	delivered := 0
	for _, c := range conns {
		if c.Enqueue(payload) {
			delivered++
		} else if c.Closed() {
			r.Remove(c.ID())
		}
	}
	return delivered
}

// Stats returns a snapshot of connection counts.
func (r *Registry) Stats() Stats {
	r.mu.RLock()
	defer r.mu.RUnlock()

	perUser := make(map[string]int, len(r.byUser))
	for userID, set := range r.byUser {
		perUser[userID] = len(set)
	}

	return Stats{
		TotalConnections: len(r.conns),
		PerUserCounts:    perUser,
		PublicCount:      len(r.public),
	}
}

// Close shuts the registry down: no further admissions, every live
// connection is evicted and closed.
func (r *Registry) Close() {
	r.mu.Lock()
	r.closed = true
	conns := make([]*Connection, 0, len(r.conns))
	for _, c := range r.conns {
		conns = append(conns, c)
	}
	r.conns = make(map[string]*Connection)
	r.byUser = make(map[string]map[string]*Connection)
	r.public = make(map[string]*Connection)
	r.mu.Unlock()

	for _, c := range conns {
		c.Close()
	}
}
