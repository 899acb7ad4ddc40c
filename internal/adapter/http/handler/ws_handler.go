package handler

import (
	"net/http"

	"github.com/gorilla/websocket"
	"github.com/rs/zerolog"

	"github.com/iho/bankstream/internal/infrastructure/metrics"
	"github.com/iho/bankstream/internal/realtime"
)

// WSHandler upgrades HTTP requests into live subscriber connections.
type WSHandler struct {
	registry *realtime.Registry
	upgrader websocket.Upgrader
	metrics  *metrics.Metrics
	logger   zerolog.Logger
}

// NewWSHandler creates a new WSHandler.
func NewWSHandler(registry *realtime.Registry, m *metrics.Metrics, logger zerolog.Logger) *WSHandler {
	return &WSHandler{
		registry: registry,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			// Token auth happens after the upgrade, not via Origin.
			CheckOrigin: func(r *http.Request) bool { return true },
		},
		metrics: m,
		logger:  logger.With().Str("component", "ws_handler").Logger(),
	}
}

// Subscribe admits an authenticated connection. The credential arrives as
// a query parameter because browser WebSocket clients cannot set headers.
func (h *WSHandler) Subscribe(w http.ResponseWriter, r *http.Request) {
	token := r.URL.Query().Get("token")

	ws, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.logger.Warn().Err(err).Msg("upgrade failed")
		return
	}

	conn, err := h.registry.Admit(ws, token)
	if err != nil {
		h.metrics.AuthFailures.Inc()
		return
	}

	h.track(conn)
}

// SubscribePublic admits an unauthenticated broadcast-only connection.
func (h *WSHandler) SubscribePublic(w http.ResponseWriter, r *http.Request) {
	ws, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.logger.Warn().Err(err).Msg("upgrade failed")
		return
	}

	conn, err := h.registry.AdmitPublic(ws)
	if err != nil {
		return
	}

	h.track(conn)
}

// Stats reports live connection counts.
func (h *WSHandler) Stats(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, h.registry.Stats())
}

func (h *WSHandler) track(conn *realtime.Connection) {
	scope := string(conn.Scope())
	h.metrics.WSConnectionsTotal.WithLabelValues(scope).Inc()
	h.metrics.WSConnectionsActive.WithLabelValues(scope).Inc()

	go func() {
		<-conn.Done()
		h.metrics.WSConnectionsActive.WithLabelValues(scope).Dec()
	}()
}
