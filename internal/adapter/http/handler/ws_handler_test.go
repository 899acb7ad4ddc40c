package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/gorilla/websocket"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"

	"github.com/iho/bankstream/internal/domain"
	"github.com/iho/bankstream/internal/infrastructure/auth"
	"github.com/iho/bankstream/internal/notification"
	"github.com/iho/bankstream/internal/realtime"
	"github.com/iho/bankstream/internal/taskqueue"
)

type wsFixture struct {
	server     *httptest.Server
	registry   *realtime.Registry
	jwtManager *auth.JWTManager
}

func newWSFixture(t *testing.T) *wsFixture {
	t.Helper()

	jwtManager := auth.NewJWTManager("ws-test-secret", time.Minute)
	registry := realtime.NewRegistry(jwtManager, 8, zerolog.Nop())
	t.Cleanup(registry.Close)

	wsHandler := NewWSHandler(registry, newTestMetrics(t), zerolog.Nop())

	r := chi.NewRouter()
	r.Get("/ws", wsHandler.Subscribe)
	r.Get("/ws/public", wsHandler.SubscribePublic)
	r.Get("/ws/connections", wsHandler.Stats)

	server := httptest.NewServer(r)
	t.Cleanup(server.Close)

	return &wsFixture{server: server, registry: registry, jwtManager: jwtManager}
}

func (f *wsFixture) wsURL(path string) string {
	return "ws" + strings.TrimPrefix(f.server.URL, "http") + path
}

func (f *wsFixture) token(t *testing.T, userID string) string {
	t.Helper()
	token, err := f.jwtManager.Generate(&domain.Identity{UserID: userID, Email: userID + "@example.com"})
	require.NoError(t, err)
	return token
}

func (f *wsFixture) dial(t *testing.T, path string) *websocket.Conn {
	t.Helper()
	ws, _, err := websocket.DefaultDialer.Dial(f.wsURL(path), nil)
	require.NoError(t, err)
	t.Cleanup(func() { ws.Close() })
	return ws
}

func readFrame(t *testing.T, ws *websocket.Conn) map[string]any {
	t.Helper()
	require.NoError(t, ws.SetReadDeadline(time.Now().Add(2*time.Second)))
	_, data, err := ws.ReadMessage()
	require.NoError(t, err)

	var frame map[string]any
	require.NoError(t, json.Unmarshal(data, &frame))
	return frame
}

func TestWSHandler_SubscribeSendsWelcome(t *testing.T) {
	f := newWSFixture(t)

	ws := f.dial(t, "/ws?token="+f.token(t, "user-1"))

	frame := readFrame(t, ws)
	require.Equal(t, "connection", frame["type"])
	require.Equal(t, "connected", frame["status"])
	require.Equal(t, "user-1", frame["user_id"])
}

func TestWSHandler_RejectsInvalidToken(t *testing.T) {
	f := newWSFixture(t)

	ws, _, err := websocket.DefaultDialer.Dial(f.wsURL("/ws?token=garbage"), nil)
	require.NoError(t, err)
	defer ws.Close()

	require.NoError(t, ws.SetReadDeadline(time.Now().Add(2*time.Second)))
	_, _, err = ws.ReadMessage()
	require.Error(t, err)

	closeErr, ok := err.(*websocket.CloseError)
	require.True(t, ok, "expected a close frame, got %v", err)
	require.Equal(t, websocket.ClosePolicyViolation, closeErr.Code)
	require.Equal(t, "Invalid token", closeErr.Text)

	require.Zero(t, f.registry.Stats().TotalConnections)
}

func TestWSHandler_PingPong(t *testing.T) {
	f := newWSFixture(t)

	ws := f.dial(t, "/ws?token="+f.token(t, "user-1"))
	readFrame(t, ws) // welcome

	require.NoError(t, ws.WriteMessage(websocket.TextMessage, []byte("ping")))

	frame := readFrame(t, ws)
	require.Equal(t, "pong", frame["type"])
	require.Equal(t, "Connection is alive", frame["message"])
}

func TestWSHandler_EchoesUnknownMessages(t *testing.T) {
	f := newWSFixture(t)

	ws := f.dial(t, "/ws?token="+f.token(t, "user-1"))
	readFrame(t, ws) // welcome

	require.NoError(t, ws.WriteMessage(websocket.TextMessage, []byte("hello")))

	frame := readFrame(t, ws)
	require.Equal(t, "echo", frame["type"])
	require.Equal(t, "Received: hello", frame["message"])
}

type recordingGateway struct {
	messages []*taskqueue.TaskMessage
}

func (g *recordingGateway) Enqueue(_ context.Context, msg *taskqueue.TaskMessage) error {
	g.messages = append(g.messages, msg)
	return nil
}

// Every connection a user holds receives its own copy of a committed
// transaction, and connections of other users receive nothing.
func TestWSHandler_CommittedTransactionFansOut(t *testing.T) {
	f := newWSFixture(t)

	first := f.dial(t, "/ws?token="+f.token(t, "user-1"))
	second := f.dial(t, "/ws?token="+f.token(t, "user-1"))
	other := f.dial(t, "/ws?token="+f.token(t, "user-2"))
	for _, ws := range []*websocket.Conn{first, second, other} {
		readFrame(t, ws) // welcome
	}

	gateway := &recordingGateway{}
	dispatcher := notification.NewDispatcher(
		realtime.NewSubscriberRegistry(f.registry),
		gateway,
		decimal.NewFromInt(10000),
		zerolog.Nop(),
		newTestMetrics(t),
	)

	txn := &domain.Transaction{
		ID:           "txn-1",
		AccountID:    "acc-1",
		Kind:         domain.KindDeposit,
		Amount:       decimal.NewFromInt(500),
		BalanceAfter: decimal.NewFromInt(500),
		CreatedAt:    time.Now().UTC(),
	}
	account := &domain.Account{
		ID:          "acc-1",
		OwnerUserID: "user-1",
		Currency:    "USD",
		Balance:     decimal.NewFromInt(500),
	}

	dispatcher.OnTransactionCommitted(context.Background(), txn, account)

	for _, ws := range []*websocket.Conn{first, second} {
		frame := readFrame(t, ws)
		require.Equal(t, "transaction", frame["type"])

		txnFrame, ok := frame["transaction"].(map[string]any)
		require.True(t, ok, "expected transaction object, got %v", frame)
		require.Equal(t, "txn-1", txnFrame["id"])
	}

	// The other user's connection stays silent.
	require.NoError(t, other.SetReadDeadline(time.Now().Add(200*time.Millisecond)))
	_, _, err := other.ReadMessage()
	require.Error(t, err)

	require.Empty(t, gateway.messages, "a small deposit must not reach the task queue")
}

func TestWSHandler_Stats(t *testing.T) {
	f := newWSFixture(t)

	private := f.dial(t, "/ws?token="+f.token(t, "user-1"))
	public := f.dial(t, "/ws/public")
	readFrame(t, private)
	readFrame(t, public)

	resp, err := http.Get(f.server.URL + "/ws/connections")
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var stats realtime.Stats
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&stats))
	require.Equal(t, 2, stats.TotalConnections)
	require.Equal(t, 1, stats.PublicCount)
	require.Equal(t, 1, stats.PerUserCounts["user-1"])
}
