package websocket

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	gorilla "github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"myxpicks/internal/config"
	"myxpicks/pkg/contracts/events"
)

var testWSConfig = config.WebSocketConfig{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	PingPeriod:      time.Second,
	PongWait:        2 * time.Second,
}

type received struct {
	Type    events.MessageType `json:"type"`
	Data    json.RawMessage    `json:"data"`
	TraceID string             `json:"trace_id"`
}

func startHub(t *testing.T) (*Hub, *httptest.Server, context.CancelFunc) {
	t.Helper()
	// Client pumps may log after the test returns, so nothing here writes to t.
	logger := slog.New(slog.NewJSONHandler(io.Discard, nil))
	hub := NewHub(logger)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		defer close(done)
		_ = hub.Run(ctx)
	}()

	server := httptest.NewServer(Handler(hub, testWSConfig, []string{"http://allowed.example"}, logger))
	t.Cleanup(func() {
		server.Close()
		cancel()
		<-done
	})
	return hub, server, cancel
}

func dial(t *testing.T, server *httptest.Server, origin string) (*gorilla.Conn, *http.Response, error) {
	t.Helper()
	header := http.Header{}
	if origin != "" {
		header.Set("Origin", origin)
	}
	return gorilla.DefaultDialer.Dial("ws"+strings.TrimPrefix(server.URL, "http"), header)
}

func readMessage(t *testing.T, conn *gorilla.Conn) received {
	t.Helper()
	require.NoError(t, conn.SetReadDeadline(time.Now().Add(2*time.Second)))
	var msg received
	require.NoError(t, conn.ReadJSON(&msg))
	return msg
}

func TestHub_ConnectAndBroadcast(t *testing.T) {
	hub, server, _ := startHub(t)

	conn, _, err := dial(t, server, "")
	require.NoError(t, err)
	defer conn.Close()

	hello := readMessage(t, conn)
	assert.Equal(t, events.MessageTypeConnection, hello.Type)
	var data events.ConnectionData
	require.NoError(t, json.Unmarshal(hello.Data, &data))
	assert.Equal(t, "connected", data.Status)
	assert.NotEmpty(t, data.ClientID)
	assert.Eventually(t, func() bool { return hub.ClientCount() == 1 }, time.Second, 10*time.Millisecond)

	require.NoError(t, hub.Broadcast(context.Background(), events.MessageTypePicksUpdated, events.PicksUpdated{
		RunID:       "run-1",
		UpdateTime:  "2025-12-22 18:30:00",
		Date:        "20251222",
		TotalStocks: 3,
	}))

	update := readMessage(t, conn)
	assert.Equal(t, events.MessageTypePicksUpdated, update.Type)
	var payload events.PicksUpdated
	require.NoError(t, json.Unmarshal(update.Data, &payload))
	assert.Equal(t, "2025-12-22 18:30:00", payload.UpdateTime)
	assert.Equal(t, 3, payload.TotalStocks)

	stats := hub.Stats()
	assert.Equal(t, int64(1), stats.TotalConnections)
	assert.GreaterOrEqual(t, stats.MessagesSent, int64(2))
}

func TestHub_ClientDisconnect(t *testing.T) {
	hub, server, _ := startHub(t)

	conn, _, err := dial(t, server, "http://allowed.example")
	require.NoError(t, err)
	readMessage(t, conn)
	require.Eventually(t, func() bool { return hub.ClientCount() == 1 }, time.Second, 10*time.Millisecond)

	require.NoError(t, conn.Close())
	assert.Eventually(t, func() bool { return hub.ClientCount() == 0 }, 2*time.Second, 10*time.Millisecond)
}

func TestHandler_RejectsForeignOrigin(t *testing.T) {
	_, server, _ := startHub(t)

	_, resp, err := dial(t, server, "http://evil.example")
	require.Error(t, err)
	require.NotNil(t, resp)
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)
}

func TestHandler_AcceptsSameHostOrigin(t *testing.T) {
	hub, server, _ := startHub(t)

	conn, _, err := dial(t, server, server.URL)
	require.NoError(t, err)
	defer conn.Close()
	readMessage(t, conn)
	assert.Eventually(t, func() bool { return hub.ClientCount() == 1 }, time.Second, 10*time.Millisecond)
}

func TestHub_StoppedHub(t *testing.T) {
	hub, server, cancel := startHub(t)

	conn, _, err := dial(t, server, "")
	require.NoError(t, err)
	defer conn.Close()
	readMessage(t, conn)

	cancel()
	require.Eventually(t, func() bool {
		return hub.Broadcast(context.Background(), events.MessageTypePicksUpdated, nil) == ErrHubStopped
	}, time.Second, 10*time.Millisecond)
	assert.Zero(t, hub.ClientCount())

	// The server side closes the socket once the hub stops.
	require.NoError(t, conn.SetReadDeadline(time.Now().Add(2*time.Second)))
	_, _, err = conn.ReadMessage()
	assert.Error(t, err)
}

func TestHub_BroadcastWithoutClients(t *testing.T) {
	hub := NewHub(nil)
	for i := 0; i < broadcastQueue+5; i++ {
		require.NoError(t, hub.Broadcast(context.Background(), events.MessageTypePicksUpdated, i))
	}
	assert.Equal(t, int64(5), hub.Stats().MessagesDropped)
}
