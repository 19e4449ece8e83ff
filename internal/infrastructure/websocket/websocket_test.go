package websocket

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/secondbrain/backend/internal/infrastructure/config"
)

func TestHub_BroadcastToUser(t *testing.T) {
	hub := NewHub()
	hub.Start()
	defer hub.Stop()

	alice := NewConnection("alice")
	bob := NewConnection("bob")
	hub.Register(alice)
	hub.Register(bob)

	require.NoError(t, hub.BroadcastToUser("alice", map[string]string{"event": "source.ingested"}))

	select {
	case msg := <-alice.Send:
		assert.JSONEq(t, `{"event":"source.ingested"}`, string(msg))
	case <-time.After(time.Second):
		t.Fatal("alice did not receive message")
	}
	select {
	case <-bob.Send:
		t.Fatal("bob should not receive alice's message")
	case <-time.After(50 * time.Millisecond):
	}

	hub.Unregister(alice)
	assert.Eventually(t, func() bool { return hub.ConnectionCount("alice") == 0 }, time.Second, 10*time.Millisecond)
	_, open := <-alice.Send
	assert.False(t, open)
}

func TestHub_StopClosesConnections(t *testing.T) {
	hub := NewHub()
	hub.Start()

	c := NewConnection("u")
	hub.Register(c)
	hub.Stop()

	select {
	case _, open := <-c.Send:
		assert.False(t, open)
	case <-time.After(time.Second):
		t.Fatal("connection not closed on stop")
	}
	assert.NoError(t, hub.BroadcastToUser("u", "ignored"))
}

func TestServer_HandleConnection(t *testing.T) {
	hub := NewHub()
	hub.Start()
	defer hub.Stop()
	srv := NewServer(hub, &config.WebSocketConfig{})

	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		srv.HandleConnection(w, r, "carol")
	}))
	defer ts.Close()

	wsURL := "ws" + strings.TrimPrefix(ts.URL, "http")
	conn, _, err := websocket.DefaultDialer.Dial(wsURL, nil)
	require.NoError(t, err)
	defer conn.Close()

	require.Eventually(t, func() bool { return hub.ConnectionCount("carol") == 1 }, time.Second, 10*time.Millisecond)
	require.NoError(t, hub.BroadcastToUser("carol", map[string]string{"chat_id": "c1"}))

	_ = conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	_, msg, err := conn.ReadMessage()
	require.NoError(t, err)
	assert.JSONEq(t, `{"chat_id":"c1"}`, string(msg))

	_ = conn.Close()
	assert.Eventually(t, func() bool { return hub.ConnectionCount("carol") == 0 }, 2*time.Second, 10*time.Millisecond)
}
