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
)

func dialHub(t *testing.T, hub *Hub, runID string) *websocket.Conn {
	t.Helper()
	upgrader := websocket.Upgrader{}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			return
		}
		client := NewClient(hub, conn, runID)
		hub.Register(client)
		go client.WritePump()
		go client.ReadPump()
	}))
	t.Cleanup(srv.Close)

	conn, _, err := websocket.DefaultDialer.Dial("ws"+strings.TrimPrefix(srv.URL, "http"), nil)
	require.NoError(t, err)
	t.Cleanup(func() { conn.Close() })
	require.Eventually(t, func() bool { return hub.ClientCount(runID) > 0 }, time.Second, 10*time.Millisecond)
	return conn
}

func TestHub_RoutesByRunID(t *testing.T) {
	hub := NewHub()
	go hub.Run()

	watcher := dialHub(t, hub, "7")
	all := dialHub(t, hub, AllRuns)

	hub.Broadcast("8", "run_started", nil)
	hub.Broadcast("7", "item_log_open", map[string]interface{}{"id": 1})

	var msg Message
	require.NoError(t, all.SetReadDeadline(time.Now().Add(2*time.Second)))
	require.NoError(t, all.ReadJSON(&msg))
	assert.Equal(t, "8", msg.RunID)
	require.NoError(t, all.ReadJSON(&msg))
	assert.Equal(t, "7", msg.RunID)

	require.NoError(t, watcher.SetReadDeadline(time.Now().Add(2*time.Second)))
	require.NoError(t, watcher.ReadJSON(&msg))
	assert.Equal(t, "7", msg.RunID)
	assert.Equal(t, "item_log_open", msg.Type)
}

func TestHub_BroadcastWithoutRunLoopDoesNotBlock(t *testing.T) {
	hub := NewHub()
	done := make(chan struct{})
	go func() {
		for i := 0; i < 1000; i++ {
			hub.Broadcast("1", "item_log_open", i)
		}
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("Broadcast blocked")
	}
}
