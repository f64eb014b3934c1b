package ws

import (
	"context"
	"encoding/json"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/gorilla/websocket"
)

func dial(t *testing.T, srv *httptest.Server) *websocket.Conn {
	t.Helper()
	url := "ws" + strings.TrimPrefix(srv.URL, "http")
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	if err != nil {
		t.Fatalf("dial: %v", err)
	}
	t.Cleanup(func() { _ = conn.Close() })
	return conn
}

func readJSON(t *testing.T, conn *websocket.Conn) map[string]any {
	t.Helper()
	_ = conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	_, msg, err := conn.ReadMessage()
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	var m map[string]any
	if err := json.Unmarshal(msg, &m); err != nil {
		t.Fatalf("decode %s: %v", msg, err)
	}
	return m
}

func TestSnapshotThenBroadcast(t *testing.T) {
	var clients atomic.Int32
	h := NewHub()
	h.Snapshot = func() []any {
		return []any{map[string]string{"type": "state"}}
	}
	h.ClientsChanged = func(n int) { clients.Store(int32(n)) }

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go h.Run(ctx)

	srv := httptest.NewServer(h.Handler())
	defer srv.Close()

	conn := dial(t, srv)
	if got := readJSON(t, conn)["type"]; got != "state" {
		t.Fatalf("first message type = %v, want state", got)
	}

	deadline := time.Now().Add(2 * time.Second)
	for clients.Load() != 1 {
		if time.Now().After(deadline) {
			t.Fatal("client count never reached 1")
		}
		time.Sleep(5 * time.Millisecond)
	}

	h.BroadcastJSON(map[string]string{"type": "position"})
	if got := readJSON(t, conn)["type"]; got != "position" {
		t.Fatalf("broadcast type = %v, want position", got)
	}

	_ = conn.Close()
	deadline = time.Now().Add(2 * time.Second)
	for clients.Load() != 0 {
		if time.Now().After(deadline) {
			t.Fatal("client count never returned to 0")
		}
		time.Sleep(5 * time.Millisecond)
	}
}

func TestBroadcastJSONDropsUnmarshalable(t *testing.T) {
	h := NewHub()
	h.BroadcastJSON(make(chan int))
	if len(h.broadcast) != 0 {
		t.Fatalf("queued %d messages, want 0", len(h.broadcast))
	}
}

func TestShutdownSendsCloseFrame(t *testing.T) {
	h := NewHub()
	registered := make(chan struct{}, 1)
	h.ClientsChanged = func(n int) {
		if n == 1 {
			registered <- struct{}{}
		}
	}

	ctx, cancel := context.WithCancel(context.Background())
	go h.Run(ctx)

	srv := httptest.NewServer(h.Handler())
	defer srv.Close()

	conn := dial(t, srv)
	select {
	case <-registered:
	case <-time.After(2 * time.Second):
		t.Fatal("client never registered")
	}
	cancel()

	_ = conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	_, _, err := conn.ReadMessage()
	if !websocket.IsCloseError(err, websocket.CloseGoingAway) {
		t.Fatalf("read after shutdown: %v, want close 1001", err)
	}
}
