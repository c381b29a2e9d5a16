package realtime

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
)

func dialHub(t *testing.T, srv *httptest.Server) *websocket.Conn {
	t.Helper()
	url := "ws" + strings.TrimPrefix(srv.URL, "http")
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	if err != nil {
		t.Fatalf("dial: %v", err)
	}
	return conn
}

func waitClients(t *testing.T, hub *Hub, want int) {
	t.Helper()
	deadline := time.Now().Add(5 * time.Second)
	for hub.Clients() != want {
		if time.Now().After(deadline) {
			t.Fatalf("expected %d clients, have %d", want, hub.Clients())
		}
		time.Sleep(10 * time.Millisecond)
	}
}

func TestHubBroadcastReachesClient(t *testing.T) {
	hub := NewHub("*")
	srv := httptest.NewServer(http.HandlerFunc(hub.ServeWS))
	defer srv.Close()

	conn := dialHub(t, srv)
	defer conn.Close()
	waitClients(t, hub, 1)

	hub.Broadcast("order.created", map[string]string{"id": "abc"})

	conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	_, raw, err := conn.ReadMessage()
	if err != nil {
		t.Fatalf("read: %v", err)
	}

	var msg struct {
		Type string            `json:"type"`
		Data map[string]string `json:"data"`
	}
	if err := json.Unmarshal(raw, &msg); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if msg.Type != "order.created" || msg.Data["id"] != "abc" {
		t.Fatalf("unexpected message: %s", raw)
	}
}

func TestHubBroadcastDoesNotWaitForStalledClient(t *testing.T) {
	hub := NewHub("*")
	srv := httptest.NewServer(http.HandlerFunc(hub.ServeWS))
	defer srv.Close()

	stalled := dialHub(t, srv)
	defer stalled.Close()
	waitClients(t, hub, 1)

	big := strings.Repeat("x", 64<<10)
	start := time.Now()
	for i := 0; i < 400; i++ {
		hub.Broadcast("order.created", big)
	}
	if elapsed := time.Since(start); elapsed >= writeWait-time.Second {
		t.Fatalf("broadcast blocked on a client that never reads: %s", elapsed)
	}
	waitClients(t, hub, 0)
}
