package ws

import (
	"context"
	"encoding/json"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
)

func dialHub(t *testing.T, h *Hub) *websocket.Conn {
	t.Helper()

	srv := httptest.NewServer(h)
	t.Cleanup(srv.Close)

	url := "ws" + strings.TrimPrefix(srv.URL, "http")
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	if err != nil {
		t.Fatalf("dial: %v", err)
	}
	t.Cleanup(func() { conn.Close() })

	return conn
}

func TestHub_PublishReachesClient(t *testing.T) {
	h := New(Config{})
	h.Start(context.Background())
	defer h.Stop()

	conn := dialHub(t, h)

	// Регистрация идёт через канал — даём циклу Run её обработать.
	time.Sleep(50 * time.Millisecond)

	h.PublishProgress("op-1", map[string]any{"progress_percentage": 42.0})

	conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	_, data, err := conn.ReadMessage()
	if err != nil {
		t.Fatalf("read: %v", err)
	}

	var ev Event
	if err := json.Unmarshal(data, &ev); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if ev.Type != "progress" {
		t.Errorf("type = %q, want progress", ev.Type)
	}
	if ev.Payload["operation_id"] != "op-1" {
		t.Errorf("operation_id = %v, want op-1", ev.Payload["operation_id"])
	}
}

func TestHub_PublishAfterStopIsNoop(t *testing.T) {
	h := New(Config{})
	h.Start(context.Background())
	h.Stop()

	// Не должно паниковать и блокироваться.
	h.Publish("progress", map[string]any{"x": 1})
}

func TestHub_StopIdempotent(t *testing.T) {
	h := New(Config{})
	h.Start(context.Background())
	h.Stop()
	h.Stop()
}
