package server

import (
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
)

type testEvent struct {
	Active int    `json:"active"`
	Name   string `json:"active_name"`
}

func dialHub(t *testing.T, ts *httptest.Server) *websocket.Conn {
	t.Helper()
	url := "ws" + strings.TrimPrefix(ts.URL, "http") + "/api/events"
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	if err != nil {
		t.Fatalf("dial %s: %v", url, err)
	}
	t.Cleanup(func() { conn.Close() })
	return conn
}

func readEvent(t *testing.T, conn *websocket.Conn) testEvent {
	t.Helper()
	conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	var ev testEvent
	if err := conn.ReadJSON(&ev); err != nil {
		t.Fatalf("read event: %v", err)
	}
	return ev
}

func waitForClients(t *testing.T, hub *EventHub, n int) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for hub.Clients() != n {
		if time.Now().After(deadline) {
			t.Fatalf("expected %d clients, have %d", n, hub.Clients())
		}
		time.Sleep(5 * time.Millisecond)
	}
}

func TestEventHub_Broadcast(t *testing.T) {
	hub := NewEventHub(nil)
	ts := httptest.NewServer(New(Config{Hub: hub}))
	defer ts.Close()

	a := dialHub(t, ts)
	b := dialHub(t, ts)
	waitForClients(t, hub, 2)

	if err := hub.Publish(testEvent{Active: 0, Name: "pete"}); err != nil {
		t.Fatalf("Publish failed: %v", err)
	}

	for _, conn := range []*websocket.Conn{a, b} {
		if ev := readEvent(t, conn); ev.Name != "pete" || ev.Active != 0 {
			t.Errorf("unexpected event %+v", ev)
		}
	}
}

func TestEventHub_ReplaysLatest(t *testing.T) {
	hub := NewEventHub(nil)
	ts := httptest.NewServer(hub)
	defer ts.Close()

	hub.Publish(testEvent{Active: -1})
	hub.Publish(testEvent{Active: 1, Name: "ant"})

	conn := dialHub(t, ts)
	if ev := readEvent(t, conn); ev.Name != "ant" {
		t.Errorf("expected the latest event on connect, got %+v", ev)
	}
}

func TestEventHub_RemovesClosedClients(t *testing.T) {
	hub := NewEventHub(nil)
	ts := httptest.NewServer(hub)
	defer ts.Close()

	conn := dialHub(t, ts)
	waitForClients(t, hub, 1)

	conn.Close()
	waitForClients(t, hub, 0)
}

func TestEventHub_CloseAll(t *testing.T) {
	hub := NewEventHub(nil)
	ts := httptest.NewServer(hub)
	defer ts.Close()

	conn := dialHub(t, ts)
	waitForClients(t, hub, 1)

	hub.CloseAll()
	if hub.Clients() != 0 {
		t.Errorf("expected no clients, got %d", hub.Clients())
	}

	conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	if _, _, err := conn.ReadMessage(); err == nil {
		t.Error("expected the connection to be closed")
	}
}

func TestEventHub_PublishEncodeError(t *testing.T) {
	hub := NewEventHub(nil)
	if err := hub.Publish(make(chan int)); err == nil {
		t.Error("expected an encoding error")
	}
}

func TestEventHub_SlowClientDoesNotStallPublish(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping socket backpressure test in short mode")
	}

	hub := NewEventHub(nil)
	ts := httptest.NewServer(hub)
	defer ts.Close()

	// The stalled client never reads, so its socket buffers fill and writes to it block.
	dialHub(t, ts)
	healthy := dialHub(t, ts)
	waitForClients(t, hub, 2)

	received := make(chan string, 64)
	go func() {
		for {
			var ev testEvent
			if err := healthy.ReadJSON(&ev); err != nil {
				close(received)
				return
			}
			received <- ev.Name
		}
	}()

	payload := strings.Repeat("x", 1<<20)
	for i := 0; i < 32; i++ {
		start := time.Now()
		if err := hub.Publish(testEvent{Active: i, Name: payload}); err != nil {
			t.Fatalf("Publish failed: %v", err)
		}
		if elapsed := time.Since(start); elapsed > 200*time.Millisecond {
			t.Fatalf("publish %d blocked for %v behind the stalled client", i, elapsed)
		}
	}

	// The healthy queue may be full right now, so keep offering the final event.
	retry := time.NewTicker(50 * time.Millisecond)
	defer retry.Stop()
	timeout := time.After(5 * time.Second)
	for {
		select {
		case <-retry.C:
			hub.Publish(testEvent{Active: 99, Name: "done"})
		case name, ok := <-received:
			if !ok {
				t.Fatal("healthy client disconnected")
			}
			if name == "done" {
				return
			}
		case <-timeout:
			t.Fatal("expected the healthy client to keep receiving")
		}
	}
}
