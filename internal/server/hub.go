package server

import (
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"github.com/sirupsen/logrus"

	"github.com/ayusman/pinchpoint/internal/logging"
)

const (
	writeTimeout = time.Second
	// sendBuffer is the number of events queued per client.
	sendBuffer = 8
)

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool {
		return true // Allow local connections
	},
}

// EventHub broadcasts published events to WebSocket clients. A client that connects
// receives the most recent event first. Each client has its own writer, so a slow
// client only loses events and never stalls Publish.
type EventHub struct {
	log     logrus.FieldLogger
	clients map[*websocket.Conn]*client
	last    []byte
	mu      sync.RWMutex
}

type client struct {
	conn *websocket.Conn
	send chan []byte
}

// NewEventHub creates a hub with no clients. A nil logger discards output.
func NewEventHub(log logrus.FieldLogger) *EventHub {
	if log == nil {
		log = logging.Discard()
	}
	return &EventHub{
		log:     log.WithField("component", "hub"),
		clients: make(map[*websocket.Conn]*client),
	}
}

// ServeHTTP handles WebSocket upgrade requests.
func (h *EventHub) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.log.WithError(err).Warn("websocket upgrade failed")
		return
	}
	defer conn.Close()

	c := &client{conn: conn, send: make(chan []byte, sendBuffer)}
	h.mu.Lock()
	h.clients[conn] = c
	if h.last != nil {
		c.send <- h.last
	}
	h.mu.Unlock()

	go h.write(c)
	defer h.remove(conn)

	// Keep connection alive by reading messages
	for {
		if _, _, err := conn.ReadMessage(); err != nil {
			break
		}
	}
}

// Publish encodes v and queues it for every connected client. A client whose queue
// is full skips this event.
func (h *EventHub) Publish(v any) error {
	msg, err := json.Marshal(v)
	if err != nil {
		return err
	}

	h.mu.Lock()
	defer h.mu.Unlock()

	h.last = msg
	for _, c := range h.clients {
		select {
		case c.send <- msg:
		default:
			h.log.Debug("websocket client behind, skipping event")
		}
	}
	return nil
}

// write drains c.send until the hub drops the client. A failed write closes the
// connection, which ends the read loop in ServeHTTP.
func (h *EventHub) write(c *client) {
	for msg := range c.send {
		c.conn.SetWriteDeadline(time.Now().Add(writeTimeout))
		if err := c.conn.WriteMessage(websocket.TextMessage, msg); err != nil {
			h.log.WithError(err).Debug("dropping websocket client")
			c.conn.Close()
			return
		}
	}
}

// remove unregisters conn and stops its writer. It is safe to call twice.
func (h *EventHub) remove(conn *websocket.Conn) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if c, ok := h.clients[conn]; ok {
		delete(h.clients, conn)
		close(c.send)
	}
}

// Clients returns the number of connected clients.
func (h *EventHub) Clients() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}

// CloseAll disconnects every client.
func (h *EventHub) CloseAll() {
	h.mu.Lock()
	defer h.mu.Unlock()
	for conn, c := range h.clients {
		delete(h.clients, conn)
		close(c.send)
		conn.WriteControl(websocket.CloseMessage,
			websocket.FormatCloseMessage(websocket.CloseGoingAway, "shutting down"),
			time.Now().Add(writeTimeout))
		conn.Close()
	}
}
