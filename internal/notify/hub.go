// internal/notify/hub.go
package notify

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"

	"github.com/tamzrod/camera-adapter/internal/face"
)

// Event types sent to websocket clients.
const (
	EventFocus = "focus"
	EventZoom  = "zoom"
	EventFaces = "faces"
)

const (
	defaultSendBuffer = 32
	writeWait         = 5 * time.Second
)

// Event is the JSON message broadcast to clients.
type Event struct {
	Type   string      `json:"type"`
	Time   time.Time   `json:"time"`
	Locked *bool       `json:"locked,omitempty"`
	Index  *int        `json:"index,omitempty"`
	Final  *bool       `json:"final,omitempty"`
	Faces  []face.Face `json:"faces,omitempty"`
}

type client struct {
	id   uuid.UUID
	conn *websocket.Conn
	send chan []byte
}

// Hub broadcasts notifications to websocket clients. A client that cannot
// keep up loses messages rather than stalling the controllers.
type Hub struct {
	log      *slog.Logger
	upgrader websocket.Upgrader
	now      func() time.Time

	mu      sync.Mutex
	clients map[uuid.UUID]*client
	dropped uint64
	closed  bool
}

var _ Subscriber = (*Hub)(nil)

// NewHub returns an empty hub.
func NewHub(logger *slog.Logger) *Hub {
	if logger == nil {
		logger = slog.Default()
	}
	return &Hub{
		log: logger,
		upgrader: websocket.Upgrader{
			CheckOrigin: func(r *http.Request) bool { return true },
		},
		now:     time.Now,
		clients: make(map[uuid.UUID]*client),
	}
}

// ServeHTTP upgrades the request and streams events until the client
// goes away.
func (h *Hub) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.log.Warn("websocket upgrade failed", "err", err)
		return
	}

	c := &client{id: uuid.New(), conn: conn, send: make(chan []byte, defaultSendBuffer)}
	if !h.add(c) {
		_ = conn.Close()
		return
	}
	h.log.Info("event client connected", "client", c.id.String(), "remote", r.RemoteAddr)

	go h.writeLoop(c)

	// inbound messages are ignored; reading surfaces the close
	for {
		if _, _, err := conn.ReadMessage(); err != nil {
			break
		}
	}

	h.remove(c.id)
	h.log.Info("event client disconnected", "client", c.id.String())
}

func (h *Hub) writeLoop(c *client) {
	defer c.conn.Close()
	for msg := range c.send {
		_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
		if err := c.conn.WriteMessage(websocket.TextMessage, msg); err != nil {
			h.log.Debug("event write failed", "client", c.id.String(), "err", err)
			return
		}
	}
	_ = c.conn.WriteControl(websocket.CloseMessage,
		websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""),
		time.Now().Add(writeWait))
}

func (h *Hub) add(c *client) bool {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.closed {
		return false
	}
	h.clients[c.id] = c
	return true
}

func (h *Hub) remove(id uuid.UUID) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if c, ok := h.clients[id]; ok {
		delete(h.clients, id)
		close(c.send)
	}
}

// Clients returns the number of connected clients.
func (h *Hub) Clients() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.clients)
}

// Dropped returns the number of messages not queued to a slow client.
func (h *Hub) Dropped() uint64 {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.dropped
}

// Close disconnects every client.
func (h *Hub) Close() {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.closed = true
	for id, c := range h.clients {
		delete(h.clients, id)
		close(c.send)
	}
}

func (h *Hub) broadcast(ev Event) {
	ev.Time = h.now()
	msg, err := json.Marshal(ev)
	if err != nil {
		h.log.Error("event encode failed", "type", ev.Type, "err", err)
		return
	}

	h.mu.Lock()
	defer h.mu.Unlock()
	for _, c := range h.clients {
		select {
		case c.send <- msg:
		default:
			h.dropped++
		}
	}
}

func (h *Hub) OnFocusResult(locked bool) {
	h.broadcast(Event{Type: EventFocus, Locked: &locked})
}

func (h *Hub) OnZoomChanged(index int, final bool) {
	h.broadcast(Event{Type: EventZoom, Index: &index, Final: &final})
}

// OnFaces sends one message per frame; an empty frame carries no faces key.
func (h *Hub) OnFaces(faces []face.Face) {
	h.broadcast(Event{Type: EventFaces, Faces: faces})
}
