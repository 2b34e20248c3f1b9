package audit

import (
	"encoding/json"
	"log/slog"
	"sync"
	"time"

	"github.com/erazemk/armory/internal/model"
	"github.com/gorilla/websocket"
)

const (
	writeWait  = 10 * time.Second
	pongWait   = 60 * time.Second
	pingPeriod = pongWait * 9 / 10
	sendBuffer = 64
)

type client struct {
	conn   *websocket.Conn
	userID string
	send   chan []byte
}

// Hub fans committed audit entries out to connected websocket clients.
type Hub struct {
	mu      sync.RWMutex
	clients map[*client]struct{}
}

// NewHub creates an empty hub.
func NewHub() *Hub {
	return &Hub{clients: make(map[*client]struct{})}
}

// Len returns the number of connected clients.
func (h *Hub) Len() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}

func (h *Hub) register(c *client) {
	h.mu.Lock()
	h.clients[c] = struct{}{}
	h.mu.Unlock()
	slog.Info("audit stream client connected", "user", c.userID)
}

func (h *Hub) unregister(c *client) {
	h.mu.Lock()
	if _, ok := h.clients[c]; ok {
		delete(h.clients, c)
		close(c.send)
	}
	h.mu.Unlock()
	slog.Info("audit stream client disconnected", "user", c.userID)
}

// Broadcast sends an entry to every client. A client whose buffer is full
// is disconnected rather than allowed to stall the others.
func (h *Hub) Broadcast(e model.AuditEntry) {
	msg, err := json.Marshal(e)
	if err != nil {
		slog.Error("encoding audit entry for stream", "error", err)
		return
	}

	h.mu.Lock()
	defer h.mu.Unlock()
	for c := range h.clients {
		select {
		case c.send <- msg:
		default:
			delete(h.clients, c)
			close(c.send)
			slog.Warn("dropping slow audit stream client", "user", c.userID)
		}
	}
}

// Serve runs a connection until the peer goes away. It blocks.
func (h *Hub) Serve(conn *websocket.Conn, userID string) {
	c := &client{conn: conn, userID: userID, send: make(chan []byte, sendBuffer)}
	h.register(c)

	go c.writeLoop()

	defer func() {
		h.unregister(c)
		conn.Close()
	}()

	conn.SetReadLimit(512)
	conn.SetReadDeadline(time.Now().Add(pongWait))
	conn.SetPongHandler(func(string) error {
		return conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	for {
		if _, _, err := conn.ReadMessage(); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				slog.Warn("audit stream read", "user", userID, "error", err)
			}
			return
		}
	}
}

func (c *client) writeLoop() {
	ticker := time.NewTicker(pingPeriod)
	defer ticker.Stop()

	for {
		select {
		case msg, ok := <-c.send:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := c.conn.WriteMessage(websocket.TextMessage, msg); err != nil {
				return
			}
		case <-ticker.C:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}
