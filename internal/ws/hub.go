package ws

import (
	"encoding/json"
	"log"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"github.com/openrange/backend/internal/metrics"
)

// FeedRoom receives every completed shot.
const FeedRoom = "feed"

const (
	writeWait  = 10 * time.Second
	pongWait   = 60 * time.Second
	pingPeriod = 30 * time.Second
	sendBuffer = 256
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 4096,
	// Origins are checked by middleware.WebSocketCORSCheck before upgrade.
	CheckOrigin: func(r *http.Request) bool { return true },
}

// Client is one WebSocket connection.
type Client struct {
	hub  *Hub
	conn *websocket.Conn
	id   string
	room string
	send chan []byte
}

// Hub maintains the set of active clients
type Hub struct {
	clients    map[string]*Client
	rooms      map[string]map[string]*Client // room -> client id -> client
	register   chan *Client
	unregister chan *Client
	mu         sync.RWMutex
}

// NewHub creates a new Hub
func NewHub() *Hub {
	return &Hub{
		clients:    make(map[string]*Client),
		rooms:      make(map[string]map[string]*Client),
		register:   make(chan *Client),
		unregister: make(chan *Client),
	}
}

// Run processes registrations until the process exits.
func (h *Hub) Run() {
	for {
		select {
		case c := <-h.register:
			h.mu.Lock()
			h.clients[c.id] = c
			if _, ok := h.rooms[c.room]; !ok {
				h.rooms[c.room] = make(map[string]*Client)
			}
			h.rooms[c.room][c.id] = c
			h.mu.Unlock()
			metrics.ClientConnected()
			log.Printf("[WS] Client %s joined %s", c.id, c.room)

		case c := <-h.unregister:
			h.mu.Lock()
			if cur, ok := h.clients[c.id]; ok && cur == c {
				delete(h.clients, c.id)
				if room, ok := h.rooms[c.room]; ok {
					delete(room, c.id)
					if len(room) == 0 {
						delete(h.rooms, c.room)
					}
				}
				close(c.send)
				metrics.ClientDisconnected()
				log.Printf("[WS] Client %s left %s", c.id, c.room)
			}
			h.mu.Unlock()
		}
	}
}

// RoomSize returns the number of clients in room.
func (h *Hub) RoomSize(room string) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.rooms[room])
}

// Broadcast sends a message to every client in room.
func (h *Hub) Broadcast(room string, message interface{}) {
	data, err := json.Marshal(message)
	if err != nil {
		log.Printf("[WS] Error marshaling message: %v", err)
		return
	}

	h.mu.RLock()
	defer h.mu.RUnlock()
	for _, c := range h.rooms[room] {
		select {
		case c.send <- data:
		default:
			log.Printf("[WS] Send buffer full for client %s in %s, dropping message", c.id, room)
		}
	}
}

// Send queues a message for one client. It returns false when the client is
// gone or its buffer is full.
func (h *Hub) Send(clientID string, message interface{}) bool {
	data, err := json.Marshal(message)
	if err != nil {
		log.Printf("[WS] Error marshaling message: %v", err)
		return false
	}

	h.mu.RLock()
	defer h.mu.RUnlock()
	c, ok := h.clients[clientID]
	if !ok {
		return false
	}
	select {
	case c.send <- data:
		return true
	default:
		log.Printf("[WS] Send dropped message for client %s (buffer full)", clientID)
		return false
	}
}

// WSMessage is an inbound client message.
type WSMessage struct {
	Type string          `json:"type"`
	Data json.RawMessage `json:"data"`
}

// writePump writes messages to the WebSocket connection
func (c *Client) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		c.conn.Close()
	}()

	for {
		select {
		case message, ok := <-c.send:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := c.conn.WriteMessage(websocket.TextMessage, message); err != nil {
				log.Printf("[WS] Write error for client %s: %v", c.id, err)
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

// readPump reads messages until the connection closes and hands each one to
// handle. handle may be nil for listen-only clients.
func (c *Client) readPump(handle func(WSMessage)) {
	defer func() {
		c.hub.unregister <- c
		c.conn.Close()
	}()

	c.conn.SetReadLimit(65536)
	c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		c.conn.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})

	for {
		_, message, err := c.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				log.Printf("[WS] Unexpected close for client %s: %v", c.id, err)
			}
			return
		}
		if handle == nil {
			continue
		}
		var msg WSMessage
		if err := json.Unmarshal(message, &msg); err != nil {
			c.hub.Send(c.id, errorMessage("invalid message"))
			continue
		}
		handle(msg)
	}
}

func errorMessage(msg string) map[string]interface{} {
	return map[string]interface{}{"type": "error", "message": msg}
}
