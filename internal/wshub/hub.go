package wshub

import (
	"context"
	"encoding/json"
	"log"
	"sync"

	"github.com/coder/websocket"

	"chicfocus/internal/events"
)

// Command is the JSON structure received from clients.
type Command struct {
	Type string `json:"type"`
	User string `json:"user,omitempty"`
	Task string `json:"task,omitempty"`
	Tier int    `json:"tier,omitempty"`
}

// Client represents a single WebSocket connection in the hub. User is set
// once the connection registers as one of the participants.
type Client struct {
	ID   string
	User string
	Conn *websocket.Conn
	Send chan []byte
}

// WritePump reads from the Send channel and writes to the WebSocket connection.
func (c *Client) WritePump(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			return
		case msg, ok := <-c.Send:
			if !ok {
				return
			}
			if err := c.Conn.Write(ctx, websocket.MessageText, msg); err != nil {
				return
			}
		}
	}
}

// Hub manages the set of WebSocket connections and fans engine events out to
// all of them.
type Hub struct {
	mu      sync.RWMutex
	clients map[string]*Client
}

// NewHub creates a new Hub.
func NewHub() *Hub {
	return &Hub{
		clients: make(map[string]*Client),
	}
}

// Register adds a client to the hub.
func (h *Hub) Register(c *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.clients[c.ID] = c
}

// Unregister removes a client and closes its Send channel.
func (h *Hub) Unregister(id string) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if c, ok := h.clients[id]; ok {
		close(c.Send)
		delete(h.clients, id)
	}
}

// Broadcast sends an event to every connected client. Non-blocking: drops if
// a client's channel is full.
func (h *Hub) Broadcast(ev events.Event) {
	data, err := json.Marshal(ev)
	if err != nil {
		log.Printf("[WSHub] Marshal error: %v\n", err)
		return
	}

	h.mu.RLock()
	defer h.mu.RUnlock()

	for _, c := range h.clients {
		select {
		case c.Send <- data:
		default:
			// Drop message if channel full
		}
	}
}

// Forward drains a broadcaster subscription into the hub. Runs until the
// channel closes.
func (h *Hub) Forward(ch chan events.Event) {
	for ev := range ch {
		h.Broadcast(ev)
	}
}
