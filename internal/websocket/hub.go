package websocket

import (
	"sync"

	"github.com/parthasarathygopu/orca/internal/log"
)

// AllRuns subscribes a client to every execution request.
const AllRuns = "*"

// Hub maintains active WebSocket connections and broadcasts messages
type Hub struct {
	// Registered clients by runID
	clients map[string]map[*Client]bool

	// Outbound messages from the engine
	broadcast chan *Message

	// Register requests from clients
	register chan *Client

	// Unregister requests from clients
	unregister chan *Client

	mu sync.RWMutex
}

// Message represents an execution event message
type Message struct {
	RunID   string      `json:"runId"`
	Type    string      `json:"type"` // run_started, run_completed, item_log_open, item_log_close
	Payload interface{} `json:"payload"`
}

// NewHub creates a new WebSocket hub
func NewHub() *Hub {
	return &Hub{
		clients:    make(map[string]map[*Client]bool),
		broadcast:  make(chan *Message, 256),
		register:   make(chan *Client),
		unregister: make(chan *Client),
	}
}

// Run starts the hub's main loop
func (h *Hub) Run() {
	for {
		select {
		case client := <-h.register:
			h.mu.Lock()
			if h.clients[client.runID] == nil {
				h.clients[client.runID] = make(map[*Client]bool)
			}
			h.clients[client.runID][client] = true
			h.mu.Unlock()

		case client := <-h.unregister:
			h.mu.Lock()
			h.remove(client)
			h.mu.Unlock()

		case message := <-h.broadcast:
			h.mu.Lock()
			for _, key := range []string{message.RunID, AllRuns} {
				for client := range h.clients[key] {
					select {
					case client.send <- message:
					default:
						// slow consumer
						h.remove(client)
					}
				}
			}
			h.mu.Unlock()
		}
	}
}

// remove drops client and closes its send channel. Caller holds h.mu.
func (h *Hub) remove(client *Client) {
	clients, ok := h.clients[client.runID]
	if !ok {
		return
	}
	if _, ok := clients[client]; !ok {
		return
	}
	delete(clients, client)
	close(client.send)
	if len(clients) == 0 {
		delete(h.clients, client.runID)
	}
}

// Broadcast queues a message for all clients watching runID. It never blocks the
// caller: when the queue is full the message is dropped.
func (h *Hub) Broadcast(runID string, msgType string, payload interface{}) {
	select {
	case h.broadcast <- &Message{RunID: runID, Type: msgType, Payload: payload}:
	default:
		log.GetLogger().WithField("run_id", runID).Warn("WebSocket broadcast queue full, dropping event")
	}
}

// Register registers a new client connection
func (h *Hub) Register(client *Client) {
	h.register <- client
}

// Unregister unregisters a client connection
func (h *Hub) Unregister(client *Client) {
	h.unregister <- client
}

// ClientCount returns the number of clients watching runID.
func (h *Hub) ClientCount(runID string) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients[runID])
}
