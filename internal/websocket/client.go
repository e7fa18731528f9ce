package websocket

import (
	"time"

	"github.com/parthasarathygopu/orca/internal/log"

	"github.com/gorilla/websocket"
)

const (
	writeWait      = 10 * time.Second
	pongWait       = 60 * time.Second
	pingPeriod     = (pongWait * 9) / 10
	maxMessageSize = 512
)

// Client is one WebSocket connection watching a single run, or every run for AllRuns.
type Client struct {
	hub   *Hub
	conn  *websocket.Conn
	runID string
	send  chan *Message
}

// NewClient creates a client bound to runID.
func NewClient(hub *Hub, conn *websocket.Conn, runID string) *Client {
	return &Client{
		hub:   hub,
		conn:  conn,
		runID: runID,
		send:  make(chan *Message, 64),
	}
}

// ReadPump drains inbound frames so pings and close frames are processed. Clients
// never send commands.
func (c *Client) ReadPump() {
	defer func() {
		c.hub.Unregister(c)
		c.conn.Close()
	}()

	c.conn.SetReadLimit(maxMessageSize)
	_ = c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		return c.conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	for {
		if _, _, err := c.conn.ReadMessage(); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				log.GetLogger().WithField("run_id", c.runID).WithError(err).Warn("WebSocket closed unexpectedly")
			}
			return
		}
	}
}

// WritePump forwards hub messages as JSON frames and keeps the connection alive.
func (c *Client) WritePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		c.conn.Close()
	}()

	for {
		select {
		case message, ok := <-c.send:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				_ = c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := c.conn.WriteJSON(message); err != nil {
				return
			}

		case <-ticker.C:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}
