package handler

import (
	"net/http"

	"github.com/parthasarathygopu/orca/internal/websocket"

	"github.com/gin-gonic/gin"
	gorillaws "github.com/gorilla/websocket"
)

var upgrader = gorillaws.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		// TODO: restrict origins once the UI host is configurable
		return true
	},
}

// WebSocketHandler handles WebSocket connections
type WebSocketHandler struct {
	hub *websocket.Hub
}

// NewWebSocketHandler creates a new WebSocket handler
func NewWebSocketHandler(hub *websocket.Hub) *WebSocketHandler {
	return &WebSocketHandler{hub: hub}
}

// RegisterRoutes registers WebSocket routes
func (h *WebSocketHandler) RegisterRoutes(r *gin.Engine) {
	api := r.Group("/api/v1")
	{
		api.GET("/history/:id/stream", h.StreamExecution)
		api.GET("/stream", h.StreamAll)
	}
}

// StreamExecution streams the events of one execution request.
func (h *WebSocketHandler) StreamExecution(c *gin.Context) {
	h.stream(c, c.Param("id"))
}

// StreamAll streams the events of every execution request.
func (h *WebSocketHandler) StreamAll(c *gin.Context) {
	h.stream(c, websocket.AllRuns)
}

func (h *WebSocketHandler) stream(c *gin.Context, runID string) {
	if runID == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "execution request id is required"})
		return
	}

	conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		// Upgrade has already written the response
		return
	}

	client := websocket.NewClient(h.hub, conn, runID)
	h.hub.Register(client)

	go client.WritePump()
	go client.ReadPump()
}
