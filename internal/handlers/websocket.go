package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/gorilla/websocket"

	"github.com/collabroom/collabroom/internal/middleware"
	ws "github.com/collabroom/collabroom/internal/websocket"
)

// WebSocketHandler upgrades authenticated requests to realtime connections.
type WebSocketHandler struct {
	hub      *ws.Hub
	realtime *RealtimeHandler
	upgrader websocket.Upgrader
}

func NewWebSocketHandler(hub *ws.Hub, realtime *RealtimeHandler) *WebSocketHandler {
	return &WebSocketHandler{
		hub:      hub,
		realtime: realtime,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin: func(r *http.Request) bool {
				// TODO: restrict origin in prod
				return true
			},
		},
	}
}

func (h *WebSocketHandler) HandleWebSocket(c *gin.Context) {
	userID, exists := c.Get(middleware.UserIDKey)
	if !exists {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}

	conn, err := h.upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		return
	}

	client := ws.NewClient(h.hub, conn, userID.(uuid.UUID))

	h.hub.Register(client)

	go client.WritePump()
	go client.ReadPump(h.realtime)
}
