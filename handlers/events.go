package handlers

import (
	"log"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"

	"github.com/Hexoro/Hexward-sub000/services"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		// The dashboard runs on a different origin in dev; auth is
		// enforced by the JWT middleware, not the Origin header.
		return true
	},
}

// EventStream handles GET /api/events/ws - the change feed WebSocket.
// Clients subscribe to tables after connecting and receive change events
// until they unsubscribe or disconnect.
func EventStream(c *gin.Context) {
	if eventHub == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "Event stream not available"})
		return
	}

	user := CurrentUser(c)

	conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		log.Printf("❌ WebSocket upgrade failed for %s: %v", c.ClientIP(), err)
		return
	}

	client := services.NewEventClient(eventHub, conn, user.ID, c.ClientIP())
	eventHub.Register(client)

	go client.WritePump()
	go client.ReadPump()
}

// GetEventHubStats handles GET /api/events/stats (admin only)
func GetEventHubStats(c *gin.Context) {
	if eventHub == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "Event stream not available"})
		return
	}
	c.JSON(http.StatusOK, eventHub.Stats())
}
