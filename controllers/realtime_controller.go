package controllers

import (
	"github.com/gin-gonic/gin"

	"github.com/tabletap/tabletap-api/services"
)

// Realtime returns the handler for GET /api/v1/ws. Staff dashboards keep this
// socket open to receive new_order, status_updated and order_completed events
// as they happen. The stream is push-only and has no replay: a dashboard that
// connects late starts from the current moment.
func Realtime(hub *services.Hub) gin.HandlerFunc {
	return func(c *gin.Context) {
		hub.ServeWS(c.Writer, c.Request)
	}
}
