package handlers

import (
	"net/http"

	"studentbus/internal/http/middleware"

	"github.com/gin-gonic/gin"
)

// Notifications upgrades to the realtime event stream for the caller.
func (h Handler) Notifications(c *gin.Context) {
	if h.Hub == nil {
		respondError(c, http.StatusServiceUnavailable, "unavailable", "notifications are disabled", nil)
		return
	}
	rc := middleware.Caller(c)
	h.Hub.Serve(c.Writer, c.Request, rc.UserID, string(rc.Role))
}
