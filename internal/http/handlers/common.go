package handlers

import (
	"net/http"

	"studentbus/internal/notify"
	"studentbus/internal/services"

	"github.com/gin-gonic/gin"
)

// Handler carries the services every route needs. Service values are copied
// per request so the request id can be attached without sharing state.
type Handler struct {
	Auth      services.AuthService
	Trips     services.TripService
	Bookings  services.BookingService
	Payments  services.PaymentService
	Dashboard services.DashboardService
	Docs      services.DocsService
	Hub       *notify.Hub

	UploadDir      string
	UploadMaxBytes int64
}

// BindJSONOrError ensures body is present and parsable.
func BindJSONOrError[T any](c *gin.Context, dst *T) bool {
	if c.Request.Body == nil || c.Request.ContentLength == 0 {
		respondError(c, http.StatusBadRequest, "validation_error", "request body is empty", nil)
		return false
	}
	if err := c.ShouldBindJSON(dst); err != nil {
		respondError(c, http.StatusBadRequest, "validation_error", "invalid payload", err.Error())
		return false
	}
	return true
}
