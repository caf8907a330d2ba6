package handlers

import (
	"encoding/json"
	"math"
	"net/http"

	"studentbus/internal/http/middleware"
	"studentbus/internal/views"

	"github.com/gin-gonic/gin"
)

// TicketCount stays loosely typed so a malformed count is reported by
// CreateBooking in its usual check order rather than by the JSON binder.
type createBookingRequest struct {
	TripID      string `json:"tripId"`
	TicketCount any    `json:"ticketCount"`
}

func (h Handler) CreateBooking(c *gin.Context) {
	var req createBookingRequest
	if !BindJSONOrError(c, &req) {
		return
	}
	svc := h.Bookings
	svc.RequestID = middleware.GetRequestID(c)

	b, err := svc.CreateBooking(c.Request.Context(), middleware.Caller(c).UserID, req.TripID, ticketCount(req.TicketCount))
	if err != nil {
		RespondDomainError(c, err)
		return
	}
	c.JSON(http.StatusCreated, views.BookingWithTrip(b))
}

func (h Handler) ListMyBookings(c *gin.Context) {
	list, err := h.Bookings.ListForUser(c.Request.Context(), middleware.Caller(c).UserID)
	if err != nil {
		RespondDomainError(c, err)
		return
	}
	out := make([]views.Booking, 0, len(list))
	for _, b := range list {
		out = append(out, views.BookingWithTrip(b))
	}
	c.JSON(http.StatusOK, out)
}

// GetBookingTicket returns the booking e-ticket (inline PDF).
func (h Handler) GetBookingTicket(c *gin.Context) {
	svc := h.Docs
	svc.RequestID = middleware.GetRequestID(c)

	pdfBytes, filename, err := svc.GenerateETicket(c.Request.Context(), middleware.Caller(c), c.Param("id"))
	if err != nil {
		RespondDomainError(c, err)
		return
	}

	c.Header("Content-Disposition", `inline; filename="`+filename+`"`)
	c.Data(http.StatusOK, "application/pdf", pdfBytes)
}

// ticketCount returns the whole number in v, or 0 (always rejected) when v
// is missing, fractional or not a number.
func ticketCount(v any) int {
	var f float64
	switch n := v.(type) {
	case float64:
		f = n
	case json.Number:
		parsed, err := n.Float64()
		if err != nil {
			return 0
		}
		f = parsed
	default:
		return 0
	}
	if f != math.Trunc(f) || f > math.MaxInt32 || f < math.MinInt32 {
		return 0
	}
	return int(f)
}
