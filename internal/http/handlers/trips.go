package handlers

import (
	"net/http"

	"studentbus/internal/domain/models"
	"studentbus/internal/http/middleware"
	"studentbus/internal/services"
	"studentbus/internal/views"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
)

type createTripRequest struct {
	Date       string          `json:"date"`
	Time       string          `json:"time"`
	Price      decimal.Decimal `json:"price"`
	TotalSeats int             `json:"totalSeats"`
}

type tripStatusRequest struct {
	Status string `json:"status"`
}

func (h Handler) ListTrips(c *gin.Context) {
	trips, err := h.Trips.ListUpcoming(c.Request.Context())
	if err != nil {
		RespondDomainError(c, err)
		return
	}
	c.JSON(http.StatusOK, views.Trips(trips))
}

func (h Handler) GetTrip(c *gin.Context) {
	trip, err := h.Trips.GetTrip(c.Request.Context(), c.Param("id"))
	if err != nil {
		RespondDomainError(c, err)
		return
	}
	c.JSON(http.StatusOK, views.NewTrip(trip))
}

func (h Handler) CreateTrip(c *gin.Context) {
	var req createTripRequest
	if !BindJSONOrError(c, &req) {
		return
	}
	svc := h.Trips
	svc.RequestID = middleware.GetRequestID(c)

	trip, err := svc.CreateTrip(c.Request.Context(), middleware.Caller(c).UserID, services.TripInput{
		Date:       req.Date,
		Time:       req.Time,
		Price:      req.Price,
		TotalSeats: req.TotalSeats,
	})
	if err != nil {
		RespondDomainError(c, err)
		return
	}
	c.JSON(http.StatusCreated, views.NewTrip(trip))
}

func (h Handler) UpdateTripStatus(c *gin.Context) {
	var req tripStatusRequest
	if !BindJSONOrError(c, &req) {
		return
	}
	svc := h.Trips
	svc.RequestID = middleware.GetRequestID(c)

	trip, err := svc.UpdateStatus(c.Request.Context(), c.Param("id"), models.TripStatus(req.Status))
	if err != nil {
		RespondDomainError(c, err)
		return
	}
	c.JSON(http.StatusOK, views.NewTrip(trip))
}

// AdminListTrips returns every trip with the admin who created it.
func (h Handler) AdminListTrips(c *gin.Context) {
	trips, err := h.Trips.ListAll(c.Request.Context())
	if err != nil {
		RespondDomainError(c, err)
		return
	}
	out := make([]views.Trip, 0, len(trips))
	for _, t := range trips {
		v := views.NewTrip(t.Trip)
		v.Creator = views.OptUser(t.Creator)
		out = append(out, v)
	}
	c.JSON(http.StatusOK, out)
}
