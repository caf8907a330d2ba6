package models

import (
	"time"

	"github.com/shopspring/decimal"
)

type BookingStatus string

const (
	BookingConfirmed BookingStatus = "confirmed"
)

// Booking is immutable once written; TotalAmount is the price snapshot taken at booking time.
type Booking struct {
	ID          string          `json:"id"`
	Reference   string          `json:"bookingId"`
	UserID      string          `json:"userId"`
	TripID      string          `json:"tripId"`
	TicketCount int             `json:"ticketCount"`
	TotalAmount decimal.Decimal `json:"totalAmount"`
	Status      BookingStatus   `json:"status"`
	CreatedAt   time.Time       `json:"createdAt"`
}

type BookingWithTrip struct {
	Booking
	Trip *Trip `json:"trip,omitempty"`
}

// BookingDetail is used by admin views that need the booker as well.
type BookingDetail struct {
	Booking
	Trip *Trip       `json:"trip,omitempty"`
	User *PublicUser `json:"user,omitempty"`
}
