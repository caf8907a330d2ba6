package models

import (
	"time"

	"github.com/shopspring/decimal"
)

type TripStatus string

const (
	TripActive    TripStatus = "active"
	TripCancelled TripStatus = "cancelled"
	TripCompleted TripStatus = "completed"
)

func (s TripStatus) Valid() bool {
	switch s {
	case TripActive, TripCancelled, TripCompleted:
		return true
	default:
		return false
	}
}

// Trip is one scheduled departure. BookedSeats never exceeds TotalSeats.
type Trip struct {
	ID          string          `json:"id"`
	Date        time.Time       `json:"date"`
	Time        string          `json:"time"`
	From        string          `json:"from"`
	To          string          `json:"to"`
	Price       decimal.Decimal `json:"price"`
	TotalSeats  int             `json:"totalSeats"`
	BookedSeats int             `json:"bookedSeats"`
	Status      TripStatus      `json:"status"`
	CreatedBy   string          `json:"createdBy"`
	CreatedAt   time.Time       `json:"createdAt"`
}

func (t Trip) AvailableSeats() int {
	return t.TotalSeats - t.BookedSeats
}

func (t Trip) Bookable() bool {
	return t.Status == TripActive
}

// Departure combines the calendar date and the HH:MM clock of the trip.
func (t Trip) Departure() time.Time {
	clock, err := time.Parse("15:04", t.Time)
	if err != nil {
		return t.Date
	}
	y, m, d := t.Date.Date()
	return time.Date(y, m, d, clock.Hour(), clock.Minute(), 0, 0, t.Date.Location())
}

// TripWithCreator is the admin listing row.
type TripWithCreator struct {
	Trip
	Creator *PublicUser `json:"creator,omitempty"`
}
