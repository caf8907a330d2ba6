// Package views holds the JSON shapes shared by the REST handlers and the
// realtime events. Money always leaves the process as a two-place decimal
// string.
package views

import (
	"time"

	"studentbus/internal/domain/models"
	"studentbus/internal/utils"
)

type User struct {
	ID         string    `json:"id"`
	Name       string    `json:"name"`
	Email      string    `json:"email"`
	Phone      string    `json:"phone"`
	StudentID  string    `json:"studentId,omitempty"`
	University string    `json:"university,omitempty"`
	Role       string    `json:"role"`
	Balance    string    `json:"balance"`
	IsVerified bool      `json:"isVerified"`
	CreatedAt  time.Time `json:"createdAt"`
}

type Trip struct {
	ID             string    `json:"id"`
	Date           string    `json:"date"`
	Time           string    `json:"time"`
	Departure      time.Time `json:"departure"`
	From           string    `json:"from"`
	To             string    `json:"to"`
	Price          string    `json:"price"`
	TotalSeats     int       `json:"totalSeats"`
	BookedSeats    int       `json:"bookedSeats"`
	AvailableSeats int       `json:"availableSeats"`
	Status         string    `json:"status"`
	CreatedBy      string    `json:"createdBy"`
	CreatedAt      time.Time `json:"createdAt"`
	Creator        *User     `json:"creator,omitempty"`
}

type Booking struct {
	ID          string    `json:"id"`
	BookingID   string    `json:"bookingId"`
	UserID      string    `json:"userId"`
	TripID      string    `json:"tripId"`
	TicketCount int       `json:"ticketCount"`
	TotalAmount string    `json:"totalAmount"`
	Status      string    `json:"status"`
	CreatedAt   time.Time `json:"createdAt"`
	Trip        *Trip     `json:"trip,omitempty"`
	User        *User     `json:"user,omitempty"`
}

type Payment struct {
	ID            string     `json:"id"`
	UserID        string     `json:"userId"`
	Amount        string     `json:"amount"`
	Type          string     `json:"type"`
	Method        string     `json:"method"`
	TransactionID string     `json:"transactionId"`
	SenderPhone   string     `json:"senderPhone"`
	Screenshot    string     `json:"screenshot"`
	Status        string     `json:"status"`
	AdminNote     string     `json:"adminNote"`
	ReviewedBy    *string    `json:"reviewedBy"`
	ReviewedAt    *time.Time `json:"reviewedAt"`
	CreatedAt     time.Time  `json:"createdAt"`
	User          *User      `json:"user,omitempty"`
	Reviewer      *User      `json:"reviewer,omitempty"`
}

func NewUser(u models.PublicUser) User {
	return User{
		ID:         u.ID,
		Name:       u.Name,
		Email:      u.Email,
		Phone:      u.Phone,
		StudentID:  u.StudentID,
		University: u.University,
		Role:       u.Role,
		Balance:    utils.FormatMoney(u.Balance),
		IsVerified: u.IsVerified,
		CreatedAt:  u.CreatedAt,
	}
}

func OptUser(u *models.PublicUser) *User {
	if u == nil {
		return nil
	}
	v := NewUser(*u)
	return &v
}

func NewTrip(t models.Trip) Trip {
	return Trip{
		ID:             t.ID,
		Date:           utils.FormatDate(t.Date),
		Time:           t.Time,
		Departure:      t.Departure(),
		From:           t.From,
		To:             t.To,
		Price:          utils.FormatMoney(t.Price),
		TotalSeats:     t.TotalSeats,
		BookedSeats:    t.BookedSeats,
		AvailableSeats: t.AvailableSeats(),
		Status:         string(t.Status),
		CreatedBy:      t.CreatedBy,
		CreatedAt:      t.CreatedAt,
	}
}

func OptTrip(t *models.Trip) *Trip {
	if t == nil {
		return nil
	}
	v := NewTrip(*t)
	return &v
}

func Trips(list []models.Trip) []Trip {
	out := make([]Trip, 0, len(list))
	for _, t := range list {
		out = append(out, NewTrip(t))
	}
	return out
}

func NewBooking(b models.Booking) Booking {
	return Booking{
		ID:          b.ID,
		BookingID:   b.Reference,
		UserID:      b.UserID,
		TripID:      b.TripID,
		TicketCount: b.TicketCount,
		TotalAmount: utils.FormatMoney(b.TotalAmount),
		Status:      string(b.Status),
		CreatedAt:   b.CreatedAt,
	}
}

// BookingWithTrip is the shape returned when a booking is created or listed.
func BookingWithTrip(b models.BookingWithTrip) Booking {
	v := NewBooking(b.Booking)
	v.Trip = OptTrip(b.Trip)
	return v
}

func BookingDetail(b models.BookingDetail) Booking {
	v := NewBooking(b.Booking)
	v.Trip = OptTrip(b.Trip)
	v.User = OptUser(b.User)
	return v
}

func NewPayment(p models.Payment) Payment {
	v := Payment{
		ID:            p.ID,
		UserID:        p.UserID,
		Amount:        utils.FormatMoney(p.Amount),
		Type:          p.Type,
		Method:        p.Method,
		TransactionID: p.TransactionRef,
		SenderPhone:   p.SenderPhone,
		Screenshot:    p.Screenshot,
		Status:        string(p.Status),
		AdminNote:     p.AdminNote,
		ReviewedAt:    p.ReviewedAt,
		CreatedAt:     p.CreatedAt,
	}
	if p.ReviewedBy != "" {
		reviewer := p.ReviewedBy
		v.ReviewedBy = &reviewer
	}
	return v
}

func PaymentDetail(d models.PaymentDetail) Payment {
	v := NewPayment(d.Payment)
	v.User = OptUser(d.User)
	v.Reviewer = OptUser(d.Reviewer)
	return v
}
