package repositories

import (
	"context"
	"errors"
	"strings"

	"studentbus/internal/domain/models"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

var (
	ErrNotFound           = errors.New("record not found")
	ErrDuplicateID        = errors.New("duplicate id")
	ErrDuplicateEmail     = errors.New("email already registered")
	ErrDuplicateStudentID = errors.New("student id already registered")
)

// Ledger holds the authoritative Users, Trips, Bookings and Payments.
// Reads outside InTx see committed state only.
type Ledger interface {
	// InTx runs fn with exclusive access to every record it locks. A non-nil
	// error from fn discards all of fn's writes and is returned unchanged.
	InTx(ctx context.Context, fn func(tx LedgerTx) error) error

	CreateUser(ctx context.Context, u models.User) error
	GetUser(ctx context.Context, id string) (models.User, error)
	GetUserByEmail(ctx context.Context, email string) (models.User, error)
	ListUsers(ctx context.Context) ([]models.User, error)

	CreateTrip(ctx context.Context, t models.Trip) error
	GetTrip(ctx context.Context, id string) (models.Trip, error)
	ListTrips(ctx context.Context) ([]models.Trip, error)
	UpdateTripStatus(ctx context.Context, id string, status models.TripStatus) error

	GetBooking(ctx context.Context, id string) (models.Booking, error)
	ListBookings(ctx context.Context) ([]models.Booking, error)
	ListBookingsByUser(ctx context.Context, userID string) ([]models.Booking, error)

	CreatePayment(ctx context.Context, p models.Payment) error
	GetPayment(ctx context.Context, id string) (models.Payment, error)
	ListPayments(ctx context.Context) ([]models.Payment, error)
	ListPaymentsByUser(ctx context.Context, userID string) ([]models.Payment, error)
	ListPaymentsByStatus(ctx context.Context, status models.PaymentStatus) ([]models.Payment, error)

	Close() error
}

// LedgerTx is the read-modify-write view handed to Ledger.InTx callbacks.
type LedgerTx interface {
	LockTrip(ctx context.Context, id string) (models.Trip, error)
	LockUser(ctx context.Context, id string) (models.User, error)
	LockPayment(ctx context.Context, id string) (models.Payment, error)

	SetUserBalance(ctx context.Context, userID string, balance decimal.Decimal) error
	SetTripBookedSeats(ctx context.Context, tripID string, booked int) error
	InsertBooking(ctx context.Context, b models.Booking) error
	SaveReview(ctx context.Context, p models.Payment) error
}

func NewID() string {
	return uuid.NewString()
}

// BookingReference derives the short human code printed on tickets.
func BookingReference(id string) string {
	code := strings.ToUpper(strings.ReplaceAll(id, "-", ""))
	if len(code) > 10 {
		code = code[:10]
	}
	return "SB" + code
}
