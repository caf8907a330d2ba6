package services

import (
	"context"
	"time"

	"studentbus/internal/domain"
	"studentbus/internal/domain/models"
	"studentbus/internal/notify"
	"studentbus/internal/repositories"
	"studentbus/internal/utils"
	"studentbus/internal/views"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

type BookingService struct {
	Ledger    repositories.Ledger
	Notifier  notify.Notifier
	Logger    *zap.Logger
	Now       func() time.Time
	RequestID string
}

// CreateBooking debits the user, reserves seats and records the booking as
// one transaction. Preconditions are checked in a fixed order and the first
// failure is returned with nothing written. Not idempotent.
func (s BookingService) CreateBooking(ctx context.Context, userID, tripID string, ticketCount int) (models.BookingWithTrip, error) {
	var out models.BookingWithTrip

	err := s.Ledger.InTx(ctx, func(tx repositories.LedgerTx) error {
		trip, err := tx.LockTrip(ctx, tripID)
		if err != nil {
			return ledgerErr(err, "trip")
		}
		if !trip.Bookable() {
			return domain.StateError{Resource: "trip", Status: string(trip.Status), Msg: "trip is not open for booking"}
		}
		if ticketCount <= 0 {
			return domain.ValidationError{Field: "ticketCount", Msg: "must be a positive integer"}
		}
		if trip.AvailableSeats() < ticketCount {
			return domain.CapacityError{Requested: ticketCount, Available: trip.AvailableSeats()}
		}

		user, err := tx.LockUser(ctx, userID)
		if err != nil {
			return ledgerErr(err, "user")
		}
		total := trip.Price.Mul(decimal.NewFromInt(int64(ticketCount)))
		if user.Balance.LessThan(total) {
			return domain.FundsError{Required: total, Available: user.Balance}
		}

		if err := tx.SetUserBalance(ctx, user.ID, user.Balance.Sub(total)); err != nil {
			return err
		}
		if err := tx.SetTripBookedSeats(ctx, trip.ID, trip.BookedSeats+ticketCount); err != nil {
			return err
		}
		trip.BookedSeats += ticketCount

		id := repositories.NewID()
		booking := models.Booking{
			ID:          id,
			Reference:   repositories.BookingReference(id),
			UserID:      user.ID,
			TripID:      trip.ID,
			TicketCount: ticketCount,
			TotalAmount: total,
			Status:      models.BookingConfirmed,
			CreatedAt:   nowOr(s.Now),
		}
		if err := tx.InsertBooking(ctx, booking); err != nil {
			return err
		}

		out = models.BookingWithTrip{Booking: booking, Trip: &trip}
		return nil
	})
	if err != nil {
		return models.BookingWithTrip{}, passThrough(err)
	}

	utils.LogEvent(s.Logger, s.RequestID, "booking", "create", "booking confirmed",
		zap.String("booking_id", out.ID), zap.String("trip_id", tripID), zap.Int("tickets", ticketCount))
	if s.Notifier != nil {
		s.Notifier.NotifyUser(userID, notify.Event{Type: notify.EventBookingCreated, Data: views.BookingWithTrip(out)})
	}
	return out, nil
}

// ListForUser returns the caller's bookings newest first, each with its trip.
func (s BookingService) ListForUser(ctx context.Context, userID string) ([]models.BookingWithTrip, error) {
	bookings, err := s.Ledger.ListBookingsByUser(ctx, userID)
	if err != nil {
		return nil, ledgerErr(err, "bookings")
	}
	trips, err := s.Ledger.ListTrips(ctx)
	if err != nil {
		return nil, ledgerErr(err, "trips")
	}
	byID := tripsByID(trips)

	newestBookingsFirst(bookings)
	out := make([]models.BookingWithTrip, 0, len(bookings))
	for _, b := range bookings {
		row := models.BookingWithTrip{Booking: b}
		if t, ok := byID[b.TripID]; ok {
			row.Trip = &t
		}
		out = append(out, row)
	}
	return out, nil
}

// GetForCaller loads one booking. Students only see their own; anything
// else reads as not found.
func (s BookingService) GetForCaller(ctx context.Context, rc domain.RequestContext, bookingID string) (models.BookingDetail, error) {
	b, err := s.Ledger.GetBooking(ctx, bookingID)
	if err != nil {
		return models.BookingDetail{}, ledgerErr(err, "booking")
	}
	if b.UserID != rc.UserID && !rc.IsAdmin() {
		return models.BookingDetail{}, domain.NotFoundError{Resource: "booking"}
	}

	out := models.BookingDetail{Booking: b}
	if t, err := s.Ledger.GetTrip(ctx, b.TripID); err == nil {
		out.Trip = &t
	}
	if u, err := s.Ledger.GetUser(ctx, b.UserID); err == nil {
		p := u.ToPublic()
		out.User = &p
	}
	return out, nil
}
