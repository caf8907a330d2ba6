package services

import (
	"context"
	"sort"
	"strings"
	"time"

	"studentbus/internal/domain"
	"studentbus/internal/domain/models"
	"studentbus/internal/repositories"
	"studentbus/internal/utils"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// TripDefaults fill fields an admin does not send when scheduling a trip.
type TripDefaults struct {
	From  string
	To    string
	Seats int
}

type TripService struct {
	Ledger    repositories.Ledger
	Defaults  TripDefaults
	Logger    *zap.Logger
	Now       func() time.Time
	RequestID string
}

type TripInput struct {
	Date       string
	Time       string
	Price      decimal.Decimal
	TotalSeats int
}

func (s TripService) CreateTrip(ctx context.Context, createdBy string, in TripInput) (models.Trip, error) {
	date, err := utils.ParseDate(in.Date)
	if err != nil {
		return models.Trip{}, domain.ValidationError{Field: "date", Msg: "expected YYYY-MM-DD", Err: err}
	}
	clock, err := utils.ParseClock(in.Time)
	if err != nil {
		return models.Trip{}, domain.ValidationError{Field: "time", Msg: "expected HH:MM", Err: err}
	}
	if !in.Price.IsPositive() || !in.Price.Equal(in.Price.Truncate(2)) {
		return models.Trip{}, domain.ValidationError{Field: "price", Msg: "must be a positive amount with at most two decimals"}
	}
	seats := in.TotalSeats
	if seats == 0 {
		seats = s.Defaults.Seats
	}
	if seats <= 0 {
		return models.Trip{}, domain.ValidationError{Field: "totalSeats", Msg: "must be positive"}
	}

	t := models.Trip{
		ID:         repositories.NewID(),
		Date:       date,
		Time:       clock,
		From:       strings.TrimSpace(s.Defaults.From),
		To:         strings.TrimSpace(s.Defaults.To),
		Price:      in.Price,
		TotalSeats: seats,
		Status:     models.TripActive,
		CreatedBy:  createdBy,
		CreatedAt:  nowOr(s.Now),
	}
	if err := s.Ledger.CreateTrip(ctx, t); err != nil {
		return models.Trip{}, domain.InternalError{Msg: "could not save trip", Err: err}
	}

	utils.LogEvent(s.Logger, s.RequestID, "trip", "create", "trip scheduled",
		zap.String("trip_id", t.ID), zap.String("date", utils.FormatDate(t.Date)), zap.String("time", t.Time))
	return t, nil
}

// ListUpcoming returns active trips departing today or later, soonest first.
func (s TripService) ListUpcoming(ctx context.Context) ([]models.Trip, error) {
	all, err := s.Ledger.ListTrips(ctx)
	if err != nil {
		return nil, ledgerErr(err, "trips")
	}
	today := utils.StartOfDay(nowOr(s.Now))

	out := make([]models.Trip, 0, len(all))
	for _, t := range all {
		if t.Status == models.TripActive && !utils.StartOfDay(t.Date).Before(today) {
			out = append(out, t)
		}
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Departure().Before(out[j].Departure()) })
	return out, nil
}

func (s TripService) GetTrip(ctx context.Context, id string) (models.Trip, error) {
	t, err := s.Ledger.GetTrip(ctx, id)
	if err != nil {
		return models.Trip{}, ledgerErr(err, "trip")
	}
	return t, nil
}

// ListAll is the admin view: every trip, latest departure first, with its creator.
func (s TripService) ListAll(ctx context.Context) ([]models.TripWithCreator, error) {
	all, err := s.Ledger.ListTrips(ctx)
	if err != nil {
		return nil, ledgerErr(err, "trips")
	}
	users, err := s.Ledger.ListUsers(ctx)
	if err != nil {
		return nil, ledgerErr(err, "users")
	}
	byID := usersByID(users)

	sort.SliceStable(all, func(i, j int) bool { return all[i].Departure().After(all[j].Departure()) })
	out := make([]models.TripWithCreator, 0, len(all))
	for _, t := range all {
		out = append(out, models.TripWithCreator{Trip: t, Creator: publicUser(byID, t.CreatedBy)})
	}
	return out, nil
}

// UpdateStatus opens or closes a trip for booking. Seat counts are never touched.
func (s TripService) UpdateStatus(ctx context.Context, id string, status models.TripStatus) (models.Trip, error) {
	if !status.Valid() {
		return models.Trip{}, domain.ValidationError{Field: "status", Msg: "must be active, cancelled or completed"}
	}
	if err := s.Ledger.UpdateTripStatus(ctx, id, status); err != nil {
		return models.Trip{}, ledgerErr(err, "trip")
	}
	utils.LogEvent(s.Logger, s.RequestID, "trip", "status", "trip status changed",
		zap.String("trip_id", id), zap.String("status", string(status)))
	return s.GetTrip(ctx, id)
}
