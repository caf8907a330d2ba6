package services

import (
	"context"
	"testing"
	"time"

	"studentbus/internal/domain"
	"studentbus/internal/domain/models"
	"studentbus/internal/repositories"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func tripSvc(l repositories.Ledger, now time.Time) TripService {
	return TripService{
		Ledger:   l,
		Defaults: TripDefaults{From: "Rashid", To: "Damanhour University", Seats: 33},
		Now:      func() time.Time { return now },
	}
}

func TestCreateTripAppliesDefaults(t *testing.T) {
	l := repositories.NewMemoryLedger()
	svc := tripSvc(l, fixedNow)

	trip, err := svc.CreateTrip(context.Background(), "admin", TripInput{
		Date: "2026-03-02", Time: "07:30", Price: decimal.NewFromInt(25),
	})
	require.NoError(t, err)
	assert.Equal(t, 33, trip.TotalSeats)
	assert.Equal(t, 0, trip.BookedSeats)
	assert.Equal(t, models.TripActive, trip.Status)
	assert.Equal(t, "Rashid", trip.From)
	assert.Equal(t, "admin", trip.CreatedBy)

	stored, err := svc.GetTrip(context.Background(), trip.ID)
	require.NoError(t, err)
	assert.Equal(t, "07:30", stored.Time)
}

func TestCreateTripValidation(t *testing.T) {
	svc := tripSvc(repositories.NewMemoryLedger(), fixedNow)
	bad := []TripInput{
		{Date: "02/03/2026", Time: "07:30", Price: decimal.NewFromInt(25)},
		{Date: "2026-03-02", Time: "late", Price: decimal.NewFromInt(25)},
		{Date: "2026-03-02", Time: "07:30", Price: decimal.Zero},
		{Date: "2026-03-02", Time: "07:30", Price: decimal.NewFromInt(25), TotalSeats: -1},
	}
	for _, in := range bad {
		_, err := svc.CreateTrip(context.Background(), "admin", in)
		assert.True(t, domain.IsValidation(err), "input %+v gave %v", in, err)
	}
}

func TestListUpcomingFiltersAndSorts(t *testing.T) {
	l := repositories.NewMemoryLedger()
	now := time.Date(2026, 3, 10, 12, 0, 0, 0, time.Local)
	svc := tripSvc(l, now)
	ctx := context.Background()

	mk := func(date, clock string) models.Trip {
		trip, err := svc.CreateTrip(ctx, "admin", TripInput{Date: date, Time: clock, Price: decimal.NewFromInt(10)})
		require.NoError(t, err)
		return trip
	}
	later := mk("2026-03-12", "08:00")
	todayEarly := mk("2026-03-10", "06:00")
	mk("2026-03-09", "08:00")
	cancelled := mk("2026-03-11", "08:00")
	_, err := svc.UpdateStatus(ctx, cancelled.ID, models.TripCancelled)
	require.NoError(t, err)

	got, err := svc.ListUpcoming(ctx)
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, todayEarly.ID, got[0].ID, "today's trips stay listed for the whole day")
	assert.Equal(t, later.ID, got[1].ID)

	all, err := svc.ListAll(ctx)
	require.NoError(t, err)
	require.Len(t, all, 4)
	assert.Equal(t, later.ID, all[0].ID)
}

func TestUpdateStatusKeepsSeats(t *testing.T) {
	l := repositories.NewMemoryLedger()
	addTrip(t, l, "t1", 25, 33, 7, models.TripActive)
	svc := tripSvc(l, fixedNow)

	got, err := svc.UpdateStatus(context.Background(), "t1", models.TripCompleted)
	require.NoError(t, err)
	assert.Equal(t, models.TripCompleted, got.Status)
	assert.Equal(t, 7, got.BookedSeats)

	_, err = svc.UpdateStatus(context.Background(), "t1", "paused")
	assert.True(t, domain.IsValidation(err))
	_, err = svc.UpdateStatus(context.Background(), "missing", models.TripActive)
	assert.True(t, domain.IsNotFound(err))

	_, err = bookingSvc(l, nil).CreateBooking(context.Background(), "u1", "t1", 1)
	assert.True(t, domain.IsInvalidState(err))
}
