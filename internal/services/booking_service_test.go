package services

import (
	"context"
	"strconv"
	"sync"
	"testing"
	"time"

	"studentbus/internal/domain"
	"studentbus/internal/domain/models"
	"studentbus/internal/notify"
	"studentbus/internal/repositories"
	"studentbus/internal/views"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var fixedNow = time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)

type recordedEvent struct {
	target string
	evt    notify.Event
}

type recordingNotifier struct {
	mu     sync.Mutex
	events []recordedEvent
}

func (n *recordingNotifier) NotifyUser(userID string, evt notify.Event) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.events = append(n.events, recordedEvent{target: "user:" + userID, evt: evt})
}

func (n *recordingNotifier) NotifyRole(role string, evt notify.Event) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.events = append(n.events, recordedEvent{target: "role:" + role, evt: evt})
}

func addUser(t *testing.T, l repositories.Ledger, id string, balance int64) {
	t.Helper()
	require.NoError(t, l.CreateUser(context.Background(), models.User{
		ID: id, Name: "User " + id, Email: id + "@example.com", StudentID: "S-" + id,
		Role: string(domain.RoleStudent), Balance: decimal.NewFromInt(balance), CreatedAt: fixedNow,
	}))
}

func addTrip(t *testing.T, l repositories.Ledger, id string, price int64, total, booked int, status models.TripStatus) {
	t.Helper()
	require.NoError(t, l.CreateTrip(context.Background(), models.Trip{
		ID: id, Date: fixedNow.AddDate(0, 0, 1), Time: "07:30", From: "Rashid", To: "Damanhour University",
		Price: decimal.NewFromInt(price), TotalSeats: total, BookedSeats: booked, Status: status, CreatedAt: fixedNow,
	}))
}

func bookingSvc(l repositories.Ledger, n notify.Notifier) BookingService {
	return BookingService{Ledger: l, Notifier: n, Now: func() time.Time { return fixedNow }}
}

func balanceOf(t *testing.T, l repositories.Ledger, id string) decimal.Decimal {
	t.Helper()
	u, err := l.GetUser(context.Background(), id)
	require.NoError(t, err)
	return u.Balance
}

func seatsOf(t *testing.T, l repositories.Ledger, id string) int {
	t.Helper()
	tr, err := l.GetTrip(context.Background(), id)
	require.NoError(t, err)
	return tr.BookedSeats
}

func TestCreateBookingDebitsAndReservesSeats(t *testing.T) {
	l := repositories.NewMemoryLedger()
	addUser(t, l, "u1", 100)
	addTrip(t, l, "t1", 25, 33, 0, models.TripActive)
	n := &recordingNotifier{}

	got, err := bookingSvc(l, n).CreateBooking(context.Background(), "u1", "t1", 3)
	require.NoError(t, err)

	assert.Equal(t, models.BookingConfirmed, got.Status)
	assert.Equal(t, 3, got.TicketCount)
	assert.Equal(t, "75.00", got.TotalAmount.StringFixed(2))
	assert.Regexp(t, `^SB[0-9A-F]{10}$`, got.Reference)
	require.NotNil(t, got.Trip)
	assert.Equal(t, 3, got.Trip.BookedSeats)
	assert.Equal(t, 30, got.Trip.AvailableSeats())

	assert.Equal(t, "25.00", balanceOf(t, l, "u1").StringFixed(2))
	assert.Equal(t, 3, seatsOf(t, l, "t1"))

	require.Len(t, n.events, 1)
	assert.Equal(t, "user:u1", n.events[0].target)
	assert.Equal(t, notify.EventBookingCreated, n.events[0].evt.Type)
	data, ok := n.events[0].evt.Data.(views.Booking)
	require.True(t, ok, "event data is %T", n.events[0].evt.Data)
	assert.Equal(t, "75.00", data.TotalAmount)
	require.NotNil(t, data.Trip)
	assert.Equal(t, "25.00", data.Trip.Price)
	assert.Equal(t, 30, data.Trip.AvailableSeats)
}

func TestCreateBookingInsufficientCapacityLeavesTripUnchanged(t *testing.T) {
	l := repositories.NewMemoryLedger()
	addUser(t, l, "u2", 10_000)
	addTrip(t, l, "t1", 25, 33, 3, models.TripActive)

	_, err := bookingSvc(l, nil).CreateBooking(context.Background(), "u2", "t1", 31)
	require.Error(t, err)
	assert.True(t, domain.IsInsufficientCapacity(err), "got %v", err)
	assert.Equal(t, 3, seatsOf(t, l, "t1"))
	assert.Equal(t, "10000.00", balanceOf(t, l, "u2").StringFixed(2))
}

func TestCreateBookingInsufficientFundsDebitsNothing(t *testing.T) {
	l := repositories.NewMemoryLedger()
	addUser(t, l, "u1", 10)
	addTrip(t, l, "t1", 25, 33, 0, models.TripActive)
	n := &recordingNotifier{}

	_, err := bookingSvc(l, n).CreateBooking(context.Background(), "u1", "t1", 1)
	require.Error(t, err)
	assert.True(t, domain.IsInsufficientFunds(err), "got %v", err)
	assert.Equal(t, "10.00", balanceOf(t, l, "u1").StringFixed(2))
	assert.Equal(t, 0, seatsOf(t, l, "t1"))
	bookings, _ := l.ListBookings(context.Background())
	assert.Empty(t, bookings)
	assert.Empty(t, n.events)
}

func TestCreateBookingCheckOrder(t *testing.T) {
	l := repositories.NewMemoryLedger()
	addUser(t, l, "poor", 0)
	addTrip(t, l, "closed", 25, 33, 0, models.TripCancelled)
	addTrip(t, l, "full", 25, 2, 2, models.TripActive)
	svc := bookingSvc(l, nil)
	ctx := context.Background()

	cases := []struct {
		name   string
		user   string
		trip   string
		count  int
		expect func(error) bool
	}{
		{"missing trip wins over everything", "nobody", "nope", -1, domain.IsNotFound},
		{"closed trip before bad count", "nobody", "closed", 0, domain.IsInvalidState},
		{"bad count before capacity", "nobody", "full", 0, domain.IsValidation},
		{"capacity before missing user", "nobody", "full", 1, domain.IsInsufficientCapacity},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := svc.CreateBooking(ctx, tc.user, tc.trip, tc.count)
			require.Error(t, err)
			assert.True(t, tc.expect(err), "got %T: %v", err, err)
		})
	}

	addTrip(t, l, "open", 25, 33, 0, models.TripActive)
	_, err := svc.CreateBooking(ctx, "nobody", "open", 1)
	assert.True(t, domain.IsNotFound(err), "missing user before funds, got %v", err)
	_, err = svc.CreateBooking(ctx, "poor", "open", 1)
	assert.True(t, domain.IsInsufficientFunds(err), "got %v", err)
	assert.Equal(t, 0, seatsOf(t, l, "open"))
}

func TestCreateBookingIsNotIdempotent(t *testing.T) {
	l := repositories.NewMemoryLedger()
	addUser(t, l, "u1", 100)
	addTrip(t, l, "t1", 25, 33, 0, models.TripActive)
	svc := bookingSvc(l, nil)

	first, err := svc.CreateBooking(context.Background(), "u1", "t1", 1)
	require.NoError(t, err)
	second, err := svc.CreateBooking(context.Background(), "u1", "t1", 1)
	require.NoError(t, err)

	assert.NotEqual(t, first.ID, second.ID)
	assert.Equal(t, "50.00", balanceOf(t, l, "u1").StringFixed(2))
	assert.Equal(t, 2, seatsOf(t, l, "t1"))
}

func TestCreateBookingConcurrentNeverOverbooks(t *testing.T) {
	l := repositories.NewMemoryLedger()
	addTrip(t, l, "t1", 1, 10, 0, models.TripActive)
	const workers = 40
	for i := 0; i < workers; i++ {
		addUser(t, l, "u"+strconv.Itoa(i), 5)
	}
	svc := bookingSvc(l, nil)

	var (
		wg sync.WaitGroup
		mu sync.Mutex
		ok int
	)
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, err := svc.CreateBooking(context.Background(), "u"+strconv.Itoa(i), "t1", 1)
			if err == nil {
				mu.Lock()
				ok++
				mu.Unlock()
				return
			}
			assert.True(t, domain.IsInsufficientCapacity(err), "unexpected error %v", err)
		}(i)
	}
	wg.Wait()

	assert.Equal(t, 10, ok)
	assert.Equal(t, 10, seatsOf(t, l, "t1"))
	bookings, _ := l.ListBookings(context.Background())
	assert.Len(t, bookings, 10)
}

func TestListForUserNewestFirst(t *testing.T) {
	l := repositories.NewMemoryLedger()
	addUser(t, l, "u1", 100)
	addUser(t, l, "u2", 100)
	addTrip(t, l, "t1", 10, 33, 0, models.TripActive)

	clock := fixedNow
	svc := BookingService{Ledger: l, Now: func() time.Time { clock = clock.Add(time.Minute); return clock }}
	first, err := svc.CreateBooking(context.Background(), "u1", "t1", 1)
	require.NoError(t, err)
	second, err := svc.CreateBooking(context.Background(), "u1", "t1", 2)
	require.NoError(t, err)
	_, err = svc.CreateBooking(context.Background(), "u2", "t1", 1)
	require.NoError(t, err)

	list, err := svc.ListForUser(context.Background(), "u1")
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, second.ID, list[0].ID)
	assert.Equal(t, first.ID, list[1].ID)
	require.NotNil(t, list[0].Trip)
	assert.Equal(t, "t1", list[0].Trip.ID)
}

func TestGetForCallerHidesOtherUsersBookings(t *testing.T) {
	l := repositories.NewMemoryLedger()
	addUser(t, l, "u1", 100)
	addTrip(t, l, "t1", 10, 33, 0, models.TripActive)
	svc := bookingSvc(l, nil)
	b, err := svc.CreateBooking(context.Background(), "u1", "t1", 1)
	require.NoError(t, err)

	_, err = svc.GetForCaller(context.Background(), domain.RequestContext{UserID: "u2", Role: domain.RoleStudent}, b.ID)
	assert.True(t, domain.IsNotFound(err))

	got, err := svc.GetForCaller(context.Background(), domain.RequestContext{UserID: "admin", Role: domain.RoleAdmin}, b.ID)
	require.NoError(t, err)
	require.NotNil(t, got.User)
	assert.Equal(t, "u1", got.User.ID)
}

var (
	sqlTripColumns = []string{"id", "departure_date", "departure_time", "origin", "destination", "price",
		"total_seats", "booked_seats", "status", "created_by", "created_at"}
	sqlUserColumns = []string{"id", "name", "email", "phone", "student_id", "university", "password_hash",
		"role", "balance", "is_verified", "created_at"}
)

func TestCreateBookingMySQLCommitsAllWrites(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectBegin()
	mock.ExpectQuery("SELECT (.+) FROM trips WHERE id = \\? FOR UPDATE").WithArgs("t1").
		WillReturnRows(sqlmock.NewRows(sqlTripColumns).
			AddRow("t1", fixedNow, "07:30", "Rashid", "Campus", "25.00", 33, 0, "active", "a1", fixedNow))
	mock.ExpectQuery("SELECT (.+) FROM users WHERE id = \\? FOR UPDATE").WithArgs("u1").
		WillReturnRows(sqlmock.NewRows(sqlUserColumns).
			AddRow("u1", "Student", "s@example.com", "", "S1", "Uni", "hash", "student", "100.00", false, fixedNow))
	mock.ExpectExec("UPDATE users SET balance = \\? WHERE id = \\?").WithArgs("25.00", "u1").
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec("UPDATE trips SET booked_seats = \\?").WithArgs(3, "t1", 3).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec("INSERT INTO bookings").
		WithArgs(sqlmock.AnyArg(), sqlmock.AnyArg(), "u1", "t1", 3, "75.00", "confirmed", fixedNow).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	got, err := bookingSvc(repositories.NewMySQLLedger(db), nil).CreateBooking(context.Background(), "u1", "t1", 3)
	require.NoError(t, err)
	assert.Equal(t, 30, got.Trip.AvailableSeats())
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestCreateBookingMySQLRollsBackOnInsufficientFunds(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectBegin()
	mock.ExpectQuery("SELECT (.+) FROM trips WHERE id = \\? FOR UPDATE").WithArgs("t1").
		WillReturnRows(sqlmock.NewRows(sqlTripColumns).
			AddRow("t1", fixedNow, "07:30", "Rashid", "Campus", "25.00", 33, 0, "active", "a1", fixedNow))
	mock.ExpectQuery("SELECT (.+) FROM users WHERE id = \\? FOR UPDATE").WithArgs("u1").
		WillReturnRows(sqlmock.NewRows(sqlUserColumns).
			AddRow("u1", "Student", "s@example.com", "", "S1", "Uni", "hash", "student", "10.00", false, fixedNow))
	mock.ExpectRollback()

	_, err = bookingSvc(repositories.NewMySQLLedger(db), nil).CreateBooking(context.Background(), "u1", "t1", 1)
	require.Error(t, err)
	assert.True(t, domain.IsInsufficientFunds(err), "got %v", err)
	require.NoError(t, mock.ExpectationsWereMet())
}
