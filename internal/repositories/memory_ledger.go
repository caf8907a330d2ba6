package repositories

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"studentbus/internal/domain/models"

	"github.com/shopspring/decimal"
)

// MemoryLedger keeps every record in process memory. Transactions are
// serialized by a single write lock and stage their writes until commit.
type MemoryLedger struct {
	mu sync.RWMutex

	users    map[string]models.User
	trips    map[string]models.Trip
	bookings map[string]models.Booking
	payments map[string]models.Payment

	// insertion order, used as the tie-breaker for listings
	userOrder    []string
	tripOrder    []string
	bookingOrder []string
	paymentOrder []string
}

var _ Ledger = (*MemoryLedger)(nil)

func NewMemoryLedger() *MemoryLedger {
	return &MemoryLedger{
		users:    map[string]models.User{},
		trips:    map[string]models.Trip{},
		bookings: map[string]models.Booking{},
		payments: map[string]models.Payment{},
	}
}

func (l *MemoryLedger) Close() error { return nil }

func (l *MemoryLedger) InTx(ctx context.Context, fn func(tx LedgerTx) error) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	l.mu.Lock()
	defer l.mu.Unlock()

	tx := &memoryTx{
		base:     l,
		users:    map[string]models.User{},
		trips:    map[string]models.Trip{},
		payments: map[string]models.Payment{},
	}
	if err := fn(tx); err != nil {
		return err
	}
	tx.commit()
	return nil
}

func (l *MemoryLedger) CreateUser(_ context.Context, u models.User) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	if _, ok := l.users[u.ID]; ok || u.ID == "" {
		return ErrDuplicateID
	}
	for _, existing := range l.users {
		if strings.EqualFold(existing.Email, u.Email) {
			return ErrDuplicateEmail
		}
		if u.StudentID != "" && existing.StudentID == u.StudentID {
			return ErrDuplicateStudentID
		}
	}
	l.users[u.ID] = u
	l.userOrder = append(l.userOrder, u.ID)
	return nil
}

func (l *MemoryLedger) GetUser(_ context.Context, id string) (models.User, error) {
	l.mu.RLock()
	defer l.mu.RUnlock()
	u, ok := l.users[id]
	if !ok {
		return models.User{}, ErrNotFound
	}
	return u, nil
}

func (l *MemoryLedger) GetUserByEmail(_ context.Context, email string) (models.User, error) {
	l.mu.RLock()
	defer l.mu.RUnlock()
	for _, id := range l.userOrder {
		if u := l.users[id]; strings.EqualFold(u.Email, email) {
			return u, nil
		}
	}
	return models.User{}, ErrNotFound
}

func (l *MemoryLedger) ListUsers(_ context.Context) ([]models.User, error) {
	l.mu.RLock()
	defer l.mu.RUnlock()
	out := make([]models.User, 0, len(l.userOrder))
	for _, id := range l.userOrder {
		out = append(out, l.users[id])
	}
	return out, nil
}

func (l *MemoryLedger) CreateTrip(_ context.Context, t models.Trip) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	if _, ok := l.trips[t.ID]; ok || t.ID == "" {
		return ErrDuplicateID
	}
	if t.BookedSeats < 0 || t.BookedSeats > t.TotalSeats {
		return fmt.Errorf("trip %s: booked seats %d out of range 0..%d", t.ID, t.BookedSeats, t.TotalSeats)
	}
	l.trips[t.ID] = t
	l.tripOrder = append(l.tripOrder, t.ID)
	return nil
}

func (l *MemoryLedger) GetTrip(_ context.Context, id string) (models.Trip, error) {
	l.mu.RLock()
	defer l.mu.RUnlock()
	t, ok := l.trips[id]
	if !ok {
		return models.Trip{}, ErrNotFound
	}
	return t, nil
}

func (l *MemoryLedger) ListTrips(_ context.Context) ([]models.Trip, error) {
	l.mu.RLock()
	defer l.mu.RUnlock()
	out := make([]models.Trip, 0, len(l.tripOrder))
	for _, id := range l.tripOrder {
		out = append(out, l.trips[id])
	}
	return out, nil
}

func (l *MemoryLedger) UpdateTripStatus(_ context.Context, id string, status models.TripStatus) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	t, ok := l.trips[id]
	if !ok {
		return ErrNotFound
	}
	t.Status = status
	l.trips[id] = t
	return nil
}

func (l *MemoryLedger) GetBooking(_ context.Context, id string) (models.Booking, error) {
	l.mu.RLock()
	defer l.mu.RUnlock()
	b, ok := l.bookings[id]
	if !ok {
		return models.Booking{}, ErrNotFound
	}
	return b, nil
}

func (l *MemoryLedger) ListBookings(_ context.Context) ([]models.Booking, error) {
	return l.filterBookings(func(models.Booking) bool { return true }), nil
}

func (l *MemoryLedger) ListBookingsByUser(_ context.Context, userID string) ([]models.Booking, error) {
	return l.filterBookings(func(b models.Booking) bool { return b.UserID == userID }), nil
}

func (l *MemoryLedger) filterBookings(keep func(models.Booking) bool) []models.Booking {
	l.mu.RLock()
	defer l.mu.RUnlock()
	out := []models.Booking{}
	for _, id := range l.bookingOrder {
		if b := l.bookings[id]; keep(b) {
			out = append(out, b)
		}
	}
	return out
}

func (l *MemoryLedger) CreatePayment(_ context.Context, p models.Payment) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	if _, ok := l.payments[p.ID]; ok || p.ID == "" {
		return ErrDuplicateID
	}
	l.payments[p.ID] = p
	l.paymentOrder = append(l.paymentOrder, p.ID)
	return nil
}

func (l *MemoryLedger) GetPayment(_ context.Context, id string) (models.Payment, error) {
	l.mu.RLock()
	defer l.mu.RUnlock()
	p, ok := l.payments[id]
	if !ok {
		return models.Payment{}, ErrNotFound
	}
	return p, nil
}

func (l *MemoryLedger) ListPayments(_ context.Context) ([]models.Payment, error) {
	return l.filterPayments(func(models.Payment) bool { return true }), nil
}

func (l *MemoryLedger) ListPaymentsByUser(_ context.Context, userID string) ([]models.Payment, error) {
	return l.filterPayments(func(p models.Payment) bool { return p.UserID == userID }), nil
}

func (l *MemoryLedger) ListPaymentsByStatus(_ context.Context, status models.PaymentStatus) ([]models.Payment, error) {
	return l.filterPayments(func(p models.Payment) bool { return p.Status == status }), nil
}

func (l *MemoryLedger) filterPayments(keep func(models.Payment) bool) []models.Payment {
	l.mu.RLock()
	defer l.mu.RUnlock()
	out := []models.Payment{}
	for _, id := range l.paymentOrder {
		if p := l.payments[id]; keep(p) {
			out = append(out, p)
		}
	}
	return out
}

// memoryTx runs under base.mu held for writing.
type memoryTx struct {
	base *MemoryLedger

	users    map[string]models.User
	trips    map[string]models.Trip
	payments map[string]models.Payment
	bookings []models.Booking
}

func (tx *memoryTx) LockTrip(_ context.Context, id string) (models.Trip, error) {
	if t, ok := tx.trips[id]; ok {
		return t, nil
	}
	t, ok := tx.base.trips[id]
	if !ok {
		return models.Trip{}, ErrNotFound
	}
	return t, nil
}

func (tx *memoryTx) LockUser(_ context.Context, id string) (models.User, error) {
	if u, ok := tx.users[id]; ok {
		return u, nil
	}
	u, ok := tx.base.users[id]
	if !ok {
		return models.User{}, ErrNotFound
	}
	return u, nil
}

func (tx *memoryTx) LockPayment(_ context.Context, id string) (models.Payment, error) {
	if p, ok := tx.payments[id]; ok {
		return p, nil
	}
	p, ok := tx.base.payments[id]
	if !ok {
		return models.Payment{}, ErrNotFound
	}
	return p, nil
}

func (tx *memoryTx) SetUserBalance(ctx context.Context, userID string, balance decimal.Decimal) error {
	if balance.IsNegative() {
		return fmt.Errorf("user %s: negative balance %s", userID, balance.StringFixed(2))
	}
	u, err := tx.LockUser(ctx, userID)
	if err != nil {
		return err
	}
	u.Balance = balance
	tx.users[userID] = u
	return nil
}

func (tx *memoryTx) SetTripBookedSeats(ctx context.Context, tripID string, booked int) error {
	t, err := tx.LockTrip(ctx, tripID)
	if err != nil {
		return err
	}
	if booked < 0 || booked > t.TotalSeats {
		return fmt.Errorf("trip %s: booked seats %d out of range 0..%d", tripID, booked, t.TotalSeats)
	}
	t.BookedSeats = booked
	tx.trips[tripID] = t
	return nil
}

func (tx *memoryTx) InsertBooking(_ context.Context, b models.Booking) error {
	if _, ok := tx.base.bookings[b.ID]; ok || b.ID == "" {
		return ErrDuplicateID
	}
	for _, staged := range tx.bookings {
		if staged.ID == b.ID {
			return ErrDuplicateID
		}
	}
	tx.bookings = append(tx.bookings, b)
	return nil
}

func (tx *memoryTx) SaveReview(ctx context.Context, p models.Payment) error {
	if _, err := tx.LockPayment(ctx, p.ID); err != nil {
		return err
	}
	tx.payments[p.ID] = p
	return nil
}

func (tx *memoryTx) commit() {
	for id, u := range tx.users {
		tx.base.users[id] = u
	}
	for id, t := range tx.trips {
		tx.base.trips[id] = t
	}
	for id, p := range tx.payments {
		tx.base.payments[id] = p
	}
	for _, b := range tx.bookings {
		tx.base.bookings[b.ID] = b
		tx.base.bookingOrder = append(tx.base.bookingOrder, b.ID)
	}
}
