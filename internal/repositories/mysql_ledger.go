package repositories

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	intdb "studentbus/internal/db"
	"studentbus/internal/domain/models"

	"github.com/shopspring/decimal"
)

const (
	userColumns    = `id, name, email, phone, COALESCE(student_id, ''), university, password_hash, role, balance, is_verified, created_at`
	tripColumns    = `id, departure_date, departure_time, origin, destination, price, total_seats, booked_seats, status, created_by, created_at`
	bookingColumns = `id, reference, user_id, trip_id, ticket_count, total_amount, status, created_at`
	paymentColumns = `id, user_id, amount, type, method, transaction_ref, sender_phone, screenshot, status, admin_note, reviewed_by, reviewed_at, created_at`
)

// MySQLLedger persists the ledger in MySQL. Transactions lock rows with
// SELECT ... FOR UPDATE for the whole check-then-mutate sequence.
type MySQLLedger struct {
	db *sql.DB
}

var _ Ledger = (*MySQLLedger)(nil)

func NewMySQLLedger(db *sql.DB) *MySQLLedger {
	return &MySQLLedger{db: db}
}

func (l *MySQLLedger) Close() error {
	return l.db.Close()
}

func (l *MySQLLedger) InTx(ctx context.Context, fn func(tx LedgerTx) error) error {
	tx, err := l.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer tx.Rollback()

	if err := fn(mysqlTx{tx: tx}); err != nil {
		return err
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit transaction: %w", err)
	}
	return nil
}

func (l *MySQLLedger) CreateUser(ctx context.Context, u models.User) error {
	_, err := l.db.ExecContext(ctx, `
		INSERT INTO users (id, name, email, phone, student_id, university, password_hash, role, balance, is_verified, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		u.ID, u.Name, u.Email, u.Phone, intdb.NullIfEmpty(u.StudentID), u.University,
		u.PasswordHash, u.Role, intdb.Money(u.Balance), u.IsVerified, u.CreatedAt,
	)
	if msg, dup := intdb.DuplicateKey(err); dup {
		switch {
		case strings.Contains(msg, "uniq_users_email"):
			return ErrDuplicateEmail
		case strings.Contains(msg, "uniq_users_student_id"):
			return ErrDuplicateStudentID
		default:
			return ErrDuplicateID
		}
	}
	if err != nil {
		return fmt.Errorf("insert user: %w", err)
	}
	return nil
}

func (l *MySQLLedger) GetUser(ctx context.Context, id string) (models.User, error) {
	row := l.db.QueryRowContext(ctx, `SELECT `+userColumns+` FROM users WHERE id = ?`, id)
	return scanUser(row)
}

func (l *MySQLLedger) GetUserByEmail(ctx context.Context, email string) (models.User, error) {
	row := l.db.QueryRowContext(ctx, `SELECT `+userColumns+` FROM users WHERE email = ?`, email)
	return scanUser(row)
}

func (l *MySQLLedger) ListUsers(ctx context.Context) ([]models.User, error) {
	rows, err := l.db.QueryContext(ctx, `SELECT `+userColumns+` FROM users ORDER BY created_at`)
	if err != nil {
		return nil, fmt.Errorf("list users: %w", err)
	}
	defer rows.Close()

	out := []models.User{}
	for rows.Next() {
		u, err := scanUser(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, u)
	}
	return out, rows.Err()
}

func (l *MySQLLedger) CreateTrip(ctx context.Context, t models.Trip) error {
	_, err := l.db.ExecContext(ctx, `
		INSERT INTO trips (id, departure_date, departure_time, origin, destination, price, total_seats, booked_seats, status, created_by, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		t.ID, t.Date, t.Time, t.From, t.To, intdb.Money(t.Price),
		t.TotalSeats, t.BookedSeats, string(t.Status), t.CreatedBy, t.CreatedAt,
	)
	if _, dup := intdb.DuplicateKey(err); dup {
		return ErrDuplicateID
	}
	if err != nil {
		return fmt.Errorf("insert trip: %w", err)
	}
	return nil
}

func (l *MySQLLedger) GetTrip(ctx context.Context, id string) (models.Trip, error) {
	row := l.db.QueryRowContext(ctx, `SELECT `+tripColumns+` FROM trips WHERE id = ?`, id)
	return scanTrip(row)
}

func (l *MySQLLedger) ListTrips(ctx context.Context) ([]models.Trip, error) {
	rows, err := l.db.QueryContext(ctx, `SELECT `+tripColumns+` FROM trips ORDER BY created_at`)
	if err != nil {
		return nil, fmt.Errorf("list trips: %w", err)
	}
	defer rows.Close()

	out := []models.Trip{}
	for rows.Next() {
		t, err := scanTrip(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, t)
	}
	return out, rows.Err()
}

func (l *MySQLLedger) UpdateTripStatus(ctx context.Context, id string, status models.TripStatus) error {
	res, err := l.db.ExecContext(ctx, `UPDATE trips SET status = ? WHERE id = ?`, string(status), id)
	if err != nil {
		return fmt.Errorf("update trip status: %w", err)
	}
	return expectRow(ctx, l.db, res, "trips", id)
}

func (l *MySQLLedger) GetBooking(ctx context.Context, id string) (models.Booking, error) {
	row := l.db.QueryRowContext(ctx, `SELECT `+bookingColumns+` FROM bookings WHERE id = ?`, id)
	return scanBooking(row)
}

func (l *MySQLLedger) ListBookings(ctx context.Context) ([]models.Booking, error) {
	return l.queryBookings(ctx, `SELECT `+bookingColumns+` FROM bookings ORDER BY created_at`)
}

func (l *MySQLLedger) ListBookingsByUser(ctx context.Context, userID string) ([]models.Booking, error) {
	return l.queryBookings(ctx, `SELECT `+bookingColumns+` FROM bookings WHERE user_id = ? ORDER BY created_at`, userID)
}

func (l *MySQLLedger) queryBookings(ctx context.Context, query string, args ...any) ([]models.Booking, error) {
	rows, err := l.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list bookings: %w", err)
	}
	defer rows.Close()

	out := []models.Booking{}
	for rows.Next() {
		b, err := scanBooking(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, b)
	}
	return out, rows.Err()
}

func (l *MySQLLedger) CreatePayment(ctx context.Context, p models.Payment) error {
	_, err := l.db.ExecContext(ctx, `
		INSERT INTO payments (id, user_id, amount, type, method, transaction_ref, sender_phone, screenshot, status, admin_note, reviewed_by, reviewed_at, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		p.ID, p.UserID, intdb.Money(p.Amount), p.Type, p.Method, p.TransactionRef, p.SenderPhone,
		p.Screenshot, string(p.Status), p.AdminNote, intdb.NullIfEmpty(p.ReviewedBy), intdb.NullTime(p.ReviewedAt), p.CreatedAt,
	)
	if _, dup := intdb.DuplicateKey(err); dup {
		return ErrDuplicateID
	}
	if err != nil {
		return fmt.Errorf("insert payment: %w", err)
	}
	return nil
}

func (l *MySQLLedger) GetPayment(ctx context.Context, id string) (models.Payment, error) {
	row := l.db.QueryRowContext(ctx, `SELECT `+paymentColumns+` FROM payments WHERE id = ?`, id)
	return scanPayment(row)
}

func (l *MySQLLedger) ListPayments(ctx context.Context) ([]models.Payment, error) {
	return l.queryPayments(ctx, `SELECT `+paymentColumns+` FROM payments ORDER BY created_at`)
}

func (l *MySQLLedger) ListPaymentsByUser(ctx context.Context, userID string) ([]models.Payment, error) {
	return l.queryPayments(ctx, `SELECT `+paymentColumns+` FROM payments WHERE user_id = ? ORDER BY created_at`, userID)
}

func (l *MySQLLedger) ListPaymentsByStatus(ctx context.Context, status models.PaymentStatus) ([]models.Payment, error) {
	return l.queryPayments(ctx, `SELECT `+paymentColumns+` FROM payments WHERE status = ? ORDER BY created_at`, string(status))
}

func (l *MySQLLedger) queryPayments(ctx context.Context, query string, args ...any) ([]models.Payment, error) {
	rows, err := l.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list payments: %w", err)
	}
	defer rows.Close()

	out := []models.Payment{}
	for rows.Next() {
		p, err := scanPayment(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, p)
	}
	return out, rows.Err()
}

type mysqlTx struct {
	tx *sql.Tx
}

func (t mysqlTx) LockTrip(ctx context.Context, id string) (models.Trip, error) {
	row := t.tx.QueryRowContext(ctx, `SELECT `+tripColumns+` FROM trips WHERE id = ? FOR UPDATE`, id)
	return scanTrip(row)
}

func (t mysqlTx) LockUser(ctx context.Context, id string) (models.User, error) {
	row := t.tx.QueryRowContext(ctx, `SELECT `+userColumns+` FROM users WHERE id = ? FOR UPDATE`, id)
	return scanUser(row)
}

func (t mysqlTx) LockPayment(ctx context.Context, id string) (models.Payment, error) {
	row := t.tx.QueryRowContext(ctx, `SELECT `+paymentColumns+` FROM payments WHERE id = ? FOR UPDATE`, id)
	return scanPayment(row)
}

func (t mysqlTx) SetUserBalance(ctx context.Context, userID string, balance decimal.Decimal) error {
	if balance.IsNegative() {
		return fmt.Errorf("user %s: negative balance %s", userID, balance.StringFixed(2))
	}
	res, err := t.tx.ExecContext(ctx, `UPDATE users SET balance = ? WHERE id = ?`, intdb.Money(balance), userID)
	if err != nil {
		return fmt.Errorf("update balance: %w", err)
	}
	return expectRow(ctx, t.tx, res, "users", userID)
}

func (t mysqlTx) SetTripBookedSeats(ctx context.Context, tripID string, booked int) error {
	if booked < 0 {
		return fmt.Errorf("trip %s: negative booked seats %d", tripID, booked)
	}
	res, err := t.tx.ExecContext(ctx, `UPDATE trips SET booked_seats = ? WHERE id = ? AND total_seats >= ?`, booked, tripID, booked)
	if err != nil {
		return fmt.Errorf("update booked seats: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected: %w", err)
	}
	if n > 0 {
		return nil
	}

	// Zero rows: the trip is missing, over capacity, or already at this count.
	var total int
	err = t.tx.QueryRowContext(ctx, `SELECT total_seats FROM trips WHERE id = ?`, tripID).Scan(&total)
	if intdb.IsNoRows(err) {
		return ErrNotFound
	}
	if err != nil {
		return fmt.Errorf("check trip seats: %w", err)
	}
	if booked > total {
		return fmt.Errorf("trip %s: booked seats %d out of range 0..%d", tripID, booked, total)
	}
	return nil
}

func (t mysqlTx) InsertBooking(ctx context.Context, b models.Booking) error {
	_, err := t.tx.ExecContext(ctx, `
		INSERT INTO bookings (id, reference, user_id, trip_id, ticket_count, total_amount, status, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		b.ID, b.Reference, b.UserID, b.TripID, b.TicketCount, intdb.Money(b.TotalAmount), string(b.Status), b.CreatedAt,
	)
	if _, dup := intdb.DuplicateKey(err); dup {
		return ErrDuplicateID
	}
	if err != nil {
		return fmt.Errorf("insert booking: %w", err)
	}
	return nil
}

func (t mysqlTx) SaveReview(ctx context.Context, p models.Payment) error {
	res, err := t.tx.ExecContext(ctx, `
		UPDATE payments SET status = ?, admin_note = ?, reviewed_by = ?, reviewed_at = ?
		WHERE id = ?`,
		string(p.Status), p.AdminNote, intdb.NullIfEmpty(p.ReviewedBy), intdb.NullTime(p.ReviewedAt), p.ID,
	)
	if err != nil {
		return fmt.Errorf("update payment review: %w", err)
	}
	return expectRow(ctx, t.tx, res, "payments", p.ID)
}

type rowQuerier interface {
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

// expectRow treats an UPDATE that changed nothing as success when the row
// exists. The driver reports changed rows, not matched ones, unless the DSN
// sets clientFoundRows.
func expectRow(ctx context.Context, q rowQuerier, res sql.Result, table, id string) error {
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected: %w", err)
	}
	if n > 0 {
		return nil
	}

	var one int
	err = q.QueryRowContext(ctx, `SELECT 1 FROM `+table+` WHERE id = ?`, id).Scan(&one)
	if intdb.IsNoRows(err) {
		return ErrNotFound
	}
	if err != nil {
		return fmt.Errorf("check %s row: %w", table, err)
	}
	return nil
}

func scanUser(row intdb.RowScanner) (models.User, error) {
	var (
		u       models.User
		balance string
	)
	err := row.Scan(&u.ID, &u.Name, &u.Email, &u.Phone, &u.StudentID, &u.University,
		&u.PasswordHash, &u.Role, &balance, &u.IsVerified, &u.CreatedAt)
	if intdb.IsNoRows(err) {
		return models.User{}, ErrNotFound
	}
	if err != nil {
		return models.User{}, fmt.Errorf("scan user: %w", err)
	}
	if u.Balance, err = intdb.ParseMoney(balance); err != nil {
		return models.User{}, err
	}
	return u, nil
}

func scanTrip(row intdb.RowScanner) (models.Trip, error) {
	var (
		t      models.Trip
		price  string
		status string
	)
	err := row.Scan(&t.ID, &t.Date, &t.Time, &t.From, &t.To, &price,
		&t.TotalSeats, &t.BookedSeats, &status, &t.CreatedBy, &t.CreatedAt)
	if intdb.IsNoRows(err) {
		return models.Trip{}, ErrNotFound
	}
	if err != nil {
		return models.Trip{}, fmt.Errorf("scan trip: %w", err)
	}
	t.Status = models.TripStatus(status)
	if t.Price, err = intdb.ParseMoney(price); err != nil {
		return models.Trip{}, err
	}
	return t, nil
}

func scanBooking(row intdb.RowScanner) (models.Booking, error) {
	var (
		b      models.Booking
		total  string
		status string
	)
	err := row.Scan(&b.ID, &b.Reference, &b.UserID, &b.TripID, &b.TicketCount, &total, &status, &b.CreatedAt)
	if intdb.IsNoRows(err) {
		return models.Booking{}, ErrNotFound
	}
	if err != nil {
		return models.Booking{}, fmt.Errorf("scan booking: %w", err)
	}
	b.Status = models.BookingStatus(status)
	if b.TotalAmount, err = intdb.ParseMoney(total); err != nil {
		return models.Booking{}, err
	}
	return b, nil
}

func scanPayment(row intdb.RowScanner) (models.Payment, error) {
	var (
		p          models.Payment
		amount     string
		status     string
		reviewedBy sql.NullString
		reviewedAt sql.NullTime
	)
	err := row.Scan(&p.ID, &p.UserID, &amount, &p.Type, &p.Method, &p.TransactionRef, &p.SenderPhone,
		&p.Screenshot, &status, &p.AdminNote, &reviewedBy, &reviewedAt, &p.CreatedAt)
	if intdb.IsNoRows(err) {
		return models.Payment{}, ErrNotFound
	}
	if err != nil {
		return models.Payment{}, fmt.Errorf("scan payment: %w", err)
	}
	p.Status = models.PaymentStatus(status)
	p.ReviewedBy = reviewedBy.String
	if reviewedAt.Valid {
		at := reviewedAt.Time
		p.ReviewedAt = &at
	}
	if p.Amount, err = intdb.ParseMoney(amount); err != nil {
		return models.Payment{}, err
	}
	return p, nil
}
