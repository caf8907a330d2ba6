package repositories

import (
	"context"
	"fmt"
)

var schemaDDL = []string{
	`CREATE TABLE IF NOT EXISTS users (
	id CHAR(36) NOT NULL PRIMARY KEY,
	name VARCHAR(255) NOT NULL,
	email VARCHAR(255) NOT NULL,
	phone VARCHAR(50) NOT NULL DEFAULT '',
	student_id VARCHAR(100) NULL,
	university VARCHAR(255) NOT NULL DEFAULT '',
	password_hash VARCHAR(255) NOT NULL,
	role VARCHAR(20) NOT NULL,
	balance DECIMAL(12,2) NOT NULL DEFAULT 0,
	is_verified TINYINT(1) NOT NULL DEFAULT 0,
	created_at DATETIME(6) NOT NULL,
	UNIQUE KEY uniq_users_email (email),
	UNIQUE KEY uniq_users_student_id (student_id),
	CONSTRAINT chk_users_balance CHECK (balance >= 0)
) ENGINE=InnoDB DEFAULT CHARSET=utf8mb4 COLLATE=utf8mb4_unicode_ci`,

	`CREATE TABLE IF NOT EXISTS trips (
	id CHAR(36) NOT NULL PRIMARY KEY,
	departure_date DATE NOT NULL,
	departure_time VARCHAR(5) NOT NULL,
	origin VARCHAR(255) NOT NULL,
	destination VARCHAR(255) NOT NULL,
	price DECIMAL(12,2) NOT NULL,
	total_seats INT NOT NULL,
	booked_seats INT NOT NULL DEFAULT 0,
	status VARCHAR(20) NOT NULL,
	created_by CHAR(36) NOT NULL,
	created_at DATETIME(6) NOT NULL,
	KEY idx_trips_date (departure_date),
	CONSTRAINT chk_trips_seats CHECK (booked_seats >= 0 AND booked_seats <= total_seats)
) ENGINE=InnoDB DEFAULT CHARSET=utf8mb4 COLLATE=utf8mb4_unicode_ci`,

	`CREATE TABLE IF NOT EXISTS bookings (
	id CHAR(36) NOT NULL PRIMARY KEY,
	reference VARCHAR(32) NOT NULL,
	user_id CHAR(36) NOT NULL,
	trip_id CHAR(36) NOT NULL,
	ticket_count INT NOT NULL,
	total_amount DECIMAL(12,2) NOT NULL,
	status VARCHAR(20) NOT NULL,
	created_at DATETIME(6) NOT NULL,
	KEY idx_bookings_user (user_id),
	KEY idx_bookings_trip (trip_id)
) ENGINE=InnoDB DEFAULT CHARSET=utf8mb4 COLLATE=utf8mb4_unicode_ci`,

	`CREATE TABLE IF NOT EXISTS payments (
	id CHAR(36) NOT NULL PRIMARY KEY,
	user_id CHAR(36) NOT NULL,
	amount DECIMAL(12,2) NOT NULL,
	type VARCHAR(20) NOT NULL,
	method VARCHAR(50) NOT NULL,
	transaction_ref VARCHAR(255) NOT NULL DEFAULT '',
	sender_phone VARCHAR(50) NOT NULL DEFAULT '',
	screenshot VARCHAR(512) NOT NULL DEFAULT '',
	status VARCHAR(20) NOT NULL,
	admin_note TEXT NOT NULL,
	reviewed_by CHAR(36) NULL,
	reviewed_at DATETIME(6) NULL,
	created_at DATETIME(6) NOT NULL,
	KEY idx_payments_user (user_id),
	KEY idx_payments_status (status)
) ENGINE=InnoDB DEFAULT CHARSET=utf8mb4 COLLATE=utf8mb4_unicode_ci`,
}

// EnsureSchema creates the ledger tables when they are missing.
func (l *MySQLLedger) EnsureSchema(ctx context.Context) error {
	for _, ddl := range schemaDDL {
		if _, err := l.db.ExecContext(ctx, ddl); err != nil {
			return fmt.Errorf("ensure schema: %w", err)
		}
	}
	return nil
}
