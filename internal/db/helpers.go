package db

import (
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/go-sql-driver/mysql"
	"github.com/shopspring/decimal"
)

// mysqlDuplicateEntry is ER_DUP_ENTRY.
const mysqlDuplicateEntry = 1062

// RowScanner is satisfied by both *sql.Row and *sql.Rows.
type RowScanner interface {
	Scan(dest ...any) error
}

// NullIfEmpty helps store optional strings without wiping existing data.
func NullIfEmpty(s string) any {
	if s == "" {
		return nil
	}
	return s
}

// NullTime maps a nil time pointer to SQL NULL.
func NullTime(t *time.Time) any {
	if t == nil {
		return nil
	}
	return *t
}

// Money renders a decimal the way DECIMAL(12,2) columns store it.
func Money(d decimal.Decimal) string {
	return d.StringFixed(2)
}

func ParseMoney(raw string) (decimal.Decimal, error) {
	d, err := decimal.NewFromString(raw)
	if err != nil {
		return decimal.Zero, fmt.Errorf("parse money %q: %w", raw, err)
	}
	return d, nil
}

// DuplicateKey reports the index name of a MySQL duplicate-entry error.
func DuplicateKey(err error) (string, bool) {
	var myErr *mysql.MySQLError
	if !errors.As(err, &myErr) || myErr.Number != mysqlDuplicateEntry {
		return "", false
	}
	return myErr.Message, true
}

func IsNoRows(err error) bool {
	return errors.Is(err, sql.ErrNoRows)
}
