// Package store persists the ledger in a local SQLite database.
//
// Collections map to tables: accounts, sessions, rides, fuel_transfers,
// expenses and the single-row active_ride slot. Every method runs against the
// transaction carried by ctx when there is one (see TxManager), so a ledger
// operation spanning several collections commits or rolls back as a unit.
package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/shopspring/decimal"
	_ "modernc.org/sqlite"
)

// ErrNotFound is returned when a record does not exist.
var ErrNotFound = errors.New("record not found")

const schemaVersion = 1

const schema = `
CREATE TABLE IF NOT EXISTS schema_meta (
	version INTEGER NOT NULL
);

CREATE TABLE IF NOT EXISTS accounts (
	id         TEXT PRIMARY KEY,
	name       TEXT NOT NULL UNIQUE,
	balance    TEXT NOT NULL DEFAULT '0',
	updated_at TEXT NOT NULL
);

CREATE TABLE IF NOT EXISTS sessions (
	id         TEXT PRIMARY KEY,
	name       TEXT NOT NULL,
	start_time TEXT NOT NULL,
	end_time   TEXT,
	start_km   TEXT NOT NULL,
	end_km     TEXT,
	total_km   TEXT NOT NULL DEFAULT '0',
	status     TEXT NOT NULL,
	created_at TEXT NOT NULL
);
CREATE UNIQUE INDEX IF NOT EXISTS idx_sessions_one_active ON sessions(status) WHERE status = 'active';

CREATE TABLE IF NOT EXISTS rides (
	id              TEXT PRIMARY KEY,
	session_id      TEXT,
	start_time      TEXT NOT NULL,
	end_time        TEXT,
	km              TEXT NOT NULL,
	fare            TEXT NOT NULL,
	airport_fee     TEXT NOT NULL,
	platform_fee    TEXT NOT NULL,
	tolls           TEXT NOT NULL,
	other_fees      TEXT NOT NULL,
	ride_type       TEXT NOT NULL,
	payment_method  TEXT NOT NULL,
	profit          TEXT NOT NULL,
	profit_per_km   TEXT NOT NULL,
	profit_per_min  TEXT NOT NULL,
	fuel_allocation TEXT NOT NULL,
	created_at      TEXT NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_rides_session ON rides(session_id);
CREATE INDEX IF NOT EXISTS idx_rides_created ON rides(created_at);

CREATE TABLE IF NOT EXISTS fuel_transfers (
	id           TEXT PRIMARY KEY,
	ride_id      TEXT NOT NULL,
	amount       TEXT NOT NULL,
	from_account TEXT NOT NULL,
	to_account   TEXT NOT NULL,
	status       TEXT NOT NULL,
	created_at   TEXT NOT NULL,
	completed_at TEXT,
	reversed_at  TEXT
);
CREATE INDEX IF NOT EXISTS idx_fuel_transfers_status ON fuel_transfers(status, created_at);
CREATE INDEX IF NOT EXISTS idx_fuel_transfers_ride ON fuel_transfers(ride_id);

CREATE TABLE IF NOT EXISTS expenses (
	id          TEXT PRIMARY KEY,
	session_id  TEXT,
	category    TEXT NOT NULL,
	amount      TEXT NOT NULL,
	account     TEXT NOT NULL,
	description TEXT NOT NULL DEFAULT '',
	created_at  TEXT NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_expenses_session ON expenses(session_id);
CREATE INDEX IF NOT EXISTS idx_expenses_created ON expenses(created_at);

CREATE TABLE IF NOT EXISTS active_ride (
	slot       INTEGER PRIMARY KEY CHECK (slot = 1),
	id         TEXT NOT NULL,
	session_id TEXT,
	start_time TEXT NOT NULL,
	created_at TEXT NOT NULL
);
`

// Store is the SQLite-backed persistent store.
type Store struct {
	db *sql.DB
}

// Open opens (or creates) the database at path and ensures the schema exists.
func Open(ctx context.Context, path string) (*Store, error) {
	dsn := "file:" + path + "?_pragma=busy_timeout(5000)&_pragma=journal_mode(WAL)&_pragma=synchronous(FULL)"
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open db: %w", err)
	}
	// SQLite allows a single writer; one connection keeps every statement
	// on the transaction that owns it.
	db.SetMaxOpenConns(1)

	s := &Store{db: db}
	if err := s.migrate(ctx); err != nil {
		_ = db.Close()
		return nil, err
	}
	return s, nil
}

// Close releases the database.
func (s *Store) Close() error {
	return s.db.Close()
}

func (s *Store) migrate(ctx context.Context) error {
	if _, err := s.db.ExecContext(ctx, schema); err != nil {
		return fmt.Errorf("create schema: %w", err)
	}

	var ver int
	err := s.db.QueryRowContext(ctx, `SELECT version FROM schema_meta LIMIT 1`).Scan(&ver)
	switch {
	case errors.Is(err, sql.ErrNoRows):
		if _, err := s.db.ExecContext(ctx, `INSERT INTO schema_meta (version) VALUES (?)`, schemaVersion); err != nil {
			return fmt.Errorf("record schema version: %w", err)
		}
	case err != nil:
		return fmt.Errorf("read schema version: %w", err)
	case ver > schemaVersion:
		return fmt.Errorf("database schema version %d is newer than supported version %d", ver, schemaVersion)
	}
	return nil
}

// SchemaVersion returns the version recorded in the database.
func (s *Store) SchemaVersion(ctx context.Context) (int, error) {
	var ver int
	if err := s.q(ctx).QueryRowContext(ctx, `SELECT version FROM schema_meta LIMIT 1`).Scan(&ver); err != nil {
		return 0, fmt.Errorf("read schema version: %w", err)
	}
	return ver, nil
}

// Column codecs. Times are stored in UTC with a fixed-width layout so that
// lexical order in SQL matches chronological order.

const timeLayout = "2006-01-02T15:04:05.000000000Z"

func formatTime(t time.Time) string {
	return t.UTC().Format(timeLayout)
}

func parseTime(s string) (time.Time, error) {
	t, err := time.Parse(timeLayout, s)
	if err != nil {
		return time.Time{}, fmt.Errorf("parsing time %q: %w", s, err)
	}
	return t, nil
}

func formatNullTime(t *time.Time) sql.NullString {
	if t == nil {
		return sql.NullString{}
	}
	return sql.NullString{String: formatTime(*t), Valid: true}
}

func parseNullTime(ns sql.NullString) (*time.Time, error) {
	if !ns.Valid {
		return nil, nil
	}
	t, err := parseTime(ns.String)
	if err != nil {
		return nil, err
	}
	return &t, nil
}

func formatDecimal(d decimal.Decimal) string {
	return d.String()
}

func parseDecimal(s string) (decimal.Decimal, error) {
	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Decimal{}, fmt.Errorf("parsing amount %q: %w", s, err)
	}
	return d, nil
}

func nullString(s *string) sql.NullString {
	if s == nil {
		return sql.NullString{}
	}
	return sql.NullString{String: *s, Valid: true}
}

func stringPtr(ns sql.NullString) *string {
	if !ns.Valid {
		return nil
	}
	s := ns.String
	return &s
}

// decimals parses several amount columns in order, stopping at the first error.
func decimals(dst []*decimal.Decimal, src ...string) error {
	for i, s := range src {
		d, err := parseDecimal(s)
		if err != nil {
			return err
		}
		*dst[i] = d
	}
	return nil
}

// notFound maps sql.ErrNoRows onto ErrNotFound.
func notFound(err error, what, id string) error {
	if errors.Is(err, sql.ErrNoRows) {
		return fmt.Errorf("%s %s: %w", what, id, ErrNotFound)
	}
	return fmt.Errorf("reading %s %s: %w", what, id, err)
}

func checkAffected(res sql.Result, what, id string) error {
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("%s %s: %w", what, id, err)
	}
	if n == 0 {
		return fmt.Errorf("%s %s: %w", what, id, ErrNotFound)
	}
	return nil
}
