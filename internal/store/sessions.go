package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/cleared-dev/cabstats/internal/id"
	"github.com/cleared-dev/cabstats/internal/model"
)

const sessionColumns = `id, name, start_time, end_time, start_km, end_km, total_km, status, created_at`

// InsertSession stores a new session, generating its id when empty.
func (s *Store) InsertSession(ctx context.Context, sess model.Session) (model.Session, error) {
	if sess.ID == "" {
		sess.ID = id.New()
	}
	_, err := s.q(ctx).ExecContext(ctx,
		`INSERT INTO sessions (`+sessionColumns+`) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		sessionArgs(sess)...)
	if err != nil {
		return model.Session{}, fmt.Errorf("inserting session: %w", err)
	}
	return sess, nil
}

// UpdateSession overwrites a stored session.
func (s *Store) UpdateSession(ctx context.Context, sess model.Session) error {
	args := append(sessionArgs(sess)[1:], sess.ID)
	res, err := s.q(ctx).ExecContext(ctx,
		`UPDATE sessions SET name = ?, start_time = ?, end_time = ?, start_km = ?, end_km = ?,
			total_km = ?, status = ?, created_at = ?
		 WHERE id = ?`, args...)
	if err != nil {
		return fmt.Errorf("updating session %s: %w", sess.ID, err)
	}
	return checkAffected(res, "session", sess.ID)
}

// ListSessions returns every session in creation order.
func (s *Store) ListSessions(ctx context.Context) ([]model.Session, error) {
	rows, err := s.q(ctx).QueryContext(ctx, `SELECT `+sessionColumns+` FROM sessions ORDER BY created_at, rowid`)
	if err != nil {
		return nil, fmt.Errorf("query sessions: %w", err)
	}
	defer rows.Close()

	var out []model.Session
	for rows.Next() {
		sess, err := scanSession(rows)
		if err != nil {
			return nil, fmt.Errorf("scan session: %w", err)
		}
		out = append(out, sess)
	}
	return out, rows.Err()
}

// GetSession returns the session with the given id.
func (s *Store) GetSession(ctx context.Context, sessionID string) (model.Session, error) {
	row := s.q(ctx).QueryRowContext(ctx, `SELECT `+sessionColumns+` FROM sessions WHERE id = ?`, sessionID)
	sess, err := scanSession(row)
	if err != nil {
		return model.Session{}, notFound(err, "session", sessionID)
	}
	return sess, nil
}

// ActiveSession returns the active session, or nil when none is open.
func (s *Store) ActiveSession(ctx context.Context) (*model.Session, error) {
	row := s.q(ctx).QueryRowContext(ctx,
		`SELECT `+sessionColumns+` FROM sessions WHERE status = ?`, string(model.SessionActive))
	sess, err := scanSession(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("reading active session: %w", err)
	}
	return &sess, nil
}

// CountSessions returns the number of stored sessions.
func (s *Store) CountSessions(ctx context.Context) (int, error) {
	var n int
	if err := s.q(ctx).QueryRowContext(ctx, `SELECT COUNT(*) FROM sessions`).Scan(&n); err != nil {
		return 0, fmt.Errorf("counting sessions: %w", err)
	}
	return n, nil
}

// ClearSessions deletes every session.
func (s *Store) ClearSessions(ctx context.Context) error {
	if _, err := s.q(ctx).ExecContext(ctx, `DELETE FROM sessions`); err != nil {
		return fmt.Errorf("clearing sessions: %w", err)
	}
	return nil
}

func sessionArgs(sess model.Session) []any {
	var endKm sql.NullString
	if sess.EndKm != nil {
		endKm = sql.NullString{String: formatDecimal(*sess.EndKm), Valid: true}
	}
	return []any{
		sess.ID,
		sess.Name,
		formatTime(sess.StartTime),
		formatNullTime(sess.EndTime),
		formatDecimal(sess.StartKm),
		endKm,
		formatDecimal(sess.TotalKm),
		string(sess.Status),
		formatTime(sess.CreatedAt),
	}
}

func scanSession(sc scanner) (model.Session, error) {
	var (
		sess                        model.Session
		start, startKm, totalKm, st string
		created                     string
		end, endKm                  sql.NullString
	)
	if err := sc.Scan(&sess.ID, &sess.Name, &start, &end, &startKm, &endKm, &totalKm, &st, &created); err != nil {
		return model.Session{}, err
	}
	sess.Status = model.SessionStatus(st)

	var err error
	if sess.StartTime, err = parseTime(start); err != nil {
		return model.Session{}, err
	}
	if sess.EndTime, err = parseNullTime(end); err != nil {
		return model.Session{}, err
	}
	if sess.CreatedAt, err = parseTime(created); err != nil {
		return model.Session{}, err
	}
	if err := decimals([]*decimal.Decimal{&sess.StartKm, &sess.TotalKm}, startKm, totalKm); err != nil {
		return model.Session{}, err
	}
	if endKm.Valid {
		d, err := parseDecimal(endKm.String)
		if err != nil {
			return model.Session{}, err
		}
		sess.EndKm = &d
	}
	return sess, nil
}
