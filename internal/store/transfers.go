package store

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/cleared-dev/cabstats/internal/id"
	"github.com/cleared-dev/cabstats/internal/model"
)

const transferColumns = `id, ride_id, amount, from_account, to_account, status, created_at, completed_at, reversed_at`

// InsertTransfer stores a fuel transfer, generating its id when empty.
func (s *Store) InsertTransfer(ctx context.Context, t model.FuelTransfer) (model.FuelTransfer, error) {
	if t.ID == "" {
		t.ID = id.New()
	}
	_, err := s.q(ctx).ExecContext(ctx,
		`INSERT INTO fuel_transfers (`+transferColumns+`) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		transferArgs(t)...)
	if err != nil {
		return model.FuelTransfer{}, fmt.Errorf("inserting fuel transfer: %w", err)
	}
	return t, nil
}

// UpdateTransfer overwrites a stored fuel transfer.
func (s *Store) UpdateTransfer(ctx context.Context, t model.FuelTransfer) error {
	args := append(transferArgs(t)[1:], t.ID)
	res, err := s.q(ctx).ExecContext(ctx,
		`UPDATE fuel_transfers SET ride_id = ?, amount = ?, from_account = ?, to_account = ?, status = ?,
			created_at = ?, completed_at = ?, reversed_at = ?
		 WHERE id = ?`, args...)
	if err != nil {
		return fmt.Errorf("updating fuel transfer %s: %w", t.ID, err)
	}
	return checkAffected(res, "fuel transfer", t.ID)
}

// ListTransfers returns every fuel transfer in creation order.
func (s *Store) ListTransfers(ctx context.Context) ([]model.FuelTransfer, error) {
	return s.queryTransfers(ctx, `SELECT `+transferColumns+` FROM fuel_transfers ORDER BY created_at, rowid`)
}

// PendingTransfers returns the pending fuel transfers, oldest first.
func (s *Store) PendingTransfers(ctx context.Context) ([]model.FuelTransfer, error) {
	return s.queryTransfers(ctx,
		`SELECT `+transferColumns+` FROM fuel_transfers WHERE status = ? ORDER BY created_at, rowid`,
		string(model.TransferPending))
}

// TransfersForRide returns every fuel transfer created for a ride.
func (s *Store) TransfersForRide(ctx context.Context, rideID string) ([]model.FuelTransfer, error) {
	return s.queryTransfers(ctx,
		`SELECT `+transferColumns+` FROM fuel_transfers WHERE ride_id = ? ORDER BY created_at, rowid`,
		rideID)
}

// ClearTransfers deletes every fuel transfer.
func (s *Store) ClearTransfers(ctx context.Context) error {
	if _, err := s.q(ctx).ExecContext(ctx, `DELETE FROM fuel_transfers`); err != nil {
		return fmt.Errorf("clearing fuel transfers: %w", err)
	}
	return nil
}

func (s *Store) queryTransfers(ctx context.Context, query string, args ...any) ([]model.FuelTransfer, error) {
	rows, err := s.q(ctx).QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query fuel transfers: %w", err)
	}
	defer rows.Close()

	var out []model.FuelTransfer
	for rows.Next() {
		t, err := scanTransfer(rows)
		if err != nil {
			return nil, fmt.Errorf("scan fuel transfer: %w", err)
		}
		out = append(out, t)
	}
	return out, rows.Err()
}

func transferArgs(t model.FuelTransfer) []any {
	return []any{
		t.ID,
		t.RideID,
		formatDecimal(t.Amount),
		string(t.FromAccount),
		string(t.ToAccount),
		string(t.Status),
		formatTime(t.CreatedAt),
		formatNullTime(t.CompletedAt),
		formatNullTime(t.ReversedAt),
	}
}

func scanTransfer(sc scanner) (model.FuelTransfer, error) {
	var (
		t                             model.FuelTransfer
		amount, from, to, st, created string
		completed, reversed           sql.NullString
	)
	if err := sc.Scan(&t.ID, &t.RideID, &amount, &from, &to, &st, &created, &completed, &reversed); err != nil {
		return model.FuelTransfer{}, err
	}
	t.FromAccount = model.AccountName(from)
	t.ToAccount = model.AccountName(to)
	t.Status = model.TransferStatus(st)

	var err error
	if t.Amount, err = parseDecimal(amount); err != nil {
		return model.FuelTransfer{}, err
	}
	if t.CreatedAt, err = parseTime(created); err != nil {
		return model.FuelTransfer{}, err
	}
	if t.CompletedAt, err = parseNullTime(completed); err != nil {
		return model.FuelTransfer{}, err
	}
	if t.ReversedAt, err = parseNullTime(reversed); err != nil {
		return model.FuelTransfer{}, err
	}
	return t, nil
}
