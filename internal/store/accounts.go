package store

import (
	"context"
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"github.com/cleared-dev/cabstats/internal/id"
	"github.com/cleared-dev/cabstats/internal/model"
)

const accountColumns = `id, name, balance, updated_at`

// SeedAccounts inserts a zero-balance account for every name not yet present.
func (s *Store) SeedAccounts(ctx context.Context, names []model.AccountName, now time.Time) error {
	for _, name := range names {
		_, err := s.q(ctx).ExecContext(ctx,
			`INSERT INTO accounts (id, name, balance, updated_at) VALUES (?, ?, '0', ?)
			 ON CONFLICT(name) DO NOTHING`,
			id.New(), string(name), formatTime(now))
		if err != nil {
			return fmt.Errorf("seeding account %s: %w", name, err)
		}
	}
	return nil
}

// ListAccounts returns every account in creation order.
func (s *Store) ListAccounts(ctx context.Context) ([]model.Account, error) {
	rows, err := s.q(ctx).QueryContext(ctx, `SELECT `+accountColumns+` FROM accounts ORDER BY rowid`)
	if err != nil {
		return nil, fmt.Errorf("query accounts: %w", err)
	}
	defer rows.Close()

	var out []model.Account
	for rows.Next() {
		a, err := scanAccount(rows)
		if err != nil {
			return nil, fmt.Errorf("scan account: %w", err)
		}
		out = append(out, a)
	}
	return out, rows.Err()
}

// GetAccount returns the account with the given id.
func (s *Store) GetAccount(ctx context.Context, accountID string) (model.Account, error) {
	row := s.q(ctx).QueryRowContext(ctx, `SELECT `+accountColumns+` FROM accounts WHERE id = ?`, accountID)
	a, err := scanAccount(row)
	if err != nil {
		return model.Account{}, notFound(err, "account", accountID)
	}
	return a, nil
}

// GetAccountByName returns the account with the given name.
func (s *Store) GetAccountByName(ctx context.Context, name model.AccountName) (model.Account, error) {
	row := s.q(ctx).QueryRowContext(ctx, `SELECT `+accountColumns+` FROM accounts WHERE name = ?`, string(name))
	a, err := scanAccount(row)
	if err != nil {
		return model.Account{}, notFound(err, "account", string(name))
	}
	return a, nil
}

// SetBalance overwrites an account balance.
func (s *Store) SetBalance(ctx context.Context, accountID string, balance decimal.Decimal, now time.Time) error {
	res, err := s.q(ctx).ExecContext(ctx,
		`UPDATE accounts SET balance = ?, updated_at = ? WHERE id = ?`,
		formatDecimal(balance), formatTime(now), accountID)
	if err != nil {
		return fmt.Errorf("updating account %s: %w", accountID, err)
	}
	return checkAffected(res, "account", accountID)
}

// ZeroBalances sets every account balance to exactly zero.
func (s *Store) ZeroBalances(ctx context.Context, now time.Time) error {
	if _, err := s.q(ctx).ExecContext(ctx, `UPDATE accounts SET balance = '0', updated_at = ?`, formatTime(now)); err != nil {
		return fmt.Errorf("zeroing balances: %w", err)
	}
	return nil
}

type scanner interface {
	Scan(dest ...any) error
}

func scanAccount(sc scanner) (model.Account, error) {
	var (
		a                  model.Account
		name, bal, updated string
	)
	if err := sc.Scan(&a.ID, &name, &bal, &updated); err != nil {
		return model.Account{}, err
	}
	a.Name = model.AccountName(name)

	var err error
	if a.Balance, err = parseDecimal(bal); err != nil {
		return model.Account{}, err
	}
	if a.UpdatedAt, err = parseTime(updated); err != nil {
		return model.Account{}, err
	}
	return a, nil
}
