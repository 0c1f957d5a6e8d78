package store

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/cleared-dev/cabstats/internal/id"
	"github.com/cleared-dev/cabstats/internal/model"
)

const expenseColumns = `id, session_id, category, amount, account, description, created_at`

// InsertExpense stores an expense, generating its id when empty.
func (s *Store) InsertExpense(ctx context.Context, e model.Expense) (model.Expense, error) {
	if e.ID == "" {
		e.ID = id.New()
	}
	_, err := s.q(ctx).ExecContext(ctx,
		`INSERT INTO expenses (`+expenseColumns+`) VALUES (?, ?, ?, ?, ?, ?, ?)`,
		e.ID,
		nullString(e.SessionID),
		string(e.Category),
		formatDecimal(e.Amount),
		string(e.Account),
		e.Description,
		formatTime(e.CreatedAt),
	)
	if err != nil {
		return model.Expense{}, fmt.Errorf("inserting expense: %w", err)
	}
	return e, nil
}

// ListExpenses returns every expense in creation order.
func (s *Store) ListExpenses(ctx context.Context) ([]model.Expense, error) {
	rows, err := s.q(ctx).QueryContext(ctx, `SELECT `+expenseColumns+` FROM expenses ORDER BY created_at, rowid`)
	if err != nil {
		return nil, fmt.Errorf("query expenses: %w", err)
	}
	defer rows.Close()

	var out []model.Expense
	for rows.Next() {
		e, err := scanExpense(rows)
		if err != nil {
			return nil, fmt.Errorf("scan expense: %w", err)
		}
		out = append(out, e)
	}
	return out, rows.Err()
}

// GetExpense returns the expense with the given id.
func (s *Store) GetExpense(ctx context.Context, expenseID string) (model.Expense, error) {
	row := s.q(ctx).QueryRowContext(ctx, `SELECT `+expenseColumns+` FROM expenses WHERE id = ?`, expenseID)
	e, err := scanExpense(row)
	if err != nil {
		return model.Expense{}, notFound(err, "expense", expenseID)
	}
	return e, nil
}

// DeleteExpense removes an expense.
func (s *Store) DeleteExpense(ctx context.Context, expenseID string) error {
	res, err := s.q(ctx).ExecContext(ctx, `DELETE FROM expenses WHERE id = ?`, expenseID)
	if err != nil {
		return fmt.Errorf("deleting expense %s: %w", expenseID, err)
	}
	return checkAffected(res, "expense", expenseID)
}

// ClearExpenses deletes every expense.
func (s *Store) ClearExpenses(ctx context.Context) error {
	if _, err := s.q(ctx).ExecContext(ctx, `DELETE FROM expenses`); err != nil {
		return fmt.Errorf("clearing expenses: %w", err)
	}
	return nil
}

func scanExpense(sc scanner) (model.Expense, error) {
	var (
		e                                 model.Expense
		sessionID                         sql.NullString
		category, amount, account, created string
	)
	if err := sc.Scan(&e.ID, &sessionID, &category, &amount, &account, &e.Description, &created); err != nil {
		return model.Expense{}, err
	}
	e.SessionID = stringPtr(sessionID)
	e.Category = model.ExpenseCategory(category)
	e.Account = model.AccountName(account)

	var err error
	if e.Amount, err = parseDecimal(amount); err != nil {
		return model.Expense{}, err
	}
	if e.CreatedAt, err = parseTime(created); err != nil {
		return model.Expense{}, err
	}
	return e, nil
}
