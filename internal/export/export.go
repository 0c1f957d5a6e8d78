// Package export writes the ledger out as CSV files.
package export

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/cleared-dev/cabstats/internal/ledger"
	"github.com/cleared-dev/cabstats/internal/model"
)

// CSV headers, one per exported file.
const (
	AccountsHeader  = "account_id,name,balance,updated_at"
	SessionsHeader  = "session_id,name,status,start_time,end_time,start_km,end_km,total_km"
	RidesHeader     = "ride_id,session_id,start_time,end_time,ride_type,payment_method,km,fare,airport_fee,platform_fee,tolls,other_fees,profit,profit_per_km,profit_per_min,fuel_allocation"
	ExpensesHeader  = "expense_id,session_id,created_at,category,account,amount,description"
	TransfersHeader = "transfer_id,ride_id,status,amount,from_account,to_account,created_at,completed_at,reversed_at"
)

// File names written by Dir.
const (
	AccountsFile  = "accounts.csv"
	SessionsFile  = "sessions.csv"
	RidesFile     = "rides.csv"
	ExpensesFile  = "expenses.csv"
	TransfersFile = "fuel_transfers.csv"
)

// Dir writes one CSV file per collection into dir, creating it if needed,
// and returns the paths written.
func Dir(dir string, s ledger.State) ([]string, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("creating export dir: %w", err)
	}

	files := []struct {
		name  string
		write func(io.Writer) error
	}{
		{AccountsFile, func(w io.Writer) error { return WriteAccounts(w, s.Accounts) }},
		{SessionsFile, func(w io.Writer) error { return WriteSessions(w, s.Sessions) }},
		{RidesFile, func(w io.Writer) error { return WriteRides(w, s.Rides) }},
		{ExpensesFile, func(w io.Writer) error { return WriteExpenses(w, s.Expenses) }},
		{TransfersFile, func(w io.Writer) error { return WriteTransfers(w, s.FuelTransfers) }},
	}

	var written []string
	for _, f := range files {
		path := filepath.Join(dir, f.name)
		if err := writeFile(path, f.write); err != nil {
			return written, err
		}
		written = append(written, path)
	}
	return written, nil
}

func writeFile(path string, write func(io.Writer) error) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("creating %s: %w", path, err)
	}
	if err := write(f); err != nil {
		f.Close()
		return fmt.Errorf("writing %s: %w", path, err)
	}
	return f.Close()
}

// WriteAccounts writes accounts.csv.
func WriteAccounts(w io.Writer, accounts []model.Account) error {
	rows := make([][]string, 0, len(accounts))
	for _, a := range accounts {
		rows = append(rows, []string{a.ID, string(a.Name), amount(a.Balance), timestamp(a.UpdatedAt)})
	}
	return writeRows(w, AccountsHeader, rows)
}

// WriteSessions writes sessions.csv.
func WriteSessions(w io.Writer, sessions []model.Session) error {
	rows := make([][]string, 0, len(sessions))
	for _, s := range sessions {
		endKm := ""
		if s.EndKm != nil {
			endKm = s.EndKm.String()
		}
		rows = append(rows, []string{
			s.ID, s.Name, string(s.Status),
			timestamp(s.StartTime), optionalTime(s.EndTime),
			s.StartKm.String(), endKm, s.TotalKm.String(),
		})
	}
	return writeRows(w, SessionsHeader, rows)
}

// WriteRides writes rides.csv.
func WriteRides(w io.Writer, rides []model.Ride) error {
	rows := make([][]string, 0, len(rides))
	for _, r := range rides {
		rows = append(rows, []string{
			r.ID, optional(r.SessionID),
			timestamp(r.StartTime), optionalTime(r.EndTime),
			string(r.RideType), string(r.PaymentMethod),
			r.Km.String(),
			amount(r.Fare), amount(r.AirportFee), amount(r.PlatformFee), amount(r.Tolls), amount(r.OtherFees),
			amount(r.Profit), amount(r.ProfitPerKm), amount(r.ProfitPerMin), amount(r.FuelAllocation),
		})
	}
	return writeRows(w, RidesHeader, rows)
}

// WriteExpenses writes expenses.csv.
func WriteExpenses(w io.Writer, expenses []model.Expense) error {
	rows := make([][]string, 0, len(expenses))
	for _, e := range expenses {
		rows = append(rows, []string{
			e.ID, optional(e.SessionID), timestamp(e.CreatedAt),
			string(e.Category), string(e.Account), amount(e.Amount), e.Description,
		})
	}
	return writeRows(w, ExpensesHeader, rows)
}

// WriteTransfers writes fuel_transfers.csv.
func WriteTransfers(w io.Writer, transfers []model.FuelTransfer) error {
	rows := make([][]string, 0, len(transfers))
	for _, t := range transfers {
		rows = append(rows, []string{
			t.ID, t.RideID, string(t.Status), amount(t.Amount),
			string(t.FromAccount), string(t.ToAccount),
			timestamp(t.CreatedAt), optionalTime(t.CompletedAt), optionalTime(t.ReversedAt),
		})
	}
	return writeRows(w, TransfersHeader, rows)
}

func writeRows(w io.Writer, header string, rows [][]string) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(strings.Split(header, ",")); err != nil {
		return fmt.Errorf("writing header: %w", err)
	}
	for i, row := range rows {
		if err := cw.Write(row); err != nil {
			return fmt.Errorf("writing row %d: %w", i+2, err)
		}
	}
	cw.Flush()
	return cw.Error()
}

func amount(d decimal.Decimal) string {
	return d.StringFixed(model.Cents)
}

func timestamp(t time.Time) string {
	return t.UTC().Format(time.RFC3339)
}

func optionalTime(t *time.Time) string {
	if t == nil {
		return ""
	}
	return timestamp(*t)
}

func optional(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
