package ledger

import (
	"context"
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/cleared-dev/cabstats/internal/model"
)

// Rule names reported by Check.
const (
	RuleAccounts   = "accounts"
	RuleSessions   = "sessions"
	RuleRides      = "rides"
	RuleTransfers  = "transfers"
	RuleAllocation = "allocation"
	RuleExpenses   = "expenses"
	RuleActiveRide = "active-ride"
	RuleDecimals   = "decimals"
)

// Issue describes a single consistency violation.
type Issue struct {
	Rule        string
	EntityID    string
	Description string
}

func (i Issue) String() string {
	return fmt.Sprintf("%s [%s]: %s", i.Rule, i.EntityID, i.Description)
}

// Check reloads the ledger from the database and reports every rule it
// breaks. An empty result means the ledger is consistent.
func (e *Engine) Check(ctx context.Context) ([]Issue, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	s, err := e.load(ctx)
	if err != nil {
		return nil, fmt.Errorf("loading ledger state: %w", err)
	}
	return CheckState(s), nil
}

// CheckState validates a ledger snapshot.
func CheckState(s State) []Issue {
	var issues []Issue
	add := func(rule, entity, format string, args ...any) {
		issues = append(issues, Issue{Rule: rule, EntityID: entity, Description: fmt.Sprintf(format, args...)})
	}
	cents := func(entity, field string, d decimal.Decimal) {
		if !model.IsCents(d) {
			add(RuleDecimals, entity, "%s %s has more than 2 decimal places", field, d)
		}
	}

	// Exactly one account per name.
	seen := make(map[model.AccountName]int)
	for _, a := range s.Accounts {
		seen[a.Name]++
		if !a.Name.Valid() {
			add(RuleAccounts, a.ID, "unknown account name %q", a.Name)
		}
		cents(a.ID, "balance", a.Balance)
	}
	for _, name := range model.AccountNames() {
		if n := seen[name]; n != 1 {
			add(RuleAccounts, string(name), "expected exactly one account, found %d", n)
		}
	}

	// At most one active session, and completed ones carry their distance.
	sessions := make(map[string]bool, len(s.Sessions))
	active := 0
	for _, sess := range s.Sessions {
		sessions[sess.ID] = true
		switch sess.Status {
		case model.SessionActive:
			active++
			if sess.EndTime != nil {
				add(RuleSessions, sess.ID, "active session has an end time")
			}
		case model.SessionCompleted:
			if sess.EndKm == nil || sess.EndTime == nil {
				add(RuleSessions, sess.ID, "completed session is missing its end")
			} else if want := sess.EndKm.Sub(sess.StartKm); !sess.TotalKm.Equal(want) {
				add(RuleSessions, sess.ID, "total km %s != end km - start km (%s)", sess.TotalKm, want)
			}
		default:
			add(RuleSessions, sess.ID, "unknown status %q", sess.Status)
		}
	}
	if active > 1 {
		add(RuleSessions, "*", "%d sessions are active", active)
	}

	// Rides: derived profit matches the entered figures.
	rides := make(map[string]model.Ride, len(s.Rides))
	for _, r := range s.Rides {
		rides[r.ID] = r
		if want := r.Fare.Sub(r.TotalFees()); !r.Profit.Equal(want) {
			add(RuleRides, r.ID, "profit %s != fare - fees (%s)", r.Profit, want)
		}
		if !r.PaymentMethod.IsPaymentMethod() {
			add(RuleRides, r.ID, "payment method %q cannot receive fares", r.PaymentMethod)
		}
		if r.SessionID != nil && !sessions[*r.SessionID] {
			add(RuleRides, r.ID, "unknown session %s", *r.SessionID)
		}
		cents(r.ID, "fare", r.Fare)
		cents(r.ID, "fees", r.TotalFees())
		cents(r.ID, "fuel allocation", r.FuelAllocation)
	}

	// Transfers: live ones point at an existing ride and into the Fuel Account.
	live := make(map[string]decimal.Decimal)
	for _, t := range s.FuelTransfers {
		if t.ToAccount != model.AccountFuel {
			add(RuleTransfers, t.ID, "destination is %q, not %s", t.ToAccount, model.AccountFuel)
		}
		if !t.FromAccount.Valid() || t.FromAccount == model.AccountFuel {
			add(RuleTransfers, t.ID, "source account %q cannot fund fuel", t.FromAccount)
		}
		if !t.Amount.IsPositive() {
			add(RuleTransfers, t.ID, "amount %s is not positive", t.Amount)
		}
		cents(t.ID, "amount", t.Amount)
		switch t.Status {
		case model.TransferPending, model.TransferCompleted:
			if _, ok := rides[t.RideID]; !ok {
				add(RuleTransfers, t.ID, "%s transfer references missing ride %s", t.Status, t.RideID)
			}
			live[t.RideID] = live[t.RideID].Add(t.Amount)
		case model.TransferReversed, model.TransferCancelled:
			if t.ReversedAt == nil {
				add(RuleTransfers, t.ID, "%s transfer has no reversal time", t.Status)
			}
		default:
			add(RuleTransfers, t.ID, "unknown status %q", t.Status)
		}
	}

	// Every positive allocation is fully covered by live transfers.
	for _, r := range s.Rides {
		want := decimal.Zero
		if r.FuelAllocation.IsPositive() {
			want = r.FuelAllocation
		}
		if got := live[r.ID]; !got.Equal(want) {
			add(RuleAllocation, r.ID, "transfers total %s, allocation is %s",
				got.StringFixed(model.Cents), want.StringFixed(model.Cents))
		}
	}

	for _, x := range s.Expenses {
		if !x.Amount.IsPositive() {
			add(RuleExpenses, x.ID, "amount %s is not positive", x.Amount)
		}
		cents(x.ID, "amount", x.Amount)
		if x.Category == model.CategoryFuel && x.Account != model.AccountFuel {
			add(RuleExpenses, x.ID, "fuel expense debited from %s", x.Account)
		}
		if !x.Account.Valid() {
			add(RuleExpenses, x.ID, "unknown account %q", x.Account)
		}
	}

	if r := s.ActiveRide; r != nil {
		if r.SessionID == nil || !sessions[*r.SessionID] {
			add(RuleActiveRide, r.ID, "active ride has no known session")
		}
	}

	return issues
}
