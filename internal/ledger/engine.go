// Package ledger implements the accounting rules that keep accounts, rides,
// expenses and fuel transfers consistent with each other.
//
// Every mutating operation runs inside one SQLite transaction. The engine
// keeps a read-only mirror of the ledger that is refreshed from the database
// after each commit and never touched when an operation fails.
package ledger

import (
	"context"
	"fmt"
	"slices"
	"sync"
	"time"

	"github.com/shopspring/decimal"

	"github.com/cleared-dev/cabstats/internal/logger"
	"github.com/cleared-dev/cabstats/internal/model"
	"github.com/cleared-dev/cabstats/internal/stats"
	"github.com/cleared-dev/cabstats/internal/store"
)

// DefaultFuelShare is the part of each ride's profit earmarked for fuel.
var DefaultFuelShare = decimal.RequireFromString("0.5")

// Options configures an Engine. Zero values select the defaults.
type Options struct {
	FuelShare decimal.Decimal
	Clock     func() time.Time
	Logger    logger.Logger
}

// State is a snapshot of everything the ledger holds.
type State struct {
	Accounts       []model.Account
	Sessions       []model.Session
	Rides          []model.Ride
	FuelTransfers  []model.FuelTransfer
	Expenses       []model.Expense
	ActiveRide     *model.Ride
	CurrentSession *model.Session
}

// Engine owns the ledger state and every operation that changes it.
type Engine struct {
	mu        sync.Mutex
	store     *store.Store
	log       logger.Logger
	now       func() time.Time
	fuelShare decimal.Decimal
	state     State
}

// New seeds the fixed accounts if needed and loads the current state.
func New(ctx context.Context, st *store.Store, opts Options) (*Engine, error) {
	e := &Engine{
		store:     st,
		log:       opts.Logger,
		now:       opts.Clock,
		fuelShare: opts.FuelShare,
	}
	if e.log == nil {
		e.log = logger.Discard()
	}
	if e.now == nil {
		e.now = time.Now
	}
	if e.fuelShare.IsZero() {
		e.fuelShare = DefaultFuelShare
	}

	if err := st.SeedAccounts(ctx, model.AccountNames(), e.now()); err != nil {
		return nil, fmt.Errorf("seeding accounts: %w", err)
	}
	if err := e.reload(ctx); err != nil {
		return nil, err
	}
	e.log.Debug(ctx, "ledger loaded",
		"accounts", len(e.state.Accounts),
		"rides", len(e.state.Rides),
		"pending_fuel", model.PendingTotal(e.state.FuelTransfers).StringFixed(model.Cents))
	return e, nil
}

// FuelShare returns the fraction of profit allocated to fuel.
func (e *Engine) FuelShare() decimal.Decimal {
	return e.fuelShare
}

// mutate runs fn in a transaction and refreshes the mirror once it commits.
// fn must go through e.store with the ctx it is given and must not call the
// exported getters.
func (e *Engine) mutate(ctx context.Context, action string, fn func(ctx context.Context) error) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	ctx = logger.WithAction(ctx, action)
	if err := e.store.Do(ctx, fn); err != nil {
		if rejected(err) {
			e.log.Warn(ctx, "operation rejected", "reason", err.Error())
		} else {
			e.log.Error(ctx, "operation rolled back", err)
		}
		return err
	}

	if err := e.reload(ctx); err != nil {
		e.log.Error(ctx, "failed to refresh ledger state", err)
		return err
	}
	e.log.Info(ctx, "operation committed")
	return nil
}

func (e *Engine) reload(ctx context.Context) error {
	s, err := e.load(ctx)
	if err != nil {
		return fmt.Errorf("loading ledger state: %w", err)
	}
	e.state = s
	return nil
}

func (e *Engine) load(ctx context.Context) (State, error) {
	var (
		s   State
		err error
	)
	if s.Accounts, err = e.store.ListAccounts(ctx); err != nil {
		return State{}, err
	}
	if s.Sessions, err = e.store.ListSessions(ctx); err != nil {
		return State{}, err
	}
	if s.Rides, err = e.store.ListRides(ctx); err != nil {
		return State{}, err
	}
	if s.FuelTransfers, err = e.store.ListTransfers(ctx); err != nil {
		return State{}, err
	}
	if s.Expenses, err = e.store.ListExpenses(ctx); err != nil {
		return State{}, err
	}
	if s.ActiveRide, err = e.store.ActiveRide(ctx); err != nil {
		return State{}, err
	}
	if s.CurrentSession, err = e.store.ActiveSession(ctx); err != nil {
		return State{}, err
	}
	return s, nil
}

// Snapshot returns a copy of the whole mirror.
func (e *Engine) Snapshot() State {
	e.mu.Lock()
	defer e.mu.Unlock()
	s := e.state
	s.Accounts = slices.Clone(s.Accounts)
	s.Sessions = slices.Clone(s.Sessions)
	s.Rides = slices.Clone(s.Rides)
	s.FuelTransfers = slices.Clone(s.FuelTransfers)
	s.Expenses = slices.Clone(s.Expenses)
	return s
}

// Accounts returns every account in seed order.
func (e *Engine) Accounts() []model.Account {
	return e.Snapshot().Accounts
}

// Account returns the account with the given name.
func (e *Engine) Account(name model.AccountName) (model.Account, error) {
	for _, a := range e.Accounts() {
		if a.Name == name {
			return a, nil
		}
	}
	return model.Account{}, unknownAccount(name)
}

// Sessions returns every session, oldest first.
func (e *Engine) Sessions() []model.Session {
	return e.Snapshot().Sessions
}

// CurrentSession returns the active session, or nil.
func (e *Engine) CurrentSession() *model.Session {
	return e.Snapshot().CurrentSession
}

// Rides returns every finished ride, oldest first.
func (e *Engine) Rides() []model.Ride {
	return e.Snapshot().Rides
}

// Ride returns the finished ride with the given id.
func (e *Engine) Ride(rideID string) (model.Ride, error) {
	for _, r := range e.Rides() {
		if r.ID == rideID {
			return r, nil
		}
	}
	return model.Ride{}, fmt.Errorf("ride %s: %w", rideID, ErrNotFound)
}

// ActiveRide returns the ride in progress, or nil.
func (e *Engine) ActiveRide() *model.Ride {
	return e.Snapshot().ActiveRide
}

// Expenses returns every expense, oldest first.
func (e *Engine) Expenses() []model.Expense {
	return e.Snapshot().Expenses
}

// FuelTransfers returns every fuel transfer, oldest first.
func (e *Engine) FuelTransfers() []model.FuelTransfer {
	return e.Snapshot().FuelTransfers
}

// RidesOn returns the rides created on day's calendar date.
func (e *Engine) RidesOn(day time.Time) []model.Ride {
	var out []model.Ride
	for _, r := range e.Rides() {
		if stats.SameDay(r.CreatedAt, day) {
			out = append(out, r)
		}
	}
	return out
}

// ExpensesOn returns the expenses recorded on day's calendar date.
func (e *Engine) ExpensesOn(day time.Time) []model.Expense {
	var out []model.Expense
	for _, x := range e.Expenses() {
		if stats.SameDay(x.CreatedAt, day) {
			out = append(out, x)
		}
	}
	return out
}

// CombinedBalance is the sum of every account balance.
func (e *Engine) CombinedBalance() decimal.Decimal {
	total := decimal.Zero
	for _, a := range e.Accounts() {
		total = total.Add(a.Balance)
	}
	return total
}

// PendingFuelTransfer is the fuel allocation not yet moved into the Fuel Account.
func (e *Engine) PendingFuelTransfer() decimal.Decimal {
	return model.PendingTotal(e.FuelTransfers())
}
