package ledger

import (
	"context"
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/cleared-dev/cabstats/internal/id"
	"github.com/cleared-dev/cabstats/internal/logger"
	"github.com/cleared-dev/cabstats/internal/model"
)

// StartSession opens a new session at the given odometer reading.
func (e *Engine) StartSession(ctx context.Context, startKm decimal.Decimal) (model.Session, error) {
	if startKm.IsNegative() {
		return model.Session{}, ValidationError{Field: "start km", Message: "must not be negative"}
	}
	var sess model.Session
	err := e.mutate(ctx, "start_session", func(ctx context.Context) error {
		active, err := e.store.ActiveSession(ctx)
		if err != nil {
			return err
		}
		if active != nil {
			return precondition(fmt.Sprintf("%s is still active", active.Name))
		}
		n, err := e.store.CountSessions(ctx)
		if err != nil {
			return err
		}

		now := e.now()
		sess, err = e.store.InsertSession(ctx, model.Session{
			Name:      id.FormatSessionName(n + 1),
			StartTime: now,
			StartKm:   startKm,
			Status:    model.SessionActive,
			CreatedAt: now,
		})
		return err
	})
	return sess, err
}

// EndSession closes the active session at the given odometer reading.
func (e *Engine) EndSession(ctx context.Context, endKm decimal.Decimal) (model.Session, error) {
	var sess model.Session
	err := e.mutate(ctx, "end_session", func(ctx context.Context) error {
		active, err := e.store.ActiveSession(ctx)
		if err != nil {
			return err
		}
		if active == nil {
			return precondition("no active session")
		}
		if endKm.LessThan(active.StartKm) {
			return ValidationError{
				Field:   "end km",
				Message: fmt.Sprintf("%s is below the starting reading %s", endKm, active.StartKm),
			}
		}
		e.log.Debug(logger.WithSessionID(ctx, active.ID), "closing session", "name", active.Name)

		now := e.now()
		sess = *active
		sess.EndTime = &now
		sess.EndKm = &endKm
		sess.TotalKm = endKm.Sub(active.StartKm)
		sess.Status = model.SessionCompleted
		return e.store.UpdateSession(ctx, sess)
	})
	return sess, err
}
