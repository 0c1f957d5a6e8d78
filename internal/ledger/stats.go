package ledger

import (
	"fmt"
	"time"

	"github.com/cleared-dev/cabstats/internal/stats"
)

// DateStats summarizes the rides and expenses of day's calendar date.
func (e *Engine) DateStats(day time.Time) stats.Summary {
	s := e.Snapshot()
	return stats.ForDate(s.Rides, s.Expenses, day)
}

// SessionStats summarizes the rides and expenses of one session.
func (e *Engine) SessionStats(sessionID string) (stats.SessionSummary, error) {
	s := e.Snapshot()
	for _, sess := range s.Sessions {
		if sess.ID == sessionID {
			return stats.ForSession(sess, s.Rides, s.Expenses, e.now()), nil
		}
	}
	return stats.SessionSummary{}, fmt.Errorf("session %s: %w", sessionID, ErrNotFound)
}
