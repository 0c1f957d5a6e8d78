package model

import (
	"time"

	"github.com/shopspring/decimal"
)

// SessionStatus is the lifecycle state of a driving session.
type SessionStatus string

const (
	SessionActive    SessionStatus = "active"
	SessionCompleted SessionStatus = "completed"
)

// Session is a work period bracketed by odometer readings.
type Session struct {
	ID        string
	Name      string // "Session #N"
	StartTime time.Time
	EndTime   *time.Time
	StartKm   decimal.Decimal
	EndKm     *decimal.Decimal
	TotalKm   decimal.Decimal // EndKm - StartKm once completed
	Status    SessionStatus
	CreatedAt time.Time
}

// Active reports whether the session is still open.
func (s Session) Active() bool {
	return s.Status == SessionActive
}
