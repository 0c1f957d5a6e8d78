package model

import (
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// RideType is the platform a ride came from.
type RideType string

const (
	RideUber    RideType = "Uber"
	RideRapido  RideType = "Rapido"
	RideOla     RideType = "Ola"
	RidePrivate RideType = "Private"
	RideOther   RideType = "Other"
)

// RideTypes returns every ride type.
func RideTypes() []RideType {
	return []RideType{RideUber, RideRapido, RideOla, RidePrivate, RideOther}
}

// Valid reports whether t is a known ride type.
func (t RideType) Valid() bool {
	for _, rt := range RideTypes() {
		if t == rt {
			return true
		}
	}
	return false
}

// ParseRideType matches s against the known ride types, case-insensitively.
func ParseRideType(s string) (RideType, error) {
	for _, rt := range RideTypes() {
		if strings.EqualFold(strings.TrimSpace(s), string(rt)) {
			return rt, nil
		}
	}
	return "", fmt.Errorf("unknown ride type %q", s)
}

// Ride is one trip. While in progress it lives in the active-ride slot with
// every monetary field zero and EndTime nil.
type Ride struct {
	ID        string
	SessionID *string // session active when the ride started
	StartTime time.Time
	EndTime   *time.Time

	Km          decimal.Decimal
	Fare        decimal.Decimal
	AirportFee  decimal.Decimal
	PlatformFee decimal.Decimal
	Tolls       decimal.Decimal
	OtherFees   decimal.Decimal

	RideType      RideType
	PaymentMethod AccountName

	// Derived on completion.
	Profit         decimal.Decimal
	ProfitPerKm    decimal.Decimal
	ProfitPerMin   decimal.Decimal
	FuelAllocation decimal.Decimal

	CreatedAt time.Time
}

// TotalFees is the sum of every fee deducted from the fare.
func (r Ride) TotalFees() decimal.Decimal {
	return Sum(r.AirportFee, r.PlatformFee, r.Tolls, r.OtherFees)
}

// DurationMinutes is the ride length in whole minutes, 0 while in progress.
func (r Ride) DurationMinutes() int {
	if r.EndTime == nil {
		return 0
	}
	return DurationMinutes(r.StartTime, *r.EndTime)
}

// InSession reports whether the ride was started during session id.
func (r Ride) InSession(id string) bool {
	return r.SessionID != nil && *r.SessionID == id
}

// DurationMinutes returns end-start rounded to the nearest minute.
func DurationMinutes(start, end time.Time) int {
	return int(math.Round(end.Sub(start).Minutes()))
}
