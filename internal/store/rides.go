package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/cleared-dev/cabstats/internal/id"
	"github.com/cleared-dev/cabstats/internal/model"
)

const rideColumns = `id, session_id, start_time, end_time, km, fare, airport_fee, platform_fee, tolls, other_fees,
	ride_type, payment_method, profit, profit_per_km, profit_per_min, fuel_allocation, created_at`

// InsertRide stores a finished ride, generating its id when empty.
func (s *Store) InsertRide(ctx context.Context, r model.Ride) (model.Ride, error) {
	if r.ID == "" {
		r.ID = id.New()
	}
	_, err := s.q(ctx).ExecContext(ctx,
		`INSERT INTO rides (`+rideColumns+`) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		r.ID,
		nullString(r.SessionID),
		formatTime(r.StartTime),
		formatNullTime(r.EndTime),
		formatDecimal(r.Km),
		formatDecimal(r.Fare),
		formatDecimal(r.AirportFee),
		formatDecimal(r.PlatformFee),
		formatDecimal(r.Tolls),
		formatDecimal(r.OtherFees),
		string(r.RideType),
		string(r.PaymentMethod),
		formatDecimal(r.Profit),
		formatDecimal(r.ProfitPerKm),
		formatDecimal(r.ProfitPerMin),
		formatDecimal(r.FuelAllocation),
		formatTime(r.CreatedAt),
	)
	if err != nil {
		return model.Ride{}, fmt.Errorf("inserting ride: %w", err)
	}
	return r, nil
}

// ListRides returns every finished ride in creation order.
func (s *Store) ListRides(ctx context.Context) ([]model.Ride, error) {
	rows, err := s.q(ctx).QueryContext(ctx, `SELECT `+rideColumns+` FROM rides ORDER BY created_at, rowid`)
	if err != nil {
		return nil, fmt.Errorf("query rides: %w", err)
	}
	defer rows.Close()

	var out []model.Ride
	for rows.Next() {
		r, err := scanRide(rows)
		if err != nil {
			return nil, fmt.Errorf("scan ride: %w", err)
		}
		out = append(out, r)
	}
	return out, rows.Err()
}

// GetRide returns the finished ride with the given id.
func (s *Store) GetRide(ctx context.Context, rideID string) (model.Ride, error) {
	row := s.q(ctx).QueryRowContext(ctx, `SELECT `+rideColumns+` FROM rides WHERE id = ?`, rideID)
	r, err := scanRide(row)
	if err != nil {
		return model.Ride{}, notFound(err, "ride", rideID)
	}
	return r, nil
}

// DeleteRide removes a finished ride.
func (s *Store) DeleteRide(ctx context.Context, rideID string) error {
	res, err := s.q(ctx).ExecContext(ctx, `DELETE FROM rides WHERE id = ?`, rideID)
	if err != nil {
		return fmt.Errorf("deleting ride %s: %w", rideID, err)
	}
	return checkAffected(res, "ride", rideID)
}

// ClearRides deletes every finished ride.
func (s *Store) ClearRides(ctx context.Context) error {
	if _, err := s.q(ctx).ExecContext(ctx, `DELETE FROM rides`); err != nil {
		return fmt.Errorf("clearing rides: %w", err)
	}
	return nil
}

// SaveActiveRide fills the active-ride slot, replacing whatever it held.
func (s *Store) SaveActiveRide(ctx context.Context, r model.Ride) (model.Ride, error) {
	if r.ID == "" {
		r.ID = id.New()
	}
	_, err := s.q(ctx).ExecContext(ctx,
		`INSERT INTO active_ride (slot, id, session_id, start_time, created_at) VALUES (1, ?, ?, ?, ?)
		 ON CONFLICT(slot) DO UPDATE SET
			id = excluded.id, session_id = excluded.session_id,
			start_time = excluded.start_time, created_at = excluded.created_at`,
		r.ID, nullString(r.SessionID), formatTime(r.StartTime), formatTime(r.CreatedAt))
	if err != nil {
		return model.Ride{}, fmt.Errorf("saving active ride: %w", err)
	}
	return r, nil
}

// ActiveRide returns the ride in progress, or nil when the slot is empty.
func (s *Store) ActiveRide(ctx context.Context) (*model.Ride, error) {
	var (
		r              model.Ride
		sessionID      sql.NullString
		start, created string
	)
	err := s.q(ctx).QueryRowContext(ctx,
		`SELECT id, session_id, start_time, created_at FROM active_ride WHERE slot = 1`).
		Scan(&r.ID, &sessionID, &start, &created)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("reading active ride: %w", err)
	}

	r.SessionID = stringPtr(sessionID)
	if r.StartTime, err = parseTime(start); err != nil {
		return nil, err
	}
	if r.CreatedAt, err = parseTime(created); err != nil {
		return nil, err
	}
	return &r, nil
}

// ClearActiveRide empties the active-ride slot.
func (s *Store) ClearActiveRide(ctx context.Context) error {
	if _, err := s.q(ctx).ExecContext(ctx, `DELETE FROM active_ride`); err != nil {
		return fmt.Errorf("clearing active ride: %w", err)
	}
	return nil
}

func scanRide(sc scanner) (model.Ride, error) {
	var (
		r                                      model.Ride
		sessionID, end                         sql.NullString
		start, created, rideType, payment      string
		km, fare, airport, platform, tolls     string
		other, profit, perKm, perMin, fuelAllo string
	)
	err := sc.Scan(&r.ID, &sessionID, &start, &end, &km, &fare, &airport, &platform, &tolls, &other,
		&rideType, &payment, &profit, &perKm, &perMin, &fuelAllo, &created)
	if err != nil {
		return model.Ride{}, err
	}
	r.SessionID = stringPtr(sessionID)
	r.RideType = model.RideType(rideType)
	r.PaymentMethod = model.AccountName(payment)

	if r.StartTime, err = parseTime(start); err != nil {
		return model.Ride{}, err
	}
	if r.EndTime, err = parseNullTime(end); err != nil {
		return model.Ride{}, err
	}
	if r.CreatedAt, err = parseTime(created); err != nil {
		return model.Ride{}, err
	}

	err = decimals(
		[]*decimal.Decimal{&r.Km, &r.Fare, &r.AirportFee, &r.PlatformFee, &r.Tolls, &r.OtherFees,
			&r.Profit, &r.ProfitPerKm, &r.ProfitPerMin, &r.FuelAllocation},
		km, fare, airport, platform, tolls, other, profit, perKm, perMin, fuelAllo,
	)
	if err != nil {
		return model.Ride{}, err
	}
	return r, nil
}
