// README: Ledger store contract; Postgres and in-memory implementations.
package history

import (
	"context"
	"sort"
	"sync"

	"github.com/jackc/pgx/v5/pgxpool"

	"rotacusto/internal/types"
)

// Store persists realized trips. Append must be atomic: concurrent
// registers for the same pair may interleave but never lose entries.
type Store interface {
	Append(ctx context.Context, t Trip) error
	// ListByPair returns trips for (origin, destination) in chronological
	// order. vehicleID filters when non-empty.
	ListByPair(ctx context.Context, origin, destination, vehicleID string) ([]Trip, error)
}

// PostgresStore appends to the historical_trips table.
type PostgresStore struct {
	db *pgxpool.Pool
}

func NewPostgresStore(db *pgxpool.Pool) *PostgresStore {
	return &PostgresStore{db: db}
}

func (s *PostgresStore) Append(ctx context.Context, t Trip) error {
	_, err := s.db.Exec(ctx, `
		INSERT INTO historical_trips (
			id, origin, destination, vehicle_id, distance_km, actual_cost,
			fuel_consumed_l, duration_min, trip_date, issues
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)`,
		string(t.ID), t.Origin, t.Destination, t.VehicleID, t.DistanceKm,
		t.ActualCost, t.FuelConsumedL, t.DurationMin, t.Date, t.Issues,
	)
	return err
}

func (s *PostgresStore) ListByPair(ctx context.Context, origin, destination, vehicleID string) ([]Trip, error) {
	rows, err := s.db.Query(ctx, `
		SELECT id, origin, destination, vehicle_id, distance_km, actual_cost,
		       fuel_consumed_l, duration_min, trip_date, issues
		FROM historical_trips
		WHERE origin = $1 AND destination = $2
		  AND ($3 = '' OR vehicle_id = $3)
		ORDER BY trip_date ASC`,
		origin, destination, vehicleID,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var trips []Trip
	for rows.Next() {
		var t Trip
		var id string
		if err := rows.Scan(&id, &t.Origin, &t.Destination, &t.VehicleID,
			&t.DistanceKm, &t.ActualCost, &t.FuelConsumedL, &t.DurationMin,
			&t.Date, &t.Issues); err != nil {
			return nil, err
		}
		t.ID = types.ID(id)
		trips = append(trips, t)
	}
	return trips, rows.Err()
}

// MemoryStore is a mutex-guarded slice implementation for tests and
// no-infrastructure runs.
type MemoryStore struct {
	mu    sync.Mutex
	trips []Trip
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{}
}

func (s *MemoryStore) Append(_ context.Context, t Trip) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.trips = append(s.trips, t)
	return nil
}

func (s *MemoryStore) ListByPair(_ context.Context, origin, destination, vehicleID string) ([]Trip, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []Trip
	for _, t := range s.trips {
		if t.Origin != origin || t.Destination != destination {
			continue
		}
		if vehicleID != "" && t.VehicleID != vehicleID {
			continue
		}
		out = append(out, t)
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Date.Before(out[j].Date) })
	return out, nil
}
