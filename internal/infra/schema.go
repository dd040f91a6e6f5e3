// README: Postgres schema initialization for local runs.
package infra

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
)

// InitSchema creates the tables the stores expect. Statements are
// idempotent so the composition root can call this on every start.
func InitSchema(ctx context.Context, db *pgxpool.Pool) error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS route_cache (
			key            TEXT PRIMARY KEY,
			schema_version INT NOT NULL,
			params         JSONB NOT NULL,
			payload        JSONB NOT NULL,
			first_seen     TIMESTAMPTZ NOT NULL,
			last_seen      TIMESTAMPTZ NOT NULL,
			hit_count      BIGINT NOT NULL DEFAULT 0,
			stale          BOOLEAN NOT NULL DEFAULT FALSE
		)`,
		`CREATE INDEX IF NOT EXISTS route_cache_last_seen_idx ON route_cache (last_seen)`,
		`CREATE TABLE IF NOT EXISTS historical_trips (
			id              UUID PRIMARY KEY,
			origin          TEXT NOT NULL,
			destination     TEXT NOT NULL,
			vehicle_id      TEXT NOT NULL,
			distance_km     DOUBLE PRECISION NOT NULL,
			actual_cost     DOUBLE PRECISION NOT NULL,
			fuel_consumed_l DOUBLE PRECISION,
			duration_min    DOUBLE PRECISION,
			trip_date       TIMESTAMPTZ NOT NULL,
			issues          TEXT[] NOT NULL DEFAULT '{}'
		)`,
		`CREATE INDEX IF NOT EXISTS historical_trips_pair_idx ON historical_trips (origin, destination, trip_date)`,
		`CREATE TABLE IF NOT EXISTS vehicle_specs (
			vehicle_type            TEXT PRIMARY KEY,
			fuel_consumption_km_l   DOUBLE PRECISION NOT NULL,
			maintenance_cost_per_km DOUBLE PRECISION NOT NULL,
			driver_cost_per_hour    DOUBLE PRECISION NOT NULL,
			toll_multiplier         DOUBLE PRECISION NOT NULL
		)`,
	}
	for _, s := range stmts {
		if _, err := db.Exec(ctx, s); err != nil {
			return fmt.Errorf("init schema: %w", err)
		}
	}
	return nil
}
