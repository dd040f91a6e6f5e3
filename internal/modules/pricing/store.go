// README: Vehicle spec catalog backed by PostgreSQL.
package pricing

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

var ErrSpecNotFound = errors.New("vehicle spec not found")

type Store struct {
	db *pgxpool.Pool
}

func NewStore(db *pgxpool.Pool) *Store {
	return &Store{db: db}
}

func (s *Store) GetSpec(ctx context.Context, vehicleType string) (VehicleSpec, error) {
	row := s.db.QueryRow(ctx, `
		SELECT vehicle_type, fuel_consumption_km_l, maintenance_cost_per_km,
		       driver_cost_per_hour, toll_multiplier
		FROM vehicle_specs
		WHERE vehicle_type = $1`, vehicleType,
	)

	var spec VehicleSpec
	err := row.Scan(&spec.VehicleType, &spec.FuelConsumptionKmPerL,
		&spec.MaintenanceCostPerKm, &spec.DriverCostPerHour, &spec.TollMultiplier)
	if errors.Is(err, pgx.ErrNoRows) {
		return VehicleSpec{}, ErrSpecNotFound
	}
	if err != nil {
		return VehicleSpec{}, err
	}
	return spec, nil
}

func (s *Store) UpsertSpec(ctx context.Context, spec VehicleSpec) error {
	_, err := s.db.Exec(ctx, `
		INSERT INTO vehicle_specs (vehicle_type, fuel_consumption_km_l,
			maintenance_cost_per_km, driver_cost_per_hour, toll_multiplier)
		VALUES ($1, $2, $3, $4, $5)
		ON CONFLICT (vehicle_type) DO UPDATE
		SET fuel_consumption_km_l = EXCLUDED.fuel_consumption_km_l,
		    maintenance_cost_per_km = EXCLUDED.maintenance_cost_per_km,
		    driver_cost_per_hour = EXCLUDED.driver_cost_per_hour,
		    toll_multiplier = EXCLUDED.toll_multiplier`,
		spec.VehicleType, spec.FuelConsumptionKmPerL, spec.MaintenanceCostPerKm,
		spec.DriverCostPerHour, spec.TollMultiplier,
	)
	return err
}
