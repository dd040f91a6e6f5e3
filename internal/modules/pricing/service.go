// README: Cost model; computes per-alternative monetary breakdowns.
package pricing

import (
	"context"

	"rotacusto/internal/types"
)

// Service is the cost model. operationalRate is the fixed per-km overhead
// (insurance, depreciation, admin) applied to synthesized costs.
type Service struct {
	store           *Store
	operationalRate float64
}

func NewService(store *Store, operationalRate float64) *Service {
	return &Service{store: store, operationalRate: operationalRate}
}

// Spec resolves the vehicle spec for a vehicle type, falling back to the
// built-in catalog when the store has no row (or there is no store).
func (s *Service) Spec(ctx context.Context, vehicleType string) VehicleSpec {
	if s.store != nil {
		if spec, err := s.store.GetSpec(ctx, vehicleType); err == nil {
			return spec
		}
	}
	return defaultSpec(vehicleType)
}

// ComputeCommand carries everything the cost model needs for one route.
type ComputeCommand struct {
	Route           Route
	Spec            VehicleSpec
	MarginPercent   float64
	FreightCategory string
	CargoType       string
	Axles           string
	FuelPrice       float64
}

// Compute derives the full breakdown for one route alternative.
//
// Without a tariff basis the total is the sum of the synthesized
// components. With a tariff basis the official amount plus tolls governs
// the total, and the synthesized components remain in the breakdown for
// transparency only.
func (s *Service) Compute(cmd ComputeCommand) Breakdown {
	route, spec := cmd.Route, cmd.Spec
	b := Breakdown{Basis: BasisSynthetic, MarginPercent: cmd.MarginPercent}

	if spec.FuelConsumptionKmPerL > 0 {
		b.FuelCost = types.RoundCents(route.DistanceKm / spec.FuelConsumptionKmPerL * cmd.FuelPrice)
	}
	b.MaintenanceCost = types.RoundCents(route.DistanceKm * spec.MaintenanceCostPerKm)
	b.DriverCost = types.RoundCents(route.DurationMin / 60.0 * spec.DriverCostPerHour)
	b.TollCost = types.RoundCents(route.TollCost * spec.TollMultiplier)
	b.OperationalCost = types.RoundCents(route.DistanceKm * s.operationalRate)

	if amount := route.Tariff.Lookup(cmd.FreightCategory, cmd.Axles, cmd.CargoType); amount > 0 {
		b.Basis = BasisTariff
		b.TariffCost = types.RoundCents(amount)
		b.TotalCost = types.RoundCents(b.TariffCost + b.TollCost)
	} else {
		b.TotalCost = types.RoundCents(b.FuelCost + b.MaintenanceCost + b.DriverCost + b.TollCost + b.OperationalCost)
	}

	b.Margin = types.RoundCents(b.TotalCost * cmd.MarginPercent / 100.0)
	b.FinalPrice = types.RoundCents(b.TotalCost + b.Margin)
	if route.DistanceKm > 0 {
		b.CostPerKm = types.RoundCents(b.TotalCost / route.DistanceKm)
	}
	return b
}

// defaultSpec is the built-in vehicle catalog; values are conservative
// Brazilian freight averages.
func defaultSpec(vehicleType string) VehicleSpec {
	switch vehicleType {
	case "truck", "caminhao":
		return VehicleSpec{
			VehicleType:           vehicleType,
			FuelConsumptionKmPerL: 3.5,
			MaintenanceCostPerKm:  0.85,
			DriverCostPerHour:     35.0,
			TollMultiplier:        2.0,
		}
	case "van":
		return VehicleSpec{
			VehicleType:           vehicleType,
			FuelConsumptionKmPerL: 8.0,
			MaintenanceCostPerKm:  0.45,
			DriverCostPerHour:     28.0,
			TollMultiplier:        1.0,
		}
	default:
		return VehicleSpec{
			VehicleType:           vehicleType,
			FuelConsumptionKmPerL: 10.0,
			MaintenanceCostPerKm:  0.30,
			DriverCostPerHour:     25.0,
			TollMultiplier:        1.0,
		}
	}
}
