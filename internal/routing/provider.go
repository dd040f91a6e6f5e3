// README: Routing provider boundary; adapters return raw route alternatives.
package routing

import (
	"context"

	"rotacusto/internal/types"
)

// VehicleParams carries the vehicle attributes and route preferences a
// provider may use to shape routes and tariff lookups.
type VehicleParams struct {
	Type        string
	Axles       string // "2", "3", ... or "all"
	CargoType   string
	UseTolls    bool
	UseHighways bool
}

// TariffRate is one row of the official freight tariff table for a lane:
// (category, axle count, cargo type) -> base amount in BRL.
type TariffRate struct {
	Category  string
	Axles     string
	CargoType string
	Amount    float64
}

// TariffTable is the authoritative tariff reference a provider may attach
// to an alternative. A nil table means the cost model synthesizes the cost.
type TariffTable struct {
	Rates []TariffRate
}

// Lookup returns the amount for the given combination, falling back to an
// "all"-axles row, and 0 when no row matches.
func (t *TariffTable) Lookup(category, axles, cargoType string) float64 {
	if t == nil {
		return 0
	}
	var allAxles float64
	for _, r := range t.Rates {
		if r.Category != category || r.CargoType != cargoType {
			continue
		}
		if r.Axles == axles {
			return r.Amount
		}
		if r.Axles == "all" {
			allAxles = r.Amount
		}
	}
	return allAxles
}

// RawAlternative is one provider route before costing.
type RawAlternative struct {
	ID        string
	DistanceM int
	DurationS int
	Geometry  string // opaque encoded polyline
	TollCost  float64
	Tariff    *TariffTable
	Degraded  bool // synthesized from heuristics, not a provider quote
}

// Provider is implemented by external routing/geocoding services.
type Provider interface {
	Geocode(ctx context.Context, address string) (types.Point, error)
	Alternatives(ctx context.Context, origin, dest types.Point, waypoints []types.Point, vehicle VehicleParams) ([]RawAlternative, error)
}
