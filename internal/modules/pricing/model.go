// README: Cost model types; vehicle specs, cost basis variants, and breakdowns.
package pricing

import "rotacusto/internal/routing"

// VehicleSpec holds the per-vehicle cost parameters.
type VehicleSpec struct {
	VehicleType           string  `json:"vehicle_type"`
	FuelConsumptionKmPerL float64 `json:"fuel_consumption_km_per_l"`
	MaintenanceCostPerKm  float64 `json:"maintenance_cost_per_km"`
	DriverCostPerHour     float64 `json:"driver_cost_per_hour"`
	TollMultiplier        float64 `json:"toll_multiplier"`
}

// Route is one provider alternative in engine units (km / minutes).
type Route struct {
	ID          string
	DistanceKm  float64
	DurationMin float64
	Geometry    string
	TollCost    float64
	Tariff      *routing.TariffTable
	Degraded    bool
}

// RouteFromRaw converts a provider alternative into engine units.
func RouteFromRaw(raw routing.RawAlternative) Route {
	return Route{
		ID:          raw.ID,
		DistanceKm:  float64(raw.DistanceM) / 1000.0,
		DurationMin: float64(raw.DurationS) / 60.0,
		Geometry:    raw.Geometry,
		TollCost:    raw.TollCost,
		Tariff:      raw.Tariff,
		Degraded:    raw.Degraded,
	}
}

// Basis says where the total came from. A tariff basis means the official
// table governs the total; the displayed components are illustrative.
type Basis string

const (
	BasisSynthetic Basis = "synthetic"
	BasisTariff    Basis = "tariff"
)

// Breakdown is the full monetary decomposition of one alternative. Every
// field is rounded to cent precision at its derivation step.
type Breakdown struct {
	Basis           Basis   `json:"basis"`
	FuelCost        float64 `json:"fuel_cost"`
	MaintenanceCost float64 `json:"maintenance_cost"`
	DriverCost      float64 `json:"driver_cost"`
	TollCost        float64 `json:"toll_cost"`
	OperationalCost float64 `json:"operational_cost"`
	TariffCost      float64 `json:"tariff_cost,omitempty"`
	TotalCost       float64 `json:"total_cost"`
	MarginPercent   float64 `json:"margin_percent"`
	Margin          float64 `json:"margin"`
	FinalPrice      float64 `json:"final_price"`
	CostPerKm       float64 `json:"cost_per_km"`
}

// Costed pairs a route with its computed breakdown.
type Costed struct {
	Route     Route     `json:"route"`
	Breakdown Breakdown `json:"breakdown"`
}
