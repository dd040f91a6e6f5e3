// README: Pricing request/response shapes for the quote pipeline.
package quote

import (
	"time"

	"rotacusto/internal/modules/history"
	"rotacusto/internal/modules/pricing"
)

// Request is the inbound "compute route pricing" operation. Optional
// fields left zero get canonical defaults; Booleans are pointers so an
// omitted flag defaults to true.
type Request struct {
	Origin              string   `json:"origin"`
	Destination         string   `json:"destination"`
	Waypoints           []string `json:"waypoints,omitempty"`
	VehicleType         string   `json:"vehicle_type"`
	VehicleAxles        string   `json:"vehicle_axles,omitempty"`
	FuelPricePerLiter   float64  `json:"fuel_price_per_liter,omitempty"`
	ProfitMarginPercent float64  `json:"profit_margin_percent"`
	FreightCategory     string   `json:"freight_category,omitempty"`
	CargoType           string   `json:"cargo_type,omitempty"`
	UseTolls            *bool    `json:"use_tolls,omitempty"`
	UseHighways         *bool    `json:"use_highways,omitempty"`
	UseHistoricalData   bool     `json:"use_historical_data"`
	ForceUpdate         bool     `json:"force_update"`
}

// Alternative is one costed route in the response.
type Alternative struct {
	ID          string            `json:"id"`
	DistanceKm  float64           `json:"distance_km"`
	DurationMin float64           `json:"duration_min"`
	Geometry    string            `json:"geometry,omitempty"`
	Degraded    bool              `json:"degraded,omitempty"`
	Adjusted    bool              `json:"adjusted,omitempty"`
	Breakdown   pricing.Breakdown `json:"breakdown"`
}

// CacheMeta reports how the provider payload was obtained.
type CacheMeta struct {
	FromCache bool       `json:"from_cache"`
	HitCount  int64      `json:"hit_count"`
	FirstSeen *time.Time `json:"first_seen,omitempty"`
	LastSeen  *time.Time `json:"last_seen,omitempty"`
}

// Response is the full pricing answer.
type Response struct {
	Alternatives []Alternative           `json:"alternatives"`
	Comparison   []pricing.ComparisonRow `json:"comparison"`
	Statistics   *history.Statistics     `json:"statistics,omitempty"`
	CacheMeta    CacheMeta               `json:"cache_meta"`
	Degraded     bool                    `json:"degraded,omitempty"`
}
