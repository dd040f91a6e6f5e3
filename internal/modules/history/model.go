// README: Historical trip ledger types; realized trips are append-only.
package history

import (
	"time"

	"rotacusto/internal/types"
)

// Trip is one realized trip outcome. Created exactly once via Register
// and never mutated or deleted.
type Trip struct {
	ID            types.ID  `json:"id"`
	Origin        string    `json:"origin"`
	Destination   string    `json:"destination"`
	VehicleID     string    `json:"vehicle_id"`
	DistanceKm    float64   `json:"distance_km"`
	ActualCost    float64   `json:"actual_cost"`
	FuelConsumedL *float64  `json:"fuel_consumed_l,omitempty"`
	DurationMin   *float64  `json:"duration_min,omitempty"`
	Date          time.Time `json:"date"`
	Issues        []string  `json:"issues,omitempty"`
}

// Averages summarizes the ledger for one (origin, destination) pair.
type Averages struct {
	AvgCostPerKm   float64 `json:"avg_cost_per_km"`
	AvgDistanceKm  float64 `json:"avg_distance_km"`
	AvgDurationMin float64 `json:"avg_duration_min"`
	Count          int     `json:"count"`
}

// IssueCount is one tallied free-text issue tag.
type IssueCount struct {
	Issue string `json:"issue"`
	Count int    `json:"count"`
}

// Trend values for Statistics.CostTrend.
const (
	TrendIncreasing = "increasing"
	TrendDecreasing = "decreasing"
	TrendStable     = "stable"
)

// Statistics is the per-pair ledger summary exposed to callers.
type Statistics struct {
	TotalTrips      int          `json:"total_trips"`
	AverageCost     float64      `json:"average_cost"`
	AverageDistance float64      `json:"average_distance"`
	AverageDuration float64      `json:"average_duration"`
	CostTrend       string       `json:"cost_trend"`
	CommonIssues    []IssueCount `json:"common_issues,omitempty"`
}
