// README: Route comparator; ranks costed alternatives and builds the comparison table.
package pricing

import (
	"math"

	"rotacusto/internal/types"
)

// Kind labels an alternative's role in the ranking. One alternative may
// hold several labels (a single route is all three).
type Kind string

const (
	KindCheapest  Kind = "cheapest"
	KindFastest   Kind = "fastest"
	KindEfficient Kind = "most_efficient"
)

// Ranking holds the winning index per criterion.
type Ranking struct {
	Cheapest  int `json:"cheapest"`
	Fastest   int `json:"fastest"`
	Efficient int `json:"most_efficient"`
}

// ComparisonRow relates one alternative to the per-criterion winners.
type ComparisonRow struct {
	RouteID         string  `json:"route_id"`
	FinalPrice      float64 `json:"final_price"`
	DurationMin     float64 `json:"duration_min"`
	CostDelta       float64 `json:"cost_delta"`
	TimeDelta       float64 `json:"time_delta"`
	EfficiencyScore float64 `json:"efficiency_score"`
	Kinds           []Kind  `json:"kinds,omitempty"`
}

// Rank selects the cheapest (min final price), fastest (min duration) and
// most efficient (min price per minute) alternatives. Ties keep the first.
func Rank(costed []Costed) Ranking {
	r := Ranking{}
	for i, c := range costed {
		if c.Breakdown.FinalPrice < costed[r.Cheapest].Breakdown.FinalPrice {
			r.Cheapest = i
		}
		if c.Route.DurationMin < costed[r.Fastest].Route.DurationMin {
			r.Fastest = i
		}
		if efficiency(c) < efficiency(costed[r.Efficient]) {
			r.Efficient = i
		}
	}
	return r
}

// Compare builds one comparison row per alternative against the winners.
func Compare(costed []Costed, r Ranking) []ComparisonRow {
	if len(costed) == 0 {
		return nil
	}
	cheapest := costed[r.Cheapest].Breakdown.FinalPrice
	fastest := costed[r.Fastest].Route.DurationMin

	rows := make([]ComparisonRow, len(costed))
	for i, c := range costed {
		score := efficiency(c)
		if math.IsInf(score, 1) {
			// keep the row JSON-encodable
			score = 0
		}
		rows[i] = ComparisonRow{
			RouteID:         c.Route.ID,
			FinalPrice:      c.Breakdown.FinalPrice,
			DurationMin:     c.Route.DurationMin,
			CostDelta:       types.RoundCents(c.Breakdown.FinalPrice - cheapest),
			TimeDelta:       c.Route.DurationMin - fastest,
			EfficiencyScore: score,
			Kinds:           kindsOf(i, r),
		}
	}
	return rows
}

// Display multipliers for tariff-based breakdowns: the official total hides
// the real component spread, so the shown fuel/maintenance components are
// scaled relative to the cheapest baseline. Totals are never touched.
const (
	fastestFuelFactor          = 1.25
	fastestMaintenanceFactor   = 1.15
	efficientFuelFactor        = 1.10
	efficientMaintenanceFactor = 1.05
)

// ApplyDisplayFactors rewrites the displayed fuel/maintenance components of
// tariff-based alternatives according to their ranking kind.
func ApplyDisplayFactors(costed []Costed, r Ranking) {
	if len(costed) == 0 {
		return
	}
	baseFuel := costed[r.Cheapest].Breakdown.FuelCost
	baseMaint := costed[r.Cheapest].Breakdown.MaintenanceCost

	for i := range costed {
		if costed[i].Breakdown.Basis != BasisTariff || i == r.Cheapest {
			continue
		}
		switch {
		case i == r.Fastest:
			costed[i].Breakdown.FuelCost = types.RoundCents(baseFuel * fastestFuelFactor)
			costed[i].Breakdown.MaintenanceCost = types.RoundCents(baseMaint * fastestMaintenanceFactor)
		case i == r.Efficient:
			costed[i].Breakdown.FuelCost = types.RoundCents(baseFuel * efficientFuelFactor)
			costed[i].Breakdown.MaintenanceCost = types.RoundCents(baseMaint * efficientMaintenanceFactor)
		}
	}
}

// efficiency is price per minute. A non-positive duration ranks as the
// worst possible candidate rather than a free win.
func efficiency(c Costed) float64 {
	if c.Route.DurationMin <= 0 {
		return math.Inf(1)
	}
	return types.RoundCents(c.Breakdown.FinalPrice / c.Route.DurationMin)
}

func kindsOf(i int, r Ranking) []Kind {
	var kinds []Kind
	if i == r.Cheapest {
		kinds = append(kinds, KindCheapest)
	}
	if i == r.Fastest {
		kinds = append(kinds, KindFastest)
	}
	if i == r.Efficient {
		kinds = append(kinds, KindEfficient)
	}
	return kinds
}
