// README: Ledger service; registration, averages, estimate correction, and statistics.
package history

import (
	"context"
	"errors"
	"math"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"

	"rotacusto/internal/modules/pricing"
	"rotacusto/internal/types"
)

const (
	// minTripsForAdjustment gates the correction loop: below this the
	// ledger stays advisory.
	minTripsForAdjustment = 3
	// deviationThreshold is the relative cost-per-km gap beyond which the
	// estimate is corrected toward the observed average.
	deviationThreshold = 0.20
	// trendWindow is how many earliest/latest trips feed the trend means.
	trendWindow = 5
	// trendThreshold is the relative change that flips the trend label.
	trendThreshold = 0.10
)

var ErrBadTrip = errors.New("trip requires origin, destination, positive distance and cost")

type Service struct {
	store Store
	now   func() time.Time
}

func NewService(store Store) *Service {
	return &Service{store: store, now: time.Now}
}

// RegisterCommand is the inbound "register realized trip" operation.
type RegisterCommand struct {
	Origin        string
	Destination   string
	VehicleID     string
	DistanceKm    float64
	ActualCost    float64
	FuelConsumedL *float64
	DurationMin   *float64
	Date          time.Time
	Issues        []string
}

// Register appends one realized trip to the ledger.
func (s *Service) Register(ctx context.Context, cmd RegisterCommand) (types.ID, error) {
	origin := normalizePlace(cmd.Origin)
	destination := normalizePlace(cmd.Destination)
	if origin == "" || destination == "" || cmd.DistanceKm <= 0 || cmd.ActualCost <= 0 {
		return "", ErrBadTrip
	}
	date := cmd.Date
	if date.IsZero() {
		date = s.now()
	}
	t := Trip{
		ID:            types.ID(uuid.NewString()),
		Origin:        origin,
		Destination:   destination,
		VehicleID:     cmd.VehicleID,
		DistanceKm:    cmd.DistanceKm,
		ActualCost:    cmd.ActualCost,
		FuelConsumedL: cmd.FuelConsumedL,
		DurationMin:   cmd.DurationMin,
		Date:          date,
		Issues:        cmd.Issues,
	}
	if err := s.store.Append(ctx, t); err != nil {
		return "", err
	}
	return t.ID, nil
}

// Averages returns per-pair means, or ok=false when the pair has no data.
func (s *Service) Averages(ctx context.Context, origin, destination, vehicleID string) (Averages, bool, error) {
	trips, err := s.store.ListByPair(ctx, normalizePlace(origin), normalizePlace(destination), vehicleID)
	if err != nil {
		return Averages{}, false, err
	}
	if len(trips) == 0 {
		return Averages{}, false, nil
	}

	var costPerKm, distance, duration float64
	var durations int
	for _, t := range trips {
		if t.DistanceKm > 0 {
			costPerKm += t.ActualCost / t.DistanceKm
		}
		distance += t.DistanceKm
		if t.DurationMin != nil {
			duration += *t.DurationMin
			durations++
		}
	}
	avg := Averages{
		AvgCostPerKm:  types.RoundCents(costPerKm / float64(len(trips))),
		AvgDistanceKm: distance / float64(len(trips)),
		Count:         len(trips),
	}
	if durations > 0 {
		avg.AvgDurationMin = duration / float64(durations)
	}
	return avg, true, nil
}

// Adjust corrects a computed breakdown using observed outcomes for the
// pair. It never fails: with fewer than three historical trips, or a
// deviation within the threshold, the breakdown is left untouched.
func (s *Service) Adjust(ctx context.Context, b *pricing.Breakdown, distanceKm float64, origin, destination string) bool {
	if b == nil || distanceKm <= 0 {
		return false
	}
	avg, ok, err := s.Averages(ctx, origin, destination, "")
	if err != nil || !ok || avg.Count < minTripsForAdjustment {
		return false
	}

	estimated := b.TotalCost / distanceKm
	if estimated <= 0 {
		return false
	}
	deviation := math.Abs(avg.AvgCostPerKm-estimated) / estimated
	if deviation <= deviationThreshold {
		return false
	}

	ratio := avg.AvgCostPerKm / estimated
	b.TotalCost = types.RoundCents(b.TotalCost * ratio)
	b.Margin = types.RoundCents(b.Margin * ratio)
	b.FinalPrice = types.RoundCents(b.FinalPrice * ratio)
	b.CostPerKm = types.RoundCents(b.TotalCost / distanceKm)
	return true
}

// Statistics summarizes the pair's ledger: totals, means, a cost trend
// comparing the five earliest against the five most recent trips, and the
// tallied issue tags sorted by descending frequency.
func (s *Service) Statistics(ctx context.Context, origin, destination string) (Statistics, error) {
	trips, err := s.store.ListByPair(ctx, normalizePlace(origin), normalizePlace(destination), "")
	if err != nil {
		return Statistics{}, err
	}
	st := Statistics{TotalTrips: len(trips), CostTrend: TrendStable}
	if len(trips) == 0 {
		return st, nil
	}

	var cost, distance, duration float64
	var durations int
	issues := map[string]int{}
	for _, t := range trips {
		cost += t.ActualCost
		distance += t.DistanceKm
		if t.DurationMin != nil {
			duration += *t.DurationMin
			durations++
		}
		for _, issue := range t.Issues {
			if issue = strings.TrimSpace(issue); issue != "" {
				issues[issue]++
			}
		}
	}
	st.AverageCost = types.RoundCents(cost / float64(len(trips)))
	st.AverageDistance = distance / float64(len(trips))
	if durations > 0 {
		st.AverageDuration = duration / float64(durations)
	}
	st.CostTrend = trend(trips)

	for issue, n := range issues {
		st.CommonIssues = append(st.CommonIssues, IssueCount{Issue: issue, Count: n})
	}
	sort.Slice(st.CommonIssues, func(i, j int) bool {
		if st.CommonIssues[i].Count != st.CommonIssues[j].Count {
			return st.CommonIssues[i].Count > st.CommonIssues[j].Count
		}
		return st.CommonIssues[i].Issue < st.CommonIssues[j].Issue
	})
	return st, nil
}

// trend compares the mean cost of the earliest trendWindow trips against
// the most recent trendWindow trips. trips must be chronological.
func trend(trips []Trip) string {
	if len(trips) < 2 {
		return TrendStable
	}
	window := trendWindow
	if window > len(trips) {
		window = len(trips)
	}

	var early, late float64
	for _, t := range trips[:window] {
		early += t.ActualCost
	}
	for _, t := range trips[len(trips)-window:] {
		late += t.ActualCost
	}
	early /= float64(window)
	late /= float64(window)

	if early == 0 {
		return TrendStable
	}
	change := (late - early) / early
	switch {
	case change > trendThreshold:
		return TrendIncreasing
	case change < -trendThreshold:
		return TrendDecreasing
	default:
		return TrendStable
	}
}

func normalizePlace(s string) string {
	return strings.ToLower(strings.Join(strings.Fields(s), " "))
}
