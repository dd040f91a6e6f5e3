// README: Degrading wrapper; bounds provider calls and synthesizes fallback estimates.
package routing

import (
	"context"
	"log"
	"time"

	"rotacusto/internal/types"
)

const (
	// roadFactor converts great-circle distance into an approximate road
	// distance for the degraded estimate.
	roadFactor = 1.3
	// degradedSpeedKmH is the assumed average highway speed.
	degradedSpeedKmH = 60.0
)

// fallbackPoint is returned when geocoding fails entirely (São Paulo
// city center). Accuracy risk is accepted: a degraded quote is preferred
// over a failed request.
var fallbackPoint = types.Point{Lat: -23.5505, Lng: -46.6333}

// Resilient wraps a Provider so that provider failures degrade instead of
// failing the whole pricing request. Calls are bounded by timeout.
type Resilient struct {
	inner   Provider
	timeout time.Duration
}

func NewResilient(inner Provider, timeout time.Duration) *Resilient {
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &Resilient{inner: inner, timeout: timeout}
}

// Geocode never fails: on provider error the fixed fallback coordinate is
// returned and a warning logged.
func (r *Resilient) Geocode(ctx context.Context, address string) (types.Point, error) {
	ctx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()

	p, err := r.inner.Geocode(ctx, address)
	if err != nil {
		log.Printf("warn: geocode fallback address=%q err=%v", address, err)
		return fallbackPoint, nil
	}
	return p, nil
}

// Alternatives returns the provider's routes, or exactly one synthesized
// degraded alternative when the provider fails or times out.
func (r *Resilient) Alternatives(ctx context.Context, origin, dest types.Point, waypoints []types.Point, vehicle VehicleParams) ([]RawAlternative, error) {
	ctx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()

	alts, err := r.inner.Alternatives(ctx, origin, dest, waypoints, vehicle)
	if err != nil {
		log.Printf("warn: provider degraded origin=%v dest=%v err=%v", origin, dest, err)
		return []RawAlternative{Degraded(origin, dest, waypoints)}, nil
	}
	return alts, nil
}

// Degraded builds the single low-fidelity alternative used when the
// provider is unreachable: haversine legs scaled by a road factor, with a
// fixed average speed and no toll or tariff data.
func Degraded(origin, dest types.Point, waypoints []types.Point) RawAlternative {
	legs := append([]types.Point{origin}, waypoints...)
	legs = append(legs, dest)

	var km float64
	for i := 1; i < len(legs); i++ {
		km += haversineKm(legs[i-1].Lat, legs[i-1].Lng, legs[i].Lat, legs[i].Lng)
	}
	km *= roadFactor

	return RawAlternative{
		ID:        "degraded-1",
		DistanceM: int(km * 1000),
		DurationS: int(km / degradedSpeedKmH * 3600),
		Degraded:  true,
	}
}
