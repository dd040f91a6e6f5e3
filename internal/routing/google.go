// README: Google Maps provider; geocoding and driving directions with alternatives.
package routing

import (
	"context"
	"fmt"

	"googlemaps.github.io/maps"

	"rotacusto/internal/types"
)

// tollRatePer100Km approximates Brazilian highway toll spend; the
// Directions API reports toll roads but not toll amounts.
const tollRatePer100Km = 12.50

// GoogleProvider talks to the Google Maps API.
type GoogleProvider struct {
	client *maps.Client
	region string
}

// NewGoogleProvider creates a provider with the given API key. region
// biases geocoding results (e.g. "BR").
func NewGoogleProvider(apiKey, region string) (*GoogleProvider, error) {
	client, err := maps.NewClient(maps.WithAPIKey(apiKey))
	if err != nil {
		return nil, fmt.Errorf("create maps client: %w", err)
	}
	return &GoogleProvider{client: client, region: region}, nil
}

func (p *GoogleProvider) Geocode(ctx context.Context, address string) (types.Point, error) {
	results, err := p.client.Geocode(ctx, &maps.GeocodingRequest{
		Address: address,
		Region:  p.region,
	})
	if err != nil {
		return types.Point{}, fmt.Errorf("geocode %q: %w", address, err)
	}
	if len(results) == 0 {
		return types.Point{}, fmt.Errorf("geocode %q: no results", address)
	}
	loc := results[0].Geometry.Location
	return types.Point{Lat: loc.Lat, Lng: loc.Lng}, nil
}

func (p *GoogleProvider) Alternatives(ctx context.Context, origin, dest types.Point, waypoints []types.Point, vehicle VehicleParams) ([]RawAlternative, error) {
	req := &maps.DirectionsRequest{
		Origin:       fmt.Sprintf("%f,%f", origin.Lat, origin.Lng),
		Destination:  fmt.Sprintf("%f,%f", dest.Lat, dest.Lng),
		Mode:         maps.TravelModeDriving,
		Region:       p.region,
		Alternatives: len(waypoints) == 0, // the API rejects alternatives with waypoints
	}
	if !vehicle.UseTolls {
		req.Avoid = append(req.Avoid, maps.AvoidTolls)
	}
	if !vehicle.UseHighways {
		req.Avoid = append(req.Avoid, maps.AvoidHighways)
	}
	for _, w := range waypoints {
		req.Waypoints = append(req.Waypoints, fmt.Sprintf("%f,%f", w.Lat, w.Lng))
	}

	routes, _, err := p.client.Directions(ctx, req)
	if err != nil {
		return nil, fmt.Errorf("directions: %w", err)
	}
	if len(routes) == 0 {
		return nil, fmt.Errorf("directions: no route found")
	}

	alts := make([]RawAlternative, 0, len(routes))
	for i, r := range routes {
		var distanceM, durationS int
		for _, leg := range r.Legs {
			distanceM += leg.Distance.Meters
			durationS += int(leg.Duration.Seconds())
		}
		var tollCost float64
		if vehicle.UseTolls {
			tollCost = types.RoundCents(float64(distanceM) / 1000.0 / 100.0 * tollRatePer100Km)
		}
		alts = append(alts, RawAlternative{
			ID:        fmt.Sprintf("route-%d", i+1),
			DistanceM: distanceM,
			DurationS: durationS,
			Geometry:  r.OverviewPolyline.Points,
			TollCost:  tollCost,
		})
	}
	return alts, nil
}
