package routing

import (
	"context"
	"errors"
	"testing"
	"time"

	"rotacusto/internal/types"
)

type stubProvider struct {
	point   types.Point
	geoErr  error
	alts    []RawAlternative
	altsErr error
}

func (p *stubProvider) Geocode(context.Context, string) (types.Point, error) {
	return p.point, p.geoErr
}

func (p *stubProvider) Alternatives(context.Context, types.Point, types.Point, []types.Point, VehicleParams) ([]RawAlternative, error) {
	return p.alts, p.altsErr
}

var (
	saoPaulo = types.Point{Lat: -23.5505, Lng: -46.6333}
	curitiba = types.Point{Lat: -25.4284, Lng: -49.2733}
)

func TestResilientGeocodeFallsBack(t *testing.T) {
	r := NewResilient(&stubProvider{geoErr: errors.New("quota exceeded")}, time.Second)
	p, err := r.Geocode(context.Background(), "Curitiba")
	if err != nil {
		t.Fatalf("resilient geocode must not fail: %v", err)
	}
	if p != fallbackPoint {
		t.Errorf("point = %+v, want fallback %+v", p, fallbackPoint)
	}
}

func TestResilientGeocodePassesThrough(t *testing.T) {
	r := NewResilient(&stubProvider{point: curitiba}, time.Second)
	p, err := r.Geocode(context.Background(), "Curitiba")
	if err != nil || p != curitiba {
		t.Fatalf("p=%+v err=%v", p, err)
	}
}

func TestResilientAlternativesDegrade(t *testing.T) {
	r := NewResilient(&stubProvider{altsErr: errors.New("timeout")}, time.Second)
	alts, err := r.Alternatives(context.Background(), saoPaulo, curitiba, nil, VehicleParams{})
	if err != nil {
		t.Fatalf("resilient alternatives must not fail: %v", err)
	}
	if len(alts) != 1 || !alts[0].Degraded {
		t.Fatalf("alts = %+v", alts)
	}
}

func TestDegradedEstimate(t *testing.T) {
	alt := Degraded(saoPaulo, curitiba, nil)

	if alt.ID != "degraded-1" || !alt.Degraded {
		t.Errorf("identity: %+v", alt)
	}
	// Great-circle SP–Curitiba is ~339 km; with the road factor the estimate
	// must land between that floor and a generous road ceiling.
	km := float64(alt.DistanceM) / 1000
	if km < 339 || km > 550 {
		t.Errorf("distance = %.1f km", km)
	}
	wantDuration := km / degradedSpeedKmH * 3600
	if diff := float64(alt.DurationS) - wantDuration; diff < -1 || diff > 1 {
		t.Errorf("duration = %ds, want ~%.0fs at %v km/h", alt.DurationS, wantDuration, degradedSpeedKmH)
	}
	if alt.TollCost != 0 || alt.Tariff != nil {
		t.Errorf("degraded estimate must carry no toll or tariff data: %+v", alt)
	}
}

func TestDegradedEstimateWithWaypoints(t *testing.T) {
	direct := Degraded(saoPaulo, curitiba, nil)
	detour := Degraded(saoPaulo, curitiba, []types.Point{{Lat: -23.9608, Lng: -46.3336}})
	if detour.DistanceM <= direct.DistanceM {
		t.Errorf("detour %.1f km should exceed direct %.1f km",
			float64(detour.DistanceM)/1000, float64(direct.DistanceM)/1000)
	}
}

func TestTariffLookupDefaults(t *testing.T) {
	table := &TariffTable{Rates: []TariffRate{
		{Category: "A", Axles: "6", CargoType: "geral", Amount: 1850.00},
		{Category: "A", Axles: "all", CargoType: "geral", Amount: 1500.00},
	}}

	if got := table.Lookup("A", "6", "geral"); got != 1850.00 {
		t.Errorf("exact axle lookup = %.2f", got)
	}
	if got := table.Lookup("A", "9", "geral"); got != 1500.00 {
		t.Errorf("axle fallback = %.2f", got)
	}
	if got := table.Lookup("B", "6", "geral"); got != 0 {
		t.Errorf("unknown category = %.2f", got)
	}
	var nilTable *TariffTable
	if got := nilTable.Lookup("A", "6", "geral"); got != 0 {
		t.Errorf("nil table = %.2f", got)
	}
}
