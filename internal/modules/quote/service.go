// README: Quote pipeline; canonicalize → cache → provider → cost → adjust → rank.
package quote

import (
	"context"
	"encoding/json"
	"errors"
	"log"
	"strings"

	"rotacusto/internal/modules/history"
	"rotacusto/internal/modules/pricing"
	"rotacusto/internal/modules/routecache"
	"rotacusto/internal/routing"
	"rotacusto/internal/types"
)

var ErrBadRequest = errors.New("origin and destination are required")

// Defaults carries request-level fallbacks owned by configuration.
type Defaults struct {
	FuelPricePerLiter float64
}

// Service runs the per-request pricing pipeline. It owns no mutable state
// of its own; the cache and ledger stores are the only shared resources.
type Service struct {
	cache    *routecache.Service
	provider routing.Provider
	pricing  *pricing.Service
	history  *history.Service
	defaults Defaults
}

func NewService(cache *routecache.Service, provider routing.Provider, pricingSvc *pricing.Service, historySvc *history.Service, defaults Defaults) *Service {
	return &Service{
		cache:    cache,
		provider: provider,
		pricing:  pricingSvc,
		history:  historySvc,
		defaults: defaults,
	}
}

// ComputePricing is the engine's single pricing operation.
func (s *Service) ComputePricing(ctx context.Context, req Request) (*Response, error) {
	if strings.TrimSpace(req.Origin) == "" || strings.TrimSpace(req.Destination) == "" {
		return nil, ErrBadRequest
	}

	params := routecache.Canonicalize(routecache.Params{
		Origin:          req.Origin,
		Destination:     req.Destination,
		Waypoints:       req.Waypoints,
		VehicleType:     req.VehicleType,
		VehicleAxles:    req.VehicleAxles,
		FreightCategory: req.FreightCategory,
		CargoType:       req.CargoType,
		UseTolls:        boolOrTrue(req.UseTolls),
		UseHighways:     boolOrTrue(req.UseHighways),
	})
	key := routecache.Key(params)

	raw, meta := s.fetchAlternatives(ctx, key, params, req.ForceUpdate)

	fuelPrice := req.FuelPricePerLiter
	if fuelPrice <= 0 {
		fuelPrice = s.defaults.FuelPricePerLiter
	}
	spec := s.pricing.Spec(ctx, params.VehicleType)

	costed := make([]pricing.Costed, len(raw))
	adjusted := make([]bool, len(raw))
	for i, r := range raw {
		route := pricing.RouteFromRaw(r)
		costed[i] = pricing.Costed{
			Route: route,
			Breakdown: s.pricing.Compute(pricing.ComputeCommand{
				Route:           route,
				Spec:            spec,
				MarginPercent:   req.ProfitMarginPercent,
				FreightCategory: params.FreightCategory,
				CargoType:       params.CargoType,
				Axles:           params.VehicleAxles,
				FuelPrice:       fuelPrice,
			}),
		}
	}

	var stats *history.Statistics
	if req.UseHistoricalData {
		for i := range costed {
			adjusted[i] = s.history.Adjust(ctx, &costed[i].Breakdown, costed[i].Route.DistanceKm, params.Origin, params.Destination)
		}
		if st, err := s.history.Statistics(ctx, params.Origin, params.Destination); err == nil && st.TotalTrips > 0 {
			stats = &st
		}
	}

	// Rank after adjustment so the comparison reflects corrected prices.
	ranking := pricing.Rank(costed)
	pricing.ApplyDisplayFactors(costed, ranking)
	comparison := pricing.Compare(costed, ranking)

	resp := &Response{
		Alternatives: make([]Alternative, len(costed)),
		Comparison:   comparison,
		Statistics:   stats,
		CacheMeta:    meta,
	}
	for i, c := range costed {
		resp.Alternatives[i] = Alternative{
			ID:          c.Route.ID,
			DistanceKm:  c.Route.DistanceKm,
			DurationMin: c.Route.DurationMin,
			Geometry:    c.Route.Geometry,
			Degraded:    c.Route.Degraded,
			Adjusted:    adjusted[i],
			Breakdown:   c.Breakdown,
		}
		if c.Route.Degraded {
			resp.Degraded = true
		}
	}
	return resp, nil
}

// fetchAlternatives resolves the provider payload, consulting the cache
// first. A provider round-trip enqueues a best-effort cache save.
func (s *Service) fetchAlternatives(ctx context.Context, key string, params routecache.Params, forceUpdate bool) ([]routing.RawAlternative, CacheMeta) {
	if entry, ok := s.cache.Find(ctx, key, forceUpdate); ok {
		var raw []routing.RawAlternative
		if err := json.Unmarshal(entry.Payload, &raw); err == nil && len(raw) > 0 {
			first, last := entry.FirstSeen, entry.LastSeen
			return raw, CacheMeta{
				FromCache: true,
				HitCount:  entry.HitCount,
				FirstSeen: &first,
				LastSeen:  &last,
			}
		}
		log.Printf("warn: cache payload unusable key=%s", key)
	}

	origin := s.geocode(ctx, params.Origin)
	dest := s.geocode(ctx, params.Destination)
	waypoints := make([]types.Point, 0, len(params.Waypoints))
	for _, w := range params.Waypoints {
		waypoints = append(waypoints, s.geocode(ctx, w))
	}

	raw, err := s.provider.Alternatives(ctx, origin, dest, waypoints, routing.VehicleParams{
		Type:        params.VehicleType,
		Axles:       params.VehicleAxles,
		CargoType:   params.CargoType,
		UseTolls:    params.UseTolls,
		UseHighways: params.UseHighways,
	})
	if err != nil {
		// Providers behind the resilient wrapper degrade instead; a hard
		// error here still must not fail the request.
		log.Printf("warn: provider error, synthesizing degraded estimate err=%v", err)
		raw = []routing.RawAlternative{routing.Degraded(origin, dest, waypoints)}
	}

	// Degraded estimates are never cached: a transient outage must not pin
	// a low-fidelity payload until cleanup.
	if !anyDegraded(raw) {
		if payload, err := json.Marshal(raw); err == nil {
			s.cache.Save(key, params, payload)
		}
	}
	return raw, CacheMeta{FromCache: false}
}

func (s *Service) geocode(ctx context.Context, address string) types.Point {
	p, err := s.provider.Geocode(ctx, address)
	if err != nil {
		// Resilient providers never return an error; a bare provider may.
		log.Printf("warn: geocode failed address=%q err=%v", address, err)
	}
	return p
}

// RegisterRealizedTrip appends a realized trip to the ledger, affecting
// subsequent ComputePricing calls for the same pair.
func (s *Service) RegisterRealizedTrip(ctx context.Context, cmd history.RegisterCommand) (types.ID, error) {
	return s.history.Register(ctx, cmd)
}

// CacheStats, MarkStale and CleanupCache expose cache maintenance to the
// API surface and the maintenance binary.
func (s *Service) CacheStats(ctx context.Context) (routecache.Stats, error) {
	return s.cache.Stats(ctx)
}

func (s *Service) MarkStale(ctx context.Context, key string) error {
	return s.cache.MarkStale(ctx, key)
}

func (s *Service) CleanupCache(ctx context.Context, maxAgeDays int) (int64, error) {
	return s.cache.Cleanup(ctx, maxAgeDays)
}

func boolOrTrue(b *bool) bool {
	return b == nil || *b
}

func anyDegraded(raw []routing.RawAlternative) bool {
	for _, r := range raw {
		if r.Degraded {
			return true
		}
	}
	return false
}
