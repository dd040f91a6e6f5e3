// README: QualP provider; freight routing API with toll totals and official tariff table.
package routing

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"strings"
	"time"

	"rotacusto/internal/types"
)

// QualPProvider calls the QualP freight routing API, which returns route
// alternatives together with toll totals and the ANTT minimum freight
// tariff for the lane.
type QualPProvider struct {
	baseURL string
	apiKey  string
	session *http.Client
}

func NewQualPProvider(baseURL, apiKey string) *QualPProvider {
	return &QualPProvider{
		baseURL: strings.TrimRight(baseURL, "/"),
		apiKey:  apiKey,
		session: &http.Client{Timeout: 15 * time.Second},
	}
}

type qualpGeocodeResponse struct {
	Results []struct {
		Lat float64 `json:"lat"`
		Lng float64 `json:"lng"`
	} `json:"results"`
}

type qualpRouteResponse struct {
	Routes []struct {
		DistanceM int     `json:"distance"`
		DurationS int     `json:"duration"`
		Polyline  string  `json:"polyline"`
		TollTotal float64 `json:"toll_total"`
		Tariff    []struct {
			Category  string  `json:"category"`
			Axles     string  `json:"axles"`
			CargoType string  `json:"cargo_type"`
			Amount    float64 `json:"amount"`
		} `json:"antt_tariff"`
	} `json:"routes"`
}

func (p *QualPProvider) Geocode(ctx context.Context, address string) (types.Point, error) {
	req, err := p.newRequest(ctx, http.MethodGet, p.baseURL+"/geocode", nil)
	if err != nil {
		return types.Point{}, err
	}
	q := req.URL.Query()
	q.Set("address", address)
	req.URL.RawQuery = q.Encode()

	resp, err := p.doWithRetry(ctx, req)
	if err != nil {
		return types.Point{}, fmt.Errorf("qualp geocode %q: %w", address, err)
	}
	defer resp.Body.Close()

	var decoded qualpGeocodeResponse
	if err := json.NewDecoder(resp.Body).Decode(&decoded); err != nil {
		return types.Point{}, fmt.Errorf("qualp geocode: decode: %w", err)
	}
	if len(decoded.Results) == 0 {
		return types.Point{}, fmt.Errorf("qualp geocode %q: no results", address)
	}
	return types.Point{Lat: decoded.Results[0].Lat, Lng: decoded.Results[0].Lng}, nil
}

func (p *QualPProvider) Alternatives(ctx context.Context, origin, dest types.Point, waypoints []types.Point, vehicle VehicleParams) ([]RawAlternative, error) {
	body := map[string]any{
		"origin":      map[string]float64{"lat": origin.Lat, "lng": origin.Lng},
		"destination": map[string]float64{"lat": dest.Lat, "lng": dest.Lng},
		"vehicle": map[string]string{
			"type":       vehicle.Type,
			"axles":      vehicle.Axles,
			"cargo_type": vehicle.CargoType,
		},
		"alternatives": true,
		"use_tolls":    vehicle.UseTolls,
		"use_highways": vehicle.UseHighways,
	}
	if len(waypoints) > 0 {
		wps := make([]map[string]float64, len(waypoints))
		for i, w := range waypoints {
			wps[i] = map[string]float64{"lat": w.Lat, "lng": w.Lng}
		}
		body["waypoints"] = wps
	}
	payload, err := json.Marshal(body)
	if err != nil {
		return nil, fmt.Errorf("qualp routes: marshal: %w", err)
	}

	req, err := p.newRequest(ctx, http.MethodPost, p.baseURL+"/routes", bytes.NewReader(payload))
	if err != nil {
		return nil, err
	}

	resp, err := p.doWithRetry(ctx, req)
	if err != nil {
		return nil, fmt.Errorf("qualp routes: %w", err)
	}
	defer resp.Body.Close()

	var decoded qualpRouteResponse
	if err := json.NewDecoder(resp.Body).Decode(&decoded); err != nil {
		return nil, fmt.Errorf("qualp routes: decode: %w", err)
	}
	if len(decoded.Routes) == 0 {
		return nil, errors.New("qualp routes: no route found")
	}

	alts := make([]RawAlternative, 0, len(decoded.Routes))
	for i, r := range decoded.Routes {
		alt := RawAlternative{
			ID:        fmt.Sprintf("route-%d", i+1),
			DistanceM: r.DistanceM,
			DurationS: r.DurationS,
			Geometry:  r.Polyline,
			TollCost:  types.RoundCents(r.TollTotal),
		}
		if len(r.Tariff) > 0 {
			table := &TariffTable{Rates: make([]TariffRate, len(r.Tariff))}
			for j, t := range r.Tariff {
				table.Rates[j] = TariffRate{
					Category:  t.Category,
					Axles:     t.Axles,
					CargoType: t.CargoType,
					Amount:    t.Amount,
				}
			}
			alt.Tariff = table
		}
		alts = append(alts, alt)
	}
	return alts, nil
}

func (p *QualPProvider) newRequest(ctx context.Context, method, url string, body io.Reader) (*http.Request, error) {
	req, err := http.NewRequestWithContext(ctx, method, url, body)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Authorization", p.apiKey)
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	return req, nil
}

type httpStatusError struct {
	Code int
	Body string
}

func (e *httpStatusError) Error() string {
	return fmt.Sprintf("status %d: %s", e.Code, e.Body)
}

// doWithRetry retries transient failures (network errors, 429/5xx) with
// exponential backoff while respecting context cancellation. The request
// body, if any, must be rewindable; callers pass bytes.Reader.
func (p *QualPProvider) doWithRetry(ctx context.Context, req *http.Request) (*http.Response, error) {
	const maxAttempts = 3
	backoff := 200 * time.Millisecond

	var lastErr error
	for attempt := 1; attempt <= maxAttempts; attempt++ {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		attemptReq := req
		if req.Body != nil && req.GetBody != nil {
			b, err := req.GetBody()
			if err != nil {
				return nil, err
			}
			attemptReq = req.Clone(ctx)
			attemptReq.Body = b
		}

		resp, err := p.session.Do(attemptReq)
		if err == nil && resp.StatusCode < 400 {
			return resp, nil
		}
		if err == nil {
			b, _ := io.ReadAll(resp.Body)
			resp.Body.Close()
			err = &httpStatusError{Code: resp.StatusCode, Body: strings.TrimSpace(string(b))}
		}
		lastErr = err

		retry := false
		var he *httpStatusError
		if errors.As(err, &he) {
			switch he.Code {
			case 429, 500, 502, 503, 504:
				retry = true
			}
		}
		var netErr net.Error
		if !retry && errors.As(err, &netErr) {
			retry = true
		}
		if !retry || attempt == maxAttempts {
			return nil, lastErr
		}

		timer := time.NewTimer(backoff)
		select {
		case <-ctx.Done():
			timer.Stop()
			return nil, ctx.Err()
		case <-timer.C:
		}
		backoff *= 2
	}
	return nil, lastErr
}
