// README: OSRM HTTP provider (secondary routing backend).
package routing

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"tratta/internal/types"
)

// OSRMProvider resolves driving routes through an OSRM instance's HTTP API.
type OSRMProvider struct {
	baseURL string
	client  *http.Client
}

// NewOSRMProvider creates an OSRMProvider for the given base URL
// (e.g. "https://router.project-osrm.org").
func NewOSRMProvider(baseURL string) *OSRMProvider {
	return &OSRMProvider{
		baseURL: strings.TrimRight(baseURL, "/"),
		client:  &http.Client{},
	}
}

func (p *OSRMProvider) Name() string { return string(SourceOSRM) }

type osrmResponse struct {
	Code   string `json:"code"`
	Routes []struct {
		Distance float64 `json:"distance"` // meters
		Duration float64 `json:"duration"` // seconds
		Geometry struct {
			Coordinates [][]float64 `json:"coordinates"` // [lng, lat]
		} `json:"geometry"`
	} `json:"routes"`
}

// Route queries /route/v1/driving with full GeoJSON geometry. OSRM has no
// departure-time parameter; the argument exists to satisfy Provider.
func (p *OSRMProvider) Route(ctx context.Context, pickup, dropoff types.Point, _ time.Time) (Route, error) {
	url := fmt.Sprintf("%s/route/v1/driving/%f,%f;%f,%f?overview=full&geometries=geojson",
		p.baseURL, pickup.Lng, pickup.Lat, dropoff.Lng, dropoff.Lat)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return Route{}, fmt.Errorf("build osrm request: %w", err)
	}
	resp, err := p.client.Do(req)
	if err != nil {
		return Route{}, fmt.Errorf("osrm request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return Route{}, fmt.Errorf("osrm status %d", resp.StatusCode)
	}

	var body osrmResponse
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return Route{}, fmt.Errorf("decode osrm response: %w", err)
	}
	if body.Code != "Ok" || len(body.Routes) == 0 {
		return Route{}, fmt.Errorf("osrm: no route (code %q)", body.Code)
	}

	r := body.Routes[0]
	if len(r.Geometry.Coordinates) == 0 {
		return Route{}, fmt.Errorf("osrm: empty geometry")
	}
	points := make([]types.Point, 0, len(r.Geometry.Coordinates))
	for _, c := range r.Geometry.Coordinates {
		if len(c) < 2 {
			continue
		}
		points = append(points, types.Point{Lat: c[1], Lng: c[0]})
	}
	if len(points) == 0 {
		return Route{}, fmt.Errorf("osrm: no usable coordinates")
	}

	return Route{
		DistanceKm:  r.Distance / 1000.0,
		DurationMin: r.Duration / 60.0,
		Points:      points,
		Source:      SourceOSRM,
	}, nil
}
