// README: Google Maps Directions provider (primary routing backend).
package routing

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"googlemaps.github.io/maps"

	"tratta/internal/types"
)

// GoogleProvider resolves driving routes through the Google Maps API.
type GoogleProvider struct {
	client *maps.Client
}

// NewGoogleProvider creates a GoogleProvider with the given API key.
func NewGoogleProvider(apiKey string) (*GoogleProvider, error) {
	client, err := maps.NewClient(maps.WithAPIKey(apiKey))
	if err != nil {
		return nil, fmt.Errorf("failed to create maps client: %w", err)
	}
	return &GoogleProvider{client: client}, nil
}

func (p *GoogleProvider) Name() string { return string(SourceGoogle) }

// Route asks the Directions API for a driving route and decodes the overview
// polyline into the route point sequence.
func (p *GoogleProvider) Route(ctx context.Context, pickup, dropoff types.Point, departAt time.Time) (Route, error) {
	req := &maps.DirectionsRequest{
		Origin:      fmt.Sprintf("%f,%f", pickup.Lat, pickup.Lng),
		Destination: fmt.Sprintf("%f,%f", dropoff.Lat, dropoff.Lng),
		Mode:        maps.TravelModeDriving,
	}
	if !departAt.IsZero() && departAt.After(time.Now()) {
		req.DepartureTime = strconv.FormatInt(departAt.Unix(), 10)
	}

	routes, _, err := p.client.Directions(ctx, req)
	if err != nil {
		return Route{}, fmt.Errorf("maps api error: %w", err)
	}
	if len(routes) == 0 || len(routes[0].Legs) == 0 {
		return Route{}, fmt.Errorf("no route found")
	}

	var meters int
	var duration time.Duration
	for _, leg := range routes[0].Legs {
		meters += leg.Distance.Meters
		duration += leg.Duration
	}

	decoded, err := maps.DecodePolyline(routes[0].OverviewPolyline.Points)
	if err != nil {
		return Route{}, fmt.Errorf("decode polyline: %w", err)
	}
	if len(decoded) == 0 {
		return Route{}, fmt.Errorf("empty polyline")
	}
	points := make([]types.Point, len(decoded))
	for i, ll := range decoded {
		points[i] = types.Point{Lat: ll.Lat, Lng: ll.Lng}
	}

	return Route{
		DistanceKm:  float64(meters) / 1000.0,
		DurationMin: duration.Minutes(),
		Points:      points,
		Source:      SourceGoogle,
	}, nil
}
