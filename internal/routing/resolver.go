// README: Route resolution with a prioritized provider chain and straight-line fallback.
package routing

import (
	"context"
	"log"
	"time"

	"tratta/internal/geo"
	"tratta/internal/types"
)

// Source identifies which stage of the fallback chain produced a route.
type Source string

const (
	SourceGoogle       Source = "google"
	SourceOSRM         Source = "osrm"
	SourceInterpolated Source = "interpolated"
	SourceSinglePoint  Source = "single_point"
)

// Route is the result of resolving pickup→dropoff. Points always has at
// least one element and DistanceKm is never negative.
type Route struct {
	DistanceKm  float64
	DurationMin float64
	Points      []types.Point
	Source      Source
}

// Provider is an external routing backend: given two coordinates and a
// departure time it returns a route or an explicit error. Timeouts and
// malformed responses are errors, never panics.
type Provider interface {
	Name() string
	Route(ctx context.Context, pickup, dropoff types.Point, departAt time.Time) (Route, error)
}

const (
	// Trips shorter than this are not worth a provider round trip.
	minProviderTripKm = 0.1
	// Straight-line fallback granularity; bounds the zone-split error.
	defaultSegments = 20
	// Per-provider budget. A hung provider must not stall the request.
	defaultProviderTimeout = 5 * time.Second
	// Assumed average city speed for fallback duration estimates.
	fallbackSpeedKmh = 40.0
)

// Resolver walks a prioritized provider chain and degrades to linear
// interpolation. Resolve never fails.
type Resolver struct {
	providers []Provider
	segments  int
	timeout   time.Duration
}

func NewResolver(providers ...Provider) *Resolver {
	return &Resolver{
		providers: providers,
		segments:  defaultSegments,
		timeout:   defaultProviderTimeout,
	}
}

// WithSegments overrides the fallback interpolation granularity.
func (r *Resolver) WithSegments(n int) *Resolver {
	if n > 0 {
		r.segments = n
	}
	return r
}

// WithProviderTimeout overrides the per-provider call budget.
func (r *Resolver) WithProviderTimeout(d time.Duration) *Resolver {
	if d > 0 {
		r.timeout = d
	}
	return r
}

// Resolve obtains a route between pickup and dropoff. The chain is:
// identical points → single point; near-zero distance → two points;
// providers in order; straight-line interpolation as the last resort.
func (r *Resolver) Resolve(ctx context.Context, pickup, dropoff types.Point, departAt time.Time) Route {
	if pickup == dropoff {
		return Route{Points: []types.Point{pickup}, Source: SourceSinglePoint}
	}

	direct := geo.HaversineKm(pickup, dropoff)
	if direct < minProviderTripKm {
		return Route{
			DistanceKm:  direct,
			DurationMin: direct / fallbackSpeedKmh * 60,
			Points:      []types.Point{pickup, dropoff},
			Source:      SourceInterpolated,
		}
	}

	for _, p := range r.providers {
		pctx, cancel := context.WithTimeout(ctx, r.timeout)
		route, err := p.Route(pctx, pickup, dropoff, departAt)
		cancel()
		if err != nil {
			log.Printf("routing: provider %s failed: %v", p.Name(), err)
			continue
		}
		if len(route.Points) == 0 || route.DistanceKm <= 0 {
			log.Printf("routing: provider %s returned no usable geometry", p.Name())
			continue
		}
		return route
	}

	return Route{
		DistanceKm:  direct,
		DurationMin: direct / fallbackSpeedKmh * 60,
		Points:      geo.Interpolate(pickup, dropoff, r.segments),
		Source:      SourceInterpolated,
	}
}
