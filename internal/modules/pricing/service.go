// README: Quote service: orchestrates routing, zone attribution and per-category composition.
package pricing

import (
	"context"
	"errors"
	"log"
	"strings"
	"sync/atomic"
	"time"

	"github.com/google/uuid"

	"tratta/internal/routing"
	"tratta/internal/types"
)

var ErrBadRequest = errors.New("bad request")

// Resolver is the routing capability the service consumes.
type Resolver interface {
	Resolve(ctx context.Context, pickup, dropoff types.Point, departAt time.Time) routing.Route
}

// Service computes price quotes. The pricing snapshot is swapped atomically
// on refresh; a request captures one snapshot and prices every category
// against it, so refreshes never tear a computation.
type Service struct {
	resolver   Resolver
	attributor *Attributor
	loader     *Loader
	snap       atomic.Pointer[Snapshot]
}

// NewService builds the service and loads the initial snapshot.
func NewService(ctx context.Context, resolver Resolver, attributor *Attributor, loader *Loader) *Service {
	s := &Service{resolver: resolver, attributor: attributor, loader: loader}
	s.snap.Store(loader.Build(ctx))
	return s
}

// Snapshot returns the pricing configuration currently served.
func (s *Service) Snapshot() *Snapshot {
	return s.snap.Load()
}

// Refresh rebuilds the snapshot from the configured sources and swaps it in
// for subsequent requests. Triggered on demand, never mid-computation.
func (s *Service) Refresh(ctx context.Context) {
	snap := s.loader.Build(ctx)
	s.snap.Store(snap)
	log.Printf("pricing: configuration refreshed, %d categories, %d zones",
		len(snap.Categories), len(snap.ZoneMultipliers))
}

// Quote prices the request for the named category, or for every configured
// category when none is given. Failures in one category never abort the
// siblings.
func (s *Service) Quote(ctx context.Context, req QuoteRequest) (QuoteResult, error) {
	if !req.Pickup.Valid() || !req.Dropoff.Valid() {
		return QuoteResult{}, ErrBadRequest
	}
	if req.Trip == 0 {
		req.Trip = TripOneWay
	}

	snap := s.snap.Load()

	categories := snap.Categories
	if c := strings.ToLower(strings.TrimSpace(req.VehicleCategory)); c != "" {
		categories = []string{c}
	}

	// The route and its zone attribution depend only on the one-way
	// coordinates; compute them once and share across categories.
	route := s.resolver.Resolve(ctx, req.Pickup, req.Dropoff, req.PickupAt)
	zoneKm := s.attributor.Attribute(route.Points)

	prices := make([]VehiclePrice, 0, len(categories))
	for _, category := range categories {
		raw := s.priceCategory(snap, composeInput{
			Pickup:   req.Pickup,
			Dropoff:  req.Dropoff,
			Category: resolveCategory(snap, category),
			PickupAt: req.PickupAt,
			Trip:     req.Trip,
			OneWayKm: route.DistanceKm,
			ZoneKm:   zoneKm,
		})
		prices = append(prices, VehiclePrice{
			Category: category,
			RawPrice: raw,
			Price:    RoundDisplay(raw),
			Currency: snap.Currency,
		})
	}
	EnforceDisplayHierarchy(prices, snap.DisplayTiers, snap.DisplayMargin)

	return QuoteResult{
		Prices: prices,
		Details: QuoteDetails{
			RequestID:       types.ID(uuid.NewString()),
			PickupTime:      req.PickupAt,
			PickupLocation:  req.Pickup,
			DropoffLocation: req.Dropoff,
			TripType:        req.Trip,
		},
	}, nil
}

// priceCategory composes one category's price. Any unexpected fault deep in
// composition degrades to the category's flat minimum fare (doubled for
// round-trip) instead of failing the request.
func (s *Service) priceCategory(snap *Snapshot, in composeInput) (price float64) {
	defer func() {
		if r := recover(); r != nil {
			log.Printf("pricing: composition fault for %s: %v, returning minimum fare", in.Category, r)
			price = round2(snap.flatMinFare(in.Category) * in.Trip.Factor())
		}
	}()

	var bd Breakdown
	price, bd = composePrice(snap, in)
	if bd.FixedPriceApplied || bd.MinFareApplied {
		log.Printf("pricing: %s %.2f %s (fixed=%t minfare=%t dist=%.1fkm)",
			in.Category, price, snap.Currency, bd.FixedPriceApplied, bd.MinFareApplied, bd.TotalDistanceKm)
	}
	return price
}

// resolveCategory maps an unknown category onto the first configured one.
// Lenient on purpose: an outdated client must still get a price.
func resolveCategory(snap *Snapshot, category string) string {
	if _, ok := snap.VehicleRates[category]; ok {
		return category
	}
	fallback := snap.Categories[0]
	log.Printf("pricing: unknown vehicle category %q, using %q", category, fallback)
	return fallback
}
