// README: Price composition: zone rates, time/surge multipliers, round-trip doubling, minimum fares.
package pricing

import (
	"log"
	"math"
	"time"

	"tratta/internal/types"
)

// composeInput carries everything a single category's price depends on. The
// route and zone attribution are computed once per request on the one-way
// coordinates and shared by every category.
type composeInput struct {
	Pickup   types.Point
	Dropoff  types.Point
	Category string // must be a configured category
	PickupAt time.Time
	Trip     TripType
	OneWayKm float64
	ZoneKm   map[string]float64
}

// Breakdown records which policy branches fired, for logging and tests.
type Breakdown struct {
	FixedPriceApplied bool
	MinFareApplied    bool
	TotalDistanceKm   float64
	TimeMultiplier    float64
	SurgeMultiplier   float64
}

// composePrice applies the pricing policy in strict precedence order:
// zero-distance flat minimum, fixed-price override, per-zone base price with
// round-trip doubling, time multipliers, surge, distance-tiered minimum fare
// floor, rounding to cents.
func composePrice(snap *Snapshot, in composeInput) (float64, Breakdown) {
	bd := Breakdown{TotalDistanceKm: in.OneWayKm, TimeMultiplier: 1.0, SurgeMultiplier: 1.0}

	if in.Pickup == in.Dropoff {
		bd.FixedPriceApplied = true
		bd.MinFareApplied = true
		return round2(snap.flatMinFare(in.Category)), bd
	}

	factor := in.Trip.Factor()

	if fixed, ok := MatchFixedPrice(in.Pickup, in.Dropoff, in.Category, snap.FixedPrices); ok {
		bd.FixedPriceApplied = true
		price := fixed * factor
		if floor := snap.MinFareFor(in.Category, in.OneWayKm) * factor; price < floor {
			bd.MinFareApplied = true
			price = floor
		}
		return round2(price), bd
	}

	rate := snap.VehicleRates[in.Category]
	price := 0.0
	for code, km := range in.ZoneKm {
		price += rate * km * snap.ZoneMultiplier(code) * factor
	}

	bd.TimeMultiplier = timeMultiplier(snap.TimeMultipliers, in.PickupAt)
	price *= bd.TimeMultiplier

	bd.SurgeMultiplier = surgeMultiplier(snap.SurgeWindows, in.PickupAt)
	price *= bd.SurgeMultiplier

	if floor := snap.MinFareFor(in.Category, in.OneWayKm) * factor; price < floor {
		bd.MinFareApplied = true
		price = floor
	}

	return round2(price), bd
}

// timeMultiplier composes the weekend and night multipliers; both can apply.
// Night hours are before 06:00 and from 22:00, in the pickup's local time.
func timeMultiplier(tm TimeMultipliers, at time.Time) float64 {
	m := 1.0
	if wd := at.Weekday(); wd == time.Saturday || wd == time.Sunday {
		if tm.Weekend > 0 {
			m *= tm.Weekend
		}
	}
	if h := at.Hour(); h < 6 || h >= 22 {
		if tm.Night > 0 {
			m *= tm.Night
		}
	}
	return m
}

// surgeMultiplier returns the maximum multiplier among windows containing the
// pickup time. Overlapping windows do not stack.
func surgeMultiplier(windows []SurgeWindow, at time.Time) float64 {
	m := 1.0
	for _, w := range windows {
		if w.Contains(at) && w.Multiplier > m {
			m = w.Multiplier
		}
	}
	return m
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}

// RoundDisplay rounds a price to the nearest 10 currency units. Display
// presentation only; raw prices are never touched.
func RoundDisplay(p float64) float64 {
	return math.Round(p/10.0) * 10.0
}

// EnforceDisplayHierarchy walks each configured family (ordered cheapest to
// most expensive) and bumps display prices so every step up the family costs
// at least margin more than the previous one. Independent per-category
// computation can produce inversions after display rounding; this pass is a
// presentation correction and only ever mutates the display price.
func EnforceDisplayHierarchy(prices []VehiclePrice, tiers [][]string, margin float64) {
	byCategory := make(map[string]int, len(prices))
	for i, p := range prices {
		byCategory[p.Category] = i
	}
	for _, family := range tiers {
		prev := -1
		for _, cat := range family {
			i, ok := byCategory[cat]
			if !ok {
				continue
			}
			if prev >= 0 && prices[i].Price < prices[prev].Price+margin {
				log.Printf("pricing: display hierarchy bump %s: %.2f -> %.2f",
					cat, prices[i].Price, prices[prev].Price+margin)
				prices[i].Price = prices[prev].Price + margin
			}
			prev = i
		}
	}
}
