package pricing

import (
	"math"
	"testing"
	"time"

	"tratta/internal/types"
)

var (
	// Weekday daytime: Tuesday 2026-03-10 11:00.
	weekdayNoon = time.Date(2026, 3, 10, 11, 0, 0, 0, time.UTC)
	// Saturday late night: both weekend and night multipliers apply.
	saturdayNight = time.Date(2026, 3, 14, 23, 0, 0, 0, time.UTC)

	airport = types.Point{Lat: 41.80, Lng: 12.25}
	center  = types.Point{Lat: 41.90, Lng: 12.45}
)

// distanceSnapshot strips fixed prices so the distance path is exercised.
func distanceSnapshot() *Snapshot {
	snap := defaultSnapshot("EUR")
	snap.FixedPrices = nil
	return snap
}

func input(category string, at time.Time, trip TripType, km float64) composeInput {
	return composeInput{
		Pickup:   airport,
		Dropoff:  center,
		Category: category,
		PickupAt: at,
		Trip:     trip,
		OneWayKm: km,
		ZoneKm:   map[string]float64{"RM": km},
	}
}

func TestCompose_TierMinimumDominatesShortHaul(t *testing.T) {
	// ~22km standard_sedan: base 2.6*22 = 57.2, but the 20-50km tier
	// minimum (120.0) wins.
	price, bd := composePrice(distanceSnapshot(), input("standard_sedan", weekdayNoon, TripOneWay, 22))
	if price != 120.0 {
		t.Errorf("price = %v, want 120.0", price)
	}
	if !bd.MinFareApplied {
		t.Errorf("expected the minimum fare flag")
	}
	if bd.FixedPriceApplied {
		t.Errorf("fixed price flag must not fire on the distance path")
	}
}

func TestCompose_IdenticalPointsFlatMinimum(t *testing.T) {
	in := input("standard_sedan", weekdayNoon, TripOneWay, 0)
	in.Dropoff = in.Pickup
	price, bd := composePrice(distanceSnapshot(), in)
	if price != 70.0 {
		t.Errorf("price = %v, want flat minimum 70.0", price)
	}
	if !bd.FixedPriceApplied || !bd.MinFareApplied {
		t.Errorf("zero-distance quote must set fixed-price and min-fare flags, got %+v", bd)
	}
}

func TestCompose_MissingFlatMinimumFallsBack(t *testing.T) {
	snap := distanceSnapshot()
	delete(snap.MinFares, "standard_sedan")

	in := input("standard_sedan", weekdayNoon, TripOneWay, 0)
	in.Dropoff = in.Pickup
	price, _ := composePrice(snap, in)
	if price != fallbackMinFare {
		t.Errorf("price = %v, want fallback minimum %v", price, fallbackMinFare)
	}
}

func TestCompose_RoundTripDoubles(t *testing.T) {
	// 100km is above every tier so only the flat minimum (70) applies,
	// and 2.6*100 clears it comfortably in both directions.
	oneWay, _ := composePrice(distanceSnapshot(), input("standard_sedan", weekdayNoon, TripOneWay, 100))
	round, _ := composePrice(distanceSnapshot(), input("standard_sedan", weekdayNoon, TripRoundTrip, 100))
	if math.Abs(round-2*oneWay) > 0.01 {
		t.Errorf("round trip = %v, want exactly 2 × %v", round, oneWay)
	}
}

func TestCompose_RoundTripMinimumAlsoDoubles(t *testing.T) {
	// 22km round trip: base 2*57.2 = 114.4 is below the doubled tier
	// minimum 2*120.
	price, bd := composePrice(distanceSnapshot(), input("standard_sedan", weekdayNoon, TripRoundTrip, 22))
	if price != 240.0 {
		t.Errorf("price = %v, want 240.0", price)
	}
	if !bd.MinFareApplied {
		t.Errorf("expected the minimum fare flag")
	}
}

func TestCompose_TimeMultipliersCompose(t *testing.T) {
	snap := distanceSnapshot()
	snap.TimeMultipliers = TimeMultipliers{Night: 1.25, Weekend: 1.15}

	price, bd := composePrice(snap, input("standard_sedan", saturdayNight, TripOneWay, 100))
	want := round2(2.6 * 100 * 1.25 * 1.15)
	if math.Abs(price-want) > 0.01 {
		t.Errorf("price = %v, want %v", price, want)
	}
	if math.Abs(bd.TimeMultiplier-1.25*1.15) > 1e-9 {
		t.Errorf("time multiplier = %v, want %v", bd.TimeMultiplier, 1.25*1.15)
	}
}

func TestCompose_SurgeTakesMaximumNotProduct(t *testing.T) {
	snap := distanceSnapshot()
	snap.SurgeWindows = []SurgeWindow{
		{Name: "fair", Start: weekdayNoon.Add(-time.Hour), End: weekdayNoon.Add(time.Hour), Multiplier: 1.5},
		{Name: "concert", Start: weekdayNoon.Add(-2 * time.Hour), End: weekdayNoon.Add(2 * time.Hour), Multiplier: 2.0},
	}

	price, bd := composePrice(snap, input("standard_sedan", weekdayNoon, TripOneWay, 100))
	want := round2(2.6 * 100 * 2.0)
	if math.Abs(price-want) > 0.01 {
		t.Errorf("price = %v, want %v (max multiplier, not cumulative)", price, want)
	}
	if bd.SurgeMultiplier != 2.0 {
		t.Errorf("surge multiplier = %v, want 2.0", bd.SurgeMultiplier)
	}
}

func TestCompose_SurgeOutsideWindowIgnored(t *testing.T) {
	snap := distanceSnapshot()
	snap.SurgeWindows = []SurgeWindow{
		{Name: "past", Start: weekdayNoon.Add(-3 * time.Hour), End: weekdayNoon.Add(-2 * time.Hour), Multiplier: 3.0},
	}
	_, bd := composePrice(snap, input("standard_sedan", weekdayNoon, TripOneWay, 100))
	if bd.SurgeMultiplier != 1.0 {
		t.Errorf("surge multiplier = %v, want 1.0", bd.SurgeMultiplier)
	}
}

func TestCompose_UnknownZoneFallsBackToDefaultMultiplier(t *testing.T) {
	snap := distanceSnapshot()
	snap.ZoneMultipliers = map[string]float64{"DEFAULT": 1.5}

	in := input("standard_sedan", weekdayNoon, TripOneWay, 100)
	in.ZoneKm = map[string]float64{"ZZ": 100}
	price, _ := composePrice(snap, in)
	want := round2(2.6 * 100 * 1.5)
	if math.Abs(price-want) > 0.01 {
		t.Errorf("price = %v, want %v via DEFAULT multiplier", price, want)
	}
}

func TestCompose_FixedPriceFloorsAtTierMinimum(t *testing.T) {
	// The Rome airport rule prices the trip at 50, below the 20-50km tier
	// minimum of 120: the floor wins.
	snap := defaultSnapshot("EUR")
	in := composeInput{
		Pickup:   types.Point{Lat: 41.75, Lng: 12.25},
		Dropoff:  types.Point{Lat: 41.95, Lng: 12.45},
		Category: "standard_sedan",
		PickupAt: weekdayNoon,
		Trip:     TripOneWay,
		OneWayKm: 27,
		ZoneKm:   map[string]float64{"RM": 27},
	}
	price, bd := composePrice(snap, in)
	if !bd.FixedPriceApplied {
		t.Fatalf("expected the fixed price rule to match")
	}
	if price != 120.0 {
		t.Errorf("price = %v, want tier minimum 120.0", price)
	}
	if !bd.MinFareApplied {
		t.Errorf("expected the minimum fare flag alongside the fixed price")
	}
}

func TestCompose_FixedPriceAboveMinimumWins(t *testing.T) {
	snap := defaultSnapshot("EUR")
	snap.FixedPrices = []FixedPriceRule{{
		Name:            "Premium airport run",
		VehicleCategory: "standard_sedan",
		PickupArea:      snap.FixedPrices[0].PickupArea,
		DropoffArea:     snap.FixedPrices[0].DropoffArea,
		Price:           200.0,
		Bidirectional:   true,
	}}
	in := composeInput{
		Pickup:   types.Point{Lat: 41.75, Lng: 12.25},
		Dropoff:  types.Point{Lat: 41.95, Lng: 12.45},
		Category: "standard_sedan",
		PickupAt: weekdayNoon,
		Trip:     TripRoundTrip,
		OneWayKm: 27,
		ZoneKm:   map[string]float64{"RM": 27},
	}
	price, bd := composePrice(snap, in)
	if !bd.FixedPriceApplied {
		t.Fatalf("expected the fixed price rule to match")
	}
	if price != 400.0 {
		t.Errorf("price = %v, want 2 × 200.0", price)
	}
	if bd.MinFareApplied {
		t.Errorf("minimum fare must not fire when the fixed price exceeds it")
	}
}

func TestCompose_BaseMonotonicInDistance(t *testing.T) {
	snap := distanceSnapshot()
	prev := 0.0
	for km := 60.0; km <= 200; km += 10 {
		price, _ := composePrice(snap, input("standard_sedan", weekdayNoon, TripOneWay, km))
		if price < prev {
			t.Fatalf("price decreased from %v to %v at %vkm", prev, price, km)
		}
		prev = price
	}
}

func TestCompose_Idempotent(t *testing.T) {
	snap := distanceSnapshot()
	in := input("premium_sedan", saturdayNight, TripRoundTrip, 35)
	p1, _ := composePrice(snap, in)
	p2, _ := composePrice(snap, in)
	if p1 != p2 {
		t.Errorf("identical inputs produced %v then %v", p1, p2)
	}
}

func TestRoundDisplay(t *testing.T) {
	tests := []struct{ in, want float64 }{
		{57.2, 60}, {120.0, 120}, {124.9, 120}, {125.0, 130}, {0, 0},
	}
	for _, tt := range tests {
		if got := RoundDisplay(tt.in); got != tt.want {
			t.Errorf("RoundDisplay(%v) = %v, want %v", tt.in, got, tt.want)
		}
	}
}

func TestEnforceDisplayHierarchy(t *testing.T) {
	prices := []VehiclePrice{
		{Category: "standard_sedan", RawPrice: 118.3, Price: 120},
		{Category: "premium_sedan", RawPrice: 121.1, Price: 120},
		{Category: "vip_sedan", RawPrice: 129.0, Price: 130},
		{Category: "coach_51_pax", RawPrice: 500, Price: 500},
	}
	EnforceDisplayHierarchy(prices, defaultDisplayTiers(), 10)

	if prices[0].Price != 120 {
		t.Errorf("family base moved: %v", prices[0].Price)
	}
	if prices[1].Price != 130 {
		t.Errorf("premium_sedan = %v, want bumped to 130", prices[1].Price)
	}
	if prices[2].Price != 140 {
		t.Errorf("vip_sedan = %v, want bumped to 140", prices[2].Price)
	}
	// Raw prices are display-rounding inputs only and must never move.
	if prices[1].RawPrice != 121.1 {
		t.Errorf("raw price mutated: %v", prices[1].RawPrice)
	}
	// Categories outside every family are untouched.
	if prices[3].Price != 500 {
		t.Errorf("coach_51_pax = %v, want 500", prices[3].Price)
	}
}
