// README: Pricing domain model: config snapshot, quote request/result, trip types.
package pricing

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/paulmach/orb"

	"tratta/internal/types"
)

// TripType distinguishes one-way from round-trip quotes. The wire format
// accepts "1"/"2" as string or integer; anything else is a validation error.
type TripType int

const (
	TripOneWay    TripType = 1
	TripRoundTrip TripType = 2
)

func (t *TripType) UnmarshalJSON(b []byte) error {
	s := strings.Trim(strings.TrimSpace(string(b)), `"`)
	switch s {
	case "1":
		*t = TripOneWay
	case "2":
		*t = TripRoundTrip
	default:
		return fmt.Errorf(`trip_type must be "1" (one-way) or "2" (round-trip)`)
	}
	return nil
}

func (t TripType) MarshalJSON() ([]byte, error) {
	return json.Marshal(strconv.Itoa(int(t)))
}

// Factor is the monetary multiplier the trip type contributes.
func (t TripType) Factor() float64 {
	if t == TripRoundTrip {
		return 2.0
	}
	return 1.0
}

// SurgeWindow is a named time interval carrying a price multiplier. When the
// pickup time falls inside several windows the maximum multiplier wins.
type SurgeWindow struct {
	Name       string
	Start      time.Time
	End        time.Time
	Multiplier float64 `validate:"gt=0"`
}

// Contains reports whether ts falls inside the window (inclusive).
func (w SurgeWindow) Contains(ts time.Time) bool {
	return !ts.Before(w.Start) && !ts.After(w.End)
}

// FixedPriceRule overrides distance-based pricing for trips between two
// configured areas. Rule order is significant: the first match wins.
type FixedPriceRule struct {
	Name            string
	VehicleCategory string
	PickupArea      orb.Geometry
	DropoffArea     orb.Geometry
	Price           float64 `validate:"gt=0"`
	Bidirectional   bool
}

// TimeMultipliers are the night and weekend whole-price multipliers. Both may
// apply to the same pickup; they compose multiplicatively.
type TimeMultipliers struct {
	Night   float64
	Weekend float64
}

// Distance tier keys for the tiered minimum fares. Distances above the last
// band fall back to the flat per-category minimum.
const (
	Tier0to5   = "0-5"
	Tier5to20  = "5-20"
	Tier20to50 = "20-50"
)

// Snapshot is a fully validated, immutable pricing configuration. It is built
// once per load/refresh and swapped wholesale; in-flight requests keep
// pricing against the snapshot they captured.
type Snapshot struct {
	Currency         string
	Categories       []string // configured category order; first entry is the unknown-category fallback
	VehicleRates     map[string]float64
	ZoneMultipliers  map[string]float64
	TimeMultipliers  TimeMultipliers
	SurgeWindows     []SurgeWindow
	FixedPrices      []FixedPriceRule
	MinFares         map[string]float64
	DistanceMinFares map[string]map[string]float64
	DisplayTiers     [][]string // ordered low→high per vehicle family
	DisplayMargin    float64
}

// ZoneMultiplier resolves a zone code to its multiplier, falling back to the
// DEFAULT zone's multiplier and finally to 1.0.
func (s *Snapshot) ZoneMultiplier(code string) float64 {
	if m, ok := s.ZoneMultipliers[code]; ok {
		return m
	}
	if m, ok := s.ZoneMultipliers["DEFAULT"]; ok {
		return m
	}
	return 1.0
}

// MinFareFor returns the applicable one-way minimum fare for the category at
// the given one-way distance: the distance-tiered value when the distance
// falls in a configured band, the flat minimum otherwise.
func (s *Snapshot) MinFareFor(category string, oneWayKm float64) float64 {
	if tier := tierForDistance(oneWayKm); tier != "" {
		if fares, ok := s.DistanceMinFares[tier]; ok {
			if f, ok := fares[category]; ok {
				return f
			}
		}
	}
	return s.flatMinFare(category)
}

// fallbackMinFare backstops configs that drop a category's flat minimum. A
// zero floor would let degenerate requests price at zero.
const fallbackMinFare = 10.0

func (s *Snapshot) flatMinFare(category string) float64 {
	if f, ok := s.MinFares[category]; ok && f > 0 {
		return f
	}
	return fallbackMinFare
}

func tierForDistance(km float64) string {
	switch {
	case km <= 5:
		return Tier0to5
	case km <= 20:
		return Tier5to20
	case km <= 50:
		return Tier20to50
	}
	return ""
}

// QuoteRequest is a validated pricing request. VehicleCategory is optional;
// when empty every configured category is priced.
type QuoteRequest struct {
	Pickup          types.Point
	Dropoff         types.Point
	VehicleCategory string
	PickupAt        time.Time
	Trip            TripType
}

// VehiclePrice is the quote for a single category. RawPrice is the composed
// price rounded to cents; Price is the display price (nearest 10, hierarchy
// corrected).
type VehiclePrice struct {
	Category string  `json:"category"`
	RawPrice float64 `json:"raw_price"`
	Price    float64 `json:"price"`
	Currency string  `json:"currency"`
}

// QuoteDetails echoes the request parameters alongside the generated id.
type QuoteDetails struct {
	RequestID       types.ID    `json:"request_id"`
	PickupTime      time.Time   `json:"pickup_time"`
	PickupLocation  types.Point `json:"pickup_location"`
	DropoffLocation types.Point `json:"dropoff_location"`
	TripType        TripType    `json:"trip_type"`
}

// QuoteResult is the full multi-category response for a request.
type QuoteResult struct {
	Prices  []VehiclePrice `json:"prices"`
	Details QuoteDetails   `json:"details"`
}
