// README: Pricing snapshot loader: built-in defaults, optional file overlay (viper), optional Postgres overlay.
package pricing

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"sort"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/paulmach/orb"
	"github.com/paulmach/orb/geojson"
	"github.com/spf13/viper"
)

// Loader builds validated pricing snapshots. Precedence per table: Postgres
// store over config file over built-in defaults. Build never fails: every
// layer degrades to the one below it, logged.
type Loader struct {
	store    *Store
	filePath string
	currency string
	validate *validator.Validate
}

// NewLoader creates a Loader. store and filePath are both optional; with
// neither the built-in defaults are used as-is.
func NewLoader(store *Store, filePath, currency string) *Loader {
	return &Loader{
		store:    store,
		filePath: filePath,
		currency: currency,
		validate: validator.New(),
	}
}

// Build assembles a fresh immutable snapshot.
func (l *Loader) Build(ctx context.Context) *Snapshot {
	snap := defaultSnapshot(l.currency)
	if l.filePath != "" {
		l.applyFile(snap)
	}
	if l.store != nil {
		l.applyStore(ctx, snap)
	}
	l.sanitize(snap)
	return snap
}

type fileSurgeWindow struct {
	Name       string  `mapstructure:"name"`
	StartTime  string  `mapstructure:"start_time"`
	EndTime    string  `mapstructure:"end_time"`
	Multiplier float64 `mapstructure:"multiplier"`
}

type fileFixedPrice struct {
	Name            string                 `mapstructure:"name"`
	VehicleCategory string                 `mapstructure:"vehicle_category"`
	PickupArea      map[string]interface{} `mapstructure:"pickup_area"`
	DropoffArea     map[string]interface{} `mapstructure:"dropoff_area"`
	Price           float64                `mapstructure:"price"`
	Bidirectional   bool                   `mapstructure:"bidirectional"`
}

func (l *Loader) applyFile(snap *Snapshot) {
	v := viper.New()
	v.SetConfigFile(l.filePath)
	if err := v.ReadInConfig(); err != nil {
		log.Printf("pricing: cannot read config file %s: %v, keeping defaults", l.filePath, err)
		return
	}

	if v.IsSet("currency") {
		snap.Currency = v.GetString("currency")
	}

	var rates map[string]float64
	if err := v.UnmarshalKey("vehicle_rates", &rates); err == nil && len(rates) > 0 {
		snap.VehicleRates = rates
		snap.Categories = sortedKeys(rates)
	}

	var zones map[string]float64
	if err := v.UnmarshalKey("zone_multipliers", &zones); err == nil && len(zones) > 0 {
		snap.ZoneMultipliers = zones
	}

	if v.IsSet("time_multipliers.night") {
		snap.TimeMultipliers.Night = v.GetFloat64("time_multipliers.night")
	}
	if v.IsSet("time_multipliers.weekend") {
		snap.TimeMultipliers.Weekend = v.GetFloat64("time_multipliers.weekend")
	}

	var minFares map[string]float64
	if err := v.UnmarshalKey("min_fares", &minFares); err == nil && len(minFares) > 0 {
		snap.MinFares = minFares
	}

	var tiered map[string]map[string]float64
	if err := v.UnmarshalKey("distance_min_fares", &tiered); err == nil && len(tiered) > 0 {
		snap.DistanceMinFares = tiered
	}

	var surges []fileSurgeWindow
	if err := v.UnmarshalKey("surge_windows", &surges); err == nil && len(surges) > 0 {
		snap.SurgeWindows = parseSurgeWindows(surges)
	}

	var fixed []fileFixedPrice
	if err := v.UnmarshalKey("fixed_prices", &fixed); err == nil && len(fixed) > 0 {
		snap.FixedPrices = parseFixedPrices(fixed)
	}

	if v.IsSet("display.margin") {
		snap.DisplayMargin = v.GetFloat64("display.margin")
	}
	var tiers [][]string
	if err := v.UnmarshalKey("display.tiers", &tiers); err == nil && len(tiers) > 0 {
		snap.DisplayTiers = tiers
	}
}

func (l *Loader) applyStore(ctx context.Context, snap *Snapshot) {
	if rates, err := l.store.VehicleRates(ctx); err != nil {
		log.Printf("pricing: vehicle rates from store: %v, keeping previous layer", err)
	} else if len(rates) > 0 {
		snap.VehicleRates = rates
		snap.Categories = sortedKeys(rates)
	}

	if zones, err := l.store.ZoneMultipliers(ctx); err != nil {
		log.Printf("pricing: zone multipliers from store: %v, keeping previous layer", err)
	} else if len(zones) > 0 {
		snap.ZoneMultipliers = zones
	}

	if rules, err := l.store.FixedRoutes(ctx); err != nil {
		log.Printf("pricing: fixed routes from store: %v, keeping previous layer", err)
	} else if len(rules) > 0 {
		snap.FixedPrices = rules
	}

	if windows, err := l.store.SurgeWindows(ctx); err != nil {
		log.Printf("pricing: surge windows from store: %v, keeping previous layer", err)
	} else if len(windows) > 0 {
		snap.SurgeWindows = windows
	}
}

func parseSurgeWindows(raw []fileSurgeWindow) []SurgeWindow {
	windows := make([]SurgeWindow, 0, len(raw))
	for _, fw := range raw {
		start, err := time.Parse(time.RFC3339, fw.StartTime)
		if err != nil {
			log.Printf("pricing: surge window %q: bad start_time %q, skipping", fw.Name, fw.StartTime)
			continue
		}
		end, err := time.Parse(time.RFC3339, fw.EndTime)
		if err != nil {
			log.Printf("pricing: surge window %q: bad end_time %q, skipping", fw.Name, fw.EndTime)
			continue
		}
		windows = append(windows, SurgeWindow{Name: fw.Name, Start: start, End: end, Multiplier: fw.Multiplier})
	}
	return windows
}

func parseFixedPrices(raw []fileFixedPrice) []FixedPriceRule {
	rules := make([]FixedPriceRule, 0, len(raw))
	for _, fr := range raw {
		pickup, err := parseGeometry(fr.PickupArea)
		if err != nil {
			log.Printf("pricing: fixed price %q: pickup area: %v, skipping", fr.Name, err)
			continue
		}
		dropoff, err := parseGeometry(fr.DropoffArea)
		if err != nil {
			log.Printf("pricing: fixed price %q: dropoff area: %v, skipping", fr.Name, err)
			continue
		}
		rules = append(rules, FixedPriceRule{
			Name:            fr.Name,
			VehicleCategory: fr.VehicleCategory,
			PickupArea:      pickup,
			DropoffArea:     dropoff,
			Price:           fr.Price,
			Bidirectional:   fr.Bidirectional,
		})
	}
	return rules
}

// parseGeometry round-trips a decoded config map through JSON into an orb
// geometry. Config files carry areas as inline GeoJSON objects.
func parseGeometry(raw map[string]interface{}) (orb.Geometry, error) {
	if len(raw) == 0 {
		return nil, fmt.Errorf("empty geometry")
	}
	data, err := json.Marshal(raw)
	if err != nil {
		return nil, fmt.Errorf("re-encode geometry: %w", err)
	}
	g, err := geojson.UnmarshalGeometry(data)
	if err != nil {
		return nil, fmt.Errorf("parse geometry: %w", err)
	}
	return g.Geometry(), nil
}

// sanitize enforces the config invariants in place: non-positive rates,
// multipliers and fares revert to defaults; structurally invalid surge and
// fixed-price rules are dropped. All repairs are logged, never fatal.
func (l *Loader) sanitize(snap *Snapshot) {
	defaults := defaultVehicleRates()
	for cat, rate := range snap.VehicleRates {
		if rate <= 0 {
			repaired := defaults[cat]
			if repaired <= 0 {
				repaired = 1.0
			}
			log.Printf("pricing: rate for %s must be positive, got %v, using %v", cat, rate, repaired)
			snap.VehicleRates[cat] = repaired
		}
	}
	if len(snap.VehicleRates) == 0 {
		log.Printf("pricing: no vehicle rates configured, restoring defaults")
		snap.VehicleRates = defaultVehicleRates()
		snap.Categories = defaultCategories()
	}
	if len(snap.Categories) == 0 {
		snap.Categories = sortedKeys(snap.VehicleRates)
	}

	zoneDefaults := defaultZoneMultipliers()
	for zone, m := range snap.ZoneMultipliers {
		if m <= 0 {
			repaired := zoneDefaults[zone]
			if repaired <= 0 {
				repaired = 1.0
			}
			log.Printf("pricing: multiplier for zone %s must be positive, got %v, using %v", zone, m, repaired)
			snap.ZoneMultipliers[zone] = repaired
		}
	}
	if len(snap.ZoneMultipliers) == 0 {
		log.Printf("pricing: no zone multipliers configured, restoring defaults")
		snap.ZoneMultipliers = defaultZoneMultipliers()
	}

	fareDefaults := defaultMinFares()
	for cat, fare := range snap.MinFares {
		if fare <= 0 {
			repaired := fareDefaults[cat]
			if repaired <= 0 {
				repaired = 10.0
			}
			log.Printf("pricing: minimum fare for %s must be positive, got %v, using %v", cat, fare, repaired)
			snap.MinFares[cat] = repaired
		}
	}

	for tier, fares := range snap.DistanceMinFares {
		for cat, fare := range fares {
			if fare <= 0 {
				log.Printf("pricing: tier %s minimum for %s must be positive, got %v, dropping (flat minimum applies)", tier, cat, fare)
				delete(fares, cat)
			}
		}
	}

	kept := snap.SurgeWindows[:0]
	for _, w := range snap.SurgeWindows {
		if err := l.validate.Struct(w); err != nil {
			log.Printf("pricing: surge window %q invalid: %v, dropping", w.Name, err)
			continue
		}
		if !w.Start.Before(w.End) {
			log.Printf("pricing: surge window %q: start not before end, dropping", w.Name)
			continue
		}
		kept = append(kept, w)
	}
	snap.SurgeWindows = kept

	keptRules := snap.FixedPrices[:0]
	for _, r := range snap.FixedPrices {
		if err := l.validate.Struct(r); err != nil {
			log.Printf("pricing: fixed price rule %q invalid: %v, dropping", r.Name, err)
			continue
		}
		if r.PickupArea == nil || r.DropoffArea == nil {
			log.Printf("pricing: fixed price rule %q missing areas, dropping", r.Name)
			continue
		}
		keptRules = append(keptRules, r)
	}
	snap.FixedPrices = keptRules

	if snap.DisplayMargin <= 0 {
		snap.DisplayMargin = defaultDisplayMargin
	}
}

func sortedKeys(m map[string]float64) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
