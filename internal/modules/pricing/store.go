// README: Pricing tables store backed by PostgreSQL.
package pricing

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/paulmach/orb/geojson"
)

// Store fetches the pricing tables from PostgreSQL. It is a narrow read-only
// client; the Loader decides how table data merges with file and built-in
// defaults.
type Store struct {
	db *pgxpool.Pool
}

func NewStore(db *pgxpool.Pool) *Store {
	return &Store{db: db}
}

// VehicleRates returns base €/km per category from vehicle_base_prices.
func (s *Store) VehicleRates(ctx context.Context) (map[string]float64, error) {
	rows, err := s.db.Query(ctx, `SELECT vehicle_type, base_price_per_km FROM vehicle_base_prices`)
	if err != nil {
		return nil, fmt.Errorf("query vehicle_base_prices: %w", err)
	}
	defer rows.Close()

	rates := make(map[string]float64)
	for rows.Next() {
		var category string
		var rate float64
		if err := rows.Scan(&category, &rate); err != nil {
			return nil, fmt.Errorf("scan vehicle rate: %w", err)
		}
		rates[category] = rate
	}
	return rates, rows.Err()
}

// ZoneMultipliers returns the per-zone multipliers from zone_multipliers.
func (s *Store) ZoneMultipliers(ctx context.Context) (map[string]float64, error) {
	rows, err := s.db.Query(ctx, `SELECT zone_id, multiplier FROM zone_multipliers`)
	if err != nil {
		return nil, fmt.Errorf("query zone_multipliers: %w", err)
	}
	defer rows.Close()

	multipliers := make(map[string]float64)
	for rows.Next() {
		var zone string
		var m float64
		if err := rows.Scan(&zone, &m); err != nil {
			return nil, fmt.Errorf("scan zone multiplier: %w", err)
		}
		multipliers[zone] = m
	}
	return multipliers, rows.Err()
}

// FixedRoutes returns the fixed-price rules from fixed_routes. Area columns
// hold GeoJSON geometry; rows with unparsable geometry are dropped with an
// error, which the Loader logs and survives.
func (s *Store) FixedRoutes(ctx context.Context) ([]FixedPriceRule, error) {
	rows, err := s.db.Query(ctx, `
		SELECT name, vehicle_category, pickup_area, dropoff_area, price, bidirectional
		FROM fixed_routes
		ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("query fixed_routes: %w", err)
	}
	defer rows.Close()

	var rules []FixedPriceRule
	for rows.Next() {
		var r FixedPriceRule
		var pickupRaw, dropoffRaw []byte
		if err := rows.Scan(&r.Name, &r.VehicleCategory, &pickupRaw, &dropoffRaw, &r.Price, &r.Bidirectional); err != nil {
			return nil, fmt.Errorf("scan fixed route: %w", err)
		}
		pickupGeom, err := geojson.UnmarshalGeometry(pickupRaw)
		if err != nil {
			return nil, fmt.Errorf("fixed route %q pickup area: %w", r.Name, err)
		}
		dropoffGeom, err := geojson.UnmarshalGeometry(dropoffRaw)
		if err != nil {
			return nil, fmt.Errorf("fixed route %q dropoff area: %w", r.Name, err)
		}
		r.PickupArea = pickupGeom.Geometry()
		r.DropoffArea = dropoffGeom.Geometry()
		rules = append(rules, r)
	}
	return rules, rows.Err()
}

// SurgeWindows returns the time-window surge rules from surge_multipliers.
func (s *Store) SurgeWindows(ctx context.Context) ([]SurgeWindow, error) {
	rows, err := s.db.Query(ctx, `
		SELECT name, start_time, end_time, multiplier
		FROM surge_multipliers
		ORDER BY start_time`)
	if err != nil {
		return nil, fmt.Errorf("query surge_multipliers: %w", err)
	}
	defer rows.Close()

	var windows []SurgeWindow
	for rows.Next() {
		var w SurgeWindow
		var start, end time.Time
		if err := rows.Scan(&w.Name, &start, &end, &w.Multiplier); err != nil {
			return nil, fmt.Errorf("scan surge window: %w", err)
		}
		w.Start, w.End = start, end
		windows = append(windows, w)
	}
	return windows, rows.Err()
}
