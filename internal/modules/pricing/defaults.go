// README: Built-in pricing tables used when no store or file configuration is available.
package pricing

import "github.com/paulmach/orb"

// defaultCategories fixes the category order; the first entry doubles as the
// unknown-category fallback.
func defaultCategories() []string {
	return []string{
		"standard_sedan", "premium_sedan", "vip_sedan",
		"standard_minivan", "xl_minivan", "vip_minivan",
		"sprinter_8_pax", "sprinter_16_pax", "sprinter_21_pax",
		"coach_51_pax",
	}
}

func defaultVehicleRates() map[string]float64 {
	return map[string]float64{
		"standard_sedan": 2.6,
		"premium_sedan":  3.0,
		"vip_sedan":      4.0,

		"standard_minivan": 3.0,
		"xl_minivan":       3.4,
		"vip_minivan":      3.6,

		"sprinter_8_pax":  4.6,
		"sprinter_16_pax": 7.4,
		"sprinter_21_pax": 11.2,

		"coach_51_pax": 20.0,
	}
}

func defaultZoneMultipliers() map[string]float64 {
	return map[string]float64{
		"RM":      1.0,
		"MI":      1.0,
		"FI":      1.0,
		"DEFAULT": 1.0,
	}
}

func defaultTimeMultipliers() TimeMultipliers {
	// Neutral by default; operators enable them via config.
	return TimeMultipliers{Night: 1.0, Weekend: 1.0}
}

func defaultMinFares() map[string]float64 {
	return map[string]float64{
		"standard_sedan": 70.0,
		"premium_sedan":  80.0,
		"vip_sedan":      120.0,

		"standard_minivan": 75.0,
		"xl_minivan":       80.0,
		"vip_minivan":      85.0,

		"sprinter_8_pax":  120.0,
		"sprinter_16_pax": 180.0,
		"sprinter_21_pax": 300.0,

		"coach_51_pax": 500.0,
	}
}

func defaultDistanceMinFares() map[string]map[string]float64 {
	return map[string]map[string]float64{
		Tier0to5: {
			"standard_sedan": 70.0,
			"premium_sedan":  80.0,
			"vip_sedan":      120.0,

			"standard_minivan": 80.0,
			"xl_minivan":       90.0,
			"vip_minivan":      100.0,

			"sprinter_8_pax":  120.0,
			"sprinter_16_pax": 180.0,
			"sprinter_21_pax": 300.0,

			"coach_51_pax": 500.0,
		},
		Tier5to20: {
			"standard_sedan": 90.0,
			"premium_sedan":  100.0,
			"vip_sedan":      150.0,

			"standard_minivan": 100.0,
			"xl_minivan":       110.0,
			"vip_minivan":      120.0,

			"sprinter_8_pax":  190.0,
			"sprinter_16_pax": 240.0,
			"sprinter_21_pax": 360.0,

			"coach_51_pax": 600.0,
		},
		Tier20to50: {
			"standard_sedan": 120.0,
			"premium_sedan":  130.0,
			"vip_sedan":      200.0,

			"standard_minivan": 125.0,
			"xl_minivan":       135.0,
			"vip_minivan":      145.0,

			"sprinter_8_pax":  220.0,
			"sprinter_16_pax": 300.0,
			"sprinter_21_pax": 400.0,

			"coach_51_pax": 800.0,
		},
	}
}

func defaultFixedPrices() []FixedPriceRule {
	return []FixedPriceRule{
		{
			Name:            "Rome Airport to City Center",
			VehicleCategory: "standard_sedan",
			PickupArea: orb.Polygon{{
				{12.2, 41.7}, {12.3, 41.7}, {12.3, 41.8}, {12.2, 41.8}, {12.2, 41.7},
			}},
			DropoffArea: orb.Polygon{{
				{12.4, 41.9}, {12.5, 41.9}, {12.5, 42.0}, {12.4, 42.0}, {12.4, 41.9},
			}},
			Price:         50.0,
			Bidirectional: true,
		},
		{
			Name:            "Milan Airport to City Center",
			VehicleCategory: "standard_sedan",
			PickupArea: orb.Polygon{{
				{9.0, 45.3}, {9.1, 45.3}, {9.1, 45.4}, {9.0, 45.4}, {9.0, 45.3},
			}},
			DropoffArea: orb.Polygon{{
				{9.2, 45.5}, {9.3, 45.5}, {9.3, 45.6}, {9.2, 45.6}, {9.2, 45.5},
			}},
			Price:         45.0,
			Bidirectional: true,
		},
	}
}

// defaultDisplayTiers orders categories low→high per vehicle family for the
// display-price hierarchy correction.
func defaultDisplayTiers() [][]string {
	return [][]string{
		{"standard_sedan", "premium_sedan", "vip_sedan"},
		{"standard_minivan", "xl_minivan", "vip_minivan"},
		{"sprinter_8_pax", "sprinter_16_pax", "sprinter_21_pax"},
	}
}

const defaultDisplayMargin = 10.0

// defaultSnapshot assembles the built-in configuration.
func defaultSnapshot(currency string) *Snapshot {
	if currency == "" {
		currency = "EUR"
	}
	return &Snapshot{
		Currency:         currency,
		Categories:       defaultCategories(),
		VehicleRates:     defaultVehicleRates(),
		ZoneMultipliers:  defaultZoneMultipliers(),
		TimeMultipliers:  defaultTimeMultipliers(),
		FixedPrices:      defaultFixedPrices(),
		MinFares:         defaultMinFares(),
		DistanceMinFares: defaultDistanceMinFares(),
		DisplayTiers:     defaultDisplayTiers(),
		DisplayMargin:    defaultDisplayMargin,
	}
}
