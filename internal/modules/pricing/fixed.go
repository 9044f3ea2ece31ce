// README: Fixed-price rule matching (area-pair overrides, first match wins).
package pricing

import (
	"log"
	"strings"

	"tratta/internal/geo"
	"tratta/internal/types"
)

// MatchFixedPrice scans the rules in config order and returns the first
// price whose areas contain pickup and dropoff for the given category.
// Identical coordinates never match: containment would be ambiguous.
// A rule with unusable geometry is skipped, not fatal to the scan.
func MatchFixedPrice(pickup, dropoff types.Point, category string, rules []FixedPriceRule) (float64, bool) {
	if pickup == dropoff {
		log.Printf("pricing: identical pickup and dropoff, skipping fixed price check")
		return 0, false
	}

	for _, rule := range rules {
		if !strings.EqualFold(rule.VehicleCategory, category) {
			continue
		}
		if rule.PickupArea == nil || rule.DropoffArea == nil {
			log.Printf("pricing: fixed price rule %q has missing areas, skipping", rule.Name)
			continue
		}

		if geo.Contains(rule.PickupArea, pickup) && geo.Contains(rule.DropoffArea, dropoff) {
			return rule.Price, true
		}
		if rule.Bidirectional &&
			geo.Contains(rule.DropoffArea, pickup) && geo.Contains(rule.PickupArea, dropoff) {
			return rule.Price, true
		}
	}
	return 0, false
}
