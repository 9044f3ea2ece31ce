// README: Cache entry model and canonical request hashing.
package quotecache

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"strings"
	"time"

	"tratta/internal/modules/pricing"
)

// Entry is one cached quote, keyed by the canonical request hash.
type Entry struct {
	Response  pricing.QuoteResult `json:"response"`
	CreatedAt time.Time           `json:"created_at"`
}

// Key derives the canonical deduplication hash for a request: coordinates
// rounded to 6 decimal places (~11cm), trip type, pickup date and hour with
// its UTC offset, and the vehicle category when given. Hour granularity keeps
// requests on opposite sides of the night/weekend multiplier boundaries from
// colliding on the same slot; the offset keeps equal wall-clock hours at
// different absolute instants apart, which matters for surge windows.
func Key(req pricing.QuoteRequest) string {
	canonical := fmt.Sprintf("%.6f|%.6f|%.6f|%.6f|%d|%s|%s",
		req.Pickup.Lat, req.Pickup.Lng,
		req.Dropoff.Lat, req.Dropoff.Lng,
		req.Trip,
		req.PickupAt.Format("2006-01-02T15Z07:00"),
		strings.ToLower(strings.TrimSpace(req.VehicleCategory)),
	)
	sum := sha256.Sum256([]byte(canonical))
	return hex.EncodeToString(sum[:])
}
