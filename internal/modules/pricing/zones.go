// README: Zone attribution: turns a route point sequence into distance-per-zone.
package pricing

import (
	"tratta/internal/geo"
	"tratta/internal/types"
)

// Segments shorter than about a metre are treated as noise.
const minSegmentKm = 0.001

// Attributor maps route geometry onto the zone index.
type Attributor struct {
	index *geo.Index
}

func NewAttributor(index *geo.Index) *Attributor {
	return &Attributor{index: index}
}

// Attribute returns the kilometres travelled per zone code for the given
// route points. The attribution is deliberately approximate: each segment's
// distance is split equally among every zone the segment intersects, without
// clipping the line against polygon boundaries. Route granularity bounds the
// error. Values sum to the route's segment-distance total.
func (a *Attributor) Attribute(points []types.Point) map[string]float64 {
	if len(points) == 0 {
		return map[string]float64{geo.DefaultZone: 0.1}
	}
	if len(points) == 1 {
		return map[string]float64{a.index.ContainingZone(points[0]): 0.1}
	}
	if len(points) == 2 {
		if d := geo.HaversineKm(points[0], points[1]); d < 0.1 {
			return map[string]float64{a.index.ContainingZone(points[0]): d}
		}
	}

	distances := make(map[string]float64)
	for i := 0; i+1 < len(points); i++ {
		d := geo.HaversineKm(points[i], points[i+1])
		if d < minSegmentKm {
			continue
		}
		codes := a.index.ZonesIntersectingSegment(points[i], points[i+1])
		share := d / float64(len(codes))
		for _, code := range codes {
			distances[code] += share
		}
	}
	if len(distances) == 0 {
		// Every segment was noise; attribute the direct distance.
		distances[geo.DefaultZone] = geo.HaversineKm(points[0], points[len(points)-1])
	}
	return distances
}
