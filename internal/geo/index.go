// README: Spatial index over named zone polygons (R-tree candidates + true geometry tests).
package geo

import (
	"github.com/paulmach/orb"
	"github.com/paulmach/orb/planar"
	"github.com/tidwall/rtree"

	"tratta/internal/types"
)

// DefaultZone is the reserved catch-all zone code. It always resolves, even
// when no reference data could be loaded.
const DefaultZone = "DEFAULT"

// Zone is a named geographic area used to look up price multipliers.
type Zone struct {
	Code     string
	Name     string
	Geometry orb.Geometry
}

// Index answers point-in-zone and segment-crosses-zone queries. It is built
// once at startup and read-only afterwards, so lookups are safe to run from
// concurrent request handlers without locking.
type Index struct {
	tree  rtree.RTree
	zones []*Zone
}

// NewIndex builds an Index from the given zones.
func NewIndex(zones []Zone) *Index {
	ix := &Index{zones: make([]*Zone, 0, len(zones))}
	for i := range zones {
		z := zones[i]
		if z.Geometry == nil {
			continue
		}
		zp := &z
		ix.zones = append(ix.zones, zp)
		b := z.Geometry.Bound()
		ix.tree.Insert(
			[2]float64{b.Min[0], b.Min[1]},
			[2]float64{b.Max[0], b.Max[1]},
			zp,
		)
	}
	return ix
}

// Len returns the number of indexed zones.
func (ix *Index) Len() int { return len(ix.zones) }

// Codes returns the codes of all indexed zones.
func (ix *Index) Codes() []string {
	codes := make([]string, 0, len(ix.zones))
	for _, z := range ix.zones {
		codes = append(codes, z.Code)
	}
	return codes
}

// ContainingZone returns the code of the first zone whose geometry contains
// the point, or DefaultZone when none does.
func (ix *Index) ContainingZone(p types.Point) string {
	pt := orb.Point{p.Lng, p.Lat}
	code := DefaultZone
	ix.tree.Search(
		[2]float64{pt[0], pt[1]},
		[2]float64{pt[0], pt[1]},
		func(_, _ [2]float64, data interface{}) bool {
			z := data.(*Zone)
			if geometryContains(z.Geometry, pt) {
				code = z.Code
				return false
			}
			return true
		},
	)
	return code
}

// ZonesIntersectingSegment returns the codes of all zones the straight segment
// a→b passes through. An empty intersection degrades to {DefaultZone}.
func (ix *Index) ZonesIntersectingSegment(a, b types.Point) []string {
	pa := orb.Point{a.Lng, a.Lat}
	pb := orb.Point{b.Lng, b.Lat}

	minX, maxX := pa[0], pb[0]
	if minX > maxX {
		minX, maxX = maxX, minX
	}
	minY, maxY := pa[1], pb[1]
	if minY > maxY {
		minY, maxY = maxY, minY
	}

	var codes []string
	seen := make(map[string]bool)
	ix.tree.Search(
		[2]float64{minX, minY},
		[2]float64{maxX, maxY},
		func(_, _ [2]float64, data interface{}) bool {
			z := data.(*Zone)
			if !seen[z.Code] && geometryIntersectsSegment(z.Geometry, pa, pb) {
				seen[z.Code] = true
				codes = append(codes, z.Code)
			}
			return true
		},
	)
	if len(codes) == 0 {
		return []string{DefaultZone}
	}
	return codes
}

// Contains reports whether an arbitrary polygonal geometry contains the
// point. Non-polygonal geometries never contain anything.
func Contains(g orb.Geometry, p types.Point) bool {
	return geometryContains(g, orb.Point{p.Lng, p.Lat})
}

func geometryContains(g orb.Geometry, pt orb.Point) bool {
	switch geom := g.(type) {
	case orb.Polygon:
		return planar.PolygonContains(geom, pt)
	case orb.MultiPolygon:
		return planar.MultiPolygonContains(geom, pt)
	}
	return false
}

func geometryIntersectsSegment(g orb.Geometry, a, b orb.Point) bool {
	switch geom := g.(type) {
	case orb.Polygon:
		return polygonIntersectsSegment(geom, a, b)
	case orb.MultiPolygon:
		for _, poly := range geom {
			if polygonIntersectsSegment(poly, a, b) {
				return true
			}
		}
	}
	return false
}

// polygonIntersectsSegment reports whether the segment a→b touches the
// polygon: either endpoint inside, or the segment crossing any ring edge.
func polygonIntersectsSegment(poly orb.Polygon, a, b orb.Point) bool {
	if planar.PolygonContains(poly, a) || planar.PolygonContains(poly, b) {
		return true
	}
	for _, ring := range poly {
		for i := 0; i+1 < len(ring); i++ {
			if segmentsCross(a, b, ring[i], ring[i+1]) {
				return true
			}
		}
	}
	return false
}

// segmentsCross is the standard orientation test for proper and collinear
// segment intersection.
func segmentsCross(p1, p2, q1, q2 orb.Point) bool {
	o1 := orientation(p1, p2, q1)
	o2 := orientation(p1, p2, q2)
	o3 := orientation(q1, q2, p1)
	o4 := orientation(q1, q2, p2)

	if o1 != o2 && o3 != o4 {
		return true
	}
	if o1 == 0 && onSegment(p1, q1, p2) {
		return true
	}
	if o2 == 0 && onSegment(p1, q2, p2) {
		return true
	}
	if o3 == 0 && onSegment(q1, p1, q2) {
		return true
	}
	if o4 == 0 && onSegment(q1, p2, q2) {
		return true
	}
	return false
}

func orientation(a, b, c orb.Point) int {
	v := (b[1]-a[1])*(c[0]-b[0]) - (b[0]-a[0])*(c[1]-b[1])
	switch {
	case v > 0:
		return 1
	case v < 0:
		return -1
	}
	return 0
}

// onSegment assumes a, b, c are collinear and reports whether b lies on ac.
func onSegment(a, b, c orb.Point) bool {
	return b[0] <= max(a[0], c[0]) && b[0] >= min(a[0], c[0]) &&
		b[1] <= max(a[1], c[1]) && b[1] >= min(a[1], c[1])
}
