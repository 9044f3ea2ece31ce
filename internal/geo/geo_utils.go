// README: Pure geographic computation helpers (great-circle math, interpolation).
package geo

import (
	"math"

	"tratta/internal/types"
)

const earthRadiusKm = 6371.0

// HaversineKm returns the great-circle distance in kilometres between two
// points specified in decimal degrees. Invalid arithmetic (NaN/Inf inputs or
// results) yields a small positive fallback instead of an error: callers in
// the pricing path must always get a usable number.
func HaversineKm(a, b types.Point) float64 {
	dLat := degreesToRadians(b.Lat - a.Lat)
	dLng := degreesToRadians(b.Lng - a.Lng)

	rLat1 := degreesToRadians(a.Lat)
	rLat2 := degreesToRadians(b.Lat)

	h := math.Sin(dLat/2)*math.Sin(dLat/2) +
		math.Cos(rLat1)*math.Cos(rLat2)*math.Sin(dLng/2)*math.Sin(dLng/2)
	c := 2 * math.Atan2(math.Sqrt(h), math.Sqrt(1-h))

	d := earthRadiusKm * c
	if math.IsNaN(d) || math.IsInf(d, 0) {
		return 0.1
	}
	return d
}

// Interpolate returns segments+1 points evenly spaced on the straight line
// from a to b, endpoints included.
func Interpolate(a, b types.Point, segments int) []types.Point {
	if segments < 1 {
		segments = 1
	}
	points := make([]types.Point, 0, segments+1)
	for i := 0; i <= segments; i++ {
		t := float64(i) / float64(segments)
		points = append(points, types.Point{
			Lat: a.Lat + t*(b.Lat-a.Lat),
			Lng: a.Lng + t*(b.Lng-a.Lng),
		})
	}
	return points
}

func degreesToRadians(deg float64) float64 {
	return deg * math.Pi / 180.0
}
