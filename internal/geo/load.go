// README: Zone reference-data loader (GeoJSON file with emergency fallback).
package geo

import (
	"fmt"
	"log"
	"os"

	"github.com/paulmach/orb"
	"github.com/paulmach/orb/geojson"
)

// Load reads a GeoJSON FeatureCollection of zone polygons and builds the
// spatial index. It never hard-fails: any load or parse error degrades to a
// single synthetic DEFAULT zone covering the whole world, so pricing keeps
// working with the DEFAULT multiplier.
func Load(path string) *Index {
	data, err := os.ReadFile(path)
	if err != nil {
		log.Printf("geo: cannot read %s: %v, using emergency default zone", path, err)
		return EmergencyIndex()
	}
	ix, err := ParseFeatureCollection(data)
	if err != nil {
		log.Printf("geo: cannot parse %s: %v, using emergency default zone", path, err)
		return EmergencyIndex()
	}
	log.Printf("geo: loaded %d zones from %s", ix.Len(), path)
	return ix
}

// ParseFeatureCollection builds an Index from raw GeoJSON. Zone codes come
// from the prov_acr property, display names from prov_name. Features with
// unusable geometry are skipped, not fatal.
func ParseFeatureCollection(data []byte) (*Index, error) {
	fc, err := geojson.UnmarshalFeatureCollection(data)
	if err != nil {
		return nil, fmt.Errorf("unmarshal feature collection: %w", err)
	}

	zones := make([]Zone, 0, len(fc.Features))
	for i, f := range fc.Features {
		if f.Geometry == nil {
			log.Printf("geo: feature %d has no geometry, skipping", i)
			continue
		}
		switch f.Geometry.(type) {
		case orb.Polygon, orb.MultiPolygon:
		default:
			log.Printf("geo: feature %d is %T, not a polygon, skipping", i, f.Geometry)
			continue
		}
		zones = append(zones, Zone{
			Code:     f.Properties.MustString("prov_acr", DefaultZone),
			Name:     f.Properties.MustString("prov_name", fmt.Sprintf("Zone %d", i)),
			Geometry: f.Geometry,
		})
	}
	if len(zones) == 0 {
		return nil, fmt.Errorf("no polygon features in collection")
	}
	return NewIndex(zones), nil
}

// EmergencyIndex returns an index with one DEFAULT zone covering the whole
// world bounding box.
func EmergencyIndex() *Index {
	world := orb.Polygon{{
		{-180, -90}, {180, -90}, {180, 90}, {-180, 90}, {-180, -90},
	}}
	return NewIndex([]Zone{{Code: DefaultZone, Name: "Default", Geometry: world}})
}
