// Package boundary loads LGA boundaries from a GeoJSON FeatureCollection.
package boundary

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/paulmach/orb"
	"github.com/paulmach/orb/geojson"
	"github.com/paulmach/orb/planar"
	"github.com/paulmach/orb/project"

	"github.com/naijafloodwatch/backend/internal/domain"
)

// Property keys tried in order; the first non-empty string wins.
var (
	NameKeys   = []string{"ADM2_NAME", "NAME_2", "NAME", "LGA_NAME"}
	RegionKeys = []string{"NAME_1", "ADM1_NAME"}
)

// LoadAreas reads the GeoJSON file at path. Any failure is a *domain.LoadError
// and no records are returned.
func LoadAreas(path string) ([]domain.AreaRecord, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, &domain.LoadError{Path: path, Err: err}
	}

	records, err := ParseAreas(data)
	if err != nil {
		return nil, &domain.LoadError{Path: path, Err: err}
	}
	return records, nil
}

// ParseAreas converts a FeatureCollection into area records in feature order.
func ParseAreas(data []byte) ([]domain.AreaRecord, error) {
	fc, err := geojson.UnmarshalFeatureCollection(data)
	if err != nil {
		return nil, fmt.Errorf("boundary: failed to decode feature collection: %w", err)
	}
	if len(fc.Features) == 0 {
		return nil, errors.New("boundary: feature collection has no features")
	}

	records := make([]domain.AreaRecord, 0, len(fc.Features))
	for i, f := range fc.Features {
		if f.Geometry == nil {
			return nil, fmt.Errorf("boundary: feature %d has no geometry", i)
		}

		centroid := Centroid(f.Geometry)
		records = append(records, domain.AreaRecord{
			Name:        firstString(f.Properties, NameKeys),
			Region:      firstString(f.Properties, RegionKeys),
			CentroidLat: centroid.Lat(),
			CentroidLon: centroid.Lon(),
			Geometry:    f.Geometry,
		})
	}

	return records, nil
}

// Centroid returns the area-weighted centroid of g in WGS84. The geometry is
// projected to Web Mercator for the computation so elongated polygons are
// weighted by their planar shape rather than by raw degrees.
func Centroid(g orb.Geometry) orb.Point {
	projected := project.Geometry(orb.Clone(g), project.WGS84.ToMercator)
	c, _ := planar.CentroidArea(projected)
	return project.Point(c, project.Mercator.ToWGS84)
}

func firstString(props geojson.Properties, keys []string) string {
	for _, k := range keys {
		if s, ok := props[k].(string); ok {
			if s = strings.TrimSpace(s); s != "" {
				return s
			}
		}
	}
	return domain.UnknownName
}
