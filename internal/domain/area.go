package domain

import "github.com/paulmach/orb"

// UnknownName labels an area or region whose source properties carry no usable name.
const UnknownName = "Unknown"

// AreaRecord is one LGA parsed from the boundary asset.
// Records are shared read-only across sessions once loaded.
type AreaRecord struct {
	Name        string       `json:"name"`
	Region      string       `json:"region"`
	CentroidLat float64      `json:"lat"`
	CentroidLon float64      `json:"lon"`
	Geometry    orb.Geometry `json:"-"`
}

// Summary returns the selectable (name, region) pair for the record.
func (a AreaRecord) Summary() AreaSummary {
	return AreaSummary{
		Name:   a.Name,
		Region: a.Region,
		Lat:    a.CentroidLat,
		Lon:    a.CentroidLon,
	}
}

// AreaSummary is an area as listed in the dashboard selector
type AreaSummary struct {
	Name   string  `json:"name"`
	Region string  `json:"region"`
	Lat    float64 `json:"lat"`
	Lon    float64 `json:"lon"`
}

// NearestArea is an area together with its distance from a queried point
type NearestArea struct {
	AreaSummary
	DistanceKm float64 `json:"distance_km"`
}
