package domain

import "math"

// BaselineMap maps an LGA name to its 14 Sep 2022 river discharge (m³/s).
type BaselineMap map[string]float64

// Lookup returns the baseline for name. A missing, non-positive or NaN entry
// reports ok=false so callers treat it as an unknown baseline.
func (m BaselineMap) Lookup(name string) (float64, bool) {
	v, ok := m[name]
	if !ok || math.IsNaN(v) || v <= 0 {
		return 0, false
	}
	return v, true
}
