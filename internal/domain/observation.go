package domain

import "time"

// DateLayout is the calendar date format used by the flood API and the HTTP surface.
const DateLayout = "2006-01-02"

// Observation is the daily maximum river discharge for one date.
type Observation struct {
	Date         time.Time `json:"date"`
	DischargeMax float64   `json:"discharge_max"`
}

// Series is an ordered run of observations, ascending by date as delivered by the API.
type Series []Observation

// Find returns the observation recorded for the calendar date of day.
func (s Series) Find(day time.Time) (Observation, bool) {
	want := TruncateDay(day)
	for _, o := range s {
		if TruncateDay(o.Date).Equal(want) {
			return o, true
		}
	}
	return Observation{}, false
}

// ParseDate parses a YYYY-MM-DD string into a UTC midnight time.
func ParseDate(s string) (time.Time, error) {
	return time.ParseInLocation(DateLayout, s, time.UTC)
}

// TruncateDay drops the clock part of t, keeping its calendar date in UTC.
func TruncateDay(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}
