package domain

import (
	"fmt"
	"strings"
	"time"
)

// Mode selects between the forecast horizon and a single observed day.
type Mode string

const (
	ModeForecast   Mode = "forecast"
	ModeHistorical Mode = "historical"
)

// ParseMode accepts a mode name case-insensitively.
func ParseMode(s string) (Mode, error) {
	switch Mode(strings.ToLower(strings.TrimSpace(s))) {
	case ModeForecast:
		return ModeForecast, nil
	case ModeHistorical:
		return ModeHistorical, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrInvalidMode, s)
	}
}

// Selection is the area the session is currently looking at.
type Selection struct {
	Name   string  `json:"name"`
	Region string  `json:"region"`
	Lat    float64 `json:"lat"`
	Lon    float64 `json:"lon"`
}

// DischargeMetrics are the numbers shown for one selected date.
type DischargeMetrics struct {
	Date      time.Time      `json:"date"`
	Discharge float64        `json:"discharge"`
	Baseline  *float64       `json:"baseline"`
	Risk      RiskAssessment `json:"risk"`
}

// Display renders the metric values the way the dashboard prints them,
// using "-" for anything unknown.
func (m DischargeMetrics) Display() map[string]string {
	out := map[string]string{
		"discharge": fmt.Sprintf("%.2f", m.Discharge),
		"baseline":  "-",
		"ratio":     "-",
		"risk":      string(m.Risk.Tier),
	}
	if m.Baseline != nil {
		out["baseline"] = fmt.Sprintf("%.2f", *m.Baseline)
	}
	if m.Risk.Ratio != nil {
		out["ratio"] = fmt.Sprintf("%.2f", *m.Risk.Ratio)
	}
	return out
}

// ForecastResult is the outcome of a forecast fetch for one area.
type ForecastResult struct {
	Area    string            `json:"area"`
	Region  string            `json:"region"`
	Date    time.Time         `json:"date"`
	Series  Series            `json:"series"`
	Chart   *ChartModel       `json:"chart"`
	Metrics *DischargeMetrics `json:"metrics"`
	Warning string            `json:"warning,omitempty"`
}

// HistoricalResult is the outcome of a single-day historical fetch.
type HistoricalResult struct {
	Area    string            `json:"area"`
	Region  string            `json:"region"`
	Date    time.Time         `json:"date"`
	Metrics *DischargeMetrics `json:"metrics"`
	Warning string            `json:"warning,omitempty"`
}

// Session is the per-browser interaction state. Handlers load it, pass it to
// the dashboard service and save it back; it is never shared between sessions.
type Session struct {
	Mode       Mode              `json:"mode"`
	Area       *Selection        `json:"area,omitempty"`
	Forecast   *ForecastResult   `json:"forecast,omitempty"`
	Historical *HistoricalResult `json:"historical,omitempty"`
	FetchedAt  *time.Time        `json:"fetched_at,omitempty"`
}

// NewSession returns the state a new visitor starts with.
func NewSession() *Session {
	return &Session{Mode: ModeForecast}
}

// CurrentMode returns the session mode, defaulting to forecast.
func (s *Session) CurrentMode() Mode {
	if s.Mode == "" {
		return ModeForecast
	}
	return s.Mode
}

// ClearResults drops fetched data but keeps mode and selection.
func (s *Session) ClearResults() {
	s.Forecast = nil
	s.Historical = nil
	s.FetchedAt = nil
}
