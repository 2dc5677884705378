package domain

import "time"

// Point is one (date, value) pair on a chart line.
type Point struct {
	Date  time.Time `json:"date"`
	Value float64   `json:"value"`
}

// ChartModel is the display-ready forecast chart. Baseline and the two
// threshold lines are either all present or all nil.
type ChartModel struct {
	Title         string  `json:"title"`
	Line          []Point `json:"line"`
	Baseline      []Point `json:"baseline,omitempty"`
	LowThreshold  []Point `json:"low_threshold,omitempty"`
	HighThreshold []Point `json:"high_threshold,omitempty"`
}

// HasThresholds reports whether the chart carries baseline banding.
func (m *ChartModel) HasThresholds() bool {
	return m != nil && m.Baseline != nil
}

// Assemble builds the chart for series. The series order is kept as given.
// An empty series yields nil: there is no chart to render.
func Assemble(title string, series Series, baseline *float64) *ChartModel {
	if len(series) == 0 {
		return nil
	}

	model := &ChartModel{
		Title: title,
		Line:  make([]Point, len(series)),
	}
	for i, o := range series {
		model.Line[i] = Point{Date: o.Date, Value: o.DischargeMax}
	}

	if baseline == nil {
		return model
	}

	model.Baseline = constantLine(series, *baseline)
	model.LowThreshold = constantLine(series, *baseline*LowRiskMaxRatio)
	model.HighThreshold = constantLine(series, *baseline*MediumRiskMaxRatio)
	return model
}

func constantLine(series Series, value float64) []Point {
	points := make([]Point, len(series))
	for i, o := range series {
		points[i] = Point{Date: o.Date, Value: value}
	}
	return points
}
