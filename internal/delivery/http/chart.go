package http

import (
	"io"
	"math"
	"time"

	"github.com/wcharczuk/go-chart/v2"
	"github.com/wcharczuk/go-chart/v2/drawing"

	"github.com/naijafloodwatch/backend/internal/domain"
)

// Chart size bounds in pixels.
const (
	DefaultChartWidth  = 1024
	DefaultChartHeight = 480
	MinChartSize       = 320
	MaxChartSize       = 2048
)

func lineStyle(hex string, dashed bool) chart.Style {
	st := chart.Style{
		StrokeColor: drawing.ColorFromHex(hex),
		StrokeWidth: 2,
	}
	if dashed {
		st.StrokeDashArray = []float64{6, 4}
	}
	return st
}

func toTimeSeries(name string, points []domain.Point, style chart.Style) chart.TimeSeries {
	ts := chart.TimeSeries{
		Name:    name,
		XValues: make([]time.Time, len(points)),
		YValues: make([]float64, len(points)),
		Style:   style,
	}
	for i, p := range points {
		ts.XValues[i] = p.Date
		ts.YValues[i] = p.Value
	}
	return ts
}

// renderChart draws model as a PNG. The discharge line is solid, the
// baseline and both risk thresholds are dashed.
func renderChart(w io.Writer, model *domain.ChartModel, width, height int) error {
	discharge := lineStyle("1f77b4", false)
	discharge.DotWidth = 3
	discharge.DotColor = drawing.ColorFromHex("1f77b4")

	series := []chart.Series{toTimeSeries("Discharge Max", model.Line, discharge)}
	if model.HasThresholds() {
		series = append(series,
			toTimeSeries("Baseline (14 Sep 2022)", model.Baseline, lineStyle("607d8b", true)),
			toTimeSeries("Low / Medium", model.LowThreshold, lineStyle(domain.ColorLow[1:], true)),
			toTimeSeries("Medium / High", model.HighThreshold, lineStyle(domain.ColorHigh[1:], true)),
		)
	}

	xRange, yRange := chartRanges(model)
	ch := chart.Chart{
		Title:  model.Title,
		Width:  width,
		Height: height,
		Background: chart.Style{
			Padding: chart.Box{Top: 40, Left: 16, Right: 16, Bottom: 16},
		},
		XAxis: chart.XAxis{
			Name:           "Date",
			ValueFormatter: chart.TimeDateValueFormatter,
			Range:          xRange,
		},
		YAxis: chart.YAxis{
			Name:  "River Discharge (m³/s)",
			Range: yRange,
		},
		Series: series,
	}
	ch.Elements = []chart.Renderable{chart.Legend(&ch)}

	return ch.Render(chart.PNG, w)
}

// chartRanges fixes both axes so single-day and flat series still have a
// non-zero span to draw on.
func chartRanges(model *domain.ChartModel) (*chart.ContinuousRange, *chart.ContinuousRange) {
	first, last := model.Line[0].Date, model.Line[0].Date
	lo, hi := math.Inf(1), math.Inf(-1)

	lines := [][]domain.Point{model.Line, model.Baseline, model.LowThreshold, model.HighThreshold}
	for _, line := range lines {
		for _, p := range line {
			if p.Date.Before(first) {
				first = p.Date
			}
			if p.Date.After(last) {
				last = p.Date
			}
			lo = math.Min(lo, p.Value)
			hi = math.Max(hi, p.Value)
		}
	}

	if !last.After(first) {
		first = first.Add(-12 * time.Hour)
		last = last.Add(12 * time.Hour)
	}
	if hi <= lo {
		lo, hi = lo-1, hi+1
	}
	pad := (hi - lo) * 0.05
	lo = math.Max(0, lo-pad)

	return &chart.ContinuousRange{Min: float64(first.UnixNano()), Max: float64(last.UnixNano())},
		&chart.ContinuousRange{Min: lo, Max: hi + pad}
}
