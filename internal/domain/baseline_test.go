package domain

import (
	"math"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestBaselineMap_Lookup(t *testing.T) {
	m := BaselineMap{
		"Example LGA": 150,
		"Zero":        0,
		"Negative":    -3,
		"NaN":         math.NaN(),
	}

	v, ok := m.Lookup("Example LGA")
	assert.True(t, ok)
	assert.Equal(t, 150.0, v)

	for _, name := range []string{"Missing", "Zero", "Negative", "NaN"} {
		_, ok := m.Lookup(name)
		assert.False(t, ok, name)
	}

	var empty BaselineMap
	_, ok = empty.Lookup("Example LGA")
	assert.False(t, ok)
}

func TestSeries_Find(t *testing.T) {
	s := sampleSeries()

	o, ok := s.Find(time.Date(2024, 9, 2, 15, 30, 0, 0, time.UTC))
	assert.True(t, ok)
	assert.Equal(t, 110.0, o.DischargeMax)

	_, ok = s.Find(day("2024-09-10"))
	assert.False(t, ok)
}

func TestParseMode(t *testing.T) {
	m, err := ParseMode(" Historical ")
	assert.NoError(t, err)
	assert.Equal(t, ModeHistorical, m)

	_, err = ParseMode("about")
	assert.ErrorIs(t, err, ErrInvalidMode)
}

func TestDischargeMetrics_Display(t *testing.T) {
	m := DischargeMetrics{Discharge: 180, Risk: Classify(nil)}
	assert.Equal(t, map[string]string{
		"discharge": "180.00",
		"baseline":  "-",
		"ratio":     "-",
		"risk":      "Unknown",
	}, m.Display())

	base := 150.0
	m = DischargeMetrics{Discharge: 180, Baseline: &base, Risk: Classify(Ratio(180, &base))}
	assert.Equal(t, "150.00", m.Display()["baseline"])
	assert.Equal(t, "1.20", m.Display()["ratio"])
	assert.Equal(t, "Medium", m.Display()["risk"])
}
