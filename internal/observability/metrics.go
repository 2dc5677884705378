package observability

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Metrics holds the Prometheus collectors for the dashboard backend.
type Metrics struct {
	// Flood API metrics.
	FetchRequests *prometheus.CounterVec   // labels: mode={forecast,historical}, outcome={success,error}
	FetchDuration *prometheus.HistogramVec // labels: mode

	// Asset cache metrics.
	CatalogLookups *prometheus.CounterVec // labels: asset={areas,baselines}, result={hit,miss,error}
	AreasLoaded    prometheus.Gauge

	RiskAssessments *prometheus.CounterVec // labels: tier
}

// NewMetrics creates and registers all metrics with the default Prometheus registry.
func NewMetrics() *Metrics {
	m := newMetrics()
	prometheus.MustRegister(
		m.FetchRequests,
		m.FetchDuration,
		m.CatalogLookups,
		m.AreasLoaded,
		m.RiskAssessments,
	)
	return m
}

// NewMetricsForTesting creates unregistered Metrics so tests can build as
// many as they like without "already registered" panics.
func NewMetricsForTesting() *Metrics {
	return newMetrics()
}

func newMetrics() *Metrics {
	return &Metrics{
		FetchRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "floodwatch",
			Name:      "fetch_requests_total",
			Help:      "Flood API requests by mode and outcome.",
		}, []string{"mode", "outcome"}),
		FetchDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "floodwatch",
			Name:      "fetch_duration_seconds",
			Help:      "Flood API request duration in seconds.",
			Buckets:   []float64{0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30},
		}, []string{"mode"}),
		CatalogLookups: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "floodwatch",
			Name:      "catalog_lookups_total",
			Help:      "Asset cache lookups by asset and result.",
		}, []string{"asset", "result"}),
		AreasLoaded: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "floodwatch",
			Name:      "areas_loaded",
			Help:      "Number of LGA records currently cached.",
		}),
		RiskAssessments: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "floodwatch",
			Name:      "risk_assessments_total",
			Help:      "Risk classifications served, by tier.",
		}, []string{"tier"}),
	}
}
