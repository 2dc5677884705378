package service

import (
	"context"
	"fmt"
	"log/slog"
	"math"
	"sort"
	"time"

	"github.com/jonboulle/clockwork"

	"github.com/naijafloodwatch/backend/internal/domain"
	"github.com/naijafloodwatch/backend/internal/observability"
	"github.com/naijafloodwatch/backend/pkg/utils"
)

// AllRegions selects every region in area listings.
const AllRegions = "All"

// DashboardService runs one dashboard interaction at a time against an
// explicit session. A session is only modified when the interaction succeeds.
type DashboardService struct {
	catalog      *Catalog
	flood        domain.DischargeFetcher
	clock        clockwork.Clock
	forecastDays int
	metrics      *observability.Metrics
	logger       *slog.Logger
}

// NewDashboardService creates a new dashboard service
func NewDashboardService(
	catalog *Catalog,
	flood domain.DischargeFetcher,
	clock clockwork.Clock,
	forecastDays int,
	metrics *observability.Metrics,
	logger *slog.Logger,
) *DashboardService {
	return &DashboardService{
		catalog:      catalog,
		flood:        flood,
		clock:        clock,
		forecastDays: forecastDays,
		metrics:      metrics,
		logger:       logger,
	}
}

// ForecastDays is the forecast horizon and the historical look-back.
func (s *DashboardService) ForecastDays() int {
	return s.forecastDays
}

// Regions returns the distinct region names, sorted.
func (s *DashboardService) Regions() ([]string, error) {
	areas, err := s.catalog.Areas()
	if err != nil {
		return nil, err
	}

	seen := make(map[string]struct{})
	regions := make([]string, 0)
	for _, a := range areas {
		if _, ok := seen[a.Region]; ok {
			continue
		}
		seen[a.Region] = struct{}{}
		regions = append(regions, a.Region)
	}
	sort.Strings(regions)
	return regions, nil
}

// Areas lists the areas of region sorted by name. An empty region or
// AllRegions lists every area.
func (s *DashboardService) Areas(region string) ([]domain.AreaSummary, error) {
	areas, err := s.catalog.Areas()
	if err != nil {
		return nil, err
	}

	out := make([]domain.AreaSummary, 0, len(areas))
	for _, a := range areas {
		if region != "" && region != AllRegions && a.Region != region {
			continue
		}
		out = append(out, a.Summary())
	}

	sort.SliceStable(out, func(i, j int) bool {
		if out[i].Name != out[j].Name {
			return out[i].Name < out[j].Name
		}
		return out[i].Region < out[j].Region
	})
	return out, nil
}

// Nearest returns the area whose centroid is closest to (lat, lon).
func (s *DashboardService) Nearest(lat, lon float64) (domain.NearestArea, error) {
	if math.IsNaN(lat) || math.IsNaN(lon) || lat < -90 || lat > 90 || lon < -180 || lon > 180 {
		return domain.NearestArea{}, fmt.Errorf("%w: (%v, %v)", domain.ErrInvalidCoordinates, lat, lon)
	}

	areas, err := s.catalog.Areas()
	if err != nil {
		return domain.NearestArea{}, err
	}

	best := -1
	bestDist := math.Inf(1)
	for i, a := range areas {
		d := utils.Haversine(lat, lon, a.CentroidLat, a.CentroidLon)
		if d < bestDist {
			best, bestDist = i, d
		}
	}
	if best < 0 {
		return domain.NearestArea{}, domain.ErrAreaNotFound
	}

	return domain.NearestArea{
		AreaSummary: areas[best].Summary(),
		DistanceKm:  utils.RoundTo(bestDist, 2),
	}, nil
}

// SetMode switches the session mode. Changing mode clears the selection and
// any fetched results; setting the current mode again is a no-op.
func (s *DashboardService) SetMode(sess *domain.Session, mode domain.Mode) {
	if sess.CurrentMode() == mode {
		sess.Mode = mode
		return
	}
	*sess = domain.Session{Mode: mode}
}

// SelectArea makes name the session's area. When several areas share a name
// region disambiguates; with no region the first match in source order wins.
// Selecting a different area drops results fetched for the previous one.
func (s *DashboardService) SelectArea(sess *domain.Session, name, region string) error {
	areas, err := s.catalog.Areas()
	if err != nil {
		return err
	}

	for _, a := range areas {
		if a.Name != name || (region != "" && a.Region != region) {
			continue
		}

		if sess.Area == nil || sess.Area.Name != a.Name || sess.Area.Region != a.Region {
			sess.ClearResults()
		}
		sess.Area = &domain.Selection{
			Name:   a.Name,
			Region: a.Region,
			Lat:    a.CentroidLat,
			Lon:    a.CentroidLon,
		}
		return nil
	}

	return fmt.Errorf("%w: %q", domain.ErrAreaNotFound, name)
}

// Today is the current calendar date in UTC.
func (s *DashboardService) Today() time.Time {
	return domain.TruncateDay(s.clock.Now())
}

// DateWindow returns the selectable date range for mode. Both ends are inclusive.
func (s *DashboardService) DateWindow(mode domain.Mode) (time.Time, time.Time) {
	today := s.Today()
	horizon := time.Duration(s.forecastDays) * 24 * time.Hour

	from := today.Add(-horizon)
	if mode == domain.ModeHistorical {
		return from, today
	}
	return from, today.Add(horizon)
}

// Fetch runs the fetch pipeline for the session's mode, area and the given
// date. On any error the session is left exactly as it was.
func (s *DashboardService) Fetch(ctx context.Context, sess *domain.Session, date time.Time) error {
	if sess.Area == nil {
		return domain.ErrNoSelection
	}

	mode := sess.CurrentMode()
	date = domain.TruncateDay(date)
	from, to := s.DateWindow(mode)
	if date.Before(from) || date.After(to) {
		return fmt.Errorf("%w: %s is outside %s to %s", domain.ErrDateOutOfRange,
			date.Format(domain.DateLayout), from.Format(domain.DateLayout), to.Format(domain.DateLayout))
	}

	area := *sess.Area
	switch mode {
	case domain.ModeHistorical:
		result, err := s.historical(ctx, area, date)
		if err != nil {
			return err
		}
		sess.Historical = result
	default:
		result, err := s.forecast(ctx, area, date)
		if err != nil {
			return err
		}
		sess.Forecast = result
	}

	now := s.clock.Now()
	sess.Mode = mode
	sess.FetchedAt = &now
	return nil
}

func (s *DashboardService) forecast(ctx context.Context, area domain.Selection, date time.Time) (*domain.ForecastResult, error) {
	series, err := s.flood.Forecast(ctx, area.Lat, area.Lon, s.forecastDays)
	if err != nil {
		return nil, err
	}

	baseline := s.baselineFor(ctx, area.Name)
	result := &domain.ForecastResult{
		Area:   area.Name,
		Region: area.Region,
		Date:   date,
		Series: series,
		Chart:  domain.Assemble(fmt.Sprintf("%d-Day Forecast for %s", s.forecastDays, area.Name), series, baseline),
	}

	if obs, ok := series.Find(date); ok {
		result.Metrics = s.assess(obs, baseline)
	} else {
		result.Warning = fmt.Sprintf("Selected date is outside the forecast range. Displaying full %d-day forecast.", s.forecastDays)
	}
	return result, nil
}

func (s *DashboardService) historical(ctx context.Context, area domain.Selection, date time.Time) (*domain.HistoricalResult, error) {
	series, err := s.flood.Historical(ctx, area.Lat, area.Lon, date, date)
	if err != nil {
		return nil, err
	}

	result := &domain.HistoricalResult{
		Area:   area.Name,
		Region: area.Region,
		Date:   date,
	}

	if obs, ok := series.Find(date); ok {
		result.Metrics = s.assess(obs, s.baselineFor(ctx, area.Name))
	} else {
		result.Warning = fmt.Sprintf("No discharge reported for %s.", date.Format(domain.DateLayout))
	}
	return result, nil
}

func (s *DashboardService) assess(obs domain.Observation, baseline *float64) *domain.DischargeMetrics {
	risk := domain.Classify(domain.Ratio(obs.DischargeMax, baseline))
	s.metrics.RiskAssessments.WithLabelValues(string(risk.Tier)).Inc()

	return &domain.DischargeMetrics{
		Date:      obs.Date,
		Discharge: obs.DischargeMax,
		Baseline:  baseline,
		Risk:      risk,
	}
}

// baselineFor returns nil when the area has no usable baseline. An unreadable
// baseline source degrades to unknown risk rather than failing the interaction.
func (s *DashboardService) baselineFor(ctx context.Context, name string) *float64 {
	table, err := s.catalog.Baselines(ctx)
	if err != nil {
		s.logger.Warn("baseline table unavailable, risk will be unknown", "area", name, "error", err)
		return nil
	}

	v, ok := table.Lookup(name)
	if !ok {
		return nil
	}
	return &v
}

// About describes the dashboard and its data sources.
func (s *DashboardService) About() map[string]any {
	return map[string]any{
		"name":        "NaijaFloodWatch",
		"description": "Flood risk monitoring and forecasting for Local Government Areas across Nigeria.",
		"features": []string{
			fmt.Sprintf("%d-day river discharge forecasts", s.forecastDays),
			"Risk assessment against the 14 Sep 2022 flood baseline",
			"Single-day historical discharge",
			"Manual fetch for updated data",
		},
		"data_sources": "Copernicus GloFAS via the Open-Meteo flood API; baseline = discharge on 14 Sep 2022.",
		"risk_tiers": map[string]string{
			string(domain.TierLow):     fmt.Sprintf("ratio <= %.1f", domain.LowRiskMaxRatio),
			string(domain.TierMedium):  fmt.Sprintf("%.1f < ratio <= %.1f", domain.LowRiskMaxRatio, domain.MediumRiskMaxRatio),
			string(domain.TierHigh):    fmt.Sprintf("ratio > %.1f", domain.MediumRiskMaxRatio),
			string(domain.TierUnknown): "no baseline available",
		},
		"disclaimer": "Fetches are manual. Forecast metrics are only shown for dates within the forecast range.",
	}
}
