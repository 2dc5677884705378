package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/naijafloodwatch/backend/internal/domain"
	"github.com/naijafloodwatch/backend/internal/observability"
)

// maxErrorBody caps how much of a failed response is read for the error message.
const maxErrorBody = 4 << 10

// FloodService fetches river discharge from the Open-Meteo flood API (GloFAS).
type FloodService struct {
	baseURL    string
	httpClient *http.Client
	metrics    *observability.Metrics
	logger     *slog.Logger
}

// NewFloodService creates a new flood API client
func NewFloodService(baseURL string, timeout time.Duration, metrics *observability.Metrics, logger *slog.Logger) *FloodService {
	return &FloodService{
		baseURL: baseURL,
		httpClient: &http.Client{
			Timeout: timeout,
		},
		metrics: metrics,
		logger:  logger,
	}
}

// floodResponse represents the Open-Meteo flood API response
type floodResponse struct {
	Daily struct {
		Time              []string   `json:"time"`
		RiverDischargeMax []*float64 `json:"river_discharge_max"`
	} `json:"daily"`
}

// floodErrorResponse is the body Open-Meteo sends with a 4xx
type floodErrorResponse struct {
	Error  bool   `json:"error"`
	Reason string `json:"reason"`
}

// Forecast fetches the discharge forecast for the next days, starting today.
func (s *FloodService) Forecast(ctx context.Context, lat, lon float64, days int) (domain.Series, error) {
	params := s.params(lat, lon)
	params.Set("forecast_days", strconv.Itoa(days))
	return s.fetch(ctx, domain.ModeForecast, params)
}

// Historical fetches observed discharge for the inclusive range [start, end].
func (s *FloodService) Historical(ctx context.Context, lat, lon float64, start, end time.Time) (domain.Series, error) {
	params := s.params(lat, lon)
	params.Set("start_date", start.Format(domain.DateLayout))
	params.Set("end_date", end.Format(domain.DateLayout))
	return s.fetch(ctx, domain.ModeHistorical, params)
}

func (s *FloodService) params(lat, lon float64) url.Values {
	return url.Values{
		"latitude":   {strconv.FormatFloat(lat, 'f', -1, 64)},
		"longitude":  {strconv.FormatFloat(lon, 'f', -1, 64)},
		"daily":      {"river_discharge_max"},
		"timeformat": {"iso8601"},
	}
}

func (s *FloodService) fetch(ctx context.Context, mode domain.Mode, params url.Values) (domain.Series, error) {
	start := time.Now()
	series, err := s.doRequest(ctx, mode, s.baseURL+"/v1/flood?"+params.Encode())
	s.metrics.FetchDuration.WithLabelValues(string(mode)).Observe(time.Since(start).Seconds())

	if err != nil {
		s.metrics.FetchRequests.WithLabelValues(string(mode), "error").Inc()
		s.logger.Warn("flood api request failed",
			"mode", mode,
			"latitude", params.Get("latitude"),
			"longitude", params.Get("longitude"),
			"error", err,
		)
		return nil, err
	}

	s.metrics.FetchRequests.WithLabelValues(string(mode), "success").Inc()
	s.logger.Debug("flood api request complete", "mode", mode, "days", len(series), "duration", time.Since(start))
	return series, nil
}

func (s *FloodService) doRequest(ctx context.Context, mode domain.Mode, fullURL string) (domain.Series, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, fullURL, nil)
	if err != nil {
		return nil, &domain.FetchError{Mode: mode, Err: fmt.Errorf("failed to create request: %w", err)}
	}
	req.Header.Set("Accept", "application/json")

	resp, err := s.httpClient.Do(req)
	if err != nil {
		return nil, &domain.FetchError{Mode: mode, Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, &domain.FetchError{Mode: mode, StatusCode: resp.StatusCode, Err: errorReason(resp.Body)}
	}

	var fr floodResponse
	if err := json.NewDecoder(resp.Body).Decode(&fr); err != nil {
		return nil, &domain.FetchError{Mode: mode, StatusCode: resp.StatusCode, Err: fmt.Errorf("failed to decode response: %w", err)}
	}

	series, err := toSeries(fr)
	if err != nil {
		return nil, &domain.FetchError{Mode: mode, StatusCode: resp.StatusCode, Err: err}
	}
	return series, nil
}

// toSeries pairs dates with values. Days the API reports as null are dropped.
func toSeries(fr floodResponse) (domain.Series, error) {
	times, values := fr.Daily.Time, fr.Daily.RiverDischargeMax
	if len(times) != len(values) {
		return nil, fmt.Errorf("response has %d dates but %d values", len(times), len(values))
	}

	series := make(domain.Series, 0, len(times))
	for i, ts := range times {
		if values[i] == nil {
			continue
		}
		date, err := domain.ParseDate(ts)
		if err != nil {
			return nil, fmt.Errorf("invalid date %q: %w", ts, err)
		}
		series = append(series, domain.Observation{Date: date, DischargeMax: *values[i]})
	}
	return series, nil
}

func errorReason(body io.Reader) error {
	raw, _ := io.ReadAll(io.LimitReader(body, maxErrorBody))

	var er floodErrorResponse
	if json.Unmarshal(raw, &er) == nil && er.Reason != "" {
		return errors.New(er.Reason)
	}
	if len(raw) == 0 {
		return errors.New("empty response body")
	}
	return errors.New(string(raw))
}
