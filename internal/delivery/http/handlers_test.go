package http

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	nethttp "net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/session"
	"github.com/jonboulle/clockwork"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/naijafloodwatch/backend/internal/domain"
	"github.com/naijafloodwatch/backend/internal/observability"
	"github.com/naijafloodwatch/backend/internal/repository/csvfile"
	"github.com/naijafloodwatch/backend/internal/service"
)

const testAreas = `{
  "type": "FeatureCollection",
  "features": [
    {"type": "Feature", "properties": {"NAME_2": "Example LGA", "NAME_1": "Example State"},
     "geometry": {"type": "Polygon", "coordinates": [[[7.5, 8.5], [8.5, 8.5], [8.5, 9.5], [7.5, 9.5], [7.5, 8.5]]]}},
    {"type": "Feature", "properties": {"ADM2_NAME": "Ikeja", "NAME_1": "Lagos"},
     "geometry": {"type": "Polygon", "coordinates": [[[3.3, 6.5], [3.4, 6.5], [3.4, 6.7], [3.3, 6.7], [3.3, 6.5]]]}}
  ]
}`

const testBaselines = "LGA,baseline\nExample LGA,150\nIkeja,40\n"

// floodAPI is a fake Open-Meteo endpoint whose failure mode can be toggled.
type floodAPI struct {
	mu     sync.Mutex
	status int
	calls  int
}

func (f *floodAPI) fail(status int) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.status = status
}

func (f *floodAPI) ServeHTTP(w nethttp.ResponseWriter, _ *nethttp.Request) {
	f.mu.Lock()
	status := f.status
	f.calls++
	f.mu.Unlock()

	w.Header().Set("Content-Type", "application/json")
	if status != 0 {
		w.WriteHeader(status)
		fmt.Fprint(w, `{"error":true,"reason":"upstream unavailable"}`)
		return
	}
	fmt.Fprint(w, `{"daily":{"time":["2024-09-10","2024-09-11","2024-09-12"],"river_discharge_max":[180,200,90]}}`)
}

type testEnv struct {
	app *fiber.App
	api *floodAPI
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	dir := t.TempDir()
	geoPath := filepath.Join(dir, "areas.geojson")
	csvPath := filepath.Join(dir, "baselines.csv")
	require.NoError(t, os.WriteFile(geoPath, []byte(testAreas), 0o600))
	require.NoError(t, os.WriteFile(csvPath, []byte(testBaselines), 0o600))

	api := &floodAPI{}
	srv := httptest.NewServer(api)
	t.Cleanup(srv.Close)

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	metrics := observability.NewMetricsForTesting()
	catalog := service.NewCatalog(geoPath, csvfile.NewBaselineRepository(csvPath), metrics)
	flood := service.NewFloodService(srv.URL, 5*time.Second, metrics, logger)
	clock := clockwork.NewFakeClockAt(time.Date(2024, 9, 10, 9, 0, 0, 0, time.UTC))
	dashboard := service.NewDashboardService(catalog, flood, clock, 7, metrics, logger)

	app := fiber.New(fiber.Config{ErrorHandler: ErrorHandler(logger)})
	store := NewSessionStore(session.Config{Expiration: time.Hour})
	SetupRoutes(app, NewHandler(dashboard, catalog, store, logger))

	return &testEnv{app: app, api: api}
}

// client replays the session cookie across requests like a browser would.
type client struct {
	t      *testing.T
	env    *testEnv
	cookie *nethttp.Cookie
}

func (e *testEnv) client(t *testing.T) *client {
	return &client{t: t, env: e}
}

func (c *client) do(method, path string, body any) *nethttp.Response {
	c.t.Helper()

	var reader io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(c.t, err)
		reader = bytes.NewReader(raw)
	}
	req := httptest.NewRequest(method, path, reader)
	if body != nil {
		req.Header.Set(fiber.HeaderContentType, fiber.MIMEApplicationJSON)
	}
	if c.cookie != nil {
		req.AddCookie(c.cookie)
	}

	resp, err := c.env.app.Test(req, -1)
	require.NoError(c.t, err)
	for _, ck := range resp.Cookies() {
		if ck.Name == SessionCookie {
			c.cookie = ck
		}
	}
	return resp
}

func decode(t *testing.T, resp *nethttp.Response) map[string]any {
	t.Helper()
	defer resp.Body.Close()

	var out map[string]any
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&out))
	return out
}

func sessionData(t *testing.T, resp *nethttp.Response) map[string]any {
	t.Helper()
	body := decode(t, resp)
	data, ok := body["data"].(map[string]any)
	require.True(t, ok, "response has no data object: %v", body)
	return data
}

func TestHealthAndReady(t *testing.T) {
	env := newTestEnv(t)
	c := env.client(t)

	resp := c.do(fiber.MethodGet, "/health", nil)
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)
	assert.Equal(t, "ok", decode(t, resp)["status"])

	resp = c.do(fiber.MethodGet, "/ready", nil)
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)

	resp = c.do(fiber.MethodGet, "/metrics", nil)
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)
}

func TestReferenceData(t *testing.T) {
	env := newTestEnv(t)
	c := env.client(t)

	resp := c.do(fiber.MethodGet, "/api/v1/regions", nil)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
	assert.Equal(t, []any{"All", "Example State", "Lagos"}, decode(t, resp)["data"])

	resp = c.do(fiber.MethodGet, "/api/v1/areas?state=Lagos", nil)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
	body := decode(t, resp)
	assert.Equal(t, float64(1), body["count"])

	resp = c.do(fiber.MethodGet, "/api/v1/areas", nil)
	assert.Equal(t, float64(2), decode(t, resp)["count"])

	resp = c.do(fiber.MethodGet, "/api/v1/about", nil)
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)
}

func TestNearestArea(t *testing.T) {
	env := newTestEnv(t)
	c := env.client(t)

	resp := c.do(fiber.MethodGet, "/api/v1/areas/nearest?lat=6.6&lon=3.35", nil)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
	assert.Equal(t, "Ikeja", sessionData(t, resp)["name"])

	resp = c.do(fiber.MethodGet, "/api/v1/areas/nearest?lat=abc&lon=3", nil)
	assert.Equal(t, fiber.StatusBadRequest, resp.StatusCode)

	resp = c.do(fiber.MethodGet, "/api/v1/areas/nearest?lat=95&lon=3", nil)
	assert.Equal(t, fiber.StatusBadRequest, resp.StatusCode)
	assert.Equal(t, true, decode(t, resp)["error"])
}

func TestSessionDefaults(t *testing.T) {
	env := newTestEnv(t)
	c := env.client(t)

	resp := c.do(fiber.MethodGet, "/api/v1/session", nil)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
	require.NotNil(t, c.cookie, "session cookie issued")

	data := sessionData(t, resp)
	assert.Equal(t, "forecast", data["mode"])
	assert.Nil(t, data["area"])
	assert.Equal(t, map[string]any{"min": "2024-09-03", "max": "2024-09-17"}, data["date_window"])
}

func TestSessionValidation(t *testing.T) {
	env := newTestEnv(t)
	c := env.client(t)

	resp := c.do(fiber.MethodPut, "/api/v1/session/mode", map[string]string{"mode": "nowcast"})
	assert.Equal(t, fiber.StatusBadRequest, resp.StatusCode)

	resp = c.do(fiber.MethodPut, "/api/v1/session/area", map[string]string{"name": "Atlantis"})
	assert.Equal(t, fiber.StatusNotFound, resp.StatusCode)

	resp = c.do(fiber.MethodPut, "/api/v1/session/area", map[string]string{"name": " "})
	assert.Equal(t, fiber.StatusBadRequest, resp.StatusCode)

	resp = c.do(fiber.MethodPost, "/api/v1/fetch", nil)
	assert.Equal(t, fiber.StatusBadRequest, resp.StatusCode)
	assert.Zero(t, env.api.calls)

	resp = c.do(fiber.MethodGet, "/api/v1/chart.png", nil)
	assert.Equal(t, fiber.StatusNotFound, resp.StatusCode)
}

func TestFetchForecastFlow(t *testing.T) {
	env := newTestEnv(t)
	c := env.client(t)

	resp := c.do(fiber.MethodPut, "/api/v1/session/area", map[string]string{"name": "Example LGA", "region": "All"})
	require.Equal(t, fiber.StatusOK, resp.StatusCode)

	resp = c.do(fiber.MethodPost, "/api/v1/fetch", map[string]string{"date": "2024-09-31"})
	assert.Equal(t, fiber.StatusBadRequest, resp.StatusCode)

	resp = c.do(fiber.MethodPost, "/api/v1/fetch", map[string]string{"date": "2024-09-20"})
	assert.Equal(t, fiber.StatusBadRequest, resp.StatusCode)

	resp = c.do(fiber.MethodPost, "/api/v1/fetch", map[string]string{"date": "2024-09-10"})
	require.Equal(t, fiber.StatusOK, resp.StatusCode)

	data := sessionData(t, resp)
	assert.Equal(t, map[string]any{
		"discharge": "180.00",
		"baseline":  "150.00",
		"ratio":     "1.20",
		"risk":      "Medium",
	}, data["display"])

	resp = c.do(fiber.MethodGet, "/api/v1/chart.png?width=10&height=5000", nil)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
	assert.Equal(t, "image/png", resp.Header.Get(fiber.HeaderContentType))
	png, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	assert.True(t, bytes.HasPrefix(png, []byte("\x89PNG")))

	resp = c.do(fiber.MethodGet, "/api/v1/areas/geojson", nil)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
	assert.Equal(t, "application/geo+json", resp.Header.Get(fiber.HeaderContentType))
	fc := decode(t, resp)
	features := fc["features"].([]any)
	require.Len(t, features, 2)
	props := features[0].(map[string]any)["properties"].(map[string]any)
	assert.Equal(t, true, props["selected"])
	assert.Equal(t, domain.ColorMedium, props["fill"])
	other := features[1].(map[string]any)["properties"].(map[string]any)
	assert.Equal(t, false, other["selected"])
}

func TestFetchErrorKeepsSession(t *testing.T) {
	env := newTestEnv(t)
	c := env.client(t)

	c.do(fiber.MethodPut, "/api/v1/session/area", map[string]string{"name": "Ikeja"})
	resp := c.do(fiber.MethodPost, "/api/v1/fetch", map[string]string{"date": "2024-09-11"})
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
	before := sessionData(t, resp)

	env.api.fail(fiber.StatusServiceUnavailable)
	resp = c.do(fiber.MethodPost, "/api/v1/fetch", map[string]string{"date": "2024-09-12"})
	require.Equal(t, fiber.StatusBadGateway, resp.StatusCode)
	assert.Contains(t, decode(t, resp)["message"], "upstream unavailable")

	resp = c.do(fiber.MethodGet, "/api/v1/session", nil)
	after := sessionData(t, resp)
	assert.Equal(t, before, after)
	assert.Equal(t, "200.00", after["display"].(map[string]any)["discharge"])
}

func TestHistoricalModeFlow(t *testing.T) {
	env := newTestEnv(t)
	c := env.client(t)

	c.do(fiber.MethodPut, "/api/v1/session/area", map[string]string{"name": "Ikeja"})
	resp := c.do(fiber.MethodPut, "/api/v1/session/mode", map[string]string{"mode": "Historical"})
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
	data := sessionData(t, resp)
	assert.Equal(t, "historical", data["mode"])
	assert.Nil(t, data["area"], "mode change clears the selection")
	assert.Equal(t, map[string]any{"min": "2024-09-03", "max": "2024-09-10"}, data["date_window"])

	c.do(fiber.MethodPut, "/api/v1/session/area", map[string]string{"name": "Ikeja"})
	resp = c.do(fiber.MethodPost, "/api/v1/fetch", nil)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)

	data = sessionData(t, resp)
	display := data["display"].(map[string]any)
	assert.Equal(t, "180.00", display["discharge"])
	assert.Equal(t, "High", display["risk"])

	resp = c.do(fiber.MethodGet, "/api/v1/chart.png", nil)
	assert.Equal(t, fiber.StatusNotFound, resp.StatusCode)
}

func TestSessionsAreIsolated(t *testing.T) {
	env := newTestEnv(t)
	alice := env.client(t)
	bob := env.client(t)

	alice.do(fiber.MethodPut, "/api/v1/session/area", map[string]string{"name": "Ikeja"})
	resp := bob.do(fiber.MethodGet, "/api/v1/session", nil)

	assert.Nil(t, sessionData(t, resp)["area"])
	assert.NotEqual(t, alice.cookie.Value, bob.cookie.Value)
}

func TestReload(t *testing.T) {
	env := newTestEnv(t)
	c := env.client(t)

	c.do(fiber.MethodGet, "/api/v1/areas", nil)

	resp := c.do(fiber.MethodPost, "/api/v1/admin/reload", map[string]string{"key": "geojson:nope"})
	assert.Equal(t, fiber.StatusNotFound, resp.StatusCode)

	resp = c.do(fiber.MethodPost, "/api/v1/admin/reload", nil)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
	invalidated := decode(t, resp)["invalidated"].([]any)
	require.Len(t, invalidated, 2)
	assert.True(t, strings.HasPrefix(invalidated[0].(string), "geojson:"))
	assert.True(t, strings.HasPrefix(invalidated[1].(string), "csv:"))
}
