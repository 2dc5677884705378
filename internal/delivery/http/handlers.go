package http

import (
	"bytes"
	"log/slog"
	"strconv"
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/session"
	"github.com/paulmach/orb/geojson"

	"github.com/naijafloodwatch/backend/internal/domain"
	"github.com/naijafloodwatch/backend/internal/service"
	"github.com/naijafloodwatch/backend/pkg/utils"
)

// Fill colors for the area map. A selected area with assessed risk is
// painted in its tier color instead.
const (
	areaFill     = "#ADD8E6"
	selectedFill = "#0078D7"
)

// Handler contains all HTTP handlers
type Handler struct {
	dashboardSvc *service.DashboardService
	catalog      *service.Catalog
	sessions     *session.Store
	logger       *slog.Logger
}

// NewHandler creates a new handler
func NewHandler(dashboardSvc *service.DashboardService, catalog *service.Catalog, sessions *session.Store, logger *slog.Logger) *Handler {
	return &Handler{
		dashboardSvc: dashboardSvc,
		catalog:      catalog,
		sessions:     sessions,
		logger:       logger,
	}
}

// HealthCheck returns service health status
func (h *Handler) HealthCheck(c *fiber.Ctx) error {
	return c.JSON(fiber.Map{
		"status":  "ok",
		"service": "naijafloodwatch-backend",
		"version": "1.0.0",
	})
}

// Ready reports whether the static assets and baseline source are usable
func (h *Handler) Ready(c *fiber.Ctx) error {
	if err := h.catalog.CheckReadiness(c.Context()); err != nil {
		return c.Status(fiber.StatusServiceUnavailable).JSON(fiber.Map{
			"status": "unavailable",
			"error":  err.Error(),
		})
	}
	return c.JSON(fiber.Map{"status": "ready"})
}

// GetAbout returns the static description of the dashboard
func (h *Handler) GetAbout(c *fiber.Ctx) error {
	return c.JSON(fiber.Map{
		"success": true,
		"data":    h.dashboardSvc.About(),
	})
}

// GetRegions returns the region filter options, "All" first
func (h *Handler) GetRegions(c *fiber.Ctx) error {
	regions, err := h.dashboardSvc.Regions()
	if err != nil {
		return err
	}

	return c.JSON(fiber.Map{
		"success": true,
		"data":    append([]string{service.AllRegions}, regions...),
	})
}

// GetAreas lists the areas of ?state=, or all of them
func (h *Handler) GetAreas(c *fiber.Ctx) error {
	areas, err := h.dashboardSvc.Areas(c.Query("state"))
	if err != nil {
		return err
	}

	return c.JSON(fiber.Map{
		"success": true,
		"data":    areas,
		"count":   len(areas),
	})
}

// GetNearestArea resolves ?lat=&lon= to the closest area
func (h *Handler) GetNearestArea(c *fiber.Ctx) error {
	lat, latErr := strconv.ParseFloat(c.Query("lat"), 64)
	lon, lonErr := strconv.ParseFloat(c.Query("lon"), 64)
	if latErr != nil || lonErr != nil {
		return fiber.NewError(fiber.StatusBadRequest, "lat and lon must be numbers")
	}

	area, err := h.dashboardSvc.Nearest(lat, lon)
	if err != nil {
		return err
	}

	return c.JSON(fiber.Map{
		"success": true,
		"data":    area,
	})
}

// GetAreasGeoJSON returns the area boundaries for the map layer. The
// session's selected area is flagged and filled by its latest risk.
func (h *Handler) GetAreasGeoJSON(c *fiber.Ctx) error {
	areas, err := h.catalog.Areas()
	if err != nil {
		return err
	}
	_, state, err := h.loadState(c)
	if err != nil {
		return err
	}

	fc := geojson.NewFeatureCollection()
	for _, a := range areas {
		f := geojson.NewFeature(a.Geometry)
		f.Properties["name"] = a.Name
		f.Properties["region"] = a.Region
		f.Properties["centroid"] = []float64{a.CentroidLon, a.CentroidLat}

		selected := state.Area != nil && state.Area.Name == a.Name && state.Area.Region == a.Region
		f.Properties["selected"] = selected
		f.Properties["fill"] = areaFill
		if selected {
			f.Properties["fill"] = selectedFill
			if m := latestMetrics(state); m != nil {
				f.Properties["fill"] = m.Risk.Color
				f.Properties["risk"] = m.Risk.Tier
			}
		}
		fc.Append(f)
	}

	body, err := fc.MarshalJSON()
	if err != nil {
		return err
	}
	c.Set(fiber.HeaderContentType, "application/geo+json")
	return c.Send(body)
}

// GetSession returns the caller's dashboard state
func (h *Handler) GetSession(c *fiber.Ctx) error {
	sess, state, err := h.loadState(c)
	if err != nil {
		return err
	}
	if err := h.saveState(sess, state); err != nil {
		return err
	}
	return c.JSON(h.sessionView(state))
}

type modeRequest struct {
	Mode string `json:"mode"`
}

// SetMode switches between forecast and historical mode
func (h *Handler) SetMode(c *fiber.Ctx) error {
	var req modeRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "Invalid request body")
	}
	mode, err := domain.ParseMode(req.Mode)
	if err != nil {
		return err
	}

	sess, state, err := h.loadState(c)
	if err != nil {
		return err
	}
	h.dashboardSvc.SetMode(state, mode)
	if err := h.saveState(sess, state); err != nil {
		return err
	}
	return c.JSON(h.sessionView(state))
}

type areaRequest struct {
	Name   string `json:"name"`
	Region string `json:"region"`
}

// SelectArea sets the session's area
func (h *Handler) SelectArea(c *fiber.Ctx) error {
	var req areaRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "Invalid request body")
	}
	req.Name = strings.TrimSpace(req.Name)
	if req.Name == "" {
		return fiber.NewError(fiber.StatusBadRequest, "name is required")
	}
	if req.Region == service.AllRegions {
		req.Region = ""
	}

	sess, state, err := h.loadState(c)
	if err != nil {
		return err
	}
	if err := h.dashboardSvc.SelectArea(state, req.Name, req.Region); err != nil {
		return err
	}
	if err := h.saveState(sess, state); err != nil {
		return err
	}
	return c.JSON(h.sessionView(state))
}

type fetchRequest struct {
	Date string `json:"date"`
}

// Fetch runs the explicit fetch for the session's area. The session is only
// saved when the fetch succeeds.
func (h *Handler) Fetch(c *fiber.Ctx) error {
	var req fetchRequest
	if len(c.Body()) > 0 {
		if err := c.BodyParser(&req); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "Invalid request body")
		}
	}

	date := h.dashboardSvc.Today()
	if req.Date != "" {
		parsed, err := domain.ParseDate(req.Date)
		if err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "date must be formatted as YYYY-MM-DD")
		}
		date = parsed
	}

	sess, state, err := h.loadState(c)
	if err != nil {
		return err
	}
	if err := h.dashboardSvc.Fetch(c.Context(), state, date); err != nil {
		return err
	}
	if err := h.saveState(sess, state); err != nil {
		return err
	}
	return c.JSON(h.sessionView(state))
}

// GetChart renders the session's forecast chart as PNG
func (h *Handler) GetChart(c *fiber.Ctx) error {
	_, state, err := h.loadState(c)
	if err != nil {
		return err
	}
	if state.Forecast == nil || state.Forecast.Chart == nil {
		return domain.ErrNoChart
	}

	width := int(utils.Clamp(float64(c.QueryInt("width", DefaultChartWidth)), MinChartSize, MaxChartSize))
	height := int(utils.Clamp(float64(c.QueryInt("height", DefaultChartHeight)), MinChartSize, MaxChartSize))

	var buf bytes.Buffer
	if err := renderChart(&buf, state.Forecast.Chart, width, height); err != nil {
		h.logger.Error("chart render failed", "area", state.Forecast.Area, "error", err)
		return fiber.NewError(fiber.StatusInternalServerError, "Failed to render chart")
	}

	c.Set(fiber.HeaderContentType, "image/png")
	c.Set(fiber.HeaderCacheControl, "no-store")
	return c.Send(buf.Bytes())
}

type reloadRequest struct {
	Key string `json:"key"`
}

// Reload invalidates cached static assets. With no key every asset is dropped.
func (h *Handler) Reload(c *fiber.Ctx) error {
	var req reloadRequest
	if len(c.Body()) > 0 {
		if err := c.BodyParser(&req); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "Invalid request body")
		}
	}

	if req.Key == "" {
		h.catalog.InvalidateAll()
		h.logger.Info("asset cache cleared")
		return c.JSON(fiber.Map{
			"success":     true,
			"invalidated": []string{h.catalog.AreasKey(), h.catalog.BaselinesKey()},
		})
	}

	if !h.catalog.Invalidate(req.Key) {
		return fiber.NewError(fiber.StatusNotFound, "nothing cached under "+req.Key)
	}
	h.logger.Info("asset invalidated", "key", req.Key)
	return c.JSON(fiber.Map{
		"success":     true,
		"invalidated": []string{req.Key},
	})
}

func (h *Handler) sessionView(state *domain.Session) fiber.Map {
	from, to := h.dashboardSvc.DateWindow(state.CurrentMode())

	data := fiber.Map{
		"mode":       state.CurrentMode(),
		"area":       state.Area,
		"forecast":   state.Forecast,
		"historical": state.Historical,
		"fetched_at": state.FetchedAt,
		"date_window": fiber.Map{
			"min": from.Format(domain.DateLayout),
			"max": to.Format(domain.DateLayout),
		},
	}
	if m := latestMetrics(state); m != nil {
		data["display"] = m.Display()
	}

	return fiber.Map{
		"success": true,
		"data":    data,
	}
}

// latestMetrics returns the metrics of the current mode's result, if any.
func latestMetrics(state *domain.Session) *domain.DischargeMetrics {
	switch state.CurrentMode() {
	case domain.ModeHistorical:
		if state.Historical != nil {
			return state.Historical.Metrics
		}
	default:
		if state.Forecast != nil {
			return state.Forecast.Metrics
		}
	}
	return nil
}
