package service

import (
	"context"
	"errors"
	"sync"

	"github.com/naijafloodwatch/backend/internal/domain"
	"github.com/naijafloodwatch/backend/internal/observability"
	"github.com/naijafloodwatch/backend/internal/repository/boundary"
)

// AreaLoader reads area records from a boundary asset
type AreaLoader func(path string) ([]domain.AreaRecord, error)

// Catalog is the process-wide read-through cache of static assets, keyed by
// asset key. Entries live until invalidated; failed loads are not cached.
// Returned slices and maps are shared and must not be modified.
type Catalog struct {
	geojsonPath string
	loadAreas   AreaLoader
	baselines   domain.BaselineSource
	metrics     *observability.Metrics

	mu     sync.Mutex
	areas  map[string][]domain.AreaRecord
	tables map[string]domain.BaselineMap
}

// NewCatalog creates a catalog over the GeoJSON file and baseline source
func NewCatalog(geojsonPath string, baselines domain.BaselineSource, metrics *observability.Metrics) *Catalog {
	return &Catalog{
		geojsonPath: geojsonPath,
		loadAreas:   boundary.LoadAreas,
		baselines:   baselines,
		metrics:     metrics,
		areas:       make(map[string][]domain.AreaRecord),
		tables:      make(map[string]domain.BaselineMap),
	}
}

// AreasKey is the cache key of the boundary asset
func (c *Catalog) AreasKey() string {
	return "geojson:" + c.geojsonPath
}

// BaselinesKey is the cache key of the baseline source
func (c *Catalog) BaselinesKey() string {
	return c.baselines.Key()
}

// Areas returns the cached area records, loading them on first use.
func (c *Catalog) Areas() ([]domain.AreaRecord, error) {
	key := c.AreasKey()

	c.mu.Lock()
	defer c.mu.Unlock()

	if records, ok := c.areas[key]; ok {
		c.metrics.CatalogLookups.WithLabelValues("areas", "hit").Inc()
		return records, nil
	}

	records, err := c.loadAreas(c.geojsonPath)
	if err != nil {
		c.metrics.CatalogLookups.WithLabelValues("areas", "error").Inc()
		return nil, err
	}

	c.metrics.CatalogLookups.WithLabelValues("areas", "miss").Inc()
	c.metrics.AreasLoaded.Set(float64(len(records)))
	c.areas[key] = records
	return records, nil
}

// Baselines returns the cached baseline table, loading it on first use.
// Source errors are reported as *domain.LoadError.
func (c *Catalog) Baselines(ctx context.Context) (domain.BaselineMap, error) {
	key := c.BaselinesKey()

	c.mu.Lock()
	defer c.mu.Unlock()

	if table, ok := c.tables[key]; ok {
		c.metrics.CatalogLookups.WithLabelValues("baselines", "hit").Inc()
		return table, nil
	}

	table, err := c.baselines.LoadBaselines(ctx)
	if err != nil {
		c.metrics.CatalogLookups.WithLabelValues("baselines", "error").Inc()
		var loadErr *domain.LoadError
		if !errors.As(err, &loadErr) {
			err = &domain.LoadError{Path: key, Err: err}
		}
		return nil, err
	}

	c.metrics.CatalogLookups.WithLabelValues("baselines", "miss").Inc()
	c.tables[key] = table
	return table, nil
}

// Invalidate drops the entry for key so the next lookup reloads it.
// It reports whether anything was cached under key.
func (c *Catalog) Invalidate(key string) bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	_, hadAreas := c.areas[key]
	_, hadTable := c.tables[key]
	delete(c.areas, key)
	delete(c.tables, key)
	if hadAreas {
		c.metrics.AreasLoaded.Set(0)
	}
	return hadAreas || hadTable
}

// InvalidateAll empties the cache.
func (c *Catalog) InvalidateAll() {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.areas = make(map[string][]domain.AreaRecord)
	c.tables = make(map[string]domain.BaselineMap)
	c.metrics.AreasLoaded.Set(0)
}

// CheckReadiness reports whether areas are loadable and the baseline source is reachable.
func (c *Catalog) CheckReadiness(ctx context.Context) error {
	if _, err := c.Areas(); err != nil {
		return err
	}
	return c.baselines.Health(ctx)
}
