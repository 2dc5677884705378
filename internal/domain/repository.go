package domain

import (
	"context"
	"time"
)

// BaselineSource loads the baseline discharge table.
// Implementations are read-only; nothing is written back.
type BaselineSource interface {
	// Key identifies the source in the asset cache
	Key() string

	// LoadBaselines reads the full table. Duplicate names resolve last-seen-wins.
	LoadBaselines(ctx context.Context) (BaselineMap, error)

	// Health checks the source is reachable
	Health(ctx context.Context) error
}

// DischargeFetcher retrieves daily river discharge for a point.
// Failures are reported as *FetchError.
type DischargeFetcher interface {
	// Forecast returns the next days of forecast discharge, starting today.
	Forecast(ctx context.Context, lat, lon float64, days int) (Series, error)

	// Historical returns observed discharge for the inclusive date range.
	Historical(ctx context.Context, lat, lon float64, start, end time.Time) (Series, error)
}
