package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/naijafloodwatch/backend/internal/domain"
)

// BaselineTable is the table read by BaselineRepository.
const BaselineTable = "lga_baselines"

// BaselineRepository implements domain.BaselineSource over PostgreSQL.
// It only ever reads.
type BaselineRepository struct {
	pool *pgxpool.Pool
}

// NewBaselineRepository creates a new PostgreSQL baseline source
func NewBaselineRepository(pool *pgxpool.Pool) *BaselineRepository {
	return &BaselineRepository{pool: pool}
}

// Key identifies the table in the asset cache
func (r *BaselineRepository) Key() string {
	return "postgres:" + BaselineTable
}

// LoadBaselines reads every row in insertion order so that a repeated LGA
// keeps its last value, matching the CSV source.
func (r *BaselineRepository) LoadBaselines(ctx context.Context) (domain.BaselineMap, error) {
	query := `
		SELECT lga, baseline
		FROM lga_baselines
		ORDER BY id
	`

	rows, err := r.pool.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("postgres: failed to query baselines: %w", err)
	}
	defer rows.Close()

	baselines := make(domain.BaselineMap)
	for rows.Next() {
		var (
			name  string
			value *float64
		)
		if err := rows.Scan(&name, &value); err != nil {
			return nil, fmt.Errorf("postgres: failed to scan baseline row: %w", err)
		}
		if value == nil {
			delete(baselines, name)
			continue
		}
		baselines[name] = *value
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("postgres: failed to read baselines: %w", err)
	}

	return baselines, nil
}

// Health checks database connectivity
func (r *BaselineRepository) Health(ctx context.Context) error {
	if err := r.pool.Ping(ctx); err != nil {
		return fmt.Errorf("postgres: health check failed: %w", err)
	}
	return nil
}
