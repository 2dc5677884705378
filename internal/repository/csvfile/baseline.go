// Package csvfile reads the baseline discharge table from a CSV file.
package csvfile

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/naijafloodwatch/backend/internal/domain"
)

// Required header columns.
const (
	NameColumn     = "LGA"
	BaselineColumn = "baseline"
)

// BaselineRepository implements domain.BaselineSource over a CSV file.
type BaselineRepository struct {
	path string
}

// NewBaselineRepository creates a CSV-backed baseline source
func NewBaselineRepository(path string) *BaselineRepository {
	return &BaselineRepository{path: path}
}

// Key identifies the file in the asset cache
func (r *BaselineRepository) Key() string {
	return "csv:" + r.path
}

// LoadBaselines reads the whole file
func (r *BaselineRepository) LoadBaselines(_ context.Context) (domain.BaselineMap, error) {
	return LoadBaselines(r.path)
}

// Health checks the file is present
func (r *BaselineRepository) Health(_ context.Context) error {
	if _, err := os.Stat(r.path); err != nil {
		return fmt.Errorf("csvfile: health check failed: %w", err)
	}
	return nil
}

// LoadBaselines reads the CSV at path. Failures are *domain.LoadError.
func LoadBaselines(path string) (domain.BaselineMap, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, &domain.LoadError{Path: path, Err: err}
	}
	defer f.Close()

	baselines, err := ParseBaselines(f)
	if err != nil {
		return nil, &domain.LoadError{Path: path, Err: err}
	}
	return baselines, nil
}

// ParseBaselines reads rows keyed by the LGA column. A name seen twice keeps
// its last row; a blank baseline cell marks that name as having no baseline.
func ParseBaselines(r io.Reader) (domain.BaselineMap, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1
	reader.TrimLeadingSpace = true

	header, err := reader.Read()
	if err != nil {
		return nil, fmt.Errorf("csvfile: failed to read header: %w", err)
	}

	nameCol, valueCol := -1, -1
	for i, h := range header {
		switch strings.TrimSpace(strings.TrimPrefix(h, "\ufeff")) {
		case NameColumn:
			nameCol = i
		case BaselineColumn:
			valueCol = i
		}
	}
	if nameCol < 0 || valueCol < 0 {
		return nil, fmt.Errorf("csvfile: header must contain %q and %q columns", NameColumn, BaselineColumn)
	}

	baselines := make(domain.BaselineMap)
	for row := 2; ; row++ {
		record, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("csvfile: failed to read row %d: %w", row, err)
		}
		if len(record) <= max(nameCol, valueCol) {
			return nil, fmt.Errorf("csvfile: row %d has %d columns", row, len(record))
		}

		name := strings.TrimSpace(record[nameCol])
		if name == "" {
			continue
		}

		raw := strings.TrimSpace(record[valueCol])
		if raw == "" {
			delete(baselines, name)
			continue
		}

		value, err := strconv.ParseFloat(raw, 64)
		if err != nil {
			return nil, fmt.Errorf("csvfile: row %d: invalid baseline %q: %w", row, raw, err)
		}
		baselines[name] = value
	}

	return baselines, nil
}
