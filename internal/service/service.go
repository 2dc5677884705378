package service

import (
	"github.com/naijafloodwatch/backend/internal/domain"
)

// BaselineSource is re-exported from domain for convenience
type BaselineSource = domain.BaselineSource
