package repository

import (
	"context"

	"anvil-esign/internal/domain/entity"
)

// APILogRepository stores the requests sent to Anvil.
type APILogRepository interface {
	Save(ctx context.Context, log *entity.APILog) error
	// FindAll returns the newest logs first
	FindAll(ctx context.Context, limit int) ([]entity.APILog, error)
	FindByOperation(ctx context.Context, operation string, limit int) ([]entity.APILog, error)
}
