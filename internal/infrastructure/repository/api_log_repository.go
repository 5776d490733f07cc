package repository

import (
	"context"
	"database/sql"
	"fmt"

	"go.uber.org/zap"

	"anvil-esign/internal/domain/entity"
	"anvil-esign/internal/domain/repository"
	"anvil-esign/internal/infrastructure/database"
)

const defaultLogLimit = 50

type apiLogRepository struct {
	db     *database.Database
	logger *zap.Logger
}

// NewAPILogRepository creates a new API log repository. A nil db disables
// storage: Save is a no-op and lookups return no logs.
func NewAPILogRepository(db *database.Database, logger *zap.Logger) repository.APILogRepository {
	return &apiLogRepository{
		db:     db,
		logger: logger,
	}
}

// Save saves an API log entry to the database
func (r *apiLogRepository) Save(ctx context.Context, log *entity.APILog) error {
	if r.db == nil {
		return nil
	}

	query := r.db.Rebind(`
		INSERT INTO api_logs (endpoint, method, operation, request_body, response_body, status_code, duration_ms, attempts, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
	`)

	_, err := r.db.DB.ExecContext(ctx, query,
		log.Endpoint,
		log.Method,
		log.Operation,
		log.RequestBody,
		log.ResponseBody,
		log.StatusCode,
		log.Duration,
		log.Attempts,
		log.CreatedAt,
	)

	if err != nil {
		r.logger.Error("Failed to save API log",
			zap.String("endpoint", log.Endpoint),
			zap.Error(err),
		)
		return fmt.Errorf("failed to save API log: %w", err)
	}

	return nil
}

func (r *apiLogRepository) FindAll(ctx context.Context, limit int) ([]entity.APILog, error) {
	if r.db == nil {
		return []entity.APILog{}, nil
	}

	query := r.db.Rebind(`
		SELECT id, endpoint, method, operation, request_body, response_body, status_code, duration_ms, attempts, created_at
		FROM api_logs
		ORDER BY created_at DESC, id DESC
		LIMIT $1
	`)
	return r.find(ctx, query, normalizeLimit(limit))
}

func (r *apiLogRepository) FindByOperation(ctx context.Context, operation string, limit int) ([]entity.APILog, error) {
	if r.db == nil {
		return []entity.APILog{}, nil
	}

	query := r.db.Rebind(`
		SELECT id, endpoint, method, operation, request_body, response_body, status_code, duration_ms, attempts, created_at
		FROM api_logs
		WHERE operation = $1
		ORDER BY created_at DESC, id DESC
		LIMIT $2
	`)
	return r.find(ctx, query, operation, normalizeLimit(limit))
}

func (r *apiLogRepository) find(ctx context.Context, query string, args ...any) ([]entity.APILog, error) {
	rows, err := r.db.DB.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query API logs: %w", err)
	}
	defer rows.Close()

	logs := []entity.APILog{}
	for rows.Next() {
		var log entity.APILog
		var operation, requestBody, responseBody sql.NullString
		if err := rows.Scan(
			&log.ID,
			&log.Endpoint,
			&log.Method,
			&operation,
			&requestBody,
			&responseBody,
			&log.StatusCode,
			&log.Duration,
			&log.Attempts,
			&log.CreatedAt,
		); err != nil {
			return nil, fmt.Errorf("failed to scan API log: %w", err)
		}
		log.Operation = operation.String
		log.RequestBody = requestBody.String
		log.ResponseBody = responseBody.String
		logs = append(logs, log)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read API logs: %w", err)
	}
	return logs, nil
}

func normalizeLimit(limit int) int {
	if limit <= 0 || limit > 500 {
		return defaultLogLimit
	}
	return limit
}
