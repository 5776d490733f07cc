package handler

import (
	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	"anvil-esign/internal/domain/entity"
	"anvil-esign/internal/domain/repository"
)

const (
	defaultLogLimit = 50
	maxLogLimit     = 200
)

type LogHandler struct {
	logRepo repository.APILogRepository
	logger  *zap.Logger
}

func NewLogHandler(logRepo repository.APILogRepository, logger *zap.Logger) *LogHandler {
	return &LogHandler{logRepo: logRepo, logger: logger}
}

func parseLogsQuery(c *fiber.Ctx) (LogsQuery, error) {
	q := LogsQuery{Limit: defaultLogLimit}
	if err := decodeQuery(c, &q); err != nil {
		return q, err
	}
	if q.Limit <= 0 {
		q.Limit = defaultLogLimit
	}
	if q.Limit > maxLogLimit {
		q.Limit = maxLogLimit
	}
	return q, nil
}

// GetLogs returns the newest API logs
func (h *LogHandler) GetLogs(c *fiber.Ctx) error {
	q, err := parseLogsQuery(c)
	if err != nil {
		return badRequest(c, "Invalid query: "+err.Error())
	}

	logs, err := h.logRepo.FindAll(c.UserContext(), q.Limit)
	if err != nil {
		return respondError(c, h.logger, "Failed to read API logs", err)
	}
	if logs == nil {
		logs = []entity.APILog{}
	}

	return c.JSON(entity.NewSuccessResponse(logs, "Logs retrieved successfully"))
}

// SearchLogs searches logs by operation name
func (h *LogHandler) SearchLogs(c *fiber.Ctx) error {
	q, err := parseLogsQuery(c)
	if err != nil {
		return badRequest(c, "Invalid query: "+err.Error())
	}
	if q.Operation == "" {
		return badRequest(c, "operation parameter required")
	}

	logs, err := h.logRepo.FindByOperation(c.UserContext(), q.Operation, q.Limit)
	if err != nil {
		return respondError(c, h.logger, "Failed to search API logs", err)
	}
	if logs == nil {
		logs = []entity.APILog{}
	}

	return c.JSON(entity.NewSuccessResponse(logs, "Logs retrieved successfully"))
}
