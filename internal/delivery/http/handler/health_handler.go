package handler

import (
	"context"
	"sort"
	"time"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	"anvil-esign/internal/config"
	"anvil-esign/internal/domain/entity"
	"anvil-esign/internal/infrastructure/database"
	"anvil-esign/internal/infrastructure/redis"
	"anvil-esign/internal/version"
)

const healthCheckTimeout = 2 * time.Second

type pinger interface {
	Ping(ctx context.Context) error
}

type HealthHandler struct {
	environment   string
	apiKeyPresent bool
	checks        map[string]pinger
	logger        *zap.Logger
}

// NewHealthHandler checks the packet store and, when enabled, the API log
// database.
func NewHealthHandler(cfg *config.Config, db *database.Database, store redis.PacketStore, logger *zap.Logger) *HealthHandler {
	checks := map[string]pinger{"packet_store": store}
	if db != nil {
		checks["api_log_db"] = db
	}
	return &HealthHandler{
		environment:   cfg.Anvil.Environment,
		apiKeyPresent: cfg.Anvil.APIKey != "",
		checks:        checks,
		logger:        logger,
	}
}

type HealthResponse struct {
	Status           string            `json:"status"`
	Timestamp        time.Time         `json:"timestamp"`
	Version          string            `json:"version"`
	AnvilEnvironment string            `json:"anvil_environment"`
	APIKeyConfigured bool              `json:"api_key_configured"`
	Checks           map[string]string `json:"checks"`
}

// Health godoc
// @Summary Health check
// @Description Check the service and its packet store and log database
// @Tags health
// @Produce json
// @Success 200 {object} entity.APIResponse
// @Failure 503 {object} entity.APIResponse
// @Router /health [get]
func (h *HealthHandler) Health(c *fiber.Ctx) error {
	ctx, cancel := context.WithTimeout(c.UserContext(), healthCheckTimeout)
	defer cancel()

	names := make([]string, 0, len(h.checks))
	for name := range h.checks {
		names = append(names, name)
	}
	sort.Strings(names)

	res := HealthResponse{
		Status:           "healthy",
		Timestamp:        time.Now(),
		Version:          version.Version,
		AnvilEnvironment: h.environment,
		APIKeyConfigured: h.apiKeyPresent,
		Checks:           make(map[string]string, len(names)),
	}
	for _, name := range names {
		if err := h.checks[name].Ping(ctx); err != nil {
			h.logger.Warn("Health check failed", zap.String("check", name), zap.Error(err))
			res.Checks[name] = err.Error()
			res.Status = "degraded"
			continue
		}
		res.Checks[name] = "ok"
	}

	if res.Status != "healthy" {
		return c.Status(fiber.StatusServiceUnavailable).JSON(&entity.APIResponse{
			Success: false,
			Message: "Service is degraded",
			Data:    res,
		})
	}
	return c.JSON(entity.NewSuccessResponse(res, "Service is healthy"))
}
