package handler

import (
	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	"anvil-esign/internal/domain/entity"
	"anvil-esign/internal/usecase"
)

type WebhookHandler struct {
	usecase usecase.WebhookUsecase
	logger  *zap.Logger
}

func NewWebhookHandler(usecase usecase.WebhookUsecase, logger *zap.Logger) *WebhookHandler {
	return &WebhookHandler{
		usecase: usecase,
		logger:  logger,
	}
}

// AnvilCallback godoc
// @Summary Anvil webhook callback
// @Description Receives webhook callbacks from Anvil when a packet or signer changes
// @Tags webhook
// @Accept json
// @Produce json
// @Param payload body entity.WebhookPayload true "Webhook payload"
// @Success 200 {object} entity.APIResponse
// @Failure 400 {object} entity.APIResponse
// @Failure 401 {object} entity.APIResponse
// @Failure 500 {object} entity.APIResponse
// @Router /webhook/anvil [post]
func (h *WebhookHandler) AnvilCallback(c *fiber.Ctx) error {
	ctx := c.UserContext()

	h.logger.Debug("Received Anvil webhook callback",
		zap.Int("body_size", len(c.Body())),
	)

	var payload entity.WebhookPayload
	if err := c.BodyParser(&payload); err != nil {
		h.logger.Error("Failed to parse webhook payload", zap.Error(err))
		return badRequest(c, "Invalid webhook payload")
	}

	if payload.Action == "" {
		h.logger.Error("Missing action in webhook payload")
		return badRequest(c, "Missing action")
	}

	record, err := h.usecase.ProcessWebhook(ctx, &payload)
	if err != nil {
		return respondError(c, h.logger, "Failed to process webhook", err)
	}

	result := fiber.Map{
		"action":    payload.Action,
		"processed": record != nil,
	}
	if record != nil {
		result["eid"] = record.EID
		result["status"] = record.Status
	}

	return c.JSON(entity.NewSuccessResponse(result, "Webhook processed successfully"))
}
