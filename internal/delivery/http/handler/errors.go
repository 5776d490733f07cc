package handler

import (
	"errors"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	"anvil-esign/internal/domain/entity"
	"anvil-esign/internal/infrastructure/httpclient"
	"anvil-esign/internal/usecase"
)

// respondError maps usecase errors onto HTTP statuses.
func respondError(c *fiber.Ctx, logger *zap.Logger, msg string, err error) error {
	var (
		validationErr *entity.ValidationError
		referenceErr  *entity.ReferenceError
		upstreamErr   *entity.UpstreamError
		graphqlErrs   entity.GraphQLErrors
	)

	switch {
	case errors.As(err, &validationErr):
		return c.Status(fiber.StatusBadRequest).JSON(
			entity.NewFieldErrorResponse(entity.CodeValidation, validationErr.Field, err.Error()),
		)
	case errors.As(err, &referenceErr):
		return c.Status(fiber.StatusBadRequest).JSON(
			entity.NewFieldErrorResponse(entity.CodeReference, referenceErr.FileID, err.Error()),
		)
	case errors.Is(err, entity.ErrNotFound):
		return c.Status(fiber.StatusNotFound).JSON(
			entity.NewErrorResponse(entity.CodeNotFound, err.Error()),
		)
	case errors.Is(err, usecase.ErrInvalidWebhookToken):
		return c.Status(fiber.StatusUnauthorized).JSON(
			entity.NewErrorResponse(entity.CodeUnauthorized, err.Error()),
		)
	case errors.Is(err, httpclient.ErrMissingAPIKey):
		return c.Status(fiber.StatusServiceUnavailable).JSON(
			entity.NewErrorResponse(entity.CodeServiceDisabled, err.Error()),
		)
	case errors.Is(err, httpclient.ErrRateLimited):
		return c.Status(fiber.StatusTooManyRequests).JSON(
			entity.NewErrorResponse(entity.CodeRateLimited, err.Error()),
		)
	case errors.As(err, &upstreamErr), errors.As(err, &graphqlErrs):
		logger.Error(msg, zap.Error(err))
		return c.Status(fiber.StatusBadGateway).JSON(
			entity.NewErrorResponse(entity.CodeUpstream, err.Error()),
		)
	default:
		logger.Error(msg, zap.Error(err))
		return c.Status(fiber.StatusInternalServerError).JSON(
			entity.NewErrorResponse(entity.CodeInternalError, err.Error()),
		)
	}
}

func badRequest(c *fiber.Ctx, message string) error {
	return c.Status(fiber.StatusBadRequest).JSON(
		entity.NewErrorResponse(entity.CodeBadRequest, message),
	)
}
