package handler

import (
	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	"anvil-esign/internal/infrastructure/payloadfile"
	"anvil-esign/internal/usecase"
)

type PDFHandler struct {
	usecase usecase.PDFUsecase
	logger  *zap.Logger
}

func NewPDFHandler(usecase usecase.PDFUsecase, logger *zap.Logger) *PDFHandler {
	return &PDFHandler{
		usecase: usecase,
		logger:  logger,
	}
}

// FillPDF godoc
// @Summary Fill a PDF template
// @Tags pdf
// @Accept json
// @Produce application/pdf
// @Param templateID path string true "PDF template eid"
// @Success 200 {file} binary
// @Failure 400 {object} entity.APIResponse
// @Failure 502 {object} entity.APIResponse
// @Router /api/v1/pdf/fill/{templateID} [post]
func (h *PDFHandler) FillPDF(c *fiber.Ctx) error {
	input, err := payloadfile.Parse(c.Body(), ".json")
	if err != nil {
		return badRequest(c, "Invalid request body")
	}

	pdf, err := h.usecase.FillPDF(c.UserContext(), c.Params("templateID"), input)
	if err != nil {
		return respondError(c, h.logger, "Failed to fill PDF", err)
	}

	c.Set(fiber.HeaderContentType, "application/pdf")
	return c.Send(pdf)
}

// GeneratePDF godoc
// @Summary Generate a PDF from HTML or markdown
// @Tags pdf
// @Accept json
// @Produce application/pdf
// @Success 200 {file} binary
// @Failure 400 {object} entity.APIResponse
// @Failure 502 {object} entity.APIResponse
// @Router /api/v1/pdf/generate [post]
func (h *PDFHandler) GeneratePDF(c *fiber.Ctx) error {
	input, err := payloadfile.Parse(c.Body(), ".json")
	if err != nil {
		return badRequest(c, "Invalid request body")
	}

	pdf, err := h.usecase.GeneratePDF(c.UserContext(), input)
	if err != nil {
		return respondError(c, h.logger, "Failed to generate PDF", err)
	}

	c.Set(fiber.HeaderContentType, "application/pdf")
	return c.Send(pdf)
}
