package handler

import (
	"strings"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	"anvil-esign/internal/domain/entity"
	"anvil-esign/internal/infrastructure/payloadfile"
	"anvil-esign/internal/payload"
	"anvil-esign/internal/usecase"
)

type EtchHandler struct {
	usecase usecase.EtchUsecase
	logger  *zap.Logger
}

func NewEtchHandler(usecase usecase.EtchUsecase, logger *zap.Logger) *EtchHandler {
	return &EtchHandler{
		usecase: usecase,
		logger:  logger,
	}
}

// CreatePacket godoc
// @Summary Create an etch packet
// @Description Accepts the packet as a JSON body, or as a multipart form with the
// @Description packet JSON in the "payload" field and the documents as file parts.
// @Description A file entry whose "file" is a string refers to a file part by field
// @Description name or file name, or else to a document in the ready folder.
// @Tags etch
// @Accept json,mpfd
// @Produce json
// @Success 201 {object} entity.APIResponse
// @Failure 400 {object} entity.APIResponse
// @Failure 502 {object} entity.APIResponse
// @Router /api/v1/etch/packets [post]
func (h *EtchHandler) CreatePacket(c *fiber.Ctx) error {
	ctx := c.UserContext()

	var (
		input   map[string]any
		uploads map[string]*payload.FileHandle
		err     error
	)

	if strings.HasPrefix(c.Get(fiber.HeaderContentType), fiber.MIMEMultipartForm) {
		form, err := c.MultipartForm()
		if err != nil {
			h.logger.Error("Failed to parse multipart form", zap.Error(err))
			return badRequest(c, "Invalid multipart form")
		}

		values := form.Value["payload"]
		if len(values) == 0 {
			return badRequest(c, "The payload field is required")
		}
		input, err = payloadfile.Parse([]byte(values[0]), ".json")
		if err != nil {
			return badRequest(c, err.Error())
		}

		// each part is addressable by its field name and its file name
		uploads = make(map[string]*payload.FileHandle)
		var opened []*payload.FileHandle
		defer func() {
			for _, handle := range opened {
				handle.Close()
			}
		}()
		for field, headers := range form.File {
			for _, fh := range headers {
				f, err := fh.Open()
				if err != nil {
					return badRequest(c, "Failed to read uploaded file "+fh.Filename)
				}
				handle := &payload.FileHandle{Name: fh.Filename, Reader: f}
				opened = append(opened, handle)
				if _, ok := uploads[field]; !ok {
					uploads[field] = handle
				}
				if _, ok := uploads[fh.Filename]; !ok {
					uploads[fh.Filename] = handle
				}
			}
		}
	} else {
		input, err = payloadfile.Parse(c.Body(), ".json")
		if err != nil {
			h.logger.Error("Failed to parse request body", zap.Error(err))
			return badRequest(c, "Invalid request body")
		}
	}

	packet, err := h.usecase.CreatePacket(ctx, input, uploads)
	if err != nil {
		return respondError(c, h.logger, "Failed to create etch packet", err)
	}

	return c.Status(fiber.StatusCreated).JSON(
		entity.NewSuccessResponse(packet, "Etch packet created successfully"),
	)
}

// GetPacket godoc
// @Summary Get a tracked etch packet
// @Tags etch
// @Produce json
// @Param eid path string true "Packet eid"
// @Success 200 {object} entity.APIResponse
// @Failure 404 {object} entity.APIResponse
// @Router /api/v1/etch/packets/{eid} [get]
func (h *EtchHandler) GetPacket(c *fiber.Ctx) error {
	record, err := h.usecase.GetPacket(c.UserContext(), c.Params("eid"))
	if err != nil {
		return respondError(c, h.logger, "Failed to get packet", err)
	}

	return c.JSON(entity.NewSuccessResponse(record, "Packet retrieved successfully"))
}

// GenerateSigningURL godoc
// @Summary Generate a signing URL for an embedded signer
// @Tags etch
// @Accept json
// @Produce json
// @Param request body entity.GenerateEtchSigningURLPayload true "Signer and client user"
// @Success 200 {object} entity.APIResponse
// @Failure 400 {object} entity.APIResponse
// @Router /api/v1/etch/signing-url [post]
func (h *EtchHandler) GenerateSigningURL(c *fiber.Ctx) error {
	var req entity.GenerateEtchSigningURLPayload
	if err := c.BodyParser(&req); err != nil {
		h.logger.Error("Failed to parse request body", zap.Error(err))
		return badRequest(c, "Invalid request body")
	}

	signURL, err := h.usecase.GenerateSigningURL(c.UserContext(), &req)
	if err != nil {
		return respondError(c, h.logger, "Failed to generate signing URL", err)
	}

	return c.JSON(entity.NewSuccessResponse(fiber.Map{"url": signURL}, "Signing URL generated successfully"))
}
