package handler

import (
	"fmt"
	"strings"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	"anvil-esign/internal/domain/entity"
	"anvil-esign/internal/infrastructure/payloadfile"
	"anvil-esign/internal/usecase"
)

type AnvilHandler struct {
	usecase usecase.AnvilUsecase
	logger  *zap.Logger
}

func NewAnvilHandler(usecase usecase.AnvilUsecase, logger *zap.Logger) *AnvilHandler {
	return &AnvilHandler{
		usecase: usecase,
		logger:  logger,
	}
}

// GraphQLRequest is the body accepted by the raw GraphQL endpoint
type GraphQLRequest struct {
	Query     string         `json:"query"`
	Variables map[string]any `json:"variables"`
}

func splitFields(raw string) []string {
	var fields []string
	for _, f := range strings.Split(raw, ",") {
		if f = strings.TrimSpace(f); f != "" {
			fields = append(fields, f)
		}
	}
	return fields
}

// Me godoc
// @Summary Get the user that owns the API key
// @Tags anvil
// @Produce json
// @Success 200 {object} entity.APIResponse
// @Router /api/v1/me [get]
func (h *AnvilHandler) Me(c *fiber.Ctx) error {
	user, err := h.usecase.CurrentUser(c.UserContext())
	if err != nil {
		return respondError(c, h.logger, "Failed to get current user", err)
	}

	return c.JSON(entity.NewSuccessResponse(user, "Current user retrieved successfully"))
}

// GetCasts godoc
// @Summary List PDF templates
// @Tags anvil
// @Produce json
// @Param fields query string false "Comma separated cast fields"
// @Param all query bool false "Include non-template casts"
// @Success 200 {object} entity.APIResponse
// @Router /api/v1/casts [get]
func (h *AnvilHandler) GetCasts(c *fiber.Ctx) error {
	var q CastsQuery
	if err := decodeQuery(c, &q); err != nil {
		return badRequest(c, "Invalid query: "+err.Error())
	}

	casts, err := h.usecase.GetCasts(c.UserContext(), splitFields(q.Fields), q.All)
	if err != nil {
		return respondError(c, h.logger, "Failed to get casts", err)
	}
	if casts == nil {
		casts = []entity.Cast{}
	}

	return c.JSON(entity.NewSuccessResponse(casts, "Casts retrieved successfully"))
}

// GetCast godoc
// @Summary Get a PDF template
// @Tags anvil
// @Produce json
// @Param eid path string true "Cast eid"
// @Param fields query string false "Comma separated cast fields"
// @Success 200 {object} entity.APIResponse
// @Router /api/v1/casts/{eid} [get]
func (h *AnvilHandler) GetCast(c *fiber.Ctx) error {
	var q CastsQuery
	if err := decodeQuery(c, &q); err != nil {
		return badRequest(c, "Invalid query: "+err.Error())
	}

	cast, err := h.usecase.GetCast(c.UserContext(), c.Params("eid"), splitFields(q.Fields))
	if err != nil {
		return respondError(c, h.logger, "Failed to get cast", err)
	}

	return c.JSON(entity.NewSuccessResponse(cast, "Cast retrieved successfully"))
}

// GetWelds godoc
// @Summary List workflows
// @Tags anvil
// @Produce json
// @Success 200 {object} entity.APIResponse
// @Router /api/v1/welds [get]
func (h *AnvilHandler) GetWelds(c *fiber.Ctx) error {
	welds, err := h.usecase.GetWelds(c.UserContext())
	if err != nil {
		return respondError(c, h.logger, "Failed to get welds", err)
	}
	if welds == nil {
		welds = []entity.Weld{}
	}

	return c.JSON(entity.NewSuccessResponse(welds, "Welds retrieved successfully"))
}

// GraphQL godoc
// @Summary Run a raw GraphQL query
// @Tags anvil
// @Accept json
// @Produce json
// @Param request body GraphQLRequest true "Query and variables"
// @Success 200 {object} entity.APIResponse
// @Failure 400 {object} entity.APIResponse
// @Failure 502 {object} entity.APIResponse
// @Router /api/v1/graphql [post]
func (h *AnvilHandler) GraphQL(c *fiber.Ctx) error {
	var req GraphQLRequest
	if err := c.BodyParser(&req); err != nil {
		h.logger.Error("Failed to parse request body", zap.Error(err))
		return badRequest(c, "Invalid request body")
	}

	data, err := h.usecase.Query(c.UserContext(), req.Query, req.Variables)
	if err != nil {
		return respondError(c, h.logger, "Failed to run GraphQL query", err)
	}

	return c.JSON(entity.NewSuccessResponse(data, "Query executed successfully"))
}

// ForgeSubmit godoc
// @Summary Submit data to a workflow form
// @Tags anvil
// @Accept json
// @Produce json
// @Success 200 {object} entity.APIResponse
// @Failure 400 {object} entity.APIResponse
// @Router /api/v1/forge/submit [post]
func (h *AnvilHandler) ForgeSubmit(c *fiber.Ctx) error {
	input, err := payloadfile.Parse(c.Body(), ".json")
	if err != nil {
		return badRequest(c, "Invalid request body")
	}

	submission, err := h.usecase.ForgeSubmit(c.UserContext(), input)
	if err != nil {
		return respondError(c, h.logger, "Failed to submit forge", err)
	}

	return c.JSON(entity.NewSuccessResponse(submission, "Forge submitted successfully"))
}

// DownloadDocuments godoc
// @Summary Download the documents of a document group as a zip
// @Tags anvil
// @Produce application/zip
// @Param groupEid path string true "Document group eid"
// @Success 200 {file} binary
// @Failure 502 {object} entity.APIResponse
// @Router /api/v1/documents/{groupEid}/download [get]
func (h *AnvilHandler) DownloadDocuments(c *fiber.Ctx) error {
	groupEID := c.Params("groupEid")

	content, err := h.usecase.DownloadDocuments(c.UserContext(), groupEID)
	if err != nil {
		return respondError(c, h.logger, "Failed to download documents", err)
	}

	c.Set(fiber.HeaderContentType, "application/zip")
	c.Set(fiber.HeaderContentDisposition, fmt.Sprintf(`attachment; filename="%s.zip"`, groupEID))
	return c.Send(content)
}
