package controller

import (
	"club-assistant-be/internal/dto"
	"club-assistant-be/internal/pkg/serverutils"
	"club-assistant-be/internal/service"

	"github.com/gofiber/fiber/v2"
)

type IAssistantController interface {
	RegisterRoutes(r fiber.Router)
	Chat(ctx *fiber.Ctx) error
	ClearSession(ctx *fiber.Ctx) error
	Feedback(ctx *fiber.Ctx) error
	IngestDocument(ctx *fiber.Ctx) error
}

type assistantController struct {
	service       service.IAssistantService
	ingestService service.IIngestService
}

func NewAssistantController(svc service.IAssistantService, ingest service.IIngestService) IAssistantController {
	return &assistantController{
		service:       svc,
		ingestService: ingest,
	}
}

func (c *assistantController) RegisterRoutes(r fiber.Router) {
	h := r.Group("/assistant/v1")
	h.Post("chat", c.Chat)
	h.Delete("session/:id", c.ClearSession)
	h.Post("feedback", c.Feedback)
	h.Post("documents", c.IngestDocument)
}

func (c *assistantController) Chat(ctx *fiber.Ctx) error {
	var req dto.ChatRequest
	if err := ctx.BodyParser(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "Invalid request body")
	}

	if err := serverutils.ValidateRequest(req); err != nil {
		return err
	}

	res, err := c.service.Chat(ctx.Context(), &req)
	if err != nil {
		return err
	}

	return ctx.JSON(serverutils.SuccessResponse("Success chat", res))
}

func (c *assistantController) ClearSession(ctx *fiber.Ctx) error {
	sessionID := ctx.Params("id")
	if sessionID == "" {
		return fiber.NewError(fiber.StatusBadRequest, "Missing session id")
	}

	c.service.ClearSession(sessionID)

	return ctx.JSON(serverutils.SuccessResponse("Success clear session", nil))
}

func (c *assistantController) Feedback(ctx *fiber.Ctx) error {
	var req dto.FeedbackRequest
	if err := ctx.BodyParser(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "Invalid request body")
	}

	if err := serverutils.ValidateRequest(req); err != nil {
		return err
	}

	if err := c.service.AddFeedback(ctx.Context(), &req); err != nil {
		return err
	}

	return ctx.JSON(serverutils.SuccessResponse("Success add feedback", nil))
}

func (c *assistantController) IngestDocument(ctx *fiber.Ctx) error {
	var req dto.IngestDocumentRequest
	if err := ctx.BodyParser(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "Invalid request body")
	}

	if err := serverutils.ValidateRequest(req); err != nil {
		return err
	}

	if err := c.ingestService.Ingest(ctx.Context(), &req); err != nil {
		return fiber.NewError(fiber.StatusInternalServerError, "Failed to queue document")
	}

	return ctx.JSON(serverutils.SuccessResponse("Success queue document", nil))
}
