package controller

import (
	"resolution-rag-be/internal/constant"
	"resolution-rag-be/internal/dto"
	"resolution-rag-be/internal/pkg/serverutils"
	"resolution-rag-be/internal/service"

	"github.com/gofiber/fiber/v2"
)

type IQueryController interface {
	RegisterRoutes(r fiber.Router)
	Sources(ctx *fiber.Ctx) error
	Response(ctx *fiber.Ctx) error
	Feedback(ctx *fiber.Ctx) error
}

type queryController struct {
	service service.IQueryService
}

func NewQueryController(service service.IQueryService) IQueryController {
	return &queryController{service: service}
}

func (c *queryController) RegisterRoutes(r fiber.Router) {
	h := r.Group("/query")
	h.Post("/sources", c.Sources)
	h.Post("/response", c.Response)
	h.Post("/feedback", c.Feedback)
}

// Sources retrieves the documents for a query and opens an interaction. A
// retrieval failure is reported in the body, not as an HTTP error.
func (c *queryController) Sources(ctx *fiber.Ctx) error {
	var req dto.QueryRequest
	if err := ctx.BodyParser(&req); err != nil {
		return err
	}
	if req.NDocuments == 0 {
		req.NDocuments = constant.DefaultNDocuments
	}

	if err := serverutils.ValidateRequest(req); err != nil {
		return err
	}

	res, err := c.service.GetSources(ctx.Context(), &req)
	if err != nil {
		return err
	}

	return ctx.JSON(serverutils.SuccessResponse("Success get sources", res))
}

func (c *queryController) Response(ctx *fiber.Ctx) error {
	var req dto.AddResponseRequest
	if err := ctx.BodyParser(&req); err != nil {
		return err
	}

	if err := serverutils.ValidateRequest(req); err != nil {
		return err
	}

	if err := c.service.AddResponse(ctx.Context(), &req); err != nil {
		return err
	}

	return ctx.JSON(serverutils.SuccessResponse[any]("Success add response", nil))
}

func (c *queryController) Feedback(ctx *fiber.Ctx) error {
	var req dto.FeedbackRequest
	if err := ctx.BodyParser(&req); err != nil {
		return err
	}

	if err := serverutils.ValidateRequest(req); err != nil {
		return err
	}

	res, err := c.service.RecordFeedback(ctx.Context(), &req)
	if err != nil {
		return err
	}

	return ctx.JSON(serverutils.SuccessResponse("Success record feedback", res))
}
