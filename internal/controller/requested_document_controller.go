package controller

import (
	"resolution-rag-be/internal/pkg/serverutils"
	"resolution-rag-be/internal/service"

	"github.com/gofiber/fiber/v2"
)

type IRequestedDocumentController interface {
	RegisterRoutes(r fiber.Router)
	GetAll(ctx *fiber.Ctx) error
}

type requestedDocumentController struct {
	service service.IRequestedDocumentService
}

func NewRequestedDocumentController(service service.IRequestedDocumentService) IRequestedDocumentController {
	return &requestedDocumentController{service: service}
}

func (c *requestedDocumentController) RegisterRoutes(r fiber.Router) {
	r.Get("/requested-documents", c.GetAll)
}

func (c *requestedDocumentController) GetAll(ctx *fiber.Ctx) error {
	res, err := c.service.GetAll(ctx.Context())
	if err != nil {
		return err
	}

	return ctx.JSON(serverutils.SuccessResponse("Success get requested documents", res))
}
