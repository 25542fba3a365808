package controller

import (
	"strconv"

	"resolution-rag-be/internal/dto"
	"resolution-rag-be/internal/pkg/serverutils"
	"resolution-rag-be/internal/service"

	"github.com/gofiber/fiber/v2"
)

type IDocumentController interface {
	RegisterRoutes(r fiber.Router, guard fiber.Handler)
	Upload(ctx *fiber.Ctx) error
	GetAll(ctx *fiber.Ctx) error
	Show(ctx *fiber.Ctx) error
	Update(ctx *fiber.Ctx) error
	Delete(ctx *fiber.Ctx) error
	Collections(ctx *fiber.Ctx) error
}

type documentController struct {
	service service.IDocumentService
}

func NewDocumentController(service service.IDocumentService) IDocumentController {
	return &documentController{service: service}
}

// RegisterRoutes mounts the document routes; guard protects the mutations.
func (c *documentController) RegisterRoutes(r fiber.Router, guard fiber.Handler) {
	h := r.Group("/documents")
	h.Get("", c.GetAll)
	h.Get("/collections", c.Collections)
	h.Get(":id", c.Show)
	h.Post("", guard, c.Upload)
	h.Put(":id", guard, c.Update)
	h.Delete(":id", guard, c.Delete)
}

func (c *documentController) Upload(ctx *fiber.Ctx) error {
	file, err := ctx.FormFile("file")
	if err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "Se requiere el archivo PDF en el campo 'file'")
	}

	req := dto.UploadDocumentRequest{
		CollectionName: ctx.FormValue("collection_name"),
		FileName:       file.Filename,
		ContentType:    file.Header.Get("Content-Type"),
		Size:           file.Size,
	}
	if err := serverutils.ValidateRequest(req); err != nil {
		return err
	}

	body, err := file.Open()
	if err != nil {
		return err
	}
	defer body.Close()

	res, err := c.service.Upload(ctx.Context(), &req, body)
	if err != nil {
		return err
	}

	return ctx.Status(fiber.StatusCreated).JSON(serverutils.SuccessResponse("Success upload document", res))
}

func (c *documentController) GetAll(ctx *fiber.Ctx) error {
	var req dto.ListDocumentsRequest
	if err := ctx.QueryParser(&req); err != nil {
		return err
	}
	if err := serverutils.ValidateRequest(req); err != nil {
		return err
	}

	res, err := c.service.GetAll(ctx.Context(), &req)
	if err != nil {
		return err
	}

	return ctx.JSON(serverutils.SuccessResponse("Success get all documents", res))
}

func (c *documentController) Show(ctx *fiber.Ctx) error {
	id, err := documentID(ctx)
	if err != nil {
		return err
	}

	res, err := c.service.Show(ctx.Context(), id)
	if err != nil {
		return err
	}

	return ctx.JSON(serverutils.SuccessResponse("Success show document", res))
}

func (c *documentController) Update(ctx *fiber.Ctx) error {
	id, err := documentID(ctx)
	if err != nil {
		return err
	}

	var req dto.UpdateDocumentRequest
	if err := ctx.BodyParser(&req); err != nil {
		return err
	}
	req.Id = id

	if err := serverutils.ValidateRequest(req); err != nil {
		return err
	}

	res, err := c.service.Update(ctx.Context(), &req)
	if err != nil {
		return err
	}

	return ctx.JSON(serverutils.SuccessResponse("Success update document", res))
}

func (c *documentController) Delete(ctx *fiber.Ctx) error {
	id, err := documentID(ctx)
	if err != nil {
		return err
	}

	if err := c.service.Delete(ctx.Context(), id); err != nil {
		return err
	}

	return ctx.JSON(serverutils.SuccessResponse[any]("Success delete document", nil))
}

func (c *documentController) Collections(ctx *fiber.Ctx) error {
	res, err := c.service.Collections(ctx.Context())
	if err != nil {
		return err
	}

	return ctx.JSON(serverutils.SuccessResponse("Success get collections", res))
}

func documentID(ctx *fiber.Ctx) (uint, error) {
	id, err := strconv.ParseUint(ctx.Params("id"), 10, 64)
	if err != nil || id == 0 {
		return 0, fiber.NewError(fiber.StatusBadRequest, "Identificador de documento inválido")
	}
	return uint(id), nil
}
