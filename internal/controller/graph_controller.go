package controller

import (
	"deep-research-be/internal/dto"
	"deep-research-be/internal/pkg/serverutils"
	"deep-research-be/internal/service"

	"github.com/gofiber/fiber/v2"
)

type IGraphController interface {
	RegisterRoutes(r fiber.Router)
	Create(ctx *fiber.Ctx) error
	Update(ctx *fiber.Ctx) error
	List(ctx *fiber.Ctx) error
	Delete(ctx *fiber.Ctx) error
	SemanticSearch(ctx *fiber.Ctx) error
}

type graphController struct {
	graphService service.IGraphService
}

func NewGraphController(graphService service.IGraphService) IGraphController {
	return &graphController{
		graphService: graphService,
	}
}

func (c *graphController) RegisterRoutes(r fiber.Router) {
	h := r.Group("/graph/v1")
	h.Use(serverutils.JwtMiddleware)
	h.Post("/nodes/semantic-search", c.SemanticSearch)
	h.Post("/nodes", c.Create)
	h.Get("/nodes", c.List)
	h.Put("/nodes/:id", c.Update)
	h.Delete("/nodes/:id", c.Delete)
}

func (c *graphController) Create(ctx *fiber.Ctx) error {
	userId, err := serverutils.UserID(ctx)
	if err != nil {
		return err
	}

	var req dto.UpsertGraphNodeRequest
	if err := ctx.BodyParser(&req); err != nil {
		return err
	}
	if err := serverutils.ValidateRequest(req); err != nil {
		return err
	}

	res, err := c.graphService.CreateNode(ctx.Context(), userId, &req)
	if err != nil {
		return err
	}
	return ctx.Status(fiber.StatusCreated).JSON(serverutils.SuccessResponse("Success create graph node", res))
}

func (c *graphController) Update(ctx *fiber.Ctx) error {
	userId, err := serverutils.UserID(ctx)
	if err != nil {
		return err
	}
	id, err := parseIDParam(ctx, "id")
	if err != nil {
		return err
	}

	var req dto.UpsertGraphNodeRequest
	if err := ctx.BodyParser(&req); err != nil {
		return err
	}
	if err := serverutils.ValidateRequest(req); err != nil {
		return err
	}

	res, err := c.graphService.UpdateNode(ctx.Context(), userId, id, &req)
	if err != nil {
		return err
	}
	return ctx.JSON(serverutils.SuccessResponse("Success update graph node", res))
}

func (c *graphController) List(ctx *fiber.Ctx) error {
	userId, err := serverutils.UserID(ctx)
	if err != nil {
		return err
	}

	res, err := c.graphService.GetNodes(ctx.Context(), userId, ctx.Query("label"), ctx.Query("name"))
	if err != nil {
		return err
	}
	return ctx.JSON(serverutils.SuccessResponse("Success get graph nodes", res))
}

func (c *graphController) Delete(ctx *fiber.Ctx) error {
	userId, err := serverutils.UserID(ctx)
	if err != nil {
		return err
	}
	id, err := parseIDParam(ctx, "id")
	if err != nil {
		return err
	}

	if err := c.graphService.DeleteNode(ctx.Context(), userId, id); err != nil {
		return err
	}
	return ctx.JSON(serverutils.SuccessResponse[any]("Success delete graph node", nil))
}

func (c *graphController) SemanticSearch(ctx *fiber.Ctx) error {
	userId, err := serverutils.UserID(ctx)
	if err != nil {
		return err
	}

	var req dto.GraphSearchRequest
	if err := ctx.BodyParser(&req); err != nil {
		return err
	}
	if err := serverutils.ValidateRequest(req); err != nil {
		return err
	}

	res, err := c.graphService.SemanticSearch(ctx.Context(), userId, &req)
	if err != nil {
		return err
	}
	return ctx.JSON(serverutils.SuccessResponse("Success semantic search", res))
}
