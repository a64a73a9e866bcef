package controller

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"

	"deep-research-be/internal/dto"
	"deep-research-be/internal/pkg/serverutils"
	"deep-research-be/internal/service"

	"github.com/gofiber/fiber/v2"
	"github.com/valyala/fasthttp"
)

type IResearchController interface {
	RegisterRoutes(r fiber.Router)
	Start(ctx *fiber.Ctx) error
	GetRun(ctx *fiber.Ctx) error
	StreamProgress(ctx *fiber.Ctx) error
}

type researchController struct {
	researchService service.IResearchService
}

func NewResearchController(researchService service.IResearchService) IResearchController {
	return &researchController{
		researchService: researchService,
	}
}

func (c *researchController) RegisterRoutes(r fiber.Router) {
	h := r.Group("/research/v1")
	h.Use(serverutils.JwtMiddleware)
	h.Post("/sessions/:sessionId/start", c.Start)
	h.Get("/sessions/:sessionId/run", c.GetRun)
	h.Get("/sessions/:sessionId/progress", c.StreamProgress)
}

func (c *researchController) Start(ctx *fiber.Ctx) error {
	userId, err := serverutils.UserID(ctx)
	if err != nil {
		return err
	}
	sessionId, err := parseIDParam(ctx, "sessionId")
	if err != nil {
		return err
	}

	var req dto.StartResearchRequest
	if err := ctx.BodyParser(&req); err != nil {
		return err
	}
	if err := serverutils.ValidateRequest(req); err != nil {
		return err
	}

	if err := c.researchService.StartResearch(ctx.Context(), userId, sessionId, req.Query, req.MaxSubQueries); err != nil {
		return err
	}

	res := dto.StartResearchResponse{SessionId: sessionId, Status: "starting"}
	return ctx.Status(fiber.StatusAccepted).JSON(serverutils.SuccessResponse("Research started", res))
}

func (c *researchController) GetRun(ctx *fiber.Ctx) error {
	if _, err := serverutils.UserID(ctx); err != nil {
		return err
	}
	sessionId, err := parseIDParam(ctx, "sessionId")
	if err != nil {
		return err
	}

	res, err := c.researchService.GetRun(sessionId)
	if err != nil {
		return err
	}
	return ctx.JSON(serverutils.SuccessResponse("Success get research run", res))
}

// StreamProgress replays run progress over SSE. The stream ends after the
// terminal event, or when the client hangs up.
func (c *researchController) StreamProgress(ctx *fiber.Ctx) error {
	if _, err := serverutils.UserID(ctx); err != nil {
		return err
	}
	sessionId, err := parseIDParam(ctx, "sessionId")
	if err != nil {
		return err
	}

	ctx.Set("Content-Type", "text/event-stream")
	ctx.Set("Cache-Control", "no-cache")
	ctx.Set("Connection", "keep-alive")

	subCtx, cancel := context.WithCancel(context.Background())
	events, err := c.researchService.Subscribe(subCtx, sessionId)
	if err != nil {
		cancel()
		return err
	}

	ctx.Context().SetBodyStreamWriter(fasthttp.StreamWriter(func(w *bufio.Writer) {
		defer cancel()

		for event := range events {
			data, err := json.Marshal(event)
			if err != nil {
				continue
			}
			if _, err := fmt.Fprintf(w, "data: %s\n\n", data); err != nil {
				return // client disconnected
			}
			if err := w.Flush(); err != nil {
				return
			}
		}
	}))

	return nil
}
