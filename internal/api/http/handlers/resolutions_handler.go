package handlers

import (
	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/helpdesk-service/internal/api/dto"
	"github.com/spec-kit/helpdesk-service/internal/auth"
	"github.com/spec-kit/helpdesk-service/internal/service"
)

// ResolutionsHandler serves the closing notes of tickets.
type ResolutionsHandler struct {
	tickets *service.TicketService
}

// NewResolutionsHandler constructs handler.
func NewResolutionsHandler(ticketService *service.TicketService) *ResolutionsHandler {
	return &ResolutionsHandler{tickets: ticketService}
}

// List GET /companies/:slug/ticket-resolution.
func (h *ResolutionsHandler) List(c *fiber.Ctx) error {
	views, err := h.tickets.ListResolutions(c.UserContext(), auth.ActorFromContext(c), c.Params("slug"))
	if err != nil {
		return err
	}
	items := make([]dto.ResolutionResponse, 0, len(views))
	for i := range views {
		items = append(items, dto.Resolution(&views[i].Resolution, &views[i].Ticket))
	}
	return c.JSON(fiber.Map{"data": items})
}

// Get GET /companies/:slug/ticket-resolution/:id, keyed by the ticket reference.
func (h *ResolutionsHandler) Get(c *fiber.Ctx) error {
	view, err := h.tickets.GetResolution(c.UserContext(), auth.ActorFromContext(c), c.Params("slug"), c.Params("id"))
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": dto.Resolution(&view.Resolution, &view.Ticket)})
}
