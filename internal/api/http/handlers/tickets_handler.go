package handlers

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/helpdesk-service/internal/api/dto"
	"github.com/spec-kit/helpdesk-service/internal/auth"
	"github.com/spec-kit/helpdesk-service/internal/domain"
	"github.com/spec-kit/helpdesk-service/internal/service"
	apperrors "github.com/spec-kit/helpdesk-service/pkg/util/errorutil"
)

const (
	defaultPageSize = 20
	maxPageSize     = 100
	// maxPage keeps (page-1)*pageSize far below any integer bound.
	maxPage = 100000
)

// TicketsHandler manages company ticket endpoints.
type TicketsHandler struct {
	tickets     *service.TicketService
	assignments *service.AssignmentService
}

// NewTicketsHandler constructs handler.
func NewTicketsHandler(ticketService *service.TicketService, assignmentService *service.AssignmentService) *TicketsHandler {
	return &TicketsHandler{tickets: ticketService, assignments: assignmentService}
}

// ListTickets GET /companies/:slug/tickets.
func (h *TicketsHandler) ListTickets(c *fiber.Ctx) error {
	filter, err := parseTicketQuery(c)
	if err != nil {
		return err
	}
	tickets, err := h.tickets.List(c.UserContext(), auth.ActorFromContext(c), c.Params("slug"), filter)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": dto.Tickets(tickets)})
}

// CreateTicket POST /companies/:slug/tickets.
func (h *TicketsHandler) CreateTicket(c *fiber.Ctx) error {
	var req dto.CreateTicketRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}

	ticket, err := h.tickets.Create(c.UserContext(), auth.ActorFromContext(c), c.Params("slug"), service.TicketCreateInput{
		FirstName:   req.FirstName,
		LastName:    req.LastName,
		Email:       req.Email,
		Subject:     req.Subject,
		Description: req.Description,
	})
	if err != nil {
		return err
	}
	return c.Status(http.StatusCreated).JSON(fiber.Map{"data": dto.Ticket(ticket)})
}

// GetTicket GET /companies/:slug/tickets/:id, where id is the public id or the internal id.
func (h *TicketsHandler) GetTicket(c *fiber.Ctx) error {
	ticket, err := h.tickets.Get(c.UserContext(), auth.ActorFromContext(c), c.Params("slug"), c.Params("id"))
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": dto.Ticket(ticket)})
}

// UpdateTicket PATCH /companies/:slug/tickets/:id.
func (h *TicketsHandler) UpdateTicket(c *fiber.Ctx) error {
	var req dto.UpdateTicketRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}

	input := service.TicketUpdateInput{
		Subject:           req.Subject,
		Description:       req.Description,
		ResolutionMessage: req.ResolutionMessage,
	}
	if req.Status != nil {
		status, err := domain.ParseTicketStatus(*req.Status)
		if err != nil {
			return apperrors.NewValidationError(err.Error(), map[string]any{"status": *req.Status})
		}
		input.Status = &status
	}
	if req.Priority != nil {
		priority, err := domain.ParseTicketPriority(*req.Priority)
		if err != nil {
			return apperrors.NewValidationError(err.Error(), map[string]any{"priority": *req.Priority})
		}
		input.Priority = &priority
	}

	ticket, err := h.tickets.Update(c.UserContext(), auth.ActorFromContext(c), c.Params("slug"), c.Params("id"), input)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": dto.Ticket(ticket)})
}

// AssignTicket POST /companies/:slug/tickets/:id/assign.
func (h *TicketsHandler) AssignTicket(c *fiber.Ctx) error {
	var req dto.AssignTicketRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	if req.AgentID <= 0 {
		return apperrors.NewValidationError("agent_id required", nil)
	}

	ticket, err := h.assignments.AssignAgent(c.UserContext(), auth.ActorFromContext(c), c.Params("slug"), c.Params("id"), req.AgentID)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": dto.Ticket(ticket)})
}

func parseTicketQuery(c *fiber.Ctx) (service.TicketListFilter, error) {
	filter := service.TicketListFilter{PublicID: c.Query("public_id")}
	if statusStr := c.Query("status"); statusStr != "" {
		for _, part := range strings.Split(statusStr, ",") {
			status, err := domain.ParseTicketStatus(part)
			if err != nil {
				return filter, apperrors.NewValidationError(err.Error(), map[string]any{"status": part})
			}
			filter.Statuses = append(filter.Statuses, status)
		}
	}
	filter.Limit, filter.Offset = parsePage(c)
	return filter, nil
}

// parsePage turns page and page_size into limit and offset.
func parsePage(c *fiber.Ctx) (int, int) {
	page := parseInt(c.Query("page"), 1)
	if page > maxPage {
		page = maxPage
	}
	pageSize := parseInt(c.Query("page_size"), defaultPageSize)
	if pageSize > maxPageSize {
		pageSize = maxPageSize
	}
	return pageSize, (page - 1) * pageSize
}

func parseInt(val string, def int) int {
	if val == "" {
		return def
	}
	parsed, err := strconv.Atoi(val)
	if err != nil || parsed <= 0 {
		return def
	}
	return parsed
}
