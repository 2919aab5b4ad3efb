package dto

import (
	"time"

	"github.com/spec-kit/helpdesk-service/internal/domain"
)

// CreateTicketRequest payload. Contact fields are required for anonymous callers.
type CreateTicketRequest struct {
	FirstName   string `json:"first_name"`
	LastName    string `json:"last_name"`
	Email       string `json:"email"`
	Subject     string `json:"subject"`
	Description string `json:"description"`
}

// UpdateTicketRequest is a partial update; absent fields are left unchanged.
type UpdateTicketRequest struct {
	Subject           *string `json:"subject"`
	Description       *string `json:"description"`
	Status            *string `json:"status"`
	Priority          *string `json:"priority"`
	ResolutionMessage *string `json:"resolution_message"`
}

// AssignTicketRequest payload for POST /companies/:slug/tickets/:id/assign.
type AssignTicketRequest struct {
	AgentID int64 `json:"agent_id"`
}

// TicketResponse renders a ticket.
type TicketResponse struct {
	ID          int64                 `json:"id"`
	PublicID    string                `json:"public_id"`
	CompanyID   int64                 `json:"company"`
	UserID      *int64                `json:"user"`
	FirstName   string                `json:"first_name"`
	LastName    string                `json:"last_name"`
	Email       string                `json:"email"`
	Subject     string                `json:"subject"`
	Description string                `json:"description"`
	Status      domain.TicketStatus   `json:"status"`
	Priority    domain.TicketPriority `json:"priority"`
	AssignedTo  *int64                `json:"assigned_to"`
	CreatedAt   time.Time             `json:"created_at"`
	UpdatedAt   time.Time             `json:"updated_at"`
}

// Ticket maps a domain ticket to its response.
func Ticket(ticket *domain.Ticket) TicketResponse {
	return TicketResponse{
		ID:          ticket.ID,
		PublicID:    ticket.PublicID,
		CompanyID:   ticket.CompanyID,
		UserID:      ticket.UserID,
		FirstName:   ticket.FirstName,
		LastName:    ticket.LastName,
		Email:       ticket.Email,
		Subject:     ticket.Subject,
		Description: ticket.Description,
		Status:      ticket.Status,
		Priority:    ticket.Priority,
		AssignedTo:  ticket.AssignedTo,
		CreatedAt:   ticket.CreatedAt,
		UpdatedAt:   ticket.UpdatedAt,
	}
}

// Tickets maps a slice of tickets.
func Tickets(tickets []domain.Ticket) []TicketResponse {
	items := make([]TicketResponse, 0, len(tickets))
	for i := range tickets {
		items = append(items, Ticket(&tickets[i]))
	}
	return items
}

// ResolutionResponse renders a ticket resolution with its ticket.
type ResolutionResponse struct {
	ID        int64          `json:"id"`
	Message   string         `json:"resolution_message"`
	CreatedAt time.Time      `json:"created_at"`
	Ticket    TicketResponse `json:"ticket"`
}

// Resolution maps a resolution and the ticket it closed.
func Resolution(resolution *domain.TicketResolution, ticket *domain.Ticket) ResolutionResponse {
	return ResolutionResponse{
		ID:        resolution.ID,
		Message:   resolution.Message,
		CreatedAt: resolution.CreatedAt,
		Ticket:    Ticket(ticket),
	}
}
