package events

import (
	"time"

	"github.com/google/uuid"

	"github.com/spec-kit/helpdesk-service/internal/domain"
)

// EventType enumerates supported event identifiers.
type EventType string

const (
	EventCompanyCreated        EventType = "company_created"
	EventTicketCreated         EventType = "ticket_created"
	EventTicketStatusChanged   EventType = "ticket_status_changed"
	EventTicketPriorityChanged EventType = "ticket_priority_changed"
	EventTicketAssigned        EventType = "ticket_assigned"
	EventTicketResolved        EventType = "ticket_resolved"
	EventUserRoleChanged       EventType = "user_role_changed"
)

// AllEventTypes lists every event the service publishes.
var AllEventTypes = []EventType{
	EventCompanyCreated,
	EventTicketCreated,
	EventTicketStatusChanged,
	EventTicketPriorityChanged,
	EventTicketAssigned,
	EventTicketResolved,
	EventUserRoleChanged,
}

// Actor encapsulates actor metadata for an event.
type Actor struct {
	Anonymous bool        `json:"anonymous"`
	UserID    *int64      `json:"user_id,omitempty"`
	Role      domain.Role `json:"role,omitempty"`
}

// ActorFrom converts a request actor into event metadata.
func ActorFrom(actor domain.Actor) Actor {
	if actor.IsAnonymous() {
		return Actor{Anonymous: true}
	}
	id := actor.ID()
	return Actor{UserID: &id, Role: actor.Role()}
}

// Event represents a domain event emitted by services.
type Event struct {
	ID        string    `json:"id"`
	Type      EventType `json:"type"`
	CompanyID int64     `json:"company_id,omitempty"`
	TicketID  int64     `json:"ticket_id,omitempty"`
	Actor     Actor     `json:"actor"`
	Timestamp time.Time `json:"timestamp"`
	Payload   any       `json:"payload"`
}

// New stamps an event with a fresh id and the current time.
func New(eventType EventType, actor domain.Actor, payload any) Event {
	return Event{
		ID:        uuid.NewString(),
		Type:      eventType,
		Actor:     ActorFrom(actor),
		Timestamp: time.Now().UTC(),
		Payload:   payload,
	}
}

// CompanyCreatedPayload payload.
type CompanyCreatedPayload struct {
	Slug    string `json:"slug"`
	OwnerID int64  `json:"owner_id"`
}

// TicketCreatedPayload payload.
type TicketCreatedPayload struct {
	PublicID  string                `json:"public_id"`
	Priority  domain.TicketPriority `json:"priority"`
	Subject   string                `json:"subject"`
	Anonymous bool                  `json:"anonymous"`
}

// TicketStatusChangedPayload payload.
type TicketStatusChangedPayload struct {
	OldStatus domain.TicketStatus `json:"old_status"`
	NewStatus domain.TicketStatus `json:"new_status"`
}

// TicketPriorityChangedPayload payload.
type TicketPriorityChangedPayload struct {
	OldPriority domain.TicketPriority `json:"old_priority"`
	NewPriority domain.TicketPriority `json:"new_priority"`
}

// TicketAssignedPayload payload.
type TicketAssignedPayload struct {
	PreviousAgentID *int64 `json:"previous_agent_id,omitempty"`
	AgentID         int64  `json:"agent_id"`
}

// TicketResolvedPayload payload.
type TicketResolvedPayload struct {
	ResolutionID int64 `json:"resolution_id"`
}

// UserRoleChangedPayload payload.
type UserRoleChangedPayload struct {
	UserID    int64       `json:"user_id"`
	OldRole   domain.Role `json:"old_role"`
	NewRole   domain.Role `json:"new_role"`
	CompanyID int64       `json:"company_id"`
}
