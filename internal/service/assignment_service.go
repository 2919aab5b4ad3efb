package service

import (
	"context"

	"go.uber.org/zap"

	"github.com/spec-kit/helpdesk-service/internal/domain"
	"github.com/spec-kit/helpdesk-service/internal/events"
	"github.com/spec-kit/helpdesk-service/internal/policy"
	"github.com/spec-kit/helpdesk-service/internal/repository"
	apperrors "github.com/spec-kit/helpdesk-service/pkg/util/errorutil"
)

// AssignmentService handles ticket assignment operations.
type AssignmentService struct {
	store      repository.Store
	dispatcher events.Dispatcher
	logger     *zap.Logger
}

// AssignmentDependencies bundles collaborators.
type AssignmentDependencies struct {
	Store      repository.Store
	Dispatcher events.Dispatcher
	Logger     *zap.Logger
}

// NewAssignmentService creates the service.
func NewAssignmentService(deps AssignmentDependencies) *AssignmentService {
	logger := deps.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	return &AssignmentService{store: deps.Store, dispatcher: deps.Dispatcher, logger: logger}
}

// AssignAgent assigns a staff member of the ticket's company and moves the
// ticket to in_progress. Concurrent assignments resolve last-write-wins.
func (s *AssignmentService) AssignAgent(ctx context.Context, actor domain.Actor, slug, ref string, agentID int64) (*domain.Ticket, error) {
	if !policy.CanAssignAgent(actor) {
		return nil, apperrors.NewForbidden("insufficient role for assignment")
	}
	company, err := companyBySlug(ctx, s.store, slug)
	if err != nil {
		return nil, err
	}
	ticket, _, err := loadTicket(ctx, s.store, company.ID, ref)
	if err != nil {
		return nil, err
	}
	if !actor.IsSuperuser() && !actor.MemberOf(ticket.CompanyID) {
		return nil, apperrors.NewForbidden("you can only assign tickets of your own company")
	}

	agent, err := s.store.Users().GetByID(ctx, agentID)
	if err != nil {
		if apperrors.IsNoRows(err) {
			return nil, apperrors.NewNotFound("user", map[string]any{"id": agentID})
		}
		return nil, apperrors.MapError(err)
	}
	if !agent.Role.IsStaff() {
		return nil, apperrors.NewValidationError("only staff members can be assigned", map[string]any{"agent_id": agentID, "role": agent.Role})
	}
	if !agent.BelongsTo(ticket.CompanyID) {
		return nil, apperrors.NewValidationError("agent does not belong to the ticket's company", map[string]any{"agent_id": agentID})
	}

	var (
		previous  *int64
		oldStatus domain.TicketStatus
	)
	err = s.store.WithinTx(ctx, func(tx repository.Store) error {
		locked, err := tx.Tickets().LockByID(ctx, ticket.ID)
		if err != nil {
			return err
		}
		if locked.IsClosed() {
			return apperrors.NewValidationError("closed tickets cannot be assigned", map[string]any{"status": locked.Status})
		}
		if locked.AssignedToUser(agent.ID) {
			return apperrors.NewValidationError("agent is already assigned to this ticket", map[string]any{"agent_id": agentID})
		}
		previous, oldStatus = locked.AssignedTo, locked.Status

		id := agent.ID
		locked.AssignedTo = &id
		locked.Status = domain.TicketStatusInProgress
		if err := tx.Tickets().Update(ctx, locked); err != nil {
			return err
		}
		ticket = locked
		return nil
	})
	if err != nil {
		return nil, apperrors.MapError(err)
	}

	s.logger.Info("ticket assigned", zap.Int64("ticket_id", ticket.ID), zap.Int64("agent_id", agent.ID))
	emitTicketEvent(ctx, s.dispatcher, s.logger, actor, ticket, events.EventTicketAssigned, events.TicketAssignedPayload{PreviousAgentID: previous, AgentID: agent.ID})
	if oldStatus != ticket.Status {
		emitTicketEvent(ctx, s.dispatcher, s.logger, actor, ticket, events.EventTicketStatusChanged, events.TicketStatusChangedPayload{OldStatus: oldStatus, NewStatus: ticket.Status})
	}
	return ticket, nil
}
