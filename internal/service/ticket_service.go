package service

import (
	"context"
	"errors"
	"strconv"
	"strings"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/spec-kit/helpdesk-service/internal/domain"
	"github.com/spec-kit/helpdesk-service/internal/events"
	"github.com/spec-kit/helpdesk-service/internal/policy"
	"github.com/spec-kit/helpdesk-service/internal/repository"
	apperrors "github.com/spec-kit/helpdesk-service/pkg/util/errorutil"
)

const (
	maxSubjectLength     = 200
	maxContactNameLength = 100
)

// TicketService coordinates ticket workflows.
type TicketService struct {
	store      repository.Store
	dispatcher events.Dispatcher
	logger     *zap.Logger
}

// TicketDependencies bundles collaborators for the ticket service.
type TicketDependencies struct {
	Store      repository.Store
	Dispatcher events.Dispatcher
	Logger     *zap.Logger
}

// TicketListFilter narrows a company ticket listing.
type TicketListFilter struct {
	PublicID string
	Statuses []domain.TicketStatus
	Limit    int
	Offset   int
}

// TicketCreateInput describes ticket creation payload. Contact fields are
// required for anonymous callers and default to the profile otherwise.
type TicketCreateInput struct {
	FirstName   string
	LastName    string
	Email       string
	Subject     string
	Description string
}

// TicketUpdateInput carries a partial update; nil fields are left unchanged.
type TicketUpdateInput struct {
	Subject           *string
	Description       *string
	Status            *domain.TicketStatus
	Priority          *domain.TicketPriority
	ResolutionMessage *string
}

// NewTicketService constructs the service.
func NewTicketService(deps TicketDependencies) *TicketService {
	logger := deps.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	return &TicketService{store: deps.Store, dispatcher: deps.Dispatcher, logger: logger}
}

// List returns the company's tickets the actor may view, highest priority first.
// Anonymous callers only ever see the ticket whose public id they supply.
func (s *TicketService) List(ctx context.Context, actor domain.Actor, slug string, filter TicketListFilter) ([]domain.Ticket, error) {
	company, err := companyBySlug(ctx, s.store, slug)
	if err != nil {
		return nil, err
	}

	repoFilter := repository.TicketFilter{
		CompanyID: company.ID,
		Statuses:  filter.Statuses,
		Limit:     filter.Limit,
		Offset:    filter.Offset,
	}

	publicID := ""
	if raw := strings.TrimSpace(filter.PublicID); raw != "" {
		parsed, err := uuid.Parse(raw)
		if err != nil {
			return []domain.Ticket{}, nil
		}
		publicID = parsed.String()
		repoFilter.PublicID = &publicID
	}
	if actor.IsAnonymous() && publicID == "" {
		return []domain.Ticket{}, nil
	}
	if publicID == "" {
		repoFilter.VisibleTo = visibilityScope(actor, company.ID)
	}

	tickets, err := s.store.Tickets().List(ctx, repoFilter)
	if err != nil {
		return nil, apperrors.MapError(err)
	}

	visible := make([]domain.Ticket, 0, len(tickets))
	for i := range tickets {
		if policy.CanViewTicket(actor, &tickets[i], publicID) {
			visible = append(visible, tickets[i])
		}
	}
	return visible, nil
}

// Create opens a ticket in the company on behalf of the actor.
func (s *TicketService) Create(ctx context.Context, actor domain.Actor, slug string, input TicketCreateInput) (*domain.Ticket, error) {
	company, err := companyBySlug(ctx, s.store, slug)
	if err != nil {
		return nil, err
	}
	if !policy.CanCreateTicket(actor) {
		return nil, apperrors.NewForbidden("ticket creation not allowed")
	}

	ticket := &domain.Ticket{
		PublicID:    uuid.NewString(),
		CompanyID:   company.ID,
		FirstName:   strings.TrimSpace(input.FirstName),
		LastName:    strings.TrimSpace(input.LastName),
		Email:       strings.TrimSpace(input.Email),
		Subject:     strings.TrimSpace(input.Subject),
		Description: strings.TrimSpace(input.Description),
		Status:      domain.TicketStatusOpen,
		Priority:    domain.TicketPriorityLow,
	}
	if !actor.IsAnonymous() {
		id := actor.ID()
		ticket.UserID = &id
		// Profile names may be longer than the ticket contact columns.
		if ticket.FirstName == "" {
			ticket.FirstName = clip(actor.User.FirstName, maxContactNameLength)
		}
		if ticket.LastName == "" {
			ticket.LastName = clip(actor.User.LastName, maxContactNameLength)
		}
		if ticket.Email == "" {
			ticket.Email = actor.User.Email
		}
	}

	problems := fieldErrors{}
	problems.required("subject", ticket.Subject)
	problems.maxLen("subject", ticket.Subject, maxSubjectLength)
	problems.required("description", ticket.Description)
	if actor.IsAnonymous() {
		problems.required("first_name", ticket.FirstName)
		problems.required("last_name", ticket.LastName)
		problems.required("email", ticket.Email)
	}
	problems.maxLen("first_name", ticket.FirstName, maxContactNameLength)
	problems.maxLen("last_name", ticket.LastName, maxContactNameLength)
	if ticket.Email != "" {
		problems.email("email", ticket.Email)
	}
	if err := problems.err("invalid ticket"); err != nil {
		return nil, err
	}

	if err := s.store.Tickets().Create(ctx, ticket); err != nil {
		return nil, apperrors.MapError(err)
	}

	event := events.New(events.EventTicketCreated, actor, events.TicketCreatedPayload{
		PublicID:  ticket.PublicID,
		Priority:  ticket.Priority,
		Subject:   ticket.Subject,
		Anonymous: actor.IsAnonymous(),
	})
	event.CompanyID, event.TicketID = company.ID, ticket.ID
	publish(ctx, s.dispatcher, s.logger, event)
	return ticket, nil
}

// Get returns one ticket by public id or internal id. Anonymous callers who may
// not see the ticket get NotFound so existence is not disclosed.
func (s *TicketService) Get(ctx context.Context, actor domain.Actor, slug, ref string) (*domain.Ticket, error) {
	company, err := companyBySlug(ctx, s.store, slug)
	if err != nil {
		return nil, err
	}
	ticket, supplied, err := loadTicket(ctx, s.store, company.ID, ref)
	if err != nil {
		return nil, err
	}
	if !policy.CanViewTicket(actor, ticket, supplied) {
		if actor.IsAnonymous() {
			return nil, ticketNotFound(ref)
		}
		return nil, apperrors.NewForbidden("you do not have access to this ticket")
	}
	return ticket, nil
}

// Update applies field edits and status or priority changes. Status changes go
// through the lifecycle rules; closing records the resolution atomically.
func (s *TicketService) Update(ctx context.Context, actor domain.Actor, slug, ref string, input TicketUpdateInput) (*domain.Ticket, error) {
	if actor.IsAnonymous() {
		return nil, apperrors.NewForbidden("authentication required")
	}
	company, err := companyBySlug(ctx, s.store, slug)
	if err != nil {
		return nil, err
	}
	ticket, _, err := loadTicket(ctx, s.store, company.ID, ref)
	if err != nil {
		return nil, err
	}
	if !policy.CanEditTicket(actor, ticket) {
		return nil, apperrors.NewForbidden("you do not have access to this ticket")
	}

	problems := fieldErrors{}
	if input.Subject != nil {
		problems.required("subject", *input.Subject)
		problems.maxLen("subject", *input.Subject, maxSubjectLength)
	}
	if input.Description != nil {
		problems.required("description", *input.Description)
	}
	if err := problems.err("invalid ticket"); err != nil {
		return nil, err
	}

	resolution := ""
	if input.ResolutionMessage != nil {
		resolution = strings.TrimSpace(*input.ResolutionMessage)
	}

	var (
		oldStatus   domain.TicketStatus
		oldPriority domain.TicketPriority
		plan        domain.Transition
		created     *domain.TicketResolution
	)
	err = s.store.WithinTx(ctx, func(tx repository.Store) error {
		locked, err := tx.Tickets().LockByID(ctx, ticket.ID)
		if err != nil {
			return err
		}
		oldStatus, oldPriority = locked.Status, locked.Priority
		if !policy.CanEditTicket(actor, locked) {
			return apperrors.NewForbidden("you do not have access to this ticket")
		}

		statusChanging := input.Status != nil && *input.Status != locked.Status
		priorityChanged := input.Priority != nil && *input.Priority != locked.Priority
		if (statusChanging || priorityChanged) && !policy.CanMutateTicketStatus(actor, locked) {
			return apperrors.NewForbidden("you cannot change the status or priority of this ticket")
		}

		next := locked.Status
		if input.Status != nil {
			next = *input.Status
		}
		plan, err = domain.PlanTransition(locked.Status, next, resolution)
		if err != nil {
			return lifecycleError(err)
		}
		resubmitsClosed := input.Status != nil && *input.Status == domain.TicketStatusClosed && locked.IsClosed()
		if plan.NoOp() && resolution != "" && !resubmitsClosed {
			return lifecycleError(domain.ErrUnexpectedResolution)
		}

		changed := !plan.NoOp() || priorityChanged
		if input.Subject != nil {
			subject := strings.TrimSpace(*input.Subject)
			changed = changed || subject != locked.Subject
			locked.Subject = subject
		}
		if input.Description != nil {
			description := strings.TrimSpace(*input.Description)
			changed = changed || description != locked.Description
			locked.Description = description
		}
		if !changed {
			ticket = locked
			return nil
		}
		if oldStatus == domain.TicketStatusClosed {
			return apperrors.NewValidationError("closed tickets cannot be modified", map[string]any{"status": oldStatus})
		}

		locked.Status = plan.To
		if priorityChanged {
			locked.Priority = *input.Priority
		}
		if err := tx.Tickets().Update(ctx, locked); err != nil {
			return err
		}
		if plan.Closes() {
			created = &domain.TicketResolution{TicketID: locked.ID, Message: plan.Resolution}
			if err := tx.Resolutions().Create(ctx, created); err != nil {
				return err
			}
		}
		ticket = locked
		return nil
	})
	if err != nil {
		return nil, apperrors.MapError(err)
	}

	if !plan.NoOp() {
		emitTicketEvent(ctx, s.dispatcher, s.logger, actor, ticket, events.EventTicketStatusChanged, events.TicketStatusChangedPayload{OldStatus: oldStatus, NewStatus: ticket.Status})
	}
	if ticket.Priority != oldPriority {
		emitTicketEvent(ctx, s.dispatcher, s.logger, actor, ticket, events.EventTicketPriorityChanged, events.TicketPriorityChangedPayload{OldPriority: oldPriority, NewPriority: ticket.Priority})
	}
	if created != nil {
		emitTicketEvent(ctx, s.dispatcher, s.logger, actor, ticket, events.EventTicketResolved, events.TicketResolvedPayload{ResolutionID: created.ID})
	}
	return ticket, nil
}

// ResolutionView pairs a resolution with the ticket it closed.
type ResolutionView struct {
	Resolution domain.TicketResolution
	Ticket     domain.Ticket
}

// ListResolutions returns the company's resolutions the actor may read.
func (s *TicketService) ListResolutions(ctx context.Context, actor domain.Actor, slug string) ([]ResolutionView, error) {
	company, err := companyBySlug(ctx, s.store, slug)
	if err != nil {
		return nil, err
	}
	if actor.IsAnonymous() {
		return []ResolutionView{}, nil
	}

	resolutions, err := s.store.Resolutions().ListByCompany(ctx, company.ID)
	if err != nil {
		return nil, apperrors.MapError(err)
	}
	views := make([]ResolutionView, 0, len(resolutions))
	for _, resolution := range resolutions {
		ticket, err := s.store.Tickets().GetByID(ctx, company.ID, resolution.TicketID)
		if err != nil {
			if apperrors.IsNoRows(err) {
				continue
			}
			return nil, apperrors.MapError(err)
		}
		if policy.CanAccessResolution(actor, ticket) {
			views = append(views, ResolutionView{Resolution: resolution, Ticket: *ticket})
		}
	}
	return views, nil
}

// GetResolution returns the resolution of one ticket.
func (s *TicketService) GetResolution(ctx context.Context, actor domain.Actor, slug, ref string) (*ResolutionView, error) {
	company, err := companyBySlug(ctx, s.store, slug)
	if err != nil {
		return nil, err
	}
	ticket, _, err := loadTicket(ctx, s.store, company.ID, ref)
	if err != nil {
		return nil, err
	}
	// Anonymous callers never hold resolution access. Answer as for a missing
	// ticket so the response does not reveal which tickets exist.
	if actor.IsAnonymous() {
		return nil, ticketNotFound(ref)
	}
	resolution, err := s.store.Resolutions().GetByTicket(ctx, ticket.ID)
	if err != nil {
		if apperrors.IsNoRows(err) {
			return nil, apperrors.NewNotFound("resolution", map[string]any{"ticket": ref})
		}
		return nil, apperrors.MapError(err)
	}
	if !policy.CanAccessResolution(actor, ticket) {
		return nil, apperrors.NewForbidden("you do not have access to this resolution")
	}
	return &ResolutionView{Resolution: *resolution, Ticket: *ticket}, nil
}

// visibilityScope narrows a listing to tickets created by or assigned to the
// actor unless the actor manages the company.
func visibilityScope(actor domain.Actor, companyID int64) *int64 {
	if actor.IsSuperuser() {
		return nil
	}
	self := actor.ID()
	switch actor.Role() {
	case domain.RoleOwner, domain.RoleAdmin:
		if actor.MemberOf(companyID) {
			return nil
		}
		return &self
	case domain.RoleAgent, domain.RoleCustomer:
		return &self
	default:
		return &self
	}
}

// loadTicket resolves ref as a public UUID or a decimal internal id within the
// company. The returned string is the public id when that form was used.
func loadTicket(ctx context.Context, store repository.Store, companyID int64, ref string) (*domain.Ticket, string, error) {
	ref = strings.TrimSpace(ref)
	var (
		ticket   *domain.Ticket
		supplied string
		err      error
	)
	if parsed, parseErr := uuid.Parse(ref); parseErr == nil {
		supplied = parsed.String()
		ticket, err = store.Tickets().GetByPublicID(ctx, companyID, supplied)
	} else if id, convErr := strconv.ParseInt(ref, 10, 64); convErr == nil && id > 0 {
		ticket, err = store.Tickets().GetByID(ctx, companyID, id)
	} else {
		return nil, "", ticketNotFound(ref)
	}
	if err != nil {
		if apperrors.IsNoRows(err) {
			return nil, "", ticketNotFound(ref)
		}
		return nil, "", apperrors.MapError(err)
	}
	return ticket, supplied, nil
}

func ticketNotFound(ref string) error {
	return apperrors.NewNotFound("ticket", map[string]any{"ticket": ref})
}

func lifecycleError(err error) error {
	var transition *domain.InvalidTransitionError
	switch {
	case errors.As(err, &transition):
		return apperrors.NewValidationError(err.Error(), map[string]any{"from": transition.From, "to": transition.To})
	case errors.Is(err, domain.ErrResolutionRequired):
		return apperrors.NewValidationError(err.Error(), map[string]any{"resolution_message": "is required"})
	case errors.Is(err, domain.ErrUnexpectedResolution):
		return apperrors.NewValidationError(err.Error(), map[string]any{"resolution_message": "is only accepted when closing"})
	default:
		return err
	}
}
