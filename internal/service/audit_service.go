package service

import (
	"context"

	"go.uber.org/zap"

	"github.com/spec-kit/helpdesk-service/internal/domain"
	"github.com/spec-kit/helpdesk-service/internal/events"
)

// AuditService writes every published domain event to the audit log.
type AuditService struct {
	dispatcher events.Dispatcher
	logger     *zap.Logger
}

// NewAuditService creates the service.
func NewAuditService(dispatcher events.Dispatcher, logger *zap.Logger) *AuditService {
	return &AuditService{
		dispatcher: dispatcher,
		logger:     logger.Named("audit"),
	}
}

// RegisterHandlers subscribes to events.
func (a *AuditService) RegisterHandlers() {
	if a.dispatcher == nil {
		return
	}
	for _, eventType := range events.AllEventTypes {
		a.dispatcher.Subscribe(eventType, a.handle)
	}
}

func (a *AuditService) handle(_ context.Context, event events.Event) error {
	fields := []zap.Field{
		zap.String("event_id", event.ID),
		zap.String("event_type", string(event.Type)),
		zap.Bool("anonymous", event.Actor.Anonymous),
		zap.Time("at", event.Timestamp),
		zap.Any("payload", event.Payload),
	}
	if event.Actor.UserID != nil {
		fields = append(fields, zap.Int64("actor_id", *event.Actor.UserID), zap.String("actor_role", string(event.Actor.Role)))
	}
	if event.CompanyID != 0 {
		fields = append(fields, zap.Int64("company_id", event.CompanyID))
	}
	if event.TicketID != 0 {
		fields = append(fields, zap.Int64("ticket_id", event.TicketID))
	}
	a.logger.Info("domain event", fields...)
	return nil
}

// publish emits an event and logs handler failures without failing the caller.
func publish(ctx context.Context, dispatcher events.Dispatcher, logger *zap.Logger, event events.Event) {
	if dispatcher == nil {
		return
	}
	if err := dispatcher.Publish(ctx, event); err != nil {
		logger.Warn("event handler failed", zap.String("event_type", string(event.Type)), zap.Error(err))
	}
}

func emitTicketEvent(ctx context.Context, dispatcher events.Dispatcher, logger *zap.Logger, actor domain.Actor, ticket *domain.Ticket, eventType events.EventType, payload any) {
	event := events.New(eventType, actor, payload)
	event.CompanyID, event.TicketID = ticket.CompanyID, ticket.ID
	publish(ctx, dispatcher, logger, event)
}
