package service

import (
	"context"
	"testing"

	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"

	"github.com/spec-kit/helpdesk-service/internal/domain"
	"github.com/spec-kit/helpdesk-service/internal/events"
)

func TestAuditServiceLogsDomainEvents(t *testing.T) {
	core, logs := observer.New(zap.InfoLevel)
	dispatcher := events.NewInMemoryDispatcher()
	NewAuditService(dispatcher, zap.New(core)).RegisterHandlers()

	agent := &domain.User{ID: 7, Role: domain.RoleAgent}
	ticket := &domain.Ticket{ID: 11, CompanyID: 3, Status: domain.TicketStatusClosed}
	emitTicketEvent(context.Background(), dispatcher, zap.NewNop(), domain.ActorFor(agent), ticket,
		events.EventTicketResolved, events.TicketResolvedPayload{ResolutionID: 5})

	entries := logs.FilterMessage("domain event").All()
	if len(entries) != 1 {
		t.Fatalf("expected one audit entry, got %d", len(entries))
	}
	fields := entries[0].ContextMap()
	if fields["event_type"] != string(events.EventTicketResolved) {
		t.Fatalf("unexpected event type %v", fields["event_type"])
	}
	if fields["actor_id"] != int64(7) || fields["ticket_id"] != int64(11) || fields["company_id"] != int64(3) {
		t.Fatalf("unexpected fields %v", fields)
	}
	if entries[0].LoggerName != "audit" {
		t.Fatalf("unexpected logger name %q", entries[0].LoggerName)
	}
}

func TestAnonymousEventsCarryNoActor(t *testing.T) {
	core, logs := observer.New(zap.InfoLevel)
	dispatcher := events.NewInMemoryDispatcher()
	NewAuditService(dispatcher, zap.New(core)).RegisterHandlers()

	publish(context.Background(), dispatcher, zap.NewNop(), events.New(events.EventTicketCreated, domain.Anonymous(), events.TicketCreatedPayload{Anonymous: true}))

	entries := logs.All()
	if len(entries) != 1 {
		t.Fatalf("expected one entry, got %d", len(entries))
	}
	fields := entries[0].ContextMap()
	if _, ok := fields["actor_id"]; ok {
		t.Fatal("anonymous event must not carry an actor id")
	}
	if fields["anonymous"] != true {
		t.Fatalf("expected anonymous flag, got %v", fields["anonymous"])
	}
}
