package service

import (
	"strconv"
	"testing"

	"github.com/spec-kit/helpdesk-service/internal/domain"
	"github.com/spec-kit/helpdesk-service/internal/events"
	apperrors "github.com/spec-kit/helpdesk-service/pkg/util/errorutil"
)

func TestAssignAgent(t *testing.T) {
	f := newFixture(t)
	acme, owner := f.tenant(t, "Acme Inc")
	agent := f.user(t, domain.RoleAgent, acme)
	customer := f.user(t, domain.RoleCustomer, nil)

	ticket := f.ticket(t, domain.ActorFor(customer), "acme-inc", "assign me")
	ref := strconv.FormatInt(ticket.ID, 10)

	assigned, err := f.assignments.AssignAgent(f.ctx, domain.ActorFor(owner), "acme-inc", ticket.PublicID, agent.ID)
	if err != nil {
		t.Fatalf("assign: %v", err)
	}
	if !assigned.AssignedToUser(agent.ID) || assigned.Status != domain.TicketStatusInProgress {
		t.Fatalf("unexpected ticket after assignment: %+v", assigned)
	}
	if f.recorder.count(events.EventTicketAssigned) != 1 || f.recorder.count(events.EventTicketStatusChanged) != 1 {
		t.Fatal("expected assignment and status change events")
	}

	_, err = f.assignments.AssignAgent(f.ctx, domain.ActorFor(owner), "acme-inc", ref, agent.ID)
	assertCode(t, err, apperrors.CodeValidation)

	// The assigned agent now reaches the ticket.
	if _, err := f.tickets.Get(f.ctx, domain.ActorFor(agent), "acme-inc", ref); err != nil {
		t.Fatalf("assigned agent get: %v", err)
	}
}

func TestAssignAgentRejects(t *testing.T) {
	f := newFixture(t)
	acme, owner := f.tenant(t, "Acme Inc")
	globex, globexOwner := f.tenant(t, "Globex")
	agent := f.user(t, domain.RoleAgent, acme)
	admin := f.user(t, domain.RoleAdmin, acme)
	foreignAgent := f.user(t, domain.RoleAgent, globex)
	foreignAdmin := f.user(t, domain.RoleAdmin, globex)
	customer := f.user(t, domain.RoleCustomer, nil)

	open := f.ticket(t, domain.ActorFor(customer), "acme-inc", "open")
	closed := f.ticket(t, domain.ActorFor(customer), "acme-inc", "closed")
	closedRef := strconv.FormatInt(closed.ID, 10)
	if _, err := f.tickets.Update(f.ctx, domain.ActorFor(owner), "acme-inc", closedRef, TicketUpdateInput{
		Status:            statusPtr(domain.TicketStatusClosed),
		ResolutionMessage: strPtr("done"),
	}); err != nil {
		t.Fatal(err)
	}
	openRef := strconv.FormatInt(open.ID, 10)

	tests := []struct {
		name    string
		actor   domain.Actor
		ref     string
		agentID int64
		code    string
	}{
		{name: "agent actor", actor: domain.ActorFor(agent), ref: openRef, agentID: agent.ID, code: apperrors.CodeForbidden},
		{name: "customer actor", actor: domain.ActorFor(customer), ref: openRef, agentID: agent.ID, code: apperrors.CodeForbidden},
		{name: "anonymous", actor: domain.Anonymous(), ref: open.PublicID, agentID: agent.ID, code: apperrors.CodeForbidden},
		{name: "admin of another company", actor: domain.ActorFor(foreignAdmin), ref: openRef, agentID: agent.ID, code: apperrors.CodeForbidden},
		{name: "owner of another company", actor: domain.ActorFor(globexOwner), ref: openRef, agentID: foreignAgent.ID, code: apperrors.CodeForbidden},
		{name: "agent from another company", actor: domain.ActorFor(owner), ref: openRef, agentID: foreignAgent.ID, code: apperrors.CodeValidation},
		{name: "customer as agent", actor: domain.ActorFor(owner), ref: openRef, agentID: customer.ID, code: apperrors.CodeValidation},
		{name: "missing agent", actor: domain.ActorFor(admin), ref: openRef, agentID: 9999, code: apperrors.CodeNotFound},
		{name: "missing ticket", actor: domain.ActorFor(admin), ref: "9999", agentID: agent.ID, code: apperrors.CodeNotFound},
		{name: "closed ticket", actor: domain.ActorFor(admin), ref: closedRef, agentID: agent.ID, code: apperrors.CodeValidation},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := f.assignments.AssignAgent(f.ctx, tt.actor, "acme-inc", tt.ref, tt.agentID)
			assertCode(t, err, tt.code)
		})
	}

	// Admins may assign themselves.
	self, err := f.assignments.AssignAgent(f.ctx, domain.ActorFor(admin), "acme-inc", openRef, admin.ID)
	if err != nil {
		t.Fatalf("admin self assignment: %v", err)
	}
	if !self.AssignedToUser(admin.ID) {
		t.Fatalf("expected admin assignment, got %v", self.AssignedTo)
	}
}
