package policy

import (
	"testing"

	"github.com/spec-kit/helpdesk-service/internal/domain"
	apperrors "github.com/spec-kit/helpdesk-service/pkg/util/errorutil"
)

const (
	companyX int64 = 10
	companyY int64 = 20
)

func member(id int64, role domain.Role, company int64) *domain.User {
	user := &domain.User{ID: id, Role: role}
	user.JoinCompany(company)
	return user
}

func ptr(v int64) *int64 { return &v }

func TestCanViewTicket(t *testing.T) {
	owner := member(1, domain.RoleOwner, companyX)
	admin := member(2, domain.RoleAdmin, companyX)
	agent := member(3, domain.RoleAgent, companyX)
	otherAgent := member(4, domain.RoleAgent, companyX)
	customer := &domain.User{ID: 5, Role: domain.RoleCustomer}
	stranger := &domain.User{ID: 6, Role: domain.RoleCustomer}
	foreignOwner := member(7, domain.RoleOwner, companyY)
	superuser := &domain.User{ID: 8, Role: domain.RoleCustomer, IsSuperuser: true}

	ticket := &domain.Ticket{
		ID:         100,
		PublicID:   "8d7c1f9e-0f5a-4d0b-9f8e-2f1a3c4b5d6e",
		CompanyID:  companyX,
		UserID:     ptr(customer.ID),
		AssignedTo: ptr(agent.ID),
		Status:     domain.TicketStatusOpen,
	}

	tests := []struct {
		name     string
		actor    domain.Actor
		publicID string
		want     bool
	}{
		{"owner of company", domain.ActorFor(owner), "", true},
		{"admin of company", domain.ActorFor(admin), "", true},
		{"assigned agent", domain.ActorFor(agent), "", true},
		{"unassigned agent", domain.ActorFor(otherAgent), "", false},
		{"ticket creator", domain.ActorFor(customer), "", true},
		{"other customer", domain.ActorFor(stranger), "", false},
		{"other customer with public id", domain.ActorFor(stranger), ticket.PublicID, true},
		{"owner of other company", domain.ActorFor(foreignOwner), "", false},
		{"superuser", domain.ActorFor(superuser), "", true},
		{"anonymous without public id", domain.Anonymous(), "", false},
		{"anonymous with public id", domain.Anonymous(), ticket.PublicID, true},
		{"anonymous with wrong public id", domain.Anonymous(), "8d7c1f9e-0000-4d0b-9f8e-2f1a3c4b5d6e", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := CanViewTicket(tt.actor, ticket, tt.publicID); got != tt.want {
				t.Errorf("CanViewTicket() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestCanEditTicket(t *testing.T) {
	agent := member(3, domain.RoleAgent, companyX)
	creator := &domain.User{ID: 5, Role: domain.RoleCustomer}
	stranger := &domain.User{ID: 6, Role: domain.RoleCustomer}
	ticket := &domain.Ticket{CompanyID: companyX, UserID: ptr(creator.ID), AssignedTo: ptr(agent.ID), PublicID: "pub-1"}

	tests := []struct {
		name  string
		actor domain.Actor
		want  bool
	}{
		{"creator", domain.ActorFor(creator), true},
		{"stranger holding the public id", domain.ActorFor(stranger), false},
		{"owner", domain.ActorFor(member(1, domain.RoleOwner, companyX)), true},
		{"admin of other company", domain.ActorFor(member(2, domain.RoleAdmin, companyY)), false},
		{"assigned agent", domain.ActorFor(agent), true},
		{"unassigned agent", domain.ActorFor(member(4, domain.RoleAgent, companyX)), false},
		{"anonymous", domain.Anonymous(), false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if !CanViewTicket(tt.actor, ticket, ticket.PublicID) {
				t.Fatal("the public id must keep granting read access")
			}
			if got := CanEditTicket(tt.actor, ticket); got != tt.want {
				t.Errorf("CanEditTicket() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestCanMutateTicketStatus(t *testing.T) {
	agent := member(3, domain.RoleAgent, companyX)
	customer := &domain.User{ID: 5, Role: domain.RoleCustomer}
	ticket := &domain.Ticket{CompanyID: companyX, UserID: ptr(customer.ID), AssignedTo: ptr(agent.ID)}

	tests := []struct {
		name  string
		actor domain.Actor
		want  bool
	}{
		{"owner", domain.ActorFor(member(1, domain.RoleOwner, companyX)), true},
		{"admin of other company", domain.ActorFor(member(2, domain.RoleAdmin, companyY)), false},
		{"assigned agent", domain.ActorFor(agent), true},
		{"ticket creator", domain.ActorFor(customer), false},
		{"anonymous", domain.Anonymous(), false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := CanMutateTicketStatus(tt.actor, ticket); got != tt.want {
				t.Errorf("CanMutateTicketStatus() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestCanAssignAgent(t *testing.T) {
	tests := []struct {
		role domain.Role
		want bool
	}{
		{domain.RoleOwner, true},
		{domain.RoleAdmin, true},
		{domain.RoleAgent, false},
		{domain.RoleCustomer, false},
	}
	for _, tt := range tests {
		if got := CanAssignAgent(domain.ActorFor(member(1, tt.role, companyX))); got != tt.want {
			t.Errorf("CanAssignAgent(%s) = %v, want %v", tt.role, got, tt.want)
		}
	}
	if CanAssignAgent(domain.Anonymous()) {
		t.Error("anonymous actor must not assign agents")
	}
}

func TestCanAssignRole(t *testing.T) {
	owner := member(1, domain.RoleOwner, companyX)
	admin := member(2, domain.RoleAdmin, companyX)
	agent := member(3, domain.RoleAgent, companyX)
	target := &domain.User{ID: 9, Role: domain.RoleCustomer}

	tests := []struct {
		name    string
		actor   *domain.User
		target  *domain.User
		role    domain.Role
		allowed bool
	}{
		{"owner grants admin", owner, target, domain.RoleAdmin, true},
		{"owner grants agent", owner, target, domain.RoleAgent, true},
		{"admin grants agent", admin, target, domain.RoleAgent, true},
		{"admin grants admin", admin, target, domain.RoleAdmin, false},
		{"agent grants agent", agent, target, domain.RoleAgent, false},
		{"self change by owner", owner, owner, domain.RoleAgent, false},
		{"self change by admin", admin, admin, domain.RoleCustomer, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := CanAssignRole(domain.ActorFor(tt.actor), tt.target, tt.role)
			if tt.allowed && err != nil {
				t.Fatalf("expected allowed, got %v", err)
			}
			if !tt.allowed && !apperrors.HasCode(err, apperrors.CodeForbidden) {
				t.Fatalf("expected Forbidden, got %v", err)
			}
		})
	}
}

func TestCanAccessResolution(t *testing.T) {
	customer := &domain.User{ID: 5, Role: domain.RoleCustomer}
	closed := &domain.Ticket{CompanyID: companyX, UserID: ptr(customer.ID), Status: domain.TicketStatusClosed}
	open := &domain.Ticket{CompanyID: companyX, UserID: ptr(customer.ID), Status: domain.TicketStatusOpen}

	tests := []struct {
		name   string
		actor  domain.Actor
		ticket *domain.Ticket
		want   bool
	}{
		{"agent of company on closed", domain.ActorFor(member(3, domain.RoleAgent, companyX)), closed, true},
		{"agent of company on open", domain.ActorFor(member(3, domain.RoleAgent, companyX)), open, false},
		{"admin of other company", domain.ActorFor(member(2, domain.RoleAdmin, companyY)), closed, false},
		{"ticket creator", domain.ActorFor(customer), closed, true},
		{"unrelated customer", domain.ActorFor(&domain.User{ID: 6, Role: domain.RoleCustomer}), closed, false},
		{"anonymous", domain.Anonymous(), closed, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := CanAccessResolution(tt.actor, tt.ticket); got != tt.want {
				t.Errorf("CanAccessResolution() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestCanViewCompany(t *testing.T) {
	company := &domain.Company{ID: companyX}
	if !CanViewCompany(domain.ActorFor(member(1, domain.RoleOwner, companyX)), company) {
		t.Error("owner should see own company")
	}
	if CanViewCompany(domain.ActorFor(member(1, domain.RoleOwner, companyY)), company) {
		t.Error("owner must not see foreign company")
	}
	if CanViewCompany(domain.ActorFor(member(2, domain.RoleAdmin, companyX)), company) {
		t.Error("admins do not list companies")
	}
	if !CanViewCompany(domain.ActorFor(&domain.User{ID: 3, IsSuperuser: true}), company) {
		t.Error("superuser sees all companies")
	}
	if CanViewCompany(domain.Anonymous(), company) {
		t.Error("anonymous sees no companies")
	}
}
