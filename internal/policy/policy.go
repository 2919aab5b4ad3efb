// Package policy holds the authorization predicates for companies, tickets,
// resolutions and role assignment. Every check is a pure function of the
// values passed in; callers re-read state and re-check after any write.
package policy

import (
	"github.com/spec-kit/helpdesk-service/internal/domain"
	apperrors "github.com/spec-kit/helpdesk-service/pkg/util/errorutil"
)

// CanViewCompany reports whether the actor sees the company in listings.
func CanViewCompany(actor domain.Actor, company *domain.Company) bool {
	if actor.IsSuperuser() {
		return true
	}
	switch actor.Role() {
	case domain.RoleOwner:
		return actor.MemberOf(company.ID)
	case domain.RoleAdmin, domain.RoleAgent, domain.RoleCustomer:
		return false
	default:
		return false
	}
}

// CanViewTicket reports whether the actor may read the ticket. suppliedPublicID
// is the public identifier presented by the caller, if any.
func CanViewTicket(actor domain.Actor, ticket *domain.Ticket, suppliedPublicID string) bool {
	if suppliedPublicID != "" && suppliedPublicID == ticket.PublicID {
		return true
	}
	if actor.IsAnonymous() {
		return false
	}
	if actor.Is(ticket.UserID) {
		return true
	}
	return staffCanReach(actor, ticket)
}

// CanEditTicket reports whether the actor may change ticket fields. The public
// identifier only grants read access.
func CanEditTicket(actor domain.Actor, ticket *domain.Ticket) bool {
	if actor.IsAnonymous() {
		return false
	}
	if actor.Is(ticket.UserID) {
		return true
	}
	return staffCanReach(actor, ticket)
}

// CanCreateTicket is unrestricted: authenticated and anonymous callers may open tickets.
func CanCreateTicket(domain.Actor) bool {
	return true
}

// CanMutateTicketStatus reports whether the actor may change status or priority.
func CanMutateTicketStatus(actor domain.Actor, ticket *domain.Ticket) bool {
	if actor.IsAnonymous() {
		return false
	}
	return staffCanReach(actor, ticket)
}

// CanAssignAgent reports whether the actor's role may assign tickets.
func CanAssignAgent(actor domain.Actor) bool {
	if actor.IsAnonymous() {
		return false
	}
	return actor.Role().IsManager()
}

// CanAssignRole returns a Forbidden error when the actor may not give target newRole.
func CanAssignRole(actor domain.Actor, target *domain.User, newRole domain.Role) error {
	if actor.IsAnonymous() {
		return apperrors.NewForbidden("authentication required")
	}
	if actor.ID() == target.ID {
		return apperrors.NewForbidden("you cannot change your own role")
	}
	if newRole == domain.RoleAdmin && actor.Role() != domain.RoleOwner {
		return apperrors.NewForbidden("only owners can assign admin role")
	}
	if !actor.Role().IsManager() {
		return apperrors.NewForbidden("insufficient role for role assignment")
	}
	return nil
}

// CanAccessResolution reports whether the actor may read the resolution of a closed ticket.
func CanAccessResolution(actor domain.Actor, ticket *domain.Ticket) bool {
	if !ticket.IsClosed() || actor.IsAnonymous() {
		return false
	}
	if actor.IsSuperuser() || actor.Is(ticket.UserID) {
		return true
	}
	switch actor.Role() {
	case domain.RoleOwner, domain.RoleAdmin, domain.RoleAgent:
		return actor.MemberOf(ticket.CompanyID)
	case domain.RoleCustomer:
		return false
	default:
		return false
	}
}

// staffCanReach covers the staff branch shared by view and status checks.
func staffCanReach(actor domain.Actor, ticket *domain.Ticket) bool {
	if actor.IsSuperuser() {
		return true
	}
	switch actor.Role() {
	case domain.RoleOwner, domain.RoleAdmin:
		return actor.MemberOf(ticket.CompanyID)
	case domain.RoleAgent:
		return ticket.AssignedToUser(actor.ID())
	case domain.RoleCustomer:
		return false
	default:
		return false
	}
}
