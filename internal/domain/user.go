package domain

import "time"

// User is an account that can act on tickets, optionally as a member of one company.
type User struct {
	ID           int64
	Username     string
	Email        string
	FirstName    string
	LastName     string
	PasswordHash string
	Role         Role
	Company      *int64
	IsSuperuser  bool
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// CompanyID returns the user's company and whether membership is set.
func (u *User) CompanyID() (int64, bool) {
	if u == nil || u.Company == nil {
		return 0, false
	}
	return *u.Company, true
}

// BelongsTo reports whether the user is a member of companyID.
func (u *User) BelongsTo(companyID int64) bool {
	id, ok := u.CompanyID()
	return ok && id == companyID
}

// JoinCompany sets the user's company reference.
func (u *User) JoinCompany(companyID int64) {
	id := companyID
	u.Company = &id
}

// Actor is the caller of a core operation. A nil User means anonymous.
type Actor struct {
	User *User
}

// Anonymous returns an unauthenticated actor.
func Anonymous() Actor {
	return Actor{}
}

// ActorFor wraps an authenticated user.
func ActorFor(user *User) Actor {
	return Actor{User: user}
}

// IsAnonymous reports whether no user is attached.
func (a Actor) IsAnonymous() bool {
	return a.User == nil
}

// IsSuperuser reports whether the actor bypasses tenant scoping.
func (a Actor) IsSuperuser() bool {
	return a.User != nil && a.User.IsSuperuser
}

// Role returns the actor's role; anonymous actors report an empty role.
func (a Actor) Role() Role {
	if a.User == nil {
		return ""
	}
	return a.User.Role
}

// ID returns the actor's user id, or zero when anonymous.
func (a Actor) ID() int64 {
	if a.User == nil {
		return 0
	}
	return a.User.ID
}

// Is reports whether the actor is the given user.
func (a Actor) Is(userID *int64) bool {
	return a.User != nil && userID != nil && *userID == a.User.ID
}

// MemberOf reports whether the actor belongs to companyID.
func (a Actor) MemberOf(companyID int64) bool {
	return a.User != nil && a.User.BelongsTo(companyID)
}
