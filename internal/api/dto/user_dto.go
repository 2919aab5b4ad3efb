package dto

import (
	"time"

	"github.com/spec-kit/helpdesk-service/internal/domain"
)

// RegisterRequest payload for new accounts.
type RegisterRequest struct {
	Username  string `json:"username"`
	Email     string `json:"email"`
	Password  string `json:"password"`
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
}

// LoginRequest accepts a username or an email as identifier.
type LoginRequest struct {
	Username string `json:"username"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

// Identifier returns the username when set, the email otherwise.
func (r LoginRequest) Identifier() string {
	if r.Username != "" {
		return r.Username
	}
	return r.Email
}

// AuthResponse standard response for auth endpoints.
type AuthResponse struct {
	Token     string    `json:"token"`
	ExpiresAt time.Time `json:"expires_at"`
}

// AssignRoleRequest payload for POST /profiles/:id/assign-role.
type AssignRoleRequest struct {
	Role string `json:"role"`
}

// ProfileResponse is the public view of an account.
type ProfileResponse struct {
	ID          int64       `json:"id"`
	Username    string      `json:"username"`
	Email       string      `json:"email"`
	FirstName   string      `json:"first_name"`
	LastName    string      `json:"last_name"`
	Role        domain.Role `json:"role"`
	Company     *int64      `json:"company"`
	IsSuperuser bool        `json:"is_superuser"`
	CreatedAt   time.Time   `json:"created_at"`
}

// Profile maps a user to its response.
func Profile(user *domain.User) ProfileResponse {
	return ProfileResponse{
		ID:          user.ID,
		Username:    user.Username,
		Email:       user.Email,
		FirstName:   user.FirstName,
		LastName:    user.LastName,
		Role:        user.Role,
		Company:     user.Company,
		IsSuperuser: user.IsSuperuser,
		CreatedAt:   user.CreatedAt,
	}
}

// Profiles maps a slice of users.
func Profiles(users []domain.User) []ProfileResponse {
	items := make([]ProfileResponse, 0, len(users))
	for i := range users {
		items = append(items, Profile(&users[i]))
	}
	return items
}
