package handlers

import (
	"net/http"
	"strconv"

	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/helpdesk-service/internal/api/dto"
	"github.com/spec-kit/helpdesk-service/internal/auth"
	"github.com/spec-kit/helpdesk-service/internal/service"
	apperrors "github.com/spec-kit/helpdesk-service/pkg/util/errorutil"
)

// UsersHandler exposes account and profile endpoints.
type UsersHandler struct {
	accounts *service.AccountService
}

// NewUsersHandler constructs handler.
func NewUsersHandler(accountService *service.AccountService) *UsersHandler {
	return &UsersHandler{accounts: accountService}
}

// Register handles POST /auth/register.
func (h *UsersHandler) Register(c *fiber.Ctx) error {
	var req dto.RegisterRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}

	session, err := h.accounts.Register(c.UserContext(), service.RegisterInput{
		Username:  req.Username,
		Email:     req.Email,
		Password:  req.Password,
		FirstName: req.FirstName,
		LastName:  req.LastName,
	})
	if err != nil {
		return err
	}
	return c.Status(http.StatusCreated).JSON(fiber.Map{"data": sessionResponse(session)})
}

// Login handles POST /auth/login.
func (h *UsersHandler) Login(c *fiber.Ctx) error {
	var req dto.LoginRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	if req.Identifier() == "" || req.Password == "" {
		return apperrors.NewValidationError("username or email and password required", nil)
	}

	session, err := h.accounts.Login(c.UserContext(), req.Identifier(), req.Password)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": sessionResponse(session)})
}

// ListProfiles handles GET /profiles.
func (h *UsersHandler) ListProfiles(c *fiber.Ctx) error {
	limit, offset := parsePage(c)
	users, err := h.accounts.ListProfiles(c.UserContext(), auth.ActorFromContext(c), limit, offset)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": dto.Profiles(users)})
}

// Me handles GET /profiles/me.
func (h *UsersHandler) Me(c *fiber.Ctx) error {
	user, err := h.accounts.Me(c.UserContext(), auth.ActorFromContext(c))
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": dto.Profile(user)})
}

// AssignRole handles POST /profiles/:id/assign-role.
func (h *UsersHandler) AssignRole(c *fiber.Ctx) error {
	targetID, err := strconv.ParseInt(c.Params("id"), 10, 64)
	if err != nil || targetID <= 0 {
		return apperrors.NewNotFound("user", map[string]any{"id": c.Params("id")})
	}
	var req dto.AssignRoleRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}

	user, err := h.accounts.AssignRole(c.UserContext(), auth.ActorFromContext(c), targetID, req.Role)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": dto.Profile(user)})
}

func sessionResponse(session *service.Session) fiber.Map {
	return fiber.Map{
		"user": dto.Profile(session.User),
		"auth": dto.AuthResponse{Token: session.Token, ExpiresAt: session.ExpiresAt},
	}
}
