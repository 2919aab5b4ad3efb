package service

import (
	"context"
	"regexp"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/spec-kit/helpdesk-service/internal/auth"
	"github.com/spec-kit/helpdesk-service/internal/config"
	"github.com/spec-kit/helpdesk-service/internal/domain"
	"github.com/spec-kit/helpdesk-service/internal/events"
	"github.com/spec-kit/helpdesk-service/internal/policy"
	"github.com/spec-kit/helpdesk-service/internal/repository"
	apperrors "github.com/spec-kit/helpdesk-service/pkg/util/errorutil"
)

const (
	maxUsernameLength    = 150
	maxProfileNameLength = 150
	minPasswordLength    = 8
)

var usernamePattern = regexp.MustCompile(`^[\w.@+-]+$`)

// AccountService coordinates registration, login, profiles and role assignment.
type AccountService struct {
	store      repository.Store
	tokenMgr   *auth.TokenManager
	bcryptCost int
	dispatcher events.Dispatcher
	logger     *zap.Logger
}

// AccountDependencies encapsulates collaborators for the account service.
type AccountDependencies struct {
	Store      repository.Store
	Dispatcher events.Dispatcher
	Logger     *zap.Logger
}

// RegisterInput describes a sign-up request.
type RegisterInput struct {
	Username  string
	Email     string
	Password  string
	FirstName string
	LastName  string
}

// Session is an issued access token.
type Session struct {
	User      *domain.User
	Token     string
	ExpiresAt time.Time
}

// NewAccountService builds the service.
func NewAccountService(cfg config.AuthConfig, deps AccountDependencies) *AccountService {
	logger := deps.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	return &AccountService{
		store:      deps.Store,
		tokenMgr:   auth.NewTokenManager(cfg.JWTSecret, cfg.AccessTokenTTLMinutes),
		bcryptCost: cfg.BcryptCost,
		dispatcher: deps.Dispatcher,
		logger:     logger,
	}
}

// Register creates a customer account and signs it in.
func (s *AccountService) Register(ctx context.Context, input RegisterInput) (*Session, error) {
	username := strings.TrimSpace(input.Username)
	email := strings.TrimSpace(input.Email)

	problems := fieldErrors{}
	problems.required("username", username)
	problems.maxLen("username", username, maxUsernameLength)
	if _, set := problems["username"]; !set && !usernamePattern.MatchString(username) {
		problems["username"] = "may contain only letters, digits and @/./+/-/_"
	}
	problems.required("email", email)
	problems.email("email", email)
	problems.maxLen("first_name", input.FirstName, maxProfileNameLength)
	problems.maxLen("last_name", input.LastName, maxProfileNameLength)
	switch {
	case len(input.Password) < minPasswordLength:
		problems["password"] = "must be at least 8 characters"
	case len(input.Password) > auth.MaxPasswordBytes:
		problems["password"] = "must be at most 72 bytes"
	}
	if err := problems.err("invalid registration"); err != nil {
		return nil, err
	}

	users := s.store.Users()
	if _, err := users.GetByEmail(ctx, email); err == nil {
		return nil, apperrors.NewConflict("email is already in use", map[string]any{"email": email})
	} else if !apperrors.IsNoRows(err) {
		return nil, apperrors.MapError(err)
	}
	if _, err := users.GetByUsername(ctx, username); err == nil {
		return nil, apperrors.NewConflict("username is already taken", map[string]any{"username": username})
	} else if !apperrors.IsNoRows(err) {
		return nil, apperrors.MapError(err)
	}

	hash, err := auth.HashPassword(input.Password, s.bcryptCost)
	if err != nil {
		return nil, apperrors.NewInternalError(err)
	}

	user := &domain.User{
		Username:     username,
		Email:        email,
		FirstName:    strings.TrimSpace(input.FirstName),
		LastName:     strings.TrimSpace(input.LastName),
		PasswordHash: hash,
		Role:         domain.RoleCustomer,
	}
	if err := users.Create(ctx, user); err != nil {
		return nil, apperrors.MapError(err)
	}
	s.logger.Info("user registered", zap.Int64("user_id", user.ID))
	return s.issue(user)
}

// Login authenticates by username or email.
func (s *AccountService) Login(ctx context.Context, identifier, password string) (*Session, error) {
	identifier = strings.TrimSpace(identifier)
	if identifier == "" || password == "" {
		return nil, apperrors.NewValidationError("username and password are required", nil)
	}

	var (
		user *domain.User
		err  error
	)
	if strings.Contains(identifier, "@") {
		user, err = s.store.Users().GetByEmail(ctx, identifier)
	} else {
		user, err = s.store.Users().GetByUsername(ctx, identifier)
	}
	if err != nil {
		if apperrors.IsNoRows(err) {
			return nil, apperrors.NewUnauthorized("invalid credentials")
		}
		return nil, apperrors.MapError(err)
	}
	if !auth.PasswordMatches(user.PasswordHash, password) {
		return nil, apperrors.NewUnauthorized("invalid credentials")
	}
	return s.issue(user)
}

// ListProfiles returns the users visible to the actor: everyone for a
// superuser, the company roster for owners and admins, otherwise only self.
func (s *AccountService) ListProfiles(ctx context.Context, actor domain.Actor, limit, offset int) ([]domain.User, error) {
	if actor.IsAnonymous() {
		return nil, apperrors.NewUnauthorized("authentication required")
	}

	filter := repository.UserFilter{Limit: limit, Offset: offset}
	if !actor.IsSuperuser() {
		self := actor.ID()
		switch actor.Role() {
		case domain.RoleOwner, domain.RoleAdmin:
			if companyID, ok := actor.User.CompanyID(); ok {
				filter.CompanyID = &companyID
			} else {
				filter.UserID = &self
			}
		case domain.RoleAgent, domain.RoleCustomer:
			filter.UserID = &self
		default:
			filter.UserID = &self
		}
	}

	users, err := s.store.Users().List(ctx, filter)
	if err != nil {
		return nil, apperrors.MapError(err)
	}
	return users, nil
}

// Me returns the actor's own profile.
func (s *AccountService) Me(ctx context.Context, actor domain.Actor) (*domain.User, error) {
	if actor.IsAnonymous() {
		return nil, apperrors.NewUnauthorized("authentication required")
	}
	user, err := s.store.Users().GetByID(ctx, actor.ID())
	if err != nil {
		return nil, apperrors.MapError(err)
	}
	return user, nil
}

// AssignRole gives target a new company role and moves them into the actor's company.
func (s *AccountService) AssignRole(ctx context.Context, actor domain.Actor, targetID int64, roleName string) (*domain.User, error) {
	role, err := domain.ParseRole(roleName)
	if err != nil || !role.Assignable() {
		return nil, apperrors.NewValidationError("role must be one of admin, agent, customer", map[string]any{"role": roleName})
	}
	if actor.IsAnonymous() {
		return nil, apperrors.NewForbidden("authentication required")
	}

	target, err := s.store.Users().GetByID(ctx, targetID)
	if err != nil {
		if apperrors.IsNoRows(err) {
			return nil, apperrors.NewNotFound("user", map[string]any{"id": targetID})
		}
		return nil, apperrors.MapError(err)
	}
	if err := policy.CanAssignRole(actor, target, role); err != nil {
		return nil, err
	}
	if target.Role == domain.RoleOwner {
		return nil, apperrors.NewForbidden("the company owner's role cannot be changed")
	}
	companyID, ok := actor.User.CompanyID()
	if !ok {
		return nil, apperrors.NewForbidden("you must belong to a company to assign roles")
	}

	oldRole := target.Role
	err = s.store.WithinTx(ctx, func(tx repository.Store) error {
		current, err := tx.Users().GetByID(ctx, targetID)
		if err != nil {
			return err
		}
		if current.Role == domain.RoleOwner {
			return apperrors.NewForbidden("the company owner's role cannot be changed")
		}
		oldRole = current.Role
		current.Role = role
		current.JoinCompany(companyID)
		if err := tx.Users().Update(ctx, current); err != nil {
			return err
		}
		target = current
		return nil
	})
	if err != nil {
		return nil, apperrors.MapError(err)
	}

	event := events.New(events.EventUserRoleChanged, actor, events.UserRoleChangedPayload{
		UserID:    target.ID,
		OldRole:   oldRole,
		NewRole:   role,
		CompanyID: companyID,
	})
	event.CompanyID = companyID
	publish(ctx, s.dispatcher, s.logger, event)
	return target, nil
}

// TokenManager exposes the underlying token manager for middleware usage.
func (s *AccountService) TokenManager() *auth.TokenManager {
	return s.tokenMgr
}

func (s *AccountService) issue(user *domain.User) (*Session, error) {
	token, exp, err := s.tokenMgr.GenerateToken(user)
	if err != nil {
		return nil, apperrors.NewInternalError(err)
	}
	return &Session{User: user, Token: token, ExpiresAt: exp}, nil
}
