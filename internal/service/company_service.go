package service

import (
	"context"
	"strings"

	"go.uber.org/zap"

	"github.com/spec-kit/helpdesk-service/internal/domain"
	"github.com/spec-kit/helpdesk-service/internal/events"
	"github.com/spec-kit/helpdesk-service/internal/policy"
	"github.com/spec-kit/helpdesk-service/internal/repository"
	apperrors "github.com/spec-kit/helpdesk-service/pkg/util/errorutil"
)

const (
	maxCompanyNameLength    = 35
	maxCompanyPhoneLength   = 12
	maxCompanyAddressLength = 255
)

// CompanyService manages company registration and lookup.
type CompanyService struct {
	store      repository.Store
	dispatcher events.Dispatcher
	logger     *zap.Logger
}

// CompanyDependencies bundles collaborators for the company service.
type CompanyDependencies struct {
	Store      repository.Store
	Dispatcher events.Dispatcher
	Logger     *zap.Logger
}

// CompanyCreateInput describes a new company.
type CompanyCreateInput struct {
	Name    string
	Contact domain.CompanyContact
}

// NewCompanyService constructs the service.
func NewCompanyService(deps CompanyDependencies) *CompanyService {
	logger := deps.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	return &CompanyService{store: deps.Store, dispatcher: deps.Dispatcher, logger: logger}
}

// Create registers a company and promotes the actor to its owner in one transaction.
func (s *CompanyService) Create(ctx context.Context, actor domain.Actor, input CompanyCreateInput) (*domain.Company, error) {
	if actor.IsAnonymous() {
		return nil, apperrors.NewForbidden("authentication required")
	}
	if actor.Role() == domain.RoleOwner {
		return nil, apperrors.NewValidationError("user already owns a company", nil)
	}

	name := strings.TrimSpace(input.Name)
	email := strings.TrimSpace(input.Contact.Email)
	problems := fieldErrors{}
	problems.required("name", name)
	problems.maxLen("name", name, maxCompanyNameLength)
	problems.required("email", email)
	problems.email("email", email)
	if input.Contact.Phone != nil {
		problems.maxLen("phone", *input.Contact.Phone, maxCompanyPhoneLength)
	}
	if input.Contact.Address != nil {
		problems.maxLen("address", *input.Contact.Address, maxCompanyAddressLength)
	}
	if err := problems.err("invalid company"); err != nil {
		return nil, err
	}

	slug := Slugify(name)
	if slug == "" {
		return nil, apperrors.NewValidationError("company name does not produce a valid slug", map[string]any{"name": name})
	}

	company := &domain.Company{
		Name:        name,
		Slug:        slug,
		Email:       email,
		Phone:       trimmedOrNil(input.Contact.Phone),
		Address:     trimmedOrNil(input.Contact.Address),
		Description: trimmedOrNil(input.Contact.Description),
	}

	err := s.store.WithinTx(ctx, func(tx repository.Store) error {
		if _, err := tx.Companies().GetBySlug(ctx, slug); err == nil {
			return apperrors.NewConflict("company slug already exists", map[string]any{"slug": slug})
		} else if !apperrors.IsNoRows(err) {
			return err
		}

		owner, err := tx.Users().GetByID(ctx, actor.ID())
		if err != nil {
			return err
		}
		if owner.Role == domain.RoleOwner {
			return apperrors.NewValidationError("user already owns a company", nil)
		}

		if err := tx.Companies().Create(ctx, company); err != nil {
			return err
		}
		owner.Role = domain.RoleOwner
		owner.JoinCompany(company.ID)
		return tx.Users().Update(ctx, owner)
	})
	if err != nil {
		return nil, apperrors.MapError(err)
	}

	s.logger.Info("company created", zap.String("slug", company.Slug), zap.Int64("owner_id", actor.ID()))
	event := events.New(events.EventCompanyCreated, actor, events.CompanyCreatedPayload{Slug: company.Slug, OwnerID: actor.ID()})
	event.CompanyID = company.ID
	publish(ctx, s.dispatcher, s.logger, event)
	return company, nil
}

// GetBySlug returns the company identified by slug.
func (s *CompanyService) GetBySlug(ctx context.Context, slug string) (*domain.Company, error) {
	return companyBySlug(ctx, s.store, slug)
}

// List returns the companies visible to the actor.
func (s *CompanyService) List(ctx context.Context, actor domain.Actor) ([]domain.Company, error) {
	if actor.IsSuperuser() {
		companies, err := s.store.Companies().List(ctx)
		if err != nil {
			return nil, apperrors.MapError(err)
		}
		return companies, nil
	}

	companyID, ok := actor.User.CompanyID()
	if !ok {
		return []domain.Company{}, nil
	}
	company, err := s.store.Companies().GetByID(ctx, companyID)
	if err != nil {
		if apperrors.IsNoRows(err) {
			return []domain.Company{}, nil
		}
		return nil, apperrors.MapError(err)
	}
	if !policy.CanViewCompany(actor, company) {
		return []domain.Company{}, nil
	}
	return []domain.Company{*company}, nil
}

func companyBySlug(ctx context.Context, store repository.Store, slug string) (*domain.Company, error) {
	company, err := store.Companies().GetBySlug(ctx, slug)
	if err != nil {
		if apperrors.IsNoRows(err) {
			return nil, apperrors.NewNotFound("company", map[string]any{"slug": slug})
		}
		return nil, apperrors.MapError(err)
	}
	return company, nil
}

func trimmedOrNil(value *string) *string {
	if value == nil {
		return nil
	}
	trimmed := strings.TrimSpace(*value)
	if trimmed == "" {
		return nil
	}
	return &trimmed
}
