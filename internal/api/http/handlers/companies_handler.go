package handlers

import (
	"net/http"

	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/helpdesk-service/internal/api/dto"
	"github.com/spec-kit/helpdesk-service/internal/auth"
	"github.com/spec-kit/helpdesk-service/internal/domain"
	"github.com/spec-kit/helpdesk-service/internal/service"
	apperrors "github.com/spec-kit/helpdesk-service/pkg/util/errorutil"
)

// CompaniesHandler manages company endpoints.
type CompaniesHandler struct {
	companies *service.CompanyService
}

// NewCompaniesHandler constructs handler.
func NewCompaniesHandler(companyService *service.CompanyService) *CompaniesHandler {
	return &CompaniesHandler{companies: companyService}
}

// List GET /companies.
func (h *CompaniesHandler) List(c *fiber.Ctx) error {
	companies, err := h.companies.List(c.UserContext(), auth.ActorFromContext(c))
	if err != nil {
		return err
	}
	items := make([]dto.CompanyResponse, 0, len(companies))
	for i := range companies {
		items = append(items, dto.Company(&companies[i]))
	}
	return c.JSON(fiber.Map{"data": items})
}

// Create POST /companies.
func (h *CompaniesHandler) Create(c *fiber.Ctx) error {
	var req dto.CreateCompanyRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}

	company, err := h.companies.Create(c.UserContext(), auth.ActorFromContext(c), service.CompanyCreateInput{
		Name: req.Name,
		Contact: domain.CompanyContact{
			Email:       req.Email,
			Phone:       req.Phone,
			Address:     req.Address,
			Description: req.Description,
		},
	})
	if err != nil {
		return err
	}
	return c.Status(http.StatusCreated).JSON(fiber.Map{"data": dto.Company(company)})
}

// Get GET /companies/:slug.
func (h *CompaniesHandler) Get(c *fiber.Ctx) error {
	company, err := h.companies.GetBySlug(c.UserContext(), c.Params("slug"))
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": dto.Company(company)})
}
