package dto

import (
	"time"

	"github.com/spec-kit/helpdesk-service/internal/domain"
)

// CreateCompanyRequest payload.
type CreateCompanyRequest struct {
	Name        string  `json:"name"`
	Email       string  `json:"email"`
	Phone       *string `json:"phone"`
	Address     *string `json:"address"`
	Description *string `json:"description"`
}

// CompanyResponse renders a company.
type CompanyResponse struct {
	ID          int64     `json:"id"`
	Name        string    `json:"name"`
	Slug        string    `json:"slug"`
	Email       string    `json:"email"`
	Phone       *string   `json:"phone"`
	Address     *string   `json:"address"`
	Description *string   `json:"description"`
	CreatedAt   time.Time `json:"created_at"`
}

// Company maps a domain company to its response.
func Company(company *domain.Company) CompanyResponse {
	return CompanyResponse{
		ID:          company.ID,
		Name:        company.Name,
		Slug:        company.Slug,
		Email:       company.Email,
		Phone:       company.Phone,
		Address:     company.Address,
		Description: company.Description,
		CreatedAt:   company.CreatedAt,
	}
}
