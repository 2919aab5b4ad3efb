package domain

import "time"

// Company is the tenant boundary for tickets and staff.
type Company struct {
	ID          int64
	Name        string
	Slug        string
	Email       string
	Phone       *string
	Address     *string
	Description *string
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// CompanyContact carries the optional contact metadata supplied at creation.
type CompanyContact struct {
	Email       string
	Phone       *string
	Address     *string
	Description *string
}
