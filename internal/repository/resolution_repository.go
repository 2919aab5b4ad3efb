package repository

import (
	"context"

	"github.com/jackc/pgx/v5"

	"github.com/spec-kit/helpdesk-service/internal/domain"
)

// ResolutionRepository stores closing notes. There is no update or delete path.
type ResolutionRepository interface {
	Create(ctx context.Context, resolution *domain.TicketResolution) error
	GetByTicket(ctx context.Context, ticketID int64) (*domain.TicketResolution, error)
	ListByCompany(ctx context.Context, companyID int64) ([]domain.TicketResolution, error)
}

type resolutionRepository struct {
	db DBTX
}

func (r *resolutionRepository) Create(ctx context.Context, resolution *domain.TicketResolution) error {
	const query = `
        INSERT INTO ticket_resolutions (ticket_id, message)
        VALUES ($1,$2)
        RETURNING id, created_at`
	return r.db.QueryRow(ctx, query, resolution.TicketID, resolution.Message).
		Scan(&resolution.ID, &resolution.CreatedAt)
}

func (r *resolutionRepository) GetByTicket(ctx context.Context, ticketID int64) (*domain.TicketResolution, error) {
	const query = `
        SELECT id, ticket_id, message, created_at
        FROM ticket_resolutions WHERE ticket_id=$1`
	return scanResolution(r.db.QueryRow(ctx, query, ticketID))
}

func (r *resolutionRepository) ListByCompany(ctx context.Context, companyID int64) ([]domain.TicketResolution, error) {
	const query = `
        SELECT r.id, r.ticket_id, r.message, r.created_at
        FROM ticket_resolutions r
        JOIN tickets t ON t.id = r.ticket_id
        WHERE t.company_id=$1
        ORDER BY r.created_at DESC, r.id DESC`
	rows, err := r.db.Query(ctx, query, companyID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []domain.TicketResolution
	for rows.Next() {
		resolution, err := scanResolution(rows)
		if err != nil {
			return nil, err
		}
		result = append(result, *resolution)
	}
	return result, rows.Err()
}

func scanResolution(row pgx.Row) (*domain.TicketResolution, error) {
	var resolution domain.TicketResolution
	if err := row.Scan(
		&resolution.ID,
		&resolution.TicketID,
		&resolution.Message,
		&resolution.CreatedAt,
	); err != nil {
		return nil, err
	}
	return &resolution, nil
}
