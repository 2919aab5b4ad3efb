package repository

import (
	"context"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"

	"github.com/spec-kit/helpdesk-service/internal/domain"
)

// TicketFilter captures company-scoped listing parameters.
type TicketFilter struct {
	CompanyID int64
	// VisibleTo restricts results to tickets created by or assigned to the user.
	VisibleTo *int64
	PublicID  *string
	Statuses  []domain.TicketStatus
	Limit     int
	Offset    int
}

// TicketRepository encapsulates ticket persistence.
type TicketRepository interface {
	Create(ctx context.Context, ticket *domain.Ticket) error
	Update(ctx context.Context, ticket *domain.Ticket) error
	GetByID(ctx context.Context, companyID, id int64) (*domain.Ticket, error)
	GetByPublicID(ctx context.Context, companyID int64, publicID string) (*domain.Ticket, error)
	// LockByID loads the ticket and holds a row lock until the surrounding transaction ends.
	LockByID(ctx context.Context, id int64) (*domain.Ticket, error)
	List(ctx context.Context, filter TicketFilter) ([]domain.Ticket, error)
}

type ticketRepository struct {
	db DBTX
}

const ticketColumns = `id, public_id, company_id, user_id, first_name, last_name, email, subject, description,
               status, priority, assigned_to, created_at, updated_at`

func (r *ticketRepository) Create(ctx context.Context, ticket *domain.Ticket) error {
	const query = `
        INSERT INTO tickets (public_id, company_id, user_id, first_name, last_name, email, subject, description, status, priority, assigned_to)
        VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11)
        RETURNING id, created_at, updated_at`
	return r.db.QueryRow(ctx, query,
		ticket.PublicID,
		ticket.CompanyID,
		ticket.UserID,
		ticket.FirstName,
		ticket.LastName,
		ticket.Email,
		ticket.Subject,
		ticket.Description,
		ticket.Status,
		int16(ticket.Priority),
		ticket.AssignedTo,
	).Scan(&ticket.ID, &ticket.CreatedAt, &ticket.UpdatedAt)
}

func (r *ticketRepository) Update(ctx context.Context, ticket *domain.Ticket) error {
	const query = `
        UPDATE tickets SET subject=$1, description=$2, status=$3, priority=$4, assigned_to=$5, updated_at=NOW()
        WHERE id=$6
        RETURNING updated_at`
	return r.db.QueryRow(ctx, query,
		ticket.Subject,
		ticket.Description,
		ticket.Status,
		int16(ticket.Priority),
		ticket.AssignedTo,
		ticket.ID,
	).Scan(&ticket.UpdatedAt)
}

func (r *ticketRepository) GetByID(ctx context.Context, companyID, id int64) (*domain.Ticket, error) {
	query := `SELECT ` + ticketColumns + ` FROM tickets WHERE company_id=$1 AND id=$2`
	return scanTicket(r.db.QueryRow(ctx, query, companyID, id))
}

func (r *ticketRepository) GetByPublicID(ctx context.Context, companyID int64, publicID string) (*domain.Ticket, error) {
	query := `SELECT ` + ticketColumns + ` FROM tickets WHERE company_id=$1 AND public_id=$2`
	return scanTicket(r.db.QueryRow(ctx, query, companyID, publicID))
}

func (r *ticketRepository) LockByID(ctx context.Context, id int64) (*domain.Ticket, error) {
	query := `SELECT ` + ticketColumns + ` FROM tickets WHERE id=$1 FOR UPDATE`
	return scanTicket(r.db.QueryRow(ctx, query, id))
}

func (r *ticketRepository) List(ctx context.Context, filter TicketFilter) ([]domain.Ticket, error) {
	clauses := []string{"company_id=$1"}
	args := []any{filter.CompanyID}

	if filter.VisibleTo != nil {
		args = append(args, *filter.VisibleTo)
		clauses = append(clauses, fmt.Sprintf("(user_id=$%d OR assigned_to=$%d)", len(args), len(args)))
	}
	if filter.PublicID != nil {
		args = append(args, *filter.PublicID)
		clauses = append(clauses, fmt.Sprintf("public_id=$%d", len(args)))
	}
	if len(filter.Statuses) > 0 {
		placeholders := make([]string, len(filter.Statuses))
		for i, status := range filter.Statuses {
			args = append(args, status)
			placeholders[i] = fmt.Sprintf("$%d", len(args))
		}
		clauses = append(clauses, fmt.Sprintf("status IN (%s)", strings.Join(placeholders, ",")))
	}

	limit := filter.Limit
	if limit <= 0 {
		limit = 50
	}
	offset := filter.Offset
	if offset < 0 {
		offset = 0
	}

	query := fmt.Sprintf(`SELECT %s FROM tickets WHERE %s ORDER BY priority DESC, id ASC LIMIT %d OFFSET %d`,
		ticketColumns, strings.Join(clauses, " AND "), limit, offset)

	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []domain.Ticket
	for rows.Next() {
		ticket, err := scanTicket(rows)
		if err != nil {
			return nil, err
		}
		result = append(result, *ticket)
	}
	return result, rows.Err()
}

func scanTicket(row pgx.Row) (*domain.Ticket, error) {
	var ticket domain.Ticket
	if err := row.Scan(
		&ticket.ID,
		&ticket.PublicID,
		&ticket.CompanyID,
		&ticket.UserID,
		&ticket.FirstName,
		&ticket.LastName,
		&ticket.Email,
		&ticket.Subject,
		&ticket.Description,
		&ticket.Status,
		&ticket.Priority,
		&ticket.AssignedTo,
		&ticket.CreatedAt,
		&ticket.UpdatedAt,
	); err != nil {
		return nil, err
	}
	return &ticket, nil
}
