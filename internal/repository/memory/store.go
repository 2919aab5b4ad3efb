// Package memory implements repository.Store in process memory. It honours the
// same uniqueness constraints as the Postgres schema and reports violations and
// missing rows with the pgx error values, so callers map errors identically.
// Transactions are serialized against every other operation, so a failed
// transaction can restore its snapshot without losing concurrent writes.
package memory

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/spec-kit/helpdesk-service/internal/domain"
	"github.com/spec-kit/helpdesk-service/internal/repository"
)

type state struct {
	users       map[int64]domain.User
	companies   map[int64]domain.Company
	tickets     map[int64]domain.Ticket
	resolutions map[int64]domain.TicketResolution
	nextID      int64
}

func (s *state) clone() *state {
	c := &state{
		users:       make(map[int64]domain.User, len(s.users)),
		companies:   make(map[int64]domain.Company, len(s.companies)),
		tickets:     make(map[int64]domain.Ticket, len(s.tickets)),
		resolutions: make(map[int64]domain.TicketResolution, len(s.resolutions)),
		nextID:      s.nextID,
	}
	for k, v := range s.users {
		c.users[k] = v
	}
	for k, v := range s.companies {
		c.companies[k] = v
	}
	for k, v := range s.tickets {
		c.tickets[k] = v
	}
	for k, v := range s.resolutions {
		c.resolutions[k] = v
	}
	return c
}

// Store is an in-memory repository.Store.
type Store struct {
	mu   *sync.Mutex
	txMu *sync.Mutex
	data **state
	inTx bool
	now  func() time.Time
}

// NewStore returns an empty store.
func NewStore() *Store {
	data := &state{
		users:       map[int64]domain.User{},
		companies:   map[int64]domain.Company{},
		tickets:     map[int64]domain.Ticket{},
		resolutions: map[int64]domain.TicketResolution{},
	}
	return &Store{mu: &sync.Mutex{}, txMu: &sync.Mutex{}, data: &data, now: time.Now}
}

func (s *Store) Users() repository.UserRepository             { return userRepo{s} }
func (s *Store) Companies() repository.CompanyRepository      { return companyRepo{s} }
func (s *Store) Tickets() repository.TicketRepository         { return ticketRepo{s} }
func (s *Store) Resolutions() repository.ResolutionRepository { return resolutionRepo{s} }

// WithinTx runs fn with exclusive access to the store and rolls back on error.
func (s *Store) WithinTx(ctx context.Context, fn func(tx repository.Store) error) error {
	if s.inTx {
		return fn(s)
	}
	s.txMu.Lock()
	defer s.txMu.Unlock()

	s.mu.Lock()
	snapshot := (*s.data).clone()
	s.mu.Unlock()

	tx := &Store{mu: s.mu, txMu: s.txMu, data: s.data, inTx: true, now: s.now}
	if err := fn(tx); err != nil {
		s.mu.Lock()
		*s.data = snapshot
		s.mu.Unlock()
		return err
	}
	return ctx.Err()
}

// lock waits for any running transaction unless s is that transaction.
func (s *Store) lock() func() {
	if !s.inTx {
		s.txMu.Lock()
	}
	s.mu.Lock()
	return func() {
		s.mu.Unlock()
		if !s.inTx {
			s.txMu.Unlock()
		}
	}
}

func (s *Store) nextID() int64 {
	(*s.data).nextID++
	return (*s.data).nextID
}

func uniqueViolation(constraint string) error {
	return &pgconn.PgError{Code: "23505", ConstraintName: constraint, Message: "duplicate key value violates unique constraint"}
}

type userRepo struct{ s *Store }

func (r userRepo) Create(_ context.Context, user *domain.User) error {
	defer r.s.lock()()
	if err := r.checkUnique(user); err != nil {
		return err
	}
	user.ID = r.s.nextID()
	user.CreatedAt = r.s.now()
	user.UpdatedAt = user.CreatedAt
	(*r.s.data).users[user.ID] = cloneUser(*user)
	return nil
}

func (r userRepo) Update(_ context.Context, user *domain.User) error {
	defer r.s.lock()()
	existing, ok := (*r.s.data).users[user.ID]
	if !ok {
		return pgx.ErrNoRows
	}
	if err := r.checkUnique(user); err != nil {
		return err
	}
	user.Username = existing.Username
	user.IsSuperuser = existing.IsSuperuser
	user.CreatedAt = existing.CreatedAt
	user.UpdatedAt = r.s.now()
	(*r.s.data).users[user.ID] = cloneUser(*user)
	return nil
}

// checkUnique mirrors the username, email and single-owner indexes.
func (r userRepo) checkUnique(user *domain.User) error {
	for id, other := range (*r.s.data).users {
		if id == user.ID {
			continue
		}
		if other.Username == user.Username && user.ID == 0 {
			return uniqueViolation("users_username_key")
		}
		if strings.EqualFold(other.Email, user.Email) {
			return uniqueViolation("users_email_key")
		}
		if user.Role == domain.RoleOwner && other.Role == domain.RoleOwner &&
			user.Company != nil && other.Company != nil && *user.Company == *other.Company {
			return uniqueViolation("users_single_owner_per_company")
		}
	}
	return nil
}

func (r userRepo) GetByID(_ context.Context, id int64) (*domain.User, error) {
	defer r.s.lock()()
	user, ok := (*r.s.data).users[id]
	if !ok {
		return nil, pgx.ErrNoRows
	}
	out := cloneUser(user)
	return &out, nil
}

func (r userRepo) GetByUsername(_ context.Context, username string) (*domain.User, error) {
	return r.find(func(u domain.User) bool { return u.Username == username })
}

func (r userRepo) GetByEmail(_ context.Context, email string) (*domain.User, error) {
	return r.find(func(u domain.User) bool { return strings.EqualFold(u.Email, email) })
}

func (r userRepo) find(match func(domain.User) bool) (*domain.User, error) {
	defer r.s.lock()()
	for _, user := range (*r.s.data).users {
		if match(user) {
			out := cloneUser(user)
			return &out, nil
		}
	}
	return nil, pgx.ErrNoRows
}

func (r userRepo) List(_ context.Context, filter repository.UserFilter) ([]domain.User, error) {
	defer r.s.lock()()
	var result []domain.User
	for _, user := range (*r.s.data).users {
		if filter.CompanyID != nil && !user.BelongsTo(*filter.CompanyID) {
			continue
		}
		if filter.UserID != nil && user.ID != *filter.UserID {
			continue
		}
		result = append(result, cloneUser(user))
	}
	sort.Slice(result, func(i, j int) bool { return result[i].ID < result[j].ID })
	return paginate(result, filter.Limit, filter.Offset), nil
}

type companyRepo struct{ s *Store }

func (r companyRepo) Create(_ context.Context, company *domain.Company) error {
	defer r.s.lock()()
	for _, other := range (*r.s.data).companies {
		if other.Slug == company.Slug {
			return uniqueViolation("companies_slug_key")
		}
	}
	company.ID = r.s.nextID()
	company.CreatedAt = r.s.now()
	company.UpdatedAt = company.CreatedAt
	(*r.s.data).companies[company.ID] = *company
	return nil
}

func (r companyRepo) GetByID(_ context.Context, id int64) (*domain.Company, error) {
	defer r.s.lock()()
	company, ok := (*r.s.data).companies[id]
	if !ok {
		return nil, pgx.ErrNoRows
	}
	return &company, nil
}

func (r companyRepo) GetBySlug(_ context.Context, slug string) (*domain.Company, error) {
	defer r.s.lock()()
	for _, company := range (*r.s.data).companies {
		if company.Slug == slug {
			out := company
			return &out, nil
		}
	}
	return nil, pgx.ErrNoRows
}

func (r companyRepo) List(_ context.Context) ([]domain.Company, error) {
	defer r.s.lock()()
	result := make([]domain.Company, 0, len((*r.s.data).companies))
	for _, company := range (*r.s.data).companies {
		result = append(result, company)
	}
	sort.Slice(result, func(i, j int) bool { return result[i].ID < result[j].ID })
	return result, nil
}

type ticketRepo struct{ s *Store }

func (r ticketRepo) Create(_ context.Context, ticket *domain.Ticket) error {
	defer r.s.lock()()
	if _, ok := (*r.s.data).companies[ticket.CompanyID]; !ok {
		return &pgconn.PgError{Code: "23503", ConstraintName: "tickets_company_id_fkey", Message: "company does not exist"}
	}
	for _, other := range (*r.s.data).tickets {
		if other.PublicID == ticket.PublicID {
			return uniqueViolation("tickets_public_id_key")
		}
	}
	ticket.ID = r.s.nextID()
	ticket.CreatedAt = r.s.now()
	ticket.UpdatedAt = ticket.CreatedAt
	(*r.s.data).tickets[ticket.ID] = cloneTicket(*ticket)
	return nil
}

func (r ticketRepo) Update(_ context.Context, ticket *domain.Ticket) error {
	defer r.s.lock()()
	existing, ok := (*r.s.data).tickets[ticket.ID]
	if !ok {
		return pgx.ErrNoRows
	}
	existing.Subject = ticket.Subject
	existing.Description = ticket.Description
	existing.Status = ticket.Status
	existing.Priority = ticket.Priority
	existing.AssignedTo = ticket.AssignedTo
	existing.UpdatedAt = r.s.now()
	ticket.UpdatedAt = existing.UpdatedAt
	(*r.s.data).tickets[ticket.ID] = cloneTicket(existing)
	return nil
}

func (r ticketRepo) GetByID(_ context.Context, companyID, id int64) (*domain.Ticket, error) {
	defer r.s.lock()()
	ticket, ok := (*r.s.data).tickets[id]
	if !ok || ticket.CompanyID != companyID {
		return nil, pgx.ErrNoRows
	}
	out := cloneTicket(ticket)
	return &out, nil
}

func (r ticketRepo) GetByPublicID(_ context.Context, companyID int64, publicID string) (*domain.Ticket, error) {
	defer r.s.lock()()
	for _, ticket := range (*r.s.data).tickets {
		if ticket.CompanyID == companyID && ticket.PublicID == publicID {
			out := cloneTicket(ticket)
			return &out, nil
		}
	}
	return nil, pgx.ErrNoRows
}

// LockByID relies on WithinTx serialization for exclusivity.
func (r ticketRepo) LockByID(_ context.Context, id int64) (*domain.Ticket, error) {
	defer r.s.lock()()
	ticket, ok := (*r.s.data).tickets[id]
	if !ok {
		return nil, pgx.ErrNoRows
	}
	out := cloneTicket(ticket)
	return &out, nil
}

func (r ticketRepo) List(_ context.Context, filter repository.TicketFilter) ([]domain.Ticket, error) {
	defer r.s.lock()()
	var result []domain.Ticket
	for _, ticket := range (*r.s.data).tickets {
		if ticket.CompanyID != filter.CompanyID {
			continue
		}
		if filter.VisibleTo != nil {
			uid := *filter.VisibleTo
			own := ticket.UserID != nil && *ticket.UserID == uid
			if !own && !ticket.AssignedToUser(uid) {
				continue
			}
		}
		if filter.PublicID != nil && ticket.PublicID != *filter.PublicID {
			continue
		}
		if len(filter.Statuses) > 0 && !containsStatus(filter.Statuses, ticket.Status) {
			continue
		}
		result = append(result, cloneTicket(ticket))
	}
	sort.Slice(result, func(i, j int) bool {
		if result[i].Priority != result[j].Priority {
			return result[i].Priority > result[j].Priority
		}
		return result[i].ID < result[j].ID
	})
	return paginate(result, filter.Limit, filter.Offset), nil
}

type resolutionRepo struct{ s *Store }

func (r resolutionRepo) Create(_ context.Context, resolution *domain.TicketResolution) error {
	defer r.s.lock()()
	if _, ok := (*r.s.data).tickets[resolution.TicketID]; !ok {
		return &pgconn.PgError{Code: "23503", ConstraintName: "ticket_resolutions_ticket_id_fkey", Message: "ticket does not exist"}
	}
	for _, other := range (*r.s.data).resolutions {
		if other.TicketID == resolution.TicketID {
			return uniqueViolation("ticket_resolutions_ticket_id_key")
		}
	}
	resolution.ID = r.s.nextID()
	resolution.CreatedAt = r.s.now()
	(*r.s.data).resolutions[resolution.ID] = *resolution
	return nil
}

func (r resolutionRepo) GetByTicket(_ context.Context, ticketID int64) (*domain.TicketResolution, error) {
	defer r.s.lock()()
	for _, resolution := range (*r.s.data).resolutions {
		if resolution.TicketID == ticketID {
			out := resolution
			return &out, nil
		}
	}
	return nil, pgx.ErrNoRows
}

func (r resolutionRepo) ListByCompany(_ context.Context, companyID int64) ([]domain.TicketResolution, error) {
	defer r.s.lock()()
	var result []domain.TicketResolution
	for _, resolution := range (*r.s.data).resolutions {
		if ticket, ok := (*r.s.data).tickets[resolution.TicketID]; ok && ticket.CompanyID == companyID {
			result = append(result, resolution)
		}
	}
	sort.Slice(result, func(i, j int) bool { return result[i].ID > result[j].ID })
	return result, nil
}

func containsStatus(statuses []domain.TicketStatus, status domain.TicketStatus) bool {
	for _, s := range statuses {
		if s == status {
			return true
		}
	}
	return false
}

func paginate[T any](items []T, limit, offset int) []T {
	if limit <= 0 {
		limit = 50
	}
	if offset < 0 {
		offset = 0
	}
	if offset >= len(items) {
		return nil
	}
	end := offset + limit
	if end > len(items) {
		end = len(items)
	}
	return items[offset:end]
}

func cloneUser(u domain.User) domain.User {
	if u.Company != nil {
		id := *u.Company
		u.Company = &id
	}
	return u
}

func cloneTicket(t domain.Ticket) domain.Ticket {
	if t.UserID != nil {
		id := *t.UserID
		t.UserID = &id
	}
	if t.AssignedTo != nil {
		id := *t.AssignedTo
		t.AssignedTo = &id
	}
	return t
}
