package service

import (
	"context"
	"fmt"
	"sync"
	"testing"

	"golang.org/x/crypto/bcrypt"

	"github.com/spec-kit/helpdesk-service/internal/config"
	"github.com/spec-kit/helpdesk-service/internal/domain"
	"github.com/spec-kit/helpdesk-service/internal/events"
	"github.com/spec-kit/helpdesk-service/internal/repository/memory"
	apperrors "github.com/spec-kit/helpdesk-service/pkg/util/errorutil"
)

type eventRecorder struct {
	mu     sync.Mutex
	events []events.Event
}

func (r *eventRecorder) handle(_ context.Context, event events.Event) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, event)
	return nil
}

func (r *eventRecorder) count(eventType events.EventType) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	n := 0
	for _, event := range r.events {
		if event.Type == eventType {
			n++
		}
	}
	return n
}

type fixture struct {
	ctx         context.Context
	store       *memory.Store
	recorder    *eventRecorder
	companies   *CompanyService
	accounts    *AccountService
	tickets     *TicketService
	assignments *AssignmentService
	seq         int
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	store := memory.NewStore()
	dispatcher := events.NewInMemoryDispatcher()
	recorder := &eventRecorder{}
	for _, eventType := range events.AllEventTypes {
		dispatcher.Subscribe(eventType, recorder.handle)
	}

	authCfg := config.AuthConfig{JWTSecret: "test-secret", AccessTokenTTLMinutes: 5, BcryptCost: bcrypt.MinCost}
	return &fixture{
		ctx:         context.Background(),
		store:       store,
		recorder:    recorder,
		companies:   NewCompanyService(CompanyDependencies{Store: store, Dispatcher: dispatcher}),
		accounts:    NewAccountService(authCfg, AccountDependencies{Store: store, Dispatcher: dispatcher}),
		tickets:     NewTicketService(TicketDependencies{Store: store, Dispatcher: dispatcher}),
		assignments: NewAssignmentService(AssignmentDependencies{Store: store, Dispatcher: dispatcher}),
	}
}

// user stores an account directly, bypassing registration.
func (f *fixture) user(t *testing.T, role domain.Role, company *domain.Company) *domain.User {
	t.Helper()
	return f.createUser(t, role, company, false)
}

func (f *fixture) superuser(t *testing.T) *domain.User {
	t.Helper()
	return f.createUser(t, domain.RoleCustomer, nil, true)
}

func (f *fixture) createUser(t *testing.T, role domain.Role, company *domain.Company, superuser bool) *domain.User {
	t.Helper()
	f.seq++
	name := fmt.Sprintf("user%d", f.seq)
	u := &domain.User{
		Username:    name,
		Email:       name + "@example.com",
		FirstName:   "First",
		LastName:    "Last",
		Role:        role,
		IsSuperuser: superuser,
	}
	if company != nil {
		u.JoinCompany(company.ID)
	}
	if err := f.store.Users().Create(f.ctx, u); err != nil {
		t.Fatalf("create user: %v", err)
	}
	return u
}

// tenant registers a company through the service and returns it with its owner.
func (f *fixture) tenant(t *testing.T, name string) (*domain.Company, *domain.User) {
	t.Helper()
	founder := f.user(t, domain.RoleCustomer, nil)
	company, err := f.companies.Create(f.ctx, domain.ActorFor(founder), CompanyCreateInput{
		Name:    name,
		Contact: domain.CompanyContact{Email: "contact@" + Slugify(name) + ".io"},
	})
	if err != nil {
		t.Fatalf("create company %q: %v", name, err)
	}
	return company, f.reload(t, founder)
}

func (f *fixture) reload(t *testing.T, u *domain.User) *domain.User {
	t.Helper()
	fresh, err := f.store.Users().GetByID(f.ctx, u.ID)
	if err != nil {
		t.Fatalf("reload user: %v", err)
	}
	return fresh
}

func (f *fixture) ticket(t *testing.T, actor domain.Actor, slug, subject string) *domain.Ticket {
	t.Helper()
	ticket, err := f.tickets.Create(f.ctx, actor, slug, TicketCreateInput{
		FirstName:   "Ann",
		LastName:    "Onymous",
		Email:       "ann@example.com",
		Subject:     subject,
		Description: "details",
	})
	if err != nil {
		t.Fatalf("create ticket: %v", err)
	}
	return ticket
}

func assertCode(t *testing.T, err error, code string) {
	t.Helper()
	if err == nil {
		t.Fatalf("expected %s error, got nil", code)
	}
	if !apperrors.HasCode(err, code) {
		t.Fatalf("expected %s error, got %v", code, err)
	}
}

func strPtr(s string) *string { return &s }
