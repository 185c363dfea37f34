package test

import (
	"log/slog"
	"net/http"
	"net/http/httptest"
	"sort"
	"sync"
	"testing"
	"time"

	"github.com/yourorg/helpdesk/internal/domain"
	"github.com/yourorg/helpdesk/internal/handler"
	"github.com/yourorg/helpdesk/internal/infrastructure/logger"
	"github.com/yourorg/helpdesk/internal/security"
	"github.com/yourorg/helpdesk/internal/security/auth"
	"github.com/yourorg/helpdesk/internal/security/crypto"
	"github.com/yourorg/helpdesk/internal/security/middleware"
	"github.com/yourorg/helpdesk/internal/service"
	"github.com/yourorg/helpdesk/pkg/cache"
)

// TestServerHelper runs the full HTTP stack over in-memory repositories,
// so end-to-end flows can be exercised without Postgres or Redis.
type TestServerHelper struct {
	Server *httptest.Server
	Logger *slog.Logger
}

func NewTestServer(t *testing.T) *TestServerHelper {
	t.Helper()

	log := logger.NewLogger("error")

	cipher, err := crypto.New("integration-test-secret")
	if err != nil {
		t.Fatalf("cipher init failed: %v", err)
	}
	tokenManager := auth.NewTokenManager("integration-test-secret", "helpdesk", "")
	authz := security.NewAuthorizationService(log)

	adminService := service.NewAdminService(newMemAdminRepo(), cipher, tokenManager, cache.New(), log)
	clientService := service.NewClientService(newMemClientRepo(), cipher, tokenManager, log)
	ticketService := service.NewTicketService(newMemTicketRepo(), authz, nil, log)

	adminHandler := handler.NewAdminHandler(adminService, nil, log)
	clientHandler := handler.NewClientHandler(clientService, nil, log)
	ticketHandler := handler.NewTicketHandler(ticketService, log)

	mux := http.NewServeMux()
	mux.HandleFunc("POST /api/admins/register", adminHandler.Register)
	mux.HandleFunc("POST /api/admins/login", adminHandler.Login)
	mux.HandleFunc("GET /api/admins/{id}", adminHandler.GetByID)
	mux.HandleFunc("POST /api/clients/register", clientHandler.Register)
	mux.HandleFunc("POST /api/clients/login", clientHandler.Login)
	mux.HandleFunc("GET /api/tickets", ticketHandler.List)
	mux.HandleFunc("POST /api/tickets", ticketHandler.Create)
	mux.HandleFunc("GET /api/tickets/{id}", ticketHandler.Get)
	mux.HandleFunc("PUT /api/tickets/{id}/status", ticketHandler.UpdateStatus)
	mux.HandleFunc("GET /healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("ok"))
	})

	root := middleware.JWTMiddleware(tokenManager, log)(mux)
	server := httptest.NewServer(root)

	return &TestServerHelper{Server: server, Logger: log}
}

func (h *TestServerHelper) Close() {
	h.Server.Close()
}

func (h *TestServerHelper) URL() string {
	return h.Server.URL
}

// AssertStatusCode fails the test when the response status differs
func AssertStatusCode(t *testing.T, resp *http.Response, expected int) {
	t.Helper()
	if resp.StatusCode != expected {
		t.Errorf("expected status %d, got %d", expected, resp.StatusCode)
	}
}

// In-memory repositories backing the test server.

type memAdminRepo struct {
	mu     sync.Mutex
	nextID int64
	admins map[int64]*domain.Admin
}

func newMemAdminRepo() *memAdminRepo {
	return &memAdminRepo{nextID: 1, admins: map[int64]*domain.Admin{}}
}

func (r *memAdminRepo) Create(admin *domain.Admin) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, a := range r.admins {
		if a.Email == admin.Email {
			return domain.ErrDuplicateEmail
		}
	}
	admin.ID = r.nextID
	r.nextID++
	cp := *admin
	r.admins[admin.ID] = &cp
	return nil
}

func (r *memAdminRepo) GetByID(id int64) (*domain.Admin, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	a, ok := r.admins[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	cp := *a
	return &cp, nil
}

func (r *memAdminRepo) GetByEmail(email string) (*domain.Admin, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, a := range r.admins {
		if a.Email == email {
			cp := *a
			return &cp, nil
		}
	}
	return nil, domain.ErrNotFound
}

func (r *memAdminRepo) EmailExists(email string) (bool, error) {
	_, err := r.GetByEmail(email)
	if err == nil {
		return true, nil
	}
	return false, nil
}

type memClientRepo struct {
	mu      sync.Mutex
	nextID  int64
	clients map[int64]*domain.Client
}

func newMemClientRepo() *memClientRepo {
	return &memClientRepo{nextID: 1, clients: map[int64]*domain.Client{}}
}

func (r *memClientRepo) Create(client *domain.Client) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, c := range r.clients {
		if c.Email == client.Email {
			return domain.ErrDuplicateEmail
		}
	}
	client.ID = r.nextID
	r.nextID++
	cp := *client
	r.clients[client.ID] = &cp
	return nil
}

func (r *memClientRepo) GetByID(id int64) (*domain.Client, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	c, ok := r.clients[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	cp := *c
	return &cp, nil
}

func (r *memClientRepo) GetByEmail(email string) (*domain.Client, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, c := range r.clients {
		if c.Email == email {
			cp := *c
			return &cp, nil
		}
	}
	return nil, domain.ErrNotFound
}

func (r *memClientRepo) EmailExists(email string) (bool, error) {
	_, err := r.GetByEmail(email)
	if err == nil {
		return true, nil
	}
	return false, nil
}

type memTicketRepo struct {
	mu      sync.Mutex
	nextID  int64
	tickets map[int64]*domain.Ticket
}

func newMemTicketRepo() *memTicketRepo {
	return &memTicketRepo{nextID: 1, tickets: map[int64]*domain.Ticket{}}
}

func (r *memTicketRepo) Create(ticket *domain.Ticket) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	ticket.ID = r.nextID
	r.nextID++
	cp := *ticket
	r.tickets[ticket.ID] = &cp
	return nil
}

func (r *memTicketRepo) GetByID(id int64) (*domain.Ticket, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	tk, ok := r.tickets[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	cp := *tk
	return &cp, nil
}

func (r *memTicketRepo) List() ([]*domain.Ticket, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*domain.Ticket
	for _, tk := range r.tickets {
		cp := *tk
		out = append(out, &cp)
	}
	sortNewestFirst(out)
	return out, nil
}

func (r *memTicketRepo) ListByCreator(creatorID int64) ([]*domain.Ticket, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*domain.Ticket
	for _, tk := range r.tickets {
		if tk.CreatedByID == creatorID {
			cp := *tk
			out = append(out, &cp)
		}
	}
	sortNewestFirst(out)
	return out, nil
}

func (r *memTicketRepo) UpdateStatus(id int64, status domain.TicketStatus) (*domain.Ticket, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	tk, ok := r.tickets[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	tk.Status = status
	tk.UpdatedAt = time.Now().UTC()
	cp := *tk
	return &cp, nil
}

func (r *memTicketRepo) CountByStatus() (map[domain.TicketStatus]int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	counts := map[domain.TicketStatus]int64{}
	for _, tk := range r.tickets {
		counts[tk.Status]++
	}
	return counts, nil
}

func sortNewestFirst(tickets []*domain.Ticket) {
	sort.Slice(tickets, func(i, j int) bool {
		if tickets[i].CreatedAt.Equal(tickets[j].CreatedAt) {
			return tickets[i].ID > tickets[j].ID
		}
		return tickets[i].CreatedAt.After(tickets[j].CreatedAt)
	})
}
