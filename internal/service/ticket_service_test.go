package service

import (
	"errors"
	"sort"
	"strconv"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/yourorg/helpdesk/internal/domain"
	"github.com/yourorg/helpdesk/internal/security"
	"github.com/yourorg/helpdesk/internal/security/auth"
)

type memTicketRepo struct {
	tickets     map[int64]*domain.Ticket
	nextID      int64
	updateCalls int
}

func newMemTicketRepo() *memTicketRepo {
	return &memTicketRepo{tickets: map[int64]*domain.Ticket{}}
}

func (m *memTicketRepo) Create(t *domain.Ticket) error {
	m.nextID++
	t.ID = m.nextID
	m.tickets[t.ID] = t
	return nil
}
func (m *memTicketRepo) GetByID(id int64) (*domain.Ticket, error) {
	if t, ok := m.tickets[id]; ok {
		return t, nil
	}
	return nil, domain.ErrNotFound
}
func (m *memTicketRepo) List() ([]*domain.Ticket, error) {
	out := make([]*domain.Ticket, 0, len(m.tickets))
	for _, t := range m.tickets {
		out = append(out, t)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out, nil
}
func (m *memTicketRepo) ListByCreator(creatorID int64) ([]*domain.Ticket, error) {
	all, _ := m.List()
	out := []*domain.Ticket{}
	for _, t := range all {
		if t.CreatedByID == creatorID {
			out = append(out, t)
		}
	}
	return out, nil
}
func (m *memTicketRepo) UpdateStatus(id int64, status domain.TicketStatus) (*domain.Ticket, error) {
	m.updateCalls++
	t, ok := m.tickets[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	t.Status = status
	t.UpdatedAt = time.Now().UTC()
	return t, nil
}
func (m *memTicketRepo) CountByStatus() (map[domain.TicketStatus]int64, error) {
	out := map[domain.TicketStatus]int64{}
	for _, t := range m.tickets {
		out[t.Status]++
	}
	return out, nil
}

type recordedEvents struct {
	created []int64
	updated []int64
}

func (r *recordedEvents) TicketCreated(t *domain.Ticket)       { r.created = append(r.created, t.ID) }
func (r *recordedEvents) TicketStatusChanged(t *domain.Ticket) { r.updated = append(r.updated, t.ID) }

func claimsFor(subject int64, role security.Role) *auth.Claims {
	return &auth.Claims{
		Role: string(role),
		RegisteredClaims: jwt.RegisteredClaims{
			Subject: strconv.FormatInt(subject, 10),
		},
	}
}

func newTestTicketService(repo domain.TicketRepository, events TicketEvents) *TicketService {
	return NewTicketService(repo, security.NewAuthorizationService(nil), events, nil)
}

func TestCreateTicketForcesPendingAndCreator(t *testing.T) {
	repo := newMemTicketRepo()
	events := &recordedEvents{}
	s := newTestTicketService(repo, events)

	ticket, err := s.Create(claimsFor(7, security.RoleSupport), CreateTicketInput{
		Title:       "Printer on fire",
		Description: "Third floor",
	})
	if err != nil {
		t.Fatalf("create failed: %v", err)
	}
	if ticket.Status != domain.StatusPending {
		t.Fatalf("new ticket must start Pending, got %s", ticket.Status)
	}
	if ticket.CreatedByID != 7 {
		t.Fatalf("creator must come from claims, got %d", ticket.CreatedByID)
	}
	if ticket.CreatedAt.IsZero() || !ticket.UpdatedAt.Equal(ticket.CreatedAt) {
		t.Fatalf("expected matching creation timestamps, got %v / %v", ticket.CreatedAt, ticket.UpdatedAt)
	}
	if len(events.created) != 1 || events.created[0] != ticket.ID {
		t.Fatalf("expected a created event for ticket %d, got %v", ticket.ID, events.created)
	}
}

func TestOwnershipFilterOnList(t *testing.T) {
	repo := newMemTicketRepo()
	s := newTestTicketService(repo, nil)

	t1, err := s.Create(claimsFor(1, security.RoleSupport), CreateTicketInput{Title: "T1", Description: "d"})
	if err != nil {
		t.Fatalf("create T1 failed: %v", err)
	}
	t2, err := s.Create(claimsFor(2, security.RoleSupport), CreateTicketInput{Title: "T2", Description: "d"})
	if err != nil {
		t.Fatalf("create T2 failed: %v", err)
	}

	// support caller sees only own tickets
	visible, err := s.ListVisible(claimsFor(1, security.RoleSupport))
	if err != nil {
		t.Fatalf("list failed: %v", err)
	}
	if len(visible) != 1 || visible[0].ID != t1.ID {
		t.Fatalf("subject 1 should see exactly T1, got %v", visible)
	}

	// admin sees everything
	visible, err = s.ListVisible(claimsFor(99, security.RoleAdmin))
	if err != nil {
		t.Fatalf("admin list failed: %v", err)
	}
	if len(visible) != 2 {
		t.Fatalf("admin should see both tickets, got %d", len(visible))
	}
	_ = t2
}

func TestListIsOrderedMostRecentFirst(t *testing.T) {
	repo := newMemTicketRepo()
	s := newTestTicketService(repo, nil)

	base := time.Now().UTC()
	for i := 0; i < 3; i++ {
		ticket := &domain.Ticket{
			Title:       "T" + strconv.Itoa(i),
			Description: "d",
			Status:      domain.StatusPending,
			CreatedByID: 1,
			CreatedAt:   base.Add(time.Duration(i) * time.Minute),
			UpdatedAt:   base.Add(time.Duration(i) * time.Minute),
		}
		if err := repo.Create(ticket); err != nil {
			t.Fatalf("seed failed: %v", err)
		}
	}

	visible, err := s.ListVisible(claimsFor(1, security.RoleSupport))
	if err != nil {
		t.Fatalf("list failed: %v", err)
	}
	for i := 1; i < len(visible); i++ {
		if visible[i].CreatedAt.After(visible[i-1].CreatedAt) {
			t.Fatalf("tickets not ordered most recent first: %v", visible)
		}
	}
}

func TestGetDistinguishesForbiddenFromNotFound(t *testing.T) {
	repo := newMemTicketRepo()
	s := newTestTicketService(repo, nil)

	t2, err := s.Create(claimsFor(2, security.RoleSupport), CreateTicketInput{Title: "T2", Description: "d"})
	if err != nil {
		t.Fatalf("create failed: %v", err)
	}

	// someone else's existing ticket: Forbidden, not NotFound
	_, err = s.Get(claimsFor(1, security.RoleSupport), t2.ID)
	if !errors.Is(err, domain.ErrForbidden) {
		t.Fatalf("expected ErrForbidden, got %v", err)
	}

	// missing ticket: NotFound
	_, err = s.Get(claimsFor(1, security.RoleSupport), 999)
	if !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}

	// admin fetches anyone's ticket
	got, err := s.Get(claimsFor(99, security.RoleAdmin), t2.ID)
	if err != nil || got.ID != t2.ID {
		t.Fatalf("admin fetch failed: %v", err)
	}
}

func TestUpdateStatusIsAdminOnly(t *testing.T) {
	repo := newMemTicketRepo()
	events := &recordedEvents{}
	s := newTestTicketService(repo, events)

	ticket, err := s.Create(claimsFor(1, security.RoleSupport), CreateTicketInput{Title: "T", Description: "d"})
	if err != nil {
		t.Fatalf("create failed: %v", err)
	}
	storeCalls := repo.updateCalls

	// non-admin rejected before the store is touched
	_, err = s.UpdateStatus(claimsFor(1, security.RoleSupport), ticket.ID, domain.StatusCompleted)
	if !errors.Is(err, domain.ErrForbidden) {
		t.Fatalf("expected ErrForbidden, got %v", err)
	}
	if repo.updateCalls != storeCalls {
		t.Fatalf("store must not be called for a rejected update")
	}

	updated, err := s.UpdateStatus(claimsFor(99, security.RoleAdmin), ticket.ID, domain.StatusInProgress)
	if err != nil {
		t.Fatalf("admin update failed: %v", err)
	}
	if updated.Status != domain.StatusInProgress {
		t.Fatalf("expected InProgress, got %s", updated.Status)
	}
	if updated.UpdatedAt.Before(updated.CreatedAt) {
		t.Fatalf("updated_at must advance on mutation")
	}
	if len(events.updated) != 1 {
		t.Fatalf("expected a status-changed event, got %v", events.updated)
	}

	_, err = s.UpdateStatus(claimsFor(99, security.RoleAdmin), 999, domain.StatusCompleted)
	if !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("expected ErrNotFound for missing ticket, got %v", err)
	}
}
