package service

import (
	"errors"
	"testing"

	"github.com/yourorg/helpdesk/internal/domain"
	"github.com/yourorg/helpdesk/internal/security/auth"
	"github.com/yourorg/helpdesk/internal/security/crypto"
	"github.com/yourorg/helpdesk/pkg/cache"
)

type memClientRepo struct {
	byID    map[int64]*domain.Client
	byEmail map[string]*domain.Client
	nextID  int64
}

func newMemClientRepo() *memClientRepo {
	return &memClientRepo{byID: map[int64]*domain.Client{}, byEmail: map[string]*domain.Client{}}
}

func (m *memClientRepo) Create(c *domain.Client) error {
	if _, ok := m.byEmail[c.Email]; ok {
		return domain.ErrDuplicateEmail
	}
	m.nextID++
	c.ID = m.nextID
	m.byID[c.ID] = c
	m.byEmail[c.Email] = c
	return nil
}
func (m *memClientRepo) GetByID(id int64) (*domain.Client, error) {
	if c, ok := m.byID[id]; ok {
		return c, nil
	}
	return nil, domain.ErrNotFound
}
func (m *memClientRepo) GetByEmail(email string) (*domain.Client, error) {
	if c, ok := m.byEmail[email]; ok {
		return c, nil
	}
	return nil, domain.ErrNotFound
}
func (m *memClientRepo) EmailExists(email string) (bool, error) {
	_, ok := m.byEmail[email]
	return ok, nil
}

func newTestClientService(t *testing.T, repo domain.ClientRepository) (*ClientService, *auth.TokenManager) {
	t.Helper()
	cipher, err := crypto.New("test-secret")
	if err != nil {
		t.Fatalf("cipher init failed: %v", err)
	}
	tokens := auth.NewTokenManager("test-secret", "helpdesk", "")
	return NewClientService(repo, cipher, tokens, nil), tokens
}

func TestClientRegisterAndAuthenticate(t *testing.T) {
	repo := newMemClientRepo()
	s, tokens := newTestClientService(t, repo)

	ana, err := s.Register("Ana", "ana@x.com", "pw123", "+550000")
	if err != nil {
		t.Fatalf("register failed: %v", err)
	}
	if ana.Password == "pw123" {
		t.Fatalf("password stored in plaintext")
	}

	token, err := s.Authenticate("ana@x.com", "pw123")
	if err != nil {
		t.Fatalf("authenticate failed: %v", err)
	}
	if token == "" {
		t.Fatalf("expected token for valid credentials")
	}

	claims, err := tokens.Validate(token)
	if err != nil {
		t.Fatalf("issued token does not validate: %v", err)
	}
	// clients act as support staff: the Support role comes only from here
	if claims.Role != "Support" {
		t.Fatalf("expected Support role, got %q", claims.Role)
	}
	if claims.Email != "" {
		t.Fatalf("client token must not carry an email claim, got %q", claims.Email)
	}
	id, err := claims.SubjectID()
	if err != nil || id != ana.ID {
		t.Fatalf("expected subject %d, got %d (%v)", ana.ID, id, err)
	}

	// wrong password
	token, err = s.Authenticate("ana@x.com", "wrong")
	if err != nil || token != "" {
		t.Fatalf("expected empty token and nil error, got %q, %v", token, err)
	}
}

func TestClientDuplicateEmail(t *testing.T) {
	repo := newMemClientRepo()
	s, _ := newTestClientService(t, repo)

	if _, err := s.Register("Ana", "ana@x.com", "pw123", ""); err != nil {
		t.Fatalf("register failed: %v", err)
	}
	_, err := s.Register("Ana Clone", "ana@x.com", "pw456", "")
	if !errors.Is(err, domain.ErrDuplicateEmail) {
		t.Fatalf("expected ErrDuplicateEmail, got %v", err)
	}
}

func TestEmailSpacesAreDisjoint(t *testing.T) {
	adminRepo := newMemAdminRepo()
	clientRepo := newMemClientRepo()
	cipher, err := crypto.New("test-secret")
	if err != nil {
		t.Fatalf("cipher init failed: %v", err)
	}
	tokens := auth.NewTokenManager("test-secret", "helpdesk", "")
	admins := NewAdminService(adminRepo, cipher, tokens, cache.New(), nil)
	clients := NewClientService(clientRepo, cipher, tokens, nil)

	if _, err := admins.Register("Shared", "shared@x.com", "adminpw", ""); err != nil {
		t.Fatalf("admin register failed: %v", err)
	}
	// the same address registers fine as a client
	if _, err := clients.Register("Shared", "shared@x.com", "clientpw", ""); err != nil {
		t.Fatalf("client register with admin's email failed: %v", err)
	}

	// each kind authenticates only against its own space
	token, err := admins.Authenticate("shared@x.com", "clientpw")
	if err != nil || token != "" {
		t.Fatalf("admin auth with client password should fail: %q, %v", token, err)
	}
	token, err = clients.Authenticate("shared@x.com", "clientpw")
	if err != nil || token == "" {
		t.Fatalf("client auth failed: %q, %v", token, err)
	}
}
