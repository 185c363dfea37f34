package service

import (
	"errors"
	"testing"

	"github.com/yourorg/helpdesk/internal/domain"
	"github.com/yourorg/helpdesk/internal/security/auth"
	"github.com/yourorg/helpdesk/internal/security/crypto"
	"github.com/yourorg/helpdesk/pkg/cache"
)

type memAdminRepo struct {
	byID    map[int64]*domain.Admin
	byEmail map[string]*domain.Admin
	nextID  int64
}

func newMemAdminRepo() *memAdminRepo {
	return &memAdminRepo{byID: map[int64]*domain.Admin{}, byEmail: map[string]*domain.Admin{}}
}

func (m *memAdminRepo) Create(a *domain.Admin) error {
	if _, ok := m.byEmail[a.Email]; ok {
		return domain.ErrDuplicateEmail
	}
	m.nextID++
	a.ID = m.nextID
	m.byID[a.ID] = a
	m.byEmail[a.Email] = a
	return nil
}
func (m *memAdminRepo) GetByID(id int64) (*domain.Admin, error) {
	if a, ok := m.byID[id]; ok {
		return a, nil
	}
	return nil, domain.ErrNotFound
}
func (m *memAdminRepo) GetByEmail(email string) (*domain.Admin, error) {
	if a, ok := m.byEmail[email]; ok {
		return a, nil
	}
	return nil, domain.ErrNotFound
}
func (m *memAdminRepo) EmailExists(email string) (bool, error) {
	_, ok := m.byEmail[email]
	return ok, nil
}

func newTestAdminService(t *testing.T, repo domain.AdminRepository) (*AdminService, *auth.TokenManager) {
	t.Helper()
	cipher, err := crypto.New("test-secret")
	if err != nil {
		t.Fatalf("cipher init failed: %v", err)
	}
	tokens := auth.NewTokenManager("test-secret", "helpdesk", "")
	return NewAdminService(repo, cipher, tokens, cache.New(), nil), tokens
}

func TestAdminRegisterAndAuthenticate(t *testing.T) {
	repo := newMemAdminRepo()
	s, tokens := newTestAdminService(t, repo)

	admin, err := s.Register("Root", "root@example.com", "hunter2", "+551199")
	if err != nil {
		t.Fatalf("register failed: %v", err)
	}
	if admin.ID == 0 {
		t.Fatalf("expected assigned id")
	}
	if admin.Password == "hunter2" {
		t.Fatalf("password stored in plaintext")
	}
	if admin.NameNormalized != "ROOT" {
		t.Fatalf("expected normalized name ROOT, got %q", admin.NameNormalized)
	}
	if admin.DateCreated.IsZero() {
		t.Fatalf("expected creation timestamp")
	}

	token, err := s.Authenticate("root@example.com", "hunter2")
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
	if claims.Role != "Admin" {
		t.Fatalf("expected Admin role, got %q", claims.Role)
	}
	if claims.Email != "root@example.com" {
		t.Fatalf("admin token should carry the email claim, got %q", claims.Email)
	}
	id, err := claims.SubjectID()
	if err != nil || id != admin.ID {
		t.Fatalf("expected subject %d, got %d (%v)", admin.ID, id, err)
	}
}

func TestAdminAuthenticateRejections(t *testing.T) {
	repo := newMemAdminRepo()
	s, _ := newTestAdminService(t, repo)

	if _, err := s.Register("Root", "root@example.com", "hunter2", ""); err != nil {
		t.Fatalf("register failed: %v", err)
	}

	// wrong password: empty token, no error
	token, err := s.Authenticate("root@example.com", "wrong")
	if err != nil || token != "" {
		t.Fatalf("expected empty token and nil error, got %q, %v", token, err)
	}

	// unknown email: same uniform outcome
	token, err = s.Authenticate("nobody@example.com", "hunter2")
	if err != nil || token != "" {
		t.Fatalf("expected empty token and nil error, got %q, %v", token, err)
	}
}

func TestAdminDuplicateEmail(t *testing.T) {
	repo := newMemAdminRepo()
	s, _ := newTestAdminService(t, repo)

	if _, err := s.Register("Root", "root@example.com", "hunter2", ""); err != nil {
		t.Fatalf("register failed: %v", err)
	}

	_, err := s.Register("Other", "root@example.com", "different", "")
	if !errors.Is(err, domain.ErrDuplicateEmail) {
		t.Fatalf("expected ErrDuplicateEmail, got %v", err)
	}
}

func TestAdminAuthenticateCorruptedBlob(t *testing.T) {
	repo := newMemAdminRepo()
	s, _ := newTestAdminService(t, repo)

	if _, err := s.Register("Root", "root@example.com", "hunter2", ""); err != nil {
		t.Fatalf("register failed: %v", err)
	}

	// corrupt the stored blob directly
	repo.byEmail["root@example.com"].Password = "bm90LWEtdmFsaWQtYmxvYg=="

	_, err := s.Authenticate("root@example.com", "hunter2")
	if !errors.Is(err, crypto.ErrDecrypt) {
		t.Fatalf("expected decrypt error for corrupted blob, got %v", err)
	}
}

func TestAdminGetByIDUsesCache(t *testing.T) {
	repo := newMemAdminRepo()
	s, _ := newTestAdminService(t, repo)

	admin, err := s.Register("Root", "root@example.com", "hunter2", "")
	if err != nil {
		t.Fatalf("register failed: %v", err)
	}

	if _, err := s.GetByID(admin.ID); err != nil {
		t.Fatalf("first lookup failed: %v", err)
	}

	// remove the record from the store; the cached copy should still serve
	delete(repo.byID, admin.ID)

	got, err := s.GetByID(admin.ID)
	if err != nil {
		t.Fatalf("cached lookup failed: %v", err)
	}
	if got.Email != "root@example.com" {
		t.Fatalf("unexpected cached admin: %+v", got)
	}
}
