package service

import (
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/yourorg/helpdesk/internal/domain"
	"github.com/yourorg/helpdesk/internal/security"
	"github.com/yourorg/helpdesk/internal/security/auth"
	"github.com/yourorg/helpdesk/internal/security/crypto"
	"github.com/yourorg/helpdesk/pkg/cache"
)

const adminProfileTTL = 30 * time.Second

// AdminService handles admin registration, authentication and lookups
type AdminService struct {
	repo   domain.AdminRepository
	cipher *crypto.Cipher
	tokens *auth.TokenManager
	cache  *cache.Cache
	logger *slog.Logger
}

// NewAdminService creates a new admin service
func NewAdminService(
	repo domain.AdminRepository,
	cipher *crypto.Cipher,
	tokens *auth.TokenManager,
	profileCache *cache.Cache,
	logger *slog.Logger,
) *AdminService {
	if logger == nil {
		logger = slog.Default()
	}
	return &AdminService{
		repo:   repo,
		cipher: cipher,
		tokens: tokens,
		cache:  profileCache,
		logger: logger,
	}
}

// Register creates a new admin. The email must be unused among admins
// (case-sensitive; the client identity space is separate). The password
// is stored encrypted, never in plaintext.
func (s *AdminService) Register(name, email, password, phone string) (*domain.Admin, error) {
	if name == "" || email == "" || password == "" {
		return nil, errors.New("name, email, and password are required")
	}

	exists, err := s.repo.EmailExists(email)
	if err != nil {
		return nil, fmt.Errorf("failed to check admin email: %w", err)
	}
	if exists {
		return nil, domain.ErrDuplicateEmail
	}

	encrypted, err := s.cipher.Encrypt(password)
	if err != nil {
		s.logger.Error("failed to encrypt admin password", slog.String("error", err.Error()))
		return nil, errors.New("failed to register admin")
	}

	admin := &domain.Admin{
		Name:           name,
		NameNormalized: strings.ToUpper(name),
		Email:          email,
		Password:       encrypted,
		PhoneNumber:    phone,
		DateCreated:    time.Now().UTC(),
	}

	if err := s.repo.Create(admin); err != nil {
		if errors.Is(err, domain.ErrDuplicateEmail) {
			return nil, err
		}
		s.logger.Error("failed to create admin", slog.String("error", err.Error()))
		return nil, errors.New("failed to register admin")
	}

	s.logger.Info("admin registered",
		slog.Int64("admin_id", admin.ID),
		slog.String("email", admin.Email),
	)
	return admin, nil
}

// Authenticate checks the presented credentials against the stored
// encrypted password and issues a token on match. Unknown email and
// wrong password both return an empty token with a nil error so callers
// report them uniformly. Admin tokens carry the email claim and always
// the Admin role.
func (s *AdminService) Authenticate(email, password string) (string, error) {
	admin, err := s.repo.GetByEmail(email)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return "", nil
		}
		return "", fmt.Errorf("failed to look up admin: %w", err)
	}

	stored, err := s.cipher.Decrypt(admin.Password)
	if err != nil {
		// corrupted blob at rest: integrity fault, not a wrong password
		s.logger.Error("stored admin credential cannot be decrypted",
			slog.Int64("admin_id", admin.ID),
			slog.String("error", err.Error()),
		)
		return "", fmt.Errorf("stored credential for admin %d: %w", admin.ID, err)
	}

	if stored != password {
		return "", nil
	}

	return s.tokens.Issue(admin.ID, admin.Email, string(security.RoleAdmin))
}

// GetByID retrieves an admin, serving repeat lookups from a short-lived
// cache.
func (s *AdminService) GetByID(id int64) (*domain.Admin, error) {
	key := fmt.Sprintf("admin:%d", id)
	if s.cache != nil {
		if cached, ok := s.cache.Get(key); ok {
			return cached.(*domain.Admin), nil
		}
	}

	admin, err := s.repo.GetByID(id)
	if err != nil {
		return nil, err
	}

	if s.cache != nil {
		s.cache.Set(key, admin, adminProfileTTL)
	}
	return admin, nil
}
