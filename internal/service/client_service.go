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
)

// ClientService handles client registration and authentication. A
// client who logs in acts as support staff: client tokens carry the
// Support role, and there is no separate support principal kind.
type ClientService struct {
	repo   domain.ClientRepository
	cipher *crypto.Cipher
	tokens *auth.TokenManager
	logger *slog.Logger
}

// NewClientService creates a new client service
func NewClientService(
	repo domain.ClientRepository,
	cipher *crypto.Cipher,
	tokens *auth.TokenManager,
	logger *slog.Logger,
) *ClientService {
	if logger == nil {
		logger = slog.Default()
	}
	return &ClientService{
		repo:   repo,
		cipher: cipher,
		tokens: tokens,
		logger: logger,
	}
}

// Register creates a new client. Email uniqueness is scoped to clients
// only; an admin may already use the same address.
func (s *ClientService) Register(name, email, password, phone string) (*domain.Client, error) {
	if name == "" || email == "" || password == "" {
		return nil, errors.New("name, email, and password are required")
	}

	exists, err := s.repo.EmailExists(email)
	if err != nil {
		return nil, fmt.Errorf("failed to check client email: %w", err)
	}
	if exists {
		return nil, domain.ErrDuplicateEmail
	}

	encrypted, err := s.cipher.Encrypt(password)
	if err != nil {
		s.logger.Error("failed to encrypt client password", slog.String("error", err.Error()))
		return nil, errors.New("failed to register client")
	}

	client := &domain.Client{
		Name:           name,
		NameNormalized: strings.ToUpper(name),
		Email:          email,
		Password:       encrypted,
		PhoneNumber:    phone,
		DateCreated:    time.Now().UTC(),
	}

	if err := s.repo.Create(client); err != nil {
		if errors.Is(err, domain.ErrDuplicateEmail) {
			return nil, err
		}
		s.logger.Error("failed to create client", slog.String("error", err.Error()))
		return nil, errors.New("failed to register client")
	}

	s.logger.Info("client registered",
		slog.Int64("client_id", client.ID),
		slog.String("email", client.Email),
	)
	return client, nil
}

// Authenticate checks credentials against the client identity space and
// issues a Support-role token on match. Unknown email and wrong
// password both return an empty token with a nil error. Client tokens
// omit the email claim.
func (s *ClientService) Authenticate(email, password string) (string, error) {
	client, err := s.repo.GetByEmail(email)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return "", nil
		}
		return "", fmt.Errorf("failed to look up client: %w", err)
	}

	stored, err := s.cipher.Decrypt(client.Password)
	if err != nil {
		s.logger.Error("stored client credential cannot be decrypted",
			slog.Int64("client_id", client.ID),
			slog.String("error", err.Error()),
		)
		return "", fmt.Errorf("stored credential for client %d: %w", client.ID, err)
	}

	if stored != password {
		return "", nil
	}

	return s.tokens.Issue(client.ID, "", string(security.RoleSupport))
}
