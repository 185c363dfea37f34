package repository

import (
	"database/sql"
	"errors"
	"fmt"
	"log/slog"

	"github.com/lib/pq"

	"github.com/yourorg/helpdesk/internal/domain"
)

// PostgresClientRepository implements domain.ClientRepository using PostgreSQL
type PostgresClientRepository struct {
	db     *sql.DB
	logger *slog.Logger
}

// NewPostgresClientRepository creates a new client repository
func NewPostgresClientRepository(db *sql.DB, logger *slog.Logger) *PostgresClientRepository {
	if logger == nil {
		logger = slog.Default()
	}
	return &PostgresClientRepository{db: db, logger: logger}
}

// Create inserts a new client and fills in the generated id
func (r *PostgresClientRepository) Create(client *domain.Client) error {
	query := `
		INSERT INTO clients (name, name_normalized, email, password, phone_number, date_created)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING id
	`

	err := r.db.QueryRow(
		query,
		client.Name,
		client.NameNormalized,
		client.Email,
		client.Password,
		client.PhoneNumber,
		client.DateCreated,
	).Scan(&client.ID)

	if err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && pqErr.Code == uniqueViolation {
			return domain.ErrDuplicateEmail
		}
		r.logger.Error("failed to create client",
			slog.String("email", client.Email),
			slog.String("error", err.Error()),
		)
		return fmt.Errorf("failed to create client: %w", err)
	}

	return nil
}

// GetByID retrieves a client by id
func (r *PostgresClientRepository) GetByID(id int64) (*domain.Client, error) {
	client := &domain.Client{}

	query := `
		SELECT id, name, name_normalized, email, password, phone_number, date_created
		FROM clients
		WHERE id = $1
	`

	err := r.db.QueryRow(query, id).Scan(
		&client.ID,
		&client.Name,
		&client.NameNormalized,
		&client.Email,
		&client.Password,
		&client.PhoneNumber,
		&client.DateCreated,
	)

	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		r.logger.Error("failed to get client by id",
			slog.Int64("id", id),
			slog.String("error", err.Error()),
		)
		return nil, fmt.Errorf("failed to get client: %w", err)
	}

	return client, nil
}

// GetByEmail retrieves a client by email, within the client identity
// space only.
func (r *PostgresClientRepository) GetByEmail(email string) (*domain.Client, error) {
	client := &domain.Client{}

	query := `
		SELECT id, name, name_normalized, email, password, phone_number, date_created
		FROM clients
		WHERE email = $1
	`

	err := r.db.QueryRow(query, email).Scan(
		&client.ID,
		&client.Name,
		&client.NameNormalized,
		&client.Email,
		&client.Password,
		&client.PhoneNumber,
		&client.DateCreated,
	)

	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("failed to get client by email: %w", err)
	}

	return client, nil
}

// EmailExists reports whether any client already uses the email
func (r *PostgresClientRepository) EmailExists(email string) (bool, error) {
	var exists bool
	err := r.db.QueryRow(`SELECT EXISTS(SELECT 1 FROM clients WHERE email = $1)`, email).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("failed to check client email: %w", err)
	}
	return exists, nil
}
