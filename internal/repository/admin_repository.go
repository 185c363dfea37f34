package repository

import (
	"database/sql"
	"errors"
	"fmt"
	"log/slog"

	"github.com/lib/pq"

	"github.com/yourorg/helpdesk/internal/domain"
)

// uniqueViolation is the Postgres error code for unique constraint hits
const uniqueViolation = "23505"

// PostgresAdminRepository implements domain.AdminRepository using PostgreSQL
type PostgresAdminRepository struct {
	db     *sql.DB
	logger *slog.Logger
}

// NewPostgresAdminRepository creates a new admin repository
func NewPostgresAdminRepository(db *sql.DB, logger *slog.Logger) *PostgresAdminRepository {
	if logger == nil {
		logger = slog.Default()
	}
	return &PostgresAdminRepository{db: db, logger: logger}
}

// Create inserts a new admin and fills in the generated id
func (r *PostgresAdminRepository) Create(admin *domain.Admin) error {
	query := `
		INSERT INTO admins (name, name_normalized, email, password, phone_number, date_created)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING id
	`

	err := r.db.QueryRow(
		query,
		admin.Name,
		admin.NameNormalized,
		admin.Email,
		admin.Password,
		admin.PhoneNumber,
		admin.DateCreated,
	).Scan(&admin.ID)

	if err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && pqErr.Code == uniqueViolation {
			return domain.ErrDuplicateEmail
		}
		r.logger.Error("failed to create admin",
			slog.String("email", admin.Email),
			slog.String("error", err.Error()),
		)
		return fmt.Errorf("failed to create admin: %w", err)
	}

	return nil
}

// GetByID retrieves an admin by id
func (r *PostgresAdminRepository) GetByID(id int64) (*domain.Admin, error) {
	admin := &domain.Admin{}

	query := `
		SELECT id, name, name_normalized, email, password, phone_number, date_created
		FROM admins
		WHERE id = $1
	`

	err := r.db.QueryRow(query, id).Scan(
		&admin.ID,
		&admin.Name,
		&admin.NameNormalized,
		&admin.Email,
		&admin.Password,
		&admin.PhoneNumber,
		&admin.DateCreated,
	)

	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		r.logger.Error("failed to get admin by id",
			slog.Int64("id", id),
			slog.String("error", err.Error()),
		)
		return nil, fmt.Errorf("failed to get admin: %w", err)
	}

	return admin, nil
}

// GetByEmail retrieves an admin by email. The lookup is case-sensitive
// and never matches client records.
func (r *PostgresAdminRepository) GetByEmail(email string) (*domain.Admin, error) {
	admin := &domain.Admin{}

	query := `
		SELECT id, name, name_normalized, email, password, phone_number, date_created
		FROM admins
		WHERE email = $1
	`

	err := r.db.QueryRow(query, email).Scan(
		&admin.ID,
		&admin.Name,
		&admin.NameNormalized,
		&admin.Email,
		&admin.Password,
		&admin.PhoneNumber,
		&admin.DateCreated,
	)

	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("failed to get admin by email: %w", err)
	}

	return admin, nil
}

// EmailExists reports whether any admin already uses the email
func (r *PostgresAdminRepository) EmailExists(email string) (bool, error) {
	var exists bool
	err := r.db.QueryRow(`SELECT EXISTS(SELECT 1 FROM admins WHERE email = $1)`, email).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("failed to check admin email: %w", err)
	}
	return exists, nil
}
