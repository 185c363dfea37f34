package repository

import (
	"database/sql"
	"errors"
	"fmt"
	"log/slog"

	"github.com/yourorg/helpdesk/internal/domain"
)

// PostgresTicketRepository implements domain.TicketRepository using PostgreSQL
type PostgresTicketRepository struct {
	db     *sql.DB
	logger *slog.Logger
}

// NewPostgresTicketRepository creates a new ticket repository
func NewPostgresTicketRepository(db *sql.DB, logger *slog.Logger) *PostgresTicketRepository {
	if logger == nil {
		logger = slog.Default()
	}
	return &PostgresTicketRepository{db: db, logger: logger}
}

const ticketColumns = `id, title, description, status, client_id, contract_id, withdrawal_id, created_by_id, created_at, updated_at`

func scanTicket(row interface{ Scan(...any) error }) (*domain.Ticket, error) {
	ticket := &domain.Ticket{}
	err := row.Scan(
		&ticket.ID,
		&ticket.Title,
		&ticket.Description,
		&ticket.Status,
		&ticket.ClientID,
		&ticket.ContractID,
		&ticket.WithdrawalID,
		&ticket.CreatedByID,
		&ticket.CreatedAt,
		&ticket.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return ticket, nil
}

// Create inserts a new ticket and fills in the generated id
func (r *PostgresTicketRepository) Create(ticket *domain.Ticket) error {
	query := `
		INSERT INTO tickets (title, description, status, client_id, contract_id, withdrawal_id, created_by_id, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		RETURNING id
	`

	err := r.db.QueryRow(
		query,
		ticket.Title,
		ticket.Description,
		ticket.Status,
		ticket.ClientID,
		ticket.ContractID,
		ticket.WithdrawalID,
		ticket.CreatedByID,
		ticket.CreatedAt,
		ticket.UpdatedAt,
	).Scan(&ticket.ID)

	if err != nil {
		r.logger.Error("failed to create ticket",
			slog.Int64("created_by", ticket.CreatedByID),
			slog.String("error", err.Error()),
		)
		return fmt.Errorf("failed to create ticket: %w", err)
	}

	return nil
}

// GetByID retrieves a ticket by id
func (r *PostgresTicketRepository) GetByID(id int64) (*domain.Ticket, error) {
	query := `SELECT ` + ticketColumns + ` FROM tickets WHERE id = $1`

	ticket, err := scanTicket(r.db.QueryRow(query, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		r.logger.Error("failed to get ticket by id",
			slog.Int64("id", id),
			slog.String("error", err.Error()),
		)
		return nil, fmt.Errorf("failed to get ticket: %w", err)
	}

	return ticket, nil
}

// List returns all tickets, most recent first. The ordering is part of
// the contract, not cosmetic.
func (r *PostgresTicketRepository) List() ([]*domain.Ticket, error) {
	query := `SELECT ` + ticketColumns + ` FROM tickets ORDER BY created_at DESC`
	return r.queryTickets(query)
}

// ListByCreator returns one principal's tickets, most recent first
func (r *PostgresTicketRepository) ListByCreator(creatorID int64) ([]*domain.Ticket, error) {
	query := `SELECT ` + ticketColumns + ` FROM tickets WHERE created_by_id = $1 ORDER BY created_at DESC`
	return r.queryTickets(query, creatorID)
}

func (r *PostgresTicketRepository) queryTickets(query string, args ...any) ([]*domain.Ticket, error) {
	rows, err := r.db.Query(query, args...)
	if err != nil {
		r.logger.Error("failed to list tickets", slog.String("error", err.Error()))
		return nil, fmt.Errorf("failed to list tickets: %w", err)
	}
	defer rows.Close()

	var tickets []*domain.Ticket
	for rows.Next() {
		ticket, err := scanTicket(rows)
		if err != nil {
			r.logger.Error("failed to scan ticket row", slog.String("error", err.Error()))
			return nil, fmt.Errorf("failed to scan ticket: %w", err)
		}
		tickets = append(tickets, ticket)
	}

	return tickets, rows.Err()
}

// UpdateStatus sets a ticket's status and advances updated_at in a
// single atomic update, returning the new row.
func (r *PostgresTicketRepository) UpdateStatus(id int64, status domain.TicketStatus) (*domain.Ticket, error) {
	query := `
		UPDATE tickets
		SET status = $2, updated_at = NOW()
		WHERE id = $1
		RETURNING ` + ticketColumns

	ticket, err := scanTicket(r.db.QueryRow(query, id, status))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		r.logger.Error("failed to update ticket status",
			slog.Int64("id", id),
			slog.String("status", string(status)),
			slog.String("error", err.Error()),
		)
		return nil, fmt.Errorf("failed to update ticket status: %w", err)
	}

	return ticket, nil
}

// CountByStatus returns the number of tickets per status, for the stats
// worker's gauges.
func (r *PostgresTicketRepository) CountByStatus() (map[domain.TicketStatus]int64, error) {
	rows, err := r.db.Query(`SELECT status, COUNT(*) FROM tickets GROUP BY status`)
	if err != nil {
		return nil, fmt.Errorf("failed to count tickets: %w", err)
	}
	defer rows.Close()

	counts := map[domain.TicketStatus]int64{}
	for rows.Next() {
		var status domain.TicketStatus
		var n int64
		if err := rows.Scan(&status, &n); err != nil {
			return nil, fmt.Errorf("failed to scan ticket count: %w", err)
		}
		counts[status] = n
	}

	return counts, rows.Err()
}
