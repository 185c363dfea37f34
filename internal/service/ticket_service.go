package service

import (
	"fmt"
	"log/slog"
	"time"

	"github.com/yourorg/helpdesk/internal/domain"
	"github.com/yourorg/helpdesk/internal/security"
	"github.com/yourorg/helpdesk/internal/security/auth"
)

// TicketEvents receives notifications of ticket changes. The server
// wires this to the WebSocket hub; a nil publisher disables the feed.
type TicketEvents interface {
	TicketCreated(ticket *domain.Ticket)
	TicketStatusChanged(ticket *domain.Ticket)
}

// CreateTicketInput is the caller-supplied part of a new ticket. The
// creator id is never part of it: it comes from the caller's claims.
type CreateTicketInput struct {
	Title        string
	Description  string
	ClientID     *int64
	ContractID   *int64
	WithdrawalID *int64
}

// TicketService applies role and ownership rules on top of the ticket
// store
type TicketService struct {
	repo   domain.TicketRepository
	authz  *security.AuthorizationService
	events TicketEvents
	logger *slog.Logger
}

// NewTicketService creates a new ticket service
func NewTicketService(
	repo domain.TicketRepository,
	authz *security.AuthorizationService,
	events TicketEvents,
	logger *slog.Logger,
) *TicketService {
	if logger == nil {
		logger = slog.Default()
	}
	return &TicketService{
		repo:   repo,
		authz:  authz,
		events: events,
		logger: logger,
	}
}

// Create opens a ticket for the authenticated caller. New tickets
// always start Pending regardless of anything in the request, and the
// creator id is taken from the claims.
func (s *TicketService) Create(claims *auth.Claims, in CreateTicketInput) (*domain.Ticket, error) {
	if err := s.authz.ValidatePermission(security.Role(claims.Role), security.PermCreateTicket); err != nil {
		return nil, err
	}

	subjectID, err := claims.SubjectID()
	if err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrForbidden, err)
	}

	if in.Title == "" || in.Description == "" {
		return nil, fmt.Errorf("title and description are required")
	}

	now := time.Now().UTC()
	ticket := &domain.Ticket{
		Title:        in.Title,
		Description:  in.Description,
		Status:       domain.StatusPending,
		ClientID:     in.ClientID,
		ContractID:   in.ContractID,
		WithdrawalID: in.WithdrawalID,
		CreatedByID:  subjectID,
		CreatedAt:    now,
		UpdatedAt:    now,
	}

	if err := s.repo.Create(ticket); err != nil {
		s.logger.Error("failed to create ticket", slog.String("error", err.Error()))
		return nil, fmt.Errorf("failed to create ticket: %w", err)
	}

	s.logger.Info("ticket created",
		slog.Int64("ticket_id", ticket.ID),
		slog.Int64("created_by", subjectID),
	)

	if s.events != nil {
		s.events.TicketCreated(ticket)
	}
	return ticket, nil
}

// ListVisible returns the tickets the caller may see, most recent
// first. Admins see everything; any other role only its own tickets.
func (s *TicketService) ListVisible(claims *auth.Claims) ([]*domain.Ticket, error) {
	role := security.Role(claims.Role)
	if s.authz.HasPermission(role, security.PermViewAllTickets) {
		return s.repo.List()
	}

	if err := s.authz.ValidatePermission(role, security.PermViewOwnTickets); err != nil {
		return nil, err
	}

	subjectID, err := claims.SubjectID()
	if err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrForbidden, err)
	}
	return s.repo.ListByCreator(subjectID)
}

// Get fetches one ticket, applying the ownership filter. A ticket that
// exists but belongs to someone else yields ErrForbidden, which callers
// keep distinct from ErrNotFound.
func (s *TicketService) Get(claims *auth.Claims, id int64) (*domain.Ticket, error) {
	ticket, err := s.repo.GetByID(id)
	if err != nil {
		return nil, err
	}

	subjectID, err := claims.SubjectID()
	if err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrForbidden, err)
	}

	if !s.authz.CanAccessTicket(security.Role(claims.Role), subjectID, ticket) {
		s.logger.Warn("ticket access denied",
			slog.Int64("ticket_id", id),
			slog.Int64("subject", subjectID),
			slog.String("role", claims.Role),
		)
		return nil, domain.ErrForbidden
	}
	return ticket, nil
}

// UpdateStatus transitions a ticket to a new status. Admin only; the
// role check happens before any store access.
func (s *TicketService) UpdateStatus(claims *auth.Claims, id int64, status domain.TicketStatus) (*domain.Ticket, error) {
	if err := s.authz.ValidatePermission(security.Role(claims.Role), security.PermUpdateTicketStatus); err != nil {
		return nil, err
	}

	ticket, err := s.repo.UpdateStatus(id, status)
	if err != nil {
		return nil, err
	}

	s.logger.Info("ticket status updated",
		slog.Int64("ticket_id", id),
		slog.String("status", string(status)),
	)

	if s.events != nil {
		s.events.TicketStatusChanged(ticket)
	}
	return ticket, nil
}
