package domain

import (
	"fmt"
	"time"
)

// TicketStatus is the lifecycle state of a ticket
type TicketStatus string

const (
	StatusPending    TicketStatus = "Pending"
	StatusInProgress TicketStatus = "InProgress"
	StatusCompleted  TicketStatus = "Completed"
	StatusCancelled  TicketStatus = "Cancelled"
)

// ParseTicketStatus validates a client-supplied status string
func ParseTicketStatus(s string) (TicketStatus, error) {
	switch TicketStatus(s) {
	case StatusPending, StatusInProgress, StatusCompleted, StatusCancelled:
		return TicketStatus(s), nil
	default:
		return "", fmt.Errorf("unknown ticket status %q", s)
	}
}

// Ticket is a support request. CreatedByID is taken from the creator's
// token claims and is immutable after creation.
type Ticket struct {
	ID           int64        `json:"id"`
	Title        string       `json:"title"`
	Description  string       `json:"description"`
	Status       TicketStatus `json:"status"`
	ClientID     *int64       `json:"clientId,omitempty"`
	ContractID   *int64       `json:"contractId,omitempty"`
	WithdrawalID *int64       `json:"withdrawalId,omitempty"`
	CreatedByID  int64        `json:"createdById"`
	CreatedAt    time.Time    `json:"createdAt"`
	UpdatedAt    time.Time    `json:"updatedAt"`
}

// TicketRepository defines data access for tickets. List and
// ListByCreator return tickets ordered by creation time, most recent
// first; callers rely on that ordering.
type TicketRepository interface {
	Create(ticket *Ticket) error
	GetByID(id int64) (*Ticket, error)
	List() ([]*Ticket, error)
	ListByCreator(creatorID int64) ([]*Ticket, error)
	UpdateStatus(id int64, status TicketStatus) (*Ticket, error)
	CountByStatus() (map[TicketStatus]int64, error)
}
