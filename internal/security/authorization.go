package security

import (
	"fmt"
	"log/slog"

	"github.com/yourorg/helpdesk/internal/domain"
	"github.com/yourorg/helpdesk/internal/security/auth"
)

// Role represents a principal role as carried in token claims. There
// are exactly two: admins get "Admin", clients get "Support" (client
// registration is the only path that yields the Support role).
type Role string

const (
	RoleAdmin   Role = "Admin"
	RoleSupport Role = "Support"
)

// Permission represents an action permission
type Permission string

const (
	PermCreateTicket       Permission = "create_ticket"
	PermViewOwnTickets     Permission = "view_own_tickets"
	PermViewAllTickets     Permission = "view_all_tickets"
	PermUpdateTicketStatus Permission = "update_ticket_status"
	PermViewAdminProfile   Permission = "view_admin_profile"
)

// RolePermissions maps roles to their permissions
var RolePermissions = map[Role][]Permission{
	RoleAdmin: {
		PermCreateTicket,
		PermViewOwnTickets,
		PermViewAllTickets,
		PermUpdateTicketStatus,
		PermViewAdminProfile,
	},
	RoleSupport: {
		PermCreateTicket,
		PermViewOwnTickets,
	},
}

// AuthorizationService handles role and ownership checks
type AuthorizationService struct {
	logger *slog.Logger
}

// NewAuthorizationService creates a new authorization service
func NewAuthorizationService(logger *slog.Logger) *AuthorizationService {
	if logger == nil {
		logger = slog.Default()
	}
	return &AuthorizationService{logger: logger}
}

// HasPermission checks if a role has a specific permission
func (as *AuthorizationService) HasPermission(role Role, permission Permission) bool {
	permissions, exists := RolePermissions[role]
	if !exists {
		return false
	}
	for _, p := range permissions {
		if p == permission {
			return true
		}
	}
	return false
}

// ValidatePermission validates that a role has a specific permission
func (as *AuthorizationService) ValidatePermission(role Role, permission Permission) error {
	if !as.HasPermission(role, permission) {
		as.logger.Warn("permission denied",
			slog.String("role", string(role)),
			slog.String("permission", string(permission)),
		)
		return fmt.Errorf("%w: role %s lacks permission %s", domain.ErrForbidden, role, permission)
	}
	return nil
}

// CanAccessTicket applies the ownership filter: admins see every
// ticket, any other role only tickets it created.
func (as *AuthorizationService) CanAccessTicket(role Role, subjectID int64, ticket *domain.Ticket) bool {
	if role == RoleAdmin {
		return true
	}
	return ticket.CreatedByID == subjectID
}

// Require is the explicit per-operation gate: it checks that the
// caller's claims carry the given role.
func Require(claims *auth.Claims, role Role) error {
	if claims == nil {
		return fmt.Errorf("%w: no claims", domain.ErrForbidden)
	}
	if Role(claims.Role) != role {
		return fmt.Errorf("%w: role %s required", domain.ErrForbidden, role)
	}
	return nil
}
