package security

import (
	"errors"
	"testing"

	"github.com/yourorg/helpdesk/internal/domain"
	"github.com/yourorg/helpdesk/internal/security/auth"
)

func TestHasPermission(t *testing.T) {
	as := NewAuthorizationService(nil)

	cases := []struct {
		role Role
		perm Permission
		want bool
	}{
		{RoleAdmin, PermViewAllTickets, true},
		{RoleAdmin, PermUpdateTicketStatus, true},
		{RoleSupport, PermCreateTicket, true},
		{RoleSupport, PermViewOwnTickets, true},
		{RoleSupport, PermViewAllTickets, false},
		{RoleSupport, PermUpdateTicketStatus, false},
		{Role("Intruder"), PermCreateTicket, false},
	}

	for _, tc := range cases {
		if got := as.HasPermission(tc.role, tc.perm); got != tc.want {
			t.Errorf("HasPermission(%s, %s) = %v, want %v", tc.role, tc.perm, got, tc.want)
		}
	}
}

func TestValidatePermissionReturnsForbidden(t *testing.T) {
	as := NewAuthorizationService(nil)

	if err := as.ValidatePermission(RoleAdmin, PermUpdateTicketStatus); err != nil {
		t.Fatalf("expected admin to update status, got %v", err)
	}

	err := as.ValidatePermission(RoleSupport, PermUpdateTicketStatus)
	if !errors.Is(err, domain.ErrForbidden) {
		t.Fatalf("expected ErrForbidden, got %v", err)
	}
}

func TestCanAccessTicket(t *testing.T) {
	as := NewAuthorizationService(nil)
	ticket := &domain.Ticket{ID: 10, CreatedByID: 1}

	if !as.CanAccessTicket(RoleAdmin, 99, ticket) {
		t.Fatalf("admin should access any ticket")
	}
	if !as.CanAccessTicket(RoleSupport, 1, ticket) {
		t.Fatalf("owner should access own ticket")
	}
	if as.CanAccessTicket(RoleSupport, 2, ticket) {
		t.Fatalf("non-owner support should be denied")
	}
}

func TestRequire(t *testing.T) {
	admin := &auth.Claims{Role: string(RoleAdmin)}
	support := &auth.Claims{Role: string(RoleSupport)}

	if err := Require(admin, RoleAdmin); err != nil {
		t.Fatalf("expected admin to pass: %v", err)
	}
	if err := Require(support, RoleAdmin); !errors.Is(err, domain.ErrForbidden) {
		t.Fatalf("expected ErrForbidden, got %v", err)
	}
	if err := Require(nil, RoleAdmin); !errors.Is(err, domain.ErrForbidden) {
		t.Fatalf("expected ErrForbidden for nil claims, got %v", err)
	}
}
