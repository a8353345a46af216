package shifts

import (
	"fmt"
	"strings"

	"github.com/mamadbah2/shiftdesk/internal/domain/models"
)

// Role is the authenticated caller's role as carried by the bearer token.
type Role string

const (
	RoleCashier Role = "cashier"
	RoleManager Role = "manager"
	RoleOwner   Role = "owner"
)

// ParseRole maps a token claim onto a Role. Unknown values fall back to
// cashier, the least privileged role.
func ParseRole(raw string) Role {
	switch Role(strings.ToLower(strings.TrimSpace(raw))) {
	case RoleManager:
		return RoleManager
	case RoleOwner:
		return RoleOwner
	default:
		return RoleCashier
	}
}

// Actor is whoever performs an operation.
type Actor struct {
	ID   string
	Role Role
}

// Supervises reports whether the actor may act on other operators' shifts.
func (a Actor) Supervises() bool {
	return a.Role == RoleManager || a.Role == RoleOwner
}

// authorize checks that actor may act for operatorID.
func authorize(actor Actor, operatorID string) error {
	if actor.ID == "" {
		return fmt.Errorf("anonymous actor: %w", models.ErrPermissionDenied)
	}
	if actor.ID == operatorID || actor.Supervises() {
		return nil
	}
	return fmt.Errorf("%s may not act for operator %s: %w", actor.ID, operatorID, models.ErrPermissionDenied)
}
