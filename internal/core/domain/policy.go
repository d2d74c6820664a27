package domain

import "fmt"

// Actor is the authenticated caller of a lifecycle operation.
type Actor struct {
	ID   string
	Role Role
}

// IsSelf reports whether accountID is the actor's own account.
func (a Actor) IsSelf(accountID string) bool {
	return a.ID != "" && a.ID == accountID
}

// RequireSuperAdmin gates registration and promote/demote.
func RequireSuperAdmin(actor Actor) error {
	if actor.Role != RoleSuperAdmin {
		return ErrForbidden
	}
	return nil
}

// RequireAdministrator gates operations open to SUPER_ADMIN and ADMIN.
func RequireAdministrator(actor Actor) error {
	if !actor.Role.IsAtLeast(RoleAdmin) {
		return ErrForbidden
	}
	return nil
}

// CanRead reports whether actor may view the account identified by targetID.
func CanRead(actor Actor, targetID string) error {
	if actor.IsSelf(targetID) {
		return nil
	}
	return RequireAdministrator(actor)
}

// AssignableRole resolves the role requested for an administratively created account.
// An empty value defaults to USER; SUPER_ADMIN cannot be assigned.
func AssignableRole(requested string) (Role, error) {
	if requested == "" {
		return RoleUser, nil
	}
	r, ok := ParseRole(requested)
	if !ok || r == RoleSuperAdmin {
		return "", fmt.Errorf("%w: invalid role, only USER or ADMIN roles can be assigned", ErrValidation)
	}
	return r, nil
}

// CheckRoleChange validates moving target to role to. Only USER <-> ADMIN is allowed.
func CheckRoleChange(target *Account, to Role) error {
	if target.Role == RoleSuperAdmin {
		return ErrImmutable
	}
	if to != RoleAdmin && to != RoleUser {
		return fmt.Errorf("%w: role %q cannot be assigned", ErrValidation, to)
	}
	if target.Role == to {
		return fmt.Errorf("%w: user already has %s role", ErrNoOp, to)
	}
	return nil
}

// CheckDestructive validates deactivate and delete: the super admin is protected
// and nobody may target their own account.
func CheckDestructive(actor Actor, target *Account) error {
	if target.Role == RoleSuperAdmin {
		return ErrImmutable
	}
	if actor.IsSelf(target.ID) {
		return ErrSelfTarget
	}
	return nil
}
