package domain

// Role is the access tier of an account.
type Role string

const (
	RoleSuperAdmin Role = "SUPER_ADMIN"
	RoleAdmin      Role = "ADMIN"
	RoleUser       Role = "USER"
)

// roleRank defines the fixed ordering SUPER_ADMIN > ADMIN > USER.
// Unknown roles rank 0.
var roleRank = map[Role]int{
	RoleSuperAdmin: 3,
	RoleAdmin:      2,
	RoleUser:       1,
}

// ParseRole converts s into a Role and reports whether it is one of the three known roles.
func ParseRole(s string) (Role, bool) {
	r := Role(s)
	return r, r.IsValid()
}

// IsValid reports whether r is a known role.
func (r Role) IsValid() bool {
	_, ok := roleRank[r]
	return ok
}

// Outranks reports whether r is strictly above other in the hierarchy.
func (r Role) Outranks(other Role) bool {
	return roleRank[r] > roleRank[other]
}

// IsAtLeast reports whether r is min or above. Unknown roles never qualify.
func (r Role) IsAtLeast(min Role) bool {
	if !r.IsValid() || !min.IsValid() {
		return false
	}
	return roleRank[r] >= roleRank[min]
}

// CanManage reports whether an actor holding manager may act on an account holding target.
func CanManage(manager, target Role) bool {
	return manager.Outranks(target)
}
