package model

// Permission is a single capability flag. Flags combine with bitwise OR into
// a Role's permission mask. The set is fixed in this version.
type Permission int64

const (
	PermFollow   Permission = 1
	PermComment  Permission = 2
	PermWrite    Permission = 4
	PermModerate Permission = 8
	PermAdmin    Permission = 16
)

// Role is a named, flat permission set. There is no role hierarchy or
// composition; users reference exactly one role.
type Role struct {
	ID          int64
	Name        string // Unique
	Default     bool   // Exactly one role carries the default flag
	Permissions int64  // Bitmask over Permission flags
}

// HasPermission reports whether every bit of p is set in the role's mask.
func (r *Role) HasPermission(p Permission) bool {
	return r.Permissions&int64(p) == int64(p)
}

// AddPermission sets the bits of p. Adding an already-held flag is a no-op.
func (r *Role) AddPermission(p Permission) {
	r.Permissions |= int64(p)
}

// RemovePermission clears the bits of p. Removing an absent flag is a no-op.
func (r *Role) RemovePermission(p Permission) {
	r.Permissions &^= int64(p)
}

// ResetPermissions clears the mask.
func (r *Role) ResetPermissions() {
	r.Permissions = 0
}
