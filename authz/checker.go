package authz

// Checker answers whether subject holds permission. In audiodesk the
// subject is a role name from the session token.
type Checker interface {
	HasPermission(subject string, permission string) bool
}

// CheckerFunc is an adapter to use ordinary functions as Checker.
type CheckerFunc func(subject string, permission string) bool

// HasPermission implements Checker.
func (f CheckerFunc) HasPermission(subject string, permission string) bool {
	return f(subject, permission)
}

// MapChecker is an in-memory Checker backed by role to pattern lists.
type MapChecker struct {
	permissions map[string][]string
}

// NewMapChecker creates a Checker from a static role table, for example
// DefaultRolePermissions or the auth.roles section of the config.
func NewMapChecker(permissions map[string][]string) *MapChecker {
	return &MapChecker{permissions: permissions}
}

// HasPermission implements Checker.
func (c *MapChecker) HasPermission(subject string, required string) bool {
	patterns, ok := c.permissions[subject]
	if !ok {
		return false
	}
	return MatchAny(patterns, required)
}
