package rbac

import (
	"context"
	"slices"
	"strings"
)

// Checker answers whether an operator role holds a permission. A grant
// ending in "*" covers every permission with that prefix.
type Checker struct {
	grants map[string][]string
}

// Default enforces RoleGrants and backs Require and RequireAny.
var Default = NewChecker(nil)

func NewChecker(grants map[string][]string) *Checker {
	if grants == nil {
		grants = RoleGrants
	}
	return &Checker{grants: grants}
}

func (c *Checker) Has(role, perm string) bool {
	return slices.ContainsFunc(c.grants[role], func(g string) bool { return covers(g, perm) })
}

func (c *Checker) Any(role string, perms ...string) bool {
	return slices.ContainsFunc(perms, func(p string) bool { return c.Has(role, p) })
}

// Granted lists the permissions from Perms that role holds, in Perms order.
// The login response reports it so an operator console can hide actions.
func (c *Checker) Granted(role string) []string {
	out := []string{}
	for _, p := range Perms {
		if c.Has(role, p) {
			out = append(out, p)
		}
	}
	return out
}

func covers(grant, perm string) bool {
	if prefix, ok := strings.CutSuffix(grant, "*"); ok {
		return strings.HasPrefix(perm, prefix)
	}
	return grant == perm
}

type roleKey struct{}

func WithRole(ctx context.Context, role string) context.Context {
	return context.WithValue(ctx, roleKey{}, role)
}

func RoleFromContext(ctx context.Context) string {
	role, _ := ctx.Value(roleKey{}).(string)
	return role
}
