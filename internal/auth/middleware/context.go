package auth

import (
	"context"

	"github.com/mind-engage/mindengage-quiz/internal/rbac"
)

// Principal is the operator a request was authenticated as.
type Principal struct {
	Subject string
	Role    string
}

type principalKey struct{}

// WithPrincipal stores p and mirrors its role for the rbac middleware.
func WithPrincipal(ctx context.Context, p Principal) context.Context {
	ctx = context.WithValue(ctx, principalKey{}, p)
	return rbac.WithRole(ctx, p.Role)
}

func PrincipalFromContext(ctx context.Context) (Principal, bool) {
	p, ok := ctx.Value(principalKey{}).(Principal)
	return p, ok
}

// Actor names who is acting for audit logs and events.
func Actor(ctx context.Context) string {
	if p, ok := PrincipalFromContext(ctx); ok && p.Subject != "" {
		return p.Subject
	}
	return "anonymous"
}
