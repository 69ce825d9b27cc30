package tenant

import (
	"context"
	"errors"
)

type contextKey string

const tenantContextKey contextKey = "tenant"

// ErrNoTenant is returned when a request context carries no tenant.
var ErrNoTenant = errors.New("no tenant in context")

// Context identifies the authenticated agency and user on a request.
// Every data access takes this explicitly; there is no ambient tenant.
type Context struct {
	AgencyID string
	UserID   string
	Email    string
	Role     string
}

// WithContext returns a new context carrying the tenant
func WithContext(ctx context.Context, tc *Context) context.Context {
	return context.WithValue(ctx, tenantContextKey, tc)
}

// FromContext extracts the tenant from context
func FromContext(ctx context.Context) (*Context, error) {
	tc, ok := ctx.Value(tenantContextKey).(*Context)
	if !ok || tc == nil {
		return nil, ErrNoTenant
	}
	return tc, nil
}

// MustFromContext extracts the tenant or panics. Only for use behind
// the authentication middleware.
func MustFromContext(ctx context.Context) *Context {
	tc, err := FromContext(ctx)
	if err != nil {
		panic(err)
	}
	return tc
}
