package tenant

import (
	"context"
	"log/slog"

	"github.com/google/uuid"
)

type contextKey struct{}

// WithTenant stores the tenant in the context.
func WithTenant(ctx context.Context, t *Tenant) context.Context {
	return context.WithValue(ctx, contextKey{}, t)
}

// FromContext returns the tenant stored in the context, if any.
func FromContext(ctx context.Context) (*Tenant, bool) {
	t, ok := ctx.Value(contextKey{}).(*Tenant)
	return t, ok && t != nil
}

// IDFromContext returns just the tenant id from the context.
func IDFromContext(ctx context.Context) (uuid.UUID, bool) {
	t, ok := FromContext(ctx)
	if !ok {
		return uuid.Nil, false
	}
	return t.ID, true
}

// MustFromContext returns the tenant or panics. Only for handlers mounted
// behind RequireTenant.
func MustFromContext(ctx context.Context) *Tenant {
	t, ok := FromContext(ctx)
	if !ok {
		panic("tenant: no tenant in context")
	}
	return t
}

// LoggerExtractor adapts the context tenant to a logger attribute so every
// request-scoped log record carries tenant_id.
func LoggerExtractor() func(ctx context.Context) (slog.Attr, bool) {
	return func(ctx context.Context) (slog.Attr, bool) {
		if id, ok := IDFromContext(ctx); ok {
			return slog.String("tenant_id", id.String()), true
		}
		return slog.Attr{}, false
	}
}
