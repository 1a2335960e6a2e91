package tenant

import (
	"errors"
	"net/http"

	"github.com/google/uuid"
)

// HeaderTenantID is the request header carrying the tenant identifier.
const HeaderTenantID = "X-Tenant-ID"

// ErrorHandler writes an error response for a failed tenant resolution.
type ErrorHandler func(w http.ResponseWriter, r *http.Request, err error)

func defaultErrorHandler(w http.ResponseWriter, _ *http.Request, err error) {
	switch {
	case errors.Is(err, ErrMissingIdentifier), errors.Is(err, ErrInvalidIdentifier):
		http.Error(w, err.Error(), http.StatusBadRequest)
	case errors.Is(err, ErrTenantNotFound):
		http.Error(w, err.Error(), http.StatusNotFound)
	case errors.Is(err, ErrInactiveTenant), errors.Is(err, ErrNoTenantInContext):
		http.Error(w, err.Error(), http.StatusForbidden)
	default:
		http.Error(w, "internal server error", http.StatusInternalServerError)
	}
}

// Middleware resolves the X-Tenant-ID header through the provider and stores
// the tenant in the request context. Requests without the header pass
// through untouched so public routes can share the router; handlers that
// need a tenant mount RequireTenant after this.
func Middleware(provider Provider, errorHandler ErrorHandler) func(http.Handler) http.Handler {
	if errorHandler == nil {
		errorHandler = defaultErrorHandler
	}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			raw := r.Header.Get(HeaderTenantID)
			if raw == "" {
				next.ServeHTTP(w, r)
				return
			}

			id, err := uuid.Parse(raw)
			if err != nil || id == uuid.Nil {
				errorHandler(w, r, ErrInvalidIdentifier)
				return
			}

			t, err := provider.ByID(r.Context(), id)
			if err != nil {
				errorHandler(w, r, err)
				return
			}
			if !t.Active {
				errorHandler(w, r, ErrInactiveTenant)
				return
			}

			next.ServeHTTP(w, r.WithContext(WithTenant(r.Context(), t)))
		})
	}
}

// RequireTenant rejects requests that reached the handler without a
// resolved tenant.
func RequireTenant(errorHandler ErrorHandler) func(http.Handler) http.Handler {
	if errorHandler == nil {
		errorHandler = defaultErrorHandler
	}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if _, ok := FromContext(r.Context()); !ok {
				errorHandler(w, r, ErrNoTenantInContext)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
