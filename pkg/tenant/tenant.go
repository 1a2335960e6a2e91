// Package tenant carries the requesting company through the request
// lifecycle: middleware resolves the X-Tenant-ID header to a tenant record
// and stores it in the context for handlers and the logger.
package tenant

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// Tenant is a company account: an employer whose occupational health
// certificates the platform manages.
type Tenant struct {
	ID        uuid.UUID `json:"id"`
	Name      string    `json:"name"`
	CNPJ      string    `json:"cnpj"`
	Email     string    `json:"email"`
	PlanID    string    `json:"plan_id"`
	Active    bool      `json:"active"`
	CreatedAt time.Time `json:"created_at"`
}

// Provider loads tenant records from storage.
type Provider interface {
	// ByID returns the tenant with the given id, or ErrTenantNotFound.
	ByID(ctx context.Context, id uuid.UUID) (*Tenant, error)
}
