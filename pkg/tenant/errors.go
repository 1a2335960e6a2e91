package tenant

import "errors"

var (
	// ErrTenantNotFound is returned when no tenant matches the identifier.
	ErrTenantNotFound = errors.New("tenant not found")

	// ErrInvalidIdentifier is returned when the identifier is not a UUID.
	ErrInvalidIdentifier = errors.New("invalid tenant identifier")

	// ErrMissingIdentifier is returned when a request carries no tenant header.
	ErrMissingIdentifier = errors.New("missing tenant identifier")

	// ErrInactiveTenant is returned for deactivated accounts.
	ErrInactiveTenant = errors.New("tenant is inactive")

	// ErrNoTenantInContext is returned when a handler requires a tenant but
	// none was resolved for the request.
	ErrNoTenantInContext = errors.New("no tenant in context")
)
