package entitlement

import "errors"

var (
	// ErrInvalidTenantID is returned when a tenant identifier fails the
	// UUID shape check or is the nil UUID placeholder.
	ErrInvalidTenantID = errors.New("invalid tenant identifier")

	// ErrPlanNotFound is returned by Catalog implementations when no
	// active plan exists for the requested id.
	ErrPlanNotFound = errors.New("entitlement plan not found")

	// ErrTenantNotFound is returned by TenantPlans implementations when
	// the tenant record does not exist at all. A tenant that exists but
	// has no plan assigned is not an error.
	ErrTenantNotFound = errors.New("tenant record not found")

	ErrInvalidResource          = errors.New("invalid entitlement resource")
	ErrInvalidPlanConfiguration = errors.New("invalid plan configuration")
	ErrFailedToLoadCatalog      = errors.New("failed to load plan catalog")
)
