package entitlement

// Resource identifies a countable tenant resource metered against the plan.
type Resource string

const (
	ResourceEmployees    Resource = "employees"
	ResourceCertificates Resource = "certificates"
	ResourceRHUsers      Resource = "rh_users"
)

// Resources lists every metered resource in a stable order.
var Resources = []Resource{ResourceEmployees, ResourceCertificates, ResourceRHUsers}

// Valid reports whether the resource is one of the metered kinds.
func (r Resource) Valid() bool {
	switch r {
	case ResourceEmployees, ResourceCertificates, ResourceRHUsers:
		return true
	}
	return false
}

// Cap is a per-resource ceiling: either a finite bound or Unlimited.
// The -1 sentinel keeps the value SQL- and JSON-friendly while the methods
// keep the unlimited special case in one place instead of ad hoc booleans.
type Cap int64

// Unlimited indicates no limit for a resource.
const Unlimited Cap = -1

// IsUnlimited reports whether the cap imposes no ceiling.
func (c Cap) IsUnlimited() bool { return c < 0 }

// Allows reports whether one more unit may be created at the given usage.
func (c Cap) Allows(used int64) bool {
	return c.IsUnlimited() || used < int64(c)
}

// Exceeds reports whether c is a strictly looser cap than other.
// Unlimited exceeds every bounded cap.
func (c Cap) Exceeds(other Cap) bool {
	if c.IsUnlimited() {
		return !other.IsUnlimited()
	}
	if other.IsUnlimited() {
		return false
	}
	return c > other
}

// Limits holds the resolved caps for all metered resources.
type Limits struct {
	Employees    Cap `json:"employees"`
	Certificates Cap `json:"certificates"`
	RHUsers      Cap `json:"rh_users"`
}

// Cap returns the ceiling for a single resource. Unknown resources get a
// zero cap, which never allows creation.
func (l Limits) Cap(res Resource) Cap {
	switch res {
	case ResourceEmployees:
		return l.Employees
	case ResourceCertificates:
		return l.Certificates
	case ResourceRHUsers:
		return l.RHUsers
	}
	return 0
}

// UsageSnapshot carries the caller-supplied resource counts for the instant
// of a resolution call. The resolver treats the counts as authoritative and
// takes no locks against concurrent mutation elsewhere.
type UsageSnapshot struct {
	Employees    int64 `json:"employees"`
	Certificates int64 `json:"certificates"`
	RHUsers      int64 `json:"rh_users"`
}

// Count returns the snapshot value for a single resource.
func (u UsageSnapshot) Count(res Resource) int64 {
	switch res {
	case ResourceEmployees:
		return u.Employees
	case ResourceCertificates:
		return u.Certificates
	case ResourceRHUsers:
		return u.RHUsers
	}
	return 0
}

// Sentinel plan names for the distinguished Result shapes. Consumers branch
// on these instead of catching errors.
const (
	PlanNameNoAccess = "no access"
	PlanNameNotFound = "plan not found"
	PlanNameError    = "error"
)

// Result is the outcome of a single entitlement resolution. It is ephemeral
// and recomputed per call; only the limits portion may come from cache.
type Result struct {
	PlanID   string        `json:"plan_id"`
	PlanName string        `json:"plan_name"`
	Limits   Limits        `json:"limits"`
	Usage    UsageSnapshot `json:"usage"`

	CanAddEmployee    bool `json:"can_add_employee"`
	CanAddCertificate bool `json:"can_add_certificate"`
	CanAddRHUser      bool `json:"can_add_rh_user"`
}

// Can reports the permission flag for a single resource.
func (r Result) Can(res Resource) bool {
	switch res {
	case ResourceEmployees:
		return r.CanAddEmployee
	case ResourceCertificates:
		return r.CanAddCertificate
	case ResourceRHUsers:
		return r.CanAddRHUser
	}
	return false
}

// NoAccess reports the unauthenticated / invalid-identity sentinel.
func (r Result) NoAccess() bool { return r.PlanName == PlanNameNoAccess }

// PlanMissing reports the missing-or-inactive-plan sentinel.
func (r Result) PlanMissing() bool { return r.PlanName == PlanNameNotFound }

// Errored reports the persistence-failure sentinel.
func (r Result) Errored() bool { return r.PlanName == PlanNameError }

// Blocked reports whether the result is any of the sentinel shapes, in which
// case every permission flag is false and all limits are zero.
func (r Result) Blocked() bool {
	return r.NoAccess() || r.PlanMissing() || r.Errored()
}

// resultFor computes the permission flags for the given limits and usage.
// The invariant canAddX == capX.Allows(usageX) holds for every resolution,
// cached or fresh.
func resultFor(planID, planName string, limits Limits, usage UsageSnapshot) Result {
	return Result{
		PlanID:            planID,
		PlanName:          planName,
		Limits:            limits,
		Usage:             usage,
		CanAddEmployee:    limits.Employees.Allows(usage.Employees),
		CanAddCertificate: limits.Certificates.Allows(usage.Certificates),
		CanAddRHUser:      limits.RHUsers.Allows(usage.RHUsers),
	}
}

// sentinelResult builds one of the distinguished blocked shapes: zero limits,
// no permissions, usage echoed back for display.
func sentinelResult(planName string, usage UsageSnapshot) Result {
	return Result{
		PlanName: planName,
		Usage:    usage,
	}
}
