package entitlement

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"
)

// Defaults for resolver configuration. The default plan id is a named,
// documented constant rather than a literal buried in resolution logic:
// tenants with no explicit assignment resolve against the free tier.
const (
	DefaultPlanID       = "free"
	DefaultTTL          = 10 * time.Minute
	DefaultQueryTimeout = 5 * time.Second
)

// TenantPlans looks up the tenant record's current plan assignment.
type TenantPlans interface {
	// PlanID returns the plan assigned to the tenant. An empty string
	// means the tenant exists but has no plan assigned; both that and
	// ErrTenantNotFound are valid, non-fatal outcomes.
	PlanID(ctx context.Context, tenantID uuid.UUID) (string, error)
}

// Catalog loads plan definitions.
type Catalog interface {
	// ActivePlan returns the plan for id if it exists and is active.
	// Returns ErrPlanNotFound otherwise; inactive plans must never be
	// resolved as a tenant's current plan.
	ActivePlan(ctx context.Context, planID string) (*Plan, error)

	// ActivePlans returns every active plan, for upgrade-offer listings.
	ActivePlans(ctx context.Context) ([]Plan, error)
}

// Resolver turns a tenant identity plus a usage snapshot into a Result.
// All failure kinds are absorbed at this boundary and converted into
// sentinel Result shapes; Resolve never returns an error.
type Resolver struct {
	tenants       TenantPlans
	catalog       Catalog
	cache         Cache
	ttl           time.Duration
	defaultPlanID string
	queryTimeout  time.Duration
	log           *slog.Logger

	// Latest-request-wins guard: a resolution may only write its entry to
	// the cache if no newer resolution for the same tenant started while
	// it was suspended on persistence.
	mu   sync.Mutex
	gens map[uuid.UUID]uint64
}

// NewResolver creates a Resolver over the given tenant-record and catalog
// stores. Panics if either store is nil to fail fast on miswiring.
func NewResolver(tenants TenantPlans, catalog Catalog, opts ...Option) *Resolver {
	if tenants == nil {
		panic("entitlement: TenantPlans store is required")
	}
	if catalog == nil {
		panic("entitlement: Catalog is required")
	}

	r := &Resolver{
		tenants:       tenants,
		catalog:       catalog,
		cache:         NewNoopCache(),
		ttl:           DefaultTTL,
		defaultPlanID: DefaultPlanID,
		queryTimeout:  DefaultQueryTimeout,
		log:           slog.New(slog.DiscardHandler),
		gens:          make(map[uuid.UUID]uint64),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Resolve computes the tenant's current entitlements against the supplied
// usage snapshot.
//
// Invalid identities short-circuit to the no-access result with zero I/O.
// On a fresh cache hit the cached limits are reused but permission flags are
// recomputed against the usage argument. On a miss the tenant record is read
// first, then the plan, strictly in that order; missing assignments fall
// back to the configured default plan id, missing or inactive plans yield
// the plan-not-found result, and persistence failures or timeouts yield the
// error result.
func (r *Resolver) Resolve(ctx context.Context, tenantID string, usage UsageSnapshot) Result {
	id, err := ParseTenantID(tenantID)
	if err != nil {
		return sentinelResult(PlanNameNoAccess, usage)
	}
	key := id.String()

	if entry, ok := r.cache.Get(ctx, key); ok && r.fresh(ctx, entry) {
		return resultFor(entry.PlanID, entry.PlanName, entry.Limits, usage)
	}

	gen := r.beginResolution(id)

	planID, err := r.tenantPlanID(ctx, id)
	if err != nil {
		r.log.ErrorContext(ctx, "tenant plan lookup failed", "tenant_id", key, "error", err)
		return sentinelResult(PlanNameError, usage)
	}
	if planID == "" {
		planID = r.defaultPlanID
	}

	plan, err := r.activePlan(ctx, planID)
	switch {
	case errors.Is(err, ErrPlanNotFound):
		r.log.WarnContext(ctx, "tenant references missing or inactive plan",
			"tenant_id", key, "plan_id", planID)
		return sentinelResult(PlanNameNotFound, usage)
	case err != nil:
		r.log.ErrorContext(ctx, "plan catalog lookup failed",
			"tenant_id", key, "plan_id", planID, "error", err)
		return sentinelResult(PlanNameError, usage)
	}

	entry := &Entry{
		PlanID:     plan.ID,
		PlanName:   plan.Name,
		Limits:     plan.Limits(),
		ResolvedAt: time.Now().UTC(),
	}
	// Only the most recently started resolution may publish its entry;
	// a slow response must not overwrite a fresher one.
	if r.isLatest(id, gen) {
		r.cache.Set(ctx, key, entry, r.ttl)
	}

	return resultFor(entry.PlanID, entry.PlanName, entry.Limits, usage)
}

// Invalidate drops the cached entry for a tenant. Call after any plan
// change so the next resolution reflects the new caps immediately instead
// of waiting out the TTL. Bumping the generation counter also retires any
// resolution already in flight, so one suspended on a pre-change tenant
// read cannot republish the old plan after the delete.
func (r *Resolver) Invalidate(ctx context.Context, tenantID uuid.UUID) {
	r.mu.Lock()
	r.gens[tenantID]++
	r.mu.Unlock()
	r.cache.Delete(ctx, tenantID.String())
}

// fresh applies the plan-tag invalidation rule on top of the cache's own
// TTL check: an entry whose plan id disagrees with a caller-supplied hint
// is stale regardless of age.
func (r *Resolver) fresh(ctx context.Context, entry *Entry) bool {
	if hint, ok := PlanHintFromContext(ctx); ok && hint != entry.PlanID {
		return false
	}
	return true
}

func (r *Resolver) tenantPlanID(ctx context.Context, id uuid.UUID) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, r.queryTimeout)
	defer cancel()

	planID, err := r.tenants.PlanID(ctx, id)
	if errors.Is(err, ErrTenantNotFound) {
		// Not-found and no-plan-assigned are both valid outcomes.
		return "", nil
	}
	return planID, err
}

func (r *Resolver) activePlan(ctx context.Context, planID string) (*Plan, error) {
	ctx, cancel := context.WithTimeout(ctx, r.queryTimeout)
	defer cancel()
	return r.catalog.ActivePlan(ctx, planID)
}

func (r *Resolver) beginResolution(id uuid.UUID) uint64 {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.gens[id]++
	return r.gens[id]
}

func (r *Resolver) isLatest(id uuid.UUID, gen uint64) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.gens[id] == gen
}
