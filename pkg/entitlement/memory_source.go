package entitlement

import (
	"context"
	"maps"
	"sync"

	"github.com/google/uuid"
)

// MemoryCatalog is an in-memory Catalog. Plans are deep-copied on the way
// in and out so callers cannot mutate shared state.
type MemoryCatalog struct {
	mu    sync.RWMutex
	plans map[string]Plan
}

// NewMemoryCatalog builds a catalog from the given plans, keyed by id.
func NewMemoryCatalog(plans ...Plan) *MemoryCatalog {
	byID := make(map[string]Plan, len(plans))
	for _, plan := range plans {
		plan.Caps = maps.Clone(plan.Caps)
		byID[plan.ID] = plan
	}
	return &MemoryCatalog{plans: byID}
}

func (c *MemoryCatalog) ActivePlan(_ context.Context, planID string) (*Plan, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	plan, ok := c.plans[planID]
	if !ok || !plan.Active {
		return nil, ErrPlanNotFound
	}
	plan.Caps = maps.Clone(plan.Caps)
	return &plan, nil
}

func (c *MemoryCatalog) ActivePlans(_ context.Context) ([]Plan, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	out := make([]Plan, 0, len(c.plans))
	for _, plan := range c.plans {
		if !plan.Active {
			continue
		}
		plan.Caps = maps.Clone(plan.Caps)
		out = append(out, plan)
	}
	return out, nil
}

// Plans returns every plan including inactive ones, for catalog seeding.
func (c *MemoryCatalog) Plans() []Plan {
	c.mu.RLock()
	defer c.mu.RUnlock()

	out := make([]Plan, 0, len(c.plans))
	for _, plan := range c.plans {
		plan.Caps = maps.Clone(plan.Caps)
		out = append(out, plan)
	}
	return out
}

// Upsert adds or replaces a plan. Intended for tests and seeding.
func (c *MemoryCatalog) Upsert(plan Plan) {
	c.mu.Lock()
	plan.Caps = maps.Clone(plan.Caps)
	c.plans[plan.ID] = plan
	c.mu.Unlock()
}

// MemoryTenantPlans is an in-memory TenantPlans store, primarily for tests.
type MemoryTenantPlans struct {
	mu    sync.RWMutex
	plans map[uuid.UUID]string
}

func NewMemoryTenantPlans() *MemoryTenantPlans {
	return &MemoryTenantPlans{plans: make(map[uuid.UUID]string)}
}

func (s *MemoryTenantPlans) PlanID(_ context.Context, tenantID uuid.UUID) (string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	planID, ok := s.plans[tenantID]
	if !ok {
		return "", ErrTenantNotFound
	}
	return planID, nil
}

// SetPlanID assigns a plan to a tenant.
func (s *MemoryTenantPlans) SetPlanID(_ context.Context, tenantID uuid.UUID, planID string) error {
	s.mu.Lock()
	s.plans[tenantID] = planID
	s.mu.Unlock()
	return nil
}
