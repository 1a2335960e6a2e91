package entitlement

import "context"

type planHintCtxKey struct{}

// WithPlanHint records the plan id the caller believes the tenant is on,
// typically taken from a session claim written at login or checkout time.
// When a cached entry disagrees with the hint the resolver treats the entry
// as stale even inside the TTL window, so a tenant who just changed plans
// never keeps the old caps for the rest of the window.
func WithPlanHint(ctx context.Context, planID string) context.Context {
	return context.WithValue(ctx, planHintCtxKey{}, planID)
}

// PlanHintFromContext retrieves the plan id hint, if any.
func PlanHintFromContext(ctx context.Context) (string, bool) {
	planID, ok := ctx.Value(planHintCtxKey{}).(string)
	return planID, ok
}
