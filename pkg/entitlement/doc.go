// Package entitlement resolves what a tenant is allowed to do under its
// current subscription plan: how many employees, ASO certificates, and RH
// users it may hold, and whether one more of each can be created right now.
//
// The package is the control plane for plan-based usage limits. It does not
// count anything itself: callers supply a UsageSnapshot taken at the moment
// of the call, and the resolver combines it with the tenant's plan caps.
//
// Key concepts:
//
//   - Plan: a catalog row defining per-resource caps and billing identity
//   - Cap: a per-resource ceiling, either bounded or Unlimited
//   - Resolver: turns (tenant id, usage) into a Result
//   - Cache: a TTL-bounded store of resolved limits, one entry per tenant
//   - Gate: a pure decision function over a Result for a single resource
//
// Failure modes never surface as errors to the caller. The resolver absorbs
// invalid identities, missing plans, and persistence failures into sentinel
// Result values distinguished by plan name, so UI code branches on result
// state instead of handling exceptions:
//
//	res := resolver.Resolve(ctx, tenantID, usage)
//	switch {
//	case res.NoAccess():
//		// render locked state
//	case res.PlanMissing(), res.Errored():
//		// render blocking, supportable error state
//	default:
//		d := entitlement.Decide(entitlement.ResourceEmployees, res)
//		if !d.Allowed() {
//			// show d.Reason() plus an upgrade path
//		}
//	}
//
// Basic wiring:
//
//	catalog, err := entitlement.LoadCatalogFile("plans.yml")
//	resolver := entitlement.NewResolver(tenants, catalog,
//		entitlement.WithCache(entitlement.NewMemoryCache(ctx)),
//		entitlement.WithTTL(10*time.Minute),
//		entitlement.WithDefaultPlanID("free"),
//	)
//
// Cached limits are reused within the TTL window, but permission flags are
// always recomputed against the usage supplied to the current call, because
// usage changes far more often than the plan. A plan id hint placed in the
// context with WithPlanHint forces a refetch when it disagrees with the
// cached entry, so a tenant that just changed plans never sees stale caps
// for the remainder of the TTL window.
//
// The cache is an injectable per-resolver instance with no cross-process
// coherence guarantee; two concurrent sessions for the same tenant may
// briefly disagree. That is a documented limitation, not a bug.
package entitlement
