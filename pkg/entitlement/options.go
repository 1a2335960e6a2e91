package entitlement

import (
	"log/slog"
	"time"
)

// Option configures a Resolver.
type Option func(*Resolver)

// WithCache sets the cache instance. The default is a no-op cache so
// callers opt in to caching explicitly; there is no shared global cache.
func WithCache(cache Cache) Option {
	return func(r *Resolver) {
		if cache != nil {
			r.cache = cache
		}
	}
}

// WithTTL sets the freshness window for cached entries.
func WithTTL(ttl time.Duration) Option {
	return func(r *Resolver) {
		if ttl > 0 {
			r.ttl = ttl
		}
	}
}

// WithDefaultPlanID sets the plan assumed for tenants with no explicit
// assignment. Defaults to DefaultPlanID.
func WithDefaultPlanID(planID string) Option {
	return func(r *Resolver) {
		if planID != "" {
			r.defaultPlanID = planID
		}
	}
}

// WithQueryTimeout bounds each persistence query. A query that does not
// complete in time is treated as a failure, not left pending.
func WithQueryTimeout(d time.Duration) Option {
	return func(r *Resolver) {
		if d > 0 {
			r.queryTimeout = d
		}
	}
}

// WithLogger sets the logger used for operability logging at the resolver
// boundary. Failures are logged here and never re-thrown to callers.
func WithLogger(log *slog.Logger) Option {
	return func(r *Resolver) {
		if log != nil {
			r.log = log
		}
	}
}
