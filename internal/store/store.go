// Package store implements PostgreSQL-backed persistence for plans,
// tenants, employees, RH users and certificates, plus a Redis-cached usage
// counter view feeding entitlement resolution.
package store

import (
	"log/slog"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"
)

// Store bundles the per-aggregate stores over one connection pool.
type Store struct {
	Plans        *PlanStore
	Tenants      *TenantStore
	Employees    *EmployeeStore
	RHUsers      *RHUserStore
	Certificates *CertificateStore
	Usage        *UsageStore
}

// New wires the stores. The Redis client is optional; without it usage
// counters are read straight from PostgreSQL on every call.
func New(pool *pgxpool.Pool, cache redis.UniversalClient, log *slog.Logger) *Store {
	if pool == nil {
		panic("store: pgx pool is required")
	}
	if log == nil {
		log = slog.New(slog.DiscardHandler)
	}

	return &Store{
		Plans:        &PlanStore{pool: pool},
		Tenants:      &TenantStore{pool: pool},
		Employees:    &EmployeeStore{pool: pool},
		RHUsers:      &RHUserStore{pool: pool},
		Certificates: &CertificateStore{pool: pool},
		Usage:        NewUsageStore(pool, cache, log),
	}
}
