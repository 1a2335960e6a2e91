package store

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"

	"github.com/asoflow/asoflow/pkg/entitlement"
)

// usageCacheTTL keeps the counters hot enough for bursty dashboard
// traffic while staying short so limit checks never lag a write by much.
const usageCacheTTL = 30 * time.Second

// UsageStore computes per-tenant usage counters for entitlement checks.
// Counts come from PostgreSQL; a short-TTL Redis cache absorbs repeated
// reads. Cache failures degrade to direct counting, never to an error.
type UsageStore struct {
	pool  *pgxpool.Pool
	cache redis.UniversalClient
	log   *slog.Logger
}

// NewUsageStore builds the usage view. cache may be nil.
func NewUsageStore(pool *pgxpool.Pool, cache redis.UniversalClient, log *slog.Logger) *UsageStore {
	if log == nil {
		log = slog.New(slog.DiscardHandler)
	}
	return &UsageStore{pool: pool, cache: cache, log: log}
}

func usageKey(tenantID uuid.UUID) string {
	return "usage:" + tenantID.String()
}

// Snapshot returns the tenant's current usage counters.
func (s *UsageStore) Snapshot(ctx context.Context, tenantID uuid.UUID) (entitlement.UsageSnapshot, error) {
	if snap, ok := s.cached(ctx, tenantID); ok {
		return snap, nil
	}

	snap, err := s.count(ctx, tenantID)
	if err != nil {
		return entitlement.UsageSnapshot{}, err
	}
	s.store(ctx, tenantID, snap)
	return snap, nil
}

// Invalidate drops the cached counters. Call after any write that changes
// a count so the next limit check sees it.
func (s *UsageStore) Invalidate(ctx context.Context, tenantID uuid.UUID) {
	if s.cache == nil {
		return
	}
	if err := s.cache.Del(ctx, usageKey(tenantID)).Err(); err != nil {
		s.log.WarnContext(ctx, "failed to invalidate usage cache",
			"tenant_id", tenantID, "error", err)
	}
}

func (s *UsageStore) count(ctx context.Context, tenantID uuid.UUID) (entitlement.UsageSnapshot, error) {
	var snap entitlement.UsageSnapshot
	err := s.pool.QueryRow(ctx, `
		SELECT
			(SELECT count(*) FROM employees WHERE tenant_id = $1 AND active),
			(SELECT count(*) FROM certificates WHERE tenant_id = $1),
			(SELECT count(*) FROM rh_users WHERE tenant_id = $1 AND active)`,
		tenantID).
		Scan(&snap.Employees, &snap.Certificates, &snap.RHUsers)
	if err != nil {
		return snap, fmt.Errorf("count usage: %w", err)
	}
	return snap, nil
}

func (s *UsageStore) cached(ctx context.Context, tenantID uuid.UUID) (entitlement.UsageSnapshot, bool) {
	if s.cache == nil {
		return entitlement.UsageSnapshot{}, false
	}

	vals, err := s.cache.HGetAll(ctx, usageKey(tenantID)).Result()
	if err != nil {
		s.log.WarnContext(ctx, "usage cache read failed", "tenant_id", tenantID, "error", err)
		return entitlement.UsageSnapshot{}, false
	}
	if len(vals) == 0 {
		return entitlement.UsageSnapshot{}, false
	}

	var snap entitlement.UsageSnapshot
	if _, err := fmt.Sscan(vals["employees"], &snap.Employees); err != nil {
		return entitlement.UsageSnapshot{}, false
	}
	if _, err := fmt.Sscan(vals["certificates"], &snap.Certificates); err != nil {
		return entitlement.UsageSnapshot{}, false
	}
	if _, err := fmt.Sscan(vals["rh_users"], &snap.RHUsers); err != nil {
		return entitlement.UsageSnapshot{}, false
	}
	return snap, true
}

func (s *UsageStore) store(ctx context.Context, tenantID uuid.UUID, snap entitlement.UsageSnapshot) {
	if s.cache == nil {
		return
	}

	key := usageKey(tenantID)
	pipe := s.cache.TxPipeline()
	pipe.HSet(ctx, key,
		"employees", snap.Employees,
		"certificates", snap.Certificates,
		"rh_users", snap.RHUsers,
	)
	pipe.Expire(ctx, key, usageCacheTTL)
	if _, err := pipe.Exec(ctx); err != nil {
		s.log.WarnContext(ctx, "usage cache write failed", "tenant_id", tenantID, "error", err)
	}
}
