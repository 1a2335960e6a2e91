package store

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/asoflow/asoflow/pkg/entitlement"
	"github.com/asoflow/asoflow/pkg/pg"
	"github.com/asoflow/asoflow/pkg/tenant"
)

// ErrDuplicateCNPJ is returned when registering a company whose CNPJ is
// already taken.
var ErrDuplicateCNPJ = errors.New("cnpj already registered")

// TenantStore persists company accounts. It satisfies entitlement.TenantPlans
// for resolution, tenant.Provider for request middleware and the billing
// service's plan writer.
type TenantStore struct {
	pool *pgxpool.Pool
}

// PlanID returns the tenant's plan assignment. Empty string means the
// tenant exists but no plan was assigned yet.
func (s *TenantStore) PlanID(ctx context.Context, tenantID uuid.UUID) (string, error) {
	var planID string
	err := s.pool.QueryRow(ctx,
		`SELECT plan_id FROM tenants WHERE id = $1`, tenantID).Scan(&planID)
	if pg.IsNotFound(err) {
		return "", entitlement.ErrTenantNotFound
	}
	if err != nil {
		return "", fmt.Errorf("query tenant plan: %w", err)
	}
	return planID, nil
}

// SetPlanID writes the tenant's plan assignment.
func (s *TenantStore) SetPlanID(ctx context.Context, tenantID uuid.UUID, planID string) error {
	tag, err := s.pool.Exec(ctx,
		`UPDATE tenants SET plan_id = $2, updated_at = now() WHERE id = $1`,
		tenantID, planID)
	if err != nil {
		return fmt.Errorf("update tenant plan: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return entitlement.ErrTenantNotFound
	}
	return nil
}

// ByID loads the tenant record for request middleware.
func (s *TenantStore) ByID(ctx context.Context, id uuid.UUID) (*tenant.Tenant, error) {
	var t tenant.Tenant
	err := s.pool.QueryRow(ctx,
		`SELECT id, name, cnpj, email, plan_id, active, created_at
		 FROM tenants WHERE id = $1`, id).
		Scan(&t.ID, &t.Name, &t.CNPJ, &t.Email, &t.PlanID, &t.Active, &t.CreatedAt)
	if pg.IsNotFound(err) {
		return nil, tenant.ErrTenantNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("query tenant: %w", err)
	}
	return &t, nil
}

// Create registers a company account.
func (s *TenantStore) Create(ctx context.Context, t *tenant.Tenant) error {
	if t.ID == uuid.Nil {
		t.ID = uuid.New()
	}
	err := s.pool.QueryRow(ctx, `
		INSERT INTO tenants (id, name, cnpj, email, plan_id, active)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING created_at`,
		t.ID, t.Name, t.CNPJ, t.Email, t.PlanID, t.Active).
		Scan(&t.CreatedAt)
	if pg.IsUniqueViolation(err) {
		return ErrDuplicateCNPJ
	}
	if err != nil {
		return fmt.Errorf("insert tenant: %w", err)
	}
	return nil
}
