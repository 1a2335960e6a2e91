package store

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/asoflow/asoflow/pkg/entitlement"
	"github.com/asoflow/asoflow/pkg/pg"
)

// PlanStore reads the plan catalog. It satisfies entitlement.Catalog.
type PlanStore struct {
	pool *pgxpool.Pool
}

const planColumns = `id, name, description, employees_cap, certificates_cap, rh_users_cap,
	active, public, price_id, price_amount, price_currency, billing_interval`

func scanPlan(row pgx.Row) (*entitlement.Plan, error) {
	var p entitlement.Plan
	var employeesCap, certificatesCap, rhUsersCap int64
	var interval string
	err := row.Scan(&p.ID, &p.Name, &p.Description,
		&employeesCap, &certificatesCap, &rhUsersCap,
		&p.Active, &p.Public, &p.PriceID,
		&p.Price.Amount, &p.Price.Currency, &interval)
	if err != nil {
		return nil, err
	}

	p.Caps = map[entitlement.Resource]entitlement.Cap{
		entitlement.ResourceEmployees:    entitlement.Cap(employeesCap),
		entitlement.ResourceCertificates: entitlement.Cap(certificatesCap),
		entitlement.ResourceRHUsers:      entitlement.Cap(rhUsersCap),
	}
	p.Interval = entitlement.BillingInterval(interval)
	return &p, nil
}

// ActivePlan returns the plan for id if it exists and is active.
func (s *PlanStore) ActivePlan(ctx context.Context, planID string) (*entitlement.Plan, error) {
	row := s.pool.QueryRow(ctx,
		`SELECT `+planColumns+` FROM plans WHERE id = $1 AND active`, planID)

	plan, err := scanPlan(row)
	if pg.IsNotFound(err) {
		return nil, entitlement.ErrPlanNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("query plan %q: %w", planID, err)
	}
	return plan, nil
}

// ActivePlans returns every active plan ordered by price.
func (s *PlanStore) ActivePlans(ctx context.Context) ([]entitlement.Plan, error) {
	rows, err := s.pool.Query(ctx,
		`SELECT `+planColumns+` FROM plans WHERE active ORDER BY price_amount, name`)
	if err != nil {
		return nil, fmt.Errorf("query active plans: %w", err)
	}
	defer rows.Close()

	var plans []entitlement.Plan
	for rows.Next() {
		plan, err := scanPlan(rows)
		if err != nil {
			return nil, fmt.Errorf("scan plan: %w", err)
		}
		plans = append(plans, *plan)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate plans: %w", err)
	}
	return plans, nil
}

// Upsert writes a plan row, used by catalog seeding from YAML files.
func (s *PlanStore) Upsert(ctx context.Context, p entitlement.Plan) error {
	limits := p.Limits()
	_, err := s.pool.Exec(ctx, `
		INSERT INTO plans (id, name, description, employees_cap, certificates_cap, rh_users_cap,
			active, public, price_id, price_amount, price_currency, billing_interval)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
		ON CONFLICT (id) DO UPDATE SET
			name = EXCLUDED.name,
			description = EXCLUDED.description,
			employees_cap = EXCLUDED.employees_cap,
			certificates_cap = EXCLUDED.certificates_cap,
			rh_users_cap = EXCLUDED.rh_users_cap,
			active = EXCLUDED.active,
			public = EXCLUDED.public,
			price_id = EXCLUDED.price_id,
			price_amount = EXCLUDED.price_amount,
			price_currency = EXCLUDED.price_currency,
			billing_interval = EXCLUDED.billing_interval,
			updated_at = now()`,
		p.ID, p.Name, p.Description,
		int64(limits.Employees), int64(limits.Certificates), int64(limits.RHUsers),
		p.Active, p.Public, p.PriceID,
		p.Price.Amount, p.Price.Currency, string(p.Interval))
	if err != nil {
		return fmt.Errorf("upsert plan %q: %w", p.ID, err)
	}
	return nil
}
