package store

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/asoflow/asoflow/pkg/pg"
)

var (
	ErrDuplicateCPF     = errors.New("cpf already registered for this company")
	ErrEmployeeNotFound = errors.New("employee not found")
)

// Employee is a worker whose occupational health certificates the company
// tracks.
type Employee struct {
	ID        uuid.UUID `json:"id"`
	TenantID  uuid.UUID `json:"tenant_id"`
	Name      string    `json:"name"`
	CPF       string    `json:"cpf"`
	JobTitle  string    `json:"job_title"`
	Active    bool      `json:"active"`
	CreatedAt time.Time `json:"created_at"`
}

// EmployeeStore persists employees.
type EmployeeStore struct {
	pool *pgxpool.Pool
}

// Create registers an employee for a tenant.
func (s *EmployeeStore) Create(ctx context.Context, e *Employee) error {
	if e.ID == uuid.Nil {
		e.ID = uuid.New()
	}
	e.Active = true

	err := s.pool.QueryRow(ctx, `
		INSERT INTO employees (id, tenant_id, name, cpf, job_title, active)
		VALUES ($1, $2, $3, $4, $5, TRUE)
		RETURNING created_at`,
		e.ID, e.TenantID, e.Name, e.CPF, e.JobTitle).
		Scan(&e.CreatedAt)
	if pg.IsUniqueViolation(err) {
		return ErrDuplicateCPF
	}
	if err != nil {
		return fmt.Errorf("insert employee: %w", err)
	}
	return nil
}

// ByID returns an employee scoped to the tenant.
func (s *EmployeeStore) ByID(ctx context.Context, tenantID, id uuid.UUID) (*Employee, error) {
	var e Employee
	err := s.pool.QueryRow(ctx, `
		SELECT id, tenant_id, name, cpf, job_title, active, created_at
		FROM employees WHERE id = $1 AND tenant_id = $2`, id, tenantID).
		Scan(&e.ID, &e.TenantID, &e.Name, &e.CPF, &e.JobTitle, &e.Active, &e.CreatedAt)
	if pg.IsNotFound(err) {
		return nil, ErrEmployeeNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("query employee: %w", err)
	}
	return &e, nil
}

// List returns the tenant's active employees, newest first.
func (s *EmployeeStore) List(ctx context.Context, tenantID uuid.UUID) ([]Employee, error) {
	rows, err := s.pool.Query(ctx, `
		SELECT id, tenant_id, name, cpf, job_title, active, created_at
		FROM employees WHERE tenant_id = $1 AND active
		ORDER BY created_at DESC`, tenantID)
	if err != nil {
		return nil, fmt.Errorf("query employees: %w", err)
	}
	defer rows.Close()

	var out []Employee
	for rows.Next() {
		var e Employee
		if err := rows.Scan(&e.ID, &e.TenantID, &e.Name, &e.CPF, &e.JobTitle, &e.Active, &e.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan employee: %w", err)
		}
		out = append(out, e)
	}
	return out, rows.Err()
}

// Deactivate marks an employee inactive so they stop counting against the
// employees cap.
func (s *EmployeeStore) Deactivate(ctx context.Context, tenantID, id uuid.UUID) error {
	tag, err := s.pool.Exec(ctx, `
		UPDATE employees SET active = FALSE
		WHERE id = $1 AND tenant_id = $2`, id, tenantID)
	if err != nil {
		return fmt.Errorf("deactivate employee: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrEmployeeNotFound
	}
	return nil
}
