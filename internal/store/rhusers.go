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
	ErrDuplicateRHUserEmail = errors.New("rh user email already registered for this company")
	ErrRHUserNotFound       = errors.New("rh user not found")
)

// RHUser is an HR staff account with access to the company's dashboard.
type RHUser struct {
	ID        uuid.UUID `json:"id"`
	TenantID  uuid.UUID `json:"tenant_id"`
	Name      string    `json:"name"`
	Email     string    `json:"email"`
	Active    bool      `json:"active"`
	CreatedAt time.Time `json:"created_at"`
}

// RHUserStore persists RH users.
type RHUserStore struct {
	pool *pgxpool.Pool
}

// Create registers an RH user for a tenant.
func (s *RHUserStore) Create(ctx context.Context, u *RHUser) error {
	if u.ID == uuid.Nil {
		u.ID = uuid.New()
	}
	u.Active = true

	err := s.pool.QueryRow(ctx, `
		INSERT INTO rh_users (id, tenant_id, name, email, active)
		VALUES ($1, $2, $3, $4, TRUE)
		RETURNING created_at`,
		u.ID, u.TenantID, u.Name, u.Email).
		Scan(&u.CreatedAt)
	if pg.IsUniqueViolation(err) {
		return ErrDuplicateRHUserEmail
	}
	if err != nil {
		return fmt.Errorf("insert rh user: %w", err)
	}
	return nil
}

// List returns the tenant's active RH users, newest first.
func (s *RHUserStore) List(ctx context.Context, tenantID uuid.UUID) ([]RHUser, error) {
	rows, err := s.pool.Query(ctx, `
		SELECT id, tenant_id, name, email, active, created_at
		FROM rh_users WHERE tenant_id = $1 AND active
		ORDER BY created_at DESC`, tenantID)
	if err != nil {
		return nil, fmt.Errorf("query rh users: %w", err)
	}
	defer rows.Close()

	var out []RHUser
	for rows.Next() {
		var u RHUser
		if err := rows.Scan(&u.ID, &u.TenantID, &u.Name, &u.Email, &u.Active, &u.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan rh user: %w", err)
		}
		out = append(out, u)
	}
	return out, rows.Err()
}

// Deactivate marks an RH user inactive so they stop counting against the
// rh_users cap.
func (s *RHUserStore) Deactivate(ctx context.Context, tenantID, id uuid.UUID) error {
	tag, err := s.pool.Exec(ctx, `
		UPDATE rh_users SET active = FALSE
		WHERE id = $1 AND tenant_id = $2`, id, tenantID)
	if err != nil {
		return fmt.Errorf("deactivate rh user: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrRHUserNotFound
	}
	return nil
}
