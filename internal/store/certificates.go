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

var ErrCertificateNotFound = errors.New("certificate not found")

// ASO certificate kinds defined by NR-7.
const (
	CertKindAdmissional   = "admissional"
	CertKindPeriodico     = "periodico"
	CertKindRetorno       = "retorno_ao_trabalho"
	CertKindMudancaFuncao = "mudanca_de_funcao"
	CertKindDemissional   = "demissional"
)

// Certificate is a stored ASO: the medical fitness certificate issued for
// an employee.
type Certificate struct {
	ID          uuid.UUID `json:"id"`
	TenantID    uuid.UUID `json:"tenant_id"`
	EmployeeID  uuid.UUID `json:"employee_id"`
	Kind        string    `json:"kind"`
	Result      string    `json:"result"`
	IssuedAt    time.Time `json:"issued_at"`
	ExpiresAt   time.Time `json:"expires_at"`
	DocumentKey string    `json:"document_key,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
}

// ExpiringCertificate joins the pieces the expiry notifier needs to compose
// a reminder email without further queries.
type ExpiringCertificate struct {
	Certificate
	EmployeeName string `json:"employee_name"`
	TenantName   string `json:"tenant_name"`
	TenantEmail  string `json:"tenant_email"`
}

// CertificateStore persists ASO certificates.
type CertificateStore struct {
	pool *pgxpool.Pool
}

// Create stores a certificate row.
func (s *CertificateStore) Create(ctx context.Context, c *Certificate) error {
	if c.ID == uuid.Nil {
		c.ID = uuid.New()
	}

	err := s.pool.QueryRow(ctx, `
		INSERT INTO certificates (id, tenant_id, employee_id, kind, result, issued_at, expires_at, document_key)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		RETURNING created_at`,
		c.ID, c.TenantID, c.EmployeeID, c.Kind, c.Result, c.IssuedAt, c.ExpiresAt, c.DocumentKey).
		Scan(&c.CreatedAt)
	if pg.IsForeignKeyViolation(err) {
		return ErrEmployeeNotFound
	}
	if err != nil {
		return fmt.Errorf("insert certificate: %w", err)
	}
	return nil
}

// ByID returns a certificate scoped to the tenant.
func (s *CertificateStore) ByID(ctx context.Context, tenantID, id uuid.UUID) (*Certificate, error) {
	var c Certificate
	err := s.pool.QueryRow(ctx, `
		SELECT id, tenant_id, employee_id, kind, result, issued_at, expires_at, document_key, created_at
		FROM certificates WHERE id = $1 AND tenant_id = $2`, id, tenantID).
		Scan(&c.ID, &c.TenantID, &c.EmployeeID, &c.Kind, &c.Result,
			&c.IssuedAt, &c.ExpiresAt, &c.DocumentKey, &c.CreatedAt)
	if pg.IsNotFound(err) {
		return nil, ErrCertificateNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("query certificate: %w", err)
	}
	return &c, nil
}

// ListByEmployee returns an employee's certificates, newest issue first.
func (s *CertificateStore) ListByEmployee(ctx context.Context, tenantID, employeeID uuid.UUID) ([]Certificate, error) {
	rows, err := s.pool.Query(ctx, `
		SELECT id, tenant_id, employee_id, kind, result, issued_at, expires_at, document_key, created_at
		FROM certificates WHERE tenant_id = $1 AND employee_id = $2
		ORDER BY issued_at DESC`, tenantID, employeeID)
	if err != nil {
		return nil, fmt.Errorf("query certificates: %w", err)
	}
	defer rows.Close()

	var out []Certificate
	for rows.Next() {
		var c Certificate
		if err := rows.Scan(&c.ID, &c.TenantID, &c.EmployeeID, &c.Kind, &c.Result,
			&c.IssuedAt, &c.ExpiresAt, &c.DocumentKey, &c.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan certificate: %w", err)
		}
		out = append(out, c)
	}
	return out, rows.Err()
}

// AttachDocument records the object storage key of the uploaded PDF.
func (s *CertificateStore) AttachDocument(ctx context.Context, tenantID, id uuid.UUID, documentKey string) error {
	tag, err := s.pool.Exec(ctx, `
		UPDATE certificates SET document_key = $3
		WHERE id = $1 AND tenant_id = $2`, id, tenantID, documentKey)
	if err != nil {
		return fmt.Errorf("attach certificate document: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrCertificateNotFound
	}
	return nil
}

// ListExpiring returns certificates of active employees of active tenants
// expiring within the window that have not been notified yet, joined with
// the contact details the reminder email needs.
func (s *CertificateStore) ListExpiring(ctx context.Context, within time.Duration) ([]ExpiringCertificate, error) {
	deadline := time.Now().Add(within)

	rows, err := s.pool.Query(ctx, `
		SELECT c.id, c.tenant_id, c.employee_id, c.kind, c.result,
		       c.issued_at, c.expires_at, c.document_key, c.created_at,
		       e.name, t.name, t.email
		FROM certificates c
		JOIN employees e ON e.id = c.employee_id AND e.active
		JOIN tenants t ON t.id = c.tenant_id AND t.active
		WHERE c.expires_at BETWEEN now() AND $1
		  AND c.expiry_notified_at IS NULL
		ORDER BY c.expires_at`, deadline)
	if err != nil {
		return nil, fmt.Errorf("query expiring certificates: %w", err)
	}
	defer rows.Close()

	var out []ExpiringCertificate
	for rows.Next() {
		var c ExpiringCertificate
		if err := rows.Scan(&c.ID, &c.TenantID, &c.EmployeeID, &c.Kind, &c.Result,
			&c.IssuedAt, &c.ExpiresAt, &c.DocumentKey, &c.CreatedAt,
			&c.EmployeeName, &c.TenantName, &c.TenantEmail); err != nil {
			return nil, fmt.Errorf("scan expiring certificate: %w", err)
		}
		out = append(out, c)
	}
	return out, rows.Err()
}

// MarkExpiryNotified records that a reminder went out for the certificate
// so the sweeper never sends it twice.
func (s *CertificateStore) MarkExpiryNotified(ctx context.Context, id uuid.UUID) error {
	_, err := s.pool.Exec(ctx, `
		UPDATE certificates SET expiry_notified_at = now() WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("mark certificate notified: %w", err)
	}
	return nil
}
