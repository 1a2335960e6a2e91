// Package handler exposes the HTTP API: entitlement resolution and feature
// gating, the plan catalog and upgrade offers, billing checkout and
// webhooks, and gated creation of employees, RH users and certificates.
package handler

import (
	"context"
	"log/slog"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/google/uuid"

	"github.com/asoflow/asoflow/internal/store"
	"github.com/asoflow/asoflow/pkg/billing"
	"github.com/asoflow/asoflow/pkg/entitlement"
	"github.com/asoflow/asoflow/pkg/objstore"
	"github.com/asoflow/asoflow/pkg/tenant"
)

// UsageSource supplies per-tenant usage counters for limit checks.
type UsageSource interface {
	Snapshot(ctx context.Context, tenantID uuid.UUID) (entitlement.UsageSnapshot, error)
	Invalidate(ctx context.Context, tenantID uuid.UUID)
}

// EmployeeWriter persists employees. Satisfied by store.EmployeeStore.
type EmployeeWriter interface {
	Create(ctx context.Context, e *store.Employee) error
}

// RHUserWriter persists RH users. Satisfied by store.RHUserStore.
type RHUserWriter interface {
	Create(ctx context.Context, u *store.RHUser) error
}

// CertificateWriter persists certificates. Satisfied by
// store.CertificateStore.
type CertificateWriter interface {
	Create(ctx context.Context, c *store.Certificate) error
	AttachDocument(ctx context.Context, tenantID, id uuid.UUID, documentKey string) error
}

// Handler holds the API dependencies.
type Handler struct {
	resolver     *entitlement.Resolver
	usage        UsageSource
	billing      *billing.Service
	tenants      tenant.Provider
	employees    EmployeeWriter
	rhUsers      RHUserWriter
	certificates CertificateWriter
	documents    objstore.Storage
	healthChecks []func(context.Context) error
	log          *slog.Logger
}

// Option configures the handler.
type Option func(*Handler)

// WithDocumentStorage enables PDF upload on certificate creation.
func WithDocumentStorage(storage objstore.Storage) Option {
	return func(h *Handler) { h.documents = storage }
}

// WithHealthChecks registers readiness probes for /healthz.
func WithHealthChecks(checks ...func(context.Context) error) Option {
	return func(h *Handler) { h.healthChecks = append(h.healthChecks, checks...) }
}

// WithLogger sets the handler logger.
func WithLogger(log *slog.Logger) Option {
	return func(h *Handler) {
		if log != nil {
			h.log = log
		}
	}
}

// New creates the handler. Panics on nil required dependencies to fail fast
// during wiring.
func New(
	resolver *entitlement.Resolver,
	usage UsageSource,
	billingSvc *billing.Service,
	tenants tenant.Provider,
	employees EmployeeWriter,
	rhUsers RHUserWriter,
	certificates CertificateWriter,
	opts ...Option,
) *Handler {
	switch {
	case resolver == nil:
		panic("handler: entitlement resolver is required")
	case usage == nil:
		panic("handler: usage source is required")
	case billingSvc == nil:
		panic("handler: billing service is required")
	case tenants == nil:
		panic("handler: tenant provider is required")
	case employees == nil, rhUsers == nil, certificates == nil:
		panic("handler: resource stores are required")
	}

	h := &Handler{
		resolver:     resolver,
		usage:        usage,
		billing:      billingSvc,
		tenants:      tenants,
		employees:    employees,
		rhUsers:      rhUsers,
		certificates: certificates,
		log:          slog.New(slog.DiscardHandler),
	}
	for _, opt := range opts {
		opt(h)
	}
	return h
}

// Router builds the chi router with tenant middleware on the v1 surface.
// The billing webhook stays outside the tenant-scoped group: the payment
// provider calls it without an X-Tenant-ID header.
func (h *Handler) Router() chi.Router {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)

	r.Get("/healthz", h.healthz)
	r.Post("/v1/billing/webhook", h.billingWebhook)

	r.Route("/v1", func(r chi.Router) {
		r.Use(tenant.Middleware(h.tenants, nil))

		r.Get("/plans", h.listPlans)

		r.Group(func(r chi.Router) {
			r.Use(tenant.RequireTenant(nil))

			r.Get("/entitlements", h.getEntitlements)
			r.Get("/entitlements/gate", h.gateCheck)
			r.Get("/plans/upgrades", h.listUpgrades)
			r.Post("/billing/checkout", h.billingCheckout)
			r.Post("/employees", h.createEmployee)
			r.Post("/rh-users", h.createRHUser)
			r.Post("/certificates", h.createCertificate)
		})
	})

	return r
}
