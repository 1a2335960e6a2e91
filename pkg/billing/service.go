package billing

import (
	"cmp"
	"context"
	"errors"
	"fmt"
	"log/slog"
	"slices"
	"time"

	"github.com/google/uuid"

	"github.com/asoflow/asoflow/pkg/entitlement"
	"github.com/asoflow/asoflow/pkg/mailer"
)

// PlanWriter persists a tenant's plan assignment.
type PlanWriter interface {
	SetPlanID(ctx context.Context, tenantID uuid.UUID, planID string) error
}

// CacheInvalidator drops a tenant's cached entitlements. The entitlement
// Resolver satisfies this.
type CacheInvalidator interface {
	Invalidate(ctx context.Context, tenantID uuid.UUID)
}

// Service drives the upgrade flow: listing qualifying plans, opening
// checkout sessions, and applying provider-confirmed plan changes.
type Service struct {
	catalog     entitlement.Catalog
	tenants     PlanWriter
	provider    Provider
	invalidator CacheInvalidator
	sender      mailer.Sender
	log         *slog.Logger
}

// ServiceOption configures a Service.
type ServiceOption func(*Service)

// WithCacheInvalidator wires the entitlement cache so plan changes take
// effect on the very next resolution instead of after TTL expiry.
func WithCacheInvalidator(inv CacheInvalidator) ServiceOption {
	return func(s *Service) { s.invalidator = inv }
}

// WithMailer enables plan-change confirmation email.
func WithMailer(sender mailer.Sender) ServiceOption {
	return func(s *Service) { s.sender = sender }
}

// WithLogger sets the service logger.
func WithLogger(log *slog.Logger) ServiceOption {
	return func(s *Service) {
		if log != nil {
			s.log = log
		}
	}
}

// NewService creates the billing service. Panics on nil required
// dependencies to fail fast during wiring.
func NewService(catalog entitlement.Catalog, tenants PlanWriter, provider Provider, opts ...ServiceOption) *Service {
	if catalog == nil {
		panic("billing: Catalog is required")
	}
	if tenants == nil {
		panic("billing: PlanWriter is required")
	}
	if provider == nil {
		panic("billing: Provider is required")
	}

	s := &Service{
		catalog:  catalog,
		tenants:  tenants,
		provider: provider,
		log:      slog.New(slog.DiscardHandler),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// PublicPlans returns the active public plans ordered cheapest first, for
// pricing pages.
func (s *Service) PublicPlans(ctx context.Context) ([]entitlement.Plan, error) {
	all, err := s.catalog.ActivePlans(ctx)
	if err != nil {
		return nil, err
	}

	var plans []entitlement.Plan
	for _, plan := range all {
		if plan.Public {
			plans = append(plans, plan)
		}
	}
	slices.SortFunc(plans, func(a, b entitlement.Plan) int {
		if c := cmp.Compare(a.Price.Amount, b.Price.Amount); c != 0 {
			return c
		}
		return cmp.Compare(a.Name, b.Name)
	})
	return plans, nil
}

// Upgrades returns the active public plans with at least one cap higher
// than the current plan, ordered cheapest first. The first element is the
// default suggestion.
func (s *Service) Upgrades(ctx context.Context, currentPlanID string) ([]entitlement.Plan, error) {
	current, err := s.catalog.ActivePlan(ctx, currentPlanID)
	if err != nil {
		return nil, err
	}

	all, err := s.catalog.ActivePlans(ctx)
	if err != nil {
		return nil, err
	}

	var candidates []entitlement.Plan
	for _, plan := range all {
		if plan.ID == current.ID || !plan.Public {
			continue
		}
		if plan.RaisesAnyCap(*current) {
			candidates = append(candidates, plan)
		}
	}

	slices.SortFunc(candidates, func(a, b entitlement.Plan) int {
		if c := cmp.Compare(a.Price.Amount, b.Price.Amount); c != 0 {
			return c
		}
		return cmp.Compare(a.Name, b.Name)
	})
	return candidates, nil
}

// SuggestUpgrade returns the smallest qualifying upgrade for the current
// plan, or ErrNoUpgradeAvailable when the tenant is already at the top.
func (s *Service) SuggestUpgrade(ctx context.Context, currentPlanID string) (*entitlement.Plan, error) {
	candidates, err := s.Upgrades(ctx, currentPlanID)
	if err != nil {
		return nil, err
	}
	if len(candidates) == 0 {
		return nil, ErrNoUpgradeAvailable
	}
	return &candidates[0], nil
}

// CheckoutOptions carry the redirect targets and optional email prefill.
type CheckoutOptions struct {
	Email      string
	SuccessURL string
	CancelURL  string
}

// Checkout begins a plan change. Free plans activate immediately without
// touching the provider; paid plans hand off to the hosted checkout and the
// actual plan write happens when the provider's webhook confirms payment.
func (s *Service) Checkout(ctx context.Context, tenantID uuid.UUID, planID string, opts CheckoutOptions) (*CheckoutLink, error) {
	plan, err := s.catalog.ActivePlan(ctx, planID)
	if err != nil {
		return nil, err
	}

	if plan.Free() {
		if err := s.applyPlanChange(ctx, tenantID, plan, opts.Email); err != nil {
			return nil, err
		}
		return &CheckoutLink{
			URL:       opts.SuccessURL,
			ExpiresAt: time.Now().Add(5 * time.Minute),
		}, nil
	}

	return s.provider.CreateCheckoutLink(ctx, CheckoutRequest{
		PriceID:    plan.PriceID,
		CustomerID: tenantID.String(),
		Email:      opts.Email,
		SuccessURL: opts.SuccessURL,
		CancelURL:  opts.CancelURL,
	})
}

// HandleWebhook applies a provider event. Subscription creations and
// updates write the new plan onto the tenant record and invalidate the
// tenant's cached entitlements immediately; cancellations clear the
// assignment so the tenant falls back to the default plan.
func (s *Service) HandleWebhook(ctx context.Context, payload []byte, signature string) error {
	event, err := s.provider.ParseWebhook(ctx, payload, signature)
	if err != nil {
		return err
	}

	switch event.Type {
	case EventSubscriptionCreated, EventSubscriptionUpdated:
		tenantID, err := uuid.Parse(event.CustomerID)
		if err != nil {
			return errors.Join(ErrInvalidWebhookTenant, err)
		}
		plan, err := s.planForPrice(ctx, event.PriceID)
		if err != nil {
			return err
		}
		return s.applyPlanChange(ctx, tenantID, plan, "")

	case EventSubscriptionCancelled:
		tenantID, err := uuid.Parse(event.CustomerID)
		if err != nil {
			return errors.Join(ErrInvalidWebhookTenant, err)
		}
		if err := s.tenants.SetPlanID(ctx, tenantID, ""); err != nil {
			return fmt.Errorf("clear plan assignment: %w", err)
		}
		s.invalidate(ctx, tenantID)
		s.log.InfoContext(ctx, "subscription cancelled",
			"tenant_id", tenantID, "provider_event", event.ProviderEvent)
		return nil

	case EventPaymentFailed:
		s.log.WarnContext(ctx, "payment failed",
			"customer_id", event.CustomerID, "provider_event", event.ProviderEvent)
		return nil
	}

	s.log.DebugContext(ctx, "ignoring billing event", "provider_event", event.ProviderEvent)
	return nil
}

func (s *Service) applyPlanChange(ctx context.Context, tenantID uuid.UUID, plan *entitlement.Plan, email string) error {
	if err := s.tenants.SetPlanID(ctx, tenantID, plan.ID); err != nil {
		return fmt.Errorf("write plan assignment: %w", err)
	}
	s.invalidate(ctx, tenantID)
	s.log.InfoContext(ctx, "plan changed", "tenant_id", tenantID, "plan_id", plan.ID)

	if s.sender != nil && email != "" {
		msg := mailer.Message{
			To:       email,
			Subject:  fmt.Sprintf("Plano %s ativado", plan.Name),
			BodyHTML: fmt.Sprintf("<p>Seu plano <strong>%s</strong> está ativo.</p>", plan.Name),
			Tag:      "plan-change",
		}
		if err := s.sender.Send(ctx, msg); err != nil {
			// Confirmation email is best effort; the plan change stands.
			s.log.ErrorContext(ctx, "plan change email failed", "tenant_id", tenantID, "error", err)
		}
	}
	return nil
}

func (s *Service) planForPrice(ctx context.Context, priceID string) (*entitlement.Plan, error) {
	if priceID == "" {
		return nil, ErrUnknownPrice
	}
	plans, err := s.catalog.ActivePlans(ctx)
	if err != nil {
		return nil, err
	}
	for i := range plans {
		if plans[i].PriceID == priceID {
			return &plans[i], nil
		}
	}
	return nil, fmt.Errorf("%w: %s", ErrUnknownPrice, priceID)
}

func (s *Service) invalidate(ctx context.Context, tenantID uuid.UUID) {
	if s.invalidator != nil {
		s.invalidator.Invalidate(ctx, tenantID)
	}
}
