package billing_test

import (
	"context"
	"encoding/json"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/asoflow/asoflow/pkg/billing"
	"github.com/asoflow/asoflow/pkg/entitlement"
	"github.com/asoflow/asoflow/pkg/mailer"
)

func testCatalog() *entitlement.MemoryCatalog {
	return entitlement.NewMemoryCatalog(
		entitlement.Plan{
			ID:   "free",
			Name: "Gratuito",
			Caps: map[entitlement.Resource]entitlement.Cap{
				entitlement.ResourceEmployees:    10,
				entitlement.ResourceCertificates: 25,
				entitlement.ResourceRHUsers:      1,
			},
			Active:   true,
			Public:   true,
			Interval: entitlement.BillingIntervalNone,
		},
		entitlement.Plan{
			ID:   "pro",
			Name: "Profissional",
			Caps: map[entitlement.Resource]entitlement.Cap{
				entitlement.ResourceEmployees:    100,
				entitlement.ResourceCertificates: 500,
				entitlement.ResourceRHUsers:      5,
			},
			Active:   true,
			Public:   true,
			PriceID:  "pri_pro_monthly",
			Price:    entitlement.Money{Amount: 9900, Currency: "BRL"},
			Interval: entitlement.BillingIntervalMonthly,
		},
		entitlement.Plan{
			ID:   "enterprise",
			Name: "Empresarial",
			Caps: map[entitlement.Resource]entitlement.Cap{
				entitlement.ResourceEmployees:    entitlement.Unlimited,
				entitlement.ResourceCertificates: entitlement.Unlimited,
				entitlement.ResourceRHUsers:      entitlement.Unlimited,
			},
			Active:   true,
			Public:   true,
			PriceID:  "pri_ent_monthly",
			Price:    entitlement.Money{Amount: 29900, Currency: "BRL"},
			Interval: entitlement.BillingIntervalMonthly,
		},
		entitlement.Plan{
			ID:   "internal",
			Name: "Interno",
			Caps: map[entitlement.Resource]entitlement.Cap{
				entitlement.ResourceEmployees: entitlement.Unlimited,
			},
			Active:   true,
			Public:   false,
			PriceID:  "pri_internal",
			Price:    entitlement.Money{Amount: 1, Currency: "BRL"},
			Interval: entitlement.BillingIntervalMonthly,
		},
	)
}

type fakeProvider struct {
	mu        sync.Mutex
	checkouts []billing.CheckoutRequest
	link      *billing.CheckoutLink
	event     *billing.Event
	parseErr  error
}

func (p *fakeProvider) CreateCheckoutLink(_ context.Context, req billing.CheckoutRequest) (*billing.CheckoutLink, error) {
	p.mu.Lock()
	p.checkouts = append(p.checkouts, req)
	p.mu.Unlock()
	if p.link != nil {
		return p.link, nil
	}
	return &billing.CheckoutLink{
		URL:       "https://checkout.example.com/" + req.PriceID,
		SessionID: "txn_test",
		ExpiresAt: time.Now().Add(time.Hour),
	}, nil
}

func (p *fakeProvider) ParseWebhook(_ context.Context, _ []byte, _ string) (*billing.Event, error) {
	if p.parseErr != nil {
		return nil, p.parseErr
	}
	return p.event, nil
}

type recordingInvalidator struct {
	mu  sync.Mutex
	ids []uuid.UUID
}

func (r *recordingInvalidator) Invalidate(_ context.Context, id uuid.UUID) {
	r.mu.Lock()
	r.ids = append(r.ids, id)
	r.mu.Unlock()
}

type recordingSender struct {
	mu   sync.Mutex
	sent []mailer.Message
}

func (s *recordingSender) Send(_ context.Context, msg mailer.Message) error {
	s.mu.Lock()
	s.sent = append(s.sent, msg)
	s.mu.Unlock()
	return nil
}

func TestService_Upgrades(t *testing.T) {
	t.Parallel()

	svc := billing.NewService(testCatalog(), entitlement.NewMemoryTenantPlans(), &fakeProvider{})

	t.Run("free plan offers paid public plans cheapest first", func(t *testing.T) {
		t.Parallel()

		plans, err := svc.Upgrades(context.Background(), "free")
		require.NoError(t, err)
		require.Len(t, plans, 2)
		assert.Equal(t, "pro", plans[0].ID)
		assert.Equal(t, "enterprise", plans[1].ID)
	})

	t.Run("private plans are never offered", func(t *testing.T) {
		t.Parallel()

		plans, err := svc.Upgrades(context.Background(), "free")
		require.NoError(t, err)
		for _, plan := range plans {
			assert.NotEqual(t, "internal", plan.ID)
		}
	})

	t.Run("pro upgrades only to plans raising a cap", func(t *testing.T) {
		t.Parallel()

		plans, err := svc.Upgrades(context.Background(), "pro")
		require.NoError(t, err)
		require.Len(t, plans, 1)
		assert.Equal(t, "enterprise", plans[0].ID)
	})

	t.Run("top plan has no upgrades", func(t *testing.T) {
		t.Parallel()

		plans, err := svc.Upgrades(context.Background(), "enterprise")
		require.NoError(t, err)
		assert.Empty(t, plans)
	})

	t.Run("unknown plan fails", func(t *testing.T) {
		t.Parallel()

		_, err := svc.Upgrades(context.Background(), "missing")
		require.ErrorIs(t, err, entitlement.ErrPlanNotFound)
	})
}

func TestService_SuggestUpgrade(t *testing.T) {
	t.Parallel()

	svc := billing.NewService(testCatalog(), entitlement.NewMemoryTenantPlans(), &fakeProvider{})

	t.Run("suggests cheapest qualifying plan", func(t *testing.T) {
		t.Parallel()

		plan, err := svc.SuggestUpgrade(context.Background(), "free")
		require.NoError(t, err)
		assert.Equal(t, "pro", plan.ID)
	})

	t.Run("no suggestion at the top tier", func(t *testing.T) {
		t.Parallel()

		_, err := svc.SuggestUpgrade(context.Background(), "enterprise")
		require.ErrorIs(t, err, billing.ErrNoUpgradeAvailable)
	})
}

func TestService_Checkout(t *testing.T) {
	t.Parallel()

	t.Run("paid plan opens provider checkout", func(t *testing.T) {
		t.Parallel()

		provider := &fakeProvider{}
		tenants := entitlement.NewMemoryTenantPlans()
		svc := billing.NewService(testCatalog(), tenants, provider)
		tenantID := uuid.New()

		link, err := svc.Checkout(context.Background(), tenantID, "pro", billing.CheckoutOptions{
			Email:      "rh@empresa.com.br",
			SuccessURL: "https://app.asoflow.com.br/billing/success",
			CancelURL:  "https://app.asoflow.com.br/billing",
		})
		require.NoError(t, err)
		assert.Contains(t, link.URL, "pri_pro_monthly")

		require.Len(t, provider.checkouts, 1)
		assert.Equal(t, "pri_pro_monthly", provider.checkouts[0].PriceID)
		assert.Equal(t, tenantID.String(), provider.checkouts[0].CustomerID)
		assert.Equal(t, "rh@empresa.com.br", provider.checkouts[0].Email)

		// Plan only changes once the webhook confirms payment.
		_, err = tenants.PlanID(context.Background(), tenantID)
		require.ErrorIs(t, err, entitlement.ErrTenantNotFound)
	})

	t.Run("free plan activates immediately without the provider", func(t *testing.T) {
		t.Parallel()

		provider := &fakeProvider{}
		tenants := entitlement.NewMemoryTenantPlans()
		inv := &recordingInvalidator{}
		svc := billing.NewService(testCatalog(), tenants, provider,
			billing.WithCacheInvalidator(inv))
		tenantID := uuid.New()

		link, err := svc.Checkout(context.Background(), tenantID, "free", billing.CheckoutOptions{
			SuccessURL: "https://app.asoflow.com.br/billing/success",
		})
		require.NoError(t, err)
		assert.Equal(t, "https://app.asoflow.com.br/billing/success", link.URL)
		assert.Empty(t, provider.checkouts)

		planID, err := tenants.PlanID(context.Background(), tenantID)
		require.NoError(t, err)
		assert.Equal(t, "free", planID)
		assert.Equal(t, []uuid.UUID{tenantID}, inv.ids)
	})

	t.Run("inactive plan fails", func(t *testing.T) {
		t.Parallel()

		svc := billing.NewService(testCatalog(), entitlement.NewMemoryTenantPlans(), &fakeProvider{})
		_, err := svc.Checkout(context.Background(), uuid.New(), "missing", billing.CheckoutOptions{})
		require.ErrorIs(t, err, entitlement.ErrPlanNotFound)
	})
}

func TestService_HandleWebhook(t *testing.T) {
	t.Parallel()

	payload := json.RawMessage(`{}`)

	t.Run("subscription created assigns plan and invalidates cache", func(t *testing.T) {
		t.Parallel()

		tenantID := uuid.New()
		provider := &fakeProvider{event: &billing.Event{
			Type:          billing.EventSubscriptionCreated,
			ProviderEvent: "subscription.created",
			CustomerID:    tenantID.String(),
			PriceID:       "pri_pro_monthly",
			Status:        "active",
		}}
		tenants := entitlement.NewMemoryTenantPlans()
		inv := &recordingInvalidator{}
		sender := &recordingSender{}
		svc := billing.NewService(testCatalog(), tenants, provider,
			billing.WithCacheInvalidator(inv),
			billing.WithMailer(sender))

		require.NoError(t, svc.HandleWebhook(context.Background(), payload, "sig"))

		planID, err := tenants.PlanID(context.Background(), tenantID)
		require.NoError(t, err)
		assert.Equal(t, "pro", planID)
		assert.Equal(t, []uuid.UUID{tenantID}, inv.ids)
	})

	t.Run("subscription updated switches plan", func(t *testing.T) {
		t.Parallel()

		tenantID := uuid.New()
		tenants := entitlement.NewMemoryTenantPlans()
		require.NoError(t, tenants.SetPlanID(context.Background(), tenantID, "pro"))

		provider := &fakeProvider{event: &billing.Event{
			Type:       billing.EventSubscriptionUpdated,
			CustomerID: tenantID.String(),
			PriceID:    "pri_ent_monthly",
		}}
		svc := billing.NewService(testCatalog(), tenants, provider)

		require.NoError(t, svc.HandleWebhook(context.Background(), payload, "sig"))

		planID, err := tenants.PlanID(context.Background(), tenantID)
		require.NoError(t, err)
		assert.Equal(t, "enterprise", planID)
	})

	t.Run("cancellation clears the assignment", func(t *testing.T) {
		t.Parallel()

		tenantID := uuid.New()
		tenants := entitlement.NewMemoryTenantPlans()
		require.NoError(t, tenants.SetPlanID(context.Background(), tenantID, "pro"))

		inv := &recordingInvalidator{}
		provider := &fakeProvider{event: &billing.Event{
			Type:       billing.EventSubscriptionCancelled,
			CustomerID: tenantID.String(),
		}}
		svc := billing.NewService(testCatalog(), tenants, provider,
			billing.WithCacheInvalidator(inv))

		require.NoError(t, svc.HandleWebhook(context.Background(), payload, "sig"))

		planID, err := tenants.PlanID(context.Background(), tenantID)
		require.NoError(t, err)
		assert.Empty(t, planID)
		assert.Equal(t, []uuid.UUID{tenantID}, inv.ids)
	})

	t.Run("unknown price is rejected", func(t *testing.T) {
		t.Parallel()

		provider := &fakeProvider{event: &billing.Event{
			Type:       billing.EventSubscriptionCreated,
			CustomerID: uuid.NewString(),
			PriceID:    "pri_unknown",
		}}
		svc := billing.NewService(testCatalog(), entitlement.NewMemoryTenantPlans(), provider)

		err := svc.HandleWebhook(context.Background(), payload, "sig")
		require.ErrorIs(t, err, billing.ErrUnknownPrice)
	})

	t.Run("malformed customer id is rejected", func(t *testing.T) {
		t.Parallel()

		provider := &fakeProvider{event: &billing.Event{
			Type:       billing.EventSubscriptionCreated,
			CustomerID: "not-a-uuid",
			PriceID:    "pri_pro_monthly",
		}}
		svc := billing.NewService(testCatalog(), entitlement.NewMemoryTenantPlans(), provider)

		err := svc.HandleWebhook(context.Background(), payload, "sig")
		require.ErrorIs(t, err, billing.ErrInvalidWebhookTenant)
	})

	t.Run("bad signature surfaces verification error", func(t *testing.T) {
		t.Parallel()

		provider := &fakeProvider{parseErr: billing.ErrWebhookVerificationFailed}
		svc := billing.NewService(testCatalog(), entitlement.NewMemoryTenantPlans(), provider)

		err := svc.HandleWebhook(context.Background(), payload, "bad")
		require.ErrorIs(t, err, billing.ErrWebhookVerificationFailed)
	})

	t.Run("payment failed is acknowledged without changes", func(t *testing.T) {
		t.Parallel()

		tenantID := uuid.New()
		tenants := entitlement.NewMemoryTenantPlans()
		require.NoError(t, tenants.SetPlanID(context.Background(), tenantID, "pro"))

		provider := &fakeProvider{event: &billing.Event{
			Type:       billing.EventPaymentFailed,
			CustomerID: tenantID.String(),
		}}
		svc := billing.NewService(testCatalog(), tenants, provider)

		require.NoError(t, svc.HandleWebhook(context.Background(), payload, "sig"))

		planID, err := tenants.PlanID(context.Background(), tenantID)
		require.NoError(t, err)
		assert.Equal(t, "pro", planID)
	})
}
