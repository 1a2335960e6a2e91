package billing

import (
	"context"
	"time"
)

// Provider is the minimal surface the upgrade flow needs from a payment
// gateway: hosted checkout creation and signed webhook parsing. Keeping it
// this small lets the rest of the subsystem stay ignorant of the provider's
// payment state machine.
type Provider interface {
	// CreateCheckoutLink creates a hosted checkout session for a price.
	CreateCheckoutLink(ctx context.Context, req CheckoutRequest) (*CheckoutLink, error)

	// ParseWebhook validates the signature and normalizes the event.
	// Spoofed payloads must fail verification, not parse.
	ParseWebhook(ctx context.Context, payload []byte, signature string) (*Event, error)
}

// CheckoutRequest carries everything needed to open a checkout session.
type CheckoutRequest struct {
	PriceID    string // provider's price identifier, from Plan.PriceID
	CustomerID string // our tenant id, echoed back in webhooks
	Email      string // optional billing email prefill
	SuccessURL string // redirect after successful payment
	CancelURL  string // redirect if the customer backs out
}

// CheckoutLink is a hosted checkout session hand-off.
type CheckoutLink struct {
	URL       string    `json:"url"`
	SessionID string    `json:"session_id,omitempty"`
	ExpiresAt time.Time `json:"expires_at"`
}

// EventType is the normalized billing event kind.
type EventType string

const (
	EventSubscriptionCreated   EventType = "subscription_created"
	EventSubscriptionUpdated   EventType = "subscription_updated"
	EventSubscriptionCancelled EventType = "subscription_cancelled"
	EventPaymentFailed         EventType = "payment_failed"
	EventUnknown               EventType = "unknown"
)

// Event is a normalized webhook event from the provider.
type Event struct {
	Type          EventType
	ProviderEvent string         // original provider event name
	CustomerID    string         // our tenant id from checkout custom data
	PriceID       string         // provider price the customer is now on
	Status        string         // provider subscription status, informational
	Raw           map[string]any // full provider payload for audit logging
}
