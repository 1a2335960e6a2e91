package billing

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	paddle "github.com/PaddleHQ/paddle-go-sdk/v4"
)

// PaddleConfig configures the Paddle gateway.
type PaddleConfig struct {
	APIKey        string `env:"PADDLE_API_KEY"`
	WebhookSecret string `env:"PADDLE_WEBHOOK_SECRET"`
	Environment   string `env:"PADDLE_ENVIRONMENT" envDefault:"production"`
}

// PaddleProvider implements Provider against Paddle's hosted checkout and
// signed webhooks.
type PaddleProvider struct {
	client   *paddle.SDK
	verifier *paddle.WebhookVerifier
}

// NewPaddleProvider creates a Paddle-backed Provider.
func NewPaddleProvider(cfg PaddleConfig) (*PaddleProvider, error) {
	if cfg.APIKey == "" {
		return nil, ErrMissingAPIKey
	}
	if cfg.WebhookSecret == "" {
		return nil, ErrMissingWebhookSecret
	}

	var (
		client *paddle.SDK
		err    error
	)
	switch strings.ToLower(cfg.Environment) {
	case "sandbox":
		client, err = paddle.NewSandbox(cfg.APIKey)
	case "production", "":
		client, err = paddle.New(cfg.APIKey)
	default:
		return nil, fmt.Errorf("%w: %q", ErrInvalidEnvironment, cfg.Environment)
	}
	if err != nil {
		return nil, fmt.Errorf("create paddle client: %w", err)
	}

	return &PaddleProvider{
		client:   client,
		verifier: paddle.NewWebhookVerifier(cfg.WebhookSecret),
	}, nil
}

// CreateCheckoutLink opens a hosted checkout transaction for the price.
// The tenant id travels in custom data so webhooks can be attributed.
func (p *PaddleProvider) CreateCheckoutLink(ctx context.Context, req CheckoutRequest) (*CheckoutLink, error) {
	if req.PriceID == "" {
		return nil, ErrMissingPriceID
	}
	if req.CustomerID == "" {
		return nil, ErrMissingCustomerID
	}

	item := paddle.NewCreateTransactionItemsTransactionItemFromCatalog(&paddle.TransactionItemFromCatalog{
		PriceID:  req.PriceID,
		Quantity: 1,
	})

	txnReq := &paddle.CreateTransactionRequest{
		Items: []paddle.CreateTransactionItems{*item},
		CustomData: paddle.CustomData{
			"customer_id": req.CustomerID,
		},
	}
	if req.Email != "" {
		txnReq.CustomData["email"] = req.Email
	}
	if req.SuccessURL != "" {
		txnReq.Checkout = &paddle.TransactionCheckout{
			URL: paddle.PtrTo(req.SuccessURL),
		}
	}

	txn, err := p.client.TransactionsClient.CreateTransaction(ctx, txnReq)
	if err != nil {
		return nil, fmt.Errorf("create paddle transaction: %w", err)
	}
	if txn.Checkout == nil || txn.Checkout.URL == nil || *txn.Checkout.URL == "" {
		return nil, ErrNoCheckoutURL
	}

	return &CheckoutLink{
		URL:       *txn.Checkout.URL,
		SessionID: txn.ID,
		ExpiresAt: time.Now().Add(24 * time.Hour),
	}, nil
}

// ParseWebhook verifies the Paddle-Signature header and normalizes the
// event into the provider-agnostic shape.
func (p *PaddleProvider) ParseWebhook(ctx context.Context, payload []byte, signature string) (*Event, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, "/webhook", bytes.NewReader(payload))
	if err != nil {
		return nil, fmt.Errorf("build verification request: %w", err)
	}
	req.Header.Set("Paddle-Signature", signature)

	valid, err := p.verifier.Verify(req)
	if err != nil {
		return nil, errors.Join(ErrWebhookVerificationFailed, err)
	}
	if !valid {
		return nil, ErrWebhookVerificationFailed
	}

	var raw struct {
		EventType string         `json:"event_type"`
		Data      map[string]any `json:"data"`
	}
	if err := json.Unmarshal(payload, &raw); err != nil {
		return nil, fmt.Errorf("parse webhook payload: %w", err)
	}

	event := &Event{
		Type:          mapPaddleEvent(raw.EventType),
		ProviderEvent: raw.EventType,
		Raw:           raw.Data,
	}

	if status, ok := raw.Data["status"].(string); ok {
		event.Status = status
	}
	if custom, ok := raw.Data["custom_data"].(map[string]any); ok {
		if customerID, ok := custom["customer_id"].(string); ok {
			event.CustomerID = customerID
		}
	}

	// Subscription payloads nest the price under items[].price.id;
	// transaction payloads carry items[].price_id directly.
	if items, ok := raw.Data["items"].([]any); ok && len(items) > 0 {
		if item, ok := items[0].(map[string]any); ok {
			if price, ok := item["price"].(map[string]any); ok {
				if id, ok := price["id"].(string); ok {
					event.PriceID = id
				}
			}
			if event.PriceID == "" {
				if id, ok := item["price_id"].(string); ok {
					event.PriceID = id
				}
			}
		}
	}

	return event, nil
}

func mapPaddleEvent(name string) EventType {
	switch name {
	case "transaction.completed", "subscription.created":
		return EventSubscriptionCreated
	case "subscription.updated", "subscription.resumed":
		return EventSubscriptionUpdated
	case "subscription.canceled":
		return EventSubscriptionCancelled
	case "transaction.payment_failed":
		return EventPaymentFailed
	default:
		return EventUnknown
	}
}
