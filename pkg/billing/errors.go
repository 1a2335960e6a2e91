package billing

import "errors"

var (
	ErrMissingAPIKey             = errors.New("billing provider API key is required")
	ErrMissingWebhookSecret      = errors.New("billing provider webhook secret is required")
	ErrInvalidEnvironment        = errors.New("invalid billing provider environment")
	ErrWebhookVerificationFailed = errors.New("webhook signature verification failed")
	ErrNoCheckoutURL             = errors.New("no checkout URL returned from provider")
	ErrMissingPriceID            = errors.New("price ID is required")
	ErrMissingCustomerID         = errors.New("customer ID is required")
	ErrUnknownPrice              = errors.New("webhook references a price with no catalog plan")
	ErrInvalidWebhookTenant      = errors.New("webhook carries an invalid tenant id")
	ErrNoUpgradeAvailable        = errors.New("no plan with higher caps is available")
)
