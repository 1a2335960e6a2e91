// Package billing implements the upgrade flow for the entitlement
// subsystem: computing which catalog plans qualify as upgrades, handing the
// tenant off to the payment provider's hosted checkout, and applying plan
// changes reported back by provider webhooks.
//
// The provider is consumed as an opaque service behind the Provider
// interface; only the Paddle implementation ships here. The package knows
// nothing about payment state beyond "the plan changed, write it to the
// tenant record and invalidate the entitlement cache immediately".
package billing
