package entitlement

import (
	"errors"
	"fmt"
)

// Money is a monetary amount in the smallest currency unit.
// R$ 49,90 is Amount: 4990, Currency: "BRL".
type Money struct {
	Amount   int64  `json:"amount" yaml:"amount"`
	Currency string `json:"currency" yaml:"currency"`
}

// BillingInterval is the billing frequency for a plan.
type BillingInterval string

const (
	BillingIntervalNone    BillingInterval = "none" // free plans, no gateway involvement
	BillingIntervalMonthly BillingInterval = "monthly"
	BillingIntervalAnnual  BillingInterval = "annual"
)

// Plan is a catalog row describing a subscription tier. For paid plans
// PriceID must be the payment provider's price identifier so checkout and
// webhook processing can map back to the plan.
type Plan struct {
	ID          string           `json:"id" yaml:"id"`
	Name        string           `json:"name" yaml:"name"`
	Description string           `json:"description,omitempty" yaml:"description,omitempty"`
	Caps        map[Resource]Cap `json:"caps" yaml:"caps"`
	Active      bool             `json:"active" yaml:"active"`
	Public      bool             `json:"public" yaml:"public"`
	PriceID     string           `json:"price_id,omitempty" yaml:"price_id,omitempty"`
	Price       Money            `json:"price" yaml:"price"`
	Interval    BillingInterval  `json:"interval" yaml:"interval"`
}

// Limits materializes the plan's cap map into the fixed resolved-limits
// shape. Resources absent from the map get a zero cap.
func (p Plan) Limits() Limits {
	return Limits{
		Employees:    p.Caps[ResourceEmployees],
		Certificates: p.Caps[ResourceCertificates],
		RHUsers:      p.Caps[ResourceRHUsers],
	}
}

// Free reports whether the plan bypasses the payment provider entirely.
func (p Plan) Free() bool {
	return p.Interval == BillingIntervalNone || p.Interval == ""
}

// RaisesAnyCap reports whether the plan has at least one cap strictly looser
// than the current plan's, which is the qualification for an upgrade offer.
func (p Plan) RaisesAnyCap(current Plan) bool {
	for _, res := range Resources {
		if p.Caps[res].Exceeds(current.Caps[res]) {
			return true
		}
	}
	return false
}

// Cap implements yaml.Unmarshaler so catalog files can declare either a
// number or the word "unlimited".
func (c *Cap) UnmarshalYAML(unmarshal func(any) error) error {
	var n int64
	if err := unmarshal(&n); err == nil {
		if n < -1 {
			return fmt.Errorf("cap must be non-negative or -1, got %d", n)
		}
		*c = Cap(n)
		return nil
	}

	var s string
	if err := unmarshal(&s); err != nil {
		return err
	}
	if s != "unlimited" {
		return fmt.Errorf("cap must be a number or %q, got %q", "unlimited", s)
	}
	*c = Unlimited
	return nil
}

// ValidatePlans checks a catalog for configuration mistakes that would
// otherwise surface as confusing runtime behavior.
func ValidatePlans(plans map[string]Plan) error {
	for id, plan := range plans {
		if plan.ID != "" && plan.ID != id {
			return errors.Join(ErrInvalidPlanConfiguration,
				fmt.Errorf("plan keyed %q declares id %q", id, plan.ID))
		}
		for res, cap := range plan.Caps {
			if !res.Valid() {
				return errors.Join(ErrInvalidPlanConfiguration,
					fmt.Errorf("plan %q caps unknown resource %q", id, res))
			}
			if cap < Unlimited {
				return errors.Join(ErrInvalidPlanConfiguration,
					fmt.Errorf("plan %q has invalid cap %d for %q", id, cap, res))
			}
		}
		if !plan.Free() && plan.PriceID == "" {
			return errors.Join(ErrInvalidPlanConfiguration,
				fmt.Errorf("paid plan %q has no provider price id", id))
		}
	}
	return nil
}
