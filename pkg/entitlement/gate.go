package entitlement

import "fmt"

// GateState is the three-way outcome of a feature-gate decision.
type GateState string

const (
	// GateAllowed means the protected action may proceed.
	GateAllowed GateState = "allowed"
	// GateNoSubscription means the tenant has no usable plan at all:
	// invalid identity, missing plan, or a resolution failure.
	GateNoSubscription GateState = "blocked-no-subscription"
	// GateLimitReached means the plan is fine but the specific resource
	// is at capacity.
	GateLimitReached GateState = "blocked-limit-reached"
)

// Decision is the outcome of gating one action against a Result. Blocked
// decisions carry enough detail to render a specific remediation message;
// a bare "access denied" with no resource, usage, and limit is a bug.
type Decision struct {
	State    GateState `json:"state"`
	Resource Resource  `json:"resource"`
	PlanName string    `json:"plan_name"`
	Used     int64     `json:"used"`
	Limit    Cap       `json:"limit"`
}

// Allowed reports whether the protected action may proceed.
func (d Decision) Allowed() bool { return d.State == GateAllowed }

// Reason returns a human-readable explanation for a blocked decision,
// naming the resource and limit so the caller can surface it alongside an
// upgrade entry point. Empty for allowed decisions.
func (d Decision) Reason() string {
	switch d.State {
	case GateNoSubscription:
		return "no active subscription plan"
	case GateLimitReached:
		return fmt.Sprintf("%s limit reached: %d of %d used on plan %q",
			d.Resource, d.Used, d.Limit, d.PlanName)
	}
	return ""
}

// Decide translates a resolution result into an allow/deny decision for a
// single resource. It is a pure function of the resolver's output and
// performs no resolution itself, which keeps it independently testable.
func Decide(res Resource, r Result) Decision {
	d := Decision{
		Resource: res,
		PlanName: r.PlanName,
		Used:     r.Usage.Count(res),
		Limit:    r.Limits.Cap(res),
	}

	switch {
	case r.Blocked():
		d.State = GateNoSubscription
	case r.Can(res):
		d.State = GateAllowed
	default:
		d.State = GateLimitReached
	}
	return d
}
