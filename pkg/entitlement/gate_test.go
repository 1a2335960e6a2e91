package entitlement_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/asoflow/asoflow/pkg/entitlement"
)

func proResult(usage entitlement.UsageSnapshot) entitlement.Result {
	limits := entitlement.Limits{Employees: 100, Certificates: 50, RHUsers: 5}
	return entitlement.Result{
		PlanID:            "pro",
		PlanName:          "Profissional",
		Limits:            limits,
		Usage:             usage,
		CanAddEmployee:    limits.Employees.Allows(usage.Employees),
		CanAddCertificate: limits.Certificates.Allows(usage.Certificates),
		CanAddRHUser:      limits.RHUsers.Allows(usage.RHUsers),
	}
}

func TestDecide(t *testing.T) {
	t.Parallel()

	t.Run("allows under-limit actions", func(t *testing.T) {
		t.Parallel()

		d := entitlement.Decide(entitlement.ResourceEmployees,
			proResult(entitlement.UsageSnapshot{Employees: 42}))

		assert.True(t, d.Allowed())
		assert.Equal(t, entitlement.GateAllowed, d.State)
		assert.Empty(t, d.Reason())
	})

	t.Run("blocks at-capacity resource with remediation detail", func(t *testing.T) {
		t.Parallel()

		d := entitlement.Decide(entitlement.ResourceCertificates,
			proResult(entitlement.UsageSnapshot{Certificates: 50}))

		assert.False(t, d.Allowed())
		assert.Equal(t, entitlement.GateLimitReached, d.State)
		assert.Equal(t, entitlement.ResourceCertificates, d.Resource)
		assert.Equal(t, int64(50), d.Used)
		assert.Equal(t, entitlement.Cap(50), d.Limit)
		assert.Contains(t, d.Reason(), "certificates")
		assert.Contains(t, d.Reason(), "50")
		assert.Contains(t, d.Reason(), "Profissional")
	})

	t.Run("blocking one resource leaves the others allowed", func(t *testing.T) {
		t.Parallel()

		res := proResult(entitlement.UsageSnapshot{Certificates: 50})

		assert.False(t, entitlement.Decide(entitlement.ResourceCertificates, res).Allowed())
		assert.True(t, entitlement.Decide(entitlement.ResourceEmployees, res).Allowed())
		assert.True(t, entitlement.Decide(entitlement.ResourceRHUsers, res).Allowed())
	})

	t.Run("sentinel results map to no-subscription", func(t *testing.T) {
		t.Parallel()

		for _, planName := range []string{
			entitlement.PlanNameNoAccess,
			entitlement.PlanNameNotFound,
			entitlement.PlanNameError,
		} {
			res := entitlement.Result{PlanName: planName}
			d := entitlement.Decide(entitlement.ResourceEmployees, res)
			assert.Equal(t, entitlement.GateNoSubscription, d.State, "plan name %q", planName)
			assert.NotEmpty(t, d.Reason())
		}
	})
}
