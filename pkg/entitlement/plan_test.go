package entitlement_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/asoflow/asoflow/pkg/entitlement"
)

func TestCap_Allows(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		cap  entitlement.Cap
		used int64
		want bool
	}{
		{"under bounded cap", 100, 42, true},
		{"one below cap", 50, 49, true},
		{"exactly at cap", 50, 50, false},
		{"over cap", 50, 51, false},
		{"zero cap never allows", 0, 0, false},
		{"unlimited ignores usage", entitlement.Unlimited, 9999, true},
		{"unlimited at zero", entitlement.Unlimited, 0, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tt.want, tt.cap.Allows(tt.used))
		})
	}
}

func TestCap_Exceeds(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		a, b entitlement.Cap
		want bool
	}{
		{"bigger bound exceeds smaller", 100, 10, true},
		{"equal bounds do not exceed", 10, 10, false},
		{"smaller bound does not exceed", 5, 10, false},
		{"unlimited exceeds bounded", entitlement.Unlimited, 1000, true},
		{"bounded does not exceed unlimited", 1000, entitlement.Unlimited, false},
		{"unlimited does not exceed unlimited", entitlement.Unlimited, entitlement.Unlimited, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tt.want, tt.a.Exceeds(tt.b))
		})
	}
}

func TestPlan_RaisesAnyCap(t *testing.T) {
	t.Parallel()

	free := entitlement.Plan{
		ID: "free",
		Caps: map[entitlement.Resource]entitlement.Cap{
			entitlement.ResourceEmployees:    10,
			entitlement.ResourceCertificates: 25,
			entitlement.ResourceRHUsers:      1,
		},
	}

	t.Run("higher employee cap qualifies", func(t *testing.T) {
		t.Parallel()
		pro := entitlement.Plan{
			ID: "pro",
			Caps: map[entitlement.Resource]entitlement.Cap{
				entitlement.ResourceEmployees:    100,
				entitlement.ResourceCertificates: 25,
				entitlement.ResourceRHUsers:      1,
			},
		}
		assert.True(t, pro.RaisesAnyCap(free))
	})

	t.Run("identical caps do not qualify", func(t *testing.T) {
		t.Parallel()
		clone := entitlement.Plan{ID: "clone", Caps: free.Caps}
		assert.False(t, clone.RaisesAnyCap(free))
	})

	t.Run("strictly lower caps do not qualify", func(t *testing.T) {
		t.Parallel()
		micro := entitlement.Plan{
			ID: "micro",
			Caps: map[entitlement.Resource]entitlement.Cap{
				entitlement.ResourceEmployees:    5,
				entitlement.ResourceCertificates: 10,
			},
		}
		assert.False(t, micro.RaisesAnyCap(free))
	})

	t.Run("unlimited beats any bound", func(t *testing.T) {
		t.Parallel()
		ent := entitlement.Plan{
			ID: "enterprise",
			Caps: map[entitlement.Resource]entitlement.Cap{
				entitlement.ResourceCertificates: entitlement.Unlimited,
			},
		}
		assert.True(t, ent.RaisesAnyCap(free))
	})
}

func TestPlan_Limits(t *testing.T) {
	t.Parallel()

	plan := entitlement.Plan{
		ID: "partial",
		Caps: map[entitlement.Resource]entitlement.Cap{
			entitlement.ResourceEmployees: 30,
		},
	}

	limits := plan.Limits()
	assert.Equal(t, entitlement.Cap(30), limits.Employees)
	// Resources absent from the plan never allow creation.
	assert.Equal(t, entitlement.Cap(0), limits.Certificates)
	assert.False(t, limits.Certificates.Allows(0))
}

func TestValidatePlans(t *testing.T) {
	t.Parallel()

	t.Run("accepts a well-formed catalog", func(t *testing.T) {
		t.Parallel()
		err := entitlement.ValidatePlans(map[string]entitlement.Plan{
			"free": {ID: "free", Caps: map[entitlement.Resource]entitlement.Cap{
				entitlement.ResourceEmployees: 10,
			}},
		})
		assert.NoError(t, err)
	})

	t.Run("rejects unknown resources", func(t *testing.T) {
		t.Parallel()
		err := entitlement.ValidatePlans(map[string]entitlement.Plan{
			"free": {ID: "free", Caps: map[entitlement.Resource]entitlement.Cap{
				"widgets": 10,
			}},
		})
		assert.ErrorIs(t, err, entitlement.ErrInvalidPlanConfiguration)
	})

	t.Run("rejects caps below the unlimited sentinel", func(t *testing.T) {
		t.Parallel()
		err := entitlement.ValidatePlans(map[string]entitlement.Plan{
			"free": {ID: "free", Caps: map[entitlement.Resource]entitlement.Cap{
				entitlement.ResourceEmployees: -2,
			}},
		})
		assert.ErrorIs(t, err, entitlement.ErrInvalidPlanConfiguration)
	})

	t.Run("rejects paid plans without a price id", func(t *testing.T) {
		t.Parallel()
		err := entitlement.ValidatePlans(map[string]entitlement.Plan{
			"pro": {ID: "pro", Interval: entitlement.BillingIntervalMonthly},
		})
		assert.ErrorIs(t, err, entitlement.ErrInvalidPlanConfiguration)
	})

	t.Run("rejects mismatched map key and id", func(t *testing.T) {
		t.Parallel()
		err := entitlement.ValidatePlans(map[string]entitlement.Plan{
			"free": {ID: "pro"},
		})
		assert.ErrorIs(t, err, entitlement.ErrInvalidPlanConfiguration)
	})
}
