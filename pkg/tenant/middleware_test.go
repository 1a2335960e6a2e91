package tenant_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/asoflow/asoflow/pkg/tenant"
)

type mapProvider map[uuid.UUID]*tenant.Tenant

func (p mapProvider) ByID(_ context.Context, id uuid.UUID) (*tenant.Tenant, error) {
	t, ok := p[id]
	if !ok {
		return nil, tenant.ErrTenantNotFound
	}
	return t, nil
}

func TestMiddleware(t *testing.T) {
	t.Parallel()

	activeID := uuid.New()
	inactiveID := uuid.New()
	provider := mapProvider{
		activeID:   {ID: activeID, Name: "Clinica Boa Saude", CNPJ: "12.345.678/0001-90", Active: true},
		inactiveID: {ID: inactiveID, Name: "Encerrada LTDA", Active: false},
	}

	echo := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if resolved, ok := tenant.FromContext(r.Context()); ok {
			w.Header().Set("X-Resolved", resolved.Name)
		}
		w.WriteHeader(http.StatusOK)
	})
	handler := tenant.Middleware(provider, nil)(echo)

	t.Run("resolves active tenant into context", func(t *testing.T) {
		t.Parallel()

		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.Header.Set(tenant.HeaderTenantID, activeID.String())
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, req)

		assert.Equal(t, http.StatusOK, rec.Code)
		assert.Equal(t, "Clinica Boa Saude", rec.Header().Get("X-Resolved"))
	})

	t.Run("no header passes through without tenant", func(t *testing.T) {
		t.Parallel()

		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))

		assert.Equal(t, http.StatusOK, rec.Code)
		assert.Empty(t, rec.Header().Get("X-Resolved"))
	})

	t.Run("malformed id is a bad request", func(t *testing.T) {
		t.Parallel()

		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.Header.Set(tenant.HeaderTenantID, "not-a-uuid")
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, req)

		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})

	t.Run("unknown tenant is not found", func(t *testing.T) {
		t.Parallel()

		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.Header.Set(tenant.HeaderTenantID, uuid.NewString())
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, req)

		assert.Equal(t, http.StatusNotFound, rec.Code)
	})

	t.Run("inactive tenant is forbidden", func(t *testing.T) {
		t.Parallel()

		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.Header.Set(tenant.HeaderTenantID, inactiveID.String())
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, req)

		assert.Equal(t, http.StatusForbidden, rec.Code)
	})
}

func TestRequireTenant(t *testing.T) {
	t.Parallel()

	next := http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
	})
	handler := tenant.RequireTenant(nil)(next)

	t.Run("rejects without tenant", func(t *testing.T) {
		t.Parallel()

		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))
		assert.Equal(t, http.StatusForbidden, rec.Code)
	})

	t.Run("passes with tenant", func(t *testing.T) {
		t.Parallel()

		req := httptest.NewRequest(http.MethodGet, "/", nil)
		ctx := tenant.WithTenant(req.Context(), &tenant.Tenant{ID: uuid.New(), Active: true})
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, req.WithContext(ctx))
		assert.Equal(t, http.StatusOK, rec.Code)
	})
}

func TestContext(t *testing.T) {
	t.Parallel()

	t.Run("round trip", func(t *testing.T) {
		t.Parallel()

		id := uuid.New()
		ctx := tenant.WithTenant(context.Background(), &tenant.Tenant{ID: id})

		got, ok := tenant.FromContext(ctx)
		require.True(t, ok)
		assert.Equal(t, id, got.ID)

		gotID, ok := tenant.IDFromContext(ctx)
		require.True(t, ok)
		assert.Equal(t, id, gotID)
	})

	t.Run("empty context", func(t *testing.T) {
		t.Parallel()

		_, ok := tenant.FromContext(context.Background())
		assert.False(t, ok)
		assert.Panics(t, func() { tenant.MustFromContext(context.Background()) })
	})

	t.Run("logger extractor", func(t *testing.T) {
		t.Parallel()

		id := uuid.New()
		ctx := tenant.WithTenant(context.Background(), &tenant.Tenant{ID: id})

		attr, ok := tenant.LoggerExtractor()(ctx)
		require.True(t, ok)
		assert.Equal(t, "tenant_id", attr.Key)
		assert.Equal(t, id.String(), attr.Value.String())

		_, ok = tenant.LoggerExtractor()(context.Background())
		assert.False(t, ok)
	})
}
