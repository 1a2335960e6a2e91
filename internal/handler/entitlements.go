package handler

import (
	"net/http"

	"github.com/asoflow/asoflow/pkg/entitlement"
	"github.com/asoflow/asoflow/pkg/httpserver"
	"github.com/asoflow/asoflow/pkg/tenant"
)

func (h *Handler) healthz(w http.ResponseWriter, r *http.Request) {
	httpserver.HealthHandler(h.log, h.healthChecks...)(w, r)
}

// getEntitlements resolves the caller's plan limits and permission flags
// against live usage.
func (h *Handler) getEntitlements(w http.ResponseWriter, r *http.Request) {
	t := tenant.MustFromContext(r.Context())

	usage, err := h.usage.Snapshot(r.Context(), t.ID)
	if err != nil {
		h.respondStoreError(w, r, err)
		return
	}

	result := h.resolver.Resolve(r.Context(), t.ID.String(), usage)
	respondJSON(w, http.StatusOK, result)
}

// gateCheck answers whether the caller may create one more of the given
// resource, with a remediation reason when blocked.
func (h *Handler) gateCheck(w http.ResponseWriter, r *http.Request) {
	res := entitlement.Resource(r.URL.Query().Get("resource"))
	if !res.Valid() {
		respondError(w, http.StatusBadRequest, "unknown resource")
		return
	}

	t := tenant.MustFromContext(r.Context())
	usage, err := h.usage.Snapshot(r.Context(), t.ID)
	if err != nil {
		h.respondStoreError(w, r, err)
		return
	}

	result := h.resolver.Resolve(r.Context(), t.ID.String(), usage)
	decision := entitlement.Decide(res, result)
	respondJSON(w, http.StatusOK, gateResponse{
		Decision: decision,
		Reason:   decision.Reason(),
	})
}

type gateResponse struct {
	entitlement.Decision
	Reason string `json:"reason,omitempty"`
}

// gate resolves and decides for a mutating endpoint, writing the blocked
// response itself. The boolean reports whether the request may proceed.
func (h *Handler) gate(w http.ResponseWriter, r *http.Request, res entitlement.Resource) bool {
	t := tenant.MustFromContext(r.Context())

	usage, err := h.usage.Snapshot(r.Context(), t.ID)
	if err != nil {
		h.respondStoreError(w, r, err)
		return false
	}

	result := h.resolver.Resolve(r.Context(), t.ID.String(), usage)
	if result.Errored() {
		respondError(w, http.StatusServiceUnavailable, "entitlements temporarily unavailable")
		return false
	}

	decision := entitlement.Decide(res, result)
	if !decision.Allowed() {
		respondJSON(w, http.StatusPaymentRequired, gateResponse{
			Decision: decision,
			Reason:   decision.Reason(),
		})
		return false
	}
	return true
}
