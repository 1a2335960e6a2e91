package handler

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/asoflow/asoflow/internal/store"
	"github.com/asoflow/asoflow/pkg/billing"
	"github.com/asoflow/asoflow/pkg/entitlement"
)

type errorResponse struct {
	Error string `json:"error"`
}

func respondJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func respondError(w http.ResponseWriter, status int, msg string) {
	respondJSON(w, status, errorResponse{Error: msg})
}

// respondStoreError maps known domain errors onto HTTP statuses, hiding
// internals behind a generic 500 for everything else.
func (h *Handler) respondStoreError(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, store.ErrDuplicateCPF),
		errors.Is(err, store.ErrDuplicateCNPJ),
		errors.Is(err, store.ErrDuplicateRHUserEmail):
		respondError(w, http.StatusConflict, err.Error())
	case errors.Is(err, store.ErrEmployeeNotFound),
		errors.Is(err, store.ErrRHUserNotFound),
		errors.Is(err, store.ErrCertificateNotFound),
		errors.Is(err, entitlement.ErrPlanNotFound),
		errors.Is(err, entitlement.ErrTenantNotFound):
		respondError(w, http.StatusNotFound, err.Error())
	case errors.Is(err, billing.ErrNoUpgradeAvailable):
		respondError(w, http.StatusNotFound, err.Error())
	case errors.Is(err, billing.ErrWebhookVerificationFailed):
		respondError(w, http.StatusUnauthorized, err.Error())
	case errors.Is(err, billing.ErrInvalidWebhookTenant),
		errors.Is(err, billing.ErrUnknownPrice):
		respondError(w, http.StatusBadRequest, err.Error())
	default:
		h.log.ErrorContext(r.Context(), "request failed",
			"method", r.Method, "path", r.URL.Path, "error", err)
		respondError(w, http.StatusInternalServerError, "internal server error")
	}
}
