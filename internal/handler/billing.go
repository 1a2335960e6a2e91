package handler

import (
	"encoding/json"
	"io"
	"net/http"

	"github.com/asoflow/asoflow/pkg/billing"
	"github.com/asoflow/asoflow/pkg/tenant"
)

// maxWebhookBody bounds provider payloads; Paddle events are a few KB.
const maxWebhookBody = 1 << 20

type checkoutRequest struct {
	PlanID     string `json:"plan_id"`
	Email      string `json:"email"`
	SuccessURL string `json:"success_url"`
	CancelURL  string `json:"cancel_url"`
}

// billingCheckout opens a checkout session for a plan change. Free plans
// activate immediately and the response link points at the success URL.
func (h *Handler) billingCheckout(w http.ResponseWriter, r *http.Request) {
	t := tenant.MustFromContext(r.Context())

	var req checkoutRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "malformed request body")
		return
	}
	if req.PlanID == "" {
		respondError(w, http.StatusBadRequest, "plan_id is required")
		return
	}

	email := req.Email
	if email == "" {
		email = t.Email
	}

	link, err := h.billing.Checkout(r.Context(), t.ID, req.PlanID, billing.CheckoutOptions{
		Email:      email,
		SuccessURL: req.SuccessURL,
		CancelURL:  req.CancelURL,
	})
	if err != nil {
		h.respondStoreError(w, r, err)
		return
	}

	respondJSON(w, http.StatusCreated, link)
}

// billingWebhook receives provider events. The signature header is
// verified inside the billing service before anything is applied.
func (h *Handler) billingWebhook(w http.ResponseWriter, r *http.Request) {
	payload, err := io.ReadAll(io.LimitReader(r.Body, maxWebhookBody))
	if err != nil {
		respondError(w, http.StatusBadRequest, "unreadable payload")
		return
	}

	signature := r.Header.Get("Paddle-Signature")
	if err := h.billing.HandleWebhook(r.Context(), payload, signature); err != nil {
		h.respondStoreError(w, r, err)
		return
	}

	w.WriteHeader(http.StatusOK)
}
