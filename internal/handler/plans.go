package handler

import (
	"net/http"

	"github.com/asoflow/asoflow/pkg/entitlement"
	"github.com/asoflow/asoflow/pkg/tenant"
)

// listPlans returns the public plan catalog. Works with or without a
// tenant header so pricing pages can call it anonymously.
func (h *Handler) listPlans(w http.ResponseWriter, r *http.Request) {
	plans, err := h.billing.PublicPlans(r.Context())
	if err != nil {
		h.respondStoreError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, plansResponse{Plans: plans})
}

type plansResponse struct {
	Plans []entitlement.Plan `json:"plans"`
}

// listUpgrades returns the qualifying upgrade plans for the caller's
// current plan, cheapest first, with the first offer as the suggestion.
func (h *Handler) listUpgrades(w http.ResponseWriter, r *http.Request) {
	t := tenant.MustFromContext(r.Context())

	planID := t.PlanID
	if planID == "" {
		planID = entitlement.DefaultPlanID
	}

	upgrades, err := h.billing.Upgrades(r.Context(), planID)
	if err != nil {
		h.respondStoreError(w, r, err)
		return
	}

	resp := upgradesResponse{CurrentPlanID: planID, Upgrades: upgrades}
	if len(upgrades) > 0 {
		resp.Suggested = &upgrades[0]
	}
	respondJSON(w, http.StatusOK, resp)
}

type upgradesResponse struct {
	CurrentPlanID string             `json:"current_plan_id"`
	Upgrades      []entitlement.Plan `json:"upgrades"`
	Suggested     *entitlement.Plan  `json:"suggested,omitempty"`
}
