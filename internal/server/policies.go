package server

import (
	"net/http"

	"github.com/emenda-labs/warden/core/model"
	"github.com/emenda-labs/warden/pkg/httpx"
)

// ModelPolicy is the routing/pricing record surfaced at /policies/models:
// a model's per-1000-token pricing paired with the priority it should be
// given when a budget's routeRequest considers it.
type ModelPolicy struct {
	ModelID  string             `json:"modelId"`
	Pricing  model.ModelPricing `json:"pricing"`
	Priority int                `json:"priority"`
}

func (s *Server) handleGetPolicies(w http.ResponseWriter, r *http.Request) {
	// The ledger only tracks pricing directly; priority is a per-budget
	// concept in v1, so it is reported as 0 here and set explicitly on a
	// budget's models[] rather than globally.
	policies := make([]ModelPolicy, 0)
	for modelID, pricing := range s.Ledger.Pricing() {
		policies = append(policies, ModelPolicy{ModelID: modelID, Pricing: pricing})
	}
	httpx.WriteJSON(w, http.StatusOK, policies)
}

func (s *Server) handlePutPolicies(w http.ResponseWriter, r *http.Request) {
	var policy ModelPolicy
	if err := httpx.DecodeJSON(r, &policy); err != nil {
		httpx.WriteError(w, r, http.StatusBadRequest, "invalid request body", err.Error())
		return
	}
	if policy.ModelID == "" {
		httpx.WriteError(w, r, http.StatusBadRequest, "modelId is required", "")
		return
	}
	s.Ledger.RegisterModel(policy.ModelID, policy.Pricing)
	httpx.WriteJSON(w, http.StatusOK, policy)
}
