package server

import (
	"errors"
	"net/http"

	"github.com/emenda-labs/warden/core/model"
	"github.com/emenda-labs/warden/pkg/httpx"
)

type forecastRequest struct {
	ChangeSpec model.ChangeSpec `json:"changeSpec"`
	Provider   string           `json:"provider,omitempty"`
}

type forecastResponse struct {
	USDEstimate float64 `json:"usdEstimate"`
	Tokens      int     `json:"tokens"`
	P95Latency  float64 `json:"p95Latency"`
}

func (s *Server) handleFinOpsForecast(w http.ResponseWriter, r *http.Request) {
	var req forecastRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.WriteError(w, r, http.StatusBadRequest, "invalid request body", err.Error())
		return
	}

	modelID := req.Provider
	if modelID == "" {
		modelID = "warden-mini"
	}
	tokens := estimateChangeSpecTokens(req.ChangeSpec)

	forecast, err := s.Ledger.ForecastCost(modelID, tokens, tokens/2)
	if err != nil {
		httpx.WriteError(w, r, http.StatusBadRequest, err.Error(), "")
		return
	}

	httpx.WriteJSON(w, http.StatusOK, forecastResponse{
		USDEstimate: forecast.EstimatedCost,
		Tokens:      tokens,
		P95Latency:  0,
	})
}

func estimateChangeSpecTokens(spec model.ChangeSpec) int {
	tokens := len(spec.Intent) / 4
	for _, p := range spec.Patches {
		tokens += len(p.Path) + len(p.Selector)
	}
	if tokens < 1 {
		tokens = 1
	}
	return tokens
}

type budgetStatusResponse struct {
	Budget model.Budget `json:"budget"`
}

func (s *Server) handleGetBudget(w http.ResponseWriter, r *http.Request) {
	id := r.URL.Query().Get("id")
	if id == "" {
		httpx.WriteError(w, r, http.StatusBadRequest, "id query parameter is required", "")
		return
	}
	b, err := s.Ledger.GetBudget(id)
	if err != nil {
		status := http.StatusInternalServerError
		if errors.Is(err, model.ErrBudgetNotFound) {
			status = http.StatusNotFound
		}
		httpx.WriteError(w, r, status, err.Error(), "")
		return
	}
	httpx.WriteJSON(w, http.StatusOK, budgetStatusResponse{Budget: *b})
}

func (s *Server) handleCreateBudget(w http.ResponseWriter, r *http.Request) {
	var b model.Budget
	if err := httpx.DecodeJSON(r, &b); err != nil {
		httpx.WriteError(w, r, http.StatusBadRequest, "invalid request body", err.Error())
		return
	}
	created := s.Ledger.CreateBudget(b)
	httpx.WriteJSON(w, http.StatusCreated, budgetStatusResponse{Budget: *created})
}
