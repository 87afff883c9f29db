package server

import (
	"errors"
	"net/http"
	"time"

	"github.com/emenda-labs/warden/core/model"
	"github.com/emenda-labs/warden/pkg/httpx"
)

type preflightRequest struct {
	Content  string            `json:"content"`
	Provider string            `json:"provider,omitempty"`
	Metadata map[string]string `json:"metadata,omitempty"`
}

type preflightResponse struct {
	OK               bool             `json:"ok"`
	Violations       []model.Finding  `json:"violations"`
	Redactions       []model.Finding  `json:"redactions"`
	SanitizedContent string           `json:"sanitizedContent,omitempty"`
}

func (s *Server) handleGatewayPreflight(w http.ResponseWriter, r *http.Request) {
	start := time.Now()

	var req preflightRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.WriteError(w, r, http.StatusBadRequest, "invalid request body", err.Error())
		return
	}

	result, scanErr := s.Redactor.Scan(req.Content)

	redactions := result.Findings
	var violations []model.Finding
	if scanErr != nil {
		violations = result.Findings
	}

	w.Header().Set("X-Preflight-Latency-Ms", latencyMillis(start))
	httpx.WriteJSON(w, http.StatusOK, preflightResponse{
		OK:               scanErr == nil,
		Violations:       violations,
		Redactions:       redactions,
		SanitizedContent: result.Redacted,
	})
}

type routeRequest struct {
	Task              string  `json:"task"`
	Budget            string  `json:"budget,omitempty"`
	PreferredProvider string  `json:"preferredProvider,omitempty"`
}

type routeResponse struct {
	Provider       string  `json:"provider"`
	PolicyApplied  string  `json:"policyApplied"`
	EstimatedCost  float64 `json:"estimatedCost"`
}

func (s *Server) handleGatewayRoute(w http.ResponseWriter, r *http.Request) {
	var req routeRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.WriteError(w, r, http.StatusBadRequest, "invalid request body", err.Error())
		return
	}
	if req.Budget == "" {
		httpx.WriteError(w, r, http.StatusBadRequest, "budget is required", "")
		return
	}

	estimatedTokens := estimateTaskTokens(req.Task)
	modelID, err := s.Ledger.RouteRequest(req.Budget, estimatedTokens)
	if err != nil {
		status := http.StatusBadRequest
		if errors.Is(err, model.ErrBudgetNotFound) {
			status = http.StatusNotFound
		}
		httpx.WriteError(w, r, status, err.Error(), "")
		return
	}

	forecast, err := s.Ledger.ForecastCost(modelID, estimatedTokens, 0)
	if err != nil {
		httpx.WriteError(w, r, http.StatusInternalServerError, "forecast failed", err.Error())
		return
	}

	httpx.WriteJSON(w, http.StatusOK, routeResponse{
		Provider:      modelID,
		PolicyApplied: "priority-routing",
		EstimatedCost: forecast.EstimatedCost,
	})
}

func estimateTaskTokens(task string) int {
	// A crude, deterministic proxy for token count until a real tokenizer
	// is wired in: roughly four characters per token.
	n := len(task) / 4
	if n < 1 {
		n = 1
	}
	return n
}

func latencyMillis(start time.Time) string {
	return time.Since(start).String()
}
