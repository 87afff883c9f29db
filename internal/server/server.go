// Package server wires the HTTP surface: the gateway (preflight/route),
// mission lifecycle, DTE apply/verify/diff, FinOps, policy, and evidence
// endpoints, all sharing one request-scoped middleware chain.
package server

import (
	"log/slog"
	"net/http"

	"github.com/emenda-labs/warden/core/evidence"
	"github.com/emenda-labs/warden/core/finops"
	"github.com/emenda-labs/warden/core/mission"
	"github.com/emenda-labs/warden/core/redact"
	"github.com/emenda-labs/warden/core/transform"
	"github.com/emenda-labs/warden/pkg/httpx"
)

// Server holds every component the HTTP handlers dispatch to.
type Server struct {
	Redactor    *redact.Engine
	Ledger      *finops.Ledger
	Evidence    *evidence.Log
	Coordinator *mission.Coordinator
	Transform   *transform.Engine
	Logger      *slog.Logger

	DefaultMutationThreshold float64
	MaxRequestBodyBytes      int64
}

// Routes builds the full ServeMux with logging, request-ID, and
// JSON-content-type middleware applied to every route.
func (s *Server) Routes() http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("GET /health", s.handleHealth)

	mux.HandleFunc("POST /gateway/preflight", s.handleGatewayPreflight)
	mux.HandleFunc("POST /gateway/route", s.handleGatewayRoute)

	mux.HandleFunc("POST /missions", s.handleCreateMission)
	mux.HandleFunc("GET /missions/{id}", s.handleGetMission)
	mux.HandleFunc("POST /missions/{id}/checkpoints/{name}/approve", s.handleApproveCheckpoint)
	mux.HandleFunc("POST /missions/{id}/batches", s.handleCreateBatch)
	mux.HandleFunc("POST /missions/{missionId}/rollback/{batchId}", s.handleRollbackBatch)

	mux.HandleFunc("POST /dte/apply", s.handleDTEApply)
	mux.HandleFunc("POST /dte/verify", s.handleDTEVerify)
	mux.HandleFunc("POST /dte/diff", s.handleDTEDiff)

	mux.HandleFunc("POST /finops/forecast", s.handleFinOpsForecast)
	mux.HandleFunc("GET /finops/budget", s.handleGetBudget)
	mux.HandleFunc("POST /finops/budget", s.handleCreateBudget)

	mux.HandleFunc("GET /policies/models", s.handleGetPolicies)
	mux.HandleFunc("PUT /policies/models", s.handlePutPolicies)

	mux.HandleFunc("POST /evidence/events", s.handlePostEvent)
	mux.HandleFunc("GET /evidence/mission/{id}", s.handleGetProvenance)
	mux.HandleFunc("POST /evidence/export", s.handleExportEvidence)

	var handler http.Handler = mux
	handler = httpx.RequireJSON(handler)
	handler = httpx.Logging(s.Logger)(handler)
	handler = httpx.RequestID(handler)
	handler = httpx.MaxBytes(s.MaxRequestBodyBytes)(handler)
	return handler
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	httpx.WriteJSON(w, http.StatusOK, map[string]string{"status": "healthy", "service": "warden"})
}
