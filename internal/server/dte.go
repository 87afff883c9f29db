package server

import (
	"net/http"

	"github.com/emenda-labs/warden/core/changespec"
	"github.com/emenda-labs/warden/core/dte"
	"github.com/emenda-labs/warden/core/model"
	"github.com/emenda-labs/warden/pkg/httpx"
)

func (s *Server) handleDTEApply(w http.ResponseWriter, r *http.Request) {
	spec, err := changespec.Decode(r.Body)
	if err != nil {
		httpx.WriteError(w, r, http.StatusBadRequest, err.Error(), "")
		return
	}

	workdir := workdirFromScope(spec.Scope)
	result := s.Transform.Apply(spec, workdir)
	httpx.WriteJSON(w, http.StatusOK, result)
}

type dteVerifyRequest struct {
	Spec       model.ChangeSpec `json:"spec"`
	WorkingDir string           `json:"workingDir"`
}

func (s *Server) handleDTEVerify(w http.ResponseWriter, r *http.Request) {
	var req dteVerifyRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.WriteError(w, r, http.StatusBadRequest, "invalid request body", err.Error())
		return
	}
	if req.Spec.Tests.MutationThreshold == 0 {
		req.Spec.Tests.MutationThreshold = s.DefaultMutationThreshold
	}

	result := s.Transform.Verify(r.Context(), req.Spec, req.WorkingDir)
	httpx.WriteJSON(w, http.StatusOK, result)
}

type dteDiffRequest struct {
	OldRoot     string `json:"oldRoot"`
	NewRoot     string `json:"newRoot"`
	ScopeModule string `json:"scopeModule"`
}

type dteDiffResponse struct {
	Report  model.DiffReport `json:"report"`
	Patches []model.Patch    `json:"patches"`
}

// handleDTEDiff exposes the diff-to-ChangeSpec proposer as an optional
// capability alongside apply/verify.
func (s *Server) handleDTEDiff(w http.ResponseWriter, r *http.Request) {
	var req dteDiffRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.WriteError(w, r, http.StatusBadRequest, "invalid request body", err.Error())
		return
	}

	report, patches, err := dte.Propose(r.Context(), req.OldRoot, req.NewRoot, req.ScopeModule)
	if err != nil {
		httpx.WriteError(w, r, http.StatusBadRequest, err.Error(), "")
		return
	}
	httpx.WriteJSON(w, http.StatusOK, dteDiffResponse{Report: report, Patches: patches})
}

func workdirFromScope(scope []string) string {
	if len(scope) == 0 {
		return "."
	}
	return scope[0]
}
