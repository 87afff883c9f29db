package server

import (
	"errors"
	"net/http"

	"github.com/emenda-labs/warden/core/model"
	"github.com/emenda-labs/warden/pkg/httpx"
)

type createMissionRequest struct {
	Title string          `json:"title"`
	Risk  model.RiskLevel `json:"risk,omitempty"`
}

func (s *Server) handleCreateMission(w http.ResponseWriter, r *http.Request) {
	var req createMissionRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.WriteError(w, r, http.StatusBadRequest, "invalid request body", err.Error())
		return
	}
	if req.Risk == "" {
		req.Risk = model.RiskLow
	}

	m, err := s.Coordinator.CreateMission(req.Title, req.Risk)
	if err != nil {
		httpx.WriteError(w, r, http.StatusBadRequest, err.Error(), "")
		return
	}
	httpx.WriteJSON(w, http.StatusCreated, m)
}

func (s *Server) handleGetMission(w http.ResponseWriter, r *http.Request) {
	m, err := s.Coordinator.GetMission(r.PathValue("id"))
	if err != nil {
		writeMissionError(w, r, err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, m)
}

func (s *Server) handleApproveCheckpoint(w http.ResponseWriter, r *http.Request) {
	m, err := s.Coordinator.ApproveCheckpoint(r.PathValue("id"), model.CheckpointName(r.PathValue("name")))
	if err != nil {
		writeMissionError(w, r, err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, m)
}

type createBatchRequest struct {
	FileContents map[string]string `json:"fileContents,omitempty"`
}

func (s *Server) handleCreateBatch(w http.ResponseWriter, r *http.Request) {
	var req createBatchRequest
	// A body is optional here; ignore decode errors on an empty request.
	_ = httpx.DecodeJSON(r, &req)

	batch, err := s.Coordinator.CreateBatch(r.PathValue("id"), req.FileContents)
	if err != nil {
		writeMissionError(w, r, err)
		return
	}
	httpx.WriteJSON(w, http.StatusCreated, batch)
}

type rollbackResponse struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
}

func (s *Server) handleRollbackBatch(w http.ResponseWriter, r *http.Request) {
	err := s.Coordinator.RollbackBatch(r.PathValue("missionId"), r.PathValue("batchId"), writeFileToDisk)
	if err != nil {
		writeMissionError(w, r, err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, rollbackResponse{Success: true, Message: "batch rolled back"})
}

func writeMissionError(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, model.ErrMissionNotFound), errors.Is(err, model.ErrCheckpointNotFound), errors.Is(err, model.ErrBatchNotFound):
		httpx.WriteError(w, r, http.StatusNotFound, err.Error(), "")
	case errors.Is(err, model.ErrSecurityBlock):
		httpx.WriteError(w, r, http.StatusForbidden, err.Error(), "")
	case errors.Is(err, model.ErrInvalidMission):
		httpx.WriteError(w, r, http.StatusBadRequest, err.Error(), "")
	default:
		httpx.WriteError(w, r, http.StatusInternalServerError, "internal server error", "")
	}
}
