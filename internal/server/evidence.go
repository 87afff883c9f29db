package server

import (
	"net/http"

	"github.com/emenda-labs/warden/core/evidence"
	"github.com/emenda-labs/warden/core/model"
	"github.com/emenda-labs/warden/pkg/httpx"
)

type postEventRequest struct {
	Type      model.EventType        `json:"type"`
	MissionID string                 `json:"missionId"`
	Data      map[string]interface{} `json:"data,omitempty"`
}

func (s *Server) handlePostEvent(w http.ResponseWriter, r *http.Request) {
	var req postEventRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.WriteError(w, r, http.StatusBadRequest, "invalid request body", err.Error())
		return
	}

	evt, err := s.Evidence.Append(model.Event{Type: req.Type, MissionID: req.MissionID, Data: req.Data})
	if err != nil {
		httpx.WriteError(w, r, http.StatusInternalServerError, err.Error(), "")
		return
	}
	httpx.WriteJSON(w, http.StatusCreated, evt)
}

func (s *Server) handleGetProvenance(w http.ResponseWriter, r *http.Request) {
	graph := s.Evidence.Provenance(r.PathValue("id"))
	httpx.WriteJSON(w, http.StatusOK, graph)
}

type exportRequest struct {
	MissionID  string           `json:"missionId"`
	ChangeSpec *model.ChangeSpec `json:"changeSpec,omitempty"`
}

func (s *Server) handleExportEvidence(w http.ResponseWriter, r *http.Request) {
	var req exportRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.WriteError(w, r, http.StatusBadRequest, "invalid request body", err.Error())
		return
	}
	if req.MissionID == "" {
		httpx.WriteError(w, r, http.StatusBadRequest, "missionId is required", "")
		return
	}

	pack := s.Evidence.BuildAuditPack(req.MissionID, req.ChangeSpec, evidence.AuditPackExtras{})
	data, err := evidence.Archive(pack)
	if err != nil {
		httpx.WriteError(w, r, http.StatusInternalServerError, err.Error(), "")
		return
	}

	if _, err := s.Evidence.Append(model.Event{Type: model.EventAuditPackGenerated, MissionID: req.MissionID, Data: map[string]interface{}{"auditPackId": pack.ID}}); err != nil {
		s.Logger.Warn("server: failed to append AuditPackGenerated event", "mission", req.MissionID, "error", err)
	}

	w.Header().Set("Content-Type", "application/zip")
	w.Header().Set("Content-Disposition", "attachment; filename=audit-pack.zip")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(data)
}
