package handler

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/mcoot/shootout/internal/api/request"
	"github.com/mcoot/shootout/internal/api/response"
	"github.com/mcoot/shootout/internal/model"
	"github.com/mcoot/shootout/internal/services/combat"
)

// CombatHandler handles shoot and revive endpoints
type CombatHandler struct {
	engine *combat.Engine
}

// NewCombatHandler creates a new combat handler
func NewCombatHandler(engine *combat.Engine) *CombatHandler {
	return &CombatHandler{
		engine: engine,
	}
}

// Shoot handles POST /api/v1/combat/shoot
func (h *CombatHandler) Shoot(w http.ResponseWriter, r *http.Request) {
	var req request.ShootRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		WriteError(w, NewInvalidRequestError("invalid request body"))
		return
	}
	if req.ActorID == "" || req.TargetID == "" {
		WriteError(w, NewInvalidRequestError("actor_id and target_id are required"))
		return
	}

	outcome, err := h.engine.Shoot(r.Context(), combat.ShootRequest{
		Actor:           model.PlayerID(req.ActorID),
		Target:          model.PlayerID(req.TargetID),
		TargetMarked:    req.TargetMarked,
		TargetProtected: req.TargetProtected,
	})
	if err != nil {
		WriteError(w, err)
		return
	}

	response.JSON(w, http.StatusOK, response.OutcomeFromModel(outcome))
}

// Revive handles POST /api/v1/combat/revive
func (h *CombatHandler) Revive(w http.ResponseWriter, r *http.Request) {
	var req request.ReviveRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		WriteError(w, NewInvalidRequestError("invalid request body"))
		return
	}
	if req.MedicID == "" || req.PatientID == "" {
		WriteError(w, NewInvalidRequestError("medic_id and patient_id are required"))
		return
	}

	outcome, err := h.engine.Revive(r.Context(), combat.ReviveRequest{
		Medic:         model.PlayerID(req.MedicID),
		Patient:       model.PlayerID(req.PatientID),
		PatientMarked: req.PatientMarked,
	})
	if err != nil {
		WriteError(w, err)
		return
	}

	response.JSON(w, http.StatusOK, response.OutcomeFromModel(outcome))
}

// MarkerFailure handles POST /api/v1/combat/marker-failure.
// The response is always an error: 502 once the failure is recorded.
func (h *CombatHandler) MarkerFailure(w http.ResponseWriter, r *http.Request) {
	var req request.MarkerFailureRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		WriteError(w, NewInvalidRequestError("invalid request body"))
		return
	}
	if req.OutcomeID == "" {
		WriteError(w, NewInvalidRequestError("outcome_id is required"))
		return
	}

	var cause error
	if req.Reason != "" {
		cause = errors.New(req.Reason)
	}

	err := h.engine.ReportMarkerFailure(r.Context(), model.OutcomeID(req.OutcomeID), cause, req.Refund)
	WriteError(w, err)
}
