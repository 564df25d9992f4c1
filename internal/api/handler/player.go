package handler

import (
	"encoding/json"
	"net/http"

	"github.com/gorilla/mux"

	"github.com/mcoot/shootout/internal/api/request"
	"github.com/mcoot/shootout/internal/api/response"
	"github.com/mcoot/shootout/internal/model"
	"github.com/mcoot/shootout/internal/services/ledger"
)

// PlayerHandler handles player inventory endpoints
type PlayerHandler struct {
	ledger *ledger.Ledger
}

// NewPlayerHandler creates a new player handler
func NewPlayerHandler(ledger *ledger.Ledger) *PlayerHandler {
	return &PlayerHandler{
		ledger: ledger,
	}
}

// Register handles POST /api/v1/players/{id}
func (h *PlayerHandler) Register(w http.ResponseWriter, r *http.Request) {
	id := model.PlayerID(mux.Vars(r)["id"])

	created, err := h.ledger.EnsurePlayer(r.Context(), id)
	if err != nil {
		WriteError(w, err)
		return
	}
	player, err := h.ledger.Snapshot(r.Context(), id)
	if err != nil {
		WriteError(w, err)
		return
	}

	status := http.StatusOK
	if created {
		status = http.StatusCreated
	}
	response.JSON(w, status, response.RegisterResponse{
		Player:  response.PlayerFromModel(player),
		Created: created,
	})
}

// Get handles GET /api/v1/players/{id}
// Unknown players are registered first so a first lookup shows the seed inventory.
func (h *PlayerHandler) Get(w http.ResponseWriter, r *http.Request) {
	id := model.PlayerID(mux.Vars(r)["id"])

	if _, err := h.ledger.EnsurePlayer(r.Context(), id); err != nil {
		WriteError(w, err)
		return
	}
	player, err := h.ledger.Snapshot(r.Context(), id)
	if err != nil {
		WriteError(w, err)
		return
	}

	response.JSON(w, http.StatusOK, response.PlayerFromModel(player))
}

// Adjust handles POST /api/v1/players/{id}/adjust
func (h *PlayerHandler) Adjust(w http.ResponseWriter, r *http.Request) {
	id := model.PlayerID(mux.Vars(r)["id"])

	var req request.AdjustRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		WriteError(w, NewInvalidRequestError("invalid request body"))
		return
	}
	if req.Field == "" {
		WriteError(w, NewInvalidRequestError("field is required"))
		return
	}

	field := model.Field(req.Field)
	value, err := h.ledger.Adjust(r.Context(), id, field, req.Delta, 0)
	if err != nil {
		WriteError(w, err)
		return
	}

	response.JSON(w, http.StatusOK, response.AdjustResponse{
		Field: string(field),
		Value: value,
	})
}

// SetVest handles POST /api/v1/players/{id}/vest
func (h *PlayerHandler) SetVest(w http.ResponseWriter, r *http.Request) {
	id := model.PlayerID(mux.Vars(r)["id"])

	var req request.VestRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		WriteError(w, NewInvalidRequestError("invalid request body"))
		return
	}

	armed, err := h.ledger.SetFlag(r.Context(), id, model.FlagIsVested, req.Armed)
	if err != nil {
		WriteError(w, err)
		return
	}

	response.JSON(w, http.StatusOK, response.VestResponse{Armed: armed})
}
