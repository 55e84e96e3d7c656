package handler

import (
	"encoding/json"
	"net/http"

	"github.com/gorilla/mux"

	"github.com/jkrumboe/wizard-tracker-sub001/internal/api/response"
	"github.com/jkrumboe/wizard-tracker-sub001/internal/model"
	"github.com/jkrumboe/wizard-tracker-sub001/internal/services/engine"
	"github.com/jkrumboe/wizard-tracker-sub001/internal/services/recalc"
	"github.com/jkrumboe/wizard-tracker-sub001/internal/storage"
)

// RatingHandler exposes the rating engine's write operations
type RatingHandler struct {
	games  storage.GameStore
	engine *engine.Service
	recalc *recalc.Service
}

// NewRatingHandler creates a new rating handler
func NewRatingHandler(games storage.GameStore, eng *engine.Service, recalcService *recalc.Service) *RatingHandler {
	return &RatingHandler{
		games:  games,
		engine: eng,
		recalc: recalcService,
	}
}

// processRequest is the body for ProcessGame
type processRequest struct {
	GameType string `json:"game_type"`
}

// ProcessGame handles POST /games/{id}/process. Skipped games (not
// finished, already applied, no rated players) return applied=false
// rather than an error: rating updates are best-effort derived state.
func (h *RatingHandler) ProcessGame(w http.ResponseWriter, r *http.Request) {
	gameID := model.GameID(mux.Vars(r)["id"])

	var req processRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		WriteError(w, NewInvalidRequestError("Invalid JSON body"))
		return
	}
	if req.GameType == "" {
		WriteError(w, NewInvalidRequestError("game_type is required"))
		return
	}

	game, err := h.games.GetGame(r.Context(), gameID)
	if err != nil {
		WriteError(w, err)
		return
	}

	results, err := h.engine.ProcessFinishedGame(r.Context(), game, model.GameType(req.GameType))
	if err != nil {
		WriteError(w, err)
		return
	}

	response.JSON(w, http.StatusOK, response.ProcessFromResults(gameID, results))
}

// recalcRequest is the body for Recalculate
type recalcRequest struct {
	DryRun   bool   `json:"dry_run"`
	GameType string `json:"game_type"`
}

// Recalculate handles POST /recalculate
func (h *RatingHandler) Recalculate(w http.ResponseWriter, r *http.Request) {
	var req recalcRequest
	if r.ContentLength > 0 {
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			WriteError(w, NewInvalidRequestError("Invalid JSON body"))
			return
		}
	}

	summary, err := h.recalc.RecalculateAll(r.Context(), recalc.Options{
		DryRun:   req.DryRun,
		GameType: model.GameType(req.GameType),
	})
	if err != nil {
		WriteError(w, err)
		return
	}

	response.JSON(w, http.StatusOK, response.RecalcFromSummary(summary))
}
