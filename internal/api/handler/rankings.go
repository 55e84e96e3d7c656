package handler

import (
	"net/http"
	"strconv"

	"github.com/gorilla/mux"

	"github.com/jkrumboe/wizard-tracker-sub001/internal/api/response"
	"github.com/jkrumboe/wizard-tracker-sub001/internal/model"
	"github.com/jkrumboe/wizard-tracker-sub001/internal/services/rankings"
)

// RankingsHandler serves leaderboard and rating history reads
type RankingsHandler struct {
	rankings *rankings.Service
}

// NewRankingsHandler creates a new rankings handler
func NewRankingsHandler(rankingsService *rankings.Service) *RankingsHandler {
	return &RankingsHandler{rankings: rankingsService}
}

// GetRankings handles GET /rankings/{game_type}
func (h *RankingsHandler) GetRankings(w http.ResponseWriter, r *http.Request) {
	gameType := model.GameType(mux.Vars(r)["game_type"])

	page := queryInt(r, "page", 1)
	limit := queryInt(r, "limit", 20)
	minGames := queryInt(r, "min_games", 0)

	result, err := h.rankings.GetRankings(r.Context(), gameType, page, limit, minGames)
	if err != nil {
		WriteError(w, err)
		return
	}

	response.JSON(w, http.StatusOK, response.RankingsFromService(model.NormalizeGameType(string(gameType)), result))
}

// GetHistory handles GET /players/{id}/history/{game_type}
func (h *RankingsHandler) GetHistory(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)
	identityID := model.IdentityID(vars["id"])
	gameType := model.GameType(vars["game_type"])

	limit := queryInt(r, "limit", 10)

	history, err := h.rankings.GetHistory(r.Context(), identityID, gameType, limit)
	if err != nil {
		WriteError(w, err)
		return
	}

	response.JSON(w, http.StatusOK, response.HistoryFromService(history))
}

// GetAllRatings handles GET /players/{id}/ratings
func (h *RankingsHandler) GetAllRatings(w http.ResponseWriter, r *http.Request) {
	identityID := model.IdentityID(mux.Vars(r)["id"])

	summaries, err := h.rankings.GetAllRatings(r.Context(), identityID)
	if err != nil {
		WriteError(w, err)
		return
	}

	response.JSON(w, http.StatusOK, response.RatingSummariesFromService(summaries))
}

// queryInt parses an int query parameter with a default
func queryInt(r *http.Request, name string, def int) int {
	raw := r.URL.Query().Get(name)
	if raw == "" {
		return def
	}
	value, err := strconv.Atoi(raw)
	if err != nil {
		return def
	}
	return value
}
