package api

import (
	"log/slog"
	"net/http"

	"github.com/gorilla/mux"

	"github.com/jkrumboe/wizard-tracker-sub001/internal/api/handler"
	"github.com/jkrumboe/wizard-tracker-sub001/internal/api/middleware"
	"github.com/jkrumboe/wizard-tracker-sub001/internal/services/engine"
	"github.com/jkrumboe/wizard-tracker-sub001/internal/services/rankings"
	"github.com/jkrumboe/wizard-tracker-sub001/internal/services/recalc"
	"github.com/jkrumboe/wizard-tracker-sub001/internal/storage"
)

// RouterConfig holds configuration for the API router
type RouterConfig struct {
	Logger          *slog.Logger
	GameStore       storage.GameStore
	Engine          *engine.Service
	RecalcService   *recalc.Service
	RankingsService *rankings.Service
}

// NewRouter creates a new API router with all routes configured
func NewRouter(cfg RouterConfig) http.Handler {
	r := mux.NewRouter()

	rankingsHandler := handler.NewRankingsHandler(cfg.RankingsService)
	ratingHandler := handler.NewRatingHandler(cfg.GameStore, cfg.Engine, cfg.RecalcService)

	loggingMiddleware := middleware.Logging(cfg.Logger)
	recoveryMiddleware := middleware.Recovery(cfg.Logger)

	// API subrouter with common middleware
	api := r.PathPrefix("/api/v1").Subrouter()
	api.Use(recoveryMiddleware)
	api.Use(loggingMiddleware)

	// Read-only projections
	api.HandleFunc("/rankings/{game_type}", rankingsHandler.GetRankings).Methods(http.MethodGet)
	api.HandleFunc("/players/{id}/history/{game_type}", rankingsHandler.GetHistory).Methods(http.MethodGet)
	api.HandleFunc("/players/{id}/ratings", rankingsHandler.GetAllRatings).Methods(http.MethodGet)

	// Engine operations
	api.HandleFunc("/games/{id}/process", ratingHandler.ProcessGame).Methods(http.MethodPost)
	api.HandleFunc("/recalculate", ratingHandler.Recalculate).Methods(http.MethodPost)

	// Health check endpoint
	api.HandleFunc("/health", healthHandler).Methods(http.MethodGet)

	return r
}

func healthHandler(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte(`{"status":"ok"}`))
}
