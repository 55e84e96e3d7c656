package response

import (
	"time"

	"github.com/jkrumboe/wizard-tracker-sub001/internal/model"
	"github.com/jkrumboe/wizard-tracker-sub001/internal/services/rankings"
	"github.com/jkrumboe/wizard-tracker-sub001/internal/services/recalc"
)

// RankingEntry represents one leaderboard row in API responses
type RankingEntry struct {
	Rank        int    `json:"rank"`
	IdentityID  string `json:"identity_id"`
	DisplayName string `json:"display_name"`
	Rating      int    `json:"rating"`
	Peak        int    `json:"peak"`
	GamesPlayed int    `json:"games_played"`
	Streak      int    `json:"streak"`
}

// Pagination describes the page window of a rankings response
type Pagination struct {
	Page       int `json:"page"`
	Limit      int `json:"limit"`
	Total      int `json:"total"`
	TotalPages int `json:"total_pages"`
}

// RankingsResponse is the leaderboard endpoint response
type RankingsResponse struct {
	GameType   string         `json:"game_type"`
	Rankings   []RankingEntry `json:"rankings"`
	Pagination Pagination     `json:"pagination"`
}

// RankingsFromService converts a rankings page to the response shape
func RankingsFromService(gameType model.GameType, page *rankings.RankingsPage) RankingsResponse {
	entries := make([]RankingEntry, len(page.Rankings))
	for i, entry := range page.Rankings {
		entries[i] = RankingEntry{
			Rank:        entry.Rank,
			IdentityID:  string(entry.IdentityID),
			DisplayName: entry.DisplayName,
			Rating:      entry.Rating,
			Peak:        entry.Peak,
			GamesPlayed: entry.GamesPlayed,
			Streak:      entry.Streak,
		}
	}
	return RankingsResponse{
		GameType: string(gameType),
		Rankings: entries,
		Pagination: Pagination{
			Page:       page.Pagination.Page,
			Limit:      page.Pagination.Limit,
			Total:      page.Pagination.Total,
			TotalPages: page.Pagination.TotalPages,
		},
	}
}

// HistoryEntry represents one applied game in API responses
type HistoryEntry struct {
	Rating    int       `json:"rating"`
	Change    int       `json:"change"`
	GameID    string    `json:"game_id"`
	Opponents []string  `json:"opponents"`
	Placement int       `json:"placement"`
	Date      time.Time `json:"date"`
}

// HistoryResponse is the per-player history endpoint response
type HistoryResponse struct {
	IdentityID    string         `json:"identity_id"`
	GameType      string         `json:"game_type"`
	CurrentRating int            `json:"current_rating"`
	GamesPlayed   int            `json:"games_played"`
	History       []HistoryEntry `json:"history"`
}

// HistoryFromService converts a history projection to the response shape
func HistoryFromService(h *rankings.History) HistoryResponse {
	entries := make([]HistoryEntry, len(h.History))
	for i, entry := range h.History {
		opponents := make([]string, len(entry.Opponents))
		for j, opp := range entry.Opponents {
			opponents[j] = string(opp)
		}
		entries[i] = HistoryEntry{
			Rating:    entry.Rating,
			Change:    entry.Change,
			GameID:    string(entry.GameID),
			Opponents: opponents,
			Placement: entry.Placement,
			Date:      entry.Date,
		}
	}
	return HistoryResponse{
		IdentityID:    string(h.IdentityID),
		GameType:      string(h.GameType),
		CurrentRating: h.CurrentRating,
		GamesPlayed:   h.GamesPlayed,
		History:       entries,
	}
}

// RatingSummary is one game type's rating state in API responses
type RatingSummary struct {
	GameType    string    `json:"game_type"`
	Rating      int       `json:"rating"`
	Peak        int       `json:"peak"`
	Floor       int       `json:"floor"`
	GamesPlayed int       `json:"games_played"`
	Streak      int       `json:"streak"`
	LastUpdated time.Time `json:"last_updated"`
}

// RatingSummariesFromService converts rating summaries to the response shape
func RatingSummariesFromService(summaries []rankings.RatingSummary) []RatingSummary {
	result := make([]RatingSummary, len(summaries))
	for i, s := range summaries {
		result[i] = RatingSummary{
			GameType:    string(s.GameType),
			Rating:      s.Rating,
			Peak:        s.Peak,
			Floor:       s.Floor,
			GamesPlayed: s.GamesPlayed,
			Streak:      s.Streak,
			LastUpdated: s.LastUpdated,
		}
	}
	return result
}

// RatingResult represents one player's rating update in API responses
type RatingResult struct {
	IdentityID string `json:"identity_id"`
	Placement  int    `json:"placement"`
	Score      float64 `json:"score"`
	OldRating  int    `json:"old_rating"`
	NewRating  int    `json:"new_rating"`
	Change     int    `json:"change"`
	Won        bool   `json:"won"`
}

// ProcessResponse is the process-game endpoint response
type ProcessResponse struct {
	GameID  string         `json:"game_id"`
	Applied bool           `json:"applied"`
	Results []RatingResult `json:"results"`
}

// ProcessFromResults converts engine results to the response shape
func ProcessFromResults(gameID model.GameID, results []model.RatingResult) ProcessResponse {
	converted := make([]RatingResult, len(results))
	for i, r := range results {
		converted[i] = RatingResult{
			IdentityID: string(r.IdentityID),
			Placement:  r.Placement,
			Score:      r.Score,
			OldRating:  r.OldRating,
			NewRating:  r.NewRating,
			Change:     r.Change,
			Won:        r.Won,
		}
	}
	return ProcessResponse{
		GameID:  string(gameID),
		Applied: len(results) > 0,
		Results: converted,
	}
}

// RecalcResponse is the recalculate endpoint response
type RecalcResponse struct {
	GamesProcessed int      `json:"games_processed"`
	PlayerUpdates  int      `json:"player_updates"`
	Skipped        int      `json:"skipped"`
	Errors         []string `json:"errors"`
}

// RecalcFromSummary converts a recalculation summary to the response shape
func RecalcFromSummary(summary *recalc.Summary) RecalcResponse {
	errs := summary.Errors
	if errs == nil {
		errs = []string{}
	}
	return RecalcResponse{
		GamesProcessed: summary.GamesProcessed,
		PlayerUpdates:  summary.PlayerUpdates,
		Skipped:        summary.Skipped,
		Errors:         errs,
	}
}
