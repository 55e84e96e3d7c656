package rankings

import (
	"context"
	"sort"
	"time"

	"github.com/jkrumboe/wizard-tracker-sub001/internal/model"
	"github.com/jkrumboe/wizard-tracker-sub001/internal/storage"
)

// Entry is one leaderboard row
type Entry struct {
	Rank        int
	IdentityID  model.IdentityID
	DisplayName string
	Rating      int
	Peak        int
	GamesPlayed int
	Streak      int
}

// Pagination describes the page window of a rankings result
type Pagination struct {
	Page       int
	Limit      int
	Total      int
	TotalPages int
}

// RankingsPage is a paginated leaderboard slice
type RankingsPage struct {
	Rankings   []Entry
	Pagination Pagination
}

// History is a player's current rating plus recent applied games
type History struct {
	IdentityID    model.IdentityID
	GameType      model.GameType
	CurrentRating int
	GamesPlayed   int
	History       []model.HistoryEntry
}

// RatingSummary is one game type's rating state for an identity
type RatingSummary struct {
	GameType    model.GameType
	Rating      int
	Peak        int
	Floor       int
	GamesPlayed int
	Streak      int
	LastUpdated time.Time
}

// Service provides read-only projections over persisted rating state.
// No mutation, no idempotency concerns.
type Service struct {
	storage storage.IdentityStore
}

// NewService creates a rankings query service
func NewService(store storage.IdentityStore) *Service {
	return &Service{storage: store}
}

// GetRankings returns the leaderboard for a game type: identities with
// a record for that type and at least minGames played, rating
// descending with games played as tiebreak, paginated. Merged and
// deleted identities never rank.
func (s *Service) GetRankings(ctx context.Context, gameType model.GameType, page, limit, minGames int) (*RankingsPage, error) {
	if page < 1 || limit < 1 {
		return nil, model.ErrInvalidPage
	}

	identities, err := s.storage.ListIdentities(ctx)
	if err != nil {
		return nil, err
	}

	gt := model.NormalizeGameType(string(gameType))

	var entries []Entry
	for _, ident := range identities {
		if ident.Deleted || ident.IsMerged() {
			continue
		}
		record, ok := ident.Elo[gt]
		if !ok || record.GamesPlayed < minGames {
			continue
		}
		entries = append(entries, Entry{
			IdentityID:  ident.ID,
			DisplayName: ident.DisplayName,
			Rating:      record.Rating,
			Peak:        record.Peak,
			GamesPlayed: record.GamesPlayed,
			Streak:      record.Streak,
		})
	}

	sort.SliceStable(entries, func(i, j int) bool {
		if entries[i].Rating != entries[j].Rating {
			return entries[i].Rating > entries[j].Rating
		}
		return entries[i].GamesPlayed > entries[j].GamesPlayed
	})

	for i := range entries {
		entries[i].Rank = i + 1
	}

	total := len(entries)
	totalPages := (total + limit - 1) / limit

	start := (page - 1) * limit
	if start > total {
		start = total
	}
	end := start + limit
	if end > total {
		end = total
	}

	return &RankingsPage{
		Rankings: entries[start:end],
		Pagination: Pagination{
			Page:       page,
			Limit:      limit,
			Total:      total,
			TotalPages: totalPages,
		},
	}, nil
}

// GetHistory returns the current rating and the most recent limit
// history entries for one identity and game type
func (s *Service) GetHistory(ctx context.Context, identityID model.IdentityID, gameType model.GameType, limit int) (*History, error) {
	ident, err := s.storage.GetIdentity(ctx, identityID)
	if err != nil {
		return nil, err
	}

	gt := model.NormalizeGameType(string(gameType))
	result := &History{
		IdentityID: ident.ID,
		GameType:   gt,
	}

	record, ok := ident.Elo[gt]
	if !ok {
		result.CurrentRating = model.DefaultRating
		result.History = []model.HistoryEntry{}
		return result, nil
	}

	result.CurrentRating = record.Rating
	result.GamesPlayed = record.GamesPlayed

	entries := record.History
	if limit > 0 && limit < len(entries) {
		entries = entries[:limit]
	}
	result.History = make([]model.HistoryEntry, len(entries))
	copy(result.History, entries)

	return result, nil
}

// GetAllRatings summarizes every game type the identity has a record for
func (s *Service) GetAllRatings(ctx context.Context, identityID model.IdentityID) ([]RatingSummary, error) {
	ident, err := s.storage.GetIdentity(ctx, identityID)
	if err != nil {
		return nil, err
	}

	summaries := make([]RatingSummary, 0, len(ident.Elo))
	for gameType, record := range ident.Elo {
		summaries = append(summaries, RatingSummary{
			GameType:    gameType,
			Rating:      record.Rating,
			Peak:        record.Peak,
			Floor:       record.Floor,
			GamesPlayed: record.GamesPlayed,
			Streak:      record.Streak,
			LastUpdated: record.LastUpdated,
		})
	}

	sort.Slice(summaries, func(i, j int) bool {
		return summaries[i].GameType < summaries[j].GameType
	})

	return summaries, nil
}
