package factory

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"

	"github.com/jkrumboe/wizard-tracker-sub001/internal/model"
	"github.com/jkrumboe/wizard-tracker-sub001/internal/services/recalc"
)

type IntegrationSuite struct {
	suite.Suite
	app *TestApp
	ctx context.Context
}

func TestIntegrationSuite(t *testing.T) {
	suite.Run(t, new(IntegrationSuite))
}

func (s *IntegrationSuite) SetupTest() {
	s.app = NewTestApp()
	s.ctx = context.Background()
}

func (s *IntegrationSuite) createIdentity(id model.IdentityID, name string, identityType model.IdentityType) *model.PlayerIdentity {
	ident := &model.PlayerIdentity{
		ID:             id,
		DisplayName:    name,
		NormalizedName: model.NormalizeName(name),
		Type:           identityType,
		CreatedAt:      s.app.MockClock.Now(),
	}
	s.Require().NoError(s.app.Storage.SaveIdentity(s.ctx, ident))
	return ident
}

func (s *IntegrationSuite) saveGame(id model.GameID, createdAt time.Time, scores map[model.IdentityID]float64) *model.Game {
	game := &model.Game{
		ID:          id,
		GameType:    "wizard",
		Finished:    true,
		FinalScores: make(map[string]float64),
		CreatedAt:   createdAt,
	}
	i := 0
	for identityID, score := range scores {
		playerID := "p" + string(rune('a'+i))
		game.Players = append(game.Players, model.GamePlayer{
			ID:         playerID,
			Name:       string(identityID),
			IdentityID: identityID,
		})
		game.FinalScores[playerID] = score
		i++
	}
	s.Require().NoError(s.app.Storage.SaveGame(s.ctx, game))
	return game
}

// Test: a season of games feeds the leaderboard end to end
func (s *IntegrationSuite) TestSeasonFlow() {
	s.createIdentity("id-a", "Alice", model.IdentityTypeUser)
	s.createIdentity("id-b", "Bob", model.IdentityTypeUser)
	s.createIdentity("id-c", "Carol", model.IdentityTypeUser)
	base := s.app.MockClock.Now()

	// Alice wins twice, Carol once
	games := []*model.Game{
		s.saveGame("g1", base, map[model.IdentityID]float64{"id-a": 90, "id-b": 40, "id-c": 20}),
		s.saveGame("g2", base.Add(time.Hour), map[model.IdentityID]float64{"id-a": 80, "id-b": 30, "id-c": 50}),
		s.saveGame("g3", base.Add(2*time.Hour), map[model.IdentityID]float64{"id-a": 10, "id-b": 30, "id-c": 70}),
	}

	for _, game := range games {
		_, err := s.app.Engine.ProcessFinishedGame(s.ctx, game, game.GameType)
		s.Require().NoError(err)
	}

	page, err := s.app.RankingsService.GetRankings(s.ctx, "wizard", 1, 10, 0)
	s.Require().NoError(err)
	s.Require().Len(page.Rankings, 3)
	s.Equal(model.IdentityID("id-a"), page.Rankings[0].IdentityID)
	s.Equal(model.IdentityID("id-b"), page.Rankings[2].IdentityID)
	s.Equal(3, page.Rankings[0].GamesPlayed)

	history, err := s.app.RankingsService.GetHistory(s.ctx, "id-a", "wizard", 10)
	s.Require().NoError(err)
	s.Len(history.History, 3)
	s.Equal(model.GameID("g3"), history.History[0].GameID)
}

// Test: merging a guest into a user account and recalculating moves the
// guest's games onto the user's record
func (s *IntegrationSuite) TestMergeThenRecalculate() {
	s.createIdentity("id-user", "Dana", model.IdentityTypeUser)
	s.createIdentity("id-opp", "Opponent", model.IdentityTypeUser)
	guest := s.createIdentity("id-guest", "Dana G", model.IdentityTypeGuest)
	base := s.app.MockClock.Now()

	s.saveGame("g1", base, map[model.IdentityID]float64{"id-guest": 80, "id-opp": 30})
	s.saveGame("g2", base.Add(time.Hour), map[model.IdentityID]float64{"id-user": 70, "id-opp": 40})

	summary, err := s.app.RecalcService.RecalculateAll(s.ctx, recalc.Options{})
	s.Require().NoError(err)
	s.Equal(2, summary.GamesProcessed)

	// Before the merge the two identities rate independently
	user, err := s.app.Storage.GetIdentity(s.ctx, "id-user")
	s.Require().NoError(err)
	s.Equal(1, user.Elo["wizard"].GamesPlayed)

	// Merge the guest into the user account
	guest.MergedInto = "id-user"
	s.Require().NoError(s.app.Storage.SaveIdentity(s.ctx, guest))

	summary, err = s.app.RecalcService.RecalculateAll(s.ctx, recalc.Options{})
	s.Require().NoError(err)
	s.Equal(2, summary.GamesProcessed)

	user, err = s.app.Storage.GetIdentity(s.ctx, "id-user")
	s.Require().NoError(err)
	s.Equal(2, user.Elo["wizard"].GamesPlayed)
	s.Len(user.Elo["wizard"].History, 2)

	// The merged guest no longer appears on the leaderboard
	page, err := s.app.RankingsService.GetRankings(s.ctx, "wizard", 1, 10, 0)
	s.Require().NoError(err)
	for _, entry := range page.Rankings {
		s.NotEqual(model.IdentityID("id-guest"), entry.IdentityID)
	}
}

// Test: a newcomer's rating moves faster than a veteran's in the same game
func (s *IntegrationSuite) TestProvisionalMovesFasterThanVeteran() {
	veteran := s.createIdentity("id-vet", "Vera", model.IdentityTypeUser)
	record := veteran.EloFor("wizard")
	record.GamesPlayed = 60
	s.Require().NoError(s.app.Storage.SaveIdentity(s.ctx, veteran))
	s.createIdentity("id-new", "Nora", model.IdentityTypeUser)

	game := s.saveGame("g1", s.app.MockClock.Now(), map[model.IdentityID]float64{"id-vet": 30, "id-new": 70})
	results, err := s.app.Engine.ProcessFinishedGame(s.ctx, game, "wizard")
	s.Require().NoError(err)
	s.Require().Len(results, 2)

	byID := make(map[model.IdentityID]model.RatingResult)
	for _, r := range results {
		byID[r.IdentityID] = r
	}
	s.Greater(byID["id-new"].Change, 0)
	s.Less(byID["id-vet"].Change, 0)
	s.Greater(byID["id-new"].Change, -byID["id-vet"].Change)
}

// Test: preview computes the same deltas that processing then persists
func (s *IntegrationSuite) TestPreviewMatchesProcess() {
	s.createIdentity("id-a", "Alice", model.IdentityTypeUser)
	s.createIdentity("id-b", "Bob", model.IdentityTypeUser)
	game := s.saveGame("g1", s.app.MockClock.Now(), map[model.IdentityID]float64{"id-a": 80, "id-b": 30})

	mergeMap, err := s.app.Resolver.BuildMergeMap(s.ctx)
	s.Require().NoError(err)

	previewed, err := s.app.Engine.Preview(s.ctx, game, "wizard", mergeMap)
	s.Require().NoError(err)

	applied, err := s.app.Engine.ProcessFinishedGame(s.ctx, game, "wizard")
	s.Require().NoError(err)

	s.Require().Len(previewed, len(applied))
	previewByID := make(map[model.IdentityID]model.RatingResult)
	for _, r := range previewed {
		previewByID[r.IdentityID] = r
	}
	for _, r := range applied {
		s.Equal(previewByID[r.IdentityID].Change, r.Change)
		s.Equal(previewByID[r.IdentityID].NewRating, r.NewRating)
	}

	// Preview left no trace
	ident, err := s.app.Storage.GetIdentity(s.ctx, "id-a")
	s.Require().NoError(err)
	s.Equal(1, ident.Elo["wizard"].GamesPlayed)
}
