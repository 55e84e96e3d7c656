package rankings_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"

	"github.com/jkrumboe/wizard-tracker-sub001/internal/model"
	"github.com/jkrumboe/wizard-tracker-sub001/internal/services/rankings"
	"github.com/jkrumboe/wizard-tracker-sub001/internal/storage/memory"
)

type ServiceSuite struct {
	suite.Suite
	store   *memory.Storage
	service *rankings.Service
	ctx     context.Context
}

func TestServiceSuite(t *testing.T) {
	suite.Run(t, new(ServiceSuite))
}

func (s *ServiceSuite) SetupTest() {
	s.store = memory.New()
	s.service = rankings.NewService(s.store)
	s.ctx = context.Background()
}

func (s *ServiceSuite) saveRated(id model.IdentityID, name string, rating, gamesPlayed int, mutate ...func(*model.PlayerIdentity)) {
	record := model.NewEloRecord()
	record.Rating = rating
	record.Peak = rating
	record.GamesPlayed = gamesPlayed
	ident := &model.PlayerIdentity{
		ID:             id,
		DisplayName:    name,
		NormalizedName: model.NormalizeName(name),
		Type:           model.IdentityTypeUser,
		Elo:            map[model.GameType]*model.EloRecord{"wizard": record},
	}
	for _, m := range mutate {
		m(ident)
	}
	s.Require().NoError(s.store.SaveIdentity(s.ctx, ident))
}

func (s *ServiceSuite) TestRankingsSortedByRatingThenGames() {
	s.saveRated("id-a", "Alice", 1100, 20)
	s.saveRated("id-b", "Bob", 1250, 5)
	s.saveRated("id-c", "Carol", 1100, 40)

	page, err := s.service.GetRankings(s.ctx, "wizard", 1, 10, 0)
	s.Require().NoError(err)
	s.Require().Len(page.Rankings, 3)

	s.Equal(model.IdentityID("id-b"), page.Rankings[0].IdentityID)
	// Carol outranks Alice at equal rating on games played
	s.Equal(model.IdentityID("id-c"), page.Rankings[1].IdentityID)
	s.Equal(model.IdentityID("id-a"), page.Rankings[2].IdentityID)
	s.Equal(1, page.Rankings[0].Rank)
	s.Equal(2, page.Rankings[1].Rank)
	s.Equal(3, page.Rankings[2].Rank)
}

func (s *ServiceSuite) TestMinGamesFilter() {
	s.saveRated("id-a", "Alice", 1400, 2)
	s.saveRated("id-b", "Bob", 1050, 30)

	page, err := s.service.GetRankings(s.ctx, "wizard", 1, 10, 10)
	s.Require().NoError(err)
	s.Require().Len(page.Rankings, 1)
	s.Equal(model.IdentityID("id-b"), page.Rankings[0].IdentityID)
}

func (s *ServiceSuite) TestMergedAndDeletedNeverRank() {
	s.saveRated("id-a", "Alice", 1200, 10)
	s.saveRated("id-b", "Bob", 1300, 10, func(i *model.PlayerIdentity) {
		i.MergedInto = "id-a"
	})
	s.saveRated("id-c", "Carol", 1300, 10, func(i *model.PlayerIdentity) {
		i.Deleted = true
	})

	page, err := s.service.GetRankings(s.ctx, "wizard", 1, 10, 0)
	s.Require().NoError(err)
	s.Require().Len(page.Rankings, 1)
	s.Equal(model.IdentityID("id-a"), page.Rankings[0].IdentityID)
}

func (s *ServiceSuite) TestNoRecordForGameTypeExcluded() {
	s.saveRated("id-a", "Alice", 1200, 10)

	page, err := s.service.GetRankings(s.ctx, "skyjo", 1, 10, 0)
	s.Require().NoError(err)
	s.Empty(page.Rankings)
	s.Equal(0, page.Pagination.Total)
}

func (s *ServiceSuite) TestGameTypeNormalizedForLookup() {
	s.saveRated("id-a", "Alice", 1200, 10)

	page, err := s.service.GetRankings(s.ctx, "  Wizard ", 1, 10, 0)
	s.Require().NoError(err)
	s.Len(page.Rankings, 1)
}

func (s *ServiceSuite) TestPagination() {
	for i := 0; i < 5; i++ {
		id := model.IdentityID("id-" + string(rune('a'+i)))
		s.saveRated(id, string(id), 1000+i*10, 10)
	}

	page, err := s.service.GetRankings(s.ctx, "wizard", 2, 2, 0)
	s.Require().NoError(err)
	s.Require().Len(page.Rankings, 2)
	s.Equal(3, page.Rankings[0].Rank)
	s.Equal(4, page.Rankings[1].Rank)
	s.Equal(5, page.Pagination.Total)
	s.Equal(3, page.Pagination.TotalPages)

	// Past the last page is empty, not an error
	page, err = s.service.GetRankings(s.ctx, "wizard", 9, 2, 0)
	s.Require().NoError(err)
	s.Empty(page.Rankings)
}

func (s *ServiceSuite) TestInvalidPageRejected() {
	_, err := s.service.GetRankings(s.ctx, "wizard", 0, 10, 0)
	s.ErrorIs(err, model.ErrInvalidPage)

	_, err = s.service.GetRankings(s.ctx, "wizard", 1, 0, 0)
	s.ErrorIs(err, model.ErrInvalidPage)
}

func (s *ServiceSuite) TestHistoryLimitAndCopy() {
	record := model.NewEloRecord()
	record.Rating = 1080
	record.GamesPlayed = 3
	for i, gameID := range []model.GameID{"g1", "g2", "g3"} {
		record.AddHistoryEntry(model.HistoryEntry{
			Rating: 1000 + (i+1)*20,
			Change: 20,
			GameID: gameID,
		})
	}
	ident := &model.PlayerIdentity{
		ID:          "id-a",
		DisplayName: "Alice",
		Type:        model.IdentityTypeUser,
		Elo:         map[model.GameType]*model.EloRecord{"wizard": record},
	}
	s.Require().NoError(s.store.SaveIdentity(s.ctx, ident))

	history, err := s.service.GetHistory(s.ctx, "id-a", "wizard", 2)
	s.Require().NoError(err)
	s.Equal(1080, history.CurrentRating)
	s.Equal(3, history.GamesPlayed)
	s.Require().Len(history.History, 2)
	// Newest first
	s.Equal(model.GameID("g3"), history.History[0].GameID)
	s.Equal(model.GameID("g2"), history.History[1].GameID)
}

func (s *ServiceSuite) TestHistoryForUnratedPlayerDefaults() {
	ident := &model.PlayerIdentity{
		ID:          "id-a",
		DisplayName: "Alice",
		Type:        model.IdentityTypeUser,
	}
	s.Require().NoError(s.store.SaveIdentity(s.ctx, ident))

	history, err := s.service.GetHistory(s.ctx, "id-a", "wizard", 10)
	s.Require().NoError(err)
	s.Equal(model.DefaultRating, history.CurrentRating)
	s.Equal(0, history.GamesPlayed)
	s.Empty(history.History)
}

func (s *ServiceSuite) TestHistoryUnknownIdentity() {
	_, err := s.service.GetHistory(s.ctx, "nope", "wizard", 10)
	s.ErrorIs(err, model.ErrIdentityNotFound)
}

func (s *ServiceSuite) TestGetAllRatingsSortedByGameType() {
	now := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	wizard := model.NewEloRecord()
	wizard.Rating = 1150
	wizard.LastUpdated = now
	skyjo := model.NewEloRecord()
	skyjo.Rating = 950
	ident := &model.PlayerIdentity{
		ID:          "id-a",
		DisplayName: "Alice",
		Type:        model.IdentityTypeUser,
		Elo: map[model.GameType]*model.EloRecord{
			"wizard": wizard,
			"skyjo":  skyjo,
		},
	}
	s.Require().NoError(s.store.SaveIdentity(s.ctx, ident))

	summaries, err := s.service.GetAllRatings(s.ctx, "id-a")
	s.Require().NoError(err)
	s.Require().Len(summaries, 2)
	s.Equal(model.GameType("skyjo"), summaries[0].GameType)
	s.Equal(model.GameType("wizard"), summaries[1].GameType)
	s.Equal(1150, summaries[1].Rating)
	s.Equal(now, summaries[1].LastUpdated)
}
