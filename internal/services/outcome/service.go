package outcome

import (
	"sort"

	"github.com/jkrumboe/wizard-tracker-sub001/internal/model"
)

// PlayerOutcome is one player's result derived from a finished game
type PlayerOutcome struct {
	PlayerID   string
	Name       string
	IdentityID model.IdentityID // empty when the player is unresolved
	Score      float64
	// Placement is a 1-based standard-competition rank: tied players
	// share a placement and the next distinct score skips the
	// consumed ranks (two tied for 1st, next is 3rd)
	Placement int
}

// Rated reports whether the player participates in rating math
func (o PlayerOutcome) Rated() bool {
	return o.IdentityID != ""
}

// Service derives per-player scores and placements from finished games
type Service struct{}

// New creates a new outcome extractor
func New() *Service {
	return &Service{}
}

// Extract computes each player's final score and placement. Players
// without a resolved identity are kept in the result: they hold their
// placement slot and count toward the player total, they just never
// receive a rating delta.
func (s *Service) Extract(game *model.Game) []PlayerOutcome {
	outcomes := make([]PlayerOutcome, len(game.Players))
	for i, player := range game.Players {
		outcomes[i] = PlayerOutcome{
			PlayerID:   player.ID,
			Name:       player.Name,
			IdentityID: player.IdentityID,
			Score:      game.ScoreFor(player),
		}
	}

	// Best score first; direction depends on the game's scoring mode
	sort.SliceStable(outcomes, func(i, j int) bool {
		if game.LowIsBetter {
			return outcomes[i].Score < outcomes[j].Score
		}
		return outcomes[i].Score > outcomes[j].Score
	})

	// Standard-competition placement: rank = players strictly better + 1
	for i := range outcomes {
		if i > 0 && outcomes[i].Score == outcomes[i-1].Score {
			outcomes[i].Placement = outcomes[i-1].Placement
		} else {
			outcomes[i].Placement = i + 1
		}
	}

	return outcomes
}
