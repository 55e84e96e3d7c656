package rating

import "math"

// Player is one participant's pre-game state as the calculator sees it
type Player struct {
	Rating      int
	GamesPlayed int
	Placement   int
	Score       float64
}

// Delta is the calculator's output for a single player
type Delta struct {
	OldRating int
	NewRating int
	Change    int
}

// Calculator computes per-player rating deltas from multi-player game
// outcomes. Pure: no side effects, no I/O.
type Calculator struct {
	cfg Config
}

// NewCalculator creates a calculator with the given policy
func NewCalculator(cfg Config) *Calculator {
	return &Calculator{cfg: cfg}
}

// Config returns the calculator's policy constants
func (c *Calculator) Config() Config {
	return c.cfg
}

// Calculate computes one player's rating delta against the full
// opponent set. numPlayers is the total table size including unrated
// players; opponents holds only the rated ones.
//
// Expected score per opponent is the standard logistic expectation.
// Actual score is not binary win/loss but a placement-gap score:
// equal placement is 0.5, with the gap linearly scaling toward 1.0
// (better) or 0.0 (worse) over numPlayers-1. Margin multipliers
// combine multiplicatively and are geometric-mean normalized over
// numPlayers-1, then the delta is scaled by sqrt(numPlayers/baseline).
func (c *Calculator) Calculate(player Player, opponents []Player, numPlayers int) Delta {
	delta := Delta{OldRating: player.Rating, NewRating: player.Rating}
	if len(opponents) == 0 || numPlayers < 2 {
		return delta
	}

	gapScale := float64(numPlayers - 1)

	var expectedTotal, actualTotal float64
	marginProduct := 1.0

	for _, opp := range opponents {
		expected := expectedScore(player.Rating, opp.Rating)
		actual := c.placementScore(player.Placement, opp.Placement, gapScale)

		// Established vs provisional: dampen this matchup's pull in
		// both the expected and actual totals. Never the reverse.
		weight := 1.0
		if !c.cfg.IsProvisional(player.GamesPlayed) && c.cfg.IsProvisional(opp.GamesPlayed) {
			weight = c.cfg.DampeningFactor
		}

		expectedTotal += expected * weight
		actualTotal += actual * weight

		margin := math.Abs(player.Score - opp.Score)
		switch {
		case player.Placement < opp.Placement:
			marginProduct *= c.cfg.MarginBonus(margin)
		case player.Placement > opp.Placement:
			marginProduct *= c.cfg.LossPenalty(margin)
		}
	}

	marginMultiplier := math.Pow(marginProduct, 1.0/gapScale)

	k := c.cfg.KFactor(player.GamesPlayed)
	raw := k * (actualTotal - expectedTotal) * marginMultiplier

	// Diminishing-returns normalization for large tables
	scaled := raw * math.Sqrt(float64(numPlayers)/float64(c.cfg.BaselinePlayerCount))

	change := int(math.Round(scaled))
	newRating := player.Rating + change
	if newRating < c.cfg.MinRating {
		newRating = c.cfg.MinRating
	}

	return Delta{
		OldRating: player.Rating,
		NewRating: newRating,
		Change:    newRating - player.Rating,
	}
}

// expectedScore is the standard logistic ELO expectation
func expectedScore(playerRating, opponentRating int) float64 {
	return 1.0 / (1.0 + math.Pow(10, float64(opponentRating-playerRating)/400.0))
}

// placementScore maps a placement gap to [0, 1] with 0.5 for a tie
func (c *Calculator) placementScore(playerPlacement, opponentPlacement int, gapScale float64) float64 {
	switch {
	case playerPlacement == opponentPlacement:
		return 0.5
	case playerPlacement < opponentPlacement:
		gap := float64(opponentPlacement - playerPlacement)
		return 0.5 + 0.5*gap/gapScale
	default:
		gap := float64(playerPlacement - opponentPlacement)
		return 0.5 - 0.5*gap/gapScale
	}
}
