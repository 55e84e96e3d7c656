package model

import "time"

// GameID uniquely identifies a game
type GameID string

// GamePlayer is one participant entry in a game record. The per-game
// player id is scoped to the game; IdentityID links the entry to a
// canonical identity and may be empty for unresolved players.
type GamePlayer struct {
	ID         string
	Name       string
	IdentityID IdentityID
	// Points holds per-round scores to sum when the game has no
	// FinalScores entry for this player
	Points []float64
}

// Game is a finished-game record as produced by the game store. The
// rating engine treats these as read-only, already validated and
// already canonicalized.
type Game struct {
	ID       GameID
	GameType GameType
	Finished bool
	// LowIsBetter flips the scoring direction (e.g. fewest points wins)
	LowIsBetter bool
	Players     []GamePlayer
	// FinalScores is keyed by the per-game player id; when a player has
	// no entry their Points array is summed instead
	FinalScores map[string]float64
	CreatedAt   time.Time
}

// ScoreFor returns the player's final numeric score
func (g *Game) ScoreFor(player GamePlayer) float64 {
	if score, ok := g.FinalScores[player.ID]; ok {
		return score
	}
	var total float64
	for _, points := range player.Points {
		total += points
	}
	return total
}
