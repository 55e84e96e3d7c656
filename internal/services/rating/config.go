package rating

// Config holds the scoring policy constants. These are product policy,
// not generic ELO parameters: the margin asymmetry and the square-root
// player-count scale make the system deliberately non-zero-sum.
type Config struct {
	DefaultRating int
	MinRating     int

	// K-factor tiers by games played; fewer games means a larger
	// maximum per-game swing
	KNew         int // below NewThreshold games
	KDeveloping  int // below DevelopingThreshold
	KEstablished int // below EstablishedThreshold
	KVeteran     int

	NewThreshold         int
	DevelopingThreshold  int
	EstablishedThreshold int

	// DampeningFactor scales matchup contributions when an established
	// player faces a provisional opponent. One-directional: the
	// provisional side is unaffected.
	DampeningFactor float64

	// Margin multiplier tiers by absolute score gap. The loss penalty
	// is capped regardless of margin, asymmetric with the win bonus.
	SmallMarginThreshold float64
	LargeMarginThreshold float64
	MediumMarginBonus    float64
	LargeMarginBonus     float64
	LossPenaltyCap       float64

	// BaselinePlayerCount anchors the sqrt player-count scaling
	BaselinePlayerCount int
}

// DefaultConfig returns the production scoring policy
func DefaultConfig() Config {
	return Config{
		DefaultRating: 1000,
		MinRating:     100,

		KNew:         40,
		KDeveloping:  32,
		KEstablished: 24,
		KVeteran:     16,

		NewThreshold:         10,
		DevelopingThreshold:  25,
		EstablishedThreshold: 50,

		DampeningFactor: 0.5,

		SmallMarginThreshold: 25,
		LargeMarginThreshold: 75,
		MediumMarginBonus:    1.1,
		LargeMarginBonus:     1.2,
		LossPenaltyCap:       1.1,

		BaselinePlayerCount: 4,
	}
}

// KFactor returns the maximum per-game swing for a player with the
// given games-played count
func (c Config) KFactor(gamesPlayed int) float64 {
	switch {
	case gamesPlayed < c.NewThreshold:
		return float64(c.KNew)
	case gamesPlayed < c.DevelopingThreshold:
		return float64(c.KDeveloping)
	case gamesPlayed < c.EstablishedThreshold:
		return float64(c.KEstablished)
	default:
		return float64(c.KVeteran)
	}
}

// IsProvisional reports whether a player is below the new-player threshold
func (c Config) IsProvisional(gamesPlayed int) bool {
	return gamesPlayed < c.NewThreshold
}

// MarginBonus returns the win multiplier for the given absolute score gap
func (c Config) MarginBonus(margin float64) float64 {
	switch {
	case margin < c.SmallMarginThreshold:
		return 1.0
	case margin < c.LargeMarginThreshold:
		return c.MediumMarginBonus
	default:
		return c.LargeMarginBonus
	}
}

// LossPenalty returns the loss multiplier for the given absolute score
// gap, capped at LossPenaltyCap
func (c Config) LossPenalty(margin float64) float64 {
	penalty := c.MarginBonus(margin)
	if penalty > c.LossPenaltyCap {
		return c.LossPenaltyCap
	}
	return penalty
}
