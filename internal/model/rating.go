package model

import "time"

// Rating defaults. These are structural defaults of the record type;
// the scoring policy constants live in the rating service config.
const (
	DefaultRating = 1000
	MinRating     = 100
	HistoryLimit  = 50
)

// EloRecord holds one identity's rating state for one game type
type EloRecord struct {
	Rating      int
	Peak        int
	Floor       int
	GamesPlayed int
	// Streak is a signed run length: positive for consecutive wins,
	// negative for consecutive non-wins
	Streak      int
	LastUpdated time.Time

	// History is most-recent-first and capped at HistoryLimit entries
	History []HistoryEntry
}

// HistoryEntry records one applied game in an EloRecord's history
type HistoryEntry struct {
	Rating    int
	Change    int
	GameID    GameID
	Opponents []IdentityID
	Placement int
	Date      time.Time
}

// NewEloRecord creates a record with all numeric fields at their defaults
func NewEloRecord() *EloRecord {
	return &EloRecord{
		Rating: DefaultRating,
		Peak:   DefaultRating,
		Floor:  DefaultRating,
	}
}

// HasGame reports whether the given game has already been applied to
// this record. This is the idempotency guard: a (identity, game type,
// game) triple is applied at most once.
func (r *EloRecord) HasGame(gameID GameID) bool {
	for _, entry := range r.History {
		if entry.GameID == gameID {
			return true
		}
	}
	return false
}

// AddHistoryEntry prepends an entry and enforces the history cap.
// Oldest entries drop first.
func (r *EloRecord) AddHistoryEntry(entry HistoryEntry) {
	r.History = append([]HistoryEntry{entry}, r.History...)
	if len(r.History) > HistoryLimit {
		r.History = r.History[:HistoryLimit]
	}
}

// Clone returns a deep copy of the record
func (r *EloRecord) Clone() *EloRecord {
	cp := *r
	cp.History = make([]HistoryEntry, len(r.History))
	copy(cp.History, r.History)
	for i, entry := range r.History {
		opponents := make([]IdentityID, len(entry.Opponents))
		copy(opponents, entry.Opponents)
		cp.History[i].Opponents = opponents
	}
	return &cp
}

// RatingResult is the engine's per-player output for one processed game
type RatingResult struct {
	IdentityID IdentityID
	Placement  int
	Score      float64
	OldRating  int
	NewRating  int
	Change     int
	Won        bool
	Opponents  []IdentityID
}
