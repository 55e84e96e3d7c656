package model

import (
	"strings"
	"time"

	"github.com/google/uuid"
)

// IdentityID uniquely identifies a player identity across the system
type IdentityID string

// GameType is a normalized key distinguishing rating pools
// (different games/variants keep independent ratings)
type GameType string

// IdentityType classifies how an identity came to exist
type IdentityType string

const (
	IdentityTypeUser     IdentityType = "user"     // linked to a registered account
	IdentityTypeGuest    IdentityType = "guest"    // entered ad hoc in a game
	IdentityTypeImported IdentityType = "imported" // migrated from historical records
)

// PlayerIdentity is the canonical player record, independent of any
// single game's player entry. The rating engine owns the Elo field;
// the rest of the lifecycle (creation, merging, deletion) belongs to
// identity management.
type PlayerIdentity struct {
	ID             IdentityID
	DisplayName    string
	NormalizedName string // lowercased, trimmed DisplayName for lookup
	UserID         string // linked registered-user account, empty if none
	Type           IdentityType
	MergedInto     IdentityID // non-empty marks this record as superseded
	Deleted        bool
	CreatedAt      time.Time

	// Per-game-type rating state, created lazily on first finished game
	Elo map[GameType]*EloRecord
}

// NewPlayerIdentity creates an identity with a fresh id and normalized name
func NewPlayerIdentity(displayName string, identityType IdentityType, now time.Time) *PlayerIdentity {
	return &PlayerIdentity{
		ID:             IdentityID(uuid.NewString()),
		DisplayName:    displayName,
		NormalizedName: NormalizeName(displayName),
		Type:           identityType,
		CreatedAt:      now,
		Elo:            make(map[GameType]*EloRecord),
	}
}

// NormalizeName lowercases and trims a display name for lookup
func NormalizeName(name string) string {
	return strings.ToLower(strings.TrimSpace(name))
}

// NormalizeGameType converts a free-form game type string into its
// canonical key: lowercase, trimmed, whitespace runs collapsed to hyphens
func NormalizeGameType(s string) GameType {
	fields := strings.Fields(strings.ToLower(s))
	return GameType(strings.Join(fields, "-"))
}

// EloFor returns the identity's rating record for the given game type,
// creating it with defaults on first access
func (p *PlayerIdentity) EloFor(gameType GameType) *EloRecord {
	if p.Elo == nil {
		p.Elo = make(map[GameType]*EloRecord)
	}
	record, ok := p.Elo[gameType]
	if !ok {
		record = NewEloRecord()
		p.Elo[gameType] = record
	}
	return record
}

// IsMerged reports whether this identity has been superseded by another
func (p *PlayerIdentity) IsMerged() bool {
	return p.MergedInto != ""
}

// Clone returns a deep copy, so stores can hand out records without
// aliasing their internal state
func (p *PlayerIdentity) Clone() *PlayerIdentity {
	cp := *p
	cp.Elo = make(map[GameType]*EloRecord, len(p.Elo))
	for gt, record := range p.Elo {
		cp.Elo[gt] = record.Clone()
	}
	return &cp
}
