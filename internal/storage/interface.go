package storage

import (
	"context"
	"errors"

	"github.com/jkrumboe/wizard-tracker-sub001/internal/model"
)

// Storage-level errors. ErrWriteConflict is transient and safe to
// retry; ErrTransactionsUnsupported signals that the backend cannot do
// multi-record atomic updates and callers should fall back to
// per-record writes for the remainder of the process.
var (
	ErrWriteConflict           = errors.New("write conflict")
	ErrTransactionsUnsupported = errors.New("atomic multi-record updates not supported")
)

// Capabilities describes what a storage backend can guarantee. Callers
// pick their write path from this once at startup instead of probing
// with failed operations.
type Capabilities struct {
	// AtomicUpdates is true when UpdateIdentities applies all record
	// mutations atomically (all-or-nothing across identities)
	AtomicUpdates bool
}

// ApplyFunc mutates a set of freshly loaded identities in place. It is
// invoked inside the store's transactional context and may be called
// more than once on retries, so it must be side-effect free apart from
// mutating the given records.
type ApplyFunc func(identities map[model.IdentityID]*model.PlayerIdentity) error

// IdentityStore persists player identities. The rating engine is the
// only writer of the Elo field; everything else on the identity is
// owned by identity management.
type IdentityStore interface {
	SaveIdentity(ctx context.Context, identity *model.PlayerIdentity) error
	GetIdentity(ctx context.Context, id model.IdentityID) (*model.PlayerIdentity, error)
	ListIdentities(ctx context.Context) ([]*model.PlayerIdentity, error)

	// UpdateIdentities loads the given identities fresh, runs apply on
	// them, and persists the result. Backends reporting AtomicUpdates
	// make this all-or-nothing; others return ErrTransactionsUnsupported.
	UpdateIdentities(ctx context.Context, ids []model.IdentityID, apply ApplyFunc) error

	Capabilities() Capabilities
}

// GameStore supplies finished-game records. Read-only as far as the
// rating engine is concerned; writes exist for the game-entry side and
// for seeding tests.
type GameStore interface {
	SaveGame(ctx context.Context, game *model.Game) error
	GetGame(ctx context.Context, id model.GameID) (*model.Game, error)
	ListFinishedGames(ctx context.Context, gameType model.GameType) ([]*model.Game, error)
	ListAllFinishedGames(ctx context.Context) ([]*model.Game, error)
}

// Storage combines the identity and game stores
type Storage interface {
	IdentityStore
	GameStore
}
