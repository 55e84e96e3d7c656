package memory

import (
	"context"
	"sync"

	"github.com/jkrumboe/wizard-tracker-sub001/internal/model"
	"github.com/jkrumboe/wizard-tracker-sub001/internal/storage"
)

// Storage is an in-memory implementation of the storage interface.
// All identity reads and writes deep-copy, so callers never alias the
// store's internal state.
type Storage struct {
	mu sync.RWMutex

	identities map[model.IdentityID]*model.PlayerIdentity
	games      map[model.GameID]*model.Game
}

// New creates a new in-memory storage instance
func New() *Storage {
	return &Storage{
		identities: make(map[model.IdentityID]*model.PlayerIdentity),
		games:      make(map[model.GameID]*model.Game),
	}
}

// Ensure Storage implements the interface
var _ storage.Storage = (*Storage)(nil)

// Identity operations

func (s *Storage) SaveIdentity(ctx context.Context, identity *model.PlayerIdentity) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.identities[identity.ID] = identity.Clone()
	return nil
}

func (s *Storage) GetIdentity(ctx context.Context, id model.IdentityID) (*model.PlayerIdentity, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	identity, ok := s.identities[id]
	if !ok {
		return nil, model.ErrIdentityNotFound
	}
	return identity.Clone(), nil
}

func (s *Storage) ListIdentities(ctx context.Context) ([]*model.PlayerIdentity, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	identities := make([]*model.PlayerIdentity, 0, len(s.identities))
	for _, identity := range s.identities {
		identities = append(identities, identity.Clone())
	}
	return identities, nil
}

// UpdateIdentities applies the mutation under the store lock, so the
// whole batch is atomic with respect to other readers and writers
func (s *Storage) UpdateIdentities(ctx context.Context, ids []model.IdentityID, apply storage.ApplyFunc) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	loaded := make(map[model.IdentityID]*model.PlayerIdentity, len(ids))
	for _, id := range ids {
		identity, ok := s.identities[id]
		if !ok {
			return model.ErrIdentityNotFound
		}
		loaded[id] = identity.Clone()
	}

	if err := apply(loaded); err != nil {
		return err
	}

	for id, identity := range loaded {
		s.identities[id] = identity
	}
	return nil
}

func (s *Storage) Capabilities() storage.Capabilities {
	return storage.Capabilities{AtomicUpdates: true}
}

// Game operations

func (s *Storage) SaveGame(ctx context.Context, game *model.Game) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.games[game.ID] = game
	return nil
}

func (s *Storage) GetGame(ctx context.Context, id model.GameID) (*model.Game, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	game, ok := s.games[id]
	if !ok {
		return nil, model.ErrGameNotFound
	}
	return game, nil
}

func (s *Storage) ListFinishedGames(ctx context.Context, gameType model.GameType) ([]*model.Game, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var games []*model.Game
	for _, game := range s.games {
		if game.Finished && game.GameType == gameType {
			games = append(games, game)
		}
	}
	return games, nil
}

func (s *Storage) ListAllFinishedGames(ctx context.Context) ([]*model.Game, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var games []*model.Game
	for _, game := range s.games {
		if game.Finished {
			games = append(games, game)
		}
	}
	return games, nil
}
