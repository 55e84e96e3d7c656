package redis

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/jkrumboe/wizard-tracker-sub001/internal/model"
	"github.com/jkrumboe/wizard-tracker-sub001/internal/storage"
)

// Storage is a Redis-backed implementation of the storage interface.
// Identities and games are stored as JSON values with SET indexes for
// enumeration. Multi-record updates use WATCH/MULTI optimistic
// transactions, so concurrent writers surface as ErrWriteConflict
// rather than lost updates.
type Storage struct {
	client *redis.Client
	cfg    Config
}

// New creates a new Redis storage instance
func New(cfg Config) (*Storage, error) {
	opts, err := redis.ParseURL(cfg.URL)
	if err != nil {
		return nil, err
	}

	opts.PoolSize = cfg.PoolSize
	opts.MinIdleConns = cfg.MinIdleConns

	client := redis.NewClient(opts)

	// Verify connection
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		return nil, err
	}

	return &Storage{
		client: client,
		cfg:    cfg,
	}, nil
}

// NewWithClient creates a Redis storage with an existing client (for testing)
func NewWithClient(client *redis.Client, cfg Config) *Storage {
	return &Storage{
		client: client,
		cfg:    cfg,
	}
}

// Close closes the Redis connection
func (s *Storage) Close() error {
	return s.client.Close()
}

// Ensure Storage implements the interface
var _ storage.Storage = (*Storage)(nil)

// Identity operations

func (s *Storage) SaveIdentity(ctx context.Context, identity *model.PlayerIdentity) error {
	data, err := json.Marshal(identity)
	if err != nil {
		return err
	}

	// Pipeline for atomic save + index update
	pipe := s.client.Pipeline()
	pipe.Set(ctx, identityKey(identity.ID), data, 0)
	pipe.SAdd(ctx, identityIndexKey(), string(identity.ID))
	_, err = pipe.Exec(ctx)
	return err
}

func (s *Storage) GetIdentity(ctx context.Context, id model.IdentityID) (*model.PlayerIdentity, error) {
	data, err := s.client.Get(ctx, identityKey(id)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, model.ErrIdentityNotFound
		}
		return nil, err
	}

	var identity model.PlayerIdentity
	if err := json.Unmarshal(data, &identity); err != nil {
		return nil, err
	}
	return &identity, nil
}

func (s *Storage) ListIdentities(ctx context.Context) ([]*model.PlayerIdentity, error) {
	ids, err := s.client.SMembers(ctx, identityIndexKey()).Result()
	if err != nil {
		return nil, err
	}

	if len(ids) == 0 {
		return []*model.PlayerIdentity{}, nil
	}

	keys := make([]string, len(ids))
	for i, id := range ids {
		keys[i] = identityKey(model.IdentityID(id))
	}

	values, err := s.client.MGet(ctx, keys...).Result()
	if err != nil {
		return nil, err
	}

	identities := make([]*model.PlayerIdentity, 0, len(values))
	for _, val := range values {
		if val == nil {
			continue // index can briefly lead deletion
		}
		var identity model.PlayerIdentity
		if err := json.Unmarshal([]byte(val.(string)), &identity); err != nil {
			continue // skip invalid data
		}
		identities = append(identities, &identity)
	}

	return identities, nil
}

// UpdateIdentities runs apply inside a WATCH/MULTI transaction over the
// involved identity keys. A concurrent write to any watched key aborts
// the EXEC and surfaces as storage.ErrWriteConflict.
func (s *Storage) UpdateIdentities(ctx context.Context, ids []model.IdentityID, apply storage.ApplyFunc) error {
	keys := make([]string, len(ids))
	for i, id := range ids {
		keys[i] = identityKey(id)
	}

	err := s.client.Watch(ctx, func(tx *redis.Tx) error {
		loaded := make(map[model.IdentityID]*model.PlayerIdentity, len(ids))
		for _, id := range ids {
			data, err := tx.Get(ctx, identityKey(id)).Bytes()
			if err != nil {
				if errors.Is(err, redis.Nil) {
					return model.ErrIdentityNotFound
				}
				return err
			}
			var identity model.PlayerIdentity
			if err := json.Unmarshal(data, &identity); err != nil {
				return err
			}
			loaded[id] = &identity
		}

		if err := apply(loaded); err != nil {
			return err
		}

		_, err := tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
			for id, identity := range loaded {
				data, err := json.Marshal(identity)
				if err != nil {
					return err
				}
				pipe.Set(ctx, identityKey(id), data, 0)
			}
			return nil
		})
		return err
	}, keys...)

	if errors.Is(err, redis.TxFailedErr) {
		return storage.ErrWriteConflict
	}
	return err
}

func (s *Storage) Capabilities() storage.Capabilities {
	return storage.Capabilities{AtomicUpdates: true}
}

// Game operations

func (s *Storage) SaveGame(ctx context.Context, game *model.Game) error {
	data, err := json.Marshal(game)
	if err != nil {
		return err
	}

	pipe := s.client.Pipeline()
	pipe.Set(ctx, gameKey(game.ID), data, 0)
	pipe.SAdd(ctx, gameIndexKey(), string(game.ID))
	_, err = pipe.Exec(ctx)
	return err
}

func (s *Storage) GetGame(ctx context.Context, id model.GameID) (*model.Game, error) {
	data, err := s.client.Get(ctx, gameKey(id)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, model.ErrGameNotFound
		}
		return nil, err
	}

	var game model.Game
	if err := json.Unmarshal(data, &game); err != nil {
		return nil, err
	}
	return &game, nil
}

func (s *Storage) ListFinishedGames(ctx context.Context, gameType model.GameType) ([]*model.Game, error) {
	games, err := s.ListAllFinishedGames(ctx)
	if err != nil {
		return nil, err
	}

	filtered := games[:0]
	for _, game := range games {
		if game.GameType == gameType {
			filtered = append(filtered, game)
		}
	}
	return filtered, nil
}

func (s *Storage) ListAllFinishedGames(ctx context.Context) ([]*model.Game, error) {
	ids, err := s.client.SMembers(ctx, gameIndexKey()).Result()
	if err != nil {
		return nil, err
	}

	if len(ids) == 0 {
		return []*model.Game{}, nil
	}

	keys := make([]string, len(ids))
	for i, id := range ids {
		keys[i] = gameKey(model.GameID(id))
	}

	values, err := s.client.MGet(ctx, keys...).Result()
	if err != nil {
		return nil, err
	}

	games := make([]*model.Game, 0, len(values))
	for _, val := range values {
		if val == nil {
			continue
		}
		var game model.Game
		if err := json.Unmarshal([]byte(val.(string)), &game); err != nil {
			continue // skip invalid data
		}
		if game.Finished {
			games = append(games, &game)
		}
	}

	return games, nil
}
