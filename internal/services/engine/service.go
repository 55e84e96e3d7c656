package engine

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync/atomic"
	"time"

	"github.com/jkrumboe/wizard-tracker-sub001/internal/dependencies/clock"
	"github.com/jkrumboe/wizard-tracker-sub001/internal/model"
	"github.com/jkrumboe/wizard-tracker-sub001/internal/services/identity"
	"github.com/jkrumboe/wizard-tracker-sub001/internal/services/outcome"
	"github.com/jkrumboe/wizard-tracker-sub001/internal/services/rating"
	"github.com/jkrumboe/wizard-tracker-sub001/internal/storage"
)

const (
	maxAttempts = 5
	baseBackoff = 50 * time.Millisecond
)

// errAlreadyApplied signals the idempotency guard fired. It never
// leaves this package; callers see a clean empty result instead.
var errAlreadyApplied = errors.New("game already applied")

// Service applies finished-game outcomes to persisted rating state.
// It is conceptually the single writer of EloRecords, even when
// invoked from multiple call sites.
type Service struct {
	storage    storage.IdentityStore
	resolver   *identity.Resolver
	outcome    *outcome.Service
	calculator *rating.Calculator
	clock      clock.Clock
	logger     *slog.Logger

	// atomicWrites is chosen once from the store's capabilities and
	// downgraded permanently if the store reports transactions
	// unsupported at runtime
	atomicWrites atomic.Bool
}

// NewService creates the rating update engine
func NewService(
	store storage.IdentityStore,
	resolver *identity.Resolver,
	outcomeService *outcome.Service,
	calculator *rating.Calculator,
	clk clock.Clock,
	logger *slog.Logger,
) *Service {
	s := &Service{
		storage:    store,
		resolver:   resolver,
		outcome:    outcomeService,
		calculator: calculator,
		clock:      clk,
		logger:     logger,
	}
	s.atomicWrites.Store(store.Capabilities().AtomicUpdates)
	return s
}

// ProcessFinishedGame converts one finished game into persisted rating
// updates for every player with a resolved identity. Unfinished games,
// games without enough rated players, and games already applied all
// return an empty result with no error; rating updates are best-effort
// derived state and must never fail the game-finish flow for those.
func (s *Service) ProcessFinishedGame(ctx context.Context, game *model.Game, gameType model.GameType) ([]model.RatingResult, error) {
	mergeMap, err := s.resolver.BuildMergeMap(ctx)
	if err != nil {
		return nil, fmt.Errorf("building merge map: %w", err)
	}
	return s.ProcessWithMergeMap(ctx, game, gameType, mergeMap)
}

// ProcessWithMergeMap is ProcessFinishedGame with a caller-supplied
// merge map, so batch recalculation can build the map once per run
func (s *Service) ProcessWithMergeMap(ctx context.Context, game *model.Game, gameType model.GameType, mergeMap identity.MergeMap) ([]model.RatingResult, error) {
	participants, numPlayers, ok := s.prepare(game, mergeMap)
	if !ok {
		return nil, nil
	}
	gt := model.NormalizeGameType(string(gameType))

	ids := make([]model.IdentityID, len(participants))
	for i, p := range participants {
		ids[i] = p.identityID
	}

	var results []model.RatingResult
	apply := func(identities map[model.IdentityID]*model.PlayerIdentity) error {
		var err error
		results, err = s.applyGame(identities, participants, numPlayers, game.ID, gt)
		return err
	}

	err := s.persist(ctx, ids, apply)
	switch {
	case err == nil:
		s.logger.Info("ratings updated",
			slog.String("game_id", string(game.ID)),
			slog.String("game_type", string(gt)),
			slog.Int("players", len(results)),
		)
		return results, nil
	case errors.Is(err, errAlreadyApplied):
		s.logger.Debug("game already applied, skipping",
			slog.String("game_id", string(game.ID)),
			slog.String("game_type", string(gt)),
		)
		return nil, nil
	case errors.Is(err, model.ErrNoRatedPlayers):
		s.logger.Debug("no rated players, skipping",
			slog.String("game_id", string(game.ID)),
		)
		return nil, nil
	default:
		return nil, err
	}
}

// Preview computes rating results against current persisted state
// without writing anything. Used by dry-run recalculation.
func (s *Service) Preview(ctx context.Context, game *model.Game, gameType model.GameType, mergeMap identity.MergeMap) ([]model.RatingResult, error) {
	participants, numPlayers, ok := s.prepare(game, mergeMap)
	if !ok {
		return nil, nil
	}
	gt := model.NormalizeGameType(string(gameType))

	identities := make(map[model.IdentityID]*model.PlayerIdentity, len(participants))
	for _, p := range participants {
		loaded, err := s.storage.GetIdentity(ctx, p.identityID)
		if err != nil {
			return nil, err
		}
		identities[p.identityID] = loaded.Clone()
	}

	results, err := s.applyGame(identities, participants, numPlayers, game.ID, gt)
	if errors.Is(err, errAlreadyApplied) || errors.Is(err, model.ErrNoRatedPlayers) {
		return nil, nil
	}
	return results, err
}

// participant pairs an extracted outcome with its resolved primary identity
type participant struct {
	identityID model.IdentityID
	out        outcome.PlayerOutcome
}

// prepare extracts outcomes and resolves participants. Returns ok=false
// when the game should be silently skipped.
func (s *Service) prepare(game *model.Game, mergeMap identity.MergeMap) ([]participant, int, bool) {
	if game == nil || !game.Finished {
		return nil, 0, false
	}

	outcomes := s.outcome.Extract(game)
	numPlayers := len(outcomes)

	seen := make(map[model.IdentityID]bool)
	var participants []participant
	for _, out := range outcomes {
		if !out.Rated() {
			continue
		}
		primary := mergeMap.Resolve(out.IdentityID)
		if seen[primary] {
			// Two game entries collapsed onto one identity after merge
			// remapping; count the first, never double count
			s.logger.Warn("duplicate identity in game, skipping entry",
				slog.String("game_id", string(game.ID)),
				slog.String("identity_id", string(primary)),
				slog.String("player", out.Name),
			)
			continue
		}
		seen[primary] = true
		participants = append(participants, participant{identityID: primary, out: out})
	}

	// Rating needs at least one rated opponent
	if len(participants) < 2 {
		return nil, 0, false
	}
	return participants, numPlayers, true
}

// applyGame runs the idempotency guard, the calculator, and the record
// mutations against the given freshly loaded identities. Safe to call
// repeatedly: it either mutates a clean set of records or returns an
// error without partial effects on its inputs' meaning.
func (s *Service) applyGame(
	identities map[model.IdentityID]*model.PlayerIdentity,
	participants []participant,
	numPlayers int,
	gameID model.GameID,
	gameType model.GameType,
) ([]model.RatingResult, error) {
	// Idempotency guard: any involved identity already carrying this
	// game aborts the whole update
	for _, p := range participants {
		ident, ok := identities[p.identityID]
		if !ok {
			return nil, model.ErrIdentityNotFound
		}
		if ident.EloFor(gameType).HasGame(gameID) {
			return nil, errAlreadyApplied
		}
	}

	// Deleted identities drop out of the rating math entirely
	active := make([]participant, 0, len(participants))
	for _, p := range participants {
		if !identities[p.identityID].Deleted {
			active = append(active, p)
		}
	}
	if len(active) < 2 {
		return nil, model.ErrNoRatedPlayers
	}

	now := s.clock.Now()
	results := make([]model.RatingResult, 0, len(active))

	for _, p := range active {
		record := identities[p.identityID].EloFor(gameType)

		player := rating.Player{
			Rating:      record.Rating,
			GamesPlayed: record.GamesPlayed,
			Placement:   p.out.Placement,
			Score:       p.out.Score,
		}

		opponents := make([]rating.Player, 0, len(active)-1)
		opponentIDs := make([]model.IdentityID, 0, len(active)-1)
		for _, o := range active {
			if o.identityID == p.identityID {
				continue
			}
			oppRecord := identities[o.identityID].EloFor(gameType)
			opponents = append(opponents, rating.Player{
				Rating:      oppRecord.Rating,
				GamesPlayed: oppRecord.GamesPlayed,
				Placement:   o.out.Placement,
				Score:       o.out.Score,
			})
			opponentIDs = append(opponentIDs, o.identityID)
		}

		delta := s.calculator.Calculate(player, opponents, numPlayers)
		won := p.out.Placement == 1

		results = append(results, model.RatingResult{
			IdentityID: p.identityID,
			Placement:  p.out.Placement,
			Score:      p.out.Score,
			OldRating:  delta.OldRating,
			NewRating:  delta.NewRating,
			Change:     delta.Change,
			Won:        won,
			Opponents:  opponentIDs,
		})
	}

	// Mutate records only after every delta is computed, so opponents
	// are all rated against pre-game state
	for i, p := range active {
		record := identities[p.identityID].EloFor(gameType)
		result := results[i]

		record.Rating = result.NewRating
		record.GamesPlayed++
		if record.Rating > record.Peak {
			record.Peak = record.Rating
		}
		if record.Rating < record.Floor {
			record.Floor = record.Rating
		}
		if result.Won {
			if record.Streak > 0 {
				record.Streak++
			} else {
				record.Streak = 1
			}
		} else {
			if record.Streak < 0 {
				record.Streak--
			} else {
				record.Streak = -1
			}
		}
		record.LastUpdated = now
		record.AddHistoryEntry(model.HistoryEntry{
			Rating:    result.NewRating,
			Change:    result.Change,
			GameID:    gameID,
			Opponents: result.Opponents,
			Placement: result.Placement,
			Date:      now,
		})
	}

	return results, nil
}

// persist writes the update through the store, retrying transient
// conflicts with exponential backoff and downgrading permanently to
// per-record writes if the store turns out not to support atomic
// multi-record updates.
func (s *Service) persist(ctx context.Context, ids []model.IdentityID, apply storage.ApplyFunc) error {
	if !s.atomicWrites.Load() {
		return s.persistDegraded(ctx, ids, apply)
	}

	var lastErr error
	for attempt := 0; attempt < maxAttempts; attempt++ {
		err := s.storage.UpdateIdentities(ctx, ids, apply)
		switch {
		case err == nil:
			return nil
		case errors.Is(err, storage.ErrWriteConflict):
			lastErr = err
			if backoffErr := sleepBackoff(ctx, attempt); backoffErr != nil {
				return backoffErr
			}
		case errors.Is(err, storage.ErrTransactionsUnsupported):
			s.logger.Warn("store does not support atomic updates, downgrading for remainder of run")
			s.atomicWrites.Store(false)
			return s.persistDegraded(ctx, ids, apply)
		default:
			return err
		}
	}
	return fmt.Errorf("update failed after %d attempts: %w", maxAttempts, lastErr)
}

// persistDegraded is the non-transactional path: load everything, run
// the mutation, save record by record. Correct per record; a crash
// mid-way leaves the idempotency guard to stop double application on
// the records that did commit.
func (s *Service) persistDegraded(ctx context.Context, ids []model.IdentityID, apply storage.ApplyFunc) error {
	identities := make(map[model.IdentityID]*model.PlayerIdentity, len(ids))
	for _, id := range ids {
		loaded, err := s.storage.GetIdentity(ctx, id)
		if err != nil {
			return err
		}
		identities[id] = loaded
	}

	if err := apply(identities); err != nil {
		return err
	}

	for _, id := range ids {
		if err := s.storage.SaveIdentity(ctx, identities[id]); err != nil {
			return err
		}
	}
	return nil
}

// sleepBackoff waits base * 2^attempt or until the context is done
func sleepBackoff(ctx context.Context, attempt int) error {
	delay := baseBackoff << uint(attempt)
	timer := time.NewTimer(delay)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
