package recalc

import (
	"context"
	"fmt"
	"log/slog"
	"sort"

	"github.com/jkrumboe/wizard-tracker-sub001/internal/model"
	"github.com/jkrumboe/wizard-tracker-sub001/internal/services/engine"
	"github.com/jkrumboe/wizard-tracker-sub001/internal/services/identity"
	"github.com/jkrumboe/wizard-tracker-sub001/internal/storage"
)

// Options controls a recalculation run
type Options struct {
	// DryRun computes deltas without persisting anything (and without
	// resetting existing records)
	DryRun bool
	// GameType restricts the run to one rating pool; empty means all
	GameType model.GameType
	// OnProgress, if set, is invoked after each processed game
	OnProgress func(processed, total int)
}

// Summary reports what a recalculation run did
type Summary struct {
	GamesProcessed int
	PlayerUpdates  int
	Skipped        int
	Errors         []string
}

// Service replays the entire historical game corpus in chronological
// order to rebuild ratings from a zero state. Used after scoring rule
// changes or identity merges. Not expected to run concurrently with
// itself; re-running is safe because the engine's idempotency guard
// makes replay of applied games a no-op.
type Service struct {
	storage  storage.Storage
	resolver *identity.Resolver
	engine   *engine.Service
	logger   *slog.Logger
}

// NewService creates a recalculation orchestrator
func NewService(store storage.Storage, resolver *identity.Resolver, eng *engine.Service, logger *slog.Logger) *Service {
	return &Service{
		storage:  store,
		resolver: resolver,
		engine:   eng,
		logger:   logger,
	}
}

// RecalculateAll rebuilds ratings by replaying every finished game in
// creation order. The batch can run over thousands of records, so the
// context is checked between games and cancellation stops the run with
// the summary so far and the context error.
func (s *Service) RecalculateAll(ctx context.Context, opts Options) (*Summary, error) {
	summary := &Summary{}

	// One merge map for the whole batch
	mergeMap, err := s.resolver.BuildMergeMap(ctx)
	if err != nil {
		return summary, fmt.Errorf("building merge map: %w", err)
	}

	// Replaying over existing history would trip the idempotency guard
	// on every game, so a real run starts from zero state
	if !opts.DryRun {
		if err := s.resetRecords(ctx, opts.GameType); err != nil {
			return summary, fmt.Errorf("resetting rating records: %w", err)
		}
	}

	games, err := s.collectGames(ctx, opts.GameType)
	if err != nil {
		return summary, err
	}

	sort.SliceStable(games, func(i, j int) bool {
		return games[i].CreatedAt.Before(games[j].CreatedAt)
	})

	total := len(games)
	s.logger.Info("recalculation started",
		slog.Int("games", total),
		slog.Bool("dry_run", opts.DryRun),
		slog.String("game_type", string(opts.GameType)),
	)

	for i, game := range games {
		if err := ctx.Err(); err != nil {
			return summary, err
		}

		var results []model.RatingResult
		var processErr error
		if opts.DryRun {
			results, processErr = s.engine.Preview(ctx, game, game.GameType, mergeMap)
		} else {
			results, processErr = s.engine.ProcessWithMergeMap(ctx, game, game.GameType, mergeMap)
		}

		switch {
		case processErr != nil:
			// Record and continue with the next game; one bad record
			// must not abort the whole rebuild
			summary.Errors = append(summary.Errors, fmt.Sprintf("game %s: %v", game.ID, processErr))
			s.logger.Error("recalculation error",
				slog.String("game_id", string(game.ID)),
				slog.String("error", processErr.Error()),
			)
		case len(results) == 0:
			summary.Skipped++
		default:
			summary.GamesProcessed++
			summary.PlayerUpdates += len(results)
		}

		if opts.OnProgress != nil {
			opts.OnProgress(i+1, total)
		}
	}

	s.logger.Info("recalculation finished",
		slog.Int("processed", summary.GamesProcessed),
		slog.Int("skipped", summary.Skipped),
		slog.Int("player_updates", summary.PlayerUpdates),
		slog.Int("errors", len(summary.Errors)),
	)

	return summary, nil
}

// collectGames gathers finished games, normalizing each game's type key
func (s *Service) collectGames(ctx context.Context, gameType model.GameType) ([]*model.Game, error) {
	var games []*model.Game
	var err error
	if gameType != "" {
		games, err = s.storage.ListFinishedGames(ctx, model.NormalizeGameType(string(gameType)))
	} else {
		games, err = s.storage.ListAllFinishedGames(ctx)
	}
	if err != nil {
		return nil, fmt.Errorf("collecting finished games: %w", err)
	}

	for _, game := range games {
		game.GameType = model.NormalizeGameType(string(game.GameType))
	}
	return games, nil
}

// resetRecords clears persisted EloRecords, one game type or all.
// Merging never deletes records, so this is the only place rating
// state is ever discarded.
func (s *Service) resetRecords(ctx context.Context, gameType model.GameType) error {
	identities, err := s.storage.ListIdentities(ctx)
	if err != nil {
		return err
	}

	gt := model.NormalizeGameType(string(gameType))
	for _, ident := range identities {
		if len(ident.Elo) == 0 {
			continue
		}
		if gt != "" {
			if _, ok := ident.Elo[gt]; !ok {
				continue
			}
			delete(ident.Elo, gt)
		} else {
			ident.Elo = make(map[model.GameType]*model.EloRecord)
		}
		if err := s.storage.SaveIdentity(ctx, ident); err != nil {
			return err
		}
	}
	return nil
}
