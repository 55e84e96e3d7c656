package factory

import (
	"errors"
	"io"
	"log/slog"

	"github.com/jkrumboe/wizard-tracker-sub001/internal/dependencies/clock"
	"github.com/jkrumboe/wizard-tracker-sub001/internal/services/engine"
	"github.com/jkrumboe/wizard-tracker-sub001/internal/services/identity"
	"github.com/jkrumboe/wizard-tracker-sub001/internal/services/outcome"
	"github.com/jkrumboe/wizard-tracker-sub001/internal/services/rankings"
	"github.com/jkrumboe/wizard-tracker-sub001/internal/services/rating"
	"github.com/jkrumboe/wizard-tracker-sub001/internal/services/recalc"
	"github.com/jkrumboe/wizard-tracker-sub001/internal/storage"
	"github.com/jkrumboe/wizard-tracker-sub001/internal/storage/memory"
	redisstorage "github.com/jkrumboe/wizard-tracker-sub001/internal/storage/redis"
)

// Storage type constants
const (
	StorageTypeMemory = "memory"
	StorageTypeRedis  = "redis"
)

// App contains all wired application components
type App struct {
	// Storage
	Storage storage.Storage

	// External dependencies
	Clock clock.Clock

	// Services
	Resolver        *identity.Resolver
	OutcomeService  *outcome.Service
	Calculator      *rating.Calculator
	Engine          *engine.Service
	RecalcService   *recalc.Service
	RankingsService *rankings.Service
}

// Config holds configuration for the application factory
type Config struct {
	// Logger is the application logger (optional)
	// If nil, a no-op logger is used
	Logger *slog.Logger
	// StorageType selects the storage backend ("memory" or "redis")
	// If empty, defaults to "memory"
	StorageType string
	// RedisConfig holds Redis connection settings (required if StorageType is "redis")
	RedisConfig *redisstorage.Config
	// RatingConfig holds the scoring policy (optional)
	// If nil, defaults to rating.DefaultConfig()
	RatingConfig *rating.Config
}

// New creates a new application with all dependencies wired
func New(cfg Config) (*App, error) {
	logger := cfg.Logger
	if logger == nil {
		logger = slog.New(slog.NewJSONHandler(io.Discard, nil))
	}

	// Create storage based on type
	var store storage.Storage
	storageType := cfg.StorageType
	if storageType == "" {
		storageType = StorageTypeMemory
	}

	switch storageType {
	case StorageTypeMemory:
		store = memory.New()
	case StorageTypeRedis:
		if cfg.RedisConfig == nil {
			return nil, errors.New("RedisConfig required when StorageType is redis")
		}
		redisStore, err := redisstorage.New(*cfg.RedisConfig)
		if err != nil {
			return nil, err
		}
		store = redisStore
	default:
		return nil, errors.New("invalid StorageType: must be 'memory' or 'redis'")
	}

	ratingCfg := rating.DefaultConfig()
	if cfg.RatingConfig != nil {
		ratingCfg = *cfg.RatingConfig
	}

	return newWithDependencies(store, clock.New(), ratingCfg, logger), nil
}

// newWithDependencies creates an App with the given dependencies (useful for testing)
func newWithDependencies(store storage.Storage, clk clock.Clock, ratingCfg rating.Config, logger *slog.Logger) *App {
	resolver := identity.NewResolver(store, logger)
	outcomeService := outcome.New()
	calculator := rating.NewCalculator(ratingCfg)
	eng := engine.NewService(store, resolver, outcomeService, calculator, clk, logger)
	recalcService := recalc.NewService(store, resolver, eng, logger)
	rankingsService := rankings.NewService(store)

	return &App{
		Storage:         store,
		Clock:           clk,
		Resolver:        resolver,
		OutcomeService:  outcomeService,
		Calculator:      calculator,
		Engine:          eng,
		RecalcService:   recalcService,
		RankingsService: rankingsService,
	}
}
