package factory

import (
	"errors"
	"io"
	"log/slog"

	"github.com/rtowner/charguess/internal/chat"
	"github.com/rtowner/charguess/internal/config"
	"github.com/rtowner/charguess/internal/dependencies/clock"
	"github.com/rtowner/charguess/internal/dependencies/random"
	"github.com/rtowner/charguess/internal/model"
	"github.com/rtowner/charguess/internal/services/access"
	"github.com/rtowner/charguess/internal/services/catalog"
	"github.com/rtowner/charguess/internal/services/economy"
	"github.com/rtowner/charguess/internal/services/leaderboard"
	"github.com/rtowner/charguess/internal/services/ledger"
	"github.com/rtowner/charguess/internal/services/round"
	"github.com/rtowner/charguess/internal/storage"
	"github.com/rtowner/charguess/internal/storage/memory"
	redisstorage "github.com/rtowner/charguess/internal/storage/redis"
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
	Clock  clock.Clock
	Random random.Random

	// Services
	EconomyService     *economy.Service
	CatalogService     *catalog.Service
	LedgerService      *ledger.Service
	RoundController    *round.Controller
	LeaderboardService *leaderboard.Service
	AccessService      *access.Service
	Dispatcher         *chat.Dispatcher
}

// New creates a new application with all dependencies wired
func New(cfg *config.Config, logger *slog.Logger) (*App, error) {
	// Use no-op logger if not provided
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
		redisCfg := redisstorage.DefaultConfig()
		if cfg.RedisURL != "" {
			redisCfg.URL = cfg.RedisURL
		}
		redisStore, err := redisstorage.New(redisCfg)
		if err != nil {
			return nil, err
		}
		store = redisStore
	default:
		return nil, errors.New("invalid StorageType: must be 'memory' or 'redis'")
	}

	// Create external dependencies
	clk := clock.New()
	rnd := random.New()

	return newWithDependencies(store, clk, rnd, cfg, logger), nil
}

// newWithDependencies creates an App with the given dependencies (useful for testing)
func newWithDependencies(store storage.Storage, clk clock.Clock, rnd random.Random, cfg *config.Config, logger *slog.Logger) *App {
	// Create services
	economyService := economy.New(rnd)
	catalogService := catalog.New(store, economyService, clk, catalog.Config{
		RarityLevels:  cfg.RarityLevels,
		RarityWeights: cfg.RarityWeights,
	}, logger)
	ledgerService := ledger.New(store, economyService, clk, ledger.Config{
		BonusCoins:    cfg.BonusCoins,
		BonusInterval: cfg.BonusInterval,
		StreakUnit:    cfg.StreakBonusCoins,
		CoinsPerGuess: cfg.CoinsPerGuess,
		XPPerGuess:    cfg.XPPerGuess,
	}, logger)
	roundController := round.NewController(catalogService, ledgerService, round.Config{
		MessageThreshold: cfg.MessageThreshold,
	}, logger)
	leaderboardService := leaderboard.New(store)
	accessService := access.New(model.UserID(cfg.OwnerID))
	dispatcher := chat.NewDispatcher(roundController, ledgerService, catalogService,
		leaderboardService, accessService, chat.Config{
			LeaderboardSize: cfg.LeaderboardSize,
			RarityLevels:    cfg.RarityLevels,
			RarityEmojis:    cfg.RarityEmojis,
		}, logger)

	return &App{
		Storage:            store,
		Clock:              clk,
		Random:             rnd,
		EconomyService:     economyService,
		CatalogService:     catalogService,
		LedgerService:      ledgerService,
		RoundController:    roundController,
		LeaderboardService: leaderboardService,
		AccessService:      accessService,
		Dispatcher:         dispatcher,
	}
}
