package ledger

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"

	"github.com/rtowner/charguess/internal/dependencies/clock"
	"github.com/rtowner/charguess/internal/model"
	"github.com/rtowner/charguess/internal/services/economy"
	"github.com/rtowner/charguess/internal/storage"
)

// Config holds the reward amounts for the ledger
type Config struct {
	BonusCoins    int64
	BonusInterval time.Duration
	StreakUnit    int64
	CoinsPerGuess int64
	XPPerGuess    int64
}

// BonusState is the outcome variant of a daily bonus claim
type BonusState string

const (
	BonusGranted    BonusState = "granted"
	BonusOnCooldown BonusState = "on_cooldown"
)

// BonusOutcome describes the result of a daily bonus claim. A claim on
// cooldown is an expected outcome, not an error.
type BonusOutcome struct {
	State     BonusState
	Remaining time.Duration // Wait left, when on cooldown
	Coins     int64         // Total coins credited
	XPGained  int64
	Streak    int64
	NewLevel  int // New level when one was reached, 0 otherwise
	XPToNext  int64
}

// GuessAward describes the credit for a correct guess
type GuessAward struct {
	Coins       int64 // Total coins credited (base + streak bonus)
	BaseCoins   int64
	StreakBonus int64
	XPGained    int64
	Streak      int64
	NewLevel    int
	XPToNext    int64
}

// Profile is a player record with its derived level information
type Profile struct {
	Player   *model.Player
	Level    int
	XPToNext int64
}

// Service owns player record lifecycle and every economy credit. Credits go
// through a single atomic storage delta; the read-decide-credit sequences
// (bonus cooldown check, streak read) are serialized per user.
type Service struct {
	storage storage.Storage
	economy *economy.Service
	clock   clock.Clock
	cfg     Config
	logger  *slog.Logger

	mu    sync.Mutex
	locks map[model.UserID]*sync.Mutex
}

// New creates a new ledger Service
func New(store storage.Storage, eco *economy.Service, clk clock.Clock, cfg Config, logger *slog.Logger) *Service {
	return &Service{
		storage: store,
		economy: eco,
		clock:   clk,
		cfg:     cfg,
		logger:  logger,
		locks:   make(map[model.UserID]*sync.Mutex),
	}
}

// userLock returns the mutex guarding a user's read-decide-credit sequences
func (s *Service) userLock(id model.UserID) *sync.Mutex {
	s.mu.Lock()
	defer s.mu.Unlock()
	lock, ok := s.locks[id]
	if !ok {
		lock = &sync.Mutex{}
		s.locks[id] = lock
	}
	return lock
}

// GetOrCreate returns the player record for the given user, creating it with
// zero defaults on first interaction. The display name is recorded the first
// time one is seen. Idempotent.
//
// Creation runs under the user's lock and through a create-if-absent storage
// operation, so a stalled creation from one message can never land after a
// concurrent credit and replace it with a zero record.
func (s *Service) GetOrCreate(ctx context.Context, id model.UserID, displayName string) (*model.Player, error) {
	lock := s.userLock(id)
	lock.Lock()
	defer lock.Unlock()

	return s.getOrCreateLocked(ctx, id, displayName)
}

// getOrCreateLocked is GetOrCreate for callers already holding the user's lock
func (s *Service) getOrCreateLocked(ctx context.Context, id model.UserID, displayName string) (*model.Player, error) {
	player, err := s.storage.GetPlayer(ctx, id)
	if err == nil {
		if player.DisplayName == "" && displayName != "" {
			updated, err := s.storage.ApplyPlayerDelta(ctx, id, model.PlayerDelta{DisplayName: &displayName})
			if err != nil {
				return nil, err
			}
			return updated, nil
		}
		return player, nil
	}
	if !errors.Is(err, model.ErrPlayerNotFound) {
		return nil, err
	}

	created, err := s.storage.CreatePlayer(ctx, model.NewPlayer(id, displayName, s.clock.Now()))
	if err != nil {
		return nil, err
	}

	s.logger.Info("player created", slog.String("user_id", string(id)))
	return created, nil
}

// Profile returns the player record with its derived level and XP-to-next
func (s *Service) Profile(ctx context.Context, id model.UserID) (*Profile, error) {
	player, err := s.storage.GetPlayer(ctx, id)
	if err != nil {
		return nil, err
	}
	level, toNext := s.economy.LevelForXP(player.XP)
	return &Profile{Player: player, Level: level, XPToNext: toNext}, nil
}

// ClaimDailyBonus grants the periodic bonus, or reports the remaining wait
// when claimed too early. A claim exactly at the cooldown boundary (elapsed
// == interval) is granted. On grant the streak is incremented first, the
// streak bonus is added on top of the base amount, and the base amount is
// also fed in as XP gained.
//
// A missed interval never resets the streak. That matches the behavior the
// economy was tuned with; see DESIGN.md.
func (s *Service) ClaimDailyBonus(ctx context.Context, id model.UserID) (*BonusOutcome, error) {
	lock := s.userLock(id)
	lock.Lock()
	defer lock.Unlock()

	player, err := s.getOrCreateLocked(ctx, id, "")
	if err != nil {
		return nil, err
	}

	now := s.clock.Now()
	if player.LastBonus != nil {
		elapsed := now.Sub(*player.LastBonus)
		if elapsed < s.cfg.BonusInterval {
			return &BonusOutcome{
				State:     BonusOnCooldown,
				Remaining: s.cfg.BonusInterval - elapsed,
			}, nil
		}
	}

	newStreak := player.Streak + 1
	coins := s.cfg.BonusCoins + s.economy.StreakReward(newStreak, s.cfg.StreakUnit)

	updated, err := s.storage.ApplyPlayerDelta(ctx, id, model.PlayerDelta{
		Coins:     coins,
		XP:        s.cfg.BonusCoins,
		Streak:    1,
		LastBonus: &now,
	})
	if err != nil {
		return nil, err
	}

	newLevel, toNext := s.economy.LevelUp(updated.XP-s.cfg.BonusCoins, s.cfg.BonusCoins)

	s.logger.Info("daily bonus granted",
		slog.String("user_id", string(id)),
		slog.Int64("coins", coins),
		slog.Int64("streak", updated.Streak),
	)

	return &BonusOutcome{
		State:    BonusGranted,
		Coins:    coins,
		XPGained: s.cfg.BonusCoins,
		Streak:   updated.Streak,
		NewLevel: newLevel,
		XPToNext: toNext,
	}, nil
}

// AwardGuess credits a correct guess: streak and correct-guess counters are
// incremented, coins and XP applied, all in one atomic storage delta.
func (s *Service) AwardGuess(ctx context.Context, id model.UserID) (*GuessAward, error) {
	lock := s.userLock(id)
	lock.Lock()
	defer lock.Unlock()

	player, err := s.getOrCreateLocked(ctx, id, "")
	if err != nil {
		return nil, err
	}

	newStreak := player.Streak + 1
	streakBonus := s.economy.StreakReward(newStreak, s.cfg.StreakUnit)
	coins := s.cfg.CoinsPerGuess + streakBonus

	updated, err := s.storage.ApplyPlayerDelta(ctx, id, model.PlayerDelta{
		Coins:          coins,
		XP:             s.cfg.XPPerGuess,
		Streak:         1,
		CorrectGuesses: 1,
	})
	if err != nil {
		return nil, err
	}

	newLevel, toNext := s.economy.LevelUp(updated.XP-s.cfg.XPPerGuess, s.cfg.XPPerGuess)

	return &GuessAward{
		Coins:       coins,
		BaseCoins:   s.cfg.CoinsPerGuess,
		StreakBonus: streakBonus,
		XPGained:    s.cfg.XPPerGuess,
		Streak:      updated.Streak,
		NewLevel:    newLevel,
		XPToNext:    toNext,
	}, nil
}
