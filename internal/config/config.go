package config

import (
	"fmt"
	"time"

	"github.com/caarlos0/env/v11"
)

// Config holds all runtime configuration, loaded from the environment
type Config struct {
	ListenAddr  string `env:"LISTEN_ADDR" envDefault:":8080"`
	StorageType string `env:"STORAGE_TYPE" envDefault:"memory"`
	RedisURL    string `env:"REDIS_URL" envDefault:"redis://localhost:6379"`

	OwnerID       string `env:"BOT_OWNER_ID"`
	WebhookSecret string `env:"WEBHOOK_SECRET"`

	// Economy settings
	BonusCoins       int64         `env:"BONUS_COINS" envDefault:"100"`
	StreakBonusCoins int64         `env:"STREAK_BONUS_COINS" envDefault:"1000"`
	BonusInterval    time.Duration `env:"BONUS_INTERVAL" envDefault:"24h"`
	CoinsPerGuess    int64         `env:"COINS_PER_GUESS" envDefault:"50"`
	XPPerGuess       int64         `env:"XP_PER_GUESS" envDefault:"100"`

	// Round settings
	MessageThreshold int `env:"MESSAGE_THRESHOLD" envDefault:"25"`
	LeaderboardSize  int `env:"TOP_LEADERBOARD_LIMIT" envDefault:"10"`

	// Character rarity settings, paired by position
	RarityLevels  []string `env:"RARITY_LEVELS" envDefault:"Common,Rare,Epic,Legendary"`
	RarityEmojis  []string `env:"RARITY_EMOJIS" envDefault:"⚪,🔵,🟣,🟡"`
	RarityWeights []int    `env:"RARITY_WEIGHTS" envDefault:"60,25,10,5"`
}

// Load parses configuration from the environment and validates it.
// Validation failures are fatal at startup so the economy rules never see an
// invalid rarity distribution at runtime.
func Load() (*Config, error) {
	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return nil, fmt.Errorf("parse env: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate checks the configuration invariants
func (c *Config) Validate() error {
	if len(c.RarityLevels) == 0 {
		return fmt.Errorf("at least one rarity level is required")
	}
	if len(c.RarityWeights) != len(c.RarityLevels) {
		return fmt.Errorf("rarity weights (%d) and levels (%d) must have equal length",
			len(c.RarityWeights), len(c.RarityLevels))
	}
	if len(c.RarityEmojis) != len(c.RarityLevels) {
		return fmt.Errorf("rarity emojis (%d) and levels (%d) must have equal length",
			len(c.RarityEmojis), len(c.RarityLevels))
	}

	sum := 0
	for i, w := range c.RarityWeights {
		if w < 0 {
			return fmt.Errorf("rarity weight for %q must be non-negative", c.RarityLevels[i])
		}
		sum += w
	}
	if sum == 0 {
		return fmt.Errorf("rarity weights must not all be zero")
	}

	if c.MessageThreshold <= 0 {
		return fmt.Errorf("message threshold must be positive")
	}
	if c.BonusInterval <= 0 {
		return fmt.Errorf("bonus interval must be positive")
	}
	if c.LeaderboardSize <= 0 {
		return fmt.Errorf("leaderboard size must be positive")
	}
	return nil
}
