package factory

import (
	"context"
	"time"

	"github.com/rtowner/charguess/internal/config"
	"github.com/rtowner/charguess/internal/dependencies/mocks"
	"github.com/rtowner/charguess/internal/storage/memory"
	"github.com/rtowner/charguess/internal/testutil"
)

// TestApp extends App with test-specific helpers
type TestApp struct {
	*App

	// Mocks for test control
	MockClock  *mocks.MockClock
	MockRandom *mocks.MockRandom
}

// TestConfig returns the configuration test apps are wired with
func TestConfig() *config.Config {
	return &config.Config{
		OwnerID:          "owner-1",
		BonusCoins:       100,
		StreakBonusCoins: 1000,
		BonusInterval:    24 * time.Hour,
		CoinsPerGuess:    50,
		XPPerGuess:       100,
		MessageThreshold: 3,
		LeaderboardSize:  10,
		RarityLevels:     []string{"Common", "Rare", "Epic", "Legendary"},
		RarityEmojis:     []string{"⚪", "🔵", "🟣", "🟡"},
		RarityWeights:    []int{60, 25, 10, 5},
	}
}

// NewTestApp creates an App configured for testing with mocked dependencies
func NewTestApp() *TestApp {
	store := memory.New()
	mockClock := mocks.NewMockClock(time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC))
	mockRandom := mocks.NewMockRandom()

	app := newWithDependencies(store, mockClock, mockRandom, TestConfig(), testutil.NopLogger())

	return &TestApp{
		App:        app,
		MockClock:  mockClock,
		MockRandom: mockRandom,
	}
}

// SeedCharacters inserts named characters with explicit rarity so tests do not
// consume queued random values
func (t *TestApp) SeedCharacters(ctx context.Context, names ...string) error {
	for _, name := range names {
		if _, err := t.CatalogService.Insert(ctx, name, "Common", "http://img/"+name); err != nil {
			return err
		}
	}
	return nil
}
