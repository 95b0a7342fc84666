package chat

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"

	"github.com/rtowner/charguess/internal/dependencies/mocks"
	"github.com/rtowner/charguess/internal/model"
	"github.com/rtowner/charguess/internal/services/access"
	"github.com/rtowner/charguess/internal/services/catalog"
	"github.com/rtowner/charguess/internal/services/economy"
	"github.com/rtowner/charguess/internal/services/leaderboard"
	"github.com/rtowner/charguess/internal/services/ledger"
	"github.com/rtowner/charguess/internal/services/round"
	"github.com/rtowner/charguess/internal/storage"
	"github.com/rtowner/charguess/internal/storage/memory"
	"github.com/rtowner/charguess/internal/testutil"
)

type DispatcherSuite struct {
	suite.Suite
	storage    *memory.Storage
	clock      *mocks.MockClock
	catalog    *catalog.Service
	dispatcher *Dispatcher
	sender     *Recorder
	ctx        context.Context
}

func TestDispatcherSuite(t *testing.T) {
	suite.Run(t, new(DispatcherSuite))
}

func (s *DispatcherSuite) SetupTest() {
	s.storage = memory.New()
	s.clock = mocks.NewMockClock(time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC))
	logger := testutil.NopLogger()
	eco := economy.New(mocks.NewMockRandom())

	rarityLevels := []string{"Common", "Legendary"}
	rarityWeights := []int{90, 10}

	s.catalog = catalog.New(s.storage, eco, s.clock, catalog.Config{
		RarityLevels:  rarityLevels,
		RarityWeights: rarityWeights,
	}, logger)

	led := ledger.New(s.storage, eco, s.clock, ledger.Config{
		BonusCoins:    100,
		BonusInterval: 24 * time.Hour,
		StreakUnit:    1000,
		CoinsPerGuess: 50,
		XPPerGuess:    100,
	}, logger)

	rounds := round.NewController(s.catalog, led, round.Config{MessageThreshold: 3}, logger)

	s.dispatcher = NewDispatcher(rounds, led, s.catalog, leaderboard.New(s.storage), access.New("owner-1"), Config{
		LeaderboardSize: 10,
		RarityLevels:    rarityLevels,
		RarityEmojis:    []string{"⚪", "🟡"},
	}, logger)

	s.sender = NewRecorder()
	s.ctx = context.Background()
}

func (s *DispatcherSuite) handle(userID model.UserID, text string, isGroup bool) []Intent {
	s.sender = NewRecorder()
	err := s.dispatcher.Handle(s.ctx, Event{
		ConversationID: "conv-1",
		UserID:         userID,
		DisplayName:    "Player " + string(userID),
		Text:           text,
		IsGroup:        isGroup,
	}, s.sender)
	s.Require().NoError(err)
	return s.sender.Intents()
}

// Command routing

func (s *DispatcherSuite) TestStartCreatesPlayerAndWelcomes() {
	intents := s.handle("user-1", "/start", false)
	s.Require().Len(intents, 1)
	s.Contains(intents[0].Text, "Welcome")

	player, err := s.storage.GetPlayer(s.ctx, "user-1")
	s.Require().NoError(err)
	s.Equal("Player user-1", player.DisplayName)
}

func (s *DispatcherSuite) TestHelp() {
	intents := s.handle("user-1", "/help", false)
	s.Require().Len(intents, 1)
	s.Contains(intents[0].Text, "/bonus")
	s.Contains(intents[0].Text, "/upload")
}

func (s *DispatcherSuite) TestCommandVerbWithBotSuffix() {
	intents := s.handle("user-1", "/help@charguess_bot", true)
	s.Require().Len(intents, 1)
	s.Contains(intents[0].Text, "/bonus")
}

func (s *DispatcherSuite) TestBonusGrantAndCooldown() {
	intents := s.handle("user-1", "/bonus", false)
	s.Require().Len(intents, 1)
	s.Contains(intents[0].Text, "1100 coins")

	s.clock.Advance(10*time.Hour + 30*time.Minute)
	intents = s.handle("user-1", "/bonus", false)
	s.Require().Len(intents, 1)
	s.Contains(intents[0].Text, "13h 30m")
}

func (s *DispatcherSuite) TestProfile() {
	s.handle("user-1", "/start", false)
	intents := s.handle("user-1", "/profile", false)
	s.Require().Len(intents, 1)
	s.Contains(intents[0].Text, "Level: 1")
	s.Contains(intents[0].Text, "Coins: 0")
}

func (s *DispatcherSuite) TestLeaderboard() {
	s.handle("user-1", "/start", false)
	s.handle("user-2", "/bonus", false)
	intents := s.handle("user-1", "/leaderboard", false)
	s.Require().Len(intents, 1)
	s.Contains(intents[0].Text, "1. Player user-2 — 1100 coins")
}

// Privilege gating

func (s *DispatcherSuite) TestUploadRequiresPrivilege() {
	intents := s.handle("user-1", "/upload http://img Rei", false)
	s.Require().Len(intents, 1)
	s.Contains(intents[0].Text, "not allowed")

	count, _ := s.storage.CountCharacters(s.ctx)
	s.Equal(int64(0), count)
}

func (s *DispatcherSuite) TestUploadByOwner() {
	intents := s.handle("owner-1", "/upload http://img Rei Ayanami", false)
	s.Require().Len(intents, 1)
	s.Contains(intents[0].Text, "Added #1 Rei Ayanami")

	character, err := s.storage.GetCharacter(s.ctx, 1)
	s.Require().NoError(err)
	s.Equal("Rei Ayanami", character.Name)
	s.Equal("http://img", character.ImageRef)
}

func (s *DispatcherSuite) TestUploadUsageHint() {
	intents := s.handle("owner-1", "/upload http://img", false)
	s.Require().Len(intents, 1)
	s.Contains(intents[0].Text, "Usage: /upload")
}

func (s *DispatcherSuite) TestDeleteByOwner() {
	s.handle("owner-1", "/upload http://img Rei", false)
	intents := s.handle("owner-1", "/delete 1", false)
	s.Require().Len(intents, 1)
	s.Contains(intents[0].Text, "deleted")
}

func (s *DispatcherSuite) TestDeleteMissing() {
	intents := s.handle("owner-1", "/delete 42", false)
	s.Require().Len(intents, 1)
	s.Contains(intents[0].Text, "No character with ID 42")
}

func (s *DispatcherSuite) TestDeleteMalformedID() {
	intents := s.handle("owner-1", "/delete abc", false)
	s.Require().Len(intents, 1)
	s.Contains(intents[0].Text, "Usage: /delete")
}

func (s *DispatcherSuite) TestAddSudoByOwnerThenSudoCanUpload() {
	intents := s.handle("owner-1", "/addsudo user-9", false)
	s.Require().Len(intents, 1)
	s.Contains(intents[0].Text, "sudo")

	intents = s.handle("user-9", "/upload http://img Rei", false)
	s.Require().Len(intents, 1)
	s.Contains(intents[0].Text, "Added #1 Rei")
}

func (s *DispatcherSuite) TestAddSudoByNonOwnerRefused() {
	intents := s.handle("user-1", "/addsudo user-2", false)
	s.Require().Len(intents, 1)
	s.Contains(intents[0].Text, "not allowed")
}

func (s *DispatcherSuite) TestStatsGated() {
	intents := s.handle("user-1", "/stats", false)
	s.Require().Len(intents, 1)
	s.Contains(intents[0].Text, "not allowed")

	intents = s.handle("owner-1", "/stats", false)
	s.Require().Len(intents, 1)
	s.Contains(intents[0].Text, "Players:")
}

func (s *DispatcherSuite) TestUnknownCommandIgnored() {
	intents := s.handle("user-1", "/frobnicate", true)
	s.Empty(intents)
}

// Game flow

func (s *DispatcherSuite) TestGroupMessagesRotateAndAnnounce() {
	s.handle("owner-1", "/upload http://img Rei", false)

	s.handle("user-1", "hello", true)
	s.handle("user-1", "how are you", true)
	intents := s.handle("user-1", "fine thanks", true)

	s.Require().Len(intents, 1)
	s.Equal(IntentImage, intents[0].Type)
	s.Equal("http://img", intents[0].ImageRef)
	s.Contains(intents[0].Caption, "Guess the Character")
	s.Contains(intents[0].Caption, "Name: ???")
}

func (s *DispatcherSuite) TestEmptyPoolAnnouncement() {
	s.handle("user-1", "a", true)
	s.handle("user-1", "b", true)
	intents := s.handle("user-1", "c", true)

	s.Require().Len(intents, 1)
	s.Contains(intents[0].Text, "No characters available")
}

func (s *DispatcherSuite) TestCorrectGuessCongratulatesAndReseeds() {
	s.handle("owner-1", "/upload http://img Rei", false)
	s.handle("user-1", "x", true)
	s.handle("user-1", "y", true)
	s.handle("user-1", "z", true) // Rotation announces Rei

	intents := s.handle("user-1", "rei", true)
	s.Require().Len(intents, 2)
	s.Contains(intents[0].Text, "Correct! It was Rei")
	s.Contains(intents[0].Text, "earned 50 coins")
	s.Contains(intents[0].Text, "Streak bonus: 1000 coins")
	s.Equal(IntentImage, intents[1].Type)
}

// failingDrawStorage errors on RandomCharacter once the allowed draws are
// used up, standing in for a flaky persistence backend
type failingDrawStorage struct {
	storage.Storage
	allowed int
}

func (f *failingDrawStorage) RandomCharacter(ctx context.Context) (*model.Character, error) {
	if f.allowed <= 0 {
		return nil, errors.New("backend unavailable")
	}
	f.allowed--
	return f.Storage.RandomCharacter(ctx)
}

func (s *DispatcherSuite) TestFailedReseedReportsErrorNotEmptyPool() {
	s.handle("owner-1", "/upload http://img Rei", false)

	logger := testutil.NopLogger()
	eco := economy.New(mocks.NewMockRandom())
	cat := catalog.New(&failingDrawStorage{Storage: s.storage, allowed: 1}, eco, s.clock, catalog.Config{
		RarityLevels:  []string{"Common"},
		RarityWeights: []int{1},
	}, logger)
	led := ledger.New(s.storage, eco, s.clock, ledger.Config{
		BonusCoins:    100,
		BonusInterval: 24 * time.Hour,
		StreakUnit:    1000,
		CoinsPerGuess: 50,
		XPPerGuess:    100,
	}, logger)
	rounds := round.NewController(cat, led, round.Config{MessageThreshold: 3}, logger)
	dispatcher := NewDispatcher(rounds, led, cat, leaderboard.New(s.storage), access.New("owner-1"), Config{
		LeaderboardSize: 10,
		RarityLevels:    []string{"Common"},
		RarityEmojis:    []string{"⚪"},
	}, logger)

	handle := func(text string) []Intent {
		recorder := NewRecorder()
		err := dispatcher.Handle(s.ctx, Event{
			ConversationID: "conv-1",
			UserID:         "user-1",
			DisplayName:    "Player user-1",
			Text:           text,
			IsGroup:        true,
		}, recorder)
		s.Require().NoError(err)
		return recorder.Intents()
	}

	handle("x")
	handle("y")
	handle("z") // Rotation uses the one allowed draw

	// The match credits the winner; the reseed hits the backend error, and
	// the reply must not claim the pool is empty
	intents := handle("rei")
	s.Require().Len(intents, 2)
	s.Contains(intents[0].Text, "Correct! It was Rei")
	s.Contains(intents[1].Text, "went wrong")
	s.NotContains(intents[1].Text, "No characters available")
}

func (s *DispatcherSuite) TestWrongGuessSilentInGroups() {
	s.handle("owner-1", "/upload http://img Rei", false)
	s.handle("user-1", "x", true)
	s.handle("user-1", "y", true)
	s.handle("user-1", "z", true)

	intents := s.handle("user-1", "asuka", true)
	s.Empty(intents)
}

func (s *DispatcherSuite) TestWrongGuessHintsInDirect() {
	s.handle("owner-1", "/upload http://img Rei", false)
	s.handle("user-1", "x", true)
	s.handle("user-1", "y", true)
	s.handle("user-1", "z", true)

	intents := s.handle("user-1", "asuka", false)
	s.Require().Len(intents, 1)
	s.Contains(intents[0].Text, "Hint: R▫▫")
}
