package round

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"

	"github.com/rtowner/charguess/internal/dependencies/mocks"
	"github.com/rtowner/charguess/internal/model"
	"github.com/rtowner/charguess/internal/services/catalog"
	"github.com/rtowner/charguess/internal/services/economy"
	"github.com/rtowner/charguess/internal/services/ledger"
	"github.com/rtowner/charguess/internal/storage"
	"github.com/rtowner/charguess/internal/storage/memory"
	"github.com/rtowner/charguess/internal/testutil"
)

const conv = model.ConversationID("conv-1")

type ControllerSuite struct {
	suite.Suite
	storage    *memory.Storage
	catalog    *catalog.Service
	ledger     *ledger.Service
	controller *Controller
	ctx        context.Context
}

func TestControllerSuite(t *testing.T) {
	suite.Run(t, new(ControllerSuite))
}

func (s *ControllerSuite) SetupTest() {
	s.storage = memory.New()
	clk := mocks.NewMockClock(time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC))
	eco := economy.New(mocks.NewMockRandom())

	s.catalog = catalog.New(s.storage, eco, clk, catalog.Config{
		RarityLevels:  []string{"Common"},
		RarityWeights: []int{1},
	}, testutil.NopLogger())

	s.ledger = ledger.New(s.storage, eco, clk, ledger.Config{
		BonusCoins:    100,
		BonusInterval: 24 * time.Hour,
		StreakUnit:    1000,
		CoinsPerGuess: 50,
		XPPerGuess:    100,
	}, testutil.NopLogger())

	s.controller = NewController(s.catalog, s.ledger, Config{MessageThreshold: 3}, testutil.NopLogger())
	s.ctx = context.Background()
}

func (s *ControllerSuite) insert(name string) {
	_, err := s.catalog.Insert(s.ctx, name, "Common", "http://img")
	s.Require().NoError(err)
}

// Tick tests

func (s *ControllerSuite) TestTickIgnoresDirectMessages() {
	s.insert("Rei")
	for i := 0; i < 10; i++ {
		character, rotated, err := s.controller.Tick(s.ctx, conv, false)
		s.Require().NoError(err)
		s.False(rotated)
		s.Nil(character)
	}
	s.Equal(model.RoundStateIdle, s.controller.Snapshot(conv).State)
}

func (s *ControllerSuite) TestTickRotatesAtThreshold() {
	s.insert("Rei")

	for i := 0; i < 2; i++ {
		_, rotated, err := s.controller.Tick(s.ctx, conv, true)
		s.Require().NoError(err)
		s.False(rotated)
	}

	character, rotated, err := s.controller.Tick(s.ctx, conv, true)
	s.Require().NoError(err)
	s.True(rotated)
	s.Require().NotNil(character)
	s.Equal("Rei", character.Name)

	// Counter reset: two more messages do not rotate
	s.Equal(0, s.controller.Snapshot(conv).MessageCount)
	_, rotated, _ = s.controller.Tick(s.ctx, conv, true)
	s.False(rotated)
}

func (s *ControllerSuite) TestTickRotatesEvenWhileActive() {
	s.insert("Rei")
	_, err := s.controller.StartRound(s.ctx, conv)
	s.Require().NoError(err)

	// Reveal a few characters, then force a rotation
	for i := 0; i < 2; i++ {
		_, err := s.controller.EvaluateGuess(s.ctx, conv, "user-1", "wrong")
		s.Require().NoError(err)
	}
	s.Equal(2, s.controller.Snapshot(conv).RevealCursor)

	for i := 0; i < 3; i++ {
		_, _, err := s.controller.Tick(s.ctx, conv, true)
		s.Require().NoError(err)
	}

	// Fresh round: cursor reset
	snap := s.controller.Snapshot(conv)
	s.Equal(model.RoundStateActive, snap.State)
	s.Equal(0, snap.RevealCursor)
}

func (s *ControllerSuite) TestTickEmptyPoolGoesIdle() {
	for i := 0; i < 3; i++ {
		character, rotated, err := s.controller.Tick(s.ctx, conv, true)
		s.Require().NoError(err)
		if i == 2 {
			s.True(rotated)
			s.Nil(character)
		}
	}
	s.Equal(model.RoundStateIdle, s.controller.Snapshot(conv).State)
}

func (s *ControllerSuite) TestStartRoundEmptyPool() {
	_, err := s.controller.StartRound(s.ctx, conv)
	s.ErrorIs(err, model.ErrEmptyPool)
}

// Guess tests

func (s *ControllerSuite) TestGuessWithoutRound() {
	result, err := s.controller.EvaluateGuess(s.ctx, conv, "user-1", "rei")
	s.Require().NoError(err)
	s.Equal(OutcomeNoRound, result.Outcome)
}

func (s *ControllerSuite) TestGuessSubstringMatch() {
	s.insert("Rei Ayanami")
	_, err := s.controller.StartRound(s.ctx, conv)
	s.Require().NoError(err)

	result, err := s.controller.EvaluateGuess(s.ctx, conv, "user-1", "  AYANAMI ")
	s.Require().NoError(err)

	s.Equal(OutcomeMatch, result.Outcome)
	s.Equal("Rei Ayanami", result.Character.Name)
	s.Require().NotNil(result.Award)
	s.Equal(int64(1050), result.Award.Coins)
	s.Equal(int64(100), result.Award.XPGained)
	s.Equal(int64(1), result.Award.Streak)
	s.Require().NotNil(result.Next) // Pool still has a character to draw

	player, _ := s.storage.GetPlayer(s.ctx, "user-1")
	s.Equal(int64(1050), player.Coins)
	s.Equal(int64(1), player.CorrectGuesses)
}

func (s *ControllerSuite) TestGuessMissRevealsOneMoreCharacter() {
	s.insert("Rei Ayanami")
	_, err := s.controller.StartRound(s.ctx, conv)
	s.Require().NoError(err)

	result, err := s.controller.EvaluateGuess(s.ctx, conv, "user-1", "misato")
	s.Require().NoError(err)
	s.Equal(OutcomeNoMatch, result.Outcome)
	s.Equal("R▫▫ ▫▫▫▫▫▫▫", result.Hint)

	result, err = s.controller.EvaluateGuess(s.ctx, conv, "user-1", "asuka")
	s.Require().NoError(err)
	s.Equal("Re▫ ▫▫▫▫▫▫▫", result.Hint)
}

func (s *ControllerSuite) TestRevealCursorNeverFullyDiscloses() {
	s.insert("Rei")
	_, err := s.controller.StartRound(s.ctx, conv)
	s.Require().NoError(err)

	var last string
	for i := 0; i < 10; i++ {
		result, err := s.controller.EvaluateGuess(s.ctx, conv, "user-1", "wrong")
		s.Require().NoError(err)
		last = result.Hint
	}
	s.Equal("Re▫", last)
	s.Equal(2, s.controller.Snapshot(conv).RevealCursor)
}

func (s *ControllerSuite) TestResolvedRoundNeverCreditsAgain() {
	s.insert("Rei")
	_, err := s.controller.StartRound(s.ctx, conv)
	s.Require().NoError(err)

	// Empty the pool so the resolved round cannot be re-seeded
	removed, err := s.catalog.DeleteByID(s.ctx, 1)
	s.Require().NoError(err)
	s.True(removed)

	result, err := s.controller.EvaluateGuess(s.ctx, conv, "user-1", "rei")
	s.Require().NoError(err)
	s.Equal(OutcomeMatch, result.Outcome)
	s.Nil(result.Next)
	s.False(result.RedrawFailed)

	// Same guess against the resolved round
	result, err = s.controller.EvaluateGuess(s.ctx, conv, "user-2", "rei")
	s.Require().NoError(err)
	s.Equal(OutcomeNoRound, result.Outcome)

	_, err = s.storage.GetPlayer(s.ctx, "user-2")
	s.ErrorIs(err, model.ErrPlayerNotFound)
}

// failingDrawStorage returns a backend error from RandomCharacter once the
// allowed number of successful draws is used up
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

func (s *ControllerSuite) TestMatchWithFailingRedrawKeepsCreditAndFlagsIt() {
	s.insert("Rei")

	clk := mocks.NewMockClock(time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC))
	eco := economy.New(mocks.NewMockRandom())
	cat := catalog.New(&failingDrawStorage{Storage: s.storage, allowed: 1}, eco, clk, catalog.Config{
		RarityLevels:  []string{"Common"},
		RarityWeights: []int{1},
	}, testutil.NopLogger())
	controller := NewController(cat, s.ledger, Config{MessageThreshold: 3}, testutil.NopLogger())

	_, err := controller.StartRound(s.ctx, conv)
	s.Require().NoError(err)

	result, err := controller.EvaluateGuess(s.ctx, conv, "user-1", "rei")
	s.Require().NoError(err)
	s.Equal(OutcomeMatch, result.Outcome)
	s.Require().NotNil(result.Award)
	s.Nil(result.Next)
	s.True(result.RedrawFailed)

	// Credit survived and the round went idle
	player, _ := s.storage.GetPlayer(s.ctx, "user-1")
	s.Equal(int64(1050), player.Coins)
	s.Equal(model.RoundStateIdle, controller.Snapshot(conv).State)
}

func (s *ControllerSuite) TestConcurrentGuessesExactlyOneMatch() {
	s.insert("Rei")
	_, err := s.controller.StartRound(s.ctx, conv)
	s.Require().NoError(err)

	_, err = s.catalog.DeleteByID(s.ctx, 1)
	s.Require().NoError(err)

	const n = 10
	var wg sync.WaitGroup
	results := make([]*GuessResult, n)
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			result, err := s.controller.EvaluateGuess(s.ctx, conv, model.UserID("user-1"), "rei")
			s.NoError(err)
			results[i] = result
		}(i)
	}
	wg.Wait()

	matches := 0
	for _, result := range results {
		if result != nil && result.Outcome == OutcomeMatch {
			matches++
		}
	}
	s.Equal(1, matches)

	player, _ := s.storage.GetPlayer(s.ctx, "user-1")
	s.Equal(int64(1050), player.Coins)
	s.Equal(int64(1), player.CorrectGuesses)
}

func (s *ControllerSuite) TestRoundsAreIsolatedPerConversation() {
	s.insert("Rei")
	_, err := s.controller.StartRound(s.ctx, "conv-a")
	s.Require().NoError(err)

	result, err := s.controller.EvaluateGuess(s.ctx, "conv-b", "user-1", "rei")
	s.Require().NoError(err)
	s.Equal(OutcomeNoRound, result.Outcome)

	result, err = s.controller.EvaluateGuess(s.ctx, "conv-a", "user-1", "rei")
	s.Require().NoError(err)
	s.Equal(OutcomeMatch, result.Outcome)
}
