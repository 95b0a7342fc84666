package economy

import (
	"github.com/rtowner/charguess/internal/dependencies/random"
)

// Leveling curve constants. The first level costs 500 XP and each subsequent
// level costs 150 XP more than the one before it (500, 650, 800, ...).
const (
	LevelBaseThreshold = 500
	LevelIncrement     = 150
)

// Service holds the deterministic economy rules. All methods are total for
// valid, pre-validated configuration and never return errors.
type Service struct {
	random random.Random
}

// New creates a new economy Service
func New(rnd random.Random) *Service {
	return &Service{random: rnd}
}

// LevelForXP returns the level reached with the given total XP and the XP
// still needed to reach the next level. Levels start at 1.
func (s *Service) LevelForXP(xp int64) (int, int64) {
	level := 1
	threshold := int64(LevelBaseThreshold)
	for xp >= threshold {
		xp -= threshold
		level++
		threshold += LevelIncrement
	}
	return level, threshold - xp
}

// LevelUp reports whether adding xpGained to xp crosses a level boundary.
// It returns the new level when one was reached (0 otherwise) and the XP
// needed to reach the level after that.
func (s *Service) LevelUp(xp, xpGained int64) (int, int64) {
	before, _ := s.LevelForXP(xp)
	after, toNext := s.LevelForXP(xp + xpGained)
	if after > before {
		return after, toNext
	}
	return 0, toNext
}

// StreakReward returns the coin reward for the given streak. The streak is
// incremented before this is called, so the first success yields one unit.
func (s *Service) StreakReward(streak, unit int64) int64 {
	return streak * unit
}

// SampleRarity draws a single rarity level proportional to the configured
// integer weights. Levels and weights are paired by position and validated
// at startup: equal length, non-negative weights, positive sum. Zero-weight
// levels are never drawn.
func (s *Service) SampleRarity(levels []string, weights []int) string {
	total := 0
	for _, w := range weights {
		total += w
	}

	n := s.random.Intn(total)
	for i, w := range weights {
		if n < w {
			return levels[i]
		}
		n -= w
	}
	// Unreachable with a positive weight sum
	return levels[len(levels)-1]
}
