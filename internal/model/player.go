package model

import "time"

// UserID uniquely identifies a chat user across the system
type UserID string

// Player is the per-user economy record. Created lazily with zero defaults
// on first interaction; never destroyed.
type Player struct {
	ID             UserID     `json:"id"`
	DisplayName    string     `json:"display_name,omitempty"`
	Coins          int64      `json:"coins"`
	XP             int64      `json:"xp"`
	Streak         int64      `json:"streak"`
	CorrectGuesses int64      `json:"correct_guesses"`
	LastBonus      *time.Time `json:"last_bonus,omitempty"`
	CreatedAt      time.Time  `json:"created_at"`
}

// NewPlayer creates a player record with default zero values
func NewPlayer(id UserID, displayName string, now time.Time) *Player {
	return &Player{
		ID:          id,
		DisplayName: displayName,
		CreatedAt:   now,
	}
}

// PlayerDelta is an atomic partial update to a player record. Counter fields
// are increments; pointer fields are set when non-nil. A delta is applied as
// a single storage operation so concurrent credits never double-apply.
type PlayerDelta struct {
	Coins          int64
	XP             int64
	Streak         int64
	CorrectGuesses int64
	LastBonus      *time.Time
	DisplayName    *string
}

// IsZero reports whether applying the delta would change nothing
func (d PlayerDelta) IsZero() bool {
	return d.Coins == 0 && d.XP == 0 && d.Streak == 0 && d.CorrectGuesses == 0 &&
		d.LastBonus == nil && d.DisplayName == nil
}
