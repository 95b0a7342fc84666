package model

// ConversationID identifies a chat conversation (group or direct)
type ConversationID string

// RoundState represents the phase of a conversation's guessing round
type RoundState string

const (
	RoundStateIdle   RoundState = "idle"   // No active character
	RoundStateActive RoundState = "active" // Character revealed, accepting guesses
)

// RoundSnapshot is a read-only view of a conversation's round state
type RoundSnapshot struct {
	State        RoundState
	Character    *Character
	RevealCursor int
	MessageCount int
}
