package model

import "errors"

// Common errors used across the application
var (
	// Player errors
	ErrPlayerNotFound = errors.New("player not found")

	// Character errors
	ErrCharacterNotFound = errors.New("character not found")
	ErrEmptyPool         = errors.New("no characters available")

	// Privilege errors
	ErrUnauthorized = errors.New("user is not privileged")

	// Command errors
	ErrValidation = errors.New("invalid command arguments")
)
