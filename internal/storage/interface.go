package storage

import (
	"context"

	"github.com/rtowner/charguess/internal/model"
)

// Storage defines the interface for data persistence.
//
// ApplyPlayerDelta is the only write path for economy fields: it must apply
// the whole delta as one atomic operation so that two simultaneous credits
// for the same user can never double-apply from a stale read.
type Storage interface {
	// Player operations
	//
	// CreatePlayer inserts the record only when the user has none yet and
	// returns the stored record, which is the existing one when the insert
	// lost a race. A creation can therefore never replace fields another
	// writer already applied.
	CreatePlayer(ctx context.Context, player *model.Player) (*model.Player, error)
	SavePlayer(ctx context.Context, player *model.Player) error
	GetPlayer(ctx context.Context, id model.UserID) (*model.Player, error)
	ApplyPlayerDelta(ctx context.Context, id model.UserID, delta model.PlayerDelta) (*model.Player, error)
	TopPlayersByCoins(ctx context.Context, n int) ([]*model.Player, error)
	CountPlayers(ctx context.Context) (int64, error)

	// Character operations
	GetCharacter(ctx context.Context, id int64) (*model.Character, error)
	ListCharacters(ctx context.Context) ([]*model.Character, error)
	RandomCharacter(ctx context.Context) (*model.Character, error)
	InsertCharacter(ctx context.Context, character *model.Character) error
	DeleteCharacter(ctx context.Context, id int64) (bool, error)
	ReplaceCharacters(ctx context.Context, characters []*model.Character) error
	CountCharacters(ctx context.Context) (int64, error)
}
