package leaderboard

import (
	"context"

	"github.com/rtowner/charguess/internal/model"
	"github.com/rtowner/charguess/internal/storage"
)

// Service serves ranked queries over the player ledger
type Service struct {
	storage storage.Storage
}

// New creates a new leaderboard Service
func New(store storage.Storage) *Service {
	return &Service{storage: store}
}

// TopN returns the top n players sorted by coins descending. Ties are broken
// by the storage backend's stable secondary order.
func (s *Service) TopN(ctx context.Context, n int) ([]*model.Player, error) {
	return s.storage.TopPlayersByCoins(ctx, n)
}

// Stats returns the global player and character counts
func (s *Service) Stats(ctx context.Context) (players int64, characters int64, err error) {
	players, err = s.storage.CountPlayers(ctx)
	if err != nil {
		return 0, 0, err
	}
	characters, err = s.storage.CountCharacters(ctx)
	if err != nil {
		return 0, 0, err
	}
	return players, characters, nil
}
