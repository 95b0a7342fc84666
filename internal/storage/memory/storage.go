package memory

import (
	"context"
	"math/rand"
	"sort"
	"sync"

	"github.com/rtowner/charguess/internal/model"
	"github.com/rtowner/charguess/internal/storage"
)

// Storage is an in-memory implementation of the storage interface
type Storage struct {
	mu sync.RWMutex

	players    map[model.UserID]*model.Player
	characters map[int64]*model.Character
	nextCharID int64
}

// New creates a new in-memory storage instance
func New() *Storage {
	return &Storage{
		players:    make(map[model.UserID]*model.Player),
		characters: make(map[int64]*model.Character),
	}
}

// Ensure Storage implements the interface
var _ storage.Storage = (*Storage)(nil)

// Player operations

func (s *Storage) CreatePlayer(ctx context.Context, player *model.Player) (*model.Player, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if existing, ok := s.players[player.ID]; ok {
		p := *existing
		return &p, nil
	}
	p := *player
	s.players[p.ID] = &p
	out := p
	return &out, nil
}

func (s *Storage) SavePlayer(ctx context.Context, player *model.Player) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	p := *player
	s.players[p.ID] = &p
	return nil
}

func (s *Storage) GetPlayer(ctx context.Context, id model.UserID) (*model.Player, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	player, ok := s.players[id]
	if !ok {
		return nil, model.ErrPlayerNotFound
	}
	p := *player
	return &p, nil
}

func (s *Storage) ApplyPlayerDelta(ctx context.Context, id model.UserID, delta model.PlayerDelta) (*model.Player, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	player, ok := s.players[id]
	if !ok {
		return nil, model.ErrPlayerNotFound
	}

	player.Coins += delta.Coins
	player.XP += delta.XP
	player.Streak += delta.Streak
	player.CorrectGuesses += delta.CorrectGuesses
	if delta.LastBonus != nil {
		t := *delta.LastBonus
		player.LastBonus = &t
	}
	if delta.DisplayName != nil {
		player.DisplayName = *delta.DisplayName
	}

	p := *player
	return &p, nil
}

func (s *Storage) TopPlayersByCoins(ctx context.Context, n int) ([]*model.Player, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	players := make([]*model.Player, 0, len(s.players))
	for _, p := range s.players {
		cp := *p
		players = append(players, &cp)
	}

	sort.Slice(players, func(i, j int) bool {
		if players[i].Coins != players[j].Coins {
			return players[i].Coins > players[j].Coins
		}
		return players[i].ID < players[j].ID
	})

	if n >= 0 && len(players) > n {
		players = players[:n]
	}
	return players, nil
}

func (s *Storage) CountPlayers(ctx context.Context) (int64, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return int64(len(s.players)), nil
}

// Character operations

func (s *Storage) GetCharacter(ctx context.Context, id int64) (*model.Character, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	character, ok := s.characters[id]
	if !ok {
		return nil, model.ErrCharacterNotFound
	}
	c := *character
	return &c, nil
}

func (s *Storage) ListCharacters(ctx context.Context) ([]*model.Character, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	characters := make([]*model.Character, 0, len(s.characters))
	for _, c := range s.characters {
		cp := *c
		characters = append(characters, &cp)
	}
	sort.Slice(characters, func(i, j int) bool {
		return characters[i].ID < characters[j].ID
	})
	return characters, nil
}

func (s *Storage) RandomCharacter(ctx context.Context) (*model.Character, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if len(s.characters) == 0 {
		return nil, model.ErrEmptyPool
	}

	ids := make([]int64, 0, len(s.characters))
	for id := range s.characters {
		ids = append(ids, id)
	}
	c := *s.characters[ids[rand.Intn(len(ids))]]
	return &c, nil
}

func (s *Storage) InsertCharacter(ctx context.Context, character *model.Character) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if character.ID == 0 {
		s.nextCharID++
		character.ID = s.nextCharID
	} else if character.ID > s.nextCharID {
		s.nextCharID = character.ID
	}

	c := *character
	s.characters[c.ID] = &c
	return nil
}

func (s *Storage) DeleteCharacter(ctx context.Context, id int64) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.characters[id]; !ok {
		return false, nil
	}
	delete(s.characters, id)
	return true, nil
}

func (s *Storage) ReplaceCharacters(ctx context.Context, characters []*model.Character) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.characters = make(map[int64]*model.Character, len(characters))
	s.nextCharID = 0
	for _, c := range characters {
		cp := *c
		s.characters[cp.ID] = &cp
		if cp.ID > s.nextCharID {
			s.nextCharID = cp.ID
		}
	}
	return nil
}

func (s *Storage) CountCharacters(ctx context.Context) (int64, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return int64(len(s.characters)), nil
}
