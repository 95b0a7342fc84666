package catalog

import (
	"context"
	"log/slog"
	"sort"
	"strings"
	"sync"

	"github.com/rtowner/charguess/internal/dependencies/clock"
	"github.com/rtowner/charguess/internal/model"
	"github.com/rtowner/charguess/internal/services/economy"
	"github.com/rtowner/charguess/internal/storage"
)

// Config holds the rarity configuration for the character pool
type Config struct {
	RarityLevels  []string
	RarityWeights []int
}

// Service owns the collectible character pool: identity, rarity assignment,
// and the dense-ID invariant after deletion.
type Service struct {
	storage storage.Storage
	economy *economy.Service
	clock   clock.Clock
	cfg     Config
	logger  *slog.Logger

	// Serializes insert and delete+renumber against each other
	mu sync.Mutex
}

// New creates a new catalog Service
func New(store storage.Storage, eco *economy.Service, clk clock.Clock, cfg Config, logger *slog.Logger) *Service {
	return &Service{
		storage: store,
		economy: eco,
		clock:   clk,
		cfg:     cfg,
		logger:  logger,
	}
}

// Draw returns a random character from the pool, or model.ErrEmptyPool when
// there is nothing to draw. Callers render a "no characters" outcome rather
// than failing.
func (s *Service) Draw(ctx context.Context) (*model.Character, error) {
	return s.storage.RandomCharacter(ctx)
}

// Get returns a character by ID
func (s *Service) Get(ctx context.Context, id int64) (*model.Character, error) {
	return s.storage.GetCharacter(ctx, id)
}

// List returns the whole pool ordered by ID
func (s *Service) List(ctx context.Context) ([]*model.Character, error) {
	chars, err := s.storage.ListCharacters(ctx)
	if err != nil {
		return nil, err
	}
	sort.Slice(chars, func(i, j int) bool {
		return chars[i].ID < chars[j].ID
	})
	return chars, nil
}

// Count returns the size of the character pool
func (s *Service) Count(ctx context.Context) (int64, error) {
	return s.storage.CountCharacters(ctx)
}

// Insert adds a new character to the pool. When rarity is empty it is
// assigned by weighted sampling over the configured rarity levels. The
// character's ID is assigned as the next sequential integer.
func (s *Service) Insert(ctx context.Context, name, rarity, imageRef string) (*model.Character, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, model.ErrValidation
	}

	if rarity == "" {
		rarity = s.economy.SampleRarity(s.cfg.RarityLevels, s.cfg.RarityWeights)
	}

	character := &model.Character{
		Name:      name,
		Rarity:    rarity,
		ImageRef:  imageRef,
		CreatedAt: s.clock.Now(),
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.storage.InsertCharacter(ctx, character); err != nil {
		return nil, err
	}

	s.logger.Info("character added",
		slog.Int64("character_id", character.ID),
		slog.String("name", character.Name),
		slog.String("rarity", character.Rarity),
	)

	return character, nil
}

// DeleteByID removes a character and reports whether one was removed. On
// successful removal the remaining characters are renumbered to 1..N ordered
// by prior ID, so IDs stay dense (numeric ID is the only deletion key).
func (s *Service) DeleteByID(ctx context.Context, id int64) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	removed, err := s.storage.DeleteCharacter(ctx, id)
	if err != nil {
		return false, err
	}
	if !removed {
		return false, nil
	}

	remaining, err := s.storage.ListCharacters(ctx)
	if err != nil {
		return true, err
	}

	sort.Slice(remaining, func(i, j int) bool {
		return remaining[i].ID < remaining[j].ID
	})
	for i, c := range remaining {
		c.ID = int64(i + 1)
	}

	if err := s.storage.ReplaceCharacters(ctx, remaining); err != nil {
		return true, err
	}

	s.logger.Info("character deleted",
		slog.Int64("character_id", id),
		slog.Int("remaining", len(remaining)),
	)

	return true, nil
}
