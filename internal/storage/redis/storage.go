package redis

import (
	"context"
	"encoding/json"
	"errors"
	"sort"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/rtowner/charguess/internal/model"
	"github.com/rtowner/charguess/internal/storage"
)

// Player hash field names
const (
	fieldDisplayName    = "display_name"
	fieldCoins          = "coins"
	fieldXP             = "xp"
	fieldStreak         = "streak"
	fieldCorrectGuesses = "correct_guesses"
	fieldLastBonus      = "last_bonus"
	fieldCreatedAt      = "created_at"
)

// Storage is a Redis-backed implementation of the storage interface.
//
// Players are stored as hashes so economy credits can be applied with
// HINCRBY inside a single MULTI/EXEC transaction; coin balances are mirrored
// into a ZSET index that serves the leaderboard query.
type Storage struct {
	client *redis.Client
	cfg    Config
}

// New creates a new Redis storage instance
func New(cfg Config) (*Storage, error) {
	opts, err := redis.ParseURL(cfg.URL)
	if err != nil {
		return nil, err
	}

	opts.PoolSize = cfg.PoolSize
	opts.MinIdleConns = cfg.MinIdleConns

	client := redis.NewClient(opts)

	// Verify connection
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		return nil, err
	}

	return &Storage{
		client: client,
		cfg:    cfg,
	}, nil
}

// NewWithClient creates a Redis storage with an existing client (for testing)
func NewWithClient(client *redis.Client, cfg Config) *Storage {
	return &Storage{
		client: client,
		cfg:    cfg,
	}
}

// Close closes the Redis connection
func (s *Storage) Close() error {
	return s.client.Close()
}

// Ensure Storage implements the interface
var _ storage.Storage = (*Storage)(nil)

// Player operations

func (s *Storage) CreatePlayer(ctx context.Context, player *model.Player) (*model.Player, error) {
	key := playerKey(player.ID)

	// HSETNX on created_at claims the record; a lost claim means the user
	// already has one (possibly written moments ago by a concurrent credit)
	// and that record wins.
	claimed, err := s.client.HSetNX(ctx, key, fieldCreatedAt, player.CreatedAt.Format(time.RFC3339Nano)).Result()
	if err != nil {
		return nil, err
	}
	if !claimed {
		return s.GetPlayer(ctx, player.ID)
	}

	// Counter fields are left unset: HINCRBY treats a missing field as 0,
	// so writing zeros here could only clobber a concurrent credit.
	pipe := s.client.TxPipeline()
	if player.DisplayName != "" {
		pipe.HSet(ctx, key, fieldDisplayName, player.DisplayName)
	}
	pipe.ZAddNX(ctx, coinsIndexKey(), redis.Z{Score: float64(player.Coins), Member: string(player.ID)})
	if _, err := pipe.Exec(ctx); err != nil {
		return nil, err
	}

	p := *player
	return &p, nil
}

func (s *Storage) SavePlayer(ctx context.Context, player *model.Player) error {
	fields := map[string]interface{}{
		fieldDisplayName:    player.DisplayName,
		fieldCoins:          player.Coins,
		fieldXP:             player.XP,
		fieldStreak:         player.Streak,
		fieldCorrectGuesses: player.CorrectGuesses,
		fieldLastBonus:      formatTime(player.LastBonus),
		fieldCreatedAt:      player.CreatedAt.Format(time.RFC3339Nano),
	}

	// Keep the coins index in sync in the same transaction
	pipe := s.client.TxPipeline()
	pipe.HSet(ctx, playerKey(player.ID), fields)
	pipe.ZAdd(ctx, coinsIndexKey(), redis.Z{Score: float64(player.Coins), Member: string(player.ID)})
	_, err := pipe.Exec(ctx)
	return err
}

func (s *Storage) GetPlayer(ctx context.Context, id model.UserID) (*model.Player, error) {
	data, err := s.client.HGetAll(ctx, playerKey(id)).Result()
	if err != nil {
		return nil, err
	}
	if len(data) == 0 {
		return nil, model.ErrPlayerNotFound
	}
	return parsePlayer(id, data)
}

func (s *Storage) ApplyPlayerDelta(ctx context.Context, id model.UserID, delta model.PlayerDelta) (*model.Player, error) {
	key := playerKey(id)

	// Player records are never deleted, so an existence check before the
	// transaction cannot race with a concurrent removal.
	exists, err := s.client.Exists(ctx, key).Result()
	if err != nil {
		return nil, err
	}
	if exists == 0 {
		return nil, model.ErrPlayerNotFound
	}

	pipe := s.client.TxPipeline()
	pipe.HIncrBy(ctx, key, fieldCoins, delta.Coins)
	pipe.HIncrBy(ctx, key, fieldXP, delta.XP)
	pipe.HIncrBy(ctx, key, fieldStreak, delta.Streak)
	pipe.HIncrBy(ctx, key, fieldCorrectGuesses, delta.CorrectGuesses)
	if delta.LastBonus != nil {
		pipe.HSet(ctx, key, fieldLastBonus, delta.LastBonus.Format(time.RFC3339Nano))
	}
	if delta.DisplayName != nil {
		pipe.HSet(ctx, key, fieldDisplayName, *delta.DisplayName)
	}
	if delta.Coins != 0 {
		pipe.ZIncrBy(ctx, coinsIndexKey(), float64(delta.Coins), string(id))
	}
	getCmd := pipe.HGetAll(ctx, key)

	if _, err := pipe.Exec(ctx); err != nil {
		return nil, err
	}

	return parsePlayer(id, getCmd.Val())
}

func (s *Storage) TopPlayersByCoins(ctx context.Context, n int) ([]*model.Player, error) {
	if n <= 0 {
		return []*model.Player{}, nil
	}

	ids, err := s.client.ZRevRange(ctx, coinsIndexKey(), 0, int64(n-1)).Result()
	if err != nil {
		return nil, err
	}
	if len(ids) == 0 {
		return []*model.Player{}, nil
	}

	pipe := s.client.Pipeline()
	cmds := make([]*redis.MapStringStringCmd, len(ids))
	for i, id := range ids {
		cmds[i] = pipe.HGetAll(ctx, playerKey(model.UserID(id)))
	}
	if _, err := pipe.Exec(ctx); err != nil {
		return nil, err
	}

	players := make([]*model.Player, 0, len(ids))
	for i, cmd := range cmds {
		data := cmd.Val()
		if len(data) == 0 {
			continue // Index entry without a record
		}
		player, err := parsePlayer(model.UserID(ids[i]), data)
		if err != nil {
			continue
		}
		players = append(players, player)
	}
	return players, nil
}

func (s *Storage) CountPlayers(ctx context.Context) (int64, error) {
	return s.client.ZCard(ctx, coinsIndexKey()).Result()
}

// Character operations

func (s *Storage) GetCharacter(ctx context.Context, id int64) (*model.Character, error) {
	data, err := s.client.HGet(ctx, charactersKey(), strconv.FormatInt(id, 10)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, model.ErrCharacterNotFound
		}
		return nil, err
	}

	var character model.Character
	if err := json.Unmarshal(data, &character); err != nil {
		return nil, err
	}
	return &character, nil
}

func (s *Storage) ListCharacters(ctx context.Context) ([]*model.Character, error) {
	data, err := s.client.HGetAll(ctx, charactersKey()).Result()
	if err != nil {
		return nil, err
	}

	characters := make([]*model.Character, 0, len(data))
	for _, val := range data {
		var character model.Character
		if err := json.Unmarshal([]byte(val), &character); err != nil {
			continue // Skip invalid data
		}
		characters = append(characters, &character)
	}
	sort.Slice(characters, func(i, j int) bool {
		return characters[i].ID < characters[j].ID
	})
	return characters, nil
}

func (s *Storage) RandomCharacter(ctx context.Context) (*model.Character, error) {
	vals, err := s.client.HRandFieldWithValues(ctx, charactersKey(), 1).Result()
	if err != nil {
		return nil, err
	}
	if len(vals) == 0 {
		return nil, model.ErrEmptyPool
	}

	var character model.Character
	if err := json.Unmarshal([]byte(vals[0].Value), &character); err != nil {
		return nil, err
	}
	return &character, nil
}

func (s *Storage) InsertCharacter(ctx context.Context, character *model.Character) error {
	if character.ID == 0 {
		id, err := s.client.Incr(ctx, characterIDKey()).Result()
		if err != nil {
			return err
		}
		character.ID = id
	}

	data, err := json.Marshal(character)
	if err != nil {
		return err
	}
	return s.client.HSet(ctx, charactersKey(), strconv.FormatInt(character.ID, 10), data).Err()
}

func (s *Storage) DeleteCharacter(ctx context.Context, id int64) (bool, error) {
	removed, err := s.client.HDel(ctx, charactersKey(), strconv.FormatInt(id, 10)).Result()
	if err != nil {
		return false, err
	}
	return removed > 0, nil
}

func (s *Storage) ReplaceCharacters(ctx context.Context, characters []*model.Character) error {
	fields := make(map[string]interface{}, len(characters))
	var maxID int64
	for _, c := range characters {
		data, err := json.Marshal(c)
		if err != nil {
			return err
		}
		fields[strconv.FormatInt(c.ID, 10)] = data
		if c.ID > maxID {
			maxID = c.ID
		}
	}

	// Swap the whole pool and reset the ID counter atomically
	pipe := s.client.TxPipeline()
	pipe.Del(ctx, charactersKey())
	if len(fields) > 0 {
		pipe.HSet(ctx, charactersKey(), fields)
	}
	pipe.Set(ctx, characterIDKey(), maxID, 0)
	_, err := pipe.Exec(ctx)
	return err
}

func (s *Storage) CountCharacters(ctx context.Context) (int64, error) {
	return s.client.HLen(ctx, charactersKey()).Result()
}

// Helpers

func formatTime(t *time.Time) string {
	if t == nil {
		return ""
	}
	return t.Format(time.RFC3339Nano)
}

func parsePlayer(id model.UserID, data map[string]string) (*model.Player, error) {
	player := &model.Player{
		ID:          id,
		DisplayName: data[fieldDisplayName],
	}

	var err error
	if player.Coins, err = parseInt(data[fieldCoins]); err != nil {
		return nil, err
	}
	if player.XP, err = parseInt(data[fieldXP]); err != nil {
		return nil, err
	}
	if player.Streak, err = parseInt(data[fieldStreak]); err != nil {
		return nil, err
	}
	if player.CorrectGuesses, err = parseInt(data[fieldCorrectGuesses]); err != nil {
		return nil, err
	}

	if raw := data[fieldLastBonus]; raw != "" {
		t, err := time.Parse(time.RFC3339Nano, raw)
		if err != nil {
			return nil, err
		}
		player.LastBonus = &t
	}
	if raw := data[fieldCreatedAt]; raw != "" {
		t, err := time.Parse(time.RFC3339Nano, raw)
		if err != nil {
			return nil, err
		}
		player.CreatedAt = t
	}
	return player, nil
}

func parseInt(raw string) (int64, error) {
	if raw == "" {
		return 0, nil
	}
	return strconv.ParseInt(raw, 10, 64)
}
