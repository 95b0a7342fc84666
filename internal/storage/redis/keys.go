package redis

import (
	"fmt"

	"github.com/rtowner/charguess/internal/model"
)

// Key prefix for all game-related data
const keyPrefix = "charguess"

// playerKey returns the Redis key for a player hash
func playerKey(id model.UserID) string {
	return fmt.Sprintf("%s:player:%s", keyPrefix, id)
}

// coinsIndexKey returns the Redis key for the coins leaderboard ZSET
func coinsIndexKey() string {
	return fmt.Sprintf("%s:idx:coins", keyPrefix)
}

// charactersKey returns the Redis key for the character pool hash (id -> JSON)
func charactersKey() string {
	return fmt.Sprintf("%s:characters", keyPrefix)
}

// characterIDKey returns the Redis key for the character ID counter
func characterIDKey() string {
	return fmt.Sprintf("%s:characters:next_id", keyPrefix)
}
