package response

import (
	"time"

	"github.com/rtowner/charguess/internal/chat"
	"github.com/rtowner/charguess/internal/model"
	"github.com/rtowner/charguess/internal/services/ledger"
)

// Player represents a player in API responses
type Player struct {
	ID             string     `json:"id"`
	DisplayName    string     `json:"display_name"`
	Coins          int64      `json:"coins"`
	XP             int64      `json:"xp"`
	Level          int        `json:"level"`
	XPToNext       int64      `json:"xp_to_next"`
	Streak         int64      `json:"streak"`
	CorrectGuesses int64      `json:"correct_guesses"`
	LastBonus      *time.Time `json:"last_bonus,omitempty"`
	CreatedAt      time.Time  `json:"created_at"`
}

// PlayerFromProfile converts a ledger.Profile to a response Player
func PlayerFromProfile(p *ledger.Profile) Player {
	return Player{
		ID:             string(p.Player.ID),
		DisplayName:    p.Player.DisplayName,
		Coins:          p.Player.Coins,
		XP:             p.Player.XP,
		Level:          p.Level,
		XPToNext:       p.XPToNext,
		Streak:         p.Player.Streak,
		CorrectGuesses: p.Player.CorrectGuesses,
		LastBonus:      p.Player.LastBonus,
		CreatedAt:      p.Player.CreatedAt,
	}
}

// LeaderboardEntry is one ranked row on the leaderboard
type LeaderboardEntry struct {
	Rank        int    `json:"rank"`
	ID          string `json:"id"`
	DisplayName string `json:"display_name"`
	Coins       int64  `json:"coins"`
}

// LeaderboardFromModel converts a ranked player slice
func LeaderboardFromModel(players []*model.Player) []LeaderboardEntry {
	entries := make([]LeaderboardEntry, len(players))
	for i, p := range players {
		entries[i] = LeaderboardEntry{
			Rank:        i + 1,
			ID:          string(p.ID),
			DisplayName: p.DisplayName,
			Coins:       p.Coins,
		}
	}
	return entries
}

// Character represents a pool character in API responses
type Character struct {
	ID       int64  `json:"id"`
	Name     string `json:"name"`
	Rarity   string `json:"rarity"`
	ImageRef string `json:"image_ref"`
}

// CharacterFromModel converts a model.Character
func CharacterFromModel(c *model.Character) Character {
	return Character{
		ID:       c.ID,
		Name:     c.Name,
		Rarity:   c.Rarity,
		ImageRef: c.ImageRef,
	}
}

// CharactersFromModel converts a character slice
func CharactersFromModel(chars []*model.Character) []Character {
	out := make([]Character, len(chars))
	for i, c := range chars {
		out[i] = CharacterFromModel(c)
	}
	return out
}

// EventResponse carries the outbound intents produced by one inbound event.
// The transport adapter delivers them in order.
type EventResponse struct {
	Intents []chat.Intent `json:"intents"`
}

// Stats is the global counters response
type Stats struct {
	Players    int64 `json:"players"`
	Characters int64 `json:"characters"`
}
