package model

import "time"

// Character is a collectible entity in the shared guessing pool.
//
// IDs are densely assigned: after any deletion the remaining characters are
// renumbered to 1..N ordered by prior ID, because numeric ID is the only
// supported deletion key.
type Character struct {
	ID        int64     `json:"id"`
	Name      string    `json:"name"`
	Rarity    string    `json:"rarity"`
	ImageRef  string    `json:"image_ref"`
	CreatedAt time.Time `json:"created_at"`
}
