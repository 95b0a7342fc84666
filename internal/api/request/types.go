package request

// EventRequest is an inbound chat event delivered by a transport webhook
type EventRequest struct {
	ConversationID string `json:"conversation_id"`
	UserID         string `json:"user_id"`
	DisplayName    string `json:"display_name"`
	Text           string `json:"text"`
	IsGroup        bool   `json:"is_group"`
}

// CreateCharacterRequest adds a character to the pool. Rarity is sampled from
// the configured distribution when omitted.
type CreateCharacterRequest struct {
	Name     string `json:"name"`
	Rarity   string `json:"rarity,omitempty"`
	ImageRef string `json:"image_ref"`
}
