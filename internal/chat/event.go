package chat

import (
	"context"

	"github.com/rtowner/charguess/internal/model"
)

// Event is a normalized inbound chat message, already parsed out of whatever
// transport delivered it.
type Event struct {
	ConversationID model.ConversationID `json:"conversation_id"`
	UserID         model.UserID         `json:"user_id"`
	DisplayName    string               `json:"display_name,omitempty"`
	Text           string               `json:"text"`
	IsGroup        bool                 `json:"is_group"`
}

// Sender delivers outbound intents back to the transport layer
type Sender interface {
	SendText(ctx context.Context, convID model.ConversationID, text string) error
	SendImage(ctx context.Context, convID model.ConversationID, imageRef, caption string) error
}
