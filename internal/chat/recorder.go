package chat

import (
	"context"
	"sync"

	"github.com/rtowner/charguess/internal/model"
)

// IntentType distinguishes outbound intent kinds
type IntentType string

const (
	IntentText  IntentType = "text"
	IntentImage IntentType = "image"
)

// Intent is a recorded outbound message
type Intent struct {
	Type           IntentType           `json:"type"`
	ConversationID model.ConversationID `json:"conversation_id"`
	Text           string               `json:"text,omitempty"`
	ImageRef       string               `json:"image_ref,omitempty"`
	Caption        string               `json:"caption,omitempty"`
}

// Recorder is a Sender that collects outbound intents instead of delivering
// them. The webhook adapter returns the recorded intents to its caller, and
// tests assert on them.
type Recorder struct {
	mu      sync.Mutex
	intents []Intent
}

// NewRecorder creates a new Recorder
func NewRecorder() *Recorder {
	return &Recorder{}
}

// Ensure Recorder implements Sender
var _ Sender = (*Recorder)(nil)

// SendText records a text intent
func (r *Recorder) SendText(ctx context.Context, convID model.ConversationID, text string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.intents = append(r.intents, Intent{Type: IntentText, ConversationID: convID, Text: text})
	return nil
}

// SendImage records an image intent
func (r *Recorder) SendImage(ctx context.Context, convID model.ConversationID, imageRef, caption string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.intents = append(r.intents, Intent{Type: IntentImage, ConversationID: convID, ImageRef: imageRef, Caption: caption})
	return nil
}

// Intents returns the recorded intents in send order
func (r *Recorder) Intents() []Intent {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]Intent, len(r.intents))
	copy(out, r.intents)
	return out
}
