package handler

import (
	"encoding/json"
	"net/http"

	"github.com/rtowner/charguess/internal/api/request"
	"github.com/rtowner/charguess/internal/api/response"
	"github.com/rtowner/charguess/internal/chat"
	"github.com/rtowner/charguess/internal/model"
)

// EventHandler handles inbound chat events
type EventHandler struct {
	dispatcher *chat.Dispatcher
}

// NewEventHandler creates a new event handler
func NewEventHandler(dispatcher *chat.Dispatcher) *EventHandler {
	return &EventHandler{
		dispatcher: dispatcher,
	}
}

// Post handles POST /api/v1/events
//
// The transport webhook posts one normalized chat event and receives the
// outbound intents to deliver. Delivery itself stays on the transport side.
func (h *EventHandler) Post(w http.ResponseWriter, r *http.Request) {
	var req request.EventRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		WriteError(w, NewInvalidRequestError("invalid request body"))
		return
	}

	if req.ConversationID == "" {
		WriteError(w, NewInvalidRequestError("conversation_id is required"))
		return
	}
	if req.UserID == "" {
		WriteError(w, NewInvalidRequestError("user_id is required"))
		return
	}

	recorder := chat.NewRecorder()
	err := h.dispatcher.Handle(r.Context(), chat.Event{
		ConversationID: model.ConversationID(req.ConversationID),
		UserID:         model.UserID(req.UserID),
		DisplayName:    req.DisplayName,
		Text:           req.Text,
		IsGroup:        req.IsGroup,
	}, recorder)
	if err != nil {
		WriteError(w, err)
		return
	}

	response.JSON(w, http.StatusOK, response.EventResponse{Intents: recorder.Intents()})
}
