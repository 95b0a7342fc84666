package handler

import (
	"net/http"

	"github.com/gorilla/mux"

	"github.com/rtowner/charguess/internal/api/response"
	"github.com/rtowner/charguess/internal/model"
	"github.com/rtowner/charguess/internal/services/leaderboard"
	"github.com/rtowner/charguess/internal/services/ledger"
)

// PlayerHandler handles player and leaderboard endpoints
type PlayerHandler struct {
	ledger      *ledger.Service
	leaderboard *leaderboard.Service
	topN        int
}

// NewPlayerHandler creates a new player handler
func NewPlayerHandler(led *ledger.Service, board *leaderboard.Service, topN int) *PlayerHandler {
	return &PlayerHandler{
		ledger:      led,
		leaderboard: board,
		topN:        topN,
	}
}

// Get handles GET /api/v1/players/{id}
func (h *PlayerHandler) Get(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]

	profile, err := h.ledger.Profile(r.Context(), model.UserID(id))
	if err != nil {
		WriteError(w, err)
		return
	}

	response.JSON(w, http.StatusOK, response.PlayerFromProfile(profile))
}

// Leaderboard handles GET /api/v1/leaderboard
func (h *PlayerHandler) Leaderboard(w http.ResponseWriter, r *http.Request) {
	top, err := h.leaderboard.TopN(r.Context(), h.topN)
	if err != nil {
		WriteError(w, err)
		return
	}

	response.JSON(w, http.StatusOK, response.LeaderboardFromModel(top))
}

// Stats handles GET /api/v1/stats
func (h *PlayerHandler) Stats(w http.ResponseWriter, r *http.Request) {
	players, characters, err := h.leaderboard.Stats(r.Context())
	if err != nil {
		WriteError(w, err)
		return
	}

	response.JSON(w, http.StatusOK, response.Stats{Players: players, Characters: characters})
}
