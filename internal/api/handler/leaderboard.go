package handler

import (
	"net/http"

	"github.com/mcoot/tycoon-backend/internal/api/middleware"
	"github.com/mcoot/tycoon-backend/internal/api/response"
	"github.com/mcoot/tycoon-backend/internal/model"
	"github.com/mcoot/tycoon-backend/internal/services/leaderboard"
)

// LeaderboardHandler handles leaderboard endpoints
type LeaderboardHandler struct {
	leaderboard *leaderboard.Service
}

// NewLeaderboardHandler creates a new leaderboard handler
func NewLeaderboardHandler(leaderboard *leaderboard.Service) *LeaderboardHandler {
	return &LeaderboardHandler{
		leaderboard: leaderboard,
	}
}

// Get handles GET /api/leaderboard.
// Authenticated callers also get their own rank and score.
func (h *LeaderboardHandler) Get(w http.ResponseWriter, r *http.Request) {
	var viewer *model.PlayerID
	if playerID, ok := middleware.GetPlayerID(r.Context()); ok {
		viewer = &playerID
	}

	board, err := h.leaderboard.Board(r.Context(), leaderboard.DefaultSize, viewer)
	if err != nil {
		WriteError(w, err)
		return
	}

	response.JSON(w, http.StatusOK, response.LeaderboardFromBoard(board))
}
