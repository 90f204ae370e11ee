package handler

import (
	"net/http"

	"github.com/mcoot/tycoon-backend/internal/api/middleware"
	"github.com/mcoot/tycoon-backend/internal/api/request"
	"github.com/mcoot/tycoon-backend/internal/api/response"
	"github.com/mcoot/tycoon-backend/internal/services/ledger"
)

// ScoresHandler handles score submission endpoints
type ScoresHandler struct {
	ledger *ledger.Service
}

// NewScoresHandler creates a new scores handler
func NewScoresHandler(ledger *ledger.Service) *ScoresHandler {
	return &ScoresHandler{
		ledger: ledger,
	}
}

// Submit handles PUT /api/scores
func (h *ScoresHandler) Submit(w http.ResponseWriter, r *http.Request) {
	playerID := middleware.MustGetPlayerID(r.Context())

	var req request.SubmitScoresRequest
	if err := decodeJSON(w, r, DefaultBodyLimit, &req); err != nil {
		WriteError(w, err)
		return
	}

	if err := h.ledger.Submit(r.Context(), playerID, req.ToModel()); err != nil {
		WriteError(w, err)
		return
	}

	response.JSON(w, http.StatusOK, response.OK)
}

// GetMine handles GET /api/scores/me
func (h *ScoresHandler) GetMine(w http.ResponseWriter, r *http.Request) {
	playerID := middleware.MustGetPlayerID(r.Context())

	scores, err := h.ledger.Get(r.Context(), playerID)
	if err != nil {
		WriteError(w, err)
		return
	}

	response.JSON(w, http.StatusOK, response.ScoresFromModel(scores))
}
