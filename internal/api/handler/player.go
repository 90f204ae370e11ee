package handler

import (
	"net/http"

	"github.com/mcoot/tycoon-backend/internal/api/middleware"
	"github.com/mcoot/tycoon-backend/internal/api/request"
	"github.com/mcoot/tycoon-backend/internal/api/response"
	"github.com/mcoot/tycoon-backend/internal/services/auth"
)

// PlayerHandler handles player-related endpoints
type PlayerHandler struct {
	authService *auth.Service
}

// NewPlayerHandler creates a new player handler
func NewPlayerHandler(authService *auth.Service) *PlayerHandler {
	return &PlayerHandler{
		authService: authService,
	}
}

// Create handles POST /api/players
func (h *PlayerHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req request.CreatePlayerRequest
	if err := decodeJSON(w, r, DefaultBodyLimit, &req); err != nil {
		WriteError(w, err)
		return
	}

	session, err := h.authService.CreatePlayer(r.Context(), req.DisplayName)
	if err != nil {
		WriteError(w, err)
		return
	}

	response.JSON(w, http.StatusCreated, response.CreatePlayerResponseFromSession(session))
}

// Recover handles POST /api/players/recover
func (h *PlayerHandler) Recover(w http.ResponseWriter, r *http.Request) {
	var req request.RecoverRequest
	if err := decodeJSON(w, r, DefaultBodyLimit, &req); err != nil {
		WriteError(w, err)
		return
	}

	if req.Passphrase == "" {
		WriteError(w, NewInvalidRequestError("passphrase is required"))
		return
	}

	session, err := h.authService.RecoverPlayer(r.Context(), req.Passphrase)
	if err != nil {
		WriteError(w, err)
		return
	}

	response.JSON(w, http.StatusOK, response.AuthResponseFromSession(session))
}

// Register handles POST /api/players/register
func (h *PlayerHandler) Register(w http.ResponseWriter, r *http.Request) {
	playerID := middleware.MustGetPlayerID(r.Context())

	var req request.RegisterRequest
	if err := decodeJSON(w, r, DefaultBodyLimit, &req); err != nil {
		WriteError(w, err)
		return
	}

	if err := h.authService.Register(r.Context(), playerID, req.Username, req.Password); err != nil {
		WriteError(w, err)
		return
	}

	response.JSON(w, http.StatusOK, response.OK)
}

// Login handles POST /api/players/login
func (h *PlayerHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req request.LoginRequest
	if err := decodeJSON(w, r, DefaultBodyLimit, &req); err != nil {
		WriteError(w, err)
		return
	}

	session, err := h.authService.Login(r.Context(), req.Username, req.Password)
	if err != nil {
		WriteError(w, err)
		return
	}

	response.JSON(w, http.StatusOK, response.AuthResponseFromSession(session))
}

// GetMe handles GET /api/players/me
func (h *PlayerHandler) GetMe(w http.ResponseWriter, r *http.Request) {
	playerID := middleware.MustGetPlayerID(r.Context())

	player, err := h.authService.GetPlayer(r.Context(), playerID)
	if err != nil {
		WriteError(w, err)
		return
	}

	response.JSON(w, http.StatusOK, response.PlayerFromModel(player))
}

// UpdateMe handles PATCH /api/players/me
func (h *PlayerHandler) UpdateMe(w http.ResponseWriter, r *http.Request) {
	playerID := middleware.MustGetPlayerID(r.Context())

	var req request.UpdatePlayerRequest
	if err := decodeJSON(w, r, DefaultBodyLimit, &req); err != nil {
		WriteError(w, err)
		return
	}

	if err := h.authService.UpdateProfile(r.Context(), playerID, req.ToModel()); err != nil {
		WriteError(w, err)
		return
	}

	response.JSON(w, http.StatusOK, response.OK)
}
