package handler

import (
	"net/http"

	"github.com/mcoot/tycoon-backend/internal/api/middleware"
	"github.com/mcoot/tycoon-backend/internal/api/request"
	"github.com/mcoot/tycoon-backend/internal/api/response"
	"github.com/mcoot/tycoon-backend/internal/services/vault"
)

// saveBodyLimit leaves room for the envelope around a maximum-size payload
const saveBodyLimit = vault.MaxPayloadSize + DefaultBodyLimit

// SavesHandler handles cloud save endpoints
type SavesHandler struct {
	vault *vault.Service
}

// NewSavesHandler creates a new saves handler
func NewSavesHandler(vault *vault.Service) *SavesHandler {
	return &SavesHandler{
		vault: vault,
	}
}

// Upload handles PUT /api/saves
func (h *SavesHandler) Upload(w http.ResponseWriter, r *http.Request) {
	playerID := middleware.MustGetPlayerID(r.Context())

	var req request.UploadSaveRequest
	if err := decodeJSON(w, r, saveBodyLimit, &req); err != nil {
		WriteError(w, err)
		return
	}

	if _, err := h.vault.Upload(r.Context(), playerID, req.SaveData, req.Version); err != nil {
		WriteError(w, err)
		return
	}

	response.JSON(w, http.StatusOK, response.OK)
}

// Download handles GET /api/saves/me
func (h *SavesHandler) Download(w http.ResponseWriter, r *http.Request) {
	playerID := middleware.MustGetPlayerID(r.Context())

	save, err := h.vault.Download(r.Context(), playerID)
	if err != nil {
		WriteError(w, err)
		return
	}

	response.JSON(w, http.StatusOK, response.CloudSaveFromModel(save))
}
