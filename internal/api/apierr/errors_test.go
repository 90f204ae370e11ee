package apierr

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mcoot/tycoon-backend/internal/model"
	"github.com/mcoot/tycoon-backend/internal/services/auth"
	"github.com/mcoot/tycoon-backend/internal/services/session"
)

func TestStatusMapping(t *testing.T) {
	tests := []struct {
		err    error
		status int
	}{
		{session.ErrInvalidToken, http.StatusUnauthorized},
		{session.ErrTokenExpired, http.StatusUnauthorized},
		{auth.ErrInvalidCredentials, http.StatusUnauthorized},
		{model.ErrPlayerNotFound, http.StatusNotFound},
		{model.ErrSaveNotFound, http.StatusNotFound},
		{model.ErrRankNotFound, http.StatusNotFound},
		{model.ErrUsernameTaken, http.StatusConflict},
		{model.ErrInvalidScores, http.StatusBadRequest},
		{model.ErrInvalidPayload, http.StatusBadRequest},
		{auth.ErrInvalidUsername, http.StatusBadRequest},
		{auth.ErrInvalidPassword, http.StatusBadRequest},
		{auth.ErrInvalidDisplayName, http.StatusBadRequest},
		{fmt.Errorf("%w: get player: %w", model.ErrStorage, errors.New("dial tcp: refused")), http.StatusInternalServerError},
		{auth.ErrPassphraseExhausted, http.StatusInternalServerError},
		{&http.MaxBytesError{Limit: 1 << 20}, http.StatusRequestEntityTooLarge},
		{NewInvalidRequestError("bad"), http.StatusBadRequest},
	}
	for _, tt := range tests {
		t.Run(tt.err.Error(), func(t *testing.T) {
			assert.Equal(t, tt.status, Status(tt.err))
		})
	}
}

func TestStorageErrorsAreOpaque(t *testing.T) {
	rec := httptest.NewRecorder()
	WriteError(rec, fmt.Errorf("%w: get player: %w", model.ErrStorage, errors.New("password=hunter2 dial failed")))

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))
	assert.NotContains(t, rec.Body.String(), "hunter2")

	var resp ErrorResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, CodeInternalError, resp.Error.Code)
}

func TestPayloadTooLargeMessage(t *testing.T) {
	rec := httptest.NewRecorder()
	WriteError(rec, &http.MaxBytesError{Limit: 2 << 20})

	var resp ErrorResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, CodePayloadTooLarge, resp.Error.Code)
	assert.Equal(t, "Request body exceeds 2 MiB", resp.Error.Message)
}
