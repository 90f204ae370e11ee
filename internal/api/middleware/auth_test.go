package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/mcoot/tycoon-backend/internal/model"
	"github.com/mcoot/tycoon-backend/internal/services/session"
	"github.com/mcoot/tycoon-backend/internal/testutil"
)

type stubVerifier map[string]model.PlayerID

func (v stubVerifier) Verify(token string) (model.PlayerID, error) {
	if id, ok := v[token]; ok {
		return id, nil
	}
	return "", session.ErrInvalidToken
}

func (v stubVerifier) VerifyOptional(token string) (model.PlayerID, bool) {
	id, ok := v[token]
	return id, ok
}

// optionalOnlyVerifier rejects every token through Verify
type optionalOnlyVerifier struct {
	stubVerifier
}

func (optionalOnlyVerifier) Verify(string) (model.PlayerID, error) {
	return "", session.ErrInvalidToken
}

func echoPlayer(w http.ResponseWriter, r *http.Request) {
	id, ok := GetPlayerID(r.Context())
	if !ok {
		_, _ = w.Write([]byte("anonymous"))
		return
	}
	_, _ = w.Write([]byte(id))
}

func serve(h http.Handler, authHeader string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	if authHeader != "" {
		req.Header.Set("Authorization", authHeader)
	}
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func TestAuth(t *testing.T) {
	h := Auth(stubVerifier{"good": "p1"})(http.HandlerFunc(echoPlayer))

	tests := []struct {
		name   string
		header string
		status int
		body   string
	}{
		{"valid bearer", "Bearer good", http.StatusOK, "p1"},
		{"lowercase scheme", "bearer good", http.StatusOK, "p1"},
		{"missing header", "", http.StatusUnauthorized, ""},
		{"wrong scheme", "Basic good", http.StatusUnauthorized, ""},
		{"bad token", "Bearer bad", http.StatusUnauthorized, ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := serve(h, tt.header)
			assert.Equal(t, tt.status, rec.Code)
			if tt.body != "" {
				assert.Equal(t, tt.body, rec.Body.String())
			}
		})
	}
}

func TestOptionalAuth(t *testing.T) {
	h := OptionalAuth(stubVerifier{"good": "p1"})(http.HandlerFunc(echoPlayer))

	assert.Equal(t, "p1", serve(h, "Bearer good").Body.String())
	assert.Equal(t, "anonymous", serve(h, "Bearer bad").Body.String())
	assert.Equal(t, "anonymous", serve(h, "").Body.String())
}

func TestOptionalAuthUsesOptionalVerification(t *testing.T) {
	h := OptionalAuth(optionalOnlyVerifier{stubVerifier{"good": "p1"}})(http.HandlerFunc(echoPlayer))

	assert.Equal(t, "p1", serve(h, "Bearer good").Body.String())
	assert.Equal(t, "anonymous", serve(h, "Basic good").Body.String())
}

func TestMustGetPlayerIDPanicsWithoutAuth(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	assert.Panics(t, func() { MustGetPlayerID(req.Context()) })
}

func TestRecoveryWritesOpaqueJSON(t *testing.T) {
	h := Recovery(testutil.NopLogger())(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {
		panic("secret detail")
	}))

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.JSONEq(t, `{"error":{"code":"INTERNAL_ERROR","message":"Internal server error"}}`, rec.Body.String())
}
