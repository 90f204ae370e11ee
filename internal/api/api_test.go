package api_test

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mcoot/tycoon-backend/internal/api"
	"github.com/mcoot/tycoon-backend/internal/api/apierr"
	"github.com/mcoot/tycoon-backend/internal/api/response"
	"github.com/mcoot/tycoon-backend/internal/factory"
	"github.com/mcoot/tycoon-backend/internal/services/password"
	"github.com/mcoot/tycoon-backend/internal/services/session"
	"github.com/mcoot/tycoon-backend/internal/testutil"
)

// testServer creates a test server with all dependencies
type testServer struct {
	handler http.Handler
	app     *factory.App
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()

	// API tests are integration tests - use production factory with real random/clock
	app, err := factory.New(t.Context(), factory.Config{
		Logger:         testutil.NopLogger(),
		SessionConfig:  session.Config{Secret: "api-test-secret"},
		PasswordParams: password.Params{Memory: 64, Iterations: 1, Parallelism: 1, SaltLength: 16, KeyLength: 32},
		MetricsEnabled: true,
	})
	require.NoError(t, err)
	t.Cleanup(func() { _ = app.Close() })

	router := api.NewRouter(api.RouterConfig{
		Logger:             testutil.NopLogger(),
		Sessions:           app.SessionService,
		AuthService:        app.AuthService,
		Ledger:             app.Ledger,
		LeaderboardService: app.LeaderboardService,
		Vault:              app.Vault,
		Metrics:            app.Metrics,
		AllowedOrigins:     []string{"*"},
	})

	return &testServer{
		handler: router,
		app:     app,
	}
}

func (ts *testServer) request(method, path string, body any, token string) *httptest.ResponseRecorder {
	var reqBody *bytes.Buffer
	switch b := body.(type) {
	case nil:
		reqBody = bytes.NewBuffer(nil)
	case string:
		reqBody = bytes.NewBufferString(b)
	default:
		raw, _ := json.Marshal(b)
		reqBody = bytes.NewBuffer(raw)
	}

	req := httptest.NewRequest(method, path, reqBody)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	rr := httptest.NewRecorder()
	ts.handler.ServeHTTP(rr, req)
	return rr
}

func (ts *testServer) createPlayer(t *testing.T, name string) response.CreatePlayerResponse {
	t.Helper()

	rr := ts.request(http.MethodPost, "/api/players", map[string]string{"display_name": name}, "")
	require.Equal(t, http.StatusCreated, rr.Code, rr.Body.String())

	var resp response.CreatePlayerResponse
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &resp))
	return resp
}

func errorCode(t *testing.T, rr *httptest.ResponseRecorder) string {
	t.Helper()

	var resp apierr.ErrorResponse
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &resp), rr.Body.String())
	return resp.Error.Code
}

func TestHealthCheck(t *testing.T) {
	ts := newTestServer(t)

	rr := ts.request(http.MethodGet, "/api/health", nil, "")
	assert.Equal(t, http.StatusOK, rr.Code)
	assert.JSONEq(t, `{"status":"ok"}`, rr.Body.String())
}

func TestCreatePlayer(t *testing.T) {
	ts := newTestServer(t)

	resp := ts.createPlayer(t, "Alice")
	assert.NotEmpty(t, resp.ID)
	assert.Regexp(t, `^[A-Z]+-[A-Z]+-[1-9][0-9]$`, resp.Passphrase)
	assert.NotEmpty(t, resp.Token)

	rr := ts.request(http.MethodGet, "/api/players/me", nil, resp.Token)
	require.Equal(t, http.StatusOK, rr.Code)

	var me response.Player
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &me))
	assert.Equal(t, resp.ID, me.ID)
	assert.Equal(t, "Alice", me.DisplayName)
	assert.True(t, me.ShowOnLeaderboard)
	assert.Nil(t, me.Username)
	assert.NotContains(t, rr.Body.String(), resp.Passphrase)
}

func TestCreatePlayerValidation(t *testing.T) {
	ts := newTestServer(t)

	rr := ts.request(http.MethodPost, "/api/players", map[string]string{"display_name": "   "}, "")
	assert.Equal(t, http.StatusBadRequest, rr.Code)
	assert.Equal(t, apierr.CodeValidationFailed, errorCode(t, rr))

	rr = ts.request(http.MethodPost, "/api/players", "{not json", "")
	assert.Equal(t, http.StatusBadRequest, rr.Code)
	assert.Equal(t, apierr.CodeInvalidRequest, errorCode(t, rr))
}

func TestRecoverPlayer(t *testing.T) {
	ts := newTestServer(t)
	created := ts.createPlayer(t, "Alice")

	rr := ts.request(http.MethodPost, "/api/players/recover", map[string]string{"passphrase": created.Passphrase}, "")
	require.Equal(t, http.StatusOK, rr.Code)

	var resp response.AuthResponse
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &resp))
	assert.Equal(t, created.ID, resp.ID)
	assert.Equal(t, "Alice", resp.DisplayName)
	assert.NotEmpty(t, resp.Token)

	rr = ts.request(http.MethodPost, "/api/players/recover", map[string]string{"passphrase": "NOPE-NOPE-00"}, "")
	assert.Equal(t, http.StatusNotFound, rr.Code)
	assert.Equal(t, apierr.CodePlayerNotFound, errorCode(t, rr))
}

func TestRegisterAndLogin(t *testing.T) {
	ts := newTestServer(t)
	created := ts.createPlayer(t, "Alice")

	// Register
	body := map[string]string{"username": "alice", "password": "secret123"}
	rr := ts.request(http.MethodPost, "/api/players/register", body, created.Token)
	require.Equal(t, http.StatusOK, rr.Code, rr.Body.String())
	assert.JSONEq(t, `{"status":"ok"}`, rr.Body.String())

	// Login
	rr = ts.request(http.MethodPost, "/api/players/login", body, "")
	require.Equal(t, http.StatusOK, rr.Code)

	var resp response.AuthResponse
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &resp))
	assert.Equal(t, created.ID, resp.ID)
	assert.Equal(t, "Alice", resp.DisplayName)

	// Wrong password
	rr = ts.request(http.MethodPost, "/api/players/login", map[string]string{"username": "alice", "password": "wrong-password"}, "")
	assert.Equal(t, http.StatusUnauthorized, rr.Code)
	assert.Equal(t, apierr.CodeInvalidCredentials, errorCode(t, rr))

	// Unknown user gets the same answer
	rr = ts.request(http.MethodPost, "/api/players/login", map[string]string{"username": "nobody", "password": "secret123"}, "")
	assert.Equal(t, http.StatusUnauthorized, rr.Code)
	assert.Equal(t, apierr.CodeInvalidCredentials, errorCode(t, rr))
}

func TestRegisterRequiresAuth(t *testing.T) {
	ts := newTestServer(t)

	body := map[string]string{"username": "alice", "password": "secret123"}
	rr := ts.request(http.MethodPost, "/api/players/register", body, "")
	assert.Equal(t, http.StatusUnauthorized, rr.Code)
	assert.Equal(t, apierr.CodeUnauthorized, errorCode(t, rr))

	rr = ts.request(http.MethodPost, "/api/players/register", body, "not-a-token")
	assert.Equal(t, http.StatusUnauthorized, rr.Code)
}

func TestRegisterUsernameConflict(t *testing.T) {
	ts := newTestServer(t)
	alice := ts.createPlayer(t, "Alice")
	bob := ts.createPlayer(t, "Bob")

	body := map[string]string{"username": "alice", "password": "secret123"}
	rr := ts.request(http.MethodPost, "/api/players/register", body, alice.Token)
	require.Equal(t, http.StatusOK, rr.Code)

	rr = ts.request(http.MethodPost, "/api/players/register", body, bob.Token)
	assert.Equal(t, http.StatusConflict, rr.Code)
	assert.Equal(t, apierr.CodeUsernameTaken, errorCode(t, rr))
}

func TestRegisterConcurrentSameUsername(t *testing.T) {
	ts := newTestServer(t)

	const n = 8
	tokens := make([]string, n)
	for i := range tokens {
		tokens[i] = ts.createPlayer(t, "Racer").Token
	}

	codes := make([]int, n)
	var wg sync.WaitGroup
	for i := range tokens {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			body := map[string]string{"username": "racer", "password": "secret123"}
			codes[i] = ts.request(http.MethodPost, "/api/players/register", body, tokens[i]).Code
		}(i)
	}
	wg.Wait()

	var ok, conflict int
	for _, code := range codes {
		switch code {
		case http.StatusOK:
			ok++
		case http.StatusConflict:
			conflict++
		}
	}
	assert.Equal(t, 1, ok)
	assert.Equal(t, n-1, conflict)
}

func TestUpdateProfile(t *testing.T) {
	ts := newTestServer(t)
	created := ts.createPlayer(t, "Alice")

	rr := ts.request(http.MethodPatch, "/api/players/me", `{"display_name":"Alicia","show_on_leaderboard":false}`, created.Token)
	require.Equal(t, http.StatusOK, rr.Code, rr.Body.String())

	rr = ts.request(http.MethodGet, "/api/players/me", nil, created.Token)
	var me response.Player
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &me))
	assert.Equal(t, "Alicia", me.DisplayName)
	assert.False(t, me.ShowOnLeaderboard)

	// Omitted fields are left unchanged
	rr = ts.request(http.MethodPatch, "/api/players/me", `{"show_on_leaderboard":true}`, created.Token)
	require.Equal(t, http.StatusOK, rr.Code)

	rr = ts.request(http.MethodGet, "/api/players/me", nil, created.Token)
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &me))
	assert.Equal(t, "Alicia", me.DisplayName)
	assert.True(t, me.ShowOnLeaderboard)

	rr = ts.request(http.MethodPatch, "/api/players/me", `{"display_name":""}`, created.Token)
	assert.Equal(t, http.StatusBadRequest, rr.Code)
}

func TestSubmitScoresIsMonotone(t *testing.T) {
	ts := newTestServer(t)
	created := ts.createPlayer(t, "Alice")

	first := map[string]any{
		"total_money_earned":     5000.5,
		"reputation":             3,
		"skill_levels_sum":       10,
		"consultants_count":      1,
		"ai_tool_tiers_sum":      2,
		"manual_tasks_completed": 40,
	}
	rr := ts.request(http.MethodPut, "/api/scores", first, created.Token)
	require.Equal(t, http.StatusOK, rr.Code, rr.Body.String())

	second := map[string]any{
		"total_money_earned":     100,
		"reputation":             7,
		"skill_levels_sum":       2,
		"consultants_count":      4,
		"ai_tool_tiers_sum":      0,
		"manual_tasks_completed": 0,
	}
	rr = ts.request(http.MethodPut, "/api/scores", second, created.Token)
	require.Equal(t, http.StatusOK, rr.Code)

	rr = ts.request(http.MethodGet, "/api/scores/me", nil, created.Token)
	require.Equal(t, http.StatusOK, rr.Code)

	var scores response.Scores
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &scores))
	assert.Equal(t, 5000.5, scores.TotalMoneyEarned)
	assert.Equal(t, 7.0, scores.Reputation)
	assert.Equal(t, int32(10), scores.SkillLevelsSum)
	assert.Equal(t, int32(4), scores.ConsultantsCount)
	assert.Equal(t, int32(2), scores.AIToolTiersSum)
	assert.Equal(t, int32(40), scores.ManualTasksCompleted)
}

func TestSubmitScoresValidation(t *testing.T) {
	ts := newTestServer(t)
	created := ts.createPlayer(t, "Alice")

	rr := ts.request(http.MethodPut, "/api/scores", map[string]any{"reputation": -1}, created.Token)
	assert.Equal(t, http.StatusBadRequest, rr.Code)
	assert.Equal(t, apierr.CodeValidationFailed, errorCode(t, rr))

	rr = ts.request(http.MethodPut, "/api/scores", map[string]any{"reputation": 1}, "")
	assert.Equal(t, http.StatusUnauthorized, rr.Code)
}

func TestOutOfRangeScoresLeaveLeaderboardReadable(t *testing.T) {
	ts := newTestServer(t)
	alice := ts.createPlayer(t, "Alice")
	bob := ts.createPlayer(t, "Bob")

	rr := ts.request(http.MethodPut, "/api/scores", map[string]any{"total_money_earned": 10}, alice.Token)
	require.Equal(t, http.StatusOK, rr.Code)

	rr = ts.request(http.MethodPut, "/api/scores", `{"reputation":1e306}`, bob.Token)
	assert.Equal(t, http.StatusBadRequest, rr.Code)
	assert.Equal(t, apierr.CodeValidationFailed, errorCode(t, rr))

	rr = ts.request(http.MethodGet, "/api/leaderboard", nil, alice.Token)
	require.Equal(t, http.StatusOK, rr.Code)

	var board response.LeaderboardResponse
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &board), rr.Body.String())
	require.Len(t, board.Entries, 2)
	assert.Equal(t, "Alice", board.Entries[0].DisplayName)
	assert.Equal(t, 10.0, board.Entries[0].Score)
}

func TestLeaderboard(t *testing.T) {
	ts := newTestServer(t)

	a := ts.createPlayer(t, "A")
	b := ts.createPlayer(t, "B")
	c := ts.createPlayer(t, "C")
	hidden := ts.createPlayer(t, "Hidden")

	for token, money := range map[string]float64{a.Token: 300, b.Token: 300, c.Token: 100, hidden.Token: 1e9} {
		rr := ts.request(http.MethodPut, "/api/scores", map[string]any{"total_money_earned": money}, token)
		require.Equal(t, http.StatusOK, rr.Code)
	}
	rr := ts.request(http.MethodPatch, "/api/players/me", `{"show_on_leaderboard":false}`, hidden.Token)
	require.Equal(t, http.StatusOK, rr.Code)

	// Anonymous caller
	rr = ts.request(http.MethodGet, "/api/leaderboard", nil, "")
	require.Equal(t, http.StatusOK, rr.Code)

	var board response.LeaderboardResponse
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &board))
	require.Len(t, board.Entries, 3)
	assert.Equal(t, []int64{1, 2, 3}, []int64{board.Entries[0].Rank, board.Entries[1].Rank, board.Entries[2].Rank})
	assert.ElementsMatch(t, []string{"A", "B"}, []string{board.Entries[0].DisplayName, board.Entries[1].DisplayName})
	assert.Equal(t, "C", board.Entries[2].DisplayName)
	assert.Equal(t, 300.0, board.Entries[0].Score)
	assert.Nil(t, board.PlayerRank)
	assert.Nil(t, board.PlayerScore)
	assert.Contains(t, rr.Body.String(), `"player_rank":null`)

	// Ranked caller
	rr = ts.request(http.MethodGet, "/api/leaderboard", nil, c.Token)
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &board))
	require.NotNil(t, board.PlayerRank)
	assert.Equal(t, int64(3), *board.PlayerRank)
	assert.Equal(t, 100.0, *board.PlayerScore)

	// Hidden caller has no rank
	rr = ts.request(http.MethodGet, "/api/leaderboard", nil, hidden.Token)
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &board))
	assert.Nil(t, board.PlayerRank)

	// A bad token is treated as anonymous
	rr = ts.request(http.MethodGet, "/api/leaderboard", nil, "garbage")
	assert.Equal(t, http.StatusOK, rr.Code)
}

func TestSaves(t *testing.T) {
	ts := newTestServer(t)
	created := ts.createPlayer(t, "Alice")

	rr := ts.request(http.MethodGet, "/api/saves/me", nil, created.Token)
	assert.Equal(t, http.StatusNotFound, rr.Code)
	assert.Equal(t, apierr.CodeSaveNotFound, errorCode(t, rr))

	rr = ts.request(http.MethodPut, "/api/saves", `{"save_data":{"cash":1},"version":1}`, created.Token)
	require.Equal(t, http.StatusOK, rr.Code, rr.Body.String())

	rr = ts.request(http.MethodPut, "/api/saves", `{"save_data":{"cash":2,"staff":["bo"]},"version":2}`, created.Token)
	require.Equal(t, http.StatusOK, rr.Code)

	rr = ts.request(http.MethodGet, "/api/saves/me", nil, created.Token)
	require.Equal(t, http.StatusOK, rr.Code)

	var save response.CloudSave
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &save))
	assert.JSONEq(t, `{"cash":2,"staff":["bo"]}`, string(save.SaveData))
	assert.Equal(t, int32(2), save.Version)
	assert.False(t, save.UpdatedAt.IsZero())
}

func TestSaveValidation(t *testing.T) {
	ts := newTestServer(t)
	created := ts.createPlayer(t, "Alice")

	rr := ts.request(http.MethodPut, "/api/saves", `{"save_data":null,"version":1}`, created.Token)
	assert.Equal(t, http.StatusBadRequest, rr.Code)
	assert.Equal(t, apierr.CodeValidationFailed, errorCode(t, rr))

	rr = ts.request(http.MethodPut, "/api/saves", `{"version":1}`, created.Token)
	assert.Equal(t, http.StatusBadRequest, rr.Code)

	huge := `{"save_data":"` + strings.Repeat("x", 3<<20) + `","version":1}`
	rr = ts.request(http.MethodPut, "/api/saves", huge, created.Token)
	assert.Equal(t, http.StatusRequestEntityTooLarge, rr.Code)
	assert.Equal(t, apierr.CodePayloadTooLarge, errorCode(t, rr))
}

func TestMetricsEndpoint(t *testing.T) {
	ts := newTestServer(t)
	ts.createPlayer(t, "Alice")

	rr := ts.request(http.MethodGet, "/metrics", nil, "")
	require.Equal(t, http.StatusOK, rr.Code)
	assert.Contains(t, rr.Body.String(), "tycoon_players_created_total 1")
	assert.Contains(t, rr.Body.String(), `route="/api/players"`)
}

func TestUnknownRoute(t *testing.T) {
	ts := newTestServer(t)

	rr := ts.request(http.MethodGet, "/api/nope", nil, "")
	assert.Equal(t, http.StatusNotFound, rr.Code)
}

func TestCORS(t *testing.T) {
	ts := newTestServer(t)

	req := httptest.NewRequest(http.MethodOptions, "/api/scores", nil)
	req.Header.Set("Origin", "https://game.example")
	req.Header.Set("Access-Control-Request-Method", http.MethodPut)
	req.Header.Set("Access-Control-Request-Headers", "Authorization, Content-Type")
	rr := httptest.NewRecorder()
	ts.handler.ServeHTTP(rr, req)

	assert.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, "*", rr.Header().Get("Access-Control-Allow-Origin"))

	req = httptest.NewRequest(http.MethodGet, "/api/health", nil)
	req.Header.Set("Origin", "https://game.example")
	rr = httptest.NewRecorder()
	ts.handler.ServeHTTP(rr, req)

	assert.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, "*", rr.Header().Get("Access-Control-Allow-Origin"))
}
