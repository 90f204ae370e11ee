package factory

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/suite"

	"github.com/mcoot/tycoon-backend/internal/model"
)

type IntegrationSuite struct {
	suite.Suite
	app *TestApp
	ctx context.Context
}

func TestIntegrationSuite(t *testing.T) {
	suite.Run(t, new(IntegrationSuite))
}

func (s *IntegrationSuite) SetupTest() {
	s.app = NewTestApp()
	s.ctx = context.Background()
}

func (s *IntegrationSuite) scrape() string {
	rec := httptest.NewRecorder()
	s.app.Metrics.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	return rec.Body.String()
}

// Test: A player's full lifecycle from anonymous creation to logging in on a new device
func (s *IntegrationSuite) TestPlayerLifecycle() {
	// Step 1: Create an anonymous player
	s.app.QueuePassphrase(1, 2, 13)
	created, err := s.app.AuthService.CreatePlayer(s.ctx, "Alice")
	s.Require().NoError(err)
	s.Equal("CALM-DEER-13", created.Player.Passphrase)

	playerID, err := s.app.SessionService.Verify(created.Token)
	s.Require().NoError(err)
	s.Equal(created.Player.ID, playerID)

	// Step 2: Report progress twice, the second report lower in places
	err = s.app.Ledger.Submit(s.ctx, playerID, model.ScoreComponents{TotalMoneyEarned: 1000, Reputation: 10, SkillLevelsSum: 4})
	s.Require().NoError(err)
	err = s.app.Ledger.Submit(s.ctx, playerID, model.ScoreComponents{TotalMoneyEarned: 500, Reputation: 20, ConsultantsCount: 2})
	s.Require().NoError(err)

	scores, err := s.app.Ledger.Get(s.ctx, playerID)
	s.Require().NoError(err)
	s.Equal(1000.0, scores.TotalMoneyEarned)
	s.Equal(20.0, scores.Reputation)
	s.Equal(int32(4), scores.SkillLevelsSum)
	s.Equal(int32(2), scores.ConsultantsCount)

	// Step 3: Upload a save
	_, err = s.app.Vault.Upload(s.ctx, playerID, json.RawMessage(`{"day":3}`), 1)
	s.Require().NoError(err)

	// Step 4: Recover on another device with the passphrase
	recovered, err := s.app.AuthService.RecoverPlayer(s.ctx, "CALM-DEER-13")
	s.Require().NoError(err)
	s.Equal(playerID, recovered.Player.ID)

	save, err := s.app.Vault.Download(s.ctx, recovered.Player.ID)
	s.Require().NoError(err)
	s.JSONEq(`{"day":3}`, string(save.Data))

	// Step 5: Upgrade to credentials and log in
	s.Require().NoError(s.app.AuthService.Register(s.ctx, playerID, "alice", "hunter2hunter2"))

	loggedIn, err := s.app.AuthService.Login(s.ctx, "alice", "hunter2hunter2")
	s.Require().NoError(err)
	s.Equal(playerID, loggedIn.Player.ID)

	// Step 6: The player is ranked first
	rank, err := s.app.LeaderboardService.RankOf(s.ctx, playerID)
	s.Require().NoError(err)
	s.Equal(int64(1), rank.Rank)
	s.Equal(1000.0+20*500+4*100+2*250, rank.Score)

	out := s.scrape()
	s.Contains(out, "tycoon_players_created_total 1")
	s.Contains(out, "tycoon_score_submissions_total 2")
	s.Contains(out, "tycoon_save_uploads_total 1")
}

// Test: Hiding a player removes them from the leaderboard without touching their scores
func (s *IntegrationSuite) TestHiddenPlayerLeavesLeaderboard() {
	s.app.QueuePassphrase(0, 0, 10)
	alice, err := s.app.AuthService.CreatePlayer(s.ctx, "Alice")
	s.Require().NoError(err)
	s.app.QueuePassphrase(0, 1, 10)
	bob, err := s.app.AuthService.CreatePlayer(s.ctx, "Bob")
	s.Require().NoError(err)

	s.Require().NoError(s.app.Ledger.Submit(s.ctx, alice.Player.ID, model.ScoreComponents{TotalMoneyEarned: 300}))
	s.Require().NoError(s.app.Ledger.Submit(s.ctx, bob.Player.ID, model.ScoreComponents{TotalMoneyEarned: 100}))

	hidden := false
	s.Require().NoError(s.app.AuthService.UpdateProfile(s.ctx, alice.Player.ID, model.ProfileUpdate{Visible: &hidden}))

	entries, err := s.app.LeaderboardService.Top(s.ctx, 50)
	s.Require().NoError(err)
	s.Require().Len(entries, 1)
	s.Equal("Bob", entries[0].DisplayName)
	s.Equal(int64(1), entries[0].Rank)

	_, err = s.app.LeaderboardService.RankOf(s.ctx, alice.Player.ID)
	s.ErrorIs(err, model.ErrRankNotFound)

	scores, err := s.app.Ledger.Get(s.ctx, alice.Player.ID)
	s.Require().NoError(err)
	s.Equal(300.0, scores.TotalMoneyEarned)
}

// Test: Tokens issued by the app expire after the configured TTL
func (s *IntegrationSuite) TestSessionExpiresWithClock() {
	s.app.QueuePassphrase(0, 0, 10)
	created, err := s.app.AuthService.CreatePlayer(s.ctx, "Alice")
	s.Require().NoError(err)

	s.app.MockClock.Set(created.ExpiresAt.Add(1))

	_, err = s.app.SessionService.Verify(created.Token)
	s.Error(err)
}
