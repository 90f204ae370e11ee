// Package storagetest holds the behaviour every storage backend must share.
// Backend packages run Suite against their own implementation.
package storagetest

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"

	"github.com/mcoot/tycoon-backend/internal/model"
	"github.com/mcoot/tycoon-backend/internal/storage"
)

// Suite is a testify suite exercising the storage.Storage contract.
// NewStorage must return an empty store; it is called before every test.
type Suite struct {
	suite.Suite
	NewStorage func(t *testing.T) storage.Storage

	store storage.Storage
	ctx   context.Context
	now   time.Time
	seq   int
}

func (s *Suite) SetupTest() {
	s.store = s.NewStorage(s.T())
	s.ctx = context.Background()
	s.now = time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)
	s.seq = 0
}

// newPlayer creates and persists a visible player with a unique id and passphrase
func (s *Suite) newPlayer(name string) *model.Player {
	s.seq++
	p := &model.Player{
		ID:          model.PlayerID(fmt.Sprintf("00000000-0000-4000-8000-%012d", s.seq)),
		DisplayName: name,
		Passphrase:  fmt.Sprintf("BRAVE-FOX-%d", 10+s.seq),
		Visible:     true,
		CreatedAt:   s.now.Add(time.Duration(s.seq) * time.Second),
		UpdatedAt:   s.now.Add(time.Duration(s.seq) * time.Second),
	}
	s.Require().NoError(s.store.CreatePlayer(s.ctx, p))
	return p
}

// Player tests

func (s *Suite) TestCreateAndGetPlayer() {
	p := s.newPlayer("Alice")

	got, err := s.store.GetPlayer(s.ctx, p.ID)
	s.Require().NoError(err)
	s.Equal(p.ID, got.ID)
	s.Equal("Alice", got.DisplayName)
	s.Equal(p.Passphrase, got.Passphrase)
	s.True(got.Visible)
	s.Empty(got.Username)
	s.Empty(got.PasswordHash)
	s.True(p.CreatedAt.Equal(got.CreatedAt))
}

func (s *Suite) TestGetPlayerNotFound() {
	_, err := s.store.GetPlayer(s.ctx, "00000000-0000-4000-8000-999999999999")
	s.ErrorIs(err, model.ErrPlayerNotFound)
}

func (s *Suite) TestCreatePlayerCreatesZeroScores() {
	p := s.newPlayer("Alice")

	scores, err := s.store.GetScores(s.ctx, p.ID)
	s.Require().NoError(err)
	s.Zero(scores.TotalMoneyEarned)
	s.Zero(scores.Reputation)
	s.Zero(scores.SkillLevelsSum)
	s.Zero(scores.ConsultantsCount)
	s.Zero(scores.AIToolTiersSum)
	s.Zero(scores.ManualTasksCompleted)
}

func (s *Suite) TestCreatePlayerDuplicatePassphraseWritesNothing() {
	p := s.newPlayer("Alice")

	dup := &model.Player{
		ID:          "00000000-0000-4000-8000-000000000777",
		DisplayName: "Mallory",
		Passphrase:  p.Passphrase,
		Visible:     true,
		CreatedAt:   s.now,
		UpdatedAt:   s.now,
	}
	err := s.store.CreatePlayer(s.ctx, dup)
	s.ErrorIs(err, model.ErrPassphraseTaken)

	_, err = s.store.GetPlayer(s.ctx, dup.ID)
	s.ErrorIs(err, model.ErrPlayerNotFound)
	_, err = s.store.GetScores(s.ctx, dup.ID)
	s.ErrorIs(err, model.ErrPlayerNotFound)

	// The original owner keeps the passphrase
	owner, err := s.store.GetPlayerByPassphrase(s.ctx, p.Passphrase)
	s.Require().NoError(err)
	s.Equal(p.ID, owner.ID)
}

func (s *Suite) TestGetPlayerByPassphrase() {
	p := s.newPlayer("Alice")
	s.newPlayer("Bob")

	got, err := s.store.GetPlayerByPassphrase(s.ctx, p.Passphrase)
	s.Require().NoError(err)
	s.Equal(p.ID, got.ID)

	_, err = s.store.GetPlayerByPassphrase(s.ctx, "NOPE-NOPE-00")
	s.ErrorIs(err, model.ErrPlayerNotFound)
}

func (s *Suite) TestUpdateProfileDisplayNameOnly() {
	p := s.newPlayer("Alice")
	name := "Alicia"

	err := s.store.UpdateProfile(s.ctx, p.ID, model.ProfileUpdate{DisplayName: &name}, s.now.Add(time.Hour))
	s.Require().NoError(err)

	got, err := s.store.GetPlayer(s.ctx, p.ID)
	s.Require().NoError(err)
	s.Equal("Alicia", got.DisplayName)
	s.True(got.Visible)
	s.True(s.now.Add(time.Hour).Equal(got.UpdatedAt))
}

func (s *Suite) TestUpdateProfileVisibilityOnly() {
	p := s.newPlayer("Alice")
	hidden := false

	err := s.store.UpdateProfile(s.ctx, p.ID, model.ProfileUpdate{Visible: &hidden}, s.now)
	s.Require().NoError(err)

	got, err := s.store.GetPlayer(s.ctx, p.ID)
	s.Require().NoError(err)
	s.Equal("Alice", got.DisplayName)
	s.False(got.Visible)
}

func (s *Suite) TestUpdateProfileUnknownPlayer() {
	name := "Ghost"
	err := s.store.UpdateProfile(s.ctx, "00000000-0000-4000-8000-999999999999", model.ProfileUpdate{DisplayName: &name}, s.now)
	s.ErrorIs(err, model.ErrPlayerNotFound)
}

// Credential tests

func (s *Suite) TestSetCredentials() {
	p := s.newPlayer("Alice")

	err := s.store.SetCredentials(s.ctx, p.ID, "alice", "$argon2id$hash", s.now)
	s.Require().NoError(err)

	got, err := s.store.GetPlayerByUsername(s.ctx, "alice")
	s.Require().NoError(err)
	s.Equal(p.ID, got.ID)
	s.Equal("alice", got.Username)
	s.Equal("$argon2id$hash", got.PasswordHash)
	s.True(got.IsRegistered())
}

func (s *Suite) TestGetPlayerByUsernameNotFound() {
	s.newPlayer("Alice")
	_, err := s.store.GetPlayerByUsername(s.ctx, "nobody")
	s.ErrorIs(err, model.ErrPlayerNotFound)
}

func (s *Suite) TestSetCredentialsUsernameTaken() {
	alice := s.newPlayer("Alice")
	bob := s.newPlayer("Bob")
	s.Require().NoError(s.store.SetCredentials(s.ctx, alice.ID, "shared", "hash-a", s.now))

	err := s.store.SetCredentials(s.ctx, bob.ID, "shared", "hash-b", s.now)
	s.ErrorIs(err, model.ErrUsernameTaken)

	got, err := s.store.GetPlayer(s.ctx, bob.ID)
	s.Require().NoError(err)
	s.Empty(got.Username)
	s.Empty(got.PasswordHash)
}

func (s *Suite) TestSetCredentialsReplacesUsername() {
	p := s.newPlayer("Alice")
	s.Require().NoError(s.store.SetCredentials(s.ctx, p.ID, "alice", "hash-1", s.now))
	s.Require().NoError(s.store.SetCredentials(s.ctx, p.ID, "alice2", "hash-2", s.now))

	_, err := s.store.GetPlayerByUsername(s.ctx, "alice")
	s.ErrorIs(err, model.ErrPlayerNotFound)

	got, err := s.store.GetPlayerByUsername(s.ctx, "alice2")
	s.Require().NoError(err)
	s.Equal("hash-2", got.PasswordHash)

	// The released username can be claimed by someone else
	other := s.newPlayer("Bob")
	s.NoError(s.store.SetCredentials(s.ctx, other.ID, "alice", "hash-3", s.now))
}

func (s *Suite) TestSetCredentialsUnknownPlayer() {
	err := s.store.SetCredentials(s.ctx, "00000000-0000-4000-8000-999999999999", "ghost", "hash", s.now)
	s.ErrorIs(err, model.ErrPlayerNotFound)
}

func (s *Suite) TestSetCredentialsConcurrentSameUsername() {
	alice := s.newPlayer("Alice")
	bob := s.newPlayer("Bob")

	var wg sync.WaitGroup
	errs := make([]error, 2)
	for i, id := range []model.PlayerID{alice.ID, bob.ID} {
		wg.Add(1)
		go func(i int, id model.PlayerID) {
			defer wg.Done()
			errs[i] = s.store.SetCredentials(s.ctx, id, "contested", "hash", s.now)
		}(i, id)
	}
	wg.Wait()

	succeeded := 0
	for _, err := range errs {
		if err == nil {
			succeeded++
			continue
		}
		s.ErrorIs(err, model.ErrUsernameTaken)
	}
	s.Equal(1, succeeded)
}

// Score tests

func (s *Suite) TestMergeScoresNeverLowersAField() {
	p := s.newPlayer("Alice")

	submissions := []model.ScoreComponents{
		{TotalMoneyEarned: 100, Reputation: 1.5, SkillLevelsSum: 3, ConsultantsCount: 1, AIToolTiersSum: 0, ManualTasksCompleted: 40},
		{TotalMoneyEarned: 50, Reputation: 2.25, SkillLevelsSum: 1, ConsultantsCount: 4, AIToolTiersSum: 2, ManualTasksCompleted: 10},
		{TotalMoneyEarned: 75.5, Reputation: 0, SkillLevelsSum: 7, ConsultantsCount: 0, AIToolTiersSum: 1, ManualTasksCompleted: 41},
	}
	for _, sub := range submissions {
		s.Require().NoError(s.store.MergeScores(s.ctx, p.ID, sub, s.now))
	}

	got, err := s.store.GetScores(s.ctx, p.ID)
	s.Require().NoError(err)
	s.Equal(100.0, got.TotalMoneyEarned)
	s.Equal(2.25, got.Reputation)
	s.Equal(int32(7), got.SkillLevelsSum)
	s.Equal(int32(4), got.ConsultantsCount)
	s.Equal(int32(2), got.AIToolTiersSum)
	s.Equal(int32(41), got.ManualTasksCompleted)
}

func (s *Suite) TestMergeScoresIsOrderIndependent() {
	a := s.newPlayer("Alice")
	b := s.newPlayer("Bob")

	subs := []model.ScoreComponents{
		{TotalMoneyEarned: 10, SkillLevelsSum: 9},
		{Reputation: 3.75, ConsultantsCount: 2},
		{TotalMoneyEarned: 12345.678, ManualTasksCompleted: 5},
	}
	for i := range subs {
		s.Require().NoError(s.store.MergeScores(s.ctx, a.ID, subs[i], s.now))
		s.Require().NoError(s.store.MergeScores(s.ctx, b.ID, subs[len(subs)-1-i], s.now))
	}

	got1, err := s.store.GetScores(s.ctx, a.ID)
	s.Require().NoError(err)
	got2, err := s.store.GetScores(s.ctx, b.ID)
	s.Require().NoError(err)

	got1.UpdatedAt, got2.UpdatedAt = time.Time{}, time.Time{}
	s.Equal(*got1, *got2)
	s.Equal(12345.678, got1.TotalMoneyEarned)
}

func (s *Suite) TestMergeScoresConcurrentDisjointRaises() {
	p := s.newPlayer("Alice")

	var wg sync.WaitGroup
	errs := make([]error, 2)
	wg.Add(2)
	go func() {
		defer wg.Done()
		errs[0] = s.store.MergeScores(s.ctx, p.ID, model.ScoreComponents{Reputation: 42}, s.now)
	}()
	go func() {
		defer wg.Done()
		errs[1] = s.store.MergeScores(s.ctx, p.ID, model.ScoreComponents{SkillLevelsSum: 17}, s.now)
	}()
	wg.Wait()
	s.Require().NoError(errs[0])
	s.Require().NoError(errs[1])

	got, err := s.store.GetScores(s.ctx, p.ID)
	s.Require().NoError(err)
	s.Equal(42.0, got.Reputation)
	s.Equal(int32(17), got.SkillLevelsSum)
}

func (s *Suite) TestMergeScoresManyConcurrentWritersKeepMaximum() {
	p := s.newPlayer("Alice")

	var wg sync.WaitGroup
	for i := 1; i <= 20; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_ = s.store.MergeScores(s.ctx, p.ID, model.ScoreComponents{
				TotalMoneyEarned:     float64(i),
				ManualTasksCompleted: int32(21 - i),
			}, s.now)
		}(i)
	}
	wg.Wait()

	got, err := s.store.GetScores(s.ctx, p.ID)
	s.Require().NoError(err)
	s.Equal(20.0, got.TotalMoneyEarned)
	s.Equal(int32(20), got.ManualTasksCompleted)
}

func (s *Suite) TestMergeScoresUnknownPlayer() {
	err := s.store.MergeScores(s.ctx, "00000000-0000-4000-8000-999999999999", model.ScoreComponents{Reputation: 1}, s.now)
	s.ErrorIs(err, model.ErrPlayerNotFound)
}

func (s *Suite) TestListStandingsOnlyVisiblePlayers() {
	alice := s.newPlayer("Alice")
	bob := s.newPlayer("Bob")
	carol := s.newPlayer("Carol")
	hidden := false
	s.Require().NoError(s.store.UpdateProfile(s.ctx, bob.ID, model.ProfileUpdate{Visible: &hidden}, s.now))
	s.Require().NoError(s.store.MergeScores(s.ctx, bob.ID, model.ScoreComponents{Reputation: 1000}, s.now))
	s.Require().NoError(s.store.MergeScores(s.ctx, carol.ID, model.ScoreComponents{ConsultantsCount: 3}, s.now))

	standings, err := s.store.ListStandings(s.ctx)
	s.Require().NoError(err)
	s.Require().Len(standings, 2)
	s.Equal(alice.ID, standings[0].PlayerID)
	s.Equal("Alice", standings[0].DisplayName)
	s.Equal(carol.ID, standings[1].PlayerID)
	s.Equal(int32(3), standings[1].Scores.ConsultantsCount)
}

func (s *Suite) TestListStandingsEmpty() {
	standings, err := s.store.ListStandings(s.ctx)
	s.Require().NoError(err)
	s.Empty(standings)
}

// Cloud save tests

func (s *Suite) TestSaveAndGetCloudSave() {
	p := s.newPlayer("Alice")
	save := &model.CloudSave{
		PlayerID:  p.ID,
		Data:      json.RawMessage(`{"money":12.5,"upgrades":["a","b"]}`),
		Version:   3,
		UpdatedAt: s.now,
	}
	s.Require().NoError(s.store.SaveCloudSave(s.ctx, save))

	got, err := s.store.GetCloudSave(s.ctx, p.ID)
	s.Require().NoError(err)
	s.Equal(string(save.Data), string(got.Data))
	s.Equal(int32(3), got.Version)
	s.True(s.now.Equal(got.UpdatedAt))
}

func (s *Suite) TestCloudSaveKeepsPayloadBytes() {
	p := s.newPlayer("Alice")
	payload := "{ \"z\": 1,\n  \"a\": \"nul\\u0000\", \"a\": 2 }"
	s.Require().NoError(s.store.SaveCloudSave(s.ctx, &model.CloudSave{
		PlayerID: p.ID, Data: json.RawMessage(payload), Version: 1, UpdatedAt: s.now,
	}))

	got, err := s.store.GetCloudSave(s.ctx, p.ID)
	s.Require().NoError(err)
	s.Equal(payload, string(got.Data))
}

func (s *Suite) TestCloudSaveUploadReplacesWholesale() {
	p := s.newPlayer("Alice")
	s.Require().NoError(s.store.SaveCloudSave(s.ctx, &model.CloudSave{
		PlayerID: p.ID, Data: json.RawMessage(`{"a":1,"b":2}`), Version: 9, UpdatedAt: s.now,
	}))
	s.Require().NoError(s.store.SaveCloudSave(s.ctx, &model.CloudSave{
		PlayerID: p.ID, Data: json.RawMessage(`{"c":3}`), Version: 2, UpdatedAt: s.now.Add(time.Minute),
	}))

	got, err := s.store.GetCloudSave(s.ctx, p.ID)
	s.Require().NoError(err)
	s.Equal(`{"c":3}`, string(got.Data))
	s.Equal(int32(2), got.Version)
	s.True(s.now.Add(time.Minute).Equal(got.UpdatedAt))
}

func (s *Suite) TestSaveCloudSaveUnknownPlayer() {
	err := s.store.SaveCloudSave(s.ctx, &model.CloudSave{
		PlayerID:  "00000000-0000-4000-8000-999999999999",
		Data:      json.RawMessage(`{}`),
		UpdatedAt: s.now,
	})
	s.ErrorIs(err, model.ErrPlayerNotFound)
}

func (s *Suite) TestGetCloudSaveNotFound() {
	p := s.newPlayer("Alice")
	_, err := s.store.GetCloudSave(s.ctx, p.ID)
	s.ErrorIs(err, model.ErrSaveNotFound)
}
