package memory

import (
	"bytes"
	"context"
	"sort"
	"sync"
	"time"

	"github.com/mcoot/tycoon-backend/internal/model"
	"github.com/mcoot/tycoon-backend/internal/storage"
)

// Storage is an in-memory implementation of the storage interface.
// A single mutex serializes all writes, which makes every operation atomic.
type Storage struct {
	mu sync.RWMutex

	players         map[model.PlayerID]*model.Player
	passphraseIndex map[string]model.PlayerID
	usernameIndex   map[string]model.PlayerID
	scores          map[model.PlayerID]*model.ScoreComponents
	saves           map[model.PlayerID]*model.CloudSave
}

// New creates a new in-memory storage instance
func New() *Storage {
	return &Storage{
		players:         make(map[model.PlayerID]*model.Player),
		passphraseIndex: make(map[string]model.PlayerID),
		usernameIndex:   make(map[string]model.PlayerID),
		scores:          make(map[model.PlayerID]*model.ScoreComponents),
		saves:           make(map[model.PlayerID]*model.CloudSave),
	}
}

// Ensure Storage implements the interface
var _ storage.Storage = (*Storage)(nil)

// Close is a no-op for the in-memory store
func (s *Storage) Close() error {
	return nil
}

// Player operations

func (s *Storage) CreatePlayer(ctx context.Context, player *model.Player) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, taken := s.passphraseIndex[player.Passphrase]; taken {
		return model.ErrPassphraseTaken
	}
	p := *player
	s.players[p.ID] = &p
	s.passphraseIndex[p.Passphrase] = p.ID
	s.scores[p.ID] = &model.ScoreComponents{UpdatedAt: p.CreatedAt}
	return nil
}

func (s *Storage) GetPlayer(ctx context.Context, id model.PlayerID) (*model.Player, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.copyPlayer(id)
}

func (s *Storage) GetPlayerByPassphrase(ctx context.Context, passphrase string) (*model.Player, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	id, ok := s.passphraseIndex[passphrase]
	if !ok {
		return nil, model.ErrPlayerNotFound
	}
	return s.copyPlayer(id)
}

func (s *Storage) GetPlayerByUsername(ctx context.Context, username string) (*model.Player, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	id, ok := s.usernameIndex[username]
	if !ok {
		return nil, model.ErrPlayerNotFound
	}
	return s.copyPlayer(id)
}

func (s *Storage) UpdateProfile(ctx context.Context, id model.PlayerID, update model.ProfileUpdate, now time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	player, ok := s.players[id]
	if !ok {
		return model.ErrPlayerNotFound
	}
	update.Apply(player)
	player.UpdatedAt = now
	return nil
}

func (s *Storage) SetCredentials(ctx context.Context, id model.PlayerID, username, passwordHash string, now time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	player, ok := s.players[id]
	if !ok {
		return model.ErrPlayerNotFound
	}
	if owner, taken := s.usernameIndex[username]; taken && owner != id {
		return model.ErrUsernameTaken
	}

	if player.Username != "" && player.Username != username {
		delete(s.usernameIndex, player.Username)
	}
	s.usernameIndex[username] = id
	player.Username = username
	player.PasswordHash = passwordHash
	player.UpdatedAt = now
	return nil
}

// copyPlayer must be called with the lock held
func (s *Storage) copyPlayer(id model.PlayerID) (*model.Player, error) {
	player, ok := s.players[id]
	if !ok {
		return nil, model.ErrPlayerNotFound
	}
	p := *player
	return &p, nil
}

// Score operations

func (s *Storage) MergeScores(ctx context.Context, id model.PlayerID, scores model.ScoreComponents, now time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.players[id]; !ok {
		return model.ErrPlayerNotFound
	}

	scores.UpdatedAt = now
	current, ok := s.scores[id]
	if !ok {
		current = &model.ScoreComponents{}
	}
	merged := current.Merge(scores)
	s.scores[id] = &merged
	return nil
}

func (s *Storage) GetScores(ctx context.Context, id model.PlayerID) (*model.ScoreComponents, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	scores, ok := s.scores[id]
	if !ok {
		return nil, model.ErrPlayerNotFound
	}
	c := *scores
	return &c, nil
}

func (s *Storage) ListStandings(ctx context.Context) ([]model.Standing, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	standings := make([]model.Standing, 0, len(s.players))
	for id, player := range s.players {
		if !player.Visible {
			continue
		}
		scores, ok := s.scores[id]
		if !ok {
			continue
		}
		standings = append(standings, model.Standing{
			PlayerID:    id,
			DisplayName: player.DisplayName,
			Scores:      *scores,
			CreatedAt:   player.CreatedAt,
		})
	}

	// Map iteration order is random, so impose the documented order
	sort.Slice(standings, func(i, j int) bool {
		if !standings[i].CreatedAt.Equal(standings[j].CreatedAt) {
			return standings[i].CreatedAt.Before(standings[j].CreatedAt)
		}
		return standings[i].PlayerID < standings[j].PlayerID
	})

	return standings, nil
}

// Cloud save operations

func (s *Storage) SaveCloudSave(ctx context.Context, save *model.CloudSave) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.players[save.PlayerID]; !ok {
		return model.ErrPlayerNotFound
	}
	c := *save
	c.Data = bytes.Clone(save.Data)
	s.saves[c.PlayerID] = &c
	return nil
}

func (s *Storage) GetCloudSave(ctx context.Context, id model.PlayerID) (*model.CloudSave, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	save, ok := s.saves[id]
	if !ok {
		return nil, model.ErrSaveNotFound
	}
	c := *save
	c.Data = bytes.Clone(save.Data)
	return &c, nil
}
