package storage

import (
	"context"
	"time"

	"github.com/mcoot/tycoon-backend/internal/model"
)

// Storage defines the interface for data persistence.
// Implementations must make CreatePlayer and MergeScores atomic.
type Storage interface {
	// Player operations

	// CreatePlayer inserts the player together with a zeroed score row.
	// Returns model.ErrPassphraseTaken if the passphrase is already in use.
	CreatePlayer(ctx context.Context, player *model.Player) error
	GetPlayer(ctx context.Context, id model.PlayerID) (*model.Player, error)
	GetPlayerByPassphrase(ctx context.Context, passphrase string) (*model.Player, error)
	GetPlayerByUsername(ctx context.Context, username string) (*model.Player, error)
	UpdateProfile(ctx context.Context, id model.PlayerID, update model.ProfileUpdate, now time.Time) error
	// SetCredentials attaches login credentials to the player.
	// Returns model.ErrUsernameTaken if another player holds the username.
	SetCredentials(ctx context.Context, id model.PlayerID, username, passwordHash string, now time.Time) error

	// Score operations

	// MergeScores raises each stored component to max(stored, submitted)
	// in a single atomic step.
	MergeScores(ctx context.Context, id model.PlayerID, scores model.ScoreComponents, now time.Time) error
	GetScores(ctx context.Context, id model.PlayerID) (*model.ScoreComponents, error)
	// ListStandings returns every visible player with a score row, ordered
	// by player creation time then id.
	ListStandings(ctx context.Context) ([]model.Standing, error)

	// Cloud save operations
	SaveCloudSave(ctx context.Context, save *model.CloudSave) error
	GetCloudSave(ctx context.Context, id model.PlayerID) (*model.CloudSave, error)

	// Close releases any resources held by the backend
	Close() error
}
