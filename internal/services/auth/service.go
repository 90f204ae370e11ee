package auth

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/mcoot/tycoon-backend/internal/dependencies/clock"
	"github.com/mcoot/tycoon-backend/internal/dependencies/random"
	"github.com/mcoot/tycoon-backend/internal/metrics"
	"github.com/mcoot/tycoon-backend/internal/model"
	"github.com/mcoot/tycoon-backend/internal/storage"
)

// Errors
var (
	ErrInvalidCredentials  = errors.New("invalid credentials")
	ErrInvalidDisplayName  = fmt.Errorf("display name must be 1-%d characters", MaxDisplayNameLength)
	ErrInvalidUsername     = fmt.Errorf("username must be %d-%d characters", MinUsernameLength, MaxUsernameLength)
	ErrInvalidPassword     = fmt.Errorf("password must be at least %d characters", MinPasswordLength)
	ErrPassphraseExhausted = errors.New("could not allocate a unique passphrase")
)

// Input limits
const (
	MaxDisplayNameLength = 32
	MinUsernameLength    = 3
	MaxUsernameLength    = 32
	MinPasswordLength    = 8
)

// PasswordHasher hashes and verifies passwords
type PasswordHasher interface {
	Hash(password string) (string, error)
	Verify(password, encoded string) (bool, error)
}

// TokenIssuer signs session tokens for players
type TokenIssuer interface {
	Issue(playerID model.PlayerID) (string, time.Time, error)
}

// Session is the result of a successful create, recover or login
type Session struct {
	Token     string
	ExpiresAt time.Time
	Player    model.Player
}

// Service handles player identity: creation, recovery, credential upgrade,
// login and profile changes
type Service struct {
	storage storage.Storage
	tokens  TokenIssuer
	hasher  PasswordHasher
	clock   clock.Clock
	random  random.Random
	metrics *metrics.Metrics
	logger  *slog.Logger

	passphraseAttempts int
}

// Config holds configuration for the auth service
type Config struct {
	// PassphraseAttempts bounds how often creation regenerates a colliding passphrase
	PassphraseAttempts int
}

// DefaultConfig returns default auth configuration
func DefaultConfig() Config {
	return Config{
		PassphraseAttempts: 5,
	}
}

// New creates a new auth Service
func New(
	storage storage.Storage,
	tokens TokenIssuer,
	hasher PasswordHasher,
	clock clock.Clock,
	random random.Random,
	metrics *metrics.Metrics,
	logger *slog.Logger,
	cfg Config,
) *Service {
	if cfg.PassphraseAttempts <= 0 {
		cfg.PassphraseAttempts = DefaultConfig().PassphraseAttempts
	}
	return &Service{
		storage:            storage,
		tokens:             tokens,
		hasher:             hasher,
		clock:              clock,
		random:             random,
		metrics:            metrics,
		logger:             logger,
		passphraseAttempts: cfg.PassphraseAttempts,
	}
}

// CreatePlayer creates an anonymous, leaderboard-visible player with a fresh
// recovery passphrase and returns a session for it
func (s *Service) CreatePlayer(ctx context.Context, displayName string) (*Session, error) {
	displayName, err := NormalizeDisplayName(displayName)
	if err != nil {
		return nil, err
	}

	now := s.clock.Now()
	player := &model.Player{
		ID:          model.PlayerID(s.random.UUID()),
		DisplayName: displayName,
		Visible:     true,
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	for attempt := 1; ; attempt++ {
		player.Passphrase = GeneratePassphrase(s.random)
		err = s.storage.CreatePlayer(ctx, player)
		if err == nil {
			break
		}
		if !errors.Is(err, model.ErrPassphraseTaken) {
			s.logger.Error("failed to create player",
				slog.String("player_id", string(player.ID)),
				slog.String("error", err.Error()),
			)
			return nil, err
		}
		if attempt >= s.passphraseAttempts {
			return nil, ErrPassphraseExhausted
		}
	}

	s.metrics.PlayerCreated()
	s.logger.Info("player created", slog.String("player_id", string(player.ID)))

	return s.newSession(player)
}

// RecoverPlayer looks a player up by recovery passphrase and returns a new session
func (s *Service) RecoverPlayer(ctx context.Context, passphrase string) (*Session, error) {
	player, err := s.storage.GetPlayerByPassphrase(ctx, strings.TrimSpace(passphrase))
	if err != nil {
		s.metrics.AuthAttempt("recover", false)
		return nil, err
	}

	s.metrics.AuthAttempt("recover", true)
	return s.newSession(player)
}

// Register attaches a username and password to an existing player.
// A username already held by any player, including the caller, is a conflict.
func (s *Service) Register(ctx context.Context, playerID model.PlayerID, username, password string) error {
	if err := ValidateUsername(username); err != nil {
		return err
	}
	if err := ValidatePassword(password); err != nil {
		return err
	}

	_, err := s.storage.GetPlayerByUsername(ctx, username)
	if err == nil {
		s.metrics.Registration(false)
		return model.ErrUsernameTaken
	}
	if !errors.Is(err, model.ErrPlayerNotFound) {
		return err
	}

	hash, err := s.hasher.Hash(password)
	if err != nil {
		return err
	}

	// The store re-checks uniqueness, covering a concurrent registration
	if err := s.storage.SetCredentials(ctx, playerID, username, hash, s.clock.Now()); err != nil {
		s.metrics.Registration(false)
		return err
	}

	s.metrics.Registration(true)
	s.logger.Info("player registered",
		slog.String("player_id", string(playerID)),
		slog.String("username", username),
	)
	return nil
}

// Login authenticates a registered player and returns a new session.
// Unknown usernames, players without credentials and wrong passwords all
// fail with ErrInvalidCredentials.
func (s *Service) Login(ctx context.Context, username, password string) (*Session, error) {
	player, err := s.storage.GetPlayerByUsername(ctx, username)
	if err != nil {
		if errors.Is(err, model.ErrPlayerNotFound) {
			s.metrics.AuthAttempt("login", false)
			return nil, ErrInvalidCredentials
		}
		return nil, err
	}
	if !player.IsRegistered() {
		s.metrics.AuthAttempt("login", false)
		return nil, ErrInvalidCredentials
	}

	ok, err := s.hasher.Verify(password, player.PasswordHash)
	if err != nil {
		return nil, err
	}
	if !ok {
		s.metrics.AuthAttempt("login", false)
		return nil, ErrInvalidCredentials
	}

	s.metrics.AuthAttempt("login", true)
	return s.newSession(player)
}

// GetPlayer returns the player's profile
func (s *Service) GetPlayer(ctx context.Context, playerID model.PlayerID) (*model.Player, error) {
	return s.storage.GetPlayer(ctx, playerID)
}

// UpdateProfile applies a partial profile update. An empty update still
// refreshes updated_at.
func (s *Service) UpdateProfile(ctx context.Context, playerID model.PlayerID, update model.ProfileUpdate) error {
	if update.DisplayName != nil {
		name, err := NormalizeDisplayName(*update.DisplayName)
		if err != nil {
			return err
		}
		update.DisplayName = &name
	}
	return s.storage.UpdateProfile(ctx, playerID, update, s.clock.Now())
}

func (s *Service) newSession(player *model.Player) (*Session, error) {
	token, expiresAt, err := s.tokens.Issue(player.ID)
	if err != nil {
		return nil, err
	}
	return &Session{
		Token:     token,
		ExpiresAt: expiresAt,
		Player:    *player,
	}, nil
}

// NormalizeDisplayName trims surrounding whitespace and checks the length
func NormalizeDisplayName(name string) (string, error) {
	name = strings.TrimSpace(name)
	if name == "" || utf8.RuneCountInString(name) > MaxDisplayNameLength {
		return "", ErrInvalidDisplayName
	}
	return name, nil
}

// ValidateUsername checks the username length and that it has no whitespace
func ValidateUsername(username string) error {
	n := utf8.RuneCountInString(username)
	if n < MinUsernameLength || n > MaxUsernameLength || strings.ContainsAny(username, " \t\r\n") {
		return ErrInvalidUsername
	}
	return nil
}

// ValidatePassword checks the password length
func ValidatePassword(password string) error {
	if utf8.RuneCountInString(password) < MinPasswordLength {
		return ErrInvalidPassword
	}
	return nil
}
