package session

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/mcoot/tycoon-backend/internal/dependencies/clock"
	"github.com/mcoot/tycoon-backend/internal/model"
)

// Errors
var (
	ErrInvalidToken = errors.New("invalid or expired token")
	ErrTokenExpired = fmt.Errorf("%w: token expired", ErrInvalidToken)
	ErrMissingKey   = errors.New("session signing secret is empty")
)

// Config holds configuration for the session authority
type Config struct {
	// Secret is the HMAC key used to sign and verify tokens
	Secret string

	// TTL is how long an issued token stays valid
	TTL time.Duration
}

// DefaultConfig returns default session configuration. Secret must be set by the caller.
func DefaultConfig() Config {
	return Config{
		TTL: 365 * 24 * time.Hour,
	}
}

// Service issues and verifies stateless HS256 session tokens.
// Tokens carry only the player id and an expiry; there is no revocation.
type Service struct {
	secret []byte
	ttl    time.Duration
	clock  clock.Clock
	parser *jwt.Parser
}

// New creates a new session Service
func New(clock clock.Clock, cfg Config) (*Service, error) {
	if cfg.Secret == "" {
		return nil, ErrMissingKey
	}
	if cfg.TTL <= 0 {
		cfg.TTL = DefaultConfig().TTL
	}
	return &Service{
		secret: []byte(cfg.Secret),
		ttl:    cfg.TTL,
		clock:  clock,
		parser: jwt.NewParser(
			jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
			jwt.WithExpirationRequired(),
			jwt.WithTimeFunc(clock.Now),
		),
	}, nil
}

// Issue signs a token for the player and returns it with its expiry
func (s *Service) Issue(playerID model.PlayerID) (string, time.Time, error) {
	now := s.clock.Now()
	expiresAt := now.Add(s.ttl)

	claims := &jwt.RegisteredClaims{
		Subject:   string(playerID),
		ExpiresAt: jwt.NewNumericDate(expiresAt),
		IssuedAt:  jwt.NewNumericDate(now),
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(s.secret)
	if err != nil {
		return "", time.Time{}, fmt.Errorf("failed to sign token: %w", err)
	}
	return signed, expiresAt, nil
}

// Verify checks the token signature and expiry and returns the player it names
func (s *Service) Verify(tokenString string) (model.PlayerID, error) {
	claims := &jwt.RegisteredClaims{}
	token, err := s.parser.ParseWithClaims(tokenString, claims, func(token *jwt.Token) (any, error) {
		return s.secret, nil
	})
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return "", ErrTokenExpired
		}
		return "", ErrInvalidToken
	}
	if !token.Valid || claims.Subject == "" {
		return "", ErrInvalidToken
	}
	return model.PlayerID(claims.Subject), nil
}

// VerifyOptional is Verify for endpoints where authentication is optional.
// An empty or failing token reports ok=false.
func (s *Service) VerifyOptional(tokenString string) (model.PlayerID, bool) {
	if tokenString == "" {
		return "", false
	}
	id, err := s.Verify(tokenString)
	if err != nil {
		return "", false
	}
	return id, true
}
