package model

import "errors"

// Common errors used across the application
var (
	// Player errors
	ErrPlayerNotFound  = errors.New("player not found")
	ErrUsernameTaken   = errors.New("username already taken")
	ErrPassphraseTaken = errors.New("passphrase already in use")

	// Score errors
	ErrInvalidScores = errors.New("score components must be non-negative and at most 1e300")

	// Leaderboard errors
	ErrRankNotFound = errors.New("player has no leaderboard rank")

	// Save errors
	ErrSaveNotFound   = errors.New("save not found")
	ErrInvalidPayload = errors.New("save payload must be a JSON value")

	// ErrStorage wraps failures of the backing store
	ErrStorage = errors.New("storage failure")
)
