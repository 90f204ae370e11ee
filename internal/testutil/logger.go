package testutil

import (
	"io"
	"log/slog"

	"github.com/mcoot/tycoon-backend/internal/services/password"
)

// NopLogger returns a logger that discards all output.
// Use this in tests to avoid log noise.
func NopLogger() *slog.Logger {
	return slog.New(slog.NewJSONHandler(io.Discard, nil))
}

// FastHasher returns a password hasher with minimal Argon2id cost so suites
// that register many players stay quick
func FastHasher() *password.Hasher {
	return password.New(password.Params{
		Memory:      64,
		Iterations:  1,
		Parallelism: 1,
		SaltLength:  16,
		KeyLength:   32,
	})
}
