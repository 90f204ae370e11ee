package factory

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"

	"github.com/mcoot/tycoon-backend/internal/config"
	"github.com/mcoot/tycoon-backend/internal/dependencies/clock"
	"github.com/mcoot/tycoon-backend/internal/dependencies/random"
	"github.com/mcoot/tycoon-backend/internal/metrics"
	"github.com/mcoot/tycoon-backend/internal/services/auth"
	"github.com/mcoot/tycoon-backend/internal/services/leaderboard"
	"github.com/mcoot/tycoon-backend/internal/services/ledger"
	"github.com/mcoot/tycoon-backend/internal/services/password"
	"github.com/mcoot/tycoon-backend/internal/services/session"
	"github.com/mcoot/tycoon-backend/internal/services/vault"
	"github.com/mcoot/tycoon-backend/internal/storage"
	"github.com/mcoot/tycoon-backend/internal/storage/memory"
	pgstorage "github.com/mcoot/tycoon-backend/internal/storage/postgres"
	redisstorage "github.com/mcoot/tycoon-backend/internal/storage/redis"
)

// Storage type constants
const (
	StorageTypeMemory   = config.StorageMemory
	StorageTypeRedis    = config.StorageRedis
	StorageTypePostgres = config.StoragePostgres
)

// App contains all wired application components
type App struct {
	// Storage
	Storage storage.Storage

	// External dependencies
	Clock  clock.Clock
	Random random.Random

	// Metrics is nil when metrics are disabled
	Metrics *metrics.Metrics

	// Services
	SessionService     *session.Service
	AuthService        *auth.Service
	Ledger             *ledger.Service
	LeaderboardService *leaderboard.Service
	Vault              *vault.Service
}

// Config holds configuration for the application factory
type Config struct {
	// Logger is the application logger (optional)
	// If nil, a no-op logger is used
	Logger *slog.Logger
	// StorageType selects the storage backend ("memory", "redis" or "postgres")
	// If empty, defaults to "memory"
	StorageType string
	// RedisConfig holds Redis connection settings (required if StorageType is "redis")
	RedisConfig *redisstorage.Config
	// PostgresConfig holds database settings (required if StorageType is "postgres")
	PostgresConfig *pgstorage.Config
	// SessionConfig configures token signing. Secret is required.
	SessionConfig session.Config
	// AuthConfig holds configuration for the auth service (optional)
	AuthConfig auth.Config
	// PasswordParams sets the Argon2id cost (optional)
	// If zero value, defaults to password.DefaultParams()
	PasswordParams password.Params
	// MetricsEnabled creates a Prometheus registry for the app
	MetricsEnabled bool
}

// ConfigFrom maps the process configuration onto a factory Config
func ConfigFrom(cfg config.Config, logger *slog.Logger) Config {
	out := Config{
		Logger:      logger,
		StorageType: cfg.StorageType,
		SessionConfig: session.Config{
			Secret: cfg.JWTSecret,
			TTL:    cfg.SessionTTL,
		},
		MetricsEnabled: cfg.MetricsEnabled,
	}

	switch cfg.StorageType {
	case StorageTypeRedis:
		redisCfg := redisstorage.DefaultConfig()
		redisCfg.URL = cfg.RedisURL
		out.RedisConfig = &redisCfg
	case StorageTypePostgres:
		pgCfg := pgstorage.DefaultConfig()
		pgCfg.DSN = cfg.DatabaseURL
		pgCfg.MaxConnections = cfg.DBMaxConnections
		pgCfg.AutoMigrate = cfg.DBAutoMigrate
		out.PostgresConfig = &pgCfg
	}

	return out
}

// New creates a new application with all dependencies wired
func New(ctx context.Context, cfg Config) (*App, error) {
	// Use no-op logger if not provided
	logger := cfg.Logger
	if logger == nil {
		logger = slog.New(slog.NewJSONHandler(io.Discard, nil))
	}

	store, err := newStorage(ctx, cfg)
	if err != nil {
		return nil, err
	}

	// Create external dependencies
	clk := clock.New()
	rnd := random.New()

	var m *metrics.Metrics
	if cfg.MetricsEnabled {
		m = metrics.New()
	}

	params := cfg.PasswordParams
	if params == (password.Params{}) {
		params = password.DefaultParams()
	}

	app, err := newWithDependencies(store, clk, rnd, m, password.New(params), cfg.SessionConfig, cfg.AuthConfig, logger)
	if err != nil {
		_ = store.Close()
		return nil, err
	}
	return app, nil
}

func newStorage(ctx context.Context, cfg Config) (storage.Storage, error) {
	storageType := cfg.StorageType
	if storageType == "" {
		storageType = StorageTypeMemory
	}

	switch storageType {
	case StorageTypeMemory:
		return memory.New(), nil
	case StorageTypeRedis:
		if cfg.RedisConfig == nil {
			return nil, errors.New("RedisConfig required when StorageType is redis")
		}
		return redisstorage.New(*cfg.RedisConfig)
	case StorageTypePostgres:
		if cfg.PostgresConfig == nil {
			return nil, errors.New("PostgresConfig required when StorageType is postgres")
		}
		return pgstorage.New(ctx, *cfg.PostgresConfig)
	default:
		return nil, fmt.Errorf("invalid StorageType %q: must be 'memory', 'redis' or 'postgres'", storageType)
	}
}

// newWithDependencies creates an App with the given dependencies (useful for testing)
func newWithDependencies(
	store storage.Storage,
	clk clock.Clock,
	rnd random.Random,
	m *metrics.Metrics,
	hasher auth.PasswordHasher,
	sessionCfg session.Config,
	authCfg auth.Config,
	logger *slog.Logger,
) (*App, error) {
	sessionService, err := session.New(clk, sessionCfg)
	if err != nil {
		return nil, err
	}

	// Create services
	authService := auth.New(store, sessionService, hasher, clk, rnd, m, logger, authCfg)
	ledgerService := ledger.New(store, clk, m, logger)
	leaderboardService := leaderboard.New(store, m, logger)
	vaultService := vault.New(store, clk, m, logger)

	return &App{
		Storage:            store,
		Clock:              clk,
		Random:             rnd,
		Metrics:            m,
		SessionService:     sessionService,
		AuthService:        authService,
		Ledger:             ledgerService,
		LeaderboardService: leaderboardService,
		Vault:              vaultService,
	}, nil
}

// Close releases the storage backend
func (a *App) Close() error {
	return a.Storage.Close()
}
