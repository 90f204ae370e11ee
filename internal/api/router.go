package api

import (
	"log/slog"
	"net/http"

	"github.com/gorilla/handlers"
	"github.com/gorilla/mux"

	"github.com/mcoot/tycoon-backend/internal/api/handler"
	"github.com/mcoot/tycoon-backend/internal/api/middleware"
	"github.com/mcoot/tycoon-backend/internal/api/response"
	"github.com/mcoot/tycoon-backend/internal/metrics"
	httpmw "github.com/mcoot/tycoon-backend/internal/middleware"
	"github.com/mcoot/tycoon-backend/internal/services/auth"
	"github.com/mcoot/tycoon-backend/internal/services/leaderboard"
	"github.com/mcoot/tycoon-backend/internal/services/ledger"
	"github.com/mcoot/tycoon-backend/internal/services/vault"
)

// RouterConfig holds configuration for the API router
type RouterConfig struct {
	Logger             *slog.Logger
	Sessions           middleware.TokenVerifier
	AuthService        *auth.Service
	Ledger             *ledger.Service
	LeaderboardService *leaderboard.Service
	Vault              *vault.Service

	// Metrics is optional. When set, requests are timed and /metrics is served.
	Metrics *metrics.Metrics

	// AllowedOrigins enables CORS for the given origins ("*" for any)
	AllowedOrigins []string
}

// NewRouter creates a new API router with all routes configured
func NewRouter(cfg RouterConfig) http.Handler {
	r := mux.NewRouter()

	// Create handlers
	playerHandler := handler.NewPlayerHandler(cfg.AuthService)
	scoresHandler := handler.NewScoresHandler(cfg.Ledger)
	leaderboardHandler := handler.NewLeaderboardHandler(cfg.LeaderboardService)
	savesHandler := handler.NewSavesHandler(cfg.Vault)

	// Create middleware
	authMiddleware := middleware.Auth(cfg.Sessions)
	optionalAuthMiddleware := middleware.OptionalAuth(cfg.Sessions)
	loggingMiddleware := httpmw.Logging(cfg.Logger)
	recoveryMiddleware := middleware.Recovery(cfg.Logger)

	// API subrouter with common middleware
	api := r.PathPrefix("/api").Subrouter()
	api.Use(recoveryMiddleware)
	api.Use(loggingMiddleware)
	if cfg.Metrics != nil {
		api.Use(httpmw.Metrics(cfg.Metrics))
	}

	// Health check endpoint (no auth)
	api.HandleFunc("/health", healthHandler).Methods(http.MethodGet)

	// Player routes (no auth required for creating, recovering or logging in)
	api.HandleFunc("/players", playerHandler.Create).Methods(http.MethodPost)
	api.HandleFunc("/players/recover", playerHandler.Recover).Methods(http.MethodPost)
	api.HandleFunc("/players/login", playerHandler.Login).Methods(http.MethodPost)

	// Protected routes
	protected := api.NewRoute().Subrouter()
	protected.Use(authMiddleware)
	protected.HandleFunc("/players/register", playerHandler.Register).Methods(http.MethodPost)
	protected.HandleFunc("/players/me", playerHandler.GetMe).Methods(http.MethodGet)
	protected.HandleFunc("/players/me", playerHandler.UpdateMe).Methods(http.MethodPatch)
	protected.HandleFunc("/scores", scoresHandler.Submit).Methods(http.MethodPut)
	protected.HandleFunc("/scores/me", scoresHandler.GetMine).Methods(http.MethodGet)
	protected.HandleFunc("/saves", savesHandler.Upload).Methods(http.MethodPut)
	protected.HandleFunc("/saves/me", savesHandler.Download).Methods(http.MethodGet)

	// Leaderboard is public, the caller's own rank is added when authenticated
	public := api.NewRoute().Subrouter()
	public.Use(optionalAuthMiddleware)
	public.HandleFunc("/leaderboard", leaderboardHandler.Get).Methods(http.MethodGet)

	if cfg.Metrics != nil {
		r.Handle("/metrics", cfg.Metrics.Handler()).Methods(http.MethodGet)
	}

	if len(cfg.AllowedOrigins) == 0 {
		return r
	}
	return handlers.CORS(
		handlers.AllowedOrigins(cfg.AllowedOrigins),
		handlers.AllowedMethods([]string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodPatch}),
		handlers.AllowedHeaders([]string{"Authorization", "Content-Type"}),
		handlers.MaxAge(600),
	)(r)
}

func healthHandler(w http.ResponseWriter, _ *http.Request) {
	response.JSON(w, http.StatusOK, response.OK)
}
