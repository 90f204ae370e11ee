package ledger

import (
	"context"
	"log/slog"

	"github.com/mcoot/tycoon-backend/internal/dependencies/clock"
	"github.com/mcoot/tycoon-backend/internal/metrics"
	"github.com/mcoot/tycoon-backend/internal/model"
	"github.com/mcoot/tycoon-backend/internal/storage"
)

// Service records score submissions. Stored components only ever rise:
// each submission is merged field-wise with max() by the store.
type Service struct {
	storage storage.Storage
	clock   clock.Clock
	metrics *metrics.Metrics
	logger  *slog.Logger
}

// New creates a new ledger Service
func New(storage storage.Storage, clock clock.Clock, metrics *metrics.Metrics, logger *slog.Logger) *Service {
	return &Service{
		storage: storage,
		clock:   clock,
		metrics: metrics,
		logger:  logger,
	}
}

// Submit merges the submitted components into the player's stored scores
func (s *Service) Submit(ctx context.Context, playerID model.PlayerID, scores model.ScoreComponents) error {
	if err := scores.Validate(); err != nil {
		return err
	}

	if err := s.storage.MergeScores(ctx, playerID, scores, s.clock.Now()); err != nil {
		s.logger.Error("failed to merge scores",
			slog.String("player_id", string(playerID)),
			slog.String("error", err.Error()),
		)
		return err
	}

	s.metrics.ScoresSubmitted()
	return nil
}

// Get returns the player's current score components
func (s *Service) Get(ctx context.Context, playerID model.PlayerID) (*model.ScoreComponents, error) {
	return s.storage.GetScores(ctx, playerID)
}
