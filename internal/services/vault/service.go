package vault

import (
	"bytes"
	"context"
	"encoding/json"
	"log/slog"

	"github.com/mcoot/tycoon-backend/internal/dependencies/clock"
	"github.com/mcoot/tycoon-backend/internal/metrics"
	"github.com/mcoot/tycoon-backend/internal/model"
	"github.com/mcoot/tycoon-backend/internal/storage"
)

// MaxPayloadSize bounds a single save payload in bytes
const MaxPayloadSize = 2 << 20

// Service stores one cloud save per player. Uploads replace the previous
// save wholesale and the last writer wins.
type Service struct {
	storage storage.Storage
	clock   clock.Clock
	metrics *metrics.Metrics
	logger  *slog.Logger
}

// New creates a new vault Service
func New(storage storage.Storage, clock clock.Clock, metrics *metrics.Metrics, logger *slog.Logger) *Service {
	return &Service{
		storage: storage,
		clock:   clock,
		metrics: metrics,
		logger:  logger,
	}
}

// Upload replaces the player's save. version is stored as given.
func (s *Service) Upload(ctx context.Context, playerID model.PlayerID, payload json.RawMessage, version int32) (*model.CloudSave, error) {
	if err := ValidatePayload(payload); err != nil {
		return nil, err
	}

	save := &model.CloudSave{
		PlayerID:  playerID,
		Data:      payload,
		Version:   version,
		UpdatedAt: s.clock.Now(),
	}
	if err := s.storage.SaveCloudSave(ctx, save); err != nil {
		s.logger.Error("failed to store cloud save",
			slog.String("player_id", string(playerID)),
			slog.String("error", err.Error()),
		)
		return nil, err
	}

	s.metrics.SaveUploaded()
	s.logger.Info("cloud save uploaded",
		slog.String("player_id", string(playerID)),
		slog.Int("version", int(version)),
		slog.Int("size", len(payload)),
	)
	return save, nil
}

// Download returns the player's save, or model.ErrSaveNotFound
func (s *Service) Download(ctx context.Context, playerID model.PlayerID) (*model.CloudSave, error) {
	return s.storage.GetCloudSave(ctx, playerID)
}

// ValidatePayload requires a present, non-null JSON value within MaxPayloadSize
func ValidatePayload(payload json.RawMessage) error {
	trimmed := bytes.TrimSpace(payload)
	if len(trimmed) == 0 || len(payload) > MaxPayloadSize {
		return model.ErrInvalidPayload
	}
	if bytes.Equal(trimmed, []byte("null")) || !json.Valid(trimmed) {
		return model.ErrInvalidPayload
	}
	return nil
}
