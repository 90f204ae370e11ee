package leaderboard

import (
	"context"
	"log/slog"
	"sort"

	"github.com/mcoot/tycoon-backend/internal/metrics"
	"github.com/mcoot/tycoon-backend/internal/model"
	"github.com/mcoot/tycoon-backend/internal/storage"
)

// DefaultSize is how many entries the public leaderboard shows
const DefaultSize = 50

// Score weights per component
const (
	weightMoney      = 1.0
	weightReputation = 500.0
	weightSkillLevel = 100.0
	weightConsultant = 250.0
	weightAIToolTier = 150.0
	weightManualTask = 50.0
)

// ComputeScore derives the single leaderboard score from a player's components
func ComputeScore(c model.ScoreComponents) float64 {
	return c.TotalMoneyEarned*weightMoney +
		c.Reputation*weightReputation +
		float64(c.SkillLevelsSum)*weightSkillLevel +
		float64(c.ConsultantsCount)*weightConsultant +
		float64(c.AIToolTiersSum)*weightAIToolTier +
		float64(c.ManualTasksCompleted)*weightManualTask
}

// Rank orders standings by descending score and numbers them from 1.
// The sort is stable, so tied players keep their input order (creation time,
// then id) and still receive distinct consecutive ranks.
func Rank(standings []model.Standing) []model.LeaderboardEntry {
	entries := make([]model.LeaderboardEntry, len(standings))
	for i, st := range standings {
		entries[i] = model.LeaderboardEntry{
			PlayerID:    st.PlayerID,
			DisplayName: st.DisplayName,
			Score:       ComputeScore(st.Scores),
			Scores:      st.Scores,
		}
	}

	sort.SliceStable(entries, func(i, j int) bool {
		return entries[i].Score > entries[j].Score
	})

	for i := range entries {
		entries[i].Rank = int64(i + 1)
	}
	return entries
}

// Board is the top of the leaderboard plus, when known, the viewer's position
type Board struct {
	Entries    []model.LeaderboardEntry
	PlayerRank *model.PlayerRank
}

// Service computes the leaderboard from storage on every call
type Service struct {
	storage storage.Storage
	metrics *metrics.Metrics
	logger  *slog.Logger
}

// New creates a new leaderboard Service
func New(storage storage.Storage, metrics *metrics.Metrics, logger *slog.Logger) *Service {
	return &Service{
		storage: storage,
		metrics: metrics,
		logger:  logger,
	}
}

// Top returns the first n ranked entries. n <= 0 yields an empty list.
func (s *Service) Top(ctx context.Context, n int) ([]model.LeaderboardEntry, error) {
	if n <= 0 {
		return []model.LeaderboardEntry{}, nil
	}
	ranked, err := s.ranked(ctx)
	if err != nil {
		return nil, err
	}
	return head(ranked, n), nil
}

// RankOf returns the player's rank and score. Players that are hidden,
// unknown or have no scores get model.ErrRankNotFound.
func (s *Service) RankOf(ctx context.Context, playerID model.PlayerID) (*model.PlayerRank, error) {
	ranked, err := s.ranked(ctx)
	if err != nil {
		return nil, err
	}
	return find(ranked, playerID)
}

// Board returns the top n entries and, if viewer is set and ranked, the
// viewer's own position. A viewer without a rank is not an error.
func (s *Service) Board(ctx context.Context, n int, viewer *model.PlayerID) (*Board, error) {
	ranked, err := s.ranked(ctx)
	if err != nil {
		return nil, err
	}

	board := &Board{Entries: head(ranked, n)}
	if viewer != nil {
		if rank, err := find(ranked, *viewer); err == nil {
			board.PlayerRank = rank
		}
	}
	return board, nil
}

func (s *Service) ranked(ctx context.Context) ([]model.LeaderboardEntry, error) {
	standings, err := s.storage.ListStandings(ctx)
	if err != nil {
		s.logger.Error("failed to list standings", slog.String("error", err.Error()))
		return nil, err
	}
	s.metrics.LeaderboardRead()
	return Rank(standings), nil
}

func head(entries []model.LeaderboardEntry, n int) []model.LeaderboardEntry {
	if n <= 0 {
		return []model.LeaderboardEntry{}
	}
	if len(entries) > n {
		return entries[:n]
	}
	return entries
}

func find(entries []model.LeaderboardEntry, playerID model.PlayerID) (*model.PlayerRank, error) {
	for _, e := range entries {
		if e.PlayerID == playerID {
			return &model.PlayerRank{Rank: e.Rank, Score: e.Score}, nil
		}
	}
	return nil, model.ErrRankNotFound
}
