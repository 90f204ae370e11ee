package response

import (
	"encoding/json"
	"time"

	"github.com/mcoot/tycoon-backend/internal/model"
	"github.com/mcoot/tycoon-backend/internal/services/auth"
	"github.com/mcoot/tycoon-backend/internal/services/leaderboard"
)

// StatusResponse is the body of endpoints that only acknowledge success
type StatusResponse struct {
	Status string `json:"status"`
}

// OK is the acknowledgement body
var OK = StatusResponse{Status: "ok"}

// CreatePlayerResponse is returned once, on player creation.
// It is the only time the passphrase is sent to the client.
type CreatePlayerResponse struct {
	ID         string `json:"id"`
	Passphrase string `json:"passphrase"`
	Token      string `json:"token"`
}

// CreatePlayerResponseFromSession creates a CreatePlayerResponse from a session
func CreatePlayerResponseFromSession(s *auth.Session) CreatePlayerResponse {
	return CreatePlayerResponse{
		ID:         string(s.Player.ID),
		Passphrase: s.Player.Passphrase,
		Token:      s.Token,
	}
}

// AuthResponse is the response for recover and login
type AuthResponse struct {
	ID          string `json:"id"`
	DisplayName string `json:"display_name"`
	Token       string `json:"token"`
}

// AuthResponseFromSession creates an AuthResponse from a session
func AuthResponseFromSession(s *auth.Session) AuthResponse {
	return AuthResponse{
		ID:          string(s.Player.ID),
		DisplayName: s.Player.DisplayName,
		Token:       s.Token,
	}
}

// Player is the authenticated player's own profile
type Player struct {
	ID                string    `json:"id"`
	DisplayName       string    `json:"display_name"`
	Username          *string   `json:"username"`
	ShowOnLeaderboard bool      `json:"show_on_leaderboard"`
	CreatedAt         time.Time `json:"created_at"`
	UpdatedAt         time.Time `json:"updated_at"`
}

// PlayerFromModel converts a model.Player to a response Player.
// The passphrase and password hash are never exposed.
func PlayerFromModel(p *model.Player) Player {
	resp := Player{
		ID:                string(p.ID),
		DisplayName:       p.DisplayName,
		ShowOnLeaderboard: p.Visible,
		CreatedAt:         p.CreatedAt,
		UpdatedAt:         p.UpdatedAt,
	}
	if p.Username != "" {
		username := p.Username
		resp.Username = &username
	}
	return resp
}

// Scores is a player's latest score components
type Scores struct {
	TotalMoneyEarned     float64   `json:"total_money_earned"`
	Reputation           float64   `json:"reputation"`
	SkillLevelsSum       int32     `json:"skill_levels_sum"`
	ConsultantsCount     int32     `json:"consultants_count"`
	AIToolTiersSum       int32     `json:"ai_tool_tiers_sum"`
	ManualTasksCompleted int32     `json:"manual_tasks_completed"`
	UpdatedAt            time.Time `json:"updated_at"`
}

// ScoresFromModel converts model.ScoreComponents to response Scores
func ScoresFromModel(c *model.ScoreComponents) Scores {
	return Scores{
		TotalMoneyEarned:     c.TotalMoneyEarned,
		Reputation:           c.Reputation,
		SkillLevelsSum:       c.SkillLevelsSum,
		ConsultantsCount:     c.ConsultantsCount,
		AIToolTiersSum:       c.AIToolTiersSum,
		ManualTasksCompleted: c.ManualTasksCompleted,
		UpdatedAt:            c.UpdatedAt,
	}
}

// LeaderboardEntry is a ranked row of the leaderboard
type LeaderboardEntry struct {
	Rank                 int64   `json:"rank"`
	DisplayName          string  `json:"display_name"`
	Score                float64 `json:"score"`
	TotalMoneyEarned     float64 `json:"total_money_earned"`
	Reputation           float64 `json:"reputation"`
	SkillLevelsSum       int32   `json:"skill_levels_sum"`
	ConsultantsCount     int32   `json:"consultants_count"`
	AIToolTiersSum       int32   `json:"ai_tool_tiers_sum"`
	ManualTasksCompleted int32   `json:"manual_tasks_completed"`
}

// LeaderboardResponse is the top of the leaderboard plus the caller's position.
// PlayerRank and PlayerScore are null for anonymous or unranked callers.
type LeaderboardResponse struct {
	Entries     []LeaderboardEntry `json:"entries"`
	PlayerRank  *int64             `json:"player_rank"`
	PlayerScore *float64           `json:"player_score"`
}

// LeaderboardFromBoard converts a leaderboard.Board to a LeaderboardResponse
func LeaderboardFromBoard(b *leaderboard.Board) LeaderboardResponse {
	resp := LeaderboardResponse{
		Entries: make([]LeaderboardEntry, len(b.Entries)),
	}
	for i, e := range b.Entries {
		resp.Entries[i] = LeaderboardEntry{
			Rank:                 e.Rank,
			DisplayName:          e.DisplayName,
			Score:                e.Score,
			TotalMoneyEarned:     e.Scores.TotalMoneyEarned,
			Reputation:           e.Scores.Reputation,
			SkillLevelsSum:       e.Scores.SkillLevelsSum,
			ConsultantsCount:     e.Scores.ConsultantsCount,
			AIToolTiersSum:       e.Scores.AIToolTiersSum,
			ManualTasksCompleted: e.Scores.ManualTasksCompleted,
		}
	}
	if b.PlayerRank != nil {
		rank, score := b.PlayerRank.Rank, b.PlayerRank.Score
		resp.PlayerRank = &rank
		resp.PlayerScore = &score
	}
	return resp
}

// CloudSave is a downloaded save
type CloudSave struct {
	SaveData  json.RawMessage `json:"save_data"`
	Version   int32           `json:"version"`
	UpdatedAt time.Time       `json:"updated_at"`
}

// CloudSaveFromModel converts a model.CloudSave to a response CloudSave
func CloudSaveFromModel(s *model.CloudSave) CloudSave {
	return CloudSave{
		SaveData:  s.Data,
		Version:   s.Version,
		UpdatedAt: s.UpdatedAt,
	}
}
