package request

import (
	"encoding/json"

	"github.com/mcoot/tycoon-backend/internal/model"
)

// CreatePlayerRequest is the request body for creating an anonymous player
type CreatePlayerRequest struct {
	DisplayName string `json:"display_name"`
}

// RecoverRequest is the request body for recovering a player by passphrase
type RecoverRequest struct {
	Passphrase string `json:"passphrase"`
}

// RegisterRequest is the request body for attaching credentials to a player
type RegisterRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// LoginRequest is the request body for logging in
type LoginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// UpdatePlayerRequest is the request body for a partial profile update.
// Omitted fields are left unchanged.
type UpdatePlayerRequest struct {
	DisplayName       *string `json:"display_name,omitempty"`
	ShowOnLeaderboard *bool   `json:"show_on_leaderboard,omitempty"`
}

// ToModel converts the request to a model.ProfileUpdate
func (r UpdatePlayerRequest) ToModel() model.ProfileUpdate {
	return model.ProfileUpdate{
		DisplayName: r.DisplayName,
		Visible:     r.ShowOnLeaderboard,
	}
}

// SubmitScoresRequest is the request body for reporting score components
type SubmitScoresRequest struct {
	TotalMoneyEarned     float64 `json:"total_money_earned"`
	Reputation           float64 `json:"reputation"`
	SkillLevelsSum       int32   `json:"skill_levels_sum"`
	ConsultantsCount     int32   `json:"consultants_count"`
	AIToolTiersSum       int32   `json:"ai_tool_tiers_sum"`
	ManualTasksCompleted int32   `json:"manual_tasks_completed"`
}

// ToModel converts the request to model.ScoreComponents
func (r SubmitScoresRequest) ToModel() model.ScoreComponents {
	return model.ScoreComponents{
		TotalMoneyEarned:     r.TotalMoneyEarned,
		Reputation:           r.Reputation,
		SkillLevelsSum:       r.SkillLevelsSum,
		ConsultantsCount:     r.ConsultantsCount,
		AIToolTiersSum:       r.AIToolTiersSum,
		ManualTasksCompleted: r.ManualTasksCompleted,
	}
}

// UploadSaveRequest is the request body for uploading a cloud save
type UploadSaveRequest struct {
	SaveData json.RawMessage `json:"save_data"`
	Version  int32           `json:"version"`
}
