package cli

import (
	"encoding/json"
	"fmt"
	"os"
	"time"
)

// Output handles formatting output based on the configured format
type Output struct {
	format string
}

// NewOutput creates a new Output formatter
func NewOutput(format string) *Output {
	return &Output{format: format}
}

// Print outputs data in the configured format
func (o *Output) Print(data any) {
	if o.format == "json" {
		o.printJSON(data)
	} else {
		o.printText(data)
	}
}

// PrintError outputs an error
func (o *Output) PrintError(err error) {
	if o.format == "json" {
		errData := map[string]any{
			"error": map[string]string{
				"message": err.Error(),
			},
		}
		data, _ := json.Marshal(errData)
		fmt.Fprintln(os.Stderr, string(data))
	} else {
		fmt.Fprintf(os.Stderr, "Error: %s\n", err)
	}
}

// PrintMessage outputs a simple message
func (o *Output) PrintMessage(msg string) {
	if o.format == "json" {
		data, _ := json.Marshal(map[string]string{"message": msg})
		fmt.Println(string(data))
	} else {
		fmt.Println(msg)
	}
}

func (o *Output) printJSON(data any) {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	_ = enc.Encode(data)
}

func (o *Output) printText(data any) {
	switch v := data.(type) {
	case Player:
		o.printPlayer(v)
	case CreatedPlayer:
		o.printCreatedPlayer(v)
	case AuthResult:
		o.printAuthResult(v)
	case Scores:
		o.printScores(v)
	case Leaderboard:
		o.printLeaderboard(v)
	case CloudSave:
		o.printCloudSave(v)
	case StatusResult:
		fmt.Printf("Status: %s\n", v.Status)
	default:
		// Fallback to JSON for unknown types
		o.printJSON(data)
	}
}

// Player response type (matches API)
type Player struct {
	ID                string    `json:"id"`
	DisplayName       string    `json:"display_name"`
	Username          *string   `json:"username"`
	ShowOnLeaderboard bool      `json:"show_on_leaderboard"`
	CreatedAt         time.Time `json:"created_at"`
	UpdatedAt         time.Time `json:"updated_at"`
}

// CreatedPlayer is returned once, when a player is created
type CreatedPlayer struct {
	ID         string `json:"id"`
	Passphrase string `json:"passphrase"`
	Token      string `json:"token"`
}

// AuthResult is returned by recover and login
type AuthResult struct {
	ID          string `json:"id"`
	DisplayName string `json:"display_name"`
	Token       string `json:"token"`
}

// ScoreComponents are the six reported progress values
type ScoreComponents struct {
	TotalMoneyEarned     float64 `json:"total_money_earned"`
	Reputation           float64 `json:"reputation"`
	SkillLevelsSum       int32   `json:"skill_levels_sum"`
	ConsultantsCount     int32   `json:"consultants_count"`
	AIToolTiersSum       int32   `json:"ai_tool_tiers_sum"`
	ManualTasksCompleted int32   `json:"manual_tasks_completed"`
}

// Scores response type
type Scores struct {
	ScoreComponents
	UpdatedAt time.Time `json:"updated_at"`
}

// LeaderboardEntry response type
type LeaderboardEntry struct {
	Rank        int64   `json:"rank"`
	DisplayName string  `json:"display_name"`
	Score       float64 `json:"score"`
	ScoreComponents
}

// Leaderboard response type
type Leaderboard struct {
	Entries     []LeaderboardEntry `json:"entries"`
	PlayerRank  *int64             `json:"player_rank"`
	PlayerScore *float64           `json:"player_score"`
}

// CloudSave response type
type CloudSave struct {
	SaveData  json.RawMessage `json:"save_data"`
	Version   int32           `json:"version"`
	UpdatedAt time.Time       `json:"updated_at"`
}

// StatusResult response type
type StatusResult struct {
	Status string `json:"status"`
}

func (o *Output) printPlayer(p Player) {
	fmt.Printf("Player: %s (%s)\n", p.DisplayName, p.ID)
	if p.Username != nil {
		fmt.Printf("Username: %s\n", *p.Username)
	} else {
		fmt.Println("Username: (anonymous)")
	}
	visible := "no"
	if p.ShowOnLeaderboard {
		visible = "yes"
	}
	fmt.Printf("On leaderboard: %s\n", visible)
	fmt.Printf("Created: %s\n", p.CreatedAt.Format(time.RFC3339))
}

func (o *Output) printCreatedPlayer(p CreatedPlayer) {
	fmt.Printf("Player: %s\n", p.ID)
	fmt.Printf("Passphrase: %s\n", p.Passphrase)
	fmt.Println("Keep the passphrase safe, it is the only way to recover this player.")
}

func (o *Output) printAuthResult(a AuthResult) {
	fmt.Printf("Player: %s (%s)\n", a.DisplayName, a.ID)
}

func (o *Output) printScores(s Scores) {
	o.printComponents(s.ScoreComponents)
	if !s.UpdatedAt.IsZero() {
		fmt.Printf("Updated: %s\n", s.UpdatedAt.Format(time.RFC3339))
	}
}

func (o *Output) printComponents(c ScoreComponents) {
	fmt.Printf("Money earned:    %.2f\n", c.TotalMoneyEarned)
	fmt.Printf("Reputation:      %.2f\n", c.Reputation)
	fmt.Printf("Skill levels:    %d\n", c.SkillLevelsSum)
	fmt.Printf("Consultants:     %d\n", c.ConsultantsCount)
	fmt.Printf("AI tool tiers:   %d\n", c.AIToolTiersSum)
	fmt.Printf("Manual tasks:    %d\n", c.ManualTasksCompleted)
}

func (o *Output) printLeaderboard(l Leaderboard) {
	if len(l.Entries) == 0 {
		fmt.Println("Leaderboard is empty")
	}
	for _, e := range l.Entries {
		fmt.Printf("%4d  %-32s %14.2f\n", e.Rank, e.DisplayName, e.Score)
	}
	if l.PlayerRank != nil && l.PlayerScore != nil {
		fmt.Printf("\nYour rank: %d (%.2f)\n", *l.PlayerRank, *l.PlayerScore)
	}
}

func (o *Output) printCloudSave(s CloudSave) {
	fmt.Printf("Version: %d\n", s.Version)
	fmt.Printf("Updated: %s\n", s.UpdatedAt.Format(time.RFC3339))
	fmt.Printf("Size: %d bytes\n", len(s.SaveData))
}
