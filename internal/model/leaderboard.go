package model

import "time"

// Standing is a visible player's raw leaderboard input as read from storage
type Standing struct {
	PlayerID    PlayerID
	DisplayName string
	Scores      ScoreComponents
	CreatedAt   time.Time
}

// LeaderboardEntry is a ranked row of the leaderboard.
// Entries are derived on every query and never persisted.
type LeaderboardEntry struct {
	Rank        int64
	PlayerID    PlayerID
	DisplayName string
	Score       float64
	Scores      ScoreComponents
}

// PlayerRank is a single player's position on the leaderboard
type PlayerRank struct {
	Rank  int64
	Score float64
}
