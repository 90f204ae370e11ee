package model

import (
	"math"
	"time"
)

// MaxScoreValue bounds the float components so the weighted leaderboard
// score of any stored row stays finite
const MaxScoreValue = 1e300

// ScoreComponents holds the latest reported value of each progress component.
// Every field only ever increases through Merge.
type ScoreComponents struct {
	TotalMoneyEarned     float64
	Reputation           float64
	SkillLevelsSum       int32
	ConsultantsCount     int32
	AIToolTiersSum       int32
	ManualTasksCompleted int32
	UpdatedAt            time.Time
}

// Validate checks that every component is non-negative and the float
// components are at most MaxScoreValue. NaN fails both comparisons.
func (c ScoreComponents) Validate() error {
	for _, f := range []float64{c.TotalMoneyEarned, c.Reputation} {
		if !(f >= 0 && f <= MaxScoreValue) {
			return ErrInvalidScores
		}
	}
	for _, n := range []int32{c.SkillLevelsSum, c.ConsultantsCount, c.AIToolTiersSum, c.ManualTasksCompleted} {
		if n < 0 {
			return ErrInvalidScores
		}
	}
	return nil
}

// Merge returns the field-wise maximum of c and other.
// UpdatedAt is taken from other.
func (c ScoreComponents) Merge(other ScoreComponents) ScoreComponents {
	return ScoreComponents{
		TotalMoneyEarned:     math.Max(c.TotalMoneyEarned, other.TotalMoneyEarned),
		Reputation:           math.Max(c.Reputation, other.Reputation),
		SkillLevelsSum:       max(c.SkillLevelsSum, other.SkillLevelsSum),
		ConsultantsCount:     max(c.ConsultantsCount, other.ConsultantsCount),
		AIToolTiersSum:       max(c.AIToolTiersSum, other.AIToolTiersSum),
		ManualTasksCompleted: max(c.ManualTasksCompleted, other.ManualTasksCompleted),
		UpdatedAt:            other.UpdatedAt,
	}
}
