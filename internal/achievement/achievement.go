package achievement

import (
	"time"

	"github.com/google/uuid"
)

type CriteriaType string

const (
	CriteriaCompletions CriteriaType = "completions"
	CriteriaStreak      CriteriaType = "streak"
)

// Achievement is a catalog entry. The catalog lives in code; only unlocks are
// persisted. IDs are stable strings referenced by the client app.
type Achievement struct {
	ID           string       `json:"id" db:"id"`
	Name         string       `json:"name" db:"name"`
	Description  string       `json:"description" db:"description"`
	Icon         string       `json:"icon" db:"icon"`
	CriteriaType CriteriaType `json:"criteria_type" db:"criteria_type"`
	Threshold    int          `json:"threshold" db:"threshold"`
}

type Unlock struct {
	ID            uuid.UUID `json:"id" db:"id"`
	UserID        uuid.UUID `json:"user_id" db:"user_id"`
	AchievementID string    `json:"achievement_id" db:"achievement_id"`
	UnlockedAt    time.Time `json:"unlocked_at" db:"unlocked_at"`
	Notified      bool      `json:"notified" db:"notified"`
}

type AchievementWithStatus struct {
	Achievement
	Unlocked   bool       `json:"unlocked"`
	UnlockedAt *time.Time `json:"unlocked_at,omitempty"`
}

// Catalog returns the default milestone tables. Thresholds are product-tunable,
// callers may pass a custom catalog to the progress service instead.
func Catalog() []Achievement {
	return []Achievement{
		{ID: "first_workout", Name: "Primeiro Treino", Description: "Complete your first workout", Icon: "🏋️", CriteriaType: CriteriaCompletions, Threshold: 1},
		{ID: "workout_10", Name: "Em Movimento", Description: "Complete 10 workouts", Icon: "🔥", CriteriaType: CriteriaCompletions, Threshold: 10},
		{ID: "workout_25", Name: "Constância", Description: "Complete 25 workouts", Icon: "💪", CriteriaType: CriteriaCompletions, Threshold: 25},
		{ID: "workout_50", Name: "Disciplina", Description: "Complete 50 workouts", Icon: "🏆", CriteriaType: CriteriaCompletions, Threshold: 50},
		{ID: "workout_100", Name: "Renascido", Description: "Complete 100 workouts", Icon: "👑", CriteriaType: CriteriaCompletions, Threshold: 100},
		{ID: "streak_3", Name: "Aquecendo", Description: "Train 3 days in a row", Icon: "✨", CriteriaType: CriteriaStreak, Threshold: 3},
		{ID: "streak_7", Name: "Semana Completa", Description: "Train 7 days in a row", Icon: "📅", CriteriaType: CriteriaStreak, Threshold: 7},
		{ID: "streak_14", Name: "Duas Semanas", Description: "Train 14 days in a row", Icon: "⚡", CriteriaType: CriteriaStreak, Threshold: 14},
		{ID: "streak_30", Name: "Um Mês de Fogo", Description: "Train 30 days in a row", Icon: "🌋", CriteriaType: CriteriaStreak, Threshold: 30},
	}
}

// IsStreakMilestone reports whether n lands exactly on a streak threshold in
// the catalog.
func IsStreakMilestone(catalog []Achievement, n int) bool {
	for _, a := range catalog {
		if a.CriteriaType == CriteriaStreak && a.Threshold == n {
			return true
		}
	}
	return false
}

// Evaluate returns catalog entries whose threshold is met by the counters and
// whose ID is not in the unlocked set. Re-evaluating with the same inputs
// yields nothing new, which keeps unlock insertion idempotent.
func Evaluate(catalog []Achievement, unlocked map[string]bool, totalCompletions, currentStreak int) []Achievement {
	var due []Achievement
	for _, a := range catalog {
		if unlocked[a.ID] {
			continue
		}

		counter := totalCompletions
		if a.CriteriaType == CriteriaStreak {
			counter = currentStreak
		}

		if counter >= a.Threshold {
			due = append(due, a)
		}
	}
	return due
}
