package activity

import (
	"time"

	"github.com/google/uuid"
)

// Completion is one finished workout on one calendar day.
type Completion struct {
	ID              uuid.UUID `json:"id" db:"id"`
	UserID          uuid.UUID `json:"user_id" db:"user_id"`
	ActivityDate    time.Time `json:"activity_date" db:"activity_date"`
	Name            string    `json:"name" db:"name"`
	DurationMinutes int       `json:"duration_minutes" db:"duration_minutes"`
	CaloriesBurned  int       `json:"calories_burned" db:"calories_burned"`
	Notes           *string   `json:"notes,omitempty" db:"notes"`
	LoggedAt        time.Time `json:"logged_at" db:"logged_at"`
}

type LogActivityRequest struct {
	Date            string  `json:"date,omitempty"` // "2006-01-02", defaults to today
	Name            string  `json:"name" validate:"required"`
	DurationMinutes int     `json:"durationMinutes"`
	CaloriesBurned  int     `json:"caloriesBurned"`
	Notes           *string `json:"notes,omitempty"`
}

type LogActivityResponse struct {
	Completion    *Completion `json:"completion"`
	NewStreak     int         `json:"new_streak"`
	IsNewRecord   bool        `json:"is_new_record"`
	NewUnlockIDs  []string    `json:"new_unlock_ids"`
	StreakUpdated bool        `json:"streak_updated"`
}
