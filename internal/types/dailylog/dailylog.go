package dailylog

import (
	"time"

	"github.com/google/uuid"
)

// DailyLog is a self-reported wellness check-in, one per user per date.
// Resubmitting for the same date overwrites the previous entry.
type DailyLog struct {
	ID           uuid.UUID `json:"id" db:"id"`
	UserID       uuid.UUID `json:"user_id" db:"user_id"`
	Date         time.Time `json:"date" db:"date"`
	SleepHours   *float64  `json:"sleep_hours" db:"sleep_hours"`
	StressLevel  *int      `json:"stress_level" db:"stress_level"`   // 0-100
	EnergyFocus  *int      `json:"energy_focus" db:"energy_focus"`   // 1-5
	TrainedToday *bool     `json:"trained_today" db:"trained_today"`
	CreatedAt    time.Time `json:"created_at" db:"created_at"`
	UpdatedAt    time.Time `json:"updated_at" db:"updated_at"`
}

type UpsertDailyLogRequest struct {
	Date         string   `json:"date,omitempty"` // "2006-01-02", defaults to today
	SleepHours   *float64 `json:"sleepHours,omitempty"`
	StressLevel  *int     `json:"stressLevel,omitempty" validate:"omitempty,min=0,max=100"`
	EnergyFocus  *int     `json:"energyFocus,omitempty" validate:"omitempty,min=1,max=5"`
	TrainedToday *bool    `json:"trainedToday,omitempty"`
}

type ConsistencyResult struct {
	HasEnoughData      bool `json:"has_enough_data"`
	ConsistencyPercent int  `json:"consistency_percent"`
}
