package streak

import (
	"time"

	"github.com/google/uuid"
)

type Streak struct {
	ID               uuid.UUID  `json:"id" db:"id"`
	UserID           uuid.UUID  `json:"user_id" db:"user_id"`
	CurrentStreak    int        `json:"current_streak" db:"current_streak"`
	LongestStreak    int        `json:"longest_streak" db:"longest_streak"`
	LastActivityDate *time.Time `json:"last_activity_date" db:"last_activity_date"`
	CreatedAt        time.Time  `json:"created_at" db:"created_at"`
	UpdatedAt        time.Time  `json:"updated_at" db:"updated_at"`
}

// Update is the outcome of advancing a streak by one completion.
type Update struct {
	NewStreak   int  `json:"new_streak"`
	IsNewRecord bool `json:"is_new_record"`
}
