package notification

import (
	"time"

	"github.com/google/uuid"
)

type NotificationType string

const (
	TypeAchievementUnlocked NotificationType = "achievement_unlocked"
	TypeStreakMilestone     NotificationType = "streak_milestone"
	TypeStreakRecord        NotificationType = "streak_record"
	TypeReferralReward      NotificationType = "referral_reward"
)

type NotificationPriority string

const (
	PriorityLow    NotificationPriority = "low"
	PriorityNormal NotificationPriority = "normal"
	PriorityHigh   NotificationPriority = "high"
)

type NotificationStatus string

const (
	StatusPending NotificationStatus = "pending"
	StatusSent    NotificationStatus = "sent"
	StatusRead    NotificationStatus = "read"
)

type Notification struct {
	ID           uuid.UUID            `json:"id" db:"id"`
	UserID       uuid.UUID            `json:"user_id" db:"user_id"`
	Type         NotificationType     `json:"type" db:"type"`
	Priority     NotificationPriority `json:"priority" db:"priority"`
	Status       NotificationStatus   `json:"status" db:"status"`
	Title        string               `json:"title" db:"title"`
	Body         string               `json:"body" db:"body"`
	Data         map[string]any       `json:"data" db:"data"`
	ScheduledFor *time.Time           `json:"scheduled_for" db:"scheduled_for"`
	SentAt       *time.Time           `json:"sent_at" db:"sent_at"`
	ReadAt       *time.Time           `json:"read_at" db:"read_at"`
	CreatedAt    time.Time            `json:"created_at" db:"created_at"`
	ExpiresAt    time.Time            `json:"expires_at" db:"expires_at"`
}

type CreateNotificationRequest struct {
	UserID       uuid.UUID            `json:"user_id"`
	Type         NotificationType     `json:"type"`
	Priority     NotificationPriority `json:"priority,omitempty"`
	Data         map[string]any       `json:"data,omitempty"`
	ScheduledFor *time.Time           `json:"scheduled_for,omitempty"`
}

// Template renders the title/body for one notification type. Templates live
// in code rather than the database; placeholders use {{key}} syntax.
type Template struct {
	TitleTemplate   string
	BodyTemplate    string
	DefaultPriority NotificationPriority
	TTLHours        int
}

type NotificationListResponse struct {
	Notifications []*Notification `json:"notifications"`
	TotalCount    int             `json:"total_count"`
	UnreadCount   int             `json:"unread_count"`
	Page          int             `json:"page"`
	PageSize      int             `json:"page_size"`
}
