package utils

import (
	"context"
	"log"

	"github.com/google/uuid"

	"renascerConnectAPI/internal/achievement"
	"renascerConnectAPI/internal/types/notification"
)

// NotificationCreator is the one method the triggers below need; it lets the
// progress and referral services enqueue outbox rows without depending on the
// whole notification service.
type NotificationCreator interface {
	CreateNotification(ctx context.Context, req *notification.CreateNotificationRequest) (*notification.Notification, error)
}

// AchievementUnlocked enqueues an in-app notification for a fresh unlock.
// Fire-and-forget: failures are logged and never surfaced to the caller.
func AchievementUnlocked(notifier NotificationCreator, userID uuid.UUID, ach achievement.Achievement) {
	bgCtx := context.Background()

	req := &notification.CreateNotificationRequest{
		UserID:   userID,
		Type:     notification.TypeAchievementUnlocked,
		Priority: notification.PriorityHigh,
		Data: map[string]any{
			"achievement_id": ach.ID,
			"name":           ach.Name,
			"icon":           ach.Icon,
		},
	}

	if _, err := notifier.CreateNotification(bgCtx, req); err != nil {
		log.Printf("Failed to create unlock notification for user %s: %v", userID, err)
	}
}

// StreakMilestone enqueues a notification when a streak crosses a milestone
// or sets a personal record.
func StreakMilestone(notifier NotificationCreator, userID uuid.UUID, days int, isRecord bool) {
	bgCtx := context.Background()

	notifType := notification.TypeStreakMilestone
	if isRecord {
		notifType = notification.TypeStreakRecord
	}

	req := &notification.CreateNotificationRequest{
		UserID:   userID,
		Type:     notifType,
		Priority: notification.PriorityNormal,
		Data: map[string]any{
			"days": days,
		},
	}

	if _, err := notifier.CreateNotification(bgCtx, req); err != nil {
		log.Printf("Failed to create streak notification for user %s: %v", userID, err)
	}
}

// ReferralReward notifies a referrer that a referred client activated.
func ReferralReward(notifier NotificationCreator, userID uuid.UUID, rewardCents int, referredName string) {
	bgCtx := context.Background()

	req := &notification.CreateNotificationRequest{
		UserID:   userID,
		Type:     notification.TypeReferralReward,
		Priority: notification.PriorityHigh,
		Data: map[string]any{
			"reward_cents": rewardCents,
			"username":     referredName,
		},
	}

	if _, err := notifier.CreateNotification(bgCtx, req); err != nil {
		log.Printf("Failed to create referral notification for user %s: %v", userID, err)
	}
}
