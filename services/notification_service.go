package services

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"

	"renascerConnectAPI/internal/types/notification"
)

// NotificationService is the in-app outbox: streak, achievement and referral
// events are written here as rows and surfaced by the client, instead of
// inline fire-and-forget toast calls. There is no push channel.
type NotificationService struct {
	db         *pgxpool.Pool
	dispatcher *NotificationDispatcher
}

func NewNotificationService(db *pgxpool.Pool) *NotificationService {
	service := &NotificationService{db: db}
	service.dispatcher = NewNotificationDispatcher(service)
	return service
}

// Shutdown stops the background dispatcher workers.
func (s *NotificationService) Shutdown() {
	s.dispatcher.Stop()
}

// Templates live in code; the type is the key.
var notificationTemplates = map[notification.NotificationType]notification.Template{
	notification.TypeAchievementUnlocked: {
		TitleTemplate:   "Conquista desbloqueada! {{icon}}",
		BodyTemplate:    "Você desbloqueou \"{{name}}\".",
		DefaultPriority: notification.PriorityHigh,
		TTLHours:        24 * 7,
	},
	notification.TypeStreakMilestone: {
		TitleTemplate:   "Sequência de {{days}} dias!",
		BodyTemplate:    "Você treinou {{days}} dias seguidos. Continue assim!",
		DefaultPriority: notification.PriorityNormal,
		TTLHours:        48,
	},
	notification.TypeStreakRecord: {
		TitleTemplate:   "Novo recorde pessoal!",
		BodyTemplate:    "{{days}} dias seguidos — sua maior sequência até agora.",
		DefaultPriority: notification.PriorityHigh,
		TTLHours:        72,
	},
	notification.TypeReferralReward: {
		TitleTemplate:   "Indicação ativada!",
		BodyTemplate:    "{{username}} começou a treinar. Seu cashback já está na conta.",
		DefaultPriority: notification.PriorityHigh,
		TTLHours:        24 * 7,
	},
}

func (s *NotificationService) getUserID(ctx context.Context, clerkID string) (uuid.UUID, error) {
	var userID uuid.UUID
	err := s.db.QueryRow(ctx, "SELECT id FROM users WHERE clerk_id = $1", clerkID).Scan(&userID)
	if err != nil {
		return uuid.Nil, fmt.Errorf("user not found for clerk_id %s: %w", clerkID, err)
	}
	return userID, nil
}

func (s *NotificationService) CreateNotification(ctx context.Context, req *notification.CreateNotificationRequest) (*notification.Notification, error) {
	template, ok := notificationTemplates[req.Type]
	if !ok {
		return nil, fmt.Errorf("no template for notification type %s", req.Type)
	}

	title := renderTemplate(template.TitleTemplate, req.Data)
	body := renderTemplate(template.BodyTemplate, req.Data)

	priority := req.Priority
	if priority == "" {
		priority = template.DefaultPriority
	}

	expiresAt := time.Now().Add(time.Duration(template.TTLHours) * time.Hour)
	dataJSON, _ := json.Marshal(req.Data)

	query := `
	INSERT INTO notifications (id, user_id, type, priority, status, title, body, data, scheduled_for, created_at, expires_at)
	VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, NOW(), $10)
	RETURNING id, user_id, type, priority, status, title, body, data, scheduled_for, sent_at, read_at, created_at, expires_at
	`

	notif := &notification.Notification{}
	var dataStr []byte

	err := s.db.QueryRow(ctx, query,
		uuid.New(), req.UserID, req.Type, priority, notification.StatusPending,
		title, body, dataJSON, req.ScheduledFor, expiresAt,
	).Scan(
		&notif.ID, &notif.UserID, &notif.Type, &notif.Priority, &notif.Status,
		&notif.Title, &notif.Body, &dataStr, &notif.ScheduledFor,
		&notif.SentAt, &notif.ReadAt, &notif.CreatedAt, &notif.ExpiresAt,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create notification: %w", err)
	}
	json.Unmarshal(dataStr, &notif.Data)

	if req.ScheduledFor == nil {
		s.dispatcher.Enqueue(notif)
	}

	return notif, nil
}

func (s *NotificationService) GetNotifications(ctx context.Context, clerkID string, page, pageSize int, unreadOnly bool) (*notification.NotificationListResponse, error) {
	userID, err := s.getUserID(ctx, clerkID)
	if err != nil {
		return nil, err
	}

	offset := (page - 1) * pageSize
	whereClause := "WHERE user_id = $1 AND expires_at > NOW()"
	if unreadOnly {
		whereClause += " AND read_at IS NULL"
	}

	query := fmt.Sprintf(`
	SELECT id, user_id, type, priority, status, title, body, data, scheduled_for, sent_at, read_at, created_at, expires_at
	FROM notifications
	%s
	ORDER BY created_at DESC
	LIMIT $2 OFFSET $3
	`, whereClause)

	rows, err := s.db.Query(ctx, query, userID, pageSize, offset)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch notifications: %w", err)
	}
	defer rows.Close()

	var notifications []*notification.Notification
	for rows.Next() {
		n := &notification.Notification{}
		var dataStr []byte
		if err := rows.Scan(
			&n.ID, &n.UserID, &n.Type, &n.Priority, &n.Status,
			&n.Title, &n.Body, &dataStr, &n.ScheduledFor,
			&n.SentAt, &n.ReadAt, &n.CreatedAt, &n.ExpiresAt,
		); err != nil {
			return nil, fmt.Errorf("failed to scan notification: %w", err)
		}
		json.Unmarshal(dataStr, &n.Data)
		notifications = append(notifications, n)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating notifications: %w", err)
	}

	if notifications == nil {
		notifications = []*notification.Notification{}
	}

	var totalCount, unreadCount int
	s.db.QueryRow(ctx,
		"SELECT COUNT(*) FROM notifications WHERE user_id = $1 AND expires_at > NOW()", userID,
	).Scan(&totalCount)
	s.db.QueryRow(ctx,
		"SELECT COUNT(*) FROM notifications WHERE user_id = $1 AND read_at IS NULL AND expires_at > NOW()", userID,
	).Scan(&unreadCount)

	return &notification.NotificationListResponse{
		Notifications: notifications,
		TotalCount:    totalCount,
		UnreadCount:   unreadCount,
		Page:          page,
		PageSize:      pageSize,
	}, nil
}

func (s *NotificationService) GetUnreadCount(ctx context.Context, clerkID string) (int, error) {
	userID, err := s.getUserID(ctx, clerkID)
	if err != nil {
		return 0, err
	}

	var unreadCount int
	err = s.db.QueryRow(ctx,
		"SELECT COUNT(*) FROM notifications WHERE user_id = $1 AND read_at IS NULL AND expires_at > NOW()",
		userID,
	).Scan(&unreadCount)
	if err != nil {
		return 0, fmt.Errorf("failed to get unread count: %w", err)
	}
	return unreadCount, nil
}

func (s *NotificationService) MarkAsRead(ctx context.Context, notificationID uuid.UUID, clerkID string) error {
	userID, err := s.getUserID(ctx, clerkID)
	if err != nil {
		return err
	}

	query := `
	UPDATE notifications
	SET read_at = NOW(), status = $1
	WHERE id = $2 AND user_id = $3 AND read_at IS NULL
	`
	result, err := s.db.Exec(ctx, query, notification.StatusRead, notificationID, userID)
	if err != nil {
		return err
	}
	if result.RowsAffected() == 0 {
		return fmt.Errorf("notification not found or already read")
	}
	return nil
}

func (s *NotificationService) MarkAllAsRead(ctx context.Context, clerkID string) error {
	userID, err := s.getUserID(ctx, clerkID)
	if err != nil {
		return err
	}

	_, err = s.db.Exec(ctx,
		`UPDATE notifications SET read_at = NOW(), status = $1 WHERE user_id = $2 AND read_at IS NULL`,
		notification.StatusRead, userID)
	return err
}

func (s *NotificationService) DeleteNotification(ctx context.Context, notificationID uuid.UUID, clerkID string) error {
	userID, err := s.getUserID(ctx, clerkID)
	if err != nil {
		return err
	}

	result, err := s.db.Exec(ctx,
		"DELETE FROM notifications WHERE id = $1 AND user_id = $2", notificationID, userID)
	if err != nil {
		return err
	}
	if result.RowsAffected() == 0 {
		return fmt.Errorf("notification not found")
	}
	return nil
}

func renderTemplate(template string, data map[string]any) string {
	result := template
	for key, value := range data {
		placeholder := fmt.Sprintf("{{%s}}", key)
		result = strings.ReplaceAll(result, placeholder, fmt.Sprintf("%v", value))
	}
	return result
}
