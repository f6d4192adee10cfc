package services

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"

	"renascerConnectAPI/internal/stats"
)

// AdminService serves the back-office dashboards with cross-user rollups.
type AdminService struct {
	db *pgxpool.Pool
}

func NewAdminService(db *pgxpool.Pool) *AdminService {
	return &AdminService{db: db}
}

func (s *AdminService) GetBusinessMetrics(ctx context.Context) (*stats.BusinessMetrics, error) {
	query := `
	SELECT
		(SELECT COUNT(*) FROM users) as total_clients,
		(SELECT COUNT(DISTINCT user_id) FROM workout_completions
			WHERE activity_date >= CURRENT_DATE - INTERVAL '7 days') as active_last_7_days,
		(SELECT COUNT(*) FROM workout_completions
			WHERE activity_date = CURRENT_DATE) as completions_today,
		(SELECT COUNT(*) FROM workout_completions
			WHERE activity_date >= DATE_TRUNC('week', CURRENT_DATE)) as completions_this_week,
		(SELECT COUNT(*) FROM user_achievements
			WHERE unlocked_at >= DATE_TRUNC('week', CURRENT_DATE)) as unlocks_this_week,
		(SELECT COALESCE(AVG(current_streak), 0) FROM streaks) as avg_current_streak,
		(SELECT COUNT(*) FROM referrals WHERE status = 'activated') as referrals_activated
	`

	metrics := &stats.BusinessMetrics{}
	err := s.db.QueryRow(ctx, query).Scan(
		&metrics.TotalClients,
		&metrics.ActiveLast7Days,
		&metrics.CompletionsToday,
		&metrics.CompletionsThisWeek,
		&metrics.UnlocksThisWeek,
		&metrics.AvgCurrentStreak,
		&metrics.ReferralsActivated,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to get business metrics: %w", err)
	}

	return metrics, nil
}
