package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"renascerConnectAPI/internal/stats"
	"renascerConnectAPI/internal/types/calendar"
	"renascerConnectAPI/internal/types/user"
)

type UserService struct {
	db *pgxpool.Pool
}

func NewUserService(db *pgxpool.Pool) *UserService {
	return &UserService{db: db}
}

func (s *UserService) CreateUser(ctx context.Context, req *user.CreateUserRequest) (*user.User, error) {
	u := &user.User{
		ID:        uuid.New().String(),
		ClerkID:   req.ClerkID,
		Email:     req.Email,
		Username:  req.Username,
		FirstName: req.FirstName,
		LastName:  req.LastName,
		ImageURL:  req.ImageURL,
		CreatedAt: time.Now(),
		UpdatedAt: time.Now(),
	}

	query := `
	INSERT INTO users (id, clerk_id, email, username, first_name, last_name, image_url, created_at, updated_at)
	VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
	RETURNING id, clerk_id, email, username, first_name, last_name, image_url, email_verified, onboarding_complete, created_at, updated_at
	`

	err := s.db.QueryRow(ctx, query,
		u.ID, u.ClerkID, u.Email, u.Username, u.FirstName, u.LastName, u.ImageURL,
		u.CreatedAt, u.UpdatedAt,
	).Scan(
		&u.ID, &u.ClerkID, &u.Email, &u.Username, &u.FirstName, &u.LastName,
		&u.ImageURL, &u.EmailVerified, &u.OnboardingComplete, &u.CreatedAt, &u.UpdatedAt,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create user: %w", err)
	}

	return u, nil
}

func (s *UserService) GetUserByClerkID(ctx context.Context, clerkID string) (*user.User, error) {
	query := `
	SELECT
		u.id, u.clerk_id, u.email, u.username, u.first_name, u.last_name,
		u.image_url, u.email_verified, u.onboarding_complete, u.created_at, u.updated_at,
		(SELECT COUNT(*) FROM workout_completions wc WHERE wc.user_id = u.id) as total_workouts
	FROM users u
	WHERE u.clerk_id = $1
	`

	u := &user.User{}
	err := s.db.QueryRow(ctx, query, clerkID).Scan(
		&u.ID, &u.ClerkID, &u.Email, &u.Username, &u.FirstName, &u.LastName,
		&u.ImageURL, &u.EmailVerified, &u.OnboardingComplete, &u.CreatedAt, &u.UpdatedAt,
		&u.TotalWorkouts,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("user not found")
		}
		return nil, fmt.Errorf("failed to get user: %w", err)
	}

	return u, nil
}

func (s *UserService) UpdateProfileByClerkID(ctx context.Context, clerkID string, req *user.UpdateProfileRequest) (*user.User, error) {
	updates := []string{}
	args := []interface{}{clerkID}
	argCount := 2

	if req.Username != "" {
		updates = append(updates, fmt.Sprintf("username = $%d", argCount))
		args = append(args, req.Username)
		argCount++
	}
	if req.FirstName != "" {
		updates = append(updates, fmt.Sprintf("first_name = $%d", argCount))
		args = append(args, req.FirstName)
		argCount++
	}
	if req.LastName != "" {
		updates = append(updates, fmt.Sprintf("last_name = $%d", argCount))
		args = append(args, req.LastName)
		argCount++
	}
	if req.ImageURL != "" {
		updates = append(updates, fmt.Sprintf("image_url = $%d", argCount))
		args = append(args, req.ImageURL)
		argCount++
	}
	if req.OnboardingComplete != nil {
		updates = append(updates, fmt.Sprintf("onboarding_complete = $%d", argCount))
		args = append(args, *req.OnboardingComplete)
		argCount++
	}

	if len(updates) == 0 {
		return s.GetUserByClerkID(ctx, clerkID)
	}

	query := fmt.Sprintf(`
	UPDATE users
	SET %s, updated_at = NOW()
	WHERE clerk_id = $1
	RETURNING id
	`, strings.Join(updates, ", "))

	var id uuid.UUID
	if err := s.db.QueryRow(ctx, query, args...).Scan(&id); err != nil {
		return nil, fmt.Errorf("failed to update profile: %w", err)
	}

	return s.GetUserByClerkID(ctx, clerkID)
}

func (s *UserService) UpdateEmailVerification(ctx context.Context, clerkID string, verified bool) error {
	_, err := s.db.Exec(ctx,
		`UPDATE users SET email_verified = $2, updated_at = NOW() WHERE clerk_id = $1`,
		clerkID, verified)
	if err != nil {
		return fmt.Errorf("failed to update email verification: %w", err)
	}
	return nil
}

func (s *UserService) DeleteUserByClerkID(ctx context.Context, clerkID string) error {
	result, err := s.db.Exec(ctx, `DELETE FROM users WHERE clerk_id = $1`, clerkID)
	if err != nil {
		return fmt.Errorf("failed to delete user: %w", err)
	}
	if result.RowsAffected() == 0 {
		return fmt.Errorf("user not found")
	}
	return nil
}

// GetUserStats is the dashboard rollup. Streak counters come from the stored
// streak state, not a recomputation; consistency is filled in by the caller
// from the wellness service.
func (s *UserService) GetUserStats(ctx context.Context, clerkID string) (*stats.UserStats, error) {
	var userID uuid.UUID
	err := s.db.QueryRow(ctx, `SELECT id FROM users WHERE clerk_id = $1`, clerkID).Scan(&userID)
	if err != nil {
		return nil, fmt.Errorf("user not found: %w", err)
	}

	query := `
	SELECT
		EXISTS(SELECT 1 FROM workout_completions wc WHERE wc.user_id = u.id AND wc.activity_date = CURRENT_DATE) as trained_today,
		COALESCE(COUNT(DISTINCT wc_week.activity_date), 0) as days_this_week,
		COALESCE(COUNT(DISTINCT wc_month.activity_date), 0) as days_this_month,
		COALESCE(COUNT(DISTINCT wc_year.activity_date), 0) as days_this_year,
		COALESCE(COUNT(DISTINCT wc_all.activity_date), 0) as total_workouts,
		COALESCE(st.current_streak, 0) as current_streak,
		COALESCE(st.longest_streak, 0) as longest_streak,
		COUNT(DISTINCT ua.achievement_id) as achievements_count
	FROM users u
	LEFT JOIN workout_completions wc_week ON u.id = wc_week.user_id
		AND wc_week.activity_date >= DATE_TRUNC('week', CURRENT_DATE)
		AND wc_week.activity_date <= CURRENT_DATE
	LEFT JOIN workout_completions wc_month ON u.id = wc_month.user_id
		AND wc_month.activity_date >= DATE_TRUNC('month', CURRENT_DATE)
		AND wc_month.activity_date <= CURRENT_DATE
	LEFT JOIN workout_completions wc_year ON u.id = wc_year.user_id
		AND wc_year.activity_date >= DATE_TRUNC('year', CURRENT_DATE)
		AND wc_year.activity_date <= CURRENT_DATE
	LEFT JOIN workout_completions wc_all ON u.id = wc_all.user_id
	LEFT JOIN streaks st ON u.id = st.user_id
	LEFT JOIN user_achievements ua ON u.id = ua.user_id
	WHERE u.id = $1
	GROUP BY u.id, st.current_streak, st.longest_streak
	`

	userStats := &stats.UserStats{}
	err = s.db.QueryRow(ctx, query, userID).Scan(
		&userStats.TrainedToday,
		&userStats.DaysThisWeek,
		&userStats.DaysThisMonth,
		&userStats.DaysThisYear,
		&userStats.TotalWorkouts,
		&userStats.CurrentStreak,
		&userStats.LongestStreak,
		&userStats.AchievementsCount,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to get user stats: %w", err)
	}

	return userStats, nil
}

func (s *UserService) GetCalendar(ctx context.Context, clerkID string, year int, month int) (*calendar.CalendarResponse, error) {
	var userID uuid.UUID
	err := s.db.QueryRow(ctx, `SELECT id FROM users WHERE clerk_id = $1`, clerkID).Scan(&userID)
	if err != nil {
		return nil, fmt.Errorf("user not found: %w", err)
	}

	startDate := time.Date(year, time.Month(month), 1, 0, 0, 0, 0, time.UTC)
	endDate := startDate.AddDate(0, 1, -1)

	rows, err := s.db.Query(ctx, `
	SELECT activity_date
	FROM workout_completions
	WHERE user_id = $1
		AND activity_date >= $2
		AND activity_date <= $3
	ORDER BY activity_date
	`, userID, startDate, endDate)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch calendar: %w", err)
	}
	defer rows.Close()

	dayMap := make(map[string]bool)
	for rows.Next() {
		var date time.Time
		if err := rows.Scan(&date); err != nil {
			return nil, fmt.Errorf("failed to scan row: %w", err)
		}
		dayMap[date.Format("2006-01-02")] = true
	}

	var days []*calendar.CalendarDay
	today := time.Now().Format("2006-01-02")

	for d := startDate; !d.After(endDate); d = d.AddDate(0, 0, 1) {
		dateStr := d.Format("2006-01-02")
		days = append(days, &calendar.CalendarDay{
			Date:    d,
			Trained: dayMap[dateStr],
			IsToday: dateStr == today,
		})
	}

	return &calendar.CalendarResponse{
		Year:  year,
		Month: month,
		Days:  days,
	}, nil
}
