package services

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"renascerConnectAPI/internal/achievement"
	"renascerConnectAPI/internal/stats"
	"renascerConnectAPI/internal/types/activity"
	"renascerConnectAPI/internal/types/streak"
	"renascerConnectAPI/utils"
)

// ProgressService owns workout completions, per-user streak state and
// achievement unlocks. Streak and achievement writes are best-effort: they
// never block or roll back the completion insert itself.
type ProgressService struct {
	db       *pgxpool.Pool
	notifier utils.NotificationCreator
	referral *ReferralService
	catalog  []achievement.Achievement
}

func NewProgressService(db *pgxpool.Pool, notifier utils.NotificationCreator, referral *ReferralService) *ProgressService {
	return &ProgressService{
		db:       db,
		notifier: notifier,
		referral: referral,
		catalog:  achievement.Catalog(),
	}
}

// SetCatalog overrides the default milestone tables (thresholds are
// product-tunable, not invariants).
func (s *ProgressService) SetCatalog(catalog []achievement.Achievement) {
	s.catalog = catalog
}

func (s *ProgressService) getUserID(ctx context.Context, clerkID string) (uuid.UUID, error) {
	var userID uuid.UUID
	err := s.db.QueryRow(ctx, `SELECT id FROM users WHERE clerk_id = $1`, clerkID).Scan(&userID)
	if err != nil {
		return uuid.Nil, fmt.Errorf("user not found: %w", err)
	}
	return userID, nil
}

// LogActivity records a finished workout for one calendar day and runs the
// sequential follow-ups: streak advance, then achievement checks. A second
// submission for the same day is rejected before any state changes, which is
// the duplicate guard the streak logic relies on.
func (s *ProgressService) LogActivity(ctx context.Context, clerkID string, req *activity.LogActivityRequest) (*activity.LogActivityResponse, error) {
	userID, err := s.getUserID(ctx, clerkID)
	if err != nil {
		return nil, err
	}

	date := utils.NormalizeDate(time.Now().UTC())
	if req.Date != "" {
		parsed, err := time.Parse("2006-01-02", req.Date)
		if err != nil {
			return nil, fmt.Errorf("invalid date %q: %w", req.Date, err)
		}
		date = utils.NormalizeDate(parsed)
	}

	var exists bool
	err = s.db.QueryRow(ctx,
		`SELECT EXISTS(SELECT 1 FROM workout_completions WHERE user_id = $1 AND activity_date = $2)`,
		userID, date,
	).Scan(&exists)
	if err != nil {
		return nil, fmt.Errorf("failed to check existing completion: %w", err)
	}
	if exists {
		return nil, ErrAlreadyLogged
	}

	completion := &activity.Completion{
		ID:              uuid.New(),
		UserID:          userID,
		ActivityDate:    date,
		Name:            req.Name,
		DurationMinutes: req.DurationMinutes,
		CaloriesBurned:  req.CaloriesBurned,
		Notes:           req.Notes,
	}

	query := `
	INSERT INTO workout_completions (id, user_id, activity_date, name, duration_minutes, calories_burned, notes, logged_at)
	VALUES ($1, $2, $3, $4, $5, $6, $7, NOW())
	RETURNING logged_at
	`
	err = s.db.QueryRow(ctx, query,
		completion.ID, userID, date, completion.Name,
		completion.DurationMinutes, completion.CaloriesBurned, completion.Notes,
	).Scan(&completion.LoggedAt)
	if err != nil {
		return nil, fmt.Errorf("failed to log workout: %w", err)
	}

	resp := &activity.LogActivityResponse{Completion: completion}

	// Best-effort from here on. The completion is saved; a streak or
	// achievement failure is logged and the response simply carries less.
	update := s.RecordCompletion(ctx, userID, date)
	if update != nil {
		resp.StreakUpdated = true
		resp.NewStreak = update.NewStreak
		resp.IsNewRecord = update.IsNewRecord
	}

	var total int
	if err := s.db.QueryRow(ctx,
		`SELECT COUNT(*) FROM workout_completions WHERE user_id = $1`, userID,
	).Scan(&total); err != nil {
		log.Printf("Failed to count completions for user %s: %v", userID, err)
	} else {
		currentStreak := 0
		if update != nil {
			currentStreak = update.NewStreak
		}
		resp.NewUnlockIDs = s.CheckAchievements(ctx, userID, total, currentStreak)

		if total == 1 && s.referral != nil {
			// First workout activates a pending referral, if any.
			s.referral.ActivateForUser(ctx, userID)
		}
	}

	if update != nil && s.notifier != nil {
		switch {
		case update.IsNewRecord && update.NewStreak > 1:
			go utils.StreakMilestone(s.notifier, userID, update.NewStreak, true)
		case achievement.IsStreakMilestone(s.catalog, update.NewStreak):
			// Re-reached a milestone below the personal record.
			go utils.StreakMilestone(s.notifier, userID, update.NewStreak, false)
		}
	}

	return resp, nil
}

// ErrAlreadyLogged marks a duplicate submission for an already-completed day.
var ErrAlreadyLogged = errors.New("workout already logged for this date")

// RecordCompletion advances the stored streak state for a completion on
// activityDate. Returns nil when the update could not be applied; the caller
// treats that as "no streak update occurred" and carries on.
func (s *ProgressService) RecordCompletion(ctx context.Context, userID uuid.UUID, activityDate time.Time) *streak.Update {
	date := utils.NormalizeDate(activityDate)

	var prev *streak.Streak
	row := &streak.Streak{}
	err := s.db.QueryRow(ctx, `
	SELECT id, user_id, current_streak, longest_streak, last_activity_date, created_at, updated_at
	FROM streaks
	WHERE user_id = $1
	`, userID).Scan(
		&row.ID, &row.UserID, &row.CurrentStreak, &row.LongestStreak,
		&row.LastActivityDate, &row.CreatedAt, &row.UpdatedAt,
	)
	switch {
	case err == nil:
		prev = row
	case errors.Is(err, pgx.ErrNoRows):
		prev = nil
	default:
		log.Printf("Failed to load streak for user %s: %v", userID, err)
		return nil
	}

	current, longest, isNewRecord := utils.AdvanceStreak(prev, date)

	if prev != nil && prev.LastActivityDate != nil && utils.DaysBetween(*prev.LastActivityDate, date) == 0 {
		// Already counted this day.
		return &streak.Update{NewStreak: current, IsNewRecord: false}
	}

	query := `
	INSERT INTO streaks (id, user_id, current_streak, longest_streak, last_activity_date, created_at, updated_at)
	VALUES ($1, $2, $3, $4, $5, NOW(), NOW())
	ON CONFLICT (user_id)
	DO UPDATE SET
		current_streak = $3,
		longest_streak = $4,
		last_activity_date = $5,
		updated_at = NOW()
	`
	_, err = s.db.Exec(ctx, query, uuid.New(), userID, current, longest, date)
	if err != nil {
		log.Printf("Failed to update streak for user %s: %v", userID, err)
		return nil
	}

	return &streak.Update{NewStreak: current, IsNewRecord: isNewRecord}
}

// CheckAchievements unlocks every milestone the counters now satisfy and that
// is not unlocked yet. Each insert is attempted independently; one failure
// does not block the rest. Returns the IDs inserted in this call.
func (s *ProgressService) CheckAchievements(ctx context.Context, userID uuid.UUID, totalCompletions, currentStreak int) []string {
	rows, err := s.db.Query(ctx,
		`SELECT achievement_id FROM user_achievements WHERE user_id = $1`, userID)
	if err != nil {
		log.Printf("Failed to load unlocked achievements for user %s: %v", userID, err)
		return nil
	}
	defer rows.Close()

	unlocked := make(map[string]bool)
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			continue
		}
		unlocked[id] = true
	}

	due := achievement.Evaluate(s.catalog, unlocked, totalCompletions, currentStreak)

	var newIDs []string
	for _, ach := range due {
		tag, err := s.db.Exec(ctx, `
		INSERT INTO user_achievements (id, user_id, achievement_id, unlocked_at, notified)
		VALUES ($1, $2, $3, NOW(), false)
		ON CONFLICT (user_id, achievement_id) DO NOTHING
		`, uuid.New(), userID, ach.ID)
		if err != nil {
			log.Printf("Failed to unlock %s for user %s: %v", ach.ID, userID, err)
			continue
		}
		if tag.RowsAffected() == 0 {
			continue // raced with another unlock, already there
		}

		newIDs = append(newIDs, ach.ID)
		if s.notifier != nil {
			go utils.AchievementUnlocked(s.notifier, userID, ach)
		}
	}

	return newIDs
}

// GetAchievements merges the in-code catalog with the user's unlock rows.
func (s *ProgressService) GetAchievements(ctx context.Context, clerkID string) ([]*achievement.AchievementWithStatus, error) {
	userID, err := s.getUserID(ctx, clerkID)
	if err != nil {
		return nil, err
	}

	rows, err := s.db.Query(ctx,
		`SELECT id, user_id, achievement_id, unlocked_at, notified FROM user_achievements WHERE user_id = $1`, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch achievements: %w", err)
	}
	defer rows.Close()

	unlocks := make(map[string]achievement.Unlock)
	for rows.Next() {
		var u achievement.Unlock
		if err := rows.Scan(&u.ID, &u.UserID, &u.AchievementID, &u.UnlockedAt, &u.Notified); err != nil {
			return nil, fmt.Errorf("failed to scan unlock: %w", err)
		}
		unlocks[u.AchievementID] = u
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating unlocks: %w", err)
	}

	achievements := make([]*achievement.AchievementWithStatus, 0, len(s.catalog))
	for _, a := range s.catalog {
		entry := &achievement.AchievementWithStatus{Achievement: a}
		if u, ok := unlocks[a.ID]; ok {
			entry.Unlocked = true
			t := u.UnlockedAt
			entry.UnlockedAt = &t
		}
		achievements = append(achievements, entry)
	}

	return achievements, nil
}

// MarkAchievementsNotified flags all pending unlocks as surfaced to the user.
func (s *ProgressService) MarkAchievementsNotified(ctx context.Context, clerkID string) error {
	userID, err := s.getUserID(ctx, clerkID)
	if err != nil {
		return err
	}

	_, err = s.db.Exec(ctx,
		`UPDATE user_achievements SET notified = true WHERE user_id = $1 AND notified = false`, userID)
	if err != nil {
		return fmt.Errorf("failed to mark achievements notified: %w", err)
	}
	return nil
}

// GetCurrentStreak is the defensive display recomputation: it derives the
// streak from raw completion dates instead of trusting stored state.
func (s *ProgressService) GetCurrentStreak(ctx context.Context, clerkID string) (int, *streak.Streak, error) {
	userID, err := s.getUserID(ctx, clerkID)
	if err != nil {
		return 0, nil, err
	}

	rows, err := s.db.Query(ctx, `
	SELECT id, user_id, activity_date, name, duration_minutes, calories_burned, notes, logged_at
	FROM workout_completions
	WHERE user_id = $1
	ORDER BY activity_date DESC
	`, userID)
	if err != nil {
		return 0, nil, fmt.Errorf("failed to fetch completions: %w", err)
	}
	defer rows.Close()

	var completions []activity.Completion
	for rows.Next() {
		var c activity.Completion
		if err := rows.Scan(&c.ID, &c.UserID, &c.ActivityDate, &c.Name,
			&c.DurationMinutes, &c.CaloriesBurned, &c.Notes, &c.LoggedAt); err != nil {
			return 0, nil, fmt.Errorf("failed to scan completion: %w", err)
		}
		completions = append(completions, c)
	}
	if err = rows.Err(); err != nil {
		return 0, nil, fmt.Errorf("error iterating completions: %w", err)
	}

	derived := utils.CurrentStreakFromCompletions(completions, time.Now().UTC())

	stored := &streak.Streak{}
	err = s.db.QueryRow(ctx, `
	SELECT id, user_id, current_streak, longest_streak, last_activity_date, created_at, updated_at
	FROM streaks WHERE user_id = $1
	`, userID).Scan(
		&stored.ID, &stored.UserID, &stored.CurrentStreak, &stored.LongestStreak,
		&stored.LastActivityDate, &stored.CreatedAt, &stored.UpdatedAt,
	)
	if err != nil {
		if !errors.Is(err, pgx.ErrNoRows) {
			log.Printf("Failed to load stored streak for user %s: %v", userID, err)
		}
		// Display path; stored state is optional.
		return derived, nil, nil
	}

	return derived, stored, nil
}

func (s *ProgressService) ListActivities(ctx context.Context, clerkID string, limit int) ([]*activity.Completion, error) {
	userID, err := s.getUserID(ctx, clerkID)
	if err != nil {
		return nil, err
	}

	if limit < 1 || limit > 200 {
		limit = 50
	}

	rows, err := s.db.Query(ctx, `
	SELECT id, user_id, activity_date, name, duration_minutes, calories_burned, notes, logged_at
	FROM workout_completions
	WHERE user_id = $1
	ORDER BY activity_date DESC
	LIMIT $2
	`, userID, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch workouts: %w", err)
	}
	defer rows.Close()

	var completions []*activity.Completion
	for rows.Next() {
		c := &activity.Completion{}
		if err := rows.Scan(&c.ID, &c.UserID, &c.ActivityDate, &c.Name,
			&c.DurationMinutes, &c.CaloriesBurned, &c.Notes, &c.LoggedAt); err != nil {
			return nil, fmt.Errorf("failed to scan workout: %w", err)
		}
		completions = append(completions, c)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating workouts: %w", err)
	}

	if completions == nil {
		completions = []*activity.Completion{}
	}
	return completions, nil
}

// RemoveActivity deletes a completion out of band. Streak state is left as-is
// on purpose; the derived display streak will simply diverge until the next
// completion.
func (s *ProgressService) RemoveActivity(ctx context.Context, clerkID string, date time.Time) error {
	userID, err := s.getUserID(ctx, clerkID)
	if err != nil {
		return err
	}

	result, err := s.db.Exec(ctx,
		`DELETE FROM workout_completions WHERE user_id = $1 AND activity_date = $2`,
		userID, utils.NormalizeDate(date))
	if err != nil {
		return fmt.Errorf("failed to remove workout: %w", err)
	}
	if result.RowsAffected() == 0 {
		return fmt.Errorf("no workout found for the specified date")
	}
	return nil
}

func (s *ProgressService) GetWeeklyDaysTrained(ctx context.Context, clerkID string) (*stats.DaysStat, error) {
	userID, err := s.getUserID(ctx, clerkID)
	if err != nil {
		return nil, err
	}

	query := `
	SELECT COALESCE(COUNT(DISTINCT activity_date), 0) as days_trained
	FROM workout_completions
	WHERE user_id = $1
		AND activity_date >= DATE_TRUNC('week', CURRENT_DATE)
		AND activity_date <= CURRENT_DATE
	`

	stat := &stats.DaysStat{Period: "week", TotalDays: 7}
	if err := s.db.QueryRow(ctx, query, userID).Scan(&stat.DaysTrained); err != nil {
		return nil, fmt.Errorf("failed to get weekly stats: %w", err)
	}
	return stat, nil
}

func (s *ProgressService) GetMonthlyDaysTrained(ctx context.Context, clerkID string) (*stats.DaysStat, error) {
	userID, err := s.getUserID(ctx, clerkID)
	if err != nil {
		return nil, err
	}

	query := `
	SELECT COALESCE(COUNT(DISTINCT activity_date), 0) as days_trained
	FROM workout_completions
	WHERE user_id = $1
		AND activity_date >= DATE_TRUNC('month', CURRENT_DATE)
		AND activity_date <= CURRENT_DATE
	`

	daysInMonth := time.Now().AddDate(0, 1, -time.Now().Day()).Day()
	stat := &stats.DaysStat{Period: "month", TotalDays: daysInMonth}
	if err := s.db.QueryRow(ctx, query, userID).Scan(&stat.DaysTrained); err != nil {
		return nil, fmt.Errorf("failed to get monthly stats: %w", err)
	}
	return stat, nil
}

func (s *ProgressService) GetYearlyDaysTrained(ctx context.Context, clerkID string) (*stats.DaysStat, error) {
	userID, err := s.getUserID(ctx, clerkID)
	if err != nil {
		return nil, err
	}

	query := `
	SELECT COALESCE(COUNT(DISTINCT activity_date), 0) as days_trained
	FROM workout_completions
	WHERE user_id = $1
		AND activity_date >= DATE_TRUNC('year', CURRENT_DATE)
		AND activity_date <= CURRENT_DATE
	`

	now := time.Now()
	daysInYear := 365
	if now.Year()%4 == 0 && (now.Year()%100 != 0 || now.Year()%400 == 0) {
		daysInYear = 366
	}

	stat := &stats.DaysStat{Period: "year", TotalDays: daysInYear}
	if err := s.db.QueryRow(ctx, query, userID).Scan(&stat.DaysTrained); err != nil {
		return nil, fmt.Errorf("failed to get yearly stats: %w", err)
	}
	return stat, nil
}

func (s *ProgressService) GetAllTimeDaysTrained(ctx context.Context, clerkID string) (*stats.DaysStat, error) {
	userID, err := s.getUserID(ctx, clerkID)
	if err != nil {
		return nil, err
	}

	query := `
	SELECT
		COALESCE(COUNT(DISTINCT activity_date), 0) as days_trained,
		COALESCE(COUNT(*), 0) as total_days
	FROM workout_completions
	WHERE user_id = $1
	`

	stat := &stats.DaysStat{Period: "all_time"}
	if err := s.db.QueryRow(ctx, query, userID).Scan(&stat.DaysTrained, &stat.TotalDays); err != nil {
		return nil, fmt.Errorf("failed to get all time stats: %w", err)
	}
	return stat, nil
}
