package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"renascerConnectAPI/internal/types/dailylog"
	"renascerConnectAPI/utils"
)

// WellnessService owns the daily self-reported check-ins and the consistency
// score derived from them.
type WellnessService struct {
	db  *pgxpool.Pool
	cfg utils.ConsistencyConfig
}

func NewWellnessService(db *pgxpool.Pool) *WellnessService {
	return &WellnessService{
		db:  db,
		cfg: utils.DefaultConsistencyConfig(),
	}
}

func (s *WellnessService) SetConsistencyConfig(cfg utils.ConsistencyConfig) {
	s.cfg = cfg
}

func (s *WellnessService) getUserID(ctx context.Context, clerkID string) (uuid.UUID, error) {
	var userID uuid.UUID
	err := s.db.QueryRow(ctx, `SELECT id FROM users WHERE clerk_id = $1`, clerkID).Scan(&userID)
	if err != nil {
		return uuid.Nil, fmt.Errorf("user not found: %w", err)
	}
	return userID, nil
}

// UpsertDailyLog writes the check-in for one date; resubmission for the same
// date overwrites the previous values.
func (s *WellnessService) UpsertDailyLog(ctx context.Context, clerkID string, req *dailylog.UpsertDailyLogRequest) (*dailylog.DailyLog, error) {
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

	if req.StressLevel != nil && (*req.StressLevel < 0 || *req.StressLevel > 100) {
		return nil, fmt.Errorf("stress level must be between 0 and 100")
	}
	if req.EnergyFocus != nil && (*req.EnergyFocus < 1 || *req.EnergyFocus > 5) {
		return nil, fmt.Errorf("energy focus must be between 1 and 5")
	}

	query := `
	INSERT INTO daily_logs (id, user_id, date, sleep_hours, stress_level, energy_focus, trained_today, created_at, updated_at)
	VALUES ($1, $2, $3, $4, $5, $6, $7, NOW(), NOW())
	ON CONFLICT (user_id, date)
	DO UPDATE SET
		sleep_hours = $4,
		stress_level = $5,
		energy_focus = $6,
		trained_today = $7,
		updated_at = NOW()
	RETURNING id, user_id, date, sleep_hours, stress_level, energy_focus, trained_today, created_at, updated_at
	`

	entry := &dailylog.DailyLog{}
	err = s.db.QueryRow(ctx, query,
		uuid.New(), userID, date,
		req.SleepHours, req.StressLevel, req.EnergyFocus, req.TrainedToday,
	).Scan(
		&entry.ID, &entry.UserID, &entry.Date,
		&entry.SleepHours, &entry.StressLevel, &entry.EnergyFocus, &entry.TrainedToday,
		&entry.CreatedAt, &entry.UpdatedAt,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to save daily log: %w", err)
	}

	return entry, nil
}

// GetDailyLog returns the entry for one date, or nil when none exists.
func (s *WellnessService) GetDailyLog(ctx context.Context, clerkID string, date time.Time) (*dailylog.DailyLog, error) {
	userID, err := s.getUserID(ctx, clerkID)
	if err != nil {
		return nil, err
	}

	entry := &dailylog.DailyLog{}
	err = s.db.QueryRow(ctx, `
	SELECT id, user_id, date, sleep_hours, stress_level, energy_focus, trained_today, created_at, updated_at
	FROM daily_logs
	WHERE user_id = $1 AND date = $2
	`, userID, utils.NormalizeDate(date)).Scan(
		&entry.ID, &entry.UserID, &entry.Date,
		&entry.SleepHours, &entry.StressLevel, &entry.EnergyFocus, &entry.TrainedToday,
		&entry.CreatedAt, &entry.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get daily log: %w", err)
	}

	return entry, nil
}

// GetRecentLogs returns the trailing window of check-ins, unordered use is fine
// for the scorer.
func (s *WellnessService) GetRecentLogs(ctx context.Context, clerkID string, windowDays int) ([]dailylog.DailyLog, error) {
	userID, err := s.getUserID(ctx, clerkID)
	if err != nil {
		return nil, err
	}

	if windowDays < 1 {
		windowDays = s.cfg.WindowDays
	}

	rows, err := s.db.Query(ctx, `
	SELECT id, user_id, date, sleep_hours, stress_level, energy_focus, trained_today, created_at, updated_at
	FROM daily_logs
	WHERE user_id = $1
		AND date > CURRENT_DATE - $2::int
		AND date <= CURRENT_DATE
	ORDER BY date DESC
	`, userID, windowDays)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch daily logs: %w", err)
	}
	defer rows.Close()

	var logs []dailylog.DailyLog
	for rows.Next() {
		var l dailylog.DailyLog
		if err := rows.Scan(
			&l.ID, &l.UserID, &l.Date,
			&l.SleepHours, &l.StressLevel, &l.EnergyFocus, &l.TrainedToday,
			&l.CreatedAt, &l.UpdatedAt,
		); err != nil {
			return nil, fmt.Errorf("failed to scan daily log: %w", err)
		}
		logs = append(logs, l)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating daily logs: %w", err)
	}

	return logs, nil
}

// GetConsistency scores the trailing window with the configured weights.
func (s *WellnessService) GetConsistency(ctx context.Context, clerkID string) (*dailylog.ConsistencyResult, error) {
	logs, err := s.GetRecentLogs(ctx, clerkID, s.cfg.WindowDays)
	if err != nil {
		return nil, err
	}

	result := utils.ComputeConsistency(logs, s.cfg)
	return &result, nil
}
