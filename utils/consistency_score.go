package utils

import (
	"math"
	"time"

	"renascerConnectAPI/internal/types/dailylog"
)

// ConsistencyConfig controls how the rolling wellness window is scored.
// The weights and thresholds are product-tunable, not structural invariants.
type ConsistencyConfig struct {
	WindowDays    int
	MinLoggedDays int

	MinSleepHours  float64
	MaxStressLevel int
	MinEnergyFocus int

	SleepWeight    float64
	StressWeight   float64
	EnergyWeight   float64
	TrainingWeight float64

	// DayThreshold is the minimum weight sum for a day to count as consistent.
	DayThreshold float64
}

func DefaultConsistencyConfig() ConsistencyConfig {
	return ConsistencyConfig{
		WindowDays:     7,
		MinLoggedDays:  3,
		MinSleepHours:  6,
		MaxStressLevel: 70,
		MinEnergyFocus: 3,
		SleepWeight:    0.3,
		StressWeight:   0.2,
		EnergyWeight:   0.2,
		TrainingWeight: 0.3,
		DayThreshold:   0.5,
	}
}

// ComputeConsistency turns at most one window of daily logs into a 0-100
// percentage. Pure function, no I/O. Logs may arrive unordered; multiple
// entries for one date count once.
func ComputeConsistency(logs []dailylog.DailyLog, cfg ConsistencyConfig) dailylog.ConsistencyResult {
	if cfg.WindowDays <= 0 {
		cfg.WindowDays = 7
	}

	byDate := make(map[time.Time]dailylog.DailyLog)
	for _, l := range logs {
		byDate[NormalizeDate(l.Date)] = l
	}

	if len(byDate) < cfg.MinLoggedDays || len(byDate) == 0 {
		return dailylog.ConsistencyResult{HasEnoughData: false, ConsistencyPercent: 0}
	}

	consistentDays := 0
	for _, l := range byDate {
		if dayScore(l, cfg) >= cfg.DayThreshold {
			consistentDays++
		}
	}

	percent := int(math.Round(float64(consistentDays) / float64(cfg.WindowDays) * 100))
	if percent > 100 {
		percent = 100
	}
	if percent < 0 {
		percent = 0
	}

	return dailylog.ConsistencyResult{HasEnoughData: true, ConsistencyPercent: percent}
}

func dayScore(l dailylog.DailyLog, cfg ConsistencyConfig) float64 {
	score := 0.0
	if l.SleepHours != nil && *l.SleepHours >= cfg.MinSleepHours {
		score += cfg.SleepWeight
	}
	if l.StressLevel != nil && *l.StressLevel <= cfg.MaxStressLevel {
		score += cfg.StressWeight
	}
	if l.EnergyFocus != nil && *l.EnergyFocus >= cfg.MinEnergyFocus {
		score += cfg.EnergyWeight
	}
	if l.TrainedToday != nil && *l.TrainedToday {
		score += cfg.TrainingWeight
	}
	return score
}
