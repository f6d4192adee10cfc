package stats

type DaysStat struct {
	Period      string `json:"period"` // "week", "month", "year", "all_time"
	DaysTrained int    `json:"days_trained" db:"days_trained"`
	TotalDays   int    `json:"total_days"`
}

type UserStats struct {
	TrainedToday       bool `json:"trained_today"`
	DaysThisWeek       int  `json:"days_this_week"`
	DaysThisMonth      int  `json:"days_this_month"`
	DaysThisYear       int  `json:"days_this_year"`
	TotalWorkouts      int  `json:"total_workouts"`
	CurrentStreak      int  `json:"current_streak"`
	LongestStreak      int  `json:"longest_streak"`
	AchievementsCount  int  `json:"achievements_count"`
	ConsistencyPercent int  `json:"consistency_percent"`
	HasEnoughData      bool `json:"has_enough_data"`
}

// BusinessMetrics is the admin back-office rollup.
type BusinessMetrics struct {
	TotalClients       int     `json:"total_clients"`
	ActiveLast7Days    int     `json:"active_last_7_days"`
	CompletionsToday   int     `json:"completions_today"`
	CompletionsThisWeek int    `json:"completions_this_week"`
	UnlocksThisWeek    int     `json:"unlocks_this_week"`
	AvgCurrentStreak   float64 `json:"avg_current_streak"`
	ReferralsActivated int     `json:"referrals_activated"`
}
