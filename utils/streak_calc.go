package utils

import (
	"sort"
	"time"

	"renascerConnectAPI/internal/types/activity"
	"renascerConnectAPI/internal/types/streak"
)

// NormalizeDate strips the time component, leaving midnight UTC.
func NormalizeDate(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

// DaysBetween returns the number of calendar days from a to b.
func DaysBetween(a, b time.Time) int {
	return int(NormalizeDate(b).Sub(NormalizeDate(a)).Hours() / 24)
}

// AdvanceStreak computes the counters after a completion on activityDate.
// prev is nil when the user has no streak state yet. A completion on the
// already-recorded day leaves everything unchanged; the day immediately after
// extends the streak; any larger gap (or a backdated completion) reseeds a
// streak of 1. longest never decreases.
func AdvanceStreak(prev *streak.Streak, activityDate time.Time) (current, longest int, isNewRecord bool) {
	if prev == nil || prev.LastActivityDate == nil {
		return 1, 1, true
	}

	gap := DaysBetween(*prev.LastActivityDate, activityDate)
	switch {
	case gap == 0:
		return prev.CurrentStreak, prev.LongestStreak, false
	case gap == 1:
		current = prev.CurrentStreak + 1
	default:
		current = 1
	}

	longest = prev.LongestStreak
	if current > longest {
		longest = current
	}

	return current, longest, current > prev.LongestStreak
}

// CurrentStreakFromCompletions recomputes the display streak from the raw
// completion list, independent of stored streak state. The most recent
// completion seeds a streak of 1 if it falls on today or yesterday (one-day
// grace so an unfinished day still shows yesterday's streak); anything older
// yields 0. The walk continues only over exactly consecutive prior days.
// Stored state may disagree if completions were deleted out of band; that
// divergence is accepted.
func CurrentStreakFromCompletions(completions []activity.Completion, today time.Time) int {
	if len(completions) == 0 {
		return 0
	}

	dates := make([]time.Time, 0, len(completions))
	for _, c := range completions {
		dates = append(dates, NormalizeDate(c.ActivityDate))
	}
	sort.Slice(dates, func(i, j int) bool { return dates[i].After(dates[j]) })

	day := NormalizeDate(today)
	if DaysBetween(dates[0], day) > 1 {
		return 0
	}

	count := 1
	expected := dates[0]
	for _, d := range dates[1:] {
		if d.Equal(expected) {
			continue // duplicate entry for the same day
		}
		if !d.Equal(expected.AddDate(0, 0, -1)) {
			break
		}
		count++
		expected = d
	}

	return count
}
