package utils

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"renascerConnectAPI/internal/types/activity"
	"renascerConnectAPI/internal/types/streak"
)

func date(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func completionsOn(days ...time.Time) []activity.Completion {
	out := make([]activity.Completion, 0, len(days))
	for _, d := range days {
		out = append(out, activity.Completion{ActivityDate: d})
	}
	return out
}

func TestAdvanceStreak_FirstCompletion(t *testing.T) {
	current, longest, isNewRecord := AdvanceStreak(nil, date(2026, 3, 10))

	assert.Equal(t, 1, current)
	assert.Equal(t, 1, longest)
	assert.True(t, isNewRecord)
}

func TestAdvanceStreak_SameDayIsNoOp(t *testing.T) {
	last := date(2026, 3, 10)
	prev := &streak.Streak{CurrentStreak: 4, LongestStreak: 9, LastActivityDate: &last}

	current, longest, isNewRecord := AdvanceStreak(prev, date(2026, 3, 10))

	assert.Equal(t, 4, current)
	assert.Equal(t, 9, longest)
	assert.False(t, isNewRecord)
}

func TestAdvanceStreak_ConsecutiveDayExtends(t *testing.T) {
	last := date(2026, 3, 10)
	prev := &streak.Streak{CurrentStreak: 4, LongestStreak: 9, LastActivityDate: &last}

	current, longest, isNewRecord := AdvanceStreak(prev, date(2026, 3, 11))

	assert.Equal(t, 5, current)
	assert.Equal(t, 9, longest)
	assert.False(t, isNewRecord)
}

func TestAdvanceStreak_NewRecord(t *testing.T) {
	last := date(2026, 3, 10)
	prev := &streak.Streak{CurrentStreak: 9, LongestStreak: 9, LastActivityDate: &last}

	current, longest, isNewRecord := AdvanceStreak(prev, date(2026, 3, 11))

	assert.Equal(t, 10, current)
	assert.Equal(t, 10, longest)
	assert.True(t, isNewRecord)
}

func TestAdvanceStreak_GapResets(t *testing.T) {
	last := date(2026, 3, 10)
	prev := &streak.Streak{CurrentStreak: 4, LongestStreak: 9, LastActivityDate: &last}

	current, longest, isNewRecord := AdvanceStreak(prev, date(2026, 3, 13))

	assert.Equal(t, 1, current)
	assert.Equal(t, 9, longest, "longest streak must survive the reset")
	assert.False(t, isNewRecord)
}

func TestAdvanceStreak_BackdatedCompletionResets(t *testing.T) {
	last := date(2026, 3, 10)
	prev := &streak.Streak{CurrentStreak: 4, LongestStreak: 9, LastActivityDate: &last}

	current, _, _ := AdvanceStreak(prev, date(2026, 3, 5))

	assert.Equal(t, 1, current)
}

func TestAdvanceStreak_TimeOfDayIgnored(t *testing.T) {
	last := time.Date(2026, 3, 10, 23, 45, 0, 0, time.UTC)
	prev := &streak.Streak{CurrentStreak: 2, LongestStreak: 2, LastActivityDate: &last}

	current, _, _ := AdvanceStreak(prev, time.Date(2026, 3, 11, 0, 5, 0, 0, time.UTC))

	assert.Equal(t, 3, current)
}

func TestCurrentStreakFromCompletions(t *testing.T) {
	today := date(2026, 3, 15)

	tests := []struct {
		name        string
		completions []activity.Completion
		want        int
	}{
		{
			name:        "no completions",
			completions: nil,
			want:        0,
		},
		{
			name:        "single completion today",
			completions: completionsOn(date(2026, 3, 15)),
			want:        1,
		},
		{
			name:        "single completion yesterday keeps grace",
			completions: completionsOn(date(2026, 3, 14)),
			want:        1,
		},
		{
			name:        "last completion two days ago",
			completions: completionsOn(date(2026, 3, 13)),
			want:        0,
		},
		{
			name: "five consecutive days ending today",
			completions: completionsOn(
				date(2026, 3, 11), date(2026, 3, 12), date(2026, 3, 13),
				date(2026, 3, 14), date(2026, 3, 15),
			),
			want: 5,
		},
		{
			name: "streak ending yesterday still counts in full",
			completions: completionsOn(
				date(2026, 3, 12), date(2026, 3, 13), date(2026, 3, 14),
			),
			want: 3,
		},
		{
			name: "gap in the middle stops the walk",
			completions: completionsOn(
				date(2026, 3, 11), date(2026, 3, 13),
				date(2026, 3, 14), date(2026, 3, 15),
			),
			want: 3,
		},
		{
			name: "old run beyond a gap is ignored",
			completions: completionsOn(
				date(2026, 3, 1), date(2026, 3, 2), date(2026, 3, 3),
				date(2026, 3, 15),
			),
			want: 1,
		},
		{
			name:        "unsorted input",
			completions: completionsOn(date(2026, 3, 15), date(2026, 3, 13), date(2026, 3, 14)),
			want:        3,
		},
		{
			name: "duplicate date rows collapse",
			completions: completionsOn(
				date(2026, 3, 14), date(2026, 3, 14), date(2026, 3, 15),
			),
			want: 2,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := CurrentStreakFromCompletions(tt.completions, today)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestDaysBetween(t *testing.T) {
	assert.Equal(t, 0, DaysBetween(date(2026, 3, 10), date(2026, 3, 10)))
	assert.Equal(t, 1, DaysBetween(date(2026, 3, 10), date(2026, 3, 11)))
	assert.Equal(t, -1, DaysBetween(date(2026, 3, 11), date(2026, 3, 10)))
	assert.Equal(t, 31, DaysBetween(date(2026, 2, 28), date(2026, 3, 31)))
}
