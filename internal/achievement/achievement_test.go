package achievement

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func idsOf(achievements []Achievement) []string {
	ids := make([]string, 0, len(achievements))
	for _, a := range achievements {
		ids = append(ids, a.ID)
	}
	return ids
}

func TestCatalogIDsAreUnique(t *testing.T) {
	seen := make(map[string]bool)
	for _, a := range Catalog() {
		require.False(t, seen[a.ID], "duplicate catalog id %s", a.ID)
		seen[a.ID] = true
		assert.Greater(t, a.Threshold, 0)
	}
}

func TestEvaluate_FirstWorkout(t *testing.T) {
	due := Evaluate(Catalog(), nil, 1, 1)

	assert.ElementsMatch(t, []string{"first_workout"}, idsOf(due))
}

func TestEvaluate_CrossingMultipleThresholdsAtOnce(t *testing.T) {
	// A user whose counters jumped past several milestones (e.g. after an
	// import) unlocks all of them in one pass.
	due := Evaluate(Catalog(), nil, 12, 7)

	assert.ElementsMatch(t,
		[]string{"first_workout", "workout_10", "streak_3", "streak_7"},
		idsOf(due))
}

func TestEvaluate_AlreadyUnlockedAreSkipped(t *testing.T) {
	unlocked := map[string]bool{
		"first_workout": true,
		"workout_10":    true,
		"streak_3":      true,
	}

	due := Evaluate(Catalog(), unlocked, 12, 7)

	assert.ElementsMatch(t, []string{"streak_7"}, idsOf(due))
}

func TestEvaluate_Idempotent(t *testing.T) {
	unlocked := make(map[string]bool)

	first := Evaluate(Catalog(), unlocked, 25, 14)
	require.NotEmpty(t, first)
	for _, a := range first {
		unlocked[a.ID] = true
	}

	second := Evaluate(Catalog(), unlocked, 25, 14)
	assert.Empty(t, second, "same counters must not unlock anything twice")
}

func TestEvaluate_StreakResetDoesNotRelock(t *testing.T) {
	unlocked := map[string]bool{"first_workout": true, "streak_3": true}

	// Streak dropped back to 1; streak_3 stays unlocked and nothing new fires.
	due := Evaluate(Catalog(), unlocked, 5, 1)

	assert.Empty(t, due)
}

func TestEvaluate_BelowEveryThreshold(t *testing.T) {
	due := Evaluate(Catalog(), nil, 0, 0)

	assert.Empty(t, due)
}

func TestIsStreakMilestone(t *testing.T) {
	catalog := Catalog()

	assert.True(t, IsStreakMilestone(catalog, 3))
	assert.True(t, IsStreakMilestone(catalog, 7))
	assert.True(t, IsStreakMilestone(catalog, 30))

	assert.False(t, IsStreakMilestone(catalog, 4))
	assert.False(t, IsStreakMilestone(catalog, 0))
	// Completion thresholds must not count as streak milestones.
	assert.False(t, IsStreakMilestone(catalog, 10))
}

func TestEvaluate_CustomCatalog(t *testing.T) {
	catalog := []Achievement{
		{ID: "streak_100", Name: "Centurião", CriteriaType: CriteriaStreak, Threshold: 100},
	}

	assert.Empty(t, Evaluate(catalog, nil, 500, 99))
	assert.ElementsMatch(t, []string{"streak_100"}, idsOf(Evaluate(catalog, nil, 0, 100)))
}
