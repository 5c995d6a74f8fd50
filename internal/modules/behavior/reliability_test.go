package behavior

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func profileWith(t *testing.T, counts map[string][]float64) *Profile {
	t.Helper()
	engine := testEngine()
	profile := NewProfile(1)
	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	for category, amounts := range counts {
		for _, amount := range amounts {
			engine.Update(profile, category, amount, now)
		}
	}
	return profile
}

func repeated(amount float64, n int) []float64 {
	out := make([]float64, n)
	for i := range out {
		out[i] = amount
	}
	return out
}

func TestReliabilityScoreUnknownCategory(t *testing.T) {
	profile := NewProfile(1)
	assert.Equal(t, 0.0, ReliabilityScore(profile, "GROCERIES"))
	assert.Equal(t, 0.0, ReliabilityScore(nil, "GROCERIES"))
}

func TestReliabilityGrowsWithCount(t *testing.T) {
	one := profileWith(t, map[string][]float64{"GROCERIES": repeated(50, 1)})
	ten := profileWith(t, map[string][]float64{"GROCERIES": repeated(50, 10)})

	assert.Less(t, ReliabilityScore(one, "GROCERIES"), ReliabilityScore(ten, "GROCERIES"))
}

func TestReliabilitySaturatesAtHighCounts(t *testing.T) {
	twenty := profileWith(t, map[string][]float64{"GROCERIES": repeated(50, 20)})
	hundred := profileWith(t, map[string][]float64{"GROCERIES": repeated(50, 100)})

	diff := ReliabilityScore(hundred, "GROCERIES") - ReliabilityScore(twenty, "GROCERIES")
	assert.GreaterOrEqual(t, diff, 0.0)
	assert.Less(t, diff, 0.01)
}

func TestReliabilityConsistencyComponent(t *testing.T) {
	steady := profileWith(t, map[string][]float64{"UTILITIES": repeated(80, 10)})
	erratic := profileWith(t, map[string][]float64{
		"ENTERTAINMENT": {5, 900, 12, 700, 3, 850, 9, 920, 6, 880},
	})

	assert.Greater(t,
		ReliabilityScore(steady, "UTILITIES"),
		ReliabilityScore(erratic, "ENTERTAINMENT"))
}

func TestRareCategories(t *testing.T) {
	profile := profileWith(t, map[string][]float64{
		"GROCERIES": repeated(50, 5),
		"TRAVEL":    repeated(400, 1),
		"GIFTS":     repeated(30, 2),
	})

	rare := RareCategories(profile, rareCountThreshold)
	assert.Equal(t, []string{"GIFTS", "TRAVEL"}, rare)
}

func TestShouldIncludeInSimulation(t *testing.T) {
	profile := profileWith(t, map[string][]float64{
		"GROCERIES": repeated(50, 10),
		"TRAVEL":    repeated(400, 1),
	})

	assert.True(t, ShouldIncludeInSimulation(profile, "GROCERIES"))
	assert.False(t, ShouldIncludeInSimulation(profile, "TRAVEL"))
	assert.False(t, ShouldIncludeInSimulation(profile, "UNKNOWN"))
	assert.False(t, ShouldIncludeInSimulation(nil, "GROCERIES"))
}

func TestCategorySummaries(t *testing.T) {
	profile := profileWith(t, map[string][]float64{
		"GROCERIES": {100, 200, 300, 400, 500},
		"TRAVEL":    {400},
	})

	summaries := CategorySummaries(profile)
	require.Len(t, summaries, 2)

	groceries := summaries["GROCERIES"]
	assert.Equal(t, 5.0, groceries.Count)
	assert.InDelta(t, 300.0, groceries.Mean, 1e-9)
	assert.False(t, groceries.IsRare)
	assert.True(t, groceries.IncludeInSimulation)

	travel := summaries["TRAVEL"]
	assert.True(t, travel.IsRare)
	assert.False(t, travel.IncludeInSimulation)
}

func TestFilterForAnalysisDropsRareAndUnreliable(t *testing.T) {
	profile := profileWith(t, map[string][]float64{
		"GROCERIES": repeated(50, 10),
		"TRAVEL":    repeated(400, 1),
	})

	filtered := FilterForAnalysis(profile, 0.3)
	assert.Contains(t, filtered, "GROCERIES")
	assert.NotContains(t, filtered, "TRAVEL")
}

func TestEstablishedCategoriesSorted(t *testing.T) {
	profile := profileWith(t, map[string][]float64{
		"UTILITIES": repeated(80, 15),
		"GROCERIES": repeated(50, 15),
		"TRAVEL":    repeated(400, 1),
	})

	established := EstablishedCategories(profile, 0.5)
	assert.Equal(t, []string{"GROCERIES", "UTILITIES"}, established)
}
