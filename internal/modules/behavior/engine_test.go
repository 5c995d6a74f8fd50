package behavior

import (
	"math"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testEngine() *Engine {
	return NewEngine(DefaultPolicy(), zerolog.Nop())
}

func TestEngineUpdateBasicStats(t *testing.T) {
	engine := testEngine()
	profile := NewProfile(1)
	now := time.Date(2025, 1, 15, 12, 0, 0, 0, time.UTC)

	amounts := []float64{100, 200, 300, 400, 500}
	for _, amount := range amounts {
		engine.Update(profile, "GROCERIES", amount, now)
	}

	stat := profile.Stat("GROCERIES")
	require.NotNil(t, stat)
	assert.Equal(t, 5.0, stat.Count)
	assert.InDelta(t, 300.0, stat.Mean, 1e-9)
	assert.Equal(t, 100.0, stat.Min)
	assert.Equal(t, 500.0, stat.Max)
	assert.InDelta(t, 1500.0, stat.Sum, 1e-9)
	assert.InDelta(t, 20000.0, stat.Variance(), 1e-6)
	assert.InDelta(t, math.Sqrt(20000.0), stat.StdDev, 1e-6)
	assert.Equal(t, int64(5), profile.TransactionCount)
}

func TestEngineIncrementalMatchesBatch(t *testing.T) {
	engine := testEngine()
	profile := NewProfile(1)
	now := time.Date(2025, 3, 1, 9, 0, 0, 0, time.UTC)

	amounts := []float64{12.50, 87.20, 45.00, 45.00, 130.75, 8.99, 61.40}
	for _, amount := range amounts {
		engine.Update(profile, "DINING", amount, now)
	}

	var sum float64
	for _, a := range amounts {
		sum += a
	}
	mean := sum / float64(len(amounts))
	var sq float64
	for _, a := range amounts {
		sq += (a - mean) * (a - mean)
	}
	variance := sq / float64(len(amounts))

	stat := profile.Stat("DINING")
	require.NotNil(t, stat)
	assert.InDelta(t, mean, stat.Mean, 1e-9)
	assert.InDelta(t, variance, stat.Variance(), 1e-9)
	assert.InDelta(t, math.Sqrt(variance), stat.StdDev, 1e-9)
}

func TestEngineCategoryIsolation(t *testing.T) {
	engine := testEngine()
	profile := NewProfile(1)
	now := time.Now()

	engine.Update(profile, "GROCERIES", 100, now)
	engine.Update(profile, "DINING", 50, now)
	engine.Update(profile, "GROCERIES", 200, now)

	groceries := profile.Stat("GROCERIES")
	dining := profile.Stat("DINING")
	require.NotNil(t, groceries)
	require.NotNil(t, dining)

	assert.Equal(t, 2.0, groceries.Count)
	assert.InDelta(t, 150.0, groceries.Mean, 1e-9)
	assert.Equal(t, 1.0, dining.Count)
	assert.InDelta(t, 50.0, dining.Mean, 1e-9)
	assert.Equal(t, int64(3), profile.TransactionCount)
}

func TestEngineSingleTransactionHasZeroVariance(t *testing.T) {
	engine := testEngine()
	profile := NewProfile(1)

	engine.Update(profile, "SHOPPING", 42.0, time.Now())

	stat := profile.Stat("SHOPPING")
	require.NotNil(t, stat)
	assert.Equal(t, 1.0, stat.Count)
	assert.Equal(t, 42.0, stat.Mean)
	assert.Equal(t, 42.0, stat.Min)
	assert.Equal(t, 42.0, stat.Max)
	assert.Equal(t, 0.0, stat.Variance())
	assert.Equal(t, 0.0, stat.StdDev)
}

func TestEngineZeroAndLargeAmounts(t *testing.T) {
	engine := testEngine()
	profile := NewProfile(1)
	now := time.Now()

	engine.Update(profile, "OTHER", 0, now)
	engine.Update(profile, "OTHER", 1e9, now)

	stat := profile.Stat("OTHER")
	require.NotNil(t, stat)
	assert.Equal(t, 0.0, stat.Min)
	assert.Equal(t, 1e9, stat.Max)
	assert.InDelta(t, 5e8, stat.Mean, 1e-3)
	assert.False(t, math.IsNaN(stat.StdDev))
	assert.False(t, math.IsInf(stat.StdDev, 0))
}

func TestEngineDecayNotAppliedWithinGap(t *testing.T) {
	engine := testEngine()
	profile := NewProfile(1)
	start := time.Date(2025, 1, 1, 12, 0, 0, 0, time.UTC)

	engine.Update(profile, "GROCERIES", 100, start)
	decayed := engine.Update(profile, "GROCERIES", 100, start.Add(6*24*time.Hour))

	assert.False(t, decayed)
	assert.Equal(t, 2.0, profile.Stat("GROCERIES").Count)
}

func TestEngineDecayAppliedAfterGap(t *testing.T) {
	engine := testEngine()
	profile := NewProfile(1)
	start := time.Date(2025, 1, 1, 12, 0, 0, 0, time.UTC)

	engine.Update(profile, "GROCERIES", 100, start)
	decayed := engine.Update(profile, "GROCERIES", 100, start.Add(8*24*time.Hour))

	assert.True(t, decayed)
	// Decay shrank the first observation's weight before the second fold.
	stat := profile.Stat("GROCERIES")
	assert.InDelta(t, 0.98+1.0, stat.Count, 1e-9)
	// Identical amounts keep the mean exact regardless of weighting.
	assert.InDelta(t, 100.0, stat.Mean, 1e-9)
}

func TestEngineDecayAppliedOncePerGap(t *testing.T) {
	engine := testEngine()
	profile := NewProfile(1)
	start := time.Date(2025, 1, 1, 12, 0, 0, 0, time.UTC)

	engine.Update(profile, "GROCERIES", 100, start)
	later := start.Add(8 * 24 * time.Hour)
	first := engine.Update(profile, "GROCERIES", 100, later)
	second := engine.Update(profile, "GROCERIES", 100, later.Add(time.Minute))

	assert.True(t, first)
	assert.False(t, second)
}

func TestEngineDecayTouchesAllCategories(t *testing.T) {
	engine := testEngine()
	profile := NewProfile(1)
	start := time.Date(2025, 1, 1, 12, 0, 0, 0, time.UTC)

	engine.Update(profile, "GROCERIES", 100, start)
	engine.Update(profile, "DINING", 50, start)
	engine.Update(profile, "GROCERIES", 100, start.Add(10*24*time.Hour))

	// DINING received no new transaction but still decayed.
	assert.InDelta(t, 0.98, profile.Stat("DINING").Count, 1e-9)
}

func TestEngineDecayPreservesMeanAndExtrema(t *testing.T) {
	engine := testEngine()
	profile := NewProfile(1)
	start := time.Date(2025, 1, 1, 12, 0, 0, 0, time.UTC)

	for _, amount := range []float64{100, 200, 300} {
		engine.Update(profile, "GROCERIES", amount, start)
	}
	before := *profile.Stat("GROCERIES")

	engine.Update(profile, "DINING", 10, start.Add(8*24*time.Hour))

	after := profile.Stat("GROCERIES")
	assert.InDelta(t, before.Mean, after.Mean, 1e-9)
	assert.Equal(t, before.Min, after.Min)
	assert.Equal(t, before.Max, after.Max)
	// Count and M2 scale together, so variance holds steady under decay.
	assert.InDelta(t, before.Variance(), after.Variance(), 1e-9)
}

func TestEngineFirstTransactionNeverDecays(t *testing.T) {
	engine := testEngine()
	profile := NewProfile(1)

	decayed := engine.Update(profile, "GROCERIES", 100, time.Now())
	assert.False(t, decayed)
}

func TestElasticityBoundsAndMonotonicity(t *testing.T) {
	engine := testEngine()

	// Zero CV pins elasticity at the base.
	uniform := NewProfile(1)
	now := time.Now()
	for i := 0; i < 5; i++ {
		engine.Update(uniform, "UTILITIES", 80, now)
	}
	assert.InDelta(t, 0.2, uniform.Elasticity["UTILITIES"], 1e-9)

	// Higher variability never lowers elasticity.
	volatile := NewProfile(2)
	for _, amount := range []float64{5, 500, 10, 800, 3} {
		engine.Update(volatile, "ENTERTAINMENT", amount, now)
	}
	assert.GreaterOrEqual(t, volatile.Elasticity["ENTERTAINMENT"], uniform.Elasticity["UTILITIES"])

	for _, el := range volatile.Elasticity {
		assert.GreaterOrEqual(t, el, 0.0)
		assert.LessOrEqual(t, el, 1.0)
	}
}
