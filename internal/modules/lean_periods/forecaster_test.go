package lean_periods

import (
	"strings"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/finpulse/finpulse/internal/domain"
)

func testForecaster() *Forecaster {
	return NewForecaster(0.5, zerolog.Nop())
}

func incomePeriods(incomes []float64, expense float64) []CashFlowPeriod {
	periods := make([]CashFlowPeriod, len(incomes))
	for i, income := range incomes {
		start := time.Date(2025, time.Month(i+1), 1, 0, 0, 0, 0, time.UTC)
		periods[i] = CashFlowPeriod{
			PeriodKey: start.Format("2006-01"),
			Start:     start,
			End:       start.AddDate(0, 1, 0),
			Income:    income,
			Expenses:  expense,
			NetFlow:   income - expense,
		}
	}
	return periods
}

func TestForecastScenarioOrdering(t *testing.T) {
	periods := incomePeriods([]float64{3000, 2000, 4000, 3500, 2500}, 2500)

	forecast, err := testForecaster().Forecast(periods, 6, 1000)
	require.NoError(t, err)
	require.Len(t, forecast.Scenarios, 6)

	for _, sc := range forecast.Scenarios {
		assert.LessOrEqual(t, sc.NetCashFlow.Worst, sc.NetCashFlow.Likely)
		assert.LessOrEqual(t, sc.NetCashFlow.Likely, sc.NetCashFlow.Best)
	}
}

func TestForecastConfidenceNonIncreasingWithFloor(t *testing.T) {
	periods := incomePeriods([]float64{3000, 3100, 2900, 3000}, 2500)

	forecast, err := testForecaster().Forecast(periods, 12, 1000)
	require.NoError(t, err)

	prev := 1.0
	for _, sc := range forecast.Scenarios {
		assert.LessOrEqual(t, sc.Confidence, prev)
		assert.GreaterOrEqual(t, sc.Confidence, 0.3)
		prev = sc.Confidence
	}
	// Overall confidence is the nearest period's.
	assert.Equal(t, forecast.Scenarios[0].Confidence, forecast.Confidence)
}

func TestForecastAverages(t *testing.T) {
	periods := incomePeriods([]float64{3000, 2000, 4000}, 2500)

	forecast, err := testForecaster().Forecast(periods, 3, 10000)
	require.NoError(t, err)

	assert.InDelta(t, 3000.0, forecast.AvgMonthlyIncome, 1e-9)
	assert.InDelta(t, 2500.0, forecast.AvgMonthlyExpenses, 1e-9)
	assert.InDelta(t, 500.0, forecast.Scenarios[0].NetCashFlow.Likely, 1e-9)

	// Balance accumulates the likely flow.
	assert.InDelta(t, 10500.0, forecast.Scenarios[0].ProjectedBalance.Likely, 1e-9)
	assert.InDelta(t, 11500.0, forecast.Scenarios[2].ProjectedBalance.Likely, 1e-9)
}

func TestForecastSteadyIncomeCollapsesScenarios(t *testing.T) {
	periods := incomePeriods([]float64{3000, 3000, 3000, 3000}, 2500)

	forecast, err := testForecaster().Forecast(periods, 3, 1000)
	require.NoError(t, err)

	assert.Equal(t, 0.0, forecast.IncomeVolatility)
	sc := forecast.Scenarios[0]
	assert.Equal(t, sc.NetCashFlow.Likely, sc.NetCashFlow.Best)
	assert.Equal(t, sc.NetCashFlow.Likely, sc.NetCashFlow.Worst)
}

func TestForecastNegativeBalanceWarning(t *testing.T) {
	// Spending exceeds income, so the likely balance goes negative quickly.
	periods := incomePeriods([]float64{2000, 2100, 1900}, 2500)

	forecast, err := testForecaster().Forecast(periods, 6, 500)
	require.NoError(t, err)

	require.NotEmpty(t, forecast.Warnings)
	found := false
	for _, w := range forecast.Warnings {
		if strings.Contains(w, "negative") && strings.Contains(w, "likely") {
			found = true
		}
	}
	assert.True(t, found, "expected a likely-scenario negative balance warning, got %v", forecast.Warnings)

	// Lean periods are flagged once the projected balance dips below zero.
	last := forecast.Scenarios[len(forecast.Scenarios)-1]
	assert.True(t, last.IsLeanPeriod)
}

func TestForecastHighVolatilityWarning(t *testing.T) {
	periods := incomePeriods([]float64{500, 6000, 200, 7000}, 2000)

	forecast, err := testForecaster().Forecast(periods, 3, 50000)
	require.NoError(t, err)

	assert.Greater(t, forecast.IncomeVolatility, 0.5)
	require.NotEmpty(t, forecast.Warnings)
	assert.Contains(t, forecast.Warnings[len(forecast.Warnings)-1], "volatility")
}

func TestForecastInsufficientData(t *testing.T) {
	periods := incomePeriods([]float64{3000, 2000}, 2500)

	_, err := testForecaster().Forecast(periods, 3, 1000)
	assert.ErrorIs(t, err, domain.ErrInsufficientData)
}

func TestForecastInvalidHorizon(t *testing.T) {
	periods := incomePeriods([]float64{3000, 2000, 4000}, 2500)

	for _, horizon := range []int{0, -1, 13} {
		_, err := testForecaster().Forecast(periods, horizon, 1000)
		assert.ErrorIs(t, err, domain.ErrInvalidInput)
	}
}
