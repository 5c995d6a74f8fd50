package lean_periods

import (
	"fmt"
	"math"

	"github.com/rs/zerolog"

	"github.com/finpulse/finpulse/internal/domain"
	"github.com/finpulse/finpulse/pkg/formulas"
)

// Volatility tiers and their recommended save rates. More volatile income
// warrants a more aggressive buffer.
const (
	lowVolatilityCV    = 0.2
	mediumVolatilityCV = 0.5

	lowSaveRate    = 0.10
	mediumSaveRate = 0.20
	highSaveRate   = 0.30

	// Target fund scaling: up to +50% extra buffer at CV >= 1.
	volatilityBufferScale = 0.5
)

// Advisor derives emergency fund targets and save rates from income volatility
type Advisor struct {
	log zerolog.Logger
}

// NewAdvisor creates a new income smoothing advisor
func NewAdvisor(log zerolog.Logger) *Advisor {
	return &Advisor{log: log.With().Str("service", "lean_periods_advisor").Logger()}
}

// Recommend computes the smoothing plan. Fewer than three periods of history
// yields an explicit insufficient-data result rather than numbers built on
// noise. MonthsToTarget is nil when there is no income to save from.
func (a *Advisor) Recommend(periods []CashFlowPeriod, currentBalance float64, targetMonthsBuffer int) (SmoothingRecommendation, error) {
	if targetMonthsBuffer < 1 || targetMonthsBuffer > 12 {
		return SmoothingRecommendation{}, domain.InvalidInputf(
			"target months buffer must be between 1 and 12, got %d", targetMonthsBuffer)
	}
	if len(periods) < minForecastPeriods {
		return SmoothingRecommendation{
			Status: StatusInsufficientData,
			Message: fmt.Sprintf("Need at least %d periods of transaction history, have %d",
				minForecastPeriods, len(periods)),
			CurrentBalance: currentBalance,
		}, nil
	}

	incomes := make([]float64, len(periods))
	expenses := make([]float64, len(periods))
	for i, p := range periods {
		incomes[i] = p.Income
		expenses[i] = p.Expenses
	}
	avgIncome := formulas.Mean(incomes)
	avgExpenses := formulas.Mean(expenses)
	incomeCV := formulas.CoefficientOfVariation(incomes)

	target := avgExpenses * float64(targetMonthsBuffer) * (1 + volatilityBufferScale*math.Min(incomeCV, 1))
	gap := math.Max(0, target-currentBalance)

	level, saveRate := volatilityTier(incomeCV)
	monthlySave := avgIncome * saveRate

	var monthsToTarget *float64
	if gap == 0 {
		zero := 0.0
		monthsToTarget = &zero
	} else if monthlySave > 0 {
		months := gap / monthlySave
		monthsToTarget = &months
	}

	strategy := buildStrategy(level, gap, monthlySave)

	return SmoothingRecommendation{
		Status:              StatusOK,
		CurrentBalance:      currentBalance,
		TargetEmergencyFund: target,
		EmergencyFundGap:    gap,
		RecommendedSaveRate: saveRate,
		MonthlySaveAmount:   monthlySave,
		MonthsToTarget:      monthsToTarget,
		Strategy:            &strategy,
	}, nil
}

func volatilityTier(cv float64) (string, float64) {
	switch {
	case cv < lowVolatilityCV:
		return "low", lowSaveRate
	case cv < mediumVolatilityCV:
		return "medium", mediumSaveRate
	default:
		return "high", highSaveRate
	}
}

func buildStrategy(level string, gap, monthlySave float64) Strategy {
	strategy := Strategy{VolatilityLevel: level}

	switch level {
	case "low":
		strategy.StrategySummary = "Your income is steady; a modest, consistent buffer keeps you covered."
		strategy.Recommendations = []string{
			"Automate a fixed transfer to savings each month",
			"Review the buffer target once a year",
		}
	case "medium":
		strategy.StrategySummary = "Your income varies month to month; save more in strong months to cover weak ones."
		strategy.Recommendations = []string{
			"Save a larger share of above-average income months",
			"Keep the emergency fund in an account you can access within days",
			"Track which months historically run lean and plan ahead for them",
		}
	default:
		strategy.StrategySummary = "Your income is highly volatile; a large buffer is your main defense against lean periods."
		strategy.Recommendations = []string{
			"Treat savings transfers as a fixed expense in every positive month",
			"Prioritize the emergency fund over discretionary spending increases",
			"Consider diversifying income sources to reduce volatility",
		}
	}

	if gap <= 0 {
		strategy.ActionItems = []string{"Your buffer already meets the target; maintain it"}
		return strategy
	}

	strategy.ActionItems = []string{
		fmt.Sprintf("Close the %.2f buffer gap by saving %.2f per month", gap, monthlySave),
	}
	if level != "low" {
		strategy.ActionItems = append(strategy.ActionItems,
			"Top up the buffer with any windfall income until the target is met")
	}
	return strategy
}
