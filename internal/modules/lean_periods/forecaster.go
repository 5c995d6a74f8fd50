package lean_periods

import (
	"fmt"

	"github.com/rs/zerolog"

	"github.com/finpulse/finpulse/internal/domain"
	"github.com/finpulse/finpulse/pkg/formulas"
)

const (
	minForecastPeriods = 3

	// Confidence decays linearly with horizon and never drops below the floor.
	confidenceStart = 1.0
	confidenceDecay = 0.1
	confidenceFloor = 0.3
)

// Forecaster projects future cash flow as best/likely/worst scenarios
type Forecaster struct {
	volatilityRiskThreshold float64
	log                     zerolog.Logger
}

// NewForecaster creates a new cash flow forecaster
func NewForecaster(volatilityRiskThreshold float64, log zerolog.Logger) *Forecaster {
	return &Forecaster{
		volatilityRiskThreshold: volatilityRiskThreshold,
		log:                     log.With().Str("service", "lean_periods_forecaster").Logger(),
	}
}

// Forecast projects the next `horizon` periods from the aggregated history.
// The likely net flow repeats the historical average; best and worst skew it
// by one income-volatility unit (avg income times income CV), which keeps
// worst <= likely <= best for any non-negative spread. The reported overall
// confidence is the nearest period's.
func (f *Forecaster) Forecast(periods []CashFlowPeriod, horizon int, currentBalance float64) (*Forecast, error) {
	if horizon < 1 || horizon > 12 {
		return nil, domain.InvalidInputf("forecast horizon must be between 1 and 12, got %d", horizon)
	}
	if len(periods) < minForecastPeriods {
		return nil, fmt.Errorf("%w: need at least %d periods, have %d",
			domain.ErrInsufficientData, minForecastPeriods, len(periods))
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
	spread := avgIncome * incomeCV

	likely := avgIncome - avgExpenses

	forecast := &Forecast{
		Scenarios:          make([]ForecastScenario, 0, horizon),
		Warnings:           []string{},
		IncomeVolatility:   incomeCV,
		AvgMonthlyIncome:   avgIncome,
		AvgMonthlyExpenses: avgExpenses,
		CurrentBalance:     currentBalance,
	}

	balances := ScenarioValues{Best: currentBalance, Likely: currentBalance, Worst: currentBalance}
	negativeBalanceSeen := map[string]bool{}

	for i := 1; i <= horizon; i++ {
		scenario := ForecastScenario{
			Period:      i,
			MonthOffset: i,
			NetCashFlow: ScenarioValues{
				Best:   likely + spread,
				Likely: likely,
				Worst:  likely - spread,
			},
			Confidence: confidence(i),
		}

		balances.Best += scenario.NetCashFlow.Best
		balances.Likely += scenario.NetCashFlow.Likely
		balances.Worst += scenario.NetCashFlow.Worst
		scenario.ProjectedBalance = balances

		scenario.IsLeanPeriod = scenario.NetCashFlow.Likely < 0 || balances.Likely < 0

		for _, sc := range []struct {
			name    string
			balance float64
		}{
			{"worst", balances.Worst},
			{"likely", balances.Likely},
			{"best", balances.Best},
		} {
			name, balance := sc.name, sc.balance
			if balance < 0 && !negativeBalanceSeen[name] {
				negativeBalanceSeen[name] = true
				forecast.Warnings = append(forecast.Warnings, fmt.Sprintf(
					"Projected balance goes negative in the %s scenario by month %d", name, i))
			}
		}

		forecast.Scenarios = append(forecast.Scenarios, scenario)
	}

	if incomeCV > f.volatilityRiskThreshold {
		forecast.Warnings = append(forecast.Warnings, fmt.Sprintf(
			"Income volatility is high (%.0f%% of average income); forecasts are less reliable", incomeCV*100))
	}

	forecast.Confidence = forecast.Scenarios[0].Confidence

	f.log.Debug().
		Int("horizon", horizon).
		Float64("income_volatility", incomeCV).
		Int("warnings", len(forecast.Warnings)).
		Msg("Generated cash flow forecast")

	return forecast, nil
}

func confidence(period int) float64 {
	c := confidenceStart - confidenceDecay*float64(period)
	if c < confidenceFloor {
		return confidenceFloor
	}
	return c
}
