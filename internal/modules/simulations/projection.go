package simulations

import (
	"encoding/binary"
	"fmt"
	"hash/fnv"
	"math"
	"sort"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/finpulse/finpulse/internal/domain"
	"github.com/finpulse/finpulse/internal/modules/behavior"
)

const (
	maxProjectionMonths = 24

	// Natural variation band applied to each projected amount.
	variationBound = 0.05

	// Per-month confidence decay and its floor.
	projectionConfidenceDecay = 0.03
	projectionConfidenceFloor = 0.5
)

// Projector produces month-by-month spending projections from the profile's
// category means.
type Projector struct {
	log zerolog.Logger
}

// NewProjector creates a new spending projector
func NewProjector(log zerolog.Logger) *Projector {
	return &Projector{
		log: log.With().Str("service", "spending_projector").Logger(),
	}
}

// Project applies optional per-category percentage changes to the baseline
// means and projects each month with a small deterministic variation, so
// identical inputs always produce identical outputs.
func (p *Projector) Project(profile *behavior.Profile, months int, changes map[string]float64, now time.Time) (*ProjectionResult, error) {
	if months < 1 || months > maxProjectionMonths {
		return nil, domain.InvalidInputf("projection months must be between 1 and %d, got %d", maxProjectionMonths, months)
	}
	if len(profile.CategoryStats) == 0 {
		return nil, fmt.Errorf("%w: no spending history to project from", domain.ErrInsufficientData)
	}
	for category, pct := range changes {
		if math.IsNaN(pct) || math.IsInf(pct, 0) {
			return nil, domain.InvalidInputf("change for category %q must be a finite number", category)
		}
		if profile.Stat(category) == nil {
			return nil, domain.InvalidInputf("category %q not found in your spending history", category)
		}
	}

	categories := make([]string, 0, len(profile.CategoryStats))
	for category := range profile.CategoryStats {
		categories = append(categories, category)
	}
	sort.Strings(categories)

	baseline := baselineMonthly(profile)

	result := &ProjectionResult{
		BaselineMonthly:  baseline,
		ProjectionMonths: months,
		TotalBaseline:    baseline * float64(months),
	}

	var cumulativeChange float64
	for month := 1; month <= months; month++ {
		projection := MonthlyProjection{
			Month:             month,
			MonthLabel:        now.AddDate(0, month, 0).Format("January 2006"),
			CategoryBreakdown: make(map[string]float64, len(categories)),
			Confidence:        projectionConfidence(month),
		}

		var monthTotal float64
		for _, category := range categories {
			base := profile.Stat(category).Mean
			adjusted := base * (1 + changes[category]/100)
			projected := adjusted * (1 + variation(month, category))
			projected = math.Round(projected*100) / 100

			projection.CategoryBreakdown[category] = projected
			monthTotal += projected
		}

		projection.ProjectedSpending = math.Round(monthTotal*100) / 100
		cumulativeChange += monthTotal - baseline
		projection.CumulativeChange = math.Round(cumulativeChange*100) / 100

		result.MonthlyProjections = append(result.MonthlyProjections, projection)
		result.TotalProjected += projection.ProjectedSpending
	}

	result.CumulativeChange = math.Round((result.TotalProjected-result.TotalBaseline)*100) / 100
	result.AnnualImpact = math.Round(result.CumulativeChange/float64(months)*12*100) / 100
	result.TrendAnalysis = trendAnalysis(changes)
	result.ConfidenceLevel = horizonConfidenceLevel(months)
	result.KeyInsights = keyInsights(result, changes)
	result.Chart = buildChart(result, baseline)

	return result, nil
}

// variation maps a month/category pair to a deterministic perturbation in
// [-variationBound, +variationBound] via FNV-1a, replacing wall-clock
// randomness so repeat calls are reproducible.
func variation(month int, category string) float64 {
	h := fnv.New64a()
	var buf [8]byte
	binary.BigEndian.PutUint64(buf[:], uint64(month))
	h.Write(buf[:])
	h.Write([]byte(category))

	unit := float64(h.Sum64()) / float64(math.MaxUint64)
	return (unit*2 - 1) * variationBound
}

func projectionConfidence(month int) float64 {
	c := 1.0 - float64(month)*projectionConfidenceDecay
	if c < projectionConfidenceFloor {
		return projectionConfidenceFloor
	}
	return c
}

func trendAnalysis(changes map[string]float64) string {
	if len(changes) == 0 {
		return "Stable baseline projection with natural variations"
	}
	var sum float64
	for _, pct := range changes {
		sum += pct
	}
	avg := sum / float64(len(changes))
	switch {
	case avg < -5:
		return "Decreasing trend with planned reductions"
	case avg > 5:
		return "Increasing trend with planned expansions"
	default:
		return "Stable spending with minor adjustments"
	}
}

// horizonConfidenceLevel buckets the horizon into a qualitative label
func horizonConfidenceLevel(months int) string {
	switch {
	case months <= 3:
		return "High"
	case months <= 6:
		return "Moderate"
	case months <= 12:
		return "Low"
	default:
		return "Very Low"
	}
}

func keyInsights(result *ProjectionResult, changes map[string]float64) []string {
	insights := []string{
		fmt.Sprintf("Total projected spending over %d months: %.2f",
			result.ProjectionMonths, result.TotalProjected),
	}

	if result.CumulativeChange != 0 {
		word := "increase"
		if result.CumulativeChange < 0 {
			word = "savings"
		}
		insights = append(insights, fmt.Sprintf(
			"Expected %s: %.2f compared to baseline", word, math.Abs(result.CumulativeChange)))
	}

	if len(changes) > 0 {
		categories := make([]string, 0, len(changes))
		for category := range changes {
			categories = append(categories, category)
		}
		sort.Strings(categories)

		mostReduced, mostIncreased := categories[0], categories[0]
		for _, category := range categories {
			if changes[category] < changes[mostReduced] {
				mostReduced = category
			}
			if changes[category] > changes[mostIncreased] {
				mostIncreased = category
			}
		}
		if changes[mostReduced] < 0 {
			insights = append(insights, fmt.Sprintf(
				"Largest planned reduction: %s (%.0f%%)", mostReduced, changes[mostReduced]))
		}
		if changes[mostIncreased] > 0 {
			insights = append(insights, fmt.Sprintf(
				"Largest planned increase: %s (%.0f%%)", mostIncreased, changes[mostIncreased]))
		}
	}

	insights = append(insights, fmt.Sprintf(
		"Confidence decreases over time - %s confidence for this time horizon",
		strings.ToLower(result.ConfidenceLevel)))
	return insights
}

func buildChart(result *ProjectionResult, baseline float64) ProjectionChart {
	n := len(result.MonthlyProjections)
	chart := ProjectionChart{
		Months:           make([]string, n),
		Projected:        make([]float64, n),
		Baseline:         make([]float64, n),
		CumulativeChange: make([]float64, n),
		Confidence:       make([]float64, n),
	}
	for i, m := range result.MonthlyProjections {
		chart.Months[i] = m.MonthLabel
		chart.Projected[i] = m.ProjectedSpending
		chart.Baseline[i] = baseline
		chart.CumulativeChange[i] = m.CumulativeChange
		chart.Confidence[i] = m.Confidence
	}
	return chart
}
