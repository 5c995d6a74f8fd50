package simulations

import (
	"fmt"
	"math"
	"sort"
	"strings"

	"github.com/rs/zerolog"

	"github.com/finpulse/finpulse/internal/domain"
	"github.com/finpulse/finpulse/internal/modules/behavior"
)

const (
	defaultElasticity      = 0.3
	impulseScoreThreshold  = 0.6
	balancedDeltaTolerance = 0.01
)

// ReallocationSimulator scores the feasibility of moving money between
// categories against the user's historical variability.
type ReallocationSimulator struct {
	log zerolog.Logger
}

// NewReallocationSimulator creates a new reallocation simulator
func NewReallocationSimulator(log zerolog.Logger) *ReallocationSimulator {
	return &ReallocationSimulator{
		log: log.With().Str("service", "reallocation_simulator").Logger(),
	}
}

// Simulate validates the proposed deltas and classifies each into a
// feasibility band. Validation fails fast with the category and rule that
// broke it: reductions must target known discretionary categories, increases
// must go to essentials or beneficial sinks.
func (s *ReallocationSimulator) Simulate(profile *behavior.Profile, reallocations map[string]float64) (*ReallocationResult, error) {
	if len(reallocations) == 0 {
		return nil, domain.InvalidInputf("reallocations must not be empty")
	}

	categories := make([]string, 0, len(reallocations))
	for category, change := range reallocations {
		if math.IsNaN(change) || math.IsInf(change, 0) {
			return nil, domain.InvalidInputf("change for category %q must be a finite number", category)
		}
		categories = append(categories, category)
	}
	sort.Strings(categories)

	if err := validateReallocations(profile, categories, reallocations); err != nil {
		return nil, err
	}

	var (
		details  []CategoryReallocation
		warnings = []string{}
		netDelta float64
	)

	for _, category := range categories {
		change := reallocations[category]
		netDelta += change

		if (category == "SAVINGS" || category == "OTHER") && change > 0 && profile.Stat(category) == nil {
			// Pure addition to a sink with no spending baseline.
			details = append(details, CategoryReallocation{
				Category:       category,
				ChangeAmount:   change,
				NewMonthly:     change,
				ChangePercent:  100,
				Feasibility:    FeasibilityComfortable,
				ImpactNote:     fmt.Sprintf("Allocating %.2f to %s", change, category),
			})
			continue
		}

		var current float64
		if stat := profile.Stat(category); stat != nil {
			current = stat.Mean
		}
		var changePercent float64
		if current > 0 {
			changePercent = change / current * 100
		}

		elasticity, ok := profile.Elasticity[category]
		if !ok {
			elasticity = defaultElasticity
		}

		detail := CategoryReallocation{
			Category:       category,
			CurrentMonthly: current,
			ChangeAmount:   change,
			NewMonthly:     current + change,
			ChangePercent:  changePercent,
		}

		if change < 0 {
			detail.Feasibility, detail.ImpactNote = classifyReduction(
				category, math.Abs(changePercent), elasticity*100, &warnings)
		} else {
			detail.Feasibility, detail.ImpactNote = classifyIncrease(
				category, changePercent, &warnings)
		}

		details = append(details, detail)
	}

	result := &ReallocationResult{
		BaselineMonthly:       baselineMonthly(profile),
		IsBalanced:            math.Abs(netDelta) < balancedDeltaTolerance,
		Reallocations:         details,
		FeasibilityAssessment: overallAssessment(details),
		Warnings:              warnings,
		Recommendations:       buildRecommendations(profile, details),
		VisualData:            visualData(details),
	}
	result.ProjectedMonthly = result.BaselineMonthly + netDelta

	return result, nil
}

func validateReallocations(profile *behavior.Profile, categories []string, reallocations map[string]float64) error {
	for _, category := range categories {
		change := reallocations[category]

		if change < 0 {
			if domain.IsEssential(category) {
				return domain.NewPolicyError(category,
					"essential categories cannot be reduced; cut discretionary spending instead")
			}
			if profile.Stat(category) == nil {
				return domain.InvalidInputf("category %q not found in your spending history", category)
			}
			continue
		}

		if change > 0 {
			if !domain.IsEssential(category) && !domain.IsBeneficialSink(category) {
				return domain.NewPolicyError(category,
					"increases must go to essentials, savings, debt payment or investment")
			}
		}

		if profile.Stat(category) == nil && !domain.IsBeneficialSink(category) {
			return domain.InvalidInputf("category %q not found in your spending history", category)
		}
	}
	return nil
}

// classifyReduction compares the requested cut against the category's
// elasticity ceiling (elasticity scaled to a percentage of the mean).
func classifyReduction(category string, reductionPct, ceilingPct float64, warnings *[]string) (string, string) {
	switch {
	case reductionPct <= ceilingPct*0.5:
		return FeasibilityComfortable, "Easily achievable reduction"
	case reductionPct <= ceilingPct:
		return FeasibilityModerate, "Achievable with some effort"
	case reductionPct <= ceilingPct*1.5:
		*warnings = append(*warnings, fmt.Sprintf(
			"%s: Reduction of %.0f%% may be difficult (max comfortable: %.0f%%)",
			category, reductionPct, ceilingPct))
		return FeasibilityDifficult, "Challenging - requires significant lifestyle changes"
	default:
		*warnings = append(*warnings, fmt.Sprintf(
			"%s: Reduction of %.0f%% exceeds recommended maximum", category, reductionPct))
		return FeasibilityUnrealistic, "Likely unrealistic given your spending patterns"
	}
}

func classifyIncrease(category string, changePercent float64, warnings *[]string) (string, string) {
	if domain.IsEssential(category) {
		switch {
		case changePercent <= 20:
			return FeasibilityComfortable, "Reasonable increase for essential category"
		case changePercent <= 40:
			return FeasibilityModerate, "Noticeable increase - ensure it's necessary"
		default:
			*warnings = append(*warnings, fmt.Sprintf(
				"%s: Increase of %.0f%% is substantial for an essential category",
				category, changePercent))
			return FeasibilityDifficult, "Large increase for essential spending"
		}
	}
	switch {
	case changePercent <= 50:
		return FeasibilityComfortable, "Comfortable increase"
	case changePercent <= 100:
		return FeasibilityModerate, "Significant lifestyle upgrade"
	default:
		return FeasibilityDifficult, "Major spending increase"
	}
}

func overallAssessment(details []CategoryReallocation) string {
	scores := map[string]int{
		FeasibilityComfortable: 0,
		FeasibilityModerate:    1,
		FeasibilityDifficult:   2,
		FeasibilityUnrealistic: 3,
	}
	var total int
	for _, d := range details {
		total += scores[d.Feasibility]
	}
	avgDifficulty := float64(total) / float64(len(details))

	switch {
	case avgDifficulty <= 0.5:
		return "This reallocation is comfortable and achievable"
	case avgDifficulty <= 1.5:
		return "This reallocation is moderately challenging but achievable"
	case avgDifficulty <= 2.5:
		return "This reallocation will be difficult and requires strong commitment"
	default:
		return "This reallocation may be unrealistic - consider a more moderate approach"
	}
}

func buildRecommendations(profile *behavior.Profile, details []CategoryReallocation) []string {
	recommendations := []string{}

	var increases, decreases int
	var movedAmount float64
	for _, d := range details {
		if d.ChangeAmount > 0 {
			increases++
		} else if d.ChangeAmount < 0 {
			decreases++
			movedAmount += math.Abs(d.ChangeAmount)
		}
	}
	if increases > 0 && decreases > 0 {
		recommendations = append(recommendations, fmt.Sprintf(
			"You're moving %.2f from %d categories to %d categories",
			movedAmount, decreases, increases))
	}

	var hardest []string
	for _, d := range details {
		if d.Feasibility == FeasibilityDifficult || d.Feasibility == FeasibilityUnrealistic {
			hardest = append(hardest, d.Category)
		}
	}
	if len(hardest) > 0 {
		if len(hardest) > 2 {
			hardest = hardest[:2]
		}
		recommendations = append(recommendations, fmt.Sprintf(
			"Consider adjusting %s reallocations for better success", strings.Join(hardest, ", ")))
	}

	if profile.ImpulseScore > impulseScoreThreshold {
		recommendations = append(recommendations,
			"Your impulse score suggests focusing on discretionary spending reductions first")
	}

	return recommendations
}

func visualData(details []CategoryReallocation) ReallocationVisualData {
	data := ReallocationVisualData{
		Categories:  make([]string, len(details)),
		Current:     make([]float64, len(details)),
		Changes:     make([]float64, len(details)),
		New:         make([]float64, len(details)),
		Feasibility: make([]string, len(details)),
	}
	for i, d := range details {
		data.Categories[i] = d.Category
		data.Current[i] = d.CurrentMonthly
		data.Changes[i] = d.ChangeAmount
		data.New[i] = d.NewMonthly
		data.Feasibility[i] = d.Feasibility
	}
	return data
}

// baselineMonthly sums the mean monthly spend across all tracked categories
func baselineMonthly(profile *behavior.Profile) float64 {
	var total float64
	for _, stat := range profile.CategoryStats {
		total += stat.Mean
	}
	return total
}
