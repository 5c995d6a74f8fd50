package behavior

import (
	"math"
	"sort"
)

// Category reliability scoring. Rare, one-off categories would otherwise
// pollute simulations; these helpers grade how established a category is.

const (
	// rareCountThreshold is the minimum count for a category to be
	// considered established rather than noise
	rareCountThreshold = 3

	// countSaturation is the transaction count at which the count component
	// of the reliability score reaches its ceiling
	countSaturation = 20.0
)

// ReliabilityScore grades a category 0-1. Count dominates (log-scaled,
// saturating at countSaturation); spending consistency contributes the rest.
func ReliabilityScore(p *Profile, category string) float64 {
	if p == nil {
		return 0
	}
	stat := p.Stat(category)
	if stat == nil {
		return 0
	}

	countScore := math.Log1p(stat.Count) / math.Log1p(countSaturation)
	if countScore > 1.0 {
		countScore = 1.0
	}

	consistencyScore := 0.5
	if stat.Mean > 0 {
		cv := stat.StdDev / stat.Mean
		if cv > 1.0 {
			cv = 1.0
		}
		consistencyScore = 1.0 - cv
	}

	return 0.7*countScore + 0.3*consistencyScore
}

// RareCategories returns categories with fewer than threshold transactions
func RareCategories(p *Profile, threshold float64) []string {
	if p == nil {
		return nil
	}
	var rare []string
	for category, stat := range p.CategoryStats {
		if stat.Count < threshold {
			rare = append(rare, category)
		}
	}
	sort.Strings(rare)
	return rare
}

// EstablishedCategories returns categories at or above the reliability cutoff
func EstablishedCategories(p *Profile, minReliability float64) []string {
	if p == nil {
		return nil
	}
	var established []string
	for category := range p.CategoryStats {
		if ReliabilityScore(p, category) >= minReliability {
			established = append(established, category)
		}
	}
	sort.Strings(established)
	return established
}

// ShouldIncludeInSimulation reports whether a category has enough signal to
// participate in projections and feasibility analysis
func ShouldIncludeInSimulation(p *Profile, category string) bool {
	if p == nil {
		return false
	}
	stat := p.Stat(category)
	if stat == nil {
		return false
	}
	if stat.Count < rareCountThreshold {
		return false
	}
	return ReliabilityScore(p, category) >= 0.3
}

// CategorySummaries builds the per-category metadata view
func CategorySummaries(p *Profile) map[string]CategorySummary {
	if p == nil {
		return map[string]CategorySummary{}
	}
	summaries := make(map[string]CategorySummary, len(p.CategoryStats))
	for category, stat := range p.CategoryStats {
		reliability := ReliabilityScore(p, category)
		summaries[category] = CategorySummary{
			Count:               stat.Count,
			Mean:                stat.Mean,
			StdDev:              stat.StdDev,
			Min:                 stat.Min,
			Max:                 stat.Max,
			Reliability:         math.Round(reliability*1000) / 1000,
			Elasticity:          p.Elasticity[category],
			IsRare:              stat.Count < rareCountThreshold,
			IsEstablished:       reliability >= 0.5,
			IncludeInSimulation: ShouldIncludeInSimulation(p, category),
		}
	}
	return summaries
}

// FilterForAnalysis returns the category stats that are safe to feed into
// simulations, dropping rare and unreliable categories
func FilterForAnalysis(p *Profile, minReliability float64) map[string]*CategoryStat {
	filtered := make(map[string]*CategoryStat)
	if p == nil {
		return filtered
	}
	for category, stat := range p.CategoryStats {
		if stat.Count < rareCountThreshold {
			continue
		}
		if ReliabilityScore(p, category) < minReliability {
			continue
		}
		filtered[category] = stat
	}
	return filtered
}
