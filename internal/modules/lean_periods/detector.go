package lean_periods

import (
	"fmt"
	"math"
	"sort"

	"github.com/rs/zerolog"

	"github.com/finpulse/finpulse/pkg/formulas"
)

// Detector classifies aggregated periods as lean using a volatility-aware
// threshold. This is a batch diagnostic over the aggregated history, separate
// from the incremental per-category engine.
type Detector struct {
	sigmaK   float64 // net flow must fall k std devs below the mean
	netFloor float64 // absolute shortfall that is always lean
	log      zerolog.Logger
}

// NewDetector creates a new lean period detector
func NewDetector(sigmaK, netFloor float64, log zerolog.Logger) *Detector {
	return &Detector{
		sigmaK:   sigmaK,
		netFloor: netFloor,
		log:      log.With().Str("service", "lean_periods_detector").Logger(),
	}
}

// AnalyzeLeanPeriods flags lean periods in place and summarizes frequency and
// recurring patterns. A period is lean when its net flow is negative and
// either falls sigmaK standard deviations below the historical mean or is
// more negative than the absolute floor. The floor catches short histories
// where the std dev is still near zero.
func (d *Detector) AnalyzeLeanPeriods(periods []CashFlowPeriod) LeanAnalysis {
	analysis := LeanAnalysis{
		LeanPeriods:  []CashFlowPeriod{},
		TotalPeriods: len(periods),
		Pattern:      Pattern{Description: "no clear pattern"},
	}
	if len(periods) == 0 {
		analysis.Pattern.Description = "insufficient history"
		return analysis
	}

	netFlows := make([]float64, len(periods))
	for i, p := range periods {
		netFlows[i] = p.NetFlow
	}
	mean := formulas.Mean(netFlows)
	stdDev := formulas.StdDev(netFlows)
	threshold := mean - d.sigmaK*stdDev

	for i := range periods {
		p := &periods[i]
		if p.NetFlow < 0 && (p.NetFlow < threshold || p.NetFlow < -d.netFloor) {
			p.IsLean = true
			severity := math.Abs(p.NetFlow)
			p.Severity = &severity
			analysis.LeanPeriods = append(analysis.LeanPeriods, *p)
		}
	}

	analysis.LeanFrequency = float64(len(analysis.LeanPeriods)) / float64(len(periods))

	if len(periods) < 3 {
		analysis.Pattern.Description = "insufficient history"
		return analysis
	}
	analysis.Pattern = detectPattern(analysis.LeanPeriods)
	return analysis
}

// detectPattern looks for lean periods recurring at the same calendar
// position. Monthly buckets recur by month of year, weekly buckets by week
// of month; either needs at least two hits on the same position.
func detectPattern(leanPeriods []CashFlowPeriod) Pattern {
	if len(leanPeriods) < 2 {
		return Pattern{Description: "no clear pattern"}
	}

	monthHits := make(map[string]int)
	weekHits := make(map[int]int)
	for _, p := range leanPeriods {
		if isWeeklyKey(p.PeriodKey) {
			weekHits[weekOfMonth(p)]++
		} else {
			monthHits[p.Start.Month().String()]++
		}
	}

	var recurringMonths []string
	for month, hits := range monthHits {
		if hits >= 2 {
			recurringMonths = append(recurringMonths, month)
		}
	}
	if len(recurringMonths) > 0 {
		sort.Strings(recurringMonths)
		return Pattern{
			Detected:    true,
			Description: fmt.Sprintf("lean periods recur in %s", joinAnd(recurringMonths)),
		}
	}

	var recurringWeeks []int
	for week, hits := range weekHits {
		if hits >= 2 {
			recurringWeeks = append(recurringWeeks, week)
		}
	}
	if len(recurringWeeks) > 0 {
		sort.Ints(recurringWeeks)
		return Pattern{
			Detected:    true,
			Description: fmt.Sprintf("lean periods recur in week %d of the month", recurringWeeks[0]),
		}
	}

	return Pattern{Description: "no clear pattern"}
}

func isWeeklyKey(key string) bool {
	for _, c := range key {
		if c == 'W' {
			return true
		}
	}
	return false
}

func weekOfMonth(p CashFlowPeriod) int {
	return (p.Start.Day()-1)/7 + 1
}

func joinAnd(items []string) string {
	switch len(items) {
	case 0:
		return ""
	case 1:
		return items[0]
	default:
		out := items[0]
		for _, item := range items[1 : len(items)-1] {
			out += ", " + item
		}
		return out + " and " + items[len(items)-1]
	}
}
