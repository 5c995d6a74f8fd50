package behavior

import (
	"math"
	"time"

	"github.com/rs/zerolog"
)

// Policy holds the tunable constants of the statistics engine. The defaults
// are inherited tuning values; see config for the environment overrides.
type Policy struct {
	DecayFactor     float64       // multiplier for count/M2 per decay cycle
	DecayGap        time.Duration // minimum gap between decay applications
	ElasticityBase  float64       // elasticity at zero CV
	ElasticitySlope float64       // elasticity gain per unit of CV
}

// DefaultPolicy returns the standard engine tuning
func DefaultPolicy() Policy {
	return Policy{
		DecayFactor:     0.98,
		DecayGap:        7 * 24 * time.Hour,
		ElasticityBase:  0.2,
		ElasticitySlope: 0.5,
	}
}

// Engine folds transactions into a profile one at a time using Welford's
// online mean/variance update, with profile-level time decay.
type Engine struct {
	policy Policy
	log    zerolog.Logger
}

// NewEngine creates a new statistics engine
func NewEngine(policy Policy, log zerolog.Logger) *Engine {
	return &Engine{
		policy: policy,
		log:    log.With().Str("service", "behavior_engine").Logger(),
	}
}

// Update folds one spending amount into the profile's category stats and
// recomputes the category's elasticity. "now" is explicit so decay timing is
// deterministic and testable. Returns true when decay was applied this cycle.
//
// Decay is gated on the profile-level last_updated timestamp: it runs at most
// once per DecayGap, no matter how many updates arrive inside the window.
func (e *Engine) Update(p *Profile, category string, amount float64, now time.Time) bool {
	decayed := false
	if p.TransactionCount > 0 && !p.LastUpdated.IsZero() && now.Sub(p.LastUpdated) > e.policy.DecayGap {
		e.applyDecay(p)
		decayed = true
	}

	stat := p.CategoryStats[category]
	if stat == nil {
		stat = newCategoryStat()
		p.CategoryStats[category] = stat
	}

	// Welford fold-in: single pass, no catastrophic cancellation.
	stat.Count++
	delta := amount - stat.Mean
	stat.Mean += delta / stat.Count
	stat.M2 += delta * (amount - stat.Mean)
	if stat.M2 < 0 {
		stat.M2 = 0 // floating-point guard; M2 is a sum of squares
	}
	stat.StdDev = math.Sqrt(stat.Variance())
	stat.Sum += amount
	if amount < stat.Min {
		stat.Min = amount
	}
	if amount > stat.Max {
		stat.Max = amount
	}
	stat.LastUpdated = now

	p.Elasticity[category] = e.elasticity(stat)
	p.TransactionCount++
	p.LastUpdated = now

	return decayed
}

// applyDecay down-weights historical evidence across every category: count
// and M2 shrink, mean and the exact extrema stay. Variance is unchanged
// (both numerator and denominator scale), so elasticity is stable under decay.
func (e *Engine) applyDecay(p *Profile) {
	for name, stat := range p.CategoryStats {
		stat.Count *= e.policy.DecayFactor
		stat.M2 *= e.policy.DecayFactor
		stat.StdDev = math.Sqrt(stat.Variance())
		e.log.Debug().
			Str("category", name).
			Float64("effective_count", stat.Count).
			Msg("Applied time decay")
	}
}

// elasticity maps a category's coefficient of variation to a 0-1 score of
// how compressible its spending is. Monotone non-decreasing in CV.
func (e *Engine) elasticity(stat *CategoryStat) float64 {
	el := e.policy.ElasticityBase + e.policy.ElasticitySlope*stat.CV()
	if el > 1.0 {
		el = 1.0
	}
	if el < 0 {
		el = 0
	}
	return el
}
