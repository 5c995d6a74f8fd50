package behavior

import (
	"math"
	"time"
)

// CategoryStat holds the running aggregate for one spending category.
// M2 is the raw sum of squared deviations (Welford form); it is persisted
// alongside std_dev because only the M2 form stays composable when decay
// rescales the evidence.
type CategoryStat struct {
	Count       float64   `json:"count"` // effective count; fractional after decay
	Mean        float64   `json:"mean"`
	M2          float64   `json:"m2"`
	StdDev      float64   `json:"std_dev"`
	Min         float64   `json:"min"` // exact extrema, never decayed
	Max         float64   `json:"max"`
	Sum         float64   `json:"sum"`
	LastUpdated time.Time `json:"last_updated"`
}

// Variance returns the population variance of the category
func (s *CategoryStat) Variance() float64 {
	if s.Count <= 0 {
		return 0
	}
	return s.M2 / s.Count
}

// CV returns the coefficient of variation. A non-positive mean yields 0.
func (s *CategoryStat) CV() float64 {
	if s.Mean <= 0 {
		return 0
	}
	return s.StdDev / s.Mean
}

// Profile is the per-user behavior model. It exclusively owns its category
// stats and elasticity maps; only the engine mutates them.
type Profile struct {
	UserID           int64                    `json:"user_id"`
	CategoryStats    map[string]*CategoryStat `json:"category_stats"`
	Elasticity       map[string]float64       `json:"elasticity"`
	TransactionCount int64                    `json:"transaction_count"`
	ImpulseScore     float64                  `json:"impulse_score"` // externally supplied signal
	LastUpdated      time.Time                `json:"last_updated"`
}

// NewProfile creates an empty profile for a user
func NewProfile(userID int64) *Profile {
	return &Profile{
		UserID:        userID,
		CategoryStats: make(map[string]*CategoryStat),
		Elasticity:    make(map[string]float64),
	}
}

// Stat returns the category's stats, or nil when the category is unseen
func (p *Profile) Stat(category string) *CategoryStat {
	return p.CategoryStats[category]
}

// newCategoryStat initializes an unseen category. Min/Max start at the
// sentinel infinities and are fixed up by the first fold-in.
func newCategoryStat() *CategoryStat {
	return &CategoryStat{
		Min: math.Inf(1),
		Max: math.Inf(-1),
	}
}

// CategorySummary is the per-category metadata view served to callers
type CategorySummary struct {
	Count            float64 `json:"count"`
	Mean             float64 `json:"mean"`
	StdDev           float64 `json:"std_dev"`
	Min              float64 `json:"min"`
	Max              float64 `json:"max"`
	Reliability      float64 `json:"reliability_score"`
	Elasticity       float64 `json:"elasticity"`
	IsRare           bool    `json:"is_rare"`
	IsEstablished    bool    `json:"is_established"`
	IncludeInSimulation bool `json:"include_in_simulation"`
}
