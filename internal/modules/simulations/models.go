package simulations

// Feasibility bands, ordered by difficulty
const (
	FeasibilityComfortable = "comfortable"
	FeasibilityModerate    = "moderate"
	FeasibilityDifficult   = "difficult"
	FeasibilityUnrealistic = "unrealistic"
)

// ReallocationRequest proposes signed monthly deltas per category.
// Negative values reduce a category, positive values grow it.
type ReallocationRequest struct {
	UserID        int64              `json:"user_id"`
	Reallocations map[string]float64 `json:"reallocations"`
}

// CategoryReallocation is the per-category feasibility verdict
type CategoryReallocation struct {
	Category       string  `json:"category"`
	CurrentMonthly float64 `json:"current_monthly"`
	ChangeAmount   float64 `json:"change_amount"`
	NewMonthly     float64 `json:"new_monthly"`
	ChangePercent  float64 `json:"change_percent"`
	Feasibility    string  `json:"feasibility"`
	ImpactNote     string  `json:"impact_note"`
}

// ReallocationVisualData is parallel arrays for charting
type ReallocationVisualData struct {
	Categories  []string  `json:"categories"`
	Current     []float64 `json:"current"`
	Changes     []float64 `json:"changes"`
	New         []float64 `json:"new"`
	Feasibility []string  `json:"feasibility"`
}

// ReallocationResult is the full simulation response
type ReallocationResult struct {
	BaselineMonthly       float64                `json:"baseline_monthly"`
	ProjectedMonthly      float64                `json:"projected_monthly"`
	IsBalanced            bool                   `json:"is_balanced"`
	Reallocations         []CategoryReallocation `json:"reallocations"`
	FeasibilityAssessment string                 `json:"feasibility_assessment"`
	Warnings              []string               `json:"warnings"`
	Recommendations       []string               `json:"recommendations"`
	VisualData            ReallocationVisualData `json:"visual_data"`
}

// ProjectionRequest asks for a month-by-month spending projection with
// optional per-category percentage changes
type ProjectionRequest struct {
	UserID  int64              `json:"user_id"`
	Months  int                `json:"months"`
	Changes map[string]float64 `json:"changes,omitempty"`
}

// MonthlyProjection is one projected month
type MonthlyProjection struct {
	Month             int                `json:"month"`
	MonthLabel        string             `json:"month_label"`
	ProjectedSpending float64            `json:"projected_spending"`
	CategoryBreakdown map[string]float64 `json:"category_breakdown"`
	CumulativeChange  float64            `json:"cumulative_change"`
	Confidence        float64            `json:"confidence"`
}

// ProjectionChart is parallel arrays for charting
type ProjectionChart struct {
	Months           []string  `json:"months"`
	Projected        []float64 `json:"projected"`
	Baseline         []float64 `json:"baseline"`
	CumulativeChange []float64 `json:"cumulative_change"`
	Confidence       []float64 `json:"confidence"`
}

// ProjectionResult is the full projection response
type ProjectionResult struct {
	BaselineMonthly    float64             `json:"baseline_monthly"`
	ProjectionMonths   int                 `json:"projection_months"`
	MonthlyProjections []MonthlyProjection `json:"monthly_projections"`
	TotalProjected     float64             `json:"total_projected"`
	TotalBaseline      float64             `json:"total_baseline"`
	CumulativeChange   float64             `json:"cumulative_change"`
	AnnualImpact       float64             `json:"annual_impact"`
	TrendAnalysis      string              `json:"trend_analysis"`
	ConfidenceLevel    string              `json:"confidence_level"`
	KeyInsights        []string            `json:"key_insights"`
	Chart              ProjectionChart     `json:"projection_chart"`
}
