package lean_periods

import "time"

// Granularity selects the aggregation bucket size
type Granularity string

const (
	GranularityMonthly Granularity = "monthly"
	GranularityWeekly  Granularity = "weekly"
)

// CashFlowPeriod is one aggregation bucket of a user's transaction history.
// Periods are recomputed per request and never persisted.
type CashFlowPeriod struct {
	PeriodKey        string    `json:"period"`
	Start            time.Time `json:"start"`
	End              time.Time `json:"end"`
	Income           float64   `json:"income"`
	Expenses         float64   `json:"expenses"`
	NetFlow          float64   `json:"net_flow"`
	TransactionCount int       `json:"transaction_count"`
	IncomeSources    int       `json:"income_sources"`
	IsLean           bool      `json:"is_lean"`
	Severity         *float64  `json:"severity,omitempty"`
}

// Pattern describes whether lean periods recur at the same calendar position
type Pattern struct {
	Detected    bool   `json:"detected"`
	Description string `json:"description"`
}

// LeanAnalysis is the detector's output
type LeanAnalysis struct {
	LeanFrequency float64          `json:"lean_frequency"`
	LeanPeriods   []CashFlowPeriod `json:"lean_periods"`
	TotalPeriods  int              `json:"total_periods"`
	Pattern       Pattern          `json:"pattern_detected"`
}

// ScenarioValues holds the three parallel projections of one quantity
type ScenarioValues struct {
	Best   float64 `json:"best"`
	Likely float64 `json:"likely"`
	Worst  float64 `json:"worst"`
}

// ForecastScenario is one projected future period
type ForecastScenario struct {
	Period           int            `json:"period"`
	MonthOffset      int            `json:"month_offset"`
	NetCashFlow      ScenarioValues `json:"net_cash_flow"`
	ProjectedBalance ScenarioValues `json:"projected_balance"`
	Confidence       float64        `json:"confidence"`
	IsLeanPeriod     bool           `json:"is_lean_period"`
}

// Forecast aggregates the scenario array with its context
type Forecast struct {
	Scenarios          []ForecastScenario `json:"forecasts"`
	Warnings           []string           `json:"warnings"`
	Confidence         float64            `json:"confidence"`
	IncomeVolatility   float64            `json:"income_volatility"`
	AvgMonthlyIncome   float64            `json:"avg_monthly_income"`
	AvgMonthlyExpenses float64            `json:"avg_monthly_expenses"`
	CurrentBalance     float64            `json:"current_balance"`
}

// Strategy is the qualitative smoothing advice bucket
type Strategy struct {
	VolatilityLevel string   `json:"volatility_level"`
	StrategySummary string   `json:"strategy_summary"`
	Recommendations []string `json:"recommendations"`
	ActionItems     []string `json:"action_items"`
}

// SmoothingRecommendation is the advisor's output. Status distinguishes a
// normal result from an explicit insufficient-data outcome.
type SmoothingRecommendation struct {
	Status              string   `json:"status"`
	Message             string   `json:"message,omitempty"`
	CurrentBalance      float64  `json:"current_balance"`
	TargetEmergencyFund float64  `json:"target_emergency_fund"`
	EmergencyFundGap    float64  `json:"emergency_fund_gap"`
	RecommendedSaveRate float64  `json:"recommended_save_rate"`
	MonthlySaveAmount   float64  `json:"monthly_save_amount"`
	MonthsToTarget      *float64 `json:"months_to_target"`
	Strategy            *Strategy `json:"strategy,omitempty"`
}

const (
	StatusOK               = "ok"
	StatusInsufficientData = "insufficient_data"
)

// AnalysisSummary is the top-level risk verdict of the complete analysis
type AnalysisSummary struct {
	RiskLevel             string `json:"risk_level"`
	RiskMessage           string `json:"risk_message"`
	ImmediateActionNeeded bool   `json:"immediate_action_needed"`
}

// CompleteAnalysis bundles detector, forecaster and advisor outputs
type CompleteAnalysis struct {
	LeanAnalysis LeanAnalysis            `json:"lean_analysis"`
	Forecast     *Forecast               `json:"forecast,omitempty"`
	Smoothing    SmoothingRecommendation `json:"smoothing"`
	Summary      AnalysisSummary         `json:"summary"`
}
