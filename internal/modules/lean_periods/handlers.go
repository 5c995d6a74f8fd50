package lean_periods

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"

	"github.com/finpulse/finpulse/internal/domain"
	"github.com/finpulse/finpulse/internal/events"
)

const (
	defaultLookbackMonths  = 6
	defaultForecastPeriods = 3
	defaultTargetMonths    = 3
)

// Handler handles lean period HTTP requests
type Handler struct {
	aggregator *Aggregator
	detector   *Detector
	forecaster *Forecaster
	advisor    *Advisor
	events     *events.Manager
	log        zerolog.Logger
}

// NewHandler creates a new lean periods handler
func NewHandler(
	aggregator *Aggregator,
	detector *Detector,
	forecaster *Forecaster,
	advisor *Advisor,
	ev *events.Manager,
	log zerolog.Logger,
) *Handler {
	return &Handler{
		aggregator: aggregator,
		detector:   detector,
		forecaster: forecaster,
		advisor:    advisor,
		events:     ev,
		log:        log.With().Str("handler", "lean_periods").Logger(),
	}
}

// HandleGetTimeline handles GET /{userID}/timeline - raw aggregated periods
func (h *Handler) HandleGetTimeline(w http.ResponseWriter, r *http.Request) {
	userID, ok := parseUserID(w, r)
	if !ok {
		return
	}

	granularity := GranularityMonthly
	if g := r.URL.Query().Get("granularity"); g != "" {
		granularity = Granularity(g)
		if granularity != GranularityMonthly && granularity != GranularityWeekly {
			http.Error(w, "Invalid granularity. Must be 'monthly' or 'weekly'", http.StatusBadRequest)
			return
		}
	}
	months, ok := parseIntParam(w, r, "months", defaultLookbackMonths, 1, 36)
	if !ok {
		return
	}

	periods, err := h.aggregator.CashFlowPeriods(userID, granularity, months, time.Now().UTC())
	if err != nil {
		h.writeError(w, userID, "Failed to aggregate periods", err)
		return
	}

	writeJSON(w, map[string]interface{}{
		"user_id":     userID,
		"granularity": granularity,
		"periods":     periods,
	})
}

// HandleGetAnalysis handles GET /{userID}/analysis - lean period detection
func (h *Handler) HandleGetAnalysis(w http.ResponseWriter, r *http.Request) {
	userID, ok := parseUserID(w, r)
	if !ok {
		return
	}
	months, ok := parseIntParam(w, r, "months", defaultLookbackMonths, 1, 36)
	if !ok {
		return
	}

	periods, err := h.aggregator.CashFlowPeriods(userID, GranularityMonthly, months, time.Now().UTC())
	if err != nil {
		h.writeError(w, userID, "Failed to aggregate periods", err)
		return
	}

	writeJSON(w, h.detector.AnalyzeLeanPeriods(periods))
}

// HandleGetForecast handles GET /{userID}/forecast - scenario projection
func (h *Handler) HandleGetForecast(w http.ResponseWriter, r *http.Request) {
	userID, ok := parseUserID(w, r)
	if !ok {
		return
	}
	horizon, ok := parseIntParam(w, r, "periods", defaultForecastPeriods, 1, 12)
	if !ok {
		return
	}
	balance, ok := parseFloatParam(w, r, "current_balance", 0)
	if !ok {
		return
	}

	periods, err := h.aggregator.CashFlowPeriods(userID, GranularityMonthly, 12, time.Now().UTC())
	if err != nil {
		h.writeError(w, userID, "Failed to aggregate periods", err)
		return
	}

	forecast, err := h.forecaster.Forecast(periods, horizon, balance)
	if err != nil {
		if errors.Is(err, domain.ErrInsufficientData) {
			writeJSON(w, map[string]interface{}{
				"status":  StatusInsufficientData,
				"message": err.Error(),
			})
			return
		}
		h.writeError(w, userID, "Failed to generate forecast", err)
		return
	}

	h.events.Emit(events.ForecastGenerated, "lean_periods", map[string]interface{}{
		"user_id":  userID,
		"horizon":  horizon,
		"warnings": len(forecast.Warnings),
	})

	writeJSON(w, forecast)
}

// HandleGetSmoothing handles GET /{userID}/smoothing - savings plan
func (h *Handler) HandleGetSmoothing(w http.ResponseWriter, r *http.Request) {
	userID, ok := parseUserID(w, r)
	if !ok {
		return
	}
	targetMonths, ok := parseIntParam(w, r, "target_months", defaultTargetMonths, 1, 12)
	if !ok {
		return
	}
	balance, ok := parseFloatParam(w, r, "current_balance", 0)
	if !ok {
		return
	}

	periods, err := h.aggregator.CashFlowPeriods(userID, GranularityMonthly, 12, time.Now().UTC())
	if err != nil {
		h.writeError(w, userID, "Failed to aggregate periods", err)
		return
	}

	recommendation, err := h.advisor.Recommend(periods, balance, targetMonths)
	if err != nil {
		h.writeError(w, userID, "Failed to build recommendation", err)
		return
	}

	writeJSON(w, recommendation)
}

// HandleGetCompleteAnalysis handles GET /{userID}/complete - detector,
// forecaster and advisor outputs plus an overall risk verdict
func (h *Handler) HandleGetCompleteAnalysis(w http.ResponseWriter, r *http.Request) {
	userID, ok := parseUserID(w, r)
	if !ok {
		return
	}
	balance, ok := parseFloatParam(w, r, "current_balance", 0)
	if !ok {
		return
	}

	periods, err := h.aggregator.CashFlowPeriods(userID, GranularityMonthly, 12, time.Now().UTC())
	if err != nil {
		h.writeError(w, userID, "Failed to aggregate periods", err)
		return
	}

	analysis := CompleteAnalysis{
		LeanAnalysis: h.detector.AnalyzeLeanPeriods(periods),
	}

	forecast, err := h.forecaster.Forecast(periods, defaultForecastPeriods, balance)
	if err != nil && !errors.Is(err, domain.ErrInsufficientData) {
		h.writeError(w, userID, "Failed to generate forecast", err)
		return
	}
	analysis.Forecast = forecast

	analysis.Smoothing, err = h.advisor.Recommend(periods, balance, defaultTargetMonths)
	if err != nil {
		h.writeError(w, userID, "Failed to build recommendation", err)
		return
	}

	analysis.Summary = summarizeRisk(analysis)

	writeJSON(w, analysis)
}

// summarizeRisk distills the combined outputs into one qualitative verdict
func summarizeRisk(analysis CompleteAnalysis) AnalysisSummary {
	leanFrequency := analysis.LeanAnalysis.LeanFrequency
	nextPeriodLean := false
	hasWarnings := false
	if analysis.Forecast != nil {
		hasWarnings = len(analysis.Forecast.Warnings) > 0
		if len(analysis.Forecast.Scenarios) > 0 {
			nextPeriodLean = analysis.Forecast.Scenarios[0].IsLeanPeriod
		}
	}

	switch {
	case nextPeriodLean || leanFrequency > 0.3:
		return AnalysisSummary{
			RiskLevel:             "HIGH",
			RiskMessage:           "Cash shortfalls are frequent or imminent; build your buffer now",
			ImmediateActionNeeded: true,
		}
	case hasWarnings || leanFrequency > 0.1:
		return AnalysisSummary{
			RiskLevel:   "MEDIUM",
			RiskMessage: "Occasional lean periods detected; a larger buffer would smooth them out",
		}
	default:
		return AnalysisSummary{
			RiskLevel:   "LOW",
			RiskMessage: "Cash flow looks stable; keep up the current habits",
		}
	}
}

func (h *Handler) writeError(w http.ResponseWriter, userID int64, msg string, err error) {
	if errors.Is(err, domain.ErrInvalidInput) {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	h.log.Error().Err(err).Int64("user_id", userID).Msg(msg)
	http.Error(w, msg, http.StatusInternalServerError)
}

func writeJSON(w http.ResponseWriter, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(payload)
}

func parseUserID(w http.ResponseWriter, r *http.Request) (int64, bool) {
	userID, err := strconv.ParseInt(chi.URLParam(r, "userID"), 10, 64)
	if err != nil || userID < 1 {
		http.Error(w, "Invalid user ID", http.StatusBadRequest)
		return 0, false
	}
	return userID, true
}

func parseIntParam(w http.ResponseWriter, r *http.Request, name string, def, min, max int) (int, bool) {
	raw := r.URL.Query().Get(name)
	if raw == "" {
		return def, true
	}
	value, err := strconv.Atoi(raw)
	if err != nil || value < min || value > max {
		http.Error(w, fmt.Sprintf("Invalid %s. Must be %d-%d", name, min, max), http.StatusBadRequest)
		return 0, false
	}
	return value, true
}

func parseFloatParam(w http.ResponseWriter, r *http.Request, name string, def float64) (float64, bool) {
	raw := r.URL.Query().Get(name)
	if raw == "" {
		return def, true
	}
	value, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		http.Error(w, fmt.Sprintf("Invalid %s", name), http.StatusBadRequest)
		return 0, false
	}
	return value, true
}
