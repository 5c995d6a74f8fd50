package simulations

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/rs/zerolog"

	"github.com/finpulse/finpulse/internal/domain"
	"github.com/finpulse/finpulse/internal/events"
	"github.com/finpulse/finpulse/internal/modules/behavior"
)

// ProfileSource loads the spending profile the simulators read from
type ProfileSource interface {
	GetProfile(userID int64) (*behavior.Profile, error)
}

// Handler handles simulation HTTP requests
type Handler struct {
	profiles     ProfileSource
	reallocation *ReallocationSimulator
	projector    *Projector
	events       *events.Manager
	log          zerolog.Logger
}

// NewHandler creates a new simulations handler
func NewHandler(
	profiles ProfileSource,
	reallocation *ReallocationSimulator,
	projector *Projector,
	ev *events.Manager,
	log zerolog.Logger,
) *Handler {
	return &Handler{
		profiles:     profiles,
		reallocation: reallocation,
		projector:    projector,
		events:       ev,
		log:          log.With().Str("handler", "simulations").Logger(),
	}
}

// HandleReallocation handles POST /reallocation - feasibility simulation
func (h *Handler) HandleReallocation(w http.ResponseWriter, r *http.Request) {
	var req ReallocationRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid JSON body", http.StatusBadRequest)
		return
	}

	profile, ok := h.loadProfile(w, req.UserID)
	if !ok {
		return
	}

	result, err := h.reallocation.Simulate(profile, req.Reallocations)
	if err != nil {
		h.writeSimulationError(w, req.UserID, "Failed to simulate reallocation", err)
		return
	}

	h.events.Emit(events.SimulationRun, "simulations", map[string]interface{}{
		"user_id":    req.UserID,
		"type":       "reallocation",
		"categories": len(req.Reallocations),
	})

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(result)
}

// HandleProjection handles POST /projection - month-by-month projection
func (h *Handler) HandleProjection(w http.ResponseWriter, r *http.Request) {
	var req ProjectionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid JSON body", http.StatusBadRequest)
		return
	}

	profile, ok := h.loadProfile(w, req.UserID)
	if !ok {
		return
	}

	result, err := h.projector.Project(profile, req.Months, req.Changes, time.Now().UTC())
	if err != nil {
		h.writeSimulationError(w, req.UserID, "Failed to project spending", err)
		return
	}

	h.events.Emit(events.SimulationRun, "simulations", map[string]interface{}{
		"user_id": req.UserID,
		"type":    "projection",
		"months":  req.Months,
	})

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(result)
}

func (h *Handler) loadProfile(w http.ResponseWriter, userID int64) (*behavior.Profile, bool) {
	if userID < 1 {
		http.Error(w, "Invalid user ID", http.StatusBadRequest)
		return nil, false
	}
	profile, err := h.profiles.GetProfile(userID)
	if err != nil {
		h.log.Error().Err(err).Int64("user_id", userID).Msg("Failed to load profile")
		http.Error(w, "Failed to load profile", http.StatusInternalServerError)
		return nil, false
	}
	if profile == nil {
		http.Error(w, "No spending profile found for user", http.StatusNotFound)
		return nil, false
	}
	return profile, true
}

func (h *Handler) writeSimulationError(w http.ResponseWriter, userID int64, msg string, err error) {
	var policyErr *domain.PolicyError
	switch {
	case errors.As(err, &policyErr):
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusUnprocessableEntity)
		json.NewEncoder(w).Encode(map[string]string{
			"error":    policyErr.Error(),
			"category": policyErr.Category,
			"rule":     policyErr.Rule,
		})
	case errors.Is(err, domain.ErrInvalidInput):
		http.Error(w, err.Error(), http.StatusBadRequest)
	case errors.Is(err, domain.ErrInsufficientData):
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(map[string]string{
			"status":  "insufficient_data",
			"message": err.Error(),
		})
	default:
		h.log.Error().Err(err).Int64("user_id", userID).Msg(msg)
		http.Error(w, msg, http.StatusInternalServerError)
	}
}
