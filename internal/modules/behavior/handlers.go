package behavior

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"
)

// Handler handles behavior profile HTTP requests
type Handler struct {
	service *Service
	log     zerolog.Logger
}

// NewHandler creates a new behavior handler
func NewHandler(service *Service, log zerolog.Logger) *Handler {
	return &Handler{
		service: service,
		log:     log.With().Str("handler", "behavior").Logger(),
	}
}

// HandleGetProfile handles GET /{userID} - full spending profile
func (h *Handler) HandleGetProfile(w http.ResponseWriter, r *http.Request) {
	userID, ok := parseUserID(w, r)
	if !ok {
		return
	}

	profile, err := h.service.GetProfile(userID)
	if err != nil {
		h.log.Error().Err(err).Int64("user_id", userID).Msg("Failed to get profile")
		http.Error(w, "Failed to retrieve profile", http.StatusInternalServerError)
		return
	}
	if profile == nil {
		http.Error(w, "Profile not found", http.StatusNotFound)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(profile)
}

// HandleGetSummary handles GET /{userID}/summary - per-category metadata view
func (h *Handler) HandleGetSummary(w http.ResponseWriter, r *http.Request) {
	userID, ok := parseUserID(w, r)
	if !ok {
		return
	}

	profile, err := h.service.GetProfile(userID)
	if err != nil {
		h.log.Error().Err(err).Int64("user_id", userID).Msg("Failed to get profile for summary")
		http.Error(w, "Failed to retrieve summary", http.StatusInternalServerError)
		return
	}
	if profile == nil {
		http.Error(w, "Profile not found", http.StatusNotFound)
		return
	}

	response := map[string]interface{}{
		"user_id":           profile.UserID,
		"transaction_count": profile.TransactionCount,
		"impulse_score":     profile.ImpulseScore,
		"last_updated":      profile.LastUpdated,
		"categories":        CategorySummaries(profile),
		"rare_categories":   RareCategories(profile, rareCountThreshold),
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(response)
}

// parseUserID extracts and validates the userID path parameter
func parseUserID(w http.ResponseWriter, r *http.Request) (int64, bool) {
	userID, err := strconv.ParseInt(chi.URLParam(r, "userID"), 10, 64)
	if err != nil || userID < 1 {
		http.Error(w, "Invalid user ID", http.StatusBadRequest)
		return 0, false
	}
	return userID, true
}
