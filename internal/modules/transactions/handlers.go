package transactions

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"

	"github.com/finpulse/finpulse/internal/domain"
	"github.com/finpulse/finpulse/internal/events"
	"github.com/finpulse/finpulse/internal/modules/behavior"
)

// ProfileRecorder folds recorded transactions into the user's spending profile
type ProfileRecorder interface {
	RecordTransaction(tx domain.Transaction, now time.Time) (*behavior.Profile, error)
}

// Handler handles transaction HTTP requests
type Handler struct {
	repo     *Repository
	recorder ProfileRecorder
	events   *events.Manager
	log      zerolog.Logger
}

// NewHandler creates a new transactions handler
func NewHandler(repo *Repository, recorder ProfileRecorder, ev *events.Manager, log zerolog.Logger) *Handler {
	return &Handler{
		repo:     repo,
		recorder: recorder,
		events:   ev,
		log:      log.With().Str("handler", "transactions").Logger(),
	}
}

// HandleIngest handles POST / - record a transaction and update the profile.
// The transaction write is authoritative; a profile update failure is logged
// and reported but does not fail the ingestion.
func (h *Handler) HandleIngest(w http.ResponseWriter, r *http.Request) {
	var req IngestRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid JSON body", http.StatusBadRequest)
		return
	}

	now := time.Now().UTC()
	tx, err := req.Validate(now)
	if err != nil {
		http.Error(w, err.Error(), statusForError(err))
		return
	}

	if err := h.repo.Create(&tx); err != nil {
		h.log.Error().Err(err).Int64("user_id", tx.UserID).Msg("Failed to store transaction")
		http.Error(w, "Failed to store transaction", http.StatusInternalServerError)
		return
	}

	h.events.Emit(events.TransactionRecorded, "transactions", map[string]interface{}{
		"transaction_id": tx.ID,
		"user_id":        tx.UserID,
		"category":       tx.Category,
		"type":           string(tx.Type),
	})

	response := IngestResponse{Transaction: tx}
	profile, err := h.recorder.RecordTransaction(tx, now)
	if err != nil {
		h.log.Error().Err(err).Int64("user_id", tx.UserID).Msg("Failed to update profile")
		h.events.EmitError("transactions", err, map[string]interface{}{
			"transaction_id": tx.ID,
			"user_id":        tx.UserID,
		})
	} else {
		response.ProfileUpdated = !tx.IsCredit()
		if profile != nil {
			response.ProfileTxnCount = profile.TransactionCount
		}
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusCreated)
	json.NewEncoder(w).Encode(response)
}

// HandleGetByUser handles GET /user/{userID} - list a user's transactions
func (h *Handler) HandleGetByUser(w http.ResponseWriter, r *http.Request) {
	userID, err := strconv.ParseInt(chi.URLParam(r, "userID"), 10, 64)
	if err != nil || userID < 1 {
		http.Error(w, "Invalid user ID", http.StatusBadRequest)
		return
	}

	var limit *int
	if limitStr := r.URL.Query().Get("limit"); limitStr != "" {
		l, parseErr := strconv.Atoi(limitStr)
		if parseErr != nil || l < 1 || l > 10000 {
			http.Error(w, "Invalid limit. Must be 1-10000", http.StatusBadRequest)
			return
		}
		limit = &l
	}

	var transactions []domain.Transaction
	if txType := r.URL.Query().Get("type"); txType != "" {
		parsed := domain.TransactionType(txType)
		if !parsed.Valid() {
			http.Error(w, "Invalid type. Must be 'credit' or 'debit'", http.StatusBadRequest)
			return
		}
		transactions, err = h.repo.GetByUserAndType(userID, parsed)
	} else {
		transactions, err = h.repo.GetByUser(userID, limit)
	}
	if err != nil {
		h.log.Error().Err(err).Int64("user_id", userID).Msg("Failed to get transactions")
		http.Error(w, "Failed to retrieve transactions", http.StatusInternalServerError)
		return
	}

	if transactions == nil {
		transactions = []domain.Transaction{}
	}
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(transactions)
}

// statusForError maps domain sentinel errors to HTTP statuses
func statusForError(err error) int {
	switch {
	case errors.Is(err, domain.ErrInvalidInput):
		return http.StatusBadRequest
	case errors.Is(err, domain.ErrPolicyViolation):
		return http.StatusUnprocessableEntity
	default:
		return http.StatusInternalServerError
	}
}
