package transactions

import (
	"math"
	"time"

	"github.com/finpulse/finpulse/internal/domain"
)

// IngestRequest is the payload for recording a transaction
type IngestRequest struct {
	UserID             int64   `json:"user_id"`
	Amount             float64 `json:"amount"`
	Category           string  `json:"category"`
	CategoryConfidence float64 `json:"category_confidence"`
	Type               string  `json:"type"`
	Merchant           string  `json:"merchant"`
	Timestamp          string  `json:"timestamp"`
}

// Validate checks the request and converts it to a domain transaction.
// An empty timestamp defaults to now.
func (req *IngestRequest) Validate(now time.Time) (domain.Transaction, error) {
	if req.UserID < 1 {
		return domain.Transaction{}, domain.InvalidInputf("user_id must be a positive integer")
	}
	if math.IsNaN(req.Amount) || math.IsInf(req.Amount, 0) {
		return domain.Transaction{}, domain.InvalidInputf("amount must be a finite number")
	}
	if req.Amount < 0 {
		return domain.Transaction{}, domain.InvalidInputf("amount must not be negative")
	}
	if req.Category == "" {
		return domain.Transaction{}, domain.InvalidInputf("category is required")
	}
	txType := domain.TransactionType(req.Type)
	if !txType.Valid() {
		return domain.Transaction{}, domain.InvalidInputf("type must be 'credit' or 'debit'")
	}
	if req.CategoryConfidence < 0 || req.CategoryConfidence > 1 {
		return domain.Transaction{}, domain.InvalidInputf("category_confidence must be between 0 and 1")
	}

	ts := now
	if req.Timestamp != "" {
		parsed, err := time.Parse(time.RFC3339, req.Timestamp)
		if err != nil {
			return domain.Transaction{}, domain.InvalidInputf("timestamp must be RFC3339")
		}
		ts = parsed
	}

	return domain.Transaction{
		UserID:             req.UserID,
		Amount:             req.Amount,
		Category:           req.Category,
		CategoryConfidence: req.CategoryConfidence,
		Type:               txType,
		Merchant:           req.Merchant,
		Timestamp:          ts,
	}, nil
}

// IngestResponse reports the stored transaction and the resulting profile size
type IngestResponse struct {
	Transaction     domain.Transaction `json:"transaction"`
	ProfileUpdated  bool               `json:"profile_updated"`
	ProfileTxnCount int64              `json:"profile_transaction_count,omitempty"`
}
