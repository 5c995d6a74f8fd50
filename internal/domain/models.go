package domain

import "time"

// TransactionType distinguishes money in from money out
type TransactionType string

const (
	TransactionCredit TransactionType = "credit"
	TransactionDebit  TransactionType = "debit"
)

// Valid reports whether the transaction type is one of the known values
func (t TransactionType) Valid() bool {
	return t == TransactionCredit || t == TransactionDebit
}

// Transaction represents a single categorized money movement for a user.
// Categorization happens upstream; the category and its confidence arrive
// already resolved.
type Transaction struct {
	ID                 int64           `json:"id,omitempty"`
	UserID             int64           `json:"user_id"`
	Amount             float64         `json:"amount"`
	Category           string          `json:"category"`
	CategoryConfidence float64         `json:"category_confidence,omitempty"`
	Type               TransactionType `json:"type"`
	Merchant           string          `json:"merchant,omitempty"`
	Timestamp          time.Time       `json:"timestamp"`
	CreatedAt          time.Time       `json:"created_at,omitempty"`
}

// IsCredit reports whether the transaction adds money
func (t Transaction) IsCredit() bool {
	return t.Type == TransactionCredit
}
