package transactions

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"github.com/finpulse/finpulse/internal/domain"
)

const timeLayout = time.RFC3339Nano

// Repository handles transaction persistence
type Repository struct {
	db  *sql.DB
	log zerolog.Logger
}

// NewRepository creates a new transactions repository
func NewRepository(db *sql.DB, log zerolog.Logger) *Repository {
	return &Repository{
		db:  db,
		log: log.With().Str("repo", "transactions").Logger(),
	}
}

// Create inserts a transaction and fills in its ID and created_at
func (r *Repository) Create(tx *domain.Transaction) error {
	tx.CreatedAt = time.Now().UTC()

	query := `
		INSERT INTO transactions (user_id, amount, category, category_confidence, type, merchant, timestamp, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
	`
	result, err := r.db.Exec(
		query,
		tx.UserID,
		tx.Amount,
		tx.Category,
		tx.CategoryConfidence,
		string(tx.Type),
		tx.Merchant,
		tx.Timestamp.Format(timeLayout),
		tx.CreatedAt.Format(timeLayout),
	)
	if err != nil {
		return fmt.Errorf("failed to insert transaction: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return fmt.Errorf("failed to read transaction id: %w", err)
	}
	tx.ID = id
	return nil
}

// GetByUser returns a user's transactions, newest first
func (r *Repository) GetByUser(userID int64, limit *int) ([]domain.Transaction, error) {
	query := `
		SELECT id, user_id, amount, category, category_confidence, type, merchant, timestamp, created_at
		FROM transactions
		WHERE user_id = ?
		ORDER BY timestamp DESC
	`
	args := []interface{}{userID}
	if limit != nil {
		query += " LIMIT ?"
		args = append(args, *limit)
	}

	rows, err := r.db.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query transactions: %w", err)
	}
	defer rows.Close()

	return r.scanTransactions(rows)
}

// GetByUserAndDateRange returns a user's transactions inside [start, end),
// oldest first so period aggregation reads them in order
func (r *Repository) GetByUserAndDateRange(userID int64, start, end time.Time) ([]domain.Transaction, error) {
	query := `
		SELECT id, user_id, amount, category, category_confidence, type, merchant, timestamp, created_at
		FROM transactions
		WHERE user_id = ? AND timestamp >= ? AND timestamp < ?
		ORDER BY timestamp ASC
	`
	rows, err := r.db.Query(query, userID, start.Format(timeLayout), end.Format(timeLayout))
	if err != nil {
		return nil, fmt.Errorf("failed to query transactions by date range: %w", err)
	}
	defer rows.Close()

	return r.scanTransactions(rows)
}

// GetByUserAndType returns a user's transactions of one type, oldest first
func (r *Repository) GetByUserAndType(userID int64, txType domain.TransactionType) ([]domain.Transaction, error) {
	query := `
		SELECT id, user_id, amount, category, category_confidence, type, merchant, timestamp, created_at
		FROM transactions
		WHERE user_id = ? AND type = ?
		ORDER BY timestamp ASC
	`
	rows, err := r.db.Query(query, userID, string(txType))
	if err != nil {
		return nil, fmt.Errorf("failed to query transactions by type: %w", err)
	}
	defer rows.Close()

	return r.scanTransactions(rows)
}

// CountByUser returns how many transactions a user has recorded
func (r *Repository) CountByUser(userID int64) (int, error) {
	var count int
	err := r.db.QueryRow("SELECT COUNT(*) FROM transactions WHERE user_id = ?", userID).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("failed to count transactions: %w", err)
	}
	return count, nil
}

func (r *Repository) scanTransactions(rows *sql.Rows) ([]domain.Transaction, error) {
	var transactions []domain.Transaction
	for rows.Next() {
		var (
			tx        domain.Transaction
			txType    string
			merchant  sql.NullString
			timestamp string
			createdAt string
		)
		if err := rows.Scan(
			&tx.ID,
			&tx.UserID,
			&tx.Amount,
			&tx.Category,
			&tx.CategoryConfidence,
			&txType,
			&merchant,
			&timestamp,
			&createdAt,
		); err != nil {
			return nil, fmt.Errorf("failed to scan transaction: %w", err)
		}

		tx.Type = domain.TransactionType(txType)
		tx.Merchant = merchant.String

		var err error
		if tx.Timestamp, err = time.Parse(timeLayout, timestamp); err != nil {
			return nil, fmt.Errorf("failed to parse transaction timestamp: %w", err)
		}
		if tx.CreatedAt, err = time.Parse(timeLayout, createdAt); err != nil {
			return nil, fmt.Errorf("failed to parse transaction created_at: %w", err)
		}

		transactions = append(transactions, tx)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating transactions: %w", err)
	}
	return transactions, nil
}
