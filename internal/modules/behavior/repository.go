package behavior

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/rs/zerolog"
)

const timeLayout = time.RFC3339Nano

// Repository handles behavior profile persistence
type Repository struct {
	db  *sql.DB
	log zerolog.Logger
}

// NewRepository creates a new behavior profile repository
func NewRepository(db *sql.DB, log zerolog.Logger) *Repository {
	return &Repository{
		db:  db,
		log: log.With().Str("repo", "behavior").Logger(),
	}
}

// Get retrieves a user's profile, or nil when the user has none yet
func (r *Repository) Get(userID int64) (*Profile, error) {
	query := `
		SELECT user_id, category_stats, elasticity, transaction_count, impulse_score, last_updated
		FROM behavior_profiles
		WHERE user_id = ?
	`

	var (
		p           Profile
		statsJSON   string
		elastJSON   string
		lastUpdated string
	)

	err := r.db.QueryRow(query, userID).Scan(
		&p.UserID,
		&statsJSON,
		&elastJSON,
		&p.TransactionCount,
		&p.ImpulseScore,
		&lastUpdated,
	)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get behavior profile: %w", err)
	}

	if err := json.Unmarshal([]byte(statsJSON), &p.CategoryStats); err != nil {
		return nil, fmt.Errorf("failed to decode category stats: %w", err)
	}
	if err := json.Unmarshal([]byte(elastJSON), &p.Elasticity); err != nil {
		return nil, fmt.Errorf("failed to decode elasticity map: %w", err)
	}
	if p.CategoryStats == nil {
		p.CategoryStats = make(map[string]*CategoryStat)
	}
	if p.Elasticity == nil {
		p.Elasticity = make(map[string]float64)
	}
	if p.LastUpdated, err = time.Parse(timeLayout, lastUpdated); err != nil {
		return nil, fmt.Errorf("failed to parse last_updated: %w", err)
	}

	return &p, nil
}

// Save upserts a profile. The write is a single statement, so a profile is
// either committed whole or not at all.
func (r *Repository) Save(p *Profile) error {
	statsJSON, err := json.Marshal(p.CategoryStats)
	if err != nil {
		return fmt.Errorf("failed to encode category stats: %w", err)
	}
	elastJSON, err := json.Marshal(p.Elasticity)
	if err != nil {
		return fmt.Errorf("failed to encode elasticity map: %w", err)
	}

	query := `
		INSERT INTO behavior_profiles (user_id, category_stats, elasticity, transaction_count, impulse_score, last_updated)
		VALUES (?, ?, ?, ?, ?, ?)
		ON CONFLICT(user_id) DO UPDATE SET
			category_stats = excluded.category_stats,
			elasticity = excluded.elasticity,
			transaction_count = excluded.transaction_count,
			impulse_score = excluded.impulse_score,
			last_updated = excluded.last_updated
	`

	_, err = r.db.Exec(
		query,
		p.UserID,
		string(statsJSON),
		string(elastJSON),
		p.TransactionCount,
		p.ImpulseScore,
		p.LastUpdated.Format(timeLayout),
	)
	if err != nil {
		return fmt.Errorf("failed to save behavior profile: %w", err)
	}
	return nil
}

// CountProfiles returns the number of stored profiles
func (r *Repository) CountProfiles() (int, error) {
	var count int
	if err := r.db.QueryRow("SELECT COUNT(*) FROM behavior_profiles").Scan(&count); err != nil {
		return 0, fmt.Errorf("failed to count profiles: %w", err)
	}
	return count, nil
}

// AllUserIDs returns every user with a stored profile
func (r *Repository) AllUserIDs() ([]int64, error) {
	rows, err := r.db.Query("SELECT user_id FROM behavior_profiles ORDER BY user_id")
	if err != nil {
		return nil, fmt.Errorf("failed to list profile users: %w", err)
	}
	defer rows.Close()

	var ids []int64
	for rows.Next() {
		var id int64
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("failed to scan user id: %w", err)
		}
		ids = append(ids, id)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating profile users: %w", err)
	}
	return ids, nil
}
