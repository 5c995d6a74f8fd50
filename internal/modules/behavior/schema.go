package behavior

import "database/sql"

// BehaviorSchema holds one row per user; the stats and elasticity maps are
// stored as JSON documents, mirroring the shape the engine mutates in memory.
const BehaviorSchema = `
CREATE TABLE IF NOT EXISTS behavior_profiles (
    user_id INTEGER PRIMARY KEY,
    category_stats TEXT NOT NULL,
    elasticity TEXT NOT NULL,
    transaction_count INTEGER NOT NULL DEFAULT 0,
    impulse_score REAL NOT NULL DEFAULT 0,
    last_updated TEXT NOT NULL
);
`

func InitSchema(db *sql.DB) error {
	_, err := db.Exec(BehaviorSchema)
	return err
}
