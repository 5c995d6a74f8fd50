package transactions

import "database/sql"

const TransactionsSchema = `
CREATE TABLE IF NOT EXISTS transactions (
    id INTEGER PRIMARY KEY AUTOINCREMENT,
    user_id INTEGER NOT NULL,
    amount REAL NOT NULL,
    category TEXT NOT NULL,
    category_confidence REAL NOT NULL DEFAULT 0,
    type TEXT NOT NULL,
    merchant TEXT,
    timestamp TEXT NOT NULL,
    created_at TEXT NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_transactions_user_timestamp
    ON transactions(user_id, timestamp);
CREATE INDEX IF NOT EXISTS idx_transactions_user_category
    ON transactions(user_id, category);
`

func InitSchema(db *sql.DB) error {
	_, err := db.Exec(TransactionsSchema)
	return err
}
