package sqlite

import (
	"context"
	"database/sql"
)

// schema contains the SQL statements to set up the database schema.
// These run on startup to ensure tables exist.
// Users must be created before circles and memberships due to foreign keys.
const schema = `
CREATE TABLE IF NOT EXISTS users (
    id TEXT PRIMARY KEY,
    email TEXT NOT NULL UNIQUE,
    display_name TEXT NOT NULL,
    password_hash TEXT NOT NULL,
    role TEXT NOT NULL DEFAULT 'member',
    bank_name TEXT NOT NULL DEFAULT '',
    account_number TEXT NOT NULL DEFAULT '',
    national_id TEXT NOT NULL DEFAULT '',
    push_token TEXT NOT NULL DEFAULT '',
    created_at INTEGER NOT NULL,
    updated_at INTEGER NOT NULL
);

CREATE TABLE IF NOT EXISTS circles (
    id TEXT PRIMARY KEY,
    name TEXT NOT NULL,
    contribution_amount INTEGER NOT NULL CHECK (contribution_amount > 0),
    frequency TEXT NOT NULL,
    participant_count INTEGER NOT NULL CHECK (participant_count BETWEEN 2 AND 100),
    start_date TEXT NOT NULL,
    turn_assignment_mode TEXT NOT NULL,
    organizer_id TEXT NOT NULL,
    status TEXT NOT NULL,
    invite_code TEXT NOT NULL UNIQUE,
    current_turn INTEGER NOT NULL DEFAULT 1,
    payout_status TEXT NOT NULL,
    allow_half_shares INTEGER NOT NULL DEFAULT 0,
    max_half_shares INTEGER NOT NULL DEFAULT 0 CHECK (max_half_shares >= 0),
    created_at INTEGER NOT NULL,
    updated_at INTEGER NOT NULL,
    CHECK (current_turn BETWEEN 1 AND participant_count),
    FOREIGN KEY (organizer_id) REFERENCES users(id) ON DELETE CASCADE
);

CREATE TABLE IF NOT EXISTS memberships (
    id TEXT PRIMARY KEY,
    circle_id TEXT NOT NULL,
    user_id TEXT NOT NULL,
    turn_number INTEGER NOT NULL DEFAULT 0,
    status TEXT NOT NULL,
    share_halves INTEGER NOT NULL CHECK (share_halves IN (1, 2)),
    payment_status TEXT NOT NULL,
    payment_proof_ref TEXT NOT NULL DEFAULT '',
    joined_at INTEGER NOT NULL,
    updated_at INTEGER NOT NULL,
    UNIQUE (circle_id, user_id),
    FOREIGN KEY (circle_id) REFERENCES circles(id) ON DELETE CASCADE,
    FOREIGN KEY (user_id) REFERENCES users(id) ON DELETE CASCADE
);

CREATE INDEX IF NOT EXISTS idx_circles_organizer_id ON circles(organizer_id);
CREATE INDEX IF NOT EXISTS idx_memberships_circle_id ON memberships(circle_id);
CREATE INDEX IF NOT EXISTS idx_memberships_user_id ON memberships(user_id);
`

// runMigrations executes the schema setup.
func runMigrations(ctx context.Context, db *sql.DB) error {
	_, err := db.ExecContext(ctx, schema)
	return err
}
