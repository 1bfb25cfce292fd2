// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package db

import (
	"database/sql"
	"fmt"
)

// CreateSchema creates all tables needed for the application.
// Safe to call multiple times - uses IF NOT EXISTS.
func CreateSchema(db *sql.DB) error {
	_, err := db.Exec(schema)
	if err != nil {
		return fmt.Errorf("failed to create schema: %w", err)
	}

	return nil
}

// Timestamps are RFC 3339 text so both drivers round-trip them unchanged.
const schema = `
-- Topics
CREATE TABLE IF NOT EXISTS topic (
    id TEXT PRIMARY KEY,
    title TEXT NOT NULL,
    description TEXT NOT NULL DEFAULT '',
    deadline TEXT NOT NULL,
    created_at TEXT NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_topic_created_at ON topic(created_at);

-- Options (label fixed at creation, only tally changes)
CREATE TABLE IF NOT EXISTS topic_option (
    topic_id TEXT NOT NULL REFERENCES topic(id) ON DELETE CASCADE,
    position INTEGER NOT NULL,
    label TEXT NOT NULL,
    tally INTEGER NOT NULL DEFAULT 0 CHECK (tally >= 0),
    PRIMARY KEY (topic_id, position)
);

-- Votes (append-only; one per user per topic)
CREATE TABLE IF NOT EXISTS vote (
    topic_id TEXT NOT NULL REFERENCES topic(id) ON DELETE CASCADE,
    user_id TEXT NOT NULL,
    option_index INTEGER NOT NULL,
    seq INTEGER NOT NULL,
    cast_at TEXT NOT NULL,
    PRIMARY KEY (topic_id, user_id),
    UNIQUE (topic_id, seq)
);

CREATE INDEX IF NOT EXISTS idx_vote_topic_id ON vote(topic_id);

-- Users
CREATE TABLE IF NOT EXISTS app_user (
    id TEXT PRIMARY KEY,
    name TEXT NOT NULL,
    pass_hash TEXT NOT NULL,
    created_at TEXT NOT NULL
);

CREATE UNIQUE INDEX IF NOT EXISTS idx_app_user_name ON app_user(LOWER(name));

-- Sessions
CREATE TABLE IF NOT EXISTS user_session (
    token TEXT PRIMARY KEY,
    user_id TEXT NOT NULL REFERENCES app_user(id) ON DELETE CASCADE,
    expires_at TEXT NOT NULL DEFAULT ''
);
`
