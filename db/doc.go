// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package db persists topics and accounts.

Two backends implement both store.Persister and auth.Persister:

# JSON File

	files, err := db.OpenFile("data.json")

One document holding users, sessions and topics. Existing data.json
files from earlier deployments load unchanged. Each save rewrites the
document through a temp file, fsync and rename, so a crash leaves either
the old or the new document on disk.

# SQL

	conn, err := db.Connect(db.TypeSQLite, "file:timed-vote.db")
	sqlStore := db.NewSQLStore(conn)

SQLite (modernc.org/sqlite) and PostgreSQL (github.com/lib/pq) share the
same schema and queries; the caller registers the driver with a blank
import. CreateSchema is idempotent.

Tables:

  - topic: id, title, description, deadline, created_at
  - topic_option: topic_id, position, label, tally
  - vote: topic_id, user_id, option_index, seq, cast_at (one row per user per topic)
  - app_user: id, name, pass_hash, created_at
  - user_session: token, user_id, expires_at

SaveTopics receives the full state but only writes new topics, changed
tallies and votes appended since the previous save. Votes are never
updated or deleted. Timestamps are stored as fixed-width RFC 3339 text.
*/
package db
