// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package db

import (
	"context"
	"database/sql"
	"fmt"
	"slices"
	"sync"
	"time"

	"github.com/danielhkuo/timed-vote/models"
)

// Supported database types and the driver each one uses
const (
	TypeSQLite   = "sqlite"
	TypePostgres = "postgres"
)

// Connect opens and pings a database of the given type and makes sure
// the schema exists. The driver must be registered by the caller.
func Connect(dbType, url string) (*sql.DB, error) {
	switch dbType {
	case TypeSQLite, TypePostgres:
	default:
		return nil, fmt.Errorf("unsupported database type %q", dbType)
	}

	conn, err := sql.Open(dbType, url)
	if err != nil {
		return nil, fmt.Errorf("database connection failed: %w", err)
	}
	if dbType == TypeSQLite {
		// One writer at a time; also keeps :memory: databases on one connection
		conn.SetMaxOpenConns(1)
	}
	if err := conn.Ping(); err != nil {
		conn.Close()
		return nil, fmt.Errorf("database ping failed: %w", err)
	}
	if err := CreateSchema(conn); err != nil {
		conn.Close()
		return nil, err
	}
	return conn, nil
}

// SQLStore persists topics and accounts in a SQL database. Only rows
// that changed since the last successful save are written.
type SQLStore struct {
	db *sql.DB

	mu         sync.Mutex
	savedVotes map[string]int   // topic id -> votes already stored
	savedTally map[string][]int // topic id -> tallies already stored
}

func NewSQLStore(db *sql.DB) *SQLStore {
	return &SQLStore{
		db:         db,
		savedVotes: map[string]int{},
		savedTally: map[string][]int{},
	}
}

func (s *SQLStore) LoadTopics(ctx context.Context) ([]models.Topic, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	rows, err := s.db.QueryContext(ctx, `
		SELECT id, title, description, deadline, created_at
		FROM topic
		ORDER BY created_at, id
	`)
	if err != nil {
		return nil, fmt.Errorf("failed to query topics: %w", err)
	}
	defer rows.Close()

	var topics []models.Topic
	index := map[string]int{}
	for rows.Next() {
		var t models.Topic
		var deadline, created string
		if err := rows.Scan(&t.ID, &t.Title, &t.Description, &deadline, &created); err != nil {
			return nil, fmt.Errorf("failed to scan topic: %w", err)
		}
		if t.Deadline, err = parseTime(deadline); err != nil {
			return nil, fmt.Errorf("topic %s: %w", t.ID, err)
		}
		if t.Created, err = parseTime(created); err != nil {
			return nil, fmt.Errorf("topic %s: %w", t.ID, err)
		}
		t.Options = []models.Option{}
		t.Voters = map[string]int{}
		t.Votes = []models.Vote{}
		index[t.ID] = len(topics)
		topics = append(topics, t)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read topics: %w", err)
	}

	optionRows, err := s.db.QueryContext(ctx, `
		SELECT topic_id, label, tally
		FROM topic_option
		ORDER BY topic_id, position
	`)
	if err != nil {
		return nil, fmt.Errorf("failed to query options: %w", err)
	}
	defer optionRows.Close()

	for optionRows.Next() {
		var topicID string
		var opt models.Option
		if err := optionRows.Scan(&topicID, &opt.Text, &opt.Count); err != nil {
			return nil, fmt.Errorf("failed to scan option: %w", err)
		}
		if i, ok := index[topicID]; ok {
			topics[i].Options = append(topics[i].Options, opt)
		}
	}
	if err := optionRows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read options: %w", err)
	}

	voteRows, err := s.db.QueryContext(ctx, `
		SELECT topic_id, user_id, option_index, cast_at
		FROM vote
		ORDER BY topic_id, seq
	`)
	if err != nil {
		return nil, fmt.Errorf("failed to query votes: %w", err)
	}
	defer voteRows.Close()

	for voteRows.Next() {
		var topicID, castAt string
		var v models.Vote
		if err := voteRows.Scan(&topicID, &v.UserID, &v.OptionIndex, &castAt); err != nil {
			return nil, fmt.Errorf("failed to scan vote: %w", err)
		}
		if v.Timestamp, err = parseTime(castAt); err != nil {
			return nil, fmt.Errorf("vote in topic %s: %w", topicID, err)
		}
		if i, ok := index[topicID]; ok {
			topics[i].Votes = append(topics[i].Votes, v)
			topics[i].Voters[v.UserID] = v.OptionIndex
		}
	}
	if err := voteRows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read votes: %w", err)
	}

	for _, t := range topics {
		s.savedVotes[t.ID] = len(t.Votes)
		s.savedTally[t.ID] = t.Counts()
	}
	return topics, nil
}

// SaveTopics writes the full topic state in one transaction.
func (s *SQLStore) SaveTopics(ctx context.Context, topics []models.Topic) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	votes := make(map[string]int, len(topics))
	tallies := make(map[string][]int, len(topics))

	for _, t := range topics {
		stored, known := s.savedVotes[t.ID]
		if !known {
			_, err = tx.ExecContext(ctx, `
				INSERT INTO topic (id, title, description, deadline, created_at)
				VALUES ($1, $2, $3, $4, $5)
				ON CONFLICT (id) DO NOTHING
			`, t.ID, t.Title, t.Description, formatTime(t.Deadline), formatTime(t.Created))
			if err != nil {
				return fmt.Errorf("failed to insert topic %s: %w", t.ID, err)
			}
		}

		counts := t.Counts()
		if !known || !slices.Equal(s.savedTally[t.ID], counts) {
			for pos, opt := range t.Options {
				_, err = tx.ExecContext(ctx, `
					INSERT INTO topic_option (topic_id, position, label, tally)
					VALUES ($1, $2, $3, $4)
					ON CONFLICT (topic_id, position) DO UPDATE SET tally = excluded.tally
				`, t.ID, pos, opt.Text, opt.Count)
				if err != nil {
					return fmt.Errorf("failed to save option %d of topic %s: %w", pos, t.ID, err)
				}
			}
		}

		for seq := stored; seq < len(t.Votes); seq++ {
			v := t.Votes[seq]
			_, err = tx.ExecContext(ctx, `
				INSERT INTO vote (topic_id, user_id, option_index, seq, cast_at)
				VALUES ($1, $2, $3, $4, $5)
				ON CONFLICT (topic_id, user_id) DO NOTHING
			`, t.ID, v.UserID, v.OptionIndex, seq, formatTime(v.Timestamp))
			if err != nil {
				return fmt.Errorf("failed to insert vote in topic %s: %w", t.ID, err)
			}
		}

		votes[t.ID] = len(t.Votes)
		tallies[t.ID] = counts
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit topics: %w", err)
	}

	for id, n := range votes {
		s.savedVotes[id] = n
		s.savedTally[id] = tallies[id]
	}
	return nil
}

func (s *SQLStore) LoadAccounts(ctx context.Context) (models.Accounts, error) {
	accounts := models.Accounts{Sessions: map[string]models.Session{}}

	rows, err := s.db.QueryContext(ctx, `
		SELECT id, name, pass_hash, created_at FROM app_user ORDER BY created_at, id
	`)
	if err != nil {
		return accounts, fmt.Errorf("failed to query users: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var u models.User
		var created string
		if err := rows.Scan(&u.ID, &u.Name, &u.PassHash, &created); err != nil {
			return accounts, fmt.Errorf("failed to scan user: %w", err)
		}
		if u.Created, err = parseTime(created); err != nil {
			return accounts, fmt.Errorf("user %s: %w", u.ID, err)
		}
		accounts.Users = append(accounts.Users, u)
	}
	if err := rows.Err(); err != nil {
		return accounts, fmt.Errorf("failed to read users: %w", err)
	}

	sessionRows, err := s.db.QueryContext(ctx, `SELECT token, user_id, expires_at FROM user_session`)
	if err != nil {
		return accounts, fmt.Errorf("failed to query sessions: %w", err)
	}
	defer sessionRows.Close()

	for sessionRows.Next() {
		var token, expires string
		var session models.Session
		if err := sessionRows.Scan(&token, &session.UserID, &expires); err != nil {
			return accounts, fmt.Errorf("failed to scan session: %w", err)
		}
		if expires != "" {
			if session.Expires, err = parseTime(expires); err != nil {
				return accounts, fmt.Errorf("session: %w", err)
			}
		}
		accounts.Sessions[token] = session
	}
	if err := sessionRows.Err(); err != nil {
		return accounts, fmt.Errorf("failed to read sessions: %w", err)
	}
	return accounts, nil
}

// SaveAccounts upserts users and replaces the session table.
func (s *SQLStore) SaveAccounts(ctx context.Context, accounts models.Accounts) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	for _, u := range accounts.Users {
		_, err = tx.ExecContext(ctx, `
			INSERT INTO app_user (id, name, pass_hash, created_at)
			VALUES ($1, $2, $3, $4)
			ON CONFLICT (id) DO UPDATE SET pass_hash = excluded.pass_hash
		`, u.ID, u.Name, u.PassHash, formatTime(u.Created))
		if err != nil {
			return fmt.Errorf("failed to save user %s: %w", u.ID, err)
		}
	}

	if _, err = tx.ExecContext(ctx, `DELETE FROM user_session`); err != nil {
		return fmt.Errorf("failed to clear sessions: %w", err)
	}
	for token, session := range accounts.Sessions {
		expires := ""
		if !session.Expires.IsZero() {
			expires = formatTime(session.Expires)
		}
		_, err = tx.ExecContext(ctx, `
			INSERT INTO user_session (token, user_id, expires_at) VALUES ($1, $2, $3)
		`, token, session.UserID, expires)
		if err != nil {
			return fmt.Errorf("failed to save session: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit accounts: %w", err)
	}
	return nil
}

// Fixed-width so stored timestamps sort as text
const timeLayout = "2006-01-02T15:04:05.000000000Z07:00"

func formatTime(t time.Time) string {
	return t.UTC().Format(timeLayout)
}

func parseTime(s string) (time.Time, error) {
	t, err := time.Parse(time.RFC3339Nano, s)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid timestamp %q: %w", s, err)
	}
	return t, nil
}
