// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package auth

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"maps"
	"slices"
	"strings"
	"sync"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"

	"github.com/danielhkuo/timed-vote/clock"
	"github.com/danielhkuo/timed-vote/models"
)

var (
	ErrInvalidUsername    = errors.New("username must be 2-30 characters")
	ErrInvalidPassword    = errors.New("password must be 6-100 characters")
	ErrUserExists         = errors.New("username already taken")
	ErrInvalidCredentials = errors.New("invalid username or password")
	ErrPersistence        = errors.New("failed to persist accounts")
)

// DefaultSessionTTL is how long a login stays valid
const DefaultSessionTTL = 30 * 24 * time.Hour

// Persister durably stores users and sessions.
type Persister interface {
	LoadAccounts(ctx context.Context) (models.Accounts, error)
	SaveAccounts(ctx context.Context, accounts models.Accounts) error
}

// Service registers users, issues sessions and resolves session tokens
// to users. Every change is saved before it takes effect.
type Service struct {
	persister  Persister
	clock      clock.Clock
	sessionTTL time.Duration

	mu       sync.RWMutex
	users    []models.User
	byName   map[string]int // lowercased name -> index into users
	byID     map[string]int
	sessions map[string]models.Session
}

// Open loads accounts from p.
func Open(ctx context.Context, p Persister, c clock.Clock, sessionTTL time.Duration) (*Service, error) {
	accounts, err := p.LoadAccounts(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load accounts: %w", err)
	}
	if sessionTTL <= 0 {
		sessionTTL = DefaultSessionTTL
	}

	s := &Service{
		persister:  p,
		clock:      c,
		sessionTTL: sessionTTL,
		byName:     make(map[string]int, len(accounts.Users)),
		byID:       make(map[string]int, len(accounts.Users)),
		sessions:   maps.Clone(accounts.Sessions),
	}
	if s.sessions == nil {
		s.sessions = map[string]models.Session{}
	}
	for _, u := range accounts.Users {
		s.addUserLocked(u)
	}

	slog.Info("accounts loaded", "users", len(s.users), "sessions", len(s.sessions))
	return s, nil
}

// SessionTTL returns the lifetime of new sessions.
func (s *Service) SessionTTL() time.Duration {
	return s.sessionTTL
}

// Register creates a user. Names are unique ignoring case.
func (s *Service) Register(ctx context.Context, username, password string) (models.User, error) {
	const op = "auth.Register"

	name := strings.TrimSpace(username)
	if n := utf8.RuneCountInString(name); n < 2 || n > 30 {
		return models.User{}, fmt.Errorf("%s: %w", op, ErrInvalidUsername)
	}
	if n := len(password); n < 6 || n > 100 {
		return models.User{}, fmt.Errorf("%s: %w", op, ErrInvalidPassword)
	}

	hash, err := HashPassword(password)
	if err != nil {
		return models.User{}, fmt.Errorf("%s: %w", op, err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, taken := s.byName[strings.ToLower(name)]; taken {
		return models.User{}, fmt.Errorf("%s: %w", op, ErrUserExists)
	}

	user := models.User{
		ID:       uuid.NewString(),
		Name:     name,
		PassHash: hash,
		Created:  s.clock.Now().UTC(),
	}
	s.addUserLocked(user)

	if err := s.saveLocked(ctx); err != nil {
		s.removeLastUserLocked()
		return models.User{}, fmt.Errorf("%s: %w", op, err)
	}
	return user, nil
}

// Login checks credentials and starts a session, returning its token.
func (s *Service) Login(ctx context.Context, username, password string) (string, models.User, error) {
	const op = "auth.Login"

	name := strings.ToLower(strings.TrimSpace(username))

	s.mu.RLock()
	idx, ok := s.byName[name]
	var user models.User
	if ok {
		user = s.users[idx]
	}
	s.mu.RUnlock()
	if !ok {
		return "", models.User{}, fmt.Errorf("%s: %w", op, ErrInvalidCredentials)
	}

	valid, err := VerifyPassword(password, user.PassHash)
	if err != nil {
		slog.Warn("stored password hash unusable", "user_id", user.ID, "error", err)
		return "", models.User{}, fmt.Errorf("%s: %w", op, ErrInvalidCredentials)
	}
	if !valid {
		return "", models.User{}, fmt.Errorf("%s: %w", op, ErrInvalidCredentials)
	}

	var upgraded string
	if IsLegacyHash(user.PassHash) {
		if upgraded, err = HashPassword(password); err != nil {
			slog.Warn("failed to upgrade password hash", "user_id", user.ID, "error", err)
			upgraded = ""
		}
	}

	token, err := GenerateSessionToken()
	if err != nil {
		return "", models.User{}, fmt.Errorf("%s: %w", op, err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.clock.Now()
	prev := maps.Clone(s.sessions)
	prevHash := s.users[idx].PassHash
	s.pruneSessionsLocked(now)
	s.sessions[token] = models.Session{UserID: user.ID, Expires: now.Add(s.sessionTTL).UTC()}
	if upgraded != "" {
		s.users[idx].PassHash = upgraded
	}

	if err := s.saveLocked(ctx); err != nil {
		s.sessions = prev
		s.users[idx].PassHash = prevHash
		return "", models.User{}, fmt.Errorf("%s: %w", op, err)
	}
	return token, s.users[idx], nil
}

// Logout ends a session. Unknown tokens are not an error.
func (s *Service) Logout(ctx context.Context, token string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	session, ok := s.sessions[token]
	if !ok {
		return nil
	}
	delete(s.sessions, token)
	if err := s.saveLocked(ctx); err != nil {
		s.sessions[token] = session
		return fmt.Errorf("auth.Logout: %w", err)
	}
	return nil
}

// Resolve returns the user behind a session token.
func (s *Service) Resolve(token string) (models.User, bool) {
	if token == "" {
		return models.User{}, false
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	session, ok := s.sessions[token]
	if !ok || s.expired(session, s.clock.Now()) {
		return models.User{}, false
	}
	idx, ok := s.byID[session.UserID]
	if !ok {
		return models.User{}, false
	}
	return s.users[idx], true
}

func (s *Service) expired(session models.Session, now time.Time) bool {
	return !session.Expires.IsZero() && !now.Before(session.Expires)
}

func (s *Service) pruneSessionsLocked(now time.Time) {
	maps.DeleteFunc(s.sessions, func(_ string, session models.Session) bool {
		return s.expired(session, now)
	})
}

func (s *Service) addUserLocked(u models.User) {
	s.users = append(s.users, u)
	s.byName[strings.ToLower(u.Name)] = len(s.users) - 1
	s.byID[u.ID] = len(s.users) - 1
}

func (s *Service) removeLastUserLocked() {
	last := s.users[len(s.users)-1]
	delete(s.byName, strings.ToLower(last.Name))
	delete(s.byID, last.ID)
	s.users = s.users[:len(s.users)-1]
}

func (s *Service) saveLocked(ctx context.Context) error {
	err := s.persister.SaveAccounts(ctx, models.Accounts{
		Users:    slices.Clone(s.users),
		Sessions: maps.Clone(s.sessions),
	})
	if err != nil {
		return fmt.Errorf("%w: %w", ErrPersistence, err)
	}
	return nil
}
