// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package store

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"sync/atomic"

	"github.com/danielhkuo/timed-vote/models"
)

var (
	ErrTopicNotFound = errors.New("topic not found")
	ErrTopicExists   = errors.New("topic already exists")
	ErrPersistence   = errors.New("failed to persist topics")
)

// Persister durably stores the full set of topics.
type Persister interface {
	LoadTopics(ctx context.Context) ([]models.Topic, error)
	SaveTopics(ctx context.Context, topics []models.Topic) error
}

// UpdateFunc receives the topic's current state and returns the state
// to publish. Returning an error aborts the update with nothing saved.
type UpdateFunc func(current models.Topic) (models.Topic, error)

// Store owns every topic. Each topic's published state is an immutable
// snapshot, so reads never block on writers. Writes to one topic are
// serialized by that topic's lock; persistence is serialized store-wide
// and always happens before the new state is published.
//
// Lock order: entry.mu, then persistMu, then mu.
type Store struct {
	persister Persister

	mu     sync.RWMutex
	topics map[string]*entry
	order  []string

	persistMu sync.Mutex
}

type entry struct {
	mu      sync.Mutex
	current atomic.Pointer[models.Topic]
}

// Open loads all topics from p.
func Open(ctx context.Context, p Persister) (*Store, error) {
	topics, err := p.LoadTopics(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load topics: %w", err)
	}

	s := &Store{
		persister: p,
		topics:    make(map[string]*entry, len(topics)),
		order:     make([]string, 0, len(topics)),
	}
	for i := range topics {
		t := topics[i]
		if _, dup := s.topics[t.ID]; dup {
			return nil, fmt.Errorf("%w: %s", ErrTopicExists, t.ID)
		}
		if !t.Consistent() {
			slog.Warn("loaded topic with inconsistent tallies", "topic_id", t.ID)
		}
		e := &entry{}
		e.current.Store(&t)
		s.topics[t.ID] = e
		s.order = append(s.order, t.ID)
	}

	slog.Info("topics loaded", "count", len(topics))
	return s, nil
}

// Get returns the published snapshot of a topic.
func (s *Store) Get(id string) (models.Topic, bool) {
	s.mu.RLock()
	e, ok := s.topics[id]
	s.mu.RUnlock()
	if !ok {
		return models.Topic{}, false
	}
	return *e.current.Load(), true
}

// List returns every topic's snapshot in insertion order.
func (s *Store) List() []models.Topic {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.snapshotLocked("", nil)
}

// Len returns the number of topics.
func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.order)
}

// Insert persists and then publishes a new topic.
func (s *Store) Insert(ctx context.Context, t models.Topic) error {
	s.persistMu.Lock()
	defer s.persistMu.Unlock()

	s.mu.RLock()
	_, exists := s.topics[t.ID]
	var all []models.Topic
	if !exists {
		all = append(s.snapshotLocked("", nil), t)
	}
	s.mu.RUnlock()
	if exists {
		return fmt.Errorf("%w: %s", ErrTopicExists, t.ID)
	}

	if err := s.persister.SaveTopics(ctx, all); err != nil {
		return fmt.Errorf("%w: %w", ErrPersistence, err)
	}

	e := &entry{}
	e.current.Store(&t)

	s.mu.Lock()
	s.topics[t.ID] = e
	s.order = append(s.order, t.ID)
	s.mu.Unlock()
	return nil
}

// Update runs fn under the topic's lock and, if fn succeeds, persists
// the returned state before publishing it. Concurrent Updates on the
// same topic run one after another, each seeing the previous result.
func (s *Store) Update(ctx context.Context, id string, fn UpdateFunc) error {
	s.mu.RLock()
	e, ok := s.topics[id]
	s.mu.RUnlock()
	if !ok {
		return ErrTopicNotFound
	}

	e.mu.Lock()
	defer e.mu.Unlock()

	next, err := fn(*e.current.Load())
	if err != nil {
		return err
	}
	if next.ID != id {
		return fmt.Errorf("update changed topic id %q to %q", id, next.ID)
	}

	s.persistMu.Lock()
	defer s.persistMu.Unlock()

	s.mu.RLock()
	all := s.snapshotLocked(id, &next)
	s.mu.RUnlock()

	if err := s.persister.SaveTopics(ctx, all); err != nil {
		return fmt.Errorf("%w: %w", ErrPersistence, err)
	}

	e.current.Store(&next)
	return nil
}

// Flush saves the published state of every topic.
func (s *Store) Flush(ctx context.Context) error {
	s.persistMu.Lock()
	defer s.persistMu.Unlock()

	s.mu.RLock()
	all := s.snapshotLocked("", nil)
	s.mu.RUnlock()

	if err := s.persister.SaveTopics(ctx, all); err != nil {
		return fmt.Errorf("%w: %w", ErrPersistence, err)
	}
	return nil
}

// snapshotLocked collects published topics in insertion order,
// substituting replacement for the topic with the given id.
// Caller holds s.mu.
func (s *Store) snapshotLocked(id string, replacement *models.Topic) []models.Topic {
	all := make([]models.Topic, 0, len(s.order)+1)
	for _, tid := range s.order {
		if replacement != nil && tid == id {
			all = append(all, *replacement)
			continue
		}
		all = append(all, *s.topics[tid].current.Load())
	}
	return all
}
