// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package testutil

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"maps"
	"net/http"
	"net/http/httptest"
	"slices"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/danielhkuo/timed-vote/models"
)

// ErrInjected is returned by MemoryPersister saves while failures are enabled
var ErrInjected = errors.New("injected save failure")

// Epoch is the fixed start time used by tests with a fake clock
var Epoch = time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)

// MemoryPersister keeps saved state in memory and records every save.
// It satisfies both the topic store and the account persisters.
type MemoryPersister struct {
	mu           sync.Mutex
	topics       []models.Topic
	accounts     models.Accounts
	topicSaves   int
	accountSaves int
	failSaves    bool
}

func NewMemoryPersister(initial ...models.Topic) *MemoryPersister {
	return &MemoryPersister{
		topics:   slices.Clone(initial),
		accounts: models.Accounts{Sessions: map[string]models.Session{}},
	}
}

// FailSaves makes every following save return ErrInjected until reset.
func (p *MemoryPersister) FailSaves(fail bool) {
	p.mu.Lock()
	p.failSaves = fail
	p.mu.Unlock()
}

func (p *MemoryPersister) LoadTopics(ctx context.Context) ([]models.Topic, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	return slices.Clone(p.topics), nil
}

func (p *MemoryPersister) SaveTopics(ctx context.Context, topics []models.Topic) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.failSaves {
		return ErrInjected
	}
	p.topics = slices.Clone(topics)
	p.topicSaves++
	return nil
}

func (p *MemoryPersister) LoadAccounts(ctx context.Context) (models.Accounts, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	return models.Accounts{
		Users:    slices.Clone(p.accounts.Users),
		Sessions: maps.Clone(p.accounts.Sessions),
	}, nil
}

func (p *MemoryPersister) SaveAccounts(ctx context.Context, accounts models.Accounts) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.failSaves {
		return ErrInjected
	}
	p.accounts = models.Accounts{
		Users:    slices.Clone(accounts.Users),
		Sessions: maps.Clone(accounts.Sessions),
	}
	p.accountSaves++
	return nil
}

// SavedTopics returns the last successfully saved topics.
func (p *MemoryPersister) SavedTopics() []models.Topic {
	p.mu.Lock()
	defer p.mu.Unlock()
	return slices.Clone(p.topics)
}

// SavedTopic returns the last saved copy of one topic.
func (p *MemoryPersister) SavedTopic(id string) (models.Topic, bool) {
	p.mu.Lock()
	defer p.mu.Unlock()
	for _, t := range p.topics {
		if t.ID == id {
			return t, true
		}
	}
	return models.Topic{}, false
}

func (p *MemoryPersister) TopicSaves() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.topicSaves
}

func (p *MemoryPersister) SavedAccounts() models.Accounts {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.accounts
}

// NewTestTopic builds a topic with the given options that closes after
// ttl and was created at created.
func NewTestTopic(id string, created time.Time, ttl time.Duration, options ...string) models.Topic {
	if len(options) == 0 {
		options = []string{"A", "B"}
	}
	return models.NewTopic(id, "Test Topic", "A test topic", options, created.Add(ttl), created)
}

// CheckConsistent fails the test if the topic's tallies disagree.
func CheckConsistent(t *testing.T, topic models.Topic) {
	t.Helper()
	sum := 0
	for _, o := range topic.Options {
		sum += o.Count
	}
	assert.Equal(t, sum, len(topic.Voters), "topic %s: sum(counts) vs voters", topic.ID)
	assert.Equal(t, sum, len(topic.Votes), "topic %s: sum(counts) vs votes", topic.ID)
}

// MakeRequest creates an HTTP test request
func MakeRequest(method, path string, body interface{}, headers map[string]string) *http.Request {
	var req *http.Request
	if body != nil {
		jsonBody, _ := json.Marshal(body)
		req = httptest.NewRequest(method, path, bytes.NewReader(jsonBody))
		req.Header.Set("Content-Type", "application/json")
	} else {
		req = httptest.NewRequest(method, path, nil)
	}

	for k, v := range headers {
		req.Header.Set(k, v)
	}

	return req
}

// AssertStatus checks that the response has the expected status code
func AssertStatus(t *testing.T, w *httptest.ResponseRecorder, expected int) bool {
	t.Helper()
	return assert.Equal(t, expected, w.Code, "body: %s", w.Body.String())
}

// AssertJSON decodes the response body into the provided struct
func AssertJSON(t *testing.T, w *httptest.ResponseRecorder, v interface{}) {
	t.Helper()
	require.NoError(t, json.NewDecoder(w.Body).Decode(v), "decode JSON response")
}
