// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package handlers

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/danielhkuo/timed-vote/auth"
	"github.com/danielhkuo/timed-vote/clock"
	"github.com/danielhkuo/timed-vote/cliparse"
	"github.com/danielhkuo/timed-vote/middleware"
	"github.com/danielhkuo/timed-vote/models"
	"github.com/danielhkuo/timed-vote/store"
	"github.com/danielhkuo/timed-vote/testutil"
	"github.com/danielhkuo/timed-vote/voting"
)

type testEnv struct {
	clock     *clock.FakeClock
	persister *testutil.MemoryPersister
	engine    *voting.Engine
	accounts  *auth.Service
	topics    *TopicHandler
	auth      *AuthHandler
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	ctx := context.Background()
	c := clock.Fake(testutil.Epoch)
	p := testutil.NewMemoryPersister()

	topics, err := store.Open(ctx, p)
	require.NoError(t, err)
	accounts, err := auth.Open(ctx, p, c, time.Hour)
	require.NoError(t, err)

	engine := voting.NewEngine(topics, c, voting.DefaultRevealDelay)
	return &testEnv{
		clock:     c,
		persister: p,
		engine:    engine,
		accounts:  accounts,
		topics:    NewTopicHandler(engine),
		auth:      NewAuthHandler(accounts, cliparse.Config{}),
	}
}

// createTopic creates a topic closing ttl from the fake clock's now
func (e *testEnv) createTopic(t *testing.T, ttl time.Duration, options ...string) models.TopicView {
	t.Helper()
	if len(options) == 0 {
		options = []string{"A", "B"}
	}
	view, err := e.engine.CreateTopic(context.Background(), models.CreateTopicRequest{
		Title:    "Test Topic",
		Options:  options,
		Deadline: e.clock.Now().Add(ttl).Format(time.RFC3339Nano),
	})
	require.NoError(t, err)
	return view
}

// asUser attaches a logged-in user to the request
func asUser(r *http.Request, userID string) *http.Request {
	return r.WithContext(middleware.WithUser(r.Context(), models.User{ID: userID, Name: userID}))
}

func voteRequest(topicID, userID string, option interface{}) *http.Request {
	req := testutil.MakeRequest("POST", "/api/topics/"+topicID+"/vote", map[string]interface{}{"option": option}, nil)
	req.SetPathValue("id", topicID)
	return asUser(req, userID)
}

// vote sends option as given, so callers can pass 1 or "1"
func (e *testEnv) vote(topicID, userID string, option interface{}) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	e.topics.CastVote(w, voteRequest(topicID, userID, option))
	return w
}
