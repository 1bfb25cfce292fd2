// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package handlers

import (
	"fmt"
	"net/http"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/danielhkuo/timed-vote/testutil"
)

// TestConcurrentVotes verifies that simultaneous votes from different
// users are all counted exactly once
func TestConcurrentVotes(t *testing.T) {
	env := newTestEnv(t)
	topic := env.createTopic(t, time.Minute, "A", "B", "C")

	numVoters := 50
	var successCount atomic.Int32
	var wg sync.WaitGroup

	for i := 0; i < numVoters; i++ {
		wg.Add(1)
		go func(voterIdx int) {
			defer wg.Done()
			w := env.vote(topic.ID, fmt.Sprintf("voter-%d", voterIdx), voterIdx%3)
			if w.Code == http.StatusOK {
				successCount.Add(1)
			}
		}(i)
	}

	wg.Wait()

	assert.Equal(t, int32(numVoters), successCount.Load())

	saved, ok := env.persister.SavedTopic(topic.ID)
	require.True(t, ok, "topic persisted")
	testutil.CheckConsistent(t, saved)
	assert.Len(t, saved.Votes, numVoters)
}

// TestConcurrentDuplicateVotes verifies that one user racing the same
// vote gets exactly one acceptance
func TestConcurrentDuplicateVotes(t *testing.T) {
	env := newTestEnv(t)
	topic := env.createTopic(t, time.Minute)

	attempts := 20
	var okCount, conflictCount atomic.Int32
	var wg sync.WaitGroup

	for i := 0; i < attempts; i++ {
		wg.Add(1)
		go func(option int) {
			defer wg.Done()
			switch env.vote(topic.ID, "same-user", option).Code {
			case http.StatusOK:
				okCount.Add(1)
			case http.StatusConflict:
				conflictCount.Add(1)
			}
		}(i % 2)
	}

	wg.Wait()

	assert.Equal(t, int32(1), okCount.Load(), "exactly one accepted vote")
	assert.Equal(t, int32(attempts-1), conflictCount.Load())
}
