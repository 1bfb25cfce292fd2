// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package clock

import (
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFakeClock(t *testing.T) {
	start := time.Date(2025, 3, 1, 9, 0, 0, 0, time.UTC)
	c := Fake(start)

	require.True(t, c.Now().Equal(start))

	c.Advance(1500 * time.Millisecond)
	assert.Equal(t, start.Add(1500*time.Millisecond), c.Now())

	c.Advance(-time.Hour)
	assert.Equal(t, start.Add(1500*time.Millisecond), c.Now(), "negative Advance moved the clock")

	later := start.Add(24 * time.Hour)
	c.Set(later)
	assert.Equal(t, later, c.Now())
}

func TestFakeClock_ConcurrentAdvance(t *testing.T) {
	start := time.Unix(0, 0)
	c := Fake(start)

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			c.Advance(time.Millisecond)
			_ = c.Now()
		}()
	}
	wg.Wait()

	assert.Equal(t, 50*time.Millisecond, c.Now().Sub(start))
}

func TestRealClock(t *testing.T) {
	before := time.Now()
	assert.False(t, Real().Now().Before(before))
}
