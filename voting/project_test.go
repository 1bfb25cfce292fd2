// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package voting

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/danielhkuo/timed-vote/models"
	"github.com/danielhkuo/timed-vote/testutil"
)

func TestProject(t *testing.T) {
	delay := 10 * time.Minute
	topic := testutil.NewTestTopic("t1", testutil.Epoch, time.Hour, "Red", "Blue")
	topic = topic.WithVote(models.Vote{UserID: "u1", OptionIndex: 1})

	tests := []struct {
		name       string
		now        time.Time
		wantStatus string
		revealed   bool
	}{
		{"open", testutil.Epoch, models.StatusOpen, false},
		{"closed pending", testutil.Epoch.Add(time.Hour), models.StatusClosed, false},
		{"revealed", testutil.Epoch.Add(time.Hour + delay), models.StatusClosed, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			view := Project(topic, tt.now, delay)

			assert.Equal(t, tt.wantStatus, view.Status)
			assert.Equal(t, 1, view.TotalVotes)
			assert.True(t, view.RevealAt.Equal(topic.Deadline.Add(delay)), "RevealAt = %v", view.RevealAt)
			require.Equal(t, tt.revealed, view.Revealed())
			if tt.revealed {
				assert.Equal(t, []int{0, 1}, view.Results)
			}
			require.Len(t, view.Options, 2)
			assert.Equal(t, "Red", view.Options[0].Text)
		})
	}
}

func TestProject_Deterministic(t *testing.T) {
	topic := testutil.NewTestTopic("t1", testutil.Epoch, time.Minute)
	now := testutil.Epoch.Add(time.Hour)

	a := Project(topic, now, time.Minute)
	b := Project(topic, now, time.Minute)
	assert.Equal(t, a, b)
}

func TestPhaseString(t *testing.T) {
	for phase, want := range map[Phase]string{
		PhaseOpen:          "open",
		PhaseClosedPending: "closed-pending",
		PhaseRevealed:      "revealed",
		Phase(42):          "unknown",
	} {
		assert.Equal(t, want, phase.String(), "Phase(%d)", int(phase))
	}
}
