// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package models

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWithVote_CopyOnWrite(t *testing.T) {
	now := time.Date(2025, 5, 1, 10, 0, 0, 0, time.UTC)
	base := NewTopic("t1", "Lunch", "", []string{"Pizza", "Sushi"}, now.Add(time.Hour), now)

	first := base.WithVote(Vote{UserID: "u1", OptionIndex: 0, Timestamp: now})
	second := first.WithVote(Vote{UserID: "u2", OptionIndex: 1, Timestamp: now.Add(time.Second)})

	assert.Zero(t, base.TotalVotes(), "base topic modified")
	assert.Zero(t, base.Options[0].Count)
	assert.Empty(t, base.Votes)

	assert.Equal(t, 1, first.TotalVotes(), "first snapshot modified")
	assert.Zero(t, first.Options[1].Count)
	assert.Len(t, first.Votes, 1)

	assert.Equal(t, []int{1, 1}, second.Counts())
	assert.True(t, second.HasVoted("u1"))
	assert.True(t, second.HasVoted("u2"))
	require.Len(t, second.Votes, 2)
	assert.Equal(t, "u1", second.Votes[0].UserID)
	assert.Equal(t, "u2", second.Votes[1].UserID)

	for _, topic := range []Topic{base, first, second} {
		assert.True(t, topic.Consistent(), "topic with %d voters", topic.TotalVotes())
	}
}

func TestWithVote_SharedBackingArray(t *testing.T) {
	now := time.Now()
	base := NewTopic("t1", "T", "", []string{"A", "B"}, now.Add(time.Hour), now)
	base.Votes = make([]Vote, 0, 8)

	a := base.WithVote(Vote{UserID: "a", OptionIndex: 0})
	b := base.WithVote(Vote{UserID: "b", OptionIndex: 1})

	assert.Equal(t, "a", a.Votes[0].UserID, "sibling snapshot overwrote vote")
	assert.Equal(t, "b", b.Votes[0].UserID)
}

func TestConsistent_DetectsMismatch(t *testing.T) {
	topic := NewTopic("t1", "T", "", []string{"A", "B"}, time.Now(), time.Now())
	topic.Options[0].Count = 1
	assert.False(t, topic.Consistent(), "count without voter")
}

func TestTopicView_ResultsOmittedUntilRevealed(t *testing.T) {
	hidden := TopicView{ID: "x", Status: StatusClosed}
	data, err := json.Marshal(hidden)
	require.NoError(t, err)

	var fields map[string]any
	require.NoError(t, json.Unmarshal(data, &fields))
	assert.NotContains(t, fields, "results")

	revealed := TopicView{ID: "x", Results: []int{0, 0}}
	assert.True(t, revealed.Revealed(), "zero tallies still count as revealed")

	data, err = json.Marshal(revealed)
	require.NoError(t, err)
	fields = nil
	require.NoError(t, json.Unmarshal(data, &fields))
	assert.Contains(t, fields, "results")
}

func TestTopic_LegacyDocument(t *testing.T) {
	legacy := `{
		"id": "3f0c", "title": "Best editor", "desc": "",
		"options": [{"text": "vim", "count": 1}, {"text": "emacs", "count": 0}],
		"deadline": "2025-01-02T03:04:05.000Z",
		"created": "2025-01-01T00:00:00.000Z",
		"voters": {"u1": 0},
		"votes": [{"userId": "u1", "optionIndex": 0, "ts": "2025-01-01T01:00:00.000Z"}]
	}`

	var topic Topic
	require.NoError(t, json.Unmarshal([]byte(legacy), &topic))
	assert.Equal(t, "vim", topic.Options[0].Text)
	assert.Equal(t, 0, topic.Voters["u1"])
	assert.Equal(t, "u1", topic.Votes[0].UserID)
	assert.True(t, topic.Consistent())
}

func TestSession_LegacyDocument(t *testing.T) {
	var accounts Accounts
	doc := `{"users": [], "sessions": {"old": "u1", "new": {"userId": "u2", "expires": "2030-01-01T00:00:00Z"}}}`
	require.NoError(t, json.Unmarshal([]byte(doc), &accounts))

	old := accounts.Sessions["old"]
	assert.Equal(t, "u1", old.UserID)
	assert.True(t, old.Expires.IsZero(), "legacy sessions carry no expiry")

	current := accounts.Sessions["new"]
	assert.Equal(t, "u2", current.UserID)
	assert.Equal(t, 2030, current.Expires.Year())
}

func TestCastVoteRequest_Option(t *testing.T) {
	testCases := []struct {
		name string
		body string
		want OptionChoice
	}{
		{"number", `{"option": 1}`, 1},
		{"numeric string", `{"option": "1"}`, 1},
		{"padded string", `{"option": " 2 "}`, 2},
		{"whole float string", `{"option": "1.0"}`, 1},
		{"exponent", `{"option": 1e0}`, 1},
		{"fraction", `{"option": 1.5}`, -1},
		{"negative", `{"option": -1}`, -1},
		{"word", `{"option": "first"}`, -1},
		{"empty string", `{"option": ""}`, -1},
		{"huge", `{"option": 1e30}`, -1},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			var req CastVoteRequest
			require.NoError(t, json.Unmarshal([]byte(tc.body), &req))
			require.NotNil(t, req.Option)
			assert.Equal(t, tc.want, *req.Option)
		})
	}

	t.Run("null and missing", func(t *testing.T) {
		for _, body := range []string{`{"option": null}`, `{}`} {
			var req CastVoteRequest
			require.NoError(t, json.Unmarshal([]byte(body), &req))
			assert.Nil(t, req.Option, body)
		}
	})

	t.Run("wrong type", func(t *testing.T) {
		for _, body := range []string{`{"option": true}`, `{"option": [1]}`, `{"option": {"i": 1}}`} {
			var req CastVoteRequest
			assert.Error(t, json.Unmarshal([]byte(body), &req), body)
		}
	})
}
