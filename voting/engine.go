// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package voting

import (
	"cmp"
	"context"
	"fmt"
	"slices"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"

	"github.com/danielhkuo/timed-vote/clock"
	"github.com/danielhkuo/timed-vote/models"
	"github.com/danielhkuo/timed-vote/store"
)

// DefaultRevealDelay is how long results stay hidden after the deadline
const DefaultRevealDelay = 10 * time.Minute

// Engine enforces the topic lifecycle and the one-vote-per-user rule.
type Engine struct {
	topics      *store.Store
	clock       clock.Clock
	revealDelay time.Duration
	newID       func() string
}

// NewEngine returns an Engine over topics. A negative revealDelay falls
// back to DefaultRevealDelay; zero reveals results at the deadline.
func NewEngine(topics *store.Store, c clock.Clock, revealDelay time.Duration) *Engine {
	if revealDelay < 0 {
		revealDelay = DefaultRevealDelay
	}
	return &Engine{
		topics:      topics,
		clock:       c,
		revealDelay: revealDelay,
		newID:       uuid.NewString,
	}
}

// RevealDelay returns the configured delay between deadline and reveal.
func (e *Engine) RevealDelay() time.Duration {
	return e.revealDelay
}

// CreateTopic validates req and stores a new open topic.
func (e *Engine) CreateTopic(ctx context.Context, req models.CreateTopicRequest) (models.TopicView, error) {
	const op = "voting.CreateTopic"

	now := e.clock.Now()

	title := truncate(strings.TrimSpace(req.Title), models.MaxTitleLen)
	if title == "" {
		return models.TopicView{}, fmt.Errorf("%s: %w", op, invalid("title", "is required"))
	}

	if len(req.Options) < models.MinOptions {
		return models.TopicView{}, fmt.Errorf("%s: %w", op,
			invalid("options", fmt.Sprintf("must have at least %d entries", models.MinOptions)))
	}
	options := make([]string, len(req.Options))
	for i, text := range req.Options {
		text = truncate(strings.TrimSpace(text), models.MaxOptionLen)
		if text == "" {
			return models.TopicView{}, fmt.Errorf("%s: %w", op,
				invalid("options", fmt.Sprintf("entry %d is empty", i)))
		}
		options[i] = text
	}

	deadline, err := parseDeadline(req.Deadline)
	if err != nil {
		return models.TopicView{}, fmt.Errorf("%s: %w", op, invalid("deadline", "must be a valid timestamp"))
	}
	if !deadline.After(now) {
		return models.TopicView{}, fmt.Errorf("%s: %w", op, invalid("deadline", "must be in the future"))
	}

	description := truncate(req.Description, models.MaxDescriptionLen)

	topic := models.NewTopic(e.newID(), title, description, options, deadline.UTC(), now.UTC())
	if err := e.topics.Insert(ctx, topic); err != nil {
		return models.TopicView{}, storeErr(op, err)
	}

	return Project(topic, now, e.revealDelay), nil
}

// CastVote records userID's choice of optionIndex on topicID. The
// existence, phase, option and duplicate checks and the tally update
// happen as one step under the topic's lock.
func (e *Engine) CastVote(ctx context.Context, topicID, userID string, optionIndex int) error {
	const op = "voting.CastVote"

	if userID == "" {
		return fmt.Errorf("%s: %w", op, invalid("user", "is required"))
	}

	err := e.topics.Update(ctx, topicID, func(cur models.Topic) (models.Topic, error) {
		now := e.clock.Now()

		switch PhaseAt(cur, now, e.revealDelay) {
		case PhaseClosedPending:
			return cur, &ClosedError{At: now, RevealAt: RevealAt(cur, e.revealDelay)}
		case PhaseRevealed:
			return cur, ErrAlreadyRevealed
		}

		if optionIndex < 0 || optionIndex >= len(cur.Options) {
			return cur, ErrInvalidOption
		}
		if cur.HasVoted(userID) {
			return cur, ErrDuplicateVote
		}

		return cur.WithVote(models.Vote{
			UserID:      userID,
			OptionIndex: optionIndex,
			Timestamp:   now.UTC(),
		}), nil
	})
	if err != nil {
		return storeErr(op, err)
	}
	return nil
}

// GetTopic returns the public view of a topic.
func (e *Engine) GetTopic(topicID string) (models.TopicView, error) {
	topic, ok := e.topics.Get(topicID)
	if !ok {
		return models.TopicView{}, fmt.Errorf("voting.GetTopic: %w", ErrNotFound)
	}
	return Project(topic, e.clock.Now(), e.revealDelay), nil
}

// GetResults returns final tallies once a topic is revealed.
func (e *Engine) GetResults(topicID string) (models.TopicResults, error) {
	const op = "voting.GetResults"

	topic, ok := e.topics.Get(topicID)
	if !ok {
		return models.TopicResults{}, fmt.Errorf("%s: %w", op, ErrNotFound)
	}
	if PhaseAt(topic, e.clock.Now(), e.revealDelay) != PhaseRevealed {
		return models.TopicResults{}, fmt.Errorf("%s: %w", op, ErrResultsNotYetAvailable)
	}

	return models.TopicResults{
		ID:         topic.ID,
		Title:      topic.Title,
		Options:    topic.OptionTexts(),
		Results:    topic.Counts(),
		TotalVotes: topic.TotalVotes(),
	}, nil
}

// ListTopics returns every topic, newest first.
func (e *Engine) ListTopics() []models.TopicView {
	now := e.clock.Now()
	topics := e.topics.List()

	views := make([]models.TopicView, len(topics))
	for i, t := range topics {
		views[i] = Project(t, now, e.revealDelay)
	}
	slices.SortStableFunc(views, func(a, b models.TopicView) int {
		if c := b.Created.Compare(a.Created); c != 0 {
			return c
		}
		return cmp.Compare(a.ID, b.ID)
	})
	return views
}

// Phase reports the current phase of a topic.
func (e *Engine) Phase(topicID string) (Phase, error) {
	topic, ok := e.topics.Get(topicID)
	if !ok {
		return 0, fmt.Errorf("voting.Phase: %w", ErrNotFound)
	}
	return PhaseAt(topic, e.clock.Now(), e.revealDelay), nil
}

// Accepted deadline layouts. The zone-less forms come from HTML
// datetime-local inputs and are read in the server's local zone.
var (
	zonedLayouts = []string{time.RFC3339Nano, time.RFC3339}
	localLayouts = []string{"2006-01-02T15:04:05", "2006-01-02T15:04", "2006-01-02 15:04:05", "2006-01-02 15:04"}
)

func parseDeadline(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}, fmt.Errorf("empty deadline")
	}
	for _, layout := range zonedLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t, nil
		}
	}
	for _, layout := range localLayouts {
		if t, err := time.ParseInLocation(layout, s, time.Local); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("unrecognized deadline %q", s)
}

// truncate cuts s to at most n characters.
func truncate(s string, n int) string {
	if utf8.RuneCountInString(s) <= n {
		return s
	}
	runes := []rune(s)
	return string(runes[:n])
}
