// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package voting

import (
	"time"

	"github.com/danielhkuo/timed-vote/models"
)

// Phase is a topic's lifecycle stage. It is never stored; it follows
// from the deadline, the reveal delay and the current time.
type Phase int

const (
	PhaseOpen          Phase = iota // now < deadline
	PhaseClosedPending              // deadline <= now < revealAt
	PhaseRevealed                   // now >= revealAt
)

func (p Phase) String() string {
	switch p {
	case PhaseOpen:
		return "open"
	case PhaseClosedPending:
		return "closed-pending"
	case PhaseRevealed:
		return "revealed"
	default:
		return "unknown"
	}
}

// Status is the client-facing label. Both closed phases read "closed".
func (p Phase) Status() string {
	if p == PhaseOpen {
		return models.StatusOpen
	}
	return models.StatusClosed
}

// RevealAt is when a topic's results become public.
func RevealAt(t models.Topic, revealDelay time.Duration) time.Time {
	return t.Deadline.Add(revealDelay)
}

// PhaseAt classifies t at instant now.
func PhaseAt(t models.Topic, now time.Time, revealDelay time.Duration) Phase {
	switch {
	case now.Before(t.Deadline):
		return PhaseOpen
	case now.Before(RevealAt(t, revealDelay)):
		return PhaseClosedPending
	default:
		return PhaseRevealed
	}
}

// Project builds the public view of t as of now. Counts are included
// only once the topic is revealed.
func Project(t models.Topic, now time.Time, revealDelay time.Duration) models.TopicView {
	phase := PhaseAt(t, now, revealDelay)

	options := make([]models.OptionView, len(t.Options))
	for i, o := range t.Options {
		options[i] = models.OptionView{Text: o.Text}
	}

	view := models.TopicView{
		ID:          t.ID,
		Title:       t.Title,
		Description: t.Description,
		Options:     options,
		Deadline:    t.Deadline,
		Created:     t.Created,
		Status:      phase.Status(),
		RevealAt:    RevealAt(t, revealDelay),
		TotalVotes:  t.TotalVotes(),
	}
	if phase == PhaseRevealed {
		view.Results = t.Counts()
	}
	return view
}
