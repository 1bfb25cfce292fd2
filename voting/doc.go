// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package voting implements the topic lifecycle and vote tallying.

# Phases

A topic's phase is computed from its deadline, the reveal delay and the
current time on every access:

	Open            now < deadline                 votes accepted
	Closed-Pending  deadline <= now < revealAt     votes rejected, results hidden
	Revealed        now >= revealAt                votes rejected, results public

revealAt is deadline + RevealDelay (DefaultRevealDelay is 10 minutes).
Phases only move forward.

# Operations

	engine := voting.NewEngine(topics, clock.Real(), voting.DefaultRevealDelay)

	view, err := engine.CreateTopic(ctx, req)
	err = engine.CastVote(ctx, topicID, userID, 1)
	view, err = engine.GetTopic(topicID)
	results, err := engine.GetResults(topicID)
	views := engine.ListTopics()

Mutations are acknowledged only after the topic store has saved them.

# Errors

Every failure wraps one of the sentinel errors and is matched with
errors.Is: ErrInvalidInput, ErrNotFound, ErrTopicClosed,
ErrAlreadyRevealed, ErrInvalidOption, ErrDuplicateVote,
ErrResultsNotYetAvailable, ErrPersistenceFailure.

ValidationError and ClosedError carry extra detail for client messages.

# Projection

Project is a pure function of (topic, now, revealDelay). Views carry
per-option counts only when the topic is revealed; before that the
results field is absent, not zeroed.
*/
package voting
