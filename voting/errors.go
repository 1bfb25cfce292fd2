// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package voting

import (
	"errors"
	"fmt"
	"time"

	"github.com/danielhkuo/timed-vote/store"
)

var (
	ErrInvalidInput           = errors.New("invalid input")
	ErrNotFound               = errors.New("topic not found")
	ErrTopicClosed            = errors.New("voting has closed")
	ErrAlreadyRevealed        = errors.New("results already revealed")
	ErrInvalidOption          = errors.New("invalid option")
	ErrDuplicateVote          = errors.New("already voted")
	ErrResultsNotYetAvailable = errors.New("results not yet available")
	ErrPersistenceFailure     = errors.New("persistence failure")
)

// ValidationError describes which request field was rejected.
// It matches ErrInvalidInput with errors.Is.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s: %s %s", ErrInvalidInput, e.Field, e.Reason)
}

func (e *ValidationError) Unwrap() error { return ErrInvalidInput }

// Message is the client-facing description
func (e *ValidationError) Message() string {
	return e.Field + " " + e.Reason
}

func invalid(field, reason string) error {
	return &ValidationError{Field: field, Reason: reason}
}

// ClosedError is returned for votes arriving between the deadline and
// the reveal time. It matches ErrTopicClosed with errors.Is.
type ClosedError struct {
	At       time.Time
	RevealAt time.Time
}

func (e *ClosedError) Error() string {
	return fmt.Sprintf("%s: results reveal at %s", ErrTopicClosed, e.RevealAt.Format(time.RFC3339))
}

func (e *ClosedError) Unwrap() error { return ErrTopicClosed }

// storeErr translates topic store errors into engine errors.
func storeErr(op string, err error) error {
	switch {
	case errors.Is(err, store.ErrTopicNotFound):
		return fmt.Errorf("%s: %w", op, ErrNotFound)
	case errors.Is(err, store.ErrPersistence):
		return fmt.Errorf("%s: %w: %w", op, ErrPersistenceFailure, err)
	default:
		return fmt.Errorf("%s: %w", op, err)
	}
}
