// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package models

import (
	"bytes"
	"encoding/json"
	"fmt"
	"maps"
	"math"
	"slices"
	"strconv"
	"strings"
	"time"
)

// Topic status labels as exposed to clients
const (
	StatusOpen   = "open"
	StatusClosed = "closed"
)

// Field limits, counted in characters (runes)
const (
	MaxTitleLen       = 120
	MaxDescriptionLen = 2000
	MaxOptionLen      = 80
	MinOptions        = 2
)

// Request types

type CreateTopicRequest struct {
	Title       string   `json:"title"`
	Description string   `json:"desc"`
	Options     []string `json:"options"`
	Deadline    string   `json:"deadline"`
}

// Option is a pointer so a missing field can be told apart from 0
type CastVoteRequest struct {
	Option *OptionChoice `json:"option"`
}

// OptionChoice is an option index sent as a JSON number or a numeric
// string ("1"). Values that are not whole non-negative numbers decode
// to -1, which no topic accepts.
type OptionChoice int

func (c *OptionChoice) UnmarshalJSON(data []byte) error {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()
	var raw any
	if err := dec.Decode(&raw); err != nil {
		return err
	}

	var text string
	switch v := raw.(type) {
	case json.Number:
		text = v.String()
	case string:
		text = strings.TrimSpace(v)
	default:
		return fmt.Errorf("option must be a number, got %s", data)
	}

	*c = -1
	if f, err := strconv.ParseFloat(text, 64); err == nil && f == math.Trunc(f) && f >= 0 && f <= math.MaxInt32 {
		*c = OptionChoice(f)
	}
	return nil
}

type CredentialsRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// Response types

type TopicResponse struct {
	Topic TopicView `json:"topic"`
}

type ListTopicsResponse struct {
	Topics []TopicView `json:"topics"`
}

type MessageResponse struct {
	Message string `json:"message"`
}

type UserResponse struct {
	User PublicUser `json:"user"`
}

// Domain types

// Topic is the stored form of a poll. Values handed out by the topic
// store are shared snapshots: never modify them in place, use WithVote.
type Topic struct {
	ID          string         `json:"id"`
	Title       string         `json:"title"`
	Description string         `json:"desc"`
	Options     []Option       `json:"options"`
	Deadline    time.Time      `json:"deadline"`
	Created     time.Time      `json:"created"`
	Voters      map[string]int `json:"voters"`
	Votes       []Vote         `json:"votes"`
}

type Option struct {
	Text  string `json:"text"`
	Count int    `json:"count"`
}

type Vote struct {
	UserID      string    `json:"userId"`
	OptionIndex int       `json:"optionIndex"`
	Timestamp   time.Time `json:"ts"`
}

// NewTopic returns an empty topic with zeroed counts.
func NewTopic(id, title, description string, options []string, deadline, created time.Time) Topic {
	opts := make([]Option, len(options))
	for i, text := range options {
		opts[i] = Option{Text: text}
	}
	return Topic{
		ID:          id,
		Title:       title,
		Description: description,
		Options:     opts,
		Deadline:    deadline,
		Created:     created,
		Voters:      map[string]int{},
		Votes:       []Vote{},
	}
}

// HasVoted reports whether userID already has an entry in Voters.
func (t Topic) HasVoted(userID string) bool {
	_, ok := t.Voters[userID]
	return ok
}

// TotalVotes is the number of distinct voters.
func (t Topic) TotalVotes() int {
	return len(t.Voters)
}

// Counts returns the per-option tallies in option order.
func (t Topic) Counts() []int {
	counts := make([]int, len(t.Options))
	for i, o := range t.Options {
		counts[i] = o.Count
	}
	return counts
}

// OptionTexts returns the option labels in order.
func (t Topic) OptionTexts() []string {
	texts := make([]string, len(t.Options))
	for i, o := range t.Options {
		texts[i] = o.Text
	}
	return texts
}

// WithVote returns a copy of t with v applied: the voter recorded, the
// option's count incremented, and v appended to the audit trail. The
// receiver is left untouched. Callers validate v first.
func (t Topic) WithVote(v Vote) Topic {
	next := t
	next.Options = slices.Clone(t.Options)
	next.Options[v.OptionIndex].Count++

	next.Voters = make(map[string]int, len(t.Voters)+1)
	maps.Copy(next.Voters, t.Voters)
	next.Voters[v.UserID] = v.OptionIndex

	next.Votes = append(slices.Clip(t.Votes), v)
	return next
}

// Consistent reports whether the tallies agree with the voter index
// and the audit trail.
func (t Topic) Consistent() bool {
	sum := 0
	for _, o := range t.Options {
		if o.Count < 0 {
			return false
		}
		sum += o.Count
	}
	return sum == len(t.Voters) && sum == len(t.Votes)
}

// TopicView is the public projection of a topic. Results is nil, and
// omitted from JSON, until the topic is revealed.
type TopicView struct {
	ID          string       `json:"id"`
	Title       string       `json:"title"`
	Description string       `json:"desc"`
	Options     []OptionView `json:"options"`
	Deadline    time.Time    `json:"deadline"`
	Created     time.Time    `json:"created"`
	Status      string       `json:"status"`
	RevealAt    time.Time    `json:"revealAt"`
	TotalVotes  int          `json:"totalVotes"`
	Results     []int        `json:"results,omitempty"`
}

type OptionView struct {
	Text string `json:"text"`
}

// Revealed reports whether the view carries counts.
func (v TopicView) Revealed() bool {
	return v.Results != nil
}

// TopicResults is returned once a topic's results are public.
type TopicResults struct {
	ID         string   `json:"id"`
	Title      string   `json:"title"`
	Options    []string `json:"options"`
	Results    []int    `json:"results"`
	TotalVotes int      `json:"totalVotes"`
}

// Accounts

type User struct {
	ID       string    `json:"id"`
	Name     string    `json:"name"`
	PassHash string    `json:"pass"`
	Created  time.Time `json:"created"`
}

type PublicUser struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

func (u User) Public() PublicUser {
	return PublicUser{ID: u.ID, Name: u.Name}
}

// Session maps an opaque token to a user. A zero Expires never expires.
type Session struct {
	UserID  string    `json:"userId"`
	Expires time.Time `json:"expires"`
}

// UnmarshalJSON also accepts the bare user id that older documents
// stored per session.
func (s *Session) UnmarshalJSON(data []byte) error {
	var userID string
	if err := json.Unmarshal(data, &userID); err == nil {
		*s = Session{UserID: userID}
		return nil
	}
	type plain Session
	return json.Unmarshal(data, (*plain)(s))
}

// Accounts is the persisted identity state
type Accounts struct {
	Users    []User             `json:"users"`
	Sessions map[string]Session `json:"sessions"`
}

// Error response

type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message,omitempty"`
}
