// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package models defines request, response, and domain types for the API.

# Request Types

Types for parsing incoming JSON:

  - CreateTopicRequest: title, desc, options, deadline
  - CastVoteRequest: option (index into the topic's options)
  - CredentialsRequest: username, password

# Response Types

  - TopicResponse / ListTopicsResponse: public topic views
  - MessageResponse: message
  - UserResponse: the signed-in user
  - TopicResults: option labels with final counts
  - ErrorResponse: error, message

# Domain Types

  - Topic: a poll with options, a deadline, the voter index and the vote audit trail
  - Option: option text and its tally
  - Vote: one accepted vote {userId, optionIndex, ts}
  - User, Session, Accounts: identity state

Topic values are shared between readers once published by the store.
Mutations go through WithVote, which copies everything it touches:

	next := topic.WithVote(models.Vote{UserID: uid, OptionIndex: 1, Timestamp: now})

The JSON field names match the data.json documents written by earlier
versions of the service, so those files load unchanged.

# Constants

Status labels:

	StatusOpen   = "open"
	StatusClosed = "closed"

Limits (in characters): MaxTitleLen 120, MaxDescriptionLen 2000,
MaxOptionLen 80, MinOptions 2.
*/
package models
