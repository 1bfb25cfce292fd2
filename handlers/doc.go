// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package handlers contains HTTP request handlers for the timed-vote API.

# Handler Types

Each handler is a struct holding its service dependency:

  - TopicHandler: topic creation, listing, voting and results
  - AuthHandler: registration, login, logout and the current user

Handlers are created via constructor functions:

	topicHandler := handlers.NewTopicHandler(engine)
	authHandler := handlers.NewAuthHandler(accounts, cfg)

# Topic Lifecycle

A topic is open until its deadline, closed for the reveal delay, then
revealed. The phase is computed on every request.

	GET  /api/topics              → ListTopics
	POST /api/topics              → CreateTopic
	GET  /api/topics/{id}         → GetTopic (counts only once revealed)
	POST /api/topics/{id}/vote    → CastVote {"option": n}
	GET  /api/topics/{id}/results → GetResults (403 until revealed)

Topic routes expect middleware.RequireAuth to have placed the user on the
request context.

# Error Mapping

Engine errors become HTTP statuses in writeVotingError:

	invalid input, invalid option      → 400
	topic not found                    → 404
	closed, revealed, duplicate vote   → 409
	results not yet available          → 403
	persistence failure                → 500

# Accounts

	POST /api/auth/register → Register
	POST /api/auth/login    → Login (sets the sid cookie)
	POST /api/auth/logout   → Logout (clears it)
	GET  /api/auth/me       → Me
*/
package handlers
