// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package router defines HTTP routes for the timed-vote API.

# Route Registration

NewRouter creates a configured http.ServeMux with all endpoints:

	mux := router.NewRouter(engine, accounts, cfg)

# Endpoints

Health:

	GET /health

Accounts:

	POST /api/auth/register - Create account
	POST /api/auth/login    - Start session (sid cookie)
	POST /api/auth/logout   - End session
	GET  /api/auth/me       - Current user (session required)

Topics (session required):

	GET  /api/topics              - List topics, newest first
	POST /api/topics              - Create topic
	GET  /api/topics/{id}         - Topic with phase and, once revealed, counts
	POST /api/topics/{id}/vote    - Cast one vote
	GET  /api/topics/{id}/results - Final tallies (revealed only)

Everything else under GET / is served from cfg.StaticDir when set,
otherwise a plain-text banner. With a static directory, signed-out
visitors to /, /new.html and /t/{id} are redirected to /login.html.
*/
package router
