// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package main provides the entry point for the timed-vote API server.

timed-vote runs short polls ("topics") with a deadline. Votes are
accepted until the deadline, counts stay hidden for a reveal delay
after it, and then the final tallies are published.

# Starting the Server

With no database configured, state lives in a JSON file:

	go run .

Or with flags:

	go run . -p 4000 -f ./data.json -reveal-delay 10m
	go run . -t postgres -d "postgres://..."
	go run . -t sqlite -d ./timed-vote.db

A .env file in the working directory is loaded before flags are parsed.

# Configuration

  - PORT (-p): Server port (default: 4000)
  - DATA_PATH (-f): JSON data file (default: data.json)
  - DATABASE_URL (-d): SQL connection string; switches off the JSON file
  - DATABASE_TYPE (-t): sqlite or postgres
  - REVEAL_DELAY (-reveal-delay): Wait between deadline and reveal (default: 10m)
  - SESSION_TTL (-session-ttl): Login lifetime (default: 720h)
  - STATIC_DIR (-static): Directory served at /
  - COOKIE_SECURE (-secure-cookie): Mark the session cookie Secure
  - CORS_ORIGINS (-cors-origins): Comma-separated origins allowed to call
    the API with the session cookie (default: none, same-origin only)

# Architecture

  - voting: Topic engine and phase/result projection
  - store: In-memory topic state with write-through persistence
  - db: JSON file and SQL persistence adapters
  - auth: Accounts, passwords and sessions
  - handlers: HTTP request handlers
  - router: Route definitions using Go 1.22+ routing
  - middleware: CORS, logging, sessions, JSON helpers
  - models: Domain, request and response types
  - cliparse: Configuration parsing
  - clock: Injectable time source

On SIGINT or SIGTERM the server drains requests and saves topics one
last time.
*/
package main
