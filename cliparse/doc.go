// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package cliparse handles command-line argument parsing and configuration.

# Configuration

ParseFlags returns a Config struct with all settings:

	cfg, err := cliparse.ParseFlags(os.Args[1:])

# Config Fields

  - Port: Server listen port (default: 4000)
  - DataPath: JSON data file (default: data.json)
  - DatabaseURL: SQL connection string; when set, replaces the JSON file
  - DatabaseType: sqlite or postgres (default: sqlite)
  - RevealDelay: time between a topic's deadline and its results (default: 10m)
  - SessionTTL: login lifetime (default: 720h)
  - StaticDir: optional directory of pages served at /
  - SecureCookie: set the Secure attribute on the session cookie

# CLI Flags

	-p              Server port
	-f              JSON data file
	-d              Database URL
	-t              Database type
	-reveal-delay   Reveal delay (Go duration, e.g. 10m)
	-session-ttl    Session lifetime
	-static         Static page directory
	-secure-cookie  Secure session cookie

# Environment Variables

Flags fall back to environment variables:

	PORT          → -p
	DATA_PATH     → -f
	DATABASE_URL  → -d
	DATABASE_TYPE → -t
	REVEAL_DELAY  → -reveal-delay
	SESSION_TTL   → -session-ttl
	STATIC_DIR    → -static
	COOKIE_SECURE → -secure-cookie

CLI flags take precedence over environment variables. main loads a .env
file, if present, before parsing.
*/
package cliparse
