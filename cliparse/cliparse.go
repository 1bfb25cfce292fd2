// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package cliparse

import (
	"errors"
	"flag"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

const (
	DefaultPort        = 4000
	DefaultDataPath    = "data.json"
	DefaultRevealDelay = 10 * time.Minute
	DefaultSessionTTL  = 30 * 24 * time.Hour
)

type Config struct {
	Port         int
	DataPath     string
	DatabaseURL  string
	DatabaseType string
	RevealDelay  time.Duration
	SessionTTL   time.Duration
	StaticDir    string
	SecureCookie bool
	CORSOrigins  []string
}

// UseDatabase reports whether state lives in SQL rather than the JSON file
func (c Config) UseDatabase() bool {
	return c.DatabaseURL != ""
}

// ParseFlags parses CLI flags, falling back to environment variables
// for anything not given on the command line.
func ParseFlags(args []string) (Config, error) {
	var cfg Config

	fs := flag.NewFlagSet("timed-vote", flag.ContinueOnError)

	// Network config (can be CLI args or env)
	fs.IntVar(&cfg.Port, "p", 0, "Server port")
	fs.StringVar(&cfg.StaticDir, "static", "", "Directory of static pages to serve at /")
	fs.BoolVar(&cfg.SecureCookie, "secure-cookie", false, "Mark the session cookie Secure (HTTPS only)")
	corsOrigins := fs.String("cors-origins", "", "Comma-separated origins allowed to call the API with the session cookie")

	// Storage
	fs.StringVar(&cfg.DataPath, "f", "", "JSON data file (used when no database URL is set)")
	fs.StringVar(&cfg.DatabaseURL, "d", "", "Database URL")
	fs.StringVar(&cfg.DatabaseType, "t", "", "Database type (sqlite or postgres)")

	// Timing
	fs.DurationVar(&cfg.RevealDelay, "reveal-delay", 0, "Delay between deadline and results reveal")
	fs.DurationVar(&cfg.SessionTTL, "session-ttl", 0, "Login session lifetime")

	if err := fs.Parse(args); err != nil {
		return Config{}, err
	}

	set := map[string]bool{}
	fs.Visit(func(f *flag.Flag) { set[f.Name] = true })

	// Fall back to environment variables
	if !set["p"] {
		if portStr := os.Getenv("PORT"); portStr != "" {
			port, err := strconv.Atoi(portStr)
			if err != nil {
				return Config{}, errors.New("invalid PORT env variable")
			}
			cfg.Port = port
		} else {
			cfg.Port = DefaultPort
		}
	}
	if cfg.Port <= 0 || cfg.Port > 65535 {
		return Config{}, fmt.Errorf("port %d out of range", cfg.Port)
	}

	if cfg.StaticDir == "" {
		cfg.StaticDir = os.Getenv("STATIC_DIR")
	}
	if !set["secure-cookie"] {
		if v := os.Getenv("COOKIE_SECURE"); v != "" {
			secure, err := strconv.ParseBool(v)
			if err != nil {
				return Config{}, errors.New("invalid COOKIE_SECURE env variable")
			}
			cfg.SecureCookie = secure
		}
	}

	if *corsOrigins == "" {
		*corsOrigins = os.Getenv("CORS_ORIGINS")
	}
	origins, err := parseOrigins(*corsOrigins)
	if err != nil {
		return Config{}, err
	}
	cfg.CORSOrigins = origins

	if cfg.DataPath == "" {
		cfg.DataPath = os.Getenv("DATA_PATH")
	}
	if cfg.DataPath == "" {
		cfg.DataPath = DefaultDataPath
	}
	if cfg.DatabaseURL == "" {
		cfg.DatabaseURL = os.Getenv("DATABASE_URL")
	}
	if cfg.DatabaseType == "" {
		cfg.DatabaseType = os.Getenv("DATABASE_TYPE")
		if cfg.DatabaseType == "" {
			cfg.DatabaseType = "sqlite"
		}
	}
	if cfg.DatabaseType != "sqlite" && cfg.DatabaseType != "postgres" {
		return Config{}, fmt.Errorf("unsupported database type %q (use sqlite or postgres)", cfg.DatabaseType)
	}

	// Zero is a valid reveal delay, so only unset values get the default
	if !set["reveal-delay"] {
		d, err := durationEnv("REVEAL_DELAY", DefaultRevealDelay)
		if err != nil {
			return Config{}, err
		}
		cfg.RevealDelay = d
	}
	if cfg.RevealDelay < 0 {
		return Config{}, errors.New("reveal delay cannot be negative")
	}

	if !set["session-ttl"] {
		d, err := durationEnv("SESSION_TTL", DefaultSessionTTL)
		if err != nil {
			return Config{}, err
		}
		cfg.SessionTTL = d
	}
	if cfg.SessionTTL <= 0 {
		return Config{}, errors.New("session TTL must be positive")
	}

	return cfg, nil
}

func durationEnv(name string, fallback time.Duration) (time.Duration, error) {
	v := os.Getenv(name)
	if v == "" {
		return fallback, nil
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return 0, fmt.Errorf("invalid %s env variable: %w", name, err)
	}
	return d, nil
}

// parseOrigins splits a comma-separated origin list. Wildcards are
// rejected since CORS responses carry credentials.
func parseOrigins(list string) ([]string, error) {
	var origins []string
	for _, o := range strings.Split(list, ",") {
		o = strings.TrimSpace(o)
		if o == "" {
			continue
		}
		if strings.Contains(o, "*") {
			return nil, fmt.Errorf("wildcard CORS origin %q not allowed with cookie sessions", o)
		}
		origins = append(origins, o)
	}
	return origins, nil
}
