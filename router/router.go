// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package router

import (
	"net/http"
	"strings"

	"github.com/danielhkuo/timed-vote/auth"
	"github.com/danielhkuo/timed-vote/cliparse"
	"github.com/danielhkuo/timed-vote/handlers"
	"github.com/danielhkuo/timed-vote/middleware"
	"github.com/danielhkuo/timed-vote/voting"
)

// Banner is served at / when no static directory is configured
const Banner = "timed-vote API v1"

func NewRouter(engine *voting.Engine, accounts *auth.Service, cfg cliparse.Config) *http.ServeMux {
	mux := http.NewServeMux()

	// Initialize handlers
	topicHandler := handlers.NewTopicHandler(engine)
	authHandler := handlers.NewAuthHandler(accounts, cfg)

	withSession := func(h http.HandlerFunc) http.HandlerFunc {
		return middleware.WithLogging(middleware.RequireAuth(accounts, h))
	}

	// Health check
	mux.HandleFunc("GET /health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("OK"))
	})

	// Accounts
	mux.HandleFunc("POST /api/auth/register", middleware.WithLogging(authHandler.Register))
	mux.HandleFunc("POST /api/auth/login", middleware.WithLogging(authHandler.Login))
	mux.HandleFunc("POST /api/auth/logout", middleware.WithLogging(authHandler.Logout))
	mux.HandleFunc("GET /api/auth/me", withSession(authHandler.Me))

	// Topics (login required)
	mux.HandleFunc("GET /api/topics", withSession(topicHandler.ListTopics))
	mux.HandleFunc("POST /api/topics", withSession(topicHandler.CreateTopic))
	mux.HandleFunc("GET /api/topics/{id}", withSession(topicHandler.GetTopic))
	mux.HandleFunc("POST /api/topics/{id}/vote", withSession(topicHandler.CastVote))
	mux.HandleFunc("GET /api/topics/{id}/results", withSession(topicHandler.GetResults))

	// Root endpoint
	if cfg.StaticDir != "" {
		files := http.FileServer(http.Dir(cfg.StaticDir))
		mux.Handle("GET /", middleware.OptionalAuth(accounts, loginGate(files)))
	} else {
		mux.HandleFunc("GET /", func(w http.ResponseWriter, r *http.Request) {
			w.Write([]byte(Banner))
		})
	}

	return mux
}

// LoginPage is where signed-out visitors to gated pages are sent
const LoginPage = "/login.html"

// loginGate redirects signed-out visitors away from the app pages.
// Other static assets are served to everyone.
func loginGate(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if gatedPage(r.URL.Path) {
			if _, ok := middleware.UserFromContext(r.Context()); !ok {
				http.Redirect(w, r, LoginPage, http.StatusFound)
				return
			}
		}
		next.ServeHTTP(w, r)
	})
}

func gatedPage(path string) bool {
	return path == "/" || path == "/new.html" || strings.HasPrefix(path, "/t/")
}
