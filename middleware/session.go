// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package middleware

import (
	"context"
	"net/http"
	"time"

	"github.com/danielhkuo/timed-vote/models"
)

// SessionCookie is the cookie carrying the session token
const SessionCookie = "sid"

// SessionResolver maps a session token to its user
type SessionResolver interface {
	Resolve(token string) (models.User, bool)
}

type userKey struct{}

// WithUser returns a copy of ctx carrying user
func WithUser(ctx context.Context, user models.User) context.Context {
	return context.WithValue(ctx, userKey{}, user)
}

// UserFromContext returns the user placed by RequireAuth or OptionalAuth
func UserFromContext(ctx context.Context) (models.User, bool) {
	user, ok := ctx.Value(userKey{}).(models.User)
	return user, ok
}

// SessionToken reads the session cookie, or "" if absent
func SessionToken(r *http.Request) string {
	c, err := r.Cookie(SessionCookie)
	if err != nil {
		return ""
	}
	return c.Value
}

// RequireAuth rejects requests without a valid session with 401
func RequireAuth(sessions SessionResolver, next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		token := SessionToken(r)
		if token == "" {
			ErrorResponse(w, http.StatusUnauthorized, "Login required")
			return
		}
		user, ok := sessions.Resolve(token)
		if !ok {
			ErrorResponse(w, http.StatusUnauthorized, "Session is not valid")
			return
		}
		next(w, r.WithContext(WithUser(r.Context(), user)))
	}
}

// OptionalAuth attaches the user when the session is valid and
// continues either way
func OptionalAuth(sessions SessionResolver, next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if user, ok := sessions.Resolve(SessionToken(r)); ok {
			r = r.WithContext(WithUser(r.Context(), user))
		}
		next.ServeHTTP(w, r)
	})
}

// SetSessionCookie issues the session cookie
func SetSessionCookie(w http.ResponseWriter, token string, ttl time.Duration, secure bool) {
	http.SetCookie(w, &http.Cookie{
		Name:     SessionCookie,
		Value:    token,
		Path:     "/",
		MaxAge:   int(ttl / time.Second),
		HttpOnly: true,
		Secure:   secure,
		SameSite: http.SameSiteLaxMode,
	})
}

// ClearSessionCookie expires the session cookie
func ClearSessionCookie(w http.ResponseWriter, secure bool) {
	http.SetCookie(w, &http.Cookie{
		Name:     SessionCookie,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   secure,
		SameSite: http.SameSiteLaxMode,
	})
}
