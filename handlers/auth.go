// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package handlers

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/danielhkuo/timed-vote/auth"
	"github.com/danielhkuo/timed-vote/cliparse"
	"github.com/danielhkuo/timed-vote/middleware"
	"github.com/danielhkuo/timed-vote/models"
)

type AuthHandler struct {
	accounts *auth.Service
	cfg      cliparse.Config
}

func NewAuthHandler(accounts *auth.Service, cfg cliparse.Config) *AuthHandler {
	return &AuthHandler{accounts: accounts, cfg: cfg}
}

// Register handles POST /api/auth/register
func (h *AuthHandler) Register(w http.ResponseWriter, r *http.Request) {
	var req models.CredentialsRequest
	if err := middleware.ParseJSONBody(r, &req); err != nil {
		middleware.ErrorResponse(w, http.StatusBadRequest, "Invalid JSON")
		return
	}

	user, err := h.accounts.Register(r.Context(), req.Username, req.Password)
	switch {
	case errors.Is(err, auth.ErrInvalidUsername), errors.Is(err, auth.ErrInvalidPassword):
		middleware.ErrorResponse(w, http.StatusBadRequest, errors.Unwrap(err).Error())
		return
	case errors.Is(err, auth.ErrUserExists):
		middleware.ErrorResponse(w, http.StatusConflict, "Username already taken")
		return
	case err != nil:
		slog.Error("failed to register user", "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Failed to register")
		return
	}

	slog.Info("user registered", "user_id", user.ID)

	middleware.JSONResponse(w, http.StatusCreated, models.UserResponse{User: user.Public()})
}

// Login handles POST /api/auth/login
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req models.CredentialsRequest
	if err := middleware.ParseJSONBody(r, &req); err != nil {
		middleware.ErrorResponse(w, http.StatusBadRequest, "Invalid JSON")
		return
	}

	token, user, err := h.accounts.Login(r.Context(), req.Username, req.Password)
	switch {
	case errors.Is(err, auth.ErrInvalidCredentials):
		middleware.ErrorResponse(w, http.StatusUnauthorized, "Invalid username or password")
		return
	case err != nil:
		slog.Error("failed to log in", "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Failed to log in")
		return
	}

	middleware.SetSessionCookie(w, token, h.accounts.SessionTTL(), h.cfg.SecureCookie)
	middleware.JSONResponse(w, http.StatusOK, models.UserResponse{User: user.Public()})
}

// Logout handles POST /api/auth/logout
func (h *AuthHandler) Logout(w http.ResponseWriter, r *http.Request) {
	if err := h.accounts.Logout(r.Context(), middleware.SessionToken(r)); err != nil {
		slog.Error("failed to log out", "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Failed to log out")
		return
	}

	middleware.ClearSessionCookie(w, h.cfg.SecureCookie)
	middleware.JSONResponse(w, http.StatusOK, models.MessageResponse{Message: "Logged out"})
}

// Me handles GET /api/auth/me
func (h *AuthHandler) Me(w http.ResponseWriter, r *http.Request) {
	user, ok := middleware.UserFromContext(r.Context())
	if !ok {
		middleware.ErrorResponse(w, http.StatusUnauthorized, "Login required")
		return
	}
	middleware.JSONResponse(w, http.StatusOK, models.UserResponse{User: user.Public()})
}
