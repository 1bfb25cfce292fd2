// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package middleware provides HTTP middleware and helper functions.

# Request Logging

Wrap handlers with request logging:

	mux.HandleFunc("GET /health", middleware.WithLogging(handler))

Each request gets a short request_id. Start logs method, path and
remote address; completion adds status and duration_ms.

# CORS Middleware

Allow credentialed cross-origin requests from configured origins only:

	server := http.Server{
		Handler: middleware.CORS(cfg.CORSOrigins, mux),
	}

Built on github.com/rs/cors. With no origins configured the handler is
returned unwrapped and the API is same-origin only.

# Sessions

RequireAuth reads the "sid" cookie, resolves it and stores the user on
the request context:

	mux.HandleFunc("POST /api/topics", middleware.RequireAuth(accounts, h.Create))

	user, _ := middleware.UserFromContext(r.Context())

Missing or expired sessions get 401.

# JSON Helpers

Write JSON responses:

	middleware.JSONResponse(w, http.StatusOK, data)
	middleware.ErrorResponse(w, http.StatusBadRequest, "message")

Parse JSON request bodies (capped at 1 MB):

	var req models.CreateTopicRequest
	if err := middleware.ParseJSONBody(r, &req); err != nil {
		middleware.ErrorResponse(w, http.StatusBadRequest, "Invalid JSON")
		return
	}

# Client IP Extraction

Get the original client IP (handles X-Forwarded-For, X-Real-IP):

	ip := middleware.GetClientIP(r)

Used in request logs.
*/
package middleware
