// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package handlers

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/dustin/go-humanize"

	"github.com/danielhkuo/timed-vote/middleware"
	"github.com/danielhkuo/timed-vote/models"
	"github.com/danielhkuo/timed-vote/voting"
)

type TopicHandler struct {
	engine *voting.Engine
}

func NewTopicHandler(engine *voting.Engine) *TopicHandler {
	return &TopicHandler{engine: engine}
}

// ListTopics handles GET /api/topics
func (h *TopicHandler) ListTopics(w http.ResponseWriter, r *http.Request) {
	middleware.JSONResponse(w, http.StatusOK, models.ListTopicsResponse{
		Topics: h.engine.ListTopics(),
	})
}

// CreateTopic handles POST /api/topics
func (h *TopicHandler) CreateTopic(w http.ResponseWriter, r *http.Request) {
	var req models.CreateTopicRequest
	if err := middleware.ParseJSONBody(r, &req); err != nil {
		middleware.ErrorResponse(w, http.StatusBadRequest, "Invalid JSON")
		return
	}

	view, err := h.engine.CreateTopic(r.Context(), req)
	if err != nil {
		writeVotingError(w, err)
		return
	}

	user, _ := middleware.UserFromContext(r.Context())
	slog.Info("topic created", "topic_id", view.ID, "user_id", user.ID, "deadline", view.Deadline)

	middleware.JSONResponse(w, http.StatusCreated, models.TopicResponse{Topic: view})
}

// GetTopic handles GET /api/topics/{id}
func (h *TopicHandler) GetTopic(w http.ResponseWriter, r *http.Request) {
	view, err := h.engine.GetTopic(r.PathValue("id"))
	if err != nil {
		writeVotingError(w, err)
		return
	}
	middleware.JSONResponse(w, http.StatusOK, models.TopicResponse{Topic: view})
}

// CastVote handles POST /api/topics/{id}/vote
func (h *TopicHandler) CastVote(w http.ResponseWriter, r *http.Request) {
	topicID := r.PathValue("id")

	user, ok := middleware.UserFromContext(r.Context())
	if !ok {
		middleware.ErrorResponse(w, http.StatusUnauthorized, "Login required")
		return
	}

	var req models.CastVoteRequest
	if err := middleware.ParseJSONBody(r, &req); err != nil {
		middleware.ErrorResponse(w, http.StatusBadRequest, "Invalid JSON")
		return
	}
	if req.Option == nil {
		middleware.ErrorResponse(w, http.StatusBadRequest, "option is required")
		return
	}

	if err := h.engine.CastVote(r.Context(), topicID, user.ID, int(*req.Option)); err != nil {
		writeVotingError(w, err)
		return
	}

	slog.Info("vote recorded", "topic_id", topicID, "user_id", user.ID)

	middleware.JSONResponse(w, http.StatusOK, models.MessageResponse{Message: "Vote recorded"})
}

// GetResults handles GET /api/topics/{id}/results
func (h *TopicHandler) GetResults(w http.ResponseWriter, r *http.Request) {
	results, err := h.engine.GetResults(r.PathValue("id"))
	if err != nil {
		writeVotingError(w, err)
		return
	}
	middleware.JSONResponse(w, http.StatusOK, results)
}

// writeVotingError maps engine errors onto HTTP responses
func writeVotingError(w http.ResponseWriter, err error) {
	var validation *voting.ValidationError
	var closed *voting.ClosedError

	switch {
	case errors.As(err, &validation):
		middleware.ErrorResponse(w, http.StatusBadRequest, validation.Message())
	case errors.Is(err, voting.ErrInvalidInput):
		middleware.ErrorResponse(w, http.StatusBadRequest, "Invalid input")
	case errors.Is(err, voting.ErrInvalidOption):
		middleware.ErrorResponse(w, http.StatusBadRequest, "Invalid option")
	case errors.Is(err, voting.ErrNotFound):
		middleware.ErrorResponse(w, http.StatusNotFound, "Topic not found")
	case errors.As(err, &closed):
		middleware.ErrorResponse(w, http.StatusConflict,
			"Voting has closed; results revealed "+humanize.RelTime(closed.RevealAt, closed.At, "ago", "from now"))
	case errors.Is(err, voting.ErrTopicClosed):
		middleware.ErrorResponse(w, http.StatusConflict, "Voting has closed")
	case errors.Is(err, voting.ErrAlreadyRevealed):
		middleware.ErrorResponse(w, http.StatusConflict, "Results already revealed; voting is over")
	case errors.Is(err, voting.ErrDuplicateVote):
		middleware.ErrorResponse(w, http.StatusConflict, "You have already voted on this topic")
	case errors.Is(err, voting.ErrResultsNotYetAvailable):
		middleware.ErrorResponse(w, http.StatusForbidden, "Results are not available yet")
	case errors.Is(err, voting.ErrPersistenceFailure):
		slog.Error("failed to persist topic change", "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Failed to save change")
	default:
		slog.Error("unexpected voting error", "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Internal error")
	}
}
