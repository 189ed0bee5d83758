package handler

import (
	"errors"

	"github.com/gofiber/fiber/v3"

	"github.com/schhatbar/PriorityPoll/internal/middleware"
	"github.com/schhatbar/PriorityPoll/internal/model"
	"github.com/schhatbar/PriorityPoll/internal/service"
)

type PollHandler struct {
	polls *service.PollService
	votes *service.VoteService
}

func NewPollHandler(polls *service.PollService, votes *service.VoteService) *PollHandler {
	return &PollHandler{polls: polls, votes: votes}
}

// Create handles POST /api/polls
func (h *PollHandler) Create(c fiber.Ctx) error {
	var req model.CreatePollRequest
	if err := c.Bind().JSON(&req); err != nil {
		return middleware.ErrorResponse(c, fiber.StatusBadRequest, "INVALID_BODY", "Invalid request body")
	}

	poll, err := h.polls.Create(c.Context(), req, middleware.ClaimsFrom(c).UserID)
	if err != nil {
		return serviceError(c, err, "Failed to create poll")
	}
	return c.Status(fiber.StatusCreated).JSON(poll)
}

// List handles GET /api/polls
func (h *PollHandler) List(c fiber.Ctx) error {
	polls, err := h.polls.List(c.Context(), middleware.IsAdmin(c))
	if err != nil {
		return serviceError(c, err, "Failed to fetch polls")
	}
	if polls == nil {
		polls = []model.Poll{}
	}
	return c.JSON(polls)
}

// Get handles GET /api/polls/:id
func (h *PollHandler) Get(c fiber.Ctx) error {
	id, errMsg := middleware.ParseID(c.Params("id"))
	if errMsg != "" {
		return middleware.ErrorResponse(c, fiber.StatusBadRequest, "INVALID_FIELD", errMsg)
	}

	poll, err := h.polls.Get(c.Context(), id, middleware.IsAdmin(c))
	if err != nil {
		if errors.Is(err, service.ErrPollInactive) {
			return middleware.ErrorResponse(c, fiber.StatusForbidden, "POLL_INACTIVE", "This poll is no longer active")
		}
		return serviceError(c, err, "Failed to fetch poll")
	}
	return c.JSON(poll)
}

// SetStatus handles PATCH /api/polls/:id/status
func (h *PollHandler) SetStatus(c fiber.Ctx) error {
	id, errMsg := middleware.ParseID(c.Params("id"))
	if errMsg != "" {
		return middleware.ErrorResponse(c, fiber.StatusBadRequest, "INVALID_FIELD", errMsg)
	}

	var req model.PollStatusRequest
	if err := c.Bind().JSON(&req); err != nil || req.Active == nil {
		return middleware.FieldErrorResponse(c, "active", "Invalid status value")
	}

	poll, err := h.polls.SetStatus(c.Context(), id, *req.Active)
	if err != nil {
		return serviceError(c, err, "Failed to update poll status")
	}
	return c.JSON(poll)
}

// Delete handles DELETE /api/polls/:id
func (h *PollHandler) Delete(c fiber.Ctx) error {
	id, errMsg := middleware.ParseID(c.Params("id"))
	if errMsg != "" {
		return middleware.ErrorResponse(c, fiber.StatusBadRequest, "INVALID_FIELD", errMsg)
	}

	if err := h.polls.Delete(c.Context(), id); err != nil {
		return serviceError(c, err, "Failed to delete poll")
	}
	return c.SendStatus(fiber.StatusNoContent)
}

// Recount handles POST /api/polls/:id/recount
func (h *PollHandler) Recount(c fiber.Ctx) error {
	id, errMsg := middleware.ParseID(c.Params("id"))
	if errMsg != "" {
		return middleware.ErrorResponse(c, fiber.StatusBadRequest, "INVALID_FIELD", errMsg)
	}

	poll, err := h.polls.Recount(c.Context(), id)
	if err != nil {
		return serviceError(c, err, "Failed to recount poll")
	}
	return c.JSON(poll)
}

// Votes handles GET /api/polls/:id/votes
func (h *PollHandler) Votes(c fiber.Ctx) error {
	id, errMsg := middleware.ParseID(c.Params("id"))
	if errMsg != "" {
		return middleware.ErrorResponse(c, fiber.StatusBadRequest, "INVALID_FIELD", errMsg)
	}

	votes, err := h.polls.Votes(c.Context(), id)
	if err != nil {
		return serviceError(c, err, "Failed to fetch votes")
	}
	if votes == nil {
		votes = []model.Vote{}
	}
	return c.JSON(votes)
}

// HasVoted handles GET /api/polls/:id/has-voted?voterName=
func (h *PollHandler) HasVoted(c fiber.Ctx) error {
	id, errMsg := middleware.ParseID(c.Params("id"))
	if errMsg != "" {
		return middleware.ErrorResponse(c, fiber.StatusBadRequest, "INVALID_FIELD", errMsg)
	}

	name, errMsg := middleware.ValidateName(c.Query("voterName"), "Please provide a name to check vote status")
	if errMsg != "" {
		return middleware.FieldErrorResponse(c, "voterName", errMsg)
	}

	voted, err := h.votes.HasVoted(c.Context(), id, name)
	if err != nil {
		return serviceError(c, err, "Failed to check vote status")
	}
	return c.JSON(model.HasVotedResponse{HasVoted: voted})
}
