package handler

import (
	"github.com/gofiber/fiber/v3"

	"github.com/schhatbar/PriorityPoll/internal/middleware"
	"github.com/schhatbar/PriorityPoll/internal/model"
	"github.com/schhatbar/PriorityPoll/internal/service"
)

type VoteHandler struct {
	svc *service.VoteService
}

func NewVoteHandler(svc *service.VoteService) *VoteHandler {
	return &VoteHandler{svc: svc}
}

// Submit handles POST /api/votes
func (h *VoteHandler) Submit(c fiber.Ctx) error {
	var req model.VoteRequest
	if err := c.Bind().JSON(&req); err != nil {
		return middleware.ErrorResponse(c, fiber.StatusBadRequest, "INVALID_BODY", "Invalid request body")
	}

	vote, err := h.svc.Submit(c.Context(), req)
	if err != nil {
		return serviceError(c, err, "Failed to submit vote")
	}
	return c.Status(fiber.StatusCreated).JSON(vote)
}

// ByVoter handles GET /api/user-votes/:name
func (h *VoteHandler) ByVoter(c fiber.Ctx) error {
	name, errMsg := middleware.ValidateName(c.Params("name"), "Please provide a name")
	if errMsg != "" {
		return middleware.FieldErrorResponse(c, "name", errMsg)
	}

	votes, err := h.svc.ByVoter(c.Context(), name)
	if err != nil {
		return serviceError(c, err, "Failed to fetch votes")
	}
	if votes == nil {
		votes = []model.Vote{}
	}
	return c.JSON(votes)
}
