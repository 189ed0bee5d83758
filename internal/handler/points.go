package handler

import (
	"strings"

	"github.com/gofiber/fiber/v3"

	"github.com/schhatbar/PriorityPoll/internal/middleware"
	"github.com/schhatbar/PriorityPoll/internal/model"
	"github.com/schhatbar/PriorityPoll/internal/service"
)

type PointsHandler struct {
	svc *service.GamificationService
}

func NewPointsHandler(svc *service.GamificationService) *PointsHandler {
	return &PointsHandler{svc: svc}
}

// Leaderboard handles GET /api/leaderboard?limit=
func (h *PointsHandler) Leaderboard(c fiber.Ctx) error {
	top, err := h.svc.Leaderboard(c.Context(), middleware.ParseLimit(c.Query("limit")))
	if err != nil {
		return serviceError(c, err, "Failed to fetch leaderboard")
	}
	return c.JSON(top)
}

// Profile handles GET /api/user-points/:name
func (h *PointsHandler) Profile(c fiber.Ctx) error {
	name, errMsg := middleware.ValidateName(c.Params("name"), "Please provide a name")
	if errMsg != "" {
		return middleware.FieldErrorResponse(c, "name", errMsg)
	}

	profile, err := h.svc.Profile(c.Context(), name)
	if err != nil {
		return serviceError(c, err, "Failed to fetch user points")
	}
	return c.JSON(profile)
}

// AwardAchievement handles POST /api/user-profile/:name/achievements
func (h *PointsHandler) AwardAchievement(c fiber.Ctx) error {
	name, errMsg := middleware.ValidateName(c.Params("name"), "Please provide a name")
	if errMsg != "" {
		return middleware.FieldErrorResponse(c, "name", errMsg)
	}

	var req model.AchievementRequest
	if err := c.Bind().JSON(&req); err != nil || strings.TrimSpace(req.Achievement) == "" {
		return middleware.FieldErrorResponse(c, "achievement", "Invalid achievement")
	}

	profile, err := h.svc.AwardAchievement(c.Context(), name, strings.TrimSpace(req.Achievement))
	if err != nil {
		return serviceError(c, err, "Failed to award achievement")
	}
	return c.JSON(profile)
}

// AwardBadge handles POST /api/user-profile/:name/badges
func (h *PointsHandler) AwardBadge(c fiber.Ctx) error {
	name, errMsg := middleware.ValidateName(c.Params("name"), "Please provide a name")
	if errMsg != "" {
		return middleware.FieldErrorResponse(c, "name", errMsg)
	}

	var req model.BadgeRequest
	if err := c.Bind().JSON(&req); err != nil || req.Badge == nil ||
		strings.TrimSpace(req.Badge.ID) == "" || strings.TrimSpace(req.Badge.Name) == "" {
		return middleware.FieldErrorResponse(c, "badge", "Invalid badge data")
	}

	profile, err := h.svc.AwardBadge(c.Context(), name, *req.Badge)
	if err != nil {
		return serviceError(c, err, "Failed to award badge")
	}
	return c.JSON(profile)
}
