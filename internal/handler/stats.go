package handler

import (
	"github.com/gofiber/fiber/v3"

	"github.com/schhatbar/PriorityPoll/internal/service"
)

type StatsHandler struct {
	svc *service.PollService
}

func NewStatsHandler(svc *service.PollService) *StatsHandler {
	return &StatsHandler{svc: svc}
}

// GetStats handles GET /api/stats
func (h *StatsHandler) GetStats(c fiber.Ctx) error {
	stats, err := h.svc.Stats(c.Context())
	if err != nil {
		return serviceError(c, err, "Failed to fetch statistics")
	}
	return c.JSON(stats)
}
