package handler

import (
	"github.com/gofiber/fiber/v3"

	"github.com/schhatbar/PriorityPoll/internal/middleware"
	"github.com/schhatbar/PriorityPoll/internal/model"
	"github.com/schhatbar/PriorityPoll/internal/service"
)

type UserHandler struct {
	svc *service.AuthService
}

func NewUserHandler(svc *service.AuthService) *UserHandler {
	return &UserHandler{svc: svc}
}

// Login handles POST /api/login
func (h *UserHandler) Login(c fiber.Ctx) error {
	var req model.LoginRequest
	if err := c.Bind().JSON(&req); err != nil {
		return middleware.ErrorResponse(c, fiber.StatusBadRequest, "INVALID_BODY", "Invalid request body")
	}
	if req.Username == "" || req.Password == "" {
		return middleware.ErrorResponse(c, fiber.StatusBadRequest, "MISSING_FIELDS", "username and password are required")
	}

	resp, err := h.svc.Login(c.Context(), req.Username, req.Password)
	if err != nil {
		return serviceError(c, err, "Failed to log in")
	}
	return c.JSON(resp)
}

// Me handles GET /api/user
func (h *UserHandler) Me(c fiber.Ctx) error {
	user, err := h.svc.CurrentUser(c.Context(), middleware.ClaimsFrom(c))
	if err != nil {
		return serviceError(c, err, "Failed to fetch user")
	}
	return c.JSON(user)
}

// List handles GET /api/users
func (h *UserHandler) List(c fiber.Ctx) error {
	users, err := h.svc.ListUsers(c.Context())
	if err != nil {
		return serviceError(c, err, "Failed to fetch users")
	}
	if users == nil {
		users = []model.User{}
	}
	return c.JSON(users)
}
