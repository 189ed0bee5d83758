package handler

import (
	"errors"

	"github.com/gofiber/fiber/v3"
	"github.com/rs/zerolog/log"

	"github.com/schhatbar/PriorityPoll/internal/middleware"
	"github.com/schhatbar/PriorityPoll/internal/service"
)

// serviceError maps a service error onto the API error envelope. Anything
// unrecognised is logged and reported as a 500 with internalMsg.
func serviceError(c fiber.Ctx, err error, internalMsg string) error {
	var ve *service.ValidationError
	switch {
	case errors.As(err, &ve):
		return middleware.FieldErrorResponse(c, ve.Field, ve.Message)
	case errors.Is(err, service.ErrPollNotFound):
		return middleware.ErrorResponse(c, fiber.StatusNotFound, "POLL_NOT_FOUND", "Poll not found")
	case errors.Is(err, service.ErrPollInactive):
		return middleware.ErrorResponse(c, fiber.StatusBadRequest, "POLL_INACTIVE", "This poll is no longer active")
	case errors.Is(err, service.ErrAlreadyVoted):
		return middleware.ErrorResponse(c, fiber.StatusBadRequest, "ALREADY_VOTED", "You have already voted in this poll")
	case errors.Is(err, service.ErrProfileNotFound):
		return middleware.ErrorResponse(c, fiber.StatusNotFound, "PROFILE_NOT_FOUND", "User profile not found")
	case errors.Is(err, service.ErrInvalidCredentials):
		return middleware.ErrorResponse(c, fiber.StatusUnauthorized, "INVALID_CREDENTIALS", "Invalid username or password")
	case errors.Is(err, service.ErrUnauthorized):
		return middleware.ErrorResponse(c, fiber.StatusUnauthorized, "UNAUTHORIZED", "Authentication required")
	}

	log.Error().Err(err).
		Str("request_id", middleware.RequestID(c)).
		Str("route", c.Route().Path).
		Msg(internalMsg)
	return middleware.ErrorResponse(c, fiber.StatusInternalServerError, "INTERNAL_ERROR", internalMsg)
}

// ErrorHandler renders errors that escape handlers, such as unknown routes,
// in the same envelope as every other API error.
func ErrorHandler(c fiber.Ctx, err error) error {
	var fe *fiber.Error
	if errors.As(err, &fe) {
		code := "ERROR"
		switch fe.Code {
		case fiber.StatusNotFound:
			code = "NOT_FOUND"
		case fiber.StatusMethodNotAllowed:
			code = "METHOD_NOT_ALLOWED"
		case fiber.StatusBadRequest:
			code = "BAD_REQUEST"
		}
		return middleware.ErrorResponse(c, fe.Code, code, fe.Message)
	}
	return serviceError(c, err, "Internal server error")
}
