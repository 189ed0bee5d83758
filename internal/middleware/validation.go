package middleware

import (
	"errors"
	"strconv"
	"strings"

	"github.com/gofiber/fiber/v3"

	"github.com/schhatbar/PriorityPoll/internal/service"
)

// ErrorResponse is a helper that returns a standard API error response.
func ErrorResponse(c fiber.Ctx, status int, code, message string) error {
	return c.Status(status).JSON(fiber.Map{
		"error": fiber.Map{
			"code":    code,
			"message": message,
		},
	})
}

// FieldErrorResponse is ErrorResponse for a validation failure on one field.
func FieldErrorResponse(c fiber.Ctx, field, message string) error {
	return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
		"error": fiber.Map{
			"code":    "INVALID_FIELD",
			"message": message,
			"field":   field,
		},
	})
}

// ParseID validates a positive integer path parameter.
func ParseID(raw string) (int64, string) {
	id, err := strconv.ParseInt(strings.TrimSpace(raw), 10, 64)
	if err != nil || id <= 0 {
		return 0, "Invalid poll ID"
	}
	return id, ""
}

// ValidateName checks a voter name taken from a path or query parameter.
func ValidateName(name, missingMsg string) (string, string) {
	if strings.TrimSpace(name) == "" {
		return "", missingMsg
	}
	name, err := service.NormalizeVoterName(name)
	if err != nil {
		var ve *service.ValidationError
		if errors.As(err, &ve) {
			return "", ve.Message
		}
		return "", err.Error()
	}
	return name, ""
}

// ParseLimit reads a leaderboard size. Missing or malformed values get the
// default; anything else is clamped to 1..MaxLeaderboardLimit.
func ParseLimit(raw string) int {
	n, err := strconv.Atoi(strings.TrimSpace(raw))
	if err != nil {
		return service.ClampLeaderboardLimit(0)
	}
	return service.ClampLeaderboardLimit(max(n, 1))
}
