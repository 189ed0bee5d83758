package middleware

import (
	"encoding/json"
	"errors"
	"net/http/httptest"
	"testing"

	"github.com/gofiber/fiber/v3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/schhatbar/PriorityPoll/internal/model"
)

type stubParser map[string]*model.Claims

func (s stubParser) ParseToken(token string) (*model.Claims, error) {
	if c, ok := s[token]; ok {
		return c, nil
	}
	return nil, errors.New("bad token")
}

func newAuthApp() *fiber.App {
	parser := stubParser{
		"admin-token": {UserID: 1, Username: "root", Role: model.RoleAdmin},
		"user-token":  {UserID: 2, Username: "pat", Role: model.RoleUser},
	}

	app := fiber.New()
	app.Use(Authenticate(parser))
	app.Get("/open", func(c fiber.Ctx) error {
		return c.JSON(fiber.Map{"admin": IsAdmin(c)})
	})
	app.Get("/me", RequireAuth(), func(c fiber.Ctx) error {
		return c.SendString(ClaimsFrom(c).Username)
	})
	app.Get("/admin", RequireAdmin(), func(c fiber.Ctx) error {
		return c.SendStatus(fiber.StatusNoContent)
	})
	return app
}

func TestAuthMiddleware(t *testing.T) {
	tests := []struct {
		name   string
		path   string
		header string
		want   int
	}{
		{"anonymous open route", "/open", "", fiber.StatusOK},
		{"bad token is anonymous on open route", "/open", "Bearer nope", fiber.StatusOK},
		{"malformed header is anonymous on open route", "/open", "Basic abc", fiber.StatusOK},
		{"bad token on me", "/me", "Bearer nope", fiber.StatusUnauthorized},
		{"bad token on admin", "/admin", "Bearer nope", fiber.StatusUnauthorized},
		{"malformed header on admin", "/admin", "Basic abc", fiber.StatusUnauthorized},
		{"anonymous me", "/me", "", fiber.StatusUnauthorized},
		{"user me", "/me", "Bearer user-token", fiber.StatusOK},
		{"anonymous admin", "/admin", "", fiber.StatusUnauthorized},
		{"user admin", "/admin", "Bearer user-token", fiber.StatusForbidden},
		{"admin admin", "/admin", "Bearer admin-token", fiber.StatusNoContent},
	}

	app := newAuthApp()
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(fiber.MethodGet, tt.path, nil)
			if tt.header != "" {
				req.Header.Set(fiber.HeaderAuthorization, tt.header)
			}
			resp, err := app.Test(req)
			require.NoError(t, err)
			assert.Equal(t, tt.want, resp.StatusCode)
		})
	}
}

func TestAuthMiddleware_RejectionReason(t *testing.T) {
	tests := []struct {
		header string
		want   string
	}{
		{"", "Authentication required"},
		{"Bearer nope", "Invalid or expired token"},
		{"Basic abc", "Malformed Authorization header"},
	}

	app := newAuthApp()
	for _, tt := range tests {
		req := httptest.NewRequest(fiber.MethodGet, "/admin", nil)
		if tt.header != "" {
			req.Header.Set(fiber.HeaderAuthorization, tt.header)
		}
		resp, err := app.Test(req)
		require.NoError(t, err)

		var body struct {
			Error struct {
				Code    string `json:"code"`
				Message string `json:"message"`
			} `json:"error"`
		}
		require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
		assert.Equal(t, "UNAUTHORIZED", body.Error.Code)
		assert.Equal(t, tt.want, body.Error.Message)
	}
}

func TestRequestID(t *testing.T) {
	app := fiber.New()
	app.Use(NewRequestID())
	app.Get("/", func(c fiber.Ctx) error {
		return c.SendString(RequestID(c))
	})

	resp, err := app.Test(httptest.NewRequest(fiber.MethodGet, "/", nil))
	require.NoError(t, err)
	assert.Len(t, resp.Header.Get(HeaderRequestID), 36)

	req := httptest.NewRequest(fiber.MethodGet, "/", nil)
	req.Header.Set(HeaderRequestID, "3f1c9a52-8d0e-4a57-9b8e-2f5d6c7a1b90")
	resp, err = app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, "3f1c9a52-8d0e-4a57-9b8e-2f5d6c7a1b90", resp.Header.Get(HeaderRequestID))
}
