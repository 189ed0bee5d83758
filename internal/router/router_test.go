package router

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gofiber/fiber/v3"
	"github.com/golang/mock/gomock"
	"github.com/jackc/pgx/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/schhatbar/PriorityPoll/internal/handler"
	"github.com/schhatbar/PriorityPoll/internal/model"
	"github.com/schhatbar/PriorityPoll/internal/service"
	"github.com/schhatbar/PriorityPoll/internal/service/mocks"
)

type testServer struct {
	app      *fiber.App
	auth     *service.AuthService
	polls    *mocks.MockPollStore
	votes    *mocks.MockVoteStore
	profiles *mocks.MockProfileStore
}

func newTestServer(t *testing.T) *testServer {
	ctrl := gomock.NewController(t)
	s := &testServer{
		polls:    mocks.NewMockPollStore(ctrl),
		votes:    mocks.NewMockVoteStore(ctrl),
		profiles: mocks.NewMockProfileStore(ctrl),
	}
	users := mocks.NewMockUserStore(ctrl)

	gamification := service.NewGamificationService(s.profiles, nil)
	pollSvc := service.NewPollService(s.polls, s.votes, nil)
	voteSvc := service.NewVoteService(s.polls, s.votes, nil, gamification)
	s.auth = service.NewAuthService(users, "router-test-secret", time.Hour)

	limits := NewLimiters()
	t.Cleanup(limits.Close)

	s.app = fiber.New(fiber.Config{ErrorHandler: handler.ErrorHandler, UnescapePath: true})
	Setup(s.app, &Handlers{
		Poll:   handler.NewPollHandler(pollSvc, voteSvc),
		Vote:   handler.NewVoteHandler(voteSvc),
		Points: handler.NewPointsHandler(gamification),
		User:   handler.NewUserHandler(s.auth),
		Stats:  handler.NewStatsHandler(pollSvc),
		Health: handler.NewHealthHandler(nil, nil),
	}, s.auth, limits, []string{"*"})
	return s
}

func (s *testServer) token(t *testing.T, role string) string {
	tok, err := s.auth.GenerateToken(&model.User{ID: 1, Username: "root", Role: role})
	require.NoError(t, err)
	return tok
}

func (s *testServer) do(t *testing.T, method, path, body, token string) (*http.Response, map[string]any) {
	var r io.Reader
	if body != "" {
		r = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, path, r)
	if body != "" {
		req.Header.Set(fiber.HeaderContentType, fiber.MIMEApplicationJSON)
	}
	if token != "" {
		req.Header.Set(fiber.HeaderAuthorization, "Bearer "+token)
	}

	resp, err := s.app.Test(req)
	require.NoError(t, err)

	raw, err := io.ReadAll(resp.Body)
	require.NoError(t, err)

	var out map[string]any
	if len(raw) > 0 && raw[0] == '{' {
		require.NoError(t, json.Unmarshal(raw, &out))
	}
	return resp, out
}

func errorCode(body map[string]any) string {
	e, _ := body["error"].(map[string]any)
	code, _ := e["code"].(string)
	return code
}

func lunchPoll(active bool) *model.Poll {
	options := []model.Option{{ID: 1, Text: "Tacos"}, {ID: 2, Text: "Ramen"}}
	return &model.Poll{
		ID:      7,
		Title:   "Lunch",
		Options: options,
		Active:  active,
		Results: service.EmptyResults(options),
	}
}

func TestSubmitVote(t *testing.T) {
	s := newTestServer(t)

	s.polls.EXPECT().FindByID(gomock.Any(), int64(7)).Return(lunchPoll(true), nil)
	s.votes.EXPECT().HasVoted(gomock.Any(), int64(7), "Alice").Return(false, nil)
	s.votes.EXPECT().Submit(gomock.Any(), gomock.Any(), gomock.Any()).
		DoAndReturn(func(_ context.Context, v *model.Vote, _ any) (*model.Vote, error) {
			saved := *v
			saved.ID = 31
			return &saved, nil
		})
	s.profiles.EXPECT().Mutate(gomock.Any(), "Alice", true, gomock.Any()).
		Return(&model.UserPoints{VoterName: "Alice", Points: 15, Level: 1, VotesCount: 1}, nil)

	resp, body := s.do(t, fiber.MethodPost, "/api/votes",
		`{"pollId":7,"voterName":"Alice","rankings":[{"optionId":2,"rank":1},{"optionId":1,"rank":2}]}`, "")

	assert.Equal(t, fiber.StatusCreated, resp.StatusCode)
	assert.Equal(t, float64(31), body["id"])
	assert.Equal(t, "10", resp.Header.Get("X-RateLimit-Limit"))
}

func TestSubmitVote_StaleTokenVotesAnonymously(t *testing.T) {
	s := newTestServer(t)

	s.polls.EXPECT().FindByID(gomock.Any(), int64(7)).Return(lunchPoll(true), nil)
	s.votes.EXPECT().HasVoted(gomock.Any(), int64(7), "Alice").Return(false, nil)
	s.votes.EXPECT().Submit(gomock.Any(), gomock.Any(), gomock.Any()).
		DoAndReturn(func(_ context.Context, v *model.Vote, _ any) (*model.Vote, error) {
			saved := *v
			saved.ID = 32
			return &saved, nil
		})
	s.profiles.EXPECT().Mutate(gomock.Any(), "Alice", true, gomock.Any()).
		Return(&model.UserPoints{VoterName: "Alice", Points: 10, Level: 1, VotesCount: 1}, nil)

	expired, err := service.NewAuthService(nil, "router-test-secret", -time.Minute).
		GenerateToken(&model.User{ID: 1, Username: "root", Role: model.RoleAdmin})
	require.NoError(t, err)

	resp, _ := s.do(t, fiber.MethodPost, "/api/votes",
		`{"pollId":7,"voterName":"Alice","rankings":[{"optionId":1,"rank":1}]}`, expired)
	assert.Equal(t, fiber.StatusCreated, resp.StatusCode)

	resp, body := s.do(t, fiber.MethodPost, "/api/polls", `{"title":"Lunch","options":[{"text":"a"},{"text":"b"}]}`, expired)
	assert.Equal(t, fiber.StatusUnauthorized, resp.StatusCode)
	assert.Equal(t, "UNAUTHORIZED", errorCode(body))
}

func TestSubmitVote_AlreadyVoted(t *testing.T) {
	s := newTestServer(t)

	s.polls.EXPECT().FindByID(gomock.Any(), int64(7)).Return(lunchPoll(true), nil)
	s.votes.EXPECT().HasVoted(gomock.Any(), int64(7), "Alice").Return(true, nil)

	resp, body := s.do(t, fiber.MethodPost, "/api/votes",
		`{"pollId":7,"voterName":"Alice","rankings":[{"optionId":1,"rank":1}]}`, "")

	assert.Equal(t, fiber.StatusBadRequest, resp.StatusCode)
	assert.Equal(t, "ALREADY_VOTED", errorCode(body))
}

func TestSubmitVote_BadRankingReportsField(t *testing.T) {
	s := newTestServer(t)

	s.polls.EXPECT().FindByID(gomock.Any(), int64(7)).Return(lunchPoll(true), nil)
	s.votes.EXPECT().HasVoted(gomock.Any(), int64(7), "Alice").Return(false, nil)

	resp, body := s.do(t, fiber.MethodPost, "/api/votes",
		`{"pollId":7,"voterName":"Alice","rankings":[{"optionId":1,"rank":2}]}`, "")

	assert.Equal(t, fiber.StatusBadRequest, resp.StatusCode)
	e := body["error"].(map[string]any)
	assert.Equal(t, "rankings[0].rank", e["field"])
}

func TestGetPoll(t *testing.T) {
	s := newTestServer(t)
	admin := s.token(t, model.RoleAdmin)

	s.polls.EXPECT().FindByID(gomock.Any(), int64(7)).Return(lunchPoll(false), nil).Times(2)

	resp, body := s.do(t, fiber.MethodGet, "/api/polls/7", "", "")
	assert.Equal(t, fiber.StatusForbidden, resp.StatusCode)
	assert.Equal(t, "POLL_INACTIVE", errorCode(body))

	resp, body = s.do(t, fiber.MethodGet, "/api/polls/7", "", admin)
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)
	assert.Equal(t, "Lunch", body["title"])

	resp, _ = s.do(t, fiber.MethodGet, "/api/polls/abc", "", "")
	assert.Equal(t, fiber.StatusBadRequest, resp.StatusCode)
}

func TestCreatePoll_Authorization(t *testing.T) {
	s := newTestServer(t)
	body := `{"title":"Lunch","options":[{"text":"Tacos"},{"text":"Ramen"}]}`

	resp, _ := s.do(t, fiber.MethodPost, "/api/polls", body, "")
	assert.Equal(t, fiber.StatusUnauthorized, resp.StatusCode)

	resp, _ = s.do(t, fiber.MethodPost, "/api/polls", body, s.token(t, model.RoleUser))
	assert.Equal(t, fiber.StatusForbidden, resp.StatusCode)

	s.polls.EXPECT().Create(gomock.Any(), gomock.Any()).
		DoAndReturn(func(_ context.Context, p *model.Poll) (*model.Poll, error) {
			created := *p
			created.ID = 12
			return &created, nil
		})

	resp, out := s.do(t, fiber.MethodPost, "/api/polls", body, s.token(t, model.RoleAdmin))
	assert.Equal(t, fiber.StatusCreated, resp.StatusCode)
	assert.Equal(t, float64(12), out["id"])
	assert.Len(t, out["options"], 2)
}

func TestSetPollStatus_InvalidValue(t *testing.T) {
	s := newTestServer(t)

	resp, body := s.do(t, fiber.MethodPatch, "/api/polls/7/status", `{"active":"yes"}`, s.token(t, model.RoleAdmin))
	assert.Equal(t, fiber.StatusBadRequest, resp.StatusCode)
	e := body["error"].(map[string]any)
	assert.Equal(t, "Invalid status value", e["message"])
}

func TestProfileNotFound(t *testing.T) {
	s := newTestServer(t)
	s.profiles.EXPECT().FindByName(gomock.Any(), "Ghost").Return(nil, pgx.ErrNoRows)

	resp, body := s.do(t, fiber.MethodGet, "/api/user-points/Ghost", "", "")
	assert.Equal(t, fiber.StatusNotFound, resp.StatusCode)
	assert.Equal(t, "PROFILE_NOT_FOUND", errorCode(body))
}

func TestUnknownRoute(t *testing.T) {
	s := newTestServer(t)

	resp, body := s.do(t, fiber.MethodGet, "/api/nope", "", "")
	assert.Equal(t, fiber.StatusNotFound, resp.StatusCode)
	assert.Equal(t, "NOT_FOUND", errorCode(body))
}

func TestAPIHealth(t *testing.T) {
	s := newTestServer(t)

	resp, body := s.do(t, fiber.MethodGet, "/api/health", "", "")
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)
	assert.Equal(t, "ok", body["status"])
	assert.NotEmpty(t, body["timestamp"])
}
