package router

import (
	"github.com/gofiber/fiber/v3"
	recoverer "github.com/gofiber/fiber/v3/middleware/recover"

	"github.com/schhatbar/PriorityPoll/internal/handler"
	"github.com/schhatbar/PriorityPoll/internal/middleware"
)

// Handlers holds all handler instances needed by the router.
type Handlers struct {
	Poll   *handler.PollHandler
	Vote   *handler.VoteHandler
	Points *handler.PointsHandler
	User   *handler.UserHandler
	Stats  *handler.StatsHandler
	Health *handler.HealthHandler
}

// Limiters holds the per-route rate limiters.
type Limiters struct {
	Vote  *middleware.RateLimiter
	Login *middleware.RateLimiter
	Stats *middleware.RateLimiter
}

func NewLimiters() *Limiters {
	return &Limiters{
		Vote:  middleware.NewVoteRateLimiter(),
		Login: middleware.NewLoginRateLimiter(),
		Stats: middleware.NewStatsRateLimiter(),
	}
}

func (l *Limiters) Close() {
	l.Vote.Close()
	l.Login.Close()
	l.Stats.Close()
}

// Setup configures the middleware stack and all API routes on the given Fiber app.
func Setup(app *fiber.App, h *Handlers, auth middleware.TokenParser, limits *Limiters, origins []string) {
	// Middleware stack (order matters)
	app.Use(recoverer.New())
	app.Use(middleware.NewRequestID())
	app.Use(middleware.NewRequestLogger())
	app.Use(handler.MetricsMiddleware())
	app.Use(middleware.NewCORS(origins))

	// Probes and metrics, outside the API group
	app.Get("/health/live", h.Health.Live)
	app.Get("/health/ready", h.Health.Ready)
	app.Get("/metrics", handler.MetricsHandler())

	api := app.Group("/api", middleware.Authenticate(auth))
	admin := middleware.RequireAdmin()

	api.Get("/health", h.Health.API)

	// Accounts
	api.Post("/login", limits.Login.Handler(), h.User.Login)
	api.Get("/user", middleware.RequireAuth(), h.User.Me)
	api.Get("/users", admin, h.User.List)

	// Polls
	api.Get("/polls", h.Poll.List)
	api.Post("/polls", admin, h.Poll.Create)
	api.Get("/polls/:id", h.Poll.Get)
	api.Patch("/polls/:id/status", admin, h.Poll.SetStatus)
	api.Delete("/polls/:id", admin, h.Poll.Delete)
	api.Post("/polls/:id/recount", admin, h.Poll.Recount)
	api.Get("/polls/:id/votes", admin, h.Poll.Votes)
	api.Get("/polls/:id/has-voted", h.Poll.HasVoted)

	// Votes
	api.Post("/votes", limits.Vote.Handler(), h.Vote.Submit)
	api.Get("/user-votes/:name", h.Vote.ByVoter)

	// Gamification
	api.Get("/leaderboard", h.Points.Leaderboard)
	api.Get("/user-points/:name", h.Points.Profile)
	api.Post("/user-profile/:name/achievements", admin, h.Points.AwardAchievement)
	api.Post("/user-profile/:name/badges", admin, h.Points.AwardBadge)

	// Stats
	api.Get("/stats", limits.Stats.Handler(), h.Stats.GetStats)
}
