package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v3"

	"github.com/schhatbar/PriorityPoll/internal/config"
	"github.com/schhatbar/PriorityPoll/internal/db"
	"github.com/schhatbar/PriorityPoll/internal/handler"
	"github.com/schhatbar/PriorityPoll/internal/metrics"
	"github.com/schhatbar/PriorityPoll/internal/middleware"
	"github.com/schhatbar/PriorityPoll/internal/repository"
	"github.com/schhatbar/PriorityPoll/internal/router"
	"github.com/schhatbar/PriorityPoll/internal/service"
)

const shutdownTimeout = 10 * time.Second

func main() {
	cfg := config.Load()
	middleware.InitLogger(cfg.LogLevel, cfg.LogFormat)
	logger := middleware.Logger

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if cfg.AutoMigrate {
		if err := db.Migrate(cfg.DatabaseURL, "up", 0); err != nil {
			logger.Fatal().Err(err).Msg("failed to apply migrations")
		}
	}

	pool, err := db.NewPool(ctx, cfg.DatabaseURL, db.PoolOptions{
		MaxConns: cfg.DBMaxConns,
		MinConns: cfg.DBMinConns,
	})
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to connect to database")
	}
	defer pool.Close()

	metrics.Register(pool)

	cache := service.NewCacheService(cfg.RedisURL)
	defer cache.Close()

	pollRepo := repository.NewPollRepo(pool)
	voteRepo := repository.NewVoteRepo(pool)
	pointsRepo := repository.NewPointsRepo(pool)
	userRepo := repository.NewUserRepo(pool)

	gamification := service.NewGamificationService(pointsRepo, cache)
	pollSvc := service.NewPollService(pollRepo, voteRepo, cache)
	voteSvc := service.NewVoteService(pollRepo, voteRepo, cache, gamification)
	authSvc := service.NewAuthService(userRepo, cfg.JWTSecret, cfg.TokenTTL)

	if cfg.AdminUsername != "" && cfg.AdminPassword != "" {
		admin, err := authSvc.EnsureAdmin(ctx, cfg.AdminUsername, cfg.AdminPassword)
		if err != nil {
			logger.Fatal().Err(err).Msg("failed to seed admin account")
		}
		logger.Info().Int64("user_id", admin.ID).Msg("admin account ready")
	}

	worker := service.NewLeaderboardWorker(gamification, cfg.LeaderboardRefresh)
	go worker.Start(ctx)

	limits := router.NewLimiters()
	defer limits.Close()

	app := fiber.New(fiber.Config{
		AppName:      "PriorityPoll API",
		ServerHeader: "PriorityPoll",
		ErrorHandler: handler.ErrorHandler,
		UnescapePath: true,
	})

	router.Setup(app, &router.Handlers{
		Poll:   handler.NewPollHandler(pollSvc, voteSvc),
		Vote:   handler.NewVoteHandler(voteSvc),
		Points: handler.NewPointsHandler(gamification),
		User:   handler.NewUserHandler(authSvc),
		Stats:  handler.NewStatsHandler(pollSvc),
		Health: handler.NewHealthHandler(pool, cache.Client()),
	}, authSvc, limits, cfg.Origins())

	go func() {
		<-ctx.Done()
		logger.Info().Msg("shutdown signal received")
		worker.Stop()
		if err := app.ShutdownWithTimeout(shutdownTimeout); err != nil {
			logger.Error().Err(err).Msg("server shutdown error")
		}
	}()

	logger.Info().
		Str("addr", cfg.Addr()).
		Str("env", cfg.Environment).
		Bool("cache", cache.Client() != nil).
		Msg("PriorityPoll backend starting")

	if err := app.Listen(cfg.Addr(), fiber.ListenConfig{DisableStartupMessage: true}); err != nil {
		logger.Error().Err(err).Msg("server stopped")
	}
	logger.Info().Msg("server exited")
}
