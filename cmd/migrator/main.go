package main

import (
	"flag"
	"os"

	"github.com/schhatbar/PriorityPoll/internal/config"
	"github.com/schhatbar/PriorityPoll/internal/db"
	"github.com/schhatbar/PriorityPoll/internal/middleware"
)

func main() {
	var (
		action string
		steps  int
	)

	flag.StringVar(&action, "action", "up", "migration: up, down, force, version")
	flag.IntVar(&steps, "steps", 0, "number of steps for up/down, target version for force")
	flag.Parse()

	cfg := config.Load()
	middleware.InitLogger(cfg.LogLevel, cfg.LogFormat)

	if err := db.Migrate(cfg.DatabaseURL, action, steps); err != nil {
		middleware.Logger.Error().Err(err).Str("action", action).Msg("migration failed")
		os.Exit(1)
	}
}
