package main

import (
	"context"
	"os"
	"time"

	"github.com/rs/zerolog"

	"github.com/noah-isme/sprint-connect-api/internal/config"
	"github.com/noah-isme/sprint-connect-api/internal/database"
	"github.com/noah-isme/sprint-connect-api/internal/observability"
	"github.com/noah-isme/sprint-connect-api/internal/repository"
	"github.com/noah-isme/sprint-connect-api/internal/service"
)

// Seeds the badge catalogue, demo courses and demo events. Safe to run
// repeatedly.
func main() {
	cfg, err := config.Load()
	if err != nil {
		boot := zerolog.New(os.Stderr).With().Timestamp().Logger()
		boot.Fatal().Err(err).Msg("failed to load configuration")
	}

	logger := observability.NewLogger(os.Stdout, cfg.LogLevel, cfg.AppName+" seed")

	db, err := database.Connect(cfg.DatabaseURL, false)
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to connect to database")
	}
	if err := database.Migrate(db); err != nil {
		logger.Fatal().Err(err).Msg("failed to migrate database")
	}

	profileRepo := repository.NewProfileRepository(db)
	points := service.NewGamificationService(repository.NewGamificationRepository(db), profileRepo, nil, nil, cfg.LeaderboardCacheTTL, logger)
	seeder := service.NewSeedService(points, repository.NewCourseRepository(db), repository.NewEventRepository(db), "", logger)

	ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
	defer cancel()

	result, err := seeder.Run(ctx)
	if err != nil {
		logger.Fatal().Err(err).Msg("seeding failed")
	}

	logger.Info().
		Int64("badges", result.Badges).
		Int64("courses", result.Courses).
		Int64("events", result.Events).
		Msg("seed completed")
}
