package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/nats-io/nats.go"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"gorm.io/gorm"

	"github.com/noah-isme/sprint-connect-api/internal/config"
	"github.com/noah-isme/sprint-connect-api/internal/database"
	"github.com/noah-isme/sprint-connect-api/internal/handler"
	"github.com/noah-isme/sprint-connect-api/internal/matching"
	"github.com/noah-isme/sprint-connect-api/internal/middleware"
	"github.com/noah-isme/sprint-connect-api/internal/observability"
	"github.com/noah-isme/sprint-connect-api/internal/repository"
	"github.com/noah-isme/sprint-connect-api/internal/router"
	"github.com/noah-isme/sprint-connect-api/internal/service"
	cloud "github.com/noah-isme/sprint-connect-api/pkg/cloudinary"
	"github.com/noah-isme/sprint-connect-api/pkg/mailer"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		boot := zerolog.New(os.Stderr).With().Timestamp().Logger()
		boot.Fatal().Err(err).Msg("failed to load configuration")
	}

	logger := observability.NewLogger(os.Stdout, cfg.LogLevel, cfg.AppName)
	hostname, _ := os.Hostname()
	hook, flush := observability.ErrorReporting{
		Token:       cfg.RollbarToken,
		Environment: cfg.AppEnv,
		ServerHost:  hostname,
	}.Setup()
	defer flush()
	if hook != nil {
		logger = logger.Hook(hook)
	}

	db, err := database.Connect(cfg.DatabaseURL, !cfg.IsProduction() && cfg.LogLevel == "debug")
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to connect to database")
	}
	if err := database.Migrate(db); err != nil {
		logger.Fatal().Err(err).Msg("failed to migrate database")
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	var redisClient *redis.Client
	if cfg.RedisURL != "" {
		redisClient, err = database.ConnectRedis(ctx, cfg.RedisURL)
		if err != nil {
			logger.Warn().Err(err).Msg("redis unavailable, caching and cross-node fan-out disabled")
			redisClient = nil
		} else {
			defer redisClient.Close()
		}
	}

	var natsConn *nats.Conn
	if cfg.NATSURL != "" {
		natsConn, err = database.ConnectNATS(cfg.NATSURL, cfg.AppName, logger)
		if err != nil {
			logger.Warn().Err(err).Msg("nats unavailable, relying on redis fan-out")
			natsConn = nil
		} else {
			defer natsConn.Drain()
		}
	}

	var storage service.FileStorage
	cloudCfg := cloud.Config{
		CloudName: cfg.CloudinaryCloudName,
		APIKey:    cfg.CloudinaryAPIKey,
		APISecret: cfg.CloudinaryAPISecret,
		Folder:    cfg.CloudinaryUploadFolder,
	}
	if cloudCfg.Configured() {
		uploader, err := cloud.New(cloudCfg, logger)
		if err != nil {
			logger.Fatal().Err(err).Msg("failed to create cloudinary client")
		}
		storage = uploader
	} else {
		logger.Warn().Msg("cloudinary not configured, file uploads disabled")
	}

	mail := mailer.New(mailer.Config{
		APIKey:      cfg.SendgridAPIKey,
		FromName:    cfg.AppName,
		FromAddress: cfg.MailFromAddress,
	}, logger)

	validate := validator.New(validator.WithRequiredStructEnabled())
	scorer := matching.NewScorer(matching.DefaultWeights(), cfg.MatchThreshold)

	profileRepo := repository.NewProfileRepository(db)
	courseRepo := repository.NewCourseRepository(db)
	circleRepo := repository.NewCircleRepository(db)
	messageRepo := repository.NewCircleMessageRepository(db)
	resourceRepo := repository.NewResourceRepository(db)
	videoRepo := repository.NewVideoRoomRepository(db)
	wellnessRepo := repository.NewWellnessRepository(db)
	communityRepo := repository.NewCommunityRepository(db)
	eventRepo := repository.NewEventRepository(db)
	pointsRepo := repository.NewGamificationRepository(db)
	productivityRepo := repository.NewProductivityRepository(db)
	peerSupportRepo := repository.NewPeerSupportRepository(db)
	notificationRepo := repository.NewNotificationRepository(db)
	analyticsRepo := repository.NewAdminAnalyticsRepository(db)

	notificationService := service.NewNotificationService(notificationRepo, redisClient, cfg.ChannelBase, natsConn, validate, logger)
	dashboardService := service.NewDashboardService(service.DashboardSources{
		Profiles:      profileRepo,
		Points:        pointsRepo,
		Wellness:      wellnessRepo,
		Circles:       circleRepo,
		Events:        eventRepo,
		Community:     communityRepo,
		Notifications: notificationRepo,
	}, redisClient, cfg.DashboardCacheTTL, logger)
	pointsService := service.NewGamificationService(pointsRepo, profileRepo, notificationService, redisClient, cfg.LeaderboardCacheTTL, logger)

	profileService := service.NewProfileService(profileRepo, dashboardService, validate, logger)
	courseService := service.NewCourseService(courseRepo, validate, logger)
	circleService := service.NewCircleService(circleRepo, courseRepo, profileRepo, pointsService, dashboardService, scorer, validate, logger)
	liveService := service.NewCircleLiveService(messageRepo, circleService, redisClient, cfg.ChannelBase, natsConn, validate, logger)
	resourceService := service.NewResourceService(resourceRepo, circleService, storage, cfg.UploadMaxSizeMB, validate, logger)
	videoService := service.NewVideoRoomService(videoRepo, circleService, cfg.VideoRoomBaseURL, logger)
	wellnessService := service.NewWellnessService(wellnessRepo, pointsService, profileRepo, notificationService, mail, redisClient, dashboardService, validate, logger)
	communityService := service.NewCommunityService(communityRepo, pointsService, notificationService, dashboardService, validate, logger)
	eventService := service.NewEventService(eventRepo, pointsService, dashboardService, validate, logger)
	productivityService := service.NewProductivityService(productivityRepo, circleService, liveService, pointsService, dashboardService, service.PomodoroDefaults{
		FocusMinutes: cfg.PomodoroMinutes,
		BreakMinutes: cfg.PomodoroBreakMinutes,
	}, validate, logger)
	peerSupportService := service.NewPeerSupportService(peerSupportRepo, profileRepo, pointsService, notificationService, mail, dashboardService, validate, logger)
	analyticsService := service.NewAdminAnalyticsService(analyticsRepo, redisClient, cfg.DashboardCacheTTL, logger)
	seedService := service.NewSeedService(pointsService, courseRepo, eventRepo, cfg.SeedToken, logger)

	if _, err := pointsService.EnsureCatalogue(ctx); err != nil {
		logger.Error().Err(err).Msg("failed to sync badge catalogue")
	}

	notificationService.Start(ctx)
	liveService.Start(ctx)

	app := fiber.New(fiber.Config{
		AppName:      cfg.AppName,
		ServerHeader: cfg.AppName,
		BodyLimit:    (cfg.UploadMaxSizeMB + 1) * 1024 * 1024,
	})

	middleware.Register(app, middleware.Config{
		Logger:    &logger,
		AccessLog: !cfg.IsProduction(),
	})
	router.Register(app, cfg, router.Dependencies{
		ProfileHandler:      handler.NewProfileHandler(profileService, logger),
		CourseHandler:       handler.NewCourseHandler(courseService, logger),
		CircleHandler:       handler.NewCircleHandler(circleService, liveService, resourceService, videoService, logger),
		WellnessHandler:     handler.NewWellnessHandler(wellnessService, logger),
		CommunityHandler:    handler.NewCommunityHandler(communityService, logger),
		EventHandler:        handler.NewEventHandler(eventService, logger),
		GamificationHandler: handler.NewGamificationHandler(pointsService, logger),
		ProductivityHandler: handler.NewProductivityHandler(productivityService, logger),
		PeerSupportHandler:  handler.NewPeerSupportHandler(peerSupportService, logger),
		NotificationHandler: handler.NewNotificationHandler(notificationService, logger, cfg.NotificationKeepAlive),
		DashboardHandler:    handler.NewDashboardHandler(dashboardService, logger),
		AdminHandler:        handler.NewAdminHandler(analyticsService, notificationService, seedService, logger),
		JWTMiddleware:       middleware.JWTProtected(cfg.JWTSecret),
		MetricsEnabled:      true,
		HealthChecks:        healthChecks(db, redisClient),
	})

	go func() {
		logger.Info().Str("addr", cfg.HTTPAddress()).Msg("http server listening")
		if err := app.Listen(cfg.HTTPAddress()); err != nil {
			logger.Fatal().Err(err).Msg("failed to start server")
		}
	}()

	waitForShutdown(ctx, app, logger)
}

func healthChecks(db *gorm.DB, redisClient *redis.Client) []handler.HealthDependency {
	checks := []handler.HealthDependency{{
		Name: "database",
		Ping: func(ctx context.Context) error {
			sqlDB, err := db.DB()
			if err != nil {
				return err
			}
			return sqlDB.PingContext(ctx)
		},
	}}
	if redisClient != nil {
		checks = append(checks, handler.HealthDependency{
			Name: "redis",
			Ping: func(ctx context.Context) error { return redisClient.Ping(ctx).Err() },
		})
	}
	return checks
}

func waitForShutdown(ctx context.Context, app *fiber.App, logger zerolog.Logger) {
	<-ctx.Done()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := app.ShutdownWithContext(shutdownCtx); err != nil {
		logger.Error().Err(err).Msg("graceful shutdown failed")
	}

	logger.Info().Msg("server stopped")
}
