package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"
	"gorm.io/gorm"

	"github.com/noah-isme/edusync-go-api/internal/config"
	"github.com/noah-isme/edusync-go-api/internal/database"
	"github.com/noah-isme/edusync-go-api/internal/handler"
	"github.com/noah-isme/edusync-go-api/internal/middleware"
	"github.com/noah-isme/edusync-go-api/internal/repository"
	"github.com/noah-isme/edusync-go-api/internal/router"
	"github.com/noah-isme/edusync-go-api/internal/service"
	"github.com/noah-isme/edusync-go-api/pkg/ai"
	cloud "github.com/noah-isme/edusync-go-api/pkg/cloudinary"
)

func main() {
	logger := zerolog.New(os.Stdout).With().Timestamp().Logger()

	cfg, err := config.Load()
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to load configuration")
	}
	logger = logger.With().Str("service", cfg.AppName).Str("env", cfg.AppEnv).Logger()

	db, err := openDatabase(cfg)
	if err != nil {
		logger.Fatal().Err(err).Str("driver", cfg.DatabaseDriver).Msg("failed to connect to database")
	}
	if err := database.Migrate(db); err != nil {
		logger.Fatal().Err(err).Msg("failed to migrate database")
	}

	redisClient, err := database.ConnectRedis(context.Background(), cfg.RedisURL)
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to connect to redis")
	}
	if redisClient == nil {
		logger.Warn().Msg("redis url not set, transcript cache disabled")
	} else {
		defer redisClient.Close()
	}

	natsConn, err := database.ConnectNATS(cfg.NATSURL, cfg.AppName)
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to connect to nats")
	}
	if natsConn == nil {
		logger.Warn().Msg("nats url not set, result events disabled")
	} else {
		defer natsConn.Drain()
	}

	var storage service.MaterialStorage
	materialStore, err := cloud.New(cloud.Config{
		CloudName: cfg.CloudinaryCloudName,
		APIKey:    cfg.CloudinaryAPIKey,
		APISecret: cfg.CloudinaryAPISecret,
		Folder:    cfg.CloudinaryUploadFolder,
	}, logger)
	if err != nil {
		logger.Warn().Err(err).Msg("material storage disabled")
	} else {
		storage = materialStore
	}

	var generator ai.FeedbackGenerator
	if cfg.AIProvider == "openai" && cfg.OpenAIAPIKey != "" {
		openAI, err := ai.NewOpenAIFeedbackGenerator(ai.OpenAIConfig{
			APIKey: cfg.OpenAIAPIKey,
			Model:  cfg.AIModel,
			Logger: logger,
		})
		if err != nil {
			logger.Fatal().Err(err).Msg("failed to create feedback generator")
		}
		generator = openAI
	} else {
		logger.Warn().Str("provider", cfg.AIProvider).Msg("feedback suggestions disabled")
	}

	validate := validator.New(validator.WithRequiredStructEnabled())
	store := repository.NewStore(db)

	activityService := service.NewActivityService(repository.NewActivityLogRepository(db), validate, logger)
	courseService := service.NewCourseService(store, validate, activityService, logger)
	assessmentService := service.NewAssessmentService(store, validate, redisClient, activityService, logger)
	resultService := service.NewResultService(
		store,
		validate,
		redisClient,
		cfg.TranscriptCacheTTL,
		service.NewNATSResultPublisher(natsConn, cfg.EventsSubject),
		activityService,
		logger,
	)
	enrollmentService := service.NewEnrollmentService(store, logger)
	materialService := service.NewMaterialService(store, storage, activityService, cfg.MaterialMaxSizeMB, logger)
	feedbackService := service.NewFeedbackService(store, generator, logger)
	seedService := service.NewSeedService(store.Users(), validate, cfg.SeedEnabled, cfg.SeedToken, logger)

	app := fiber.New(fiber.Config{
		AppName:      cfg.AppName,
		ServerHeader: cfg.AppName,
		BodyLimit:    (cfg.MaterialMaxSizeMB + 1) * 1024 * 1024,
	})

	middleware.Register(app, middleware.Config{Logger: &logger, AccessLog: cfg.AppEnv == "development"})
	router.Register(app, cfg, router.Dependencies{
		CourseHandler:        handler.NewCourseHandler(courseService, materialService, logger),
		AssessmentHandler:    handler.NewAssessmentHandler(assessmentService, courseService, logger),
		ResultHandler:        handler.NewResultHandler(resultService, assessmentService, feedbackService, logger),
		EnrollmentHandler:    handler.NewEnrollmentHandler(enrollmentService, logger),
		AdminActivityHandler: handler.NewAdminActivityHandler(activityService, logger),
		SeedHandler:          handler.NewSeedHandler(seedService, logger),
		JWTMiddleware:        middleware.JWTProtected(cfg.JWTSecret),
		SubmitRateLimiter:    middleware.RateLimit("submit", cfg.SubmissionRateLimit, cfg.SubmissionRateWindow),
	})

	go func() {
		logger.Info().Str("addr", cfg.HTTPAddress()).Msg("http server starting")
		if err := app.Listen(cfg.HTTPAddress()); err != nil {
			logger.Fatal().Err(err).Msg("failed to start server")
		}
	}()

	waitForShutdown(app, logger)
}

func openDatabase(cfg config.Config) (*gorm.DB, error) {
	if cfg.UsesSQLite() {
		return database.ConnectSQLite(cfg.DatabaseURL)
	}
	return database.ConnectPostgres(cfg.DatabaseURL)
}

func waitForShutdown(app *fiber.App, logger zerolog.Logger) {
	shutdownCtx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	<-shutdownCtx.Done()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := app.ShutdownWithContext(ctx); err != nil {
		logger.Error().Err(err).Msg("graceful shutdown failed")
	}

	logger.Info().Msg("server stopped")
}
