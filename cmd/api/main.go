package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"github.com/spf13/afero"

	"github.com/noah-isme/gema-lms-api/internal/config"
	"github.com/noah-isme/gema-lms-api/internal/database"
	"github.com/noah-isme/gema-lms-api/internal/handler"
	"github.com/noah-isme/gema-lms-api/internal/middleware"
	"github.com/noah-isme/gema-lms-api/internal/repository"
	"github.com/noah-isme/gema-lms-api/internal/router"
	"github.com/noah-isme/gema-lms-api/internal/service"
	cloud "github.com/noah-isme/gema-lms-api/pkg/cloudinary"
	"github.com/noah-isme/gema-lms-api/pkg/storage"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load configuration: %v", err)
	}

	logger := zerolog.New(os.Stdout).With().Timestamp().Str("service", cfg.AppName).Logger()

	db, err := database.Connect(cfg.DatabaseURL)
	if err != nil {
		log.Fatalf("failed to connect to database: %v", err)
	}

	if err := database.Migrate(db); err != nil {
		log.Fatalf("failed to migrate database: %v", err)
	}

	var redisClient *redis.Client
	if cfg.RedisURL != "" {
		redisClient, err = database.ConnectRedis(context.Background(), cfg.RedisURL)
		if err != nil {
			logger.Warn().Err(err).Msg("redis unavailable, analytics cache disabled")
		} else {
			defer redisClient.Close()
		}
	}

	events := service.EventPublisher(service.NoopEventPublisher{})
	if cfg.NATSURL != "" {
		conn, err := database.ConnectNATS(cfg.NATSURL, cfg.AppName)
		if err != nil {
			logger.Warn().Err(err).Msg("nats unavailable, domain events disabled")
		} else {
			defer conn.Drain()
			events = service.NewNATSEventPublisher(conn, cfg.EventSubjectPrefix, logger)
		}
	}

	var fileStorage service.FileStorage
	if cfg.CloudinaryEnabled() {
		fileStorage, err = cloud.New(cloud.Config{
			CloudName: cfg.CloudinaryCloudName,
			APIKey:    cfg.CloudinaryAPIKey,
			APISecret: cfg.CloudinaryAPISecret,
			Folder:    cfg.CloudinaryUploadFolder,
		}, logger)
	} else {
		fileStorage, err = storage.NewLocal(afero.NewOsFs(), cfg.UploadDir, cfg.UploadPublicPrefix, logger)
	}
	if err != nil {
		log.Fatalf("failed to create file storage: %v", err)
	}

	validate := validator.New(validator.WithRequiredStructEnabled())
	tokens := service.NewTokenIssuer(cfg.JWTSecret, cfg.JWTTTL)

	userRepo := repository.NewUserRepository(db)
	courseRepo := repository.NewCourseRepository(db)
	lessonRepo := repository.NewLessonRepository(db)
	enrollmentRepo := repository.NewEnrollmentRepository(db)
	assignmentRepo := repository.NewAssignmentRepository(db)
	submissionRepo := repository.NewSubmissionRepository(db)
	quizRepo := repository.NewQuizRepository(db)
	uploadRepo := repository.NewUploadRepository(db)
	analyticsRepo := repository.NewAdminAnalyticsRepository(db)

	authService := service.NewAuthService(userRepo, tokens, validate, logger)
	userService := service.NewUserService(userRepo, validate, logger)
	courseService := service.NewCourseService(courseRepo, enrollmentRepo, validate, logger)
	enrollmentService := service.NewEnrollmentService(enrollmentRepo, courseRepo, lessonRepo, events, logger)
	uploadService := service.NewUploadService(fileStorage, uploadRepo, cfg.UploadMaxMB, logger)
	assignmentService := service.NewAssignmentService(assignmentRepo, lessonRepo, courseRepo, enrollmentRepo, submissionRepo, validate, logger)
	lessonService := service.NewLessonService(lessonRepo, courseRepo, enrollmentRepo, assignmentService, enrollmentService, uploadService, validate, logger)
	submissionService := service.NewSubmissionService(submissionRepo, assignmentRepo, courseRepo, enrollmentRepo, uploadService, events, validate, logger)
	gradeService := service.NewGradeService(assignmentRepo, submissionRepo, courseRepo, enrollmentRepo, logger)
	quizService := service.NewQuizService(quizRepo, courseRepo, enrollmentRepo, events, validate, logger)
	analyticsService := service.NewAdminAnalyticsService(analyticsRepo, redisClient, cfg.AnalyticsCacheTTL, logger)

	app := fiber.New(fiber.Config{
		AppName:      cfg.AppName,
		ServerHeader: cfg.AppName,
		BodyLimit:    (cfg.UploadMaxMB + 1) * 1024 * 1024,
	})

	middleware.Register(app, middleware.Config{
		Logger:    &logger,
		AccessLog: cfg.AppEnv == "development",
	})
	router.Register(app, cfg, router.Dependencies{
		AuthHandler:           handler.NewAuthHandler(authService, logger),
		UserHandler:           handler.NewUserHandler(userService, logger),
		CourseHandler:         handler.NewCourseHandler(courseService, enrollmentService, logger),
		LessonHandler:         handler.NewLessonHandler(lessonService, enrollmentService, logger),
		AssignmentHandler:     handler.NewAssignmentHandler(assignmentService, logger),
		SubmissionHandler:     handler.NewSubmissionHandler(submissionService, logger),
		GradeHandler:          handler.NewGradeHandler(gradeService, logger),
		QuizHandler:           handler.NewQuizHandler(quizService, logger),
		UploadHandler:         handler.NewUploadHandler(uploadService, logger),
		AdminAnalyticsHandler: handler.NewAdminAnalyticsHandler(analyticsService, logger),
		JWTMiddleware:         middleware.JWTProtected(tokens),
		ServeUploads:          !cfg.CloudinaryEnabled(),
	})

	go func() {
		if err := app.Listen(cfg.HTTPAddress()); err != nil {
			log.Fatalf("failed to start server: %v", err)
		}
	}()

	logger.Info().Str("address", cfg.HTTPAddress()).Msg("server started")
	waitForShutdown(app, logger)
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
