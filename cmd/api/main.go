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
	"github.com/rs/zerolog"

	"github.com/jcdigital/lms-grading-api/internal/config"
	"github.com/jcdigital/lms-grading-api/internal/database"
	"github.com/jcdigital/lms-grading-api/internal/grading"
	"github.com/jcdigital/lms-grading-api/internal/handler"
	"github.com/jcdigital/lms-grading-api/internal/middleware"
	"github.com/jcdigital/lms-grading-api/internal/models"
	"github.com/jcdigital/lms-grading-api/internal/repository"
	"github.com/jcdigital/lms-grading-api/internal/router"
	"github.com/jcdigital/lms-grading-api/internal/service"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load configuration: %v", err)
	}

	logger := zerolog.New(os.Stdout).With().Timestamp().Logger()

	db, err := database.ConnectPostgres(cfg.DatabaseURL)
	if err != nil {
		log.Fatalf("failed to connect to database: %v", err)
	}

	if err := db.AutoMigrate(
		&models.Course{},
		&models.Evaluation{},
		&models.EvaluationAttempt{},
		&models.Enrollment{},
		&models.ReviewLog{},
	); err != nil {
		log.Fatalf("failed to migrate database: %v", err)
	}

	redisClient, err := database.ConnectRedis(cfg.RedisURL)
	if err != nil {
		log.Fatalf("failed to connect to redis: %v", err)
	}
	defer redisClient.Close()

	natsConn, err := database.ConnectNATS(cfg.NATSURL)
	if err != nil {
		// Grading keeps working without the event bus; downstream
		// notifications just go dark until it is back.
		logger.Warn().Err(err).Msg("nats unavailable, enrollment events disabled")
		natsConn = nil
	} else {
		defer natsConn.Close()
	}

	validate := validator.New(validator.WithRequiredStructEnabled())
	thresholds := grading.RequirementThresholds{
		GradeMin:      cfg.GradeThreshold,
		AttendanceMin: cfg.AttendanceThreshold,
	}

	enrollmentRepo := repository.NewEnrollmentRepository(db)
	evaluationRepo := repository.NewEvaluationRepository(db)
	attemptRepo := repository.NewAttemptRepository(db)
	reviewLogRepo := repository.NewReviewLogRepository(db)

	reviewService := service.NewReviewService(reviewLogRepo, logger)
	eventPublisher := service.NewEnrollmentEventPublisher(natsConn, redisClient, cfg.EventsChannel, logger)
	approvalService := service.NewApprovalService(
		enrollmentRepo, evaluationRepo, attemptRepo,
		reviewService, eventPublisher,
		validate, thresholds, logger,
	)
	gradingService := service.NewGradingService(attemptRepo, evaluationRepo, validate, logger)
	transcriptService := service.NewTranscriptService(
		enrollmentRepo, evaluationRepo, attemptRepo,
		redisClient, cfg.TranscriptCacheTTL, thresholds, logger,
	)

	gradingHandler := handler.NewGradingHandler(gradingService, logger)
	approvalHandler := handler.NewApprovalHandler(approvalService, transcriptService, reviewService, logger)

	app := fiber.New(fiber.Config{
		AppName:      cfg.AppName,
		ServerHeader: cfg.AppName,
	})

	middleware.Register(app, middleware.Config{Logger: &logger})
	router.Register(app, cfg, router.Dependencies{
		GradingHandler:  gradingHandler,
		ApprovalHandler: approvalHandler,
		JWTMiddleware:   middleware.JWTProtected(cfg.JWTSecret),
		ApprovalGuards: handler.ApprovalRouteGuards{
			Staff: []fiber.Handler{middleware.RequireRole("admin", "instructor")},
			Decision: []fiber.Handler{
				middleware.RequireRole("admin"),
				middleware.RateLimit("enrollment-decision", cfg.DecisionRateLimit, cfg.DecisionRateInterval),
			},
		},
	})

	go func() {
		if err := app.Listen(cfg.HTTPAddress()); err != nil {
			log.Fatalf("failed to start server: %v", err)
		}
	}()

	waitForShutdown(app)
}

func waitForShutdown(app *fiber.App) {
	shutdownCtx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	<-shutdownCtx.Done()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := app.ShutdownWithContext(ctx); err != nil {
		log.Printf("graceful shutdown failed: %v", err)
	}

	log.Println("server stopped")
}
