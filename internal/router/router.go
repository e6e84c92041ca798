package router

import (
	"github.com/gofiber/fiber/v2"

	"github.com/jcdigital/lms-grading-api/internal/config"
	"github.com/jcdigital/lms-grading-api/internal/handler"
	"github.com/jcdigital/lms-grading-api/internal/middleware"
	"github.com/jcdigital/lms-grading-api/internal/observability"
)

// Dependencies groups router dependencies for registration.
type Dependencies struct {
	GradingHandler  *handler.GradingHandler
	ApprovalHandler *handler.ApprovalHandler
	JWTMiddleware   fiber.Handler
	ApprovalGuards  handler.ApprovalRouteGuards
}

// Register wires the HTTP routes into the fiber application.
func Register(app *fiber.App, cfg config.Config, deps Dependencies) {
	api := app.Group("/api/v1", func(c *fiber.Ctx) error {
		c.Set("X-Application", cfg.AppName)
		return c.Next()
	})
	api.Get("/health", handler.HealthCheck(cfg))
	api.Get("/metrics", observability.MetricsHandler())

	jwtMiddleware := deps.JWTMiddleware
	if jwtMiddleware == nil {
		jwtMiddleware = func(c *fiber.Ctx) error { return c.Next() }
	}

	gradingGroup := api.Group("/grading", jwtMiddleware)

	// Attempt grading and weight diagnostics are instructor territory.
	if deps.GradingHandler != nil {
		deps.GradingHandler.Register(gradingGroup, middleware.RequireRole("admin", "instructor"))
	}

	if deps.ApprovalHandler != nil {
		enrollments := gradingGroup.Group("/enrollments")
		deps.ApprovalHandler.Register(enrollments, deps.ApprovalGuards)
	}
}
