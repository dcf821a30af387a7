package router

import (
	"github.com/gofiber/fiber/v2"

	"github.com/noah-isme/edusync-go-api/internal/config"
	"github.com/noah-isme/edusync-go-api/internal/handler"
	"github.com/noah-isme/edusync-go-api/internal/middleware"
	"github.com/noah-isme/edusync-go-api/internal/models"
	"github.com/noah-isme/edusync-go-api/internal/observability"
)

// Dependencies groups router dependencies for registration.
type Dependencies struct {
	CourseHandler        *handler.CourseHandler
	AssessmentHandler    *handler.AssessmentHandler
	ResultHandler        *handler.ResultHandler
	EnrollmentHandler    *handler.EnrollmentHandler
	AdminActivityHandler *handler.AdminActivityHandler
	SeedHandler          *handler.SeedHandler
	JWTMiddleware        fiber.Handler
	SubmitRateLimiter    fiber.Handler
}

// Register wires the HTTP routes into the fiber application.
func Register(app *fiber.App, cfg config.Config, deps Dependencies) {
	app.Get("/metrics", observability.MetricsHandler())

	api := app.Group("/api/v1", func(c *fiber.Ctx) error {
		c.Set("X-Application", cfg.AppName)
		return c.Next()
	})
	api.Get("/health", handler.HealthCheck(cfg))

	jwtMiddleware := deps.JWTMiddleware
	if jwtMiddleware == nil {
		jwtMiddleware = middleware.JWTProtected(cfg.JWTSecret)
	}

	if deps.CourseHandler != nil {
		courses := api.Group("/courses", jwtMiddleware)
		deps.CourseHandler.Register(courses)
		if deps.AssessmentHandler != nil {
			courses.Get("/:id/assessments", deps.AssessmentHandler.ListByCourse)
		}
		deps.CourseHandler.RegisterMaterials(api.Group("/materials", jwtMiddleware))
	}

	if deps.AssessmentHandler != nil {
		deps.AssessmentHandler.Register(api.Group("/assessments", jwtMiddleware))
	}

	if deps.ResultHandler != nil {
		results := api.Group("/results", jwtMiddleware)
		if deps.SubmitRateLimiter != nil {
			deps.ResultHandler.Register(results, deps.SubmitRateLimiter)
		} else {
			deps.ResultHandler.Register(results)
		}
	}

	if deps.EnrollmentHandler != nil {
		enrollments := api.Group("/enrollments", jwtMiddleware, middleware.RequireRole(models.RoleStudent))
		deps.EnrollmentHandler.Register(enrollments)
	}

	if deps.AdminActivityHandler != nil {
		admin := api.Group("/admin", jwtMiddleware, middleware.RequireRole(models.RoleAdmin))
		deps.AdminActivityHandler.Register(admin.Group("/activity"))
	}

	if deps.SeedHandler != nil {
		deps.SeedHandler.Register(api.Group("/seed"))
	}
}
