package router

import (
	"github.com/gofiber/fiber/v2"

	"github.com/noah-isme/assignment-tracker/internal/config"
	"github.com/noah-isme/assignment-tracker/internal/handler"
	"github.com/noah-isme/assignment-tracker/internal/middleware"
	"github.com/noah-isme/assignment-tracker/internal/models"
	"github.com/noah-isme/assignment-tracker/internal/observability"
	"github.com/noah-isme/assignment-tracker/internal/service"
)

// Dependencies groups router dependencies for registration.
type Dependencies struct {
	SessionHandler    *handler.SessionHandler
	AssignmentHandler *handler.AssignmentHandler
	WorkflowHandler   *handler.WorkflowHandler
	DeletionHandler   *handler.DeletionHandler
	State             *service.AppState
	CurrentUser       middleware.CurrentUserFunc
	LoginLimiter      fiber.Handler
}

// Register wires the HTTP routes into the fiber application.
func Register(app *fiber.App, cfg config.Config, deps Dependencies) {
	app.Get("/metrics", observability.MetricsHandler())

	api := app.Group("/api/v1", func(c *fiber.Ctx) error {
		c.Set("X-Application", cfg.AppName)
		return c.Next()
	})
	api.Get("/health", handler.HealthCheck(cfg, deps.State))

	if deps.CurrentUser != nil {
		api.Use(middleware.Session(deps.CurrentUser))
	}

	signedIn := middleware.RequireRole()
	adminOnly := middleware.RequireRole(models.RoleAdmin)
	studentOnly := middleware.RequireRole(models.RoleStudent)

	if deps.SessionHandler != nil {
		deps.SessionHandler.Register(api.Group("/session"), deps.LoginLimiter)
		deps.SessionHandler.RegisterUsers(api.Group("/users", signedIn))
	}

	if deps.AssignmentHandler != nil {
		deps.AssignmentHandler.Register(api.Group("/assignments", signedIn))
		deps.AssignmentHandler.RegisterCourses(api.Group("/courses", signedIn))
	}

	if deps.WorkflowHandler != nil {
		deps.WorkflowHandler.Register(api.Group("/workflow", studentOnly))
	}

	if deps.DeletionHandler != nil {
		deps.DeletionHandler.Register(api.Group("/deletion", adminOnly))
	}
}
