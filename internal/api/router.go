package api

import (
	"helpdesk-triage/internal/api/handlers"
	"helpdesk-triage/pkg/auth"
	"helpdesk-triage/pkg/middleware"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"go.uber.org/zap"
)

// SetupRouter wires the HTTP surface. Auth and the audit listing are
// optional: pass a nil jwtManager to leave the API open, auditEnabled
// false to skip the /requests route.
func SetupRouter(
	supportHandler *handlers.SupportHandler,
	jwtManager *auth.JWTManager,
	auditEnabled bool,
	appLogger *zap.Logger,
) *fiber.App {
	app := fiber.New(fiber.Config{
		ErrorHandler: func(c *fiber.Ctx, err error) error {
			code := fiber.StatusInternalServerError
			if e, ok := err.(*fiber.Error); ok {
				code = e.Code
			}
			return c.Status(code).JSON(fiber.Map{
				"error": err.Error(),
			})
		},
	})

	app.Use(recover.New())
	app.Use(cors.New(cors.Config{
		AllowOrigins: "*",
		AllowMethods: "GET,POST,OPTIONS",
		AllowHeaders: "Origin,Content-Type,Accept,Authorization",
	}))
	app.Use(logger.New())

	app.Get("/health", supportHandler.Health)

	api := app.Group("/")
	if jwtManager != nil {
		api = app.Group("/", middleware.AuthMiddleware(jwtManager, appLogger))
	}

	api.Post("/support", supportHandler.ProcessRequest)
	api.Get("/categories", supportHandler.Categories)
	if auditEnabled {
		api.Get("/requests", supportHandler.ListRequests)
	}

	return app
}
