package server

import (
	"time"

	"github.com/Kyz7/limitless/internal/auth"
	"github.com/Kyz7/limitless/internal/moderation"
	"github.com/Kyz7/limitless/internal/role"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/limiter"
	"github.com/gofiber/fiber/v2/middleware/logger"
)

func SetupRoutes(app *fiber.App, deps Deps, papers *moderation.Handler, roles *role.Handler) {
	// Middleware
	app.Use(logger.New())
	app.Use(cors.New(cors.Config{
		AllowOrigins: "*",
		AllowHeaders: "Origin, Content-Type, Accept, Authorization",
		AllowMethods: "GET, POST, PUT, DELETE, OPTIONS",
	}))

	// Health check
	app.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{
			"status":  "ok",
			"message": "LimitLess API is running",
		})
	})

	// Every route below knows who is asking.
	app.Use(auth.Identify(deps.DB, deps.ACL))

	// ==========================================
	// PAPERS AND MODERATION
	// ==========================================
	papers.Register(app, auth.JWTProtected())

	// ==========================================
	// ROLE MANAGEMENT (Admin only)
	// ==========================================
	roles.Register(app,
		auth.JWTProtected(),
		auth.RoleProtected("admin"),
		limiter.New(limiter.Config{
			Max:        30,
			Expiration: 1 * time.Minute,
		}),
	)
}
