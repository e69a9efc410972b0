package server

import (
	"github.com/Kyz7/limitless/internal/acl"
	"github.com/Kyz7/limitless/internal/config"
	"github.com/Kyz7/limitless/internal/moderation"
	"github.com/Kyz7/limitless/internal/role"
	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"
	"gorm.io/gorm"
)

// Deps are the collaborators the HTTP surface is built from.
type Deps struct {
	DB       *gorm.DB
	ACL      *acl.Provider
	Limits   config.Limits
	Log      zerolog.Logger
	Notifier moderation.Notifier
}

func New(deps Deps) *fiber.App {
	app := fiber.New(fiber.Config{
		BodyLimit: 4 * 1024 * 1024,
	})

	moderationService := moderation.NewService(deps.DB, deps.ACL, deps.Limits, deps.Log)
	if deps.Notifier != nil {
		moderationService.WithNotifier(deps.Notifier)
	}
	roleService := role.NewService(deps.DB, deps.ACL, deps.Log)

	SetupRoutes(app, deps, moderation.NewHandler(moderationService), role.NewHandler(roleService))

	return app
}
