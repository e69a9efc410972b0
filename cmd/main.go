package main

import (
	"os"

	"github.com/Kyz7/limitless/internal/acl"
	"github.com/Kyz7/limitless/internal/config"
	"github.com/Kyz7/limitless/internal/database"
	"github.com/Kyz7/limitless/internal/logger"
	"github.com/Kyz7/limitless/internal/role"
	"github.com/Kyz7/limitless/internal/server"
	"github.com/Kyz7/limitless/internal/utils"
)

func main() {
	cfg := config.Load()
	log := logger.New().WithLevel(cfg.LogLevel).Make()

	if err := utils.ValidateJWTSecret(); err != nil {
		log.Fatal().Err(err).Msg("❌ JWT configuration error")
	}
	log.Info().Msg("✅ JWT secret validated")

	// ========== DATABASE SETUP ==========
	db, err := database.Connect(cfg)
	if err != nil {
		log.Fatal().Err(err).Msg("❌ Database connection failed")
	}

	if err := database.Migrate(db, log); err != nil {
		log.Fatal().Err(err).Msg("❌ Migration failed")
	}
	log.Info().Msg("✅ Database migrated successfully")

	migrationsDir := os.Getenv("MIGRATIONS_DIR")
	if migrationsDir == "" {
		migrationsDir = "migrations"
	}
	if err := database.RunMigrations(db, migrationsDir, log); err != nil {
		log.Warn().Err(err).Msg("⚠️  SQL migrations failed, paper lists will fall back to sequential scans")
	} else {
		log.Info().Msg("✅ SQL migrations completed successfully")
	}

	// ========== PERMISSIONS ==========
	var cache acl.Cache
	if cfg.RedisURL != "" {
		redisCache, err := acl.NewRedisCache(cfg.RedisURL)
		if err != nil {
			log.Warn().Err(err).Msg("⚠️  Redis unavailable, permission documents will be built per request")
		} else {
			defer redisCache.Close()
			cache = redisCache
			log.Info().Msg("✅ ACL cache connected")
		}
	} else {
		log.Info().Msg("💾 REDIS_URL not set, ACL cache disabled")
	}
	provider := acl.NewProvider(db, cache, cfg.ACLCacheTTL, log)

	// ========== SEED DEFAULT DATA ==========
	if err := role.SeedDefaultRoles(db); err != nil {
		log.Warn().Err(err).Msg("⚠️  Failed to seed default roles")
	} else {
		log.Info().Msg("✅ Default roles seeded")
	}

	// ========== START SERVER ==========
	app := server.New(server.Deps{
		DB:     db,
		ACL:    provider,
		Limits: cfg.Limits(),
		Log:    log,
	})

	log.Info().Str("addr", cfg.ServerAddr).Msg("🚀 LimitLess server starting")
	log.Info().Int("papers_per_page", cfg.PapersPerPage).Int("posts_per_page", cfg.PostsPerPage).Msg("📚 Limits loaded")

	if err := app.Listen(cfg.ServerAddr); err != nil {
		log.Fatal().Err(err).Msg("❌ Failed to start server")
	}
}
