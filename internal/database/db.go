package database

import (
	"fmt"

	"github.com/Kyz7/limitless/internal/config"
	"github.com/Kyz7/limitless/internal/models"
	"github.com/rs/zerolog"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

func Connect(cfg *config.Config) (*gorm.DB, error) {
	dsn := fmt.Sprintf(
		"host=%s user=%s password=%s dbname=%s port=%s sslmode=disable",
		cfg.DBHost, cfg.DBUser, cfg.DBPassword, cfg.DBName, cfg.DBPort,
	)

	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{})
	if err != nil {
		return nil, err
	}

	return db, nil
}

// Models lists every table owned by the service, in creation order.
func Models() []any {
	return []any{
		&models.Role{},
		&models.User{},
		&models.CategoryRole{},
		&models.Category{},
		&models.RoleCategoryACL{},
		&models.Paper{},
		&models.Post{},
		&models.PostEdit{},
		&models.PostLike{},
		&models.Poll{},
		&models.PollVote{},
		&models.PaperParticipant{},
		&models.Subscription{},
	}
}

func Migrate(db *gorm.DB, log zerolog.Logger) error {
	if err := db.AutoMigrate(Models()...); err != nil {
		return fmt.Errorf("failed to migrate database: %w", err)
	}
	log.Info().Msg("Database migrated successfully!")
	return nil
}
