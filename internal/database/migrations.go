package database

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/rs/zerolog"
	"gorm.io/gorm"
)

type Migration struct {
	ID        uint   `gorm:"primaryKey"`
	Version   string `gorm:"uniqueIndex;size:255"`
	AppliedAt time.Time
}

// RunMigrations applies every *.sql file in dir that isn't recorded yet,
// in file name order. Each file runs in its own transaction.
func RunMigrations(db *gorm.DB, dir string, log zerolog.Logger) error {
	if err := db.AutoMigrate(&Migration{}); err != nil {
		return fmt.Errorf("failed to create migrations table: %w", err)
	}

	files, err := filepath.Glob(filepath.Join(dir, "*.sql"))
	if err != nil {
		return fmt.Errorf("failed to read migrations directory: %w", err)
	}

	for _, file := range files {
		filename := filepath.Base(file)

		var count int64
		if err := db.Model(&Migration{}).Where("version = ?", filename).Count(&count).Error; err != nil {
			return fmt.Errorf("failed to check migration %s: %w", filename, err)
		}
		if count > 0 {
			log.Debug().Str("file", filename).Msg("⏭️  Skipping migration (already applied)")
			continue
		}

		sqlContent, err := os.ReadFile(file)
		if err != nil {
			return fmt.Errorf("failed to read migration file %s: %w", filename, err)
		}

		log.Info().Str("file", filename).Msg("▶️  Applying migration")
		err = db.Transaction(func(tx *gorm.DB) error {
			if err := tx.Exec(string(sqlContent)).Error; err != nil {
				return fmt.Errorf("failed to execute migration %s: %w", filename, err)
			}
			migration := Migration{Version: filename, AppliedAt: time.Now()}
			if err := tx.Create(&migration).Error; err != nil {
				return fmt.Errorf("failed to record migration %s: %w", filename, err)
			}
			return nil
		})
		if err != nil {
			return err
		}

		log.Info().Str("file", filename).Msg("✅ Applied migration")
	}

	log.Info().Msg("🎉 All migrations completed successfully")
	return nil
}

func GetAppliedMigrations(db *gorm.DB) ([]Migration, error) {
	var migrations []Migration
	if err := db.Order("applied_at DESC").Find(&migrations).Error; err != nil {
		return nil, err
	}
	return migrations, nil
}
