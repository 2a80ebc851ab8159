package database

import (
	"fmt"

	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/wtppaul/course-marketplace/internal/config"
	"github.com/wtppaul/course-marketplace/internal/logger"
	"github.com/wtppaul/course-marketplace/internal/models"
)

// Open connects to the configured database and migrates every model.
func Open(cfg *config.Config, log *logger.Logger) (*gorm.DB, error) {
	var dialector gorm.Dialector
	switch cfg.DBDriver {
	case "sqlite":
		dialector = sqlite.Open(cfg.DBPath)
	default:
		if cfg.DBHost == "" {
			return nil, fmt.Errorf("database configuration not set (check DATABASE_HOST etc.)")
		}
		dialector = postgres.Open(cfg.DSN())
	}

	db, err := gorm.Open(dialector, &gorm.Config{
		Logger: newGormLogger(log, cfg.LogMode),
	})
	if err != nil {
		return nil, fmt.Errorf("connect to %s: %w", cfg.DBDriver, err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("get database instance: %w", err)
	}
	if cfg.DBDriver == "sqlite" {
		// sqlite serializes writers anyway; one connection keeps in-memory
		// databases and transactions consistent.
		sqlDB.SetMaxOpenConns(1)
	} else {
		sqlDB.SetMaxOpenConns(10)
		sqlDB.SetMaxIdleConns(5)

		if err := db.Exec(`CREATE EXTENSION IF NOT EXISTS "uuid-ossp";`).Error; err != nil {
			return nil, fmt.Errorf("enable uuid-ossp extension: %w", err)
		}
	}

	log.Info("Running migrations...", "driver", cfg.DBDriver)
	if err := Migrate(db); err != nil {
		return nil, fmt.Errorf("migration failed: %w", err)
	}
	log.Info("Database connected & migrated", "driver", cfg.DBDriver)

	return db, nil
}

// Migrate creates or updates the schema for every model.
func Migrate(db *gorm.DB) error {
	return db.AutoMigrate(
		&models.User{},
		&models.Category{},
		&models.Course{},
		&models.Module{},
		&models.Article{},
		&models.Attachment{},
		&models.Enrollment{},
		&models.Request{},
		&models.UserProgress{},
		&models.Payment{},
	)
}
