package database

import (
	"fmt"
	"log"
	"os"
	"time"

	"goblog/config"
	"goblog/models"

	"gorm.io/driver/mysql"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// InitDB opens the configured database and migrates the blog schema.
func InitDB() *gorm.DB {
	// GORM logger configuration
	newLogger := logger.New(
		log.New(os.Stdout, "\r\n", log.LstdFlags),
		logger.Config{
			SlowThreshold:             time.Second,
			LogLevel:                  logger.Warn,
			IgnoreRecordNotFoundError: true, // not-found is an expected outcome for lookups
			Colorful:                  true,
		},
	)

	var dialector gorm.Dialector
	switch config.AppConfig.DatabaseDriver {
	case "mysql":
		dialector = mysql.Open(config.AppConfig.DatabaseURL)
	case "sqlite":
		dialector = sqlite.Open(config.AppConfig.DatabaseURL)
	default:
		panic(fmt.Errorf("unsupported database driver: %s", config.AppConfig.DatabaseDriver))
	}

	db, err := gorm.Open(dialector, &gorm.Config{
		Logger: newLogger,
	})
	if err != nil {
		panic(fmt.Errorf("failed to connect database: %w", err))
	}

	if err := db.AutoMigrate(&models.User{}, &models.Post{}); err != nil {
		panic(fmt.Errorf("failed to migrate database: %w", err))
	}

	return db
}
