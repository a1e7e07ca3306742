package utils

import (
	"fmt"
	"project/backend/config"
	"project/backend/models"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

// InitDB opens the postgres connection and migrates the schema.
func InitDB(cfg *config.Config) (*gorm.DB, error) {
	dsn := fmt.Sprintf("host=%s port=%s user=%s password=%s dbname=%s sslmode=disable",
		cfg.DBHost, cfg.DBPort, cfg.DBUser, cfg.DBPassword, cfg.DBName)

	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{})
	if err != nil {
		return nil, err
	}

	if err := MigrateModels(db); err != nil {
		return nil, err
	}
	return db, nil
}

// MigrateModels runs AutoMigrate for every entity. Shared with the
// test suites, which run it against sqlite.
func MigrateModels(db *gorm.DB) error {
	return db.AutoMigrate(
		&models.School{},
		&models.User{},
		&models.LoginHistory{},
		&models.Course{},
		&models.Lesson{},
		&models.Quiz{},
		&models.QuizQuestion{},
		&models.ProgressRecord{},
		&models.Payment{},
		&models.Booking{},
		&models.Notification{},
		&models.NotificationBatch{},
	)
}
