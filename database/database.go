package database

import (
	"fmt"
	"log"

	"github.com/Hexoro/Hexward-sub000/models"
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

var DB *gorm.DB

// Connect initializes the database connection. An empty databaseURL falls
// back to a local sqlite file, matching the development default.
func Connect(databaseURL string) error {
	var err error
	if databaseURL == "" {
		log.Println("DATABASE_URL not set, using sqlite ./hexward.db")
		DB, err = gorm.Open(sqlite.Open("hexward.db"), &gorm.Config{
			Logger: logger.Default.LogMode(logger.Warn),
		})
	} else {
		DB, err = gorm.Open(postgres.Open(databaseURL), &gorm.Config{
			Logger: logger.Default.LogMode(logger.Warn),
		})
	}

	if err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}

	log.Println("✅ Database connected successfully")

	if err := AutoMigrate(DB); err != nil {
		return fmt.Errorf("failed to auto-migrate: %w", err)
	}

	return nil
}

// AutoMigrate runs database migrations
func AutoMigrate(db *gorm.DB) error {
	return db.AutoMigrate(
		&models.User{},
		&models.Patient{},
		&models.PatientEvent{},
		&models.Alert{},
		&models.Camera{},
		&models.Detection{},
		&models.VitalsRecord{},
		&models.Medication{},
		&models.Consultation{},
		&models.Report{},
		&models.SystemLog{},
	)
}

// Close closes the database connection
func Close() error {
	sqlDB, err := DB.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}
