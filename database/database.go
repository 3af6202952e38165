package database

import (
	"fmt"
	"time"

	"coursehub/config"
	"coursehub/models"
	courseModels "coursehub/models/course"
	"coursehub/utils"

	"gorm.io/driver/mysql"
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// DbInstance struct holds the database connection instance
type DbInstance struct {
	Db *gorm.DB
}

// Database is the global database instance
var Database DbInstance

// ConnectDb opens the configured database, migrates it and stores the
// handle globally.
func ConnectDb() {
	db, err := Open(config.AppConfig)
	if err != nil {
		utils.Logger.Fatal("Failed to connect to database", "driver", config.AppConfig.DBDriver, "error", err)
	}
	if err := runMigrations(db); err != nil {
		utils.Logger.Fatal("Migration failed", "error", err)
	}

	// Save database instance globally
	Database = DbInstance{Db: db}
}

// dialector picks the gorm driver for cfg.DBDriver.
func dialector(cfg *config.Config) (gorm.Dialector, error) {
	switch cfg.DBDriver {
	case "postgres", "":
		dsn := fmt.Sprintf(
			"host=%s user=%s password=%s dbname=%s port=%s sslmode=disable",
			cfg.DBHost, cfg.DBUser, cfg.DBPassword, cfg.DBName, cfg.DBPort,
		)
		return postgres.Open(dsn), nil
	case "mysql":
		dsn := fmt.Sprintf(
			"%s:%s@tcp(%s:%s)/%s?charset=utf8mb4&parseTime=True&loc=UTC",
			cfg.DBUser, cfg.DBPassword, cfg.DBHost, cfg.DBPort, cfg.DBName,
		)
		return mysql.Open(dsn), nil
	case "sqlite":
		return sqlite.Open(cfg.DBName), nil
	default:
		return nil, fmt.Errorf("unsupported DB_DRIVER %q", cfg.DBDriver)
	}
}

// Open connects without touching the global instance.
func Open(cfg *config.Config) (*gorm.DB, error) {
	dial, err := dialector(cfg)
	if err != nil {
		return nil, err
	}
	logLevel := logger.Warn
	if cfg.IsProduction() {
		logLevel = logger.Error
	}
	db, err := gorm.Open(dial, &gorm.Config{
		TranslateError: true,
		Logger:         logger.Default.LogMode(logLevel),
	})
	if err != nil {
		return nil, err
	}

	// Set up connection pooling
	sqlDB, err := db.DB()
	if err != nil {
		return nil, err
	}
	maxOpen := cfg.DBMaxOpenConns
	if cfg.DBDriver == "sqlite" {
		maxOpen = 1
	}
	sqlDB.SetMaxOpenConns(maxOpen)
	sqlDB.SetMaxIdleConns(maxOpen/2 + 1)
	sqlDB.SetConnMaxLifetime(time.Hour)
	return db, nil
}

// OpenSQLite opens and migrates a sqlite database, e.g. ":memory:".
// All access goes through a single connection so an in-memory database
// survives for the lifetime of the handle.
func OpenSQLite(dsn string) (*gorm.DB, error) {
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		TranslateError: true,
		Logger:         logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		return nil, err
	}
	sqlDB, err := db.DB()
	if err != nil {
		return nil, err
	}
	sqlDB.SetMaxOpenConns(1)
	sqlDB.SetConnMaxLifetime(0)
	if err := runMigrations(db); err != nil {
		return nil, err
	}
	return db, nil
}

// runMigrations performs database migrations
func runMigrations(db *gorm.DB) error {
	utils.Logger.Info("Running migrations")

	err := db.AutoMigrate(
		&models.User{},
		&models.AuditLog{},
		&courseModels.Course{},
		&courseModels.Lesson{},
		&courseModels.Content{},
		&courseModels.Enrollment{},
		&courseModels.LessonEnrollment{},
		&courseModels.ContentProgress{},
		&courseModels.LessonProgress{},
		&courseModels.Quiz{},
		&courseModels.Question{},
		&courseModels.Choice{},
		&courseModels.QuizSubmission{},
		&courseModels.QuizAnswer{},
		&courseModels.CertificateRequest{},
		&courseModels.Certificate{},
	)
	if err != nil {
		return err
	}

	utils.Logger.Info("Migrations completed")
	return nil
}
