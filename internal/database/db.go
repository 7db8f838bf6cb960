package database

import (
	"fmt"
	"time"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"osintscan/internal/config"
	"osintscan/internal/dao"
	"osintscan/internal/models"
	"osintscan/pkg/logger"
)

// InitDB opens the postgres database and migrates the scans table.
func InitDB(cfg config.DatabaseConfig, log *logger.Logger) (*gorm.DB, error) {
	db, err := gorm.Open(postgres.Open(cfg.DSN()), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Warn),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to access connection pool: %w", err)
	}
	sqlDB.SetMaxOpenConns(20)
	sqlDB.SetMaxIdleConns(5)
	sqlDB.SetConnMaxLifetime(30 * time.Minute)

	if err := db.AutoMigrate(&models.ScanRecord{}); err != nil {
		return nil, fmt.Errorf("failed to auto-migrate database: %w", err)
	}

	log.WithFields(logger.Fields{
		"host":     cfg.Host,
		"database": cfg.Name,
	}).Info("Database connection established and migrated")
	return db, nil
}

// OpenStore returns the ScanDAO selected by cfg.Driver and a function that
// releases it.
func OpenStore(cfg config.DatabaseConfig, log *logger.Logger) (dao.ScanDAO, func() error, error) {
	switch cfg.Driver {
	case "memory":
		log.Warn("Using in-memory scan store, records are lost on exit")
		return dao.NewMemoryScanDAO(), func() error { return nil }, nil
	case "postgres", "":
		db, err := InitDB(cfg, log)
		if err != nil {
			return nil, nil, err
		}
		sqlDB, err := db.DB()
		if err != nil {
			return nil, nil, err
		}
		return dao.NewScanDAO(db), sqlDB.Close, nil
	default:
		return nil, nil, fmt.Errorf("unsupported database driver %q", cfg.Driver)
	}
}
