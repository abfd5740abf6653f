// Package database provides database connection management for the
// perchfinder fishing-log service.
//
// This package includes:
//   - GORM/PostgreSQL connection management and schema migration
//   - A parallel database/sql handle (lib/pq) for the admin dashboard queries
//
// Data Models:
//
//	All data models (Water, Catch, Lure, etc.) are defined in the models_pkg
//	package to avoid circular import dependencies.
package database

import (
	"fmt"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	models "perchfinder/database/models_pkg"
)

// Database holds the GORM database connection and provides access to the
// underlying DB instance. It serves as the central connection point for all
// repository packages.
type Database struct {
	db *gorm.DB
}

// DB returns the underlying GORM database instance for direct access when needed.
func (d *Database) DB() *gorm.DB {
	return d.db
}

// Connect establishes database connection using GORM
func Connect(host string, port int, dbname, user, password string) (*Database, error) {
	dsn := fmt.Sprintf("host=%s port=%d dbname=%s user=%s password=%s sslmode=disable",
		host, port, dbname, user, password)

	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent), // Silent logging for production
	})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	return &Database{db: db}, nil
}

// InitSchema migrates all tables.
func (d *Database) InitSchema() error {
	return d.db.AutoMigrate(
		&models.Water{},
		&models.Lure{},
		&models.Catch{},
		&models.RateLimitCounter{},
		&models.CatchWebhook{},
		&models.CatchWebhookLog{},
	)
}

// Close closes the database connection
func (d *Database) Close() error {
	sqlDB, err := d.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

// ============================================================================
// Backward Compatibility Type Aliases
// ============================================================================

// These type aliases let callers import the models through the database
// package directly.

type Water = models.Water
type Lure = models.Lure
type Catch = models.Catch
type RateLimitCounter = models.RateLimitCounter
type CatchWebhook = models.CatchWebhook
type CatchWebhookLog = models.CatchWebhookLog
