package config

import (
	"errors"
	"fmt"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

var DB *gorm.DB

// GormConfig returns the gorm settings shared by the service and its tests.
// Driver errors are translated so unique violations surface as gorm.ErrDuplicatedKey.
func GormConfig() *gorm.Config {
	return &gorm.Config{
		TranslateError: true,
		Logger:         gormlogger.Default.LogMode(gormlogger.Warn),
	}
}

// QuietGormConfig is GormConfig with query logging switched off
func QuietGormConfig() *gorm.Config {
	cfg := GormConfig()
	cfg.Logger = gormlogger.Default.LogMode(gormlogger.Silent)
	return cfg
}

// ConnectDatabase establishes a connection to the PostgreSQL database at databaseURL
func ConnectDatabase(databaseURL string) error {
	if databaseURL == "" {
		return errors.New("database URL is required")
	}

	var err error
	DB, err = gorm.Open(postgres.Open(databaseURL), GormConfig())
	if err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}

	return nil
}

// GetDB returns the database instance
func GetDB() *gorm.DB {
	return DB
}

// SetDB replaces the database instance (primarily for testing)
func SetDB(db *gorm.DB) {
	DB = db
}
