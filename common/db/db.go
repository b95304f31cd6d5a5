package db

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"strconv"
	"time"

	_ "github.com/go-sql-driver/mysql"

	"github.com/goal-tracker-services/common/logger"
)

var db *sql.DB

// Config holds database configuration
type Config struct {
	Server   string
	Port     int
	Database string
	User     string
	Password string
}

// InitDB initializes the database connection pool from environment variables
func InitDB() error {
	port := 3306
	if raw := getEnv("DB_PORT", ""); raw != "" {
		if parsed, err := strconv.Atoi(raw); err == nil {
			port = parsed
		}
	}

	config := Config{
		Server:   getEnv("DB_SERVER", "127.0.0.1"),
		Port:     port,
		Database: getEnv("DB_NAME", "GoalTracker"),
		User:     getEnv("DB_USER", "root"),
		Password: getEnv("DB_PASSWORD", ""),
	}

	return InitDBWithConfig(config)
}

// buildDSN renders the driver DSN. parseTime=true so DATETIME columns
// scan into time.Time; all timestamps are stored and compared in UTC.
// clientFoundRows=true makes RowsAffected report matched rows instead
// of changed rows; the repositories treat zero affected rows as "no
// such row", which an update re-submitting identical values would
// otherwise break.
func buildDSN(config Config) string {
	return fmt.Sprintf(
		"%s:%s@tcp(%s:%d)/%s?parseTime=true&loc=UTC&clientFoundRows=true",
		config.User,
		config.Password,
		config.Server,
		config.Port,
		config.Database,
	)
}

// InitDBWithConfig initializes database with custom config
func InitDBWithConfig(config Config) error {
	var err error
	db, err = sql.Open("mysql", buildDSN(config))
	if err != nil {
		return fmt.Errorf("failed to open database: %w", err)
	}

	// Configure connection pool
	db.SetMaxOpenConns(25)
	db.SetMaxIdleConns(5)
	db.SetConnMaxLifetime(5 * time.Minute)

	// Test connection
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := db.PingContext(ctx); err != nil {
		return fmt.Errorf("failed to ping database: %w", err)
	}

	logger.Info("database connected",
		"server", config.Server,
		"port", config.Port,
		"database", config.Database,
	)

	return nil
}

// GetDB returns the database connection
func GetDB() *sql.DB {
	return db
}

// CloseDB closes the database connection
func CloseDB() error {
	if db != nil {
		return db.Close()
	}
	return nil
}

// getEnv gets environment variable with fallback
func getEnv(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}

// Transaction helpers

// WithTransaction executes a function within a transaction
func WithTransaction(ctx context.Context, fn func(*sql.Tx) error) error {
	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}

	defer func() {
		if p := recover(); p != nil {
			_ = tx.Rollback()
			panic(p)
		}
	}()

	if err := fn(tx); err != nil {
		if rbErr := tx.Rollback(); rbErr != nil {
			return fmt.Errorf("failed to rollback transaction: %v (original error: %w)", rbErr, err)
		}
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}

	return nil
}
