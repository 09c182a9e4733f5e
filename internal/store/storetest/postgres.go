//go:build integration

package storetest

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"
	pgdriver "gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// StartPostgres connects to the database named by TEST_DB_HOST or starts a PostgreSQL container,
// then runs the schema script. The returned func releases the database.
func StartPostgres(ctx context.Context, schemaPath string) (*gorm.DB, func(), error) {
	var dsn string
	var container *postgres.PostgresContainer
	var err error

	terminate := func() {
		if container == nil {
			return
		}
		if err := container.Terminate(context.Background()); err != nil {
			fmt.Printf("Failed to terminate PostgreSQL container: %v\n", err)
		}
	}

	// Check if we should use an external database (for CI or local development)
	if dbHost := os.Getenv("TEST_DB_HOST"); dbHost != "" {
		dsn = fmt.Sprintf("host=%s port=%s user=%s password=%s dbname=%s sslmode=disable",
			dbHost,
			envOrDefault("TEST_DB_PORT", "5432"),
			envOrDefault("TEST_DB_USER", "postgres"),
			envOrDefault("TEST_DB_PASSWORD", "postgres"),
			envOrDefault("TEST_DB_NAME", "test_db"),
		)
		fmt.Printf("Using external database: %s\n", dbHost)
	} else {
		container, err = postgres.Run(ctx,
			"postgres:18-alpine",
			postgres.WithDatabase("test_db"),
			postgres.WithUsername("postgres"),
			postgres.WithPassword("postgres"),
			testcontainers.WithWaitStrategy(
				wait.ForLog("database system is ready to accept connections").
					WithOccurrence(2).
					WithStartupTimeout(30*time.Second)),
		)
		if err != nil {
			return nil, nil, fmt.Errorf("failed to start PostgreSQL container: %w", err)
		}

		dsn, err = container.ConnectionString(ctx, "sslmode=disable")
		if err != nil {
			terminate()
			return nil, nil, fmt.Errorf("failed to get connection string: %w", err)
		}
	}

	db, err := gorm.Open(pgdriver.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		terminate()
		return nil, nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	if err := initializeSchema(db, schemaPath); err != nil {
		terminate()
		return nil, nil, err
	}

	return db, func() {
		if sqlDB, err := db.DB(); err == nil {
			_ = sqlDB.Close()
		}
		terminate()
	}, nil
}

func envOrDefault(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

// initializeSchema runs the schema initialization
func initializeSchema(db *gorm.DB, schemaPath string) error {
	sqlDB, err := db.DB()
	if err != nil {
		return fmt.Errorf("failed to get sql.DB: %w", err)
	}

	schemaSQL, err := os.ReadFile(schemaPath) //nolint:gosec,G304
	if err != nil {
		return fmt.Errorf("failed to read schema file: %w", err)
	}

	if _, err := sqlDB.Exec(string(schemaSQL)); err != nil {
		return fmt.Errorf("failed to execute schema: %w", err)
	}

	return nil
}
