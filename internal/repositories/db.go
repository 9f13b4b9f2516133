// Package repositories provides data access layer implementations.
// It handles all database operations and data persistence logic.
package repositories

import (
	"context"
	"fmt"
	"log"
	"os"
	"time"

	"pazar/internal/config"
	"pazar/internal/models"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/jackc/pgx/v5/stdlib"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

const activeEscrowIndexName = "idx_transactions_active_escrow"

// activeEscrowIndex guarantees at most one open escrow per (listing, buyer).
const activeEscrowIndex = `CREATE UNIQUE INDEX IF NOT EXISTS ` + activeEscrowIndexName + `
ON transactions (listing_id, buyer_id)
WHERE type = 'escrow_purchase' AND status IN ('pending_payment', 'paid', 'shipped')`

// Database bundles the gorm handle with the pgx pool it runs on.
type Database struct {
	DB   *gorm.DB
	Pool *pgxpool.Pool
}

// Open connects to PostgreSQL through a pgx pool and runs the migrations.
func Open(ctx context.Context, cfg config.Config) (*Database, error) {
	poolConfig, err := pgxpool.ParseConfig(cfg.DSN())
	if err != nil {
		return nil, fmt.Errorf("parse database url: %w", err)
	}
	poolConfig.MaxConns = cfg.DBMaxOpenConns
	poolConfig.MinConns = cfg.DBMaxIdleConns
	poolConfig.MaxConnLifetime = cfg.DBConnMaxLifetime
	poolConfig.MaxConnIdleTime = 30 * time.Minute

	pool, err := pgxpool.NewWithConfig(ctx, poolConfig)
	if err != nil {
		return nil, fmt.Errorf("connect database: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	// Configure GORM logger to ignore "record not found" errors
	gormLogger := logger.New(
		log.New(os.Stdout, "\r\n", log.LstdFlags),
		logger.Config{
			SlowThreshold:             time.Second,
			LogLevel:                  logger.Warn,
			IgnoreRecordNotFoundError: true,
			Colorful:                  !cfg.IsProduction(),
		},
	)

	db, err := gorm.Open(postgres.New(postgres.Config{Conn: stdlib.OpenDBFromPool(pool)}), &gorm.Config{
		Logger: gormLogger,
	})
	if err != nil {
		pool.Close()
		return nil, fmt.Errorf("open gorm: %w", err)
	}

	if err := Migrate(db); err != nil {
		pool.Close()
		return nil, err
	}

	log.Println("component=database msg=\"postgres connected, migrations applied\"")
	return &Database{DB: db, Pool: pool}, nil
}

// Migrate creates or updates the schema.
func Migrate(db *gorm.DB) error {
	if err := db.AutoMigrate(
		&models.User{},
		&models.Listing{},
		&models.Transaction{},
		&models.Message{},
		&models.Promotion{},
	); err != nil {
		return fmt.Errorf("auto migrate: %w", err)
	}
	if err := db.Exec(activeEscrowIndex).Error; err != nil {
		return fmt.Errorf("create active escrow index: %w", err)
	}
	return nil
}

// Close releases the pool.
func (d *Database) Close() {
	if sqlDB, err := d.DB.DB(); err == nil {
		sqlDB.Close()
	}
	d.Pool.Close()
}
