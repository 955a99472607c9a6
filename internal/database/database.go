// Package database opens the GORM connection and prepares the schema.
package database

import (
	"context"
	"fmt"
	"log"

	"productapi/internal/config"
	"productapi/internal/models"
	"productapi/internal/repositories"

	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// Open connects to the configured database and applies pool limits.
func Open(cfg config.Config) (*gorm.DB, error) {
	var dialector gorm.Dialector
	switch cfg.DBDriver {
	case config.DriverPostgres:
		dialector = postgres.Open(cfg.DatabaseDSN)
	case config.DriverSQLite:
		dialector = sqlite.Open(cfg.DatabaseDSN)
	default:
		return nil, fmt.Errorf("unsupported database driver %q", cfg.DBDriver)
	}

	db, err := gorm.Open(dialector, &gorm.Config{
		Logger: logger.Default.LogMode(logger.Warn),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to get database handle: %w", err)
	}
	sqlDB.SetMaxOpenConns(cfg.DBMaxOpenConns)
	sqlDB.SetMaxIdleConns(cfg.DBMaxIdleConns)
	sqlDB.SetConnMaxLifetime(cfg.DBConnMaxLifetime)

	log.Printf("Connected to %s database", cfg.DBDriver)
	return db, nil
}

// Migrate creates or updates the tables the service owns.
func Migrate(db *gorm.DB) error {
	if err := db.AutoMigrate(&models.Product{}, &models.User{}); err != nil {
		return fmt.Errorf("failed to migrate database: %w", err)
	}
	return nil
}

// Ping checks that the database answers within ctx.
func Ping(ctx context.Context, db *gorm.DB) error {
	sqlDB, err := db.DB()
	if err != nil {
		return err
	}
	return sqlDB.PingContext(ctx)
}

// Close releases the underlying connection pool.
func Close(db *gorm.DB) error {
	sqlDB, err := db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

// demoProducts are inserted by SeedProducts on an empty table.
var demoProducts = []models.Product{
	{Name: "Laptop", Description: "High performance laptop", Price: 1200.00},
	{Name: "Keyboard", Description: "Mechanical keyboard", Price: 75.00},
	{Name: "Mouse", Description: "Ergonomic wireless mouse", Price: 25.00},
}

// SeedProducts populates an empty product table with demo data. It returns
// the number of products inserted.
func SeedProducts(ctx context.Context, repo repositories.ProductRepository) (int, error) {
	existing, err := repo.FindAll(ctx)
	if err != nil {
		return 0, err
	}
	if len(existing) > 0 {
		return 0, nil
	}

	for i := range demoProducts {
		p := demoProducts[i]
		if err := repo.Save(ctx, &p); err != nil {
			return i, fmt.Errorf("failed to seed product %s: %w", p.Name, err)
		}
		log.Printf("Seeded product: %s (ID: %d)", p.Name, p.ID)
	}
	return len(demoProducts), nil
}
