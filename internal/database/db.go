package database

import (
	"fmt"
	"log/slog"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"

	"pos-backend/internal/config"
	"pos-backend/internal/logger"
	"pos-backend/internal/models"
)

// Open connects to Postgres, sizes the pool and migrates the schema.
func Open(cfg *config.Config, log *slog.Logger) (*gorm.DB, error) {
	db, err := gorm.Open(postgres.Open(cfg.DatabaseDSN), &gorm.Config{
		Logger: logger.Gorm(log, cfg.SlowRequestThreshold),
	})
	if err != nil {
		return nil, fmt.Errorf("connect database: %w", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("database handle: %w", err)
	}
	sqlDB.SetMaxOpenConns(cfg.DBMaxOpenConns)
	sqlDB.SetMaxIdleConns(cfg.DBMaxIdleConns)
	sqlDB.SetConnMaxLifetime(cfg.DBConnMaxLifetime)

	if err := Migrate(db, log); err != nil {
		return nil, err
	}
	log.Info("database connected, migration complete")
	return db, nil
}

// Migrate creates the tables and then adds the tenant constraints gorm
// cannot express in struct tags.
func Migrate(db *gorm.DB, log *slog.Logger) error {
	err := db.AutoMigrate(
		&models.User{},
		&models.Restaurant{},
		&models.Employee{},
		&models.Table{},
		&models.Customer{},
		&models.Category{},
		&models.Product{},
		&models.ProductRestaurant{},
		&models.Order{},
		&models.OrderTable{},
		&models.OrderLine{},
	)
	if err != nil {
		return fmt.Errorf("automigrate: %w", err)
	}

	for _, stmt := range tenantIndexes {
		if err := db.Exec(stmt).Error; err != nil {
			return fmt.Errorf("create index: %w", err)
		}
	}

	for _, c := range tenantConstraints {
		var exists bool
		err := db.Raw(`
			SELECT EXISTS (
				SELECT 1
				FROM information_schema.table_constraints
				WHERE table_name = ?
				AND constraint_name = ?
			)
		`, c.table, c.name).Scan(&exists).Error
		if err != nil {
			return fmt.Errorf("look up constraint %s: %w", c.name, err)
		}
		if exists {
			continue
		}

		log.Info("adding constraint", "table", c.table, "constraint", c.name)
		stmt := fmt.Sprintf("ALTER TABLE %s ADD CONSTRAINT %s %s", c.table, c.name, c.definition)
		if err := db.Exec(stmt).Error; err != nil {
			return fmt.Errorf("add constraint %s: %w", c.name, err)
		}
	}
	return nil
}
