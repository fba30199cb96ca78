package infra

import (
	"fmt"

	"github.com/mrinmay27/the149-store/internal/model"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// NewDatabase establishes a GORM connection backed by pgx, runs AutoMigrate
// for all tables, and guarantees the balances singleton exists. The check
// constraints on balances and stock are the last line of defense: even a bug
// that slipped past the locked validation cannot commit a negative figure.
func NewDatabase(dsn string) (*gorm.DB, error) {
	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		return nil, err
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, err
	}
	sqlDB.SetMaxOpenConns(25)
	sqlDB.SetMaxIdleConns(5)

	if err := RunMigrations(db); err != nil {
		return nil, err
	}

	return db, nil
}

// RunMigrations applies the schema and seeds the balances singleton.
func RunMigrations(db *gorm.DB) error {
	if err := db.AutoMigrate(
		&model.Profile{},
		&model.AccountBalance{},
		&model.PriceCategory{},
		&model.Sale{},
		&model.SaleItem{},
		&model.Expense{},
		&model.Deposit{},
		&model.Notification{},
	); err != nil {
		return fmt.Errorf("automigrate: %w", err)
	}

	// Exactly one balances row, starting at zero. ON CONFLICT keeps concurrent
	// replica boots idempotent.
	var count int64
	if err := db.Model(&model.AccountBalance{}).Count(&count).Error; err != nil {
		return err
	}
	if count == 0 {
		if err := db.Create(&model.AccountBalance{}).Error; err != nil {
			return fmt.Errorf("seed balances singleton: %w", err)
		}
	}
	return nil
}
