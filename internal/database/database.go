package database

import (
	"github.com/florapedia/api/internal/config"
	"github.com/florapedia/api/internal/model"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func Connect(cfg *config.Config) (*gorm.DB, error) {
	db, err := gorm.Open(postgres.Open(cfg.DatabaseURL), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Info),
	})
	if err != nil {
		return nil, err
	}

	return db, nil
}

func Migrate(db *gorm.DB) error {
	err := db.AutoMigrate(
		&model.Family{},
		&model.Attribute{},
		&model.Plant{},
		&model.User{},
		&model.RefreshToken{},
		&model.Contribution{},
		&model.History{},
	)
	if err != nil {
		return err
	}

	// Contribution review queue is always scanned pending-first by age
	db.Exec("CREATE INDEX IF NOT EXISTS idx_contributions_status_created ON contributions(status, created_at)")

	// History list and retention pruning both walk by recency
	db.Exec("CREATE INDEX IF NOT EXISTS idx_histories_plant_created ON histories(plant_id, created_at DESC)")

	return nil
}
