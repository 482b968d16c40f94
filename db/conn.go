// Package db handles the database connection and schema migration
package db

import (
	"fmt"

	"agencydesk/creator-api/internal/model"

	"github.com/spf13/viper"
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

func New() (*gorm.DB, error) {
	var dial gorm.Dialector

	switch viper.GetString("db.driver") {
	case "postgres":
		dial = postgres.Open(viper.GetString("db.dsn"))
	default:
		dial = sqlite.Open(viper.GetString("db.dsn"))
	}

	// TranslateError maps driver-specific failures onto gorm's sentinel
	// errors, so handlers can match on gorm.ErrDuplicatedKey
	db, err := gorm.Open(dial, &gorm.Config{TranslateError: true})
	if err != nil {
		return nil, fmt.Errorf("failed to initialize database, %w", err)
	}

	if err := Migrate(db); err != nil {
		return nil, err
	}

	return db, nil
}

// Migrate brings the schema up to date. Split out so tests can run it
// against their own sqlite instance.
func Migrate(db *gorm.DB) error {
	err := db.AutoMigrate(
		model.Profile{},
		model.Creator{},
		model.Category{},
		model.Folder{},
		model.MediaFile{},
		model.PendingUpload{},
		model.Custom{},
		model.SocialMediaLogin{},
		model.OnboardingSubmission{},
	)
	if err != nil {
		return fmt.Errorf("failed to automigrate tables, %w", err)
	}

	return nil
}
