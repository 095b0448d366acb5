package database

import (
	"time"

	"github.com/rs/zerolog/log"
	"github.com/weave-app/weave-server/models"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

var DB *gorm.DB

func Connect(dbURL string) error {
	// Retry mechanism
	var err error
	for i := 0; i < 30; i++ { // Try for 30 seconds
		DB, err = gorm.Open(postgres.Open(dbURL), &gorm.Config{
			Logger: logger.Default.LogMode(logger.Warn),
		})
		if err == nil {
			log.Info().Msg("connected to database")
			break
		}
		log.Warn().Err(err).Msg("failed to connect to database, retrying in 1 second")
		time.Sleep(1 * time.Second)
	}
	if err != nil {
		return err
	}

	return Migrate(DB)
}

// Migrate applies the schema. Tests reuse it against sqlite.
func Migrate(db *gorm.DB) error {
	return db.AutoMigrate(
		&models.User{},
		&models.UserPreference{},
		&models.Story{},
		&models.Chapter{},
		&models.ProgressRecord{},
	)
}
