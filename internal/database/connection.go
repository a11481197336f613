package database

import (
	"errors"
	"os"

	"github.com/collabroom/collabroom/internal/models"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

func Connect() (*Database, error) {
	dsn := os.Getenv("DATABASE_URL")
	if dsn == "" {
		return nil, errors.New("DATABASE_URL is not set")
	}

	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{})
	if err != nil {
		return nil, err
	}

	err = db.AutoMigrate(
		&models.User{},
		&models.Group{},
		&models.Room{},
		&models.RoomAccess{},
		&models.Comment{},
		&models.Notification{},
		&models.StorageEntry{},
	)
	if err != nil {
		return nil, err
	}

	return NewDatabase(db), nil
}
