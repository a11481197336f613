package models

import (
	"github.com/google/uuid"
	"time"
)

type Group struct {
	ID        uuid.UUID `gorm:"type:uuid;default:gen_random_uuid();primaryKey"`
	Name      string    `gorm:"uniqueIndex;not null"`
	CreatedBy uuid.UUID
	CreatedAt time.Time

	Members []User `gorm:"many2many:group_members"`
}
