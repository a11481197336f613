package models

import (
	"github.com/google/uuid"
	"time"
)

// Comment is a room comment. A nil ParentID marks a thread root; replies
// carry the root's id. ResolvedAt is only ever set on roots.
type Comment struct {
	ID         uuid.UUID  `gorm:"type:uuid;default:gen_random_uuid();primaryKey"`
	RoomID     uuid.UUID  `gorm:"not null;index"`
	UserID     uuid.UUID  `gorm:"not null"`
	ParentID   *uuid.UUID `gorm:"index"`
	Body       string     `gorm:"not null"`
	CreatedAt  time.Time
	EditedAt   *time.Time
	ResolvedAt *time.Time
	ResolvedBy *uuid.UUID

	User User `gorm:"foreignKey:UserID"`
}
