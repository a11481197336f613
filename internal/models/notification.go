package models

import (
	"github.com/google/uuid"
	"time"
)

type NotificationType string

const (
	NotifyAccessGranted NotificationType = "access_granted"
	NotifyAccessRevoked NotificationType = "access_revoked"
	NotifyMention       NotificationType = "mention"
	NotifyComment       NotificationType = "comment"
	NotifyRoomDeleted   NotificationType = "room_deleted"
)

var notificationTypes = map[NotificationType]bool{
	NotifyAccessGranted: true,
	NotifyAccessRevoked: true,
	NotifyMention:       true,
	NotifyComment:       true,
	NotifyRoomDeleted:   true,
}

// ValidNotificationType reports whether t belongs to the fixed enumeration.
func ValidNotificationType(t NotificationType) bool {
	return notificationTypes[t]
}

type Notification struct {
	ID        uuid.UUID        `gorm:"type:uuid;default:gen_random_uuid();primaryKey"`
	UserID    uuid.UUID        `gorm:"not null;index"`
	RoomID    *uuid.UUID       `gorm:"index"`
	ActorID   *uuid.UUID
	Type      NotificationType `gorm:"not null"`
	Body      string
	CreatedAt time.Time
	ReadAt    *time.Time
}
