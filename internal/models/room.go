package models

import (
	"github.com/google/uuid"
	"time"
)

// AccessLevel is a permission tuple granting operations on a room.
type AccessLevel string

const (
	AccessNone    AccessLevel = ""
	AccessRead    AccessLevel = "room:read"
	AccessComment AccessLevel = "room:comment"
	AccessWrite   AccessLevel = "room:write"
)

const (
	SubjectUser  = "user"
	SubjectGroup = "group"
)

var accessRank = map[AccessLevel]int{
	AccessNone:    0,
	AccessRead:    1,
	AccessComment: 2,
	AccessWrite:   3,
}

// ParseAccessLevel validates a permission tuple coming from a request.
func ParseAccessLevel(s string) (AccessLevel, bool) {
	lvl := AccessLevel(s)
	switch lvl {
	case AccessRead, AccessComment, AccessWrite:
		return lvl, true
	}
	return AccessNone, false
}

// AtLeast reports whether the level grants everything want grants.
func (l AccessLevel) AtLeast(want AccessLevel) bool {
	return accessRank[l] >= accessRank[want]
}

type Room struct {
	ID            uuid.UUID   `gorm:"type:uuid;default:gen_random_uuid();primaryKey"`
	Title         string      `gorm:"not null"`
	CreatorID     uuid.UUID   `gorm:"not null"`
	CreatorEmail  string      `gorm:"not null"`
	DefaultAccess AccessLevel `gorm:"default:''"`
	CreatedAt     time.Time
	UpdatedAt     time.Time

	Accesses []RoomAccess `gorm:"foreignKey:RoomID"`
}

// RoomAccess maps a user or group to a permission tuple on a room.
type RoomAccess struct {
	ID          uuid.UUID   `gorm:"type:uuid;default:gen_random_uuid();primaryKey"`
	RoomID      uuid.UUID   `gorm:"not null;uniqueIndex:idx_room_subject,priority:1"`
	SubjectType string      `gorm:"not null;check:subject_type IN ('user','group');uniqueIndex:idx_room_subject,priority:2"`
	SubjectID   uuid.UUID   `gorm:"not null;uniqueIndex:idx_room_subject,priority:3"`
	Level       AccessLevel `gorm:"not null"`
	GrantedBy   uuid.UUID
	GrantedAt   time.Time
}

// EffectiveLevel resolves the level a user holds on a room.
// The creator always holds room:write. An explicit user grant wins over group
// grants; among group grants the highest wins; the room default applies last.
func EffectiveLevel(room *Room, userID uuid.UUID, groupIDs []uuid.UUID) AccessLevel {
	if room.CreatorID == userID {
		return AccessWrite
	}

	groups := make(map[uuid.UUID]bool, len(groupIDs))
	for _, id := range groupIDs {
		groups[id] = true
	}

	best := AccessNone
	for _, a := range room.Accesses {
		switch a.SubjectType {
		case SubjectUser:
			if a.SubjectID == userID {
				return a.Level
			}
		case SubjectGroup:
			if groups[a.SubjectID] && accessRank[a.Level] > accessRank[best] {
				best = a.Level
			}
		}
	}

	if best != AccessNone {
		return best
	}
	return room.DefaultAccess
}
