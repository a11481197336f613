package dto

import (
	"time"

	"github.com/collabroom/collabroom/internal/models"
	"github.com/google/uuid"
)

type CreateRoomRequest struct {
	Title         string `json:"title" binding:"required,max=200"`
	DefaultAccess string `json:"default_access"`
}

type UpdateRoomRequest struct {
	Title         *string `json:"title"`
	DefaultAccess *string `json:"default_access"`
}

type AccessEntry struct {
	SubjectType string    `json:"subject_type"`
	SubjectID   uuid.UUID `json:"subject_id"`
	Level       string    `json:"level"`
	GrantedBy   uuid.UUID `json:"granted_by"`
	GrantedAt   string    `json:"granted_at"`
}

type GrantAccessRequest struct {
	SubjectType string `json:"subject_type" binding:"required,oneof=user group"`
	SubjectID   string `json:"subject_id" binding:"required,uuid"`
	Level       string `json:"level" binding:"required"`
}

type RevokeAccessRequest struct {
	SubjectType string `json:"subject_type" binding:"required,oneof=user group"`
	SubjectID   string `json:"subject_id" binding:"required,uuid"`
}

// RoomResponse is the metadata record for a room. Timestamps serialize as
// RFC3339 strings.
type RoomResponse struct {
	ID            uuid.UUID     `json:"id"`
	Title         string        `json:"title"`
	CreatorID     uuid.UUID     `json:"creator_id"`
	CreatorEmail  string        `json:"creator_email"`
	DefaultAccess string        `json:"default_access"`
	CreatedAt     string        `json:"created_at"`
	Accesses      []AccessEntry `json:"accesses"`
}

func NewRoomResponse(room *models.Room) RoomResponse {
	accesses := make([]AccessEntry, len(room.Accesses))
	for i, a := range room.Accesses {
		accesses[i] = NewAccessEntry(&a)
	}

	return RoomResponse{
		ID:            room.ID,
		Title:         room.Title,
		CreatorID:     room.CreatorID,
		CreatorEmail:  room.CreatorEmail,
		DefaultAccess: string(room.DefaultAccess),
		CreatedAt:     room.CreatedAt.Format(time.RFC3339),
		Accesses:      accesses,
	}
}

func NewAccessEntry(a *models.RoomAccess) AccessEntry {
	return AccessEntry{
		SubjectType: a.SubjectType,
		SubjectID:   a.SubjectID,
		Level:       string(a.Level),
		GrantedBy:   a.GrantedBy,
		GrantedAt:   a.GrantedAt.Format(time.RFC3339),
	}
}
