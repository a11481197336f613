package dto

import (
	"time"

	"github.com/collabroom/collabroom/internal/models"
	"github.com/google/uuid"
)

type NotificationResponse struct {
	ID        uuid.UUID  `json:"id"`
	RoomID    *uuid.UUID `json:"room_id,omitempty"`
	ActorID   *uuid.UUID `json:"actor_id,omitempty"`
	Type      string     `json:"type"`
	Body      string     `json:"body,omitempty"`
	CreatedAt string     `json:"created_at"`
	ReadAt    *string    `json:"read_at,omitempty"`
}

func NewNotificationResponse(n *models.Notification) NotificationResponse {
	resp := NotificationResponse{
		ID:        n.ID,
		RoomID:    n.RoomID,
		ActorID:   n.ActorID,
		Type:      string(n.Type),
		Body:      n.Body,
		CreatedAt: n.CreatedAt.Format(time.RFC3339),
	}

	if n.ReadAt != nil {
		s := n.ReadAt.Format(time.RFC3339)
		resp.ReadAt = &s
	}

	return resp
}
