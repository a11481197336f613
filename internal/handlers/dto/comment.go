package dto

import (
	"time"

	"github.com/collabroom/collabroom/internal/models"
	"github.com/google/uuid"
)

type PostCommentRequest struct {
	Body     string `json:"body" binding:"required,max=10000"`
	ParentID string `json:"parent_id"`
}

type EditCommentRequest struct {
	Body string `json:"body" binding:"required,max=10000"`
}

type CommentResponse struct {
	ID         uuid.UUID  `json:"id"`
	RoomID     uuid.UUID  `json:"room_id"`
	UserID     uuid.UUID  `json:"user_id"`
	ParentID   *uuid.UUID `json:"parent_id,omitempty"`
	Body       string     `json:"body"`
	CreatedAt  string     `json:"created_at"`
	EditedAt   *string    `json:"edited_at,omitempty"`
	ResolvedAt *string    `json:"resolved_at,omitempty"`
	ResolvedBy *uuid.UUID `json:"resolved_by,omitempty"`
	User       UserInfo   `json:"user"`
}

type UserInfo struct {
	ID        uuid.UUID `json:"id"`
	Username  string    `json:"username"`
	AvatarURL string    `json:"avatar_url,omitempty"`
	Online    bool      `json:"online,omitempty"`
}

func NewCommentResponse(c *models.Comment) CommentResponse {
	resp := CommentResponse{
		ID:        c.ID,
		RoomID:    c.RoomID,
		UserID:    c.UserID,
		ParentID:  c.ParentID,
		Body:      c.Body,
		CreatedAt: c.CreatedAt.Format(time.RFC3339),
		User: UserInfo{
			ID:        c.User.ID,
			Username:  c.User.Username,
			AvatarURL: c.User.AvatarURL,
		},
	}

	if c.EditedAt != nil {
		s := c.EditedAt.Format(time.RFC3339)
		resp.EditedAt = &s
	}
	if c.ResolvedAt != nil {
		s := c.ResolvedAt.Format(time.RFC3339)
		resp.ResolvedAt = &s
		resp.ResolvedBy = c.ResolvedBy
	}

	return resp
}
