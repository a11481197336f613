package handlers

import (
	"context"
	"net/http"
	"regexp"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/collabroom/collabroom/internal/handlers/dto"
	"github.com/collabroom/collabroom/internal/middleware"
	"github.com/collabroom/collabroom/internal/models"
	"github.com/collabroom/collabroom/internal/websocket"
)

var mentionPattern = regexp.MustCompile(`@([A-Za-z0-9_.-]+)`)

// ExtractMentions pulls @username tokens out of a comment body, first
// occurrence order, no duplicates.
func ExtractMentions(body string) []string {
	matches := mentionPattern.FindAllStringSubmatch(body, -1)
	seen := make(map[string]bool, len(matches))
	mentions := make([]string, 0, len(matches))
	for _, m := range matches {
		if !seen[m[1]] {
			seen[m[1]] = true
			mentions = append(mentions, m[1])
		}
	}
	return mentions
}

// commentStore is the slice of the database the comment handler touches.
type commentStore interface {
	groupLister
	GetRoom(id string) (*models.Room, error)
	GetComment(id string) (*models.Comment, error)
	SaveComment(comment *models.Comment) error
	UpdateComment(comment *models.Comment) error
	DeleteComment(id string) error
	ListRoomComments(roomID string, limit int) ([]models.Comment, error)
	SetThreadResolved(id string, by uuid.UUID, resolved bool) (*models.Comment, error)
	FindUserByUsername(username string) (*models.User, error)
}

type CommentHandler struct {
	db       commentStore
	hub      *websocket.Hub
	notifier *Notifier
}

func NewCommentHandler(db commentStore, hub *websocket.Hub, notifier *Notifier) *CommentHandler {
	return &CommentHandler{db: db, hub: hub, notifier: notifier}
}

// loadRoomWithLevel loads the room from the :id param and resolves the
// caller's level, writing the error response itself on failure.
func (h *CommentHandler) loadRoomWithLevel(c *gin.Context, userID uuid.UUID, want models.AccessLevel) *models.Room {
	room, err := h.db.GetRoom(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "room not found"})
		return nil
	}

	level, err := resolveAccess(h.db, room, userID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to resolve access"})
		return nil
	}
	if !level.AtLeast(want) {
		c.JSON(http.StatusForbidden, gin.H{"error": "insufficient room access"})
		return nil
	}

	return room
}

// PostComment adds a comment or a threaded reply. Requires room:comment.
func (h *CommentHandler) PostComment(c *gin.Context) {
	userID := c.MustGet(middleware.UserIDKey).(uuid.UUID)

	room := h.loadRoomWithLevel(c, userID, models.AccessComment)
	if room == nil {
		return
	}

	var req dto.PostCommentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	var parentID *uuid.UUID
	if req.ParentID != "" {
		parent, err := h.db.GetComment(req.ParentID)
		if err != nil {
			c.JSON(http.StatusNotFound, gin.H{"error": "parent comment not found"})
			return
		}
		if parent.RoomID != room.ID {
			c.JSON(http.StatusBadRequest, gin.H{"error": "parent comment belongs to another room"})
			return
		}

		// replies always attach to the thread root
		rootID := parent.ID
		if parent.ParentID != nil {
			rootID = *parent.ParentID
		}
		parentID = &rootID
	}

	comment := &models.Comment{
		RoomID:    room.ID,
		UserID:    userID,
		ParentID:  parentID,
		Body:      req.Body,
		CreatedAt: time.Now(),
	}

	if err := h.db.SaveComment(comment); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to save comment"})
		return
	}

	full, err := h.db.GetComment(comment.ID.String())
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to load comment"})
		return
	}

	h.notifyMentions(room, full)

	resp := dto.NewCommentResponse(full)
	h.hub.SendEvent(room.ID, userID, websocket.TypeCommentCreated, resp)

	if room.CreatorID != userID {
		h.notifier.Push(context.Background(), &models.Notification{
			UserID:  room.CreatorID,
			RoomID:  &room.ID,
			ActorID: &userID,
			Type:    models.NotifyComment,
			Body:    req.Body,
		})
	}

	c.JSON(http.StatusCreated, resp)
}

// mentionTargets resolves a comment's @mentions to the user ids that get a
// notification. The author is skipped, and so is anyone who cannot at least
// read the room.
func mentionTargets(db commentStore, room *models.Room, comment *models.Comment) []uuid.UUID {
	var targets []uuid.UUID
	for _, username := range ExtractMentions(comment.Body) {
		mentioned, err := db.FindUserByUsername(username)
		if err != nil {
			continue
		}
		if mentioned.ID == comment.UserID {
			continue
		}

		level, err := resolveAccess(db, room, mentioned.ID)
		if err != nil || !level.AtLeast(models.AccessRead) {
			continue
		}

		targets = append(targets, mentioned.ID)
	}
	return targets
}

func (h *CommentHandler) notifyMentions(room *models.Room, comment *models.Comment) {
	for _, userID := range mentionTargets(h.db, room, comment) {
		h.notifier.Push(context.Background(), &models.Notification{
			UserID:  userID,
			RoomID:  &room.ID,
			ActorID: &comment.UserID,
			Type:    models.NotifyMention,
			Body:    comment.Body,
		})
	}
}

// GetRoomComments lists the room's comments oldest first.
func (h *CommentHandler) GetRoomComments(c *gin.Context) {
	userID := c.MustGet(middleware.UserIDKey).(uuid.UUID)

	room := h.loadRoomWithLevel(c, userID, models.AccessRead)
	if room == nil {
		return
	}

	comments, err := h.db.ListRoomComments(room.ID.String(), 500)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to get comments"})
		return
	}

	result := make([]dto.CommentResponse, len(comments))
	for i := range comments {
		result[i] = dto.NewCommentResponse(&comments[i])
	}

	c.JSON(http.StatusOK, gin.H{"comments": result})
}

// EditComment updates the body. Author only.
func (h *CommentHandler) EditComment(c *gin.Context) {
	userID := c.MustGet(middleware.UserIDKey).(uuid.UUID)

	comment, err := h.db.GetComment(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "comment not found"})
		return
	}

	if comment.UserID != userID {
		c.JSON(http.StatusForbidden, gin.H{"error": "you can only edit your own comments"})
		return
	}

	var req dto.EditCommentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	now := time.Now()
	comment.Body = req.Body
	comment.EditedAt = &now

	if err := h.db.UpdateComment(comment); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to update comment"})
		return
	}

	resp := dto.NewCommentResponse(comment)
	h.hub.SendEvent(comment.RoomID, userID, websocket.TypeCommentEdited, resp)

	c.JSON(http.StatusOK, resp)
}

// DeleteComment removes a comment (and its replies when it is a root).
// Author only.
func (h *CommentHandler) DeleteComment(c *gin.Context) {
	userID := c.MustGet(middleware.UserIDKey).(uuid.UUID)

	comment, err := h.db.GetComment(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "comment not found"})
		return
	}

	if comment.UserID != userID {
		c.JSON(http.StatusForbidden, gin.H{"error": "you can only delete your own comments"})
		return
	}

	if err := h.db.DeleteComment(comment.ID.String()); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to delete comment"})
		return
	}

	h.hub.SendEvent(comment.RoomID, userID, websocket.TypeCommentDeleted, gin.H{
		"comment_id": comment.ID,
	})

	c.JSON(http.StatusOK, gin.H{"message": "comment deleted successfully"})
}

// SetResolved resolves or unresolves a thread root. Thread author or
// room:write. Repeating the current state is a no-op.
func (h *CommentHandler) SetResolved(resolved bool) gin.HandlerFunc {
	return func(c *gin.Context) {
		userID := c.MustGet(middleware.UserIDKey).(uuid.UUID)

		comment, err := h.db.GetComment(c.Param("id"))
		if err != nil {
			c.JSON(http.StatusNotFound, gin.H{"error": "comment not found"})
			return
		}

		if comment.ParentID != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "only thread roots can be resolved"})
			return
		}

		room, err := h.db.GetRoom(comment.RoomID.String())
		if err != nil {
			c.JSON(http.StatusNotFound, gin.H{"error": "room not found"})
			return
		}

		if comment.UserID != userID {
			level, err := resolveAccess(h.db, room, userID)
			if err != nil || !level.AtLeast(models.AccessWrite) {
				c.JSON(http.StatusForbidden, gin.H{"error": "thread author or room:write required"})
				return
			}
		}

		// repeating the current state is a no-op, no write and no event
		if (comment.ResolvedAt != nil) == resolved {
			c.JSON(http.StatusOK, dto.NewCommentResponse(comment))
			return
		}

		updated, err := h.db.SetThreadResolved(comment.ID.String(), userID, resolved)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to update thread"})
			return
		}
		updated.User = comment.User

		resp := dto.NewCommentResponse(updated)
		h.hub.SendEvent(comment.RoomID, userID, websocket.TypeCommentResolved, resp)

		c.JSON(http.StatusOK, resp)
	}
}
