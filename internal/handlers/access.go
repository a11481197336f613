package handlers

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/collabroom/collabroom/internal/handlers/dto"
	"github.com/collabroom/collabroom/internal/middleware"
	"github.com/collabroom/collabroom/internal/models"
	"github.com/collabroom/collabroom/internal/websocket"
)

// accessStore is the slice of the database the access handler touches.
type accessStore interface {
	groupLister
	GetRoom(id string) (*models.Room, error)
	GetUser(id string) (*models.User, error)
	GetGroup(id string) (*models.Group, error)
	UpsertAccess(roomID uuid.UUID, subjectType string, subjectID uuid.UUID, level models.AccessLevel, grantedBy uuid.UUID) (*models.RoomAccess, error)
	RemoveAccess(roomID uuid.UUID, subjectType string, subjectID uuid.UUID) (bool, error)
	ListRoomAccesses(roomID uuid.UUID) ([]models.RoomAccess, error)
	GetGroupMemberIDs(groupID uuid.UUID) ([]uuid.UUID, error)
}

type AccessHandler struct {
	db       accessStore
	hub      *websocket.Hub
	notifier *Notifier
}

func NewAccessHandler(db accessStore, hub *websocket.Hub, notifier *Notifier) *AccessHandler {
	return &AccessHandler{db: db, hub: hub, notifier: notifier}
}

// requireWrite loads the room and checks the caller holds room:write.
func (h *AccessHandler) requireWrite(c *gin.Context, userID uuid.UUID) *models.Room {
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
	if !level.AtLeast(models.AccessWrite) {
		c.JSON(http.StatusForbidden, gin.H{"error": "room:write required"})
		return nil
	}

	return room
}

// subjectUserIDs expands a grant subject to the users behind it.
func (h *AccessHandler) subjectUserIDs(subjectType string, subjectID uuid.UUID) []uuid.UUID {
	if subjectType == models.SubjectUser {
		return []uuid.UUID{subjectID}
	}
	ids, err := h.db.GetGroupMemberIDs(subjectID)
	if err != nil {
		return nil
	}
	return ids
}

// GrantAccess creates or replaces a permission tuple for a user or group.
func (h *AccessHandler) GrantAccess(c *gin.Context) {
	userID := c.MustGet(middleware.UserIDKey).(uuid.UUID)

	room := h.requireWrite(c, userID)
	if room == nil {
		return
	}

	var req dto.GrantAccessRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	level, ok := models.ParseAccessLevel(req.Level)
	if !ok {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid access level"})
		return
	}

	subjectID, err := uuid.Parse(req.SubjectID)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid subject id"})
		return
	}

	if req.SubjectType == models.SubjectUser && subjectID == room.CreatorID {
		c.JSON(http.StatusBadRequest, gin.H{"error": "creator access is implicit"})
		return
	}

	switch req.SubjectType {
	case models.SubjectUser:
		if _, err := h.db.GetUser(req.SubjectID); err != nil {
			c.JSON(http.StatusNotFound, gin.H{"error": "user not found"})
			return
		}
	case models.SubjectGroup:
		if _, err := h.db.GetGroup(req.SubjectID); err != nil {
			c.JSON(http.StatusNotFound, gin.H{"error": "group not found"})
			return
		}
	}

	access, err := h.db.UpsertAccess(room.ID, req.SubjectType, subjectID, level, userID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to grant access"})
		return
	}

	for _, uid := range h.subjectUserIDs(req.SubjectType, subjectID) {
		if uid == userID {
			continue
		}
		h.notifier.Push(context.Background(), &models.Notification{
			UserID:  uid,
			RoomID:  &room.ID,
			ActorID: &userID,
			Type:    models.NotifyAccessGranted,
			Body:    string(level),
		})
	}

	entry := dto.NewAccessEntry(access)
	h.hub.SendEvent(room.ID, userID, websocket.TypeAccessChanged, entry)

	c.JSON(http.StatusOK, entry)
}

// RevokeAccess removes a permission tuple. Revoking a grant that does not
// exist succeeds without effect.
func (h *AccessHandler) RevokeAccess(c *gin.Context) {
	userID := c.MustGet(middleware.UserIDKey).(uuid.UUID)

	room := h.requireWrite(c, userID)
	if room == nil {
		return
	}

	var req dto.RevokeAccessRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	subjectID, err := uuid.Parse(req.SubjectID)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid subject id"})
		return
	}

	if req.SubjectType == models.SubjectUser && subjectID == room.CreatorID {
		c.JSON(http.StatusBadRequest, gin.H{"error": "creator access cannot be revoked"})
		return
	}

	removed, err := h.db.RemoveAccess(room.ID, req.SubjectType, subjectID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to revoke access"})
		return
	}

	if removed {
		for _, uid := range h.subjectUserIDs(req.SubjectType, subjectID) {
			if uid == userID {
				continue
			}
			h.notifier.Push(context.Background(), &models.Notification{
				UserID:  uid,
				RoomID:  &room.ID,
				ActorID: &userID,
				Type:    models.NotifyAccessRevoked,
				Body:    room.Title,
			})
		}

		h.hub.SendEvent(room.ID, userID, websocket.TypeAccessChanged, gin.H{
			"revoked":      true,
			"subject_type": req.SubjectType,
			"subject_id":   subjectID,
		})
	}

	c.JSON(http.StatusOK, gin.H{"revoked": removed})
}

// ListAccesses returns every grant on the room.
func (h *AccessHandler) ListAccesses(c *gin.Context) {
	userID := c.MustGet(middleware.UserIDKey).(uuid.UUID)

	room, err := h.db.GetRoom(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "room not found"})
		return
	}

	level, err := resolveAccess(h.db, room, userID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to resolve access"})
		return
	}
	if !level.AtLeast(models.AccessRead) {
		c.JSON(http.StatusForbidden, gin.H{"error": "no access to this room"})
		return
	}

	accesses, err := h.db.ListRoomAccesses(room.ID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to list accesses"})
		return
	}

	entries := make([]dto.AccessEntry, len(accesses))
	for i := range accesses {
		entries[i] = dto.NewAccessEntry(&accesses[i])
	}

	c.JSON(http.StatusOK, gin.H{"accesses": entries})
}
