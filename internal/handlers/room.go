package handlers

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/collabroom/collabroom/internal/database"
	"github.com/collabroom/collabroom/internal/handlers/dto"
	"github.com/collabroom/collabroom/internal/middleware"
	"github.com/collabroom/collabroom/internal/models"
	"github.com/collabroom/collabroom/internal/websocket"
)

type RoomHandler struct {
	db       *database.Database
	hub      *websocket.Hub
	notifier *Notifier
}

func NewRoomHandler(db *database.Database, hub *websocket.Hub, notifier *Notifier) *RoomHandler {
	return &RoomHandler{db: db, hub: hub, notifier: notifier}
}

// CreateRoom creates a room owned by the caller.
func (h *RoomHandler) CreateRoom(c *gin.Context) {
	userID := c.MustGet(middleware.UserIDKey).(uuid.UUID)

	var req dto.CreateRoomRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	defaultAccess := models.AccessNone
	if req.DefaultAccess != "" {
		lvl, ok := models.ParseAccessLevel(req.DefaultAccess)
		if !ok {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid default access level"})
			return
		}
		defaultAccess = lvl
	}

	creator, err := h.db.GetUser(userID.String())
	if err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unknown user"})
		return
	}

	room := &models.Room{
		Title:         req.Title,
		CreatorID:     userID,
		CreatorEmail:  creator.Email,
		DefaultAccess: defaultAccess,
		CreatedAt:     time.Now(),
	}

	if err := h.db.CreateRoom(room); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to create room"})
		return
	}

	c.JSON(http.StatusCreated, dto.NewRoomResponse(room))
}

// GetRoom returns the room metadata to anyone who can at least read it.
func (h *RoomHandler) GetRoom(c *gin.Context) {
	userID := c.MustGet(middleware.UserIDKey).(uuid.UUID)
	roomID := c.Param("id")

	room, err := h.db.GetRoom(roomID)
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

	resp := gin.H{
		"room":         dto.NewRoomResponse(room),
		"my_access":    string(level),
		"online_users": h.hub.GetRoomUsers(room.ID),
	}

	c.JSON(http.StatusOK, resp)
}

// GetMyRooms lists rooms visible to the caller.
func (h *RoomHandler) GetMyRooms(c *gin.Context) {
	userID := c.MustGet(middleware.UserIDKey).(uuid.UUID)

	rooms, err := h.db.GetUserRooms(userID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to get rooms"})
		return
	}

	roomsResponse := make([]gin.H, len(rooms))
	for i := range rooms {
		roomsResponse[i] = gin.H{
			"room":         dto.NewRoomResponse(&rooms[i]),
			"online_count": len(h.hub.GetRoomUsers(rooms[i].ID)),
		}
	}

	c.JSON(http.StatusOK, gin.H{"rooms": roomsResponse})
}

// UpdateRoom updates room metadata. Requires room:write.
func (h *RoomHandler) UpdateRoom(c *gin.Context) {
	userID := c.MustGet(middleware.UserIDKey).(uuid.UUID)
	roomID := c.Param("id")

	room, err := h.db.GetRoom(roomID)
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "room not found"})
		return
	}

	level, err := resolveAccess(h.db, room, userID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to resolve access"})
		return
	}
	if !level.AtLeast(models.AccessWrite) {
		c.JSON(http.StatusForbidden, gin.H{"error": "room:write required"})
		return
	}

	var req dto.UpdateRoomRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if req.Title != nil && *req.Title != "" {
		room.Title = *req.Title
	}
	if req.DefaultAccess != nil {
		if *req.DefaultAccess == "" {
			room.DefaultAccess = models.AccessNone
		} else {
			lvl, ok := models.ParseAccessLevel(*req.DefaultAccess)
			if !ok {
				c.JSON(http.StatusBadRequest, gin.H{"error": "invalid default access level"})
				return
			}
			room.DefaultAccess = lvl
		}
	}

	if err := h.db.UpdateRoom(room); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to update room"})
		return
	}

	h.hub.SendEvent(room.ID, userID, websocket.TypeRoomUpdated, dto.NewRoomResponse(room))

	c.JSON(http.StatusOK, dto.NewRoomResponse(room))
}

// deleteRecipients expands the room's grants into the users to tell about
// the deletion: user subjects directly, group subjects through their
// members, deduplicated, the actor excluded.
func deleteRecipients(accesses []models.RoomAccess, actorID uuid.UUID, groupMembers func(uuid.UUID) ([]uuid.UUID, error)) []uuid.UUID {
	seen := map[uuid.UUID]bool{actorID: true}
	var recipients []uuid.UUID

	add := func(id uuid.UUID) {
		if !seen[id] {
			seen[id] = true
			recipients = append(recipients, id)
		}
	}

	for _, a := range accesses {
		switch a.SubjectType {
		case models.SubjectUser:
			add(a.SubjectID)
		case models.SubjectGroup:
			memberIDs, err := groupMembers(a.SubjectID)
			if err != nil {
				continue
			}
			for _, id := range memberIDs {
				add(id)
			}
		}
	}

	return recipients
}

// DeleteRoom removes the room with all of its scoped data, notifies the
// granted users and kicks live connections. Creator only.
func (h *RoomHandler) DeleteRoom(c *gin.Context) {
	userID := c.MustGet(middleware.UserIDKey).(uuid.UUID)
	roomID := c.Param("id")

	room, err := h.db.GetRoom(roomID)
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "room not found"})
		return
	}

	if room.CreatorID != userID {
		c.JSON(http.StatusForbidden, gin.H{"error": "only room creator can delete room"})
		return
	}

	if err := h.db.DeleteRoom(roomID); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to delete room"})
		return
	}

	h.hub.DisconnectRoom(room.ID)

	for _, recipientID := range deleteRecipients(room.Accesses, userID, h.db.GetGroupMemberIDs) {
		h.notifier.Push(context.Background(), &models.Notification{
			UserID:  recipientID,
			ActorID: &userID,
			Type:    models.NotifyRoomDeleted,
			Body:    room.Title,
		})
	}

	c.JSON(http.StatusOK, gin.H{"message": "room deleted successfully"})
}
