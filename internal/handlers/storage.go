package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/collabroom/collabroom/internal/database"
	"github.com/collabroom/collabroom/internal/handlers/dto"
	"github.com/collabroom/collabroom/internal/middleware"
	"github.com/collabroom/collabroom/internal/models"
)

type StorageHandler struct {
	db *database.Database
}

func NewStorageHandler(db *database.Database) *StorageHandler {
	return &StorageHandler{db: db}
}

// GetRoomStorage returns a snapshot of the room's shared state, one entry
// per key with its current version.
func (h *StorageHandler) GetRoomStorage(c *gin.Context) {
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

	entries, err := h.db.GetRoomStorage(room.ID.String())
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to get storage"})
		return
	}

	result := make([]dto.StorageEntryResponse, len(entries))
	for i := range entries {
		result[i] = dto.NewStorageEntryResponse(&entries[i])
	}

	c.JSON(http.StatusOK, gin.H{"storage": result})
}
