package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/collabroom/collabroom/internal/database"
	"github.com/collabroom/collabroom/internal/handlers/dto"
	"github.com/collabroom/collabroom/internal/middleware"
	"github.com/collabroom/collabroom/internal/models"
)

type GroupHandler struct {
	db *database.Database
}

func NewGroupHandler(db *database.Database) *GroupHandler {
	return &GroupHandler{db: db}
}

// CreateGroup creates a named group owned by the caller.
func (h *GroupHandler) CreateGroup(c *gin.Context) {
	userID := c.MustGet(middleware.UserIDKey).(uuid.UUID)

	var req struct {
		Name string `json:"name" binding:"required,min=2,max=100"`
	}

	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	group := &models.Group{
		Name:      req.Name,
		CreatedBy: userID,
		CreatedAt: time.Now(),
	}

	if err := h.db.CreateGroup(group); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "failed to create group"})
		return
	}

	if err := h.db.AddUserToGroup(userID.String(), group.ID.String()); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to add creator to group"})
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"id":         group.ID,
		"name":       group.Name,
		"created_by": group.CreatedBy,
		"created_at": group.CreatedAt,
	})
}

// GetGroup returns the group with its member list.
func (h *GroupHandler) GetGroup(c *gin.Context) {
	group, err := h.db.GetGroup(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "group not found"})
		return
	}

	members := make([]dto.UserInfo, len(group.Members))
	for i, member := range group.Members {
		members[i] = dto.UserInfo{
			ID:        member.ID,
			Username:  member.Username,
			AvatarURL: member.AvatarURL,
		}
	}

	c.JSON(http.StatusOK, gin.H{
		"id":         group.ID,
		"name":       group.Name,
		"created_by": group.CreatedBy,
		"members":    members,
	})
}

// AddMember adds a user to the group. Group creator only.
func (h *GroupHandler) AddMember(c *gin.Context) {
	userID := c.MustGet(middleware.UserIDKey).(uuid.UUID)

	group, err := h.db.GetGroup(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "group not found"})
		return
	}

	if group.CreatedBy != userID {
		c.JSON(http.StatusForbidden, gin.H{"error": "only group creator can add members"})
		return
	}

	var req struct {
		UserID string `json:"user_id" binding:"required,uuid"`
	}

	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if _, err := h.db.GetUser(req.UserID); err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "user not found"})
		return
	}

	if err := h.db.AddUserToGroup(req.UserID, group.ID.String()); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to add member"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "member added"})
}

// RemoveMember removes a user from the group. Group creator only.
func (h *GroupHandler) RemoveMember(c *gin.Context) {
	userID := c.MustGet(middleware.UserIDKey).(uuid.UUID)

	group, err := h.db.GetGroup(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "group not found"})
		return
	}

	if group.CreatedBy != userID {
		c.JSON(http.StatusForbidden, gin.H{"error": "only group creator can remove members"})
		return
	}

	memberID := c.Param("userID")
	if _, err := uuid.Parse(memberID); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid user id"})
		return
	}

	if err := h.db.RemoveUserFromGroup(memberID, group.ID.String()); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to remove member"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "member removed"})
}
