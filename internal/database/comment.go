package database

import (
	"time"

	"github.com/collabroom/collabroom/internal/models"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

func (d *Database) SaveComment(comment *models.Comment) error {
	return d.db.Create(comment).Error
}

func (d *Database) GetComment(id string) (*models.Comment, error) {
	var comment models.Comment
	if err := d.db.Preload("User").First(&comment, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &comment, nil
}

func (d *Database) UpdateComment(comment *models.Comment) error {
	return d.db.Save(comment).Error
}

// DeleteComment removes a comment and, for thread roots, its replies.
func (d *Database) DeleteComment(id string) error {
	return d.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Delete(&models.Comment{}, "parent_id = ?", id).Error; err != nil {
			return err
		}
		return tx.Delete(&models.Comment{}, "id = ?", id).Error
	})
}

func (d *Database) ListRoomComments(roomID string, limit int) ([]models.Comment, error) {
	var comments []models.Comment
	err := d.db.
		Where("room_id = ?", roomID).
		Order("created_at ASC").
		Limit(limit).
		Preload("User").
		Find(&comments).Error
	if err != nil {
		return nil, err
	}
	return comments, nil
}

// SetThreadResolved marks a thread root resolved or unresolved. Repeated
// calls with the same state are no-ops.
func (d *Database) SetThreadResolved(id string, by uuid.UUID, resolved bool) (*models.Comment, error) {
	var comment models.Comment
	if err := d.db.First(&comment, "id = ?", id).Error; err != nil {
		return nil, err
	}

	if resolved && comment.ResolvedAt == nil {
		now := time.Now()
		comment.ResolvedAt = &now
		comment.ResolvedBy = &by
		if err := d.db.Save(&comment).Error; err != nil {
			return nil, err
		}
	} else if !resolved && comment.ResolvedAt != nil {
		comment.ResolvedAt = nil
		comment.ResolvedBy = nil
		if err := d.db.Save(&comment).Error; err != nil {
			return nil, err
		}
	}

	return &comment, nil
}
