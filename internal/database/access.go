package database

import (
	"errors"
	"time"

	"github.com/collabroom/collabroom/internal/models"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// UpsertAccess creates or replaces the grant for one subject on a room.
func (d *Database) UpsertAccess(roomID uuid.UUID, subjectType string, subjectID uuid.UUID, level models.AccessLevel, grantedBy uuid.UUID) (*models.RoomAccess, error) {
	var access models.RoomAccess
	err := d.db.
		Where("room_id = ? AND subject_type = ? AND subject_id = ?", roomID, subjectType, subjectID).
		First(&access).Error

	if err == nil {
		access.Level = level
		access.GrantedBy = grantedBy
		access.GrantedAt = time.Now()
		if err := d.db.Save(&access).Error; err != nil {
			return nil, err
		}
		return &access, nil
	}

	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}

	access = models.RoomAccess{
		RoomID:      roomID,
		SubjectType: subjectType,
		SubjectID:   subjectID,
		Level:       level,
		GrantedBy:   grantedBy,
		GrantedAt:   time.Now(),
	}
	if err := d.db.Create(&access).Error; err != nil {
		return nil, err
	}
	return &access, nil
}

// RemoveAccess deletes a grant. Returns false when no grant existed, which
// callers treat as an idempotent success.
func (d *Database) RemoveAccess(roomID uuid.UUID, subjectType string, subjectID uuid.UUID) (bool, error) {
	res := d.db.
		Where("room_id = ? AND subject_type = ? AND subject_id = ?", roomID, subjectType, subjectID).
		Delete(&models.RoomAccess{})
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected > 0, nil
}

func (d *Database) ListRoomAccesses(roomID uuid.UUID) ([]models.RoomAccess, error) {
	var accesses []models.RoomAccess
	err := d.db.
		Where("room_id = ?", roomID).
		Order("granted_at ASC").
		Find(&accesses).Error
	if err != nil {
		return nil, err
	}
	return accesses, nil
}
