package database

import (
	"github.com/collabroom/collabroom/internal/models"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

func (d *Database) CreateRoom(room *models.Room) error {
	return d.db.Create(room).Error
}

func (d *Database) GetRoom(id string) (*models.Room, error) {
	var room models.Room
	if err := d.db.Preload("Accesses").First(&room, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &room, nil
}

// GetUserRooms lists rooms the user can see: created by them, granted to
// them directly, or granted to one of their groups.
func (d *Database) GetUserRooms(userID uuid.UUID) ([]models.Room, error) {
	groupIDs, err := d.GetUserGroupIDs(userID)
	if err != nil {
		return nil, err
	}

	var rooms []models.Room
	q := d.db.
		Distinct("rooms.*").
		Joins("LEFT JOIN room_accesses ra ON ra.room_id = rooms.id")

	if len(groupIDs) > 0 {
		q = q.Where(
			"rooms.creator_id = ? OR (ra.subject_type = 'user' AND ra.subject_id = ?) OR (ra.subject_type = 'group' AND ra.subject_id IN ?)",
			userID, userID, groupIDs,
		)
	} else {
		q = q.Where(
			"rooms.creator_id = ? OR (ra.subject_type = 'user' AND ra.subject_id = ?)",
			userID, userID,
		)
	}

	if err := q.Order("rooms.created_at DESC").Find(&rooms).Error; err != nil {
		return nil, err
	}

	for i := range rooms {
		if err := d.db.Model(&rooms[i]).Association("Accesses").Find(&rooms[i].Accesses); err != nil {
			return nil, err
		}
	}

	return rooms, nil
}

func (d *Database) UpdateRoom(room *models.Room) error {
	return d.db.Save(room).Error
}

// DeleteRoom removes the room and everything scoped to it: accesses,
// comments, storage entries and room-bound notifications.
func (d *Database) DeleteRoom(id string) error {
	return d.db.Transaction(func(tx *gorm.DB) error {
		var room models.Room
		if err := tx.First(&room, "id = ?", id).Error; err != nil {
			return err
		}

		if err := tx.Delete(&models.Comment{}, "room_id = ?", id).Error; err != nil {
			return err
		}

		if err := tx.Delete(&models.RoomAccess{}, "room_id = ?", id).Error; err != nil {
			return err
		}

		if err := tx.Delete(&models.StorageEntry{}, "room_id = ?", id).Error; err != nil {
			return err
		}

		if err := tx.Delete(&models.Notification{}, "room_id = ?", id).Error; err != nil {
			return err
		}

		return tx.Delete(&room).Error
	})
}
