package database

import (
	"errors"
	"time"

	"github.com/collabroom/collabroom/internal/models"
	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// ApplyStorageWrite runs one last-write-wins storage write inside a
// transaction. The stored row is locked for the duration, so concurrent
// writers with the same version serialize and the second one loses.
// Returns the entry now stored and whether the write won.
func (d *Database) ApplyStorageWrite(roomID, userID uuid.UUID, w models.StorageWrite) (*models.StorageEntry, bool, error) {
	var entry *models.StorageEntry
	var accepted bool

	err := d.db.Transaction(func(tx *gorm.DB) error {
		var existing models.StorageEntry
		err := tx.
			Clauses(clause.Locking{Strength: "UPDATE"}).
			Where("room_id = ? AND key = ?", roomID, w.Key).
			First(&existing).Error

		var current *models.StorageEntry
		if err == nil {
			current = &existing
		} else if !errors.Is(err, gorm.ErrRecordNotFound) {
			return err
		}

		entry, accepted = models.ApplyStorageWrite(current, roomID, userID, w, time.Now())
		if !accepted {
			return nil
		}

		if current != nil {
			return tx.Save(entry).Error
		}

		// two writers can race to insert the same new key; the loser
		// gets the stored row back as a rejection
		res := tx.Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "room_id"}, {Name: "key"}},
			DoNothing: true,
		}).Create(entry)
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			accepted = false
			var stored models.StorageEntry
			if err := tx.
				Where("room_id = ? AND key = ?", roomID, w.Key).
				First(&stored).Error; err != nil {
				return err
			}
			entry = &stored
		}
		return nil
	})
	if err != nil {
		return nil, false, err
	}

	return entry, accepted, nil
}

func (d *Database) GetRoomStorage(roomID string) ([]models.StorageEntry, error) {
	var entries []models.StorageEntry
	err := d.db.
		Where("room_id = ?", roomID).
		Order("key ASC").
		Find(&entries).Error
	if err != nil {
		return nil, err
	}
	return entries, nil
}
