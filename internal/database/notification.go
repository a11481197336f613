package database

import (
	"time"

	"github.com/collabroom/collabroom/internal/models"
	"github.com/google/uuid"
)

func (d *Database) SaveNotification(n *models.Notification) error {
	return d.db.Create(n).Error
}

func (d *Database) ListNotifications(userID uuid.UUID, limit int, unreadOnly bool) ([]models.Notification, error) {
	var notifications []models.Notification

	q := d.db.Where("user_id = ?", userID)
	if unreadOnly {
		q = q.Where("read_at IS NULL")
	}

	err := q.
		Order("created_at DESC").
		Limit(limit).
		Find(&notifications).Error
	if err != nil {
		return nil, err
	}
	return notifications, nil
}

// MarkNotificationRead sets read_at on one of the user's notifications.
// Returns false when it was already read or does not belong to the user.
func (d *Database) MarkNotificationRead(id string, userID uuid.UUID) (bool, error) {
	res := d.db.
		Model(&models.Notification{}).
		Where("id = ? AND user_id = ? AND read_at IS NULL", id, userID).
		Update("read_at", time.Now())
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected > 0, nil
}

func (d *Database) MarkAllNotificationsRead(userID uuid.UUID) error {
	return d.db.
		Model(&models.Notification{}).
		Where("user_id = ? AND read_at IS NULL", userID).
		Update("read_at", time.Now()).Error
}

func (d *Database) CountUnreadNotifications(userID uuid.UUID) (int64, error) {
	var count int64
	err := d.db.
		Model(&models.Notification{}).
		Where("user_id = ? AND read_at IS NULL", userID).
		Count(&count).Error
	return count, err
}
