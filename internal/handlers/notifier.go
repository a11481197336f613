package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"log"
	"time"

	"github.com/collabroom/collabroom/internal/database"
	"github.com/collabroom/collabroom/internal/handlers/dto"
	"github.com/collabroom/collabroom/internal/models"
	"github.com/collabroom/collabroom/internal/websocket"
	"github.com/go-redis/redis/v8"
	"github.com/google/uuid"
)

var ErrUnknownNotificationType = errors.New("unknown notification type")

// Notifier persists inbox records, keeps the per-user unread counter in
// Redis, and pushes the record to the user's live connections.
type Notifier struct {
	db    *database.Database
	redis *redis.Client
	hub   *websocket.Hub
}

func NewNotifier(db *database.Database, rdb *redis.Client, hub *websocket.Hub) *Notifier {
	return &Notifier{db: db, redis: rdb, hub: hub}
}

func unreadKey(userID uuid.UUID) string {
	return "notif:unread:" + userID.String()
}

func (n *Notifier) Push(ctx context.Context, notification *models.Notification) error {
	if !models.ValidNotificationType(notification.Type) {
		return ErrUnknownNotificationType
	}

	notification.CreatedAt = time.Now()
	if err := n.db.SaveNotification(notification); err != nil {
		return err
	}

	if err := n.redis.Incr(ctx, unreadKey(notification.UserID)).Err(); err != nil {
		log.Printf("Failed to bump unread counter for %s: %v", notification.UserID, err)
	}

	resp := dto.NewNotificationResponse(notification)
	msg := websocket.Message{
		Type:      websocket.TypeNotification,
		RoomID:    notification.RoomID,
		UserID:    notification.UserID,
		Timestamp: time.Now(),
	}
	if data, err := json.Marshal(resp); err == nil {
		msg.Data = data
		if frame, err := json.Marshal(msg); err == nil {
			n.hub.SendToUser(notification.UserID, frame)
		}
	}

	return nil
}

// UnreadCount reads the Redis counter, falling back to the database and
// repairing the counter when the key is missing.
func (n *Notifier) UnreadCount(ctx context.Context, userID uuid.UUID) (int64, error) {
	count, err := n.redis.Get(ctx, unreadKey(userID)).Int64()
	if err == nil {
		return count, nil
	}
	if err != redis.Nil {
		log.Printf("Failed to read unread counter for %s: %v", userID, err)
	}

	count, err = n.db.CountUnreadNotifications(userID)
	if err != nil {
		return 0, err
	}

	n.redis.Set(ctx, unreadKey(userID), count, 0)

	return count, nil
}

func (n *Notifier) MarkRead(ctx context.Context, id string, userID uuid.UUID) (bool, error) {
	updated, err := n.db.MarkNotificationRead(id, userID)
	if err != nil {
		return false, err
	}
	if updated {
		n.redis.Decr(ctx, unreadKey(userID))
	}
	return updated, nil
}

func (n *Notifier) MarkAllRead(ctx context.Context, userID uuid.UUID) error {
	if err := n.db.MarkAllNotificationsRead(userID); err != nil {
		return err
	}
	n.redis.Del(ctx, unreadKey(userID))
	return nil
}
