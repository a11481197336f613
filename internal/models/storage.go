package models

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

// StorageEntry is one key of a room's shared document state. Values are
// opaque JSON; concurrent writers are ordered by Version, last write wins.
type StorageEntry struct {
	RoomID    uuid.UUID       `gorm:"type:uuid;primaryKey"`
	Key       string          `gorm:"primaryKey"`
	Value     json.RawMessage `gorm:"type:jsonb"`
	Version   int64           `gorm:"not null"`
	UpdatedBy uuid.UUID
	UpdatedAt time.Time
}

// StorageWrite is an incoming write for one key. Version must be greater
// than the stored version for the write to take effect.
type StorageWrite struct {
	Key     string          `json:"key"`
	Value   json.RawMessage `json:"value"`
	Version int64           `json:"version"`
}

// ApplyStorageWrite merges an incoming write into the existing entry.
// existing may be nil when the key is new. Returns the entry to persist and
// whether the write won; a stale write returns the existing entry unchanged.
func ApplyStorageWrite(existing *StorageEntry, roomID uuid.UUID, userID uuid.UUID, w StorageWrite, now time.Time) (*StorageEntry, bool) {
	if existing == nil {
		if w.Version < 1 {
			return nil, false
		}
		return &StorageEntry{
			RoomID:    roomID,
			Key:       w.Key,
			Value:     w.Value,
			Version:   w.Version,
			UpdatedBy: userID,
			UpdatedAt: now,
		}, true
	}

	if w.Version <= existing.Version {
		return existing, false
	}

	existing.Value = w.Value
	existing.Version = w.Version
	existing.UpdatedBy = userID
	existing.UpdatedAt = now
	return existing, true
}
