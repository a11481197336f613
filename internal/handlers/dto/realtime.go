package dto

import (
	"encoding/json"
	"time"

	"github.com/collabroom/collabroom/internal/models"
	"github.com/google/uuid"
)

// PresencePayload is the ephemeral per-connection state clients publish.
// Cursor and Selection are opaque to the server.
type PresencePayload struct {
	Cursor    json.RawMessage `json:"cursor,omitempty"`
	Selection json.RawMessage `json:"selection,omitempty"`
}

type StorageEntryResponse struct {
	Key       string          `json:"key"`
	Value     json.RawMessage `json:"value"`
	Version   int64           `json:"version"`
	UpdatedBy uuid.UUID       `json:"updated_by"`
	UpdatedAt string          `json:"updated_at"`
}

func NewStorageEntryResponse(e *models.StorageEntry) StorageEntryResponse {
	return StorageEntryResponse{
		Key:       e.Key,
		Value:     e.Value,
		Version:   e.Version,
		UpdatedBy: e.UpdatedBy,
		UpdatedAt: e.UpdatedAt.Format(time.RFC3339),
	}
}
