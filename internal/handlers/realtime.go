package handlers

import (
	"encoding/json"
	"log"

	"github.com/collabroom/collabroom/internal/database"
	"github.com/collabroom/collabroom/internal/handlers/dto"
	"github.com/collabroom/collabroom/internal/models"
	"github.com/collabroom/collabroom/internal/websocket"
)

// RealtimeHandler processes frames from websocket clients: room joins with
// access checks, presence updates and storage writes.
type RealtimeHandler struct {
	db  *database.Database
	hub *websocket.Hub
}

func NewRealtimeHandler(db *database.Database, hub *websocket.Hub) *RealtimeHandler {
	return &RealtimeHandler{db: db, hub: hub}
}

func (h *RealtimeHandler) HandleMessage(client *websocket.Client, msg *websocket.Message) error {
	switch msg.Type {
	case websocket.TypeRoomJoin:
		return h.handleRoomJoin(client, msg)

	case websocket.TypeRoomLeave:
		if msg.RoomID != nil {
			h.hub.LeaveRoom(client, *msg.RoomID)
		}
		return nil

	case websocket.TypePresenceUpdate:
		return h.handlePresenceUpdate(client, msg)

	case websocket.TypeStorageUpdate:
		return h.handleStorageUpdate(client, msg)

	default:
		log.Printf("Unknown message type: %s", msg.Type)
		return nil
	}
}

// handleRoomJoin admits the client after checking it can at least read
// the room.
func (h *RealtimeHandler) handleRoomJoin(client *websocket.Client, msg *websocket.Message) error {
	if msg.RoomID == nil {
		return websocket.ErrInvalidMessage
	}

	room, err := h.db.GetRoom(msg.RoomID.String())
	if err != nil {
		return websocket.ErrRoomNotFound
	}

	level, err := resolveAccess(h.db, room, client.UserID)
	if err != nil {
		return err
	}
	if !level.AtLeast(models.AccessRead) {
		return websocket.ErrAccessDenied
	}

	h.hub.JoinRoom(client, room.ID)

	go h.db.UpdateLastSeen(client.UserID.String())

	return nil
}

// handlePresenceUpdate stores and fans out ephemeral state. The client must
// have joined the room first.
func (h *RealtimeHandler) handlePresenceUpdate(client *websocket.Client, msg *websocket.Message) error {
	if msg.RoomID == nil {
		return websocket.ErrInvalidMessage
	}

	if !client.IsInRoom(*msg.RoomID) {
		return websocket.ErrNotJoined
	}

	var payload dto.PresencePayload
	if len(msg.Data) > 0 {
		if err := json.Unmarshal(msg.Data, &payload); err != nil {
			return websocket.ErrInvalidMessage
		}
	}

	h.hub.SetPresence(client, *msg.RoomID, msg.Data)

	return nil
}

// handleStorageUpdate applies a last-write-wins storage write and
// broadcasts the accepted entry. Stale writes get the stored entry back in
// a storage_rejected frame instead.
func (h *RealtimeHandler) handleStorageUpdate(client *websocket.Client, msg *websocket.Message) error {
	if msg.RoomID == nil {
		return websocket.ErrInvalidMessage
	}

	if !client.IsInRoom(*msg.RoomID) {
		return websocket.ErrNotJoined
	}

	room, err := h.db.GetRoom(msg.RoomID.String())
	if err != nil {
		return websocket.ErrRoomNotFound
	}

	level, err := resolveAccess(h.db, room, client.UserID)
	if err != nil {
		return err
	}
	if !level.AtLeast(models.AccessWrite) {
		return websocket.ErrAccessDenied
	}

	var write models.StorageWrite
	if err := json.Unmarshal(msg.Data, &write); err != nil {
		return websocket.ErrInvalidMessage
	}
	if write.Key == "" {
		return websocket.ErrInvalidMessage
	}

	entry, accepted, err := h.db.ApplyStorageWrite(room.ID, client.UserID, write)
	if err != nil {
		log.Printf("Failed to apply storage write: %v", err)
		return err
	}

	if !accepted {
		return client.SendMessage(websocket.TypeStorageRejected, entry)
	}

	h.hub.SendEvent(room.ID, client.UserID, websocket.TypeStorageUpdate, entry)

	return nil
}
