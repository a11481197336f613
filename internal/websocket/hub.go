package websocket

import (
	"context"
	"encoding/json"
	"log"
	"sync"
	"time"

	"github.com/google/uuid"
)

// MessageType tags every frame on the realtime connection.
type MessageType string

const (
	TypePing MessageType = "ping"
	TypePong MessageType = "pong"

	TypeRoomJoin  MessageType = "room_join"
	TypeRoomLeave MessageType = "room_leave"
	TypeRoomUsers MessageType = "room_users"

	TypePresenceUpdate MessageType = "presence_update"
	TypeUserOnline     MessageType = "user_online"
	TypeUserOffline    MessageType = "user_offline"

	TypeStorageUpdate   MessageType = "storage_update"
	TypeStorageRejected MessageType = "storage_rejected"

	TypeCommentCreated  MessageType = "comment_created"
	TypeCommentEdited   MessageType = "comment_edited"
	TypeCommentDeleted  MessageType = "comment_deleted"
	TypeCommentResolved MessageType = "comment_resolved"

	TypeAccessChanged MessageType = "access_changed"
	TypeRoomUpdated   MessageType = "room_updated"
	TypeRoomDeleted   MessageType = "room_deleted"
	TypeNotification  MessageType = "notification"

	TypeError MessageType = "error"
)

type Message struct {
	Type      MessageType     `json:"type"`
	RoomID    *uuid.UUID      `json:"room_id,omitempty"`
	UserID    uuid.UUID       `json:"user_id"`
	Data      json.RawMessage `json:"data,omitempty"`
	Timestamp time.Time       `json:"timestamp"`
}

// RoomUser is one room member's connection state as sent in room_users frames.
type RoomUser struct {
	UserID   uuid.UUID       `json:"user_id"`
	Presence json.RawMessage `json:"presence,omitempty"`
}

type Hub struct {
	clients map[uuid.UUID]*Client

	// one user may hold several connections
	userClients map[uuid.UUID]map[uuid.UUID]*Client

	rooms map[uuid.UUID]map[uuid.UUID]*Client

	register   chan *Client
	unregister chan *Client

	mu sync.RWMutex

	ctx    context.Context
	cancel context.CancelFunc
}

func NewHub() *Hub {
	ctx, cancel := context.WithCancel(context.Background())
	return &Hub{
		clients:     make(map[uuid.UUID]*Client),
		userClients: make(map[uuid.UUID]map[uuid.UUID]*Client),
		rooms:       make(map[uuid.UUID]map[uuid.UUID]*Client),
		register:    make(chan *Client),
		unregister:  make(chan *Client),
		ctx:         ctx,
		cancel:      cancel,
	}
}

func (h *Hub) Run() {
	ticker := time.NewTicker(30 * time.Second)
	defer ticker.Stop()

	for {
		select {
		case <-h.ctx.Done():
			return

		case client := <-h.register:
			h.registerClient(client)

		case client := <-h.unregister:
			h.unregisterClient(client)

		case <-ticker.C:
			h.ping()
		}
	}
}

func (h *Hub) Stop() {
	h.cancel()

	h.mu.Lock()
	defer h.mu.Unlock()

	for _, client := range h.clients {
		close(client.Send)
		client.Conn.Close()
	}
	h.clients = make(map[uuid.UUID]*Client)
	h.userClients = make(map[uuid.UUID]map[uuid.UUID]*Client)
	h.rooms = make(map[uuid.UUID]map[uuid.UUID]*Client)
}

func (h *Hub) Register(client *Client) {
	h.register <- client
}

func (h *Hub) Unregister(client *Client) {
	h.unregister <- client
}

func (h *Hub) registerClient(client *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()

	h.clients[client.ID] = client

	if _, ok := h.userClients[client.UserID]; !ok {
		h.userClients[client.UserID] = make(map[uuid.UUID]*Client)
	}
	h.userClients[client.UserID][client.ID] = client

	log.Printf("Client registered: %s (User: %s)", client.ID, client.UserID)
}

func (h *Hub) unregisterClient(client *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if _, ok := h.clients[client.ID]; ok {
		for roomID := range client.Rooms {
			h.removeFromRoomUnsafe(client, roomID)
		}

		if userClients, ok := h.userClients[client.UserID]; ok {
			delete(userClients, client.ID)
			if len(userClients) == 0 {
				delete(h.userClients, client.UserID)
			}
		}

		delete(h.clients, client.ID)
		close(client.Send)

		log.Printf("Client unregistered: %s (User: %s)", client.ID, client.UserID)
	}
}

// JoinRoom adds the client to the room, tells the others, and sends the
// current member list with presence to the new client.
func (h *Hub) JoinRoom(client *Client, roomID uuid.UUID) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if _, ok := h.rooms[roomID]; !ok {
		h.rooms[roomID] = make(map[uuid.UUID]*Client)
	}

	h.rooms[roomID][client.ID] = client
	client.mu.Lock()
	client.Rooms[roomID] = true
	client.mu.Unlock()

	joinMsg := Message{
		Type:      TypeUserOnline,
		RoomID:    &roomID,
		UserID:    client.UserID,
		Timestamp: time.Now(),
	}

	if data, err := json.Marshal(joinMsg); err == nil {
		h.broadcastToRoomExcept(roomID, data, client.ID)
	}

	h.sendRoomUsers(client, roomID)
}

func (h *Hub) LeaveRoom(client *Client, roomID uuid.UUID) {
	h.mu.Lock()
	defer h.mu.Unlock()

	h.removeFromRoomUnsafe(client, roomID)
}

// DisconnectRoom kicks every connection out of the room after telling them
// why. Used when the room itself is deleted.
func (h *Hub) DisconnectRoom(roomID uuid.UUID) {
	h.mu.Lock()
	defer h.mu.Unlock()

	room, ok := h.rooms[roomID]
	if !ok {
		return
	}

	msg := Message{
		Type:      TypeRoomDeleted,
		RoomID:    &roomID,
		Timestamp: time.Now(),
	}
	data, err := json.Marshal(msg)

	for _, client := range room {
		if err == nil {
			select {
			case client.Send <- data:
			default:
			}
		}
		client.mu.Lock()
		delete(client.Rooms, roomID)
		client.mu.Unlock()
	}

	delete(h.rooms, roomID)
}

func (h *Hub) removeFromRoomUnsafe(client *Client, roomID uuid.UUID) {
	if room, ok := h.rooms[roomID]; ok {
		if _, ok := room[client.ID]; ok {
			delete(room, client.ID)
			client.mu.Lock()
			delete(client.Rooms, roomID)
			client.Presence = nil
			client.mu.Unlock()

			if len(room) == 0 {
				delete(h.rooms, roomID)
			} else {
				leaveMsg := Message{
					Type:      TypeUserOffline,
					RoomID:    &roomID,
					UserID:    client.UserID,
					Timestamp: time.Now(),
				}

				if data, err := json.Marshal(leaveMsg); err == nil {
					h.broadcastToRoomExcept(roomID, data, client.ID)
				}
			}
		}
	}
}

// SetPresence stores the client's ephemeral state and fans it out to the
// rest of the room.
func (h *Hub) SetPresence(client *Client, roomID uuid.UUID, presence json.RawMessage) {
	client.mu.Lock()
	client.Presence = presence
	client.mu.Unlock()

	msg := Message{
		Type:      TypePresenceUpdate,
		RoomID:    &roomID,
		UserID:    client.UserID,
		Data:      presence,
		Timestamp: time.Now(),
	}

	h.mu.RLock()
	defer h.mu.RUnlock()

	if data, err := json.Marshal(msg); err == nil {
		h.broadcastToRoomExcept(roomID, data, client.ID)
	}
}

func (h *Hub) SendToUser(userID uuid.UUID, message []byte) {
	h.mu.RLock()
	defer h.mu.RUnlock()

	if clients, ok := h.userClients[userID]; ok {
		for _, client := range clients {
			select {
			case client.Send <- message:
			default:
				log.Printf("Client %s send channel full", client.ID)
			}
		}
	}
}

func (h *Hub) SendToRoom(roomID uuid.UUID, message []byte) {
	h.mu.RLock()
	defer h.mu.RUnlock()

	h.broadcastToRoomExcept(roomID, message, uuid.Nil)
}

// SendEvent marshals a typed frame and fans it out to the room.
func (h *Hub) SendEvent(roomID uuid.UUID, actorID uuid.UUID, msgType MessageType, payload interface{}) {
	msg := Message{
		Type:      msgType,
		RoomID:    &roomID,
		UserID:    actorID,
		Timestamp: time.Now(),
	}

	if payload != nil {
		data, err := json.Marshal(payload)
		if err != nil {
			log.Printf("Failed to marshal %s event: %v", msgType, err)
			return
		}
		msg.Data = data
	}

	if data, err := json.Marshal(msg); err == nil {
		h.SendToRoom(roomID, data)
	}
}

func (h *Hub) broadcastToRoomExcept(roomID uuid.UUID, message []byte, excludeID uuid.UUID) {
	if room, ok := h.rooms[roomID]; ok {
		for _, client := range room {
			if client.ID != excludeID {
				select {
				case client.Send <- message:
				default:
					log.Printf("Client %s send channel full", client.ID)
				}
			}
		}
	}
}

func (h *Hub) sendRoomUsers(client *Client, roomID uuid.UUID) {
	users := make([]RoomUser, 0)

	if room, ok := h.rooms[roomID]; ok {
		seen := make(map[uuid.UUID]bool)
		for _, c := range room {
			if seen[c.UserID] {
				continue
			}
			seen[c.UserID] = true

			c.mu.RLock()
			presence := c.Presence
			c.mu.RUnlock()

			users = append(users, RoomUser{UserID: c.UserID, Presence: presence})
		}
	}

	msg := Message{
		Type:      TypeRoomUsers,
		RoomID:    &roomID,
		UserID:    client.UserID,
		Timestamp: time.Now(),
	}

	if data, err := json.Marshal(users); err == nil {
		msg.Data = data
		if msgData, err := json.Marshal(msg); err == nil {
			select {
			case client.Send <- msgData:
			default:
				log.Printf("Failed to send room users to client %s", client.ID)
			}
		}
	}
}

func (h *Hub) ping() {
	h.mu.RLock()
	defer h.mu.RUnlock()

	msg := Message{
		Type:      TypePing,
		Timestamp: time.Now(),
	}

	if data, err := json.Marshal(msg); err == nil {
		for _, client := range h.clients {
			select {
			case client.Send <- data:
			default:
			}
		}
	}
}

func (h *Hub) GetOnlineUsers() []uuid.UUID {
	h.mu.RLock()
	defer h.mu.RUnlock()

	users := make([]uuid.UUID, 0, len(h.userClients))
	for userID := range h.userClients {
		users = append(users, userID)
	}
	return users
}

func (h *Hub) GetRoomUsers(roomID uuid.UUID) []uuid.UUID {
	h.mu.RLock()
	defer h.mu.RUnlock()

	userMap := make(map[uuid.UUID]bool)
	if room, ok := h.rooms[roomID]; ok {
		for _, client := range room {
			userMap[client.UserID] = true
		}
	}

	users := make([]uuid.UUID, 0, len(userMap))
	for userID := range userMap {
		users = append(users, userID)
	}
	return users
}
