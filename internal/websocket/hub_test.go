package websocket

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
)

// testConn pairs a server-side hub client with the dialed peer connection.
type testConn struct {
	client *Client
	peer   *websocket.Conn
}

func newTestConn(t *testing.T, hub *Hub, userID uuid.UUID) *testConn {
	t.Helper()

	upgrader := websocket.Upgrader{}
	clientCh := make(chan *Client, 1)

	hub.mu.RLock()
	before := len(hub.userClients[userID])
	hub.mu.RUnlock()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			t.Errorf("upgrade: %v", err)
			return
		}
		client := NewClient(hub, conn, userID)
		hub.Register(client)
		go client.WritePump()
		go client.ReadPump(nil)
		clientCh <- client
	}))
	t.Cleanup(srv.Close)

	url := "ws" + strings.TrimPrefix(srv.URL, "http")
	peer, _, err := websocket.DefaultDialer.Dial(url, nil)
	if err != nil {
		t.Fatalf("dial: %v", err)
	}
	t.Cleanup(func() { peer.Close() })

	var client *Client
	select {
	case client = <-clientCh:
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for server-side client")
	}

	waitRegistered(t, hub, userID, before+1)

	return &testConn{client: client, peer: peer}
}

func waitRegistered(t *testing.T, hub *Hub, userID uuid.UUID, want int) {
	t.Helper()

	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		hub.mu.RLock()
		got := len(hub.userClients[userID])
		hub.mu.RUnlock()
		if got >= want {
			return
		}
		time.Sleep(5 * time.Millisecond)
	}
	t.Fatal("client was never registered with the hub")
}

func (tc *testConn) readFrame(t *testing.T) Message {
	t.Helper()

	tc.peer.SetReadDeadline(time.Now().Add(2 * time.Second))
	var msg Message
	if err := tc.peer.ReadJSON(&msg); err != nil {
		t.Fatalf("read frame: %v", err)
	}
	return msg
}

func TestJoinRoomSendsMemberList(t *testing.T) {
	hub := NewHub()
	go hub.Run()
	defer hub.Stop()

	roomID := uuid.New()
	alice := newTestConn(t, hub, uuid.New())

	hub.JoinRoom(alice.client, roomID)

	msg := alice.readFrame(t)
	if msg.Type != TypeRoomUsers {
		t.Fatalf("frame type = %q, want %q", msg.Type, TypeRoomUsers)
	}

	var users []RoomUser
	if err := json.Unmarshal(msg.Data, &users); err != nil {
		t.Fatalf("unmarshal room users: %v", err)
	}
	if len(users) != 1 || users[0].UserID != alice.client.UserID {
		t.Errorf("room users = %+v, want only alice", users)
	}
}

func TestJoinRoomNotifiesExistingMembers(t *testing.T) {
	hub := NewHub()
	go hub.Run()
	defer hub.Stop()

	roomID := uuid.New()
	alice := newTestConn(t, hub, uuid.New())
	bob := newTestConn(t, hub, uuid.New())

	hub.JoinRoom(alice.client, roomID)
	alice.readFrame(t) // her own room_users

	hub.JoinRoom(bob.client, roomID)

	msg := alice.readFrame(t)
	if msg.Type != TypeUserOnline {
		t.Fatalf("frame type = %q, want %q", msg.Type, TypeUserOnline)
	}
	if msg.UserID != bob.client.UserID {
		t.Errorf("user_id = %s, want bob", msg.UserID)
	}

	if got := len(hub.GetRoomUsers(roomID)); got != 2 {
		t.Errorf("room user count = %d, want 2", got)
	}
}

func TestPresenceBroadcastSkipsSender(t *testing.T) {
	hub := NewHub()
	go hub.Run()
	defer hub.Stop()

	roomID := uuid.New()
	alice := newTestConn(t, hub, uuid.New())
	bob := newTestConn(t, hub, uuid.New())

	hub.JoinRoom(alice.client, roomID)
	alice.readFrame(t)
	hub.JoinRoom(bob.client, roomID)
	alice.readFrame(t) // bob online
	bob.readFrame(t)   // bob's room_users

	presence := json.RawMessage(`{"cursor":{"x":10,"y":20}}`)
	hub.SetPresence(bob.client, roomID, presence)

	msg := alice.readFrame(t)
	if msg.Type != TypePresenceUpdate {
		t.Fatalf("frame type = %q, want %q", msg.Type, TypePresenceUpdate)
	}
	if msg.UserID != bob.client.UserID {
		t.Errorf("user_id = %s, want bob", msg.UserID)
	}
	if string(msg.Data) != string(presence) {
		t.Errorf("presence = %s, want %s", msg.Data, presence)
	}
}

func TestLateJoinerSeesStoredPresence(t *testing.T) {
	hub := NewHub()
	go hub.Run()
	defer hub.Stop()

	roomID := uuid.New()
	alice := newTestConn(t, hub, uuid.New())
	hub.JoinRoom(alice.client, roomID)
	alice.readFrame(t)

	hub.SetPresence(alice.client, roomID, json.RawMessage(`{"cursor":{"x":1}}`))

	bob := newTestConn(t, hub, uuid.New())
	hub.JoinRoom(bob.client, roomID)

	msg := bob.readFrame(t)
	if msg.Type != TypeRoomUsers {
		t.Fatalf("frame type = %q, want %q", msg.Type, TypeRoomUsers)
	}

	var users []RoomUser
	if err := json.Unmarshal(msg.Data, &users); err != nil {
		t.Fatalf("unmarshal room users: %v", err)
	}
	if len(users) != 1 {
		t.Fatalf("room users = %+v, want only alice", users)
	}
	if string(users[0].Presence) != `{"cursor":{"x":1}}` {
		t.Errorf("presence = %s, want stored cursor", users[0].Presence)
	}
}

func TestLeaveRoomNotifiesOthers(t *testing.T) {
	hub := NewHub()
	go hub.Run()
	defer hub.Stop()

	roomID := uuid.New()
	alice := newTestConn(t, hub, uuid.New())
	bob := newTestConn(t, hub, uuid.New())

	hub.JoinRoom(alice.client, roomID)
	alice.readFrame(t)
	hub.JoinRoom(bob.client, roomID)
	alice.readFrame(t)
	bob.readFrame(t)

	hub.LeaveRoom(bob.client, roomID)

	msg := alice.readFrame(t)
	if msg.Type != TypeUserOffline {
		t.Fatalf("frame type = %q, want %q", msg.Type, TypeUserOffline)
	}
	if msg.UserID != bob.client.UserID {
		t.Errorf("user_id = %s, want bob", msg.UserID)
	}

	if got := len(hub.GetRoomUsers(roomID)); got != 1 {
		t.Errorf("room user count = %d, want 1", got)
	}
}

func TestDisconnectRoomKicksEveryone(t *testing.T) {
	hub := NewHub()
	go hub.Run()
	defer hub.Stop()

	roomID := uuid.New()
	alice := newTestConn(t, hub, uuid.New())
	bob := newTestConn(t, hub, uuid.New())

	hub.JoinRoom(alice.client, roomID)
	alice.readFrame(t)
	hub.JoinRoom(bob.client, roomID)
	alice.readFrame(t)
	bob.readFrame(t)

	hub.DisconnectRoom(roomID)

	for _, tc := range []*testConn{alice, bob} {
		msg := tc.readFrame(t)
		if msg.Type != TypeRoomDeleted {
			t.Errorf("frame type = %q, want %q", msg.Type, TypeRoomDeleted)
		}
		if tc.client.IsInRoom(roomID) {
			t.Error("client should no longer be in the room")
		}
	}

	if got := len(hub.GetRoomUsers(roomID)); got != 0 {
		t.Errorf("room user count = %d, want 0", got)
	}
}

func TestUnregisterLeavesAllRooms(t *testing.T) {
	hub := NewHub()
	go hub.Run()
	defer hub.Stop()

	roomID := uuid.New()
	alice := newTestConn(t, hub, uuid.New())
	bob := newTestConn(t, hub, uuid.New())

	hub.JoinRoom(alice.client, roomID)
	alice.readFrame(t)
	hub.JoinRoom(bob.client, roomID)
	alice.readFrame(t)
	bob.readFrame(t)

	if rooms := bob.client.GetRooms(); len(rooms) != 1 || rooms[0] != roomID {
		t.Fatalf("bob rooms = %v, want [%s]", rooms, roomID)
	}

	hub.Unregister(bob.client)

	msg := alice.readFrame(t)
	if msg.Type != TypeUserOffline {
		t.Fatalf("frame type = %q, want %q", msg.Type, TypeUserOffline)
	}
	if msg.UserID != bob.client.UserID {
		t.Errorf("user_id = %s, want bob", msg.UserID)
	}

	deadline := time.Now().Add(2 * time.Second)
	for isOnline(hub, bob.client.UserID) && time.Now().Before(deadline) {
		time.Sleep(5 * time.Millisecond)
	}
	if isOnline(hub, bob.client.UserID) {
		t.Fatal("bob still listed online after unregister")
	}

	if rooms := bob.client.GetRooms(); len(rooms) != 0 {
		t.Errorf("bob rooms after unregister = %v, want none", rooms)
	}
}

func isOnline(hub *Hub, userID uuid.UUID) bool {
	for _, id := range hub.GetOnlineUsers() {
		if id == userID {
			return true
		}
	}
	return false
}

func TestSendToUserReachesAllConnections(t *testing.T) {
	hub := NewHub()
	go hub.Run()
	defer hub.Stop()

	userID := uuid.New()
	first := newTestConn(t, hub, userID)
	second := newTestConn(t, hub, userID)

	frame, _ := json.Marshal(Message{Type: TypeNotification, UserID: userID, Timestamp: time.Now()})
	hub.SendToUser(userID, frame)

	for _, tc := range []*testConn{first, second} {
		msg := tc.readFrame(t)
		if msg.Type != TypeNotification {
			t.Errorf("frame type = %q, want %q", msg.Type, TypeNotification)
		}
	}
}
