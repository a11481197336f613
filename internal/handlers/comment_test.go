package handlers

import (
	"fmt"
	"net/http"
	"reflect"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/collabroom/collabroom/internal/models"
	"github.com/collabroom/collabroom/internal/websocket"
)

func TestExtractMentions(t *testing.T) {
	cases := []struct {
		body string
		want []string
	}{
		{"no mentions here", []string{}},
		{"hey @alice take a look", []string{"alice"}},
		{"@alice @bob @alice", []string{"alice", "bob"}},
		{"emails like alice@example.com still match the domain", []string{"example.com"}},
		{"@under_score and @dot.ted and @dash-ed", []string{"under_score", "dot.ted", "dash-ed"}},
		{"", []string{}},
	}

	for _, tc := range cases {
		got := ExtractMentions(tc.body)
		if !reflect.DeepEqual(got, tc.want) {
			t.Errorf("ExtractMentions(%q) = %v, want %v", tc.body, got, tc.want)
		}
	}
}

func newCommentHandler(store *fakeStore) *CommentHandler {
	hub := websocket.NewHub()
	return NewCommentHandler(store, hub, NewNotifier(nil, nil, hub))
}

func TestPostCommentRejectsCrossRoomParent(t *testing.T) {
	authorID := uuid.New()
	roomID := uuid.New()
	otherRoomID := uuid.New()
	parentID := uuid.New()

	store := newFakeStore()
	store.rooms[roomID.String()] = &models.Room{ID: roomID, CreatorID: authorID}
	store.comments[parentID.String()] = &models.Comment{ID: parentID, RoomID: otherRoomID, UserID: uuid.New()}

	h := newCommentHandler(store)

	body := fmt.Sprintf(`{"body":"replying","parent_id":%q}`, parentID.String())
	c, w := newRequestCtx(t, authorID, http.MethodPost, body, gin.Params{{Key: "id", Value: roomID.String()}})

	h.PostComment(c)

	if w.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want %d", w.Code, http.StatusBadRequest)
	}
	if store.saveCalls != 0 {
		t.Errorf("SaveComment calls = %d, want 0", store.saveCalls)
	}
}

func TestMentionTargetsSkipsUsersWithoutAccess(t *testing.T) {
	creatorID := uuid.New()
	roomID := uuid.New()

	author := &models.User{ID: uuid.New(), Username: "dave"}
	granted := &models.User{ID: uuid.New(), Username: "carol"}
	outsider := &models.User{ID: uuid.New(), Username: "bob"}

	store := newFakeStore()
	store.addUser(author)
	store.addUser(granted)
	store.addUser(outsider)

	room := &models.Room{
		ID:        roomID,
		CreatorID: creatorID,
		Accesses: []models.RoomAccess{
			{RoomID: roomID, SubjectType: models.SubjectUser, SubjectID: granted.ID, Level: models.AccessRead},
		},
	}
	comment := &models.Comment{
		RoomID: roomID,
		UserID: author.ID,
		Body:   "@bob @carol @dave please check",
	}

	targets := mentionTargets(store, room, comment)

	if len(targets) != 1 || targets[0] != granted.ID {
		t.Errorf("targets = %v, want only the granted user %s", targets, granted.ID)
	}
}

func TestResolveRepeatIsNoOp(t *testing.T) {
	authorID := uuid.New()
	roomID := uuid.New()
	commentID := uuid.New()

	resolvedAt := time.Now()
	store := newFakeStore()
	store.rooms[roomID.String()] = &models.Room{ID: roomID, CreatorID: authorID}
	store.comments[commentID.String()] = &models.Comment{
		ID:         commentID,
		RoomID:     roomID,
		UserID:     authorID,
		Body:       "done",
		ResolvedAt: &resolvedAt,
		ResolvedBy: &authorID,
	}

	h := newCommentHandler(store)

	c, w := newRequestCtx(t, authorID, http.MethodPost, "", gin.Params{{Key: "id", Value: commentID.String()}})
	h.SetResolved(true)(c)

	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want %d", w.Code, http.StatusOK)
	}
	if store.resolveCalls != 0 {
		t.Errorf("SetThreadResolved calls = %d, want 0 for a repeat", store.resolveCalls)
	}
}

func TestResolveTransitionWritesOnce(t *testing.T) {
	authorID := uuid.New()
	roomID := uuid.New()
	commentID := uuid.New()

	store := newFakeStore()
	store.rooms[roomID.String()] = &models.Room{ID: roomID, CreatorID: authorID}
	store.comments[commentID.String()] = &models.Comment{
		ID:     commentID,
		RoomID: roomID,
		UserID: authorID,
		Body:   "open question",
	}

	h := newCommentHandler(store)

	c, w := newRequestCtx(t, authorID, http.MethodPost, "", gin.Params{{Key: "id", Value: commentID.String()}})
	h.SetResolved(true)(c)

	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want %d", w.Code, http.StatusOK)
	}
	if store.resolveCalls != 1 {
		t.Errorf("SetThreadResolved calls = %d, want 1", store.resolveCalls)
	}
}
