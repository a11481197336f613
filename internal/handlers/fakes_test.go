package handlers

import (
	"errors"
	"io"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/collabroom/collabroom/internal/middleware"
	"github.com/collabroom/collabroom/internal/models"
)

var errFakeNotFound = errors.New("record not found")

// fakeStore backs handler tests with canned data and call counters.
type fakeStore struct {
	rooms       map[string]*models.Room
	users       map[string]*models.User
	groups      map[string]*models.Group
	comments    map[string]*models.Comment
	usersByName map[string]*models.User

	userGroups   map[uuid.UUID][]uuid.UUID
	groupMembers map[uuid.UUID][]uuid.UUID

	removeResult bool

	upsertCalls  int
	removeCalls  int
	resolveCalls int
	saveCalls    int
}

func newFakeStore() *fakeStore {
	return &fakeStore{
		rooms:        make(map[string]*models.Room),
		users:        make(map[string]*models.User),
		groups:       make(map[string]*models.Group),
		comments:     make(map[string]*models.Comment),
		usersByName:  make(map[string]*models.User),
		userGroups:   make(map[uuid.UUID][]uuid.UUID),
		groupMembers: make(map[uuid.UUID][]uuid.UUID),
	}
}

func (f *fakeStore) addUser(u *models.User) {
	f.users[u.ID.String()] = u
	f.usersByName[u.Username] = u
}

func (f *fakeStore) GetUserGroupIDs(userID uuid.UUID) ([]uuid.UUID, error) {
	return f.userGroups[userID], nil
}

func (f *fakeStore) GetGroupMemberIDs(groupID uuid.UUID) ([]uuid.UUID, error) {
	return f.groupMembers[groupID], nil
}

func (f *fakeStore) GetRoom(id string) (*models.Room, error) {
	if room, ok := f.rooms[id]; ok {
		return room, nil
	}
	return nil, errFakeNotFound
}

func (f *fakeStore) GetUser(id string) (*models.User, error) {
	if user, ok := f.users[id]; ok {
		return user, nil
	}
	return nil, errFakeNotFound
}

func (f *fakeStore) GetGroup(id string) (*models.Group, error) {
	if group, ok := f.groups[id]; ok {
		return group, nil
	}
	return nil, errFakeNotFound
}

func (f *fakeStore) FindUserByUsername(username string) (*models.User, error) {
	if user, ok := f.usersByName[username]; ok {
		return user, nil
	}
	return nil, errFakeNotFound
}

func (f *fakeStore) UpsertAccess(roomID uuid.UUID, subjectType string, subjectID uuid.UUID, level models.AccessLevel, grantedBy uuid.UUID) (*models.RoomAccess, error) {
	f.upsertCalls++
	return &models.RoomAccess{
		RoomID:      roomID,
		SubjectType: subjectType,
		SubjectID:   subjectID,
		Level:       level,
		GrantedBy:   grantedBy,
	}, nil
}

func (f *fakeStore) RemoveAccess(roomID uuid.UUID, subjectType string, subjectID uuid.UUID) (bool, error) {
	f.removeCalls++
	return f.removeResult, nil
}

func (f *fakeStore) ListRoomAccesses(roomID uuid.UUID) ([]models.RoomAccess, error) {
	return nil, nil
}

func (f *fakeStore) GetComment(id string) (*models.Comment, error) {
	if comment, ok := f.comments[id]; ok {
		return comment, nil
	}
	return nil, errFakeNotFound
}

func (f *fakeStore) SaveComment(comment *models.Comment) error {
	f.saveCalls++
	if comment.ID == uuid.Nil {
		comment.ID = uuid.New()
	}
	f.comments[comment.ID.String()] = comment
	return nil
}

func (f *fakeStore) UpdateComment(comment *models.Comment) error {
	f.comments[comment.ID.String()] = comment
	return nil
}

func (f *fakeStore) DeleteComment(id string) error {
	delete(f.comments, id)
	return nil
}

func (f *fakeStore) ListRoomComments(roomID string, limit int) ([]models.Comment, error) {
	return nil, nil
}

func (f *fakeStore) SetThreadResolved(id string, by uuid.UUID, resolved bool) (*models.Comment, error) {
	f.resolveCalls++
	comment, ok := f.comments[id]
	if !ok {
		return nil, errFakeNotFound
	}
	return comment, nil
}

// newRequestCtx builds a gin context the way the router middleware would
// hand it to a handler.
func newRequestCtx(t *testing.T, userID uuid.UUID, method, body string, params gin.Params) (*gin.Context, *httptest.ResponseRecorder) {
	t.Helper()

	gin.SetMode(gin.TestMode)
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)

	var rdr io.Reader
	if body != "" {
		rdr = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, "/", rdr)
	req.Header.Set("Content-Type", "application/json")

	c.Request = req
	c.Params = params
	c.Set(middleware.UserIDKey, userID)

	return c, w
}
