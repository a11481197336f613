package models

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/google/uuid"
)

func TestApplyStorageWrite_NewKey(t *testing.T) {
	roomID := uuid.New()
	userID := uuid.New()
	now := time.Now()

	entry, accepted := ApplyStorageWrite(nil, roomID, userID, StorageWrite{
		Key:     "title",
		Value:   json.RawMessage(`"hello"`),
		Version: 1,
	}, now)

	if !accepted {
		t.Fatal("write to new key should be accepted")
	}
	if entry.RoomID != roomID || entry.Key != "title" || entry.Version != 1 {
		t.Errorf("unexpected entry: %+v", entry)
	}
	if entry.UpdatedBy != userID {
		t.Errorf("updated_by = %s, want %s", entry.UpdatedBy, userID)
	}
}

func TestApplyStorageWrite_NewKeyRequiresPositiveVersion(t *testing.T) {
	entry, accepted := ApplyStorageWrite(nil, uuid.New(), uuid.New(), StorageWrite{
		Key:     "title",
		Value:   json.RawMessage(`"hello"`),
		Version: 0,
	}, time.Now())

	if accepted || entry != nil {
		t.Error("version 0 on a new key should be rejected")
	}
}

func TestApplyStorageWrite_NewerVersionWins(t *testing.T) {
	roomID := uuid.New()
	writer := uuid.New()
	existing := &StorageEntry{
		RoomID:  roomID,
		Key:     "title",
		Value:   json.RawMessage(`"old"`),
		Version: 3,
	}

	entry, accepted := ApplyStorageWrite(existing, roomID, writer, StorageWrite{
		Key:     "title",
		Value:   json.RawMessage(`"new"`),
		Version: 4,
	}, time.Now())

	if !accepted {
		t.Fatal("newer version should win")
	}
	if string(entry.Value) != `"new"` || entry.Version != 4 {
		t.Errorf("unexpected entry: %+v", entry)
	}
	if entry.UpdatedBy != writer {
		t.Errorf("updated_by = %s, want %s", entry.UpdatedBy, writer)
	}
}

func TestApplyStorageWrite_StaleVersionLoses(t *testing.T) {
	roomID := uuid.New()
	existing := &StorageEntry{
		RoomID:  roomID,
		Key:     "title",
		Value:   json.RawMessage(`"kept"`),
		Version: 5,
	}

	for _, version := range []int64{5, 4, 0} {
		entry, accepted := ApplyStorageWrite(existing, roomID, uuid.New(), StorageWrite{
			Key:     "title",
			Value:   json.RawMessage(`"lost"`),
			Version: version,
		}, time.Now())

		if accepted {
			t.Errorf("version %d against stored 5 should lose", version)
		}
		if string(entry.Value) != `"kept"` || entry.Version != 5 {
			t.Errorf("stale write must not mutate the entry: %+v", entry)
		}
	}
}
