package models

import (
	"testing"

	"github.com/google/uuid"
)

func TestParseAccessLevel(t *testing.T) {
	cases := []struct {
		in    string
		want  AccessLevel
		valid bool
	}{
		{"room:read", AccessRead, true},
		{"room:comment", AccessComment, true},
		{"room:write", AccessWrite, true},
		{"", AccessNone, false},
		{"room:admin", AccessNone, false},
		{"write", AccessNone, false},
	}

	for _, tc := range cases {
		got, ok := ParseAccessLevel(tc.in)
		if ok != tc.valid {
			t.Errorf("ParseAccessLevel(%q) valid = %v, want %v", tc.in, ok, tc.valid)
		}
		if got != tc.want {
			t.Errorf("ParseAccessLevel(%q) = %q, want %q", tc.in, got, tc.want)
		}
	}
}

func TestAccessLevelAtLeast(t *testing.T) {
	if !AccessWrite.AtLeast(AccessRead) {
		t.Error("room:write should include room:read")
	}
	if !AccessWrite.AtLeast(AccessComment) {
		t.Error("room:write should include room:comment")
	}
	if AccessRead.AtLeast(AccessComment) {
		t.Error("room:read should not include room:comment")
	}
	if AccessNone.AtLeast(AccessRead) {
		t.Error("no access should not include room:read")
	}
	if !AccessNone.AtLeast(AccessNone) {
		t.Error("no access compared to itself should hold")
	}
}

func TestEffectiveLevel_CreatorAlwaysWrites(t *testing.T) {
	creator := uuid.New()
	room := &Room{CreatorID: creator, DefaultAccess: AccessNone}

	if got := EffectiveLevel(room, creator, nil); got != AccessWrite {
		t.Errorf("creator level = %q, want %q", got, AccessWrite)
	}
}

func TestEffectiveLevel_UserGrantBeatsGroupGrant(t *testing.T) {
	user := uuid.New()
	group := uuid.New()
	room := &Room{
		CreatorID:     uuid.New(),
		DefaultAccess: AccessNone,
		Accesses: []RoomAccess{
			{SubjectType: SubjectGroup, SubjectID: group, Level: AccessWrite},
			{SubjectType: SubjectUser, SubjectID: user, Level: AccessRead},
		},
	}

	// the explicit user grant wins even when a group grant is higher
	if got := EffectiveLevel(room, user, []uuid.UUID{group}); got != AccessRead {
		t.Errorf("level = %q, want %q", got, AccessRead)
	}
}

func TestEffectiveLevel_HighestGroupGrantWins(t *testing.T) {
	user := uuid.New()
	g1 := uuid.New()
	g2 := uuid.New()
	room := &Room{
		CreatorID:     uuid.New(),
		DefaultAccess: AccessNone,
		Accesses: []RoomAccess{
			{SubjectType: SubjectGroup, SubjectID: g1, Level: AccessRead},
			{SubjectType: SubjectGroup, SubjectID: g2, Level: AccessComment},
		},
	}

	if got := EffectiveLevel(room, user, []uuid.UUID{g1, g2}); got != AccessComment {
		t.Errorf("level = %q, want %q", got, AccessComment)
	}
}

func TestEffectiveLevel_DefaultAppliesLast(t *testing.T) {
	user := uuid.New()
	room := &Room{
		CreatorID:     uuid.New(),
		DefaultAccess: AccessRead,
	}

	if got := EffectiveLevel(room, user, nil); got != AccessRead {
		t.Errorf("level = %q, want %q", got, AccessRead)
	}

	// a grant to an unrelated group does not shadow the default
	room.Accesses = []RoomAccess{
		{SubjectType: SubjectGroup, SubjectID: uuid.New(), Level: AccessWrite},
	}
	if got := EffectiveLevel(room, user, nil); got != AccessRead {
		t.Errorf("level = %q, want %q", got, AccessRead)
	}
}

func TestEffectiveLevel_NoAccess(t *testing.T) {
	room := &Room{CreatorID: uuid.New(), DefaultAccess: AccessNone}

	if got := EffectiveLevel(room, uuid.New(), nil); got != AccessNone {
		t.Errorf("level = %q, want none", got)
	}
}
