package models

import "testing"

func TestValidNotificationType(t *testing.T) {
	for _, typ := range []NotificationType{
		NotifyAccessGranted,
		NotifyAccessRevoked,
		NotifyMention,
		NotifyComment,
		NotifyRoomDeleted,
	} {
		if !ValidNotificationType(typ) {
			t.Errorf("%q should be valid", typ)
		}
	}

	for _, typ := range []NotificationType{"", "unknown", "Mention", "access-granted"} {
		if ValidNotificationType(typ) {
			t.Errorf("%q should be rejected", typ)
		}
	}
}
