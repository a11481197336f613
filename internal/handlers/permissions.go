package handlers

import (
	"github.com/collabroom/collabroom/internal/models"
	"github.com/google/uuid"
)

// groupLister is the slice of the database access resolution needs.
type groupLister interface {
	GetUserGroupIDs(userID uuid.UUID) ([]uuid.UUID, error)
}

// resolveAccess computes the level a user effectively holds on a room,
// folding in their group memberships.
func resolveAccess(db groupLister, room *models.Room, userID uuid.UUID) (models.AccessLevel, error) {
	groupIDs, err := db.GetUserGroupIDs(userID)
	if err != nil {
		return models.AccessNone, err
	}
	return models.EffectiveLevel(room, userID, groupIDs), nil
}
