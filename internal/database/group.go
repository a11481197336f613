package database

import (
	"github.com/collabroom/collabroom/internal/models"
	"github.com/google/uuid"
)

func (d *Database) CreateGroup(group *models.Group) error {
	return d.db.Create(group).Error
}

func (d *Database) GetGroup(id string) (*models.Group, error) {
	var group models.Group
	if err := d.db.Preload("Members").First(&group, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &group, nil
}

func (d *Database) AddUserToGroup(userID, groupID string) error {
	var user models.User
	var group models.Group

	if err := d.db.First(&user, "id = ?", userID).Error; err != nil {
		return err
	}

	if err := d.db.First(&group, "id = ?", groupID).Error; err != nil {
		return err
	}

	return d.db.Model(&group).Association("Members").Append(&user)
}

func (d *Database) RemoveUserFromGroup(userID, groupID string) error {
	var user models.User
	var group models.Group

	if err := d.db.First(&user, "id = ?", userID).Error; err != nil {
		return err
	}

	if err := d.db.First(&group, "id = ?", groupID).Error; err != nil {
		return err
	}

	return d.db.Model(&group).Association("Members").Delete(&user)
}

// GetUserGroupIDs returns the ids of every group the user belongs to,
// used when resolving group grants into an effective level.
func (d *Database) GetUserGroupIDs(userID uuid.UUID) ([]uuid.UUID, error) {
	var ids []uuid.UUID
	err := d.db.
		Table("group_members").
		Where("user_id = ?", userID).
		Pluck("group_id", &ids).Error
	if err != nil {
		return nil, err
	}
	return ids, nil
}

func (d *Database) GetGroupMemberIDs(groupID uuid.UUID) ([]uuid.UUID, error) {
	var ids []uuid.UUID
	err := d.db.
		Table("group_members").
		Where("group_id = ?", groupID).
		Pluck("user_id", &ids).Error
	if err != nil {
		return nil, err
	}
	return ids, nil
}
