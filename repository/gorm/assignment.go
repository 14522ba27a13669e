package gorm

import (
	"github.com/gofrs/uuid"
	"github.com/leandro-lugaresi/hub"
	"gorm.io/gorm/clause"

	"github.com/traPtitech/rolegate/event"
	"github.com/traPtitech/rolegate/model"
	"github.com/traPtitech/rolegate/repository"
)

// GetUserRoleName implements AssignmentRepository interface.
func (repo *Repository) GetUserRoleName(userID uuid.UUID) (string, error) {
	if userID == uuid.Nil {
		return "", repository.ErrNilID
	}
	var a model.RoleAssignment
	if err := repo.db.First(&a, &model.RoleAssignment{UserID: userID}).Error; err != nil {
		return "", convertError(err)
	}
	return a.RoleName, nil
}

// SetUserRole implements AssignmentRepository interface.
func (repo *Repository) SetUserRole(userID uuid.UUID, roleName string) error {
	if userID == uuid.Nil || len(roleName) == 0 {
		return repository.ErrNilID
	}
	err := repo.db.
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "user_id"}},
			DoUpdates: clause.AssignmentColumns([]string{"role_name"}),
		}).
		Create(&model.RoleAssignment{UserID: userID, RoleName: roleName}).
		Error
	if err != nil {
		return err
	}
	repo.hub.Publish(hub.Message{
		Name: event.RoleAssigned,
		Fields: hub.Fields{
			"user_id":   userID,
			"role_name": roleName,
		},
	})
	return nil
}

// ClearUserRole implements AssignmentRepository interface.
func (repo *Repository) ClearUserRole(userID uuid.UUID) error {
	if userID == uuid.Nil {
		return repository.ErrNilID
	}
	result := repo.db.Delete(&model.RoleAssignment{}, &model.RoleAssignment{UserID: userID})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected > 0 {
		repo.hub.Publish(hub.Message{
			Name: event.RoleUnassigned,
			Fields: hub.Fields{
				"user_id": userID,
			},
		})
	}
	return nil
}

// ListAssignments implements AssignmentRepository interface.
func (repo *Repository) ListAssignments() (map[uuid.UUID]string, error) {
	var assignments []*model.RoleAssignment
	if err := repo.db.Find(&assignments).Error; err != nil {
		return nil, err
	}
	result := make(map[uuid.UUID]string, len(assignments))
	for _, a := range assignments {
		result[a.UserID] = a.RoleName
	}
	return result, nil
}

// GetRoleMembers implements AssignmentRepository interface.
func (repo *Repository) GetRoleMembers(roleName string) ([]uuid.UUID, error) {
	ids := make([]uuid.UUID, 0)
	err := repo.db.
		Model(&model.RoleAssignment{}).
		Where(&model.RoleAssignment{RoleName: roleName}).
		Order("created_at").
		Pluck("user_id", &ids).
		Error
	if err != nil {
		return nil, err
	}
	return ids, nil
}
