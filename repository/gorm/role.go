package gorm

import (
	"context"

	"github.com/leandro-lugaresi/hub"

	"github.com/traPtitech/rolegate/event"
	"github.com/traPtitech/rolegate/model"
	"github.com/traPtitech/rolegate/repository"
)

// GetRoleByName implements RoleRepository interface.
func (repo *Repository) GetRoleByName(name string) (*model.Role, error) {
	if len(name) == 0 {
		return nil, repository.ErrNotFound
	}
	return repo.roles.Get(context.Background(), name)
}

// GetAllRoles implements RoleRepository interface.
func (repo *Repository) GetAllRoles() ([]*model.Role, error) {
	var roles []*model.Role
	if err := repo.db.Order("name").Find(&roles).Error; err != nil {
		return nil, err
	}
	return roles, nil
}

// SaveRole implements RoleRepository interface.
func (repo *Repository) SaveRole(role *model.Role) error {
	if role == nil || len(role.Name) == 0 {
		return repository.ErrNilID
	}
	if err := repo.db.Save(role).Error; err != nil {
		return err
	}
	repo.roles.Forget(role.Name)
	repo.hub.Publish(hub.Message{
		Name: event.RoleUpdated,
		Fields: hub.Fields{
			"role_name": role.Name,
		},
	})
	return nil
}

// DeleteRole implements RoleRepository interface.
func (repo *Repository) DeleteRole(name string) error {
	if len(name) == 0 {
		return repository.ErrNilID
	}
	result := repo.db.Delete(&model.Role{}, &model.Role{Name: name})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return repository.ErrNotFound
	}
	repo.roles.Forget(name)
	repo.hub.Publish(hub.Message{
		Name: event.RoleDeleted,
		Fields: hub.Fields{
			"role_name": name,
		},
	})
	return nil
}
