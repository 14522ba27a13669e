// Package testutils テスト用のユーティリティを提供します
package testutils

import (
	"sort"
	"sync"

	"github.com/gofrs/uuid"

	"github.com/traPtitech/rolegate/model"
	"github.com/traPtitech/rolegate/repository"
)

// Repository インメモリのrepository.Repository実装
type Repository struct {
	mu          sync.RWMutex
	roles       map[string]*model.Role
	assignments map[uuid.UUID]string
	order       []uuid.UUID
	settings    map[string]string
}

// NewRepository 予約ロールを投入済みのインメモリリポジトリを生成します
func NewRepository() *Repository {
	r := &Repository{
		roles:       map[string]*model.Role{},
		assignments: map[uuid.UUID]string{},
		settings:    map[string]string{},
	}
	for _, name := range model.ReservedRoleNames() {
		r.roles[name] = &model.Role{Name: name, Extends: "[]", Permissions: "{}"}
	}
	return r
}

// Sync implements repository.Repository interface.
func (r *Repository) Sync() error {
	return nil
}

// MustSaveRole テスト用にロールを保存します。失敗した場合panicします
func (r *Repository) MustSaveRole(name, extends, permissions string) {
	role := &model.Role{Name: name, Extends: extends, Permissions: permissions}
	if err := r.SaveRole(role); err != nil {
		panic(err)
	}
}

// GetRoleByName implements repository.RoleRepository interface.
func (r *Repository) GetRoleByName(name string) (*model.Role, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	role, ok := r.roles[name]
	if !ok {
		return nil, repository.ErrNotFound
	}
	c := *role
	return &c, nil
}

// GetAllRoles implements repository.RoleRepository interface.
func (r *Repository) GetAllRoles() ([]*model.Role, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	result := make([]*model.Role, 0, len(r.roles))
	for _, role := range r.roles {
		c := *role
		result = append(result, &c)
	}
	sort.Slice(result, func(i, j int) bool { return result[i].Name < result[j].Name })
	return result, nil
}

// SaveRole implements repository.RoleRepository interface.
func (r *Repository) SaveRole(role *model.Role) error {
	if role == nil || len(role.Name) == 0 {
		return repository.ErrNilID
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	c := *role
	r.roles[role.Name] = &c
	return nil
}

// DeleteRole implements repository.RoleRepository interface.
func (r *Repository) DeleteRole(name string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.roles[name]; !ok {
		return repository.ErrNotFound
	}
	delete(r.roles, name)
	return nil
}

// GetUserRoleName implements repository.AssignmentRepository interface.
func (r *Repository) GetUserRoleName(userID uuid.UUID) (string, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	name, ok := r.assignments[userID]
	if !ok {
		return "", repository.ErrNotFound
	}
	return name, nil
}

// SetUserRole implements repository.AssignmentRepository interface.
func (r *Repository) SetUserRole(userID uuid.UUID, roleName string) error {
	if userID == uuid.Nil {
		return repository.ErrNilID
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.assignments[userID]; !ok {
		r.order = append(r.order, userID)
	}
	r.assignments[userID] = roleName
	return nil
}

// ClearUserRole implements repository.AssignmentRepository interface.
func (r *Repository) ClearUserRole(userID uuid.UUID) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.assignments, userID)
	return nil
}

// GetRoleMembers implements repository.AssignmentRepository interface.
func (r *Repository) GetRoleMembers(roleName string) ([]uuid.UUID, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	var result []uuid.UUID
	for _, id := range r.order {
		if r.assignments[id] == roleName {
			result = append(result, id)
		}
	}
	return result, nil
}

// ListAssignments implements repository.AssignmentRepository interface.
func (r *Repository) ListAssignments() (map[uuid.UUID]string, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	result := make(map[uuid.UUID]string, len(r.assignments))
	for id, name := range r.assignments {
		result[id] = name
	}
	return result, nil
}

// GetSetting implements repository.SettingRepository interface.
func (r *Repository) GetSetting(key string) (string, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	v, ok := r.settings[key]
	if !ok {
		return "", repository.ErrNotFound
	}
	return v, nil
}

// SetSetting implements repository.SettingRepository interface.
func (r *Repository) SetSetting(key, value string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.settings[key] = value
	return nil
}
