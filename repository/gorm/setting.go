package gorm

import (
	"gorm.io/gorm/clause"

	"github.com/traPtitech/rolegate/model"
	"github.com/traPtitech/rolegate/repository"
)

// GetSetting implements SettingRepository interface.
func (repo *Repository) GetSetting(key string) (string, error) {
	if len(key) == 0 {
		return "", repository.ErrNilID
	}
	var s model.Setting
	if err := repo.db.First(&s, &model.Setting{Key: key}).Error; err != nil {
		return "", convertError(err)
	}
	return s.Value, nil
}

// SetSetting implements SettingRepository interface.
func (repo *Repository) SetSetting(key, value string) error {
	if len(key) == 0 {
		return repository.ErrNilID
	}
	return repo.db.
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "key"}},
			DoUpdates: clause.AssignmentColumns([]string{"value"}),
		}).
		Create(&model.Setting{Key: key, Value: value}).
		Error
}
