package migration

import (
	"github.com/go-gormigrate/gormigrate/v2"
	"gorm.io/gorm"

	"github.com/traPtitech/rolegate/model"
)

// v1 初期スキーマと予約ロールの投入
var v1 = &gormigrate.Migration{
	ID: "1",
	Migrate: func(db *gorm.DB) error {
		if err := db.AutoMigrate(&model.Role{}, &model.RoleAssignment{}, &model.Setting{}); err != nil {
			return err
		}
		return seedReservedRoles(db)
	},
}
