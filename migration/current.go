package migration

import (
	"errors"

	"gorm.io/gorm"

	"github.com/traPtitech/rolegate/model"
)

// AllTables 最新のスキーマの全テーブルモデル
func AllTables() []interface{} {
	return []interface{}{
		&model.Role{},
		&model.RoleAssignment{},
		&model.Setting{},
	}
}

// seedReservedRoles 予約ロール(default/admin/visitor)を投入します
//
// ロール解決は予約ロールのレコードが常に存在することを前提とするため、
// 宣言的設定による同期よりも先にここで確保します。既存レコードは変更しません。
func seedReservedRoles(db *gorm.DB) error {
	for _, name := range model.ReservedRoleNames() {
		var r model.Role
		err := db.First(&r, &model.Role{Name: name}).Error
		if err == nil {
			continue
		}
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			return err
		}
		role := &model.Role{
			Name:        name,
			Title:       name,
			Extends:     "[]",
			Permissions: "{}",
		}
		if err := db.Create(role).Error; err != nil {
			return err
		}
	}
	return nil
}
