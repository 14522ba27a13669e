package migration

import (
	"github.com/go-gormigrate/gormigrate/v2"
	"gorm.io/gorm"
)

// Migrations 全データベースマイグレーション
func Migrations() []*gormigrate.Migration {
	return []*gormigrate.Migration{
		v1, // 初期スキーマと予約ロールの投入
	}
}

// Migrate データベースマイグレーションを実行します
func Migrate(db *gorm.DB) error {
	m := gormigrate.New(db, &gormigrate.Options{
		TableName:      "migrations",
		IDColumnName:   "id",
		IDColumnSize:   190,
		UseTransaction: false,
	}, Migrations())
	m.InitSchema(func(db *gorm.DB) error {
		// 初回のみに呼ばれる
		// 全ての最新のデータベース定義を書く事
		if err := db.AutoMigrate(AllTables()...); err != nil {
			return err
		}
		return seedReservedRoles(db)
	})
	return m.Migrate()
}
