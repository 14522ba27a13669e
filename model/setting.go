package model

import "time"

// Setting プラグイン設定のキーバリュー構造体
type Setting struct {
	Key       string    `gorm:"type:varchar(190);not null;primaryKey"`
	Value     string    `gorm:"type:text;not null"`
	UpdatedAt time.Time `gorm:"precision:6"`
}

// TableName Setting構造体のテーブル名
func (*Setting) TableName() string {
	return "settings"
}
