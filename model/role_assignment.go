package model

import (
	"time"

	"github.com/gofrs/uuid"
)

// RoleAssignment ユーザーへの明示的なロール割り当て構造体
//
// 1ユーザーにつき高々1件。予約ロールへの割り当ては永続化されず、
// レコードが存在しないユーザーのロールは都度計算されます。
type RoleAssignment struct {
	UserID    uuid.UUID `gorm:"type:char(36);not null;primaryKey"`
	RoleName  string    `gorm:"type:varchar(30);not null;index"`
	CreatedAt time.Time `gorm:"precision:6"`
}

// TableName RoleAssignment構造体のテーブル名
func (*RoleAssignment) TableName() string {
	return "role_assignments"
}
