package model

import (
	"time"

	jsoniter "github.com/json-iterator/go"
)

const (
	// DefaultRole 明示的なロールを持たない一般ユーザーのロール名
	DefaultRole = "default"
	// AdminRole 明示的なロールを持たない管理者ユーザーのロール名
	AdminRole = "admin"
	// VisitorRole 未認証ユーザーのロール名
	VisitorRole = "visitor"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

// ReservedRoleNames 予約ロール名の一覧を返します
func ReservedRoleNames() []string {
	return []string{DefaultRole, AdminRole, VisitorRole}
}

// IsReservedRoleName 指定した名前が予約ロール名かどうか
func IsReservedRoleName(name string) bool {
	return name == DefaultRole || name == AdminRole || name == VisitorRole
}

// Role ロール構造体
//
// Permissionsにはシリアライズ済みのパーミッションルール全体が、
// Extendsにはシリアライズ済みの継承ロール名リストが入ります。
// 中身の解釈はservice/rolegateが行い、このレイヤーでは不透明な文字列として扱います。
type Role struct {
	Name        string    `gorm:"type:varchar(30);not null;primaryKey"`
	Title       string    `gorm:"type:varchar(100);not null"`
	Extends     string    `gorm:"type:text;not null"`
	Permissions string    `gorm:"type:longtext;not null"`
	CreatedAt   time.Time `gorm:"precision:6"`
	UpdatedAt   time.Time `gorm:"precision:6"`
}

// TableName Role構造体のテーブル名
func (*Role) TableName() string {
	return "roles"
}

// IsReserved このロールが予約ロールかどうか
func (r *Role) IsReserved() bool {
	return IsReservedRoleName(r.Name)
}

// ExtendsList 継承ロール名のリストを返します
//
// 値が不正な場合は空リストを返します。単一の文字列が格納されている
// 旧形式も1要素のリストとして受け付けます。
func (r *Role) ExtendsList() []string {
	if len(r.Extends) == 0 {
		return nil
	}
	var names []string
	if err := json.UnmarshalFromString(r.Extends, &names); err == nil {
		return names
	}
	var single string
	if err := json.UnmarshalFromString(r.Extends, &single); err == nil && len(single) > 0 {
		return []string{single}
	}
	return nil
}

// SetExtendsList 継承ロール名のリストを設定します
func (r *Role) SetExtendsList(names []string) error {
	if names == nil {
		names = []string{}
	}
	s, err := json.MarshalToString(names)
	if err != nil {
		return err
	}
	r.Extends = s
	return nil
}
