package repository

import "github.com/traPtitech/rolegate/model"

// RoleRepository ロールリポジトリ
type RoleRepository interface {
	// GetRoleByName 指定した名前のロールを取得します
	//
	// 存在しないロール名を指定した場合、ErrNotFoundを返します。
	// DBによるエラーを返すことがあります。
	GetRoleByName(name string) (*model.Role, error)
	// GetAllRoles 全てのロールを取得します
	//
	// DBによるエラーを返すことがあります。
	GetAllRoles() ([]*model.Role, error)
	// SaveRole ロールを保存します。同名のロールが既に存在する場合は上書きします
	//
	// 引数のNameが空の場合、ErrNilIDを返します。
	// DBによるエラーを返すことがあります。
	SaveRole(role *model.Role) error
	// DeleteRole 指定した名前のロールを削除します
	//
	// 存在しないロール名を指定した場合、ErrNotFoundを返します。
	// DBによるエラーを返すことがあります。
	DeleteRole(name string) error
}
